package event

import (
	"time"
)

// Type identifies the lifecycle phase an event records.
type Type string

// Event types. Terminal events (request.end, request.error) are the only
// kinds counted toward aggregate statistics.
const (
	RequestStart Type = "request.start"
	RequestEnd   Type = "request.end"
	RequestError Type = "request.error"
	ToolStart    Type = "tool.start"
	ToolEnd      Type = "tool.end"
	ToolError    Type = "tool.error"
)

// Terminal reports whether the type closes a logical request.
func (t Type) Terminal() bool {
	return t == RequestEnd || t == RequestError
}

// IsError reports whether the type records a failure.
func (t Type) IsError() bool {
	return t == RequestError || t == ToolError
}

// Payload is the open-ended detail map attached to every event. It is never
// nil on a well-formed event; an empty map is the floor.
type Payload map[string]any

// Clone returns a shallow copy of the payload. Nil payloads clone to an
// empty map so callers can always write to the result.
func (p Payload) Clone() Payload {
	out := make(Payload, len(p)+1)
	for k, v := range p {
		out[k] = v
	}
	return out
}

// Event is the atomic unit of telemetry: one immutable record of a lifecycle
// phase. Created once by the monitor or the span bridge, handed to a Store,
// and never mutated afterwards.
type Event struct {
	// Identity
	ID            string `json:"id"`                       // UUID v4
	Type          Type   `json:"event_type"`               // Lifecycle phase
	RequestID     string `json:"request_id"`               // Correlates all events of one call
	SessionID     string `json:"session_id,omitempty"`     // Optional session grouping
	TransactionID string `json:"transaction_id,omitempty"` // Optional transaction grouping

	// Timing
	Time      time.Time `json:"time"`       // When the phase occurred
	CreatedAt time.Time `json:"created_at"` // When the record was built

	// Terminal metrics. Present only on terminal events; nil means unknown,
	// not zero.
	Duration    *float64 `json:"duration_ms,omitempty"` // Wall time in milliseconds
	Cost        *float64 `json:"cost,omitempty"`        // Best-effort cost in currency units
	CPUTime     *float64 `json:"cpu_time_ms,omitempty"` // CPU time delta in milliseconds
	Allocations *int64   `json:"allocations,omitempty"` // Heap allocation delta in bytes

	// Attribution
	Provider string `json:"provider"` // Provider name ("openai", "anthropic", ...)
	Model    string `json:"model"`    // Model name

	// Detail
	Payload Payload `json:"payload"`
}

// Status classifies a trace for presentation.
type Status string

const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
	// StatusRunning is used by presentation layers for still-open requests.
	// The core never produces it.
	StatusRunning Status = "running"
)

// TraceSummary is a derived, read-only projection of a terminal event used
// for trace listings. Optional numeric fields stay nil when the source event
// did not carry them.
type TraceSummary struct {
	RequestID        string    `json:"request_id"`
	Provider         string    `json:"provider"`
	Model            string    `json:"model"`
	StartTime        time.Time `json:"start_time"` // EndTime minus Duration
	EndTime          time.Time `json:"end_time"`
	Duration         float64   `json:"duration_ms"`
	Cost             *float64  `json:"cost,omitempty"`
	CPUTime          *float64  `json:"cpu_time_ms,omitempty"`
	Allocations      *int64    `json:"allocations,omitempty"`
	PromptTokens     int       `json:"prompt_tokens,omitempty"`
	CompletionTokens int       `json:"completion_tokens,omitempty"`
	Status           Status    `json:"status"`
}

// Stats summarizes terminal events over a time range.
type Stats struct {
	TotalRequests    int     `json:"total_requests"`
	TotalCost        float64 `json:"total_cost"`
	AvgDuration      float64 `json:"avg_duration_ms"`
	ErrorRate        float64 `json:"error_rate"` // 0..1
	PromptTokens     int     `json:"prompt_tokens"`
	CompletionTokens int     `json:"completion_tokens"`
}

// ProviderStats is a per-(provider, model) rollup of terminal events.
type ProviderStats struct {
	Provider         string  `json:"provider"`
	Model            string  `json:"model"`
	Requests         int     `json:"requests"`
	Cost             float64 `json:"cost"`
	AvgDuration      float64 `json:"avg_duration_ms"`
	Errors           int     `json:"errors"`
	PromptTokens     int     `json:"prompt_tokens"`
	CompletionTokens int     `json:"completion_tokens"`
	TotalTokens      int     `json:"total_tokens"`
	CostPer1kTokens  float64 `json:"cost_per_1k_tokens"`
}

// TimeSeriesPoint is one bucket of a metric series.
type TimeSeriesPoint struct {
	Time  time.Time `json:"time"`
	Value float64   `json:"value"`
}

// TimeSeries holds the bucketed metric series derived from terminal events.
// Buckets with no events are omitted; every series is ascending by time.
type TimeSeries struct {
	Requests         []TimeSeriesPoint `json:"requests"`
	Cost             []TimeSeriesPoint `json:"cost"`
	Duration         []TimeSeriesPoint `json:"duration"` // Mean per bucket, not sum
	Errors           []TimeSeriesPoint `json:"errors"`
	PromptTokens     []TimeSeriesPoint `json:"prompt_tokens"`
	CompletionTokens []TimeSeriesPoint `json:"completion_tokens"`
}

// Metrics bundles the full aggregate view returned by GetMetrics.
type Metrics struct {
	Totals     *Stats           `json:"totals"`
	ByProvider []*ProviderStats `json:"by_provider"`
	TimeSeries *TimeSeries      `json:"time_series"`
}

// TimeRange bounds a stats or metrics query. Nil bounds mean unbounded; both
// bounds are inclusive.
type TimeRange struct {
	From *time.Time `json:"from,omitempty"`
	To   *time.Time `json:"to,omitempty"`
}

// Contains reports whether t falls inside the range.
func (r *TimeRange) Contains(t time.Time) bool {
	if r == nil {
		return true
	}
	if r.From != nil && t.Before(*r.From) {
		return false
	}
	if r.To != nil && t.After(*r.To) {
		return false
	}
	return true
}

// TraceQuery defines filter and pagination parameters for trace listings.
// All string filters are case-insensitive substring matches; threshold
// filters are inclusive lower bounds.
type TraceQuery struct {
	RequestID string `json:"request_id,omitempty"` // Substring on request id
	Query     string `json:"query,omitempty"`      // Substring across request id, model, provider
	Model     string `json:"model,omitempty"`
	Provider  string `json:"provider,omitempty"`
	Status    string `json:"status,omitempty"` // "success" or anything else for error

	MinCost     *float64 `json:"min_cost,omitempty"`
	MinDuration *float64 `json:"min_duration,omitempty"` // Milliseconds

	From *time.Time `json:"from,omitempty"` // Inclusive
	To   *time.Time `json:"to,omitempty"`   // Inclusive

	Limit  int `json:"limit,omitempty"`
	Offset int `json:"offset,omitempty"`
}

// TracePage is one page of trace summaries plus the unpaginated total.
type TracePage struct {
	Items  []*TraceSummary `json:"items"`
	Total  int             `json:"total"`
	Limit  int             `json:"limit"`
	Offset int             `json:"offset"`
}
