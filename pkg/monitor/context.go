package monitor

import (
	"time"

	"mercator-hq/callisto/pkg/event"
)

// RequestContext carries the identity of one logical request plus the
// monitor's private timing scratch. It is owned by exactly one request and
// must not be shared across concurrent requests.
type RequestContext struct {
	RequestID     string
	SessionID     string
	TransactionID string
	Provider      string
	Model         string

	// Messages holds the request messages for content capture. Only read
	// when capture is enabled, and always scrubbed before persistence.
	Messages []any

	// Params holds model invocation options (temperature, max tokens, ...).
	Params event.Payload

	// Metadata is merged into every emitted event payload. Compose it with
	// the enrichment helpers (WithTiming, WithEnvironment, ...).
	Metadata event.Payload

	// scratch is written by OnRequest and read by the terminal hooks.
	scratch timingScratch
}

// timingScratch captures the counters sampled at request start.
type timingScratch struct {
	started   bool
	startTime time.Time
	cpuMark   time.Duration
	allocMark uint64
}

// Result carries what the instrumented call returned.
type Result struct {
	// Model reported by the provider. Backfills the context's model when
	// the context had none.
	Model string

	// Output is the response content. Captured (scrubbed) only when content
	// capture is enabled.
	Output any

	// Usage holds the provider's raw usage counters. Always recorded as-is
	// under the "usage" payload key.
	Usage event.Payload

	// Cost is the caller-supplied cost. When nil, a best-effort estimate is
	// derived from Usage and the pricing table.
	Cost *float64
}

// ToolCall identifies one tool invocation within a request.
type ToolCall struct {
	ID   string
	Name string
	Args event.Payload
}
