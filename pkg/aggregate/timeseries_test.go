package aggregate

import (
	"testing"
	"time"

	"mercator-hq/callisto/pkg/event"
)

func ptrFloat(f float64) *float64 { return &f }

func terminalEvent(id string, t time.Time, typ event.Type, cost, duration float64) *event.Event {
	return &event.Event{
		ID:        id,
		Type:      typ,
		RequestID: "req-" + id,
		Time:      t,
		CreatedAt: t,
		Cost:      ptrFloat(cost),
		Duration:  ptrFloat(duration),
		Provider:  "openai",
		Model:     "gpt-4o",
		Payload:   event.Payload{},
	}
}

// TestBuildTimeSeries_DurationIsMean tests that the duration series reports
// the per-bucket arithmetic mean, never the sum.
func TestBuildTimeSeries_DurationIsMean(t *testing.T) {
	a := NewAggregator(5 * time.Minute)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	events := []*event.Event{
		terminalEvent("1", base, event.RequestEnd, 0.1, 100),
		terminalEvent("2", base.Add(time.Minute), event.RequestEnd, 0.2, 200),
		terminalEvent("3", base.Add(2*time.Minute), event.RequestEnd, 0.3, 300),
	}

	ts := a.BuildTimeSeries(events)
	if len(ts.Duration) != 1 {
		t.Fatalf("Expected 1 duration bucket, got %d", len(ts.Duration))
	}
	if got := ts.Duration[0].Value; got != 200 {
		t.Errorf("Duration bucket = %v, want mean 200", got)
	}
	if got := ts.Cost[0].Value; got < 0.599 || got > 0.601 {
		t.Errorf("Cost bucket = %v, want sum 0.6", got)
	}
	if got := ts.Requests[0].Value; got != 3 {
		t.Errorf("Requests bucket = %v, want 3", got)
	}
}

// TestBuildTimeSeries_SparseAscending tests that empty buckets are omitted
// and points come back ascending by time.
func TestBuildTimeSeries_SparseAscending(t *testing.T) {
	a := NewAggregator(5 * time.Minute)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	// Two buckets an hour apart, added out of order.
	events := []*event.Event{
		terminalEvent("late", base.Add(time.Hour), event.RequestEnd, 0, 50),
		terminalEvent("early", base, event.RequestEnd, 0, 10),
	}

	ts := a.BuildTimeSeries(events)
	if len(ts.Requests) != 2 {
		t.Fatalf("Expected 2 sparse buckets, got %d", len(ts.Requests))
	}
	if !ts.Requests[0].Time.Before(ts.Requests[1].Time) {
		t.Errorf("Buckets not ascending: %v then %v", ts.Requests[0].Time, ts.Requests[1].Time)
	}
}

// TestBuildTimeSeries_IgnoresNonTerminal tests that start and tool events
// never contribute to any series.
func TestBuildTimeSeries_IgnoresNonTerminal(t *testing.T) {
	a := NewAggregator(time.Minute)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	events := []*event.Event{
		{ID: "s", Type: event.RequestStart, Time: base, Payload: event.Payload{}},
		{ID: "t", Type: event.ToolEnd, Time: base, Payload: event.Payload{}},
		terminalEvent("e", base, event.RequestEnd, 0.1, 10),
	}

	ts := a.BuildTimeSeries(events)
	if len(ts.Requests) != 1 || ts.Requests[0].Value != 1 {
		t.Errorf("Expected exactly one terminal event counted, got %+v", ts.Requests)
	}
}

// TestBuildTimeSeries_ErrorCount tests the error series.
func TestBuildTimeSeries_ErrorCount(t *testing.T) {
	a := NewAggregator(time.Minute)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	events := []*event.Event{
		terminalEvent("ok", base, event.RequestEnd, 0, 10),
		terminalEvent("bad", base, event.RequestError, 0, 20),
	}

	ts := a.BuildTimeSeries(events)
	if got := ts.Errors[0].Value; got != 1 {
		t.Errorf("Errors bucket = %v, want 1", got)
	}
	if got := ts.Requests[0].Value; got != 2 {
		t.Errorf("Requests bucket = %v, want 2 (errors are terminal too)", got)
	}
}

// TestBuildProviderStats tests per-(provider, model) grouping and the
// cost-per-1k-tokens derivation.
func TestBuildProviderStats(t *testing.T) {
	a := NewAggregator(0)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	e1 := terminalEvent("1", base, event.RequestEnd, 0.10, 100)
	e1.Payload = event.Payload{"usage": map[string]any{"promptTokens": 300, "completionTokens": 200}}
	e2 := terminalEvent("2", base, event.RequestError, 0.10, 300)
	e2.Payload = event.Payload{"usage": map[string]any{"promptTokens": 300, "completionTokens": 200}}
	e3 := terminalEvent("3", base, event.RequestEnd, 0.5, 50)
	e3.Provider = "anthropic"
	e3.Model = "claude-3-5-sonnet"

	stats := a.BuildProviderStats([]*event.Event{e1, e2, e3})
	if len(stats) != 2 {
		t.Fatalf("Expected 2 groups, got %d", len(stats))
	}

	var openai *event.ProviderStats
	for _, s := range stats {
		if s.Provider == "openai" {
			openai = s
		}
	}
	if openai == nil {
		t.Fatalf("openai group missing")
	}
	if openai.Requests != 2 || openai.Errors != 1 {
		t.Errorf("openai requests/errors = %d/%d, want 2/1", openai.Requests, openai.Errors)
	}
	if openai.AvgDuration != 200 {
		t.Errorf("openai avg duration = %v, want 200", openai.AvgDuration)
	}
	if openai.TotalTokens != 1000 {
		t.Errorf("openai total tokens = %d, want 1000", openai.TotalTokens)
	}
	// 0.20 cost / 1000 tokens * 1000 = 0.20 per 1k
	if openai.CostPer1kTokens < 0.199 || openai.CostPer1kTokens > 0.201 {
		t.Errorf("openai cost/1k = %v, want 0.2", openai.CostPer1kTokens)
	}
}

// TestBuildProviderStats_NoTokens tests that cost-per-1k is zero when no
// tokens were recorded.
func TestBuildProviderStats_NoTokens(t *testing.T) {
	a := NewAggregator(0)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	stats := a.BuildProviderStats([]*event.Event{
		terminalEvent("1", base, event.RequestEnd, 1.0, 100),
	})
	if len(stats) != 1 {
		t.Fatalf("Expected 1 group, got %d", len(stats))
	}
	if stats[0].CostPer1kTokens != 0 {
		t.Errorf("cost/1k = %v, want 0 without tokens", stats[0].CostPer1kTokens)
	}
}
