package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"mercator-hq/callisto/pkg/config"
	"mercator-hq/callisto/pkg/event"
	"mercator-hq/callisto/pkg/store/memory"
)

// minimalStore implements only the base contract, no optional capabilities.
type minimalStore struct{}

func (minimalStore) SaveEvent(ctx context.Context, e *event.Event) error { return nil }
func (minimalStore) GetStats(ctx context.Context, tr *event.TimeRange) (*event.Stats, error) {
	return &event.Stats{}, nil
}
func (minimalStore) Close() error { return nil }

func ptrFloat(f float64) *float64 { return &f }

func newTestHandler(t *testing.T, store event.Store) http.Handler {
	t.Helper()
	s, err := New(&config.ServerConfig{ListenAddress: "127.0.0.1:0"}, store, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s.Handler()
}

func seedStore(t *testing.T) *memory.Store {
	t.Helper()
	store := memory.New(0)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, reqID := range []string{"req_a", "req_b"} {
		e := &event.Event{
			ID:        reqID + "-end",
			Type:      event.RequestEnd,
			RequestID: reqID,
			Time:      base.Add(time.Duration(i) * time.Minute),
			CreatedAt: base,
			Duration:  ptrFloat(100),
			Cost:      ptrFloat(0.1),
			Provider:  "openai",
			Model:     "gpt-4o",
			Payload:   event.Payload{},
		}
		if err := store.SaveEvent(context.Background(), e); err != nil {
			t.Fatalf("SaveEvent: %v", err)
		}
	}
	return store
}

func doGet(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

// TestHandleStats tests the stats endpoint happy path.
func TestHandleStats(t *testing.T) {
	h := newTestHandler(t, seedStore(t))

	rec := doGet(t, h, "/api/stats")
	if rec.Code != http.StatusOK {
		t.Fatalf("Status = %d, body %s", rec.Code, rec.Body)
	}

	var stats event.Stats
	if err := json.Unmarshal(rec.Body.Bytes(), &stats); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if stats.TotalRequests != 2 {
		t.Errorf("TotalRequests = %d, want 2", stats.TotalRequests)
	}
}

// TestHandleStats_BadTimestamp tests timestamp validation.
func TestHandleStats_BadTimestamp(t *testing.T) {
	h := newTestHandler(t, seedStore(t))

	rec := doGet(t, h, "/api/stats?from=yesterday")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Status = %d, want 400", rec.Code)
	}
}

// TestHandleStats_TimestampFormats tests RFC 3339 and Unix millisecond
// bounds.
func TestHandleStats_TimestampFormats(t *testing.T) {
	h := newTestHandler(t, seedStore(t))

	for _, target := range []string{
		"/api/stats?from=2026-03-01T00:00:00Z",
		"/api/stats?from=1767225600000",
	} {
		if rec := doGet(t, h, target); rec.Code != http.StatusOK {
			t.Errorf("%s: status = %d, body %s", target, rec.Code, rec.Body)
		}
	}
}

// TestHandleTraces tests the trace listing endpoint with filters and
// pagination.
func TestHandleTraces(t *testing.T) {
	h := newTestHandler(t, seedStore(t))

	rec := doGet(t, h, "/api/traces?provider=openai&limit=1")
	if rec.Code != http.StatusOK {
		t.Fatalf("Status = %d, body %s", rec.Code, rec.Body)
	}

	var page event.TracePage
	if err := json.Unmarshal(rec.Body.Bytes(), &page); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if page.Total != 2 || len(page.Items) != 1 {
		t.Errorf("Page = total %d, items %d", page.Total, len(page.Items))
	}
	if page.Items[0].RequestID != "req_b" {
		t.Errorf("Expected newest first, got %s", page.Items[0].RequestID)
	}
}

// TestHandleTraces_InvalidPaging tests rejection of negative paging values.
func TestHandleTraces_InvalidPaging(t *testing.T) {
	h := newTestHandler(t, seedStore(t))

	for _, target := range []string{
		"/api/traces?limit=-1",
		"/api/traces?offset=-5",
		"/api/traces?min_cost=abc",
	} {
		if rec := doGet(t, h, target); rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", target, rec.Code)
		}
	}
}

// TestHandleEvents tests the per-request event log endpoint.
func TestHandleEvents(t *testing.T) {
	h := newTestHandler(t, seedStore(t))

	rec := doGet(t, h, "/api/events?request_id=req_a")
	if rec.Code != http.StatusOK {
		t.Fatalf("Status = %d, body %s", rec.Code, rec.Body)
	}
	var events []*event.Event
	if err := json.Unmarshal(rec.Body.Bytes(), &events); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if len(events) != 1 || events[0].RequestID != "req_a" {
		t.Errorf("Events = %+v", events)
	}
}

// TestHandleEvents_MissingRequestID tests that the id is mandatory.
func TestHandleEvents_MissingRequestID(t *testing.T) {
	h := newTestHandler(t, seedStore(t))

	rec := doGet(t, h, "/api/events")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Status = %d, want 400", rec.Code)
	}
}

// TestHandleEvents_UnknownRequest tests that an unknown id yields an empty
// array, not null.
func TestHandleEvents_UnknownRequest(t *testing.T) {
	h := newTestHandler(t, seedStore(t))

	rec := doGet(t, h, "/api/events?request_id=req_nope")
	if rec.Code != http.StatusOK {
		t.Fatalf("Status = %d", rec.Code)
	}
	if got := rec.Body.String(); got != "[]\n" && got != "[]" {
		t.Errorf("Body = %q, want empty array", got)
	}
}

// TestCapabilityFallbacks tests 501 responses for stores without optional
// capabilities.
func TestCapabilityFallbacks(t *testing.T) {
	h := newTestHandler(t, minimalStore{})

	for _, target := range []string{
		"/api/metrics",
		"/api/traces",
		"/api/events?request_id=req_a",
	} {
		if rec := doGet(t, h, target); rec.Code != http.StatusNotImplemented {
			t.Errorf("%s: status = %d, want 501", target, rec.Code)
		}
	}

	// The base stats contract always works.
	if rec := doGet(t, h, "/api/stats"); rec.Code != http.StatusOK {
		t.Errorf("/api/stats: status = %d", rec.Code)
	}
}

// TestHandleMetrics tests the full aggregate endpoint.
func TestHandleMetrics(t *testing.T) {
	h := newTestHandler(t, seedStore(t))

	rec := doGet(t, h, "/api/metrics")
	if rec.Code != http.StatusOK {
		t.Fatalf("Status = %d, body %s", rec.Code, rec.Body)
	}
	var m event.Metrics
	if err := json.Unmarshal(rec.Body.Bytes(), &m); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if m.Totals == nil || m.Totals.TotalRequests != 2 {
		t.Errorf("Metrics = %+v", m)
	}
}

// TestHandleHealth tests the liveness endpoint.
func TestHandleHealth(t *testing.T) {
	h := newTestHandler(t, seedStore(t))

	rec := doGet(t, h, "/healthz")
	if rec.Code != http.StatusOK {
		t.Errorf("Status = %d", rec.Code)
	}
}

// TestNew_Validation tests the constructor guards.
func TestNew_Validation(t *testing.T) {
	if _, err := New(nil, minimalStore{}, nil); err == nil {
		t.Errorf("Expected error for nil config")
	}
	if _, err := New(&config.ServerConfig{}, nil, nil); err == nil {
		t.Errorf("Expected error for nil store")
	}
}
