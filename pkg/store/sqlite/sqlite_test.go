package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"mercator-hq/callisto/pkg/event"
)

func ptrFloat(f float64) *float64 { return &f }

// newTestStore opens a store in a temp directory using the pure-Go driver,
// so tests run without cgo.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(&Config{
		Path:         filepath.Join(t.TempDir(), "test.db"),
		Driver:       "sqlite",
		MaxOpenConns: 1,
		MaxIdleConns: 1,
		WALMode:      true,
		BusyTimeout:  time.Second,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func endEvent(id, requestID string, at time.Time) *event.Event {
	return &event.Event{
		ID:        id,
		Type:      event.RequestEnd,
		RequestID: requestID,
		Time:      at,
		CreatedAt: at,
		Duration:  ptrFloat(100),
		Cost:      ptrFloat(0.1),
		Provider:  "openai",
		Model:     "gpt-4o",
		Payload:   event.Payload{"usage": map[string]any{"promptTokens": 10, "completionTokens": 5}},
	}
}

// TestStore_SaveAndStats tests the round trip from insert to aggregated
// stats.
func TestStore_SaveAndStats(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	if err := s.SaveEvent(ctx, endEvent("1", "req_1", base)); err != nil {
		t.Fatalf("SaveEvent: %v", err)
	}
	errEvt := endEvent("2", "req_2", base)
	errEvt.Type = event.RequestError
	if err := s.SaveEvent(ctx, errEvt); err != nil {
		t.Fatalf("SaveEvent: %v", err)
	}

	stats, err := s.GetStats(ctx, nil)
	if err != nil {
		t.Fatalf("GetStats: %v", err)
	}
	if stats.TotalRequests != 2 {
		t.Errorf("TotalRequests = %d, want 2", stats.TotalRequests)
	}
	if stats.ErrorRate != 0.5 {
		t.Errorf("ErrorRate = %v, want 0.5", stats.ErrorRate)
	}
}

// TestStore_SaveNil tests the nil-event guard.
func TestStore_SaveNil(t *testing.T) {
	s := newTestStore(t)
	if err := s.SaveEvent(context.Background(), nil); !errors.Is(err, event.ErrNilEvent) {
		t.Errorf("Expected ErrNilEvent, got %v", err)
	}
}

// TestStore_GetEvents tests per-request lookup, insertion-order results and
// sparse field round-tripping.
func TestStore_GetEvents(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	start := &event.Event{
		ID:        "s1",
		Type:      event.RequestStart,
		RequestID: "req_1",
		Time:      base,
		CreatedAt: base,
		Provider:  "openai",
		Model:     "gpt-4o",
		Payload:   event.Payload{},
	}
	if err := s.SaveEvent(ctx, start); err != nil {
		t.Fatalf("SaveEvent: %v", err)
	}
	end := endEvent("e1", "req_1", base.Add(time.Second))
	end.SessionID = "sess_1"
	if err := s.SaveEvent(ctx, end); err != nil {
		t.Fatalf("SaveEvent: %v", err)
	}
	s.SaveEvent(ctx, endEvent("other", "req_2", base))

	got, err := s.GetEvents(ctx, "req_1")
	if err != nil {
		t.Fatalf("GetEvents: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Expected 2 events, got %d", len(got))
	}
	if got[0].ID != "s1" || got[1].ID != "e1" {
		t.Errorf("Order wrong: %s, %s", got[0].ID, got[1].ID)
	}
	if got[0].Duration != nil || got[0].Cost != nil {
		t.Errorf("Start event grew metrics: %+v", got[0])
	}
	if got[1].SessionID != "sess_1" {
		t.Errorf("SessionID lost: %q", got[1].SessionID)
	}
	if got[1].Duration == nil || *got[1].Duration != 100 {
		t.Errorf("Duration round trip failed: %v", got[1].Duration)
	}

	_, err = s.GetEvents(ctx, "")
	var qe *event.QueryError
	if !errors.As(err, &qe) {
		t.Errorf("Expected QueryError for empty request id, got %v", err)
	}
}

// TestStore_ListTraces tests SQL-side filtering, ordering and pagination.
func TestStore_ListTraces(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for i, reqID := range []string{"req_a", "req_b", "req_c"} {
		e := endEvent(reqID+"-evt", reqID, base.Add(time.Duration(i)*time.Minute))
		if err := s.SaveEvent(ctx, e); err != nil {
			t.Fatalf("SaveEvent: %v", err)
		}
	}
	anthropic := endEvent("d-evt", "req_d", base.Add(time.Hour))
	anthropic.Provider = "anthropic"
	anthropic.Model = "claude-3-5-sonnet"
	anthropic.Type = event.RequestError
	s.SaveEvent(ctx, anthropic)

	// Case-insensitive substring provider match.
	page, err := s.ListTraces(ctx, &event.TraceQuery{Provider: "OPENAI"})
	if err != nil {
		t.Fatalf("ListTraces: %v", err)
	}
	if page.Total != 3 {
		t.Errorf("Provider filter total = %d, want 3", page.Total)
	}

	// Status filter.
	page, err = s.ListTraces(ctx, &event.TraceQuery{Status: "error"})
	if err != nil {
		t.Fatalf("ListTraces: %v", err)
	}
	if page.Total != 1 || page.Items[0].RequestID != "req_d" {
		t.Errorf("Status filter = %+v", page)
	}

	// Pagination with total counting the unpaginated set, newest first.
	page, err = s.ListTraces(ctx, &event.TraceQuery{Limit: 2, Offset: 1})
	if err != nil {
		t.Fatalf("ListTraces: %v", err)
	}
	if page.Total != 4 || len(page.Items) != 2 {
		t.Fatalf("Page = total %d, items %d", page.Total, len(page.Items))
	}
	if page.Items[0].RequestID != "req_c" {
		t.Errorf("Expected second-newest first, got %s", page.Items[0].RequestID)
	}

	// Inclusive cost floor.
	page, err = s.ListTraces(ctx, &event.TraceQuery{MinCost: ptrFloat(0.1)})
	if err != nil {
		t.Fatalf("ListTraces: %v", err)
	}
	if page.Total != 4 {
		t.Errorf("MinCost boundary total = %d, want 4", page.Total)
	}
}

// TestStore_ListTraces_Summary tests the summary projection from SQL rows,
// including token extraction from the payload.
func TestStore_ListTraces_Summary(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	if err := s.SaveEvent(ctx, endEvent("1", "req_1", base)); err != nil {
		t.Fatalf("SaveEvent: %v", err)
	}

	page, err := s.ListTraces(ctx, nil)
	if err != nil {
		t.Fatalf("ListTraces: %v", err)
	}
	if len(page.Items) != 1 {
		t.Fatalf("Items = %d", len(page.Items))
	}
	item := page.Items[0]
	if item.PromptTokens != 10 || item.CompletionTokens != 5 {
		t.Errorf("Tokens = %d/%d, want 10/5", item.PromptTokens, item.CompletionTokens)
	}
	if item.Status != event.StatusSuccess {
		t.Errorf("Status = %v", item.Status)
	}
}

// TestStore_DeleteBefore tests strictly-before pruning.
func TestStore_DeleteBefore(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	s.SaveEvent(ctx, endEvent("old", "req_old", base.Add(-time.Hour)))
	s.SaveEvent(ctx, endEvent("edge", "req_edge", base))
	s.SaveEvent(ctx, endEvent("new", "req_new", base.Add(time.Hour)))

	removed, err := s.DeleteBefore(ctx, base)
	if err != nil {
		t.Fatalf("DeleteBefore: %v", err)
	}
	if removed != 1 {
		t.Errorf("Removed = %d, want 1", removed)
	}

	all, err := s.AllEvents(ctx)
	if err != nil {
		t.Fatalf("AllEvents: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("Survivors = %d, want 2", len(all))
	}
}

// TestStore_Reopen tests that data persists across store instances and the
// schema version check accepts an existing database.
func TestStore_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "persist.db")
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	cfg := &Config{Path: path, Driver: "sqlite", MaxOpenConns: 1, MaxIdleConns: 1, BusyTimeout: time.Second}
	s, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := s.SaveEvent(ctx, endEvent("1", "req_1", base)); err != nil {
		t.Fatalf("SaveEvent: %v", err)
	}
	s.Close()

	reopened, err := New(cfg)
	if err != nil {
		t.Fatalf("Reopen: %v", err)
	}
	defer reopened.Close()

	got, err := reopened.GetEvents(ctx, "req_1")
	if err != nil {
		t.Fatalf("GetEvents: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("Persisted events = %d, want 1", len(got))
	}
}
