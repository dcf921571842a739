package memory

import (
	"context"
	"sync"
	"time"

	"mercator-hq/callisto/pkg/aggregate"
	"mercator-hq/callisto/pkg/event"
	"mercator-hq/callisto/pkg/traces"
)

// Store keeps events in memory, in save order.
type Store struct {
	mu         sync.RWMutex
	events     []*event.Event
	aggregator *aggregate.Aggregator
}

var (
	_ event.Store         = (*Store)(nil)
	_ event.MetricsStore  = (*Store)(nil)
	_ event.TraceStore    = (*Store)(nil)
	_ event.EventStore    = (*Store)(nil)
	_ event.PrunableStore = (*Store)(nil)
)

// New creates an empty in-memory store. bucketWidth controls time-series
// bucketing for GetMetrics; zero means the default.
func New(bucketWidth time.Duration) *Store {
	return &Store{
		aggregator: aggregate.NewAggregator(bucketWidth),
	}
}

// SaveEvent appends a copy of the event.
func (s *Store) SaveEvent(ctx context.Context, e *event.Event) error {
	if e == nil {
		return event.NewStorageError("memory", "save", event.ErrNilEvent)
	}

	// Copy so later caller mutations cannot reach stored state.
	cp := *e
	cp.Payload = e.Payload.Clone()

	s.mu.Lock()
	s.events = append(s.events, &cp)
	s.mu.Unlock()
	return nil
}

// GetStats summarizes terminal events in the range.
func (s *Store) GetStats(ctx context.Context, tr *event.TimeRange) (*event.Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return aggregate.ComputeStats(s.events, tr), nil
}

// GetMetrics returns totals, per-provider rollups, and time series for the
// range.
func (s *Store) GetMetrics(ctx context.Context, tr *event.TimeRange) (*event.Metrics, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.aggregator.ComputeMetrics(s.events, tr), nil
}

// ListTraces returns a filtered, sorted, paginated page of trace summaries.
func (s *Store) ListTraces(ctx context.Context, q *event.TraceQuery) (*event.TracePage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return traces.List(s.events, q), nil
}

// GetEvents returns every event of one request, in save order.
func (s *Store) GetEvents(ctx context.Context, requestID string) ([]*event.Event, error) {
	if requestID == "" {
		return nil, event.NewQueryError("request id is required", nil)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*event.Event
	for _, e := range s.events {
		if e.RequestID == requestID {
			out = append(out, e)
		}
	}
	return out, nil
}

// DeleteBefore removes events older than the cutoff and reports how many
// were dropped.
func (s *Store) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.events[:0]
	var removed int64
	for _, e := range s.events {
		if e.Time.Before(cutoff) {
			removed++
			continue
		}
		kept = append(kept, e)
	}
	// Release dropped tail references.
	for i := len(kept); i < len(s.events); i++ {
		s.events[i] = nil
	}
	s.events = kept
	return removed, nil
}

// AllEvents returns a snapshot of every stored event, in save order.
func (s *Store) AllEvents(ctx context.Context) ([]*event.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*event.Event, len(s.events))
	copy(out, s.events)
	return out, nil
}

// Len returns the number of stored events.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.events)
}

// Close is a no-op for the in-memory backend.
func (s *Store) Close() error {
	return nil
}
