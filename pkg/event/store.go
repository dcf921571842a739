package event

import (
	"context"
	"time"
)

// Store is the minimal persistence contract the core requires. Backends must
// be safe for concurrent use; ordering of concurrent saves is a backend
// concern, not a core guarantee.
type Store interface {
	// SaveEvent persists a single event. The event is owned by the store
	// after a successful save and must not be mutated by the caller.
	SaveEvent(ctx context.Context, e *Event) error

	// GetStats summarizes terminal events in the given range. A nil range
	// means all events.
	GetStats(ctx context.Context, tr *TimeRange) (*Stats, error)

	// Close releases any resources held by the backend.
	Close() error
}

// MetricsStore is an optional capability for backends that can produce the
// full aggregate view (totals, per-provider rollups, time series).
type MetricsStore interface {
	GetMetrics(ctx context.Context, tr *TimeRange) (*Metrics, error)
}

// TraceStore is an optional capability for backends that support filtered,
// paginated trace listings.
type TraceStore interface {
	ListTraces(ctx context.Context, q *TraceQuery) (*TracePage, error)
}

// EventStore is an optional capability for backends that can return the raw
// event log of a single request.
type EventStore interface {
	GetEvents(ctx context.Context, requestID string) ([]*Event, error)
}

// PrunableStore is an optional capability for backends that support
// retention enforcement. DeleteBefore removes events whose Time is strictly
// before the cutoff and returns the number removed.
type PrunableStore interface {
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
