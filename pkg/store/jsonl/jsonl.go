package jsonl

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"mercator-hq/callisto/pkg/aggregate"
	"mercator-hq/callisto/pkg/event"
	"mercator-hq/callisto/pkg/traces"
)

// maxLineSize bounds a single replayed line. Payloads larger than this are
// treated as corrupt.
const maxLineSize = 16 * 1024 * 1024

// Store is an append-only JSONL event store with an in-memory replay index.
type Store struct {
	mu         sync.RWMutex
	path       string
	file       *os.File
	events     []*event.Event
	aggregator *aggregate.Aggregator
	logger     *slog.Logger
}

var (
	_ event.Store         = (*Store)(nil)
	_ event.MetricsStore  = (*Store)(nil)
	_ event.TraceStore    = (*Store)(nil)
	_ event.EventStore    = (*Store)(nil)
	_ event.PrunableStore = (*Store)(nil)
)

// Open opens (or creates) the event log at path and replays it into memory.
// bucketWidth controls time-series bucketing for GetMetrics; zero means the
// default.
func Open(path string, bucketWidth time.Duration) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, event.NewStorageError("jsonl", "mkdir", err)
	}

	s := &Store{
		path:       path,
		aggregator: aggregate.NewAggregator(bucketWidth),
		logger:     slog.Default().With("component", "store.jsonl"),
	}

	if err := s.replay(); err != nil {
		return nil, err
	}

	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, event.NewStorageError("jsonl", "open", err)
	}
	s.file = file

	s.logger.Info("JSONL store opened", "path", path, "events", len(s.events))
	return s, nil
}

// replay loads existing lines into the in-memory index. Corrupt lines are
// skipped and logged.
func (s *Store) replay() error {
	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return event.NewStorageError("jsonl", "replay", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var e event.Event
		if err := json.Unmarshal(line, &e); err != nil {
			s.logger.Warn("skipping corrupt line", "line", lineNo, "error", err)
			continue
		}
		if e.Payload == nil {
			e.Payload = event.Payload{}
		}
		s.events = append(s.events, &e)
	}
	if err := scanner.Err(); err != nil {
		return event.NewStorageError("jsonl", "replay", err)
	}
	return nil
}

// SaveEvent appends one line and syncs to disk.
func (s *Store) SaveEvent(ctx context.Context, e *event.Event) error {
	if e == nil {
		return event.NewStorageError("jsonl", "save", event.ErrNilEvent)
	}

	line, err := json.Marshal(e)
	if err != nil {
		return event.NewStorageError("jsonl", "marshal", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.file == nil {
		return event.NewStorageError("jsonl", "save", fmt.Errorf("store is closed"))
	}
	if _, err := s.file.Write(append(line, '\n')); err != nil {
		return event.NewStorageError("jsonl", "write", err)
	}
	if err := s.file.Sync(); err != nil {
		return event.NewStorageError("jsonl", "sync", err)
	}

	cp := *e
	cp.Payload = e.Payload.Clone()
	s.events = append(s.events, &cp)
	return nil
}

// GetStats summarizes terminal events in the range.
func (s *Store) GetStats(ctx context.Context, tr *event.TimeRange) (*event.Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return aggregate.ComputeStats(s.events, tr), nil
}

// GetMetrics returns the full aggregate view for the range.
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

// GetEvents returns every event of one request, in log order.
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

// DeleteBefore drops events older than the cutoff and compacts the log by
// rewriting it through a temp file.
func (s *Store) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var kept []*event.Event
	var removed int64
	for _, e := range s.events {
		if e.Time.Before(cutoff) {
			removed++
			continue
		}
		kept = append(kept, e)
	}
	if removed == 0 {
		return 0, nil
	}

	tmp := s.path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
	if err != nil {
		return 0, event.NewStorageError("jsonl", "compact", err)
	}

	w := bufio.NewWriter(f)
	for _, e := range kept {
		line, err := json.Marshal(e)
		if err != nil {
			f.Close()
			os.Remove(tmp)
			return 0, event.NewStorageError("jsonl", "compact", err)
		}
		if _, err := w.Write(append(line, '\n')); err != nil {
			f.Close()
			os.Remove(tmp)
			return 0, event.NewStorageError("jsonl", "compact", err)
		}
	}
	if err := w.Flush(); err != nil {
		f.Close()
		os.Remove(tmp)
		return 0, event.NewStorageError("jsonl", "compact", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return 0, event.NewStorageError("jsonl", "compact", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return 0, event.NewStorageError("jsonl", "compact", err)
	}

	// Swap the compacted file in, then reopen the append handle.
	if s.file != nil {
		s.file.Close()
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return 0, event.NewStorageError("jsonl", "compact", err)
	}
	file, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return 0, event.NewStorageError("jsonl", "reopen", err)
	}
	s.file = file
	s.events = kept

	return removed, nil
}

// AllEvents returns a snapshot of every indexed event, in log order.
func (s *Store) AllEvents(ctx context.Context) ([]*event.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*event.Event, len(s.events))
	copy(out, s.events)
	return out, nil
}

// Len returns the number of indexed events.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.events)
}

// Close closes the append handle. Further saves fail.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	return err
}
