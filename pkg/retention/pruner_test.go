package retention

import (
	"context"
	"errors"
	"testing"
	"time"
)

// fakePrunable records the cutoff it was asked to prune.
type fakePrunable struct {
	cutoff  time.Time
	calls   int
	removed int64
	err     error
}

func (f *fakePrunable) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	f.calls++
	f.cutoff = cutoff
	return f.removed, f.err
}

// TestPruner_Prune tests that the cutoff reflects the retention period.
func TestPruner_Prune(t *testing.T) {
	store := &fakePrunable{removed: 5}
	p, err := NewPruner(store, &Config{RetentionDays: 30})
	if err != nil {
		t.Fatalf("NewPruner: %v", err)
	}

	before := time.Now().AddDate(0, 0, -30)
	deleted, err := p.Prune(context.Background())
	after := time.Now().AddDate(0, 0, -30)
	if err != nil {
		t.Fatalf("Prune: %v", err)
	}
	if deleted != 5 {
		t.Errorf("Deleted = %d, want 5", deleted)
	}
	if store.cutoff.Before(before) || store.cutoff.After(after) {
		t.Errorf("Cutoff %v outside expected window [%v, %v]", store.cutoff, before, after)
	}
}

// TestPruner_DisabledRetention tests that a zero retention period never
// touches the store.
func TestPruner_DisabledRetention(t *testing.T) {
	store := &fakePrunable{}
	p, err := NewPruner(store, &Config{RetentionDays: 0})
	if err != nil {
		t.Fatalf("NewPruner: %v", err)
	}

	deleted, err := p.Prune(context.Background())
	if err != nil {
		t.Fatalf("Prune: %v", err)
	}
	if deleted != 0 || store.calls != 0 {
		t.Errorf("Disabled retention pruned anyway: deleted=%d calls=%d", deleted, store.calls)
	}
}

// TestPruner_StoreError tests error propagation from the store.
func TestPruner_StoreError(t *testing.T) {
	store := &fakePrunable{err: errors.New("locked")}
	p, _ := NewPruner(store, &Config{RetentionDays: 7})

	if _, err := p.Prune(context.Background()); err == nil {
		t.Errorf("Expected error from failing store")
	}
}

// TestNewPruner_RequiresStore tests the constructor guard.
func TestNewPruner_RequiresStore(t *testing.T) {
	if _, err := NewPruner(nil, nil); err == nil {
		t.Errorf("Expected error for nil store")
	}
}

// TestScheduler_InvalidSchedule tests that a malformed cron expression is
// rejected at start.
func TestScheduler_InvalidSchedule(t *testing.T) {
	p, _ := NewPruner(&fakePrunable{}, &Config{RetentionDays: 7, PruneSchedule: "not a cron"})
	s := NewScheduler(p)

	if err := s.Start(context.Background()); err == nil {
		t.Errorf("Expected error for invalid schedule")
	}
	if s.IsRunning() {
		t.Errorf("Scheduler running after failed start")
	}
}

// TestScheduler_EmptySchedule tests that an empty schedule is a no-op.
func TestScheduler_EmptySchedule(t *testing.T) {
	p, _ := NewPruner(&fakePrunable{}, &Config{RetentionDays: 7})
	s := NewScheduler(p)

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if s.IsRunning() {
		t.Errorf("Scheduler should not run without a schedule")
	}
	if s.NextRun() != nil {
		t.Errorf("NextRun should be nil without a schedule")
	}
}

// TestScheduler_StartStop tests the lifecycle with a valid schedule.
func TestScheduler_StartStop(t *testing.T) {
	p, _ := NewPruner(&fakePrunable{}, DefaultConfig())
	s := NewScheduler(p)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := s.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if !s.IsRunning() {
		t.Errorf("Scheduler not running after start")
	}
	if s.NextRun() == nil {
		t.Errorf("NextRun missing with an active schedule")
	}

	s.Stop()
	if s.IsRunning() {
		t.Errorf("Scheduler still running after stop")
	}
}
