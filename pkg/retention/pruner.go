package retention

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"mercator-hq/callisto/pkg/event"
)

// Config contains configuration for the retention pruner.
type Config struct {
	// RetentionDays is the number of days to retain events.
	// 0 means keep events forever (no pruning).
	RetentionDays int `json:"retention_days" yaml:"retention_days"`

	// PruneSchedule is a cron expression for scheduled pruning.
	// Example: "0 3 * * *" (daily at 3 AM). Empty disables the scheduler.
	PruneSchedule string `json:"prune_schedule" yaml:"prune_schedule"`
}

// DefaultConfig returns the default retention configuration.
func DefaultConfig() *Config {
	return &Config{
		RetentionDays: 90,
		PruneSchedule: "0 3 * * *",
	}
}

// Pruner deletes events older than the retention period.
type Pruner struct {
	store  event.PrunableStore
	config *Config
	logger *slog.Logger
}

// NewPruner creates a pruner against a store exposing the pruning
// capability. Callers holding a plain event.Store should type-assert first
// and skip retention for backends that cannot prune.
func NewPruner(store event.PrunableStore, config *Config) (*Pruner, error) {
	if store == nil {
		return nil, fmt.Errorf("retention: prunable store is required")
	}
	if config == nil {
		config = DefaultConfig()
	}
	return &Pruner{
		store:  store,
		config: config,
		logger: slog.Default().With("component", "retention"),
	}, nil
}

// Prune deletes events older than the retention period and returns the
// number removed. A retention period of 0 is a no-op.
func (p *Pruner) Prune(ctx context.Context) (int64, error) {
	if p.config.RetentionDays <= 0 {
		p.logger.Debug("retention disabled, skipping prune")
		return 0, nil
	}

	cutoff := time.Now().AddDate(0, 0, -p.config.RetentionDays)

	p.logger.Debug("pruning by age",
		"cutoff_time", cutoff,
		"retention_days", p.config.RetentionDays,
	)

	deleted, err := p.store.DeleteBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("retention prune failed: %w", err)
	}

	if deleted > 0 {
		p.logger.Info("pruned old events",
			"deleted_count", deleted,
			"retention_days", p.config.RetentionDays,
		)
	}
	return deleted, nil
}
