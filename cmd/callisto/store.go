package main

import (
	"fmt"

	"mercator-hq/callisto/pkg/config"
	"mercator-hq/callisto/pkg/event"
	"mercator-hq/callisto/pkg/store/jsonl"
	"mercator-hq/callisto/pkg/store/memory"
	"mercator-hq/callisto/pkg/store/sqlite"
)

// openStore builds the configured persistence backend.
func openStore(cfg *config.StoreConfig) (event.Store, error) {
	switch cfg.Backend {
	case "memory":
		return memory.New(cfg.BucketWidth), nil

	case "sqlite":
		return sqlite.New(&sqlite.Config{
			Path:         cfg.SQLite.Path,
			Driver:       cfg.SQLite.Driver,
			MaxOpenConns: cfg.SQLite.MaxOpenConns,
			MaxIdleConns: cfg.SQLite.MaxIdleConns,
			WALMode:      cfg.SQLite.WALMode,
			BusyTimeout:  cfg.SQLite.BusyTimeout,
			BucketWidth:  cfg.BucketWidth,
		})

	case "jsonl":
		return jsonl.Open(cfg.JSONL.Path, cfg.BucketWidth)

	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}
