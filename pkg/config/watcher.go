package config

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// WatcherConfig contains configuration for the config file watcher.
type WatcherConfig struct {
	// DebounceInterval is the quiet period after the last write event
	// before a reload fires (default: 250ms). Editors often emit several
	// events per save.
	DebounceInterval time.Duration
}

// DefaultWatcherConfig returns the default watcher configuration.
func DefaultWatcherConfig() *WatcherConfig {
	return &WatcherConfig{
		DebounceInterval: 250 * time.Millisecond,
	}
}

// Watcher reloads the configuration file on change, debounced.
type Watcher struct {
	path    string
	config  *WatcherConfig
	watcher *fsnotify.Watcher
	logger  *slog.Logger
}

// NewWatcher creates a watcher for the configuration file at path.
func NewWatcher(path string, cfg *WatcherConfig) (*Watcher, error) {
	if cfg == nil {
		cfg = DefaultWatcherConfig()
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	// Watch the directory, not the file: editors replace files via rename
	// and a file-level watch goes stale after the first save.
	if err := fw.Add(filepath.Dir(path)); err != nil {
		fw.Close()
		return nil, fmt.Errorf("failed to watch %q: %w", filepath.Dir(path), err)
	}

	return &Watcher{
		path:    path,
		config:  cfg,
		watcher: fw,
		logger:  slog.Default().With("component", "config.watcher"),
	}, nil
}

// Watch blocks until ctx is cancelled, invoking onReload with the freshly
// loaded configuration after each debounced change. A change that fails to
// load is logged and skipped; the previous configuration stays in effect.
func (w *Watcher) Watch(ctx context.Context, onReload func(cfg *Config)) error {
	defer w.watcher.Close()

	var timer *time.Timer
	var timerCh <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != filepath.Clean(w.path) {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.config.DebounceInterval)
				timerCh = timer.C
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.config.DebounceInterval)
			}

		case <-timerCh:
			timer = nil
			timerCh = nil

			cfg, err := Load(w.path)
			if err != nil {
				w.logger.Error("configuration reload failed, keeping previous",
					"path", w.path,
					"error", err)
				continue
			}
			w.logger.Info("configuration reloaded", "path", w.path)
			onReload(cfg)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("watch error", "error", err)
		}
	}
}
