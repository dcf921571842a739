// Package config loads and validates the engine configuration from YAML.
//
// Loading applies defaults first, then file values, then CALLISTO_*
// environment overrides, and validates the result. A debounced file
// watcher can reload the configuration at runtime:
//
//	cfg, err := config.Load("callisto.yaml")
//	...
//	w, _ := config.NewWatcher("callisto.yaml", nil)
//	go w.Watch(ctx, func(next *config.Config) {
//	    // swap in the new configuration
//	})
package config
