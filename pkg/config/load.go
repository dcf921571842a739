package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Load reads the YAML file at path over the defaults, applies CALLISTO_*
// environment overrides, and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes YAML bytes over the defaults, applies environment
// overrides, and validates.
func Parse(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// applyEnvOverrides applies CALLISTO_SECTION_FIELD environment variables on
// top of file values.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("CALLISTO_LOGGING_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("CALLISTO_LOGGING_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
	if v := os.Getenv("CALLISTO_STORE_BACKEND"); v != "" {
		cfg.Store.Backend = v
	}
	if v := os.Getenv("CALLISTO_STORE_SQLITE_PATH"); v != "" {
		cfg.Store.SQLite.Path = v
	}
	if v := os.Getenv("CALLISTO_STORE_JSONL_PATH"); v != "" {
		cfg.Store.JSONL.Path = v
	}
	if v := os.Getenv("CALLISTO_SERVER_LISTEN_ADDRESS"); v != "" {
		cfg.Server.ListenAddress = v
	}
	if v := os.Getenv("CALLISTO_CAPTURE_CONTENT"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Capture.Content = b
		}
	}
	if v := os.Getenv("CALLISTO_RETENTION_DAYS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Retention.RetentionDays = n
		}
	}
	if v := os.Getenv("CALLISTO_BRIDGE_OTLP_ENDPOINT"); v != "" {
		cfg.Bridge.OTLP.Endpoint = v
		cfg.Bridge.Enabled = true
	}
}

// Validate checks cross-field constraints. Validation failures are
// configuration errors and fail startup.
func Validate(cfg *Config) error {
	switch cfg.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unknown level %q", cfg.Logging.Level)
	}

	switch cfg.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("logging.format: unknown format %q", cfg.Logging.Format)
	}

	switch cfg.Store.Backend {
	case "memory":
	case "sqlite":
		if cfg.Store.SQLite.Path == "" {
			return fmt.Errorf("store.sqlite.path is required for the sqlite backend")
		}
		if cfg.Store.SQLite.Driver != "sqlite3" && cfg.Store.SQLite.Driver != "sqlite" {
			return fmt.Errorf("store.sqlite.driver: unknown driver %q", cfg.Store.SQLite.Driver)
		}
	case "jsonl":
		if cfg.Store.JSONL.Path == "" {
			return fmt.Errorf("store.jsonl.path is required for the jsonl backend")
		}
	default:
		return fmt.Errorf("store.backend: unknown backend %q", cfg.Store.Backend)
	}

	if cfg.Store.BucketWidth < 0 {
		return fmt.Errorf("store.bucket_width must not be negative")
	}
	if cfg.Retention.RetentionDays < 0 {
		return fmt.Errorf("retention.retention_days must not be negative")
	}
	if cfg.Server.ListenAddress == "" {
		return fmt.Errorf("server.listen_address is required")
	}

	// Custom scrub patterns must compile; a typo here should fail startup
	// rather than be silently skipped at scrub time.
	for _, p := range cfg.Capture.Scrubbing.Custom {
		if p.Pattern == "" {
			return fmt.Errorf("capture.scrubbing.custom: pattern %q has no regex", p.Name)
		}
		if _, err := regexp.Compile(p.Pattern); err != nil {
			return fmt.Errorf("capture.scrubbing.custom: pattern %q does not compile: %w", p.Name, err)
		}
	}

	return nil
}
