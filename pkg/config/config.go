package config

import (
	"time"

	"mercator-hq/callisto/pkg/scrub"
)

// Config is the root configuration for the telemetry engine.
type Config struct {
	Logging   LoggingConfig   `json:"logging" yaml:"logging"`
	Store     StoreConfig     `json:"store" yaml:"store"`
	Capture   CaptureConfig   `json:"capture" yaml:"capture"`
	Server    ServerConfig    `json:"server" yaml:"server"`
	Retention RetentionConfig `json:"retention" yaml:"retention"`
	Metrics   MetricsConfig   `json:"metrics" yaml:"metrics"`
	Bridge    BridgeConfig    `json:"bridge" yaml:"bridge"`
}

// LoggingConfig controls the process logger.
type LoggingConfig struct {
	// Level is one of "debug", "info", "warn", "error".
	Level string `json:"level" yaml:"level"`

	// Format is "text" or "json".
	Format string `json:"format" yaml:"format"`
}

// StoreConfig selects and configures the persistence backend.
type StoreConfig struct {
	// Backend is one of "memory", "sqlite", "jsonl".
	Backend string `json:"backend" yaml:"backend"`

	// BucketWidth controls time-series bucketing for metrics queries.
	BucketWidth time.Duration `json:"bucket_width" yaml:"bucket_width"`

	SQLite SQLiteConfig `json:"sqlite" yaml:"sqlite"`
	JSONL  JSONLConfig  `json:"jsonl" yaml:"jsonl"`
}

// SQLiteConfig configures the SQLite backend.
type SQLiteConfig struct {
	Path         string        `json:"path" yaml:"path"`
	Driver       string        `json:"driver" yaml:"driver"` // "sqlite3" or "sqlite"
	MaxOpenConns int           `json:"max_open_conns" yaml:"max_open_conns"`
	MaxIdleConns int           `json:"max_idle_conns" yaml:"max_idle_conns"`
	WALMode      bool          `json:"wal_mode" yaml:"wal_mode"`
	BusyTimeout  time.Duration `json:"busy_timeout" yaml:"busy_timeout"`
}

// JSONLConfig configures the append-only file backend.
type JSONLConfig struct {
	Path string `json:"path" yaml:"path"`
}

// CaptureConfig controls content capture and scrubbing.
type CaptureConfig struct {
	// Content enables capturing prompt/response/tool-result text into
	// event payloads.
	Content bool `json:"content" yaml:"content"`

	Scrubbing ScrubbingConfig `json:"scrubbing" yaml:"scrubbing"`
}

// ScrubbingConfig mirrors the scrubber configuration in file form.
type ScrubbingConfig struct {
	PII          bool            `json:"pii" yaml:"pii"`
	Secrets      bool            `json:"secrets" yaml:"secrets"`
	Mask         string          `json:"mask" yaml:"mask"`
	RedactFields []string        `json:"redact_fields" yaml:"redact_fields"`
	Custom       []CustomPattern `json:"custom" yaml:"custom"`
}

// CustomPattern is one caller-supplied redaction rule.
type CustomPattern struct {
	Name        string `json:"name" yaml:"name"`
	Pattern     string `json:"pattern" yaml:"pattern"`
	Replacement string `json:"replacement" yaml:"replacement"`
}

// ToScrubConfig converts the file form into the scrubber's configuration.
func (c *ScrubbingConfig) ToScrubConfig() *scrub.Config {
	out := &scrub.Config{
		PII:          c.PII,
		Secrets:      c.Secrets,
		Mask:         c.Mask,
		RedactFields: append([]string(nil), c.RedactFields...),
	}
	for _, p := range c.Custom {
		out.Custom = append(out.Custom, scrub.Pattern{
			Name:        p.Name,
			Regex:       p.Pattern,
			Replacement: p.Replacement,
		})
	}
	return out
}

// ServerConfig configures the HTTP query API.
type ServerConfig struct {
	ListenAddress   string        `json:"listen_address" yaml:"listen_address"`
	ReadTimeout     time.Duration `json:"read_timeout" yaml:"read_timeout"`
	WriteTimeout    time.Duration `json:"write_timeout" yaml:"write_timeout"`
	IdleTimeout     time.Duration `json:"idle_timeout" yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout" yaml:"shutdown_timeout"`
}

// RetentionConfig configures age-based pruning.
type RetentionConfig struct {
	RetentionDays int    `json:"retention_days" yaml:"retention_days"`
	PruneSchedule string `json:"prune_schedule" yaml:"prune_schedule"`
}

// MetricsConfig configures the Prometheus exposition.
type MetricsConfig struct {
	Enabled   bool   `json:"enabled" yaml:"enabled"`
	Namespace string `json:"namespace" yaml:"namespace"`
}

// BridgeConfig configures the OpenTelemetry span bridge.
type BridgeConfig struct {
	Enabled     bool   `json:"enabled" yaml:"enabled"`
	ServiceName string `json:"service_name" yaml:"service_name"`

	// OTLP passthrough export, alongside event conversion.
	OTLP OTLPConfig `json:"otlp" yaml:"otlp"`
}

// OTLPConfig configures the optional OTLP gRPC exporter.
type OTLPConfig struct {
	Endpoint string        `json:"endpoint" yaml:"endpoint"`
	Insecure bool          `json:"insecure" yaml:"insecure"`
	Timeout  time.Duration `json:"timeout" yaml:"timeout"`
}
