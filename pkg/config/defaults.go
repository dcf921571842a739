package config

import "time"

// Default values for configuration fields.
const (
	DefaultLogLevel  = "info"
	DefaultLogFormat = "text"

	DefaultStoreBackend = "memory"
	DefaultBucketWidth  = 5 * time.Minute

	DefaultSQLitePath         = "data/callisto.db"
	DefaultSQLiteDriver       = "sqlite3"
	DefaultSQLiteMaxOpenConns = 10
	DefaultSQLiteMaxIdleConns = 5
	DefaultSQLiteWALMode      = true
	DefaultSQLiteBusyTimeout  = 5 * time.Second

	DefaultJSONLPath = "data/events.jsonl"

	DefaultListenAddress   = "127.0.0.1:8484"
	DefaultReadTimeout     = 30 * time.Second
	DefaultWriteTimeout    = 30 * time.Second
	DefaultIdleTimeout     = 120 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultRetentionDays = 90
	DefaultPruneSchedule = "0 3 * * *"

	DefaultMetricsEnabled   = true
	DefaultMetricsNamespace = "callisto"

	DefaultBridgeServiceName = "callisto"
)

// DefaultConfig returns a fully defaulted configuration. Load unmarshals
// file values over it so explicit false/zero values in the file win.
func DefaultConfig() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
		Store: StoreConfig{
			Backend:     DefaultStoreBackend,
			BucketWidth: DefaultBucketWidth,
			SQLite: SQLiteConfig{
				Path:         DefaultSQLitePath,
				Driver:       DefaultSQLiteDriver,
				MaxOpenConns: DefaultSQLiteMaxOpenConns,
				MaxIdleConns: DefaultSQLiteMaxIdleConns,
				WALMode:      DefaultSQLiteWALMode,
				BusyTimeout:  DefaultSQLiteBusyTimeout,
			},
			JSONL: JSONLConfig{
				Path: DefaultJSONLPath,
			},
		},
		Capture: CaptureConfig{
			Content: false,
			Scrubbing: ScrubbingConfig{
				PII:     true,
				Secrets: true,
			},
		},
		Server: ServerConfig{
			ListenAddress:   DefaultListenAddress,
			ReadTimeout:     DefaultReadTimeout,
			WriteTimeout:    DefaultWriteTimeout,
			IdleTimeout:     DefaultIdleTimeout,
			ShutdownTimeout: DefaultShutdownTimeout,
		},
		Retention: RetentionConfig{
			RetentionDays: DefaultRetentionDays,
			PruneSchedule: DefaultPruneSchedule,
		},
		Metrics: MetricsConfig{
			Enabled:   DefaultMetricsEnabled,
			Namespace: DefaultMetricsNamespace,
		},
		Bridge: BridgeConfig{
			Enabled:     false,
			ServiceName: DefaultBridgeServiceName,
		},
	}
}
