package sqlite

// SchemaVersion is the current database schema version.
const SchemaVersion = 1

// Schema contains the SQL statements to create the events database schema.
const Schema = `
-- Telemetry events table
CREATE TABLE IF NOT EXISTS events (
    id TEXT PRIMARY KEY,
    event_type TEXT NOT NULL,
    request_id TEXT NOT NULL,
    session_id TEXT,
    transaction_id TEXT,

    -- Timestamps
    time TIMESTAMP NOT NULL,
    created_at TIMESTAMP NOT NULL,

    -- Terminal metrics (NULL means unknown, not zero)
    duration_ms REAL,
    cost REAL,
    cpu_time_ms REAL,
    allocations INTEGER,

    -- Attribution
    provider TEXT NOT NULL,
    model TEXT NOT NULL,

    -- Open-ended detail, serialized as JSON
    payload TEXT NOT NULL
);

-- Schema version table
CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY
);

-- Indexes for the dashboard query paths
CREATE INDEX IF NOT EXISTS idx_events_request_id ON events(request_id);
CREATE INDEX IF NOT EXISTS idx_events_time ON events(time);
CREATE INDEX IF NOT EXISTS idx_events_event_type ON events(event_type);
CREATE INDEX IF NOT EXISTS idx_events_provider ON events(provider);
CREATE INDEX IF NOT EXISTS idx_events_model ON events(model);
`

// InsertSchemaVersion records the schema version after creation.
const InsertSchemaVersion = `INSERT OR IGNORE INTO schema_version (version) VALUES (?)`

// GetSchemaVersion reads back the recorded schema version.
const GetSchemaVersion = `SELECT version FROM schema_version LIMIT 1`
