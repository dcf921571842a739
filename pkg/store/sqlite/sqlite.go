package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"

	"mercator-hq/callisto/pkg/aggregate"
	"mercator-hq/callisto/pkg/event"
	"mercator-hq/callisto/pkg/traces"
)

// Config contains configuration for the SQLite storage backend.
type Config struct {
	// Path is the database file path.
	Path string

	// Driver selects the SQL driver: "sqlite3" (cgo) or "sqlite" (pure Go).
	// Default: "sqlite3".
	Driver string

	// MaxOpenConns is the maximum number of open connections.
	// Default: 10
	MaxOpenConns int

	// MaxIdleConns is the maximum number of idle connections.
	// Default: 5
	MaxIdleConns int

	// WALMode enables Write-Ahead Logging for better concurrency.
	// Default: true
	WALMode bool

	// BusyTimeout is the duration to wait when the database is locked.
	// Default: 5 seconds
	BusyTimeout time.Duration

	// BucketWidth controls time-series bucketing for GetMetrics. Zero means
	// the aggregation engine default.
	BucketWidth time.Duration
}

// DefaultConfig returns the default SQLite configuration.
func DefaultConfig() *Config {
	return &Config{
		Path:         "data/callisto.db",
		Driver:       "sqlite3",
		MaxOpenConns: 10,
		MaxIdleConns: 5,
		WALMode:      true,
		BusyTimeout:  5 * time.Second,
	}
}

// Store implements the event store contract on SQLite.
type Store struct {
	db         *sql.DB
	config     *Config
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

// New opens (creating if needed) the database at config.Path and initializes
// the schema. Schema or connection problems are configuration errors and
// surface immediately.
func New(config *Config) (*Store, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if config.Driver == "" {
		config.Driver = "sqlite3"
	}

	logger := slog.Default().With("component", "store.sqlite")

	db, err := sql.Open(config.Driver, config.Path)
	if err != nil {
		return nil, event.NewStorageError("sqlite", "open", err)
	}

	db.SetMaxOpenConns(config.MaxOpenConns)
	db.SetMaxIdleConns(config.MaxIdleConns)

	s := &Store{
		db:         db,
		config:     config,
		aggregator: aggregate.NewAggregator(config.BucketWidth),
		logger:     logger,
	}

	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("SQLite store initialized",
		"path", config.Path,
		"driver", config.Driver,
		"wal_mode", config.WALMode,
	)

	return s, nil
}

// initialize sets up the schema and enables WAL mode.
func (s *Store) initialize() error {
	if s.config.WALMode {
		if _, err := s.db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
			return event.NewStorageError("sqlite", "enable_wal", err)
		}
	}

	if s.config.BusyTimeout > 0 {
		busyTimeoutMs := s.config.BusyTimeout.Milliseconds()
		if _, err := s.db.Exec(fmt.Sprintf("PRAGMA busy_timeout=%d;", busyTimeoutMs)); err != nil {
			return event.NewStorageError("sqlite", "set_busy_timeout", err)
		}
	}

	if _, err := s.db.Exec(Schema); err != nil {
		return event.NewStorageError("sqlite", "create_schema", err)
	}

	if _, err := s.db.Exec(InsertSchemaVersion, SchemaVersion); err != nil {
		return event.NewStorageError("sqlite", "insert_schema_version", err)
	}

	var version int
	err := s.db.QueryRow(GetSchemaVersion).Scan(&version)
	if err != nil && err != sql.ErrNoRows {
		return event.NewStorageError("sqlite", "get_schema_version", err)
	}
	if version != SchemaVersion {
		return event.NewStorageError("sqlite", "schema_version_mismatch",
			fmt.Errorf("expected schema version %d, got %d", SchemaVersion, version))
	}

	return nil
}

// SaveEvent persists a single event.
func (s *Store) SaveEvent(ctx context.Context, e *event.Event) error {
	if e == nil {
		return event.NewStorageError("sqlite", "save", event.ErrNilEvent)
	}

	payload, err := json.Marshal(e.Payload)
	if err != nil {
		return event.NewStorageError("sqlite", "marshal_payload", err)
	}

	query := `
		INSERT INTO events (
			id, event_type, request_id, session_id, transaction_id,
			time, created_at,
			duration_ms, cost, cpu_time_ms, allocations,
			provider, model, payload
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = s.db.ExecContext(ctx, query,
		e.ID, string(e.Type), e.RequestID, nullString(e.SessionID), nullString(e.TransactionID),
		e.Time.UTC(), e.CreatedAt.UTC(),
		nullFloat(e.Duration), nullFloat(e.Cost), nullFloat(e.CPUTime), nullInt(e.Allocations),
		e.Provider, e.Model, string(payload),
	)
	if err != nil {
		return event.NewStorageError("sqlite", "save", err)
	}
	return nil
}

// GetStats loads the terminal events in range and delegates to the
// aggregation engine.
func (s *Store) GetStats(ctx context.Context, tr *event.TimeRange) (*event.Stats, error) {
	events, err := s.terminalEvents(ctx, tr)
	if err != nil {
		return nil, err
	}
	return aggregate.ComputeStats(events, nil), nil
}

// GetMetrics loads the terminal events in range and delegates to the
// aggregation engine.
func (s *Store) GetMetrics(ctx context.Context, tr *event.TimeRange) (*event.Metrics, error) {
	events, err := s.terminalEvents(ctx, tr)
	if err != nil {
		return nil, err
	}
	return s.aggregator.ComputeMetrics(events, nil), nil
}

// ListTraces answers trace listings in SQL: filters, ordering, and
// pagination all run in the database.
func (s *Store) ListTraces(ctx context.Context, q *event.TraceQuery) (*event.TracePage, error) {
	if q == nil {
		q = &event.TraceQuery{}
	}

	whereClause, args := buildWhereClause(q)

	var total int
	countQuery := "SELECT COUNT(*) FROM events WHERE " + whereClause
	if err := s.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, event.NewStorageError("sqlite", "count_traces", err)
	}

	sqlQuery := "SELECT " + eventColumns + " FROM events WHERE " + whereClause +
		" ORDER BY time DESC"
	if q.Limit > 0 {
		sqlQuery += fmt.Sprintf(" LIMIT %d", q.Limit)
	}
	if q.Offset > 0 {
		if q.Limit <= 0 {
			sqlQuery += " LIMIT -1"
		}
		sqlQuery += fmt.Sprintf(" OFFSET %d", q.Offset)
	}

	rows, err := s.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, event.NewStorageError("sqlite", "list_traces", err)
	}
	defer rows.Close()

	items := []*event.TraceSummary{}
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, event.NewStorageError("sqlite", "scan", err)
		}
		items = append(items, traces.ToSummary(e))
	}
	if err := rows.Err(); err != nil {
		return nil, event.NewStorageError("sqlite", "list_traces", err)
	}

	return &event.TracePage{
		Items:  items,
		Total:  total,
		Limit:  q.Limit,
		Offset: q.Offset,
	}, nil
}

// GetEvents returns every event of one request, in save order.
func (s *Store) GetEvents(ctx context.Context, requestID string) ([]*event.Event, error) {
	if requestID == "" {
		return nil, event.NewQueryError("request id is required", nil)
	}

	sqlQuery := "SELECT " + eventColumns + " FROM events WHERE request_id = ? ORDER BY rowid"
	rows, err := s.db.QueryContext(ctx, sqlQuery, requestID)
	if err != nil {
		return nil, event.NewStorageError("sqlite", "get_events", err)
	}
	defer rows.Close()

	var out []*event.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, event.NewStorageError("sqlite", "scan", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, event.NewStorageError("sqlite", "get_events", err)
	}
	return out, nil
}

// AllEvents returns every stored event, in save order.
func (s *Store) AllEvents(ctx context.Context) ([]*event.Event, error) {
	sqlQuery := "SELECT " + eventColumns + " FROM events ORDER BY rowid"
	rows, err := s.db.QueryContext(ctx, sqlQuery)
	if err != nil {
		return nil, event.NewStorageError("sqlite", "all_events", err)
	}
	defer rows.Close()

	var out []*event.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, event.NewStorageError("sqlite", "scan", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, event.NewStorageError("sqlite", "all_events", err)
	}
	return out, nil
}

// DeleteBefore removes events older than the cutoff.
func (s *Store) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM events WHERE time < ?", cutoff.UTC())
	if err != nil {
		return 0, event.NewStorageError("sqlite", "delete", err)
	}
	removed, err := res.RowsAffected()
	if err != nil {
		return 0, event.NewStorageError("sqlite", "delete", err)
	}
	return removed, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// eventColumns is the scan order used by scanEvent.
const eventColumns = `id, event_type, request_id, session_id, transaction_id,
	time, created_at, duration_ms, cost, cpu_time_ms, allocations,
	provider, model, payload`

// terminalEvents loads request.end/request.error rows in the range.
func (s *Store) terminalEvents(ctx context.Context, tr *event.TimeRange) ([]*event.Event, error) {
	sqlQuery := "SELECT " + eventColumns + " FROM events WHERE event_type IN (?, ?)"
	args := []any{string(event.RequestEnd), string(event.RequestError)}

	if tr != nil {
		if tr.From != nil {
			sqlQuery += " AND time >= ?"
			args = append(args, tr.From.UTC())
		}
		if tr.To != nil {
			sqlQuery += " AND time <= ?"
			args = append(args, tr.To.UTC())
		}
	}
	sqlQuery += " ORDER BY time ASC"

	rows, err := s.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, event.NewStorageError("sqlite", "query", err)
	}
	defer rows.Close()

	var out []*event.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, event.NewStorageError("sqlite", "scan", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, event.NewStorageError("sqlite", "query", err)
	}
	return out, nil
}

// buildWhereClause translates a trace query into SQL conditions. The
// terminal-event restriction is always present so the clause is never
// empty. LIKE is case-insensitive for ASCII in SQLite, matching the
// in-process filter semantics.
func buildWhereClause(q *event.TraceQuery) (string, []any) {
	conditions := []string{"event_type IN (?, ?)"}
	args := []any{string(event.RequestEnd), string(event.RequestError)}

	if q.Status != "" {
		if q.Status == string(event.StatusSuccess) {
			conditions[0] = "event_type = ?"
			args = []any{string(event.RequestEnd)}
		} else {
			conditions[0] = "event_type = ?"
			args = []any{string(event.RequestError)}
		}
	}

	if q.RequestID != "" {
		conditions = append(conditions, "request_id LIKE ?")
		args = append(args, "%"+q.RequestID+"%")
	}
	if q.Query != "" {
		conditions = append(conditions, "(request_id LIKE ? OR model LIKE ? OR provider LIKE ?)")
		pattern := "%" + q.Query + "%"
		args = append(args, pattern, pattern, pattern)
	}
	if q.Model != "" {
		conditions = append(conditions, "model LIKE ?")
		args = append(args, "%"+q.Model+"%")
	}
	if q.Provider != "" {
		conditions = append(conditions, "provider LIKE ?")
		args = append(args, "%"+q.Provider+"%")
	}

	if q.MinCost != nil {
		conditions = append(conditions, "cost >= ?")
		args = append(args, *q.MinCost)
	}
	if q.MinDuration != nil {
		conditions = append(conditions, "duration_ms >= ?")
		args = append(args, *q.MinDuration)
	}

	if q.From != nil {
		conditions = append(conditions, "time >= ?")
		args = append(args, q.From.UTC())
	}
	if q.To != nil {
		conditions = append(conditions, "time <= ?")
		args = append(args, q.To.UTC())
	}

	return strings.Join(conditions, " AND "), args
}

// scanEvent reads one row into an Event.
func scanEvent(rows *sql.Rows) (*event.Event, error) {
	var (
		e           event.Event
		eventType   string
		sessionID   sql.NullString
		txID        sql.NullString
		duration    sql.NullFloat64
		cost        sql.NullFloat64
		cpuTime     sql.NullFloat64
		allocations sql.NullInt64
		payloadJSON string
	)

	err := rows.Scan(
		&e.ID, &eventType, &e.RequestID, &sessionID, &txID,
		&e.Time, &e.CreatedAt, &duration, &cost, &cpuTime, &allocations,
		&e.Provider, &e.Model, &payloadJSON,
	)
	if err != nil {
		return nil, err
	}

	e.Type = event.Type(eventType)
	if sessionID.Valid {
		e.SessionID = sessionID.String
	}
	if txID.Valid {
		e.TransactionID = txID.String
	}
	if duration.Valid {
		e.Duration = &duration.Float64
	}
	if cost.Valid {
		e.Cost = &cost.Float64
	}
	if cpuTime.Valid {
		e.CPUTime = &cpuTime.Float64
	}
	if allocations.Valid {
		e.Allocations = &allocations.Int64
	}

	e.Payload = event.Payload{}
	if payloadJSON != "" {
		if err := json.Unmarshal([]byte(payloadJSON), &e.Payload); err != nil {
			return nil, fmt.Errorf("failed to unmarshal payload: %w", err)
		}
	}

	return &e, nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullFloat(f *float64) any {
	if f == nil {
		return nil
	}
	return *f
}

func nullInt(i *int64) any {
	if i == nil {
		return nil
	}
	return *i
}
