// Package sqlite provides a SQLite-backed implementation of
// flowlog.Repository.
//
// WAL mode is enabled on Open so readers never block writers — the pipeline
// goroutine writes while an operator query may be reading.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/quanb-duy/custom-ecommerce-website/internal/coordinator/flowlog"

	// Register the pure-Go SQLite driver; no CGO needed in Docker builds.
	_ "modernc.org/sqlite"
)

// schema is the DDL executed once on startup. The table is append-only:
// each row is an immutable event in a pipeline run's lifecycle.
const schema = `
CREATE TABLE IF NOT EXISTS checkout_flow_logs (
    id              INTEGER PRIMARY KEY AUTOINCREMENT,

    -- Business identifier of the pipeline run.
    -- Not UNIQUE because multiple rows exist per run (one per transition).
    flow_id         TEXT        NOT NULL,

    status          TEXT        NOT NULL,

    -- Name of the step that just executed (e.g. "Reserve_Stock_Step").
    current_step    TEXT        NOT NULL DEFAULT '',

    -- JSON input that started the run. Written once on STARTED, NULL after.
    payload         TEXT,

    -- JSON array of error strings accumulated during failure/compensation.
    error_messages  TEXT        NOT NULL DEFAULT '[]',

    -- W3C trace_id / span_id of the active OTel span.
    trace_id        TEXT        NOT NULL DEFAULT '',
    span_id         TEXT        NOT NULL DEFAULT '',

    -- RFC3339 stored as TEXT, SQLite idiom.
    updated_at      TEXT        NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_flow_logs_flow_id ON checkout_flow_logs(flow_id, updated_at);
CREATE INDEX IF NOT EXISTS idx_flow_logs_trace_id ON checkout_flow_logs(trace_id);
`

// Repository is the SQLite implementation of flowlog.Repository.
type Repository struct {
	db *sql.DB
}

// Open opens (or creates) the SQLite database at the given path and applies
// the schema.
func Open(path string) (*Repository, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=foreign_keys(on)&_pragma=busy_timeout(5000)", path)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("flowlog sqlite: open %q: %w", path, err)
	}

	// SQLite performs best with a single writer connection.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("flowlog sqlite: apply schema: %w", err)
	}

	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	return r.db.Close()
}

// Save inserts a new flow log entry. Safe to call concurrently.
func (r *Repository) Save(ctx context.Context, entry *flowlog.Entry) error {
	const q = `
		INSERT INTO checkout_flow_logs
			(flow_id, status, current_step, payload, error_messages, trace_id, span_id, updated_at)
		VALUES
			(?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, q,
		entry.FlowID,
		string(entry.Status),
		entry.CurrentStep,
		nullableString(entry.Payload),
		entry.ErrorMessages,
		entry.TraceID,
		entry.SpanID,
		entry.UpdatedAt.UTC().Format("2006-01-02T15:04:05.999999999Z"),
	)
	if err != nil {
		return fmt.Errorf("flowlog sqlite: save entry for %q: %w", entry.FlowID, err)
	}
	return nil
}

// GetLatest returns the most recent log entry for a flow. Useful for an
// operator status query or recovery on restart.
func (r *Repository) GetLatest(ctx context.Context, flowID string) (*flowlog.Entry, error) {
	const q = `
		SELECT flow_id, status, current_step, COALESCE(payload,''), error_messages,
		       trace_id, span_id, updated_at
		FROM   checkout_flow_logs
		WHERE  flow_id = ?
		ORDER  BY updated_at DESC, id DESC
		LIMIT  1`

	row := r.db.QueryRowContext(ctx, q, flowID)

	var entry flowlog.Entry
	var updatedAt string
	err := row.Scan(
		&entry.FlowID,
		&entry.Status,
		&entry.CurrentStep,
		&entry.Payload,
		&entry.ErrorMessages,
		&entry.TraceID,
		&entry.SpanID,
		&updatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("flowlog sqlite: flow %q not found", flowID)
	}
	if err != nil {
		return nil, fmt.Errorf("flowlog sqlite: get latest for %q: %w", flowID, err)
	}

	entry.UpdatedAt, err = parseRFC3339(updatedAt)
	if err != nil {
		return nil, err
	}

	return &entry, nil
}

// nullableString returns nil for empty strings so SQLite stores NULL instead
// of an empty TEXT on non-STARTED rows.
func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
