package flowlog

import "context"

// Repository is the port for persisting flow log entries. The coordinator
// depends on this abstraction, not on SQLite directly, so tests can use an
// in-memory implementation.
type Repository interface {
	// Save appends a new log entry. The table is an append-only audit log,
	// not an upsert.
	Save(ctx context.Context, entry *Entry) error
}
