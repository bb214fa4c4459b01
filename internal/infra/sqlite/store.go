// Package sqlite implements the storefront's relational store on the
// pure-Go modernc.org/sqlite driver.
package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Decimal amounts (price, total) are stored as TEXT in canonical decimal
// string form and parsed with shopspring/decimal on read — REAL would
// reintroduce the float rounding drift the money rules exist to prevent.
const schema = `
CREATE TABLE IF NOT EXISTS products (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    name        TEXT    NOT NULL,
    price       TEXT    NOT NULL,
    stock       INTEGER NOT NULL DEFAULT 0 CHECK (stock >= 0),
    category    TEXT    NOT NULL DEFAULT '',
    description TEXT    NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS cart_items (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    user_id     TEXT    NOT NULL,
    product_id  INTEGER NOT NULL REFERENCES products(id),
    quantity    INTEGER NOT NULL CHECK (quantity >= 1),
    UNIQUE (user_id, product_id)
);

CREATE TABLE IF NOT EXISTS orders (
    id                INTEGER PRIMARY KEY AUTOINCREMENT,
    user_id           TEXT    NOT NULL,
    created_at        TEXT    NOT NULL,
    status            TEXT    NOT NULL,
    total             TEXT    NOT NULL,
    shipping_method   TEXT    NOT NULL,
    shipping_address  TEXT    NOT NULL,
    payment_intent_id TEXT,
    tracking_number   TEXT,
    carrier_data      TEXT,
    notes             TEXT    NOT NULL DEFAULT ''
);

-- One order per payment session: the idempotency guard for verification.
CREATE UNIQUE INDEX IF NOT EXISTS idx_orders_payment_intent
    ON orders(payment_intent_id) WHERE payment_intent_id IS NOT NULL;

CREATE INDEX IF NOT EXISTS idx_orders_user ON orders(user_id, created_at);

CREATE TABLE IF NOT EXISTS order_items (
    id            INTEGER PRIMARY KEY AUTOINCREMENT,
    order_id      INTEGER NOT NULL REFERENCES orders(id),
    product_id    INTEGER NOT NULL,
    product_name  TEXT    NOT NULL,
    product_price TEXT    NOT NULL,
    quantity      INTEGER NOT NULL CHECK (quantity >= 1)
);

CREATE INDEX IF NOT EXISTS idx_order_items_order ON order_items(order_id);

CREATE TABLE IF NOT EXISTS user_addresses (
    id            INTEGER PRIMARY KEY AUTOINCREMENT,
    user_id       TEXT    NOT NULL,
    full_name     TEXT    NOT NULL DEFAULT '',
    address_line1 TEXT    NOT NULL,
    address_line2 TEXT    NOT NULL DEFAULT '',
    city          TEXT    NOT NULL,
    state         TEXT    NOT NULL DEFAULT '',
    postal_code   TEXT    NOT NULL,
    country       TEXT    NOT NULL,
    phone         TEXT    NOT NULL DEFAULT '',
    is_default    INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_user_addresses_user ON user_addresses(user_id);
`

// Store bundles the repository implementations sharing one connection pool.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the SQLite database at path, applies the schema
// and returns the store. WAL mode keeps readers from blocking the writer.
func Open(path string) (*Store, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=foreign_keys(on)&_pragma=busy_timeout(5000)", path)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %q: %w", path, err)
	}

	// Single writer connection; SQLite serialises writes anyway and this
	// avoids SQLITE_BUSY churn under concurrent checkouts.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: apply schema: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// DB exposes the underlying handle for seeding and tests.
func (s *Store) DB() *sql.DB {
	return s.db
}

func formatTime(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.999999999Z")
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("sqlite: parse time %q: %w", s, err)
	}
	return t, nil
}
