// Package sqlite persists the storefront's local state: the session cart,
// its unanswered order submission and the checkout transition log.
//
// WAL mode is enabled on Open so a CLI reading the log never blocks a
// checkout writing to it.
package sqlite

import (
	"database/sql"
	"fmt"

	// Pure-Go driver: no CGO needed for the CLI binary.
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS cart_lines (
    session_id  TEXT    NOT NULL,
    product_id  TEXT    NOT NULL,
    quantity    INTEGER NOT NULL CHECK (quantity > 0),
    updated_at  TEXT    NOT NULL,
    PRIMARY KEY (session_id, product_id)
);

-- Append-only: one row per checkout state transition.
CREATE TABLE IF NOT EXISTS checkout_transitions (
    id           INTEGER PRIMARY KEY AUTOINCREMENT,
    checkout_id  TEXT    NOT NULL,
    attempt      INTEGER NOT NULL,
    from_state   TEXT    NOT NULL,
    to_state     TEXT    NOT NULL,
    detail       TEXT    NOT NULL DEFAULT '',
    trace_id     TEXT    NOT NULL DEFAULT '',
    span_id      TEXT    NOT NULL DEFAULT '',
    recorded_at  TEXT    NOT NULL
);

-- At most one unanswered order submission per session. items and basis
-- are JSON objects of product id to quantity.
CREATE TABLE IF NOT EXISTS pending_submissions (
    session_id       TEXT    PRIMARY KEY,
    idempotency_key  TEXT    NOT NULL,
    items            TEXT    NOT NULL,
    basis            TEXT    NOT NULL,
    reduced          INTEGER NOT NULL DEFAULT 0,
    updated_at       TEXT    NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_checkout_transitions_checkout_id
    ON checkout_transitions(checkout_id, id);
`

// DB is a handle on the storefront's local database.
type DB struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and applies the schema.
//
//	db, err := sqlite.Open("./storefront.db")
func Open(path string) (*DB, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %q: %w", path, err)
	}
	// SQLite performs best with a single writer connection.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: apply schema: %w", err)
	}
	return &DB{db: db}, nil
}

func (d *DB) Close() error {
	return d.db.Close()
}

// Carts returns the cart repository backed by d.
func (d *DB) Carts() *CartRepository {
	return &CartRepository{db: d.db}
}

// Transitions returns the checkout transition log backed by d.
func (d *DB) Transitions() *TransitionLog {
	return &TransitionLog{db: d.db}
}
