// Package persistence provides SQLite-based session storage.
package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/tradepost/internal/engine"
	"github.com/talgya/tradepost/internal/simerr"
)

const schemaVersion = 1

// DB wraps a SQLite connection and implements engine.Store.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	dsn := path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)"
	conn, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// One writer at a time; turns are serialized by the connection.
	conn.SetMaxOpenConns(1)

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		seed INTEGER NOT NULL,
		current_day INTEGER NOT NULL,
		cash REAL NOT NULL,
		location_id TEXT NOT NULL,
		status TEXT NOT NULL,
		catalog_digest TEXT NOT NULL,
		created_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS resource_states (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL REFERENCES sessions(id),
		resource_id TEXT NOT NULL,
		current_price REAL NOT NULL,
		base_price REAL NOT NULL,
		available_quantity INTEGER NOT NULL,
		last_refreshed_day INTEGER NOT NULL,
		sine_phase REAL NOT NULL,
		trend_phase REAL NOT NULL,
		price_direction INTEGER NOT NULL,
		price_momentum REAL NOT NULL,
		UNIQUE (session_id, resource_id)
	);

	CREATE TABLE IF NOT EXISTS price_history (
		game_resource_id INTEGER NOT NULL REFERENCES resource_states(id),
		day INTEGER NOT NULL,
		price REAL NOT NULL,
		quantity INTEGER NOT NULL,
		PRIMARY KEY (game_resource_id, day)
	);

	CREATE TABLE IF NOT EXISTS event_instances (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL REFERENCES sessions(id),
		event_id TEXT NOT NULL,
		day_triggered INTEGER NOT NULL,
		days_remaining INTEGER NOT NULL,
		seen INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS buddies (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL REFERENCES sessions(id),
		name TEXT NOT NULL,
		location_id TEXT NOT NULL,
		status TEXT NOT NULL,
		resource_id TEXT NOT NULL DEFAULT '',
		quantity INTEGER NOT NULL DEFAULT 0,
		purchase_price REAL NOT NULL DEFAULT 0,
		target_profit_percent REAL NOT NULL DEFAULT 0,
		last_sale_profit REAL NOT NULL DEFAULT 0,
		last_sale_day INTEGER
	);

	CREATE TABLE IF NOT EXISTS lots (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL REFERENCES sessions(id),
		resource_id TEXT NOT NULL,
		quantity INTEGER NOT NULL CHECK (quantity > 0),
		purchase_price REAL NOT NULL,
		purchase_day INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS journal (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL REFERENCES sessions(id),
		day INTEGER NOT NULL,
		category TEXT NOT NULL,
		message TEXT NOT NULL,
		ref_kind TEXT NOT NULL,
		ref_id TEXT NOT NULL,
		created_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_events_session ON event_instances(session_id);
	CREATE INDEX IF NOT EXISTS idx_buddies_session ON buddies(session_id);
	CREATE INDEX IF NOT EXISTS idx_lots_session_resource ON lots(session_id, resource_id);
	CREATE INDEX IF NOT EXISTS idx_journal_session ON journal(session_id, id);
	`
	if _, err := db.conn.Exec(schema); err != nil {
		return err
	}

	current, err := db.GetMeta("schema_version")
	switch {
	case errors.Is(err, sql.ErrNoRows):
		slog.Info("database initialised", "schema_version", schemaVersion)
		return db.SaveMeta("schema_version", strconv.Itoa(schemaVersion))
	case err != nil:
		return err
	case current != strconv.Itoa(schemaVersion):
		return fmt.Errorf("unsupported schema version %s (want %d)", current, schemaVersion)
	}
	return nil
}

// SaveMeta stores a key-value pair in the metadata table.
func (db *DB) SaveMeta(key, value string) error {
	_, err := db.conn.Exec(
		"INSERT OR REPLACE INTO meta (key, value) VALUES (?, ?)",
		key, value,
	)
	return err
}

// GetMeta retrieves a metadata value.
func (db *DB) GetMeta(key string) (string, error) {
	var value string
	err := db.conn.Get(&value, "SELECT value FROM meta WHERE key = ?", key)
	return value, err
}

// WithTx runs fn in one transaction. fn's error, a panic, or a failed commit
// leaves the database untouched.
func (db *DB) WithTx(ctx context.Context, fn func(ctx context.Context, r engine.Repos) error) (err error) {
	tx, err := db.conn.BeginTxx(ctx, nil)
	if err != nil {
		return simerr.Persistence("begin", err)
	}

	defer func() {
		if p := recover(); p != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				slog.Error("rollback after panic failed", "err", rbErr, "panic", p)
			}
			panic(p)
		}
	}()

	if err := fn(ctx, &repos{tx: tx}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			slog.Error("rollback failed", "err", rbErr, "cause", err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return simerr.Persistence("commit", err)
	}
	return nil
}

var _ engine.Store = (*DB)(nil)
