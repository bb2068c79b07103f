// Package sqlite implements the repository interfaces using SQLite as the
// storage backend.
//
// modernc.org/sqlite is a pure Go translation of SQLite — no CGo, no C
// toolchain, works everywhere Go works. The database is a single file (or
// ":memory:" in tests).
package sqlite

import (
	"database/sql"
	"fmt"

	// Registers the "sqlite" driver with database/sql.
	_ "modernc.org/sqlite"
)

// DB wraps a sql.DB connection pool and provides the repository methods.
type DB struct {
	conn *sql.DB
}

// New opens the database at dbPath and runs migrations.
//
// WAL mode allows concurrent reads while a write is in flight, which matters
// for a web server. Foreign keys are off by default in SQLite and must be
// switched on per connection — without them the favorites cascade would be
// silently ignored.
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// Pragmas apply per connection and ":memory:" is a distinct database per
	// connection, so the pool must stay at a single connection. SQLite only
	// allows one writer at a time anyway.
	conn.SetMaxOpenConns(1)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: enabling foreign keys: %w", err)
	}

	db := &DB{conn: conn}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the database connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

// migrate creates the schema. CREATE TABLE IF NOT EXISTS keeps it safe to
// run on every start.
func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			username  TEXT PRIMARY KEY,
			password  TEXT NOT NULL,
			image_url TEXT NOT NULL DEFAULT '/static/images/default-pic.png'
		);
	`)
	if err != nil {
		return fmt.Errorf("creating users table: %w", err)
	}

	// ON DELETE CASCADE enforces the ownership invariant at the storage
	// layer: no favorite row can outlive its user.
	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS favorites (
			id               INTEGER PRIMARY KEY AUTOINCREMENT,
			username         TEXT NOT NULL REFERENCES users(username) ON DELETE CASCADE,
			game_id          INTEGER NOT NULL,
			name             TEXT NOT NULL,
			background_image TEXT NOT NULL DEFAULT ''
		);
		CREATE INDEX IF NOT EXISTS idx_favorites_username ON favorites(username);
	`)
	if err != nil {
		return fmt.Errorf("creating favorites table: %w", err)
	}

	return nil
}
