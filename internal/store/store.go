// Package store provides the SQLite-backed document store for person
// and schedule records. Relationship collections (parents, spouses,
// children) are kept as JSON array columns inside the person row, so
// every person is one self-contained document.
package store

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS persons (
	id          TEXT PRIMARY KEY,
	first_name  TEXT NOT NULL DEFAULT '',
	last_name   TEXT NOT NULL DEFAULT '',
	middle_name TEXT NOT NULL DEFAULT '',
	gender      TEXT NOT NULL,
	birth_date  DATETIME,
	death_date  DATETIME,
	photo       TEXT NOT NULL DEFAULT '',
	comments    TEXT NOT NULL DEFAULT '',
	parents     TEXT NOT NULL DEFAULT '[]',
	spouses     TEXT NOT NULL DEFAULT '[]',
	children    TEXT NOT NULL DEFAULT '[]',
	created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_persons_name   ON persons(last_name, first_name);
CREATE INDEX IF NOT EXISTS idx_persons_gender ON persons(gender);
CREATE INDEX IF NOT EXISTS idx_persons_birth  ON persons(birth_date);

CREATE TABLE IF NOT EXISTS schedules (
	id         TEXT PRIMARY KEY,
	title      TEXT NOT NULL DEFAULT '',
	date       TEXT NOT NULL DEFAULT '',
	time       TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

// querier is satisfied by both *sql.DB and *sql.Tx so row operations
// can run standalone or inside a transaction.
type querier interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

// DB wraps a sql.DB with store-specific operations.
type DB struct {
	conn *sql.DB
}

// Tx exposes row operations bound to one transaction. Multi-document
// relationship mutations run entirely inside a Tx so that partial
// failures roll back instead of leaving asymmetric links.
type Tx struct {
	tx *sql.Tx
}

// Open opens (or creates) the SQLite database and applies the schema.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("store: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: ping: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: apply schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Update runs fn inside a transaction, committing on nil and rolling
// back on error.
func (db *DB) Update(fn func(tx *Tx) error) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	if err := fn(&Tx{tx: tx}); err != nil {
		return err
	}
	return tx.Commit()
}
