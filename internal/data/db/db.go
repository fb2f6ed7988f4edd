// Package db opens and initializes the tether SQLite database.
package db

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"path/filepath"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

const (
	maxOpenConns = 5
	maxIdleConns = 2
	busyTimeout  = 5000 // milliseconds
)

// DB wraps the SQL database connection.
type DB struct {
	conn *sql.DB
}

// Open creates the database file in dataDir and initializes the schema.
func Open(dataDir string) (*DB, error) {
	dbPath := filepath.Join(dataDir, "tether.db")

	// WAL mode and a busy timeout keep concurrent CLI invocations from
	// tripping over each other.
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(%d)", dbPath, busyTimeout)
	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	conn.SetMaxOpenConns(maxOpenConns)
	conn.SetMaxIdleConns(maxIdleConns)

	db := &DB{conn: conn}

	if err := conn.PingContext(context.Background()); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	if _, err := conn.ExecContext(context.Background(), schemaSQL); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return db, nil
}

// Conn returns the underlying connection.
func (db *DB) Conn() *sql.DB {
	return db.conn
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}
