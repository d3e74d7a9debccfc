package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // register sqlite driver
)

// schemaDDL defines the database schema shared by the SQL backends.
//
// Uses a single kv_entries table keyed by the storage key. The value is kept
// as TEXT so the stored bytes round-trip exactly.
const schemaDDL = `
CREATE TABLE IF NOT EXISTS kv_entries (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL,
    updated_at TEXT NOT NULL
);
`

// timestampLayout is ISO 8601 UTC with millisecond precision.
const timestampLayout = "2006-01-02T15:04:05.000Z"

func utcTimestamp() string {
	return time.Now().UTC().Format(timestampLayout)
}

// SQLiteBackend implements StorageBackend using a SQLite database file.
//
// A connection is opened per call; WAL mode is enabled on every connection.
type SQLiteBackend struct {
	// DBPath is the absolute path to the SQLite database file.
	DBPath string
}

// NewSQLiteBackend creates a new SQLiteBackend and initializes the database schema.
//
// Parent directories are created if they don't exist. Returns an error if
// schema creation fails.
func NewSQLiteBackend(ctx context.Context, dbPath string) (*SQLiteBackend, error) {
	backend := &SQLiteBackend{
		DBPath: dbPath,
	}

	if err := backend.ensureSchema(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return backend, nil
}

// connect opens a new database connection with WAL mode enabled.
func (b *SQLiteBackend) connect(ctx context.Context) (*sql.DB, error) {
	dir := filepath.Dir(b.DBPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", b.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to set WAL mode: %w", err)
	}

	return db, nil
}

func (b *SQLiteBackend) ensureSchema(ctx context.Context) error {
	db, err := b.connect(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	if _, err := db.ExecContext(ctx, schemaDDL); err != nil {
		return fmt.Errorf("failed to execute schema DDL: %w", err)
	}

	return nil
}

// Get returns the value stored under key.
func (b *SQLiteBackend) Get(ctx context.Context, key string) ([]byte, error) {
	db, err := b.connect(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = db.Close() }()

	var value string
	err = db.QueryRowContext(ctx, `SELECT value FROM kv_entries WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query value: %w", err)
	}

	return []byte(value), nil
}

// Put inserts or replaces the value stored under key.
func (b *SQLiteBackend) Put(ctx context.Context, key string, value []byte) error {
	db, err := b.connect(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	_, err = db.ExecContext(ctx,
		`INSERT INTO kv_entries (key, value, updated_at)
		 VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, string(value), utcTimestamp(),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert value: %w", err)
	}

	return nil
}
