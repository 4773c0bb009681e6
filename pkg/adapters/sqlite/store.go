// Package sqlite stores the platform preference in a SQLite database.
// It suits single-host deployments that want the preference to survive
// restarts without running Redis.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/aretw0/walkthrough/pkg/domain"
)

// DefaultPath is where the database lives when no path is given.
const DefaultPath = ".walkthrough/preferences.db"

const schema = `CREATE TABLE IF NOT EXISTS preferences (
	key        TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
)`

// PreferenceStore implements ports.PreferenceStore on a SQLite table.
type PreferenceStore struct {
	db   *sql.DB
	path string
}

// Open opens (or creates) the database at path and ensures the table exists.
// The special path ":memory:" keeps everything in memory.
func Open(ctx context.Context, path string) (*PreferenceStore, error) {
	if path == "" {
		path = DefaultPath
	}
	dsn := ":memory:"
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, err)
		}
		dsn = fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", path)
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("cannot open database: %w", err)
	}
	// Each connection to :memory: would see its own database.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: create schema: %v", domain.ErrStorageUnavailable, err)
	}
	return &PreferenceStore{db: db, path: path}, nil
}

// Path returns the database location.
func (s *PreferenceStore) Path() string {
	return s.path
}

// Get returns the value stored under key.
func (s *PreferenceStore) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM preferences WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", domain.ErrPreferenceNotFound
	}
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, err)
	}
	return value, nil
}

// Set persists value under key, replacing any previous value.
func (s *PreferenceStore) Set(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO preferences (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, err)
	}
	return nil
}

// Delete removes key.
func (s *PreferenceStore) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM preferences WHERE key = ?`, key); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, err)
	}
	return nil
}

// Ping checks that the database is reachable.
func (s *PreferenceStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database.
func (s *PreferenceStore) Close() error {
	return s.db.Close()
}
