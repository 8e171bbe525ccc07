// Package sqlite provides the SQLite-backed primary store.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"github.com/five82/quicklinks/internal/store"
)

var _ store.Store = (*Store)(nil)

// Store implements store.Store on a single-table SQLite database.
type Store struct {
	db     *sql.DB
	dbPath string
	mu     sync.RWMutex
}

// Open creates the parent directory, opens the database at dbPath, and applies
// migrations.
func Open(dbPath string) (*Store, error) {
	if dbPath == "" {
		return nil, fmt.Errorf("database path is empty")
	}
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("could not create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath+"?_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("could not open database: %w", err)
	}

	// SQLite works best with a single connection
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("could not ping database: %w", err)
	}
	if err := applyMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("could not run migrations: %w", err)
	}

	return &Store{db: db, dbPath: dbPath}, nil
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.dbPath
}

// Close closes the database.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("could not close database: %w", err)
	}
	s.db = nil
	return nil
}

func (s *Store) handle() (*sql.DB, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database is closed")
	}
	return s.db, nil
}

// Get implements store.Store.
func (s *Store) Get(ctx context.Context, keys ...string) (store.Values, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	db, err := s.handle()
	if err != nil {
		return nil, err
	}

	out := make(store.Values, len(keys))
	for _, key := range keys {
		var value string
		err := db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
		if err == sql.ErrNoRows {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", key, err)
		}
		out[key] = json.RawMessage(value)
	}
	return out, nil
}

// Set implements store.Store. All values are applied in one transaction; a
// nil value deletes its key.
func (s *Store) Set(ctx context.Context, values store.Values) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	db, err := s.handle()
	if err != nil {
		return err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin write: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for key, value := range values {
		if value == nil {
			if _, err := tx.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, key); err != nil {
				return fmt.Errorf("delete %s: %w", key, err)
			}
			continue
		}
		if !json.Valid(value) {
			return fmt.Errorf("write %s: value is not valid json", key)
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO kv (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
			ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
		`, key, string(value)); err != nil {
			return fmt.Errorf("write %s: %w", key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit write: %w", err)
	}
	return nil
}
