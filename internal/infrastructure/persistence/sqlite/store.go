// Package sqlite persists the application record in a local SQLite database
// (pure Go driver, no cgo). The record is one row of the app_records table.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/gaspar-hub/academic-hub/internal/domain/document"
)

const schema = `
CREATE TABLE IF NOT EXISTS app_records (
	key TEXT PRIMARY KEY,
	body TEXT NOT NULL,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

// Store keeps the record under key in the database at path.
type Store struct {
	db   *sql.DB
	key  string
	path string
}

// Open opens (creating if needed) the database at path.
func Open(ctx context.Context, path, key string) (*Store, error) {
	if path == "" || key == "" {
		return nil, errors.New("sqlite: path and key are required")
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return nil, fmt.Errorf("sqlite: create directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %s: %w", path, err)
	}
	// A single connection serializes writers and keeps ":memory:" databases
	// alive across calls.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: create schema: %w", err)
	}
	return &Store{db: db, key: key, path: path}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Load reads and decodes the record.
func (s *Store) Load(ctx context.Context) (document.Document, bool, error) {
	var body string
	err := s.db.QueryRowContext(ctx, `SELECT body FROM app_records WHERE key = ?`, s.key).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return document.Document{}, false, nil
	}
	if err != nil {
		return document.Document{}, false, fmt.Errorf("sqlite: load: %w", err)
	}

	doc, err := document.Decode([]byte(body))
	if err != nil {
		return document.Document{}, false, fmt.Errorf("sqlite: %w", err)
	}
	return doc, true, nil
}

// Save upserts the record.
func (s *Store) Save(ctx context.Context, doc document.Document) error {
	data, err := document.Encode(doc)
	if err != nil {
		return fmt.Errorf("sqlite: encode: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO app_records (key, body, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET body = excluded.body, updated_at = excluded.updated_at`,
		s.key, string(data))
	if err != nil {
		return fmt.Errorf("sqlite: save: %w", err)
	}
	return nil
}

// Clear deletes the record.
func (s *Store) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM app_records WHERE key = ?`, s.key); err != nil {
		return fmt.Errorf("sqlite: clear: %w", err)
	}
	return nil
}
