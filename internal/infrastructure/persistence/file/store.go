// Package file persists the application record as a single JSON file.
// Writes go to a temporary file in the same directory that is then renamed
// over the target, so a crash never leaves a half-written record.
package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/gaspar-hub/academic-hub/internal/domain/document"
)

// ErrEmptyPath is returned by New when no path is given.
var ErrEmptyPath = errors.New("file: path cannot be empty")

// Store keeps the record at Path.
type Store struct {
	path string
	mu   sync.Mutex
}

// New creates a store for path. The parent directory is created on the
// first save.
func New(path string) (*Store, error) {
	if path == "" {
		return nil, ErrEmptyPath
	}
	return &Store{path: path}, nil
}

// Path returns the record file.
func (s *Store) Path() string { return s.path }

// Load reads and decodes the record. A missing file is not an error.
func (s *Store) Load(ctx context.Context) (document.Document, bool, error) {
	if err := ctx.Err(); err != nil {
		return document.Document{}, false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return document.Document{}, false, nil
	}
	if err != nil {
		return document.Document{}, false, fmt.Errorf("file: read %s: %w", s.path, err)
	}

	doc, err := document.Decode(data)
	if err != nil {
		return document.Document{}, false, fmt.Errorf("file: %s: %w", s.path, err)
	}
	return doc, true, nil
}

// Save encodes doc and atomically replaces the record.
func (s *Store) Save(ctx context.Context, doc document.Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := document.Encode(doc)
	if err != nil {
		return fmt.Errorf("file: encode: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("file: create %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("file: create temp: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("file: write: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("file: sync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("file: close: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("file: replace %s: %w", s.path, err)
	}
	return nil
}

// Clear deletes the record. Clearing a missing record succeeds.
func (s *Store) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("file: remove %s: %w", s.path, err)
	}
	return nil
}
