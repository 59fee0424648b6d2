// Package memory keeps the application record in process memory. It holds
// the encoded form so that loads go through the same decoding as the
// durable backends.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/gaspar-hub/academic-hub/internal/domain/document"
)

// Store is an in-memory record.
type Store struct {
	mu   sync.RWMutex
	data []byte
}

// New returns an empty store.
func New() *Store {
	return &Store{}
}

// Load decodes the held record.
func (s *Store) Load(ctx context.Context) (document.Document, bool, error) {
	if err := ctx.Err(); err != nil {
		return document.Document{}, false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.data == nil {
		return document.Document{}, false, nil
	}
	doc, err := document.Decode(s.data)
	if err != nil {
		return document.Document{}, false, fmt.Errorf("memory: %w", err)
	}
	return doc, true, nil
}

// Save replaces the held record.
func (s *Store) Save(ctx context.Context, doc document.Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := document.Encode(doc)
	if err != nil {
		return fmt.Errorf("memory: encode: %w", err)
	}
	s.mu.Lock()
	s.data = data
	s.mu.Unlock()
	return nil
}

// Clear drops the held record.
func (s *Store) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	s.data = nil
	s.mu.Unlock()
	return nil
}

// Raw returns a copy of the encoded record, or nil.
func (s *Store) Raw() []byte {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.data == nil {
		return nil
	}
	return append([]byte(nil), s.data...)
}
