package postgres

import (
	"context"
	"fmt"

	"github.com/gaspar-hub/academic-hub/internal/domain/document"
	"github.com/gaspar-hub/academic-hub/pkg/retry"
)

// RecordStore keeps the application record under one key of app_records.
type RecordStore struct {
	conn    *Connection
	key     string
	retrier *retry.Retrier
}

// NewRecordStore creates a store for key. When retrier is nil calls are
// attempted once.
func NewRecordStore(conn *Connection, key string, retrier *retry.Retrier) *RecordStore {
	if retrier == nil {
		retrier = retry.New(retry.WithMaxAttempts(1))
	}
	return &RecordStore{conn: conn, key: key, retrier: retrier}
}

// Load reads and decodes the record.
func (s *RecordStore) Load(ctx context.Context) (document.Document, bool, error) {
	var body []byte
	found := true
	err := s.do(ctx, func(ctx context.Context) error {
		err := s.conn.QueryRow(ctx, `SELECT body FROM app_records WHERE key = $1`, s.key).Scan(&body)
		if IsNoRows(err) {
			found = false
			return nil
		}
		return err
	})
	if err != nil {
		return document.Document{}, false, fmt.Errorf("postgres: load record: %w", err)
	}
	if !found {
		return document.Document{}, false, nil
	}

	doc, err := document.Decode(body)
	if err != nil {
		return document.Document{}, false, fmt.Errorf("postgres: %w", err)
	}
	return doc, true, nil
}

// Save upserts the record.
func (s *RecordStore) Save(ctx context.Context, doc document.Document) error {
	data, err := document.Encode(doc)
	if err != nil {
		return fmt.Errorf("postgres: encode: %w", err)
	}
	err = s.do(ctx, func(ctx context.Context) error {
		_, err := s.conn.Exec(ctx, `
			INSERT INTO app_records (key, body) VALUES ($1, $2)
			ON CONFLICT (key) DO UPDATE SET body = EXCLUDED.body, updated_at = NOW()`,
			s.key, data)
		return err
	})
	if err != nil {
		return fmt.Errorf("postgres: save record: %w", err)
	}
	return nil
}

// Clear deletes the record.
func (s *RecordStore) Clear(ctx context.Context) error {
	err := s.do(ctx, func(ctx context.Context) error {
		_, err := s.conn.Exec(ctx, `DELETE FROM app_records WHERE key = $1`, s.key)
		return err
	})
	if err != nil {
		return fmt.Errorf("postgres: clear record: %w", err)
	}
	return nil
}

func (s *RecordStore) do(ctx context.Context, op func(context.Context) error) error {
	return s.retrier.Do(ctx, func(ctx context.Context) error {
		err := op(ctx)
		if err != nil && IsTransient(err) {
			return retry.Retryable(err)
		}
		return err
	})
}
