// Package redis persists the application record as a single Redis string
// value under the storage key.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/gaspar-hub/academic-hub/internal/domain/document"
	"github.com/gaspar-hub/academic-hub/pkg/retry"
)

// ══════════════════════════════════════════════════════════════════════════════
// ERRORS
// ══════════════════════════════════════════════════════════════════════════════

var (
	// ErrConnection is returned when Redis cannot be reached.
	ErrConnection = errors.New("redis: connection failed")

	// ErrKeyEmpty is returned when an empty key is provided.
	ErrKeyEmpty = errors.New("redis: key cannot be empty")
)

// ══════════════════════════════════════════════════════════════════════════════
// CONFIGURATION
// ══════════════════════════════════════════════════════════════════════════════

// Config holds the connection settings.
type Config struct {
	// URL is a redis:// or rediss:// connection string.
	URL string

	// Key names the record.
	Key string

	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// TTL expires the record when positive. Zero keeps it forever.
	TTL time.Duration
}

// DefaultConfig returns defaults for url and key.
func DefaultConfig(url, key string) Config {
	return Config{
		URL:          url,
		Key:          key,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}
}

// options parses the URL and applies the timeouts.
func (c Config) options() (*redis.Options, error) {
	opts, err := redis.ParseURL(c.URL)
	if err != nil {
		return nil, fmt.Errorf("redis: parse url: %w", err)
	}
	if c.DialTimeout > 0 {
		opts.DialTimeout = c.DialTimeout
	}
	if c.ReadTimeout > 0 {
		opts.ReadTimeout = c.ReadTimeout
	}
	if c.WriteTimeout > 0 {
		opts.WriteTimeout = c.WriteTimeout
	}
	return opts, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// RECORD STORE
// ══════════════════════════════════════════════════════════════════════════════

// RecordStore keeps the record under Config.Key.
type RecordStore struct {
	client  *redis.Client
	key     string
	ttl     time.Duration
	retrier *retry.Retrier
}

// NewRecordStore connects and pings Redis. When retrier is nil calls are
// attempted once.
func NewRecordStore(ctx context.Context, cfg Config, retrier *retry.Retrier) (*RecordStore, error) {
	if cfg.Key == "" {
		return nil, ErrKeyEmpty
	}
	opts, err := cfg.options()
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("%w: %v", ErrConnection, err)
	}
	return newRecordStore(client, cfg, retrier), nil
}

func newRecordStore(client *redis.Client, cfg Config, retrier *retry.Retrier) *RecordStore {
	if retrier == nil {
		retrier = retry.New(retry.WithMaxAttempts(1))
	}
	return &RecordStore{client: client, key: cfg.Key, ttl: cfg.TTL, retrier: retrier}
}

// Close closes the client.
func (s *RecordStore) Close() error {
	return s.client.Close()
}

// Load reads and decodes the record.
func (s *RecordStore) Load(ctx context.Context) (document.Document, bool, error) {
	var data []byte
	found := true
	err := s.do(ctx, func(ctx context.Context) error {
		b, err := s.client.Get(ctx, s.key).Bytes()
		if errors.Is(err, redis.Nil) {
			found = false
			return nil
		}
		data = b
		return err
	})
	if err != nil {
		return document.Document{}, false, fmt.Errorf("redis: load record: %w", err)
	}
	if !found {
		return document.Document{}, false, nil
	}

	doc, err := document.Decode(data)
	if err != nil {
		return document.Document{}, false, fmt.Errorf("redis: %w", err)
	}
	return doc, true, nil
}

// Save replaces the record.
func (s *RecordStore) Save(ctx context.Context, doc document.Document) error {
	data, err := document.Encode(doc)
	if err != nil {
		return fmt.Errorf("redis: encode: %w", err)
	}
	err = s.do(ctx, func(ctx context.Context) error {
		return s.client.Set(ctx, s.key, data, s.ttl).Err()
	})
	if err != nil {
		return fmt.Errorf("redis: save record: %w", err)
	}
	return nil
}

// Clear deletes the record.
func (s *RecordStore) Clear(ctx context.Context) error {
	err := s.do(ctx, func(ctx context.Context) error {
		return s.client.Del(ctx, s.key).Err()
	})
	if err != nil {
		return fmt.Errorf("redis: clear record: %w", err)
	}
	return nil
}

// do retries network failures. Context errors and redis.Nil are final.
func (s *RecordStore) do(ctx context.Context, op func(context.Context) error) error {
	return s.retrier.Do(ctx, func(ctx context.Context) error {
		err := op(ctx)
		if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		return retry.Retryable(err)
	})
}
