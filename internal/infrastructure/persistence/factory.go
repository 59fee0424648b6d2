// Package persistence selects and opens the storage backend named by the
// configuration.
package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/gaspar-hub/academic-hub/config"
	"github.com/gaspar-hub/academic-hub/internal/application/store"
	"github.com/gaspar-hub/academic-hub/internal/infrastructure/persistence/file"
	"github.com/gaspar-hub/academic-hub/internal/infrastructure/persistence/memory"
	"github.com/gaspar-hub/academic-hub/internal/infrastructure/persistence/postgres"
	"github.com/gaspar-hub/academic-hub/internal/infrastructure/persistence/redis"
	"github.com/gaspar-hub/academic-hub/internal/infrastructure/persistence/sqlite"
	"github.com/gaspar-hub/academic-hub/pkg/logger"
	"github.com/gaspar-hub/academic-hub/pkg/retry"
)

// Backend is an opened storage backend.
type Backend struct {
	store.Persistence

	// Driver is the selected driver.
	Driver config.StorageDriver

	closer func() error
}

// Close releases the backend's connections.
func (b *Backend) Close() error {
	if b.closer == nil {
		return nil
	}
	return b.closer()
}

// Open connects the backend selected by cfg.Storage.Driver. Networked
// backends retry transient failures when the storage.save_retry flag is on.
func Open(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Backend, error) {
	if log == nil {
		log = logger.Nop()
	}
	sc := cfg.Storage
	log = log.Named("persistence").With(logger.Driver(string(sc.Driver)))

	var retrier *retry.Retrier
	if cfg.Features.IsEnabled(config.FeatureSaveRetry) {
		retrier = retry.StorageRetrier(retry.WithOnRetry(func(attempt int, err error, delay time.Duration) {
			log.Debug("retrying storage call", logger.Int("attempt", attempt), logger.Duration("delay", delay), logger.Err(err))
		}))
	}

	ctx, cancel := context.WithTimeout(ctx, sc.Timeout)
	defer cancel()

	b := &Backend{Driver: sc.Driver}
	switch sc.Driver {
	case config.DriverFile:
		fs, err := file.New(sc.Path)
		if err != nil {
			return nil, err
		}
		b.Persistence = fs
		log.Debug("using file storage", logger.String("path", sc.Path))

	case config.DriverMemory:
		b.Persistence = memory.New()

	case config.DriverSQLite:
		db, err := sqlite.Open(ctx, sc.Path, sc.Key)
		if err != nil {
			return nil, err
		}
		b.Persistence, b.closer = db, db.Close
		log.Debug("using sqlite storage", logger.String("path", sc.Path))

	case config.DriverPostgres:
		conn, err := postgres.NewConnectionFromURL(ctx, sc.DatabaseURL, postgres.DefaultPoolOptions())
		if err != nil {
			return nil, err
		}
		if err := postgres.NewMigrator(conn).Migrate(ctx); err != nil {
			conn.Close()
			return nil, err
		}
		b.Persistence = postgres.NewRecordStore(conn, sc.Key, retrier)
		b.closer = func() error { conn.Close(); return nil }

	case config.DriverRedis:
		rs, err := redis.NewRecordStore(ctx, redis.DefaultConfig(sc.RedisURL, sc.Key), retrier)
		if err != nil {
			return nil, err
		}
		b.Persistence, b.closer = rs, rs.Close

	default:
		return nil, fmt.Errorf("persistence: unknown driver %q", sc.Driver)
	}

	log.Info("storage opened")
	return b, nil
}
