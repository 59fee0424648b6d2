package persistence

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gaspar-hub/academic-hub/config"
	"github.com/gaspar-hub/academic-hub/internal/infrastructure/persistence/file"
	"github.com/gaspar-hub/academic-hub/internal/infrastructure/persistence/memory"
	"github.com/gaspar-hub/academic-hub/internal/infrastructure/persistence/sqlite"
)

func testConfig(driver config.StorageDriver, path string) *config.Config {
	cfg := config.Default()
	cfg.Storage.Driver = driver
	cfg.Storage.Path = path
	cfg.Features = config.LoadFeatureFlags(nil)
	return cfg
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		driver config.StorageDriver
		path   string
		check  func(t *testing.T, b *Backend)
	}{
		{config.DriverFile, filepath.Join(dir, "a.json"), func(t *testing.T, b *Backend) {
			assert.IsType(t, &file.Store{}, b.Persistence)
		}},
		{config.DriverMemory, "", func(t *testing.T, b *Backend) {
			assert.IsType(t, &memory.Store{}, b.Persistence)
		}},
		{config.DriverSQLite, filepath.Join(dir, "a.db"), func(t *testing.T, b *Backend) {
			assert.IsType(t, &sqlite.Store{}, b.Persistence)
		}},
	}

	for _, tt := range tests {
		t.Run(string(tt.driver), func(t *testing.T) {
			b, err := Open(context.Background(), testConfig(tt.driver, tt.path), nil)
			require.NoError(t, err)
			t.Cleanup(func() { _ = b.Close() })

			assert.Equal(t, tt.driver, b.Driver)
			tt.check(t, b)

			_, found, err := b.Load(context.Background())
			require.NoError(t, err)
			assert.False(t, found)
		})
	}
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), testConfig("s3", ""), nil)
	assert.ErrorContains(t, err, `unknown driver "s3"`)
}
