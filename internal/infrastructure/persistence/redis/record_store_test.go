package redis

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gaspar-hub/academic-hub/internal/domain/document"
	"github.com/gaspar-hub/academic-hub/internal/domain/profile"
	"github.com/gaspar-hub/academic-hub/internal/domain/shared"
	"github.com/gaspar-hub/academic-hub/pkg/retry"
)

func TestConfig_Options(t *testing.T) {
	cfg := DefaultConfig("redis://:secret@localhost:6380/2", "k")
	cfg.ReadTimeout = time.Second

	opts, err := cfg.options()
	require.NoError(t, err)

	assert.Equal(t, "localhost:6380", opts.Addr)
	assert.Equal(t, "secret", opts.Password)
	assert.Equal(t, 2, opts.DB)
	assert.Equal(t, time.Second, opts.ReadTimeout)

	_, err = DefaultConfig("http://nope", "k").options()
	assert.Error(t, err)
}

func TestNewRecordStore_RequiresKey(t *testing.T) {
	_, err := NewRecordStore(context.Background(), DefaultConfig("redis://localhost:6379/0", ""), nil)
	assert.ErrorIs(t, err, ErrKeyEmpty)
}

func TestRecordStore_Integration(t *testing.T) {
	url := os.Getenv("GASPAR_TEST_REDIS_URL")
	if url == "" {
		t.Skip("GASPAR_TEST_REDIS_URL not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	s, err := NewRecordStore(ctx, DefaultConfig(url, "test:"+t.Name()), retry.StorageRetrier())
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = s.Clear(context.Background())
		_ = s.Close()
	})

	_, found, err := s.Load(ctx)
	require.NoError(t, err)
	assert.False(t, found)

	want := document.Login(document.Initialize(shared.NewDate(2026, time.April, 14)),
		profile.UserProfile{Name: "Ana", Role: profile.RoleStudent, Grade: "1º Ano Médio"})
	require.NoError(t, s.Save(ctx, want))

	got, found, err := s.Load(ctx)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, want.User, got.User)

	require.NoError(t, s.Clear(ctx))
	_, found, err = s.Load(ctx)
	require.NoError(t, err)
	assert.False(t, found)
}
