package memory

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gaspar-hub/academic-hub/internal/domain/document"
	"github.com/gaspar-hub/academic-hub/internal/domain/profile"
	"github.com/gaspar-hub/academic-hub/internal/domain/shared"
)

func TestStore(t *testing.T) {
	s := New()
	ctx := context.Background()

	_, found, err := s.Load(ctx)
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, s.Raw())

	d := document.Login(document.Initialize(shared.NewDate(2026, time.April, 14)),
		profile.UserProfile{Name: "Ana", Role: profile.RoleStudent, Grade: "1º Ano Médio"})
	require.NoError(t, s.Save(ctx, d))

	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(s.Raw(), &raw))
	assert.Contains(t, raw, "currentTrimester")

	got, found, err := s.Load(ctx)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "Ana", got.User.Name)

	require.NoError(t, s.Clear(ctx))
	_, found, err = s.Load(ctx)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestStore_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := New().Save(ctx, document.Document{})

	assert.ErrorIs(t, err, context.Canceled)
}
