package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gaspar-hub/academic-hub/internal/domain/document"
	"github.com/gaspar-hub/academic-hub/internal/domain/profile"
	"github.com/gaspar-hub/academic-hub/internal/domain/shared"
)

func sample() document.Document {
	d := document.Initialize(shared.NewDate(2026, time.April, 14))
	d = document.Login(d, profile.UserProfile{Name: "Ana", Role: profile.RoleStudent, Grade: "1º Ano Médio"})
	d = document.AddSubject(d, "bio", "Biologia")
	return d
}

func TestNew_EmptyPath(t *testing.T) {
	_, err := New("")
	assert.ErrorIs(t, err, ErrEmptyPath)
}

func TestStore_RoundTrip(t *testing.T) {
	s, err := New(filepath.Join(t.TempDir(), "nested", "gaspar_app_v2.json"))
	require.NoError(t, err)
	ctx := context.Background()

	_, found, err := s.Load(ctx)
	require.NoError(t, err)
	assert.False(t, found)

	want := sample()
	require.NoError(t, s.Save(ctx, want))

	got, found, err := s.Load(ctx)
	require.NoError(t, err)
	require.True(t, found)
	if diff := cmp.Diff(want, got, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}

	entries, err := os.ReadDir(filepath.Dir(s.Path()))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")
}

func TestStore_Clear(t *testing.T) {
	s, err := New(filepath.Join(t.TempDir(), "record.json"))
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, s.Clear(ctx), "clearing a missing record succeeds")
	require.NoError(t, s.Save(ctx, sample()))
	require.NoError(t, s.Clear(ctx))

	_, found, err := s.Load(ctx)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestStore_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "record.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))
	s, err := New(path)
	require.NoError(t, err)

	_, _, err = s.Load(context.Background())

	assert.ErrorIs(t, err, shared.ErrMalformedDocument)
}
