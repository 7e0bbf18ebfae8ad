package session

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_CurrentUserEmailRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "user_data.yaml")
	s := NewStore(path)

	_, ok, err := s.CurrentUserEmail()
	require.NoError(t, err)
	assert.False(t, ok, "fresh store has no signed-in user")

	require.NoError(t, s.SetCurrentUserEmail("a@x.com"))
	email, ok, err := s.CurrentUserEmail()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "a@x.com", email)

	// A second store over the same file sees the value.
	email, ok, err = NewStore(path).CurrentUserEmail()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "a@x.com", email)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "current_user_email: a@x.com")
}

func TestStore_SetOverwritesAndClear(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "prefs.yaml"))

	require.NoError(t, s.SetCurrentUserEmail("a@x.com"))
	require.NoError(t, s.SetCurrentUserEmail("b@y.com"))
	email, _, err := s.CurrentUserEmail()
	require.NoError(t, err)
	assert.Equal(t, "b@y.com", email)

	require.NoError(t, s.Set("theme", "dark"))
	require.NoError(t, s.ClearCurrentUserEmail())
	_, ok, err := s.CurrentUserEmail()
	require.NoError(t, err)
	assert.False(t, ok)

	theme, ok, err := s.Get("theme")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "dark", theme)

	require.NoError(t, s.ClearCurrentUserEmail())
}

func TestStore_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.yaml")
	require.NoError(t, os.WriteFile(path, []byte("- a\n- b\n"), 0o600))

	_, _, err := NewStore(path).CurrentUserEmail()
	assert.Error(t, err)
}

func TestNewStore_DefaultPath(t *testing.T) {
	assert.Equal(t, DefaultPath, NewStore("").Path())
}
