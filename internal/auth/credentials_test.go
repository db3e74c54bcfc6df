package auth

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "token")

	store, err := NewFileStore(path)
	require.NoError(t, err)
	assert.Empty(t, store.Token())

	require.NoError(t, store.SetToken("abc"))
	assert.Equal(t, "abc", store.Token())

	reloaded, err := NewFileStore(path)
	require.NoError(t, err)
	assert.Equal(t, "abc", reloaded.Token())

	require.NoError(t, reloaded.ClearToken())
	assert.Empty(t, reloaded.Token())
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	// clearing twice is fine
	require.NoError(t, reloaded.ClearToken())
}

func TestFileStoreEmptySetTokenKeepsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token")
	store, err := NewFileStore(path)
	require.NoError(t, err)
	require.NoError(t, store.SetToken("abc"))

	require.NoError(t, store.SetToken(""))
	assert.Empty(t, store.Token())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "abc", string(data))
}

func TestFileStoreRole(t *testing.T) {
	store, err := NewFileStore(filepath.Join(t.TempDir(), "token"))
	require.NoError(t, err)

	store.SetRole("ADMIN")
	assert.Equal(t, "ADMIN", store.Role())
	store.ClearRole()
	assert.Empty(t, store.Role())
}

func TestStatic(t *testing.T) {
	assert.Equal(t, "t", Static("t").Token())
}
