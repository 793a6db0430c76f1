package session

import (
	"os"
	"path/filepath"
	"testing"

	"storefront-client/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample() *models.Session {
	return &models.Session{
		ID:    "u1",
		Name:  "Ann",
		Email: "ann@example.com",
		Role:  models.RoleCustomer,
		Token: "tok-1",
	}
}

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "user.json")
	fs := NewFileStore(path)

	// No file yet means no session, not an error.
	loaded, err := fs.Load()
	require.NoError(t, err)
	assert.Nil(t, loaded)

	require.NoError(t, fs.Save(sample()))

	loaded, err = fs.Load()
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, "tok-1", loaded.Token)
	assert.Equal(t, "ann@example.com", loaded.Email)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	require.NoError(t, fs.Clear())
	loaded, err = fs.Load()
	require.NoError(t, err)
	assert.Nil(t, loaded)

	// Clearing again is a no-op.
	assert.NoError(t, fs.Clear())
}

func TestManagerRestoresPersistedSession(t *testing.T) {
	path := filepath.Join(t.TempDir(), "user.json")
	require.NoError(t, NewFileStore(path).Save(sample()))

	m, err := NewManager(NewFileStore(path))
	require.NoError(t, err)
	require.NotNil(t, m.Current())
	assert.Equal(t, "u1", m.Current().ID)

	token, ok := m.Token()
	assert.True(t, ok)
	assert.Equal(t, "tok-1", token)
}

func TestManagerDiscardsCorruptRecord(t *testing.T) {
	path := filepath.Join(t.TempDir(), "user.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	m, err := NewManager(NewFileStore(path))
	require.NoError(t, err)
	assert.Nil(t, m.Current())

	// The unreadable file was removed so the next start is clean.
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestManagerSetPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "user.json")
	m, err := NewManager(NewFileStore(path))
	require.NoError(t, err)

	_, ok := m.Token()
	assert.False(t, ok)

	require.NoError(t, m.Set(sample()))
	require.NotNil(t, m.Current())

	reloaded, err := NewManager(NewFileStore(path))
	require.NoError(t, err)
	require.NotNil(t, reloaded.Current())
	assert.Equal(t, "tok-1", reloaded.Current().Token)
}

func TestManagerClearIsSynchronous(t *testing.T) {
	path := filepath.Join(t.TempDir(), "user.json")
	m, err := NewManager(NewFileStore(path))
	require.NoError(t, err)
	require.NoError(t, m.Set(sample()))

	require.NoError(t, m.Clear("logout"))
	assert.Nil(t, m.Current())
	_, ok := m.Token()
	assert.False(t, ok)

	// Clearing with no session is a no-op.
	assert.NoError(t, m.Clear("logout"))

	reloaded, err := NewManager(NewFileStore(path))
	require.NoError(t, err)
	assert.Nil(t, reloaded.Current())
}
