package statestore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryUserRoundTrip(t *testing.T) {
	store := NewMemory()

	_, ok := LoadUser(store)
	assert.False(t, ok)

	u := UserRecord{ID: 42, Username: "foo", DisplayName: "Foo", Points: 100, Level: 1}
	require.NoError(t, SaveUser(store, u))

	got, ok := LoadUser(store)
	require.True(t, ok)
	assert.Equal(t, u, got)

	ClearUser(store)
	_, ok = LoadUser(store)
	assert.False(t, ok)
}

func TestMalformedUserIsDiscarded(t *testing.T) {
	store := NewMemory()
	require.NoError(t, store.Set(KeyUser, []byte("{not json")))

	_, ok := LoadUser(store)
	assert.False(t, ok)

	// The broken entry must be gone, not just ignored.
	_, present := store.Get(KeyUser)
	assert.False(t, present)
}

func TestCounters(t *testing.T) {
	store := NewMemory()
	assert.Equal(t, 0, Counter(store, KeyOnline))

	require.NoError(t, SetCounter(store, KeyOnline, 128))
	assert.Equal(t, 128, Counter(store, KeyOnline))

	require.NoError(t, store.Set(KeyRegistered, []byte("junk")))
	assert.Equal(t, 0, Counter(store, KeyRegistered))
}

func TestFileStoreSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")

	store, err := NewFile(path)
	require.NoError(t, err)

	u := UserRecord{ID: 7, Username: "bar", DisplayName: "Bar", Points: 250, Level: 3, IsAdmin: true}
	require.NoError(t, SaveUser(store, u))
	require.NoError(t, SetCounter(store, KeyRegistered, 1024))

	reopened, err := NewFile(path)
	require.NoError(t, err)

	got, ok := LoadUser(reopened)
	require.True(t, ok)
	assert.Equal(t, u, got)
	assert.Equal(t, 1024, Counter(reopened, KeyRegistered))

	ClearUser(reopened)
	third, err := NewFile(path)
	require.NoError(t, err)
	_, ok = LoadUser(third)
	assert.False(t, ok)
}

func TestFileStoreToleratesCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(path, []byte("not json at all"), 0o600))

	store, err := NewFile(path)
	require.NoError(t, err)
	_, ok := LoadUser(store)
	assert.False(t, ok)
}
