package lockfile_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akari-env/akari/internal/lockfile"
)

const lockName = ".akari.lock"

func TestAcquireAndRelease(t *testing.T) {
	dir := t.TempDir()

	lock, err := lockfile.Acquire(dir, lockName)
	require.NoError(t, err)
	assert.NotEmpty(t, lock.Token)
	assert.FileExists(t, filepath.Join(dir, lockName))

	require.NoError(t, lock.Release())
	assert.NoFileExists(t, filepath.Join(dir, lockName))
}

func TestAcquireHeldLock(t *testing.T) {
	dir := t.TempDir()

	lock, err := lockfile.Acquire(dir, lockName)
	require.NoError(t, err)
	defer lock.Release()

	// This process is alive, so its own lock holds.
	_, err = lockfile.Acquire(dir, lockName)
	assert.ErrorIs(t, err, lockfile.ErrLocked)
}

func TestAcquireBreaksStaleLock(t *testing.T) {
	dir := t.TempDir()

	stale, err := json.Marshal(map[string]any{
		"pid":      1 << 30, // far past any real pid
		"token":    "dead",
		"acquired": time.Now().Add(-time.Hour).UTC(),
	})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, lockName), stale, 0644))

	lock, err := lockfile.Acquire(dir, lockName)
	require.NoError(t, err)
	defer lock.Release()
	assert.NotEqual(t, "dead", lock.Token)
}

func TestAcquireBreaksUnreadableLock(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, lockName), []byte("not json"), 0644))

	lock, err := lockfile.Acquire(dir, lockName)
	require.NoError(t, err)
	defer lock.Release()
}

func TestReleaseTwice(t *testing.T) {
	dir := t.TempDir()

	lock, err := lockfile.Acquire(dir, lockName)
	require.NoError(t, err)
	require.NoError(t, lock.Release())
	require.NoError(t, lock.Release())
}
