package instancelock

import (
	"os"
	"strconv"
	"testing"

	"github.com/chatbridge/bridge/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAcquireRelease(t *testing.T) {
	token := "test-token-acquire-release"
	t.Cleanup(func() { _ = os.Remove(Path(token)) })

	lock, err := Acquire(token)
	require.NoError(t, err)
	require.NoError(t, lock.Release())

	_, statErr := os.Stat(Path(token))
	assert.True(t, os.IsNotExist(statErr))
}

func TestAcquire_LiveHolderBlocks(t *testing.T) {
	token := "test-token-live-holder"
	path := Path(token)
	t.Cleanup(func() { _ = os.Remove(path) })

	require.NoError(t, os.WriteFile(path, []byte(strconv.Itoa(os.Getpid())), 0o644))

	_, err := Acquire(token)
	assert.True(t, errors.Is(err, errors.ErrCodeInstanceLocked))
}

func TestAcquire_StaleLockIsRemoved(t *testing.T) {
	token := "test-token-stale"
	path := Path(token)
	t.Cleanup(func() { _ = os.Remove(path) })

	// A PID essentially guaranteed not to be alive.
	require.NoError(t, os.WriteFile(path, []byte("999999"), 0o644))

	lock, err := Acquire(token)
	require.NoError(t, err)
	require.NoError(t, lock.Release())
}
