package dedup

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWritePendingAndMatches(t *testing.T) {
	threadID := "test-thread-1"
	t.Cleanup(func() { _ = Clear(threadID) })

	require.NoError(t, WritePending(threadID, "  fix thing  "))

	ok, err := Matches(threadID, "fix thing")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = Matches(threadID, "something else")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMatches_NoFile(t *testing.T) {
	ok, err := Matches("no-such-thread", "anything")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestClear_Idempotent(t *testing.T) {
	threadID := "test-thread-2"
	require.NoError(t, WritePending(threadID, "x"))
	require.NoError(t, Clear(threadID))
	require.NoError(t, Clear(threadID))

	_, err := os.Stat(PendingPath(threadID))
	assert.True(t, os.IsNotExist(err))
}
