package registry

import (
	"path/filepath"
	"testing"

	"github.com/chatbridge/bridge/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_PutGetDelete(t *testing.T) {
	dir := t.TempDir()
	s := New(filepath.Join(dir, "registry.json"))

	sess := &session.Session{ThreadID: "1001.0", ChannelID: "C1", Window: "new-1", Status: session.StatusStarting}
	require.NoError(t, s.Put(sess))

	got, err := s.Get("1001.0")
	require.NoError(t, err)
	assert.Equal(t, "new-1", got.Window)

	require.NoError(t, s.Delete("1001.0"))

	got, err = s.Get("1001.0")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestStore_LoadMissingFile(t *testing.T) {
	dir := t.TempDir()
	s := New(filepath.Join(dir, "does-not-exist.json"))

	sessions, err := s.Load()
	require.NoError(t, err)
	assert.Empty(t, sessions)
}

func TestStore_UpdateIsAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "registry.json")
	s := New(path)

	err := s.Update(func(sessions map[string]*session.Session) error {
		sessions["a"] = &session.Session{ThreadID: "a", Status: session.StatusActive}
		sessions["b"] = &session.Session{ThreadID: "b", Status: session.StatusIdle}
		return nil
	})
	require.NoError(t, err)

	sessions, err := s.Load()
	require.NoError(t, err)
	assert.Len(t, sessions, 2)
	assert.Equal(t, session.StatusActive, sessions["a"].Status)
}

func TestStore_UpdateFnErrorAbortsWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "registry.json")
	s := New(path)

	require.NoError(t, s.Put(&session.Session{ThreadID: "a", Status: session.StatusActive}))

	err := s.Update(func(sessions map[string]*session.Session) error {
		sessions["a"].Status = session.StatusTerminated
		return assert.AnError
	})
	assert.Error(t, err)

	sessions, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, session.StatusActive, sessions["a"].Status)
}
