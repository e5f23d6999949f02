package botcmd

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/chatbridge/bridge/config"
	"github.com/chatbridge/bridge/pkg/chat"
	"github.com/chatbridge/bridge/pkg/registry"
	"github.com/chatbridge/bridge/pkg/session"
	"github.com/chatbridge/bridge/pkg/timing"
	"github.com/chatbridge/bridge/pkg/tmux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHandler(t *testing.T) (*Handler, *registry.Store, *session.Manager, *tmux.FakeAdapter) {
	dir := t.TempDir()
	reg := registry.New(filepath.Join(dir, "registry.json"))
	fake := tmux.NewFakeAdapter()
	sdk := chat.NewFake()
	mgr := session.New(reg, fake, sdk, timing.Zero(), config.MultiSession{MaxConcurrent: 5, TmuxSession: "claude", AssistantCommand: "claude"})
	h := New(reg, mgr, fake, "claude")
	return h, reg, mgr, fake
}

func TestSessions_Empty(t *testing.T) {
	h, _, _, _ := newTestHandler(t)
	assert.Equal(t, "No active sessions.", h.sessions(context.Background()))
}

func TestSessions_ListsActive(t *testing.T) {
	h, reg, _, _ := newTestHandler(t)
	require.NoError(t, reg.Put(&session.Session{ThreadID: "1001.0", ChannelID: "C1", Window: "new-1", WorkingDir: "/tmp", Status: session.StatusActive}))

	out := h.sessions(context.Background())
	assert.Contains(t, out, "new-1")
	assert.Contains(t, out, "/tmp")
}

func TestKill_NoMatch(t *testing.T) {
	h, _, _, _ := newTestHandler(t)
	out := h.kill(context.Background(), "no-such-window")
	assert.Contains(t, out, "No active session")
}

func TestKill_Match(t *testing.T) {
	h, reg, _, fake := newTestHandler(t)
	require.NoError(t, reg.Put(&session.Session{ThreadID: "1001.0", Window: "new-1", Status: session.StatusActive}))
	fake.Windows["claude"] = map[string]bool{"new-1": true}

	out := h.kill(context.Background(), "new-1")
	assert.Contains(t, out, "Terminated")

	got, err := reg.Get("1001.0")
	require.NoError(t, err)
	assert.Equal(t, session.StatusTerminated, got.Status)
}

func TestFind_EmptyQuery(t *testing.T) {
	h, _, _, _ := newTestHandler(t)
	assert.Contains(t, h.find(context.Background(), ""), "Usage")
}

func TestDispatch_Help(t *testing.T) {
	h, _, _, _ := newTestHandler(t)
	assert.Contains(t, h.Dispatch(context.Background(), "help", ""), "Available commands")
	assert.Contains(t, h.Dispatch(context.Background(), "h", ""), "Available commands")
}

func TestDispatch_Unknown(t *testing.T) {
	h, _, _, _ := newTestHandler(t)
	assert.Contains(t, h.Dispatch(context.Background(), "bogus", ""), "Unknown command")
}
