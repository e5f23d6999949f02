package router

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/chatbridge/bridge/config"
	"github.com/chatbridge/bridge/pkg/botcmd"
	"github.com/chatbridge/bridge/pkg/chat"
	"github.com/chatbridge/bridge/pkg/fetch"
	"github.com/chatbridge/bridge/pkg/registry"
	"github.com/chatbridge/bridge/pkg/session"
	"github.com/chatbridge/bridge/pkg/timing"
	"github.com/chatbridge/bridge/pkg/tmux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testRig struct {
	router   *Router
	reg      *registry.Store
	manager  *session.Manager
	muxer    *tmux.FakeAdapter
	sdk      *chat.Fake
	tmuxName string
}

func newTestRig(t *testing.T, allowedUsers []string) *testRig {
	dir := t.TempDir()
	reg := registry.New(filepath.Join(dir, "registry.json"))
	muxer := tmux.NewFakeAdapter()
	sdk := chat.NewFake()
	tc := timing.Zero()
	cfg := config.MultiSession{MaxConcurrent: 5, TmuxSession: "claude", DefaultWorkingDir: "/home/u", AssistantCommand: "claude"}
	mgr := session.New(reg, muxer, sdk, tc, cfg)
	bc := botcmd.New(reg, mgr, muxer, cfg.TmuxSession)
	fetcher := fetch.New(nil, filepath.Join(dir, "fetch"), "tok")

	r := New(Config{
		SDK:          sdk,
		Manager:      mgr,
		BotCmd:       bc,
		Muxer:        muxer,
		Fetcher:      fetcher,
		Timing:       tc,
		AllowedUsers: allowedUsers,
		TmuxSession:  cfg.TmuxSession,
	})

	return &testRig{router: r, reg: reg, manager: mgr, muxer: muxer, sdk: sdk, tmuxName: cfg.TmuxSession}
}

func waitUntil(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition never became true")
}

func TestOnMessage_NewThreadCreatesSessionAndInjects(t *testing.T) {
	rig := newTestRig(t, []string{"U1"})
	rig.muxer.SetPaneContent("claude", "new-1", "What would you like to do?")

	rig.router.OnMessage(context.Background(), chat.Message{
		ChannelID: "C1", MessageID: "1001.0", UserID: "U1", Text: "[/tmp] fix the bug",
	})

	waitUntil(t, func() bool {
		sess, _ := rig.reg.Get("1001.0")
		return sess != nil && sess.Status != session.StatusTerminated
	})

	sess, err := rig.reg.Get("1001.0")
	require.NoError(t, err)
	assert.Equal(t, "/tmp", sess.WorkingDir)

	waitUntil(t, func() bool {
		for _, k := range rig.muxer.Keystrokes {
			if k.Literal == "fix the bug" {
				return true
			}
		}
		return false
	})
}

func TestOnMessage_UnauthorizedUser(t *testing.T) {
	rig := newTestRig(t, []string{"U1"})
	rig.router.OnMessage(context.Background(), chat.Message{
		ChannelID: "C1", MessageID: "1002.0", UserID: "U-stranger", Text: "hello",
	})

	require.Len(t, rig.sdk.Posted, 1)
	assert.Contains(t, rig.sdk.Posted[0].Text, "not authorized")

	sess, err := rig.reg.Get("1002.0")
	require.NoError(t, err)
	assert.Nil(t, sess)
}

func TestOnMessage_ExistingSessionInjectsImmediately(t *testing.T) {
	rig := newTestRig(t, []string{"U1"})
	require.NoError(t, rig.reg.Put(&session.Session{
		ThreadID: "1003.0", ChannelID: "C1", Window: "new-1", WorkingDir: "/tmp", Status: session.StatusActive,
	}))
	rig.muxer.Windows["claude"] = map[string]bool{"new-1": true}

	rig.router.OnMessage(context.Background(), chat.Message{
		ChannelID: "C1", ThreadID: "1003.0", MessageID: "1003.1", UserID: "U1", Text: "continue",
	})

	found := false
	for _, k := range rig.muxer.Keystrokes {
		if k.Literal == "continue" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestOnMessage_InSessionKillDirective(t *testing.T) {
	rig := newTestRig(t, []string{"U1"})
	require.NoError(t, rig.reg.Put(&session.Session{
		ThreadID: "1004.0", ChannelID: "C1", Window: "new-1", Status: session.StatusActive,
	}))
	rig.muxer.Windows["claude"] = map[string]bool{"new-1": true}

	rig.router.OnMessage(context.Background(), chat.Message{
		ChannelID: "C1", ThreadID: "1004.0", MessageID: "1004.1", UserID: "U1", Text: "!kill",
	})

	sess, err := rig.reg.Get("1004.0")
	require.NoError(t, err)
	assert.Equal(t, session.StatusTerminated, sess.Status)
}

func TestOnReaction_ApproveSendsOne(t *testing.T) {
	rig := newTestRig(t, []string{"U1"})
	require.NoError(t, rig.reg.Put(&session.Session{
		ThreadID: "1005.0", ChannelID: "C1", Window: "new-1", Status: session.StatusActive, PendingPermission: true,
	}))

	rig.router.OnReaction(context.Background(), chat.Reaction{
		ChannelID: "C1", ItemTS: "1005.0", UserID: "U1", Name: "white_check_mark",
	})

	found := false
	for _, k := range rig.muxer.Keystrokes {
		if k.Literal == "1" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestOnReaction_TerminateKillsWindow(t *testing.T) {
	rig := newTestRig(t, []string{"U1"})
	require.NoError(t, rig.reg.Put(&session.Session{
		ThreadID: "1006.0", ChannelID: "C1", Window: "new-1", Status: session.StatusActive,
	}))
	rig.muxer.Windows["claude"] = map[string]bool{"new-1": true}

	rig.router.OnReaction(context.Background(), chat.Reaction{
		ChannelID: "C1", ItemTS: "1006.0", UserID: "U1", Name: "octagonal_sign",
	})

	sess, err := rig.reg.Get("1006.0")
	require.NoError(t, err)
	assert.Equal(t, session.StatusTerminated, sess.Status)
}

func TestOnReaction_UnknownNameIgnored(t *testing.T) {
	rig := newTestRig(t, []string{"U1"})
	require.NoError(t, rig.reg.Put(&session.Session{
		ThreadID: "1007.0", ChannelID: "C1", Window: "new-1", Status: session.StatusActive,
	}))

	rig.router.OnReaction(context.Background(), chat.Reaction{
		ChannelID: "C1", ItemTS: "1007.0", UserID: "U1", Name: "thumbsup",
	})

	assert.Empty(t, rig.muxer.Keystrokes)
}

func TestOnSlashCommand_DelegatesToBotCmd(t *testing.T) {
	rig := newTestRig(t, []string{"U1"})
	out := rig.router.OnSlashCommand(context.Background(), chat.SlashCommand{
		ChannelID: "C1", UserID: "U1", Command: "/help",
	})
	assert.Contains(t, out, "Available commands")
}

func TestOnSlashCommand_Unauthorized(t *testing.T) {
	rig := newTestRig(t, []string{"U1"})
	out := rig.router.OnSlashCommand(context.Background(), chat.SlashCommand{
		ChannelID: "C1", UserID: "U-stranger", Command: "/help",
	})
	assert.Contains(t, out, "not authorized")
}

func TestStripWorkingDirPrefix_InvalidDirFallsBackToDefault(t *testing.T) {
	rig := newTestRig(t, []string{"U1"})
	dir, text := rig.router.stripWorkingDirPrefix(context.Background(), "C1", "1008.0", "[/no/such/dir] hi")
	assert.Equal(t, "", dir)
	assert.Equal(t, "hi", text)
	require.Len(t, rig.sdk.Posted, 1)
	assert.Contains(t, rig.sdk.Posted[0].Text, "not a directory")
}

func TestStripWorkingDirPrefix_NoPrefixReturnsTextUnchanged(t *testing.T) {
	rig := newTestRig(t, []string{"U1"})
	dir, text := rig.router.stripWorkingDirPrefix(context.Background(), "C1", "1009.0", "just a message")
	assert.Equal(t, "", dir)
	assert.Equal(t, "just a message", text)
}
