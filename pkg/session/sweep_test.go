package session

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/chatbridge/bridge/config"
	"github.com/chatbridge/bridge/pkg/chat"
	"github.com/chatbridge/bridge/pkg/registry"
	"github.com/chatbridge/bridge/pkg/timing"
	"github.com/chatbridge/bridge/pkg/tmux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdleSweepCollector_TerminatesPastTimeout(t *testing.T) {
	dir := t.TempDir()
	reg := registry.New(filepath.Join(dir, "registry.json"))
	fake := tmux.NewFakeAdapter()
	sdk := chat.NewFake()
	m := New(reg, fake, sdk, timing.Zero(), config.MultiSession{MaxConcurrent: 5, TmuxSession: "claude", IdleTimeoutMinutes: 1})

	past := time.Now().Add(-2 * time.Minute)
	require.NoError(t, reg.Put(&Session{ThreadID: "1001.0", ChannelID: "C1", Window: "abcd1234", Status: StatusIdle, IdleSince: &past}))
	fake.Windows["claude"] = map[string]bool{"abcd1234": true}

	c := idleSweepCollector{}
	require.NoError(t, c.Run(context.Background(), m))

	got, err := reg.Get("1001.0")
	require.NoError(t, err)
	assert.Equal(t, StatusTerminated, got.Status)
}

func TestIdleSweepCollector_LeavesRecentIdleAlone(t *testing.T) {
	dir := t.TempDir()
	reg := registry.New(filepath.Join(dir, "registry.json"))
	fake := tmux.NewFakeAdapter()
	sdk := chat.NewFake()
	m := New(reg, fake, sdk, timing.Zero(), config.MultiSession{MaxConcurrent: 5, TmuxSession: "claude", IdleTimeoutMinutes: 60})

	recent := time.Now()
	require.NoError(t, reg.Put(&Session{ThreadID: "1001.0", Window: "abcd1234", Status: StatusIdle, IdleSince: &recent}))

	c := idleSweepCollector{}
	require.NoError(t, c.Run(context.Background(), m))

	got, err := reg.Get("1001.0")
	require.NoError(t, err)
	assert.Equal(t, StatusIdle, got.Status)
}

func TestCrashSweepCollector_MarksMissingWindowTerminated(t *testing.T) {
	dir := t.TempDir()
	reg := registry.New(filepath.Join(dir, "registry.json"))
	fake := tmux.NewFakeAdapter()
	sdk := chat.NewFake()
	m := New(reg, fake, sdk, timing.Zero(), config.MultiSession{MaxConcurrent: 5, TmuxSession: "claude"})

	require.NoError(t, reg.Put(&Session{ThreadID: "1001.0", ChannelID: "C1", Window: "gone", Status: StatusActive}))

	c := crashSweepCollector{}
	require.NoError(t, c.Run(context.Background(), m))

	got, err := reg.Get("1001.0")
	require.NoError(t, err)
	assert.Equal(t, StatusTerminated, got.Status)

	assert.Len(t, sdk.Posted, 1)
}

func TestTempCleanupCollector_RemovesOldDirs(t *testing.T) {
	dir := t.TempDir()
	reg := registry.New(filepath.Join(dir, "registry.json"))
	fake := tmux.NewFakeAdapter()
	sdk := chat.NewFake()
	m := New(reg, fake, sdk, timing.Zero(), config.MultiSession{MaxConcurrent: 5, TmuxSession: "claude", TempFileRetentionDays: 1})

	fetchRoot := filepath.Join(dir, "fetch")
	old := filepath.Join(fetchRoot, "old-thread")
	require.NoError(t, os.MkdirAll(old, 0o755))
	oldTime := time.Now().Add(-48 * time.Hour)
	require.NoError(t, os.Chtimes(old, oldTime, oldTime))

	c := tempCleanupCollector{fetchRoot: fetchRoot}
	require.NoError(t, c.Run(context.Background(), m))

	assert.NoDirExists(t, old)
}
