package session

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/chatbridge/bridge/config"
	"github.com/chatbridge/bridge/errors"
	"github.com/chatbridge/bridge/pkg/chat"
	"github.com/chatbridge/bridge/pkg/registry"
	"github.com/chatbridge/bridge/pkg/timing"
	"github.com/chatbridge/bridge/pkg/tmux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T, cfg config.MultiSession) (*Manager, *tmux.FakeAdapter, *registry.Store) {
	dir := t.TempDir()
	reg := registry.New(filepath.Join(dir, "registry.json"))
	fake := tmux.NewFakeAdapter()
	sdk := chat.NewFake()
	m := New(reg, fake, sdk, timing.Zero(), cfg)
	return m, fake, reg
}

func TestEnsureSession_CreatesNew(t *testing.T) {
	m, fake, _ := newTestManager(t, config.MultiSession{MaxConcurrent: 5, TmuxSession: "claude", AssistantCommand: "claude"})

	sess, err := m.EnsureSession(context.Background(), "1001.0", "C1", "/tmp")
	require.NoError(t, err)
	assert.Equal(t, StatusStarting, sess.Status)
	assert.Equal(t, "new-1", sess.Window)

	assert.True(t, fake.Windows["claude"]["new-1"])
	assert.Equal(t, "1001.0", fake.CreatedEnv["claude:new-1"]["threadId"])
}

func TestEnsureSession_ReturnsExisting(t *testing.T) {
	m, _, _ := newTestManager(t, config.MultiSession{MaxConcurrent: 5, TmuxSession: "claude", AssistantCommand: "claude"})

	first, err := m.EnsureSession(context.Background(), "1001.0", "C1", "/tmp")
	require.NoError(t, err)

	second, err := m.EnsureSession(context.Background(), "1001.0", "C1", "/tmp")
	require.NoError(t, err)
	assert.Equal(t, first.Window, second.Window)
}

func TestEnsureSession_LimitReached(t *testing.T) {
	m, _, _ := newTestManager(t, config.MultiSession{MaxConcurrent: 1, TmuxSession: "claude", AssistantCommand: "claude"})

	_, err := m.EnsureSession(context.Background(), "1001.0", "C1", "/tmp")
	require.NoError(t, err)

	_, err = m.EnsureSession(context.Background(), "2002.0", "C1", "/tmp")
	assert.True(t, errors.Is(err, errors.ErrCodeLimitReached))
}

func TestEnsureSession_ConcurrentCallsCoalesce(t *testing.T) {
	m, _, _ := newTestManager(t, config.MultiSession{MaxConcurrent: 5, TmuxSession: "claude", AssistantCommand: "claude"})

	var wg sync.WaitGroup
	windows := make([]string, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sess, err := m.EnsureSession(context.Background(), "1001.0", "C1", "/tmp")
			if err == nil {
				windows[i] = sess.Window
			}
		}(i)
	}
	wg.Wait()

	for _, w := range windows {
		assert.Equal(t, "new-1", w)
	}
}

func TestTerminate_Idempotent(t *testing.T) {
	m, fake, _ := newTestManager(t, config.MultiSession{MaxConcurrent: 5, TmuxSession: "claude", AssistantCommand: "claude"})

	sess, err := m.EnsureSession(context.Background(), "1001.0", "C1", "/tmp")
	require.NoError(t, err)

	_, err = m.Terminate(context.Background(), sess.ThreadID)
	require.NoError(t, err)
	_, err = m.Terminate(context.Background(), sess.ThreadID)
	require.NoError(t, err)

	assert.Len(t, fake.KilledWindows, 1)
}

func TestSeedProvisionalIndex(t *testing.T) {
	m, fake, _ := newTestManager(t, config.MultiSession{MaxConcurrent: 5, TmuxSession: "claude", AssistantCommand: "claude"})
	fake.Windows["claude"] = map[string]bool{"new-7": true, "abcd1234": true}

	require.NoError(t, m.SeedProvisionalIndex(context.Background()))

	sess, err := m.EnsureSession(context.Background(), "1001.0", "C1", "/tmp")
	require.NoError(t, err)
	assert.Equal(t, "new-8", sess.Window)
}

func TestReconcile_MarksMissingWindowTerminated(t *testing.T) {
	m, fake, reg := newTestManager(t, config.MultiSession{MaxConcurrent: 5, TmuxSession: "claude", AssistantCommand: "claude"})

	sess, err := m.EnsureSession(context.Background(), "1001.0", "C1", "/tmp")
	require.NoError(t, err)
	delete(fake.Windows["claude"], sess.Window)

	require.NoError(t, m.Reconcile(context.Background()))

	got, err := reg.Get("1001.0")
	require.NoError(t, err)
	assert.Equal(t, StatusTerminated, got.Status)
}
