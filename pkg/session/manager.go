package session

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/chatbridge/bridge/config"
	"github.com/chatbridge/bridge/errors"
	"github.com/chatbridge/bridge/logging"
	"github.com/chatbridge/bridge/pkg/chat"
	"github.com/chatbridge/bridge/pkg/registry"
	"github.com/chatbridge/bridge/pkg/timing"
	"github.com/chatbridge/bridge/pkg/tmux"
)

const assistantIDPrefixLen = 8

var provisionalWindowRe = regexp.MustCompile(`^new-(\d+)$`)

var log = logging.NewLogger("session")

// Manager is the Session Manager: it creates, resurrects, tracks, and
// terminates Sessions against the Registry Store and the Muxer Adapter,
// serializing the creation race per thread.
type Manager struct {
	registry *registry.Store
	muxer    tmux.MuxerAdapter
	chat     chat.SDK
	timing   *timing.Config

	cfg atomic.Pointer[config.MultiSession]

	locks          *creationLocks
	provisionalSeq atomic.Int64
}

// New constructs a Manager. SeedProvisionalIndex should be called once at
// startup before serving traffic, to avoid colliding with windows left
// over from a previous run.
func New(reg *registry.Store, muxer tmux.MuxerAdapter, sdk chat.SDK, tc *timing.Config, cfg config.MultiSession) *Manager {
	m := &Manager{
		registry: reg,
		muxer:    muxer,
		chat:     sdk,
		timing:   tc,
		locks:    newCreationLocks(),
	}
	m.cfg.Store(&cfg)
	return m
}

// SetConfig swaps the live MultiSession config, used by the config
// watcher's reload callback. maxConcurrent takes effect on the next
// ensureSession call; idleTimeoutMinutes on the next idle-sweep tick.
func (m *Manager) SetConfig(cfg config.MultiSession) {
	m.cfg.Store(&cfg)
}

func (m *Manager) config() config.MultiSession {
	return *m.cfg.Load()
}

// SeedProvisionalIndex scans the tmux session's existing windows for the
// highest "new-<N>" index and seeds the counter past it, per §3: "N ...
// is seeded at startup from the max provisional index found in existing
// muxer windows."
func (m *Manager) SeedProvisionalIndex(ctx context.Context) error {
	windows, err := m.muxer.ListWindows(ctx, m.config().TmuxSession)
	if err != nil {
		if errors.Is(err, errors.ErrCodeNotFound) {
			return nil
		}
		return err
	}
	var max int64
	for _, w := range windows {
		match := provisionalWindowRe.FindStringSubmatch(w)
		if match == nil {
			continue
		}
		n, err := strconv.ParseInt(match[1], 10, 64)
		if err == nil && n > max {
			max = n
		}
	}
	m.provisionalSeq.Store(max)
	return nil
}

// Reconcile marks terminated any non-terminated Session whose window is
// gone, per §9: "Startup MUST reconcile: any non-terminated Session whose
// window is absent is marked terminated immediately."
func (m *Manager) Reconcile(ctx context.Context) error {
	return m.registry.Update(func(sessions map[string]*Session) error {
		for _, s := range sessions {
			if s.Status == StatusTerminated {
				continue
			}
			exists, err := m.muxer.WindowExists(ctx, m.config().TmuxSession, s.Window)
			if err != nil {
				log.WithError(err).WithField("window", s.Window).Warn("reconcile: window probe failed")
				continue
			}
			if !exists {
				s.Status = StatusTerminated
			}
		}
		return nil
	})
}

// EnsureSession implements §4.3.1: find-or-create-or-resurrect, under the
// per-thread creation lock, honoring maxConcurrent.
func (m *Manager) EnsureSession(ctx context.Context, threadID, channelID, requestedDir string) (*Session, error) {
	m.locks.acquire(threadID)
	defer m.locks.release(threadID)

	existing, err := m.registry.Get(threadID)
	if err != nil {
		return nil, err
	}
	if existing != nil && existing.Status != StatusTerminated {
		return existing, nil
	}

	sessions, err := m.registry.Load()
	if err != nil {
		return nil, err
	}
	active := 0
	for _, s := range sessions {
		if s.Status != StatusTerminated {
			active++
		}
	}
	cfg := m.config()
	if active >= cfg.MaxConcurrent {
		return nil, errors.LimitReached(cfg.MaxConcurrent)
	}

	workingDir := requestedDir
	if workingDir == "" {
		workingDir = cfg.DefaultWorkingDir
	}

	var sess *Session
	if existing != nil && existing.Resurrectable() {
		sess, err = m.resurrect(ctx, existing, cfg)
	} else {
		sess, err = m.createNew(ctx, threadID, channelID, workingDir, cfg)
	}
	if err != nil {
		return nil, err
	}

	if err := m.registry.Put(sess); err != nil {
		return nil, err
	}
	return sess, nil
}

func (m *Manager) nextProvisionalWindow() string {
	n := m.provisionalSeq.Add(1)
	return fmt.Sprintf("new-%d", n)
}

func (m *Manager) createNew(ctx context.Context, threadID, channelID, workingDir string, cfg config.MultiSession) (*Session, error) {
	window := m.nextProvisionalWindow()
	now := time.Now()

	env := map[string]string{"threadId": threadID, "channelId": channelID}
	if err := m.muxer.CreateWindow(ctx, cfg.TmuxSession, window, workingDir, env); err != nil {
		return nil, err
	}
	if err := m.muxer.SendLiteral(ctx, cfg.TmuxSession, window, cfg.AssistantCommand); err != nil {
		return nil, err
	}
	if err := m.muxer.SendKey(ctx, cfg.TmuxSession, window, "Enter"); err != nil {
		return nil, err
	}
	m.scheduleTrustPromptConfirm(cfg.TmuxSession, window)

	return &Session{
		ThreadID:     threadID,
		ChannelID:    channelID,
		Window:       window,
		WorkingDir:   workingDir,
		Status:       StatusStarting,
		CreatedAt:    now,
		LastActivity: now,
	}, nil
}

func (m *Manager) resurrect(ctx context.Context, prior *Session, cfg config.MultiSession) (*Session, error) {
	window := m.nextProvisionalWindow()
	now := time.Now()

	env := map[string]string{"threadId": prior.ThreadID, "channelId": prior.ChannelID}
	if err := m.muxer.CreateWindow(ctx, cfg.TmuxSession, window, prior.WorkingDir, env); err != nil {
		return nil, err
	}
	resumeCmd := fmt.Sprintf("%s --resume %s", cfg.AssistantCommand, prior.AssistantID)
	if err := m.muxer.SendLiteral(ctx, cfg.TmuxSession, window, resumeCmd); err != nil {
		return nil, err
	}
	if err := m.muxer.SendKey(ctx, cfg.TmuxSession, window, "Enter"); err != nil {
		return nil, err
	}
	m.scheduleTrustPromptConfirm(cfg.TmuxSession, window)

	return &Session{
		ThreadID:     prior.ThreadID,
		ChannelID:    prior.ChannelID,
		Window:       window,
		AssistantID:  prior.AssistantID,
		WorkingDir:   prior.WorkingDir,
		Status:       StatusStarting,
		CreatedAt:    now,
		LastActivity: now,
		Metadata:     prior.Metadata,
	}, nil
}

// scheduleTrustPromptConfirm fires the single "1" keystroke that
// auto-confirms the assistant's trust-this-folder dialog, per §4.3.1's
// open question: a fixed delay preserved as an upper-bound tuning hint.
func (m *Manager) scheduleTrustPromptConfirm(tmuxSession, window string) {
	delay := m.timing.TrustPromptDelay
	go func() {
		if delay > 0 {
			time.Sleep(delay)
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := m.muxer.SendLiteral(ctx, tmuxSession, window, "1"); err != nil {
			log.WithError(err).WithField("window", window).Debug("trust prompt confirm failed")
		}
	}()
}

// Terminate implements §4.3.6: idempotent window kill, status transition,
// assistantId preserved for resurrection.
func (m *Manager) Terminate(ctx context.Context, threadID string) (*Session, error) {
	var out *Session
	err := m.registry.Update(func(sessions map[string]*Session) error {
		s, ok := sessions[threadID]
		if !ok {
			return errors.New(errors.ErrCodeNoSession, "no session for thread").WithDetail("threadId", threadID)
		}
		if s.Status == StatusTerminated {
			out = s
			return nil
		}
		if err := m.muxer.KillWindow(ctx, m.config().TmuxSession, s.Window); err != nil {
			return err
		}
		s.Status = StatusTerminated
		out = s
		return nil
	})
	return out, err
}

// Get returns the Session for threadID, or nil if none exists.
func (m *Manager) Get(threadID string) (*Session, error) {
	return m.registry.Get(threadID)
}

// SetLastInboundMessageID records the message id of the most recent
// inbound message routed to threadID, so the notify hook can remove that
// message's eyes reaction when the assistant finishes its turn.
func (m *Manager) SetLastInboundMessageID(threadID, messageID string) error {
	return m.registry.Update(func(sessions map[string]*Session) error {
		s, ok := sessions[threadID]
		if !ok {
			return errors.New(errors.ErrCodeNoSession, "no session for thread").WithDetail("threadId", threadID)
		}
		s.LastInboundMessageID = messageID
		return nil
	})
}

// WaitReady blocks until sess's window is at its normal input prompt (or
// the readiness timeout elapses), per §4.3.2.
func (m *Manager) WaitReady(ctx context.Context, sess *Session) {
	waitForReady(ctx, m.muxer, m.config().TmuxSession, sess.Window, m.timing)
}

// FindByWindow returns the Session owning the given window name, or nil.
func (m *Manager) FindByWindow(window string) (*Session, error) {
	sessions, err := m.registry.Load()
	if err != nil {
		return nil, err
	}
	for _, s := range sessions {
		if s.Window == window {
			return s, nil
		}
	}
	return nil, nil
}
