package session

import (
	"context"
	"os"
	"path/filepath"
	"time"
)

// Collector is one independently-ticking periodic sweep, named after the
// teacher's own collector.Collector interface: Name for logging, Run for
// one full pass. Run takes its own Registry snapshot and must not hold
// the Registry lock across muxer or chat I/O, per §9.
type Collector interface {
	Name() string
	Run(ctx context.Context, m *Manager) error
}

// Engine fans out a ticker per Collector and runs each pass independently,
// adapted from the teacher's internal/daemon/engine.Engine: there, one
// consumer goroutine drained a shared update channel fed by several
// collectors; here each sweep's side effects (terminate, post message) are
// self-contained, so collectors run directly off their own tickers with no
// shared channel needed.
type Engine struct {
	manager    *Manager
	collectors []Collector
}

// NewEngine returns an Engine with the three sweeps §4.3.5 names.
func NewEngine(m *Manager, fetchRoot string) *Engine {
	return &Engine{
		manager: m,
		collectors: []Collector{
			&idleSweepCollector{},
			&crashSweepCollector{},
			&tempCleanupCollector{fetchRoot: fetchRoot},
		},
	}
}

// Start launches one goroutine per collector, each on its own ticker
// drawn from the Manager's timing.Config, until ctx is cancelled.
func (e *Engine) Start(ctx context.Context) {
	tc := e.manager.timing
	periods := map[string]time.Duration{
		"idle-sweep":   tc.IdleSweepPeriod,
		"crash-sweep":  tc.CrashSweepPeriod,
		"temp-cleanup": tc.TempCleanupPeriod,
	}

	for _, c := range e.collectors {
		c := c
		period := periods[c.Name()]
		go e.runLoop(ctx, c, period)
	}
}

func (e *Engine) runLoop(ctx context.Context, c Collector, period time.Duration) {
	// Run once immediately — §4.3.5 requires temp cleanup "also at
	// startup", and an immediate first pass is harmless for the other two.
	e.runOnce(ctx, c)

	if period <= 0 {
		return
	}
	ticker := time.NewTicker(period)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			e.runOnce(ctx, c)
		}
	}
}

func (e *Engine) runOnce(ctx context.Context, c Collector) {
	if err := c.Run(ctx, e.manager); err != nil {
		log.WithError(err).WithField("collector", c.Name()).Warn("sweep iteration failed")
	}
}

// idleSweepCollector terminates every idle Session past idleTimeoutMinutes.
type idleSweepCollector struct{}

func (idleSweepCollector) Name() string { return "idle-sweep" }

func (idleSweepCollector) Run(ctx context.Context, m *Manager) error {
	sessions, err := m.registry.Load()
	if err != nil {
		return err
	}
	cfg := m.config()
	timeout := time.Duration(cfg.IdleTimeoutMinutes) * time.Minute
	now := time.Now()

	for threadID, s := range sessions {
		if s.Status != StatusIdle || s.IdleSince == nil {
			continue
		}
		if now.Sub(*s.IdleSince) <= timeout {
			continue
		}
		if _, err := m.Terminate(ctx, threadID); err != nil {
			log.WithError(err).WithField("threadId", threadID).Warn("idle sweep: terminate failed")
			continue
		}
		if cfg.NotifyOnTimeout {
			_, _ = m.chat.PostMessage(ctx, s.ChannelID, threadID, "Session timed out after being idle.")
		}
	}
	return nil
}

// crashSweepCollector marks terminated any non-terminated Session whose
// window has disappeared, and posts a distinct warning from the timeout
// notice.
type crashSweepCollector struct{}

func (crashSweepCollector) Name() string { return "crash-sweep" }

func (crashSweepCollector) Run(ctx context.Context, m *Manager) error {
	sessions, err := m.registry.Load()
	if err != nil {
		return err
	}
	cfg := m.config()

	for threadID, s := range sessions {
		if s.Status == StatusTerminated {
			continue
		}
		exists, err := m.muxer.WindowExists(ctx, cfg.TmuxSession, s.Window)
		if err != nil {
			log.WithError(err).WithField("threadId", threadID).Warn("crash sweep: window probe failed")
			continue
		}
		if exists {
			continue
		}
		channelID := s.ChannelID
		if err := m.registry.Update(func(sessions map[string]*Session) error {
			if cur, ok := sessions[threadID]; ok && cur.Status != StatusTerminated {
				cur.Status = StatusTerminated
			}
			return nil
		}); err != nil {
			log.WithError(err).WithField("threadId", threadID).Warn("crash sweep: update failed")
			continue
		}
		_, _ = m.chat.PostMessage(ctx, channelID, threadID, "Session's window disappeared unexpectedly; treating as crashed.")
	}
	return nil
}

// tempCleanupCollector removes per-thread attachment directories older
// than the configured retention, independent of Session status.
type tempCleanupCollector struct {
	fetchRoot string
}

func (tempCleanupCollector) Name() string { return "temp-cleanup" }

func (c tempCleanupCollector) Run(ctx context.Context, m *Manager) error {
	cfg := m.config()
	retention := time.Duration(cfg.TempFileRetentionDays) * 24 * time.Hour

	entries, err := os.ReadDir(c.fetchRoot)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}

	cutoff := time.Now().Add(-retention)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		path := filepath.Join(c.fetchRoot, entry.Name())
		if err := os.RemoveAll(path); err != nil {
			log.WithError(err).WithField("path", path).Warn("temp cleanup: remove failed")
		}
	}
	return nil
}
