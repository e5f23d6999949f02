package config

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
)

// Watcher watches the bridge.json file on disk and reloads it on change,
// adapted from a directory-wide config watcher down to a single file: the
// bridge has one config file, not a directory of layered sources.
type Watcher struct {
	watcher    *fsnotify.Watcher
	path       string
	debounce   time.Duration
	lastChange time.Time
	mu         sync.Mutex
	logger     *logrus.Entry
	onReload   func(*Config)
}

// NewWatcher starts watching path for writes and calls onReload with the
// newly parsed Config each time the file changes and reparses cleanly.
// A malformed write (mid-save) is logged and skipped; the previous config
// stays in effect until the next valid write.
func NewWatcher(path string, logger *logrus.Entry, onReload func(*Config)) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	dir := filepath.Dir(path)
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return nil, err
	}

	return &Watcher{
		watcher:  fw,
		path:     path,
		debounce: 200 * time.Millisecond,
		logger:   logger,
		onReload: onReload,
	}, nil
}

// Start begins watching for config changes. It blocks until ctx is
// cancelled.
func (w *Watcher) Start(ctx context.Context) {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				w.handleChange()
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.WithError(err).Warn("config watcher error")
		case <-ctx.Done():
			w.watcher.Close()
			return
		}
	}
}

func (w *Watcher) handleChange() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if elapsed := time.Since(w.lastChange); elapsed < w.debounce {
		return
	}
	w.lastChange = time.Now()

	cfg, err := Load(w.path)
	if err != nil {
		w.logger.WithError(err).Warn("config reload failed, keeping previous config")
		return
	}

	w.logger.Info("config reloaded")
	if w.onReload != nil {
		w.onReload(cfg)
	}
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}
