package tmux

import (
	"context"
	"fmt"
	"sync"

	"github.com/chatbridge/bridge/errors"
)

// Keystroke is one recorded call to SendLiteral or SendKey, in the order
// the manager issued it, for assertions like "pressed Down twice then Tab".
type Keystroke struct {
	Window  string
	Literal string // set for SendLiteral calls
	Key     string // set for SendKey calls
}

// FakeAdapter is a MuxerAdapter test double that records every keystroke
// and window operation and returns pane content the test has scripted in
// advance, instead of shelling out to a real tmux binary.
type FakeAdapter struct {
	mu sync.Mutex

	Windows       map[string]map[string]bool // session -> window name -> exists
	PaneContent   map[string]string          // "session:window" -> capture() result
	Keystrokes    []Keystroke
	CreatedEnv    map[string]map[string]string // "session:window" -> env passed to CreateWindow
	KilledWindows []string

	// FailCreateWindow, when non-nil, is returned from CreateWindow instead
	// of succeeding, to exercise adapter-failure paths.
	FailCreateWindow error
}

// NewFakeAdapter returns an empty FakeAdapter.
func NewFakeAdapter() *FakeAdapter {
	return &FakeAdapter{
		Windows:     make(map[string]map[string]bool),
		PaneContent: make(map[string]string),
		CreatedEnv:  make(map[string]map[string]string),
	}
}

// SetPaneContent scripts the capture() result for a given session:window
// target, for the manager's readiness-polling loop to observe.
func (f *FakeAdapter) SetPaneContent(session, window, content string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.PaneContent[session+":"+window] = content
}

func (f *FakeAdapter) SessionExists(ctx context.Context, session string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.Windows[session]
	return ok, nil
}

func (f *FakeAdapter) WindowExists(ctx context.Context, session, name string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	windows, ok := f.Windows[session]
	if !ok {
		return false, nil
	}
	return windows[name], nil
}

func (f *FakeAdapter) CreateWindow(ctx context.Context, session, name, startDir string, env map[string]string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.FailCreateWindow != nil {
		return f.FailCreateWindow
	}

	if f.Windows[session] == nil {
		f.Windows[session] = make(map[string]bool)
	}
	f.Windows[session][name] = true
	f.CreatedEnv[session+":"+name] = env
	return nil
}

func (f *FakeAdapter) KillWindow(ctx context.Context, session, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.Windows[session] != nil {
		delete(f.Windows[session], name)
	}
	f.KilledWindows = append(f.KilledWindows, session+":"+name)
	return nil
}

func (f *FakeAdapter) RenameWindow(ctx context.Context, session, from, to string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	windows, ok := f.Windows[session]
	if !ok || !windows[from] {
		return errors.NotFound(session+":"+from, fmt.Errorf("no such window"))
	}
	delete(windows, from)
	windows[to] = true
	return nil
}

func (f *FakeAdapter) SendLiteral(ctx context.Context, session, name, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Keystrokes = append(f.Keystrokes, Keystroke{Window: session + ":" + name, Literal: text})
	return nil
}

func (f *FakeAdapter) SendKey(ctx context.Context, session, name, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Keystrokes = append(f.Keystrokes, Keystroke{Window: session + ":" + name, Key: key})
	return nil
}

func (f *FakeAdapter) Capture(ctx context.Context, session, name string, linesBack int) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.PaneContent[session+":"+name], nil
}

func (f *FakeAdapter) ListWindows(ctx context.Context, session string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var names []string
	for name := range f.Windows[session] {
		names = append(names, name)
	}
	return names, nil
}

func (f *FakeAdapter) ListWindowsDetailed(ctx context.Context, session string) ([]Window, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var windows []Window
	i := 0
	for name := range f.Windows[session] {
		windows = append(windows, Window{Index: i, Name: name})
		i++
	}
	return windows, nil
}

var _ MuxerAdapter = (*FakeAdapter)(nil)
