package tmux

import "context"

// MuxerAdapter is the narrow interface the session manager drives the
// muxer through. *Adapter implements it against a real tmux binary; tests
// substitute *FakeAdapter, which records every call and returns scripted
// pane content instead of shelling out.
type MuxerAdapter interface {
	SessionExists(ctx context.Context, session string) (bool, error)
	WindowExists(ctx context.Context, session, name string) (bool, error)
	CreateWindow(ctx context.Context, session, name, startDir string, env map[string]string) error
	KillWindow(ctx context.Context, session, name string) error
	RenameWindow(ctx context.Context, session, from, to string) error
	SendLiteral(ctx context.Context, session, name, text string) error
	SendKey(ctx context.Context, session, name, key string) error
	Capture(ctx context.Context, session, name string, linesBack int) (string, error)
	ListWindows(ctx context.Context, session string) ([]string, error)
	ListWindowsDetailed(ctx context.Context, session string) ([]Window, error)
}

var _ MuxerAdapter = (*Adapter)(nil)
