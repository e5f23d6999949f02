package tmux

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/chatbridge/bridge/errors"
)

// Adapter is the uniform, synchronous facade the session manager drives the
// muxer through. Every method surfaces errors as an *errors.BridgeError
// with one of three categories: NotFound, Transient, Unknown.
type Adapter struct {
	client *Client
}

// NewAdapter wraps a Client as an Adapter.
func NewAdapter(client *Client) *Adapter {
	return &Adapter{client: client}
}

// categorize maps a raw tmux error into a BridgeError with the adapter's
// three-way category, based on substrings tmux itself uses in its error
// text — there is no structured error type to inspect.
func categorize(err error, action string) *errors.BridgeError {
	if err == nil {
		return nil
	}

	msg := err.Error()
	switch {
	case strings.Contains(msg, "can't find"),
		strings.Contains(msg, "no such"),
		strings.Contains(msg, "exit status 1"):
		return errors.NotFound(action, err)
	case strings.Contains(msg, "no server running"),
		strings.Contains(msg, "error connecting"),
		strings.Contains(msg, "lost server"):
		return errors.Transient(action, err)
	default:
		return errors.Wrap(err, errors.ErrCodeUnknown, action)
	}
}

// SessionExists reports whether the named tmux session exists.
func (a *Adapter) SessionExists(ctx context.Context, session string) (bool, error) {
	exists, err := a.client.SessionExists(ctx, session)
	if err != nil {
		return false, categorize(err, "session exists")
	}
	return exists, nil
}

// WindowExists reports whether a window with the given name exists in
// session.
func (a *Adapter) WindowExists(ctx context.Context, session, name string) (bool, error) {
	windows, err := a.ListWindows(ctx, session)
	if err != nil {
		if errors.Is(err, errors.ErrCodeNotFound) {
			return false, nil
		}
		return false, err
	}
	for _, w := range windows {
		if w == name {
			return true, nil
		}
	}
	return false, nil
}

// CreateWindow opens a background window named name in session, optionally
// changing into startDir first, with the given environment variables set
// for the window's pane (used for threadId/channelId).
func (a *Adapter) CreateWindow(ctx context.Context, session, name, startDir string, env map[string]string) error {
	envSlice := make([]string, 0, len(env))
	for k, v := range env {
		envSlice = append(envSlice, fmt.Sprintf("%s=%s", k, v))
	}

	err := a.client.NewWindowWithOptions(ctx, NewWindowOptions{
		Target:     session,
		WindowName: name,
		WorkingDir: startDir,
		Env:        envSlice,
	})
	if err != nil {
		return categorize(err, "create window")
	}
	return nil
}

// KillWindow kills a window by name. It is idempotent — a NotFound result
// from tmux is not treated as an error.
func (a *Adapter) KillWindow(ctx context.Context, session, name string) error {
	target := session + ":" + name
	err := a.client.KillWindow(ctx, target)
	if err == nil {
		return nil
	}
	bridgeErr := categorize(err, "kill window")
	if bridgeErr.Code == errors.ErrCodeNotFound {
		return nil
	}
	return bridgeErr
}

// RenameWindow renames a window within a session.
func (a *Adapter) RenameWindow(ctx context.Context, session, from, to string) error {
	target := session + ":" + from
	if err := a.client.RenameWindow(ctx, target, to); err != nil {
		return categorize(err, "rename window")
	}
	return nil
}

// SendLiteral sends text as literal characters, with no key-name
// interpretation, to the named window.
func (a *Adapter) SendLiteral(ctx context.Context, session, name, text string) error {
	target := session + ":" + name
	if err := a.client.SendKeys(ctx, target, "-l", text); err != nil {
		return categorize(err, "send literal")
	}
	return nil
}

// SendKey sends a single named key (Enter, Tab, Down, Escape, a digit) to
// the named window.
func (a *Adapter) SendKey(ctx context.Context, session, name, key string) error {
	target := session + ":" + name
	if err := a.client.SendKeys(ctx, target, key); err != nil {
		return categorize(err, "send key")
	}
	return nil
}

// Capture returns the last linesBack lines of the window's pane as a
// single string.
func (a *Adapter) Capture(ctx context.Context, session, name string, linesBack int) (string, error) {
	target := session + ":" + name
	out, err := a.client.run(ctx, "capture-pane", "-e", "-p", "-S", "-"+strconv.Itoa(linesBack), "-t", target)
	if err != nil {
		return "", categorize(err, "capture pane")
	}
	return out, nil
}

// ListWindows returns the window names in session.
func (a *Adapter) ListWindows(ctx context.Context, session string) ([]string, error) {
	windows, err := a.client.ListWindowsDetailed(ctx, session)
	if err != nil {
		return nil, categorize(err, "list windows")
	}
	names := make([]string, 0, len(windows))
	for _, w := range windows {
		names = append(names, w.Name)
	}
	return names, nil
}

// ListWindowsDetailed returns full window metadata. Startup seeding of the
// provisional window-name index uses ListWindows, not this method.
func (a *Adapter) ListWindowsDetailed(ctx context.Context, session string) ([]Window, error) {
	windows, err := a.client.ListWindowsDetailed(ctx, session)
	if err != nil {
		return nil, categorize(err, "list windows detailed")
	}
	return windows, nil
}
