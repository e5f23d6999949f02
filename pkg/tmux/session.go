package tmux

import (
	"context"
	"strconv"
	"strings"
)

// SessionExists reports whether a tmux session with an exact name match
// exists.
func (c *Client) SessionExists(ctx context.Context, sessionName string) (bool, error) {
	_, err := c.run(ctx, "has-session", "-t", "="+sessionName)
	if err == nil {
		return true, nil
	}

	if strings.Contains(err.Error(), "exit status 1") {
		return false, nil
	}

	return false, err
}

// SendKeys sends keys (literal text via "-l", or a named key like "Enter")
// to target.
func (c *Client) SendKeys(ctx context.Context, target string, keys ...string) error {
	args := []string{"send-keys", "-t", target}
	args = append(args, keys...)
	_, err := c.run(ctx, args...)
	return err
}

// ListWindowsDetailed returns a list of windows with detailed information for the given session.
func (c *Client) ListWindowsDetailed(ctx context.Context, sessionName string) ([]Window, error) {
	format := `#{window_id}:#{window_index}:#{window_name}:#{?window_active,1,0}:#{pane_current_command}:#{pane_pid}`
	output, err := c.run(ctx, "list-windows", "-t", sessionName, "-F", format)
	if err != nil {
		return nil, err
	}

	lines := strings.Split(strings.TrimSpace(output), "\n")
	windows := make([]Window, 0, len(lines))
	for _, line := range lines {
		if line == "" {
			continue
		}
		parts := strings.SplitN(line, ":", 6)
		if len(parts) < 6 {
			continue // Skip malformed lines
		}

		index, err := strconv.Atoi(parts[1])
		if err != nil {
			continue // Skip if index is not a number
		}

		pid, err := strconv.Atoi(parts[5])
		if err != nil {
			pid = 0 // Default to 0 if PID can't be parsed
		}

		win := Window{
			ID:       parts[0],
			Index:    index,
			Name:     parts[2],
			IsActive: parts[3] == "1",
			Command:  parts[4],
			PID:      pid,
		}
		windows = append(windows, win)
	}
	return windows, nil
}

// RenameWindow renames a tmux window.
func (c *Client) RenameWindow(ctx context.Context, target string, newName string) error {
	_, err := c.run(ctx, "rename-window", "-t", target, newName)
	return err
}

// KillWindow kills a window by target ("session:name").
func (c *Client) KillWindow(ctx context.Context, target string) error {
	_, err := c.run(ctx, "kill-window", "-t", target)
	return err
}

// NewWindowWithOptions creates a new window with extended options.
func (c *Client) NewWindowWithOptions(ctx context.Context, opts NewWindowOptions) error {
	args := []string{"new-window", "-t", opts.Target, "-n", opts.WindowName}
	if opts.WorkingDir != "" {
		args = append(args, "-c", opts.WorkingDir)
	}
	for _, e := range opts.Env {
		args = append(args, "-e", e)
	}
	if opts.Command != "" {
		args = append(args, opts.Command)
	}
	_, err := c.run(ctx, args...)
	return err
}
