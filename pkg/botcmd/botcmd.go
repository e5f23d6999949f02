// Package botcmd implements the Bot Command Handler: the closed grammar
// of administrative commands (§4.7) that produce a single chat reply,
// dispatched either from a "!" prefix inside a DM/channel message or from
// a platform slash command.
package botcmd

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/chatbridge/bridge/command"
	"github.com/chatbridge/bridge/git"
	"github.com/chatbridge/bridge/pkg/registry"
	"github.com/chatbridge/bridge/pkg/session"
	"github.com/chatbridge/bridge/pkg/tmux"
	"github.com/chatbridge/bridge/util/sanitize"
)

const maxFindResults = 10

// Handler implements the grammar in §4.7.
type Handler struct {
	registry    *registry.Store
	manager     *session.Manager
	muxer       tmux.MuxerAdapter
	tmuxSession string
}

// New constructs a Handler. tmuxSession is the configured muxer session
// name, used by !status to probe muxer liveness.
func New(reg *registry.Store, mgr *session.Manager, muxer tmux.MuxerAdapter, tmuxSession string) *Handler {
	return &Handler{registry: reg, manager: mgr, muxer: muxer, tmuxSession: tmuxSession}
}

// Dispatch routes one command line (grammar word plus the rest of the
// text) to its handler and returns the reply text. cmd is the bare
// command word without its "!" or "/" prefix (e.g. "sessions", "s",
// "kill").
func (h *Handler) Dispatch(ctx context.Context, cmd, rest string) string {
	switch cmd {
	case "sessions", "s":
		return h.sessions(ctx)
	case "status":
		return h.status(ctx)
	case "kill":
		return h.kill(ctx, strings.TrimSpace(rest))
	case "find", "f":
		return h.find(ctx, strings.TrimSpace(rest))
	case "help", "h":
		return helpText
	default:
		return fmt.Sprintf("Unknown command: %s. Try !help.", cmd)
	}
}

func (h *Handler) sessions(ctx context.Context) string {
	sessions, err := h.registry.Load()
	if err != nil {
		return "Could not read the session registry: " + err.Error()
	}

	var lines []string
	for _, s := range sessions {
		if s.Status == session.StatusTerminated {
			continue
		}
		lines = append(lines, formatSessionLine(s))
	}
	if len(lines) == 0 {
		return "No active sessions."
	}
	return strings.Join(lines, "\n")
}

func formatSessionLine(s *session.Session) string {
	emoji := statusEmoji(s.Status)
	idle := ""
	if s.Status == session.StatusIdle && s.IdleSince != nil {
		idle = fmt.Sprintf(" (idle %s)", time.Since(*s.IdleSince).Round(time.Second))
	}
	return fmt.Sprintf("%s %s%s <#%s>\n`%s`", emoji, s.WorkingDir, idle, s.ChannelID, s.Window)
}

func statusEmoji(s session.Status) string {
	switch s {
	case session.StatusStarting:
		return ":hourglass:"
	case session.StatusActive:
		return ":large_green_circle:"
	case session.StatusIdle:
		return ":large_yellow_circle:"
	default:
		return ":black_circle:"
	}
}

func (h *Handler) status(ctx context.Context) string {
	sessions, err := h.registry.Load()
	if err != nil {
		return "Could not read the session registry: " + err.Error()
	}

	counts := map[session.Status]int{}
	for _, s := range sessions {
		counts[s.Status]++
	}

	muxerAlive, err := h.muxer.SessionExists(ctx, h.tmuxSession)
	if err != nil {
		muxerAlive = false
	}

	return fmt.Sprintf(
		"Muxer alive: %t\nstarting=%d active=%d idle=%d terminated=%d",
		muxerAlive, counts[session.StatusStarting], counts[session.StatusActive],
		counts[session.StatusIdle], counts[session.StatusTerminated],
	)
}

func (h *Handler) kill(ctx context.Context, window string) string {
	if window == "" {
		return "Usage: !kill <window>"
	}
	sessions, err := h.registry.Load()
	if err != nil {
		return "Could not read the session registry: " + err.Error()
	}
	for threadID, s := range sessions {
		if s.Window != window || s.Status == session.StatusTerminated {
			continue
		}
		if _, err := h.manager.Terminate(ctx, threadID); err != nil {
			return "Failed to terminate: " + err.Error()
		}
		return fmt.Sprintf("Terminated session on window `%s`.", window)
	}
	return fmt.Sprintf("No active session found for window `%s`.", window)
}

func (h *Handler) find(ctx context.Context, query string) string {
	if query == "" {
		return "Usage: !find <query>"
	}
	safeQuery := sanitize.ForSearchTerm(query)
	if safeQuery == "" {
		return "Query contains no searchable characters."
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "Could not resolve $HOME: " + err.Error()
	}

	builder := command.NewSafeBuilder()
	cmd, err := builder.Build(ctx, "find", home, "-maxdepth", "4", "-type", "d",
		"-iname", "*"+safeQuery+"*")
	if err != nil {
		return "Invalid search: " + err.Error()
	}
	out, err := cmd.Exec().Output()
	if err != nil {
		return "Search failed: " + err.Error()
	}

	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	var results []string
	for i, dir := range lines {
		if dir == "" || i >= maxFindResults {
			break
		}
		branch := git.CurrentBranch(dir)
		if branch != "" {
			results = append(results, fmt.Sprintf("`%s` (%s)", dir, branch))
		} else {
			results = append(results, fmt.Sprintf("`%s`", dir))
		}
	}
	if len(results) == 0 {
		return fmt.Sprintf("No directories matching %q.", query)
	}
	return strconv.Itoa(len(results)) + " result(s):\n" + strings.Join(results, "\n")
}

const helpText = `*Available commands*
!sessions, !s — list active sessions
!status — bridge status
!kill <window> — terminate a session by window name
!find <q>, !f <q> — search for a project directory
!help, !h — this message`
