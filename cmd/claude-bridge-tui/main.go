// Command claude-bridge-tui is a read-only terminal dashboard over the
// bridge's Registry Store, for an operator to run alongside the daemon
// for the same visibility "!sessions" gives in-chat.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/chatbridge/bridge/pkg/registry"
	"github.com/chatbridge/bridge/pkg/session"
	"github.com/chatbridge/bridge/tui"
	"github.com/chatbridge/bridge/tui/theme"
)

const refreshInterval = 2 * time.Second

type model struct {
	reg   *registry.Store
	table table.Model
	err   error
	width int
}

type refreshMsg struct {
	sessions map[string]*session.Session
	err      error
}

func main() {
	tui.InitializeTUI()

	home, err := os.UserHomeDir()
	if err != nil {
		fmt.Fprintln(os.Stderr, "claude-bridge-tui:", err)
		os.Exit(1)
	}
	reg := registry.New(filepath.Join(home, ".local", "state", "claude-bridge", "registry.json"))

	columns := []table.Column{
		{Title: "Thread", Width: 18},
		{Title: "Status", Width: 12},
		{Title: "Window", Width: 14},
		{Title: "Working Dir", Width: 24},
		{Title: "Idle", Width: 10},
	}
	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(20),
	)
	t.SetStyles(tableStyles())

	m := &model{reg: reg, table: t}

	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintln(os.Stderr, "claude-bridge-tui:", err)
		os.Exit(1)
	}
}

func tableStyles() table.Styles {
	s := table.DefaultStyles()
	s.Header = theme.DefaultTheme.TableHeader.Copy().BorderBottom(true).Bold(true)
	s.Selected = theme.DefaultTheme.Selected
	return s
}

func (m *model) Init() tea.Cmd {
	return tea.Batch(m.loadCmd(), tick())
}

func tick() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

type tickMsg time.Time

func (m *model) loadCmd() tea.Cmd {
	return func() tea.Msg {
		sessions, err := m.reg.Load()
		return refreshMsg{sessions: sessions, err: err}
	}
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.table.SetWidth(msg.Width)
	case tickMsg:
		return m, tea.Batch(m.loadCmd(), tick())
	case refreshMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.table.SetRows(rowsFor(msg.sessions))
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func rowsFor(sessions map[string]*session.Session) []table.Row {
	threadIDs := make([]string, 0, len(sessions))
	for tid := range sessions {
		threadIDs = append(threadIDs, tid)
	}
	sort.Strings(threadIDs)

	rows := make([]table.Row, 0, len(threadIDs))
	now := time.Now()
	for _, tid := range threadIDs {
		s := sessions[tid]
		idle := "-"
		if s.IdleSince != nil {
			idle = now.Sub(*s.IdleSince).Round(time.Second).String()
		}
		rows = append(rows, table.Row{tid, statusLabel(s.Status), s.Window, s.WorkingDir, idle})
	}
	return rows
}

func statusLabel(st session.Status) string {
	switch st {
	case session.StatusActive:
		return theme.DefaultTheme.Success.Render(string(st))
	case session.StatusIdle:
		return theme.DefaultTheme.Warning.Render(string(st))
	case session.StatusTerminated:
		return theme.DefaultTheme.Error.Render(string(st))
	default:
		return string(st)
	}
}

func (m *model) View() string {
	header := theme.DefaultTheme.Header.Render("claude-bridge sessions")
	footer := theme.DefaultTheme.Muted.Render("q to quit · refreshes every 2s")
	if m.err != nil {
		footer = theme.DefaultTheme.Error.Render(fmt.Sprintf("registry read failed: %v", m.err))
	}
	return lipgloss.JoinVertical(lipgloss.Left, header, m.table.View(), footer)
}
