// Command claude-bridge-notify-hook is invoked by the assistant on
// Notification(idle_prompt), Notification(permission_prompt), Stop,
// SubagentStop, and PreCompact events. It locates its own Session by
// matching its tmux window name against the Registry and updates that
// Session's lifecycle state, per §6's "notify hook" contract.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/chatbridge/bridge/config"
	"github.com/chatbridge/bridge/pkg/chat"
	"github.com/chatbridge/bridge/pkg/registry"
	"github.com/chatbridge/bridge/pkg/session"
	"github.com/chatbridge/bridge/pkg/tmux"
)

// payload is the subset of the assistant's hook JSON this binary reads.
// Field names mirror the assistant's own hook contract, not this
// project's Go naming conventions.
type payload struct {
	HookEventName  string `json:"hook_event_name"`
	SessionID      string `json:"session_id"`
	Cwd            string `json:"cwd"`
	Message        string `json:"message"`
	TranscriptPath string `json:"transcript_path"`
}

const assistantIDPrefixLen = 8

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "claude-bridge-notify-hook:", err)
		os.Exit(1)
	}
}

func run() error {
	var p payload
	if err := json.NewDecoder(os.Stdin).Decode(&p); err != nil {
		return fmt.Errorf("failed to parse hook payload: %w", err)
	}

	cfg, err := config.LoadDefault()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to resolve $HOME: %w", err)
	}
	stateDir := filepath.Join(home, ".local", "state", "claude-bridge")
	reg := registry.New(filepath.Join(stateDir, "registry.json"))

	tmuxClient, err := tmux.NewClient()
	if err != nil {
		return fmt.Errorf("failed to initialize tmux client: %w", err)
	}
	muxer := tmux.NewAdapter(tmuxClient)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	window, err := tmuxClient.CurrentWindowName(ctx)
	if err != nil {
		return fmt.Errorf("failed to determine current tmux window: %w", err)
	}

	sessions, err := reg.Load()
	if err != nil {
		return fmt.Errorf("failed to read registry: %w", err)
	}
	sessionID8 := ""
	if len(p.SessionID) >= assistantIDPrefixLen {
		sessionID8 = p.SessionID[:assistantIDPrefixLen]
	}
	threadID, sess := registry.FindByWindow(sessions, window, sessionID8)
	if sess == nil {
		return fmt.Errorf("no session found for window %q", window)
	}

	if !eventCooldownOK(sess.ThreadID, p.HookEventName) {
		return nil
	}

	sdk := chat.NewSlack(cfg.BotToken, cfg.AppToken)

	switch p.HookEventName {
	case "Stop", "SubagentStop":
		return handleStop(ctx, reg, muxer, sdk, cfg, threadID, sess, p)
	case "Notification":
		return handleNotification(ctx, reg, sdk, threadID, sess, p)
	case "PreCompact":
		return nil
	default:
		return nil
	}
}

func handleStop(ctx context.Context, reg *registry.Store, muxer tmux.MuxerAdapter, sdk chat.SDK, cfg *config.Config, threadID string, sess *session.Session, p payload) error {
	assistantID := p.SessionID
	newWindow := sess.Window
	if len(assistantID) >= assistantIDPrefixLen {
		newWindow = assistantID[:assistantIDPrefixLen]
		if err := muxer.RenameWindow(ctx, cfg.MultiSession.TmuxSession, sess.Window, newWindow); err != nil {
			return fmt.Errorf("failed to rename window: %w", err)
		}
	}

	if err := reg.Update(func(all map[string]*session.Session) error {
		cur, ok := all[threadID]
		if !ok {
			return fmt.Errorf("session disappeared from registry mid-hook")
		}
		cur.Window = newWindow
		cur.AssistantID = assistantID
		cur.Touch(time.Now())
		return nil
	}); err != nil {
		return err
	}

	if sess.LastInboundMessageID != "" {
		_ = removeEyesReaction(ctx, sdk, sess.ChannelID, sess.LastInboundMessageID)
	}

	text := p.Message
	if text == "" {
		text = "Finished."
	}
	_, err := sdk.PostMessage(ctx, sess.ChannelID, threadID, text)
	return err
}

// isPermissionPrompt reports whether a Notification event's message text
// is the assistant asking for tool-use permission, rather than its
// idle/waiting-for-input notice.
func isPermissionPrompt(message string) bool {
	return strings.Contains(strings.ToLower(message), "permission")
}

func handleNotification(ctx context.Context, reg *registry.Store, sdk chat.SDK, threadID string, sess *session.Session, p payload) error {
	if isPermissionPrompt(p.Message) {
		if err := reg.Update(func(all map[string]*session.Session) error {
			cur, ok := all[threadID]
			if !ok {
				return fmt.Errorf("session disappeared from registry mid-hook")
			}
			cur.PendingPermission = true
			return nil
		}); err != nil {
			return err
		}
		_, err := sdk.PostMessage(ctx, sess.ChannelID, threadID, p.Message)
		return err
	}

	return reg.Update(func(all map[string]*session.Session) error {
		cur, ok := all[threadID]
		if !ok {
			return fmt.Errorf("session disappeared from registry mid-hook")
		}
		cur.MarkIdle(time.Now())
		return nil
	})
}

func removeEyesReaction(ctx context.Context, sdk chat.SDK, channelID, messageID string) error {
	return sdk.RemoveReaction(ctx, channelID, messageID, "eyes")
}

// eventCooldownOK is the notify hook's per-Session cooldown: a marker file
// per (session, event) whose mtime suppresses a duplicate delivery of the
// same event within 3 seconds (no content hash is compared), distinct from
// pkg/dedup's text-hash suppression, which only covers inbound text the
// bridge itself injects.
func eventCooldownOK(threadID, eventName string) bool {
	path := filepath.Join(os.TempDir(), "claude-bridge-notify-"+threadID+"-"+eventName)
	info, err := os.Stat(path)
	if err == nil && time.Since(info.ModTime()) < 3*time.Second {
		return false
	}
	_ = os.WriteFile(path, []byte(time.Now().Format(time.RFC3339)), 0o644)
	return true
}
