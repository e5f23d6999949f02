// Command claude-bridge-prompt-hook is invoked by the assistant whenever
// the user submits a prompt inside its own input loop. It exists to
// forward prompts typed directly into the terminal (bypassing chat)
// back into the thread, while suppressing the echo of prompts the
// bridge itself just injected, per §6's "prompt-forwarding hook"
// contract.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/chatbridge/bridge/config"
	"github.com/chatbridge/bridge/pkg/chat"
	"github.com/chatbridge/bridge/pkg/dedup"
	"github.com/chatbridge/bridge/pkg/registry"
	"github.com/chatbridge/bridge/pkg/session"
	"github.com/chatbridge/bridge/pkg/tmux"
)

// payload is the subset of the assistant's UserPromptSubmit hook JSON
// this binary reads.
type payload struct {
	HookEventName string `json:"hook_event_name"`
	SessionID     string `json:"session_id"`
	Prompt        string `json:"prompt"`
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "claude-bridge-prompt-hook:", err)
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

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	threadID, sess, err := resolveSession(ctx, reg, p.SessionID)
	if err != nil {
		return err
	}

	isPermission := sess.PendingPermission

	matched, err := dedup.Matches(threadID, p.Prompt)
	if err != nil {
		return fmt.Errorf("failed to check pending-hash file: %w", err)
	}
	if matched {
		return dedup.Clear(threadID)
	}
	_ = dedup.Clear(threadID)

	if !isPermission && !cooldownOK(threadID) {
		return nil
	}

	sdk := chat.NewSlack(cfg.BotToken, cfg.AppToken)
	text := fmt.Sprintf("_(local input)_ %s", p.Prompt)
	_, err = sdk.PostMessage(ctx, sess.ChannelID, threadID, text)
	return err
}

const assistantIDPrefixLen = 8

// resolveSession finds the Session for this invocation, per §6: from the
// $threadId/$channelId environment, falling back to matching the calling
// process's own muxer window name against the Registry via the §9
// resurrection-race compound predicate.
func resolveSession(ctx context.Context, reg *registry.Store, hookSessionID string) (string, *session.Session, error) {
	if threadID := os.Getenv("threadId"); threadID != "" {
		sess, err := reg.Get(threadID)
		if err != nil {
			return "", nil, fmt.Errorf("failed to read registry: %w", err)
		}
		if sess == nil {
			return "", nil, fmt.Errorf("no session found for threadId %q", threadID)
		}
		return threadID, sess, nil
	}

	tmuxClient, err := tmux.NewClient()
	if err != nil {
		return "", nil, fmt.Errorf("failed to initialize tmux client: %w", err)
	}
	window, err := tmuxClient.CurrentWindowName(ctx)
	if err != nil {
		return "", nil, fmt.Errorf("failed to determine current tmux window: %w", err)
	}

	sessions, err := reg.Load()
	if err != nil {
		return "", nil, fmt.Errorf("failed to read registry: %w", err)
	}
	sessionID8 := ""
	if len(hookSessionID) >= assistantIDPrefixLen {
		sessionID8 = hookSessionID[:assistantIDPrefixLen]
	}
	threadID, sess := registry.FindByWindow(sessions, window, sessionID8)
	if sess == nil {
		return "", nil, fmt.Errorf("no session found for window %q", window)
	}
	return threadID, sess, nil
}

// cooldownOK implements §6's "3s per-message cooldown", skipped when the
// Session has a pending permission prompt.
func cooldownOK(threadID string) bool {
	path := filepath.Join(os.TempDir(), "claude-bridge-prompthook-"+threadID)
	info, err := os.Stat(path)
	if err == nil && time.Since(info.ModTime()) < 3*time.Second {
		return false
	}
	_ = os.WriteFile(path, []byte(time.Now().Format(time.RFC3339)), 0o644)
	return true
}
