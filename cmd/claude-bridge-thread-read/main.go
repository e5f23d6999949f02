// Command claude-bridge-thread-read is an external tool the assistant
// may call to read back everything posted to its own chat thread so
// far, per §6's "thread-read CLI" contract.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/chatbridge/bridge/config"
	"github.com/chatbridge/bridge/pkg/chat"
	"github.com/chatbridge/bridge/pkg/registry"
	"github.com/chatbridge/bridge/pkg/tmux"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "claude-bridge-thread-read:", err)
		os.Exit(1)
	}
}

func run() error {
	threadID, channelID, err := resolveThread()
	if err != nil {
		return err
	}

	cfg, err := config.LoadDefault()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	sdk := chat.NewSlack(cfg.BotToken, cfg.AppToken)
	replies, err := sdk.ThreadReplies(ctx, channelID, threadID)
	if err != nil {
		return fmt.Errorf("failed to read thread: %w", err)
	}

	for _, text := range replies {
		fmt.Println(text)
	}
	return nil
}

// resolveThread implements §6: "resolve thread/channel from env
// threadId/channelId or by looking up the current muxer window name in
// the Registry."
func resolveThread() (threadID, channelID string, err error) {
	threadID = os.Getenv("threadId")
	channelID = os.Getenv("channelId")
	if threadID != "" && channelID != "" {
		return threadID, channelID, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", "", fmt.Errorf("failed to resolve $HOME: %w", err)
	}
	stateDir := filepath.Join(home, ".local", "state", "claude-bridge")
	reg := registry.New(filepath.Join(stateDir, "registry.json"))

	tmuxClient, err := tmux.NewClient()
	if err != nil {
		return "", "", fmt.Errorf("failed to initialize tmux client: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	window, err := tmuxClient.CurrentWindowName(ctx)
	if err != nil {
		return "", "", fmt.Errorf("failed to determine current tmux window: %w", err)
	}

	sessions, err := reg.Load()
	if err != nil {
		return "", "", fmt.Errorf("failed to read registry: %w", err)
	}
	tid, s := registry.FindByWindow(sessions, window, "")
	if s == nil {
		return "", "", fmt.Errorf("no session found for window %q", window)
	}
	return tid, s.ChannelID, nil
}
