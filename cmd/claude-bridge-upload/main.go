// Command claude-bridge-upload is an external tool the assistant may
// call to post a local file into its own chat thread as an attachment,
// per §6's "upload CLI" contract.
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
		fmt.Fprintln(os.Stderr, "claude-bridge-upload:", err)
		os.Exit(1)
	}
}

func run() error {
	if len(os.Args) < 2 {
		return fmt.Errorf("usage: claude-bridge-upload <path> [title]")
	}
	localPath := os.Args[1]
	title := filepath.Base(localPath)
	if len(os.Args) >= 3 {
		title = os.Args[2]
	}
	if _, err := os.Stat(localPath); err != nil {
		return fmt.Errorf("failed to stat %q: %w", localPath, err)
	}

	threadID, channelID, err := resolveThread()
	if err != nil {
		return err
	}

	cfg, err := config.LoadDefault()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	sdk := chat.NewSlack(cfg.BotToken, cfg.AppToken)
	if err := sdk.UploadFile(ctx, channelID, threadID, localPath, title); err != nil {
		return fmt.Errorf("failed to upload file: %w", err)
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
