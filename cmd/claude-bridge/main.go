// Command claude-bridge is the bridge daemon: it holds the chat SDK's
// event loop, the session manager, and the periodic sweep engine for the
// lifetime of the process.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/chatbridge/bridge/cli"
	"github.com/chatbridge/bridge/config"
	"github.com/chatbridge/bridge/logging"
	"github.com/chatbridge/bridge/pkg/botcmd"
	"github.com/chatbridge/bridge/pkg/chat"
	"github.com/chatbridge/bridge/pkg/fetch"
	"github.com/chatbridge/bridge/pkg/instancelock"
	"github.com/chatbridge/bridge/pkg/registry"
	"github.com/chatbridge/bridge/pkg/router"
	"github.com/chatbridge/bridge/pkg/session"
	"github.com/chatbridge/bridge/pkg/timing"
	"github.com/chatbridge/bridge/pkg/tmux"
	"github.com/chatbridge/bridge/util/pathutil"
	"github.com/spf13/cobra"
)

var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

func main() {
	rootCmd := cli.NewStandardCommand("claude-bridge", "Bridge between a team chat service and terminal-hosted assistant instances")
	rootCmd.AddCommand(cli.NewVersionCommand("claude-bridge", cli.VersionInfo{Version: version, Commit: commit, BuildDate: buildDate, BuildArch: "go"}))
	rootCmd.AddCommand(newRunCmd())
	rootCmd.AddCommand(newDoctorCmd())

	if err := rootCmd.Execute(); err != nil {
		cli.PrintError(rootCmd, err)
		os.Exit(1)
	}
}

func newRunCmd() *cobra.Command {
	var configPath string
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the bridge daemon in the foreground",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDaemon(configPath)
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to bridge.json (defaults to $HOME/.config/claude-bridge/bridge.json)")
	return cmd
}

func runDaemon(configPath string) error {
	cfg, resolvedPath, err := loadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logging.SetConfig(cfg.Logging)
	logger := logging.NewLogger("daemon")

	lock, err := instancelock.Acquire(cfg.BotToken)
	if err != nil {
		return fmt.Errorf("failed to start: %w", err)
	}
	defer func() {
		if err := lock.Release(); err != nil {
			logger.WithError(err).Warn("failed to release instance lock")
		}
	}()

	home, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to resolve $HOME: %w", err)
	}
	stateDir := filepath.Join(home, ".local", "state", "claude-bridge")
	if err := os.MkdirAll(stateDir, 0o755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}
	fetchRoot := filepath.Join(stateDir, "attachments")

	reg := registry.New(filepath.Join(stateDir, "registry.json"))

	tmuxClient, err := tmux.NewClient()
	if err != nil {
		return fmt.Errorf("failed to initialize tmux client: %w", err)
	}
	muxer := tmux.NewAdapter(tmuxClient)

	sdk := chat.NewSlack(cfg.BotToken, cfg.AppToken)

	tc := timing.Default()
	mgr := session.New(reg, muxer, sdk, tc, cfg.MultiSession)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger.Info("seeding provisional window index")
	if err := mgr.SeedProvisionalIndex(ctx); err != nil {
		logger.WithError(err).Warn("failed to seed provisional window index")
	}
	logger.Info("reconciling session registry against live windows")
	if err := mgr.Reconcile(ctx); err != nil {
		logger.WithError(err).Warn("failed to reconcile session registry")
	}

	watcher, err := config.NewWatcher(resolvedPath, logger, func(c *config.Config) {
		logging.SetConfig(c.Logging)
		mgr.SetConfig(c.MultiSession)
	})
	if err != nil {
		logger.WithError(err).Warn("failed to start config watcher; reload-on-change is disabled")
	} else {
		go watcher.Start(ctx)
		defer watcher.Close()
	}

	bc := botcmd.New(reg, mgr, muxer, cfg.MultiSession.TmuxSession)
	fetcher := fetch.New(&http.Client{Timeout: tc.DownloadTimeout}, fetchRoot, sdk.BearerToken())

	r := router.New(router.Config{
		SDK:          sdk,
		Manager:      mgr,
		BotCmd:       bc,
		Muxer:        muxer,
		Fetcher:      fetcher,
		Timing:       tc,
		AllowedUsers: cfg.AllowedUsers,
		TmuxSession:  cfg.MultiSession.TmuxSession,
	})

	engine := session.NewEngine(mgr, fetchRoot)
	engine.Start(ctx)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-stop
		logger.Info("received stop signal, shutting down")
		cancel()
	}()

	logger.WithField("pid", os.Getpid()).Info("bridge daemon starting")
	if err := sdk.Run(ctx, r); err != nil && ctx.Err() == nil {
		return fmt.Errorf("chat event loop exited: %w", err)
	}
	return nil
}

func newDoctorCmd() *cobra.Command {
	var configPath string
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check that the bridge's environment is ready to run",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDoctor(configPath)
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to bridge.json")
	return cmd
}

func runDoctor(configPath string) error {
	progress := cli.NewProgressReporter()
	ok := true

	progress.Update("tmux", "starting")
	if _, err := tmux.NewClient(); err != nil {
		progress.Update("tmux", "failed")
		ok = false
	} else {
		progress.Update("tmux", "completed")
	}

	progress.Update("config", "starting")
	cfg, _, err := loadConfig(configPath)
	if err != nil {
		progress.Update("config", "failed")
		ok = false
	} else {
		progress.Update("config", "completed")
	}
	progress.Done()

	if !ok {
		return fmt.Errorf("one or more checks failed")
	}
	if cfg != nil && len(cfg.AllowedUsers) == 0 {
		fmt.Println("warning: allowedUsers is empty, no one will be able to use the bridge")
	}
	fmt.Println("all checks passed")
	return nil
}

func loadConfig(path string) (*config.Config, string, error) {
	if path != "" {
		cfg, err := config.Load(path)
		return cfg, path, err
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, "", err
	}
	resolved := filepath.Join(home, ".config", "claude-bridge", "bridge.json")
	if !pathutil.IsDir(filepath.Dir(resolved)) {
		resolved = "bridge.json"
	}
	cfg, err := config.LoadDefault()
	return cfg, resolved, err
}
