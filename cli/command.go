package cli

import (
    "github.com/spf13/cobra"
    "github.com/sirupsen/logrus"
    "github.com/chatbridge/bridge/logging"
)

// CommandOptions holds common options for bridge commands
type CommandOptions struct {
    ConfigFile string
    Verbose    bool
    JSONOutput bool
}

// NewStandardCommand creates a new command with the bridge's standard flags
func NewStandardCommand(use, short string) *cobra.Command {
    cmd := &cobra.Command{
        Use:   use,
        Short: short,
    }

    // Standard flags for all bridge commands
    cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
    cmd.PersistentFlags().Bool("json", false, "Output in JSON format")
    cmd.PersistentFlags().StringP("config", "c", "", "Path to bridge.json config file")

    // Apply styled help
    SetStyledHelp(cmd)

    return cmd
}

// GetLogger creates a logger based on command flags
func GetLogger(cmd *cobra.Command) *logrus.Logger {
    // This returns a logrus.Entry, we need to get the underlying logger
    entry := logging.NewLogger("cli")
    logger := entry.Logger
    
    verbose, _ := cmd.Flags().GetBool("verbose")
    if verbose {
        logger.SetLevel(logrus.DebugLevel)
    }
    
    jsonOutput, _ := cmd.Flags().GetBool("json")
    if jsonOutput {
        logger.SetFormatter(&logrus.JSONFormatter{})
    }
    
    return logger
}

// GetOptions extracts common options from a command
func GetOptions(cmd *cobra.Command) CommandOptions {
    configFile, _ := cmd.Flags().GetString("config")
    verbose, _ := cmd.Flags().GetBool("verbose")
    jsonOutput, _ := cmd.Flags().GetBool("json")
    
    return CommandOptions{
        ConfigFile: configFile,
        Verbose:    verbose,
        JSONOutput: jsonOutput,
    }
}

// InitConfig returns configFile unchanged; resolving the default bridge
// config path is the caller's job (see cmd/claude-bridge's loadConfig).
func InitConfig(configFile string) (string, error) {
    return configFile, nil
}