package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/chatbridge/bridge/config"
	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"
)

var (
	loggers   = make(map[string]*logrus.Entry)
	loggersMu sync.Mutex

	currentCfg   config.LoggingConfig
	currentCfgMu sync.RWMutex
)

// SetConfig installs the logging configuration used by subsequently created
// loggers. Call this once at startup, before the first NewLogger call, with
// the Logging section of the loaded bridge config. Loggers created before
// SetConfig is called use built-in defaults (info level, text format).
func SetConfig(cfg config.LoggingConfig) {
	currentCfgMu.Lock()
	currentCfg = cfg
	currentCfgMu.Unlock()
}

// NewLogger creates and returns a pre-configured logger for a specific
// component. It uses a singleton pattern per component to avoid
// re-initializing.
func NewLogger(component string) *logrus.Entry {
	loggersMu.Lock()
	defer loggersMu.Unlock()

	if logger, exists := loggers[component]; exists {
		return logger
	}

	currentCfgMu.RLock()
	logCfg := currentCfg
	currentCfgMu.RUnlock()

	logger := logrus.New()

	levelStr := "info"
	if os.Getenv("CLAUDE_BRIDGE_LOG_LEVEL") != "" {
		levelStr = os.Getenv("CLAUDE_BRIDGE_LOG_LEVEL")
	} else if logCfg.Level != "" {
		levelStr = logCfg.Level
	}
	level, err := logrus.ParseLevel(levelStr)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if os.Getenv("CLAUDE_BRIDGE_LOG_CALLER") == "true" || logCfg.ReportCaller {
		logger.SetReportCaller(true)
	}

	switch logCfg.Format.Preset {
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{})
	case "simple":
		logger.SetFormatter(&TextFormatter{Config: config.FormatConfig{
			DisableTimestamp: true,
			DisableComponent: true,
		}})
	default:
		logger.SetFormatter(&TextFormatter{Config: logCfg.Format})
	}

	var writers []io.Writer

	var logFilePath string
	if logCfg.File.Enabled && logCfg.File.Path != "" {
		logFilePath = expandPath(logCfg.File.Path)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			dateStr := time.Now().Format("2006-01-02")
			logFilePath = filepath.Join(home, ".claude-bridge", "logs", fmt.Sprintf("%s-%s.log", component, dateStr))
		}
	}

	if logFilePath != "" {
		dir := filepath.Dir(logFilePath)
		if err := os.MkdirAll(dir, 0755); err != nil {
			if logCfg.File.Enabled {
				logger.Warnf("failed to create log directory %s: %v", dir, err)
			}
		} else {
			file, err := os.OpenFile(logFilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
			if err == nil {
				writers = append(writers, file)
			} else if logCfg.File.Enabled {
				logger.Warnf("failed to open log file %s: %v", logFilePath, err)
			}
		}
	}

	shouldLogToStderr := false
	stderrMode := "auto"
	if logCfg.Format.StructuredToStderr != "" {
		stderrMode = logCfg.Format.StructuredToStderr
	}

	switch stderrMode {
	case "always":
		shouldLogToStderr = true
	case "never":
		shouldLogToStderr = false
	case "auto":
		isDebug := os.Getenv("CLAUDE_BRIDGE_DEBUG") == "1" || logger.GetLevel() == logrus.DebugLevel
		isInteractive := isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())
		if isDebug || !isInteractive {
			shouldLogToStderr = true
		}
	}

	if shouldLogToStderr {
		writers = append(writers, os.Stderr)
	}

	switch len(writers) {
	case 0:
		logger.SetOutput(io.Discard)
	case 1:
		logger.SetOutput(writers[0])
	default:
		logger.SetOutput(io.MultiWriter(writers...))
	}

	entry := logger.WithField("component", component)
	loggers[component] = entry
	return entry
}

func expandPath(path string) string {
	if len(path) > 0 && path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}
