package config

// Config is the top-level bridge configuration, loaded from a single JSON
// file (bridge.json by default). Unlike the multi-file, YAML-layered config
// this package is adapted from, the bridge has no per-project override
// layer: one bot talks to one tmux host, so one file is enough.
type Config struct {
	BotToken      string        `json:"botToken"`
	AppToken      string        `json:"appToken"`
	AllowedUsers  []string      `json:"allowedUsers"`
	NotifyChannel string        `json:"notifyChannel"`
	MultiSession  MultiSession  `json:"multiSession"`
	Logging       LoggingConfig `json:"logging"`
}

// MultiSession holds the tunable knobs for the session manager. Fields here
// are re-read on reload; see Watcher.
type MultiSession struct {
	MaxConcurrent         int    `json:"maxConcurrent"`
	IdleTimeoutMinutes    int    `json:"idleTimeoutMinutes"`
	TmuxSession           string `json:"tmuxSession"`
	DefaultWorkingDir     string `json:"defaultWorkingDir"`
	NotifyOnTimeout       bool   `json:"notifyOnTimeout"`
	TempFileRetentionDays int    `json:"tempFileRetentionDays"`

	// AssistantCommand is the command line launched inside a freshly
	// created window, with "--resume <assistantId>" appended on
	// resurrection. Not part of the wire config table in §6, but every
	// real deployment needs to name its own assistant binary.
	AssistantCommand string `json:"assistantCommand"`
}

// LoggingConfig mirrors logging.Config but lives here so the whole bridge
// config, including the logging section, comes from one JSON document.
type LoggingConfig struct {
	Level        string         `json:"level"`
	ReportCaller bool           `json:"reportCaller"`
	File         FileSinkConfig `json:"file"`
	Format       FormatConfig   `json:"format"`
}

type FileSinkConfig struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path"`
}

type FormatConfig struct {
	Preset             string `json:"preset"`
	DisableTimestamp   bool   `json:"disableTimestamp"`
	DisableComponent   bool   `json:"disableComponent"`
	StructuredToStderr string `json:"structuredToStderr"`
}

// SetDefaults fills in zero-valued fields with the bridge's operating
// defaults. Called after JSON decode, before Validate.
func (c *Config) SetDefaults() {
	if c.MultiSession.MaxConcurrent == 0 {
		c.MultiSession.MaxConcurrent = 5
	}
	if c.MultiSession.IdleTimeoutMinutes == 0 {
		c.MultiSession.IdleTimeoutMinutes = 60
	}
	if c.MultiSession.TmuxSession == "" {
		c.MultiSession.TmuxSession = "claude"
	}
	if c.MultiSession.DefaultWorkingDir == "" {
		c.MultiSession.DefaultWorkingDir = "~"
	}
	if c.MultiSession.TempFileRetentionDays == 0 {
		c.MultiSession.TempFileRetentionDays = 14
	}
	if c.MultiSession.AssistantCommand == "" {
		c.MultiSession.AssistantCommand = "claude"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format.StructuredToStderr == "" {
		c.Logging.Format.StructuredToStderr = "auto"
	}
}
