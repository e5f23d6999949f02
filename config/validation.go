package config

import (
	"github.com/chatbridge/bridge/errors"
)

// Validate checks that the loaded configuration is usable. SetDefaults
// should be called first so zero-valued tunables don't trip validation.
func (c *Config) Validate() error {
	if c.BotToken == "" {
		return errors.New(errors.ErrCodeConfigInvalid, "botToken is required")
	}
	if c.AppToken == "" {
		return errors.New(errors.ErrCodeConfigInvalid, "appToken is required")
	}
	if len(c.AllowedUsers) == 0 {
		return errors.New(errors.ErrCodeConfigInvalid, "allowedUsers must list at least one user")
	}
	if c.MultiSession.MaxConcurrent <= 0 {
		return errors.New(errors.ErrCodeConfigInvalid, "multiSession.maxConcurrent must be positive").
			WithDetail("maxConcurrent", c.MultiSession.MaxConcurrent)
	}
	if c.MultiSession.IdleTimeoutMinutes <= 0 {
		return errors.New(errors.ErrCodeConfigInvalid, "multiSession.idleTimeoutMinutes must be positive").
			WithDetail("idleTimeoutMinutes", c.MultiSession.IdleTimeoutMinutes)
	}
	if c.MultiSession.TmuxSession == "" {
		return errors.New(errors.ErrCodeConfigInvalid, "multiSession.tmuxSession must not be empty")
	}
	return nil
}
