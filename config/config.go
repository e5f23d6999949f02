package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/chatbridge/bridge/errors"
	"github.com/chatbridge/bridge/util/pathutil"
)

const defaultConfigName = "bridge.json"

// Load reads and parses a bridge configuration file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.ConfigNotFound(path)
		}
		return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to read config file").
			WithDetail("path", path)
	}
	return LoadFromBytes(data)
}

// LoadDefault loads bridge.json from $HOME/.config/claude-bridge, falling
// back to ./bridge.json in the current directory.
func LoadDefault() (*Config, error) {
	if home, err := os.UserHomeDir(); err == nil {
		candidate := filepath.Join(home, ".config", "claude-bridge", defaultConfigName)
		if pathutil.IsDir(filepath.Dir(candidate)) {
			if _, statErr := os.Stat(candidate); statErr == nil {
				return Load(candidate)
			}
		}
	}
	return Load(defaultConfigName)
}

// LoadFromBytes decodes raw JSON into a Config, applies defaults, and
// validates the result.
func LoadFromBytes(data []byte) (*Config, error) {
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to parse config JSON")
	}

	cfg.SetDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}
