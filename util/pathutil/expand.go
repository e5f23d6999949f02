package pathutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Expand expands a leading "~" to the user's home directory and environment
// variables, returning an absolute path. The router's [<path>] prefix
// handling and the defaultWorkingDir config value do not go through it.
func Expand(path string) (string, error) {
	if path == "~" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("could not get user home directory: %w", err)
		}
		path = home
	} else if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("could not get user home directory: %w", err)
		}
		path = filepath.Join(home, path[2:])
	}

	path = os.ExpandEnv(path)

	return filepath.Abs(path)
}

// IsDir reports whether path exists and is a directory.
func IsDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
