// Package instancelock implements §4.8's Instance Lock: a single-writer
// guard preventing two bridge processes from running against the same
// chat-app configuration, adapted from the teacher's daemon pidfile
// package with the bridge's own path-naming and stale-removal rules.
package instancelock

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/chatbridge/bridge/errors"
	"github.com/chatbridge/bridge/pkg/process"
)

const (
	bridgePrefix  = "claude-bridge"
	tokenHashLen  = 12
)

// Path returns the lock file path for a given bot token, a sha256 prefix
// over the token so the path never exposes the credential itself.
func Path(botToken string) string {
	sum := sha256.Sum256([]byte(botToken))
	hash := hex.EncodeToString(sum[:])[:tokenHashLen]
	return filepath.Join(os.TempDir(), fmt.Sprintf("%s-%s.lock", bridgePrefix, hash))
}

// Lock is an acquired instance lock; Release removes the file.
type Lock struct {
	path string
}

// Acquire takes the instance lock at Path(botToken). If a live process
// already holds it, it returns an InstanceLocked error (§7 "Instance
// contention"); if the lock file is stale (holder PID no longer alive),
// it is removed and acquisition proceeds.
func Acquire(botToken string) (*Lock, error) {
	path := Path(botToken)

	if content, err := os.ReadFile(path); err == nil {
		pidStr := strings.TrimSpace(string(content))
		if pid, err := strconv.Atoi(pidStr); err == nil && process.IsProcessAlive(pid) {
			return nil, errors.InstanceLocked(pid)
		}
		_ = os.Remove(path)
	}

	if err := os.WriteFile(path, []byte(strconv.Itoa(os.Getpid())), 0o644); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "write instance lock")
	}
	return &Lock{path: path}, nil
}

// Release removes the lock file, intended to run from EXIT/SIGINT/SIGTERM
// handlers on clean shutdown.
func (l *Lock) Release() error {
	err := os.Remove(l.path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
