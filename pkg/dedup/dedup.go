// Package dedup implements the Duplicate Suppressor: hash-based
// signalling files under /tmp that let the external prompt-forwarding
// hook recognize assistant input the bridge itself just injected, so it
// doesn't echo it back into the thread.
package dedup

import (
	"crypto/md5"
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"
)

const pendingPrefix = "claude-bridge-pending"

// PendingPath returns the per-thread pending-hash file path.
func PendingPath(threadID string) string {
	return filepath.Join(os.TempDir(), pendingPrefix+"-"+threadID)
}

// hash returns the hex md5 of content, trimmed, per §4.3.3/§4.6's
// "md5(trimmed text)".
func hash(content string) string {
	sum := md5.Sum([]byte(strings.TrimSpace(content)))
	return hex.EncodeToString(sum[:])
}

// WritePending records the hash of text the bridge is about to inject
// into threadId's window, immediately before sending it, per §4.6:
// "Written by the bridge immediately before injecting any text into the
// window."
func WritePending(threadID, text string) error {
	return os.WriteFile(PendingPath(threadID), []byte(hash(text)), 0o644)
}

// Matches reports whether observedText's hash equals the pending-hash
// file's recorded content for threadId. Used by the prompt-forwarding
// hook's own process, not the bridge, but kept here since both sides
// must agree on the hash function.
func Matches(threadID, observedText string) (bool, error) {
	data, err := os.ReadFile(PendingPath(threadID))
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return string(data) == hash(observedText), nil
}

// Clear removes the pending-hash file for threadId, on either a match
// (echo suppressed) or a mismatch (stale file cleanup), per §4.6: "Stale
// files are also deleted on mismatch."
func Clear(threadID string) error {
	err := os.Remove(PendingPath(threadID))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
