package errors

import (
	"fmt"
)

// ConfigNotFound creates a configuration not found error.
func ConfigNotFound(path string) *BridgeError {
	return New(ErrCodeConfigNotFound, fmt.Sprintf("configuration file not found: %s", path)).
		WithDetail("path", path)
}

// ConfigInvalid creates an invalid configuration error.
func ConfigInvalid(reason string) *BridgeError {
	return New(ErrCodeConfigInvalid, fmt.Sprintf("invalid configuration: %s", reason))
}

// InstanceLocked creates an instance-contention error.
func InstanceLocked(pid int) *BridgeError {
	return New(ErrCodeInstanceLocked, fmt.Sprintf("another bridge instance is already running (pid %d)", pid)).
		WithDetail("pid", pid)
}

// LimitReached creates a concurrency-cap error for ensureSession.
func LimitReached(max int) *BridgeError {
	return New(ErrCodeLimitReached, fmt.Sprintf("maximum concurrent sessions (%d) reached", max)).
		WithDetail("maxConcurrent", max)
}

// UnsupportedType creates an attachment rejection error.
func UnsupportedType(filename string) *BridgeError {
	return New(ErrCodeUnsupportedType, fmt.Sprintf("unsupported attachment type: %s", filename)).
		WithDetail("filename", filename)
}

// DownloadFailed wraps a transport/timeout failure while fetching an attachment.
func DownloadFailed(filename string, err error) *BridgeError {
	return Wrap(err, ErrCodeDownloadFailed, fmt.Sprintf("failed to download attachment: %s", filename)).
		WithDetail("filename", filename)
}

// NotFound wraps a muxer "no such window/session" condition.
func NotFound(target string, err error) *BridgeError {
	return Wrap(err, ErrCodeNotFound, fmt.Sprintf("not found: %s", target)).
		WithDetail("target", target)
}

// Transient wraps a muxer error that should be retried or treated as a crash.
func Transient(target string, err error) *BridgeError {
	return Wrap(err, ErrCodeTransient, fmt.Sprintf("transient failure: %s", target)).
		WithDetail("target", target)
}
