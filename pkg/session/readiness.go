package session

import (
	"context"
	"strings"
	"time"

	"github.com/chatbridge/bridge/pkg/timing"
	"github.com/chatbridge/bridge/pkg/tmux"
)

// trustPromptMarkers are substrings the assistant's trust-this-folder
// dialog shows; while any is present the window isn't ready for real
// input yet, regardless of how long polling has run.
var trustPromptMarkers = []string{
	"Do you trust the files in this folder",
	"trust the files in this workspace",
}

// readyMarkers are substrings indicating the assistant is at its normal
// input prompt.
var readyMarkers = []string{
	"What would you like to do?",
	"Welcome to Claude Code",
	"❯", // prompt glyph
}

const readinessCaptureLines = 40

// waitForReady polls the window's pane content until a ready marker
// appears, a trust prompt marker disappears in favor of one, or the
// timeout deadline passes — in which case it proceeds anyway, per
// §4.3.2's "On timeout, proceed anyway." Whether a ready marker was seen
// or the deadline passed, it then waits the configured settle interval
// before returning; only ctx cancellation skips the settle wait.
func waitForReady(ctx context.Context, muxer tmux.MuxerAdapter, tmuxSession, window string, tc *timing.Config) {
	deadline := time.Now().Add(tc.ReadinessTimeout)

	for {
		out, err := muxer.Capture(ctx, tmuxSession, window, readinessCaptureLines)
		if err == nil {
			if !containsAny(out, trustPromptMarkers) && containsAny(out, readyMarkers) {
				break
			}
		}
		if time.Now().After(deadline) {
			break
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(tc.ReadinessPollInterval):
		}
	}

	if tc.SettleInterval > 0 {
		time.Sleep(tc.SettleInterval)
	}
}

func containsAny(haystack string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(haystack, n) {
			return true
		}
	}
	return false
}
