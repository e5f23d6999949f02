// Package timing centralizes every fixed delay the bridge uses to
// synchronize with the assistant's terminal UI and to pace its periodic
// sweeps. Tests construct a zeroed Config so none of these waits are
// actually incurred.
package timing

import "time"

// Config holds every timing constant used by the session manager, its
// sweeps, the inbound router, and the attachment download timeout wired
// in cmd/claude-bridge. None of these are scattered as
// package-level constants; every call site takes a *Config so tests can
// substitute Zero().
type Config struct {
	// ReadinessPollInterval is how often the manager polls a freshly
	// created window's pane content while waiting for the assistant to
	// become ready for input.
	ReadinessPollInterval time.Duration

	// ReadinessTimeout is the deadline after which the manager proceeds
	// to send input even though no ready marker was observed.
	ReadinessTimeout time.Duration

	// TrustPromptDelay is how long after window creation the manager
	// sends the single "1" keystroke that auto-confirms the assistant's
	// trust-this-folder dialog.
	TrustPromptDelay time.Duration

	// SettleInterval is the brief pause after readiness is detected,
	// before the first inbound is injected.
	SettleInterval time.Duration

	// AttachmentEnterGap is the pause between the first and second Enter
	// sent after an attachment path literal.
	AttachmentEnterGap time.Duration

	// AttachmentGap is the pause between consecutive attachments.
	AttachmentGap time.Duration

	// OptionDownGap is the pause after each Down keystroke when
	// navigating a permission prompt's option list.
	OptionDownGap time.Duration

	// OptionAmendOpenDelay is the wait after Tab before the amendment
	// input is assumed open.
	OptionAmendOpenDelay time.Duration

	// OptionAmendSubmitDelay is the wait after the amendment text is sent,
	// before Enter.
	OptionAmendSubmitDelay time.Duration

	// FreeTextEnterGap is the pause between the first and second Enter
	// sent after a free-text reply.
	FreeTextEnterGap time.Duration

	// IdleSweepPeriod is how often the idle sweep runs.
	IdleSweepPeriod time.Duration

	// CrashSweepPeriod is how often the crash-detection sweep runs.
	CrashSweepPeriod time.Duration

	// TempCleanupPeriod is how often the temp-file retention sweep runs.
	TempCleanupPeriod time.Duration

	// DownloadTimeout bounds a single attachment download.
	DownloadTimeout time.Duration

	// RejectionCleanupDelay is how long the router waits before removing
	// the "eyes" reaction it added for a plain-rejection reply.
	RejectionCleanupDelay time.Duration
}

// Default returns the timing constants named in the bridge's behavioral
// contract: readiness poll ~300ms up to a 15s deadline, trust-prompt
// keystroke at ~2s, settle at ~200ms, keystroke gaps at 100ms/500ms/1s,
// sweeps at 60s/30s/24h, downloads bounded at 30s.
func Default() *Config {
	return &Config{
		ReadinessPollInterval:  300 * time.Millisecond,
		ReadinessTimeout:       15 * time.Second,
		TrustPromptDelay:       2 * time.Second,
		SettleInterval:         200 * time.Millisecond,
		AttachmentEnterGap:     100 * time.Millisecond,
		AttachmentGap:          1 * time.Second,
		OptionDownGap:          100 * time.Millisecond,
		OptionAmendOpenDelay:   500 * time.Millisecond,
		OptionAmendSubmitDelay: 500 * time.Millisecond,
		FreeTextEnterGap:       100 * time.Millisecond,
		IdleSweepPeriod:        60 * time.Second,
		CrashSweepPeriod:       30 * time.Second,
		TempCleanupPeriod:      24 * time.Hour,
		DownloadTimeout:        30 * time.Second,
		RejectionCleanupDelay:  1500 * time.Millisecond,
	}
}

// Zero returns a Config with every delay set to zero, for tests that want
// sweeps and keystroke pacing to run without incurring real wall-clock
// waits.
func Zero() *Config {
	return &Config{}
}
