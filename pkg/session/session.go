// Package session defines the Session record owned jointly by the bridge
// process and the external hook scripts, and the manager that drives its
// lifecycle against a muxer window.
package session

import "time"

// Status is one of the four lifecycle states a Session passes through.
type Status string

const (
	StatusStarting   Status = "starting"
	StatusActive     Status = "active"
	StatusIdle       Status = "idle"
	StatusTerminated Status = "terminated"
)

// Session is the authoritative record for one chat thread's assistant
// instance. The Registry Store holds the only copy that matters; any
// in-memory copy held by the manager is a cache that must be reloaded
// under the Registry's lock before being trusted.
type Session struct {
	ThreadID   string `json:"threadId"`
	ChannelID  string `json:"channelId"`
	Window     string `json:"window"`
	AssistantID string `json:"assistantId,omitempty"`
	WorkingDir string `json:"workingDir"`
	Status     Status `json:"status"`

	CreatedAt    time.Time  `json:"createdAt"`
	LastActivity time.Time  `json:"lastActivity"`
	IdleSince    *time.Time `json:"idleSince,omitempty"`

	LastInboundMessageID string `json:"lastInboundMessageId,omitempty"`
	PendingPermission    bool   `json:"pendingPermission"`

	// Metadata carries free-form string annotations without needing a
	// schema change. Resurrection carries it over to the new record;
	// nothing in this repository writes entries into it.
	Metadata map[string]string `json:"metadata,omitempty"`

	// ToolUsage holds tool invocation counts keyed by tool name. Nothing
	// in this repository populates it, and neither !status nor !sessions
	// reports it.
	ToolUsage map[string]int `json:"toolUsage,omitempty"`
}

// Resurrectable reports whether a terminated Session retains enough state
// (a known assistantId) to be re-attached to a fresh window.
func (s *Session) Resurrectable() bool {
	return s.Status == StatusTerminated && s.AssistantID != ""
}

// Terminated reports whether the Session is in its terminal state.
func (s *Session) Terminated() bool {
	return s.Status == StatusTerminated
}

// Touch marks the Session active as of now, clearing any idle marker. It
// is called on every inbound message that reaches an existing Session.
func (s *Session) Touch(now time.Time) {
	s.LastActivity = now
	s.IdleSince = nil
	if s.Status != StatusTerminated {
		s.Status = StatusActive
	}
}

// MarkIdle transitions the Session to idle as of now, per the idle_prompt
// notification from the assistant.
func (s *Session) MarkIdle(now time.Time) {
	s.Status = StatusIdle
	s.IdleSince = &now
}
