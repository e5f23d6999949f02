package registry

import "github.com/chatbridge/bridge/pkg/session"

// FindByWindow resolves the Session matching window, handling §9's
// "resurrection window-naming race": between the notify hook renaming a
// Session's window to the assistant's 8-char session id and a fresh
// provisional window reusing that same name, a lookup by window alone can
// briefly match more than one Session. sessionID8 (pass "" when the caller
// doesn't have an assistant session id to check) widens the match to
// either the live window name or the id it's being renamed to; among
// multiple matches the most recently active entry wins: active status
// first, then latest CreatedAt.
func FindByWindow(sessions map[string]*session.Session, window, sessionID8 string) (string, *session.Session) {
	var bestID string
	var best *session.Session
	for tid, s := range sessions {
		if s.Window != window && (sessionID8 == "" || s.Window != sessionID8) {
			continue
		}
		if best == nil || preferred(s, best) {
			bestID, best = tid, s
		}
	}
	return bestID, best
}

// preferred reports whether a should win over the current best candidate:
// active status first, then the more recently created.
func preferred(a, b *session.Session) bool {
	aActive := a.Status == session.StatusActive
	bActive := b.Status == session.StatusActive
	if aActive != bActive {
		return aActive
	}
	return a.CreatedAt.After(b.CreatedAt)
}
