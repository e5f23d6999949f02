package session

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/chatbridge/bridge/pkg/dedup"
)

var (
	optionWithInstructionsNum = regexp.MustCompile(`^[1-9]\.?\s+(.+)$`)
	optionWithInstructionsYes = regexp.MustCompile(`(?i)^(yes|y)\s+(.+)$`)
	optionWithInstructionsNo  = regexp.MustCompile(`(?i)^(no|n)\s+(.+)$`)
	simpleOptionRe            = regexp.MustCompile(`(?i)^([1-9]|yes|y|no|n)$`)
)

// classification is the outcome of classifying inbound text against the
// keystroke policy in §4.3.4.
type classification struct {
	kind         kind
	option       int    // 1-based option index, for optionWithInstructions
	instructions string // trailing free text, for optionWithInstructions
	digit        string // literal digit to send ("yes"/"no" mapped to "1"/"3"), for simpleOption
}

type kind int

const (
	kindFreeText kind = iota
	kindSimpleOption
	kindOptionWithInstructions
)

// classify implements §4.3.4's text classification.
func classify(text string) classification {
	if m := optionWithInstructionsNum.FindStringSubmatch(text); m != nil {
		n, _ := strconv.Atoi(string(text[0]))
		return classification{kind: kindOptionWithInstructions, option: n, instructions: m[1]}
	}
	if m := optionWithInstructionsYes.FindStringSubmatch(text); m != nil {
		return classification{kind: kindOptionWithInstructions, option: 1, instructions: m[2]}
	}
	if m := optionWithInstructionsNo.FindStringSubmatch(text); m != nil {
		return classification{kind: kindOptionWithInstructions, option: 3, instructions: m[2]}
	}
	if simpleOptionRe.MatchString(text) {
		lower := strings.ToLower(text)
		switch lower {
		case "yes", "y":
			return classification{kind: kindSimpleOption, digit: "1"}
		case "no", "n":
			return classification{kind: kindSimpleOption, digit: "3"}
		default:
			return classification{kind: kindSimpleOption, digit: text}
		}
	}
	return classification{kind: kindFreeText}
}

// isPlainRejection reports whether text is exactly a plain rejection
// option ("3", "n", "no"), per §4.3.3's rejection-cleanup rule.
func isPlainRejection(text string) bool {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "3", "n", "no":
		return true
	default:
		return false
	}
}

// send implements §4.3.4's keystroke policy for one piece of already
// pending-hashed text.
func (m *Manager) send(ctx context.Context, tmuxSession, window, text string) error {
	c := classify(text)
	tc := m.timing

	switch c.kind {
	case kindOptionWithInstructions:
		for i := 0; i < c.option-1; i++ {
			if err := m.muxer.SendKey(ctx, tmuxSession, window, "Down"); err != nil {
				return err
			}
			sleep(tc.OptionDownGap)
		}
		if err := m.muxer.SendKey(ctx, tmuxSession, window, "Tab"); err != nil {
			return err
		}
		sleep(tc.OptionAmendOpenDelay)
		if err := m.muxer.SendLiteral(ctx, tmuxSession, window, c.instructions); err != nil {
			return err
		}
		sleep(tc.OptionAmendSubmitDelay)
		return m.muxer.SendKey(ctx, tmuxSession, window, "Enter")

	case kindSimpleOption:
		return m.muxer.SendLiteral(ctx, tmuxSession, window, c.digit)

	default: // kindFreeText
		if err := m.muxer.SendLiteral(ctx, tmuxSession, window, text); err != nil {
			return err
		}
		if err := m.muxer.SendKey(ctx, tmuxSession, window, "Enter"); err != nil {
			return err
		}
		sleep(tc.FreeTextEnterGap)
		return m.muxer.SendKey(ctx, tmuxSession, window, "Enter")
	}
}

func sleep(d time.Duration) {
	if d > 0 {
		time.Sleep(d)
	}
}

// Inbound is a message to forward into a Session's window, per §4.3.3.
type Inbound struct {
	Text            string
	AttachmentPaths []string
	MessageID       string
}

// InjectResult tells the router what follow-up chat actions to take.
type InjectResult struct {
	EyesReactionMessageID string
	ScheduleEyesRemoval   bool
}

// Inject implements §4.3.3's keystrokes: attachments first, then text
// (with the pending-permission rewrite). It does not add the eyes
// reaction; the router adds it before calling Inject. It runs against the
// given Session, which the caller must have already loaded fresh from
// the Registry under the creation lock's successor — ordinary inbound on
// an existing Session does not need the creation lock, only mutual
// exclusion per thread, which the router provides by processing a
// thread's messages in arrival order.
func (m *Manager) Inject(ctx context.Context, sess *Session, in Inbound) (InjectResult, error) {
	cfg := m.config()
	window := sess.Window

	for i, path := range in.AttachmentPaths {
		if err := dedup.WritePending(sess.ThreadID, path); err != nil {
			return InjectResult{}, err
		}
		if err := m.muxer.SendLiteral(ctx, cfg.TmuxSession, window, path); err != nil {
			return InjectResult{}, err
		}
		if err := m.muxer.SendKey(ctx, cfg.TmuxSession, window, "Enter"); err != nil {
			return InjectResult{}, err
		}
		sleep(m.timing.AttachmentEnterGap)
		if err := m.muxer.SendKey(ctx, cfg.TmuxSession, window, "Enter"); err != nil {
			return InjectResult{}, err
		}
		if i < len(in.AttachmentPaths)-1 {
			sleep(m.timing.AttachmentGap)
		}
	}

	result := InjectResult{EyesReactionMessageID: in.MessageID}

	if in.Text == "" {
		return result, nil
	}

	text := in.Text
	wasPlainRejection := false
	if sess.PendingPermission {
		c := classify(text)
		if c.kind == kindFreeText {
			text = "3 " + text
			wasPlainRejection = false
		} else {
			wasPlainRejection = isPlainRejection(in.Text)
		}
		sess.PendingPermission = false
	} else {
		wasPlainRejection = isPlainRejection(text)
	}

	if err := dedup.WritePending(sess.ThreadID, text); err != nil {
		return result, err
	}
	if err := m.send(ctx, cfg.TmuxSession, window, text); err != nil {
		return result, err
	}

	result.ScheduleEyesRemoval = wasPlainRejection
	return result, nil
}
