// Package router implements the Inbound Router (§4.4): it interprets
// chat events and dispatches them to the Session Manager, the Bot
// Command Handler, or directly to the Muxer Adapter.
package router

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/chatbridge/bridge/logging"
	"github.com/chatbridge/bridge/pkg/botcmd"
	"github.com/chatbridge/bridge/pkg/chat"
	"github.com/chatbridge/bridge/pkg/dmcache"
	"github.com/chatbridge/bridge/pkg/fetch"
	"github.com/chatbridge/bridge/pkg/session"
	"github.com/chatbridge/bridge/pkg/timing"
	"github.com/chatbridge/bridge/pkg/tmux"
)

var log = logging.NewLogger("router")

const eyesReaction = "eyes"

var workingDirPrefixRe = regexp.MustCompile(`^\[([^\]]+)\]\s*(.*)$`)

// reactionTable is §4.4's reaction vocabulary, applied to reactions on a
// thread's root message only.
var reactionTable = map[string]string{
	"octagonal_sign":              "terminate",
	"no_entry":                    "terminate",
	"white_check_mark":            "approve",
	"heavy_check_mark":            "approve",
	"x":                           "reject",
	"negative_squared_cross_mark": "reject",
}

// Router wires the chat SDK's events to the Session Manager and Bot
// Command Handler, implementing chat.EventHandler.
type Router struct {
	sdk          chat.SDK
	manager      *session.Manager
	botCmd       *botcmd.Handler
	muxer        tmux.MuxerAdapter
	fetcher      *fetch.Client
	timing       *timing.Config
	allowedUsers map[string]bool
	tmuxSession  string
}

// Config bundles Router's constructor arguments.
type Config struct {
	SDK          chat.SDK
	Manager      *session.Manager
	BotCmd       *botcmd.Handler
	Muxer        tmux.MuxerAdapter
	Fetcher      *fetch.Client
	Timing       *timing.Config
	AllowedUsers []string
	TmuxSession  string
}

// New constructs a Router.
func New(cfg Config) *Router {
	allowed := make(map[string]bool, len(cfg.AllowedUsers))
	for _, u := range cfg.AllowedUsers {
		allowed[u] = true
	}
	return &Router{
		sdk:          cfg.SDK,
		manager:      cfg.Manager,
		botCmd:       cfg.BotCmd,
		muxer:        cfg.Muxer,
		fetcher:      cfg.Fetcher,
		timing:       cfg.Timing,
		allowedUsers: allowed,
		tmuxSession:  cfg.TmuxSession,
	}
}

// threadID implements §4.4's thread identification rule.
func threadID(msg chat.Message) string {
	if msg.ThreadID != "" {
		return msg.ThreadID
	}
	return msg.MessageID
}

// OnMessage implements chat.EventHandler.
func (r *Router) OnMessage(ctx context.Context, msg chat.Message) {
	if msg.Subtype != "" && msg.Subtype != "file_share" {
		return
	}
	id := threadID(msg)
	msg.ChannelID = r.resolveChannel(ctx, msg.UserID, msg.ChannelID)

	if !r.allowedUsers[msg.UserID] {
		_, _ = r.sdk.PostMessage(ctx, msg.ChannelID, id, "Sorry, you're not authorized to use this bridge.")
		return
	}

	sess, err := r.manager.Get(id)
	if err != nil {
		log.WithError(err).Warn("registry lookup failed")
		return
	}

	if sess != nil && sess.Status != session.StatusTerminated {
		r.handleInSessionText(ctx, sess, msg)
		return
	}

	isNewThread := msg.ThreadID == ""
	text := msg.Text
	workingDir := ""
	if isNewThread {
		workingDir, text = r.stripWorkingDirPrefix(ctx, msg.ChannelID, id, text)
	}
	msg.Text = text

	sess, err = r.manager.EnsureSession(ctx, id, msg.ChannelID, workingDir)
	if err != nil {
		r.replyToError(ctx, msg.ChannelID, id, err)
		return
	}

	r.addEyesReaction(ctx, sess, msg.MessageID)
	go r.waitReadyThenInject(sess, msg)
}

func (r *Router) waitReadyThenInject(sess *session.Session, msg chat.Message) {
	ctx := context.Background()
	r.manager.WaitReady(ctx, sess)
	r.injectInbound(ctx, sess, msg)
}

// botCommandWords is the closed "!"-prefixed grammar (§4.7) recognized
// inside an in-session chat message; anything else falls through to the
// assistant's terminal.
var botCommandWords = map[string]bool{
	"sessions": true, "s": true,
	"status": true,
	"kill":   true,
	"find":   true, "f": true,
	"help": true, "h": true,
}

func (r *Router) handleInSessionText(ctx context.Context, sess *session.Session, msg chat.Message) {
	text := strings.TrimSpace(msg.Text)
	if strings.HasPrefix(text, "!") {
		fields := strings.Fields(text)
		word := strings.TrimPrefix(fields[0], "!")
		rest := strings.TrimSpace(strings.TrimPrefix(text, fields[0]))

		if word == "kill" && rest == "" {
			if _, err := r.manager.Terminate(ctx, sess.ThreadID); err != nil {
				_, _ = r.sdk.PostMessage(ctx, sess.ChannelID, sess.ThreadID, "Failed to terminate: "+err.Error())
				return
			}
			_, _ = r.sdk.PostMessage(ctx, sess.ChannelID, sess.ThreadID, ":skull: Session terminated via !kill.")
			return
		}
		if botCommandWords[word] {
			_, _ = r.sdk.PostMessage(ctx, sess.ChannelID, sess.ThreadID, r.botCmd.Dispatch(ctx, word, rest))
			return
		}
	}

	r.addEyesReaction(ctx, sess, msg.MessageID)
	r.injectInbound(ctx, sess, msg)
}

func (r *Router) addEyesReaction(ctx context.Context, sess *session.Session, messageID string) {
	if err := r.sdk.AddReaction(ctx, sess.ChannelID, messageID, eyesReaction); err != nil {
		log.WithError(err).Debug("add eyes reaction failed")
		return
	}
	if err := r.manager.SetLastInboundMessageID(sess.ThreadID, messageID); err != nil {
		log.WithError(err).Debug("record last inbound message id failed")
	}
}

func (r *Router) injectInbound(ctx context.Context, sess *session.Session, msg chat.Message) {
	in := session.Inbound{Text: msg.Text, MessageID: msg.MessageID}

	var unsupported []string
	for _, att := range msg.Attachments {
		if !fetch.Supported(att.Filename) {
			unsupported = append(unsupported, att.Filename)
			continue
		}
		dlCtx, cancel := context.WithTimeout(ctx, r.timing.DownloadTimeout)
		path, err := r.fetcher.Download(dlCtx, sess.ThreadID, att.Filename, att.URLPrivate)
		cancel()
		if err != nil {
			unsupported = append(unsupported, att.Filename)
			continue
		}
		in.AttachmentPaths = append(in.AttachmentPaths, path)
	}
	if len(unsupported) > 0 {
		suffix := fmt.Sprintf("[Unsupported/failed: %s]", strings.Join(unsupported, ", "))
		if in.Text == "" {
			in.Text = suffix
		} else {
			in.Text += " " + suffix
		}
	}

	if in.Text == "" && len(in.AttachmentPaths) == 0 {
		return
	}

	result, err := r.manager.Inject(ctx, sess, in)
	if err != nil {
		log.WithError(err).WithField("threadId", sess.ThreadID).Warn("inject failed")
		return
	}

	if result.ScheduleEyesRemoval {
		go func() {
			time.Sleep(r.timing.RejectionCleanupDelay)
			_ = r.sdk.RemoveReaction(context.Background(), sess.ChannelID, msg.MessageID, eyesReaction)
		}()
	}
}

// resolveChannel fills in a missing channel id for a DM event by
// resolving userID to its conversation id via the chat SDK, caching the
// result under dmcache so repeat events (and reaction removals) for the
// same user don't pay for another conversations.open round trip.
func (r *Router) resolveChannel(ctx context.Context, userID, channelID string) string {
	if channelID != "" {
		return channelID
	}
	if cached := dmcache.Get(userID); cached != "" {
		return cached
	}
	resolved, err := r.sdk.OpenConversation(ctx, userID)
	if err != nil {
		log.WithError(err).WithField("userId", userID).Debug("resolve DM channel failed")
		return ""
	}
	if err := dmcache.Put(userID, resolved); err != nil {
		log.WithError(err).Debug("cache DM channel failed")
	}
	return resolved
}

func (r *Router) replyToError(ctx context.Context, channelID, threadID string, err error) {
	_, _ = r.sdk.PostMessage(ctx, channelID, threadID, "Could not start a session: "+err.Error())
}

// OnReaction implements chat.EventHandler per §4.4's reaction table.
func (r *Router) OnReaction(ctx context.Context, reaction chat.Reaction) {
	action, ok := reactionTable[reaction.Name]
	if !ok {
		return
	}

	sess, err := r.manager.Get(reaction.ItemTS)
	if err != nil || sess == nil || sess.Status == session.StatusTerminated {
		return
	}

	switch action {
	case "terminate":
		if _, err := r.manager.Terminate(ctx, sess.ThreadID); err != nil {
			return
		}
		_, _ = r.sdk.PostMessage(ctx, sess.ChannelID, sess.ThreadID, ":skull: Session terminated via reaction.")
	case "approve":
		_ = r.muxer.SendLiteral(ctx, r.tmuxSession, sess.Window, "1")
	case "reject":
		_ = r.muxer.SendKey(ctx, r.tmuxSession, sess.Window, "Escape")
	}
}

// OnSlashCommand implements chat.EventHandler.
func (r *Router) OnSlashCommand(ctx context.Context, cmd chat.SlashCommand) string {
	if !r.allowedUsers[cmd.UserID] {
		return "Sorry, you're not authorized to use this bridge."
	}
	word := strings.TrimPrefix(cmd.Command, "/")
	return r.botCmd.Dispatch(ctx, word, cmd.Text)
}

// stripWorkingDirPrefix implements §4.4's "Working-directory prefix" rule.
func (r *Router) stripWorkingDirPrefix(ctx context.Context, channelID, threadID, text string) (string, string) {
	match := workingDirPrefixRe.FindStringSubmatch(text)
	if match == nil {
		return "", text
	}
	raw, rest := match[1], match[2]

	resolved := raw
	if resolved == "~" || strings.HasPrefix(resolved, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			resolved = filepath.Join(home, strings.TrimPrefix(resolved, "~"))
		}
	}

	info, err := os.Stat(resolved)
	if err != nil || !info.IsDir() {
		_, _ = r.sdk.PostMessage(ctx, channelID, threadID, fmt.Sprintf("`%s` is not a directory; using the default working directory.", raw))
		return "", rest
	}
	return resolved, rest
}
