package chat

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/chatbridge/bridge/logging"
	"github.com/slack-go/slack"
	"github.com/slack-go/slack/slackevents"
	"github.com/slack-go/slack/socketmode"
)

var log = logging.NewLogger("chat")

// Slack is the real SDK implementation, a socket-mode client over
// slack-go/slack.
type Slack struct {
	api      *slack.Client
	client   *socketmode.Client
	botToken string
}

// NewSlack constructs a Slack SDK from the bridge's configured bot and
// app tokens. The app token drives socket-mode; the bot token is used for
// every outbound call and for attachment downloads.
func NewSlack(botToken, appToken string) *Slack {
	api := slack.New(botToken, slack.OptionAppLevelToken(appToken))
	client := socketmode.New(api)
	return &Slack{api: api, client: client, botToken: botToken}
}

// Run starts the socket-mode event loop and dispatches decoded events to
// handler until ctx is cancelled.
func (s *Slack) Run(ctx context.Context, handler EventHandler) error {
	go s.dispatch(ctx, handler)
	return s.client.RunContext(ctx)
}

func (s *Slack) dispatch(ctx context.Context, handler EventHandler) {
	for {
		select {
		case <-ctx.Done():
			return
		case evt, ok := <-s.client.Events:
			if !ok {
				return
			}
			s.handleEvent(ctx, evt, handler)
		}
	}
}

func (s *Slack) handleEvent(ctx context.Context, evt socketmode.Event, handler EventHandler) {
	switch evt.Type {
	case socketmode.EventTypeEventsAPI:
		apiEvent, ok := evt.Data.(slackevents.EventsAPIEvent)
		if !ok {
			return
		}
		if evt.Request != nil {
			s.client.Ack(*evt.Request)
		}
		s.handleEventsAPI(ctx, apiEvent, handler)

	case socketmode.EventTypeSlashCommand:
		cmd, ok := evt.Data.(slack.SlashCommand)
		if !ok {
			return
		}
		reply := handler.OnSlashCommand(ctx, SlashCommand{
			ChannelID:   cmd.ChannelID,
			UserID:      cmd.UserID,
			Command:     cmd.Command,
			Text:        cmd.Text,
			ResponseURL: cmd.ResponseURL,
		})
		if evt.Request != nil {
			s.client.Ack(*evt.Request, map[string]string{"text": reply})
		}

	case socketmode.EventTypeConnecting, socketmode.EventTypeConnectionError,
		socketmode.EventTypeConnected, socketmode.EventTypeHello:
		log.WithField("socketmode_event", evt.Type).Debug("socket mode status")
	}
}

func (s *Slack) handleEventsAPI(ctx context.Context, apiEvent slackevents.EventsAPIEvent, handler EventHandler) {
	if apiEvent.Type != slackevents.CallbackEvent {
		return
	}
	switch ev := apiEvent.InnerEvent.Data.(type) {
	case *slackevents.AppMentionEvent:
		handler.OnMessage(ctx, Message{
			ChannelID: ev.Channel,
			ThreadID:  ev.ThreadTimeStamp,
			MessageID: ev.TimeStamp,
			UserID:    ev.User,
			Text:      stripMention(ev.Text),
		})

	case *slackevents.MessageEvent:
		if ev.BotID != "" || (ev.SubType != "" && ev.SubType != "file_share") {
			return
		}
		handler.OnMessage(ctx, Message{
			ChannelID:   ev.Channel,
			ThreadID:    ev.ThreadTimeStamp,
			MessageID:   ev.TimeStamp,
			UserID:      ev.User,
			Text:        ev.Text,
			Subtype:     ev.SubType,
			Attachments: filesToAttachments(ev.Files),
		})

	case *slackevents.ReactionAddedEvent:
		handler.OnReaction(ctx, Reaction{
			ChannelID: ev.Item.Channel,
			ItemTS:    ev.Item.Timestamp,
			UserID:    ev.User,
			Name:      ev.Reaction,
		})
	}
}

func filesToAttachments(files []slackevents.File) []Attachment {
	out := make([]Attachment, 0, len(files))
	for _, f := range files {
		out = append(out, Attachment{Filename: f.Name, URLPrivate: f.URLPrivate})
	}
	return out
}

// stripMention removes the bot's own "<@U…>" mention prefix from an
// app_mention event's text, per §4.4 "with the bot's own mention prefix
// stripped".
func stripMention(text string) string {
	if strings.HasPrefix(text, "<@") {
		if end := strings.IndexByte(text, '>'); end != -1 {
			return trimLeadingSpace(text[end+1:])
		}
	}
	return text
}

func trimLeadingSpace(s string) string {
	for len(s) > 0 && s[0] == ' ' {
		s = s[1:]
	}
	return s
}

func (s *Slack) PostMessage(ctx context.Context, channelID, threadID, text string) (string, error) {
	opts := []slack.MsgOption{slack.MsgOptionText(text, false)}
	if threadID != "" {
		opts = append(opts, slack.MsgOptionTS(threadID))
	}
	_, messageID, err := s.api.PostMessageContext(ctx, channelID, opts...)
	if err != nil {
		return "", fmt.Errorf("post message: %w", err)
	}
	return messageID, nil
}

func (s *Slack) AddReaction(ctx context.Context, channelID, timestamp, name string) error {
	return s.api.AddReactionContext(ctx, name, slack.NewRefToMessage(channelID, timestamp))
}

func (s *Slack) RemoveReaction(ctx context.Context, channelID, timestamp, name string) error {
	return s.api.RemoveReactionContext(ctx, name, slack.NewRefToMessage(channelID, timestamp))
}

func (s *Slack) AuthTest(ctx context.Context) (string, error) {
	resp, err := s.api.AuthTestContext(ctx)
	if err != nil {
		return "", err
	}
	return resp.URL, nil
}

func (s *Slack) OpenConversation(ctx context.Context, userID string) (string, error) {
	channel, _, _, err := s.api.OpenConversationContext(ctx, &slack.OpenConversationParameters{
		Users: []string{userID},
	})
	if err != nil {
		return "", err
	}
	return channel.ID, nil
}

func (s *Slack) BearerToken() string {
	return s.botToken
}

func (s *Slack) ThreadReplies(ctx context.Context, channelID, threadID string) ([]string, error) {
	msgs, _, _, err := s.api.GetConversationRepliesContext(ctx, &slack.GetConversationRepliesParameters{
		ChannelID: channelID,
		Timestamp: threadID,
	})
	if err != nil {
		return nil, fmt.Errorf("get thread replies: %w", err)
	}
	out := make([]string, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, m.Text)
	}
	return out, nil
}

func (s *Slack) UploadFile(ctx context.Context, channelID, threadID, localPath, title string) error {
	_, err := s.api.UploadFileV2Context(ctx, slack.UploadFileV2Parameters{
		Channel:         channelID,
		ThreadTimestamp: threadID,
		File:            localPath,
		Filename:        filepath.Base(localPath),
		Title:           title,
	})
	if err != nil {
		return fmt.Errorf("upload file: %w", err)
	}
	return nil
}
