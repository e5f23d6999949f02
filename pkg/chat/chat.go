// Package chat abstracts the team chat service the bridge talks to,
// behind a narrow interface the session manager and inbound router drive
// without knowing which vendor SDK sits underneath. The real
// implementation wraps slack-go/slack; tests substitute a Fake.
package chat

import "context"

// Message is an inbound chat message: a DM to the bot, or a mention of it
// in a channel. ThreadID is the root timestamp of the thread this message
// belongs to, or empty if it starts a new one.
type Message struct {
	ChannelID   string
	ThreadID    string
	MessageID   string
	UserID      string
	Text        string
	Subtype     string
	Attachments []Attachment
}

// Attachment is a file shared alongside a Message, with the private URL
// the bridge must fetch it from.
type Attachment struct {
	Filename   string
	URLPrivate string
}

// Reaction is an inbound reaction-added event.
type Reaction struct {
	ChannelID string
	ItemTS    string
	UserID    string
	Name      string
}

// SlashCommand is an inbound slash-command invocation.
type SlashCommand struct {
	ChannelID   string
	UserID      string
	Command     string
	Text        string
	ResponseURL string
}

// EventHandler receives chat events as the SDK's run loop decodes them.
// The Inbound Router implements this interface.
type EventHandler interface {
	OnMessage(ctx context.Context, msg Message)
	OnReaction(ctx context.Context, r Reaction)
	// OnSlashCommand returns the text to send back over the slash
	// command's own ephemeral reply channel.
	OnSlashCommand(ctx context.Context, cmd SlashCommand) string
}

// SDK is everything the bridge needs from the chat service: an event
// loop plus the handful of outbound operations §6 names.
type SDK interface {
	// Run blocks, decoding events and dispatching them to handler, until
	// ctx is cancelled or the connection fails unrecoverably.
	Run(ctx context.Context, handler EventHandler) error

	PostMessage(ctx context.Context, channelID, threadID, text string) (messageID string, err error)
	AddReaction(ctx context.Context, channelID, timestamp, name string) error
	RemoveReaction(ctx context.Context, channelID, timestamp, name string) error

	// AuthTest returns the workspace URL. Nothing in the bridge calls it;
	// !sessions links each session's channel, not its thread.
	AuthTest(ctx context.Context) (workspaceURL string, err error)

	// OpenConversation resolves a user id to its DM channel id, needed to
	// remove a reaction on a message the bridge only knows by user+thread.
	OpenConversation(ctx context.Context, userID string) (channelID string, err error)

	// BearerToken returns the token attachment downloads must present,
	// since chat-hosted file URLs require the same bot credential.
	BearerToken() string

	// UploadFile posts localPath into channelID's threadID as a file
	// attachment, for the upload CLI §6 names.
	UploadFile(ctx context.Context, channelID, threadID, localPath, title string) error

	// ThreadReplies returns the text of every reply posted to threadID in
	// channelID, oldest first, for the thread-read CLI §6 names.
	ThreadReplies(ctx context.Context, channelID, threadID string) ([]string, error)
}
