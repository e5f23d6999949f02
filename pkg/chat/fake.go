package chat

import (
	"context"
	"fmt"
	"sync"
)

// Fake is an in-memory SDK test double. It never starts a real event
// loop; tests call its handler directly or via Deliver.
type Fake struct {
	mu sync.Mutex

	Posted      []PostedMessage
	Reactions   []ReactionCall
	Uploads     []UploadCall
	Conversations map[string]string // userID -> channelID, pre-seeded by the test
	ThreadText  map[string][]string // threadID -> replies, pre-seeded by the test

	nextMessageID int
}

// UploadCall records one UploadFile call.
type UploadCall struct {
	ChannelID string
	ThreadID  string
	LocalPath string
	Title     string
}

// PostedMessage records one PostMessage call.
type PostedMessage struct {
	ChannelID string
	ThreadID  string
	Text      string
}

// ReactionCall records one AddReaction/RemoveReaction call.
type ReactionCall struct {
	Added     bool
	ChannelID string
	Timestamp string
	Name      string
}

// NewFake returns an empty Fake SDK.
func NewFake() *Fake {
	return &Fake{Conversations: make(map[string]string)}
}

func (f *Fake) Run(ctx context.Context, handler EventHandler) error {
	<-ctx.Done()
	return ctx.Err()
}

func (f *Fake) PostMessage(ctx context.Context, channelID, threadID, text string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextMessageID++
	f.Posted = append(f.Posted, PostedMessage{ChannelID: channelID, ThreadID: threadID, Text: text})
	return fmt.Sprintf("fake-msg-%d", f.nextMessageID), nil
}

func (f *Fake) AddReaction(ctx context.Context, channelID, timestamp, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Reactions = append(f.Reactions, ReactionCall{Added: true, ChannelID: channelID, Timestamp: timestamp, Name: name})
	return nil
}

func (f *Fake) RemoveReaction(ctx context.Context, channelID, timestamp, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Reactions = append(f.Reactions, ReactionCall{Added: false, ChannelID: channelID, Timestamp: timestamp, Name: name})
	return nil
}

func (f *Fake) AuthTest(ctx context.Context) (string, error) {
	return "https://fake.slack.com/", nil
}

func (f *Fake) OpenConversation(ctx context.Context, userID string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if ch, ok := f.Conversations[userID]; ok {
		return ch, nil
	}
	return "D-" + userID, nil
}

func (f *Fake) BearerToken() string {
	return "fake-token"
}

func (f *Fake) UploadFile(ctx context.Context, channelID, threadID, localPath, title string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Uploads = append(f.Uploads, UploadCall{ChannelID: channelID, ThreadID: threadID, LocalPath: localPath, Title: title})
	return nil
}

func (f *Fake) ThreadReplies(ctx context.Context, channelID, threadID string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.ThreadText[threadID], nil
}

var _ SDK = (*Fake)(nil)
