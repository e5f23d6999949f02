package tmux

import (
	"context"
	"errors"
	"testing"

	bridgeerrors "github.com/chatbridge/bridge/errors"
	"github.com/stretchr/testify/assert"
)

func TestCategorize(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bridgeerrors.ErrorCode
	}{
		{"no such window", errors.New("can't find window: foo"), bridgeerrors.ErrCodeNotFound},
		{"exit status 1", errors.New("tmux command failed: exit status 1"), bridgeerrors.ErrCodeNotFound},
		{"no server running", errors.New("no server running on socket"), bridgeerrors.ErrCodeTransient},
		{"lost server", errors.New("lost server"), bridgeerrors.ErrCodeTransient},
		{"unknown", errors.New("something weird happened"), bridgeerrors.ErrCodeUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := categorize(tt.err, "test action")
			assert.Equal(t, tt.want, got.Code)
		})
	}
}

func TestCategorize_Nil(t *testing.T) {
	assert.Nil(t, categorize(nil, "test action"))
}

func TestFakeAdapter_KillWindowIdempotent(t *testing.T) {
	f := NewFakeAdapter()
	ctx := context.Background()

	err := f.KillWindow(ctx, "bridge", "missing")
	assert.NoError(t, err)
	assert.Contains(t, f.KilledWindows, "bridge:missing")
}

func TestFakeAdapter_RenameMissingWindow(t *testing.T) {
	f := NewFakeAdapter()
	ctx := context.Background()

	err := f.RenameWindow(ctx, "bridge", "new-1", "done-1")
	assert.Error(t, err)
	assert.True(t, bridgeerrors.Is(err, bridgeerrors.ErrCodeNotFound))
}

func TestFakeAdapter_CreateAndCapture(t *testing.T) {
	f := NewFakeAdapter()
	ctx := context.Background()

	err := f.CreateWindow(ctx, "bridge", "new-1", "/tmp", map[string]string{"threadId": "1001.0"})
	assert.NoError(t, err)

	f.SetPaneContent("bridge", "new-1", "Welcome")
	out, err := f.Capture(ctx, "bridge", "new-1", 100)
	assert.NoError(t, err)
	assert.Equal(t, "Welcome", out)

	assert.Equal(t, map[string]string{"threadId": "1001.0"}, f.CreatedEnv["bridge:new-1"])
}
