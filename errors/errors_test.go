package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBridgeError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *BridgeError
		expected string
	}{
		{
			name:     "without cause",
			err:      New(ErrCodeNotFound, "window gone"),
			expected: "NOT_FOUND: window gone",
		},
		{
			name:     "with cause",
			err:      Wrap(fmt.Errorf("exit status 1"), ErrCodeTransient, "send-keys failed"),
			expected: "TRANSIENT: send-keys failed (caused by: exit status 1)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestIs(t *testing.T) {
	err := New(ErrCodeLimitReached, "too many sessions")
	assert.True(t, Is(err, ErrCodeLimitReached))
	assert.False(t, Is(err, ErrCodeNotFound))
	assert.False(t, Is(nil, ErrCodeLimitReached))
	assert.False(t, Is(fmt.Errorf("plain"), ErrCodeLimitReached))
}

func TestIs_Unwraps(t *testing.T) {
	inner := New(ErrCodeDownloadFailed, "timeout")
	outer := fmt.Errorf("fetch attachment: %w", inner)
	assert.True(t, Is(outer, ErrCodeDownloadFailed))
}

func TestGetCode(t *testing.T) {
	assert.Equal(t, ErrCodeInstanceLocked, GetCode(New(ErrCodeInstanceLocked, "locked")))
	assert.Equal(t, ErrorCode(""), GetCode(nil))
	assert.Equal(t, ErrorCode(""), GetCode(fmt.Errorf("plain")))
}

func TestWithDetail(t *testing.T) {
	err := New(ErrCodeUnsupportedType, "bad file").WithDetail("filename", "b.xyz")
	assert.Equal(t, "b.xyz", err.Details["filename"])
}
