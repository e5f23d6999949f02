package sanitize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestForSearchTerm(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"plain word", "widget", "widget"},
		{"strips semicolons and spaces", "widget; rm", "widgetrm"},
		{"strips path separators", "../etc/passwd", "etcpasswd"},
		{"keeps dots and hyphens mid-string", "v1.2.3-rc1", "v1.2.3-rc1"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ForSearchTerm(tt.input))
		})
	}
}

func TestForFilename(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"spaces to hyphens", "my file.png", "my-file.png"},
		{"collapses hyphens", "a---b.txt", "a-b.txt"},
		{"lowercases", "README.MD", "readme.md"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ForFilename(tt.input))
		})
	}
}
