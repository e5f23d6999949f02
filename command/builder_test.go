package command

import (
	"context"
	"testing"
	"time"
)

func TestValidateWindowName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"provisional name", "new-1", false},
		{"assistant prefix", "abcd1234", false},
		{"session:window target", "claude:new-2", false},
		{"empty name", "", true},
		{"special characters", "my@window", true},
		{"starts with hyphen", "-window", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateWindowName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateWindowName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateSearchTerm(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid term", "my-project", false},
		{"valid with dots", "v1.2.3", false},
		{"empty term", "", true},
		{"command injection", "foo; rm -rf /", true},
		{"spaces", "my project", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateSearchTerm(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateSearchTerm(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateFileName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid path", "/tmp/claude-bridge-fetch/1001.0/a.png", false},
		{"relative path", "relative/path.txt", false},
		{"directory traversal", "../etc/passwd", true},
		{"command injection semicolon", "file.txt; rm -rf /", true},
		{"command injection pipe", "file.txt | cat", true},
		{"command injection dollar", "$(whoami)", true},
		{"empty path", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateFileName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateFileName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestSafeBuilder_Build(t *testing.T) {
	sb := NewSafeBuilder()
	ctx := context.Background()

	t.Run("valid command", func(t *testing.T) {
		cmd, err := sb.Build(ctx, "tmux", "has-session")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cmd.name != "tmux" {
			t.Errorf("expected command name 'tmux', got %q", cmd.name)
		}
		if len(cmd.args) != 1 || cmd.args[0] != "has-session" {
			t.Errorf("expected args ['has-session'], got %v", cmd.args)
		}
	})

	t.Run("empty command name", func(t *testing.T) {
		_, err := sb.Build(ctx, "")
		if err == nil {
			t.Error("expected error for empty command name")
		}
	})
}

func TestSafeBuilder_Validate(t *testing.T) {
	sb := NewSafeBuilder()

	t.Run("valid window name", func(t *testing.T) {
		err := sb.Validate("windowName", "new-1")
		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("invalid window name", func(t *testing.T) {
		err := sb.Validate("windowName", "")
		if err == nil {
			t.Error("expected error for invalid window name")
		}
	})

	t.Run("unknown validator type", func(t *testing.T) {
		err := sb.Validate("unknownType", "value")
		if err == nil {
			t.Error("expected error for unknown validator type")
		}
	})
}

func TestCommand_WithTimeout(t *testing.T) {
	sb := NewSafeBuilder()
	ctx := context.Background()

	cmd, err := sb.Build(ctx, "sleep", "1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	t.Run("custom timeout", func(t *testing.T) {
		customTimeout := 1 * time.Second
		cmd = cmd.WithTimeout(customTimeout)
		if cmd.timeout != customTimeout {
			t.Errorf("expected timeout %v, got %v", customTimeout, cmd.timeout)
		}
	})

	t.Run("exceeds max timeout", func(t *testing.T) {
		cmd = cmd.WithTimeout(20 * time.Minute)
		if cmd.timeout != MaxTimeout {
			t.Errorf("expected timeout to be capped at %v, got %v", MaxTimeout, cmd.timeout)
		}
	})
}

func TestCommandTimeout(t *testing.T) {
	sb := NewSafeBuilder()
	ctx := context.Background()

	cmd, err := sb.Build(ctx, "sleep", "10")
	if err != nil {
		t.Fatal(err)
	}

	cmd = cmd.WithTimeout(100 * time.Millisecond)

	start := time.Now()
	err = cmd.Exec().Run()
	duration := time.Since(start)

	if err == nil {
		t.Error("expected timeout error")
	}

	if duration > 500*time.Millisecond {
		t.Errorf("command took too long to timeout: %v", duration)
	}
}
