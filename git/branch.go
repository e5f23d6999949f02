// Package git provides minimal git lookups needed to annotate bot command
// output (!find results), adapted from a larger repository-management
// package down to the one query the bridge needs.
package git

import (
	"context"
	"strings"

	"github.com/chatbridge/bridge/command"
)

// CurrentBranch returns the current branch name for the repository rooted
// at dir, or "" if dir is not inside a git repository.
func CurrentBranch(dir string) string {
	builder := command.NewSafeBuilder()
	cmd, err := builder.Build(context.Background(), "git", "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return ""
	}

	execCmd := cmd.Exec()
	execCmd.Dir = dir

	output, err := execCmd.Output()
	if err != nil {
		return ""
	}

	return strings.TrimSpace(string(output))
}
