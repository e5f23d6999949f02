package git

import (
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCurrentBranch(t *testing.T) {
	dir := t.TempDir()
	run := func(args ...string) {
		cmd := exec.Command("git", args...)
		cmd.Dir = dir
		require.NoError(t, cmd.Run())
	}

	run("init", "-q", "-b", "main")
	run("config", "user.email", "bridge@example.com")
	run("config", "user.name", "bridge")
	run("commit", "--allow-empty", "-q", "-m", "init")

	assert.Equal(t, "main", CurrentBranch(dir))
}

func TestCurrentBranch_NotARepo(t *testing.T) {
	dir := t.TempDir()
	assert.Equal(t, "", CurrentBranch(dir))
}
