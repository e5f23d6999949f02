package pathutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpand_Tilde(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	got, err := Expand("~/projects/widget")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "projects", "widget"), got)
}

func TestExpand_BareHome(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	got, err := Expand("~")
	require.NoError(t, err)
	assert.Equal(t, home, got)
}

func TestExpand_Absolute(t *testing.T) {
	got, err := Expand("/tmp/widget")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/widget", got)
}

func TestIsDir(t *testing.T) {
	dir := t.TempDir()
	assert.True(t, IsDir(dir))
	assert.False(t, IsDir(filepath.Join(dir, "does-not-exist")))
	assert.False(t, IsDir(filepath.Join(dir, "also-missing", "nested")))
}
