package fetch

import (
	"context"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"testing"

	"github.com/chatbridge/bridge/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDoer struct {
	status int
	body   string
}

func (f *fakeDoer) Do(req *http.Request) (*http.Response, error) {
	return &http.Response{
		StatusCode: f.status,
		Body:       io.NopCloser(strings.NewReader(f.body)),
	}, nil
}

func TestSupported(t *testing.T) {
	assert.True(t, Supported("a.png"))
	assert.True(t, Supported("notes.md"))
	assert.True(t, Supported("Dockerfile"))
	assert.False(t, Supported("b.xyz"))
	assert.False(t, Supported("archive.zip"))
}

func TestDownload_UnsupportedType(t *testing.T) {
	c := New(&fakeDoer{status: 200, body: "data"}, t.TempDir(), "tok")
	_, err := c.Download(context.Background(), "1001.0", "b.xyz", "https://example.invalid/b.xyz")
	assert.True(t, errors.Is(err, errors.ErrCodeUnsupportedType))
}

func TestDownload_WritesFile(t *testing.T) {
	root := t.TempDir()
	c := New(&fakeDoer{status: 200, body: "hello"}, root, "tok")

	path, err := c.Download(context.Background(), "1001.0", "a.png", "https://example.invalid/a.png")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "1001.0", "a.png"), path)
}

func TestDownload_DisambiguatesDuplicates(t *testing.T) {
	root := t.TempDir()
	c := New(&fakeDoer{status: 200, body: "hello"}, root, "tok")

	first, err := c.Download(context.Background(), "1001.0", "a.png", "https://example.invalid/a.png")
	require.NoError(t, err)

	second, err := c.Download(context.Background(), "1001.0", "a.png", "https://example.invalid/a.png")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.Equal(t, filepath.Join(root, "1001.0", "a-1.png"), second)
}

func TestDownload_BadStatus(t *testing.T) {
	c := New(&fakeDoer{status: 404, body: ""}, t.TempDir(), "tok")
	_, err := c.Download(context.Background(), "1001.0", "a.png", "https://example.invalid/a.png")
	assert.True(t, errors.Is(err, errors.ErrCodeDownloadFailed))
}
