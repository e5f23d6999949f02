// Package fetch implements the File Fetcher: downloads chat attachments
// to a per-thread temp directory, subject to a supported-type filter,
// disambiguating duplicate filenames with a monotonic suffix.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/chatbridge/bridge/errors"
)

// Doer is the subset of *http.Client the fetcher needs, the teacher's own
// pattern for making an HTTP call test-injectable without a real server —
// the same shape command.Executor gives os/exec.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// supportedExtensions is the closed set §4.5 requires: images, pdf, and a
// broad range of text/code extensions. Matching is case-insensitive.
var supportedExtensions = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".webp": true,
	".pdf": true,
	".txt": true, ".md": true, ".log": true, ".csv": true, ".json": true,
	".yaml": true, ".yml": true, ".toml": true, ".xml": true, ".html": true,
	".css": true, ".js": true, ".ts": true, ".jsx": true, ".tsx": true,
	".go": true, ".py": true, ".rb": true, ".java": true, ".c": true,
	".h": true, ".cpp": true, ".hpp": true, ".rs": true, ".sh": true,
	".sql": true, ".diff": true, ".patch": true, ".ini": true, ".conf": true,
}

// supportedExtensionlessNames covers well-known extensionless files §4.5
// calls out ("well-known extensionless names").
var supportedExtensionlessNames = map[string]bool{
	"Dockerfile": true, "Makefile": true, "README": true, "LICENSE": true,
}

// Supported reports whether filename's extension, or its basename if
// extensionless, is in the closed supported set.
func Supported(filename string) bool {
	base := filepath.Base(filename)
	ext := filepath.Ext(base)
	if ext == "" {
		return supportedExtensionlessNames[base]
	}
	return supportedExtensions[strings.ToLower(ext)]
}

// Client downloads attachments into a fetch root directory.
type Client struct {
	doer      Doer
	root      string
	bearerToken string
}

// New returns a Client rooted at root (typically /tmp/<fetch-root>), using
// doer for HTTP calls and bearerToken as the chat-side credential private
// attachment URLs require.
func New(doer Doer, root, bearerToken string) *Client {
	return &Client{doer: doer, root: root, bearerToken: bearerToken}
}

// Download fetches url into <root>/<threadId>/<filename>, disambiguating
// an existing file at that path by inserting a monotonic "-<k>" suffix
// before the extension. ctx should already carry the download timeout.
func (c *Client) Download(ctx context.Context, threadID, filename, url string) (string, error) {
	if !Supported(filename) {
		return "", errors.UnsupportedType(filename)
	}

	dir := filepath.Join(c.root, threadID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", errors.DownloadFailed(filename, err)
	}

	dest := uniquePath(filepath.Join(dir, filename))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", errors.DownloadFailed(filename, err)
	}
	if c.bearerToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.bearerToken)
	}

	resp, err := c.doer.Do(req)
	if err != nil {
		return "", errors.DownloadFailed(filename, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", errors.DownloadFailed(filename, fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	out, err := os.Create(dest)
	if err != nil {
		return "", errors.DownloadFailed(filename, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, resp.Body); err != nil {
		return "", errors.DownloadFailed(filename, err)
	}

	return dest, nil
}

// uniquePath returns path unchanged if nothing exists there yet, or path
// with a "-<k>" suffix inserted before the extension for the smallest k
// that doesn't collide.
func uniquePath(path string) string {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return path
	}

	ext := filepath.Ext(path)
	base := strings.TrimSuffix(path, ext)
	for k := 1; ; k++ {
		candidate := fmt.Sprintf("%s-%d%s", base, k, ext)
		if _, err := os.Stat(candidate); os.IsNotExist(err) {
			return candidate
		}
	}
}
