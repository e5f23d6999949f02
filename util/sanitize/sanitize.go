package sanitize

import (
	"regexp"
	"strings"
)

var (
	// nonSearchCharRegex matches anything outside the closed set the !find
	// query is sanitized to before being interpolated into a `find -iname`
	// glob.
	nonSearchCharRegex = regexp.MustCompile(`[^A-Za-z0-9_.-]+`)

	multiDashRegex = regexp.MustCompile(`-+`)
)

// ForSearchTerm sanitizes a !find / !f query to [A-Za-z0-9_.-], the closed
// set the bot command grammar requires before the term is ever interpolated
// into a shell command.
func ForSearchTerm(s string) string {
	if s == "" {
		return ""
	}

	s = nonSearchCharRegex.ReplaceAllString(s, "")
	return strings.Trim(s, ".")
}

// ForFilename sanitizes a string for use in a filename component: lowercased,
// spaces turned into hyphens, and only letters, digits, dots and hyphens
// kept. Attachment disambiguation in pkg/fetch does not call it.
func ForFilename(s string) string {
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, " ", "-")
	s = regexp.MustCompile(`[^a-z0-9.-]+`).ReplaceAllString(s, "")
	s = multiDashRegex.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if len(s) > 100 {
		s = s[:100]
	}
	return s
}
