package tree

import (
	"regexp"
	"strings"
)

var nonAlnumRun = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify turns a file or folder name into a URL-safe id: trimmed,
// lowercased, each run of characters outside [a-z0-9] replaced by one "-".
// Slugify(Slugify(s)) == Slugify(s).
func Slugify(name string) string {
	return nonAlnumRun.ReplaceAllString(strings.ToLower(strings.TrimSpace(name)), "-")
}
