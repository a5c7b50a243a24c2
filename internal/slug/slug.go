// Package slug derives URL-safe post identifiers from titles.
package slug

import (
	"regexp"
	"strings"
)

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// Make turns a title into a lowercase, hyphen-separated identifier.
// The result is stable for a given title and contains only [a-z0-9-]
// with no leading or trailing hyphen. An empty result means the title
// has no usable characters; callers must reject it before persisting.
func Make(title string) string {
	s := strings.ToLower(strings.TrimSpace(title))
	s = nonAlnum.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}
