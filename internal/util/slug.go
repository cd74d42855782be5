package util

import (
	"regexp"
	"strings"
)

var (
	slugDisallowed      = regexp.MustCompile(`[^\w\-.]+`)
	slugRepeatedHyphens = regexp.MustCompile(`-{2,}`)
	slugWhitespace      = regexp.MustCompile(`\s+`)
)

// Slugify derives a URL-safe display slug from a title: lowercase, whitespace
// collapsed to single hyphens, ampersands spelled out, everything outside
// [\w-.] stripped, repeated hyphens collapsed.
func Slugify(text string) string {
	slug := strings.ToLower(strings.TrimSpace(text))
	slug = slugWhitespace.ReplaceAllString(slug, "-")
	slug = strings.ReplaceAll(slug, "&", "-and-")
	slug = slugDisallowed.ReplaceAllString(slug, "")
	slug = slugRepeatedHyphens.ReplaceAllString(slug, "-")

	return slug
}
