package util

import (
	"regexp"
	"strings"

	"github.com/google/uuid"
)

var nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lower-cases s and collapses every run of non-alphanumeric
// characters into a single hyphen, trimming hyphens at both ends.
func Slugify(s string) string {
	slug := strings.ToLower(strings.TrimSpace(s))
	slug = nonAlphanumeric.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}

// SlugWithSuffix returns Slugify(s) followed by a short random suffix,
// e.g. "chatgpt-4f9a1c". An empty base slug becomes "tool".
func SlugWithSuffix(s string) string {
	base := Slugify(s)
	if base == "" {
		base = "tool"
	}
	return base + "-" + strings.ReplaceAll(uuid.NewString(), "-", "")[:6]
}
