package domain

import (
	"regexp"
	"strings"
)

var (
	slugStrip   = regexp.MustCompile(`[^a-z0-9\s-]`)
	slugSpaces  = regexp.MustCompile(`\s+`)
	slugHyphens = regexp.MustCompile(`-+`)
	slugValid   = regexp.MustCompile(`^[a-z0-9-]+$`)
)

// Slugify derives a URL segment from a title: "My First Post!!" becomes
// "my-first-post".
func Slugify(title string) string {
	s := strings.ToLower(title)
	s = slugStrip.ReplaceAllString(s, "")
	s = slugSpaces.ReplaceAllString(strings.TrimSpace(s), "-")
	s = slugHyphens.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if len(s) > MaxSlugLen {
		s = strings.TrimRight(s[:MaxSlugLen], "-")
	}
	return s
}

// ValidateSlug returns a user facing message, or "" when the slug is acceptable.
func ValidateSlug(slug string) string {
	switch {
	case slug == "":
		return "Slug is required"
	case len(slug) > MaxSlugLen:
		return "Slug must be at most 200 characters"
	case !slugValid.MatchString(slug):
		return "Slug must be lowercase with hyphens only"
	}
	return ""
}
