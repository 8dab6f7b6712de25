package identity

import (
	"regexp"
	"strings"

	"github.com/goliatone/go-slug"
)

var (
	separatorRuns = regexp.MustCompile(`[\s_-]+`)
	disallowed    = regexp.MustCompile(`[^a-z0-9-]`)
	hyphenRuns    = regexp.MustCompile(`-{2,}`)
	validSlug     = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
)

// DeriveSlug turns free text into a URL-safe identifier. The result contains
// only [a-z0-9-] with no leading or trailing hyphen, and may be empty when the
// source has no usable characters.
func DeriveSlug(source string) string {
	value := strings.TrimSpace(source)
	if value == "" {
		return ""
	}

	// go-slug transliterates accented input; its output still goes through the
	// rules below so the character set holds regardless of normalizer config.
	if normalized, err := slug.Normalize(value); err == nil && normalized != "" {
		value = normalized
	}

	value = strings.ToLower(value)
	value = separatorRuns.ReplaceAllString(value, "-")
	value = disallowed.ReplaceAllString(value, "")
	value = hyphenRuns.ReplaceAllString(value, "-")
	return strings.Trim(value, "-")
}

// IsValidSlug reports whether value is already in derived form.
func IsValidSlug(value string) bool {
	return validSlug.MatchString(value)
}
