package content

import (
	"strings"
	"unicode"
)

// DefaultMaxHashtags caps normalized hashtag lists when no limit is configured.
const DefaultMaxHashtags = 8

// SplitHashtagText splits free-form hashtag text on commas and whitespace.
func SplitHashtagText(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return r == ',' || r == ';' || unicode.IsSpace(r)
	})
}

// NormalizeHashtags cleans a raw hashtag list: strips leading '#', removes
// non-alphanumeric characters, de-duplicates case-insensitively, caps the
// count, and re-prefixes each entry with '#'.
func NormalizeHashtags(raw []string, max int) []string {
	if max <= 0 {
		max = DefaultMaxHashtags
	}

	seen := make(map[string]bool)
	out := make([]string, 0, len(raw))
	for _, tag := range raw {
		tag = strings.TrimSpace(tag)
		tag = strings.TrimPrefix(tag, "#")

		var b strings.Builder
		for _, r := range tag {
			if unicode.IsLetter(r) || unicode.IsDigit(r) {
				b.WriteRune(r)
			}
		}
		cleaned := b.String()
		if cleaned == "" {
			continue
		}

		key := strings.ToLower(cleaned)
		if seen[key] {
			continue
		}
		seen[key] = true

		out = append(out, "#"+cleaned)
		if len(out) >= max {
			break
		}
	}
	return out
}
