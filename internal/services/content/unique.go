package content

import (
	"strings"

	"github.com/ternarybob/cadence/internal/models"
)

// ctaSuffixes is the ordered list of short call-to-action variants tried
// when a caption collides with a recent signature.
var ctaSuffixes = []string{
	"Visit us today!",
	"Don't miss out!",
	"Come see us!",
	"Check it out!",
	"See you soon!",
}

// Signature returns the dedup signature for a caption: lowercase with all
// whitespace runs collapsed to single spaces.
func Signature(caption string) string {
	return strings.Join(strings.Fields(strings.ToLower(caption)), " ")
}

// insertBeforeHashtags places text immediately before the first hashtag
// token so hashtags remain trailing.
func insertBeforeHashtags(caption, text string) string {
	fields := strings.Fields(caption)
	for i, f := range fields {
		if strings.HasPrefix(f, "#") {
			parts := make([]string, 0, len(fields)+1)
			parts = append(parts, fields[:i]...)
			parts = append(parts, text)
			parts = append(parts, fields[i:]...)
			return strings.Join(parts, " ")
		}
	}
	if caption == "" {
		return text
	}
	return caption + " " + text
}

// EnsureUnique returns a caption whose signature does not appear in the
// channel's recent signature set, trying each call-to-action suffix in
// order. If every variant is exhausted the original caption is returned
// unchanged: an accepted collision, not an infinite loop.
func EnsureUnique(channel models.Channel, caption string, recentSignatures []string) (string, string) {
	sig := Signature(caption)
	if !models.ContainsRecent(recentSignatures, sig) {
		return caption, sig
	}

	for _, suffix := range ctaSuffixes {
		candidate := insertBeforeHashtags(caption, suffix)
		candidateSig := Signature(candidate)
		if !models.ContainsRecent(recentSignatures, candidateSig) {
			return candidate, candidateSig
		}
	}

	return caption, sig
}
