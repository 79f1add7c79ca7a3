package content

import (
	"strings"
	"testing"

	"github.com/ternarybob/cadence/internal/models"
)

func TestSignature(t *testing.T) {
	tests := []struct {
		name     string
		caption  string
		expected string
	}{
		{"lowercases", "Fresh Bread Daily", "fresh bread daily"},
		{"collapses whitespace", "fresh   bread\n\tdaily", "fresh bread daily"},
		{"trims edges", "  fresh bread  ", "fresh bread"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Signature(tt.caption); got != tt.expected {
				t.Errorf("Signature(%q) = %q, want %q", tt.caption, got, tt.expected)
			}
		})
	}
}

func TestEnsureUniqueNoCollision(t *testing.T) {
	caption := "Fresh bread daily #bakery"
	got, sig := EnsureUnique(models.ChannelFacebook, caption, []string{"something else"})
	if got != caption {
		t.Errorf("caption changed without a collision: %q", got)
	}
	if sig != Signature(caption) {
		t.Errorf("signature = %q, want %q", sig, Signature(caption))
	}
}

func TestEnsureUniqueInsertsSuffixBeforeHashtags(t *testing.T) {
	caption := "Fresh bread daily #bakery #local"
	recent := []string{Signature(caption)}

	got, sig := EnsureUnique(models.ChannelFacebook, caption, recent)

	if got == caption {
		t.Fatal("expected a modified caption on collision")
	}
	if models.ContainsRecent(recent, sig) {
		t.Error("returned signature still collides")
	}
	// Hashtags must remain trailing.
	hashIdx := strings.Index(got, "#")
	if hashIdx == -1 {
		t.Fatalf("hashtags lost: %q", got)
	}
	tail := got[hashIdx:]
	if tail != "#bakery #local" {
		t.Errorf("hashtags not trailing: %q", tail)
	}
}

func TestEnsureUniqueAppendsWhenNoHashtags(t *testing.T) {
	caption := "Fresh bread daily"
	recent := []string{Signature(caption)}

	got, _ := EnsureUnique(models.ChannelInstagram, caption, recent)
	if !strings.HasPrefix(got, caption+" ") {
		t.Errorf("suffix should be appended after the caption: %q", got)
	}
}

func TestEnsureUniqueExhaustionReturnsOriginal(t *testing.T) {
	caption := "Fresh bread daily #bakery"
	recent := []string{Signature(caption)}
	for _, suffix := range ctaSuffixes {
		recent = append(recent, Signature(insertBeforeHashtags(caption, suffix)))
	}

	got, sig := EnsureUnique(models.ChannelFacebook, caption, recent)
	if got != caption {
		t.Errorf("exhausted suffixes should return the original caption, got %q", got)
	}
	if sig != Signature(caption) {
		t.Errorf("exhausted suffixes should return the original signature")
	}
}
