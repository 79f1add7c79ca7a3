package content

import (
	"math/rand"
	"strings"
	"testing"
	"time"
)

func TestAugmentPromptUsesDefaultWhenEmpty(t *testing.T) {
	rnd := rand.New(rand.NewSource(1))
	got := AugmentPrompt("", time.Unix(1700000000, 0), rnd)
	if !strings.HasPrefix(got, DefaultBasePrompt) {
		t.Errorf("empty base prompt should fall back to default, got %q", got)
	}
}

func TestAugmentPromptKeepsBasePromptFirst(t *testing.T) {
	rnd := rand.New(rand.NewSource(42))
	base := "Artisan sourdough bakery"
	got := AugmentPrompt(base, time.Unix(1700000000, 0), rnd)
	if !strings.HasPrefix(got, base+", ") {
		t.Errorf("augmented prompt must start with the base prompt, got %q", got)
	}
}

func TestAugmentPromptIncludesUniquenessToken(t *testing.T) {
	now := time.Unix(1700000000, 0)
	rnd := rand.New(rand.NewSource(7))
	got := AugmentPrompt("bakery", now, rnd)
	if !strings.Contains(got, "ref-1700000000-") {
		t.Errorf("augmented prompt missing uniqueness token: %q", got)
	}
}

func TestAugmentPromptDeterministicWithSeed(t *testing.T) {
	now := time.Unix(1700000000, 0)
	a := AugmentPrompt("bakery", now, rand.New(rand.NewSource(99)))
	b := AugmentPrompt("bakery", now, rand.New(rand.NewSource(99)))
	if a != b {
		t.Errorf("same seed should produce the same prompt:\n%q\n%q", a, b)
	}

	c := AugmentPrompt("bakery", now, rand.New(rand.NewSource(100)))
	if a == c {
		t.Error("different seeds should diversify the prompt")
	}
}

func TestDetectStyle(t *testing.T) {
	tests := []struct {
		name     string
		prompt   string
		lighting string
	}{
		{"neon motif", "Neon night cafe promo", styleSets[0].lighting[0]},
		{"vintage motif", "A rustic bakery counter", styleSets[1].lighting[0]},
		{"minimal motif", "Clean modern product shot", styleSets[2].lighting[0]},
		{"no motif", "Sourdough loaves on display", defaultStyle.lighting[0]},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := detectStyle(tt.prompt)
			if got.lighting[0] != tt.lighting {
				t.Errorf("detectStyle(%q) picked lighting %q, want %q", tt.prompt, got.lighting[0], tt.lighting)
			}
		})
	}
}
