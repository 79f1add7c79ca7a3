package generation

import (
	"strings"
	"testing"

	"github.com/ternarybob/cadence/internal/common"
)

func TestBuildImageURLs(t *testing.T) {
	cfg := &common.GenerationConfig{
		ImageBaseURL: "https://image.example.com/prompt/",
		ImageWidth:   800,
		ImageHeight:  600,
	}

	urls := BuildImageURLs(cfg, "a cozy bakery interior", 3)
	if len(urls) != 3 {
		t.Fatalf("expected 3 URLs, got %d", len(urls))
	}
	for _, u := range urls {
		if !strings.HasPrefix(u, "https://image.example.com/prompt/a%20cozy%20bakery%20interior?") {
			t.Errorf("unexpected URL shape: %q", u)
		}
		if !strings.Contains(u, "width=800") || !strings.Contains(u, "height=600") {
			t.Errorf("dimensions not applied: %q", u)
		}
	}

	seen := make(map[string]bool)
	for _, u := range urls {
		if seen[u] {
			t.Errorf("duplicate URL within one run: %q", u)
		}
		seen[u] = true
	}
}

func TestBuildImageURLsDeterministic(t *testing.T) {
	cfg := &common.GenerationConfig{ImageBaseURL: "https://r.example.com"}

	a := BuildImageURLs(cfg, "same prompt", 2)
	b := BuildImageURLs(cfg, "same prompt", 2)
	if a[0] != b[0] || a[1] != b[1] {
		t.Error("same prompt must yield the same URLs")
	}

	c := BuildImageURLs(cfg, "different prompt", 1)
	if c[0] == a[0] {
		t.Error("different prompts must yield different seeds")
	}
}

func TestBuildImageURLsEdgeCases(t *testing.T) {
	cfg := &common.GenerationConfig{ImageBaseURL: "https://r.example.com"}
	if got := BuildImageURLs(cfg, "p", 0); got != nil {
		t.Errorf("zero count should yield nil, got %v", got)
	}
	if got := BuildImageURLs(&common.GenerationConfig{}, "p", 2); got != nil {
		t.Errorf("missing base URL should yield nil, got %v", got)
	}

	defaulted := BuildImageURLs(cfg, "p", 1)
	if !strings.Contains(defaulted[0], "width=1024") || !strings.Contains(defaulted[0], "height=1024") {
		t.Errorf("dimension defaults not applied: %q", defaulted[0])
	}
}
