package generation

import (
	"strings"
	"testing"

	"github.com/ternarybob/cadence/internal/models"
)

func TestParseCaptionPayload(t *testing.T) {
	raw := `{"captions":{"image":"Look at this!","link":"Click here","professional":"We are pleased to announce"},"hashtags":["bakery","bread"]}`

	payload, err := parseCaptionPayload(raw)
	if err != nil {
		t.Fatalf("parseCaptionPayload: %v", err)
	}
	if payload.Captions.Image != "Look at this!" {
		t.Errorf("image caption = %q", payload.Captions.Image)
	}
	if len(payload.Hashtags) != 2 {
		t.Errorf("hashtags = %v", payload.Hashtags)
	}
}

func TestParseCaptionPayloadStripsCodeFences(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"json fence", "```json\n{\"captions\":{\"image\":\"Hi\"}}\n```"},
		{"bare fence", "```\n{\"captions\":{\"image\":\"Hi\"}}\n```"},
		{"leading whitespace", "  \n```json\n{\"captions\":{\"image\":\"Hi\"}}\n```  "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload, err := parseCaptionPayload(tt.raw)
			if err != nil {
				t.Fatalf("parseCaptionPayload: %v", err)
			}
			if payload.Captions.Image != "Hi" {
				t.Errorf("image caption = %q", payload.Captions.Image)
			}
		})
	}
}

func TestParseCaptionPayloadErrors(t *testing.T) {
	if _, err := parseCaptionPayload("not json at all"); err == nil {
		t.Error("invalid JSON must error")
	}
	if _, err := parseCaptionPayload(`{"captions":{},"hashtags":["a"]}`); err == nil {
		t.Error("payload without any caption must error")
	}
}

func TestToGeneratedContentBackfillsKinds(t *testing.T) {
	payload := &captionPayload{Hashtags: []string{"bakery"}}
	payload.Captions.Image = "Casual caption"

	gen := toGeneratedContent(payload, []string{"https://img/1"})

	if gen.CaptionsByKind[models.CaptionKindLink] != "Casual caption" {
		t.Errorf("link caption not backfilled: %q", gen.CaptionsByKind[models.CaptionKindLink])
	}
	if gen.CaptionsByKind[models.CaptionKindProfessional] != "Casual caption" {
		t.Errorf("professional caption not backfilled")
	}
	for kind, tags := range gen.HashtagsByKind {
		if len(tags) != 1 || tags[0] != "bakery" {
			t.Errorf("kind %s hashtags = %v", kind, tags)
		}
	}
	if len(gen.Images) != 1 {
		t.Errorf("images = %v", gen.Images)
	}
}

func TestBuildUserPromptIncludesBusinessType(t *testing.T) {
	got := buildUserPrompt("a storefront scene", "bakery")
	if !strings.Contains(got, "a storefront scene") {
		t.Error("prompt concept missing")
	}
	if !strings.Contains(got, "Business type: bakery") {
		t.Error("business type missing")
	}

	without := buildUserPrompt("a storefront scene", "")
	if strings.Contains(without, "Business type") {
		t.Error("empty business type must be omitted")
	}
}
