package generation

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ternarybob/cadence/internal/models"
)

// systemInstruction frames the copywriting task for both providers.
const systemInstruction = "You are a social media copywriter for small businesses. " +
	"Write engaging, concise post captions in the business's voice. " +
	"Respond only with JSON matching the requested schema."

// captionPayload is the structured JSON both providers are asked to return.
type captionPayload struct {
	Captions struct {
		Image        string `json:"image"`
		Link         string `json:"link"`
		Professional string `json:"professional"`
	} `json:"captions"`
	Hashtags []string `json:"hashtags"`
}

// buildUserPrompt assembles the caption request from the diversified prompt
// and the business profile.
func buildUserPrompt(prompt, businessType string) string {
	var b strings.Builder
	b.WriteString("Write social media captions for the following post concept:\n\n")
	b.WriteString(prompt)
	if businessType != "" {
		b.WriteString("\n\nBusiness type: ")
		b.WriteString(businessType)
	}
	b.WriteString("\n\nReturn JSON with three caption variants: " +
		`"image" (casual, for image posts), "link" (short, drives clicks), ` +
		`"professional" (polished, for business networks), plus a "hashtags" list.`)
	return b.String()
}

// parseCaptionPayload decodes the provider's JSON response, tolerating
// markdown code fences around the payload.
func parseCaptionPayload(text string) (*captionPayload, error) {
	cleaned := strings.TrimSpace(text)
	if strings.HasPrefix(cleaned, "```") {
		cleaned = strings.TrimPrefix(cleaned, "```json")
		cleaned = strings.TrimPrefix(cleaned, "```")
		if idx := strings.LastIndex(cleaned, "```"); idx >= 0 {
			cleaned = cleaned[:idx]
		}
		cleaned = strings.TrimSpace(cleaned)
	}

	var payload captionPayload
	if err := json.Unmarshal([]byte(cleaned), &payload); err != nil {
		return nil, fmt.Errorf("provider response is not valid JSON: %w", err)
	}
	if payload.Captions.Image == "" && payload.Captions.Link == "" && payload.Captions.Professional == "" {
		return nil, fmt.Errorf("provider response contains no captions")
	}
	return &payload, nil
}

// toGeneratedContent maps the payload onto the content model, backfilling
// missing caption kinds from the image caption.
func toGeneratedContent(payload *captionPayload, images []string) *models.GeneratedContent {
	captions := map[models.CaptionKind]string{
		models.CaptionKindImage:        payload.Captions.Image,
		models.CaptionKindLink:         payload.Captions.Link,
		models.CaptionKindProfessional: payload.Captions.Professional,
	}
	for kind, caption := range captions {
		if caption == "" {
			captions[kind] = payload.Captions.Image
		}
	}

	hashtags := make(map[models.CaptionKind][]string, len(captions))
	for kind := range captions {
		hashtags[kind] = payload.Hashtags
	}

	return &models.GeneratedContent{
		Images:         images,
		CaptionsByKind: captions,
		HashtagsByKind: hashtags,
	}
}
