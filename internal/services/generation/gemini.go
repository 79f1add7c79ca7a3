package generation

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"google.golang.org/genai"

	"github.com/ternarybob/cadence/internal/common"
	"github.com/ternarybob/cadence/internal/models"
)

// captionSchema constrains Gemini to the caption payload shape.
var captionSchema = &genai.Schema{
	Type:     genai.TypeObject,
	Required: []string{"captions", "hashtags"},
	Properties: map[string]*genai.Schema{
		"captions": {
			Type:     genai.TypeObject,
			Required: []string{"image", "link", "professional"},
			Properties: map[string]*genai.Schema{
				"image":        {Type: genai.TypeString},
				"link":         {Type: genai.TypeString},
				"professional": {Type: genai.TypeString},
			},
		},
		"hashtags": {
			Type:  genai.TypeArray,
			Items: &genai.Schema{Type: genai.TypeString},
		},
	},
}

// GeminiGenerator produces captions through the Gemini API with structured
// JSON output, and image render URLs keyed off the prompt.
type GeminiGenerator struct {
	config    *common.GeminiConfig
	genConfig *common.GenerationConfig
	logger    arbor.ILogger
	client    *genai.Client
}

func NewGeminiGenerator(config *common.GeminiConfig, genConfig *common.GenerationConfig, logger arbor.ILogger) *GeminiGenerator {
	return &GeminiGenerator{
		config:    config,
		genConfig: genConfig,
		logger:    logger,
	}
}

func (g *GeminiGenerator) getClient(ctx context.Context) (*genai.Client, error) {
	if g.client != nil {
		return g.client, nil
	}
	if g.config.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is not configured")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  g.config.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	g.client = client
	return client, nil
}

// Generate asks Gemini for caption variants and derives image URLs from the
// prompt. The prompt is expected to be pre-diversified by the caller.
func (g *GeminiGenerator) Generate(ctx context.Context, prompt, businessType string, imageCount int) (*models.GeneratedContent, error) {
	client, err := g.getClient(ctx)
	if err != nil {
		return nil, err
	}

	temp := g.config.Temperature
	config := &genai.GenerateContentConfig{
		Temperature:       genai.Ptr(temp),
		SystemInstruction: genai.NewContentFromText(systemInstruction, genai.RoleUser),
		ResponseMIMEType:  "application/json",
		ResponseSchema:    captionSchema,
	}
	contents := []*genai.Content{
		genai.NewContentFromText(buildUserPrompt(prompt, businessType), genai.RoleUser),
	}

	var resp *genai.GenerateContentResponse
	var apiErr error
	retryConfig := NewDefaultRetryConfig()

	for attempt := 0; attempt <= retryConfig.MaxRetries; attempt++ {
		resp, apiErr = client.Models.GenerateContent(ctx, g.config.Model, contents, config)
		if apiErr == nil {
			break
		}
		if attempt == retryConfig.MaxRetries {
			break
		}

		var backoff time.Duration
		if IsRateLimitError(apiErr) {
			backoff = retryConfig.CalculateBackoff(attempt, ExtractRetryDelay(apiErr))
		} else {
			backoff = time.Duration(attempt+1) * 2 * time.Second
		}

		g.logger.Warn().
			Int("attempt", attempt+1).
			Dur("backoff", backoff).
			Err(apiErr).
			Msg("Retrying Gemini API call")

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
	}
	if apiErr != nil {
		return nil, fmt.Errorf("Gemini API call failed after %d retries: %w", retryConfig.MaxRetries, apiErr)
	}
	if resp == nil || len(resp.Candidates) == 0 {
		return nil, fmt.Errorf("empty response from Gemini API")
	}

	payload, err := parseCaptionPayload(resp.Text())
	if err != nil {
		return nil, err
	}

	return toGeneratedContent(payload, BuildImageURLs(g.genConfig, prompt, imageCount)), nil
}
