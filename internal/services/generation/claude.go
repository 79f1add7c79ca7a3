package generation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/cadence/internal/common"
	"github.com/ternarybob/cadence/internal/models"
)

// ClaudeGenerator produces captions through the Anthropic API. Claude has no
// schema-enforced output, so the response is parsed leniently.
type ClaudeGenerator struct {
	config      *common.ClaudeConfig
	genConfig   *common.GenerationConfig
	logger      arbor.ILogger
	client      anthropic.Client
	initialized bool
}

func NewClaudeGenerator(config *common.ClaudeConfig, genConfig *common.GenerationConfig, logger arbor.ILogger) *ClaudeGenerator {
	return &ClaudeGenerator{
		config:    config,
		genConfig: genConfig,
		logger:    logger,
	}
}

func (g *ClaudeGenerator) getClient() (anthropic.Client, error) {
	if g.initialized {
		return g.client, nil
	}
	if g.config.APIKey == "" {
		return anthropic.Client{}, fmt.Errorf("anthropic API key is not configured")
	}
	g.client = anthropic.NewClient(option.WithAPIKey(g.config.APIKey))
	g.initialized = true
	return g.client, nil
}

func (g *ClaudeGenerator) Generate(ctx context.Context, prompt, businessType string, imageCount int) (*models.GeneratedContent, error) {
	client, err := g.getClient()
	if err != nil {
		return nil, err
	}

	maxTokens := g.config.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 2048
	}
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(g.config.Model),
		MaxTokens: int64(maxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(buildUserPrompt(prompt, businessType))),
		},
		System: []anthropic.TextBlockParam{
			{Text: systemInstruction},
		},
	}
	if g.config.Temperature > 0 {
		params.Temperature = anthropic.Float(float64(g.config.Temperature))
	}

	var resp *anthropic.Message
	var apiErr error
	retryConfig := NewDefaultRetryConfig()

	for attempt := 0; attempt <= retryConfig.MaxRetries; attempt++ {
		resp, apiErr = client.Messages.New(ctx, params)
		if apiErr == nil {
			break
		}
		if attempt == retryConfig.MaxRetries {
			break
		}

		backoff := time.Duration(attempt+1) * 2 * time.Second
		if IsRateLimitError(apiErr) {
			backoff = retryConfig.CalculateBackoff(attempt, 0)
		}

		g.logger.Warn().
			Int("attempt", attempt+1).
			Dur("backoff", backoff).
			Err(apiErr).
			Msg("Retrying Claude API call")

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
	}
	if apiErr != nil {
		return nil, fmt.Errorf("Claude API call failed after %d retries: %w", retryConfig.MaxRetries, apiErr)
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if text.Len() == 0 {
		return nil, fmt.Errorf("empty response from Claude API")
	}

	payload, err := parseCaptionPayload(text.String())
	if err != nil {
		return nil, err
	}

	return toGeneratedContent(payload, BuildImageURLs(g.genConfig, prompt, imageCount)), nil
}
