package generation

import (
	"fmt"
	"strings"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/cadence/internal/common"
	"github.com/ternarybob/cadence/internal/interfaces"
)

// NewGenerator selects the content generation provider from config.
func NewGenerator(cfg *common.Config, logger arbor.ILogger) (interfaces.ContentGenerator, error) {
	provider := strings.ToLower(strings.TrimSpace(cfg.Generation.Provider))
	switch provider {
	case "", "gemini":
		return NewGeminiGenerator(&cfg.Gemini, &cfg.Generation, logger), nil
	case "claude", "anthropic":
		return NewClaudeGenerator(&cfg.Claude, &cfg.Generation, logger), nil
	default:
		return nil, fmt.Errorf("unsupported generation provider: %s", cfg.Generation.Provider)
	}
}
