package interfaces

import (
	"context"

	"github.com/ternarybob/cadence/internal/models"
)

// ContentGenerator is the consumed generation capability: given a prompt and
// business context it returns candidate images plus captions and hashtags
// keyed by caption kind. It may fail; the caller retries with a varied prompt.
type ContentGenerator interface {
	Generate(ctx context.Context, prompt, businessType string, imageCount int) (*models.GeneratedContent, error)
}
