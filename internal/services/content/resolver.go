package content

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/cadence/internal/common"
	"github.com/ternarybob/cadence/internal/interfaces"
	"github.com/ternarybob/cadence/internal/models"
)

// ErrNoFreshImages is returned when require_ai_images is set and every
// generation attempt yielded zero images outside the recency buffer. The
// whole job execution ends early; no channel is attempted.
var ErrNoFreshImages = errors.New("no fresh generated images after bounded attempts")

// DefaultFallbackCaption is used when generation and the job override both
// yield nothing usable.
const DefaultFallbackCaption = "Something new is happening here. Stop by and see for yourself."

// defaultFallbackHashtags backs the built-in hashtag fallback.
var defaultFallbackHashtags = []string{"#local", "#community", "#new"}

// Resolver produces candidate media and captions for one run.
type Resolver struct {
	generator interfaces.ContentGenerator
	config    *common.AutopostConfig
	logger    arbor.ILogger
	rnd       *rand.Rand
}

// NewResolver creates a content resolver. The random source is explicit so
// tests can inject a deterministic one.
func NewResolver(generator interfaces.ContentGenerator, config *common.AutopostConfig, logger arbor.ILogger, rnd *rand.Rand) *Resolver {
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Resolver{
		generator: generator,
		config:    config,
		logger:    logger,
		rnd:       rnd,
	}
}

// Resolve runs generation with bounded retries and recency filtering, then
// falls back to the stock pool (unless the job requires generated images),
// and assembles captions and hashtags per caption kind.
func (r *Resolver) Resolve(ctx context.Context, job *models.AutopostJob) (*models.ResolvedContent, error) {
	basePrompt := job.Prompt
	if basePrompt == "" {
		basePrompt = DefaultBasePrompt
	}

	attempts := r.config.MaxGenerationAttempts
	if attempts <= 0 {
		attempts = 3
	}
	imageCount := r.config.ImageCount
	if imageCount <= 0 {
		imageCount = 3
	}

	var lastGen *models.GeneratedContent
	var freshImages []string

	for attempt := 1; attempt <= attempts; attempt++ {
		prompt := AugmentPrompt(basePrompt, time.Now(), r.rnd)

		gen, err := r.generator.Generate(ctx, prompt, job.BusinessType, imageCount)
		if err != nil {
			r.logger.Warn().
				Err(err).
				Str("tenant_id", job.TenantID).
				Int("attempt", attempt).
				Msg("Content generation attempt failed")
			continue
		}
		lastGen = gen

		fresh := make([]string, 0, len(gen.Images))
		for _, img := range gen.Images {
			if img != "" && !models.ContainsRecent(job.RecentImageURLs, img) {
				fresh = append(fresh, img)
			}
		}
		if len(fresh) > 0 {
			freshImages = fresh
			break
		}

		r.logger.Debug().
			Str("tenant_id", job.TenantID).
			Int("attempt", attempt).
			Int("returned", len(gen.Images)).
			Msg("Generation returned no images outside recency window")
	}

	resolved := &models.ResolvedContent{
		CaptionsByKind: make(map[models.CaptionKind]string),
		HashtagsByKind: make(map[models.CaptionKind][]string),
	}

	if len(freshImages) > 0 {
		resolved.Images = freshImages
		resolved.RecencyImages = freshImages
		resolved.Generated = true
	} else {
		if job.RequireAIImages {
			return nil, ErrNoFreshImages
		}

		pool := fallbackPool(r.config.FallbackImageDir, r.config.FallbackImageURLs)
		publishURL, poolURL := selectFallbackImage(pool, job.RecentImageURLs, time.Now(), r.rnd)
		if publishURL != "" {
			resolved.Images = []string{publishURL}
			resolved.RecencyImages = []string{poolURL}
		}
		r.logger.Info().
			Str("tenant_id", job.TenantID).
			Str("image", poolURL).
			Msg("Using fallback pool image")
	}

	r.assembleCaptions(job, lastGen, resolved)

	return resolved, nil
}

// assembleCaptions fills captions and hashtags for every caption kind,
// falling back to the job override and then the built-in default.
func (r *Resolver) assembleCaptions(job *models.AutopostJob, gen *models.GeneratedContent, resolved *models.ResolvedContent) {
	maxTags := r.config.MaxHashtags
	if maxTags <= 0 {
		maxTags = DefaultMaxHashtags
	}

	fallbackCaption := job.FallbackCaption
	if fallbackCaption == "" {
		fallbackCaption = DefaultFallbackCaption
	}

	fallbackTags := defaultFallbackHashtags
	if job.FallbackHashtags != "" {
		fallbackTags = SplitHashtagText(job.FallbackHashtags)
	}

	kinds := []models.CaptionKind{models.CaptionKindImage, models.CaptionKindLink, models.CaptionKindProfessional}
	for _, kind := range kinds {
		caption := ""
		var tags []string
		if gen != nil {
			caption = gen.CaptionsByKind[kind]
			tags = gen.HashtagsByKind[kind]
		}
		if caption == "" {
			caption = fallbackCaption
		}
		if len(tags) == 0 {
			tags = fallbackTags
		}
		resolved.CaptionsByKind[kind] = caption
		resolved.HashtagsByKind[kind] = NormalizeHashtags(tags, maxTags)
	}
}
