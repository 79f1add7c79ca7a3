package autopost

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/cadence/internal/common"
	"github.com/ternarybob/cadence/internal/interfaces"
	"github.com/ternarybob/cadence/internal/models"
	"github.com/ternarybob/cadence/internal/services/content"
	"github.com/ternarybob/cadence/internal/services/dispatch"
	"github.com/ternarybob/cadence/internal/services/history"
)

// Service executes autopost jobs: due-job discovery, self-healing of partial
// records, per-sub-job execution, and scheduling-state advancement. Tenants
// are processed sequentially; a failure in one never blocks the rest.
type Service struct {
	jobs        interfaces.JobRepository
	resolver    *content.Resolver
	dispatcher  *dispatch.Dispatcher
	credentials interfaces.CredentialResolver
	recorder    *history.Recorder
	config      *common.AutopostConfig
	logger      arbor.ILogger
	now         func() time.Time
}

func NewService(
	jobs interfaces.JobRepository,
	resolver *content.Resolver,
	dispatcher *dispatch.Dispatcher,
	credentials interfaces.CredentialResolver,
	recorder *history.Recorder,
	config *common.AutopostConfig,
	logger arbor.ILogger,
) *Service {
	return &Service{
		jobs:        jobs,
		resolver:    resolver,
		dispatcher:  dispatcher,
		credentials: credentials,
		recorder:    recorder,
		config:      config,
		logger:      logger,
		now:         time.Now,
	}
}

// RunDueJobs sweeps all active jobs and executes every due sub-job. Errors
// inside a tenant are contained; only listing failures surface.
func (s *Service) RunDueJobs(ctx context.Context) error {
	jobs, err := s.jobs.ListActive(ctx)
	if err != nil {
		return fmt.Errorf("failed to list active jobs: %w", err)
	}

	s.logger.Debug().Int("count", len(jobs)).Msg("Sweeping active autopost jobs")
	for _, job := range jobs {
		s.sweepTenant(ctx, job, false)
	}
	return nil
}

// RunForTenant force-runs the standard job for one tenant regardless of its
// schedule. Due sub-jobs run alongside as in a normal sweep.
func (s *Service) RunForTenant(ctx context.Context, tenantID string) error {
	job, err := s.jobs.Get(ctx, tenantID)
	if err != nil {
		return fmt.Errorf("failed to load job for tenant %s: %w", tenantID, err)
	}
	if job == nil {
		return fmt.Errorf("no autopost job exists for tenant %s", tenantID)
	}
	if !job.Active {
		return fmt.Errorf("autopost job for tenant %s is deactivated", tenantID)
	}
	s.sweepTenant(ctx, job, true)
	return nil
}

// Start upserts the tenant's job from the patch and triggers an immediate
// standard run.
func (s *Service) Start(ctx context.Context, tenantID string, patch *models.JobPatch) (*models.AutopostJob, error) {
	job, err := s.jobs.Patch(ctx, tenantID, patch)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert job for tenant %s: %w", tenantID, err)
	}
	s.sweepTenant(ctx, job, true)
	return job, nil
}

// sweepTenant heals, due-checks, and executes one tenant's job. Scheduling
// state always advances for every executed sub-job, success or failure, and
// the record is persisted once at the end.
func (s *Service) sweepTenant(ctx context.Context, job *models.AutopostJob, forceStandard bool) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error().
				Str("tenant_id", job.TenantID).
				Str("panic", fmt.Sprint(r)).
				Msg("Tenant sweep panicked")
		}
	}()

	now := s.now()
	changed := backfillSchedules(job, now, s.config.DefaultIntervalHours)

	type subRun struct {
		kind  models.SubJobKind
		due   bool
		sched *models.SubJobSchedule
	}
	runs := []subRun{
		{kind: models.SubJobStandard, due: forceStandard || job.Due(now)},
		{kind: models.SubJobReels, due: job.Reels.Due(now), sched: job.Reels},
		{kind: models.SubJobStory, due: job.Story.Due(now), sched: job.Story},
		{kind: models.SubJobTopicTrends, due: job.TopicTrends.Due(now), sched: job.TopicTrends},
	}

	ran := false
	for _, r := range runs {
		if !r.due {
			continue
		}
		s.executeIsolated(ctx, job, r.kind)
		if r.kind == models.SubJobStandard {
			job.Advance(now)
		} else {
			r.sched.Advance(now)
		}
		ran = true
	}

	if !changed && !ran {
		return
	}
	if err := s.jobs.Upsert(ctx, job); err != nil {
		s.logger.Error().
			Str("tenant_id", job.TenantID).
			Err(err).
			Msg("Failed to persist job scheduling state")
	}
}

// executeIsolated runs one sub-job with panic containment so a failure in
// one sub-job never prevents the others from running or being recorded.
func (s *Service) executeIsolated(ctx context.Context, job *models.AutopostJob, kind models.SubJobKind) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error().
				Str("tenant_id", job.TenantID).
				Str("sub_job", string(kind)).
				Str("panic", fmt.Sprint(r)).
				Msg("Sub-job execution panicked")
		}
	}()
	s.execute(ctx, job, kind)
}

func (s *Service) execute(ctx context.Context, job *models.AutopostJob, kind models.SubJobKind) {
	runID := common.NewRunID()
	channels := s.effectiveChannels(job, kind)
	if len(channels) == 0 {
		s.logger.Debug().
			Str("tenant_id", job.TenantID).
			Str("sub_job", string(kind)).
			Msg("No channels configured, skipping")
		return
	}

	s.logger.Info().
		Str("tenant_id", job.TenantID).
		Str("sub_job", string(kind)).
		Str("run_id", runID).
		Int("channels", len(channels)).
		Msg("Executing autopost run")

	resolved, err := s.resolveFor(ctx, job, kind)
	if err != nil {
		if errors.Is(err, content.ErrNoFreshImages) {
			s.logger.Warn().
				Str("tenant_id", job.TenantID).
				Str("run_id", runID).
				Msg("No fresh generated images and job requires them, failing run")
		}
		s.recordFailure(ctx, job, kind, runID, channels, err)
		return
	}

	creds, err := s.credentials.ResolveCredentials(ctx, job.TenantID)
	if err != nil {
		s.recordFailure(ctx, job, kind, runID, channels, fmt.Errorf("credential resolution failed: %w", err))
		return
	}

	captions := make(map[models.Channel]string, len(channels))
	signatures := make(map[models.Channel]string, len(channels))
	for _, ch := range channels {
		caption, sig := content.EnsureUnique(ch, resolved.Caption(ch), job.RecentCaptions[ch])
		captions[ch] = caption
		signatures[ch] = sig
	}

	results := s.dispatcher.Dispatch(ctx, &dispatch.Request{
		Job:         job,
		Channels:    channels,
		Captions:    captions,
		Images:      resolved.Images,
		VideoTitle:  videoTitle(resolved),
		Credentials: creds,
	})

	now := s.now()
	outcomes := make([]*models.PostOutcome, 0, len(results))
	anyPosted := false
	for _, res := range results {
		outcome := &models.PostOutcome{
			ID:        common.NewOutcomeID(),
			TenantID:  job.TenantID,
			RunID:     runID,
			SubJob:    kind,
			Channel:   res.Channel,
			Status:    res.Status,
			Caption:   res.Caption,
			VideoURL:  res.VideoURL,
			RemoteID:  res.RemoteID,
			CreatedAt: now,
		}
		if res.VideoURL == "" {
			outcome.ImageURLs = resolved.Images
		}
		if res.Err != nil {
			outcome.Error = res.Err.Error()
		}
		outcomes = append(outcomes, outcome)

		if res.Status == models.OutcomeStatusPosted {
			anyPosted = true
			s.pushCaptionSignature(job, res.Channel, signatures[res.Channel])
		}
	}
	s.recorder.Record(ctx, outcomes)

	if anyPosted {
		for _, img := range resolved.RecencyImages {
			job.RecentImageURLs = models.PushRecent(job.RecentImageURLs, img, s.recencyCap())
		}
	}
}

// resolveFor produces the run's content. Story and topic-trend runs swap in
// their own prompt; the topic cursor advances on every attempt so consecutive
// runs walk the topic list.
func (s *Service) resolveFor(ctx context.Context, job *models.AutopostJob, kind models.SubJobKind) (*models.ResolvedContent, error) {
	switch kind {
	case models.SubJobStory:
		clone := *job
		clone.Prompt = job.StoryPrompt
		return s.resolver.Resolve(ctx, &clone)
	case models.SubJobTopicTrends:
		topic := s.nextTrendTopic(job)
		clone := *job
		if clone.Prompt == "" {
			clone.Prompt = content.DefaultBasePrompt
		}
		if topic != "" {
			clone.Prompt = clone.Prompt + ", themed around " + topic
		}
		return s.resolver.Resolve(ctx, &clone)
	default:
		return s.resolver.Resolve(ctx, job)
	}
}

// nextTrendTopic returns the cursor-selected topic and advances the cursor.
func (s *Service) nextTrendTopic(job *models.AutopostJob) string {
	if len(job.TrendTopics) == 0 {
		return ""
	}
	idx := job.TrendTopicCursor
	if idx < 0 {
		idx = 0
	}
	idx = idx % len(job.TrendTopics)
	job.TrendTopicCursor = (idx + 1) % len(job.TrendTopics)
	return job.TrendTopics[idx]
}

// effectiveChannels resolves the channel set for one sub-job: the sub-job's
// own platform subset when configured, otherwise a kind-appropriate default.
func (s *Service) effectiveChannels(job *models.AutopostJob, kind models.SubJobKind) []models.Channel {
	var sched *models.SubJobSchedule
	switch kind {
	case models.SubJobReels:
		sched = job.Reels
	case models.SubJobStory:
		sched = job.Story
	case models.SubJobTopicTrends:
		sched = job.TopicTrends
	}
	if sched != nil && len(sched.Platforms) > 0 {
		return sched.Platforms
	}
	if kind == models.SubJobReels {
		// Default to the channels that actually have video rotations.
		var channels []models.Channel
		for _, ch := range models.AllChannels {
			if job.Rotation(ch) != nil && job.Rotation(ch).HasContent() {
				channels = append(channels, ch)
			}
		}
		return channels
	}
	return job.Platforms
}

// recordFailure writes a failed outcome for every requested channel.
func (s *Service) recordFailure(ctx context.Context, job *models.AutopostJob, kind models.SubJobKind, runID string, channels []models.Channel, cause error) {
	now := s.now()
	outcomes := make([]*models.PostOutcome, 0, len(channels))
	for _, ch := range channels {
		outcomes = append(outcomes, &models.PostOutcome{
			ID:        common.NewOutcomeID(),
			TenantID:  job.TenantID,
			RunID:     runID,
			SubJob:    kind,
			Channel:   ch,
			Status:    models.OutcomeStatusFailed,
			Error:     cause.Error(),
			CreatedAt: now,
		})
	}
	s.recorder.Record(ctx, outcomes)
}

func (s *Service) pushCaptionSignature(job *models.AutopostJob, channel models.Channel, signature string) {
	if signature == "" {
		return
	}
	if job.RecentCaptions == nil {
		job.RecentCaptions = make(map[models.Channel][]string)
	}
	job.RecentCaptions[channel] = models.PushRecent(job.RecentCaptions[channel], signature, s.recencyCap())
}

func (s *Service) recencyCap() int {
	if s.config.RecencyCap > 0 {
		return s.config.RecencyCap
	}
	return models.DefaultRecencyCap
}

// videoTitle derives a short title from the image caption's first line.
func videoTitle(resolved *models.ResolvedContent) string {
	caption := resolved.CaptionsByKind[models.CaptionKindImage]
	if idx := strings.IndexByte(caption, '\n'); idx >= 0 {
		caption = caption[:idx]
	}
	caption = strings.TrimSpace(caption)
	if len(caption) > 80 {
		caption = strings.TrimSpace(caption[:80])
	}
	return caption
}
