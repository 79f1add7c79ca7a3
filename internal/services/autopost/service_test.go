package autopost

import (
	"context"
	"errors"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/cadence/internal/common"
	"github.com/ternarybob/cadence/internal/interfaces"
	"github.com/ternarybob/cadence/internal/models"
	"github.com/ternarybob/cadence/internal/services/content"
	"github.com/ternarybob/cadence/internal/services/dispatch"
	"github.com/ternarybob/cadence/internal/services/history"
	"github.com/ternarybob/cadence/internal/storage/memory"
)

type fakeGenerator struct {
	err     error
	calls   int
	prompts []string
}

func (f *fakeGenerator) Generate(_ context.Context, prompt, _ string, _ int) (*models.GeneratedContent, error) {
	f.calls++
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return nil, f.err
	}
	return &models.GeneratedContent{
		Images: []string{"https://img/generated"},
		CaptionsByKind: map[models.CaptionKind]string{
			models.CaptionKindImage:        "Fresh out of the oven",
			models.CaptionKindLink:         "Fresh out of the oven",
			models.CaptionKindProfessional: "Fresh out of the oven",
		},
		HashtagsByKind: map[models.CaptionKind][]string{
			models.CaptionKindImage: {"#bakery"},
		},
	}, nil
}

type fakePublisher struct {
	calls []*models.PublishRequest
	err   error
}

func (f *fakePublisher) Publish(_ context.Context, req *models.PublishRequest, _ *models.ChannelCredential) (*models.PublishResult, error) {
	f.calls = append(f.calls, req)
	if f.err != nil {
		return nil, f.err
	}
	return &models.PublishResult{RemoteID: "remote-1"}, nil
}

type fakeCredentials struct {
	err error
}

func (f *fakeCredentials) ResolveCredentials(_ context.Context, _ string) (map[models.Channel]*models.ChannelCredential, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make(map[models.Channel]*models.ChannelCredential)
	for _, ch := range models.AllChannels {
		out[ch] = &models.ChannelCredential{Channel: ch, AccessToken: "tok"}
	}
	return out, nil
}

type fixture struct {
	jobs      interfaces.JobRepository
	store     interfaces.HistoryStore
	generator *fakeGenerator
	publisher *fakePublisher
	creds     *fakeCredentials
	svc       *Service
	now       time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := arbor.NewLogger()
	f := &fixture{
		jobs:      memory.NewJobRepository(),
		store:     memory.NewHistoryStore(),
		generator: &fakeGenerator{},
		publisher: &fakePublisher{},
		creds:     &fakeCredentials{},
		now:       time.Date(2026, 8, 31, 9, 0, 0, 0, time.UTC),
	}

	cfg := &common.AutopostConfig{
		DefaultIntervalHours:  24,
		MaxGenerationAttempts: 2,
		RecencyCap:            5,
	}

	resolver := content.NewResolver(f.generator, cfg, logger, rand.New(rand.NewSource(1)))
	registry := dispatch.NewRegistry()
	for _, ch := range models.AllChannels {
		registry.Register(ch, f.publisher)
	}
	dispatcher := dispatch.NewDispatcher(registry, nil, logger)
	recorder := history.NewRecorder(f.store, logger)

	f.svc = NewService(f.jobs, resolver, dispatcher, f.creds, recorder, cfg, logger)
	f.svc.now = func() time.Time { return f.now }
	return f
}

func (f *fixture) seedJob(t *testing.T, job *models.AutopostJob) {
	t.Helper()
	if err := f.jobs.Upsert(context.Background(), job); err != nil {
		t.Fatalf("seed job: %v", err)
	}
}

func (f *fixture) loadJob(t *testing.T, tenantID string) *models.AutopostJob {
	t.Helper()
	job, err := f.jobs.Get(context.Background(), tenantID)
	if err != nil {
		t.Fatalf("load job: %v", err)
	}
	if job == nil {
		t.Fatalf("job %s not found", tenantID)
	}
	return job
}

func dueAt(ts time.Time) *time.Time { return &ts }

func TestRunDueJobsPostsAndAdvances(t *testing.T) {
	f := newFixture(t)
	f.seedJob(t, &models.AutopostJob{
		TenantID:      "t1",
		Active:        true,
		Platforms:     []models.Channel{models.ChannelFacebook},
		IntervalHours: 6,
		NextRun:       dueAt(f.now.Add(-time.Minute)),
	})

	if err := f.svc.RunDueJobs(context.Background()); err != nil {
		t.Fatalf("RunDueJobs: %v", err)
	}

	if len(f.publisher.calls) != 1 {
		t.Fatalf("expected 1 publish call, got %d", len(f.publisher.calls))
	}

	job := f.loadJob(t, "t1")
	wantNext := f.now.Add(6 * time.Hour)
	if job.NextRun == nil || !job.NextRun.Equal(wantNext) {
		t.Errorf("NextRun = %v, want %v", job.NextRun, wantNext)
	}
	if job.LastRunAt == nil || !job.LastRunAt.Equal(f.now) {
		t.Errorf("LastRunAt = %v, want %v", job.LastRunAt, f.now)
	}
	if len(job.RecentImageURLs) != 1 || job.RecentImageURLs[0] != "https://img/generated" {
		t.Errorf("recency buffer = %v", job.RecentImageURLs)
	}
	if len(job.RecentCaptions[models.ChannelFacebook]) != 1 {
		t.Errorf("caption signature not recorded: %v", job.RecentCaptions)
	}

	outcomes, err := f.store.ListOutcomes(context.Background(), "t1", 10)
	if err != nil {
		t.Fatalf("ListOutcomes: %v", err)
	}
	if len(outcomes) != 1 || outcomes[0].Status != models.OutcomeStatusPosted {
		t.Errorf("outcomes = %+v", outcomes)
	}
}

func TestNextRunAdvancesOnFailureToo(t *testing.T) {
	f := newFixture(t)
	f.publisher.err = errors.New("upstream down")
	f.seedJob(t, &models.AutopostJob{
		TenantID:      "t1",
		Active:        true,
		Platforms:     []models.Channel{models.ChannelFacebook},
		IntervalHours: 6,
		NextRun:       dueAt(f.now.Add(-time.Minute)),
	})

	if err := f.svc.RunDueJobs(context.Background()); err != nil {
		t.Fatalf("RunDueJobs: %v", err)
	}

	job := f.loadJob(t, "t1")
	wantNext := f.now.Add(6 * time.Hour)
	if job.NextRun == nil || !job.NextRun.Equal(wantNext) {
		t.Errorf("failed runs must still advance NextRun: got %v, want %v", job.NextRun, wantNext)
	}
	if len(job.RecentImageURLs) != 0 {
		t.Errorf("nothing posted, recency buffer must stay empty: %v", job.RecentImageURLs)
	}
	if len(job.RecentCaptions[models.ChannelFacebook]) != 0 {
		t.Error("failed channel must not record a caption signature")
	}

	outcomes, _ := f.store.ListOutcomes(context.Background(), "t1", 10)
	if len(outcomes) != 1 || outcomes[0].Status != models.OutcomeStatusFailed {
		t.Errorf("outcomes = %+v", outcomes)
	}
}

func TestRunDueJobsSkipsNotDue(t *testing.T) {
	f := newFixture(t)
	f.seedJob(t, &models.AutopostJob{
		TenantID:      "t1",
		Active:        true,
		Platforms:     []models.Channel{models.ChannelFacebook},
		IntervalHours: 6,
		NextRun:       dueAt(f.now.Add(time.Hour)),
	})

	if err := f.svc.RunDueJobs(context.Background()); err != nil {
		t.Fatalf("RunDueJobs: %v", err)
	}
	if len(f.publisher.calls) != 0 {
		t.Errorf("not-due job must not run, got %d publish calls", len(f.publisher.calls))
	}
}

func TestRequireAIImagesFailsRunWithoutPublishing(t *testing.T) {
	f := newFixture(t)
	f.generator.err = errors.New("quota exhausted")
	f.seedJob(t, &models.AutopostJob{
		TenantID:        "t1",
		Active:          true,
		Platforms:       []models.Channel{models.ChannelFacebook, models.ChannelInstagram},
		IntervalHours:   6,
		NextRun:         dueAt(f.now.Add(-time.Minute)),
		RequireAIImages: true,
	})

	if err := f.svc.RunDueJobs(context.Background()); err != nil {
		t.Fatalf("RunDueJobs: %v", err)
	}

	if len(f.publisher.calls) != 0 {
		t.Errorf("no channel may be attempted without fresh images, got %d calls", len(f.publisher.calls))
	}

	outcomes, _ := f.store.ListOutcomes(context.Background(), "t1", 10)
	if len(outcomes) != 2 {
		t.Fatalf("expected a failed outcome per channel, got %d", len(outcomes))
	}
	for _, o := range outcomes {
		if o.Status != models.OutcomeStatusFailed || o.Error == "" {
			t.Errorf("outcome = %+v", o)
		}
	}

	job := f.loadJob(t, "t1")
	if job.NextRun == nil || !job.NextRun.Equal(f.now.Add(6*time.Hour)) {
		t.Errorf("NextRun must advance even for failed runs: %v", job.NextRun)
	}
}

func TestCredentialFailureRecordsFailedOutcomes(t *testing.T) {
	f := newFixture(t)
	f.creds.err = errors.New("decryption key missing")
	f.seedJob(t, &models.AutopostJob{
		TenantID:      "t1",
		Active:        true,
		Platforms:     []models.Channel{models.ChannelFacebook},
		IntervalHours: 6,
		NextRun:       dueAt(f.now.Add(-time.Minute)),
	})

	if err := f.svc.RunDueJobs(context.Background()); err != nil {
		t.Fatalf("RunDueJobs: %v", err)
	}
	if len(f.publisher.calls) != 0 {
		t.Error("publish must not run when credential resolution fails")
	}
	outcomes, _ := f.store.ListOutcomes(context.Background(), "t1", 10)
	if len(outcomes) != 1 || outcomes[0].Status != models.OutcomeStatusFailed {
		t.Errorf("outcomes = %+v", outcomes)
	}
}

func TestSubJobsRunIndependently(t *testing.T) {
	f := newFixture(t)
	f.seedJob(t, &models.AutopostJob{
		TenantID:      "t1",
		Active:        true,
		Platforms:     []models.Channel{models.ChannelFacebook},
		IntervalHours: 6,
		NextRun:       dueAt(f.now.Add(time.Hour)), // standard not due
		Story: &models.SubJobSchedule{
			Enabled:       true,
			IntervalHours: 12,
			NextRun:       dueAt(f.now.Add(-time.Minute)),
			Platforms:     []models.Channel{models.ChannelInstagram},
		},
		StoryPrompt: "behind the counter",
	})

	if err := f.svc.RunDueJobs(context.Background()); err != nil {
		t.Fatalf("RunDueJobs: %v", err)
	}

	if len(f.publisher.calls) != 1 || f.publisher.calls[0].Channel != models.ChannelInstagram {
		t.Fatalf("expected one story publish to instagram, got %+v", f.publisher.calls)
	}

	job := f.loadJob(t, "t1")
	if !job.NextRun.Equal(f.now.Add(time.Hour)) {
		t.Errorf("standard NextRun must be untouched: %v", job.NextRun)
	}
	if job.Story.NextRun == nil || !job.Story.NextRun.Equal(f.now.Add(12*time.Hour)) {
		t.Errorf("story NextRun = %v, want +12h", job.Story.NextRun)
	}
}

func TestTopicTrendRunWalksTopicCursor(t *testing.T) {
	f := newFixture(t)
	f.seedJob(t, &models.AutopostJob{
		TenantID:      "t1",
		Active:        true,
		Platforms:     []models.Channel{models.ChannelFacebook},
		IntervalHours: 6,
		NextRun:       dueAt(f.now.Add(time.Hour)),
		TopicTrends: &models.SubJobSchedule{
			Enabled:       true,
			IntervalHours: 24,
			NextRun:       dueAt(f.now.Add(-time.Minute)),
		},
		TrendTopics:      []string{"sourdough", "croissants"},
		TrendTopicCursor: 0,
	})

	if err := f.svc.RunDueJobs(context.Background()); err != nil {
		t.Fatalf("RunDueJobs: %v", err)
	}

	found := false
	for _, p := range f.generator.prompts {
		if strings.Contains(p, "themed around sourdough") {
			found = true
		}
	}
	if !found {
		t.Errorf("generation prompt missing trend topic: %v", f.generator.prompts)
	}

	job := f.loadJob(t, "t1")
	if job.TrendTopicCursor != 1 {
		t.Errorf("TrendTopicCursor = %d, want 1", job.TrendTopicCursor)
	}
}

func TestRunForTenantForcesStandardRun(t *testing.T) {
	f := newFixture(t)
	f.seedJob(t, &models.AutopostJob{
		TenantID:      "t1",
		Active:        true,
		Platforms:     []models.Channel{models.ChannelFacebook},
		IntervalHours: 6,
		NextRun:       dueAt(f.now.Add(time.Hour)), // not due
	})

	if err := f.svc.RunForTenant(context.Background(), "t1"); err != nil {
		t.Fatalf("RunForTenant: %v", err)
	}
	if len(f.publisher.calls) != 1 {
		t.Errorf("forced run must publish, got %d calls", len(f.publisher.calls))
	}
}

func TestRunForTenantErrors(t *testing.T) {
	f := newFixture(t)
	if err := f.svc.RunForTenant(context.Background(), "missing"); err == nil {
		t.Error("expected an error for an unknown tenant")
	}

	f.seedJob(t, &models.AutopostJob{TenantID: "t2", Active: false})
	if err := f.svc.RunForTenant(context.Background(), "t2"); err == nil {
		t.Error("expected an error for a deactivated job")
	}
}

func TestStartUpsertsAndRunsImmediately(t *testing.T) {
	f := newFixture(t)

	active := true
	hours := 8
	job, err := f.svc.Start(context.Background(), "t1", &models.JobPatch{
		Active:        &active,
		Platforms:     []models.Channel{models.ChannelFacebook},
		IntervalHours: &hours,
	})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if job.TenantID != "t1" || !job.Active {
		t.Errorf("job = %+v", job)
	}
	if len(f.publisher.calls) != 1 {
		t.Errorf("Start must trigger an immediate run, got %d calls", len(f.publisher.calls))
	}

	persisted := f.loadJob(t, "t1")
	if persisted.NextRun == nil || !persisted.NextRun.Equal(f.now.Add(8*time.Hour)) {
		t.Errorf("NextRun = %v, want +8h", persisted.NextRun)
	}
}
