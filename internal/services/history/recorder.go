package history

import (
	"context"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/cadence/internal/interfaces"
	"github.com/ternarybob/cadence/internal/models"
)

// Recorder persists post outcomes and daily counters. Recording is
// best-effort: a storage failure here is logged and swallowed so it never
// fails the publishing run it describes.
type Recorder struct {
	store  interfaces.HistoryStore
	logger arbor.ILogger
}

func NewRecorder(store interfaces.HistoryStore, logger arbor.ILogger) *Recorder {
	return &Recorder{
		store:  store,
		logger: logger,
	}
}

// Record saves the outcome rows for one run and bumps the per-tenant
// per-day per-channel counters.
func (r *Recorder) Record(ctx context.Context, outcomes []*models.PostOutcome) {
	if len(outcomes) == 0 {
		return
	}
	if err := r.store.SaveOutcomes(ctx, outcomes); err != nil {
		r.logger.Warn().
			Str("tenant_id", outcomes[0].TenantID).
			Int("count", len(outcomes)).
			Err(err).
			Msg("Failed to save post outcomes")
	}
	for _, outcome := range outcomes {
		day := outcome.CreatedAt
		if day.IsZero() {
			day = time.Now()
		}
		if err := r.store.IncrementDailyStats(ctx, outcome.TenantID, day, outcome.Channel, outcome.Status); err != nil {
			r.logger.Warn().
				Str("tenant_id", outcome.TenantID).
				Str("channel", string(outcome.Channel)).
				Err(err).
				Msg("Failed to increment daily stats")
		}
	}
}

// ListRecent returns a tenant's most recent outcomes, newest first.
func (r *Recorder) ListRecent(ctx context.Context, tenantID string, limit int) ([]*models.PostOutcome, error) {
	return r.store.ListOutcomes(ctx, tenantID, limit)
}

// StatsForDay returns a tenant's per-channel counters for one day.
func (r *Recorder) StatsForDay(ctx context.Context, tenantID string, day time.Time) ([]*models.DailyStats, error) {
	return r.store.GetDailyStats(ctx, tenantID, day)
}
