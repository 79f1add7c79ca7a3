package interfaces

import (
	"context"

	"github.com/ternarybob/cadence/internal/models"
)

// AutopostRunner executes due autopost jobs and their sub-jobs.
type AutopostRunner interface {
	// RunDueJobs sweeps all active jobs and executes every due sub-job.
	RunDueJobs(ctx context.Context) error

	// RunForTenant force-runs the standard job for one tenant regardless
	// of schedule.
	RunForTenant(ctx context.Context, tenantID string) error

	// Start upserts the tenant's job from the given patch and triggers an
	// immediate run.
	Start(ctx context.Context, tenantID string, patch *models.JobPatch) (*models.AutopostJob, error)
}

// SchedulerService drives the recurring sweep: cron expression plus a
// fixed-interval poll plus an immediate run at startup, all funneled into
// the runner under one single-flight guard.
type SchedulerService interface {
	Start() error
	Stop() error
	TriggerSweep() error
	IsRunning() bool
}
