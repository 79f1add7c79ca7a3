package autopost

import (
	"time"

	"github.com/ternarybob/cadence/internal/models"
)

// backfillSchedules repairs partial legacy records: sub-job content present
// but the matching schedule absent. The backfilled schedule gets the default
// interval and an immediately-due next run, and is written back so the job
// is indistinguishable from a normally-scheduled one on later sweeps.
// Returns true when anything changed.
func backfillSchedules(job *models.AutopostJob, now time.Time, defaultHours int) bool {
	if !job.Active {
		return false
	}
	if defaultHours <= 0 {
		defaultHours = models.DefaultIntervalHours
	}
	changed := false

	if job.NextRun == nil {
		next := now
		job.NextRun = &next
		if job.IntervalHours <= 0 {
			job.IntervalHours = defaultHours
		}
		changed = true
	}

	if job.Reels == nil && job.HasReelContent() {
		job.Reels = newBackfilledSchedule(now, defaultHours)
		changed = true
	}
	if job.Story == nil && job.HasStoryContent() {
		job.Story = newBackfilledSchedule(now, defaultHours)
		changed = true
	}
	if job.TopicTrends == nil && job.HasTrendContent() {
		job.TopicTrends = newBackfilledSchedule(now, defaultHours)
		changed = true
	}

	return changed
}

func newBackfilledSchedule(now time.Time, hours int) *models.SubJobSchedule {
	next := now
	return &models.SubJobSchedule{
		Enabled:       true,
		IntervalHours: hours,
		NextRun:       &next,
	}
}
