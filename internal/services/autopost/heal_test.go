package autopost

import (
	"testing"
	"time"

	"github.com/ternarybob/cadence/internal/models"
)

func TestBackfillSchedulesSkipsInactive(t *testing.T) {
	job := &models.AutopostJob{TenantID: "t1", Active: false, StoryPrompt: "story"}
	if backfillSchedules(job, time.Now(), 24) {
		t.Error("inactive jobs must not be backfilled")
	}
	if job.Story != nil {
		t.Error("inactive job grew a schedule")
	}
}

func TestBackfillSchedulesRepairsPartialRecord(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	job := &models.AutopostJob{
		TenantID: "t1",
		Active:   true,
		VideoRotations: map[models.Channel]*models.VideoRotation{
			models.ChannelTikTok: {URLs: []string{"https://v/a.mp4"}},
		},
		StoryPrompt: "behind the counter",
		TrendTopics: []string{"sourdough"},
	}

	if !backfillSchedules(job, now, 12) {
		t.Fatal("expected backfill to report changes")
	}

	if job.NextRun == nil || !job.NextRun.Equal(now) {
		t.Errorf("standard NextRun = %v, want %v", job.NextRun, now)
	}
	if job.IntervalHours != 12 {
		t.Errorf("IntervalHours = %d, want 12", job.IntervalHours)
	}
	for name, sched := range map[string]*models.SubJobSchedule{
		"reels": job.Reels, "story": job.Story, "topic_trends": job.TopicTrends,
	} {
		if sched == nil {
			t.Fatalf("%s schedule not backfilled", name)
		}
		if !sched.Enabled || sched.IntervalHours != 12 {
			t.Errorf("%s schedule = %+v", name, sched)
		}
		if sched.NextRun == nil || !sched.NextRun.Equal(now) {
			t.Errorf("%s NextRun = %v, want immediately due", name, sched.NextRun)
		}
	}
}

func TestBackfillSchedulesRunsOnce(t *testing.T) {
	now := time.Now()
	job := &models.AutopostJob{
		TenantID:    "t1",
		Active:      true,
		StoryPrompt: "story prompt",
	}

	if !backfillSchedules(job, now, 0) {
		t.Fatal("first pass should change the record")
	}
	if job.IntervalHours != models.DefaultIntervalHours {
		t.Errorf("IntervalHours = %d, want default", job.IntervalHours)
	}
	if backfillSchedules(job, now.Add(time.Hour), 0) {
		t.Error("second pass must be a no-op")
	}
}

func TestBackfillSchedulesLeavesContentlessSubJobsAlone(t *testing.T) {
	job := &models.AutopostJob{TenantID: "t1", Active: true}
	backfillSchedules(job, time.Now(), 24)
	if job.Reels != nil || job.Story != nil || job.TopicTrends != nil {
		t.Error("sub-jobs without content must not be backfilled")
	}
}
