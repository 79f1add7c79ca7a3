package models

import (
	"time"
)

// DefaultIntervalHours is the scheduling interval applied when a job or
// sub-job is created (or backfilled) without an explicit override.
const DefaultIntervalHours = 24

// DefaultRecencyCap bounds the recency buffers when no cap is configured.
const DefaultRecencyCap = 20

// SubJobSchedule holds the scheduling state for one independently-advancing
// sub-job. The fields mirror the standard run's scheduling fields but are
// namespaced so each sub-job advances on its own cadence.
type SubJobSchedule struct {
	Enabled       bool       `json:"enabled"`
	IntervalHours int        `json:"interval_hours"`
	NextRun       *time.Time `json:"next_run,omitempty"`
	LastRunAt     *time.Time `json:"last_run_at,omitempty"`
	Platforms     []Channel  `json:"platforms,omitempty"`
}

// Due reports whether the sub-job should execute at the given instant.
func (s *SubJobSchedule) Due(now time.Time) bool {
	if s == nil || !s.Enabled || s.NextRun == nil {
		return false
	}
	return !s.NextRun.After(now)
}

// Advance moves NextRun forward by the configured interval and stamps
// LastRunAt. It is called after every execution attempt, success or failure,
// so a job never busy-loops.
func (s *SubJobSchedule) Advance(now time.Time) {
	if s == nil {
		return
	}
	hours := s.IntervalHours
	if hours <= 0 {
		hours = DefaultIntervalHours
	}
	next := now.Add(time.Duration(hours) * time.Hour)
	s.NextRun = &next
	s.LastRunAt = &now
}

// VideoRotation is an ordered video list with a persisted modulo cursor,
// plus an optional single fixed URL used when the list is empty.
type VideoRotation struct {
	URLs      []string `json:"urls,omitempty"`
	SingleURL string   `json:"single_url,omitempty"`
	Cursor    int      `json:"cursor"`
}

// Normalize clamps the cursor back into [0, len(URLs)). An empty list
// yields cursor zero.
func (v *VideoRotation) Normalize() {
	if v == nil {
		return
	}
	if len(v.URLs) == 0 {
		v.Cursor = 0
		return
	}
	v.Cursor = ((v.Cursor % len(v.URLs)) + len(v.URLs)) % len(v.URLs)
}

// HasContent reports whether the rotation can yield any URL at all.
func (v *VideoRotation) HasContent() bool {
	return v != nil && (len(v.URLs) > 0 || v.SingleURL != "")
}

// AutopostJob is the per-tenant autopost configuration and scheduling record.
// One record per tenant; sub-jobs share the record but advance independently.
type AutopostJob struct {
	TenantID string `json:"tenant_id" badgerhold:"key"`
	Active   bool   `json:"active"`

	// Standard run configuration.
	Platforms     []Channel  `json:"platforms"`
	Prompt        string     `json:"prompt,omitempty"`
	BusinessType  string     `json:"business_type,omitempty"`
	IntervalHours int        `json:"interval_hours"`
	NextRun       *time.Time `json:"next_run,omitempty"`
	LastRunAt     *time.Time `json:"last_run_at,omitempty"`

	// Recency buffers, most-recent-first, deduplicated, bounded.
	RecentImageURLs []string            `json:"recent_image_urls,omitempty"`
	RecentCaptions  map[Channel][]string `json:"recent_captions,omitempty"`

	// Per-channel video rotations plus a generic fallback video list shared
	// by optionally-video channels.
	VideoRotations map[Channel]*VideoRotation `json:"video_rotations,omitempty"`
	FallbackVideos *VideoRotation             `json:"fallback_videos,omitempty"`

	// Cursor into the process-wide shared fallback video pool, used when a
	// video channel has neither a rotation list nor a single URL configured.
	SharedVideoCursor int `json:"shared_video_cursor"`

	// Sub-jobs. A nil schedule with matching content present is a partial
	// legacy record and gets backfilled by the runner.
	Reels       *SubJobSchedule `json:"reels,omitempty"`
	Story       *SubJobSchedule `json:"story,omitempty"`
	TopicTrends *SubJobSchedule `json:"topic_trends,omitempty"`

	// Story sub-job content.
	StoryPrompt string `json:"story_prompt,omitempty"`

	// Topic-trend sub-job content with its own rotation cursor.
	TrendTopics     []string `json:"trend_topics,omitempty"`
	TrendTopicCursor int     `json:"trend_topic_cursor"`

	// Degraded-mode overrides.
	FallbackCaption  string `json:"fallback_caption,omitempty"`
	FallbackHashtags string `json:"fallback_hashtags,omitempty"`
	RequireAIImages  bool   `json:"require_ai_images"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Due reports whether the standard run is due at the given instant.
func (j *AutopostJob) Due(now time.Time) bool {
	if !j.Active || j.NextRun == nil {
		return false
	}
	return !j.NextRun.After(now)
}

// Advance moves the standard run's NextRun forward by its interval.
func (j *AutopostJob) Advance(now time.Time) {
	hours := j.IntervalHours
	if hours <= 0 {
		hours = DefaultIntervalHours
	}
	next := now.Add(time.Duration(hours) * time.Hour)
	j.NextRun = &next
	j.LastRunAt = &now
}

// Rotation returns the video rotation for a channel, or nil.
func (j *AutopostJob) Rotation(c Channel) *VideoRotation {
	if j.VideoRotations == nil {
		return nil
	}
	return j.VideoRotations[c]
}

// HasReelContent reports whether any per-channel video rotation can yield
// a URL. Used by the self-healing backfill to detect partial legacy records.
func (j *AutopostJob) HasReelContent() bool {
	for _, rot := range j.VideoRotations {
		if rot.HasContent() {
			return true
		}
	}
	return false
}

// HasStoryContent reports whether the story sub-job has content configured.
func (j *AutopostJob) HasStoryContent() bool {
	return j.StoryPrompt != ""
}

// HasTrendContent reports whether the topic-trend sub-job has content.
func (j *AutopostJob) HasTrendContent() bool {
	return len(j.TrendTopics) > 0
}

// PushRecent inserts a value at the front of a recency buffer, removing any
// existing occurrence and evicting the oldest entries beyond cap.
func PushRecent(buf []string, value string, cap int) []string {
	if value == "" {
		return buf
	}
	if cap <= 0 {
		cap = DefaultRecencyCap
	}
	out := make([]string, 0, len(buf)+1)
	out = append(out, value)
	for _, v := range buf {
		if v != value {
			out = append(out, v)
		}
	}
	if len(out) > cap {
		out = out[:cap]
	}
	return out
}

// ContainsRecent reports whether a recency buffer holds the exact value.
func ContainsRecent(buf []string, value string) bool {
	for _, v := range buf {
		if v == value {
			return true
		}
	}
	return false
}
