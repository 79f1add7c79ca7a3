package models

import "time"

// JobPatch is a merge-style partial update for an AutopostJob. Nil fields
// are left untouched; non-nil fields replace the stored value.
type JobPatch struct {
	Active           *bool                      `json:"active,omitempty"`
	Platforms        []Channel                  `json:"platforms,omitempty"`
	Prompt           *string                    `json:"prompt,omitempty"`
	BusinessType     *string                    `json:"business_type,omitempty"`
	IntervalHours    *int                       `json:"interval_hours,omitempty"`
	VideoRotations   map[Channel]*VideoRotation `json:"video_rotations,omitempty"`
	FallbackVideos   *VideoRotation             `json:"fallback_videos,omitempty"`
	Reels            *SubJobSchedule            `json:"reels,omitempty"`
	Story            *SubJobSchedule            `json:"story,omitempty"`
	TopicTrends      *SubJobSchedule            `json:"topic_trends,omitempty"`
	StoryPrompt      *string                    `json:"story_prompt,omitempty"`
	TrendTopics      []string                   `json:"trend_topics,omitempty"`
	FallbackCaption  *string                    `json:"fallback_caption,omitempty"`
	FallbackHashtags *string                    `json:"fallback_hashtags,omitempty"`
	RequireAIImages  *bool                      `json:"require_ai_images,omitempty"`
}

// Apply merges the patch into the job. Rotation maps merge per channel
// rather than replacing the whole map, so one channel's list can be updated
// without clobbering another's cursor.
func (p *JobPatch) Apply(job *AutopostJob) {
	if p == nil {
		return
	}
	if p.Active != nil {
		job.Active = *p.Active
	}
	if p.Platforms != nil {
		job.Platforms = p.Platforms
	}
	if p.Prompt != nil {
		job.Prompt = *p.Prompt
	}
	if p.BusinessType != nil {
		job.BusinessType = *p.BusinessType
	}
	if p.IntervalHours != nil {
		job.IntervalHours = *p.IntervalHours
	}
	if p.VideoRotations != nil {
		if job.VideoRotations == nil {
			job.VideoRotations = make(map[Channel]*VideoRotation)
		}
		for ch, rot := range p.VideoRotations {
			if existing, ok := job.VideoRotations[ch]; ok && rot != nil {
				// Preserve the persisted cursor when only the list changes.
				rot.Cursor = existing.Cursor
			}
			if rot != nil {
				rot.Normalize()
			}
			job.VideoRotations[ch] = rot
		}
	}
	if p.FallbackVideos != nil {
		if job.FallbackVideos != nil {
			p.FallbackVideos.Cursor = job.FallbackVideos.Cursor
		}
		p.FallbackVideos.Normalize()
		job.FallbackVideos = p.FallbackVideos
	}
	if p.Reels != nil {
		job.Reels = p.Reels
	}
	if p.Story != nil {
		job.Story = p.Story
	}
	if p.TopicTrends != nil {
		job.TopicTrends = p.TopicTrends
	}
	if p.StoryPrompt != nil {
		job.StoryPrompt = *p.StoryPrompt
	}
	if p.TrendTopics != nil {
		job.TrendTopics = p.TrendTopics
		if job.TrendTopicCursor >= len(job.TrendTopics) {
			job.TrendTopicCursor = 0
		}
	}
	if p.FallbackCaption != nil {
		job.FallbackCaption = *p.FallbackCaption
	}
	if p.FallbackHashtags != nil {
		job.FallbackHashtags = *p.FallbackHashtags
	}
	if p.RequireAIImages != nil {
		job.RequireAIImages = *p.RequireAIImages
	}
	job.UpdatedAt = time.Now()
}
