package models

import "testing"

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }
func intPtr(i int) *int       { return &i }

func TestJobPatchApplyMergesFields(t *testing.T) {
	job := &AutopostJob{
		TenantID:      "t1",
		Active:        true,
		Platforms:     []Channel{ChannelFacebook},
		Prompt:        "old prompt",
		IntervalHours: 24,
	}

	patch := &JobPatch{
		Prompt:        strPtr("new prompt"),
		IntervalHours: intPtr(12),
	}
	patch.Apply(job)

	if job.Prompt != "new prompt" {
		t.Errorf("Prompt = %q, want %q", job.Prompt, "new prompt")
	}
	if job.IntervalHours != 12 {
		t.Errorf("IntervalHours = %d, want 12", job.IntervalHours)
	}
	// Untouched fields survive.
	if !job.Active || len(job.Platforms) != 1 {
		t.Error("fields absent from the patch must be left alone")
	}
	if job.UpdatedAt.IsZero() {
		t.Error("Apply should stamp UpdatedAt")
	}
}

func TestJobPatchApplyPreservesRotationCursor(t *testing.T) {
	job := &AutopostJob{
		TenantID: "t1",
		VideoRotations: map[Channel]*VideoRotation{
			ChannelYouTubeShorts: {URLs: []string{"a", "b", "c"}, Cursor: 2},
		},
	}

	patch := &JobPatch{
		VideoRotations: map[Channel]*VideoRotation{
			ChannelYouTubeShorts: {URLs: []string{"a", "b", "c", "d"}},
		},
	}
	patch.Apply(job)

	rot := job.VideoRotations[ChannelYouTubeShorts]
	if rot.Cursor != 2 {
		t.Errorf("Cursor = %d, want 2 (preserved across list update)", rot.Cursor)
	}
	if len(rot.URLs) != 4 {
		t.Errorf("URLs length = %d, want 4", len(rot.URLs))
	}
}

func TestJobPatchApplyResetsTrendCursorWhenOutOfRange(t *testing.T) {
	job := &AutopostJob{
		TenantID:         "t1",
		TrendTopics:      []string{"a", "b", "c"},
		TrendTopicCursor: 2,
	}

	patch := &JobPatch{TrendTopics: []string{"x"}}
	patch.Apply(job)

	if job.TrendTopicCursor != 0 {
		t.Errorf("TrendTopicCursor = %d, want 0 after shrinking topic list", job.TrendTopicCursor)
	}
}

func TestJobPatchApplyDeactivates(t *testing.T) {
	job := &AutopostJob{TenantID: "t1", Active: true}
	patch := &JobPatch{Active: boolPtr(false)}
	patch.Apply(job)
	if job.Active {
		t.Error("Active should be false after patch")
	}
}
