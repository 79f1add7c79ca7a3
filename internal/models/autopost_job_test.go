package models

import (
	"reflect"
	"testing"
	"time"
)

func TestPushRecent(t *testing.T) {
	tests := []struct {
		name     string
		buf      []string
		value    string
		cap      int
		expected []string
	}{
		{
			name:     "insert into empty buffer",
			buf:      nil,
			value:    "a",
			cap:      3,
			expected: []string{"a"},
		},
		{
			name:     "most recent first",
			buf:      []string{"b", "c"},
			value:    "a",
			cap:      3,
			expected: []string{"a", "b", "c"},
		},
		{
			name:     "existing value moves to front",
			buf:      []string{"b", "a", "c"},
			value:    "a",
			cap:      3,
			expected: []string{"a", "b", "c"},
		},
		{
			name:     "oldest entry evicted beyond cap",
			buf:      []string{"b", "c", "d"},
			value:    "a",
			cap:      3,
			expected: []string{"a", "b", "c"},
		},
		{
			name:     "empty value ignored",
			buf:      []string{"a"},
			value:    "",
			cap:      3,
			expected: []string{"a"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PushRecent(tt.buf, tt.value, tt.cap)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("PushRecent() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestPushRecentDefaultCap(t *testing.T) {
	var buf []string
	for i := 0; i < DefaultRecencyCap+10; i++ {
		buf = PushRecent(buf, string(rune('a'+i)), 0)
	}
	if len(buf) != DefaultRecencyCap {
		t.Errorf("expected buffer capped at %d, got %d", DefaultRecencyCap, len(buf))
	}
}

func TestSubJobScheduleDue(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	tests := []struct {
		name     string
		sched    *SubJobSchedule
		expected bool
	}{
		{"nil schedule", nil, false},
		{"disabled", &SubJobSchedule{Enabled: false, NextRun: &past}, false},
		{"no next run", &SubJobSchedule{Enabled: true}, false},
		{"past next run", &SubJobSchedule{Enabled: true, NextRun: &past}, true},
		{"exactly now", &SubJobSchedule{Enabled: true, NextRun: &now}, true},
		{"future next run", &SubJobSchedule{Enabled: true, NextRun: &future}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.sched.Due(now); got != tt.expected {
				t.Errorf("Due() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestSubJobScheduleAdvance(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-2 * time.Hour)
	sched := &SubJobSchedule{Enabled: true, IntervalHours: 6, NextRun: &past}

	sched.Advance(now)

	expected := now.Add(6 * time.Hour)
	if sched.NextRun == nil || !sched.NextRun.Equal(expected) {
		t.Errorf("NextRun = %v, want %v", sched.NextRun, expected)
	}
	if sched.LastRunAt == nil || !sched.LastRunAt.Equal(now) {
		t.Errorf("LastRunAt = %v, want %v", sched.LastRunAt, now)
	}
	if sched.Due(now) {
		t.Error("schedule should not be due immediately after Advance")
	}
}

func TestJobAdvanceUsesDefaultInterval(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	job := &AutopostJob{TenantID: "t1", Active: true}

	job.Advance(now)

	expected := now.Add(DefaultIntervalHours * time.Hour)
	if job.NextRun == nil || !job.NextRun.Equal(expected) {
		t.Errorf("NextRun = %v, want %v", job.NextRun, expected)
	}
}

func TestVideoRotationNormalize(t *testing.T) {
	tests := []struct {
		name     string
		rot      VideoRotation
		expected int
	}{
		{"in range", VideoRotation{URLs: []string{"a", "b", "c"}, Cursor: 1}, 1},
		{"beyond length", VideoRotation{URLs: []string{"a", "b"}, Cursor: 5}, 1},
		{"negative", VideoRotation{URLs: []string{"a", "b", "c"}, Cursor: -1}, 2},
		{"empty list", VideoRotation{Cursor: 7}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.rot.Normalize()
			if tt.rot.Cursor != tt.expected {
				t.Errorf("Cursor = %d, want %d", tt.rot.Cursor, tt.expected)
			}
		})
	}
}

func TestHasReelContent(t *testing.T) {
	job := &AutopostJob{}
	if job.HasReelContent() {
		t.Error("empty job should have no reel content")
	}

	job.VideoRotations = map[Channel]*VideoRotation{
		ChannelYouTubeShorts: {},
	}
	if job.HasReelContent() {
		t.Error("empty rotation should not count as reel content")
	}

	job.VideoRotations[ChannelYouTubeShorts] = &VideoRotation{SingleURL: "https://example.com/v.mp4"}
	if !job.HasReelContent() {
		t.Error("single URL rotation should count as reel content")
	}
}
