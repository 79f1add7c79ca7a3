package dispatch

import (
	"strings"

	"github.com/ternarybob/cadence/internal/models"
)

// rotationSource records which tier of the video fallback chain supplied a
// URL, so the dispatcher knows which cursor to advance afterwards.
type rotationSource int

const (
	sourceNone rotationSource = iota
	sourceChannelList
	sourceChannelSingle
	sourceJobFallback
	sourceSharedPool
)

// videoSelection is the outcome of walking the fallback chain for one channel.
type videoSelection struct {
	URL        string
	Source     rotationSource
	NextCursor int
}

// SelectNext picks the element at cursor (modulo length) and returns it along
// with the advanced cursor. Cursors from older job records may be out of
// range; they are reduced rather than rejected.
func SelectNext(urls []string, cursor int) (string, int) {
	if len(urls) == 0 {
		return "", 0
	}
	if cursor < 0 {
		cursor = 0
	}
	idx := cursor % len(urls)
	return urls[idx], (idx + 1) % len(urls)
}

// selectVideo walks the fallback chain for a channel: the channel's own
// rotation list, then its single URL, then the job-level fallback rotation,
// then the shared pool. Channels that merely accept a fallback video (rather
// than requiring one) skip the shared pool so they degrade to image posts
// instead of publishing generic footage.
func selectVideo(job *models.AutopostJob, channel models.Channel, sharedPool []string) videoSelection {
	rot := job.Rotation(channel)
	if rot != nil {
		if len(rot.URLs) > 0 {
			url, next := SelectNext(rot.URLs, rot.Cursor)
			return videoSelection{URL: url, Source: sourceChannelList, NextCursor: next}
		}
		if s := strings.TrimSpace(rot.SingleURL); s != "" {
			return videoSelection{URL: s, Source: sourceChannelSingle}
		}
	}
	if fb := job.FallbackVideos; fb != nil && fb.HasContent() {
		if len(fb.URLs) > 0 {
			url, next := SelectNext(fb.URLs, fb.Cursor)
			return videoSelection{URL: url, Source: sourceJobFallback, NextCursor: next}
		}
		return videoSelection{URL: strings.TrimSpace(fb.SingleURL), Source: sourceChannelSingle}
	}
	if channel.RequiresVideo() && len(sharedPool) > 0 {
		url, next := SelectNext(sharedPool, job.SharedVideoCursor)
		return videoSelection{URL: url, Source: sourceSharedPool, NextCursor: next}
	}
	return videoSelection{Source: sourceNone}
}

// CursorDelta describes a rotation cursor advance that the caller should
// persist once the run's outcomes are recorded. Deltas are only emitted for
// selections that were actually used in a publish attempt.
type CursorDelta struct {
	Channel models.Channel
	Source  rotationSource
	Cursor  int
}

// applyTo writes the delta onto the job record.
func (d CursorDelta) applyTo(job *models.AutopostJob) {
	switch d.Source {
	case sourceChannelList:
		if rot := job.Rotation(d.Channel); rot != nil {
			rot.Cursor = d.Cursor
		}
	case sourceJobFallback:
		if job.FallbackVideos != nil {
			job.FallbackVideos.Cursor = d.Cursor
		}
	case sourceSharedPool:
		job.SharedVideoCursor = d.Cursor
	}
}

// ApplyCursorDeltas persists a batch of rotation advances onto the job.
func ApplyCursorDeltas(job *models.AutopostJob, deltas []CursorDelta) {
	for _, d := range deltas {
		d.applyTo(job)
	}
}
