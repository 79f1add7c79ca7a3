package models

// GeneratedContent is the raw result of one generation-capability call.
type GeneratedContent struct {
	Images         []string                 `json:"images"`
	CaptionsByKind map[CaptionKind]string   `json:"captions_by_kind"`
	HashtagsByKind map[CaptionKind][]string `json:"hashtags_by_kind"`
}

// ResolvedContent is the content resolver's output for one run: freshness-
// filtered images plus assembled captions and hashtags per caption kind.
type ResolvedContent struct {
	Images         []string                 `json:"images"`
	CaptionsByKind map[CaptionKind]string   `json:"captions_by_kind"`
	HashtagsByKind map[CaptionKind][]string `json:"hashtags_by_kind"`
	Generated      bool                     `json:"generated"` // false when the fallback pool supplied the image

	// RecencyImages are the URLs to push into the job's recency buffer:
	// generated images verbatim, or the bare pool URL for a fallback image
	// (without its cache-busting parameter).
	RecencyImages []string `json:"recency_images,omitempty"`
}

// Caption returns the assembled caption text (caption + trailing hashtags)
// for a channel.
func (r *ResolvedContent) Caption(c Channel) string {
	kind := c.CaptionKind()
	caption := r.CaptionsByKind[kind]
	tags := r.HashtagsByKind[kind]
	if len(tags) == 0 {
		return caption
	}
	out := caption
	for _, tag := range tags {
		if out != "" {
			out += " "
		}
		out += tag
	}
	return out
}

// PublishRequest is the normalized payload handed to a publisher capability.
type PublishRequest struct {
	TenantID   string            `json:"tenant_id"`
	Channel    Channel           `json:"channel"`
	Caption    string            `json:"caption"`
	ImageURLs  []string          `json:"image_urls,omitempty"`
	VideoURL   string            `json:"video_url,omitempty"`
	VideoTitle string            `json:"video_title,omitempty"`
	Extra      map[string]string `json:"extra,omitempty"`
}

// PublishResult carries the remote identifier returned by a channel.
type PublishResult struct {
	RemoteID string `json:"remote_id"`
}
