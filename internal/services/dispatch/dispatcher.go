package dispatch

import (
	"context"
	"fmt"
	"strings"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/cadence/internal/interfaces"
	"github.com/ternarybob/cadence/internal/models"
)

// Request carries everything needed to publish one piece of content across a
// set of channels for a single tenant run.
type Request struct {
	Job         *models.AutopostJob
	Channels    []models.Channel
	Captions    map[models.Channel]string
	Images      []string
	VideoTitle  string
	Credentials map[models.Channel]*models.ChannelCredential
}

// ChannelResult is the outcome of dispatching to one channel. Err is set for
// failures; Status mirrors it so callers can record outcomes directly.
type ChannelResult struct {
	Channel  models.Channel
	Status   models.OutcomeStatus
	RemoteID string
	Caption  string
	VideoURL string
	Err      error
}

// Dispatcher fans a run out across channels. Each channel is attempted
// independently: a failure (or panic) in one publisher never blocks the rest.
type Dispatcher struct {
	registry        *Registry
	sharedVideoPool []string
	logger          arbor.ILogger
}

func NewDispatcher(registry *Registry, sharedVideoPool []string, logger arbor.ILogger) *Dispatcher {
	return &Dispatcher{
		registry:        registry,
		sharedVideoPool: sharedVideoPool,
		logger:          logger,
	}
}

// Dispatch publishes to every requested channel in order. Video rotation
// cursors are advanced on the in-memory job for each selection that reaches a
// publish attempt; the caller persists the job afterwards.
func (d *Dispatcher) Dispatch(ctx context.Context, req *Request) []ChannelResult {
	results := make([]ChannelResult, 0, len(req.Channels))
	for _, channel := range req.Channels {
		result := d.dispatchChannel(ctx, req, channel)
		if result.Err != nil {
			d.logger.Warn().
				Str("tenant_id", req.Job.TenantID).
				Str("channel", string(result.Channel)).
				Err(result.Err).
				Msg("Channel publish failed")
		} else {
			d.logger.Info().
				Str("tenant_id", req.Job.TenantID).
				Str("channel", string(result.Channel)).
				Str("remote_id", result.RemoteID).
				Msg("Channel publish succeeded")
		}
		results = append(results, result)
	}
	return results
}

func (d *Dispatcher) dispatchChannel(ctx context.Context, req *Request, channel models.Channel) ChannelResult {
	result := ChannelResult{Channel: channel, Status: models.OutcomeStatusFailed}

	if err := models.ValidateChannel(channel); err != nil {
		result.Err = err
		return result
	}
	publisher, err := d.registry.Get(channel)
	if err != nil {
		result.Err = err
		return result
	}
	cred := req.Credentials[channel]
	if cred == nil {
		result.Err = fmt.Errorf("no credentials resolved for channel %q", channel)
		return result
	}

	caption := strings.TrimSpace(req.Captions[channel])
	if caption == "" {
		result.Err = fmt.Errorf("empty caption for channel %q", channel)
		return result
	}
	result.Caption = caption

	sel := selectVideo(req.Job, channel, d.sharedVideoPool)
	if channel.RequiresVideo() && sel.URL == "" {
		result.Err = fmt.Errorf("channel %q requires video content but none is configured", channel)
		return result
	}
	videoURL := ""
	if sel.URL != "" && (channel.RequiresVideo() || channel.AcceptsFallbackVideo()) {
		videoURL = sel.URL
		d.markUsed(req.Job, channel, sel)
	}
	result.VideoURL = videoURL

	remoteID, pubErr := d.publish(ctx, publisher, req, channel, caption, videoURL, cred)
	if pubErr != nil && channel == models.ChannelTikTok {
		// One retry with the next asset in the rotation, if a distinct one
		// exists. The cursor already advanced past the failed asset.
		retry := selectVideo(req.Job, channel, d.sharedVideoPool)
		if retry.URL != "" && retry.URL != videoURL {
			d.logger.Info().
				Str("tenant_id", req.Job.TenantID).
				Str("channel", string(channel)).
				Str("video_url", retry.URL).
				Msg("Retrying with alternate video asset")
			d.markUsed(req.Job, channel, retry)
			result.VideoURL = retry.URL
			remoteID, pubErr = d.publish(ctx, publisher, req, channel, caption, retry.URL, cred)
		}
	}
	if pubErr != nil {
		result.Err = pubErr
		return result
	}

	result.Status = models.OutcomeStatusPosted
	result.RemoteID = remoteID
	return result
}

// markUsed advances the cursor backing a selection once it is committed to a
// publish attempt. Single-URL selections carry no cursor.
func (d *Dispatcher) markUsed(job *models.AutopostJob, channel models.Channel, sel videoSelection) {
	CursorDelta{Channel: channel, Source: sel.Source, Cursor: sel.NextCursor}.applyTo(job)
}

// publish invokes the channel publisher with panic isolation.
func (d *Dispatcher) publish(ctx context.Context, publisher interfaces.Publisher, req *Request, channel models.Channel, caption, videoURL string, cred *models.ChannelCredential) (remoteID string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("publisher for channel %q panicked: %v", channel, r)
		}
	}()

	// A post carries either a video or images, never both. Fallback-video
	// channels drop the image set once an asset is selected.
	images := req.Images
	if videoURL != "" {
		images = nil
	}
	res, err := publisher.Publish(ctx, &models.PublishRequest{
		TenantID:   req.Job.TenantID,
		Channel:    channel,
		Caption:    caption,
		ImageURLs:  images,
		VideoURL:   videoURL,
		VideoTitle: req.VideoTitle,
	}, cred)
	if err != nil {
		return "", err
	}
	if res == nil {
		return "", nil
	}
	return res.RemoteID, nil
}
