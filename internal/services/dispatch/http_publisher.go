package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"golang.org/x/time/rate"

	"github.com/ternarybob/cadence/internal/common"
	"github.com/ternarybob/cadence/internal/httpclient"
	"github.com/ternarybob/cadence/internal/models"
)

// bridgePayload is the JSON body sent to the publishing bridge.
type bridgePayload struct {
	TenantID   string            `json:"tenant_id"`
	Channel    string            `json:"channel"`
	Caption    string            `json:"caption"`
	ImageURLs  []string          `json:"image_urls,omitempty"`
	VideoURL   string            `json:"video_url,omitempty"`
	VideoTitle string            `json:"video_title,omitempty"`
	AccountID  string            `json:"account_id,omitempty"`
	Extra      map[string]string `json:"extra,omitempty"`
}

// bridgeResponse is the bridge's acknowledgement. PostID is the platform-side
// identifier of the created post.
type bridgeResponse struct {
	PostID string `json:"post_id"`
	Error  string `json:"error,omitempty"`
}

// HTTPPublisher posts content through an external publishing bridge over
// HTTP. One instance serves one channel so rate limiting stays per-channel.
type HTTPPublisher struct {
	channel  models.Channel
	endpoint string
	client   *http.Client
	limiter  *rate.Limiter
	logger   arbor.ILogger
}

// NewHTTPPublisher builds a bridge publisher for a channel. Endpoint
// overrides from config take precedence over the default /publish/<channel>
// path. minInterval spaces out successive publishes to the same channel.
func NewHTTPPublisher(channel models.Channel, cfg *common.PublishersConfig, minInterval time.Duration, logger arbor.ILogger) *HTTPPublisher {
	endpoint := strings.TrimSuffix(cfg.BridgeURL, "/") + "/publish/" + string(channel)
	if override, ok := cfg.Endpoints[string(channel)]; ok && override != "" {
		if strings.HasPrefix(override, "http://") || strings.HasPrefix(override, "https://") {
			endpoint = override
		} else {
			endpoint = strings.TrimSuffix(cfg.BridgeURL, "/") + "/" + strings.TrimPrefix(override, "/")
		}
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if minInterval > 0 {
		limiter = rate.NewLimiter(rate.Every(minInterval), 1)
	}

	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &HTTPPublisher{
		channel:  channel,
		endpoint: endpoint,
		client:   httpclient.NewDefaultHTTPClient(timeout),
		limiter:  limiter,
		logger:   logger,
	}
}

// Publish sends the request to the bridge and returns the platform post ID.
func (p *HTTPPublisher) Publish(ctx context.Context, req *models.PublishRequest, cred *models.ChannelCredential) (*models.PublishResult, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait for channel %q: %w", p.channel, err)
	}

	payload := bridgePayload{
		TenantID:   req.TenantID,
		Channel:    string(req.Channel),
		Caption:    req.Caption,
		ImageURLs:  req.ImageURLs,
		VideoURL:   req.VideoURL,
		VideoTitle: req.VideoTitle,
		Extra:      req.Extra,
	}
	if cred != nil {
		payload.AccountID = cred.AccountID
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal bridge payload: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build bridge request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if cred != nil {
		if cred.AccessToken != "" {
			httpReq.Header.Set("Authorization", "Bearer "+cred.AccessToken)
		} else if cred.APIKey != "" {
			httpReq.Header.Set("X-Api-Key", cred.APIKey)
		}
	}

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("bridge request for channel %q failed: %w", p.channel, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read bridge response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("bridge returned status %d for channel %q: %s", resp.StatusCode, p.channel, truncate(string(respBody), 200))
	}

	var ack bridgeResponse
	if err := json.Unmarshal(respBody, &ack); err != nil {
		return nil, fmt.Errorf("failed to decode bridge response: %w", err)
	}
	if ack.Error != "" {
		return nil, fmt.Errorf("bridge rejected publish for channel %q: %s", p.channel, ack.Error)
	}

	return &models.PublishResult{RemoteID: ack.PostID}, nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}

// RegisterBridgePublishers wires an HTTP bridge publisher for every known
// channel into the registry.
func RegisterBridgePublishers(registry *Registry, cfg *common.PublishersConfig, logger arbor.ILogger) error {
	minInterval, err := parseRateLimit(cfg.RateLimit)
	if err != nil {
		return err
	}
	for _, channel := range models.AllChannels {
		registry.Register(channel, NewHTTPPublisher(channel, cfg, minInterval, logger))
	}
	return nil
}

func parseRateLimit(s string) (time.Duration, error) {
	if strings.TrimSpace(s) == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid publisher rate limit %q: %w", s, err)
	}
	return d, nil
}
