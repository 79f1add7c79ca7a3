package models

import "time"

// OutcomeStatus is the terminal state of one channel attempt within a run.
type OutcomeStatus string

const (
	OutcomeStatusPosted  OutcomeStatus = "posted"
	OutcomeStatusFailed  OutcomeStatus = "failed"
	OutcomeStatusSkipped OutcomeStatus = "skipped"
)

// SubJobKind names which sub-job produced an outcome.
type SubJobKind string

const (
	SubJobStandard    SubJobKind = "standard"
	SubJobReels       SubJobKind = "reels"
	SubJobStory       SubJobKind = "story"
	SubJobTopicTrends SubJobKind = "topic_trends"
)

// PostOutcome is one append-only outcome row: a single channel attempt
// (success or failure) within one run.
type PostOutcome struct {
	ID        string        `json:"id" badgerhold:"key"`
	TenantID  string        `json:"tenant_id" badgerhold:"index"`
	RunID     string        `json:"run_id"`
	SubJob    SubJobKind    `json:"sub_job"`
	Channel   Channel       `json:"channel"`
	Status    OutcomeStatus `json:"status"`
	Caption   string        `json:"caption,omitempty"`
	ImageURLs []string      `json:"image_urls,omitempty"`
	VideoURL  string        `json:"video_url,omitempty"`
	RemoteID  string        `json:"remote_id,omitempty"`
	Error     string        `json:"error,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
}

// DailyStats is the per-tenant-per-day-per-channel counter bucket,
// keyed "tenant|YYYY-MM-DD|channel" and updated read-modify-write inside
// a storage transaction.
type DailyStats struct {
	ID        string    `json:"id" badgerhold:"key"`
	TenantID  string    `json:"tenant_id" badgerhold:"index"`
	Date      string    `json:"date"` // YYYY-MM-DD
	Channel   Channel   `json:"channel"`
	Attempted int       `json:"attempted"`
	Posted    int       `json:"posted"`
	Failed    int       `json:"failed"`
	Skipped   int       `json:"skipped"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DailyStatsID builds the counter bucket key.
func DailyStatsID(tenantID string, day time.Time, channel Channel) string {
	return tenantID + "|" + day.Format("2006-01-02") + "|" + string(channel)
}
