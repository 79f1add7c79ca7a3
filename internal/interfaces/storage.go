package interfaces

import (
	"context"
	"time"

	"github.com/ternarybob/cadence/internal/models"
)

// JobRepository is the persisted per-tenant autopost job store. Two
// implementations exist (Badger-backed and in-memory); the choice is made
// once at wiring time, never inside business logic.
type JobRepository interface {
	// Get returns (nil, nil) when no job exists for the tenant.
	Get(ctx context.Context, tenantID string) (*models.AutopostJob, error)
	Upsert(ctx context.Context, job *models.AutopostJob) error
	Patch(ctx context.Context, tenantID string, patch *models.JobPatch) (*models.AutopostJob, error)
	Delete(ctx context.Context, tenantID string) error
	ListActive(ctx context.Context) ([]*models.AutopostJob, error)
}

// HistoryStore persists per-attempt outcome rows and daily counter buckets.
type HistoryStore interface {
	SaveOutcomes(ctx context.Context, outcomes []*models.PostOutcome) error
	IncrementDailyStats(ctx context.Context, tenantID string, day time.Time, channel models.Channel, status models.OutcomeStatus) error
	ListOutcomes(ctx context.Context, tenantID string, limit int) ([]*models.PostOutcome, error)
	GetDailyStats(ctx context.Context, tenantID string, day time.Time) ([]*models.DailyStats, error)
}

// CredentialStorage persists per-tenant channel credentials and OAuth
// integrations. Secret fields are encrypted at rest.
type CredentialStorage interface {
	StoreCredential(ctx context.Context, cred *models.StoredCredential) error
	GetCredential(ctx context.Context, tenantID string, channel models.Channel) (*models.StoredCredential, error)
	ListTenantCredentials(ctx context.Context, tenantID string) ([]*models.StoredCredential, error)
	DeleteCredential(ctx context.Context, tenantID string, channel models.Channel) error

	StoreIntegration(ctx context.Context, integ *models.OAuthIntegration) error
	ListTenantIntegrations(ctx context.Context, tenantID string) ([]*models.OAuthIntegration, error)
}

// StorageManager aggregates the storage interfaces behind one lifecycle.
type StorageManager interface {
	JobRepository() JobRepository
	HistoryStore() HistoryStore
	CredentialStorage() CredentialStorage
	Close() error
}
