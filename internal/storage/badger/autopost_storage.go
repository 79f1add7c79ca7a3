package badger

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/cadence/internal/interfaces"
	"github.com/ternarybob/cadence/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

// AutopostStorage implements the JobRepository interface for Badger
type AutopostStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewAutopostStorage creates a new AutopostStorage instance
func NewAutopostStorage(db *BadgerDB, logger arbor.ILogger) interfaces.JobRepository {
	return &AutopostStorage{
		db:     db,
		logger: logger,
	}
}

func (s *AutopostStorage) Get(ctx context.Context, tenantID string) (*models.AutopostJob, error) {
	var job models.AutopostJob
	if err := s.db.Store().Get(tenantID, &job); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get autopost job: %w", err)
	}
	return &job, nil
}

func (s *AutopostStorage) Upsert(ctx context.Context, job *models.AutopostJob) error {
	if job.TenantID == "" {
		return fmt.Errorf("tenant ID is required")
	}

	now := time.Now()
	if job.CreatedAt.IsZero() {
		job.CreatedAt = now
	}
	job.UpdatedAt = now

	if err := s.db.Store().Upsert(job.TenantID, job); err != nil {
		return fmt.Errorf("failed to save autopost job: %w", err)
	}
	return nil
}

// Patch applies a merge-style partial update and returns the stored record.
// Missing records are created so a configure call doubles as an upsert.
func (s *AutopostStorage) Patch(ctx context.Context, tenantID string, patch *models.JobPatch) (*models.AutopostJob, error) {
	job, err := s.Get(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if job == nil {
		job = &models.AutopostJob{
			TenantID: tenantID,
			Active:   true,
		}
	}

	patch.Apply(job)

	if err := s.Upsert(ctx, job); err != nil {
		return nil, err
	}
	return job, nil
}

func (s *AutopostStorage) Delete(ctx context.Context, tenantID string) error {
	if err := s.db.Store().Delete(tenantID, &models.AutopostJob{}); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil
		}
		return fmt.Errorf("failed to delete autopost job: %w", err)
	}
	return nil
}

func (s *AutopostStorage) ListActive(ctx context.Context) ([]*models.AutopostJob, error) {
	var jobs []models.AutopostJob
	if err := s.db.Store().Find(&jobs, badgerhold.Where("Active").Eq(true).SortBy("TenantID")); err != nil {
		return nil, fmt.Errorf("failed to list active jobs: %w", err)
	}

	result := make([]*models.AutopostJob, len(jobs))
	for i := range jobs {
		result[i] = &jobs[i]
	}
	return result, nil
}
