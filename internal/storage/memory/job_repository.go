package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/ternarybob/cadence/internal/interfaces"
	"github.com/ternarybob/cadence/internal/models"
)

// JobRepository is an in-memory JobRepository implementation used in tests
// and lightweight deployments. Selected once at wiring time.
type JobRepository struct {
	mu   sync.RWMutex
	jobs map[string]*models.AutopostJob
}

// NewJobRepository creates an empty in-memory repository
func NewJobRepository() interfaces.JobRepository {
	return &JobRepository{
		jobs: make(map[string]*models.AutopostJob),
	}
}

func (r *JobRepository) Get(ctx context.Context, tenantID string) (*models.AutopostJob, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	job, ok := r.jobs[tenantID]
	if !ok {
		return nil, nil
	}
	copied := *job
	return &copied, nil
}

func (r *JobRepository) Upsert(ctx context.Context, job *models.AutopostJob) error {
	if job.TenantID == "" {
		return fmt.Errorf("tenant ID is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	if job.CreatedAt.IsZero() {
		job.CreatedAt = now
	}
	job.UpdatedAt = now

	copied := *job
	r.jobs[job.TenantID] = &copied
	return nil
}

func (r *JobRepository) Patch(ctx context.Context, tenantID string, patch *models.JobPatch) (*models.AutopostJob, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	job, ok := r.jobs[tenantID]
	if !ok {
		job = &models.AutopostJob{
			TenantID:  tenantID,
			Active:    true,
			CreatedAt: time.Now(),
		}
		r.jobs[tenantID] = job
	}

	patch.Apply(job)
	copied := *job
	return &copied, nil
}

func (r *JobRepository) Delete(ctx context.Context, tenantID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.jobs, tenantID)
	return nil
}

func (r *JobRepository) ListActive(ctx context.Context) ([]*models.AutopostJob, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*models.AutopostJob, 0, len(r.jobs))
	for _, job := range r.jobs {
		if job.Active {
			copied := *job
			result = append(result, &copied)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].TenantID < result[j].TenantID
	})
	return result, nil
}
