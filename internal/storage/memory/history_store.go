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

// HistoryStore is an in-memory HistoryStore implementation.
type HistoryStore struct {
	mu       sync.Mutex
	outcomes []*models.PostOutcome
	stats    map[string]*models.DailyStats
}

// NewHistoryStore creates an empty in-memory history store
func NewHistoryStore() interfaces.HistoryStore {
	return &HistoryStore{
		stats: make(map[string]*models.DailyStats),
	}
}

func (s *HistoryStore) SaveOutcomes(ctx context.Context, outcomes []*models.PostOutcome) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, outcome := range outcomes {
		if outcome.ID == "" {
			return fmt.Errorf("outcome ID is required")
		}
		if outcome.CreatedAt.IsZero() {
			outcome.CreatedAt = time.Now()
		}
		copied := *outcome
		s.outcomes = append(s.outcomes, &copied)
	}
	return nil
}

func (s *HistoryStore) IncrementDailyStats(ctx context.Context, tenantID string, day time.Time, channel models.Channel, status models.OutcomeStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := models.DailyStatsID(tenantID, day, channel)
	stats, ok := s.stats[id]
	if !ok {
		stats = &models.DailyStats{
			ID:       id,
			TenantID: tenantID,
			Date:     day.Format("2006-01-02"),
			Channel:  channel,
		}
		s.stats[id] = stats
	}

	stats.Attempted++
	switch status {
	case models.OutcomeStatusPosted:
		stats.Posted++
	case models.OutcomeStatusFailed:
		stats.Failed++
	case models.OutcomeStatusSkipped:
		stats.Skipped++
	}
	stats.UpdatedAt = time.Now()
	return nil
}

func (s *HistoryStore) ListOutcomes(ctx context.Context, tenantID string, limit int) ([]*models.PostOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var result []*models.PostOutcome
	for _, outcome := range s.outcomes {
		if outcome.TenantID == tenantID {
			copied := *outcome
			result = append(result, &copied)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (s *HistoryStore) GetDailyStats(ctx context.Context, tenantID string, day time.Time) ([]*models.DailyStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	date := day.Format("2006-01-02")
	var result []*models.DailyStats
	for _, stats := range s.stats {
		if stats.TenantID == tenantID && stats.Date == date {
			copied := *stats
			result = append(result, &copied)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Channel < result[j].Channel
	})
	return result, nil
}
