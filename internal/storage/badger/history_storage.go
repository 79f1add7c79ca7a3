package badger

import (
	"context"
	"fmt"
	"time"

	badgerdb "github.com/dgraph-io/badger/v4"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/cadence/internal/interfaces"
	"github.com/ternarybob/cadence/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

// HistoryStorage implements the HistoryStore interface for Badger
type HistoryStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewHistoryStorage creates a new HistoryStorage instance
func NewHistoryStorage(db *BadgerDB, logger arbor.ILogger) interfaces.HistoryStore {
	return &HistoryStorage{
		db:     db,
		logger: logger,
	}
}

// SaveOutcomes writes a batch of outcome rows inside one Badger transaction.
func (s *HistoryStorage) SaveOutcomes(ctx context.Context, outcomes []*models.PostOutcome) error {
	if len(outcomes) == 0 {
		return nil
	}

	err := s.db.Store().Badger().Update(func(txn *badgerdb.Txn) error {
		for _, outcome := range outcomes {
			if outcome.ID == "" {
				return fmt.Errorf("outcome ID is required")
			}
			if outcome.CreatedAt.IsZero() {
				outcome.CreatedAt = time.Now()
			}
			if err := s.db.Store().TxUpsert(txn, outcome.ID, outcome); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save outcomes: %w", err)
	}
	return nil
}

// IncrementDailyStats bumps the per-tenant-per-day-per-channel counter bucket
// with a transactional read-modify-write.
func (s *HistoryStorage) IncrementDailyStats(ctx context.Context, tenantID string, day time.Time, channel models.Channel, status models.OutcomeStatus) error {
	id := models.DailyStatsID(tenantID, day, channel)

	err := s.db.Store().Badger().Update(func(txn *badgerdb.Txn) error {
		var stats models.DailyStats
		if err := s.db.Store().TxGet(txn, id, &stats); err != nil {
			if err != badgerhold.ErrNotFound {
				return err
			}
			stats = models.DailyStats{
				ID:       id,
				TenantID: tenantID,
				Date:     day.Format("2006-01-02"),
				Channel:  channel,
			}
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

		return s.db.Store().TxUpsert(txn, id, &stats)
	})
	if err != nil {
		return fmt.Errorf("failed to increment daily stats: %w", err)
	}
	return nil
}

func (s *HistoryStorage) ListOutcomes(ctx context.Context, tenantID string, limit int) ([]*models.PostOutcome, error) {
	query := badgerhold.Where("TenantID").Eq(tenantID).Index("TenantID").SortBy("CreatedAt").Reverse()
	if limit > 0 {
		query = query.Limit(limit)
	}

	var outcomes []models.PostOutcome
	if err := s.db.Store().Find(&outcomes, query); err != nil {
		return nil, fmt.Errorf("failed to list outcomes: %w", err)
	}

	result := make([]*models.PostOutcome, len(outcomes))
	for i := range outcomes {
		result[i] = &outcomes[i]
	}
	return result, nil
}

func (s *HistoryStorage) GetDailyStats(ctx context.Context, tenantID string, day time.Time) ([]*models.DailyStats, error) {
	date := day.Format("2006-01-02")
	var stats []models.DailyStats
	if err := s.db.Store().Find(&stats, badgerhold.Where("TenantID").Eq(tenantID).Index("TenantID").And("Date").Eq(date)); err != nil {
		return nil, fmt.Errorf("failed to get daily stats: %w", err)
	}

	result := make([]*models.DailyStats, len(stats))
	for i := range stats {
		result[i] = &stats[i]
	}
	return result, nil
}
