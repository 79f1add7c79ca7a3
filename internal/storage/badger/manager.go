package badger

import (
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/cadence/internal/common"
	"github.com/ternarybob/cadence/internal/interfaces"
)

// Manager implements the StorageManager interface for Badger
type Manager struct {
	db         *BadgerDB
	jobs       interfaces.JobRepository
	history    interfaces.HistoryStore
	credential interfaces.CredentialStorage
	logger     arbor.ILogger
}

// NewManager creates a new Badger storage manager
func NewManager(logger arbor.ILogger, config *common.BadgerConfig) (interfaces.StorageManager, error) {
	db, err := NewBadgerDB(logger, config)
	if err != nil {
		return nil, err
	}

	manager := &Manager{
		db:         db,
		jobs:       NewAutopostStorage(db, logger),
		history:    NewHistoryStorage(db, logger),
		credential: NewCredentialStorage(db, logger),
		logger:     logger,
	}

	logger.Info().Msg("Badger storage manager initialized")

	return manager, nil
}

// JobRepository returns the autopost job repository
func (m *Manager) JobRepository() interfaces.JobRepository {
	return m.jobs
}

// HistoryStore returns the history store
func (m *Manager) HistoryStore() interfaces.HistoryStore {
	return m.history
}

// CredentialStorage returns the credential storage
func (m *Manager) CredentialStorage() interfaces.CredentialStorage {
	return m.credential
}

// Close closes the underlying database
func (m *Manager) Close() error {
	return m.db.Close()
}
