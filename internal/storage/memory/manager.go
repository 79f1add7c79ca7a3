package memory

import (
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/cadence/internal/interfaces"
)

// Manager implements the StorageManager interface in memory.
type Manager struct {
	jobs       interfaces.JobRepository
	history    interfaces.HistoryStore
	credential interfaces.CredentialStorage
}

// NewManager creates a new in-memory storage manager
func NewManager(logger arbor.ILogger) interfaces.StorageManager {
	logger.Info().Msg("In-memory storage manager initialized")
	return &Manager{
		jobs:       NewJobRepository(),
		history:    NewHistoryStore(),
		credential: NewCredentialStorage(),
	}
}

func (m *Manager) JobRepository() interfaces.JobRepository {
	return m.jobs
}

func (m *Manager) HistoryStore() interfaces.HistoryStore {
	return m.history
}

func (m *Manager) CredentialStorage() interfaces.CredentialStorage {
	return m.credential
}

func (m *Manager) Close() error {
	return nil
}
