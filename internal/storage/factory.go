package storage

import (
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/cadence/internal/common"
	"github.com/ternarybob/cadence/internal/interfaces"
	"github.com/ternarybob/cadence/internal/storage/badger"
	"github.com/ternarybob/cadence/internal/storage/memory"
)

// NewStorageManager creates a new storage manager based on config. The
// implementation is selected here, once, at wiring time.
func NewStorageManager(logger arbor.ILogger, config *common.Config) (interfaces.StorageManager, error) {
	switch config.Storage.Type {
	case "badger", "":
		return badger.NewManager(logger, &config.Storage.Badger)
	case "memory":
		return memory.NewManager(logger), nil
	default:
		return nil, fmt.Errorf("unsupported storage type: %s (supported: badger, memory)", config.Storage.Type)
	}
}
