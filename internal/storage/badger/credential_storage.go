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

// CredentialStorage implements the CredentialStorage interface for Badger
type CredentialStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewCredentialStorage creates a new CredentialStorage instance
func NewCredentialStorage(db *BadgerDB, logger arbor.ILogger) interfaces.CredentialStorage {
	return &CredentialStorage{
		db:     db,
		logger: logger,
	}
}

func (s *CredentialStorage) StoreCredential(ctx context.Context, cred *models.StoredCredential) error {
	if cred.TenantID == "" || cred.Channel == "" {
		return fmt.Errorf("tenant ID and channel are required")
	}
	if cred.ID == "" {
		cred.ID = models.StoredCredentialID(cred.TenantID, cred.Channel)
	}

	now := time.Now().Unix()
	if cred.CreatedAt == 0 {
		cred.CreatedAt = now
	}
	cred.UpdatedAt = now

	if err := s.db.Store().Upsert(cred.ID, cred); err != nil {
		return fmt.Errorf("failed to store credential: %w", err)
	}
	return nil
}

func (s *CredentialStorage) GetCredential(ctx context.Context, tenantID string, channel models.Channel) (*models.StoredCredential, error) {
	var cred models.StoredCredential
	id := models.StoredCredentialID(tenantID, channel)
	if err := s.db.Store().Get(id, &cred); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, fmt.Errorf("credential not found: %s", id)
		}
		return nil, fmt.Errorf("failed to get credential: %w", err)
	}
	return &cred, nil
}

func (s *CredentialStorage) ListTenantCredentials(ctx context.Context, tenantID string) ([]*models.StoredCredential, error) {
	var creds []models.StoredCredential
	if err := s.db.Store().Find(&creds, badgerhold.Where("TenantID").Eq(tenantID).Index("TenantID")); err != nil {
		return nil, fmt.Errorf("failed to list credentials: %w", err)
	}

	result := make([]*models.StoredCredential, len(creds))
	for i := range creds {
		result[i] = &creds[i]
	}
	return result, nil
}

func (s *CredentialStorage) DeleteCredential(ctx context.Context, tenantID string, channel models.Channel) error {
	id := models.StoredCredentialID(tenantID, channel)
	if err := s.db.Store().Delete(id, &models.StoredCredential{}); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil
		}
		return fmt.Errorf("failed to delete credential: %w", err)
	}
	return nil
}

func (s *CredentialStorage) StoreIntegration(ctx context.Context, integ *models.OAuthIntegration) error {
	if integ.TenantID == "" || integ.Channel == "" {
		return fmt.Errorf("tenant ID and channel are required")
	}
	if integ.ID == "" {
		integ.ID = models.StoredCredentialID(integ.TenantID, integ.Channel)
	}
	integ.UpdatedAt = time.Now().Unix()

	if err := s.db.Store().Upsert(integ.ID, integ); err != nil {
		return fmt.Errorf("failed to store integration: %w", err)
	}
	return nil
}

func (s *CredentialStorage) ListTenantIntegrations(ctx context.Context, tenantID string) ([]*models.OAuthIntegration, error) {
	var integs []models.OAuthIntegration
	if err := s.db.Store().Find(&integs, badgerhold.Where("TenantID").Eq(tenantID).Index("TenantID")); err != nil {
		return nil, fmt.Errorf("failed to list integrations: %w", err)
	}

	result := make([]*models.OAuthIntegration, len(integs))
	for i := range integs {
		result[i] = &integs[i]
	}
	return result, nil
}
