package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ternarybob/cadence/internal/interfaces"
	"github.com/ternarybob/cadence/internal/models"
)

// CredentialStorage is an in-memory CredentialStorage implementation.
type CredentialStorage struct {
	mu           sync.RWMutex
	credentials  map[string]*models.StoredCredential
	integrations map[string]*models.OAuthIntegration
}

// NewCredentialStorage creates an empty in-memory credential storage
func NewCredentialStorage() interfaces.CredentialStorage {
	return &CredentialStorage{
		credentials:  make(map[string]*models.StoredCredential),
		integrations: make(map[string]*models.OAuthIntegration),
	}
}

func (s *CredentialStorage) StoreCredential(ctx context.Context, cred *models.StoredCredential) error {
	if cred.TenantID == "" || cred.Channel == "" {
		return fmt.Errorf("tenant ID and channel are required")
	}
	if cred.ID == "" {
		cred.ID = models.StoredCredentialID(cred.TenantID, cred.Channel)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().Unix()
	if cred.CreatedAt == 0 {
		cred.CreatedAt = now
	}
	cred.UpdatedAt = now

	copied := *cred
	s.credentials[cred.ID] = &copied
	return nil
}

func (s *CredentialStorage) GetCredential(ctx context.Context, tenantID string, channel models.Channel) (*models.StoredCredential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cred, ok := s.credentials[models.StoredCredentialID(tenantID, channel)]
	if !ok {
		return nil, fmt.Errorf("credential not found: %s|%s", tenantID, channel)
	}
	copied := *cred
	return &copied, nil
}

func (s *CredentialStorage) ListTenantCredentials(ctx context.Context, tenantID string) ([]*models.StoredCredential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*models.StoredCredential
	for _, cred := range s.credentials {
		if cred.TenantID == tenantID {
			copied := *cred
			result = append(result, &copied)
		}
	}
	return result, nil
}

func (s *CredentialStorage) DeleteCredential(ctx context.Context, tenantID string, channel models.Channel) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.credentials, models.StoredCredentialID(tenantID, channel))
	return nil
}

func (s *CredentialStorage) StoreIntegration(ctx context.Context, integ *models.OAuthIntegration) error {
	if integ.TenantID == "" || integ.Channel == "" {
		return fmt.Errorf("tenant ID and channel are required")
	}
	if integ.ID == "" {
		integ.ID = models.StoredCredentialID(integ.TenantID, integ.Channel)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	integ.UpdatedAt = time.Now().Unix()
	copied := *integ
	s.integrations[integ.ID] = &copied
	return nil
}

func (s *CredentialStorage) ListTenantIntegrations(ctx context.Context, tenantID string) ([]*models.OAuthIntegration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*models.OAuthIntegration
	for _, integ := range s.integrations {
		if integ.TenantID == tenantID {
			copied := *integ
			result = append(result, &copied)
		}
	}
	return result, nil
}
