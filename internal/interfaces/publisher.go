package interfaces

import (
	"context"

	"github.com/ternarybob/cadence/internal/models"
)

// Publisher is the consumed per-channel publishing capability. Given a
// normalized request and merged credentials it returns a remote identifier
// or fails with a channel-specific error. Wire-protocol encoding lives
// behind this interface and is out of scope for the engine.
type Publisher interface {
	Publish(ctx context.Context, req *models.PublishRequest, cred *models.ChannelCredential) (*models.PublishResult, error)
}

// CredentialResolver produces the merged, decrypted per-channel credential
// map for a tenant.
type CredentialResolver interface {
	ResolveCredentials(ctx context.Context, tenantID string) (map[models.Channel]*models.ChannelCredential, error)
}
