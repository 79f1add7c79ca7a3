package credentials

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"golang.org/x/oauth2"

	"github.com/ternarybob/cadence/internal/common"
	"github.com/ternarybob/cadence/internal/httpclient"
	"github.com/ternarybob/cadence/internal/interfaces"
	"github.com/ternarybob/cadence/internal/models"
)

// DefaultTenantID is the pseudo-tenant whose stored credentials act as
// platform defaults for allow-listed primary tenants.
const DefaultTenantID = "default"

// refreshTimeout bounds the token-refresh round-trip to the provider.
const refreshTimeout = 30 * time.Second

// Service resolves the effective credential set for a tenant by layering
// platform defaults, tenant-stored credentials, and freshly-refreshed OAuth
// tokens. Later layers override earlier ones field by field.
type Service struct {
	storage        interfaces.CredentialStorage
	cipher         *Cipher
	primaryTenants map[string]bool
	logger         arbor.ILogger
}

func NewService(storage interfaces.CredentialStorage, cfg *common.CredentialsConfig, logger arbor.ILogger) (*Service, error) {
	var cipher *Cipher
	if cfg.EncryptionKey != "" {
		var err error
		cipher, err = NewCipher(cfg.EncryptionKey)
		if err != nil {
			return nil, err
		}
	} else {
		logger.Warn().Msg("No encryption key configured, credentials will be stored in plaintext")
	}

	primary := make(map[string]bool, len(cfg.PrimaryTenants))
	for _, t := range cfg.PrimaryTenants {
		primary[t] = true
	}

	return &Service{
		storage:        storage,
		cipher:         cipher,
		primaryTenants: primary,
		logger:         logger,
	}, nil
}

// ResolveCredentials returns the merged, decrypted credential per channel.
// The returned values are never persisted.
func (s *Service) ResolveCredentials(ctx context.Context, tenantID string) (map[models.Channel]*models.ChannelCredential, error) {
	merged := make(map[models.Channel]*models.ChannelCredential)

	// Layer 1: platform defaults, only for allow-listed tenants.
	if s.primaryTenants[tenantID] {
		defaults, err := s.storage.ListTenantCredentials(ctx, DefaultTenantID)
		if err != nil {
			return nil, fmt.Errorf("failed to load platform default credentials: %w", err)
		}
		for _, stored := range defaults {
			cred, err := s.decrypt(stored)
			if err != nil {
				s.logger.Warn().
					Str("channel", string(stored.Channel)).
					Err(err).
					Msg("Skipping undecryptable platform default credential")
				continue
			}
			merged[stored.Channel] = cred
		}
	}

	// Layer 2: tenant-stored credentials override defaults field by field.
	stored, err := s.storage.ListTenantCredentials(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to load credentials for tenant %s: %w", tenantID, err)
	}
	for _, rec := range stored {
		cred, err := s.decrypt(rec)
		if err != nil {
			s.logger.Warn().
				Str("tenant_id", tenantID).
				Str("channel", string(rec.Channel)).
				Err(err).
				Msg("Skipping undecryptable stored credential")
			continue
		}
		merged[rec.Channel] = mergeCredential(merged[rec.Channel], cred)
	}

	// Layer 3: fresh OAuth tokens always win over stale stored copies.
	integrations, err := s.storage.ListTenantIntegrations(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to load OAuth integrations for tenant %s: %w", tenantID, err)
	}
	for _, integ := range integrations {
		token, err := s.refreshToken(ctx, integ)
		if err != nil {
			s.logger.Warn().
				Str("tenant_id", tenantID).
				Str("channel", string(integ.Channel)).
				Err(err).
				Msg("OAuth token refresh failed, keeping stored credential")
			continue
		}
		base := merged[integ.Channel]
		if base == nil {
			base = &models.ChannelCredential{Channel: integ.Channel}
			merged[integ.Channel] = base
		}
		base.AccessToken = token.AccessToken
		if token.RefreshToken != "" {
			base.RefreshToken = token.RefreshToken
		}
		if !token.Expiry.IsZero() {
			expiry := token.Expiry
			base.ExpiresAt = &expiry
		}
	}

	return merged, nil
}

// StoreEncrypted encrypts the secret fields of a credential record in place
// and persists it.
func (s *Service) StoreEncrypted(ctx context.Context, cred *models.StoredCredential) error {
	if s.cipher != nil && !cred.Encrypted {
		var err error
		if cred.AccessToken, err = s.cipher.Encrypt(cred.AccessToken); err != nil {
			return err
		}
		if cred.RefreshToken, err = s.cipher.Encrypt(cred.RefreshToken); err != nil {
			return err
		}
		if cred.APIKey, err = s.cipher.Encrypt(cred.APIKey); err != nil {
			return err
		}
		cred.Encrypted = true
	}
	return s.storage.StoreCredential(ctx, cred)
}

// decrypt converts a stored record into a working credential, decrypting the
// secret fields when the record is marked encrypted.
func (s *Service) decrypt(stored *models.StoredCredential) (*models.ChannelCredential, error) {
	cred := &models.ChannelCredential{
		Channel:      stored.Channel,
		AccessToken:  stored.AccessToken,
		RefreshToken: stored.RefreshToken,
		APIKey:       stored.APIKey,
		AccountID:    stored.AccountID,
	}
	if len(stored.Extra) > 0 {
		cred.Extra = make(map[string]string, len(stored.Extra))
		for k, v := range stored.Extra {
			cred.Extra[k] = v
		}
	}
	if !stored.Encrypted {
		return cred, nil
	}
	if s.cipher == nil {
		return nil, fmt.Errorf("credential is encrypted but no encryption key is configured")
	}
	var err error
	if cred.AccessToken, err = s.cipher.Decrypt(stored.AccessToken); err != nil {
		return nil, err
	}
	if cred.RefreshToken, err = s.cipher.Decrypt(stored.RefreshToken); err != nil {
		return nil, err
	}
	if cred.APIKey, err = s.cipher.Decrypt(stored.APIKey); err != nil {
		return nil, err
	}
	return cred, nil
}

// refreshToken exchanges the stored OAuth token for a fresh one and persists
// the rotated token. Only the re-encrypted token JSON is written back.
func (s *Service) refreshToken(ctx context.Context, integ *models.OAuthIntegration) (*oauth2.Token, error) {
	tokenJSON := integ.TokenJSON
	clientSecret := integ.ClientSecret
	if s.cipher != nil {
		var err error
		if tokenJSON, err = s.cipher.Decrypt(integ.TokenJSON); err != nil {
			return nil, fmt.Errorf("failed to decrypt token: %w", err)
		}
		if clientSecret, err = s.cipher.Decrypt(integ.ClientSecret); err != nil {
			return nil, fmt.Errorf("failed to decrypt client secret: %w", err)
		}
	}

	var stored oauth2.Token
	if err := json.Unmarshal([]byte(tokenJSON), &stored); err != nil {
		return nil, fmt.Errorf("stored token is not valid JSON: %w", err)
	}

	conf := &oauth2.Config{
		ClientID:     integ.ClientID,
		ClientSecret: clientSecret,
		Endpoint:     oauth2.Endpoint{TokenURL: integ.TokenURL},
	}
	// oauth2 picks its HTTP client up from the context, so the refresh
	// round-trip runs on a client with a real timeout.
	refreshCtx := context.WithValue(ctx, oauth2.HTTPClient, httpclient.NewDefaultHTTPClient(refreshTimeout))
	fresh, err := conf.TokenSource(refreshCtx, &stored).Token()
	if err != nil {
		return nil, err
	}

	if fresh.AccessToken != stored.AccessToken {
		if err := s.persistToken(ctx, integ, fresh); err != nil {
			s.logger.Warn().
				Str("tenant_id", integ.TenantID).
				Str("channel", string(integ.Channel)).
				Err(err).
				Msg("Failed to persist rotated OAuth token")
		}
	}
	return fresh, nil
}

func (s *Service) persistToken(ctx context.Context, integ *models.OAuthIntegration, token *oauth2.Token) error {
	raw, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("failed to marshal token: %w", err)
	}
	encoded := string(raw)
	if s.cipher != nil {
		if encoded, err = s.cipher.Encrypt(encoded); err != nil {
			return err
		}
	}
	updated := *integ
	updated.TokenJSON = encoded
	updated.UpdatedAt = time.Now().UnixMilli()
	return s.storage.StoreIntegration(ctx, &updated)
}

// mergeCredential overlays src onto base field by field, with non-empty src
// fields winning.
func mergeCredential(base, src *models.ChannelCredential) *models.ChannelCredential {
	if base == nil {
		return src
	}
	if src.AccessToken != "" {
		base.AccessToken = src.AccessToken
	}
	if src.RefreshToken != "" {
		base.RefreshToken = src.RefreshToken
	}
	if src.APIKey != "" {
		base.APIKey = src.APIKey
	}
	if src.AccountID != "" {
		base.AccountID = src.AccountID
	}
	if len(src.Extra) > 0 {
		if base.Extra == nil {
			base.Extra = make(map[string]string, len(src.Extra))
		}
		for k, v := range src.Extra {
			base.Extra[k] = v
		}
	}
	if src.ExpiresAt != nil {
		base.ExpiresAt = src.ExpiresAt
	}
	return base
}
