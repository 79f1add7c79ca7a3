package models

import "time"

// ChannelCredential is the merged, decrypted credential set handed to a
// publisher for one channel. It is never written back to storage.
type ChannelCredential struct {
	Channel      Channel           `json:"channel"`
	AccessToken  string            `json:"access_token,omitempty"`
	RefreshToken string            `json:"refresh_token,omitempty"`
	APIKey       string            `json:"api_key,omitempty"`
	AccountID    string            `json:"account_id,omitempty"`
	Extra        map[string]string `json:"extra,omitempty"`
	ExpiresAt    *time.Time        `json:"expires_at,omitempty"`
}

// StoredCredential is the persisted per-tenant per-channel credential record.
// Secret fields are AES-GCM encrypted at rest when Encrypted is true.
type StoredCredential struct {
	ID           string            `json:"id" badgerhold:"key"` // tenant|channel
	TenantID     string            `json:"tenant_id" badgerhold:"index"`
	Channel      Channel           `json:"channel"`
	AccessToken  string            `json:"access_token,omitempty"`
	RefreshToken string            `json:"refresh_token,omitempty"`
	APIKey       string            `json:"api_key,omitempty"`
	AccountID    string            `json:"account_id,omitempty"`
	Extra        map[string]string `json:"extra,omitempty"`
	Encrypted    bool              `json:"encrypted"`
	CreatedAt    int64             `json:"created_at"`
	UpdatedAt    int64             `json:"updated_at"`
}

// StoredCredentialID builds the credential record key.
func StoredCredentialID(tenantID string, channel Channel) string {
	return tenantID + "|" + string(channel)
}

// OAuthIntegration is a perpetually-refreshed OAuth token for one channel,
// stored with the token JSON encrypted. Freshly-resolved tokens always
// override any stale stored credential copy during the merge.
type OAuthIntegration struct {
	ID           string  `json:"id" badgerhold:"key"` // tenant|channel
	TenantID     string  `json:"tenant_id" badgerhold:"index"`
	Channel      Channel `json:"channel"`
	ClientID     string  `json:"client_id"`
	ClientSecret string  `json:"client_secret"`
	TokenURL     string  `json:"token_url"`
	TokenJSON    string  `json:"token_json"` // AES-GCM encrypted oauth2.Token
	UpdatedAt    int64   `json:"updated_at"`
}
