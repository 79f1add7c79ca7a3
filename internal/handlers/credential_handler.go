package handlers

import (
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/cadence/internal/common"
	"github.com/ternarybob/cadence/internal/interfaces"
	"github.com/ternarybob/cadence/internal/models"
	"github.com/ternarybob/cadence/internal/services/credentials"
)

// CredentialHandler manages per-tenant channel credentials. Secret fields
// are encrypted before storage and never returned in list responses.
type CredentialHandler struct {
	service  *credentials.Service
	storage  interfaces.CredentialStorage
	validate *validator.Validate
	logger   arbor.ILogger
}

func NewCredentialHandler(service *credentials.Service, storage interfaces.CredentialStorage) *CredentialHandler {
	return &CredentialHandler{
		service:  service,
		storage:  storage,
		validate: validator.New(),
		logger:   common.GetLogger(),
	}
}

type credentialRequest struct {
	TenantID     string            `json:"tenant_id" validate:"required"`
	Channel      models.Channel    `json:"channel" validate:"required"`
	AccessToken  string            `json:"access_token,omitempty"`
	RefreshToken string            `json:"refresh_token,omitempty"`
	APIKey       string            `json:"api_key,omitempty"`
	AccountID    string            `json:"account_id,omitempty"`
	Extra        map[string]string `json:"extra,omitempty"`
}

// StoreHandler upserts one tenant/channel credential record.
func (h *CredentialHandler) StoreHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	var req credentialRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}
	if err := models.ValidateChannel(req.Channel); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	now := time.Now().UnixMilli()
	cred := &models.StoredCredential{
		ID:           models.StoredCredentialID(req.TenantID, req.Channel),
		TenantID:     req.TenantID,
		Channel:      req.Channel,
		AccessToken:  req.AccessToken,
		RefreshToken: req.RefreshToken,
		APIKey:       req.APIKey,
		AccountID:    req.AccountID,
		Extra:        req.Extra,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := h.service.StoreEncrypted(r.Context(), cred); err != nil {
		WriteError(w, http.StatusInternalServerError, "Failed to store credential: "+err.Error())
		return
	}

	WriteSuccess(w, "Credential stored for "+string(req.Channel))
}

// ListHandler lists a tenant's credential records with secrets redacted.
func (h *CredentialHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}
	tenantID := r.URL.Query().Get("tenant_id")
	if tenantID == "" {
		WriteError(w, http.StatusBadRequest, "tenant_id query parameter is required")
		return
	}

	stored, err := h.storage.ListTenantCredentials(r.Context(), tenantID)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "Failed to list credentials: "+err.Error())
		return
	}

	type redacted struct {
		Channel   models.Channel `json:"channel"`
		AccountID string         `json:"account_id,omitempty"`
		HasToken  bool           `json:"has_token"`
		HasAPIKey bool           `json:"has_api_key"`
		UpdatedAt int64          `json:"updated_at"`
	}
	out := make([]redacted, 0, len(stored))
	for _, cred := range stored {
		out = append(out, redacted{
			Channel:   cred.Channel,
			AccountID: cred.AccountID,
			HasToken:  cred.AccessToken != "",
			HasAPIKey: cred.APIKey != "",
			UpdatedAt: cred.UpdatedAt,
		})
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"tenant_id":   tenantID,
		"credentials": out,
	})
}

// DeleteHandler removes one tenant/channel credential record.
func (h *CredentialHandler) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "DELETE") {
		return
	}
	tenantID := r.URL.Query().Get("tenant_id")
	channel := models.Channel(r.URL.Query().Get("channel"))
	if tenantID == "" || channel == "" {
		WriteError(w, http.StatusBadRequest, "tenant_id and channel query parameters are required")
		return
	}
	if err := models.ValidateChannel(channel); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.storage.DeleteCredential(r.Context(), tenantID, channel); err != nil {
		WriteError(w, http.StatusInternalServerError, "Failed to delete credential: "+err.Error())
		return
	}
	WriteSuccess(w, "Credential deleted for "+string(channel))
}
