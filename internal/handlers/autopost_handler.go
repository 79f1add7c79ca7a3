package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/cadence/internal/common"
	"github.com/ternarybob/cadence/internal/interfaces"
	"github.com/ternarybob/cadence/internal/models"
	"github.com/ternarybob/cadence/internal/services/history"
)

// AutopostHandler exposes the start/configure, trigger, status, and history
// endpoints for autopost jobs.
type AutopostHandler struct {
	runner   interfaces.AutopostRunner
	jobs     interfaces.JobRepository
	recorder *history.Recorder
	validate *validator.Validate
	logger   arbor.ILogger
}

func NewAutopostHandler(runner interfaces.AutopostRunner, jobs interfaces.JobRepository, recorder *history.Recorder) *AutopostHandler {
	return &AutopostHandler{
		runner:   runner,
		jobs:     jobs,
		recorder: recorder,
		validate: validator.New(),
		logger:   common.GetLogger(),
	}
}

// startRequest is the start/configure payload. Omitted fields leave the
// stored job untouched.
type startRequest struct {
	TenantID         string                                   `json:"tenant_id" validate:"required"`
	Platforms        []models.Channel                         `json:"platforms" validate:"omitempty,min=1"`
	Prompt           *string                                  `json:"prompt,omitempty"`
	BusinessType     *string                                  `json:"business_type,omitempty"`
	IntervalHours    *int                                     `json:"interval_hours,omitempty" validate:"omitempty,min=1,max=720"`
	VideoRotations   map[models.Channel]*models.VideoRotation `json:"video_rotations,omitempty"`
	FallbackVideos   *models.VideoRotation                    `json:"fallback_videos,omitempty"`
	Reels            *models.SubJobSchedule                   `json:"reels,omitempty"`
	Story            *models.SubJobSchedule                   `json:"story,omitempty"`
	TopicTrends      *models.SubJobSchedule                   `json:"topic_trends,omitempty"`
	StoryPrompt      *string                                  `json:"story_prompt,omitempty"`
	TrendTopics      []string                                 `json:"trend_topics,omitempty"`
	FallbackCaption  *string                                  `json:"fallback_caption,omitempty"`
	FallbackHashtags *string                                  `json:"fallback_hashtags,omitempty"`
	RequireAIImages  *bool                                    `json:"require_ai_images,omitempty"`
}

func (req *startRequest) toPatch() *models.JobPatch {
	active := true
	return &models.JobPatch{
		Active:           &active,
		Platforms:        req.Platforms,
		Prompt:           req.Prompt,
		BusinessType:     req.BusinessType,
		IntervalHours:    req.IntervalHours,
		VideoRotations:   req.VideoRotations,
		FallbackVideos:   req.FallbackVideos,
		Reels:            req.Reels,
		Story:            req.Story,
		TopicTrends:      req.TopicTrends,
		StoryPrompt:      req.StoryPrompt,
		TrendTopics:      req.TrendTopics,
		FallbackCaption:  req.FallbackCaption,
		FallbackHashtags: req.FallbackHashtags,
		RequireAIImages:  req.RequireAIImages,
	}
}

// StartHandler upserts a tenant's job configuration and triggers an
// immediate run in the background.
func (h *AutopostHandler) StartHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	var req startRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}
	for _, ch := range req.Platforms {
		if err := models.ValidateChannel(ch); err != nil {
			WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	patch := req.toPatch()
	go func() {
		if _, err := h.runner.Start(context.Background(), req.TenantID, patch); err != nil {
			h.logger.Error().
				Str("tenant_id", req.TenantID).
				Err(err).
				Msg("Autopost start failed")
		}
	}()

	WriteStarted(w, "Autopost job configured, initial run started")
}

// TriggerHandler force-runs a tenant's standard job regardless of schedule.
func (h *AutopostHandler) TriggerHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}
	tenantID := r.URL.Query().Get("tenant_id")
	if tenantID == "" {
		WriteError(w, http.StatusBadRequest, "tenant_id query parameter is required")
		return
	}

	go func() {
		if err := h.runner.RunForTenant(context.Background(), tenantID); err != nil {
			h.logger.Error().
				Str("tenant_id", tenantID).
				Err(err).
				Msg("Manual run failed")
		}
	}()

	WriteStarted(w, "Run started for tenant "+tenantID)
}

// DeactivateHandler flips a tenant's job to inactive. The record is kept;
// the scheduler honors the flag by skipping the job entirely.
func (h *AutopostHandler) DeactivateHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}
	tenantID := r.URL.Query().Get("tenant_id")
	if tenantID == "" {
		WriteError(w, http.StatusBadRequest, "tenant_id query parameter is required")
		return
	}

	active := false
	if _, err := h.jobs.Patch(r.Context(), tenantID, &models.JobPatch{Active: &active}); err != nil {
		WriteError(w, http.StatusInternalServerError, "Failed to deactivate job: "+err.Error())
		return
	}
	WriteSuccess(w, "Autopost job deactivated for tenant "+tenantID)
}

// StatusHandler returns the stored job record for a tenant.
func (h *AutopostHandler) StatusHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}
	tenantID := r.URL.Query().Get("tenant_id")
	if tenantID == "" {
		WriteError(w, http.StatusBadRequest, "tenant_id query parameter is required")
		return
	}

	job, err := h.jobs.Get(r.Context(), tenantID)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "Failed to load job: "+err.Error())
		return
	}
	if job == nil {
		WriteError(w, http.StatusNotFound, "No autopost job exists for tenant "+tenantID)
		return
	}
	WriteJSON(w, http.StatusOK, job)
}

// HistoryHandler returns a tenant's recent post outcomes, newest first.
func (h *AutopostHandler) HistoryHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}
	tenantID := r.URL.Query().Get("tenant_id")
	if tenantID == "" {
		WriteError(w, http.StatusBadRequest, "tenant_id query parameter is required")
		return
	}

	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 500 {
			WriteError(w, http.StatusBadRequest, "limit must be between 1 and 500")
			return
		}
		limit = parsed
	}

	outcomes, err := h.recorder.ListRecent(r.Context(), tenantID, limit)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "Failed to load history: "+err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"tenant_id": tenantID,
		"count":     len(outcomes),
		"outcomes":  outcomes,
	})
}

// StatsHandler returns a tenant's per-channel daily counters.
func (h *AutopostHandler) StatsHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}
	tenantID := r.URL.Query().Get("tenant_id")
	if tenantID == "" {
		WriteError(w, http.StatusBadRequest, "tenant_id query parameter is required")
		return
	}

	day := time.Now()
	if raw := r.URL.Query().Get("date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			WriteError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
			return
		}
		day = parsed
	}

	stats, err := h.recorder.StatsForDay(r.Context(), tenantID, day)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "Failed to load stats: "+err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"tenant_id": tenantID,
		"date":      day.Format("2006-01-02"),
		"stats":     stats,
	})
}
