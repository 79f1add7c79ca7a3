package handlers

import (
	"net/http"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/cadence/internal/common"
	"github.com/ternarybob/cadence/internal/interfaces"
)

// SchedulerHandler exposes manual sweep control.
type SchedulerHandler struct {
	scheduler interfaces.SchedulerService
	logger    arbor.ILogger
}

func NewSchedulerHandler(scheduler interfaces.SchedulerService) *SchedulerHandler {
	return &SchedulerHandler{
		scheduler: scheduler,
		logger:    common.GetLogger(),
	}
}

// SweepHandler triggers a full sweep. An already-running sweep makes this a
// no-op on the scheduler side.
func (h *SchedulerHandler) SweepHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	go func() {
		if err := h.scheduler.TriggerSweep(); err != nil {
			h.logger.Error().Err(err).Msg("Manual sweep failed")
		}
	}()

	WriteStarted(w, "Sweep triggered")
}

// StatusHandler reports whether the scheduler is running.
func (h *SchedulerHandler) StatusHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"running": h.scheduler.IsRunning(),
	})
}
