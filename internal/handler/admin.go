package handler

import (
	"net/http"

	"omezka-shop-api/internal/repository"
	"omezka-shop-api/internal/service"
	"omezka-shop-api/pkg/apierror"
	"omezka-shop-api/pkg/response"
)

// AdminHandler exposes operational endpoints. Routes are guarded by the
// login-key middleware; no player session is required.
type AdminHandler struct {
	store     repository.Store
	scheduler *service.RotationScheduler
}

// NewAdminHandler creates a new admin handler.
func NewAdminHandler(store repository.Store, scheduler *service.RotationScheduler) *AdminHandler {
	return &AdminHandler{store: store, scheduler: scheduler}
}

// GetStats handles GET /api/v1/admin/stats
func (h *AdminHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.store.GetStats(r.Context())
	if err != nil {
		response.Error(w, apierror.InternalError("failed to collect stats"))
		return
	}
	stats["scheduler_running"] = h.scheduler != nil && h.scheduler.IsRunning()

	response.OK(w, stats)
}

// ForceRotation handles POST /api/v1/admin/rotate - runs one rotation
// cycle immediately instead of waiting for the next jittered tick.
func (h *AdminHandler) ForceRotation(w http.ResponseWriter, r *http.Request) {
	if h.scheduler == nil {
		response.Error(w, apierror.ServiceUnavailable("scheduler not configured"))
		return
	}

	if err := h.scheduler.RunCycle(); err != nil {
		response.Error(w, apierror.InternalError("rotation cycle failed"))
		return
	}

	response.OK(w, map[string]interface{}{"status": "rotated"})
}
