package api

import (
	"net/http"

	"github.com/labelpress/labelpress/internal/api/shared"
)

// HealthHandler serves the health endpoint.
type HealthHandler struct {
	jobs JobService
}

// NewHealthHandler creates a HealthHandler.
func NewHealthHandler(jobs JobService) *HealthHandler {
	return &HealthHandler{jobs: jobs}
}

// Health handles GET /healthz requests.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	shared.RespondWithJSON(w, r, http.StatusOK, HealthResponse{
		Status:    "ok",
		JobsTotal: h.jobs.TotalSubmitted(),
	})
}
