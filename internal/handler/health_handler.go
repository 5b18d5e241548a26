package handler

import (
	"net/http"

	"promo-dispenser/internal/service"

	"github.com/rs/zerolog"
)

// HealthResponse is the body of GET /health. The endpoint is public, so
// the queue depth is probed but never reported.
type HealthResponse struct {
	Status  string `json:"status"`
	Backend string `json:"backend"`
}

// HealthHandler reports liveness and whether the queue store is readable.
type HealthHandler struct {
	service service.PromoService
	backend string
	logger  zerolog.Logger
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(service service.PromoService, backend string, logger zerolog.Logger) *HealthHandler {
	return &HealthHandler{
		service: service,
		backend: backend,
		logger:  logger.With().Str("handler", "health").Logger(),
	}
}

// ServeHTTP handles GET /health. A store failure degrades the status but
// still answers 200 so liveness probes keep passing.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{Status: "healthy", Backend: h.backend}

	if _, err := h.service.Remaining(r.Context()); err != nil {
		h.logger.Warn().Err(err).Msg("health check could not read queue length")
		resp.Status = "degraded"
	}

	writeJSON(w, http.StatusOK, resp)
}
