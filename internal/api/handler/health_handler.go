package handler

import (
	"net/http"
	"time"
)

// HealthHandler serves the liveness check endpoint.
type HealthHandler struct {
	startedAt time.Time
}

func NewHealthHandler() *HealthHandler { return &HealthHandler{startedAt: time.Now()} }

// Health handles GET /health
//
// @Summary  Liveness check
// @Tags     system
// @Produce  json
// @Success  200  {object}  map[string]string
// @Router   /health [get]
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"uptime": time.Since(h.startedAt).Truncate(time.Second).String(),
	})
}
