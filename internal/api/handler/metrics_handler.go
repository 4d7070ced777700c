package handler

import (
	"net/http"

	"github.com/ricirt/sms-engine/internal/metrics"
)

// MetricsHandler serves a human-readable JSON dispatch snapshot.
// Raw Prometheus metrics (counters, histograms) are available at /metrics
// via promhttp.Handler and are separate from this endpoint.
type MetricsHandler struct {
	m *metrics.Metrics
}

func NewMetricsHandler(m *metrics.Metrics) *MetricsHandler {
	return &MetricsHandler{m: m}
}

// GetStats handles GET /sms/stats
//
// @Summary  Dispatch counts by mode and status since startup
// @Tags     metrics
// @Produce  json
// @Success  200  {object}  map[string]any
// @Router   /sms/stats [get]
func (h *MetricsHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	snap := h.m.Snapshot()
	total := 0
	for _, byStatus := range snap {
		for _, n := range byStatus {
			total += n
		}
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"dispatches": snap,
		"total":      total,
	})
}
