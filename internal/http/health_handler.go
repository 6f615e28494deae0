package http

import (
	"net/http"

	"github.com/ecombi/dashboard/internal/domain"
	"github.com/ecombi/dashboard/internal/http/response"
)

// HealthHandler reports readiness and exposes the metrics scrape endpoint
type HealthHandler struct {
	service domain.DashboardService
	metrics http.Handler
	version string
}

// NewHealthHandler creates the handler. metrics may be nil when no
// metrics exporter is configured.
func NewHealthHandler(service domain.DashboardService, metrics http.Handler, version string) *HealthHandler {
	return &HealthHandler{service: service, metrics: metrics, version: version}
}

func (h *HealthHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", h.handleHealth)
	if h.metrics != nil {
		mux.Handle("GET /metrics", h.metrics)
	}
}

func (h *HealthHandler) handleHealth(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.service.Snapshot()
	if err != nil {
		response.JSON(w, http.StatusServiceUnavailable, map[string]interface{}{
			"status":  "unavailable",
			"version": h.version,
			"error":   err.Error(),
		})
		return
	}
	response.JSON(w, http.StatusOK, map[string]interface{}{
		"status":   "ok",
		"version":  h.version,
		"snapshot": snapshot.Info(),
	})
}
