package http

import (
	"net/http"

	"github.com/ecombi/dashboard/internal/domain"
	"github.com/ecombi/dashboard/internal/http/response"
	"github.com/ecombi/dashboard/pkg/logger"
)

// DashboardHandler serves the report snapshot as JSON
type DashboardHandler struct {
	service domain.DashboardService
	logger  logger.Logger
}

func NewDashboardHandler(service domain.DashboardService, logger logger.Logger) *DashboardHandler {
	return &DashboardHandler{service: service, logger: logger}
}

func (h *DashboardHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/reports", h.handleListReports)
	mux.HandleFunc("GET /api/reports/{name}", h.handleGetReport)
	mux.HandleFunc("GET /api/tabs/{tab}", h.handleGetTab)
	mux.HandleFunc("GET /api/kpis", h.handleGetKPIs)
	mux.HandleFunc("POST /api/snapshot/refresh", h.handleRefresh)
}

func (h *DashboardHandler) handleListReports(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.service.Snapshot()
	if err != nil {
		h.writeError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, snapshot.Reports.AsMap())
}

func (h *DashboardHandler) handleGetReport(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.Report(r.PathValue("name"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, report)
}

func (h *DashboardHandler) handleGetTab(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.Tab(r.PathValue("tab"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, view)
}

func (h *DashboardHandler) handleGetKPIs(w http.ResponseWriter, r *http.Request) {
	kpis, err := h.service.KPIs()
	if err != nil {
		h.writeError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, kpis)
}

func (h *DashboardHandler) handleRefresh(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.service.Build(r.Context())
	if err != nil {
		h.logger.WithField("error", err.Error()).Error("Manual snapshot refresh failed")
		response.Error(w, "Failed to refresh snapshot", http.StatusInternalServerError)
		return
	}
	response.JSON(w, http.StatusOK, snapshot.Info())
}

func (h *DashboardHandler) writeError(w http.ResponseWriter, err error) {
	status := statusForError(err)
	if status == http.StatusInternalServerError {
		h.logger.WithField("error", err.Error()).Error("Dashboard request failed")
		response.Error(w, "Internal server error", status)
		return
	}
	response.Error(w, err.Error(), status)
}
