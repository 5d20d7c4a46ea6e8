package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prajwal-cubiquitous/Tracura-sub000/internal/mapper"
	"github.com/prajwal-cubiquitous/Tracura-sub000/internal/service"
	"go.uber.org/zap"
)

// DashboardHandler handles HTTP requests for the budget dashboard
type DashboardHandler struct {
	dashboardService *service.DashboardService
	logger           *zap.Logger
}

func NewDashboardHandler(dashboardService *service.DashboardService, logger *zap.Logger) *DashboardHandler {
	return &DashboardHandler{
		dashboardService: dashboardService,
		logger:           logger,
	}
}

// Get returns the project's dashboard from the in-memory store, loading
// it on first access
// @Summary Get project dashboard
// @Description Returns phase budgets, department spend and the anonymous bucket for a project
// @Tags dashboard
// @Produce json
// @Param id path string true "Project ID"
// @Success 200 {object} domain.DashboardDTO
// @Failure 404 {object} domain.APIError
// @Router /projects/{id}/dashboard [get]
// @Security BearerAuth
func (h *DashboardHandler) Get(w http.ResponseWriter, r *http.Request) {
	projectID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid project ID")
		return
	}

	store := h.dashboardService.Store(projectID)
	if !store.Loaded() {
		if _, err := h.dashboardService.LoadProject(r.Context(), projectID); err != nil {
			respondServiceError(w, err, "dashboard")
			return
		}
	}

	snapshot, generation := store.Snapshot()
	if snapshot == nil {
		respondWithError(w, http.StatusNotFound, "Dashboard not loaded")
		return
	}
	respondJSON(w, http.StatusOK, mapper.ToDashboardDTO(snapshot, generation, timeNow()))
}

// Refresh forces a full reload of the project's dashboard
// @Summary Refresh project dashboard
// @Description Runs a full aggregation and commits a fresh snapshot; a failed reload keeps the previous values
// @Tags dashboard
// @Produce json
// @Param id path string true "Project ID"
// @Success 200 {object} domain.DashboardDTO
// @Failure 404 {object} domain.APIError
// @Router /projects/{id}/dashboard/refresh [post]
// @Security BearerAuth
func (h *DashboardHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	projectID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid project ID")
		return
	}

	if _, err := h.dashboardService.LoadProject(r.Context(), projectID); err != nil {
		h.logger.Error("Dashboard refresh failed",
			zap.String("project_id", projectID.String()),
			zap.Error(err))
		respondServiceError(w, err, "dashboard")
		return
	}

	snapshot, generation := h.dashboardService.Store(projectID).Snapshot()
	respondJSON(w, http.StatusOK, mapper.ToDashboardDTO(snapshot, generation, timeNow()))
}
