package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prajwal-cubiquitous/Tracura-sub000/internal/domain"
	"github.com/prajwal-cubiquitous/Tracura-sub000/internal/mapper"
	"github.com/prajwal-cubiquitous/Tracura-sub000/internal/service"
	"go.uber.org/zap"
)

// ProjectHandler handles HTTP requests for projects, phases and membership
type ProjectHandler struct {
	projectService *service.ProjectService
	logger         *zap.Logger
}

func NewProjectHandler(projectService *service.ProjectService, logger *zap.Logger) *ProjectHandler {
	return &ProjectHandler{
		projectService: projectService,
		logger:         logger,
	}
}

// Create creates a new project
// @Summary Create project
// @Description Create a new budget-tracked project
// @Tags projects
// @Accept json
// @Produce json
// @Param project body domain.CreateProjectRequest true "Project"
// @Success 201 {object} domain.ProjectDTO
// @Failure 400 {object} domain.APIError
// @Router /projects [post]
// @Security BearerAuth
func (h *ProjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	project, err := h.projectService.Create(r.Context(), req)
	if err != nil {
		h.logger.Error("Failed to create project", zap.Error(err))
		respondServiceError(w, err, "project")
		return
	}
	respondJSON(w, http.StatusCreated, mapper.ToProjectDTO(project))
}

// Get returns one project
// @Summary Get project
// @Tags projects
// @Produce json
// @Param id path string true "Project ID"
// @Success 200 {object} domain.ProjectDTO
// @Failure 404 {object} domain.APIError
// @Router /projects/{id} [get]
// @Security BearerAuth
func (h *ProjectHandler) Get(w http.ResponseWriter, r *http.Request) {
	projectID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid project ID")
		return
	}

	project, err := h.projectService.GetByID(r.Context(), projectID)
	if err != nil {
		respondServiceError(w, err, "project")
		return
	}
	respondJSON(w, http.StatusOK, mapper.ToProjectDTO(project))
}

// List returns projects for the caller's tenant
// @Summary List projects
// @Tags projects
// @Produce json
// @Param page query int false "Page number"
// @Param pageSize query int false "Page size"
// @Param status query string false "Filter by status"
// @Success 200 {object} map[string]interface{}
// @Router /projects [get]
// @Security BearerAuth
func (h *ProjectHandler) List(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("pageSize"))

	var status *domain.ProjectStatus
	if s := r.URL.Query().Get("status"); s != "" {
		st := domain.ProjectStatus(s)
		if !st.IsValid() {
			respondWithError(w, http.StatusBadRequest, "Invalid status filter")
			return
		}
		status = &st
	}

	projects, total, err := h.projectService.List(r.Context(), page, pageSize, status)
	if err != nil {
		h.logger.Error("Failed to list projects", zap.Error(err))
		respondServiceError(w, err, "projects")
		return
	}

	dtos := make([]domain.ProjectDTO, len(projects))
	for i := range projects {
		dtos[i] = mapper.ToProjectDTO(&projects[i])
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"items": dtos,
		"total": total,
	})
}

// CreatePhase adds a phase to a project
// @Summary Create phase
// @Tags projects,phases
// @Accept json
// @Produce json
// @Param id path string true "Project ID"
// @Param phase body domain.CreatePhaseRequest true "Phase"
// @Success 201 {object} domain.PhaseDTO
// @Failure 409 {object} domain.APIError
// @Router /projects/{id}/phases [post]
// @Security BearerAuth
func (h *ProjectHandler) CreatePhase(w http.ResponseWriter, r *http.Request) {
	projectID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid project ID")
		return
	}

	var req domain.CreatePhaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	phase, err := h.projectService.CreatePhase(r.Context(), projectID, req)
	if err != nil {
		respondServiceError(w, err, "phase")
		return
	}
	respondJSON(w, http.StatusCreated, mapper.ToPhaseDTO(phase, false, timeNow()))
}

// SetPhaseEnabled toggles a phase in or out of project totals
// @Summary Enable or disable a phase
// @Tags phases
// @Accept json
// @Produce json
// @Param id path string true "Phase ID"
// @Param body body domain.SetPhaseEnabledRequest true "Enabled flag"
// @Success 200 {object} domain.PhaseDTO
// @Failure 404 {object} domain.APIError
// @Router /phases/{id}/enabled [put]
// @Security BearerAuth
func (h *ProjectHandler) SetPhaseEnabled(w http.ResponseWriter, r *http.Request) {
	phaseID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid phase ID")
		return
	}

	var req domain.SetPhaseEnabledRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	phase, err := h.projectService.SetPhaseEnabled(r.Context(), phaseID, req.Enabled)
	if err != nil {
		respondServiceError(w, err, "phase")
		return
	}
	respondJSON(w, http.StatusOK, mapper.ToPhaseDTO(phase, false, timeNow()))
}

// AddTeamMember adds a user to the project's member list
// @Summary Add team member
// @Tags projects,members
// @Accept json
// @Produce json
// @Param id path string true "Project ID"
// @Param member body domain.AddTeamMemberRequest true "Member"
// @Success 204
// @Failure 409 {object} domain.APIError
// @Router /projects/{id}/members [post]
// @Security BearerAuth
func (h *ProjectHandler) AddTeamMember(w http.ResponseWriter, r *http.Request) {
	projectID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid project ID")
		return
	}

	var req domain.AddTeamMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	if err := h.projectService.AddTeamMember(r.Context(), projectID, req.UserID); err != nil {
		respondServiceError(w, err, "member")
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

// RemoveTeamMember removes a user from the project's member list
// @Summary Remove team member
// @Tags projects,members
// @Param id path string true "Project ID"
// @Param userId path string true "User ID"
// @Success 204
// @Failure 404 {object} domain.APIError
// @Router /projects/{id}/members/{userId} [delete]
// @Security BearerAuth
func (h *ProjectHandler) RemoveTeamMember(w http.ResponseWriter, r *http.Request) {
	projectID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid project ID")
		return
	}
	userID := chi.URLParam(r, "userId")

	if err := h.projectService.RemoveTeamMember(r.Context(), projectID, userID); err != nil {
		respondServiceError(w, err, "member")
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

// SetSuspended freezes or unfreezes a project (admin only)
// @Summary Suspend or resume a project
// @Tags projects
// @Accept json
// @Param id path string true "Project ID"
// @Success 204
// @Failure 403 {object} domain.APIError
// @Router /projects/{id}/suspended [put]
// @Security BearerAuth
func (h *ProjectHandler) SetSuspended(w http.ResponseWriter, r *http.Request) {
	projectID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid project ID")
		return
	}

	var req struct {
		Suspended bool `json:"suspended"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.projectService.SetSuspended(r.Context(), projectID, req.Suspended); err != nil {
		respondServiceError(w, err, "project")
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}
