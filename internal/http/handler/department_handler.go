package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prajwal-cubiquitous/Tracura-sub000/internal/domain"
	"github.com/prajwal-cubiquitous/Tracura-sub000/internal/mapper"
	"github.com/prajwal-cubiquitous/Tracura-sub000/internal/service"
	"go.uber.org/zap"
)

// DepartmentHandler handles HTTP requests for departments and line items
type DepartmentHandler struct {
	departmentService *service.DepartmentService
	logger            *zap.Logger
}

func NewDepartmentHandler(departmentService *service.DepartmentService, logger *zap.Logger) *DepartmentHandler {
	return &DepartmentHandler{
		departmentService: departmentService,
		logger:            logger,
	}
}

// Create adds a department to a phase
// @Summary Create department
// @Tags phases,departments
// @Accept json
// @Produce json
// @Param id path string true "Phase ID"
// @Param department body domain.CreateDepartmentRequest true "Department"
// @Success 201 {object} domain.DepartmentDTO
// @Failure 409 {object} domain.APIError
// @Router /phases/{id}/departments [post]
// @Security BearerAuth
func (h *DepartmentHandler) Create(w http.ResponseWriter, r *http.Request) {
	phaseID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid phase ID")
		return
	}

	var req domain.CreateDepartmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	department, err := h.departmentService.Create(r.Context(), phaseID, req)
	if err != nil {
		respondServiceError(w, err, "department")
		return
	}
	respondJSON(w, http.StatusCreated, mapper.ToDepartmentDTO(department, 0))
}

// List returns the departments of a phase with budgets
// @Summary List departments
// @Tags phases,departments
// @Produce json
// @Param id path string true "Phase ID"
// @Success 200 {array} domain.DepartmentDTO
// @Router /phases/{id}/departments [get]
// @Security BearerAuth
func (h *DepartmentHandler) List(w http.ResponseWriter, r *http.Request) {
	phaseID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid phase ID")
		return
	}

	departments, err := h.departmentService.ListByPhase(r.Context(), phaseID)
	if err != nil {
		h.logger.Error("Failed to list departments", zap.Error(err))
		respondServiceError(w, err, "departments")
		return
	}

	dtos := make([]domain.DepartmentDTO, len(departments))
	for i := range departments {
		dtos[i] = mapper.ToDepartmentDTO(&departments[i], 0)
	}
	respondJSON(w, http.StatusOK, dtos)
}

// SetLineItems replaces a department's line items
// @Summary Replace line items
// @Description Replace the department's line items; budget is recomputed from quantity times unit price
// @Tags departments
// @Accept json
// @Produce json
// @Param id path string true "Department ID"
// @Param items body []domain.LineItemInput true "Line items"
// @Success 200 {object} domain.DepartmentDTO
// @Failure 400 {object} domain.APIError
// @Router /departments/{id}/line-items [put]
// @Security BearerAuth
func (h *DepartmentHandler) SetLineItems(w http.ResponseWriter, r *http.Request) {
	departmentID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid department ID")
		return
	}

	var inputs []domain.LineItemInput
	if err := json.NewDecoder(r.Body).Decode(&inputs); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	for _, input := range inputs {
		if err := validate.Struct(input); err != nil {
			respondValidationError(w, err)
			return
		}
	}

	department, err := h.departmentService.SetLineItems(r.Context(), departmentID, inputs)
	if err != nil {
		respondServiceError(w, err, "line items")
		return
	}
	respondJSON(w, http.StatusOK, mapper.ToDepartmentDTO(department, 0))
}

// Delete removes a department and its line items
// @Summary Delete department
// @Tags departments
// @Param id path string true "Department ID"
// @Success 204
// @Failure 404 {object} domain.APIError
// @Router /departments/{id} [delete]
// @Security BearerAuth
func (h *DepartmentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	departmentID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid department ID")
		return
	}

	if err := h.departmentService.Delete(r.Context(), departmentID); err != nil {
		respondServiceError(w, err, "department")
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}
