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

// ExpenseHandler handles HTTP requests for expense submission and approval
type ExpenseHandler struct {
	expenseService *service.ExpenseService
	logger         *zap.Logger
}

func NewExpenseHandler(expenseService *service.ExpenseService, logger *zap.Logger) *ExpenseHandler {
	return &ExpenseHandler{
		expenseService: expenseService,
		logger:         logger,
	}
}

// Create submits a new pending expense on a project
// @Summary Submit expense
// @Tags expenses
// @Accept json
// @Produce json
// @Param id path string true "Project ID"
// @Param expense body domain.CreateExpenseRequest true "Expense"
// @Success 201 {object} domain.ExpenseDTO
// @Failure 400 {object} domain.APIError
// @Router /projects/{id}/expenses [post]
// @Security BearerAuth
func (h *ExpenseHandler) Create(w http.ResponseWriter, r *http.Request) {
	projectID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid project ID")
		return
	}

	var req domain.CreateExpenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	expense, err := h.expenseService.Create(r.Context(), projectID, req)
	if err != nil {
		respondServiceError(w, err, "expense")
		return
	}
	respondJSON(w, http.StatusCreated, mapper.ToExpenseDTO(expense))
}

// List returns the expenses of a project
// @Summary List expenses
// @Tags expenses
// @Produce json
// @Param id path string true "Project ID"
// @Param status query string false "Filter by status"
// @Success 200 {array} domain.ExpenseDTO
// @Router /projects/{id}/expenses [get]
// @Security BearerAuth
func (h *ExpenseHandler) List(w http.ResponseWriter, r *http.Request) {
	projectID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid project ID")
		return
	}

	var status *domain.ExpenseStatus
	if s := r.URL.Query().Get("status"); s != "" {
		st := domain.ExpenseStatus(s)
		status = &st
	}

	expenses, err := h.expenseService.ListByProject(r.Context(), projectID, status)
	if err != nil {
		h.logger.Error("Failed to list expenses", zap.Error(err))
		respondServiceError(w, err, "expenses")
		return
	}

	dtos := make([]domain.ExpenseDTO, len(expenses))
	for i := range expenses {
		dtos[i] = mapper.ToExpenseDTO(&expenses[i])
	}
	respondJSON(w, http.StatusOK, dtos)
}

// Decide approves or rejects a pending expense
// @Summary Decide expense
// @Description Apply a terminal APPROVED or REJECTED decision to a pending expense. Deciding an already-decided expense returns 409.
// @Tags expenses
// @Accept json
// @Produce json
// @Param id path string true "Expense ID"
// @Param decision body domain.ExpenseDecisionRequest true "Decision"
// @Success 200 {object} domain.ExpenseDTO
// @Failure 403 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Router /expenses/{id}/decision [post]
// @Security BearerAuth
func (h *ExpenseHandler) Decide(w http.ResponseWriter, r *http.Request) {
	expenseID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid expense ID")
		return
	}

	var req domain.ExpenseDecisionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	expense, err := h.expenseService.Decide(r.Context(), expenseID, req)
	if err != nil {
		respondServiceError(w, err, "expense")
		return
	}
	respondJSON(w, http.StatusOK, mapper.ToExpenseDTO(expense))
}
