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

// DelegationHandler handles HTTP requests for temporary approval delegation
type DelegationHandler struct {
	delegationService *service.DelegationService
	logger            *zap.Logger
}

func NewDelegationHandler(delegationService *service.DelegationService, logger *zap.Logger) *DelegationHandler {
	return &DelegationHandler{
		delegationService: delegationService,
		logger:            logger,
	}
}

// Delegate grants temporary approval authority on a project
// @Summary Create delegation
// @Description Nominate a temporary approver. An existing delegation record is expired and a fresh pending record created.
// @Tags delegation
// @Accept json
// @Produce json
// @Param id path string true "Project ID"
// @Param delegation body domain.DelegateRequest true "Delegation"
// @Success 201 {object} domain.TempApproverDTO
// @Failure 403 {object} domain.APIError
// @Router /projects/{id}/delegation [post]
// @Security BearerAuth
func (h *DelegationHandler) Delegate(w http.ResponseWriter, r *http.Request) {
	projectID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid project ID")
		return
	}

	var req domain.DelegateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	record, err := h.delegationService.Delegate(r.Context(), projectID, req)
	if err != nil {
		respondServiceError(w, err, "delegation")
		return
	}
	respondJSON(w, http.StatusCreated, mapper.ToTempApproverDTO(record, timeNow()))
}

// History lists a project's delegation records, newest first
// @Summary Delegation history
// @Tags delegation
// @Produce json
// @Param id path string true "Project ID"
// @Success 200 {array} domain.TempApproverDTO
// @Router /projects/{id}/delegation [get]
// @Security BearerAuth
func (h *DelegationHandler) History(w http.ResponseWriter, r *http.Request) {
	projectID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid project ID")
		return
	}

	records, err := h.delegationService.ListByProject(r.Context(), projectID)
	if err != nil {
		h.logger.Error("Failed to list delegations", zap.Error(err))
		respondServiceError(w, err, "delegations")
		return
	}

	now := timeNow()
	dtos := make([]domain.TempApproverDTO, len(records))
	for i := range records {
		dtos[i] = mapper.ToTempApproverDTO(&records[i], now)
	}
	respondJSON(w, http.StatusOK, dtos)
}

// Get returns one delegation record with derived display status
// @Summary Get delegation record
// @Tags delegation
// @Produce json
// @Param id path string true "Record ID"
// @Success 200 {object} domain.TempApproverDTO
// @Failure 404 {object} domain.APIError
// @Router /delegations/{id} [get]
// @Security BearerAuth
func (h *DelegationHandler) Get(w http.ResponseWriter, r *http.Request) {
	recordID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid record ID")
		return
	}

	record, _, err := h.delegationService.Details(r.Context(), recordID)
	if err != nil {
		respondServiceError(w, err, "delegation")
		return
	}
	respondJSON(w, http.StatusOK, mapper.ToTempApproverDTO(record, timeNow()))
}

// SaveDetails edits the window of a delegation record
// @Summary Edit delegation window
// @Description Change the start and end dates; stored status resets to pending and the delegate must re-accept.
// @Tags delegation
// @Accept json
// @Produce json
// @Param id path string true "Record ID"
// @Param details body domain.DelegateDetailsRequest true "Window"
// @Success 200 {object} domain.TempApproverDTO
// @Failure 409 {object} domain.APIError
// @Router /delegations/{id} [put]
// @Security BearerAuth
func (h *DelegationHandler) SaveDetails(w http.ResponseWriter, r *http.Request) {
	recordID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid record ID")
		return
	}

	var req domain.DelegateDetailsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	record, err := h.delegationService.SaveDetails(r.Context(), recordID, req)
	if err != nil {
		respondServiceError(w, err, "delegation")
		return
	}
	respondJSON(w, http.StatusOK, mapper.ToTempApproverDTO(record, timeNow()))
}

// Decide lets the nominated delegate accept or reject the delegation
// @Summary Decide delegation
// @Tags delegation
// @Accept json
// @Produce json
// @Param id path string true "Record ID"
// @Param decision body domain.DelegationDecisionRequest true "Decision"
// @Success 200 {object} domain.TempApproverDTO
// @Failure 403 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Router /delegations/{id}/decision [post]
// @Security BearerAuth
func (h *DelegationHandler) Decide(w http.ResponseWriter, r *http.Request) {
	recordID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid record ID")
		return
	}

	var req domain.DelegationDecisionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	record, err := h.delegationService.Decide(r.Context(), recordID, req)
	if err != nil {
		respondServiceError(w, err, "delegation")
		return
	}
	respondJSON(w, http.StatusOK, mapper.ToTempApproverDTO(record, timeNow()))
}
