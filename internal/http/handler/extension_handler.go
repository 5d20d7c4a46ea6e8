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

// ExtensionHandler handles HTTP requests for phase extension requests
type ExtensionHandler struct {
	extensionService *service.ExtensionService
	logger           *zap.Logger
}

func NewExtensionHandler(extensionService *service.ExtensionService, logger *zap.Logger) *ExtensionHandler {
	return &ExtensionHandler{
		extensionService: extensionService,
		logger:           logger,
	}
}

// Create files an extension request against a phase
// @Summary Request extension
// @Tags extensions
// @Accept json
// @Produce json
// @Param id path string true "Phase ID"
// @Param request body domain.CreateExtensionRequest true "Request"
// @Success 201 {object} domain.ExtensionRequestDTO
// @Failure 400 {object} domain.APIError
// @Router /phases/{id}/extensions [post]
// @Security BearerAuth
func (h *ExtensionHandler) Create(w http.ResponseWriter, r *http.Request) {
	phaseID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid phase ID")
		return
	}

	var req domain.CreateExtensionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	request, err := h.extensionService.Create(r.Context(), phaseID, req)
	if err != nil {
		respondServiceError(w, err, "extension request")
		return
	}
	respondJSON(w, http.StatusCreated, mapper.ToExtensionRequestDTO(request))
}

// List returns the extension requests of a phase
// @Summary List extension requests
// @Tags extensions
// @Produce json
// @Param id path string true "Phase ID"
// @Success 200 {array} domain.ExtensionRequestDTO
// @Router /phases/{id}/extensions [get]
// @Security BearerAuth
func (h *ExtensionHandler) List(w http.ResponseWriter, r *http.Request) {
	phaseID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid phase ID")
		return
	}

	requests, err := h.extensionService.ListByPhase(r.Context(), phaseID)
	if err != nil {
		h.logger.Error("Failed to list extension requests", zap.Error(err))
		respondServiceError(w, err, "extension requests")
		return
	}

	dtos := make([]domain.ExtensionRequestDTO, len(requests))
	for i := range requests {
		dtos[i] = mapper.ToExtensionRequestDTO(&requests[i])
	}
	respondJSON(w, http.StatusOK, dtos)
}

// Resolve accepts or rejects a pending extension request
// @Summary Resolve extension request
// @Description Accept or reject a pending request. Acceptance moves the phase end date to the requested date.
// @Tags extensions
// @Accept json
// @Produce json
// @Param id path string true "Request ID"
// @Param decision body domain.ResolveExtensionRequest true "Decision"
// @Success 200 {object} domain.ExtensionRequestDTO
// @Failure 403 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Router /extensions/{id}/resolution [post]
// @Security BearerAuth
func (h *ExtensionHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	requestID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request ID")
		return
	}

	var req domain.ResolveExtensionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	request, err := h.extensionService.Resolve(r.Context(), requestID, req)
	if err != nil {
		respondServiceError(w, err, "extension request")
		return
	}
	respondJSON(w, http.StatusOK, mapper.ToExtensionRequestDTO(request))
}
