package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prajwal-cubiquitous/Tracura-sub000/internal/auth"
	"github.com/prajwal-cubiquitous/Tracura-sub000/internal/dashboard"
	"github.com/prajwal-cubiquitous/Tracura-sub000/internal/domain"
	"github.com/prajwal-cubiquitous/Tracura-sub000/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ExtensionService handles phase deadline extension requests.
type ExtensionService struct {
	extensionRepo   *repository.ExtensionRequestRepository
	phaseRepo       *repository.PhaseRepository
	projectRepo     *repository.ProjectRepository
	phaseChangeRepo *repository.PhaseChangeRepository
	stores          *dashboard.Manager
	logger          *zap.Logger
	now             func() time.Time
}

func NewExtensionService(
	extensionRepo *repository.ExtensionRequestRepository,
	phaseRepo *repository.PhaseRepository,
	projectRepo *repository.ProjectRepository,
	phaseChangeRepo *repository.PhaseChangeRepository,
	stores *dashboard.Manager,
	logger *zap.Logger,
) *ExtensionService {
	return &ExtensionService{
		extensionRepo:   extensionRepo,
		phaseRepo:       phaseRepo,
		projectRepo:     projectRepo,
		phaseChangeRepo: phaseChangeRepo,
		stores:          stores,
		logger:          logger,
		now:             time.Now,
	}
}

// Create files a new pending extension request against a phase.
func (s *ExtensionService) Create(ctx context.Context, phaseID uuid.UUID, req domain.CreateExtensionRequest) (*domain.PhaseExtensionRequest, error) {
	user := auth.MustFromContext(ctx)

	phase, err := s.phaseRepo.GetByID(ctx, phaseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load phase: %w", err)
	}
	if _, err := domain.ParseBudgetDate(req.ExtendedDate); err != nil {
		return nil, fmt.Errorf("%w: extendedDate: %s", ErrInvalidInput, err)
	}

	request := &domain.PhaseExtensionRequest{
		PhaseID:        phaseID,
		ProjectID:      phase.ProjectID,
		ExtendedDate:   strings.TrimSpace(req.ExtendedDate),
		Reason:         strings.TrimSpace(req.Reason),
		RequesterID:    user.UserID,
		RequesterName:  req.RequesterName,
		RequesterPhone: req.RequesterPhone,
		Status:         domain.ExtensionStatusPending,
		PhaseSynced:    true,
	}
	if err := s.extensionRepo.Create(ctx, request); err != nil {
		return nil, fmt.Errorf("failed to create extension request: %w", err)
	}
	return request, nil
}

// Resolve accepts or rejects a pending extension request.
//
// Acceptance is two writes without a transaction: the request row first,
// carrying phase_synced=false, then the phase deadline, then the marker is
// cleared. A crash between the writes leaves the marker set; the
// reconciliation job finds it and replays the deadline write.
func (s *ExtensionService) Resolve(ctx context.Context, requestID uuid.UUID, req domain.ResolveExtensionRequest) (*domain.PhaseExtensionRequest, error) {
	user := auth.MustFromContext(ctx)

	request, err := s.extensionRepo.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load extension request: %w", err)
	}
	if request.Status != domain.ExtensionStatusPending {
		return nil, ErrConflict
	}

	project, err := s.projectRepo.GetByID(ctx, request.ProjectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load project: %w", err)
	}
	if !user.IsAdmin() && !project.IsManager(user.UserID) {
		return nil, ErrPermissionDenied
	}

	decidedAt := s.now().UTC()
	request.Status = domain.ExtensionRequestStatus(req.Decision)
	request.ResolvedByID = user.UserID
	request.ResolvedAt = &decidedAt
	request.ResolveRemark = strings.TrimSpace(req.Remark)

	if request.Status == domain.ExtensionStatusRejected {
		if err := s.extensionRepo.Update(ctx, request); err != nil {
			return nil, fmt.Errorf("%w: %s", ErrTransient, err)
		}
		s.audit(ctx, request, domain.PhaseChangeExtensionRejected, user.UserID,
			fmt.Sprintf("extension to %s rejected", request.ExtendedDate))
		return request, nil
	}

	request.PhaseSynced = false
	if err := s.extensionRepo.Update(ctx, request); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrTransient, err)
	}

	if err := s.phaseRepo.SetEndDate(ctx, request.PhaseID, request.ExtendedDate); err != nil {
		// Request is accepted but the deadline write did not land. The
		// synced marker stays false; the reconciliation job repairs it.
		s.logger.Error("Phase deadline write failed after acceptance",
			zap.String("request_id", requestID.String()),
			zap.String("phase_id", request.PhaseID.String()),
			zap.Error(err))
		return nil, fmt.Errorf("%w: %s", ErrTransient, err)
	}

	if err := s.extensionRepo.MarkSynced(ctx, requestID); err != nil {
		s.logger.Warn("Failed to clear sync marker, reconciliation will retry",
			zap.String("request_id", requestID.String()),
			zap.Error(err))
	} else {
		request.PhaseSynced = true
	}

	s.audit(ctx, request, domain.PhaseChangeExtensionAccepted, user.UserID,
		fmt.Sprintf("end date moved to %s", request.ExtendedDate))

	if store, ok := s.stores.Peek(request.ProjectID); ok {
		store.SetPhaseExtended(request.PhaseID, true)
	}

	s.logger.Info("Extension request resolved",
		zap.String("request_id", requestID.String()),
		zap.String("status", string(request.Status)))
	return request, nil
}

// IsExtended recomputes the display flag from current phase and request
// state. Never persisted on the phase.
func (s *ExtensionService) IsExtended(ctx context.Context, phaseID uuid.UUID) (bool, error) {
	phase, err := s.phaseRepo.GetByID(ctx, phaseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, ErrNotFound
		}
		return false, fmt.Errorf("failed to load phase: %w", err)
	}
	requests, err := s.extensionRepo.ListByPhase(ctx, phaseID)
	if err != nil {
		return false, fmt.Errorf("failed to load extension requests: %w", err)
	}
	return domain.IsPhaseExtended(phase, requests), nil
}

func (s *ExtensionService) ListByPhase(ctx context.Context, phaseID uuid.UUID) ([]domain.PhaseExtensionRequest, error) {
	return s.extensionRepo.ListByPhase(ctx, phaseID)
}

func (s *ExtensionService) audit(ctx context.Context, request *domain.PhaseExtensionRequest, action domain.PhaseChangeAction, actorID, detail string) {
	change := &domain.PhaseChange{
		PhaseID:   request.PhaseID,
		ProjectID: request.ProjectID,
		Action:    action,
		Detail:    detail,
		ActorID:   actorID,
	}
	if err := s.phaseChangeRepo.Create(ctx, change); err != nil {
		// Audit writes must not fail the workflow.
		s.logger.Warn("Failed to record phase change",
			zap.String("phase_id", request.PhaseID.String()),
			zap.Error(err))
	}
}
