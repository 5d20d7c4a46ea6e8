package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/prajwal-cubiquitous/Tracura-sub000/internal/auth"
	"github.com/prajwal-cubiquitous/Tracura-sub000/internal/dashboard"
	"github.com/prajwal-cubiquitous/Tracura-sub000/internal/domain"
	"github.com/prajwal-cubiquitous/Tracura-sub000/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DelegationService manages temporary approval delegation on projects.
type DelegationService struct {
	tempApproverRepo *repository.TempApproverRepository
	projectRepo      *repository.ProjectRepository
	stores           *dashboard.Manager
	logger           *zap.Logger
	now              func() time.Time
}

func NewDelegationService(
	tempApproverRepo *repository.TempApproverRepository,
	projectRepo *repository.ProjectRepository,
	stores *dashboard.Manager,
	logger *zap.Logger,
) *DelegationService {
	return &DelegationService{
		tempApproverRepo: tempApproverRepo,
		projectRepo:      projectRepo,
		stores:           stores,
		logger:           logger,
		now:              time.Now,
	}
}

// Delegate grants a user temporary approval authority over the project.
// An existing delegation record is superseded: marked expired, never edited
// in place, and a fresh pending record is created in its stead.
func (s *DelegationService) Delegate(ctx context.Context, projectID uuid.UUID, req domain.DelegateRequest) (*domain.TempApprover, error) {
	user := auth.MustFromContext(ctx)

	project, err := s.projectRepo.GetByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load project: %w", err)
	}
	if !user.IsAdmin() && !project.IsManager(user.UserID) {
		return nil, ErrPermissionDenied
	}
	if !req.StartDate.Before(req.EndDate) {
		return nil, fmt.Errorf("%w: startDate must be before endDate", ErrInvalidInput)
	}

	if project.TempApproverRecordID != nil {
		if err := s.tempApproverRepo.SetStatus(ctx, *project.TempApproverRecordID, domain.TempApproverStatusExpired); err != nil {
			s.logger.Error("Failed to expire superseded delegation",
				zap.String("record_id", project.TempApproverRecordID.String()),
				zap.Error(err))
			return nil, fmt.Errorf("%w: %s", ErrTransient, err)
		}
	}

	record := &domain.TempApprover{
		ProjectID:  projectID,
		ApproverID: req.ApproverID,
		StartDate:  req.StartDate,
		EndDate:    req.EndDate,
		Status:     domain.TempApproverStatusPending,
	}
	if err := s.tempApproverRepo.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to create delegation record: %w", err)
	}

	err = confirmThenApply(ctx,
		func(ctx context.Context) error {
			if err := s.projectRepo.SetTempApprover(ctx, projectID, &record.ApproverID, &record.ID); err != nil {
				return fmt.Errorf("%w: %s", ErrTransient, err)
			}
			return nil
		},
		func() {
			if store, ok := s.stores.Peek(projectID); ok {
				store.SetTempApprover(record)
			}
		},
	)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Delegation created",
		zap.String("project_id", projectID.String()),
		zap.String("approver_id", req.ApproverID),
		zap.Time("start_date", req.StartDate),
		zap.Time("end_date", req.EndDate))
	return record, nil
}

// SaveDetails edits the window of the current delegation record. The edit
// resets stored status to pending; the delegate must re-accept under the
// new window.
func (s *DelegationService) SaveDetails(ctx context.Context, recordID uuid.UUID, req domain.DelegateDetailsRequest) (*domain.TempApprover, error) {
	user := auth.MustFromContext(ctx)

	record, err := s.tempApproverRepo.GetByID(ctx, recordID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load delegation record: %w", err)
	}
	if record.Status == domain.TempApproverStatusExpired {
		return nil, ErrConflict
	}

	project, err := s.projectRepo.GetByID(ctx, record.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to load project: %w", err)
	}
	if !user.IsAdmin() && !project.IsManager(user.UserID) {
		return nil, ErrPermissionDenied
	}
	if !req.StartDate.Before(req.EndDate) {
		return nil, fmt.Errorf("%w: startDate must be before endDate", ErrInvalidInput)
	}

	record.StartDate = req.StartDate
	record.EndDate = req.EndDate
	record.Status = domain.TempApproverStatusPending
	if err := s.tempApproverRepo.Update(ctx, record); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrTransient, err)
	}

	if store, ok := s.stores.Peek(record.ProjectID); ok {
		store.SetTempApprover(record)
	}
	return record, nil
}

// Decide lets the nominated delegate accept or reject a pending delegation.
func (s *DelegationService) Decide(ctx context.Context, recordID uuid.UUID, req domain.DelegationDecisionRequest) (*domain.TempApprover, error) {
	user := auth.MustFromContext(ctx)

	record, err := s.tempApproverRepo.GetByID(ctx, recordID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load delegation record: %w", err)
	}
	if record.ApproverID != user.UserID {
		return nil, ErrPermissionDenied
	}
	if record.Status != domain.TempApproverStatusPending {
		return nil, ErrConflict
	}

	status := domain.TempApproverStatus(req.Decision)
	if err := s.tempApproverRepo.SetStatus(ctx, recordID, status); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrTransient, err)
	}
	record.Status = status

	if store, ok := s.stores.Peek(record.ProjectID); ok {
		store.SetTempApprover(record)
	}

	s.logger.Info("Delegation decided",
		zap.String("record_id", recordID.String()),
		zap.String("status", string(status)))
	return record, nil
}

// Details returns the record with its window-derived display status.
func (s *DelegationService) Details(ctx context.Context, recordID uuid.UUID) (*domain.TempApprover, domain.TempApproverStatus, error) {
	record, err := s.tempApproverRepo.GetByID(ctx, recordID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrNotFound
		}
		return nil, "", fmt.Errorf("failed to load delegation record: %w", err)
	}
	return record, record.DisplayStatus(s.now()), nil
}

// ListByProject returns the project's delegation history, newest first.
func (s *DelegationService) ListByProject(ctx context.Context, projectID uuid.UUID) ([]domain.TempApprover, error) {
	return s.tempApproverRepo.ListByProject(ctx, projectID)
}
