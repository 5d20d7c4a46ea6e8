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

// Decision remarks stamped on admin-override decisions.
const (
	adminApprovedRemark = "Admin approved"
	adminRejectedRemark = "Admin Rejected"
)

// ExpenseService handles expense submission and the approval workflow.
type ExpenseService struct {
	expenseRepo      *repository.ExpenseRepository
	projectRepo      *repository.ProjectRepository
	tempApproverRepo *repository.TempApproverRepository
	stores           *dashboard.Manager
	broadcaster      *dashboard.Broadcaster
	logger           *zap.Logger
	now              func() time.Time
}

func NewExpenseService(
	expenseRepo *repository.ExpenseRepository,
	projectRepo *repository.ProjectRepository,
	tempApproverRepo *repository.TempApproverRepository,
	stores *dashboard.Manager,
	broadcaster *dashboard.Broadcaster,
	logger *zap.Logger,
) *ExpenseService {
	return &ExpenseService{
		expenseRepo:      expenseRepo,
		projectRepo:      projectRepo,
		tempApproverRepo: tempApproverRepo,
		stores:           stores,
		broadcaster:      broadcaster,
		logger:           logger,
		now:              time.Now,
	}
}

// Create records a new pending expense submitted by the caller.
func (s *ExpenseService) Create(ctx context.Context, projectID uuid.UUID, req domain.CreateExpenseRequest) (*domain.Expense, error) {
	user := auth.MustFromContext(ctx)

	project, err := s.projectRepo.GetByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load project: %w", err)
	}
	if project.Suspended {
		return nil, ErrProjectSuspended
	}

	amount, err := domain.ParseNonNegativeDecimal("amount", req.Amount)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidInput, err)
	}

	expense := &domain.Expense{
		TenantID:      project.TenantID,
		ProjectID:     projectID,
		PhaseID:       req.PhaseID,
		Department:    strings.TrimSpace(req.Department),
		Amount:        amount,
		Status:        domain.ExpenseStatusPending,
		SubmittedByID: user.UserID,
		Remark:        strings.TrimSpace(req.Remark),
	}
	if err := s.expenseRepo.Create(ctx, expense); err != nil {
		s.logger.Error("Failed to create expense", zap.Error(err))
		return nil, fmt.Errorf("failed to create expense: %w", err)
	}
	return expense, nil
}

func (s *ExpenseService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Expense, error) {
	expense, err := s.expenseRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load expense: %w", err)
	}
	return expense, nil
}

func (s *ExpenseService) ListByProject(ctx context.Context, projectID uuid.UUID, status *domain.ExpenseStatus) ([]domain.Expense, error) {
	return s.expenseRepo.ListByProject(ctx, projectID, status)
}

// Decide applies an approval decision to a pending expense. The durable
// status write happens first; the dashboard store is updated only after
// the write is confirmed (confirmThenApply), so the store never shows an
// approval that did not land.
//
// Deciding an expense that is already decided returns ErrConflict, whatever
// the requested decision. Retrying a decision therefore never double-counts
// spend.
//
// An expense outside the caller's approval authority reads as ErrNotFound,
// the same as one that does not exist, so the error reveals nothing about
// expenses on projects the caller may not act on.
func (s *ExpenseService) Decide(ctx context.Context, expenseID uuid.UUID, req domain.ExpenseDecisionRequest) (*domain.Expense, error) {
	user := auth.MustFromContext(ctx)

	expense, err := s.expenseRepo.GetByID(ctx, expenseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load expense: %w", err)
	}

	project, err := s.projectRepo.GetByID(ctx, expense.ProjectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load project: %w", err)
	}

	isAdmin := user.IsAdmin()
	if !isAdmin && !s.hasApprovalAuthority(ctx, user, project) {
		return nil, ErrNotFound
	}

	if expense.Status.IsTerminal() {
		return nil, ErrConflict
	}

	status := domain.ExpenseStatus(req.Decision)
	remark := strings.TrimSpace(req.Remark)
	if isAdmin && remark == "" {
		// Admin override decisions carry a standard remark when none given.
		if status == domain.ExpenseStatusApproved {
			remark = adminApprovedRemark
		} else {
			remark = adminRejectedRemark
		}
	}
	decidedAt := s.now().UTC()

	err = confirmThenApply(ctx,
		func(ctx context.Context) error {
			if err := s.expenseRepo.UpdateStatus(ctx, expenseID, status, user.UserID, remark, decidedAt); err != nil {
				s.logger.Error("Expense decision write failed",
					zap.String("expense_id", expenseID.String()),
					zap.Error(err))
				return fmt.Errorf("%w: %s", ErrTransient, err)
			}
			return nil
		},
		func() {
			expense.Status = status
			expense.ApprovedByID = user.UserID
			expense.ApprovedAt = &decidedAt
			expense.Remark = remark

			store, ok := s.stores.Peek(expense.ProjectID)
			if ok && status == domain.ExpenseStatusApproved {
				store.ApplyApprovedExpense(expense)
			}
			generation := uint64(0)
			if ok {
				generation = store.Generation()
			}
			s.broadcaster.Publish(dashboard.Event{
				ProjectID:  expense.ProjectID,
				Generation: generation,
				ExpenseID:  &expenseID,
				Status:     status,
			})
		},
	)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Expense decided",
		zap.String("expense_id", expenseID.String()),
		zap.String("project_id", expense.ProjectID.String()),
		zap.String("status", string(status)),
		zap.String("decided_by", user.UserID))
	return expense, nil
}

// hasApprovalAuthority reports whether the caller may decide expenses on
// the project: a project manager always may, a temporary approver only
// while their accepted window is open.
func (s *ExpenseService) hasApprovalAuthority(ctx context.Context, user *auth.UserContext, project *domain.Project) bool {
	if project.IsManager(user.UserID) {
		return true
	}
	if project.TempApproverUserID == nil || *project.TempApproverUserID != user.UserID {
		return false
	}
	if project.TempApproverRecordID == nil {
		return false
	}
	record, err := s.tempApproverRepo.GetByID(ctx, *project.TempApproverRecordID)
	if err != nil {
		s.logger.Warn("Delegation record lookup failed during decision",
			zap.String("project_id", project.ID.String()),
			zap.Error(err))
		return false
	}
	return record.IsActiveAt(s.now())
}
