package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/prajwal-cubiquitous/Tracura-sub000/internal/auth"
	"github.com/prajwal-cubiquitous/Tracura-sub000/internal/dashboard"
	"github.com/prajwal-cubiquitous/Tracura-sub000/internal/domain"
	"github.com/prajwal-cubiquitous/Tracura-sub000/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ProjectService handles projects, phases and team membership.
type ProjectService struct {
	projectRepo     *repository.ProjectRepository
	phaseRepo       *repository.PhaseRepository
	userRepo        *repository.UserRepository
	phaseChangeRepo *repository.PhaseChangeRepository
	stores          *dashboard.Manager
	logger          *zap.Logger
}

func NewProjectService(
	projectRepo *repository.ProjectRepository,
	phaseRepo *repository.PhaseRepository,
	userRepo *repository.UserRepository,
	phaseChangeRepo *repository.PhaseChangeRepository,
	stores *dashboard.Manager,
	logger *zap.Logger,
) *ProjectService {
	return &ProjectService{
		projectRepo:     projectRepo,
		phaseRepo:       phaseRepo,
		userRepo:        userRepo,
		phaseChangeRepo: phaseChangeRepo,
		stores:          stores,
		logger:          logger,
	}
}

func (s *ProjectService) Create(ctx context.Context, req domain.CreateProjectRequest) (*domain.Project, error) {
	user := auth.MustFromContext(ctx)

	status := domain.ProjectStatusActive
	if req.Status != "" {
		status = domain.ProjectStatus(req.Status)
		if !status.IsValid() {
			return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, req.Status)
		}
	}

	project := &domain.Project{
		TenantID:   user.TenantID,
		Name:       strings.TrimSpace(req.Name),
		Status:     status,
		ManagerIDs: pq.StringArray(req.ManagerIDs),
	}
	if project.Name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if err := s.projectRepo.Create(ctx, project); err != nil {
		s.logger.Error("Failed to create project", zap.Error(err))
		return nil, fmt.Errorf("failed to create project: %w", err)
	}
	return project, nil
}

func (s *ProjectService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Project, error) {
	project, err := s.projectRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load project: %w", err)
	}
	return project, nil
}

func (s *ProjectService) List(ctx context.Context, page, pageSize int, status *domain.ProjectStatus) ([]domain.Project, int64, error) {
	if pageSize < 1 || pageSize > repository.MaxPageSize {
		pageSize = repository.MaxPageSize
	}
	if page < 1 {
		page = 1
	}
	return s.projectRepo.List(ctx, page, pageSize, status)
}

// CreatePhase appends a phase to the project. Phase names are unique
// case-insensitively within a project.
func (s *ProjectService) CreatePhase(ctx context.Context, projectID uuid.UUID, req domain.CreatePhaseRequest) (*domain.Phase, error) {
	project, err := s.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	existing, err := s.phaseRepo.ListByProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to load phases: %w", err)
	}
	for i := range existing {
		if strings.EqualFold(existing[i].Name, name) {
			return nil, ErrConflict
		}
	}

	for _, d := range []string{req.StartDate, req.EndDate} {
		if d == "" {
			continue
		}
		if _, err := domain.ParseBudgetDate(d); err != nil {
			return nil, fmt.Errorf("%w: %s", ErrInvalidInput, err)
		}
	}

	phase := &domain.Phase{
		ProjectID: project.ID,
		Name:      name,
		Ordinal:   req.Ordinal,
		Enabled:   true,
	}
	if req.StartDate != "" {
		start := req.StartDate
		phase.StartDate = &start
	}
	if req.EndDate != "" {
		end := req.EndDate
		phase.EndDate = &end
	}
	if err := s.phaseRepo.Create(ctx, phase); err != nil {
		return nil, fmt.Errorf("failed to create phase: %w", err)
	}
	return phase, nil
}

// SetPhaseEnabled toggles a phase in or out of the project totals.
func (s *ProjectService) SetPhaseEnabled(ctx context.Context, phaseID uuid.UUID, enabled bool) (*domain.Phase, error) {
	user := auth.MustFromContext(ctx)

	phase, err := s.phaseRepo.GetByID(ctx, phaseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load phase: %w", err)
	}

	err = confirmThenApply(ctx,
		func(ctx context.Context) error {
			if err := s.phaseRepo.SetEnabled(ctx, phaseID, enabled); err != nil {
				return fmt.Errorf("%w: %s", ErrTransient, err)
			}
			return nil
		},
		func() {
			phase.Enabled = enabled
			if store, ok := s.stores.Peek(phase.ProjectID); ok {
				store.SetPhaseEnabled(phaseID, enabled)
			}
		},
	)
	if err != nil {
		return nil, err
	}

	change := &domain.PhaseChange{
		PhaseID:   phaseID,
		ProjectID: phase.ProjectID,
		Action:    domain.PhaseChangeEnabledToggled,
		Detail:    fmt.Sprintf("enabled=%t", enabled),
		ActorID:   user.UserID,
	}
	if err := s.phaseChangeRepo.Create(ctx, change); err != nil {
		s.logger.Warn("Failed to record phase change", zap.Error(err))
	}
	return phase, nil
}

// AddTeamMember adds a user to the project's member list using the
// optimistic pattern: the dashboard store is mutated first for immediate
// reads, then the remote list is read, checked and conditionally appended.
// A duplicate or a failed write rolls back exactly the mutation the store
// actually made; a member already present in the snapshot is left alone.
func (s *ProjectService) AddTeamMember(ctx context.Context, projectID uuid.UUID, userID string) error {
	member, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to load user: %w", err)
	}

	store, hasStore := s.stores.Peek(projectID)
	appended := false

	return optimisticWithCompensation(ctx,
		func() {
			if hasStore {
				appended = store.AddTeamMember(*member)
			}
		},
		func(ctx context.Context) error {
			project, err := s.projectRepo.GetByID(ctx, projectID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrNotFound
				}
				return fmt.Errorf("%w: %s", ErrTransient, err)
			}
			if project.HasTeamMember(userID) {
				return ErrConflict
			}
			merged := append(pq.StringArray{}, project.TeamMemberIDs...)
			merged = append(merged, userID)
			if err := s.projectRepo.UpdateTeamMembers(ctx, projectID, merged); err != nil {
				return fmt.Errorf("%w: %s", ErrTransient, err)
			}
			return nil
		},
		func() {
			if appended {
				store.RemoveTeamMember(userID)
			}
		},
	)
}

// RemoveTeamMember drops a user from the member list. The remote write is
// confirmed before the store is touched; removal has no optimistic path.
func (s *ProjectService) RemoveTeamMember(ctx context.Context, projectID uuid.UUID, userID string) error {
	project, err := s.projectRepo.GetByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to load project: %w", err)
	}
	if !project.HasTeamMember(userID) {
		return ErrNotFound
	}

	remaining := pq.StringArray{}
	for _, id := range project.TeamMemberIDs {
		if id != userID {
			remaining = append(remaining, id)
		}
	}

	return confirmThenApply(ctx,
		func(ctx context.Context) error {
			if err := s.projectRepo.UpdateTeamMembers(ctx, projectID, remaining); err != nil {
				return fmt.Errorf("%w: %s", ErrTransient, err)
			}
			return nil
		},
		func() {
			if store, ok := s.stores.Peek(projectID); ok {
				store.RemoveTeamMember(userID)
			}
		},
	)
}

// SetSuspended freezes or unfreezes all expense submission on the project.
func (s *ProjectService) SetSuspended(ctx context.Context, projectID uuid.UUID, suspended bool) error {
	user := auth.MustFromContext(ctx)
	if !user.IsAdmin() {
		return ErrPermissionDenied
	}
	if _, err := s.GetByID(ctx, projectID); err != nil {
		return err
	}
	return s.projectRepo.SetSuspended(ctx, projectID, suspended)
}
