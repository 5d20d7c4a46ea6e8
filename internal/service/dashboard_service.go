package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/prajwal-cubiquitous/Tracura-sub000/internal/dashboard"
	"github.com/prajwal-cubiquitous/Tracura-sub000/internal/repository"
	"go.uber.org/zap"
)

// DashboardService owns the in-memory dashboard stores. It runs full loads
// through the aggregator and commits whole snapshots; incremental updates
// go through the workflow services, never through here.
type DashboardService struct {
	aggregator       *AggregatorService
	projectRepo      *repository.ProjectRepository
	userRepo         *repository.UserRepository
	tempApproverRepo *repository.TempApproverRepository
	stores           *dashboard.Manager
	broadcaster      *dashboard.Broadcaster
	logger           *zap.Logger
}

func NewDashboardService(
	aggregator *AggregatorService,
	projectRepo *repository.ProjectRepository,
	userRepo *repository.UserRepository,
	tempApproverRepo *repository.TempApproverRepository,
	stores *dashboard.Manager,
	broadcaster *dashboard.Broadcaster,
	logger *zap.Logger,
) *DashboardService {
	return &DashboardService{
		aggregator:       aggregator,
		projectRepo:      projectRepo,
		userRepo:         userRepo,
		tempApproverRepo: tempApproverRepo,
		stores:           stores,
		broadcaster:      broadcaster,
		logger:           logger,
	}
}

// Store returns the per-project store, creating it on first use.
func (s *DashboardService) Store(projectID uuid.UUID) *dashboard.Store {
	return s.stores.Get(projectID)
}

func (s *DashboardService) Broadcaster() *dashboard.Broadcaster {
	return s.broadcaster
}

// LoadProject runs a full aggregation and commits the snapshot. The load
// ticket is taken before any remote read so concurrent loads resolve to
// the newest one; a failed load leaves the previous snapshot untouched.
func (s *DashboardService) LoadProject(ctx context.Context, projectID uuid.UUID) (uint64, error) {
	store := s.stores.Get(projectID)
	ticket := store.BeginLoad()

	snapshot, err := s.aggregator.LoadProjectBudgets(ctx, projectID)
	if err != nil {
		s.logger.Error("Dashboard load failed",
			zap.String("project_id", projectID.String()),
			zap.Error(err))
		return 0, fmt.Errorf("failed to load project budgets: %w", err)
	}

	project, err := s.projectRepo.GetByID(ctx, projectID)
	if err != nil {
		return 0, fmt.Errorf("failed to load project: %w", err)
	}

	if len(project.TeamMemberIDs) > 0 {
		members, err := s.userRepo.GetByIDs(ctx, project.TeamMemberIDs)
		if err != nil {
			return 0, fmt.Errorf("failed to load team members: %w", err)
		}
		snapshot.TeamMembers = members
	}

	if project.TempApproverRecordID != nil {
		record, err := s.tempApproverRepo.GetByID(ctx, *project.TempApproverRecordID)
		if err != nil {
			s.logger.Warn("Delegation record referenced but not loadable",
				zap.String("project_id", projectID.String()),
				zap.Error(err))
		} else {
			snapshot.TempApprover = record
		}
	}

	if !store.Commit(ticket, snapshot) {
		s.logger.Debug("Stale dashboard load dropped",
			zap.String("project_id", projectID.String()),
			zap.Uint64("ticket", ticket))
		return store.Generation(), nil
	}

	s.broadcaster.Publish(dashboard.Event{
		ProjectID:  projectID,
		Generation: store.Generation(),
	})
	return store.Generation(), nil
}

// LoadAll fans a full load out over the given projects. Loads run
// concurrently; one project's failure does not stop the others, and the
// first error is returned after all loads settle.
func (s *DashboardService) LoadAll(ctx context.Context, projectIDs []uuid.UUID) error {
	var wg sync.WaitGroup
	errs := make([]error, len(projectIDs))

	for i, projectID := range projectIDs {
		wg.Add(1)
		go func(i int, projectID uuid.UUID) {
			defer wg.Done()
			if _, err := s.LoadProject(ctx, projectID); err != nil {
				errs[i] = err
			}
		}(i, projectID)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
