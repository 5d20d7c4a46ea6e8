package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/prajwal-cubiquitous/Tracura-sub000/internal/domain"
	"github.com/prajwal-cubiquitous/Tracura-sub000/internal/repository"
	"go.uber.org/zap"
)

// AggregatorService computes department, phase and project budget figures
// from line items and approved expenses.
type AggregatorService struct {
	projectRepo   *repository.ProjectRepository
	phaseRepo     *repository.PhaseRepository
	expenseRepo   *repository.ExpenseRepository
	extensionRepo *repository.ExtensionRequestRepository
	logger        *zap.Logger
}

func NewAggregatorService(
	projectRepo *repository.ProjectRepository,
	phaseRepo *repository.PhaseRepository,
	expenseRepo *repository.ExpenseRepository,
	extensionRepo *repository.ExtensionRequestRepository,
	logger *zap.Logger,
) *AggregatorService {
	return &AggregatorService{
		projectRepo:   projectRepo,
		phaseRepo:     phaseRepo,
		expenseRepo:   expenseRepo,
		extensionRepo: extensionRepo,
		logger:        logger,
	}
}

// expenseBuckets holds a single pass over the project's approved expenses,
// keyed by phase. Expenses without a phase are unattributed and excluded.
type expenseBuckets struct {
	byPhase   map[uuid.UUID][]domain.Expense
	anonymous map[uuid.UUID]float64
}

// LoadProjectBudgets aggregates one project into phase budgets, per
// department spend and anonymous spend. Approved expenses are loaded once
// for the whole project and bucketed by phase, not queried per phase.
//
// A department load failure on one phase falls back to that phase's legacy
// inline budget map and does not abort the other phases.
func (s *AggregatorService) LoadProjectBudgets(ctx context.Context, projectID uuid.UUID) (*domain.BudgetSnapshot, error) {
	project, err := s.projectRepo.GetByIDFull(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to load project: %w", err)
	}

	approved, err := s.expenseRepo.ListApprovedByProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to load approved expenses: %w", err)
	}

	extensions, err := s.extensionRepo.ListByProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to load extension requests: %w", err)
	}
	extensionsByPhase := make(map[uuid.UUID][]domain.PhaseExtensionRequest)
	for _, req := range extensions {
		extensionsByPhase[req.PhaseID] = append(extensionsByPhase[req.PhaseID], req)
	}

	buckets := bucketExpenses(approved)

	snapshot := &domain.BudgetSnapshot{
		ProjectID:       projectID,
		Phases:          project.Phases,
		PhaseEnabled:    make(map[uuid.UUID]bool, len(project.Phases)),
		PhaseBudgets:    make(map[uuid.UUID]domain.PhaseBudget, len(project.Phases)),
		DepartmentSpent: make(map[uuid.UUID]map[string]float64, len(project.Phases)),
		AnonymousSpent:  buckets.anonymous,
		PhaseExtended:   make(map[uuid.UUID]bool, len(project.Phases)),
	}

	for i := range project.Phases {
		phase := &project.Phases[i]
		snapshot.PhaseEnabled[phase.ID] = phase.Enabled
		snapshot.PhaseExtended[phase.ID] = domain.IsPhaseExtended(phase, extensionsByPhase[phase.ID])

		budget, deptSpent := s.aggregatePhase(ctx, phase, buckets)
		snapshot.PhaseBudgets[phase.ID] = budget
		snapshot.DepartmentSpent[phase.ID] = deptSpent
	}

	return snapshot, nil
}

// aggregatePhase computes one phase's total budget and spend split. The
// normalized department sub-collection wins when populated; an empty or
// unreadable one falls back to the legacy inline budget map. Exactly one
// representation is counted.
func (s *AggregatorService) aggregatePhase(ctx context.Context, phase *domain.Phase, buckets expenseBuckets) (domain.PhaseBudget, map[string]float64) {
	departments := phase.Departments
	if len(departments) == 0 {
		// Preload may have been skipped by the caller; retry directly
		// before reaching for the legacy map.
		loaded, err := s.phaseRepo.GetByIDWithDepartments(ctx, phase.ID)
		if err != nil {
			s.logger.Warn("Department load failed, using legacy budget map",
				zap.String("phase_id", phase.ID.String()),
				zap.Error(err))
		} else {
			departments = loaded.Departments
		}
	}

	var budget domain.PhaseBudget
	deptSpent := make(map[string]float64)

	if len(departments) > 0 {
		for i := range departments {
			dept := &departments[i]
			budget.TotalBudget = domain.SumAmounts(budget.TotalBudget, domain.DepartmentBudget(dept.LineItems))
			deptSpent[dept.Name] = 0
		}
		for _, exp := range buckets.byPhase[phase.ID] {
			name := matchDepartment(phase.ID, departments, exp.Department)
			if name == "" {
				// The expense's department no longer exists on this
				// phase; count it with the anonymous bucket.
				buckets.anonymous[phase.ID] = domain.SumAmounts(buckets.anonymous[phase.ID], exp.Amount)
				continue
			}
			deptSpent[name] = domain.SumAmounts(deptSpent[name], exp.Amount)
		}
	} else {
		names := legacyBudgets(phase, &budget)
		for _, exp := range buckets.byPhase[phase.ID] {
			name, ok := names[strings.ToLower(domain.DepartmentNameFromKey(exp.Department))]
			if !ok {
				buckets.anonymous[phase.ID] = domain.SumAmounts(buckets.anonymous[phase.ID], exp.Amount)
				continue
			}
			deptSpent[name] = domain.SumAmounts(deptSpent[name], exp.Amount)
		}
	}

	// Phase spent covers everything approved against the phase, the
	// anonymous bucket included; only the department split excludes it.
	for _, amount := range deptSpent {
		budget.Spent = domain.SumAmounts(budget.Spent, amount)
	}
	budget.Spent = domain.SumAmounts(budget.Spent, buckets.anonymous[phase.ID])

	return budget, deptSpent
}

// legacyBudgets folds the phase's inline budget map into the running total
// and returns a lowercased name index for expense matching.
func legacyBudgets(phase *domain.Phase, budget *domain.PhaseBudget) map[string]string {
	names := make(map[string]string)
	if phase.LegacyBudgets == "" {
		return names
	}

	var legacy map[string]float64
	if err := json.Unmarshal([]byte(phase.LegacyBudgets), &legacy); err != nil {
		return names
	}
	for key, amount := range legacy {
		name := domain.DepartmentNameFromKey(key)
		names[strings.ToLower(name)] = name
		budget.TotalBudget = domain.SumAmounts(budget.TotalBudget, amount)
	}
	return names
}

// bucketExpenses splits approved expenses by phase, separating anonymous
// spend. Expenses without a phase id are unattributed and dropped from
// phase aggregates.
func bucketExpenses(approved []domain.Expense) expenseBuckets {
	buckets := expenseBuckets{
		byPhase:   make(map[uuid.UUID][]domain.Expense),
		anonymous: make(map[uuid.UUID]float64),
	}
	for _, exp := range approved {
		if exp.PhaseID == nil {
			continue
		}
		phaseID := *exp.PhaseID
		if exp.IsAnonymous {
			buckets.anonymous[phaseID] = domain.SumAmounts(buckets.anonymous[phaseID], exp.Amount)
			continue
		}
		buckets.byPhase[phaseID] = append(buckets.byPhase[phaseID], exp)
	}
	return buckets
}

// matchDepartment resolves an expense's raw department key against the
// phase's departments, tolerating both the bare-name and prefixed formats.
func matchDepartment(phaseID uuid.UUID, departments []domain.Department, rawKey string) string {
	for i := range departments {
		if domain.DepartmentKeyMatches(phaseID, departments[i].Name, rawKey) {
			return departments[i].Name
		}
	}
	return ""
}
