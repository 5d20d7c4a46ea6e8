package service_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/prajwal-cubiquitous/Tracura-sub000/internal/domain"
	"github.com/prajwal-cubiquitous/Tracura-sub000/internal/repository"
	"github.com/prajwal-cubiquitous/Tracura-sub000/internal/service"
	"github.com/prajwal-cubiquitous/Tracura-sub000/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newAggregatorService(db *gorm.DB) *service.AggregatorService {
	logger := zap.NewNop()
	return service.NewAggregatorService(
		repository.NewProjectRepository(db),
		repository.NewPhaseRepository(db),
		repository.NewExpenseRepository(db),
		repository.NewExtensionRequestRepository(db),
		logger,
	)
}

func createDepartmentWithItems(t *testing.T, db *gorm.DB, phaseID uuid.UUID, name string, itemTotals ...float64) *domain.Department {
	dept := &domain.Department{
		PhaseID: phaseID,
		Name:    name,
		Mode:    domain.ContractorModeLabourOnly,
	}
	require.NoError(t, db.Create(dept).Error)
	for i, total := range itemTotals {
		item := &domain.LineItem{
			DepartmentID: dept.ID,
			ItemType:     "Material",
			Name:         "Item",
			Quantity:     1,
			Unit:         "pcs",
			UnitPrice:    total,
			DisplayOrder: i,
		}
		require.NoError(t, db.Create(item).Error)
	}
	return dept
}

func createApprovedExpense(t *testing.T, db *gorm.DB, projectID uuid.UUID, phaseID *uuid.UUID, department string, amount float64, anonymous bool) *domain.Expense {
	expense := &domain.Expense{
		TenantID:      testutil.TestTenant,
		ProjectID:     projectID,
		PhaseID:       phaseID,
		Department:    department,
		Amount:        amount,
		Status:        domain.ExpenseStatusApproved,
		IsAnonymous:   anonymous,
		SubmittedByID: "user-submitter",
	}
	if anonymous {
		expense.OriginalDepartment = department
	}
	require.NoError(t, db.Create(expense).Error)
	return expense
}

func TestAggregatorService_LoadProjectBudgets(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newAggregatorService(db)
	ctx := testutil.ContextWithUser("user-manager", domain.RoleManager)

	project := testutil.CreateTestProject(t, db, "Feature Film", "user-manager")
	phase := testutil.CreateTestPhase(t, db, project.ID, "Pre-Production", 0)

	createDepartmentWithItems(t, db, phase.ID, "Set", 5000)
	createDepartmentWithItems(t, db, phase.ID, "Costume", 3000)

	createApprovedExpense(t, db, project.ID, &phase.ID, "Set", 2000, false)
	createApprovedExpense(t, db, project.ID, &phase.ID, "Costume", 1000, false)
	createApprovedExpense(t, db, project.ID, &phase.ID, "Demolished", 500, true)

	snapshot, err := svc.LoadProjectBudgets(ctx, project.ID)
	require.NoError(t, err)

	pb := snapshot.PhaseBudgets[phase.ID]
	assert.Equal(t, float64(8000), pb.TotalBudget)
	assert.Equal(t, float64(3500), pb.Spent, "phase spend includes the anonymous bucket")
	assert.Equal(t, float64(4500), pb.Remaining())

	deptSpent := snapshot.DepartmentSpent[phase.ID]
	assert.Equal(t, float64(2000), deptSpent["Set"])
	assert.Equal(t, float64(1000), deptSpent["Costume"])
	assert.Equal(t, float64(500), snapshot.AnonymousSpent[phase.ID],
		"anonymous spend is excluded from the department split")

	assert.True(t, snapshot.PhaseEnabled[phase.ID])
	assert.False(t, snapshot.PhaseExtended[phase.ID])
}

func TestAggregatorService_BothDepartmentKeyFormats(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newAggregatorService(db)
	ctx := testutil.ContextWithUser("user-manager", domain.RoleManager)

	project := testutil.CreateTestProject(t, db, "Key Format Project", "user-manager")
	phase := testutil.CreateTestPhase(t, db, project.ID, "Shoot", 0)
	createDepartmentWithItems(t, db, phase.ID, "Set", 10000)

	// Bare name (old clients) and prefixed key (new clients) hit the
	// same bucket.
	createApprovedExpense(t, db, project.ID, &phase.ID, "Set", 600, false)
	createApprovedExpense(t, db, project.ID, &phase.ID, phase.ID.String()+"_Set", 400, false)

	snapshot, err := svc.LoadProjectBudgets(ctx, project.ID)
	require.NoError(t, err)

	assert.Equal(t, float64(1000), snapshot.DepartmentSpent[phase.ID]["Set"])
	assert.Equal(t, float64(1000), snapshot.PhaseBudgets[phase.ID].Spent)
}

func TestAggregatorService_UnmatchedDepartmentFallsToAnonymous(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newAggregatorService(db)
	ctx := testutil.ContextWithUser("user-manager", domain.RoleManager)

	project := testutil.CreateTestProject(t, db, "Orphan Expense Project", "user-manager")
	phase := testutil.CreateTestPhase(t, db, project.ID, "Wrap", 0)
	createDepartmentWithItems(t, db, phase.ID, "Set", 1000)

	createApprovedExpense(t, db, project.ID, &phase.ID, "Deleted Dept", 250, false)

	snapshot, err := svc.LoadProjectBudgets(ctx, project.ID)
	require.NoError(t, err)

	assert.Equal(t, float64(250), snapshot.AnonymousSpent[phase.ID])
	assert.Equal(t, float64(250), snapshot.PhaseBudgets[phase.ID].Spent)
	assert.Zero(t, snapshot.DepartmentSpent[phase.ID]["Set"])
}

func TestAggregatorService_LegacyBudgetFallback(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newAggregatorService(db)
	ctx := testutil.ContextWithUser("user-manager", domain.RoleManager)

	project := testutil.CreateTestProject(t, db, "Legacy Project", "user-manager")

	// Phase predating department normalization: no department rows, only
	// the inline budget map.
	phase := &domain.Phase{
		ProjectID:     project.ID,
		Name:          "Old Phase",
		Enabled:       true,
		LegacyBudgets: `{"Set": 4000, "Costume": 2000}`,
	}
	require.NoError(t, db.Create(phase).Error)

	createApprovedExpense(t, db, project.ID, &phase.ID, "set", 750, false)

	snapshot, err := svc.LoadProjectBudgets(ctx, project.ID)
	require.NoError(t, err)

	pb := snapshot.PhaseBudgets[phase.ID]
	assert.Equal(t, float64(6000), pb.TotalBudget, "legacy map is the budget source, counted once")
	assert.Equal(t, float64(750), pb.Spent)
	assert.Equal(t, float64(750), snapshot.DepartmentSpent[phase.ID]["Set"],
		"legacy matching is case-insensitive on the bare name")
}

func TestAggregatorService_ExpenseWithoutPhaseIsUnattributed(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newAggregatorService(db)
	ctx := testutil.ContextWithUser("user-manager", domain.RoleManager)

	project := testutil.CreateTestProject(t, db, "Unattributed Project", "user-manager")
	phase := testutil.CreateTestPhase(t, db, project.ID, "Only Phase", 0)
	createDepartmentWithItems(t, db, phase.ID, "Set", 1000)

	createApprovedExpense(t, db, project.ID, nil, "Set", 999, false)

	snapshot, err := svc.LoadProjectBudgets(ctx, project.ID)
	require.NoError(t, err)
	assert.Zero(t, snapshot.PhaseBudgets[phase.ID].Spent)
}

func TestAggregatorService_PendingExpensesNotCounted(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newAggregatorService(db)
	ctx := testutil.ContextWithUser("user-manager", domain.RoleManager)

	project := testutil.CreateTestProject(t, db, "Pending Project", "user-manager")
	phase := testutil.CreateTestPhase(t, db, project.ID, "Only Phase", 0)
	createDepartmentWithItems(t, db, phase.ID, "Set", 1000)

	pending := &domain.Expense{
		TenantID:      testutil.TestTenant,
		ProjectID:     project.ID,
		PhaseID:       &phase.ID,
		Department:    "Set",
		Amount:        400,
		Status:        domain.ExpenseStatusPending,
		SubmittedByID: "user-submitter",
	}
	require.NoError(t, db.Create(pending).Error)

	snapshot, err := svc.LoadProjectBudgets(ctx, project.ID)
	require.NoError(t, err)
	assert.Zero(t, snapshot.PhaseBudgets[phase.ID].Spent)
}

func TestAggregatorService_ExtendedFlagDerivedFromAcceptedRequest(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newAggregatorService(db)
	ctx := testutil.ContextWithUser("user-manager", domain.RoleManager)

	project := testutil.CreateTestProject(t, db, "Extended Project", "user-manager")
	endDate := "30/09/2026"
	phase := &domain.Phase{
		ProjectID: project.ID,
		Name:      "Principal Photography",
		Enabled:   true,
		EndDate:   &endDate,
	}
	require.NoError(t, db.Create(phase).Error)

	request := &domain.PhaseExtensionRequest{
		PhaseID:      phase.ID,
		ProjectID:    project.ID,
		ExtendedDate: endDate,
		RequesterID:  "user-manager",
		Status:       domain.ExtensionStatusAccepted,
		PhaseSynced:  true,
	}
	require.NoError(t, db.Create(request).Error)

	snapshot, err := svc.LoadProjectBudgets(ctx, project.ID)
	require.NoError(t, err)
	assert.True(t, snapshot.PhaseExtended[phase.ID])
}
