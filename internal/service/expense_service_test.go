package service_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prajwal-cubiquitous/Tracura-sub000/internal/dashboard"
	"github.com/prajwal-cubiquitous/Tracura-sub000/internal/domain"
	"github.com/prajwal-cubiquitous/Tracura-sub000/internal/repository"
	"github.com/prajwal-cubiquitous/Tracura-sub000/internal/service"
	"github.com/prajwal-cubiquitous/Tracura-sub000/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newExpenseService(db *gorm.DB, stores *dashboard.Manager) *service.ExpenseService {
	return service.NewExpenseService(
		repository.NewExpenseRepository(db),
		repository.NewProjectRepository(db),
		repository.NewTempApproverRepository(db),
		stores,
		dashboard.NewBroadcaster(),
		zap.NewNop(),
	)
}

func createPendingExpense(t *testing.T, db *gorm.DB, projectID uuid.UUID, phaseID *uuid.UUID, amount float64) *domain.Expense {
	expense := &domain.Expense{
		TenantID:      testutil.TestTenant,
		ProjectID:     projectID,
		PhaseID:       phaseID,
		Department:    "Set",
		Amount:        amount,
		Status:        domain.ExpenseStatusPending,
		SubmittedByID: "user-submitter",
	}
	require.NoError(t, db.Create(expense).Error)
	return expense
}

func TestExpenseService_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newExpenseService(db, dashboard.NewManager())
	project := testutil.CreateTestProject(t, db, "Expense Project", "user-manager")
	ctx := testutil.ContextWithUser("user-member", domain.RoleMember)

	t.Run("creates pending expense", func(t *testing.T) {
		expense, err := svc.Create(ctx, project.ID, domain.CreateExpenseRequest{
			Department: " Set ",
			Amount:     "1500.50",
			Remark:     "catering",
		})
		require.NoError(t, err)
		assert.Equal(t, domain.ExpenseStatusPending, expense.Status)
		assert.Equal(t, float64(1500.50), expense.Amount)
		assert.Equal(t, "Set", expense.Department)
		assert.Equal(t, "user-member", expense.SubmittedByID)
	})

	t.Run("rejects negative amount", func(t *testing.T) {
		_, err := svc.Create(ctx, project.ID, domain.CreateExpenseRequest{Amount: "-5"})
		assert.ErrorIs(t, err, service.ErrInvalidInput)
	})

	t.Run("rejects malformed amount", func(t *testing.T) {
		_, err := svc.Create(ctx, project.ID, domain.CreateExpenseRequest{Amount: "abc"})
		assert.ErrorIs(t, err, service.ErrInvalidInput)
	})

	t.Run("unknown project", func(t *testing.T) {
		_, err := svc.Create(ctx, uuid.New(), domain.CreateExpenseRequest{Amount: "10"})
		assert.ErrorIs(t, err, service.ErrNotFound)
	})

	t.Run("suspended project blocks submission", func(t *testing.T) {
		suspended := testutil.CreateTestProject(t, db, "Suspended Project", "user-manager")
		require.NoError(t, db.Model(suspended).Update("suspended", true).Error)

		_, err := svc.Create(ctx, suspended.ID, domain.CreateExpenseRequest{Amount: "10"})
		assert.ErrorIs(t, err, service.ErrProjectSuspended)
	})
}

func TestExpenseService_Decide(t *testing.T) {
	t.Run("manager approves and store is updated after the write", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		stores := dashboard.NewManager()
		svc := newExpenseService(db, stores)

		project := testutil.CreateTestProject(t, db, "Decide Project", "user-manager")
		phase := testutil.CreateTestPhase(t, db, project.ID, "Shoot", 0)
		dept := &domain.Department{PhaseID: phase.ID, Name: "Set", Mode: domain.ContractorModeLabourOnly}
		require.NoError(t, db.Create(dept).Error)
		expense := createPendingExpense(t, db, project.ID, &phase.ID, 2000)

		// Preloaded store so the reducer path is exercised
		store := stores.Get(project.ID)
		phaseCopy := *phase
		phaseCopy.Departments = []domain.Department{*dept}
		snap := &domain.BudgetSnapshot{
			ProjectID:       project.ID,
			Phases:          []domain.Phase{phaseCopy},
			PhaseEnabled:    map[uuid.UUID]bool{phase.ID: true},
			PhaseBudgets:    map[uuid.UUID]domain.PhaseBudget{phase.ID: {TotalBudget: 8000}},
			DepartmentSpent: map[uuid.UUID]map[string]float64{},
			AnonymousSpent:  map[uuid.UUID]float64{},
			PhaseExtended:   map[uuid.UUID]bool{},
		}
		require.True(t, store.Commit(store.BeginLoad(), snap))

		ctx := testutil.ContextWithUser("user-manager", domain.RoleManager)
		decided, err := svc.Decide(ctx, expense.ID, domain.ExpenseDecisionRequest{
			Decision: "APPROVED",
			Remark:   "looks right",
		})
		require.NoError(t, err)
		assert.Equal(t, domain.ExpenseStatusApproved, decided.Status)
		assert.Equal(t, "user-manager", decided.ApprovedByID)
		assert.NotNil(t, decided.ApprovedAt)

		var persisted domain.Expense
		require.NoError(t, db.First(&persisted, "id = ?", expense.ID).Error)
		assert.Equal(t, domain.ExpenseStatusApproved, persisted.Status)

		pb, ok := store.PhaseBudget(phase.ID)
		require.True(t, ok)
		assert.Equal(t, float64(2000), pb.Spent)
	})

	t.Run("deciding a decided expense conflicts", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := newExpenseService(db, dashboard.NewManager())
		project := testutil.CreateTestProject(t, db, "Terminal Project", "user-manager")
		expense := createPendingExpense(t, db, project.ID, nil, 100)

		ctx := testutil.ContextWithUser("user-manager", domain.RoleManager)
		_, err := svc.Decide(ctx, expense.ID, domain.ExpenseDecisionRequest{Decision: "REJECTED"})
		require.NoError(t, err)

		// Same decision again, and the opposite one, both conflict
		_, err = svc.Decide(ctx, expense.ID, domain.ExpenseDecisionRequest{Decision: "REJECTED"})
		assert.ErrorIs(t, err, service.ErrConflict)
		_, err = svc.Decide(ctx, expense.ID, domain.ExpenseDecisionRequest{Decision: "APPROVED"})
		assert.ErrorIs(t, err, service.ErrConflict)
	})

	t.Run("non-manager without delegation reads as not found", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := newExpenseService(db, dashboard.NewManager())
		project := testutil.CreateTestProject(t, db, "Denied Project", "user-manager")
		expense := createPendingExpense(t, db, project.ID, nil, 100)

		// Same answer as for a nonexistent expense; the error must not
		// reveal expenses on projects the caller may not act on.
		ctx := testutil.ContextWithUser("user-outsider", domain.RoleMember)
		_, err := svc.Decide(ctx, expense.ID, domain.ExpenseDecisionRequest{Decision: "APPROVED"})
		assert.ErrorIs(t, err, service.ErrNotFound)
	})

	t.Run("decided expense outside the caller's authority stays hidden", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := newExpenseService(db, dashboard.NewManager())
		project := testutil.CreateTestProject(t, db, "Hidden Project", "user-manager")
		expense := createPendingExpense(t, db, project.ID, nil, 100)

		managerCtx := testutil.ContextWithUser("user-manager", domain.RoleManager)
		_, err := svc.Decide(managerCtx, expense.ID, domain.ExpenseDecisionRequest{Decision: "APPROVED"})
		require.NoError(t, err)

		// An outsider gets not-found, not the conflict a manager would see.
		ctx := testutil.ContextWithUser("user-outsider", domain.RoleMember)
		_, err = svc.Decide(ctx, expense.ID, domain.ExpenseDecisionRequest{Decision: "REJECTED"})
		assert.ErrorIs(t, err, service.ErrNotFound)
	})

	t.Run("admin override fills remark only when none given", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := newExpenseService(db, dashboard.NewManager())
		project := testutil.CreateTestProject(t, db, "Admin Project", "user-manager")
		ctx := testutil.ContextWithUser("user-admin", domain.RoleAdmin)

		first := createPendingExpense(t, db, project.ID, nil, 100)
		decided, err := svc.Decide(ctx, first.ID, domain.ExpenseDecisionRequest{Decision: "APPROVED"})
		require.NoError(t, err)
		assert.Equal(t, "Admin approved", decided.Remark)

		second := createPendingExpense(t, db, project.ID, nil, 100)
		decided, err = svc.Decide(ctx, second.ID, domain.ExpenseDecisionRequest{Decision: "REJECTED"})
		require.NoError(t, err)
		assert.Equal(t, "Admin Rejected", decided.Remark)

		third := createPendingExpense(t, db, project.ID, nil, 100)
		decided, err = svc.Decide(ctx, third.ID, domain.ExpenseDecisionRequest{
			Decision: "APPROVED",
			Remark:   "double-checked the invoice",
		})
		require.NoError(t, err)
		assert.Equal(t, "double-checked the invoice", decided.Remark,
			"a supplied remark must not be overwritten")
	})

	t.Run("active delegate may decide", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := newExpenseService(db, dashboard.NewManager())
		project := testutil.CreateTestProject(t, db, "Delegate Project", "user-manager")

		record := &domain.TempApprover{
			ProjectID:  project.ID,
			ApproverID: "user-delegate",
			StartDate:  time.Now().Add(-time.Hour),
			EndDate:    time.Now().Add(time.Hour),
			Status:     domain.TempApproverStatusAccepted,
		}
		require.NoError(t, db.Create(record).Error)
		require.NoError(t, db.Model(project).Updates(map[string]interface{}{
			"temp_approver_user_id":   record.ApproverID,
			"temp_approver_record_id": record.ID,
		}).Error)

		expense := createPendingExpense(t, db, project.ID, nil, 100)
		ctx := testutil.ContextWithUser("user-delegate", domain.RoleMember)
		decided, err := svc.Decide(ctx, expense.ID, domain.ExpenseDecisionRequest{Decision: "APPROVED", Remark: "ok"})
		require.NoError(t, err)
		assert.Equal(t, domain.ExpenseStatusApproved, decided.Status)
	})

	t.Run("delegate outside window is denied", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := newExpenseService(db, dashboard.NewManager())
		project := testutil.CreateTestProject(t, db, "Lapsed Delegate Project", "user-manager")

		record := &domain.TempApprover{
			ProjectID:  project.ID,
			ApproverID: "user-delegate",
			StartDate:  time.Now().Add(-48 * time.Hour),
			EndDate:    time.Now().Add(-24 * time.Hour),
			Status:     domain.TempApproverStatusAccepted,
		}
		require.NoError(t, db.Create(record).Error)
		require.NoError(t, db.Model(project).Updates(map[string]interface{}{
			"temp_approver_user_id":   record.ApproverID,
			"temp_approver_record_id": record.ID,
		}).Error)

		expense := createPendingExpense(t, db, project.ID, nil, 100)
		ctx := testutil.ContextWithUser("user-delegate", domain.RoleMember)
		_, err := svc.Decide(ctx, expense.ID, domain.ExpenseDecisionRequest{Decision: "APPROVED"})
		assert.ErrorIs(t, err, service.ErrNotFound)
	})

	t.Run("rejection does not touch spend figures", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		stores := dashboard.NewManager()
		svc := newExpenseService(db, stores)

		project := testutil.CreateTestProject(t, db, "Reject Project", "user-manager")
		phase := testutil.CreateTestPhase(t, db, project.ID, "Shoot", 0)
		expense := createPendingExpense(t, db, project.ID, &phase.ID, 500)

		store := stores.Get(project.ID)
		snap := &domain.BudgetSnapshot{
			ProjectID:       project.ID,
			PhaseEnabled:    map[uuid.UUID]bool{phase.ID: true},
			PhaseBudgets:    map[uuid.UUID]domain.PhaseBudget{phase.ID: {TotalBudget: 1000}},
			DepartmentSpent: map[uuid.UUID]map[string]float64{},
			AnonymousSpent:  map[uuid.UUID]float64{},
			PhaseExtended:   map[uuid.UUID]bool{},
		}
		require.True(t, store.Commit(store.BeginLoad(), snap))

		ctx := testutil.ContextWithUser("user-manager", domain.RoleManager)
		_, err := svc.Decide(ctx, expense.ID, domain.ExpenseDecisionRequest{Decision: "REJECTED", Remark: "no"})
		require.NoError(t, err)

		pb, _ := store.PhaseBudget(phase.ID)
		assert.Zero(t, pb.Spent)
	})
}
