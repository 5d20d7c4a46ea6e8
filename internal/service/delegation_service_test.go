package service_test

import (
	"testing"
	"time"

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

func newDelegationService(db *gorm.DB) *service.DelegationService {
	return service.NewDelegationService(
		repository.NewTempApproverRepository(db),
		repository.NewProjectRepository(db),
		dashboard.NewManager(),
		zap.NewNop(),
	)
}

func TestDelegationService_Delegate(t *testing.T) {
	start := time.Now().Add(24 * time.Hour)
	end := time.Now().Add(72 * time.Hour)

	t.Run("manager delegates, project points at fresh pending record", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := newDelegationService(db)
		project := testutil.CreateTestProject(t, db, "Delegation Project", "user-manager")
		ctx := testutil.ContextWithUser("user-manager", domain.RoleManager)

		record, err := svc.Delegate(ctx, project.ID, domain.DelegateRequest{
			ApproverID: "user-delegate",
			StartDate:  start,
			EndDate:    end,
		})
		require.NoError(t, err)
		assert.Equal(t, domain.TempApproverStatusPending, record.Status)
		assert.Equal(t, "user-delegate", record.ApproverID)

		var persisted domain.Project
		require.NoError(t, db.First(&persisted, "id = ?", project.ID).Error)
		require.NotNil(t, persisted.TempApproverUserID)
		assert.Equal(t, "user-delegate", *persisted.TempApproverUserID)
		require.NotNil(t, persisted.TempApproverRecordID)
		assert.Equal(t, record.ID, *persisted.TempApproverRecordID)
	})

	t.Run("re-delegation supersedes the old record", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := newDelegationService(db)
		project := testutil.CreateTestProject(t, db, "Supersede Project", "user-manager")
		ctx := testutil.ContextWithUser("user-manager", domain.RoleManager)

		first, err := svc.Delegate(ctx, project.ID, domain.DelegateRequest{
			ApproverID: "user-first",
			StartDate:  start,
			EndDate:    end,
		})
		require.NoError(t, err)

		second, err := svc.Delegate(ctx, project.ID, domain.DelegateRequest{
			ApproverID: "user-second",
			StartDate:  start,
			EndDate:    end,
		})
		require.NoError(t, err)
		assert.NotEqual(t, first.ID, second.ID, "supersession creates a fresh record, never edits in place")

		var old domain.TempApprover
		require.NoError(t, db.First(&old, "id = ?", first.ID).Error)
		assert.Equal(t, domain.TempApproverStatusExpired, old.Status)

		var persisted domain.Project
		require.NoError(t, db.First(&persisted, "id = ?", project.ID).Error)
		assert.Equal(t, second.ID, *persisted.TempApproverRecordID)

		// History keeps both records
		history, err := svc.ListByProject(ctx, project.ID)
		require.NoError(t, err)
		assert.Len(t, history, 2)
	})

	t.Run("window must run forward", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := newDelegationService(db)
		project := testutil.CreateTestProject(t, db, "Bad Window Project", "user-manager")
		ctx := testutil.ContextWithUser("user-manager", domain.RoleManager)

		_, err := svc.Delegate(ctx, project.ID, domain.DelegateRequest{
			ApproverID: "user-delegate",
			StartDate:  end,
			EndDate:    start,
		})
		assert.ErrorIs(t, err, service.ErrInvalidInput)
	})

	t.Run("non-manager may not delegate", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := newDelegationService(db)
		project := testutil.CreateTestProject(t, db, "No Authority Project", "user-manager")
		ctx := testutil.ContextWithUser("user-member", domain.RoleMember)

		_, err := svc.Delegate(ctx, project.ID, domain.DelegateRequest{
			ApproverID: "user-delegate",
			StartDate:  start,
			EndDate:    end,
		})
		assert.ErrorIs(t, err, service.ErrPermissionDenied)
	})
}

func TestDelegationService_SaveDetails(t *testing.T) {
	start := time.Now().Add(24 * time.Hour)
	end := time.Now().Add(72 * time.Hour)

	t.Run("editing the window resets status to pending", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := newDelegationService(db)
		project := testutil.CreateTestProject(t, db, "Edit Project", "user-manager")
		managerCtx := testutil.ContextWithUser("user-manager", domain.RoleManager)

		record, err := svc.Delegate(managerCtx, project.ID, domain.DelegateRequest{
			ApproverID: "user-delegate",
			StartDate:  start,
			EndDate:    end,
		})
		require.NoError(t, err)

		delegateCtx := testutil.ContextWithUser("user-delegate", domain.RoleMember)
		_, err = svc.Decide(delegateCtx, record.ID, domain.DelegationDecisionRequest{Decision: "accepted"})
		require.NoError(t, err)

		updated, err := svc.SaveDetails(managerCtx, record.ID, domain.DelegateDetailsRequest{
			StartDate: start.Add(24 * time.Hour),
			EndDate:   end.Add(24 * time.Hour),
		})
		require.NoError(t, err)
		assert.Equal(t, domain.TempApproverStatusPending, updated.Status,
			"the delegate must re-accept the changed window")
	})

	t.Run("expired record cannot be edited", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := newDelegationService(db)
		project := testutil.CreateTestProject(t, db, "Expired Edit Project", "user-manager")
		managerCtx := testutil.ContextWithUser("user-manager", domain.RoleManager)

		record := &domain.TempApprover{
			ProjectID:  project.ID,
			ApproverID: "user-delegate",
			StartDate:  start,
			EndDate:    end,
			Status:     domain.TempApproverStatusExpired,
		}
		require.NoError(t, db.Create(record).Error)

		_, err := svc.SaveDetails(managerCtx, record.ID, domain.DelegateDetailsRequest{
			StartDate: start,
			EndDate:   end,
		})
		assert.ErrorIs(t, err, service.ErrConflict)
	})
}

func TestDelegationService_Decide(t *testing.T) {
	start := time.Now().Add(24 * time.Hour)
	end := time.Now().Add(72 * time.Hour)

	setup := func(t *testing.T) (*gorm.DB, *service.DelegationService, *domain.TempApprover) {
		db := testutil.SetupTestDB(t)
		svc := newDelegationService(db)
		project := testutil.CreateTestProject(t, db, "Decide Delegation Project", "user-manager")
		managerCtx := testutil.ContextWithUser("user-manager", domain.RoleManager)
		record, err := svc.Delegate(managerCtx, project.ID, domain.DelegateRequest{
			ApproverID: "user-delegate",
			StartDate:  start,
			EndDate:    end,
		})
		require.NoError(t, err)
		return db, svc, record
	}

	t.Run("nominated delegate accepts", func(t *testing.T) {
		_, svc, record := setup(t)
		ctx := testutil.ContextWithUser("user-delegate", domain.RoleMember)

		decided, err := svc.Decide(ctx, record.ID, domain.DelegationDecisionRequest{Decision: "accepted"})
		require.NoError(t, err)
		assert.Equal(t, domain.TempApproverStatusAccepted, decided.Status)
	})

	t.Run("only the nominated delegate may decide", func(t *testing.T) {
		_, svc, record := setup(t)
		ctx := testutil.ContextWithUser("user-somebody", domain.RoleManager)

		_, err := svc.Decide(ctx, record.ID, domain.DelegationDecisionRequest{Decision: "accepted"})
		assert.ErrorIs(t, err, service.ErrPermissionDenied)
	})

	t.Run("deciding twice conflicts", func(t *testing.T) {
		_, svc, record := setup(t)
		ctx := testutil.ContextWithUser("user-delegate", domain.RoleMember)

		_, err := svc.Decide(ctx, record.ID, domain.DelegationDecisionRequest{Decision: "rejected"})
		require.NoError(t, err)
		_, err = svc.Decide(ctx, record.ID, domain.DelegationDecisionRequest{Decision: "accepted"})
		assert.ErrorIs(t, err, service.ErrConflict)
	})
}

func TestDelegationService_Details(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newDelegationService(db)
	project := testutil.CreateTestProject(t, db, "Details Project", "user-manager")

	// Accepted record whose window is currently open: stored status stays
	// accepted, display status derives active.
	record := &domain.TempApprover{
		ProjectID:  project.ID,
		ApproverID: "user-delegate",
		StartDate:  time.Now().Add(-time.Hour),
		EndDate:    time.Now().Add(time.Hour),
		Status:     domain.TempApproverStatusAccepted,
	}
	require.NoError(t, db.Create(record).Error)

	ctx := testutil.ContextWithUser("user-manager", domain.RoleManager)
	loaded, display, err := svc.Details(ctx, record.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TempApproverStatusAccepted, loaded.Status)
	assert.Equal(t, domain.TempApproverStatusActive, display)
}
