package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/prajwal-cubiquitous/Tracura-sub000/internal/dashboard"
	"github.com/prajwal-cubiquitous/Tracura-sub000/internal/domain"
	"github.com/prajwal-cubiquitous/Tracura-sub000/internal/repository"
	"github.com/prajwal-cubiquitous/Tracura-sub000/internal/service"
	"github.com/prajwal-cubiquitous/Tracura-sub000/internal/testutil"
)

func newDashboardService(db *gorm.DB, stores *dashboard.Manager, broadcaster *dashboard.Broadcaster) *service.DashboardService {
	return service.NewDashboardService(
		newAggregatorService(db),
		repository.NewProjectRepository(db),
		repository.NewUserRepository(db),
		repository.NewTempApproverRepository(db),
		stores,
		broadcaster,
		zap.NewNop(),
	)
}

func TestDashboardService_LoadProject(t *testing.T) {
	db := testutil.SetupTestDB(t)
	stores := dashboard.NewManager()
	broadcaster := dashboard.NewBroadcaster()
	svc := newDashboardService(db, stores, broadcaster)
	ctx := context.Background()

	project := testutil.CreateTestProject(t, db, "Feature Film", "user-manager")
	phase := testutil.CreateTestPhase(t, db, project.ID, "Production", 0)
	createDepartmentWithItems(t, db, phase.ID, "Set", 5000)
	createApprovedExpense(t, db, project.ID, &phase.ID, "Set", 2000, false)

	testutil.CreateTestUser(t, db, "user-grip", "Grip One", "MEMBER")
	require.NoError(t, db.Model(project).
		Update("team_member_ids", pq.StringArray{"user-grip"}).Error)

	record := &domain.TempApprover{
		ProjectID:  project.ID,
		ApproverID: "user-grip",
		StartDate:  time.Now().Add(-time.Hour),
		EndDate:    time.Now().Add(time.Hour),
		Status:     domain.TempApproverStatusAccepted,
	}
	require.NoError(t, db.Create(record).Error)
	require.NoError(t, db.Model(project).
		Update("temp_approver_record_id", record.ID).Error)

	events, cancel := broadcaster.Subscribe(4)
	defer cancel()

	generation, err := svc.LoadProject(ctx, project.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, generation)

	store := stores.Get(project.ID)
	require.True(t, store.Loaded())

	snapshot, gen := store.Snapshot()
	assert.Equal(t, generation, gen)
	require.Len(t, snapshot.TeamMembers, 1)
	assert.Equal(t, "user-grip", snapshot.TeamMembers[0].ID)
	require.NotNil(t, snapshot.TempApprover)
	assert.Equal(t, record.ID, snapshot.TempApprover.ID)

	totals := store.ProjectTotals()
	assert.Equal(t, 5000.0, totals.TotalBudget)
	assert.Equal(t, 2000.0, totals.Spent)

	select {
	case event := <-events:
		assert.Equal(t, project.ID, event.ProjectID)
		assert.Equal(t, generation, event.Generation)
	default:
		t.Fatal("expected a dashboard event after the load")
	}
}

func TestDashboardService_LoadProject_FailureLeavesStoreUntouched(t *testing.T) {
	db := testutil.SetupTestDB(t)
	stores := dashboard.NewManager()
	svc := newDashboardService(db, stores, dashboard.NewBroadcaster())
	ctx := context.Background()

	project := testutil.CreateTestProject(t, db, "Feature Film")
	phase := testutil.CreateTestPhase(t, db, project.ID, "Production", 0)
	createDepartmentWithItems(t, db, phase.ID, "Set", 5000)

	_, err := svc.LoadProject(ctx, project.ID)
	require.NoError(t, err)
	store := stores.Get(project.ID)
	snapshotBefore, genBefore := store.Snapshot()

	require.NoError(t, db.Delete(&domain.Project{}, "id = ?", project.ID).Error)

	_, err = svc.LoadProject(ctx, project.ID)
	require.Error(t, err)

	snapshotAfter, genAfter := store.Snapshot()
	assert.Equal(t, genBefore, genAfter)
	assert.Equal(t, snapshotBefore.PhaseBudgets, snapshotAfter.PhaseBudgets)
}

func TestDashboardService_LoadProject_StaleTicketCannotOverwrite(t *testing.T) {
	db := testutil.SetupTestDB(t)
	stores := dashboard.NewManager()
	svc := newDashboardService(db, stores, dashboard.NewBroadcaster())
	ctx := context.Background()

	project := testutil.CreateTestProject(t, db, "Feature Film")
	testutil.CreateTestPhase(t, db, project.ID, "Production", 0)

	// A load that started earlier but finishes after a newer one must
	// not replace the newer snapshot.
	store := stores.Get(project.ID)
	staleTicket := store.BeginLoad()

	generation, err := svc.LoadProject(ctx, project.ID)
	require.NoError(t, err)

	assert.False(t, store.Commit(staleTicket, &domain.BudgetSnapshot{ProjectID: project.ID}))
	assert.Equal(t, generation, store.Generation())
}

func TestDashboardService_LoadAll(t *testing.T) {
	db := testutil.SetupTestDB(t)
	stores := dashboard.NewManager()
	svc := newDashboardService(db, stores, dashboard.NewBroadcaster())
	ctx := context.Background()

	first := testutil.CreateTestProject(t, db, "Feature Film")
	testutil.CreateTestPhase(t, db, first.ID, "Production", 0)
	second := testutil.CreateTestProject(t, db, "Commercial")
	testutil.CreateTestPhase(t, db, second.ID, "Shoot", 0)

	t.Run("loads every project", func(t *testing.T) {
		require.NoError(t, svc.LoadAll(ctx, []uuid.UUID{first.ID, second.ID}))
		assert.True(t, stores.Get(first.ID).Loaded())
		assert.True(t, stores.Get(second.ID).Loaded())
	})

	t.Run("one failure does not stop the others", func(t *testing.T) {
		ghost := uuid.New()
		err := svc.LoadAll(ctx, []uuid.UUID{ghost, first.ID})
		require.Error(t, err)
		assert.True(t, stores.Get(first.ID).Loaded())
	})
}
