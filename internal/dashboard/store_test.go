package dashboard_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/prajwal-cubiquitous/Tracura-sub000/internal/dashboard"
	"github.com/prajwal-cubiquitous/Tracura-sub000/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSnapshot(projectID uuid.UUID, phases ...domain.Phase) *domain.BudgetSnapshot {
	snap := &domain.BudgetSnapshot{
		ProjectID:       projectID,
		Phases:          phases,
		PhaseEnabled:    make(map[uuid.UUID]bool),
		PhaseBudgets:    make(map[uuid.UUID]domain.PhaseBudget),
		DepartmentSpent: make(map[uuid.UUID]map[string]float64),
		AnonymousSpent:  make(map[uuid.UUID]float64),
		PhaseExtended:   make(map[uuid.UUID]bool),
	}
	for _, p := range phases {
		snap.PhaseEnabled[p.ID] = p.Enabled
	}
	return snap
}

func TestStore_CommitAndGeneration(t *testing.T) {
	projectID := uuid.New()
	store := dashboard.NewStore(projectID)

	assert.False(t, store.Loaded())
	assert.Equal(t, uint64(0), store.Generation())

	ticket := store.BeginLoad()
	require.True(t, store.Commit(ticket, newSnapshot(projectID)))
	assert.True(t, store.Loaded())
	assert.Equal(t, uint64(1), store.Generation())
}

func TestStore_StaleLoadDropped(t *testing.T) {
	projectID := uuid.New()
	store := dashboard.NewStore(projectID)

	// Two loads race; the older ticket finishes last
	oldTicket := store.BeginLoad()
	newTicket := store.BeginLoad()

	require.True(t, store.Commit(newTicket, newSnapshot(projectID)))
	genAfterNew := store.Generation()

	assert.False(t, store.Commit(oldTicket, newSnapshot(projectID)))
	assert.Equal(t, genAfterNew, store.Generation(), "stale commit must not bump generation")
}

func TestStore_ReducerDoesNotInvalidateLoadTickets(t *testing.T) {
	projectID := uuid.New()
	phaseID := uuid.New()
	store := dashboard.NewStore(projectID)

	ticket := store.BeginLoad()
	require.True(t, store.Commit(ticket, newSnapshot(projectID)))

	// Incremental updates bump the generation but must not consume
	// load tickets
	store.SetPhaseEnabled(phaseID, false)
	store.SetPhaseEnabled(phaseID, true)

	next := store.BeginLoad()
	assert.True(t, store.Commit(next, newSnapshot(projectID)))
}

func TestStore_ApplyApprovedExpense(t *testing.T) {
	projectID := uuid.New()
	phaseID := uuid.New()

	phase := domain.Phase{Name: "Pre-Production", Enabled: true}
	phase.ID = phaseID
	set := domain.Department{PhaseID: phaseID, Name: "Set"}
	set.ID = uuid.New()
	phase.Departments = []domain.Department{set}

	newLoadedStore := func(t *testing.T) *dashboard.Store {
		store := dashboard.NewStore(projectID)
		snap := newSnapshot(projectID, phase)
		snap.PhaseBudgets[phaseID] = domain.PhaseBudget{TotalBudget: 8000}
		require.True(t, store.Commit(store.BeginLoad(), snap))
		return store
	}

	t.Run("matched department", func(t *testing.T) {
		store := newLoadedStore(t)
		store.ApplyApprovedExpense(&domain.Expense{
			PhaseID:    &phaseID,
			Department: "Set",
			Amount:     2000,
			Status:     domain.ExpenseStatusApproved,
		})

		pb, ok := store.PhaseBudget(phaseID)
		require.True(t, ok)
		assert.Equal(t, float64(2000), pb.Spent)

		snap, _ := store.Snapshot()
		assert.Equal(t, float64(2000), snap.DepartmentSpent[phaseID]["Set"])
		assert.Zero(t, snap.AnonymousSpent[phaseID])
	})

	t.Run("new format department key", func(t *testing.T) {
		store := newLoadedStore(t)
		store.ApplyApprovedExpense(&domain.Expense{
			PhaseID:    &phaseID,
			Department: phaseID.String() + "_Set",
			Amount:     1500,
		})

		snap, _ := store.Snapshot()
		assert.Equal(t, float64(1500), snap.DepartmentSpent[phaseID]["Set"])
	})

	t.Run("anonymous expense lands in the other bucket but counts as phase spend", func(t *testing.T) {
		store := newLoadedStore(t)
		store.ApplyApprovedExpense(&domain.Expense{
			PhaseID:            &phaseID,
			Department:         "Demolished Dept",
			IsAnonymous:        true,
			OriginalDepartment: "Demolished Dept",
			Amount:             500,
		})

		pb, _ := store.PhaseBudget(phaseID)
		assert.Equal(t, float64(500), pb.Spent)

		snap, _ := store.Snapshot()
		assert.Equal(t, float64(500), snap.AnonymousSpent[phaseID])
		assert.Empty(t, snap.DepartmentSpent[phaseID])
	})

	t.Run("unmatched department falls back to anonymous", func(t *testing.T) {
		store := newLoadedStore(t)
		store.ApplyApprovedExpense(&domain.Expense{
			PhaseID:    &phaseID,
			Department: "No Such Dept",
			Amount:     300,
		})

		snap, _ := store.Snapshot()
		assert.Equal(t, float64(300), snap.AnonymousSpent[phaseID])
	})

	t.Run("expense without a phase is ignored", func(t *testing.T) {
		store := newLoadedStore(t)
		store.ApplyApprovedExpense(&domain.Expense{Amount: 999})

		pb, _ := store.PhaseBudget(phaseID)
		assert.Zero(t, pb.Spent)
	})
}

func TestStore_RevertApprovedExpenseRestoresPriorFigures(t *testing.T) {
	projectID := uuid.New()
	phaseID := uuid.New()

	phase := domain.Phase{Name: "Shoot", Enabled: true}
	phase.ID = phaseID
	set := domain.Department{PhaseID: phaseID, Name: "Set"}
	set.ID = uuid.New()
	phase.Departments = []domain.Department{set}

	store := dashboard.NewStore(projectID)
	snap := newSnapshot(projectID, phase)
	snap.PhaseBudgets[phaseID] = domain.PhaseBudget{TotalBudget: 8000, Spent: 2500}
	snap.DepartmentSpent[phaseID] = map[string]float64{"Set": 2000}
	snap.AnonymousSpent[phaseID] = 500
	require.True(t, store.Commit(store.BeginLoad(), snap))

	t.Run("matched department round-trips exactly", func(t *testing.T) {
		expense := &domain.Expense{
			PhaseID:    &phaseID,
			Department: "Set",
			Amount:     1000,
			Status:     domain.ExpenseStatusApproved,
		}

		store.ApplyApprovedExpense(expense)
		pb, _ := store.PhaseBudget(phaseID)
		require.Equal(t, float64(3500), pb.Spent)

		store.RevertApprovedExpense(expense)
		pb, _ = store.PhaseBudget(phaseID)
		assert.Equal(t, float64(2500), pb.Spent)

		after, _ := store.Snapshot()
		assert.Equal(t, float64(2000), after.DepartmentSpent[phaseID]["Set"])
		assert.Equal(t, float64(500), after.AnonymousSpent[phaseID])
	})

	t.Run("anonymous expense round-trips through the other bucket", func(t *testing.T) {
		expense := &domain.Expense{
			PhaseID:            &phaseID,
			Department:         "Demolished Dept",
			IsAnonymous:        true,
			OriginalDepartment: "Demolished Dept",
			Amount:             750,
		}

		store.ApplyApprovedExpense(expense)
		mid, _ := store.Snapshot()
		require.Equal(t, float64(1250), mid.AnonymousSpent[phaseID])

		store.RevertApprovedExpense(expense)
		after, _ := store.Snapshot()
		assert.Equal(t, float64(500), after.AnonymousSpent[phaseID])

		pb, _ := store.PhaseBudget(phaseID)
		assert.Equal(t, float64(2500), pb.Spent)
	})

	t.Run("each direction bumps the generation", func(t *testing.T) {
		before := store.Generation()
		expense := &domain.Expense{PhaseID: &phaseID, Department: "Set", Amount: 100}

		store.ApplyApprovedExpense(expense)
		store.RevertApprovedExpense(expense)
		assert.Equal(t, before+2, store.Generation())
	})
}

func TestStore_ProjectTotalsSumAllPhaseBudgets(t *testing.T) {
	projectID := uuid.New()
	shootID := uuid.New()
	wrapID := uuid.New()

	shoot := domain.Phase{Name: "Shoot", Enabled: true}
	shoot.ID = shootID
	wrap := domain.Phase{Name: "Wrap", Enabled: false}
	wrap.ID = wrapID

	store := dashboard.NewStore(projectID)
	snap := newSnapshot(projectID, shoot, wrap)
	snap.PhaseBudgets[shootID] = domain.PhaseBudget{TotalBudget: 8000, Spent: 3500}
	snap.PhaseBudgets[wrapID] = domain.PhaseBudget{TotalBudget: 5000, Spent: 1000}
	require.True(t, store.Commit(store.BeginLoad(), snap))

	totals := store.ProjectTotals()
	assert.Equal(t, float64(13000), totals.TotalBudget)
	assert.Equal(t, float64(4500), totals.Spent)
	assert.Equal(t, float64(8500), totals.Remaining())

	// Totals derive strictly from the phase budget map; the enablement
	// flag does not qualify the sums.
	store.SetPhaseEnabled(shootID, false)
	totals = store.ProjectTotals()
	assert.Equal(t, float64(13000), totals.TotalBudget)
	assert.Equal(t, float64(4500), totals.Spent)
}

func TestStore_TeamMemberReducers(t *testing.T) {
	projectID := uuid.New()
	store := dashboard.NewStore(projectID)
	require.True(t, store.Commit(store.BeginLoad(), newSnapshot(projectID)))

	alice := domain.User{ID: "user-alice", DisplayName: "Alice"}
	assert.True(t, store.AddTeamMember(alice))
	assert.False(t, store.AddTeamMember(alice), "duplicate adds do not append")

	snap, _ := store.Snapshot()
	require.Len(t, snap.TeamMembers, 1)

	store.RemoveTeamMember("user-alice")
	snap, _ = store.Snapshot()
	assert.Empty(t, snap.TeamMembers)
}

func TestStore_SnapshotIsIsolated(t *testing.T) {
	projectID := uuid.New()
	phaseID := uuid.New()
	store := dashboard.NewStore(projectID)

	snap := newSnapshot(projectID)
	snap.PhaseBudgets[phaseID] = domain.PhaseBudget{TotalBudget: 1000}
	require.True(t, store.Commit(store.BeginLoad(), snap))

	copy1, gen1 := store.Snapshot()
	copy1.PhaseBudgets[phaseID] = domain.PhaseBudget{TotalBudget: 0}

	copy2, gen2 := store.Snapshot()
	assert.Equal(t, gen1, gen2)
	assert.Equal(t, float64(1000), copy2.PhaseBudgets[phaseID].TotalBudget,
		"mutating a returned snapshot must not affect the store")
}

func TestManager(t *testing.T) {
	m := dashboard.NewManager()
	projectID := uuid.New()

	_, ok := m.Peek(projectID)
	assert.False(t, ok)

	store := m.Get(projectID)
	require.NotNil(t, store)
	assert.Same(t, store, m.Get(projectID))

	peeked, ok := m.Peek(projectID)
	require.True(t, ok)
	assert.Same(t, store, peeked)

	m.Remove(projectID)
	_, ok = m.Peek(projectID)
	assert.False(t, ok)
}
