package dashboard

import (
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/prajwal-cubiquitous/Tracura-sub000/internal/domain"
)

// Store holds the latest committed budget snapshot for one project. Reads
// are served from memory; writers either commit a whole snapshot from a
// full load or apply an incremental reducer after a confirmed remote write.
//
// Every commit bumps the generation counter so readers can detect that the
// figures they rendered have been superseded.
type Store struct {
	mu            sync.RWMutex
	projectID     uuid.UUID
	generation    uint64
	loadSeq       uint64
	committedLoad uint64
	snapshot      *domain.BudgetSnapshot
}

func NewStore(projectID uuid.UUID) *Store {
	return &Store{projectID: projectID}
}

func (s *Store) ProjectID() uuid.UUID {
	return s.projectID
}

// Generation returns the current snapshot generation. Zero means no load
// has completed yet.
func (s *Store) Generation() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.generation
}

// BeginLoad hands out a load ticket. Concurrent full loads each take a
// ticket before reading remote state; Commit applies only the newest one.
func (s *Store) BeginLoad() uint64 {
	return atomic.AddUint64(&s.loadSeq, 1)
}

// Commit installs a full snapshot for the given load ticket. A ticket at or
// below the last committed one is a stale load racing a newer one; it is
// dropped and Commit reports false.
func (s *Store) Commit(ticket uint64, snapshot *domain.BudgetSnapshot) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ticket <= s.committedLoad {
		return false
	}
	s.committedLoad = ticket
	s.generation++
	s.snapshot = snapshot
	return true
}

// Loaded reports whether a snapshot has ever been committed.
func (s *Store) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot != nil
}

// Snapshot returns the current snapshot together with its generation. The
// maps are copied so callers can read without holding the store lock; the
// entity slices are shared and must be treated as read-only.
func (s *Store) Snapshot() (*domain.BudgetSnapshot, uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.snapshot == nil {
		return nil, s.generation
	}
	return copySnapshot(s.snapshot), s.generation
}

// ProjectTotals sums totals and spend over every entry in the phase
// budget map. Enablement does not qualify the sums; disabled phases keep
// contributing until a reload drops their figures.
func (s *Store) ProjectTotals() domain.ProjectTotals {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var totals domain.ProjectTotals
	if s.snapshot == nil {
		return totals
	}
	for _, pb := range s.snapshot.PhaseBudgets {
		totals.TotalBudget = domain.SumAmounts(totals.TotalBudget, pb.TotalBudget)
		totals.Spent = domain.SumAmounts(totals.Spent, pb.Spent)
	}
	return totals
}

// PhaseBudget returns the derived figures for one phase.
func (s *Store) PhaseBudget(phaseID uuid.UUID) (domain.PhaseBudget, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.snapshot == nil {
		return domain.PhaseBudget{}, false
	}
	pb, ok := s.snapshot.PhaseBudgets[phaseID]
	return pb, ok
}

// ApplyApprovedExpense folds a newly approved expense into the spend
// figures. Called after the approval has been confirmed remotely; the
// store is never updated ahead of the write.
func (s *Store) ApplyApprovedExpense(expense *domain.Expense) {
	s.applyExpenseDelta(expense, expense.Amount)
}

// RevertApprovedExpense backs a previously applied approval out of the
// spend figures, restoring the prior values exactly. The subtracting
// half of the status reducer; used when an approval is withdrawn after
// it was folded in.
func (s *Store) RevertApprovedExpense(expense *domain.Expense) {
	s.applyExpenseDelta(expense, -expense.Amount)
}

func (s *Store) applyExpenseDelta(expense *domain.Expense, amount float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.snapshot == nil || expense.PhaseID == nil {
		return
	}
	phaseID := *expense.PhaseID

	pb := s.snapshot.PhaseBudgets[phaseID]
	pb.Spent = domain.SumAmounts(pb.Spent, amount)
	s.snapshot.PhaseBudgets[phaseID] = pb

	name, anonymous := s.resolveBucket(phaseID, expense)
	if anonymous {
		s.snapshot.AnonymousSpent[phaseID] = domain.SumAmounts(s.snapshot.AnonymousSpent[phaseID], amount)
	} else {
		deptSpent := s.snapshot.DepartmentSpent[phaseID]
		if deptSpent == nil {
			deptSpent = make(map[string]float64)
			s.snapshot.DepartmentSpent[phaseID] = deptSpent
		}
		deptSpent[name] = domain.SumAmounts(deptSpent[name], amount)
	}

	s.generation++
}

// resolveBucket maps an expense to a department display name of its phase,
// or to the anonymous bucket when no department matches.
func (s *Store) resolveBucket(phaseID uuid.UUID, expense *domain.Expense) (string, bool) {
	if expense.IsAnonymous {
		return "", true
	}
	for i := range s.snapshot.Phases {
		phase := &s.snapshot.Phases[i]
		if phase.ID != phaseID {
			continue
		}
		for _, dept := range phase.Departments {
			if domain.DepartmentKeyMatches(phaseID, dept.Name, expense.Department) {
				return dept.Name, false
			}
		}
	}
	return "", true
}

// AddTeamMember appends the member to the cached list and reports whether
// it actually appended. Used by the optimistic add path; the caller must
// run RemoveTeamMember as compensation only when this returned true, so a
// member already present in the snapshot survives a rolled-back add.
func (s *Store) AddTeamMember(user domain.User) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.snapshot == nil {
		return false
	}
	for _, m := range s.snapshot.TeamMembers {
		if m.ID == user.ID {
			return false
		}
	}
	s.snapshot.TeamMembers = append(s.snapshot.TeamMembers, user)
	s.generation++
	return true
}

func (s *Store) RemoveTeamMember(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.snapshot == nil {
		return
	}
	members := s.snapshot.TeamMembers[:0]
	for _, m := range s.snapshot.TeamMembers {
		if m.ID != userID {
			members = append(members, m)
		}
	}
	s.snapshot.TeamMembers = members
	s.generation++
}

// SetTempApprover replaces the cached delegation record after a confirmed
// remote write.
func (s *Store) SetTempApprover(record *domain.TempApprover) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.snapshot == nil {
		return
	}
	s.snapshot.TempApprover = record
	s.generation++
}

// SetPhaseEnabled flips the cached enabled flag after the persisted
// toggle has been confirmed.
func (s *Store) SetPhaseEnabled(phaseID uuid.UUID, enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.snapshot == nil {
		return
	}
	s.snapshot.PhaseEnabled[phaseID] = enabled
	s.generation++
}

// SetPhaseExtended flips the cached deadline-extended flag after an
// extension acceptance.
func (s *Store) SetPhaseExtended(phaseID uuid.UUID, extended bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.snapshot == nil {
		return
	}
	s.snapshot.PhaseExtended[phaseID] = extended
	s.generation++
}

func copySnapshot(src *domain.BudgetSnapshot) *domain.BudgetSnapshot {
	dst := &domain.BudgetSnapshot{
		ProjectID:       src.ProjectID,
		Phases:          src.Phases,
		PhaseEnabled:    make(map[uuid.UUID]bool, len(src.PhaseEnabled)),
		PhaseBudgets:    make(map[uuid.UUID]domain.PhaseBudget, len(src.PhaseBudgets)),
		DepartmentSpent: make(map[uuid.UUID]map[string]float64, len(src.DepartmentSpent)),
		AnonymousSpent:  make(map[uuid.UUID]float64, len(src.AnonymousSpent)),
		PhaseExtended:   make(map[uuid.UUID]bool, len(src.PhaseExtended)),
		TeamMembers:     append([]domain.User(nil), src.TeamMembers...),
		TempApprover:    src.TempApprover,
	}
	for k, v := range src.PhaseEnabled {
		dst.PhaseEnabled[k] = v
	}
	for k, v := range src.PhaseBudgets {
		dst.PhaseBudgets[k] = v
	}
	for k, v := range src.DepartmentSpent {
		inner := make(map[string]float64, len(v))
		for name, amount := range v {
			inner[name] = amount
		}
		dst.DepartmentSpent[k] = inner
	}
	for k, v := range src.AnonymousSpent {
		dst.AnonymousSpent[k] = v
	}
	for k, v := range src.PhaseExtended {
		dst.PhaseExtended[k] = v
	}
	return dst
}

// Manager hands out per-project stores. Stores are created lazily on first
// access and live for the process lifetime.
type Manager struct {
	mu     sync.Mutex
	stores map[uuid.UUID]*Store
}

func NewManager() *Manager {
	return &Manager{stores: make(map[uuid.UUID]*Store)}
}

func (m *Manager) Get(projectID uuid.UUID) *Store {
	m.mu.Lock()
	defer m.mu.Unlock()

	store, ok := m.stores[projectID]
	if !ok {
		store = NewStore(projectID)
		m.stores[projectID] = store
	}
	return store
}

// Peek returns the store only if one already exists.
func (m *Manager) Peek(projectID uuid.UUID) (*Store, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	store, ok := m.stores[projectID]
	return store, ok
}

func (m *Manager) Remove(projectID uuid.UUID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.stores, projectID)
}
