package domain

import "github.com/google/uuid"

// AnonymousBucket is the display key for approved spend whose original
// department no longer exists ("Other" on the dashboard).
const AnonymousBucket = "Other"

// PhaseBudget holds the derived budget figures for one phase
type PhaseBudget struct {
	TotalBudget float64 `json:"totalBudget"`
	Spent       float64 `json:"spent"`
}

// Remaining returns totalBudget - spent. Negative values are surfaced
// as-is; an overspent phase must not be clamped to zero.
func (pb PhaseBudget) Remaining() float64 {
	return SumAmounts(pb.TotalBudget, -pb.Spent)
}

// BudgetSnapshot is one generation of aggregated budget state for a
// project, produced by a full load and committed atomically to the
// dashboard store.
type BudgetSnapshot struct {
	ProjectID       uuid.UUID
	Phases          []Phase
	PhaseEnabled    map[uuid.UUID]bool
	PhaseBudgets    map[uuid.UUID]PhaseBudget
	DepartmentSpent map[uuid.UUID]map[string]float64
	AnonymousSpent  map[uuid.UUID]float64
	PhaseExtended   map[uuid.UUID]bool
	TeamMembers     []User
	TempApprover    *TempApprover
}

// ProjectTotals are the project-level sums derived from phase budgets
type ProjectTotals struct {
	TotalBudget float64 `json:"totalBudget"`
	Spent       float64 `json:"spent"`
}

// Remaining returns the project-level remainder, negative allowed
func (pt ProjectTotals) Remaining() float64 {
	return SumAmounts(pt.TotalBudget, -pt.Spent)
}
