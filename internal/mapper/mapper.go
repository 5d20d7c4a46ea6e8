package mapper

import (
	"time"

	"github.com/prajwal-cubiquitous/Tracura-sub000/internal/domain"
)

// ToProjectDTO converts Project to ProjectDTO
func ToProjectDTO(project *domain.Project) domain.ProjectDTO {
	return domain.ProjectDTO{
		ID:                   project.ID,
		Name:                 project.Name,
		Status:               string(project.Status),
		Suspended:            project.Suspended,
		ManagerIDs:           project.ManagerIDs,
		TeamMemberIDs:        project.TeamMemberIDs,
		TempApproverUserID:   project.TempApproverUserID,
		TempApproverRecordID: project.TempApproverRecordID,
		CreatedAt:            project.CreatedAt,
		UpdatedAt:            project.UpdatedAt,
	}
}

// ToPhaseDTO converts Phase to PhaseDTO. The progress flags and the
// extended flag are derived at mapping time and never persisted.
func ToPhaseDTO(phase *domain.Phase, extended bool, now time.Time) domain.PhaseDTO {
	return domain.PhaseDTO{
		ID:         phase.ID,
		ProjectID:  phase.ProjectID,
		Name:       phase.Name,
		Ordinal:    phase.Ordinal,
		StartDate:  phase.StartDate,
		EndDate:    phase.EndDate,
		Enabled:    phase.Enabled,
		InProgress: phase.InProgressAt(now),
		Completed:  phase.CompletedAt(now),
		Future:     phase.FutureAt(now),
		IsExtended: extended,
	}
}

// ToLineItemDTO converts LineItem to LineItemDTO
func ToLineItemDTO(item *domain.LineItem) domain.LineItemDTO {
	return domain.LineItemDTO{
		ID:        item.ID,
		ItemType:  item.ItemType,
		Name:      item.Name,
		Spec:      item.Spec,
		Quantity:  item.Quantity,
		Unit:      item.Unit,
		UnitPrice: item.UnitPrice,
		Total:     domain.LineItemTotal(item),
	}
}

// ToDepartmentDTO converts Department to DepartmentDTO. Spent comes from
// the dashboard store; pass zero when no snapshot is loaded.
func ToDepartmentDTO(department *domain.Department, spent float64) domain.DepartmentDTO {
	items := make([]domain.LineItemDTO, len(department.LineItems))
	for i := range department.LineItems {
		items[i] = ToLineItemDTO(&department.LineItems[i])
	}
	return domain.DepartmentDTO{
		ID:        department.ID,
		PhaseID:   department.PhaseID,
		Name:      department.Name,
		Mode:      string(department.Mode),
		Budget:    domain.DepartmentBudget(department.LineItems),
		Spent:     spent,
		LineItems: items,
	}
}

// ToExpenseDTO converts Expense to ExpenseDTO
func ToExpenseDTO(expense *domain.Expense) domain.ExpenseDTO {
	return domain.ExpenseDTO{
		ID:                 expense.ID,
		ProjectID:          expense.ProjectID,
		PhaseID:            expense.PhaseID,
		Department:         expense.Department,
		Amount:             expense.Amount,
		Status:             string(expense.Status),
		IsAnonymous:        expense.IsAnonymous,
		OriginalDepartment: expense.OriginalDepartment,
		SubmittedByID:      expense.SubmittedByID,
		ApprovedByID:       expense.ApprovedByID,
		ApprovedAt:         expense.ApprovedAt,
		Remark:             expense.Remark,
		CreatedAt:          expense.CreatedAt,
	}
}

// ToTempApproverDTO converts TempApprover to TempApproverDTO with the
// window-derived display status.
func ToTempApproverDTO(record *domain.TempApprover, now time.Time) domain.TempApproverDTO {
	return domain.TempApproverDTO{
		ID:                record.ID,
		ProjectID:         record.ProjectID,
		ApproverID:        record.ApproverID,
		StartDate:         record.StartDate,
		EndDate:           record.EndDate,
		Status:            string(record.Status),
		DisplayStatus:     string(record.DisplayStatus(now)),
		NeedsStatusUpdate: record.NeedsStatusUpdate(now),
		UpdatedAt:         record.UpdatedAt,
	}
}

// ToExtensionRequestDTO converts PhaseExtensionRequest to its DTO
func ToExtensionRequestDTO(request *domain.PhaseExtensionRequest) domain.ExtensionRequestDTO {
	return domain.ExtensionRequestDTO{
		ID:             request.ID,
		PhaseID:        request.PhaseID,
		ProjectID:      request.ProjectID,
		ExtendedDate:   request.ExtendedDate,
		Reason:         request.Reason,
		RequesterID:    request.RequesterID,
		RequesterName:  request.RequesterName,
		RequesterPhone: request.RequesterPhone,
		Status:         string(request.Status),
		ResolvedByID:   request.ResolvedByID,
		ResolvedAt:     request.ResolvedAt,
		ResolveRemark:  request.ResolveRemark,
		CreatedAt:      request.CreatedAt,
	}
}

// ToDashboardDTO renders a committed snapshot at a generation.
func ToDashboardDTO(snapshot *domain.BudgetSnapshot, generation uint64, now time.Time) domain.DashboardDTO {
	dto := domain.DashboardDTO{
		ProjectID:   snapshot.ProjectID,
		Generation:  generation,
		Phases:      make([]domain.PhaseBudgetDTO, 0, len(snapshot.Phases)),
		TeamMembers: snapshot.TeamMembers,
	}

	for i := range snapshot.Phases {
		phase := &snapshot.Phases[i]
		budget := snapshot.PhaseBudgets[phase.ID]

		deptSpent := make(map[string]float64, len(snapshot.DepartmentSpent[phase.ID]))
		for name, amount := range snapshot.DepartmentSpent[phase.ID] {
			deptSpent[name] = amount
		}

		dto.Phases = append(dto.Phases, domain.PhaseBudgetDTO{
			Phase:           ToPhaseDTO(phase, snapshot.PhaseExtended[phase.ID], now),
			TotalBudget:     budget.TotalBudget,
			Spent:           budget.Spent,
			Remaining:       budget.Remaining(),
			DepartmentSpent: deptSpent,
			AnonymousSpent:  snapshot.AnonymousSpent[phase.ID],
		})

		if phase.Enabled {
			dto.TotalBudget = domain.SumAmounts(dto.TotalBudget, budget.TotalBudget)
			dto.TotalSpent = domain.SumAmounts(dto.TotalSpent, budget.Spent)
		}
	}
	dto.Remaining = domain.SumAmounts(dto.TotalBudget, -dto.TotalSpent)

	if snapshot.TempApprover != nil {
		approver := ToTempApproverDTO(snapshot.TempApprover, now)
		dto.TempApprover = &approver
	}
	return dto
}
