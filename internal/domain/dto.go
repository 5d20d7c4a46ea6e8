package domain

import (
	"time"

	"github.com/google/uuid"
)

// --- Request DTOs ---

// CreateProjectRequest is the payload for creating a project
type CreateProjectRequest struct {
	Name       string   `json:"name" validate:"required,max=200"`
	ManagerIDs []string `json:"managerIds" validate:"required,min=1,dive,required"`
	Status     string   `json:"status" validate:"omitempty,oneof=LOCKED ACTIVE STANDBY IN_REVIEW ARCHIVE MAINTENANCE COMPLETED DECLINED"`
}

// CreatePhaseRequest is the payload for adding a phase to a project
type CreatePhaseRequest struct {
	Name      string `json:"name" validate:"required,max=200"`
	Ordinal   int    `json:"ordinal" validate:"gte=0"`
	StartDate string `json:"startDate" validate:"omitempty,len=10"`
	EndDate   string `json:"endDate" validate:"omitempty,len=10"`
}

// SetPhaseEnabledRequest toggles a phase's enablement flag
type SetPhaseEnabledRequest struct {
	Enabled bool `json:"enabled"`
}

// CreateDepartmentRequest is the payload for adding a department to a phase
type CreateDepartmentRequest struct {
	Name string `json:"name" validate:"required,max=200"`
	Mode string `json:"mode" validate:"required,oneof=LABOUR_ONLY TURNKEY"`
}

// LineItemInput carries line item fields; quantity and unit price arrive
// as strings from older clients and are parsed as non-negative decimals
type LineItemInput struct {
	ItemType  string `json:"itemType" validate:"required,max=100"`
	Name      string `json:"name" validate:"required,max=200"`
	Spec      string `json:"spec" validate:"max=500"`
	Quantity  string `json:"quantity" validate:"required"`
	Unit      string `json:"unit" validate:"required,max=50"`
	UnitPrice string `json:"unitPrice" validate:"required"`
}

// CreateExpenseRequest is the payload for submitting an expense
type CreateExpenseRequest struct {
	PhaseID    *uuid.UUID `json:"phaseId"`
	Department string     `json:"department" validate:"max=300"`
	Amount     string     `json:"amount" validate:"required"`
	Remark     string     `json:"remark" validate:"max=500"`
}

// ExpenseDecisionRequest approves or rejects a pending expense
type ExpenseDecisionRequest struct {
	Decision string `json:"decision" validate:"required,oneof=APPROVED REJECTED"`
	Remark   string `json:"remark" validate:"max=500"`
}

// AddTeamMemberRequest adds a member to a project's team list
type AddTeamMemberRequest struct {
	UserID string `json:"userId" validate:"required,max=100"`
}

// DelegateRequest assigns a temporary approver for a project
type DelegateRequest struct {
	ApproverID string    `json:"approverId" validate:"required,max=100"`
	StartDate  time.Time `json:"startDate" validate:"required"`
	EndDate    time.Time `json:"endDate" validate:"required"`
}

// DelegateDetailsRequest edits the window of the current delegation record
type DelegateDetailsRequest struct {
	StartDate time.Time `json:"startDate" validate:"required"`
	EndDate   time.Time `json:"endDate" validate:"required"`
}

// DelegationDecisionRequest lets the delegate accept or reject a delegation
type DelegationDecisionRequest struct {
	Decision string `json:"decision" validate:"required,oneof=accepted rejected"`
}

// CreateExtensionRequest proposes a later end date for a phase
type CreateExtensionRequest struct {
	ExtendedDate   string `json:"extendedDate" validate:"required,len=10"`
	Reason         string `json:"reason" validate:"max=2000"`
	RequesterName  string `json:"requesterName" validate:"max=200"`
	RequesterPhone string `json:"requesterPhone" validate:"max=50"`
}

// ResolveExtensionRequest accepts or rejects an extension request
type ResolveExtensionRequest struct {
	Decision string `json:"decision" validate:"required,oneof=ACCEPTED REJECTED"`
	Remark   string `json:"remark" validate:"max=500"`
}

// --- Response DTOs ---

// ProjectDTO is the API representation of a project
type ProjectDTO struct {
	ID                   uuid.UUID  `json:"id"`
	Name                 string     `json:"name"`
	Status               string     `json:"status"`
	Suspended            bool       `json:"suspended"`
	ManagerIDs           []string   `json:"managerIds"`
	TeamMemberIDs        []string   `json:"teamMemberIds"`
	TempApproverUserID   *string    `json:"tempApproverUserId,omitempty"`
	TempApproverRecordID *uuid.UUID `json:"tempApproverRecordId,omitempty"`
	CreatedAt            time.Time  `json:"createdAt"`
	UpdatedAt            time.Time  `json:"updatedAt"`
}

// PhaseDTO is the API representation of a phase with derived flags
type PhaseDTO struct {
	ID         uuid.UUID `json:"id"`
	ProjectID  uuid.UUID `json:"projectId"`
	Name       string    `json:"name"`
	Ordinal    int       `json:"ordinal"`
	StartDate  *string   `json:"startDate,omitempty"`
	EndDate    *string   `json:"endDate,omitempty"`
	Enabled    bool      `json:"enabled"`
	InProgress bool      `json:"inProgress"`
	Completed  bool      `json:"completed"`
	Future     bool      `json:"future"`
	IsExtended bool      `json:"isExtended"`
}

// LineItemDTO is the API representation of a line item
type LineItemDTO struct {
	ID        uuid.UUID `json:"id"`
	ItemType  string    `json:"itemType"`
	Name      string    `json:"name"`
	Spec      string    `json:"spec,omitempty"`
	Quantity  float64   `json:"quantity"`
	Unit      string    `json:"unit"`
	UnitPrice float64   `json:"unitPrice"`
	Total     float64   `json:"total"`
}

// DepartmentDTO is the API representation of a department with its
// derived budget
type DepartmentDTO struct {
	ID        uuid.UUID     `json:"id"`
	PhaseID   uuid.UUID     `json:"phaseId"`
	Name      string        `json:"name"`
	Mode      string        `json:"mode"`
	Budget    float64       `json:"budget"`
	Spent     float64       `json:"spent,omitempty"`
	LineItems []LineItemDTO `json:"lineItems"`
}

// ExpenseDTO is the API representation of an expense
type ExpenseDTO struct {
	ID                 uuid.UUID  `json:"id"`
	ProjectID          uuid.UUID  `json:"projectId"`
	PhaseID            *uuid.UUID `json:"phaseId,omitempty"`
	Department         string     `json:"department,omitempty"`
	Amount             float64    `json:"amount"`
	Status             string     `json:"status"`
	IsAnonymous        bool       `json:"isAnonymous"`
	OriginalDepartment string     `json:"originalDepartment,omitempty"`
	SubmittedByID      string     `json:"submittedById"`
	ApprovedByID       string     `json:"approvedById,omitempty"`
	ApprovedAt         *time.Time `json:"approvedAt,omitempty"`
	Remark             string     `json:"remark,omitempty"`
	CreatedAt          time.Time  `json:"createdAt"`
}

// TempApproverDTO is the API representation of a delegation record with
// its window-derived display status
type TempApproverDTO struct {
	ID                uuid.UUID `json:"id"`
	ProjectID         uuid.UUID `json:"projectId"`
	ApproverID        string    `json:"approverId"`
	StartDate         time.Time `json:"startDate"`
	EndDate           time.Time `json:"endDate"`
	Status            string    `json:"status"`
	DisplayStatus     string    `json:"displayStatus"`
	NeedsStatusUpdate bool      `json:"needsStatusUpdate"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

// ExtensionRequestDTO is the API representation of an extension request
type ExtensionRequestDTO struct {
	ID             uuid.UUID  `json:"id"`
	PhaseID        uuid.UUID  `json:"phaseId"`
	ProjectID      uuid.UUID  `json:"projectId"`
	ExtendedDate   string     `json:"extendedDate"`
	Reason         string     `json:"reason,omitempty"`
	RequesterID    string     `json:"requesterId"`
	RequesterName  string     `json:"requesterName,omitempty"`
	RequesterPhone string     `json:"requesterPhone,omitempty"`
	Status         string     `json:"status"`
	ResolvedByID   string     `json:"resolvedById,omitempty"`
	ResolvedAt     *time.Time `json:"resolvedAt,omitempty"`
	ResolveRemark  string     `json:"resolveRemark,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
}

// PhaseBudgetDTO carries the derived figures for one phase on the dashboard
type PhaseBudgetDTO struct {
	Phase           PhaseDTO           `json:"phase"`
	TotalBudget     float64            `json:"totalBudget"`
	Spent           float64            `json:"spent"`
	Remaining       float64            `json:"remaining"`
	DepartmentSpent map[string]float64 `json:"departmentSpent"`
	AnonymousSpent  float64            `json:"anonymousSpent"`
}

// DashboardDTO is the full dashboard view for a project
type DashboardDTO struct {
	ProjectID    uuid.UUID        `json:"projectId"`
	Generation   uint64           `json:"generation"`
	Phases       []PhaseBudgetDTO `json:"phases"`
	TotalBudget  float64          `json:"totalBudget"`
	TotalSpent   float64          `json:"totalSpent"`
	Remaining    float64          `json:"remaining"`
	TeamMembers  []User           `json:"teamMembers"`
	TempApprover *TempApproverDTO `json:"tempApprover,omitempty"`
}
