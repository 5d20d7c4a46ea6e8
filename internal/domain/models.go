package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Base model with common fields
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// BeforeCreate assigns an ID when the caller did not set one
func (m *BaseModel) BeforeCreate(_ *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// ProjectStatus represents the lifecycle status of a production project
type ProjectStatus string

const (
	ProjectStatusLocked      ProjectStatus = "LOCKED"
	ProjectStatusActive      ProjectStatus = "ACTIVE"
	ProjectStatusStandby     ProjectStatus = "STANDBY"
	ProjectStatusInReview    ProjectStatus = "IN_REVIEW"
	ProjectStatusArchive     ProjectStatus = "ARCHIVE"
	ProjectStatusMaintenance ProjectStatus = "MAINTENANCE"
	ProjectStatusCompleted   ProjectStatus = "COMPLETED"
	ProjectStatusDeclined    ProjectStatus = "DECLINED"
)

// IsValid checks if the ProjectStatus is a valid enum value
func (ps ProjectStatus) IsValid() bool {
	switch ps {
	case ProjectStatusLocked, ProjectStatusActive, ProjectStatusStandby,
		ProjectStatusInReview, ProjectStatusArchive, ProjectStatusMaintenance,
		ProjectStatusCompleted, ProjectStatusDeclined:
		return true
	}
	return false
}

// Project represents a production project owned by a tenant
type Project struct {
	BaseModel
	TenantID             string         `gorm:"type:varchar(100);not null;index;column:tenant_id"`
	Name                 string         `gorm:"type:varchar(200);not null;index"`
	Status               ProjectStatus  `gorm:"type:varchar(50);not null;default:'ACTIVE';index"`
	Suspended            bool           `gorm:"not null;default:false"`
	ManagerIDs           pq.StringArray `gorm:"type:text[];column:manager_ids"`
	TeamMemberIDs        pq.StringArray `gorm:"type:text[];column:team_member_ids"`
	TempApproverUserID   *string        `gorm:"type:varchar(100);column:temp_approver_user_id"`
	TempApproverRecordID *uuid.UUID     `gorm:"type:uuid;column:temp_approver_record_id"`
	Phases               []Phase        `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE"`
	Expenses             []Expense      `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE"`
}

// IsManager reports whether the given user id is listed as a project manager
func (p *Project) IsManager(userID string) bool {
	for _, id := range p.ManagerIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// HasTeamMember reports whether the given user id is on the team list
func (p *Project) HasTeamMember(userID string) bool {
	for _, id := range p.TeamMemberIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// Phase represents a time-bounded stage of a project containing departments
//
// StartDate and EndDate are stored as dd/MM/yyyy strings to stay compatible
// with documents written by earlier clients. LegacyBudgets carries the old
// inline departmentKey->budget map used before departments were normalized
// into their own rows; it is only read when a phase has no department rows.
type Phase struct {
	BaseModel
	ProjectID     uuid.UUID               `gorm:"type:uuid;not null;index;column:project_id"`
	Name          string                  `gorm:"type:varchar(200);not null"`
	Ordinal       int                     `gorm:"not null;default:0"`
	StartDate     *string                 `gorm:"type:varchar(10);column:start_date"`
	EndDate       *string                 `gorm:"type:varchar(10);column:end_date"`
	Enabled       bool                    `gorm:"not null;default:true"`
	LegacyBudgets string                  `gorm:"type:jsonb;column:legacy_budgets"`
	Departments   []Department            `gorm:"foreignKey:PhaseID;constraint:OnDelete:CASCADE"`
	Requests      []PhaseExtensionRequest `gorm:"foreignKey:PhaseID;constraint:OnDelete:CASCADE"`
}

// ContractorMode represents how a department's work is contracted
type ContractorMode string

const (
	ContractorModeLabourOnly ContractorMode = "LABOUR_ONLY"
	ContractorModeTurnkey    ContractorMode = "TURNKEY"
)

// IsValid checks if the ContractorMode is a valid enum value
func (cm ContractorMode) IsValid() bool {
	switch cm {
	case ContractorModeLabourOnly, ContractorModeTurnkey:
		return true
	}
	return false
}

// Department represents a named budget bucket within a phase
// Its budget is always derived from line items, never stored independently
type Department struct {
	BaseModel
	PhaseID      uuid.UUID      `gorm:"type:uuid;not null;index;column:phase_id"`
	Name         string         `gorm:"type:varchar(200);not null"`
	Mode         ContractorMode `gorm:"type:varchar(50);not null;default:'LABOUR_ONLY'"`
	DisplayOrder int            `gorm:"not null;default:0;column:display_order"`
	LineItems    []LineItem     `gorm:"foreignKey:DepartmentID;constraint:OnDelete:CASCADE"`
}

// LineItemTypeLabour is the item type whose spec field is always cleared
const LineItemTypeLabour = "Labour"

// LineItem represents a priced unit composing a department's budget
type LineItem struct {
	BaseModel
	DepartmentID uuid.UUID `gorm:"type:uuid;not null;index;column:department_id"`
	ItemType     string    `gorm:"type:varchar(100);not null;column:item_type"`
	Name         string    `gorm:"type:varchar(200);not null"`
	Spec         string    `gorm:"type:varchar(500)"`
	Quantity     float64   `gorm:"type:decimal(12,2);not null;default:0"`
	Unit         string    `gorm:"type:varchar(50);not null"`
	UnitPrice    float64   `gorm:"type:decimal(15,2);not null;default:0;column:unit_price"`
	DisplayOrder int       `gorm:"not null;default:0;column:display_order"`
}

// ExpenseStatus represents the approval status of an expense
type ExpenseStatus string

const (
	ExpenseStatusPending  ExpenseStatus = "PENDING"
	ExpenseStatusApproved ExpenseStatus = "APPROVED"
	ExpenseStatusRejected ExpenseStatus = "REJECTED"
)

// IsTerminal reports whether the status permits no further transitions
func (es ExpenseStatus) IsTerminal() bool {
	return es == ExpenseStatusApproved || es == ExpenseStatusRejected
}

// Expense represents spend submitted against a phase/department
//
// Department holds the raw department key as submitted: either a bare
// department name (old format) or "<phaseId>_<name>" (new format). Both
// formats must be matched when aggregating, indefinitely. An expense whose
// department was deleted is flagged anonymous and keeps the original
// department name for audit.
type Expense struct {
	BaseModel
	TenantID           string        `gorm:"type:varchar(100);not null;index;column:tenant_id"`
	ProjectID          uuid.UUID     `gorm:"type:uuid;not null;index;column:project_id"`
	PhaseID            *uuid.UUID    `gorm:"type:uuid;index;column:phase_id"`
	Department         string        `gorm:"type:varchar(300)"`
	Amount             float64       `gorm:"type:decimal(15,2);not null;default:0"`
	Status             ExpenseStatus `gorm:"type:varchar(20);not null;default:'PENDING';index"`
	IsAnonymous        bool          `gorm:"not null;default:false;column:is_anonymous"`
	OriginalDepartment string        `gorm:"type:varchar(300);column:original_department"`
	SubmittedByID      string        `gorm:"type:varchar(100);not null;column:submitted_by_id"`
	ApprovedByID       string        `gorm:"type:varchar(100);column:approved_by_id"`
	ApprovedAt         *time.Time    `gorm:"column:approved_at"`
	Remark             string        `gorm:"type:varchar(500)"`
}

// TempApproverStatus represents the stored status of a delegation record
type TempApproverStatus string

const (
	TempApproverStatusPending  TempApproverStatus = "pending"
	TempApproverStatusAccepted TempApproverStatus = "accepted"
	TempApproverStatusRejected TempApproverStatus = "rejected"
	TempApproverStatusActive   TempApproverStatus = "active"
	TempApproverStatusExpired  TempApproverStatus = "expired"
)

// TempApprover represents a time-windowed delegation of approval authority
// At most one record per project is current, referenced from the project row
type TempApprover struct {
	BaseModel
	ProjectID  uuid.UUID          `gorm:"type:uuid;not null;index;column:project_id"`
	ApproverID string             `gorm:"type:varchar(100);not null;column:approver_id"`
	StartDate  time.Time          `gorm:"not null;column:start_date"`
	EndDate    time.Time          `gorm:"not null;column:end_date"`
	Status     TempApproverStatus `gorm:"type:varchar(20);not null;default:'pending'"`
}

// ExtensionRequestStatus represents the status of a phase extension request
type ExtensionRequestStatus string

const (
	ExtensionStatusPending  ExtensionRequestStatus = "PENDING"
	ExtensionStatusAccepted ExtensionRequestStatus = "ACCEPTED"
	ExtensionStatusRejected ExtensionRequestStatus = "REJECTED"
)

// PhaseExtensionRequest represents a proposal to move a phase's end date
//
// PhaseSynced marks whether the second write of an acceptance (the phase
// end-date update) has been committed. Acceptance and the phase update are
// not atomic; the reconciliation job repairs rows left unsynced.
type PhaseExtensionRequest struct {
	BaseModel
	PhaseID        uuid.UUID              `gorm:"type:uuid;not null;index;column:phase_id"`
	ProjectID      uuid.UUID              `gorm:"type:uuid;not null;index;column:project_id"`
	ExtendedDate   string                 `gorm:"type:varchar(10);not null;column:extended_date"`
	Reason         string                 `gorm:"type:text"`
	RequesterID    string                 `gorm:"type:varchar(100);not null;column:requester_id"`
	RequesterName  string                 `gorm:"type:varchar(200);column:requester_name"`
	RequesterPhone string                 `gorm:"type:varchar(50);column:requester_phone"`
	Status         ExtensionRequestStatus `gorm:"type:varchar(20);not null;default:'PENDING';index"`
	ResolvedByID   string                 `gorm:"type:varchar(100);column:resolved_by_id"`
	ResolvedAt     *time.Time             `gorm:"column:resolved_at"`
	ResolveRemark  string                 `gorm:"type:varchar(500);column:resolve_remark"`
	PhaseSynced    bool                   `gorm:"not null;default:true;column:phase_synced"`
}

// PhaseChangeAction represents the type of phase audit entry
type PhaseChangeAction string

const (
	PhaseChangeExtensionAccepted PhaseChangeAction = "extension_accepted"
	PhaseChangeExtensionRejected PhaseChangeAction = "extension_rejected"
	PhaseChangeEndDateUpdated    PhaseChangeAction = "end_date_updated"
	PhaseChangeEnabledToggled    PhaseChangeAction = "enabled_toggled"
)

// PhaseChange is an append-only audit entry for phase mutations
type PhaseChange struct {
	ID        uuid.UUID         `gorm:"type:uuid;primary_key"`
	PhaseID   uuid.UUID         `gorm:"type:uuid;not null;index;column:phase_id"`
	ProjectID uuid.UUID         `gorm:"type:uuid;not null;index;column:project_id"`
	Action    PhaseChangeAction `gorm:"type:varchar(50);not null"`
	Detail    string            `gorm:"type:varchar(500)"`
	ActorID   string            `gorm:"type:varchar(100);column:actor_id"`
	CreatedAt time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// BeforeCreate assigns an ID when the caller did not set one
func (c *PhaseChange) BeforeCreate(_ *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// UserRoleType represents a role a user can have within a tenant
type UserRoleType string

const (
	RoleAdmin   UserRoleType = "admin"
	RoleManager UserRoleType = "manager"
	RoleMember  UserRoleType = "member"
)

// User represents a user in the system
type User struct {
	ID          string         `gorm:"type:varchar(100);primaryKey" json:"id"`
	TenantID    string         `gorm:"type:varchar(100);not null;index;column:tenant_id" json:"tenantId"`
	Email       string         `gorm:"type:varchar(255);not null" json:"email"`
	DisplayName string         `gorm:"type:varchar(200);not null;column:display_name" json:"displayName"`
	Phone       string         `gorm:"type:varchar(50)" json:"phone,omitempty"`
	Roles       pq.StringArray `gorm:"type:text[];not null" json:"roles"`
	IsActive    bool           `gorm:"not null;default:true;column:is_active" json:"isActive"`
	CreatedAt   time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"createdAt"`
	UpdatedAt   time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updatedAt"`
}

// HasRole reports whether the user has the given role
func (u *User) HasRole(role UserRoleType) bool {
	for _, r := range u.Roles {
		if r == string(role) {
			return true
		}
	}
	return false
}
