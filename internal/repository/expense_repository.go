package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/prajwal-cubiquitous/Tracura-sub000/internal/domain"
	"gorm.io/gorm"
)

type ExpenseRepository struct {
	db *gorm.DB
}

func NewExpenseRepository(db *gorm.DB) *ExpenseRepository {
	return &ExpenseRepository{db: db}
}

func (r *ExpenseRepository) Create(ctx context.Context, expense *domain.Expense) error {
	return r.db.WithContext(ctx).Create(expense).Error
}

func (r *ExpenseRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Expense, error) {
	var expense domain.Expense
	query := r.db.WithContext(ctx).Where("id = ?", id)
	query = ApplyTenantFilter(ctx, query)
	err := query.First(&expense).Error
	if err != nil {
		return nil, err
	}
	return &expense, nil
}

func (r *ExpenseRepository) ListByProject(ctx context.Context, projectID uuid.UUID, status *domain.ExpenseStatus) ([]domain.Expense, error) {
	var expenses []domain.Expense
	query := r.db.WithContext(ctx).Where("project_id = ?", projectID)
	if status != nil {
		query = query.Where("status = ?", *status)
	}
	err := query.Order("created_at DESC").Find(&expenses).Error
	return expenses, err
}

// ListApprovedByProject returns every approved expense for the project.
// Spend aggregation only ever counts approved rows.
func (r *ExpenseRepository) ListApprovedByProject(ctx context.Context, projectID uuid.UUID) ([]domain.Expense, error) {
	status := domain.ExpenseStatusApproved
	return r.ListByProject(ctx, projectID, &status)
}

// UpdateStatus records an approval decision. All decision fields are written
// in one statement so a row is never observed half-decided.
func (r *ExpenseRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.ExpenseStatus, approverID, remark string, decidedAt time.Time) error {
	return r.db.WithContext(ctx).Model(&domain.Expense{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":         status,
			"approved_by_id": approverID,
			"approved_at":    decidedAt,
			"remark":         remark,
		}).Error
}

func (r *ExpenseRepository) CountPendingByProject(ctx context.Context, projectID uuid.UUID) (int, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Expense{}).
		Where("project_id = ? AND status = ?", projectID, domain.ExpenseStatusPending).
		Count(&count).Error
	return int(count), err
}
