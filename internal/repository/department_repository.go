package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/prajwal-cubiquitous/Tracura-sub000/internal/domain"
	"gorm.io/gorm"
)

type DepartmentRepository struct {
	db *gorm.DB
}

func NewDepartmentRepository(db *gorm.DB) *DepartmentRepository {
	return &DepartmentRepository{db: db}
}

func (r *DepartmentRepository) Create(ctx context.Context, department *domain.Department) error {
	return r.db.WithContext(ctx).Create(department).Error
}

func (r *DepartmentRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Department, error) {
	var department domain.Department
	err := r.db.WithContext(ctx).
		Preload("LineItems", func(db *gorm.DB) *gorm.DB {
			return db.Order("display_order ASC")
		}).
		Where("id = ?", id).
		First(&department).Error
	if err != nil {
		return nil, err
	}
	return &department, nil
}

func (r *DepartmentRepository) ListByPhase(ctx context.Context, phaseID uuid.UUID) ([]domain.Department, error) {
	var departments []domain.Department
	err := r.db.WithContext(ctx).
		Preload("LineItems", func(db *gorm.DB) *gorm.DB {
			return db.Order("display_order ASC")
		}).
		Where("phase_id = ?", phaseID).
		Order("display_order ASC").
		Find(&departments).Error
	return departments, err
}

// ExistsByName reports whether the phase already holds a department with the
// given display name, compared case-insensitively.
func (r *DepartmentRepository) ExistsByName(ctx context.Context, phaseID uuid.UUID, name string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Department{}).
		Where("phase_id = ? AND LOWER(name) = LOWER(?)", phaseID, name).
		Count(&count).Error
	return count > 0, err
}

func (r *DepartmentRepository) Update(ctx context.Context, department *domain.Department) error {
	return r.db.WithContext(ctx).Save(department).Error
}

// Delete removes a department and its line items.
func (r *DepartmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&domain.LineItem{}, "department_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&domain.Department{}, "id = ?", id).Error
	})
}

// ReplaceLineItems swaps the department's line items for the given set in a
// single transaction, preserving the order of the slice as display order.
func (r *DepartmentRepository) ReplaceLineItems(ctx context.Context, departmentID uuid.UUID, items []domain.LineItem) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&domain.LineItem{}, "department_id = ?", departmentID).Error; err != nil {
			return err
		}
		for i := range items {
			items[i].DepartmentID = departmentID
			items[i].DisplayOrder = i
		}
		if len(items) == 0 {
			return nil
		}
		return tx.Create(&items).Error
	})
}

func (r *DepartmentRepository) CreateLineItem(ctx context.Context, item *domain.LineItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *DepartmentRepository) DeleteLineItem(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.LineItem{}, "id = ?", id).Error
}
