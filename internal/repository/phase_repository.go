package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/prajwal-cubiquitous/Tracura-sub000/internal/domain"
	"gorm.io/gorm"
)

type PhaseRepository struct {
	db *gorm.DB
}

func NewPhaseRepository(db *gorm.DB) *PhaseRepository {
	return &PhaseRepository{db: db}
}

func (r *PhaseRepository) Create(ctx context.Context, phase *domain.Phase) error {
	return r.db.WithContext(ctx).Create(phase).Error
}

func (r *PhaseRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Phase, error) {
	var phase domain.Phase
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&phase).Error
	if err != nil {
		return nil, err
	}
	return &phase, nil
}

// GetByIDWithDepartments loads a phase with its departments and line items
// in display order.
func (r *PhaseRepository) GetByIDWithDepartments(ctx context.Context, id uuid.UUID) (*domain.Phase, error) {
	var phase domain.Phase
	err := r.db.WithContext(ctx).
		Preload("Departments", func(db *gorm.DB) *gorm.DB {
			return db.Order("display_order ASC")
		}).
		Preload("Departments.LineItems", func(db *gorm.DB) *gorm.DB {
			return db.Order("display_order ASC")
		}).
		Where("id = ?", id).
		First(&phase).Error
	if err != nil {
		return nil, err
	}
	return &phase, nil
}

func (r *PhaseRepository) ListByProject(ctx context.Context, projectID uuid.UUID) ([]domain.Phase, error) {
	var phases []domain.Phase
	err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("ordinal ASC").
		Find(&phases).Error
	return phases, err
}

func (r *PhaseRepository) Update(ctx context.Context, phase *domain.Phase) error {
	return r.db.WithContext(ctx).Save(phase).Error
}

func (r *PhaseRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.Phase{}, "id = ?", id).Error
}

func (r *PhaseRepository) SetEnabled(ctx context.Context, id uuid.UUID, enabled bool) error {
	return r.db.WithContext(ctx).Model(&domain.Phase{}).
		Where("id = ?", id).
		Update("enabled", enabled).Error
}

// SetEndDate moves the phase deadline. Used when an extension request is
// accepted; the request row carries its own synced marker.
func (r *PhaseRepository) SetEndDate(ctx context.Context, id uuid.UUID, endDate string) error {
	return r.db.WithContext(ctx).Model(&domain.Phase{}).
		Where("id = ?", id).
		Update("end_date", endDate).Error
}
