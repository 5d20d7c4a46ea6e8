package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/prajwal-cubiquitous/Tracura-sub000/internal/domain"
	"gorm.io/gorm"
)

type PhaseChangeRepository struct {
	db *gorm.DB
}

func NewPhaseChangeRepository(db *gorm.DB) *PhaseChangeRepository {
	return &PhaseChangeRepository{db: db}
}

func (r *PhaseChangeRepository) Create(ctx context.Context, change *domain.PhaseChange) error {
	return r.db.WithContext(ctx).Create(change).Error
}

func (r *PhaseChangeRepository) ListByPhase(ctx context.Context, phaseID uuid.UUID, limit int) ([]domain.PhaseChange, error) {
	var changes []domain.PhaseChange
	query := r.db.WithContext(ctx).
		Where("phase_id = ?", phaseID).
		Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&changes).Error
	return changes, err
}

func (r *PhaseChangeRepository) ListByProject(ctx context.Context, projectID uuid.UUID, limit int) ([]domain.PhaseChange, error) {
	var changes []domain.PhaseChange
	query := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&changes).Error
	return changes, err
}
