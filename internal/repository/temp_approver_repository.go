package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/prajwal-cubiquitous/Tracura-sub000/internal/domain"
	"gorm.io/gorm"
)

type TempApproverRepository struct {
	db *gorm.DB
}

func NewTempApproverRepository(db *gorm.DB) *TempApproverRepository {
	return &TempApproverRepository{db: db}
}

func (r *TempApproverRepository) Create(ctx context.Context, record *domain.TempApprover) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *TempApproverRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.TempApprover, error) {
	var record domain.TempApprover
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *TempApproverRepository) ListByProject(ctx context.Context, projectID uuid.UUID) ([]domain.TempApprover, error) {
	var records []domain.TempApprover
	err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("created_at DESC").
		Find(&records).Error
	return records, err
}

func (r *TempApproverRepository) Update(ctx context.Context, record *domain.TempApprover) error {
	return r.db.WithContext(ctx).Save(record).Error
}

func (r *TempApproverRepository) SetStatus(ctx context.Context, id uuid.UUID, status domain.TempApproverStatus) error {
	return r.db.WithContext(ctx).Model(&domain.TempApprover{}).
		Where("id = ?", id).
		Update("status", status).Error
}

func (r *TempApproverRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.TempApprover{}, "id = ?", id).Error
}

// ListLapsed returns delegations whose stored status no longer matches their
// window: still marked pending, accepted or active although the window closed
// before asOf. The reconciliation job rewrites these to expired.
func (r *TempApproverRepository) ListLapsed(ctx context.Context, asOf time.Time) ([]domain.TempApprover, error) {
	var records []domain.TempApprover
	err := r.db.WithContext(ctx).
		Where("status IN ? AND end_date < ?", []domain.TempApproverStatus{
			domain.TempApproverStatusPending,
			domain.TempApproverStatusAccepted,
			domain.TempApproverStatusActive,
		}, asOf).
		Find(&records).Error
	return records, err
}
