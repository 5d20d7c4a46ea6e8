package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/prajwal-cubiquitous/Tracura-sub000/internal/domain"
	"gorm.io/gorm"
)

type ExtensionRequestRepository struct {
	db *gorm.DB
}

func NewExtensionRequestRepository(db *gorm.DB) *ExtensionRequestRepository {
	return &ExtensionRequestRepository{db: db}
}

func (r *ExtensionRequestRepository) Create(ctx context.Context, request *domain.PhaseExtensionRequest) error {
	return r.db.WithContext(ctx).Create(request).Error
}

func (r *ExtensionRequestRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.PhaseExtensionRequest, error) {
	var request domain.PhaseExtensionRequest
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&request).Error
	if err != nil {
		return nil, err
	}
	return &request, nil
}

func (r *ExtensionRequestRepository) ListByPhase(ctx context.Context, phaseID uuid.UUID) ([]domain.PhaseExtensionRequest, error) {
	var requests []domain.PhaseExtensionRequest
	err := r.db.WithContext(ctx).
		Where("phase_id = ?", phaseID).
		Order("created_at DESC").
		Find(&requests).Error
	return requests, err
}

func (r *ExtensionRequestRepository) ListByProject(ctx context.Context, projectID uuid.UUID) ([]domain.PhaseExtensionRequest, error) {
	var requests []domain.PhaseExtensionRequest
	err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("created_at DESC").
		Find(&requests).Error
	return requests, err
}

func (r *ExtensionRequestRepository) Update(ctx context.Context, request *domain.PhaseExtensionRequest) error {
	return r.db.WithContext(ctx).Save(request).Error
}

// MarkSynced flips the synced marker once the phase deadline write has been
// confirmed, either inline or by the reconciliation job.
func (r *ExtensionRequestRepository) MarkSynced(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&domain.PhaseExtensionRequest{}).
		Where("id = ?", id).
		Update("phase_synced", true).Error
}

// ListUnsyncedAccepted returns accepted requests whose phase deadline write
// has not been confirmed. These are the half-committed acceptances the
// reconciliation job repairs.
func (r *ExtensionRequestRepository) ListUnsyncedAccepted(ctx context.Context) ([]domain.PhaseExtensionRequest, error) {
	var requests []domain.PhaseExtensionRequest
	err := r.db.WithContext(ctx).
		Where("status = ? AND phase_synced = ?", domain.ExtensionStatusAccepted, false).
		Find(&requests).Error
	return requests, err
}
