package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/prajwal-cubiquitous/Tracura-sub000/internal/domain"
	"gorm.io/gorm"
)

type ProjectRepository struct {
	db *gorm.DB
}

func NewProjectRepository(db *gorm.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

func (r *ProjectRepository) Create(ctx context.Context, project *domain.Project) error {
	return r.db.WithContext(ctx).Create(project).Error
}

func (r *ProjectRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Project, error) {
	var project domain.Project
	query := r.db.WithContext(ctx).Where("id = ?", id)
	query = ApplyTenantFilter(ctx, query)
	err := query.First(&project).Error
	if err != nil {
		return nil, err
	}
	return &project, nil
}

// GetByIDFull loads a project with its phases, departments and line items in
// display order. Used by the budget aggregator.
func (r *ProjectRepository) GetByIDFull(ctx context.Context, id uuid.UUID) (*domain.Project, error) {
	var project domain.Project
	query := r.db.WithContext(ctx).
		Preload("Phases", func(db *gorm.DB) *gorm.DB {
			return db.Order("ordinal ASC")
		}).
		Preload("Phases.Departments", func(db *gorm.DB) *gorm.DB {
			return db.Order("display_order ASC")
		}).
		Preload("Phases.Departments.LineItems", func(db *gorm.DB) *gorm.DB {
			return db.Order("display_order ASC")
		}).
		Where("id = ?", id)
	query = ApplyTenantFilter(ctx, query)
	err := query.First(&project).Error
	if err != nil {
		return nil, err
	}
	return &project, nil
}

func (r *ProjectRepository) Update(ctx context.Context, project *domain.Project) error {
	return r.db.WithContext(ctx).Save(project).Error
}

func (r *ProjectRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.Project{}, "id = ?", id).Error
}

func (r *ProjectRepository) List(ctx context.Context, page, pageSize int, status *domain.ProjectStatus) ([]domain.Project, int64, error) {
	var projects []domain.Project
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.Project{})
	query = ApplyTenantFilter(ctx, query)

	if status != nil {
		query = query.Where("status = ?", *status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Offset(offset).Limit(pageSize).Order("created_at DESC").Find(&projects).Error

	return projects, total, err
}

// UpdateTeamMembers replaces the team member list in a single column write.
// Callers do the read-modify-write; last writer wins.
func (r *ProjectRepository) UpdateTeamMembers(ctx context.Context, projectID uuid.UUID, members pq.StringArray) error {
	return r.db.WithContext(ctx).Model(&domain.Project{}).
		Where("id = ?", projectID).
		Update("team_member_ids", members).Error
}

// SetTempApprover writes the denormalized delegation pointer on the project.
// Both fields are written together so readers never see a half-updated pair.
func (r *ProjectRepository) SetTempApprover(ctx context.Context, projectID uuid.UUID, userID *string, recordID *uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&domain.Project{}).
		Where("id = ?", projectID).
		Updates(map[string]interface{}{
			"temp_approver_user_id":   userID,
			"temp_approver_record_id": recordID,
		}).Error
}

func (r *ProjectRepository) SetSuspended(ctx context.Context, projectID uuid.UUID, suspended bool) error {
	return r.db.WithContext(ctx).Model(&domain.Project{}).
		Where("id = ?", projectID).
		Update("suspended", suspended).Error
}

func (r *ProjectRepository) SetStatus(ctx context.Context, projectID uuid.UUID, status domain.ProjectStatus) error {
	return r.db.WithContext(ctx).Model(&domain.Project{}).
		Where("id = ?", projectID).
		Update("status", status).Error
}
