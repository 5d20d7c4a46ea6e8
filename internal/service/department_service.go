package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/prajwal-cubiquitous/Tracura-sub000/internal/domain"
	"github.com/prajwal-cubiquitous/Tracura-sub000/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DepartmentService handles departments and their line items.
type DepartmentService struct {
	departmentRepo *repository.DepartmentRepository
	phaseRepo      *repository.PhaseRepository
	logger         *zap.Logger
}

func NewDepartmentService(
	departmentRepo *repository.DepartmentRepository,
	phaseRepo *repository.PhaseRepository,
	logger *zap.Logger,
) *DepartmentService {
	return &DepartmentService{
		departmentRepo: departmentRepo,
		phaseRepo:      phaseRepo,
		logger:         logger,
	}
}

// Create adds a department to a phase. Names must be unique within the
// phase, compared case-insensitively.
func (s *DepartmentService) Create(ctx context.Context, phaseID uuid.UUID, req domain.CreateDepartmentRequest) (*domain.Department, error) {
	phase, err := s.phaseRepo.GetByID(ctx, phaseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load phase: %w", err)
	}
	if !phase.Enabled {
		return nil, ErrPhaseDisabled
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	exists, err := s.departmentRepo.ExistsByName(ctx, phaseID, name)
	if err != nil {
		return nil, fmt.Errorf("failed to check department name: %w", err)
	}
	if exists {
		return nil, ErrConflict
	}

	existing, err := s.departmentRepo.ListByPhase(ctx, phaseID)
	if err != nil {
		return nil, fmt.Errorf("failed to load departments: %w", err)
	}

	department := &domain.Department{
		PhaseID:      phaseID,
		Name:         name,
		Mode:         domain.ContractorMode(req.Mode),
		DisplayOrder: len(existing),
	}
	if err := s.departmentRepo.Create(ctx, department); err != nil {
		return nil, fmt.Errorf("failed to create department: %w", err)
	}
	return department, nil
}

func (s *DepartmentService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Department, error) {
	department, err := s.departmentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load department: %w", err)
	}
	return department, nil
}

func (s *DepartmentService) ListByPhase(ctx context.Context, phaseID uuid.UUID) ([]domain.Department, error) {
	return s.departmentRepo.ListByPhase(ctx, phaseID)
}

func (s *DepartmentService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}
	return s.departmentRepo.Delete(ctx, id)
}

// SetLineItems replaces the department's line items. Inputs are validated
// before any write: quantity and unit price must parse as non-negative
// decimals and a unit of measure is required. Labour items carry no spec.
func (s *DepartmentService) SetLineItems(ctx context.Context, departmentID uuid.UUID, inputs []domain.LineItemInput) (*domain.Department, error) {
	if _, err := s.GetByID(ctx, departmentID); err != nil {
		return nil, err
	}

	items := make([]domain.LineItem, 0, len(inputs))
	for i, input := range inputs {
		item, err := buildLineItem(input)
		if err != nil {
			return nil, fmt.Errorf("%w: item %d: %s", ErrInvalidInput, i, err)
		}
		items = append(items, item)
	}

	if err := s.departmentRepo.ReplaceLineItems(ctx, departmentID, items); err != nil {
		s.logger.Error("Failed to replace line items",
			zap.String("department_id", departmentID.String()),
			zap.Error(err))
		return nil, fmt.Errorf("failed to replace line items: %w", err)
	}
	return s.GetByID(ctx, departmentID)
}

func buildLineItem(input domain.LineItemInput) (domain.LineItem, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return domain.LineItem{}, errors.New("name is required")
	}
	unit := strings.TrimSpace(input.Unit)
	if unit == "" {
		return domain.LineItem{}, errors.New("unit of measure is required")
	}
	quantity, err := domain.ParseNonNegativeDecimal("quantity", input.Quantity)
	if err != nil {
		return domain.LineItem{}, err
	}
	unitPrice, err := domain.ParseNonNegativeDecimal("unitPrice", input.UnitPrice)
	if err != nil {
		return domain.LineItem{}, err
	}

	spec := strings.TrimSpace(input.Spec)
	if input.ItemType == domain.LineItemTypeLabour {
		spec = ""
	}

	return domain.LineItem{
		ItemType:  input.ItemType,
		Name:      name,
		Spec:      spec,
		Quantity:  quantity,
		Unit:      unit,
		UnitPrice: unitPrice,
	}, nil
}

// Budget recomputes the department budget from its line items.
func (s *DepartmentService) Budget(ctx context.Context, departmentID uuid.UUID) (float64, error) {
	department, err := s.GetByID(ctx, departmentID)
	if err != nil {
		return 0, err
	}
	return domain.DepartmentBudget(department.LineItems), nil
}
