package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/hr-console/internal/domain"
	"github.com/spec-kit/hr-console/internal/events"
	"github.com/spec-kit/hr-console/internal/repository"
	"github.com/spec-kit/hr-console/internal/validation"
	apperrors "github.com/spec-kit/hr-console/pkg/util/errorutil"
)

// DesignationService manages designations within departments.
type DesignationService struct {
	designations repository.DesignationRepository
	departments  repository.DepartmentRepository
	publisher
}

// DesignationDependencies encapsulates designation service requirements.
type DesignationDependencies struct {
	DesignationRepo repository.DesignationRepository
	DepartmentRepo  repository.DepartmentRepository
	Dispatcher      events.Dispatcher
	Logger          *zap.Logger
}

// NewDesignationService constructs the service.
func NewDesignationService(deps DesignationDependencies) *DesignationService {
	return &DesignationService{
		designations: deps.DesignationRepo,
		departments:  deps.DepartmentRepo,
		publisher:    publisher{dispatcher: deps.Dispatcher, logger: deps.Logger},
	}
}

// DesignationInput is the add/edit designation form.
type DesignationInput struct {
	Name         string        `json:"designationName" validate:"required,max=100" label:"Designation Name"`
	DepartmentID string        `json:"departmentId" validate:"required" label:"Department"`
	Status       domain.Status `json:"status" validate:"omitempty,oneof=Active Inactive" label:"Status"`
}

func (in *DesignationInput) normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.DepartmentID = strings.TrimSpace(in.DepartmentID)
	if in.Status == "" {
		in.Status = domain.StatusActive
	}
}

// DesignationListFilter narrows the designations screen.
type DesignationListFilter struct {
	DepartmentID *string        `json:"departmentId,omitempty"`
	Status       *domain.Status `json:"status,omitempty"`
	Search       string         `json:"search,omitempty"`
}

// DesignationView decorates stats with the deletion flow the console must use.
type DesignationView struct {
	domain.DesignationStats
	DeleteRoute domain.DeleteRoute `json:"deleteRoute"`
}

var errDesignationExists = apperrors.NewConflict("Designation already exists in this department", map[string]any{
	"designationName": "Designation already exists in this department",
})

// Add creates a designation under an active department.
func (s *DesignationService) Add(ctx context.Context, actor *domain.ConsoleUser, in DesignationInput) (*domain.Designation, error) {
	in.normalize()
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	if err := s.checkDepartment(ctx, in.DepartmentID, true); err != nil {
		return nil, err
	}
	if err := s.ensureNameFree(ctx, in.Name, in.DepartmentID, ""); err != nil {
		return nil, err
	}

	d := &domain.Designation{Name: in.Name, DepartmentID: in.DepartmentID, Status: in.Status}
	if err := s.designations.Create(ctx, d); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, errDesignationExists
		}
		return nil, apperrors.MapError(err)
	}
	s.publish(ctx, actor, events.EventDesignationChanged, events.ActionCreated, d.ID, d)
	return d, nil
}

// Update edits a designation. Moving it to another department requires that
// department to be active.
func (s *DesignationService) Update(ctx context.Context, actor *domain.ConsoleUser, id string, in DesignationInput) (*domain.Designation, error) {
	in.normalize()
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	d, err := s.designations.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.NotFoundOr(err, "designation", map[string]any{"id": id})
	}
	if err := s.checkDepartment(ctx, in.DepartmentID, in.DepartmentID != d.DepartmentID); err != nil {
		return nil, err
	}
	if err := s.ensureNameFree(ctx, in.Name, in.DepartmentID, id); err != nil {
		return nil, err
	}

	d.Name = in.Name
	d.DepartmentID = in.DepartmentID
	d.Status = in.Status
	if err := s.designations.Update(ctx, d); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, errDesignationExists
		}
		return nil, apperrors.NotFoundOr(err, "designation", map[string]any{"id": id})
	}
	s.publish(ctx, actor, events.EventDesignationChanged, events.ActionUpdated, d.ID, d)
	return d, nil
}

// Delete removes a designation without employees.
func (s *DesignationService) Delete(ctx context.Context, actor *domain.ConsoleUser, id string) error {
	stats, err := s.designations.GetStats(ctx, id)
	if err != nil {
		return apperrors.NotFoundOr(err, "designation", map[string]any{"id": id})
	}
	if domain.PlanDesignationDeletion(*stats) == domain.DeleteReassign {
		return apperrors.NewConflict("Designation has employees; reassign them before deleting", map[string]any{
			"employeeCount": stats.EmployeeCount,
		})
	}
	if err := s.designations.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrInUse) {
			return apperrors.NewConflict("Designation has employees; reassign them before deleting", nil)
		}
		return apperrors.NotFoundOr(err, "designation", map[string]any{"id": id})
	}
	s.publish(ctx, actor, events.EventDesignationChanged, events.ActionDeleted, id, nil)
	return nil
}

// ReassignAndDelete moves employees and policy assignments of sourceID to a
// designation of the same department and then deletes sourceID.
func (s *DesignationService) ReassignAndDelete(ctx context.Context, actor *domain.ConsoleUser, sourceID, targetID string) error {
	targetID = strings.TrimSpace(targetID)
	if err := domain.ValidateReassignTarget("designation", sourceID, targetID); err != nil {
		return err
	}
	source, err := s.designations.GetByID(ctx, sourceID)
	if err != nil {
		return apperrors.NotFoundOr(err, "designation", map[string]any{"id": sourceID})
	}
	target, err := s.designations.GetByID(ctx, targetID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewValidationError("Selected designation does not exist", map[string]any{
				"targetId": "Selected designation does not exist",
			})
		}
		return apperrors.MapError(err)
	}
	if target.DepartmentID != source.DepartmentID {
		return apperrors.NewValidationError("Target designation must belong to the same department", map[string]any{
			"targetId": "Target designation must belong to the same department",
		})
	}
	if target.Status != domain.StatusActive {
		return apperrors.NewValidationError("Target designation must be active", map[string]any{
			"targetId": "Target designation must be active",
		})
	}

	if err := s.designations.Reassign(ctx, sourceID, targetID); err != nil {
		return mapReassignError(err, "designation", sourceID)
	}
	s.publish(ctx, actor, events.EventDesignationChanged, events.ActionReassigned, sourceID, events.ReassignedPayload{TargetID: targetID})
	return nil
}

// List returns designations with employee counts.
func (s *DesignationService) List(ctx context.Context, filter DesignationListFilter) ([]DesignationView, error) {
	stats, err := s.designations.ListStats(ctx, repository.DesignationFilter{
		DepartmentID: filter.DepartmentID,
		Status:       filter.Status,
		Search:       filter.Search,
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	views := make([]DesignationView, 0, len(stats))
	for _, d := range stats {
		views = append(views, DesignationView{DesignationStats: d, DeleteRoute: domain.PlanDesignationDeletion(d)})
	}
	return views, nil
}

func (s *DesignationService) checkDepartment(ctx context.Context, departmentID string, requireActive bool) error {
	dept, err := s.departments.GetByID(ctx, departmentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewValidationError("Selected department does not exist", map[string]any{
				"departmentId": "Selected department does not exist",
			})
		}
		return apperrors.MapError(err)
	}
	if requireActive && dept.Status != domain.StatusActive {
		return apperrors.NewValidationError("Selected department is inactive", map[string]any{
			"departmentId": "Selected department is inactive",
		})
	}
	return nil
}

func (s *DesignationService) ensureNameFree(ctx context.Context, name, departmentID, selfID string) error {
	exists, err := s.designations.ExistsInDepartment(ctx, name, departmentID, selfID)
	if err != nil {
		return apperrors.MapError(err)
	}
	if exists {
		return errDesignationExists
	}
	return nil
}
