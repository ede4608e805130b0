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

// DepartmentService manages departments and their deletion flows.
type DepartmentService struct {
	departments repository.DepartmentRepository
	publisher
}

// DepartmentDependencies encapsulates department service requirements.
type DepartmentDependencies struct {
	DepartmentRepo repository.DepartmentRepository
	Dispatcher     events.Dispatcher
	Logger         *zap.Logger
}

// NewDepartmentService constructs the service.
func NewDepartmentService(deps DepartmentDependencies) *DepartmentService {
	return &DepartmentService{
		departments: deps.DepartmentRepo,
		publisher:   publisher{dispatcher: deps.Dispatcher, logger: deps.Logger},
	}
}

// DepartmentInput is the add/edit department form.
type DepartmentInput struct {
	Name   string        `json:"departmentName" validate:"required,max=100" label:"Department Name"`
	Status domain.Status `json:"status" validate:"omitempty,oneof=Active Inactive" label:"Status"`
}

func (in *DepartmentInput) normalize() {
	in.Name = strings.TrimSpace(in.Name)
	if in.Status == "" {
		in.Status = domain.StatusActive
	}
}

// DepartmentView decorates stats with the deletion flow the console must use.
type DepartmentView struct {
	domain.DepartmentStats
	DeleteRoute domain.DeleteRoute `json:"deleteRoute"`
}

// DepartmentTotals summarises the department table header.
type DepartmentTotals struct {
	Total    int `json:"total"`
	Active   int `json:"active"`
	Inactive int `json:"inactive"`
}

// DepartmentStatsResult is the payload of the departments screen.
type DepartmentStatsResult struct {
	Departments []DepartmentView `json:"departments"`
	Totals      DepartmentTotals `json:"totals"`
}

var errDepartmentExists = apperrors.NewConflict("Department already exists", map[string]any{
	"departmentName": "Department already exists",
})

// Add creates a department.
func (s *DepartmentService) Add(ctx context.Context, actor *domain.ConsoleUser, in DepartmentInput) (*domain.Department, error) {
	in.normalize()
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	if err := s.ensureNameFree(ctx, in.Name, ""); err != nil {
		return nil, err
	}

	dept := &domain.Department{Name: in.Name, Status: in.Status}
	if err := s.departments.Create(ctx, dept); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, errDepartmentExists
		}
		return nil, apperrors.MapError(err)
	}
	s.publish(ctx, actor, events.EventDepartmentChanged, events.ActionCreated, dept.ID, dept)
	return dept, nil
}

// Update renames a department or toggles its status.
func (s *DepartmentService) Update(ctx context.Context, actor *domain.ConsoleUser, id string, in DepartmentInput) (*domain.Department, error) {
	in.normalize()
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	dept, err := s.departments.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.NotFoundOr(err, "department", map[string]any{"id": id})
	}
	if err := s.ensureNameFree(ctx, in.Name, id); err != nil {
		return nil, err
	}

	dept.Name = in.Name
	dept.Status = in.Status
	if err := s.departments.Update(ctx, dept); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, errDepartmentExists
		}
		return nil, apperrors.NotFoundOr(err, "department", map[string]any{"id": id})
	}
	s.publish(ctx, actor, events.EventDepartmentChanged, events.ActionUpdated, dept.ID, dept)
	return dept, nil
}

// Delete removes a department that nothing references. Departments with
// dependents must go through ReassignAndDelete.
func (s *DepartmentService) Delete(ctx context.Context, actor *domain.ConsoleUser, id string) error {
	stats, err := s.departments.GetStats(ctx, id)
	if err != nil {
		return apperrors.NotFoundOr(err, "department", map[string]any{"id": id})
	}
	if domain.PlanDepartmentDeletion(*stats) == domain.DeleteReassign {
		return apperrors.NewConflict("Department has dependents; reassign them before deleting", map[string]any{
			"employeeCount":    stats.EmployeeCount,
			"designationCount": stats.DesignationCount,
			"policyCount":      stats.PolicyCount,
		})
	}
	if err := s.departments.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrInUse) {
			return apperrors.NewConflict("Department has dependents; reassign them before deleting", nil)
		}
		return apperrors.NotFoundOr(err, "department", map[string]any{"id": id})
	}
	s.publish(ctx, actor, events.EventDepartmentChanged, events.ActionDeleted, id, nil)
	return nil
}

// ReassignAndDelete moves every dependent of sourceID to targetID and then
// deletes sourceID.
func (s *DepartmentService) ReassignAndDelete(ctx context.Context, actor *domain.ConsoleUser, sourceID, targetID string) error {
	targetID = strings.TrimSpace(targetID)
	if err := domain.ValidateReassignTarget("department", sourceID, targetID); err != nil {
		return err
	}
	if _, err := s.departments.GetByID(ctx, sourceID); err != nil {
		return apperrors.NotFoundOr(err, "department", map[string]any{"id": sourceID})
	}
	target, err := s.departments.GetByID(ctx, targetID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewValidationError("Selected department does not exist", map[string]any{
				"targetId": "Selected department does not exist",
			})
		}
		return apperrors.MapError(err)
	}
	if target.Status != domain.StatusActive {
		return apperrors.NewValidationError("Cannot reassign to an inactive department", map[string]any{
			"targetId": "Cannot reassign to an inactive department",
		})
	}

	if err := s.departments.Reassign(ctx, sourceID, targetID); err != nil {
		return mapReassignError(err, "department", sourceID)
	}
	s.publish(ctx, actor, events.EventDepartmentChanged, events.ActionReassigned, sourceID, events.ReassignedPayload{TargetID: targetID})
	return nil
}

// Stats lists departments with dependent counts. Totals always cover every
// department; status only narrows the list.
func (s *DepartmentService) Stats(ctx context.Context, status *domain.Status) (*DepartmentStatsResult, error) {
	all, err := s.departments.ListStats(ctx, nil)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	result := &DepartmentStatsResult{Departments: make([]DepartmentView, 0, len(all))}
	for _, d := range all {
		result.Totals.Total++
		if d.Status == domain.StatusActive {
			result.Totals.Active++
		} else {
			result.Totals.Inactive++
		}
		if status != nil && d.Status != *status {
			continue
		}
		result.Departments = append(result.Departments, DepartmentView{
			DepartmentStats: d,
			DeleteRoute:     domain.PlanDepartmentDeletion(d),
		})
	}
	return result, nil
}

// List returns departments for dropdowns.
func (s *DepartmentService) List(ctx context.Context, status *domain.Status) ([]domain.Department, error) {
	list, err := s.departments.List(ctx, status)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if list == nil {
		list = []domain.Department{}
	}
	return list, nil
}

func (s *DepartmentService) ensureNameFree(ctx context.Context, name, selfID string) error {
	existing, err := s.departments.GetByName(ctx, name)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return nil
	case err != nil:
		return apperrors.MapError(err)
	case existing.ID != selfID:
		return errDepartmentExists
	}
	return nil
}

// mapReassignError translates a failed reassign transaction. Constraint
// violations mean the moved rows clash with rows already in the target.
func mapReassignError(err error, resource, sourceID string) error {
	if errors.Is(err, repository.ErrDuplicate) || errors.Is(err, repository.ErrInUse) {
		msg := "Reassignment conflicts with existing " + resource + " data"
		return apperrors.NewConflict(msg, map[string]any{"targetId": msg})
	}
	return apperrors.NotFoundOr(err, resource, map[string]any{"id": sourceID})
}
