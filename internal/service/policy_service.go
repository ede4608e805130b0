package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/hr-console/internal/domain"
	"github.com/spec-kit/hr-console/internal/events"
	"github.com/spec-kit/hr-console/internal/repository"
	"github.com/spec-kit/hr-console/internal/validation"
	apperrors "github.com/spec-kit/hr-console/pkg/util/errorutil"
)

// PolicyService manages HR policies and their targeting.
type PolicyService struct {
	policies     repository.PolicyRepository
	departments  repository.DepartmentRepository
	designations repository.DesignationRepository
	loc          *time.Location
	now          func() time.Time
	publisher
}

// PolicyDependencies encapsulates policy service requirements.
type PolicyDependencies struct {
	PolicyRepo      repository.PolicyRepository
	DepartmentRepo  repository.DepartmentRepository
	DesignationRepo repository.DesignationRepository
	Dispatcher      events.Dispatcher
	Logger          *zap.Logger
	// Location decides what "today" means for effective dates.
	Location *time.Location
	Now      func() time.Time
}

// NewPolicyService constructs the service.
func NewPolicyService(deps PolicyDependencies) *PolicyService {
	loc := deps.Location
	if loc == nil {
		loc = time.UTC
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &PolicyService{
		policies:     deps.PolicyRepo,
		departments:  deps.DepartmentRepo,
		designations: deps.DesignationRepo,
		loc:          loc,
		now:          now,
		publisher:    publisher{dispatcher: deps.Dispatcher, logger: deps.Logger},
	}
}

// PolicyInput is the add/edit policy form. EffectiveDate accepts
// YYYY-MM-DD or RFC 3339.
type PolicyInput struct {
	Name          string                    `json:"policyName" validate:"required,max=150" label:"Policy Name"`
	Description   string                    `json:"description" validate:"max=5000" label:"Description"`
	EffectiveDate string                    `json:"effectiveDate"`
	ApplyToAll    bool                      `json:"applyToAll"`
	Assignments   []domain.PolicyAssignment `json:"assignTo"`
}

// PolicyListFilter narrows policy listings to a placement.
type PolicyListFilter struct {
	DepartmentID  *string `json:"departmentId,omitempty"`
	DesignationID *string `json:"designationId,omitempty"`
	Search        string  `json:"search,omitempty"`
}

// Add creates a policy. The effective date may not lie in the past.
func (s *PolicyService) Add(ctx context.Context, actor *domain.ConsoleUser, in PolicyInput) (*domain.Policy, error) {
	p, err := s.build(ctx, in, nil)
	if err != nil {
		return nil, err
	}
	if err := s.policies.Create(ctx, p); err != nil {
		return nil, mapPolicyWriteError(err)
	}
	s.publish(ctx, actor, events.EventPolicyChanged, events.ActionCreated, p.ID, nil)
	return p, nil
}

// Update replaces a policy. An unchanged effective date is accepted even
// when it is already in the past.
func (s *PolicyService) Update(ctx context.Context, actor *domain.ConsoleUser, id string, in PolicyInput) (*domain.Policy, error) {
	existing, err := s.policies.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.NotFoundOr(err, "policy", map[string]any{"id": id})
	}
	p, err := s.build(ctx, in, existing)
	if err != nil {
		return nil, err
	}
	p.ID = id
	p.CreatedAt = existing.CreatedAt
	if err := s.policies.Update(ctx, p); err != nil {
		return nil, mapPolicyWriteError(err)
	}
	s.publish(ctx, actor, events.EventPolicyChanged, events.ActionUpdated, id, nil)
	return p, nil
}

// Delete removes a policy.
func (s *PolicyService) Delete(ctx context.Context, actor *domain.ConsoleUser, id string) error {
	if err := s.policies.Delete(ctx, id); err != nil {
		return apperrors.NotFoundOr(err, "policy", map[string]any{"id": id})
	}
	s.publish(ctx, actor, events.EventPolicyChanged, events.ActionDeleted, id, nil)
	return nil
}

// List returns policies, optionally only those covering a placement.
func (s *PolicyService) List(ctx context.Context, filter PolicyListFilter) ([]domain.Policy, error) {
	list, err := s.policies.List(ctx, repository.PolicyFilter{
		DepartmentID:  trimmedOrNil(filter.DepartmentID),
		DesignationID: trimmedOrNil(filter.DesignationID),
		Search:        filter.Search,
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if list == nil {
		list = []domain.Policy{}
	}
	return list, nil
}

// Catalog loads the department/designation tree used for targeting.
func (s *PolicyService) Catalog(ctx context.Context) (domain.OrgCatalog, error) {
	depts, err := s.departments.List(ctx, nil)
	if err != nil {
		return domain.OrgCatalog{}, apperrors.MapError(err)
	}
	desigs, err := s.designations.ListByDepartments(ctx, nil)
	if err != nil {
		return domain.OrgCatalog{}, apperrors.MapError(err)
	}

	byDept := make(map[string][]string, len(depts))
	for _, d := range desigs {
		byDept[d.DepartmentID] = append(byDept[d.DepartmentID], d.ID)
	}
	catalog := domain.OrgCatalog{Departments: make([]domain.CatalogDepartment, 0, len(depts))}
	for _, d := range depts {
		catalog.Departments = append(catalog.Departments, domain.CatalogDepartment{
			ID:             d.ID,
			Active:         d.Status == domain.StatusActive,
			DesignationIDs: byDept[d.ID],
		})
	}
	return catalog, nil
}

func (s *PolicyService) build(ctx context.Context, in PolicyInput, existing *domain.Policy) (*domain.Policy, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	date, err := parseDate(in.EffectiveDate, s.loc)
	if err != nil {
		return nil, err
	}
	stored := civilDate(date, s.loc)
	unchanged := existing != nil && !date.IsZero() && civilDate(existing.EffectiveDate, time.UTC).Equal(stored)
	if !unchanged {
		if err := domain.ValidateEffectiveDate(date, s.now(), s.loc); err != nil {
			return nil, err
		}
	}

	catalog, err := s.Catalog(ctx)
	if err != nil {
		return nil, err
	}
	sel := domain.PolicySelection{ApplyToAll: in.ApplyToAll, Assignments: in.Assignments}
	sel.Normalize(catalog)
	if err := sel.Validate(catalog); err != nil {
		return nil, err
	}

	return &domain.Policy{
		Name:          in.Name,
		Description:   in.Description,
		EffectiveDate: stored,
		ApplyToAll:    sel.ApplyToAll,
		Assignments:   sel.Assignments,
	}, nil
}

func parseDate(raw string, loc *time.Location) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, nil
	}
	if t, err := time.ParseInLocation("2006-01-02", raw, loc); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Time{}, apperrors.NewValidationError("Effective Date is invalid", map[string]any{
		"effectiveDate": "Effective Date is invalid",
	})
}

// civilDate keeps only the calendar date of t as seen in loc, stored as UTC
// midnight to round-trip through a DATE column.
func civilDate(t time.Time, loc *time.Location) time.Time {
	if t.IsZero() {
		return t
	}
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func mapPolicyWriteError(err error) error {
	if errors.Is(err, repository.ErrInUse) {
		msg := "Selected department or designation does not exist"
		return apperrors.NewValidationError(msg, map[string]any{"assignTo": msg})
	}
	return apperrors.NotFoundOr(err, "policy", nil)
}
