package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/hr-console/internal/domain"
	"github.com/spec-kit/hr-console/internal/events"
	"github.com/spec-kit/hr-console/internal/repository"
	"github.com/spec-kit/hr-console/internal/validation"
	apperrors "github.com/spec-kit/hr-console/pkg/util/errorutil"
)

// EmployeeService manages employee records and their profile sections.
type EmployeeService struct {
	employees    repository.EmployeeRepository
	departments  repository.DepartmentRepository
	designations repository.DesignationRepository
	policies     repository.PolicyRepository
	publisher
}

// EmployeeDependencies encapsulates employee service requirements.
type EmployeeDependencies struct {
	EmployeeRepo    repository.EmployeeRepository
	DepartmentRepo  repository.DepartmentRepository
	DesignationRepo repository.DesignationRepository
	PolicyRepo      repository.PolicyRepository
	Dispatcher      events.Dispatcher
	Logger          *zap.Logger
}

// NewEmployeeService constructs the service.
func NewEmployeeService(deps EmployeeDependencies) *EmployeeService {
	return &EmployeeService{
		employees:    deps.EmployeeRepo,
		departments:  deps.DepartmentRepo,
		designations: deps.DesignationRepo,
		policies:     deps.PolicyRepo,
		publisher:    publisher{dispatcher: deps.Dispatcher, logger: deps.Logger},
	}
}

// EmployeeInput is the add/edit employee form.
type EmployeeInput struct {
	EmployeeCode  string                `json:"employeeId" validate:"required,max=32" label:"Employee ID"`
	FirstName     string                `json:"firstName" validate:"required,max=80" label:"First Name"`
	LastName      string                `json:"lastName" validate:"max=80" label:"Last Name"`
	Email         string                `json:"email" validate:"required,email" label:"Email"`
	Phone         string                `json:"phone" validate:"max=32" label:"Phone Number"`
	Gender        string                `json:"gender" validate:"max=32" label:"Gender"`
	Birthday      *time.Time            `json:"birthday"`
	Address       domain.Address        `json:"address"`
	DateOfJoining *time.Time            `json:"dateOfJoining"`
	DepartmentID  *string               `json:"departmentId"`
	DesignationID *string               `json:"designationId"`
	Status        domain.EmployeeStatus `json:"status"`
	About         string                `json:"about" validate:"max=2000" label:"About"`
	AvatarURL     string                `json:"avatarUrl" validate:"omitempty,url" label:"Profile Image"`
	Permissions   *domain.Permissions   `json:"permissions,omitempty"`
}

func (in *EmployeeInput) normalize() {
	in.EmployeeCode = strings.TrimSpace(in.EmployeeCode)
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Email = strings.TrimSpace(in.Email)
	in.DepartmentID = trimmedOrNil(in.DepartmentID)
	in.DesignationID = trimmedOrNil(in.DesignationID)
	if in.Status == "" {
		in.Status = domain.EmployeeStatusActive
	}
}

// EmployeeListFilter narrows the employee directory.
type EmployeeListFilter struct {
	DepartmentID  *string                `json:"departmentId,omitempty"`
	DesignationID *string                `json:"designationId,omitempty"`
	Status        *domain.EmployeeStatus `json:"status,omitempty"`
	Search        string                 `json:"search,omitempty"`
	Limit         int                    `json:"limit,omitempty"`
	Offset        int                    `json:"offset,omitempty"`
}

// EmployeeDetails is the payload of the employee details screen.
type EmployeeDetails struct {
	Employee    *domain.Employee    `json:"employee"`
	Department  *domain.Department  `json:"department,omitempty"`
	Designation *domain.Designation `json:"designation,omitempty"`
	Policies    []domain.Policy     `json:"policies"`
}

var errEmployeeExists = apperrors.NewConflict("Employee ID or email already exists", map[string]any{
	"employeeId": "Employee ID or email already exists",
})

// Add creates an employee.
func (s *EmployeeService) Add(ctx context.Context, actor *domain.ConsoleUser, in EmployeeInput) (*domain.Employee, error) {
	in.normalize()
	if err := s.validateProfile(ctx, in); err != nil {
		return nil, err
	}

	e := &domain.Employee{}
	applyProfile(e, in)
	e.About = strings.TrimSpace(in.About)
	if in.Permissions != nil {
		if err := checkPermissionModules(*in.Permissions); err != nil {
			return nil, err
		}
		e.Permissions = in.Permissions.Normalize()
	} else {
		e.Permissions = domain.Permissions{}.Normalize()
	}

	if err := s.employees.Create(ctx, e); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, errEmployeeExists
		}
		return nil, apperrors.MapError(err)
	}
	s.publish(ctx, actor, events.EventEmployeeChanged, events.ActionCreated, e.ID, nil)
	return e, nil
}

// List returns employees matching filter.
func (s *EmployeeService) List(ctx context.Context, filter EmployeeListFilter) ([]domain.Employee, error) {
	list, err := s.employees.List(ctx, repository.EmployeeFilter{
		DepartmentID:  filter.DepartmentID,
		DesignationID: filter.DesignationID,
		Status:        filter.Status,
		Search:        filter.Search,
		Limit:         filter.Limit,
		Offset:        filter.Offset,
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if list == nil {
		list = []domain.Employee{}
	}
	return list, nil
}

// GetDetails loads an employee with its placement and applicable policies.
func (s *EmployeeService) GetDetails(ctx context.Context, id string) (*EmployeeDetails, error) {
	e, err := s.employees.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.NotFoundOr(err, "employee", map[string]any{"id": id})
	}
	details := &EmployeeDetails{Employee: e}

	if e.DepartmentID != nil {
		dept, err := s.departments.GetByID(ctx, *e.DepartmentID)
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.MapError(err)
		}
		details.Department = dept
	}
	if e.DesignationID != nil {
		desig, err := s.designations.GetByID(ctx, *e.DesignationID)
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.MapError(err)
		}
		details.Designation = desig
	}

	policies, err := s.ApplicablePolicies(ctx, e)
	if err != nil {
		return nil, err
	}
	details.Policies = policies
	return details, nil
}

// ApplicablePolicies returns the policies covering the employee's placement.
func (s *EmployeeService) ApplicablePolicies(ctx context.Context, e *domain.Employee) ([]domain.Policy, error) {
	filter := repository.PolicyFilter{}
	if e.DepartmentID != nil {
		filter.DepartmentID = e.DepartmentID
		filter.DesignationID = e.DesignationID
	}
	list, err := s.policies.List(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	deptID, desigID := deref(e.DepartmentID), deref(e.DesignationID)
	out := make([]domain.Policy, 0, len(list))
	for _, p := range list {
		if p.AppliesTo(deptID, desigID) {
			out = append(out, p)
		}
	}
	return out, nil
}

// UpdateProfile replaces the basic profile fields.
func (s *EmployeeService) UpdateProfile(ctx context.Context, actor *domain.ConsoleUser, id string, in EmployeeInput) (*domain.Employee, error) {
	in.normalize()
	if err := s.validateProfile(ctx, in); err != nil {
		return nil, err
	}
	e, err := s.employees.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.NotFoundOr(err, "employee", map[string]any{"id": id})
	}

	applyProfile(e, in)
	if err := s.employees.UpdateProfile(ctx, e); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, errEmployeeExists
		}
		return nil, apperrors.NotFoundOr(err, "employee", map[string]any{"id": id})
	}
	s.publish(ctx, actor, events.EventEmployeeChanged, events.ActionUpdated, id, events.SectionPayload{Section: "profile"})
	return e, nil
}

// UpdateBank replaces the bank section.
func (s *EmployeeService) UpdateBank(ctx context.Context, actor *domain.ConsoleUser, id string, bank domain.BankInfo) (*domain.Employee, error) {
	bank.AccountHolderName = strings.TrimSpace(bank.AccountHolderName)
	bank.BankName = strings.TrimSpace(bank.BankName)
	bank.AccountNumber = strings.TrimSpace(bank.AccountNumber)
	bank.IFSCCode = strings.ToUpper(strings.TrimSpace(bank.IFSCCode))
	if err := validation.Struct(bank); err != nil {
		return nil, err
	}
	return s.updateSection(ctx, actor, id, repository.SectionBank, bank)
}

// UpdatePersonal replaces the personal information section.
func (s *EmployeeService) UpdatePersonal(ctx context.Context, actor *domain.ConsoleUser, id string, info domain.PersonalInfo) (*domain.Employee, error) {
	if info.NoOfChildren < 0 {
		return nil, apperrors.NewValidationError("No. of children cannot be negative", map[string]any{
			"noOfChildren": "No. of children cannot be negative",
		})
	}
	return s.updateSection(ctx, actor, id, repository.SectionPersonal, info)
}

type familySection struct {
	Items []domain.FamilyMember `json:"family" validate:"dive"`
}

// UpdateFamily replaces the family members list.
func (s *EmployeeService) UpdateFamily(ctx context.Context, actor *domain.ConsoleUser, id string, members []domain.FamilyMember) (*domain.Employee, error) {
	if members == nil {
		members = []domain.FamilyMember{}
	}
	if err := validation.Struct(familySection{Items: members}); err != nil {
		return nil, err
	}
	return s.updateSection(ctx, actor, id, repository.SectionFamily, members)
}

type educationSection struct {
	Items []domain.Education `json:"education" validate:"dive"`
}

// UpdateEducation replaces the education history.
func (s *EmployeeService) UpdateEducation(ctx context.Context, actor *domain.ConsoleUser, id string, items []domain.Education) (*domain.Employee, error) {
	if items == nil {
		items = []domain.Education{}
	}
	if err := validation.Struct(educationSection{Items: items}); err != nil {
		return nil, err
	}
	for _, item := range items {
		if err := checkPeriod("education", item.StartDate, item.EndDate); err != nil {
			return nil, err
		}
	}
	return s.updateSection(ctx, actor, id, repository.SectionEducation, items)
}

type experienceSection struct {
	Items []domain.Experience `json:"experience" validate:"dive"`
}

// UpdateExperience replaces the previous employment history. Entries marked
// as current lose their end date.
func (s *EmployeeService) UpdateExperience(ctx context.Context, actor *domain.ConsoleUser, id string, items []domain.Experience) (*domain.Employee, error) {
	if items == nil {
		items = []domain.Experience{}
	}
	if err := validation.Struct(experienceSection{Items: items}); err != nil {
		return nil, err
	}
	for i := range items {
		if items[i].Current {
			items[i].EndDate = nil
		}
		if err := checkPeriod("experience", items[i].StartDate, items[i].EndDate); err != nil {
			return nil, err
		}
	}
	return s.updateSection(ctx, actor, id, repository.SectionExperience, items)
}

type emergencySection struct {
	Items []domain.EmergencyContact `json:"emergencyContacts" validate:"dive"`
}

// UpdateEmergency replaces the emergency contacts.
func (s *EmployeeService) UpdateEmergency(ctx context.Context, actor *domain.ConsoleUser, id string, contacts []domain.EmergencyContact) (*domain.Employee, error) {
	if contacts == nil {
		contacts = []domain.EmergencyContact{}
	}
	if err := validation.Struct(emergencySection{Items: contacts}); err != nil {
		return nil, err
	}
	return s.updateSection(ctx, actor, id, repository.SectionEmergency, contacts)
}

type aboutSection struct {
	About string `json:"about" validate:"max=2000" label:"About"`
}

// UpdateAbout replaces the free-text about section.
func (s *EmployeeService) UpdateAbout(ctx context.Context, actor *domain.ConsoleUser, id, about string) (*domain.Employee, error) {
	about = strings.TrimSpace(about)
	if err := validation.Struct(aboutSection{About: about}); err != nil {
		return nil, err
	}
	return s.updateSection(ctx, actor, id, repository.SectionAbout, about)
}

// UpdatePermissions stores a normalized permission matrix.
func (s *EmployeeService) UpdatePermissions(ctx context.Context, actor *domain.ConsoleUser, id string, perms domain.Permissions) (*domain.Employee, error) {
	if err := checkPermissionModules(perms); err != nil {
		return nil, err
	}
	return s.updateSection(ctx, actor, id, repository.SectionPermissions, perms.Normalize())
}

// Delete removes an employee.
func (s *EmployeeService) Delete(ctx context.Context, actor *domain.ConsoleUser, id string) error {
	if err := s.employees.Delete(ctx, id); err != nil {
		return apperrors.NotFoundOr(err, "employee", map[string]any{"id": id})
	}
	s.publish(ctx, actor, events.EventEmployeeChanged, events.ActionDeleted, id, nil)
	return nil
}

func (s *EmployeeService) updateSection(ctx context.Context, actor *domain.ConsoleUser, id string, section repository.EmployeeSection, value any) (*domain.Employee, error) {
	if err := s.employees.UpdateSection(ctx, id, section, value); err != nil {
		return nil, apperrors.NotFoundOr(err, "employee", map[string]any{"id": id})
	}
	s.publish(ctx, actor, events.EventEmployeeChanged, events.ActionUpdated, id, events.SectionPayload{Section: string(section)})

	e, err := s.employees.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.NotFoundOr(err, "employee", map[string]any{"id": id})
	}
	return e, nil
}

func (s *EmployeeService) validateProfile(ctx context.Context, in EmployeeInput) error {
	if err := validation.Struct(in); err != nil {
		return err
	}
	if !in.Status.Valid() {
		return apperrors.NewValidationError("Status is invalid", map[string]any{"status": "Status is invalid"})
	}
	return s.checkPlacement(ctx, in.DepartmentID, in.DesignationID)
}

// checkPlacement requires the designation, when set, to belong to the employee's department.
func (s *EmployeeService) checkPlacement(ctx context.Context, departmentID, designationID *string) error {
	if departmentID != nil {
		if _, err := s.departments.GetByID(ctx, *departmentID); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.NewValidationError("Selected department does not exist", map[string]any{
					"departmentId": "Selected department does not exist",
				})
			}
			return apperrors.MapError(err)
		}
	}
	if designationID == nil {
		return nil
	}
	if departmentID == nil {
		return apperrors.NewValidationError("Department is required", map[string]any{
			"departmentId": "Department is required",
		})
	}
	desig, err := s.designations.GetByID(ctx, *designationID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewValidationError("Selected designation does not exist", map[string]any{
				"designationId": "Selected designation does not exist",
			})
		}
		return apperrors.MapError(err)
	}
	if desig.DepartmentID != *departmentID {
		return apperrors.NewValidationError("Designation does not belong to the selected department", map[string]any{
			"designationId": "Designation does not belong to the selected department",
		})
	}
	return nil
}

func applyProfile(e *domain.Employee, in EmployeeInput) {
	e.EmployeeCode = in.EmployeeCode
	e.FirstName = in.FirstName
	e.LastName = in.LastName
	e.Email = in.Email
	e.Phone = strings.TrimSpace(in.Phone)
	e.Gender = strings.TrimSpace(in.Gender)
	e.Birthday = in.Birthday
	e.Address = in.Address
	e.DateOfJoining = in.DateOfJoining
	e.DepartmentID = in.DepartmentID
	e.DesignationID = in.DesignationID
	e.Status = in.Status
	e.AvatarURL = strings.TrimSpace(in.AvatarURL)
}

func checkPermissionModules(p domain.Permissions) error {
	if unknown := p.UnknownModules(); len(unknown) > 0 {
		return apperrors.NewValidationError("Unknown permission module: "+unknown[0], map[string]any{
			"permissions": unknown,
		})
	}
	return nil
}

func checkPeriod(field string, start, end *time.Time) error {
	if start != nil && end != nil && end.Before(*start) {
		return apperrors.NewValidationError("End date cannot be earlier than start date", map[string]any{
			field: "End date cannot be earlier than start date",
		})
	}
	return nil
}

func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
