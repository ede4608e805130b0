package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/spec-kit/hr-console/internal/domain"
	"github.com/spec-kit/hr-console/internal/events"
	"github.com/spec-kit/hr-console/internal/repository"
	apperrors "github.com/spec-kit/hr-console/pkg/util/errorutil"
)

type employeeFixture struct {
	svc      *EmployeeService
	org      *fakeOrg
	emps     *fakeEmployees
	policies *fakePolicies
	events   *recordingDispatcher
}

func newEmployeeFixture() employeeFixture {
	org := newFakeOrg()
	emps := newFakeEmployees(org)
	policies := newFakePolicies()
	d := &recordingDispatcher{}
	svc := NewEmployeeService(EmployeeDependencies{
		EmployeeRepo:    emps,
		DepartmentRepo:  fakeDepartments{org},
		DesignationRepo: fakeDesignations{org},
		PolicyRepo:      policies,
		Dispatcher:      d,
	})
	return employeeFixture{svc: svc, org: org, emps: emps, policies: policies, events: d}
}

func TestEmployeeAdd(t *testing.T) {
	f := newEmployeeFixture()
	dept := f.org.addDepartment("Eng", domain.StatusActive)
	desig := f.org.addDesignation("Dev", dept.ID)
	ctx := context.Background()

	in := EmployeeInput{
		EmployeeCode:  "EMP-001",
		FirstName:     "Anita",
		Email:         "anita@example.com",
		DepartmentID:  &dept.ID,
		DesignationID: &desig.ID,
	}
	e, err := f.svc.Add(ctx, testActor, in)
	require.NoError(t, err)
	require.Equal(t, domain.EmployeeStatusActive, e.Status)
	require.Len(t, e.Permissions.Modules, len(domain.PermissionModules))
	require.Equal(t, events.EventEmployeeChanged, f.events.last().Type)

	_, err = f.svc.Add(ctx, testActor, in)
	require.Equal(t, apperrors.CodeConflict, apperrors.ToDomainError(err).Code)
}

func TestEmployeeAdd_PlacementRules(t *testing.T) {
	f := newEmployeeFixture()
	eng := f.org.addDepartment("Eng", domain.StatusActive)
	sales := f.org.addDepartment("Sales", domain.StatusActive)
	rep := f.org.addDesignation("Rep", sales.ID)
	ctx := context.Background()

	base := EmployeeInput{EmployeeCode: "E1", FirstName: "A", Email: "a@example.com"}

	in := base
	in.DesignationID = &rep.ID
	_, err := f.svc.Add(ctx, testActor, in)
	require.Equal(t, "Department is required", apperrors.ToDomainError(err).Message)

	in.DepartmentID = &eng.ID
	_, err = f.svc.Add(ctx, testActor, in)
	require.Equal(t, "Designation does not belong to the selected department", apperrors.ToDomainError(err).Message)

	in = base
	in.Email = "not-an-email"
	_, err = f.svc.Add(ctx, testActor, in)
	require.Equal(t, "Email must be a valid email address", apperrors.ToDomainError(err).Message)

	in = base
	in.Status = "Retired"
	_, err = f.svc.Add(ctx, testActor, in)
	require.Equal(t, "Status is invalid", apperrors.ToDomainError(err).Message)
}

func TestEmployeeSections(t *testing.T) {
	f := newEmployeeFixture()
	e := f.org.addEmployee("", "")
	ctx := context.Background()

	_, err := f.svc.UpdateBank(ctx, testActor, e.ID, domain.BankInfo{BankName: "HDFC"})
	require.Equal(t, "Account Holder Name is required", apperrors.ToDomainError(err).Message)

	updated, err := f.svc.UpdateBank(ctx, testActor, e.ID, domain.BankInfo{
		AccountHolderName: "Anita",
		BankName:          "HDFC",
		AccountNumber:     "123",
		IFSCCode:          " hdfc0001 ",
	})
	require.NoError(t, err)
	require.Equal(t, "HDFC0001", updated.Bank.IFSCCode)
	require.Equal(t, events.SectionPayload{Section: "bank"}, f.events.last().Payload)

	_, err = f.svc.UpdateFamily(ctx, testActor, e.ID, []domain.FamilyMember{{Name: "Ravi"}})
	de := apperrors.ToDomainError(err)
	require.Equal(t, "Relationship is required", de.Message)
	require.Contains(t, de.Details, "family[0].relationship")

	_, err = f.svc.UpdateFamily(ctx, testActor, e.ID, nil)
	require.NoError(t, err)
	require.Equal(t, []domain.FamilyMember{}, f.emps.sections[e.ID][repository.SectionFamily])

	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(-1, 0, 0)
	_, err = f.svc.UpdateExperience(ctx, testActor, e.ID, []domain.Experience{{Company: "Acme", Designation: "Dev", StartDate: &start, EndDate: &end}})
	require.Equal(t, "End date cannot be earlier than start date", apperrors.ToDomainError(err).Message)

	updated, err = f.svc.UpdateExperience(ctx, testActor, e.ID, []domain.Experience{{Company: "Acme", Designation: "Dev", StartDate: &start, EndDate: &end, Current: true}})
	require.NoError(t, err)
	require.Nil(t, updated.Experience[0].EndDate)

	_, err = f.svc.UpdateAbout(ctx, testActor, "missing", "hello")
	require.Equal(t, apperrors.CodeNotFound, apperrors.ToDomainError(err).Code)
}

func TestEmployeeUpdatePermissions(t *testing.T) {
	f := newEmployeeFixture()
	e := f.org.addEmployee("", "")
	ctx := context.Background()

	_, err := f.svc.UpdatePermissions(ctx, testActor, e.ID, domain.Permissions{
		EnabledModules: map[string]bool{"payroll": true},
	})
	require.Equal(t, "Unknown permission module: payroll", apperrors.ToDomainError(err).Message)

	updated, err := f.svc.UpdatePermissions(ctx, testActor, e.ID, domain.Permissions{
		EnabledModules: map[string]bool{domain.ModuleLeaves: true},
		Modules: map[string]domain.PermissionActions{
			domain.ModuleLeaves: {Read: true},
			domain.ModuleTasks:  {Read: true, Write: true},
		},
	})
	require.NoError(t, err)
	require.True(t, updated.Permissions.Allows(domain.ModuleLeaves, "read"))
	require.False(t, updated.Permissions.Allows(domain.ModuleTasks, "read"))
	require.Equal(t, domain.PermissionActions{}, updated.Permissions.Modules[domain.ModuleTasks])
}

func TestEmployeeDetailsIncludesApplicablePolicies(t *testing.T) {
	f := newEmployeeFixture()
	dept := f.org.addDepartment("Eng", domain.StatusActive)
	dev := f.org.addDesignation("Dev", dept.ID)
	qa := f.org.addDesignation("QA", dept.ID)
	e := f.org.addEmployee(dept.ID, dev.ID)
	ctx := context.Background()

	require.NoError(t, f.policies.Create(ctx, &domain.Policy{Name: "Everyone", ApplyToAll: true}))
	require.NoError(t, f.policies.Create(ctx, &domain.Policy{Name: "Dev only", Assignments: []domain.PolicyAssignment{
		{DepartmentID: dept.ID, DesignationIDs: []string{dev.ID}},
	}}))
	require.NoError(t, f.policies.Create(ctx, &domain.Policy{Name: "QA only", Assignments: []domain.PolicyAssignment{
		{DepartmentID: dept.ID, DesignationIDs: []string{qa.ID}},
	}}))

	details, err := f.svc.GetDetails(ctx, e.ID)
	require.NoError(t, err)
	require.Equal(t, "Eng", details.Department.Name)
	require.Equal(t, "Dev", details.Designation.Name)

	names := []string{}
	for _, p := range details.Policies {
		names = append(names, p.Name)
	}
	require.ElementsMatch(t, []string{"Everyone", "Dev only"}, names)
}

func TestEmployeeDelete(t *testing.T) {
	f := newEmployeeFixture()
	e := f.org.addEmployee("", "")

	require.NoError(t, f.svc.Delete(context.Background(), testActor, e.ID))
	err := f.svc.Delete(context.Background(), testActor, e.ID)
	require.Equal(t, apperrors.CodeNotFound, apperrors.ToDomainError(err).Code)
}
