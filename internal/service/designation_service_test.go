package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/spec-kit/hr-console/internal/domain"
	"github.com/spec-kit/hr-console/internal/events"
	apperrors "github.com/spec-kit/hr-console/pkg/util/errorutil"
)

func newDesignationFixture() (*DesignationService, *fakeOrg, *recordingDispatcher) {
	org := newFakeOrg()
	d := &recordingDispatcher{}
	svc := NewDesignationService(DesignationDependencies{
		DesignationRepo: fakeDesignations{org},
		DepartmentRepo:  fakeDepartments{org},
		Dispatcher:      d,
	})
	return svc, org, d
}

func TestDesignationAdd_QALead(t *testing.T) {
	svc, org, d := newDesignationFixture()
	dept := org.addDepartment("Quality", domain.StatusActive)

	desig, err := svc.Add(context.Background(), testActor, DesignationInput{Name: "QA Lead", DepartmentID: dept.ID})
	require.NoError(t, err)
	require.Equal(t, "QA Lead", desig.Name)
	require.Equal(t, dept.ID, desig.DepartmentID)
	require.Equal(t, events.EventDesignationChanged, d.last().Type)

	_, err = svc.Add(context.Background(), testActor, DesignationInput{Name: "qa lead", DepartmentID: dept.ID})
	de := apperrors.ToDomainError(err)
	require.Equal(t, apperrors.CodeConflict, de.Code)
	require.Equal(t, "Designation already exists in this department", de.Message)
}

func TestDesignationAdd_Validation(t *testing.T) {
	svc, org, _ := newDesignationFixture()
	inactive := org.addDepartment("Old", domain.StatusInactive)
	ctx := context.Background()

	_, err := svc.Add(ctx, testActor, DesignationInput{DepartmentID: inactive.ID})
	require.Equal(t, "Designation Name is required", apperrors.ToDomainError(err).Message)

	_, err = svc.Add(ctx, testActor, DesignationInput{Name: "QA Lead"})
	require.Equal(t, "Department is required", apperrors.ToDomainError(err).Message)

	_, err = svc.Add(ctx, testActor, DesignationInput{Name: "QA Lead", DepartmentID: "nope"})
	require.Equal(t, "Selected department does not exist", apperrors.ToDomainError(err).Message)

	_, err = svc.Add(ctx, testActor, DesignationInput{Name: "QA Lead", DepartmentID: inactive.ID})
	require.Equal(t, "Selected department is inactive", apperrors.ToDomainError(err).Message)
	require.Empty(t, org.calls)
}

func TestDesignationDeleteAndReassign(t *testing.T) {
	svc, org, _ := newDesignationFixture()
	dept := org.addDepartment("Eng", domain.StatusActive)
	other := org.addDepartment("Sales", domain.StatusActive)
	source := org.addDesignation("Dev", dept.ID)
	target := org.addDesignation("Engineer", dept.ID)
	foreign := org.addDesignation("Rep", other.ID)
	emp := org.addEmployee(dept.ID, source.ID)
	ctx := context.Background()

	err := svc.Delete(ctx, testActor, source.ID)
	require.Equal(t, apperrors.CodeConflict, apperrors.ToDomainError(err).Code)

	err = svc.ReassignAndDelete(ctx, testActor, source.ID, foreign.ID)
	require.Equal(t, "Target designation must belong to the same department", apperrors.ToDomainError(err).Message)

	require.NoError(t, svc.ReassignAndDelete(ctx, testActor, source.ID, target.ID))
	require.Equal(t, target.ID, *org.employees[emp.ID].DesignationID)
	require.NotContains(t, org.designations, source.ID)

	require.NoError(t, svc.Delete(ctx, testActor, foreign.ID))
}

func TestDesignationList_FilterAndRoutes(t *testing.T) {
	svc, org, _ := newDesignationFixture()
	dept := org.addDepartment("Eng", domain.StatusActive)
	busy := org.addDesignation("Dev", dept.ID)
	org.addDesignation("Rep", org.addDepartment("Sales", domain.StatusActive).ID)
	org.addEmployee(dept.ID, busy.ID)

	views, err := svc.List(context.Background(), DesignationListFilter{DepartmentID: &dept.ID})
	require.NoError(t, err)
	require.Len(t, views, 1)
	require.Equal(t, "Eng", views[0].DepartmentName)
	require.Equal(t, domain.DeleteReassign, views[0].DeleteRoute)
}
