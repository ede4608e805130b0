// Package handlers binds console request events to the HR services.
package handlers

import (
	"strings"

	"github.com/spec-kit/hr-console/internal/api/socket"
	"github.com/spec-kit/hr-console/internal/auth"
	apperrors "github.com/spec-kit/hr-console/pkg/util/errorutil"
)

// Services bundles the backends the event handlers call.
type Services struct {
	Departments  DepartmentService
	Designations DesignationService
	Employees    EmployeeService
	Policies     PolicyService
	Tasks        TaskService
	Projects     ProjectService
}

var listLoad = socket.ListLoad()

// Register attaches every console event to r. Read events are open to any
// signed-in user; everything else requires a mutating role.
func Register(r *socket.Router, s Services) {
	mutating := socket.WithRoles(auth.MutatingRoles...)

	(&departmentHandlers{service: s.Departments}).register(r, mutating)
	(&designationHandlers{service: s.Designations}).register(r, mutating)
	(&employeeHandlers{service: s.Employees}).register(r, mutating)
	(&policyHandlers{service: s.Policies}).register(r, mutating)
	(&taskHandlers{tasks: s.Tasks, projects: s.Projects}).register(r, mutating)
}

func requireID(field, id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", apperrors.NewValidationError(field+" is required", map[string]any{field: field + " is required"})
	}
	return id, nil
}

type deleted struct {
	ID string `json:"id"`
}
