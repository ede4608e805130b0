package domain

import "time"

// Status is the lifecycle flag shared by departments and designations.
type Status string

const (
	StatusActive   Status = "Active"
	StatusInactive Status = "Inactive"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	return s == StatusActive || s == StatusInactive
}

// Department represents a high-level organizational unit.
type Department struct {
	ID        string    `json:"id"`
	Name      string    `json:"departmentName"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// DepartmentStats pairs a department with its dependent counts.
type DepartmentStats struct {
	Department
	EmployeeCount    int `json:"employeeCount"`
	DesignationCount int `json:"designationCount"`
	PolicyCount      int `json:"policyCount"`
}

// HasDependents reports whether anything still references the department.
func (s DepartmentStats) HasDependents() bool {
	return s.EmployeeCount > 0 || s.DesignationCount > 0 || s.PolicyCount > 0
}
