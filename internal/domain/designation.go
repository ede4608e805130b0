package domain

import "time"

// Designation is a job title owned by a department.
type Designation struct {
	ID           string    `json:"id"`
	Name         string    `json:"designationName"`
	DepartmentID string    `json:"departmentId"`
	Status       Status    `json:"status"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// DesignationStats pairs a designation with its department name and headcount.
type DesignationStats struct {
	Designation
	DepartmentName string `json:"departmentName"`
	EmployeeCount  int    `json:"employeeCount"`
}
