package dto

import (
	"github.com/spec-kit/hr-console/internal/domain"
	"github.com/spec-kit/hr-console/internal/service"
)

// IDRequest addresses a single record.
type IDRequest struct {
	ID string `json:"id"`
}

// StatusFilter narrows a listing to one status.
type StatusFilter struct {
	Status *domain.Status `json:"status,omitempty"`
}

// ReassignRequest moves dependents of SourceID to TargetID before deletion.
type ReassignRequest struct {
	SourceID string `json:"sourceId"`
	TargetID string `json:"targetId"`
}

// DepartmentUpdateRequest payload of hrm/departments/update.
type DepartmentUpdateRequest struct {
	ID string `json:"id"`
	service.DepartmentInput
}

// DesignationUpdateRequest payload of hrm/designations/update.
type DesignationUpdateRequest struct {
	ID string `json:"id"`
	service.DesignationInput
}

// EmployeeUpdateRequest payload of hrm/employees/update.
type EmployeeUpdateRequest struct {
	ID string `json:"id"`
	service.EmployeeInput
}

// SectionUpdate carries one employee profile section.
type SectionUpdate[T any] struct {
	ID   string `json:"id"`
	Data T      `json:"data"`
}

// AboutUpdate payload of hrm/employees/update-about.
type AboutUpdate struct {
	ID    string `json:"id"`
	About string `json:"about"`
}

// PolicyUpdateRequest payload of hr/policy/update.
type PolicyUpdateRequest struct {
	ID string `json:"id"`
	service.PolicyInput
}

// TaskUpdateRequest payload of task:update.
type TaskUpdateRequest struct {
	ID string `json:"id"`
	service.TaskInput
}

// LoginRequest payload of POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse is returned on successful sign-in.
type LoginResponse struct {
	Token     string      `json:"token"`
	ExpiresAt string      `json:"expiresAt"`
	User      UserSummary `json:"user"`
}

// UserSummary exposes a console user without credentials.
type UserSummary struct {
	ID    string      `json:"id"`
	Name  string      `json:"name"`
	Email string      `json:"email"`
	Role  domain.Role `json:"role"`
}

// NewUserSummary maps a console user.
func NewUserSummary(u *domain.ConsoleUser) UserSummary {
	return UserSummary{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
}

// UploadResponse is returned by POST /uploads/images.
type UploadResponse struct {
	URL        string `json:"url"`
	DisplayURL string `json:"displayUrl"`
}
