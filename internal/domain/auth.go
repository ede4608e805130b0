package domain

import "time"

// Role enumerates console operator roles.
type Role string

const (
	RoleAdmin  Role = "ADMIN"
	RoleHR     Role = "HR"
	RoleViewer Role = "VIEWER"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleHR, RoleViewer:
		return true
	}
	return false
}

// ConsoleUser is an operator allowed to sign in to the console.
type ConsoleUser struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
