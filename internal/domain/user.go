package domain

import "time"

// Role enumerates the roles a user can hold. A role is fixed at
// registration; there is no role-change endpoint.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
	RolePA    Role = "pa"
	RoleLead  Role = "lead"
)

// IsValid reports whether the role is one of the known values.
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleUser, RolePA, RoleLead:
		return true
	}
	return false
}

// User is the domain model for accounts in the identity directory.
type User struct {
	ID           string
	Name         string
	UserName     string
	PhoneNumber  string
	Role         Role
	PasswordHash string
	IsActive     bool
	IsSuperuser  bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
