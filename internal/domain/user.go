package domain

import "time"

// Role is the coarse permission class of a user.
type Role string

const (
	RoleAdmin        Role = "admin"
	RoleMaintenance  Role = "maintenance"
	RoleFacultyStaff Role = "faculty/staff"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleMaintenance, RoleFacultyStaff:
		return true
	}
	return false
}

// User is anyone who can sign in: admins, technicians, and faculty/staff requesters.
type User struct {
	ID           int64
	Name         string
	PasswordHash string
	Department   string
	Role         Role
	CreatedAt    time.Time
}

// HasRole reports whether the user holds any of the given roles.
func (u *User) HasRole(roles ...Role) bool {
	if u == nil {
		return false
	}
	for _, r := range roles {
		if u.Role == r {
			return true
		}
	}
	return false
}
