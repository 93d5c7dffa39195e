package domain

import "strings"

// Role enumerates the parties that act on complaints.
type Role string

const (
	RoleStudent Role = "student"
	RoleStaff   Role = "staff"
	RoleHOD     Role = "headOfDepartment"
	RoleDean    Role = "dean"
	RoleAdmin   Role = "admin"

	// RoleSystem stamps handoffs produced by the escalation sweep rather
	// than a signed-in person.
	RoleSystem Role = "system"
)

// Actor is the caller of a lifecycle operation. Operations take it as an
// explicit parameter; nothing in the core reads ambient identity state.
type Actor struct {
	ID         string
	Role       Role
	Department string
}

// IsStaffRole reports whether the role belongs to the staff side of the house.
func (r Role) IsStaffRole() bool {
	switch r {
	case RoleStaff, RoleHOD, RoleDean, RoleAdmin:
		return true
	}
	return false
}

// CanAssign reports whether the role carries assignment authority.
func (r Role) CanAssign() bool {
	switch r {
	case RoleHOD, RoleDean, RoleAdmin:
		return true
	}
	return false
}

// CrossesDepartments reports whether the role may act outside its own
// department. Deans and admins are campus-wide; HOD and staff are scoped.
func (r Role) CrossesDepartments() bool {
	return r == RoleDean || r == RoleAdmin
}

// SameDepartment compares department names case-insensitively. Department
// scoping everywhere in the service goes through this single comparison.
func SameDepartment(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
