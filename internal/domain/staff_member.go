package domain

import "time"

// StaffMember models a staff-side account (staff, HOD, dean or admin).
type StaffMember struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	Department   string
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Actor converts the record into the acting identity passed to operations.
func (s *StaffMember) Actor() Actor {
	return Actor{ID: s.ID, Role: s.Role, Department: s.Department}
}
