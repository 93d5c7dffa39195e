package domain

import "time"

// Student models a submitter account.
type Student struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Department   string
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Actor converts the record into the acting identity passed to operations.
func (s *Student) Actor() Actor {
	return Actor{ID: s.ID, Role: RoleStudent, Department: s.Department}
}
