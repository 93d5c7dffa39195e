package domain

import "time"

// Department represents an academic unit complaints are scoped to.
type Department struct {
	ID        string
	Name      string
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
