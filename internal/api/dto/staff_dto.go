package dto

import "github.com/spec-kit/complaint-service/internal/domain"

// StaffSummary is a directory entry used when picking assignees.
type StaffSummary struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	Role       domain.Role `json:"role"`
	Department string      `json:"department"`
}

// DepartmentResponse lists a department.
type DepartmentResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	IsActive bool   `json:"is_active"`
}
