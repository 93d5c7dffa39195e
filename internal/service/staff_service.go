package service

import (
	"context"
	"strings"

	"github.com/spec-kit/complaint-service/internal/domain"
	"github.com/spec-kit/complaint-service/internal/repository"
	apperrors "github.com/spec-kit/complaint-service/pkg/util"
)

// StaffService exposes the staff directory used to pick assignment targets.
type StaffService struct {
	staff       repository.StaffRepository
	departments repository.DepartmentRepository
}

// NewStaffService constructs the service.
func NewStaffService(staffRepo repository.StaffRepository, departmentRepo repository.DepartmentRepository) *StaffService {
	return &StaffService{staff: staffRepo, departments: departmentRepo}
}

// ListStaffInDepartment returns active staff for a department. Actors with
// assignment authority only; department-scoped actors see their own
// department regardless of what they ask for.
func (s *StaffService) ListStaffInDepartment(ctx context.Context, actor domain.Actor, department string) ([]domain.StaffMember, error) {
	if !actor.Role.CanAssign() {
		return nil, apperrors.NewForbidden("assignment authority required")
	}
	if !actor.Role.CrossesDepartments() {
		department = actor.Department
	}
	if strings.TrimSpace(department) == "" {
		return nil, apperrors.NewValidationError("department required", nil)
	}
	result, err := s.staff.ListByDepartment(ctx, department)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return result, nil
}

// ListDepartments returns all departments.
func (s *StaffService) ListDepartments(ctx context.Context) ([]domain.Department, error) {
	result, err := s.departments.List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return result, nil
}
