package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/complaint-service/internal/api/dto"
	"github.com/spec-kit/complaint-service/internal/service"
)

// StaffHandler serves the staff directory and department list.
type StaffHandler struct {
	service *service.StaffService
}

// NewStaffHandler constructs handler.
func NewStaffHandler(staffService *service.StaffService) *StaffHandler {
	return &StaffHandler{service: staffService}
}

// Directory GET /staff/directory.
func (h *StaffHandler) Directory(c *fiber.Ctx) error {
	actor, err := staffActor(c)
	if err != nil {
		return err
	}
	staff, err := h.service.ListStaffInDepartment(c.Context(), actor, c.Query("department"))
	if err != nil {
		return err
	}
	items := make([]dto.StaffSummary, 0, len(staff))
	for _, member := range staff {
		items = append(items, dto.StaffSummary{
			ID:         member.ID,
			Name:       member.Name,
			Role:       member.Role,
			Department: member.Department,
		})
	}
	return c.JSON(fiber.Map{"data": items})
}

// Departments GET /departments.
func (h *StaffHandler) Departments(c *fiber.Ctx) error {
	departments, err := h.service.ListDepartments(c.Context())
	if err != nil {
		return err
	}
	items := make([]dto.DepartmentResponse, 0, len(departments))
	for _, dept := range departments {
		items = append(items, dto.DepartmentResponse{
			ID:       dept.ID,
			Name:     dept.Name,
			IsActive: dept.IsActive,
		})
	}
	return c.JSON(fiber.Map{"data": items})
}
