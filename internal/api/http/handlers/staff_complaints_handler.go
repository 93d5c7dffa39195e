package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/complaint-service/internal/api/dto"
	"github.com/spec-kit/complaint-service/internal/auth"
	"github.com/spec-kit/complaint-service/internal/domain"
	"github.com/spec-kit/complaint-service/internal/service"
	apperrors "github.com/spec-kit/complaint-service/pkg/util"
)

// StaffComplaintsHandler covers the staff-side complaint workflow: queue
// listing, assignment, acceptance and resolution.
type StaffComplaintsHandler struct {
	service *service.ComplaintService
}

// NewStaffComplaintsHandler constructs handler.
func NewStaffComplaintsHandler(complaintService *service.ComplaintService) *StaffComplaintsHandler {
	return &StaffComplaintsHandler{service: complaintService}
}

// List GET /staff/complaints.
func (h *StaffComplaintsHandler) List(c *fiber.Ctx) error {
	actor, err := staffActor(c)
	if err != nil {
		return err
	}
	complaints, err := h.service.List(c.Context(), actor, parseComplaintQuery(c))
	if err != nil {
		return err
	}
	items := make([]dto.ComplaintSummary, 0, len(complaints))
	for i := range complaints {
		items = append(items, complaintSummary(&complaints[i], h.service, actor.Role))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Get GET /staff/complaints/:id.
func (h *StaffComplaintsHandler) Get(c *fiber.Ctx) error {
	actor, err := staffActor(c)
	if err != nil {
		return err
	}
	complaint, err := h.service.Get(c.Context(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": complaintDetail(complaint, h.service, actor.Role)})
}

// AssignmentPath GET /staff/complaints/:id/path.
func (h *StaffComplaintsHandler) AssignmentPath(c *fiber.Ctx) error {
	actor, err := staffActor(c)
	if err != nil {
		return err
	}
	path, err := h.service.ListAssignmentPath(c.Context(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": handoffResponses(path)})
}

// Assign POST /staff/complaints/:id/assign.
func (h *StaffComplaintsHandler) Assign(c *fiber.Ctx) error {
	return h.route(c, func(actor domain.Actor, id string) (*domain.Complaint, error) {
		var req dto.AssignRequest
		if err := c.BodyParser(&req); err != nil {
			return nil, apperrors.NewValidationError("invalid payload", nil)
		}
		return h.service.Assign(c.Context(), actor, id, req.StaffID, req.Deadline)
	})
}

// Reassign POST /staff/complaints/:id/reassign.
func (h *StaffComplaintsHandler) Reassign(c *fiber.Ctx) error {
	return h.route(c, func(actor domain.Actor, id string) (*domain.Complaint, error) {
		var req dto.AssignRequest
		if err := c.BodyParser(&req); err != nil {
			return nil, apperrors.NewValidationError("invalid payload", nil)
		}
		return h.service.Reassign(c.Context(), actor, id, req.StaffID, req.Deadline)
	})
}

// Accept POST /staff/complaints/:id/accept.
func (h *StaffComplaintsHandler) Accept(c *fiber.Ctx) error {
	return h.route(c, func(actor domain.Actor, id string) (*domain.Complaint, error) {
		return h.service.Accept(c.Context(), actor, id)
	})
}

// Reject POST /staff/complaints/:id/reject.
func (h *StaffComplaintsHandler) Reject(c *fiber.Ctx) error {
	return h.route(c, func(actor domain.Actor, id string) (*domain.Complaint, error) {
		return h.service.Reject(c.Context(), actor, id)
	})
}

// Progress POST /staff/complaints/:id/progress.
func (h *StaffComplaintsHandler) Progress(c *fiber.Ctx) error {
	return h.route(c, func(actor domain.Actor, id string) (*domain.Complaint, error) {
		var req dto.ProgressUpdateRequest
		if err := c.BodyParser(&req); err != nil {
			return nil, apperrors.NewValidationError("invalid payload", nil)
		}
		return h.service.AddProgressUpdate(c.Context(), actor, id, req.Note)
	})
}

// Resolve POST /staff/complaints/:id/resolve.
func (h *StaffComplaintsHandler) Resolve(c *fiber.Ctx) error {
	return h.route(c, func(actor domain.Actor, id string) (*domain.Complaint, error) {
		var req dto.ResolveRequest
		if err := c.BodyParser(&req); err != nil {
			return nil, apperrors.NewValidationError("invalid payload", nil)
		}
		return h.service.Resolve(c.Context(), actor, id, req.Note)
	})
}

// Close POST /staff/complaints/:id/close.
func (h *StaffComplaintsHandler) Close(c *fiber.Ctx) error {
	return h.route(c, func(actor domain.Actor, id string) (*domain.Complaint, error) {
		return h.service.Close(c.Context(), actor, id)
	})
}

func (h *StaffComplaintsHandler) route(c *fiber.Ctx, op func(domain.Actor, string) (*domain.Complaint, error)) error {
	actor, err := staffActor(c)
	if err != nil {
		return err
	}
	complaint, err := op(actor, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": complaintDetail(complaint, h.service, actor.Role)})
}

func staffActor(c *fiber.Ctx) (domain.Actor, error) {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Staff == nil {
		return domain.Actor{}, apperrors.NewUnauthorized("staff required")
	}
	return principal.Actor(), nil
}
