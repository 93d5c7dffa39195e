package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/complaint-service/internal/api/dto"
	"github.com/spec-kit/complaint-service/internal/auth"
	"github.com/spec-kit/complaint-service/internal/domain"
	"github.com/spec-kit/complaint-service/internal/routing"
	"github.com/spec-kit/complaint-service/internal/service"
	apperrors "github.com/spec-kit/complaint-service/pkg/util"
)

// ComplaintsHandler manages student-facing complaint endpoints.
type ComplaintsHandler struct {
	service *service.ComplaintService
}

// NewComplaintsHandler constructs handler.
func NewComplaintsHandler(complaintService *service.ComplaintService) *ComplaintsHandler {
	return &ComplaintsHandler{service: complaintService}
}

// Submit POST /complaints.
func (h *ComplaintsHandler) Submit(c *fiber.Ctx) error {
	actor, err := studentActor(c)
	if err != nil {
		return err
	}
	var req dto.SubmitComplaintRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	complaint, err := h.service.Submit(c.Context(), actor, service.SubmitComplaintInput{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Priority:    req.Priority,
		Target:      routing.TargetChoice(req.Target),
		Anonymous:   req.Anonymous,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": complaintSummary(complaint, h.service, actor.Role)})
}

// List GET /complaints.
func (h *ComplaintsHandler) List(c *fiber.Ctx) error {
	actor, err := studentActor(c)
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

// Get GET /complaints/:id.
func (h *ComplaintsHandler) Get(c *fiber.Ctx) error {
	actor, err := studentActor(c)
	if err != nil {
		return err
	}
	complaint, err := h.service.Get(c.Context(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": complaintDetail(complaint, h.service, actor.Role)})
}

// SubmitFeedback POST /complaints/:id/feedback.
func (h *ComplaintsHandler) SubmitFeedback(c *fiber.Ctx) error {
	actor, err := studentActor(c)
	if err != nil {
		return err
	}
	var req dto.FeedbackRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	complaint, err := h.service.SubmitFeedback(c.Context(), actor, c.Params("id"), req.Rating, req.Comment)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": complaintDetail(complaint, h.service, actor.Role)})
}

func studentActor(c *fiber.Ctx) (domain.Actor, error) {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Student == nil {
		return domain.Actor{}, apperrors.NewUnauthorized("student required")
	}
	return principal.Actor(), nil
}

func parseComplaintQuery(c *fiber.Ctx) service.ComplaintListFilter {
	filter := service.ComplaintListFilter{}
	if statusStr := c.Query("status"); statusStr != "" {
		for _, part := range strings.Split(statusStr, ",") {
			filter.Statuses = append(filter.Statuses, domain.ComplaintStatus(strings.TrimSpace(part)))
		}
	}
	if priorityStr := c.Query("priority"); priorityStr != "" {
		for _, part := range strings.Split(priorityStr, ",") {
			filter.Priorities = append(filter.Priorities, domain.ComplaintPriority(strings.TrimSpace(part)))
		}
	}
	if escalatedStr := c.Query("escalated"); escalatedStr != "" {
		if escalated, err := strconv.ParseBool(escalatedStr); err == nil {
			filter.Escalated = &escalated
		}
	}
	page := parseInt(c.Query("page"), 1)
	pageSize := parseInt(c.Query("page_size"), 20)
	if pageSize > 100 {
		pageSize = 100
	}
	filter.Offset = (page - 1) * pageSize
	filter.Limit = pageSize
	return filter
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}

func complaintSummary(complaint *domain.Complaint, svc *service.ComplaintService, _ domain.Role) dto.ComplaintSummary {
	return dto.ComplaintSummary{
		ID:                complaint.ID,
		Title:             complaint.Title,
		Category:          complaint.Category,
		Priority:          complaint.Priority,
		Status:            complaint.Status,
		SubmittedBy:       complaint.SubmittedBy,
		SubmittedTo:       complaint.SubmittedTo,
		Department:        complaint.Department,
		AssignedStaff:     complaint.AssignedStaff,
		AssignedStaffRole: complaint.AssignedStaffRole,
		SubmittedDate:     complaint.SubmittedDate,
		LastUpdated:       complaint.LastUpdated,
		Deadline:          complaint.Deadline,
		IsEscalated:       complaint.IsEscalated,
		Overdue:           svc.IsOverdue(complaint),
	}
}

func complaintDetail(complaint *domain.Complaint, svc *service.ComplaintService, role domain.Role) dto.ComplaintDetailResponse {
	detail := dto.ComplaintDetailResponse{
		ComplaintSummary: complaintSummary(complaint, svc, role),
		Description:      complaint.Description,
		ResolvedAt:       complaint.ResolvedAt,
		ResolutionNote:   complaint.ResolutionNote,
		AssignmentPath:   handoffResponses(complaint.AssignmentPath),
		AllowedActions:   domain.AllowedActions(role, complaint.Status),
	}
	if complaint.Feedback != nil {
		detail.Feedback = &dto.FeedbackResponse{
			Rating:      complaint.Feedback.Rating,
			Comment:     complaint.Feedback.Comment,
			SubmittedAt: complaint.Feedback.SubmittedAt,
		}
	}
	return detail
}

func handoffResponses(path []domain.Handoff) []dto.HandoffResponse {
	resp := make([]dto.HandoffResponse, 0, len(path))
	for _, h := range path {
		resp = append(resp, dto.HandoffResponse{
			ID:        h.ID,
			Role:      h.Role,
			ActorID:   h.ActorID,
			Action:    h.Action,
			Timestamp: h.Timestamp,
		})
	}
	return resp
}
