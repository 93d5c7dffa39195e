package dto

import (
	"time"

	"github.com/spec-kit/complaint-service/internal/domain"
)

// SubmitComplaintRequest payload.
type SubmitComplaintRequest struct {
	Title       string                   `json:"title"`
	Description string                   `json:"description"`
	Category    string                   `json:"category"`
	Priority    domain.ComplaintPriority `json:"priority"`
	Target      string                   `json:"target"`
	Anonymous   bool                     `json:"anonymous"`
}

// AssignRequest payload for assign and reassign.
type AssignRequest struct {
	StaffID  string     `json:"staff_id"`
	Deadline *time.Time `json:"deadline"`
}

// ProgressUpdateRequest payload.
type ProgressUpdateRequest struct {
	Note string `json:"note"`
}

// ResolveRequest payload.
type ResolveRequest struct {
	Note string `json:"note"`
}

// FeedbackRequest payload. Rating stays a float here so out-of-range and
// fractional values reach validation instead of failing JSON decoding.
type FeedbackRequest struct {
	Rating  float64 `json:"rating"`
	Comment string  `json:"comment"`
}

// HandoffResponse is one assignment-path entry.
type HandoffResponse struct {
	ID        string               `json:"id"`
	Role      domain.Role          `json:"role"`
	ActorID   string               `json:"actor_id"`
	Action    domain.HandoffAction `json:"action"`
	Timestamp time.Time            `json:"timestamp"`
}

// FeedbackResponse is the stored rating.
type FeedbackResponse struct {
	Rating      int       `json:"rating"`
	Comment     string    `json:"comment,omitempty"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// ComplaintSummary response.
type ComplaintSummary struct {
	ID                string                   `json:"id"`
	Title             string                   `json:"title"`
	Category          string                   `json:"category"`
	Priority          domain.ComplaintPriority `json:"priority"`
	Status            domain.ComplaintStatus   `json:"status"`
	SubmittedBy       string                   `json:"submitted_by"`
	SubmittedTo       string                   `json:"submitted_to"`
	Department        string                   `json:"department"`
	AssignedStaff     *string                  `json:"assigned_staff,omitempty"`
	AssignedStaffRole *domain.Role             `json:"assigned_staff_role,omitempty"`
	SubmittedDate     time.Time                `json:"submitted_date"`
	LastUpdated       time.Time                `json:"last_updated"`
	Deadline          *time.Time               `json:"deadline,omitempty"`
	IsEscalated       bool                     `json:"is_escalated"`
	Overdue           bool                     `json:"overdue"`
}

// ComplaintDetailResponse provides full complaint info.
type ComplaintDetailResponse struct {
	ComplaintSummary
	Description    string                   `json:"description"`
	ResolvedAt     *time.Time               `json:"resolved_at,omitempty"`
	ResolutionNote string                   `json:"resolution_note,omitempty"`
	Feedback       *FeedbackResponse        `json:"feedback,omitempty"`
	AssignmentPath []HandoffResponse        `json:"assignment_path"`
	AllowedActions []domain.ComplaintAction `json:"allowed_actions"`
}
