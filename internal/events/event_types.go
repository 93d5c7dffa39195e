package events

import (
	"time"

	"github.com/spec-kit/complaint-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventComplaintSubmitted EventType = "complaint_submitted"
	EventComplaintAssigned  EventType = "complaint_assigned"
	EventComplaintAccepted  EventType = "complaint_accepted"
	EventComplaintRejected  EventType = "complaint_rejected"
	EventComplaintEscalated EventType = "complaint_escalated"
	EventComplaintProgress  EventType = "complaint_progress"
	EventComplaintResolved  EventType = "complaint_resolved"
	EventComplaintClosed    EventType = "complaint_closed"
	EventFeedbackSubmitted  EventType = "feedback_submitted"
)

// Actor encapsulates actor metadata for an event.
type Actor struct {
	ID   string      `json:"id"`
	Role domain.Role `json:"role"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID          string      `json:"id"`
	Type        EventType   `json:"type"`
	ComplaintID string      `json:"complaint_id"`
	Actor       Actor       `json:"actor"`
	Timestamp   time.Time   `json:"timestamp"`
	Payload     interface{} `json:"payload"`
}

// ComplaintSubmittedPayload payload.
type ComplaintSubmittedPayload struct {
	Department  string                   `json:"department"`
	SubmittedTo string                   `json:"submitted_to"`
	Priority    domain.ComplaintPriority `json:"priority"`
	Title       string                   `json:"title"`
}

// ComplaintAssignedPayload payload.
type ComplaintAssignedPayload struct {
	AssignedStaff string      `json:"assigned_staff"`
	AssignedRole  domain.Role `json:"assigned_role"`
	Deadline      *time.Time  `json:"deadline,omitempty"`
	Reassignment  bool        `json:"reassignment"`
}

// ComplaintStatusChangedPayload payload for accept/reject/resolve/close.
type ComplaintStatusChangedPayload struct {
	OldStatus domain.ComplaintStatus `json:"old_status"`
	NewStatus domain.ComplaintStatus `json:"new_status"`
	Note      string                 `json:"note,omitempty"`
}

// ComplaintEscalatedPayload payload.
type ComplaintEscalatedPayload struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// FeedbackSubmittedPayload payload.
type FeedbackSubmittedPayload struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment,omitempty"`
}
