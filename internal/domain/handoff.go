package domain

import "time"

// HandoffAction captures what a path entry records.
type HandoffAction string

const (
	HandoffSubmitted  HandoffAction = "submitted"
	HandoffAssigned   HandoffAction = "assigned"
	HandoffReassigned HandoffAction = "reassigned"
	HandoffEscalated  HandoffAction = "escalated"
	HandoffAccepted   HandoffAction = "accepted"
	HandoffRejected   HandoffAction = "rejected"
	HandoffResolved   HandoffAction = "resolved"
	HandoffClosed     HandoffAction = "closed"
)

// Handoff is an immutable assignment-path entry. Entries are only ever
// appended; the stored path is the audit trail for the complaint.
type Handoff struct {
	ID          string
	ComplaintID string
	Role        Role
	ActorID     string
	Action      HandoffAction
	Timestamp   time.Time
}

// NewHandoff stamps a path entry for the given actor and action.
func NewHandoff(complaintID string, role Role, actorID string, action HandoffAction, at time.Time) Handoff {
	return Handoff{
		ComplaintID: complaintID,
		Role:        role,
		ActorID:     actorID,
		Action:      action,
		Timestamp:   at,
	}
}
