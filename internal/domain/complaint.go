package domain

import "time"

// ComplaintStatus enumerates lifecycle states for complaints.
type ComplaintStatus string

const (
	StatusPending    ComplaintStatus = "Pending"
	StatusUnassigned ComplaintStatus = "Unassigned"
	StatusAssigned   ComplaintStatus = "Assigned"
	StatusInProgress ComplaintStatus = "InProgress"
	StatusResolved   ComplaintStatus = "Resolved"
	StatusClosed     ComplaintStatus = "Closed"
)

// ComplaintPriority enumerates urgency.
type ComplaintPriority string

const (
	PriorityLow      ComplaintPriority = "Low"
	PriorityMedium   ComplaintPriority = "Medium"
	PriorityHigh     ComplaintPriority = "High"
	PriorityCritical ComplaintPriority = "Critical"
)

// AnonymousSubmitter is stored in SubmittedBy when the student withholds identity.
const AnonymousSubmitter = "Anonymous"

// Feedback is the one-shot rating a submitter leaves on a resolved complaint.
type Feedback struct {
	Rating      int
	Comment     string
	SubmittedAt time.Time
}

// Complaint is the aggregate for a submitted issue.
type Complaint struct {
	ID                string
	Title             string
	Description       string
	Category          string
	Priority          ComplaintPriority
	Status            ComplaintStatus
	SubmittedBy       string
	SubmittedTo       string
	Department        string
	AssignedStaff     *string
	AssignedStaffRole *Role
	AssignmentPath    []Handoff
	SubmittedDate     time.Time
	LastUpdated       time.Time
	Deadline          *time.Time
	ResolvedAt        *time.Time
	ResolutionNote    string
	Feedback          *Feedback
	IsEscalated       bool

	// Version backs the optimistic per-id write lock. Incremented on
	// every persisted mutation; concurrent writers lose with a conflict.
	Version int64
}

// IsTerminal reports whether no further lifecycle transitions exist.
func (s ComplaintStatus) IsTerminal() bool {
	return s == StatusClosed
}

// IsInitial reports whether the complaint has not yet entered the
// assignment flow. Pending and Unassigned are the same rung; Unassigned is
// kept for callers that filter on it.
func (s ComplaintStatus) IsInitial() bool {
	return s == StatusPending || s == StatusUnassigned
}

// HasAssignee reports whether any assignee identity or role is recorded.
func (c *Complaint) HasAssignee() bool {
	return (c.AssignedStaff != nil && *c.AssignedStaff != "") || c.AssignedStaffRole != nil
}

// ValidPriority reports whether p is a known priority value.
func ValidPriority(p ComplaintPriority) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return true
	}
	return false
}
