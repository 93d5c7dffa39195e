// Package routing decides who receives a complaint: the initial target at
// submission time, the next rung when an unattended complaint escalates,
// and which complaints an actor's role and department allow them to see.
package routing

import (
	"strings"
	"time"

	"github.com/spec-kit/complaint-service/internal/domain"
	apperrors "github.com/spec-kit/complaint-service/pkg/util"
)

// TargetChoice is the submitter's pick at submission time.
type TargetChoice string

const (
	ChoiceStaff TargetChoice = "staff"
	ChoiceDean  TargetChoice = "dean"
)

// Target pairs the recipient role with the queue label stored on the
// complaint's SubmittedTo field.
type Target struct {
	Role  domain.Role
	Label string
}

// ladder is the escalation order. Escalation climbs one rung at a time and
// never skips; admin is the top.
var ladder = []domain.Role{domain.RoleStaff, domain.RoleHOD, domain.RoleDean, domain.RoleAdmin}

// InitialTarget resolves the submission-time recipient. "staff" routes into
// the submitter's own department queue, "dean" into the campus-wide dean
// queue.
func InitialTarget(choice TargetChoice, department string) (Target, error) {
	switch choice {
	case ChoiceStaff:
		if strings.TrimSpace(department) == "" {
			return Target{}, apperrors.NewValidationError("department required for staff routing", nil)
		}
		return Target{Role: domain.RoleStaff, Label: Label(domain.RoleStaff, department)}, nil
	case ChoiceDean:
		return Target{Role: domain.RoleDean, Label: Label(domain.RoleDean, department)}, nil
	default:
		return Target{}, apperrors.NewValidationError("target must be \"staff\" or \"dean\"",
			map[string]any{"target": string(choice)})
	}
}

// Label renders the queue label for a target role. Department-scoped rungs
// carry the department name; dean and admin queues are campus-wide.
func Label(role domain.Role, department string) string {
	switch role {
	case domain.RoleStaff:
		return "Staff (" + department + ")"
	case domain.RoleHOD:
		return "Head of Department (" + department + ")"
	case domain.RoleDean:
		return "Dean"
	case domain.RoleAdmin:
		return "Admin"
	}
	return string(role)
}

// TargetRole recovers the rung from a stored SubmittedTo label.
func TargetRole(submittedTo string) domain.Role {
	switch {
	case strings.HasPrefix(submittedTo, "Staff"):
		return domain.RoleStaff
	case strings.HasPrefix(submittedTo, "Head of Department"):
		return domain.RoleHOD
	case submittedTo == "Admin":
		return domain.RoleAdmin
	default:
		return domain.RoleDean
	}
}

// NextEscalationTarget returns the rung above the complaint's current
// target. ok is false when the complaint already sits with the admin queue.
func NextEscalationTarget(c *domain.Complaint) (Target, bool) {
	current := TargetRole(c.SubmittedTo)
	for i, role := range ladder {
		if role == current {
			if i+1 >= len(ladder) {
				return Target{}, false
			}
			next := ladder[i+1]
			return Target{Role: next, Label: Label(next, c.Department)}, true
		}
	}
	return Target{}, false
}

// EligibleForEscalation reports whether the sweep should escalate the
// complaint: still in the initial state, nobody assigned, sitting past the
// SLA, and not already at the top rung.
func EligibleForEscalation(c *domain.Complaint, now time.Time, sla time.Duration) bool {
	if !c.Status.IsInitial() || c.HasAssignee() {
		return false
	}
	if now.Sub(c.SubmittedDate) <= sla {
		return false
	}
	return TargetRole(c.SubmittedTo) != domain.RoleAdmin
}

// CanView enforces department scoping for reads. Deans and admins see
// everything; HOD and staff only their own department; students only their
// own submissions.
func CanView(actor domain.Actor, c *domain.Complaint) bool {
	switch actor.Role {
	case domain.RoleDean, domain.RoleAdmin:
		return true
	case domain.RoleHOD, domain.RoleStaff:
		return domain.SameDepartment(actor.Department, c.Department)
	case domain.RoleStudent:
		return c.SubmittedBy == actor.ID
	}
	return false
}

// ValidateAssignmentTarget checks that the proposed assignee may receive
// the complaint: an active staff-side account, in the complaint's
// department unless the assigning actor is campus-wide.
func ValidateAssignmentTarget(actor domain.Actor, assignee *domain.StaffMember, c *domain.Complaint) error {
	if !assignee.Active {
		return apperrors.NewConflict("assignee inactive", map[string]any{"staff_id": assignee.ID})
	}
	if !assignee.Role.IsStaffRole() {
		return apperrors.NewValidationError("assignee is not staff", map[string]any{"staff_id": assignee.ID})
	}
	if !domain.SameDepartment(assignee.Department, c.Department) && !actor.Role.CrossesDepartments() {
		return apperrors.NewForbidden("assignee outside complaint department")
	}
	return nil
}
