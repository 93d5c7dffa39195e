package domain

import (
	apperrors "github.com/spec-kit/complaint-service/pkg/util"
)

// ComplaintAction enumerates role-gated lifecycle operations.
type ComplaintAction string

const (
	ActionAssign   ComplaintAction = "assign"
	ActionReassign ComplaintAction = "reassign"
	ActionAccept   ComplaintAction = "accept"
	ActionReject   ComplaintAction = "reject"
	ActionProgress ComplaintAction = "progress"
	ActionResolve  ComplaintAction = "resolve"
	ActionClose    ComplaintAction = "close"
	ActionEscalate ComplaintAction = "escalate"
	ActionFeedback ComplaintAction = "feedback"
)

// transitionRule is one row of the capability table: which statuses an
// action is legal from and who may perform it. assigneeOnly restricts the
// action to the current assignee regardless of role.
type transitionRule struct {
	from         []ComplaintStatus
	roles        []Role
	assigneeOnly bool
}

var initialStatuses = []ComplaintStatus{StatusPending, StatusUnassigned}

// transitions is the single source of truth for the state machine. Every
// operation checks here once; no role logic lives anywhere else.
var transitions = map[ComplaintAction]transitionRule{
	ActionAssign: {
		from:  initialStatuses,
		roles: []Role{RoleHOD, RoleDean, RoleAdmin},
	},
	ActionReassign: {
		from:  []ComplaintStatus{StatusAssigned, StatusInProgress},
		roles: []Role{RoleHOD, RoleDean, RoleAdmin},
	},
	ActionAccept: {
		from:  []ComplaintStatus{StatusPending, StatusUnassigned, StatusAssigned},
		roles: []Role{RoleStaff, RoleHOD, RoleDean, RoleAdmin},
	},
	ActionReject: {
		from:  []ComplaintStatus{StatusPending, StatusUnassigned, StatusAssigned},
		roles: []Role{RoleHOD, RoleDean, RoleAdmin},
	},
	ActionProgress: {
		from:         []ComplaintStatus{StatusAssigned, StatusInProgress},
		roles:        []Role{RoleStaff, RoleHOD, RoleDean, RoleAdmin},
		assigneeOnly: true,
	},
	ActionResolve: {
		from:         []ComplaintStatus{StatusInProgress},
		roles:        []Role{RoleStaff, RoleHOD, RoleDean, RoleAdmin},
		assigneeOnly: true,
	},
	ActionClose: {
		from:  []ComplaintStatus{StatusResolved},
		roles: []Role{RoleAdmin},
	},
	ActionEscalate: {
		from:  initialStatuses,
		roles: []Role{RoleSystem},
	},
	ActionFeedback: {
		from:  []ComplaintStatus{StatusResolved},
		roles: []Role{RoleStudent},
	},
}

// Authorize validates that the actor may perform action on the complaint in
// its current status. Status violations surface as INVALID_TRANSITION, role
// violations as FORBIDDEN; neither is ever silently ignored.
func Authorize(c *Complaint, action ComplaintAction, actor Actor) error {
	rule, ok := transitions[action]
	if !ok {
		return apperrors.NewInvalidTransition(string(c.Status), string(action), nil)
	}
	if !statusIn(c.Status, rule.from) {
		return apperrors.NewInvalidTransition(string(c.Status), string(action), roleNames(rule.roles))
	}
	if !roleIn(actor.Role, rule.roles) {
		return apperrors.NewForbidden("role " + string(actor.Role) + " may not " + string(action))
	}
	if rule.assigneeOnly {
		if c.AssignedStaff == nil || *c.AssignedStaff != actor.ID {
			return apperrors.NewForbidden("only the assignee may " + string(action))
		}
	}
	return nil
}

// AllowedActions returns the actions the role could perform on a complaint
// in the given status, ignoring assignee identity. Callers surface this to
// clients instead of re-deriving role checks per view.
func AllowedActions(role Role, status ComplaintStatus) []ComplaintAction {
	var actions []ComplaintAction
	for _, action := range []ComplaintAction{
		ActionAssign, ActionReassign, ActionAccept, ActionReject,
		ActionProgress, ActionResolve, ActionClose, ActionFeedback,
	} {
		rule := transitions[action]
		if statusIn(status, rule.from) && roleIn(role, rule.roles) {
			actions = append(actions, action)
		}
	}
	return actions
}

func statusIn(status ComplaintStatus, set []ComplaintStatus) bool {
	for _, s := range set {
		if s == status {
			return true
		}
	}
	return false
}

func roleIn(role Role, set []Role) bool {
	for _, r := range set {
		if r == role {
			return true
		}
	}
	return false
}

func roleNames(roles []Role) []string {
	names := make([]string, 0, len(roles))
	for _, r := range roles {
		names = append(names, string(r))
	}
	return names
}
