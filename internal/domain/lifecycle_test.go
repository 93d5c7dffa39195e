package domain

import (
	"testing"

	apperrors "github.com/spec-kit/complaint-service/pkg/util"
)

func TestAuthorize(t *testing.T) {
	assignee := "stf-1"

	tests := []struct {
		name     string
		status   ComplaintStatus
		assigned *string
		action   ComplaintAction
		actor    Actor
		wantCode string
	}{
		{
			name: "hod assigns pending", status: StatusPending,
			action: ActionAssign, actor: Actor{ID: "stf-hod", Role: RoleHOD},
		},
		{
			name: "staff may not assign", status: StatusPending,
			action: ActionAssign, actor: Actor{ID: "stf-1", Role: RoleStaff},
			wantCode: "FORBIDDEN",
		},
		{
			name: "student may not assign", status: StatusPending,
			action: ActionAssign, actor: Actor{ID: "std-1", Role: RoleStudent},
			wantCode: "FORBIDDEN",
		},
		{
			name: "assign from in-progress", status: StatusInProgress,
			action: ActionAssign, actor: Actor{ID: "stf-hod", Role: RoleHOD},
			wantCode: "INVALID_TRANSITION",
		},
		{
			name: "reassign while in progress", status: StatusInProgress, assigned: &assignee,
			action: ActionReassign, actor: Actor{ID: "stf-dean", Role: RoleDean},
		},
		{
			name: "staff accepts unassigned", status: StatusUnassigned,
			action: ActionAccept, actor: Actor{ID: "stf-1", Role: RoleStaff},
		},
		{
			name: "accept a resolved complaint", status: StatusResolved,
			action: ActionAccept, actor: Actor{ID: "stf-1", Role: RoleStaff},
			wantCode: "INVALID_TRANSITION",
		},
		{
			name: "assignee resolves", status: StatusInProgress, assigned: &assignee,
			action: ActionResolve, actor: Actor{ID: "stf-1", Role: RoleStaff},
		},
		{
			name: "non-assignee resolves", status: StatusInProgress, assigned: &assignee,
			action: ActionResolve, actor: Actor{ID: "stf-2", Role: RoleStaff},
			wantCode: "FORBIDDEN",
		},
		{
			name: "resolve before acceptance", status: StatusAssigned, assigned: &assignee,
			action: ActionResolve, actor: Actor{ID: "stf-1", Role: RoleStaff},
			wantCode: "INVALID_TRANSITION",
		},
		{
			name: "admin closes resolved", status: StatusResolved,
			action: ActionClose, actor: Actor{ID: "stf-adm", Role: RoleAdmin},
		},
		{
			name: "dean may not close", status: StatusResolved,
			action: ActionClose, actor: Actor{ID: "stf-dean", Role: RoleDean},
			wantCode: "FORBIDDEN",
		},
		{
			name: "close a pending complaint", status: StatusPending,
			action: ActionClose, actor: Actor{ID: "stf-adm", Role: RoleAdmin},
			wantCode: "INVALID_TRANSITION",
		},
		{
			name: "student feedback on resolved", status: StatusResolved,
			action: ActionFeedback, actor: Actor{ID: "std-1", Role: RoleStudent},
		},
		{
			name: "system escalates pending", status: StatusPending,
			action: ActionEscalate, actor: Actor{ID: "system", Role: RoleSystem},
		},
		{
			name: "admin may not escalate directly", status: StatusPending,
			action: ActionEscalate, actor: Actor{ID: "stf-adm", Role: RoleAdmin},
			wantCode: "FORBIDDEN",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Complaint{Status: tt.status, AssignedStaff: tt.assigned}
			err := Authorize(c, tt.action, tt.actor)
			if tt.wantCode == "" {
				if err != nil {
					t.Fatalf("Authorize() = %v, want nil", err)
				}
				return
			}
			if !apperrors.IsCode(err, tt.wantCode) {
				t.Errorf("Authorize() = %v, want code %s", err, tt.wantCode)
			}
		})
	}
}

func TestAllowedActions(t *testing.T) {
	tests := []struct {
		name   string
		role   Role
		status ComplaintStatus
		want   []ComplaintAction
	}{
		{name: "hod on pending", role: RoleHOD, status: StatusPending,
			want: []ComplaintAction{ActionAssign, ActionAccept, ActionReject}},
		{name: "staff on pending", role: RoleStaff, status: StatusPending,
			want: []ComplaintAction{ActionAccept}},
		{name: "admin on resolved", role: RoleAdmin, status: StatusResolved,
			want: []ComplaintAction{ActionClose}},
		{name: "student on resolved", role: RoleStudent, status: StatusResolved,
			want: []ComplaintAction{ActionFeedback}},
		{name: "student on closed", role: RoleStudent, status: StatusClosed, want: nil},
		{name: "staff on in-progress", role: RoleStaff, status: StatusInProgress,
			want: []ComplaintAction{ActionProgress, ActionResolve}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AllowedActions(tt.role, tt.status)
			if len(got) != len(tt.want) {
				t.Fatalf("AllowedActions() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("AllowedActions()[%d] = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}
