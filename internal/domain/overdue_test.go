package domain

import (
	"testing"
	"time"
)

func TestIsOverdue(t *testing.T) {
	now := time.Date(2026, 5, 10, 15, 30, 0, 0, time.UTC)
	yesterday := now.AddDate(0, 0, -1)
	today := time.Date(2026, 5, 10, 9, 0, 0, 0, time.UTC)
	tomorrow := now.AddDate(0, 0, 1)
	staffID := "stf-1"
	staffRole := RoleStaff

	assigned := func(c Complaint) *Complaint {
		c.AssignedStaff = &staffID
		c.AssignedStaffRole = &staffRole
		return &c
	}

	tests := []struct {
		name string
		c    *Complaint
		want bool
	}{
		{name: "nil complaint", c: nil, want: false},
		{name: "no deadline", c: assigned(Complaint{Status: StatusInProgress}), want: false},
		{
			name: "deadline passed",
			c:    assigned(Complaint{Status: StatusInProgress, Deadline: &yesterday}),
			want: true,
		},
		{
			name: "deadline is today",
			c:    assigned(Complaint{Status: StatusInProgress, Deadline: &today}),
			want: false,
		},
		{
			name: "deadline in future",
			c:    assigned(Complaint{Status: StatusAssigned, Deadline: &tomorrow}),
			want: false,
		},
		{
			name: "resolved never overdue",
			c:    assigned(Complaint{Status: StatusResolved, Deadline: &yesterday}),
			want: false,
		},
		{
			name: "closed never overdue",
			c:    assigned(Complaint{Status: StatusClosed, Deadline: &yesterday}),
			want: false,
		},
		{
			name: "stale deadline without assignee",
			c:    &Complaint{Status: StatusPending, Deadline: &yesterday},
			want: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsOverdue(tt.c, now); got != tt.want {
				t.Errorf("IsOverdue() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsOverdueComparesByCalendarDay(t *testing.T) {
	// 23:59 on the deadline day is still on time; 00:01 the day after is not.
	staffID := "stf-1"
	deadline := time.Date(2026, 5, 10, 0, 0, 0, 0, time.UTC)
	c := &Complaint{Status: StatusInProgress, Deadline: &deadline, AssignedStaff: &staffID}

	if IsOverdue(c, time.Date(2026, 5, 10, 23, 59, 0, 0, time.UTC)) {
		t.Error("complaint overdue on the deadline day itself")
	}
	if !IsOverdue(c, time.Date(2026, 5, 11, 0, 1, 0, 0, time.UTC)) {
		t.Error("complaint not overdue the day after the deadline")
	}
}
