package domain

import "time"

// IsOverdue reports whether the complaint's deadline has strictly passed.
// Pure; safe to evaluate at any frequency from concurrent readers. Overdue
// is derived, never stored.
//
// A complaint is never overdue when it is resolved or closed, when it has
// no deadline, or when nobody is assigned: a complaint with neither an
// assignee nor an assignee role cannot be late for an assignee that does
// not exist, even if a stale deadline value is present.
func IsOverdue(c *Complaint, now time.Time) bool {
	if c == nil {
		return false
	}
	if c.Status == StatusResolved || c.Status == StatusClosed {
		return false
	}
	if c.Deadline == nil {
		return false
	}
	if !c.HasAssignee() {
		return false
	}
	deadline := truncateToDay(*c.Deadline)
	today := truncateToDay(now)
	return deadline.Before(today)
}

// truncateToDay normalizes to midnight UTC so the comparison is by calendar
// day: a deadline equal to today's date is due, not overdue.
func truncateToDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
