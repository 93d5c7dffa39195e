package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/complaint-service/internal/config"
	"github.com/spec-kit/complaint-service/internal/domain"
	"github.com/spec-kit/complaint-service/internal/events"
	"github.com/spec-kit/complaint-service/internal/repository/inmem"
	"github.com/spec-kit/complaint-service/internal/routing"
	apperrors "github.com/spec-kit/complaint-service/pkg/util"
)

var (
	student  = domain.Actor{ID: "std-1", Role: domain.RoleStudent, Department: "IT"}
	student2 = domain.Actor{ID: "std-2", Role: domain.RoleStudent, Department: "IT"}
	itStaff  = domain.Actor{ID: "stf-1", Role: domain.RoleStaff, Department: "IT"}
	itStaff2 = domain.Actor{ID: "stf-2", Role: domain.RoleStaff, Department: "IT"}
	itHOD    = domain.Actor{ID: "stf-hod", Role: domain.RoleHOD, Department: "IT"}
	dean     = domain.Actor{ID: "stf-dean", Role: domain.RoleDean}
	admin    = domain.Actor{ID: "stf-adm", Role: domain.RoleAdmin}
)

type fixture struct {
	svc        *ComplaintService
	complaints *inmem.ComplaintRepository
	now        time.Time
}

func newFixture(t *testing.T, policy config.RoutingConfig) *fixture {
	t.Helper()
	f := &fixture{
		complaints: inmem.NewComplaintRepository(),
		now:        time.Now(),
	}
	staffRepo := inmem.NewStaffRepository()
	staffRepo.Seed(domain.StaffMember{ID: itStaff.ID, Name: "Ada", Role: domain.RoleStaff, Department: "IT", Active: true})
	staffRepo.Seed(domain.StaffMember{ID: itStaff2.ID, Name: "Ben", Role: domain.RoleStaff, Department: "IT", Active: true})
	staffRepo.Seed(domain.StaffMember{ID: "stf-math", Name: "Carl", Role: domain.RoleStaff, Department: "Math", Active: true})
	staffRepo.Seed(domain.StaffMember{ID: "stf-off", Name: "Dee", Role: domain.RoleStaff, Department: "IT", Active: false})
	staffRepo.Seed(domain.StaffMember{ID: itHOD.ID, Name: "Eve", Role: domain.RoleHOD, Department: "IT", Active: true})

	if policy.EscalationSLAHours == 0 {
		policy.EscalationSLAHours = 72
	}
	f.svc = NewComplaintService(ComplaintDependencies{
		ComplaintRepo: f.complaints,
		StaffRepo:     staffRepo,
		Dispatcher:    events.NewInMemoryDispatcher(),
		Policy:        policy,
		Clock:         func() time.Time { return f.now },
	})
	return f
}

func (f *fixture) submit(t *testing.T, target routing.TargetChoice) *domain.Complaint {
	t.Helper()
	c, err := f.svc.Submit(context.Background(), student, SubmitComplaintInput{
		Title:       "Broken projector",
		Description: "Room 204 projector does not power on",
		Category:    "Facilities",
		Priority:    domain.PriorityHigh,
		Target:      target,
	})
	require.NoError(t, err)
	return c
}

func TestSubmitRoutesToDepartmentStaff(t *testing.T) {
	f := newFixture(t, config.RoutingConfig{})
	ctx := context.Background()

	c := f.submit(t, routing.ChoiceStaff)

	assert.Equal(t, domain.StatusPending, c.Status)
	assert.Equal(t, "Staff (IT)", c.SubmittedTo)
	assert.Equal(t, student.ID, c.SubmittedBy)
	require.Len(t, c.AssignmentPath, 1)
	assert.Equal(t, domain.HandoffSubmitted, c.AssignmentPath[0].Action)
	assert.Equal(t, domain.RoleStudent, c.AssignmentPath[0].Role)

	stored, err := f.svc.Get(ctx, student, c.ID)
	require.NoError(t, err)
	assert.Equal(t, c.ID, stored.ID)
}

func TestSubmitToDean(t *testing.T) {
	f := newFixture(t, config.RoutingConfig{})

	c := f.submit(t, routing.ChoiceDean)
	assert.Equal(t, "Dean", c.SubmittedTo)
}

func TestSubmitAnonymousHidesIdentity(t *testing.T) {
	f := newFixture(t, config.RoutingConfig{})

	c, err := f.svc.Submit(context.Background(), student, SubmitComplaintInput{
		Title:       "Harassment report",
		Description: "details withheld",
		Target:      routing.ChoiceDean,
		Anonymous:   true,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.AnonymousSubmitter, c.SubmittedBy)
	require.Len(t, c.AssignmentPath, 1)
	assert.Equal(t, domain.AnonymousSubmitter, c.AssignmentPath[0].ActorID)
}

func TestSubmitValidation(t *testing.T) {
	f := newFixture(t, config.RoutingConfig{})
	ctx := context.Background()

	_, err := f.svc.Submit(ctx, itStaff, SubmitComplaintInput{
		Title: "x", Description: "y", Target: routing.ChoiceStaff,
	})
	assert.True(t, apperrors.IsCode(err, "FORBIDDEN"))

	_, err = f.svc.Submit(ctx, student, SubmitComplaintInput{
		Title: "  ", Description: "y", Target: routing.ChoiceStaff,
	})
	assert.True(t, apperrors.IsCode(err, "VALIDATION_FAILED"))

	_, err = f.svc.Submit(ctx, student, SubmitComplaintInput{
		Title: "x", Description: "y", Priority: "Urgent", Target: routing.ChoiceStaff,
	})
	assert.True(t, apperrors.IsCode(err, "VALIDATION_FAILED"))
}

func TestAssignRecordsHandoff(t *testing.T) {
	f := newFixture(t, config.RoutingConfig{})
	ctx := context.Background()
	c := f.submit(t, routing.ChoiceStaff)

	deadline := f.now.AddDate(0, 0, 3)
	c, err := f.svc.Assign(ctx, itHOD, c.ID, itStaff.ID, &deadline)
	require.NoError(t, err)

	assert.Equal(t, domain.StatusAssigned, c.Status)
	require.NotNil(t, c.AssignedStaff)
	assert.Equal(t, itStaff.ID, *c.AssignedStaff)
	require.NotNil(t, c.Deadline)
	require.Len(t, c.AssignmentPath, 2)
	assert.Equal(t, domain.HandoffAssigned, c.AssignmentPath[1].Action)
	assert.Equal(t, itHOD.ID, c.AssignmentPath[1].ActorID)
}

func TestAssignRejectsBadTargets(t *testing.T) {
	f := newFixture(t, config.RoutingConfig{})
	ctx := context.Background()
	c := f.submit(t, routing.ChoiceStaff)

	_, err := f.svc.Assign(ctx, itHOD, c.ID, "stf-off", nil)
	assert.True(t, apperrors.IsCode(err, "CONFLICT"), "inactive assignee: %v", err)

	_, err = f.svc.Assign(ctx, itHOD, c.ID, "stf-math", nil)
	assert.True(t, apperrors.IsCode(err, "FORBIDDEN"), "cross-department by hod: %v", err)

	_, err = f.svc.Assign(ctx, admin, c.ID, "stf-math", nil)
	require.NoError(t, err, "admin assigns across departments")

	_, err = f.svc.Assign(ctx, itHOD, "cmp-missing", itStaff.ID, nil)
	assert.True(t, apperrors.IsCode(err, "NOT_FOUND"))
}

func TestReassignHandsOff(t *testing.T) {
	f := newFixture(t, config.RoutingConfig{})
	ctx := context.Background()
	c := f.submit(t, routing.ChoiceStaff)

	_, err := f.svc.Assign(ctx, itHOD, c.ID, itStaff.ID, nil)
	require.NoError(t, err)

	c, err = f.svc.Reassign(ctx, itHOD, c.ID, itStaff2.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, itStaff2.ID, *c.AssignedStaff)
	require.Len(t, c.AssignmentPath, 3)
	assert.Equal(t, domain.HandoffReassigned, c.AssignmentPath[2].Action)
}

func TestAcceptClaimsComplaint(t *testing.T) {
	f := newFixture(t, config.RoutingConfig{})
	ctx := context.Background()
	c := f.submit(t, routing.ChoiceStaff)

	c, err := f.svc.Accept(ctx, itStaff, c.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusInProgress, c.Status)
	assert.Equal(t, itStaff.ID, *c.AssignedStaff)
	assert.Equal(t, domain.HandoffAccepted, c.AssignmentPath[len(c.AssignmentPath)-1].Action)
}

func TestAcceptRaceSecondActorLoses(t *testing.T) {
	f := newFixture(t, config.RoutingConfig{})
	ctx := context.Background()
	c := f.submit(t, routing.ChoiceStaff)

	_, err := f.svc.Accept(ctx, itStaff, c.ID)
	require.NoError(t, err)

	_, err = f.svc.Accept(ctx, itStaff2, c.ID)
	assert.True(t, apperrors.IsCode(err, "ALREADY_ACCEPTED"), "got %v", err)

	stored, err := f.svc.Get(ctx, admin, c.ID)
	require.NoError(t, err)
	assert.Equal(t, itStaff.ID, *stored.AssignedStaff)
}

func TestAcceptAfterAssignmentOnlyByAssignee(t *testing.T) {
	f := newFixture(t, config.RoutingConfig{})
	ctx := context.Background()
	c := f.submit(t, routing.ChoiceStaff)

	_, err := f.svc.Assign(ctx, itHOD, c.ID, itStaff.ID, nil)
	require.NoError(t, err)

	_, err = f.svc.Accept(ctx, itStaff2, c.ID)
	assert.True(t, apperrors.IsCode(err, "ALREADY_ACCEPTED"), "got %v", err)

	c, err = f.svc.Accept(ctx, itStaff, c.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusInProgress, c.Status)
}

func TestResolveClearsOverdue(t *testing.T) {
	f := newFixture(t, config.RoutingConfig{})
	ctx := context.Background()
	c := f.submit(t, routing.ChoiceStaff)

	deadline := f.now
	_, err := f.svc.Assign(ctx, itHOD, c.ID, itStaff.ID, &deadline)
	require.NoError(t, err)
	c, err = f.svc.Accept(ctx, itStaff, c.ID)
	require.NoError(t, err)

	f.now = f.now.AddDate(0, 0, 2)
	assert.True(t, f.svc.IsOverdue(c), "past-deadline in-progress complaint")

	c, err = f.svc.Resolve(ctx, itStaff, c.ID, "replaced the bulb")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusResolved, c.Status)
	require.NotNil(t, c.ResolvedAt)
	assert.False(t, f.svc.IsOverdue(c), "resolved complaints are never overdue")
	assert.Contains(t, c.ResolutionNote, "replaced the bulb")
}

func TestResolvedAtIsImmutable(t *testing.T) {
	f := newFixture(t, config.RoutingConfig{})
	ctx := context.Background()
	c := f.submit(t, routing.ChoiceStaff)

	_, err := f.svc.Accept(ctx, itStaff, c.ID)
	require.NoError(t, err)
	c, err = f.svc.Resolve(ctx, itStaff, c.ID, "done")
	require.NoError(t, err)
	resolvedAt := *c.ResolvedAt

	f.now = f.now.Add(time.Hour)
	c, err = f.svc.Close(ctx, admin, c.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusClosed, c.Status)
	assert.True(t, resolvedAt.Equal(*c.ResolvedAt))
}

func TestProgressUpdateKeepsStatusAndPath(t *testing.T) {
	f := newFixture(t, config.RoutingConfig{})
	ctx := context.Background()
	c := f.submit(t, routing.ChoiceStaff)

	c, err := f.svc.Accept(ctx, itStaff, c.ID)
	require.NoError(t, err)
	pathLen := len(c.AssignmentPath)

	c, err = f.svc.AddProgressUpdate(ctx, itStaff, c.ID, "ordered a spare part")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusInProgress, c.Status)
	assert.Len(t, c.AssignmentPath, pathLen)
	assert.Contains(t, c.ResolutionNote, "ordered a spare part")

	_, err = f.svc.AddProgressUpdate(ctx, itStaff2, c.ID, "not mine")
	assert.True(t, apperrors.IsCode(err, "FORBIDDEN"))
}

func TestRejectClosesWithoutResolution(t *testing.T) {
	f := newFixture(t, config.RoutingConfig{})
	ctx := context.Background()
	c := f.submit(t, routing.ChoiceStaff)

	c, err := f.svc.Reject(ctx, itHOD, c.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusClosed, c.Status)
	assert.Nil(t, c.ResolvedAt)
	assert.Equal(t, domain.HandoffRejected, c.AssignmentPath[len(c.AssignmentPath)-1].Action)
}

func TestFeedbackValidation(t *testing.T) {
	f := newFixture(t, config.RoutingConfig{})
	ctx := context.Background()
	c := f.submit(t, routing.ChoiceStaff)

	_, err := f.svc.SubmitFeedback(ctx, student, c.ID, 4, "")
	assert.True(t, apperrors.IsCode(err, "INVALID_STATE"), "feedback before resolution: %v", err)

	_, err = f.svc.Accept(ctx, itStaff, c.ID)
	require.NoError(t, err)
	_, err = f.svc.Resolve(ctx, itStaff, c.ID, "")
	require.NoError(t, err)

	_, err = f.svc.SubmitFeedback(ctx, student, c.ID, 6, "")
	assert.True(t, apperrors.IsCode(err, "VALIDATION_FAILED"), "rating above 5: %v", err)

	_, err = f.svc.SubmitFeedback(ctx, student, c.ID, 3.5, "")
	assert.True(t, apperrors.IsCode(err, "VALIDATION_FAILED"), "fractional rating: %v", err)

	_, err = f.svc.SubmitFeedback(ctx, student2, c.ID, 4, "")
	assert.True(t, apperrors.IsCode(err, "FORBIDDEN"), "non-submitter feedback: %v", err)

	c, err = f.svc.SubmitFeedback(ctx, student, c.ID, 4, "quick turnaround")
	require.NoError(t, err)
	require.NotNil(t, c.Feedback)
	assert.Equal(t, 4, c.Feedback.Rating)
	assert.Equal(t, domain.StatusResolved, c.Status)

	_, err = f.svc.SubmitFeedback(ctx, student, c.ID, 5, "")
	assert.True(t, apperrors.IsCode(err, "ALREADY_SUBMITTED"), "second feedback: %v", err)
}

func TestFeedbackAutoClose(t *testing.T) {
	f := newFixture(t, config.RoutingConfig{AutoCloseOnFeedback: true})
	ctx := context.Background()
	c := f.submit(t, routing.ChoiceStaff)

	_, err := f.svc.Accept(ctx, itStaff, c.ID)
	require.NoError(t, err)
	_, err = f.svc.Resolve(ctx, itStaff, c.ID, "")
	require.NoError(t, err)

	c, err = f.svc.SubmitFeedback(ctx, student, c.ID, 5, "")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusClosed, c.Status)
	assert.Equal(t, domain.HandoffClosed, c.AssignmentPath[len(c.AssignmentPath)-1].Action)
	assert.Equal(t, domain.RoleSystem, c.AssignmentPath[len(c.AssignmentPath)-1].Role)
}

func TestEscalationSweepRaisesUnattendedComplaints(t *testing.T) {
	f := newFixture(t, config.RoutingConfig{EscalationSLAHours: 72})
	ctx := context.Background()
	aged := f.submit(t, routing.ChoiceStaff)
	fresh := f.submit(t, routing.ChoiceStaff)
	claimed := f.submit(t, routing.ChoiceStaff)

	_, err := f.svc.Accept(ctx, itStaff, claimed.ID)
	require.NoError(t, err)

	f.now = f.now.Add(80 * time.Hour)
	// Re-stamp the fresh complaint inside the SLA window.
	freshStored, err := f.svc.Get(ctx, admin, fresh.ID)
	require.NoError(t, err)
	freshStored.SubmittedDate = f.now.Add(-time.Hour)
	require.NoError(t, f.complaints.Update(ctx, freshStored, nil))
	agedStored, err := f.svc.Get(ctx, admin, aged.ID)
	require.NoError(t, err)
	agedStored.SubmittedDate = f.now.Add(-80 * time.Hour)
	require.NoError(t, f.complaints.Update(ctx, agedStored, nil))

	escalated, err := f.svc.SweepEscalations(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, escalated)

	c, err := f.svc.Get(ctx, admin, aged.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, c.Status)
	assert.True(t, c.IsEscalated)
	assert.Equal(t, "Head of Department (IT)", c.SubmittedTo)
	assert.Equal(t, domain.HandoffEscalated, c.AssignmentPath[len(c.AssignmentPath)-1].Action)

	c, err = f.svc.Get(ctx, admin, fresh.ID)
	require.NoError(t, err)
	assert.False(t, c.IsEscalated)
	assert.Equal(t, "Staff (IT)", c.SubmittedTo)
}

func TestListScoping(t *testing.T) {
	f := newFixture(t, config.RoutingConfig{})
	ctx := context.Background()
	mine := f.submit(t, routing.ChoiceStaff)

	other, err := f.svc.Submit(ctx, domain.Actor{ID: "std-9", Role: domain.RoleStudent, Department: "Math"},
		SubmitComplaintInput{Title: "Noise", Description: "library noise", Target: routing.ChoiceStaff})
	require.NoError(t, err)

	visible, err := f.svc.List(ctx, student, ComplaintListFilter{})
	require.NoError(t, err)
	require.Len(t, visible, 1)
	assert.Equal(t, mine.ID, visible[0].ID)

	visible, err = f.svc.List(ctx, itStaff, ComplaintListFilter{})
	require.NoError(t, err)
	require.Len(t, visible, 1)
	assert.Equal(t, mine.ID, visible[0].ID)

	visible, err = f.svc.List(ctx, dean, ComplaintListFilter{})
	require.NoError(t, err)
	assert.Len(t, visible, 2)

	_, err = f.svc.Get(ctx, domain.Actor{ID: "stf-math-9", Role: domain.RoleStaff, Department: "Math"}, mine.ID)
	assert.True(t, apperrors.IsCode(err, "FORBIDDEN"))
	_ = other
}

func TestConcurrentWriteLosesWithConflict(t *testing.T) {
	f := newFixture(t, config.RoutingConfig{})
	ctx := context.Background()
	c := f.submit(t, routing.ChoiceStaff)

	stale, err := f.svc.Get(ctx, admin, c.ID)
	require.NoError(t, err)

	_, err = f.svc.Assign(ctx, itHOD, c.ID, itStaff.ID, nil)
	require.NoError(t, err)

	err = f.complaints.Update(ctx, stale, nil)
	assert.True(t, apperrors.IsCode(f.svc.mapRepoError(err), "CONFLICT"))
}
