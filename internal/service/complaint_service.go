package service

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/complaint-service/internal/config"
	"github.com/spec-kit/complaint-service/internal/domain"
	"github.com/spec-kit/complaint-service/internal/events"
	"github.com/spec-kit/complaint-service/internal/repository"
	"github.com/spec-kit/complaint-service/internal/routing"
	apperrors "github.com/spec-kit/complaint-service/pkg/util"
)

const systemActorID = "system"

// ComplaintService coordinates the complaint lifecycle. Every operation
// takes the acting identity explicitly and is a single read-modify-write
// against the complaint record; concurrent writers on the same id lose
// with a conflict and must re-read.
type ComplaintService struct {
	complaints repository.ComplaintRepository
	staff      repository.StaffRepository
	dispatcher events.Dispatcher
	policy     config.RoutingConfig
	now        func() time.Time
}

// ComplaintDependencies bundles requirements for the service.
type ComplaintDependencies struct {
	ComplaintRepo repository.ComplaintRepository
	StaffRepo     repository.StaffRepository
	Dispatcher    events.Dispatcher
	Policy        config.RoutingConfig
	// Clock is injected so deadline and SLA arithmetic is testable.
	// Defaults to time.Now.
	Clock func() time.Time
}

// NewComplaintService constructs the service.
func NewComplaintService(deps ComplaintDependencies) *ComplaintService {
	now := deps.Clock
	if now == nil {
		now = time.Now
	}
	return &ComplaintService{
		complaints: deps.ComplaintRepo,
		staff:      deps.StaffRepo,
		dispatcher: deps.Dispatcher,
		policy:     deps.Policy,
		now:        now,
	}
}

// SubmitComplaintInput describes the submission payload.
type SubmitComplaintInput struct {
	Title       string
	Description string
	Category    string
	Priority    domain.ComplaintPriority
	Target      routing.TargetChoice
	Anonymous   bool
}

// ComplaintListFilter describes listing filters; department scoping is
// applied on top from the actor, never taken from the caller.
type ComplaintListFilter struct {
	Statuses   []domain.ComplaintStatus
	Priorities []domain.ComplaintPriority
	Escalated  *bool
	Limit      int
	Offset     int
}

// Submit files a new complaint routed per the target choice.
func (s *ComplaintService) Submit(ctx context.Context, actor domain.Actor, input SubmitComplaintInput) (*domain.Complaint, error) {
	if actor.Role != domain.RoleStudent {
		return nil, apperrors.NewForbidden("only students submit complaints")
	}
	title := strings.TrimSpace(input.Title)
	description := strings.TrimSpace(input.Description)
	if title == "" || description == "" {
		return nil, apperrors.NewValidationError("title and description required", nil)
	}
	priority := input.Priority
	if priority == "" {
		priority = domain.PriorityMedium
	}
	if !domain.ValidPriority(priority) {
		return nil, apperrors.NewValidationError("unknown priority", map[string]any{"priority": string(priority)})
	}

	target, err := routing.InitialTarget(input.Target, actor.Department)
	if err != nil {
		return nil, err
	}

	submittedBy := actor.ID
	if input.Anonymous {
		submittedBy = domain.AnonymousSubmitter
	}

	complaint := &domain.Complaint{
		Title:       title,
		Description: description,
		Category:    strings.TrimSpace(input.Category),
		Priority:    priority,
		Status:      domain.StatusPending,
		SubmittedBy: submittedBy,
		SubmittedTo: target.Label,
		Department:  actor.Department,
	}
	handoff := domain.NewHandoff("", domain.RoleStudent, submittedBy, domain.HandoffSubmitted, s.now())
	if err := s.complaints.Create(ctx, complaint, &handoff); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publish(ctx, events.EventComplaintSubmitted, complaint.ID, actor, events.ComplaintSubmittedPayload{
		Department:  complaint.Department,
		SubmittedTo: complaint.SubmittedTo,
		Priority:    complaint.Priority,
		Title:       complaint.Title,
	})
	return complaint, nil
}

// Get fetches a complaint, enforcing view scoping.
func (s *ComplaintService) Get(ctx context.Context, actor domain.Actor, id string) (*domain.Complaint, error) {
	complaint, err := s.fetch(ctx, id)
	if err != nil {
		return nil, err
	}
	if !routing.CanView(actor, complaint) {
		return nil, apperrors.NewForbidden("complaint outside actor scope")
	}
	return complaint, nil
}

// List returns complaints visible to the actor. Students see their own
// submissions, staff and HODs their department, deans and admins all.
func (s *ComplaintService) List(ctx context.Context, actor domain.Actor, filter ComplaintListFilter) ([]domain.Complaint, error) {
	repoFilter := repository.ComplaintFilter{
		Statuses:   filter.Statuses,
		Priorities: filter.Priorities,
		Escalated:  filter.Escalated,
		Limit:      filter.Limit,
		Offset:     filter.Offset,
	}
	switch actor.Role {
	case domain.RoleStudent:
		id := actor.ID
		repoFilter.SubmittedBy = &id
	case domain.RoleStaff, domain.RoleHOD:
		dept := actor.Department
		repoFilter.Department = &dept
	case domain.RoleDean, domain.RoleAdmin:
		// campus-wide
	default:
		return nil, apperrors.NewForbidden("unknown role")
	}
	result, err := s.complaints.ListWithFilter(ctx, repoFilter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return result, nil
}

// ListAssignmentPath returns the append-only handoff history.
func (s *ComplaintService) ListAssignmentPath(ctx context.Context, actor domain.Actor, id string) ([]domain.Handoff, error) {
	complaint, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	return complaint.AssignmentPath, nil
}

// IsOverdue evaluates derived overdue state against the injected clock.
func (s *ComplaintService) IsOverdue(c *domain.Complaint) bool {
	return domain.IsOverdue(c, s.now())
}

// Assign routes a pending complaint to a staff member, optionally with a
// deadline.
func (s *ComplaintService) Assign(ctx context.Context, actor domain.Actor, id, staffID string, deadline *time.Time) (*domain.Complaint, error) {
	complaint, err := s.fetch(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := domain.Authorize(complaint, domain.ActionAssign, actor); err != nil {
		return nil, err
	}
	if err := s.requireActorScope(actor, complaint); err != nil {
		return nil, err
	}
	assignee, err := s.fetchStaff(ctx, staffID)
	if err != nil {
		return nil, err
	}
	if err := routing.ValidateAssignmentTarget(actor, assignee, complaint); err != nil {
		return nil, err
	}

	complaint.Status = domain.StatusAssigned
	complaint.AssignedStaff = &assignee.ID
	role := assignee.Role
	complaint.AssignedStaffRole = &role
	complaint.Deadline = deadline

	handoff := domain.NewHandoff(complaint.ID, actor.Role, actor.ID, domain.HandoffAssigned, s.now())
	if err := s.update(ctx, complaint, &handoff); err != nil {
		return nil, err
	}
	s.publish(ctx, events.EventComplaintAssigned, complaint.ID, actor, events.ComplaintAssignedPayload{
		AssignedStaff: assignee.ID,
		AssignedRole:  assignee.Role,
		Deadline:      deadline,
	})
	return complaint, nil
}

// Reassign hands an assigned or in-progress complaint to a different staff
// member. A nil deadline clears any previous one.
func (s *ComplaintService) Reassign(ctx context.Context, actor domain.Actor, id, staffID string, deadline *time.Time) (*domain.Complaint, error) {
	complaint, err := s.fetch(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := domain.Authorize(complaint, domain.ActionReassign, actor); err != nil {
		return nil, err
	}
	if err := s.requireActorScope(actor, complaint); err != nil {
		return nil, err
	}
	assignee, err := s.fetchStaff(ctx, staffID)
	if err != nil {
		return nil, err
	}
	if err := routing.ValidateAssignmentTarget(actor, assignee, complaint); err != nil {
		return nil, err
	}

	complaint.Status = domain.StatusAssigned
	complaint.AssignedStaff = &assignee.ID
	role := assignee.Role
	complaint.AssignedStaffRole = &role
	complaint.Deadline = deadline

	handoff := domain.NewHandoff(complaint.ID, actor.Role, actor.ID, domain.HandoffReassigned, s.now())
	if err := s.update(ctx, complaint, &handoff); err != nil {
		return nil, err
	}
	s.publish(ctx, events.EventComplaintAssigned, complaint.ID, actor, events.ComplaintAssignedPayload{
		AssignedStaff: assignee.ID,
		AssignedRole:  assignee.Role,
		Deadline:      deadline,
		Reassignment:  true,
	})
	return complaint, nil
}

// Accept lets the assignee (or a staff member claiming an unassigned
// complaint) take the complaint into progress. The first writer wins;
// losers observe ALREADY_ACCEPTED and must re-read.
func (s *ComplaintService) Accept(ctx context.Context, actor domain.Actor, id string) (*domain.Complaint, error) {
	complaint, err := s.fetch(ctx, id)
	if err != nil {
		return nil, err
	}
	if complaint.Status == domain.StatusInProgress {
		if complaint.AssignedStaff != nil && *complaint.AssignedStaff != actor.ID {
			return nil, apperrors.NewAlreadyAccepted(complaint.ID)
		}
	}
	if err := domain.Authorize(complaint, domain.ActionAccept, actor); err != nil {
		return nil, err
	}
	if complaint.AssignedStaff != nil && *complaint.AssignedStaff != actor.ID {
		return nil, apperrors.NewAlreadyAccepted(complaint.ID)
	}
	if err := s.requireActorScope(actor, complaint); err != nil {
		return nil, err
	}

	oldStatus := complaint.Status
	complaint.Status = domain.StatusInProgress
	actorID := actor.ID
	complaint.AssignedStaff = &actorID
	role := actor.Role
	complaint.AssignedStaffRole = &role

	handoff := domain.NewHandoff(complaint.ID, actor.Role, actor.ID, domain.HandoffAccepted, s.now())
	if err := s.complaints.Update(ctx, complaint, &handoff); err != nil {
		if errors.Is(err, repository.ErrVersionConflict) {
			return nil, apperrors.NewAlreadyAccepted(complaint.ID)
		}
		return nil, s.mapRepoError(err)
	}
	s.publish(ctx, events.EventComplaintAccepted, complaint.ID, actor, events.ComplaintStatusChangedPayload{
		OldStatus: oldStatus,
		NewStatus: complaint.Status,
	})
	return complaint, nil
}

// Reject closes a pending or assigned complaint without resolution.
func (s *ComplaintService) Reject(ctx context.Context, actor domain.Actor, id string) (*domain.Complaint, error) {
	complaint, err := s.fetch(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := domain.Authorize(complaint, domain.ActionReject, actor); err != nil {
		return nil, err
	}
	if err := s.requireActorScope(actor, complaint); err != nil {
		return nil, err
	}

	oldStatus := complaint.Status
	complaint.Status = domain.StatusClosed

	handoff := domain.NewHandoff(complaint.ID, actor.Role, actor.ID, domain.HandoffRejected, s.now())
	if err := s.update(ctx, complaint, &handoff); err != nil {
		return nil, err
	}
	s.publish(ctx, events.EventComplaintRejected, complaint.ID, actor, events.ComplaintStatusChangedPayload{
		OldStatus: oldStatus,
		NewStatus: complaint.Status,
	})
	return complaint, nil
}

// AddProgressUpdate appends a progress note. Status and the assignment path
// are untouched; only the note and last-updated stamp change.
func (s *ComplaintService) AddProgressUpdate(ctx context.Context, actor domain.Actor, id, note string) (*domain.Complaint, error) {
	note = strings.TrimSpace(note)
	if note == "" {
		return nil, apperrors.NewValidationError("note required", nil)
	}
	complaint, err := s.fetch(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := domain.Authorize(complaint, domain.ActionProgress, actor); err != nil {
		return nil, err
	}

	complaint.ResolutionNote = appendNote(complaint.ResolutionNote, note)
	if err := s.update(ctx, complaint, nil); err != nil {
		return nil, err
	}
	s.publish(ctx, events.EventComplaintProgress, complaint.ID, actor, events.ComplaintStatusChangedPayload{
		OldStatus: complaint.Status,
		NewStatus: complaint.Status,
		Note:      note,
	})
	return complaint, nil
}

// Resolve marks an in-progress complaint resolved. ResolvedAt is written
// exactly once and never changes afterwards.
func (s *ComplaintService) Resolve(ctx context.Context, actor domain.Actor, id, note string) (*domain.Complaint, error) {
	complaint, err := s.fetch(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := domain.Authorize(complaint, domain.ActionResolve, actor); err != nil {
		return nil, err
	}

	oldStatus := complaint.Status
	complaint.Status = domain.StatusResolved
	if complaint.ResolvedAt == nil {
		resolvedAt := s.now()
		complaint.ResolvedAt = &resolvedAt
	}
	if note = strings.TrimSpace(note); note != "" {
		complaint.ResolutionNote = appendNote(complaint.ResolutionNote, note)
	}

	handoff := domain.NewHandoff(complaint.ID, actor.Role, actor.ID, domain.HandoffResolved, s.now())
	if err := s.update(ctx, complaint, &handoff); err != nil {
		return nil, err
	}
	s.publish(ctx, events.EventComplaintResolved, complaint.ID, actor, events.ComplaintStatusChangedPayload{
		OldStatus: oldStatus,
		NewStatus: complaint.Status,
		Note:      note,
	})
	return complaint, nil
}

// Close finishes a resolved complaint. Terminal; nothing reopens it.
func (s *ComplaintService) Close(ctx context.Context, actor domain.Actor, id string) (*domain.Complaint, error) {
	complaint, err := s.fetch(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := domain.Authorize(complaint, domain.ActionClose, actor); err != nil {
		return nil, err
	}

	oldStatus := complaint.Status
	complaint.Status = domain.StatusClosed

	handoff := domain.NewHandoff(complaint.ID, actor.Role, actor.ID, domain.HandoffClosed, s.now())
	if err := s.update(ctx, complaint, &handoff); err != nil {
		return nil, err
	}
	s.publish(ctx, events.EventComplaintClosed, complaint.ID, actor, events.ComplaintStatusChangedPayload{
		OldStatus: oldStatus,
		NewStatus: complaint.Status,
	})
	return complaint, nil
}

// SubmitFeedback records the submitter's one-shot rating on a resolved
// complaint. Rating must be an integer between 1 and 5.
func (s *ComplaintService) SubmitFeedback(ctx context.Context, actor domain.Actor, id string, rating float64, comment string) (*domain.Complaint, error) {
	if rating != math.Trunc(rating) || rating < 1 || rating > 5 {
		return nil, apperrors.NewValidationError("rating must be an integer between 1 and 5",
			map[string]any{"rating": rating})
	}
	complaint, err := s.fetch(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.Role != domain.RoleStudent || complaint.SubmittedBy != actor.ID {
		return nil, apperrors.NewForbidden("only the submitter may leave feedback")
	}
	if complaint.Status != domain.StatusResolved {
		return nil, apperrors.NewInvalidState("feedback requires a resolved complaint",
			map[string]any{"current_status": string(complaint.Status)})
	}
	if complaint.Feedback != nil {
		return nil, apperrors.NewAlreadySubmitted("feedback")
	}

	complaint.Feedback = &domain.Feedback{
		Rating:      int(rating),
		Comment:     strings.TrimSpace(comment),
		SubmittedAt: s.now(),
	}
	if err := s.update(ctx, complaint, nil); err != nil {
		return nil, err
	}
	s.publish(ctx, events.EventFeedbackSubmitted, complaint.ID, actor, events.FeedbackSubmittedPayload{
		Rating:  complaint.Feedback.Rating,
		Comment: complaint.Feedback.Comment,
	})

	if s.policy.AutoCloseOnFeedback {
		complaint.Status = domain.StatusClosed
		handoff := domain.NewHandoff(complaint.ID, domain.RoleSystem, systemActorID, domain.HandoffClosed, s.now())
		if err := s.update(ctx, complaint, &handoff); err != nil {
			return nil, err
		}
		s.publish(ctx, events.EventComplaintClosed, complaint.ID,
			domain.Actor{ID: systemActorID, Role: domain.RoleSystem},
			events.ComplaintStatusChangedPayload{OldStatus: domain.StatusResolved, NewStatus: domain.StatusClosed})
	}
	return complaint, nil
}

// Escalate raises an unattended pending complaint one rung up the routing
// ladder. Invoked by the sweep, never by a signed-in actor; status does not
// change.
func (s *ComplaintService) Escalate(ctx context.Context, id string) (*domain.Complaint, error) {
	complaint, err := s.fetch(ctx, id)
	if err != nil {
		return nil, err
	}
	systemActor := domain.Actor{ID: systemActorID, Role: domain.RoleSystem}
	if err := domain.Authorize(complaint, domain.ActionEscalate, systemActor); err != nil {
		return nil, err
	}
	if complaint.HasAssignee() {
		return nil, apperrors.NewInvalidState("assigned complaints do not escalate", nil)
	}
	next, ok := routing.NextEscalationTarget(complaint)
	if !ok {
		return nil, apperrors.NewInvalidState("complaint already at the top of the ladder",
			map[string]any{"submitted_to": complaint.SubmittedTo})
	}

	from := complaint.SubmittedTo
	complaint.SubmittedTo = next.Label
	complaint.IsEscalated = true

	handoff := domain.NewHandoff(complaint.ID, next.Role, systemActorID, domain.HandoffEscalated, s.now())
	if err := s.update(ctx, complaint, &handoff); err != nil {
		return nil, err
	}
	s.publish(ctx, events.EventComplaintEscalated, complaint.ID, systemActor, events.ComplaintEscalatedPayload{
		From: from,
		To:   complaint.SubmittedTo,
	})
	return complaint, nil
}

// SweepEscalations escalates every complaint sitting unassigned past the
// SLA. Returns how many were raised.
func (s *ComplaintService) SweepEscalations(ctx context.Context) (int, error) {
	now := s.now()
	cutoff := now.Add(-s.policy.EscalationSLA())
	unassigned := true
	candidates, err := s.complaints.ListWithFilter(ctx, repository.ComplaintFilter{
		Statuses:        []domain.ComplaintStatus{domain.StatusPending, domain.StatusUnassigned},
		Unassigned:      &unassigned,
		SubmittedBefore: &cutoff,
		Limit:           500,
	})
	if err != nil {
		return 0, apperrors.MapError(err)
	}

	escalated := 0
	for i := range candidates {
		if !routing.EligibleForEscalation(&candidates[i], now, s.policy.EscalationSLA()) {
			continue
		}
		if _, err := s.Escalate(ctx, candidates[i].ID); err != nil {
			// Lost a race with an assignment or another sweep; skip.
			if apperrors.IsCode(err, "CONFLICT") || apperrors.IsCode(err, "INVALID_STATE") {
				continue
			}
			return escalated, err
		}
		escalated++
	}
	return escalated, nil
}

// requireActorScope keeps department-scoped roles inside their department.
func (s *ComplaintService) requireActorScope(actor domain.Actor, c *domain.Complaint) error {
	if actor.Role.CrossesDepartments() {
		return nil
	}
	if !domain.SameDepartment(actor.Department, c.Department) {
		return apperrors.NewForbidden("complaint outside actor department")
	}
	return nil
}

func (s *ComplaintService) fetch(ctx context.Context, id string) (*domain.Complaint, error) {
	complaint, err := s.complaints.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("complaint", map[string]any{"complaint_id": id})
		}
		return nil, apperrors.MapError(err)
	}
	return complaint, nil
}

func (s *ComplaintService) fetchStaff(ctx context.Context, staffID string) (*domain.StaffMember, error) {
	staff, err := s.staff.GetByID(ctx, staffID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("staff", map[string]any{"staff_id": staffID})
		}
		return nil, apperrors.MapError(err)
	}
	return staff, nil
}

func (s *ComplaintService) update(ctx context.Context, c *domain.Complaint, h *domain.Handoff) error {
	if err := s.complaints.Update(ctx, c, h); err != nil {
		return s.mapRepoError(err)
	}
	return nil
}

func (s *ComplaintService) mapRepoError(err error) error {
	switch {
	case errors.Is(err, repository.ErrVersionConflict):
		return apperrors.NewConflict("complaint was modified concurrently; re-read and retry", nil)
	case errors.Is(err, pgx.ErrNoRows):
		return apperrors.NewNotFound("complaint", nil)
	default:
		return apperrors.MapError(err)
	}
}

func (s *ComplaintService) publish(ctx context.Context, eventType events.EventType, complaintID string, actor domain.Actor, payload any) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:          uuid.NewString(),
		Type:        eventType,
		ComplaintID: complaintID,
		Actor:       events.Actor{ID: actor.ID, Role: actor.Role},
		Timestamp:   s.now(),
		Payload:     payload,
	})
}

func appendNote(existing, note string) string {
	if existing == "" {
		return note
	}
	return existing + "\n" + note
}
