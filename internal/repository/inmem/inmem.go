// Package inmem provides map-backed repository implementations with the
// same conflict and not-found semantics as the postgres repositories. Used
// by tests and by local development without a database.
package inmem

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/complaint-service/internal/domain"
	"github.com/spec-kit/complaint-service/internal/repository"
)

// ComplaintRepository is an in-memory repository.ComplaintRepository.
type ComplaintRepository struct {
	mu         sync.Mutex
	seq        int
	complaints map[string]domain.Complaint
	handoffs   map[string][]domain.Handoff
}

// NewComplaintRepository builds an empty store.
func NewComplaintRepository() *ComplaintRepository {
	return &ComplaintRepository{
		complaints: make(map[string]domain.Complaint),
		handoffs:   make(map[string][]domain.Handoff),
	}
}

func (r *ComplaintRepository) nextID(prefix string) string {
	r.seq++
	return prefix + "-" + strconv.Itoa(r.seq)
}

// Create stores the complaint and its first handoff as one unit.
func (r *ComplaintRepository) Create(_ context.Context, c *domain.Complaint, first *domain.Handoff) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	c.ID = r.nextID("cmp")
	if c.SubmittedDate.IsZero() {
		c.SubmittedDate = now
	}
	c.LastUpdated = now
	c.Version = 1
	if first != nil {
		first.ComplaintID = c.ID
		first.ID = r.nextID("hof")
		r.handoffs[c.ID] = append(r.handoffs[c.ID], *first)
		c.AssignmentPath = append(c.AssignmentPath, *first)
	}
	r.complaints[c.ID] = cloneComplaint(*c)
	return nil
}

// Update applies the write only when the stored version matches, mirroring
// the optimistic lock of the postgres repository.
func (r *ComplaintRepository) Update(_ context.Context, c *domain.Complaint, h *domain.Handoff) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.complaints[c.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	if stored.Version != c.Version {
		return repository.ErrVersionConflict
	}
	c.Version++
	c.LastUpdated = time.Now()
	if h != nil {
		h.ComplaintID = c.ID
		h.ID = r.nextID("hof")
		r.handoffs[c.ID] = append(r.handoffs[c.ID], *h)
		c.AssignmentPath = append(c.AssignmentPath, *h)
	}
	r.complaints[c.ID] = cloneComplaint(*c)
	return nil
}

// GetByID returns the complaint with its full assignment path.
func (r *ComplaintRepository) GetByID(_ context.Context, id string) (*domain.Complaint, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.complaints[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	c := cloneComplaint(stored)
	c.AssignmentPath = append([]domain.Handoff{}, r.handoffs[id]...)
	return &c, nil
}

// ListHandoffs returns the append-only path in recorded order.
func (r *ComplaintRepository) ListHandoffs(_ context.Context, complaintID string) ([]domain.Handoff, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.Handoff{}, r.handoffs[complaintID]...), nil
}

// ListWithFilter applies the same filter semantics as the SQL repository.
func (r *ComplaintRepository) ListWithFilter(_ context.Context, filter repository.ComplaintFilter) ([]domain.Complaint, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var result []domain.Complaint
	for id, c := range r.complaints {
		if filter.SubmittedBy != nil && c.SubmittedBy != *filter.SubmittedBy {
			continue
		}
		if filter.Department != nil && !domain.SameDepartment(c.Department, *filter.Department) {
			continue
		}
		if filter.AssignedStaff != nil && (c.AssignedStaff == nil || *c.AssignedStaff != *filter.AssignedStaff) {
			continue
		}
		if len(filter.Statuses) > 0 && !containsStatus(filter.Statuses, c.Status) {
			continue
		}
		if len(filter.Priorities) > 0 && !containsPriority(filter.Priorities, c.Priority) {
			continue
		}
		if filter.Unassigned != nil && *filter.Unassigned && c.HasAssignee() {
			continue
		}
		if filter.SubmittedBefore != nil && !c.SubmittedDate.Before(*filter.SubmittedBefore) {
			continue
		}
		if filter.Escalated != nil && c.IsEscalated != *filter.Escalated {
			continue
		}
		clone := cloneComplaint(c)
		clone.AssignmentPath = append([]domain.Handoff{}, r.handoffs[id]...)
		result = append(result, clone)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].LastUpdated.After(result[j].LastUpdated)
	})
	if filter.Offset > 0 {
		if filter.Offset >= len(result) {
			return nil, nil
		}
		result = result[filter.Offset:]
	}
	if filter.Limit > 0 && len(result) > filter.Limit {
		result = result[:filter.Limit]
	}
	return result, nil
}

func cloneComplaint(c domain.Complaint) domain.Complaint {
	if c.AssignedStaff != nil {
		v := *c.AssignedStaff
		c.AssignedStaff = &v
	}
	if c.AssignedStaffRole != nil {
		v := *c.AssignedStaffRole
		c.AssignedStaffRole = &v
	}
	if c.Deadline != nil {
		v := *c.Deadline
		c.Deadline = &v
	}
	if c.ResolvedAt != nil {
		v := *c.ResolvedAt
		c.ResolvedAt = &v
	}
	if c.Feedback != nil {
		v := *c.Feedback
		c.Feedback = &v
	}
	c.AssignmentPath = append([]domain.Handoff{}, c.AssignmentPath...)
	return c
}

func containsStatus(set []domain.ComplaintStatus, s domain.ComplaintStatus) bool {
	for _, v := range set {
		if v == s {
			return true
		}
	}
	return false
}

func containsPriority(set []domain.ComplaintPriority, p domain.ComplaintPriority) bool {
	for _, v := range set {
		if v == p {
			return true
		}
	}
	return false
}

// StaffRepository is an in-memory repository.StaffRepository.
type StaffRepository struct {
	mu    sync.Mutex
	seq   int
	staff map[string]domain.StaffMember
}

// NewStaffRepository builds an empty store.
func NewStaffRepository() *StaffRepository {
	return &StaffRepository{staff: make(map[string]domain.StaffMember)}
}

// Seed inserts a staff member with a fixed id, for test fixtures.
func (r *StaffRepository) Seed(staff domain.StaffMember) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.staff[staff.ID] = staff
}

func (r *StaffRepository) Create(_ context.Context, staff *domain.StaffMember) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	staff.ID = "stf-" + strconv.Itoa(r.seq)
	staff.CreatedAt = time.Now()
	staff.UpdatedAt = staff.CreatedAt
	r.staff[staff.ID] = *staff
	return nil
}

func (r *StaffRepository) Update(_ context.Context, staff *domain.StaffMember) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.staff[staff.ID]; !ok {
		return pgx.ErrNoRows
	}
	staff.UpdatedAt = time.Now()
	r.staff[staff.ID] = *staff
	return nil
}

func (r *StaffRepository) GetByID(_ context.Context, id string) (*domain.StaffMember, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	staff, ok := r.staff[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &staff, nil
}

func (r *StaffRepository) GetByEmail(_ context.Context, email string) (*domain.StaffMember, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, staff := range r.staff {
		if strings.EqualFold(staff.Email, email) {
			s := staff
			return &s, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *StaffRepository) ListByDepartment(ctx context.Context, department string) ([]domain.StaffMember, error) {
	active := true
	return r.List(ctx, repository.StaffFilter{Department: &department, Active: &active})
}

func (r *StaffRepository) List(_ context.Context, filter repository.StaffFilter) ([]domain.StaffMember, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.StaffMember
	for _, staff := range r.staff {
		if filter.Role != nil && staff.Role != *filter.Role {
			continue
		}
		if filter.Department != nil && !domain.SameDepartment(staff.Department, *filter.Department) {
			continue
		}
		if filter.Active != nil && staff.Active != *filter.Active {
			continue
		}
		result = append(result, staff)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// StudentRepository is an in-memory repository.StudentRepository.
type StudentRepository struct {
	mu       sync.Mutex
	seq      int
	students map[string]domain.Student
}

// NewStudentRepository builds an empty store.
func NewStudentRepository() *StudentRepository {
	return &StudentRepository{students: make(map[string]domain.Student)}
}

// Seed inserts a student with a fixed id, for test fixtures.
func (r *StudentRepository) Seed(student domain.Student) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.students[student.ID] = student
}

func (r *StudentRepository) Create(_ context.Context, student *domain.Student) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	student.ID = "std-" + strconv.Itoa(r.seq)
	student.CreatedAt = time.Now()
	student.UpdatedAt = student.CreatedAt
	r.students[student.ID] = *student
	return nil
}

func (r *StudentRepository) Update(_ context.Context, student *domain.Student) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.students[student.ID]; !ok {
		return pgx.ErrNoRows
	}
	student.UpdatedAt = time.Now()
	r.students[student.ID] = *student
	return nil
}

func (r *StudentRepository) GetByID(_ context.Context, id string) (*domain.Student, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	student, ok := r.students[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &student, nil
}

func (r *StudentRepository) GetByEmail(_ context.Context, email string) (*domain.Student, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, student := range r.students {
		if strings.EqualFold(student.Email, email) {
			s := student
			return &s, nil
		}
	}
	return nil, pgx.ErrNoRows
}
