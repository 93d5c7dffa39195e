package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/complaint-service/internal/domain"
)

// ErrVersionConflict signals a lost optimistic-lock race: the complaint was
// written by someone else since it was read. Callers re-read and retry.
var ErrVersionConflict = errors.New("complaint version conflict")

// ComplaintFilter captures listing parameters.
type ComplaintFilter struct {
	SubmittedBy     *string
	Department      *string
	AssignedStaff   *string
	Statuses        []domain.ComplaintStatus
	Priorities      []domain.ComplaintPriority
	Unassigned      *bool
	SubmittedBefore *time.Time
	Escalated       *bool
	Limit           int
	Offset          int
}

// ComplaintRepository encapsulates complaint persistence. Create and Update
// take the handoff to append so that the status mutation and the path entry
// commit or fail as one unit; the path can never drift from the status.
type ComplaintRepository interface {
	Create(ctx context.Context, c *domain.Complaint, first *domain.Handoff) error
	Update(ctx context.Context, c *domain.Complaint, h *domain.Handoff) error
	GetByID(ctx context.Context, id string) (*domain.Complaint, error)
	ListHandoffs(ctx context.Context, complaintID string) ([]domain.Handoff, error)
	ListWithFilter(ctx context.Context, filter ComplaintFilter) ([]domain.Complaint, error)
}

type complaintRepository struct {
	pool *pgxpool.Pool
}

// NewComplaintRepository instantiates the repository.
func NewComplaintRepository(pool *pgxpool.Pool) ComplaintRepository {
	return &complaintRepository{pool: pool}
}

const complaintColumns = `id, title, description, category, priority, status,
               submitted_by, submitted_to, department, assigned_staff, assigned_staff_role,
               submitted_date, last_updated, deadline, resolved_at, resolution_note,
               feedback_rating, feedback_comment, feedback_at, is_escalated, version`

func (r *complaintRepository) Create(ctx context.Context, c *domain.Complaint, first *domain.Handoff) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	const query = `
        INSERT INTO complaints (title, description, category, priority, status,
            submitted_by, submitted_to, department, assigned_staff, assigned_staff_role,
            deadline, resolution_note, is_escalated)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
        RETURNING id, submitted_date, last_updated, version`
	if err := tx.QueryRow(ctx, query,
		c.Title,
		c.Description,
		c.Category,
		c.Priority,
		c.Status,
		c.SubmittedBy,
		c.SubmittedTo,
		c.Department,
		c.AssignedStaff,
		c.AssignedStaffRole,
		c.Deadline,
		c.ResolutionNote,
		c.IsEscalated,
	).Scan(&c.ID, &c.SubmittedDate, &c.LastUpdated, &c.Version); err != nil {
		return err
	}

	if first != nil {
		first.ComplaintID = c.ID
		if err := insertHandoff(ctx, tx, first); err != nil {
			return err
		}
		c.AssignmentPath = append(c.AssignmentPath, *first)
	}
	return tx.Commit(ctx)
}

func (r *complaintRepository) Update(ctx context.Context, c *domain.Complaint, h *domain.Handoff) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	const query = `
        UPDATE complaints SET title=$1, description=$2, category=$3, priority=$4, status=$5,
            submitted_to=$6, assigned_staff=$7, assigned_staff_role=$8, deadline=$9,
            resolved_at=$10, resolution_note=$11, feedback_rating=$12, feedback_comment=$13,
            feedback_at=$14, is_escalated=$15, last_updated=NOW(), version=version+1
        WHERE id=$16 AND version=$17
        RETURNING last_updated, version`
	var feedbackRating *int
	var feedbackComment *string
	var feedbackAt *time.Time
	if c.Feedback != nil {
		feedbackRating = &c.Feedback.Rating
		feedbackComment = &c.Feedback.Comment
		feedbackAt = &c.Feedback.SubmittedAt
	}
	err = tx.QueryRow(ctx, query,
		c.Title,
		c.Description,
		c.Category,
		c.Priority,
		c.Status,
		c.SubmittedTo,
		c.AssignedStaff,
		c.AssignedStaffRole,
		c.Deadline,
		c.ResolvedAt,
		c.ResolutionNote,
		feedbackRating,
		feedbackComment,
		feedbackAt,
		c.IsEscalated,
		c.ID,
		c.Version,
	).Scan(&c.LastUpdated, &c.Version)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return r.missOrConflict(ctx, c.ID)
		}
		return err
	}

	if h != nil {
		h.ComplaintID = c.ID
		if err := insertHandoff(ctx, tx, h); err != nil {
			return err
		}
		c.AssignmentPath = append(c.AssignmentPath, *h)
	}
	return tx.Commit(ctx)
}

// missOrConflict distinguishes a vanished row from a lost version race.
func (r *complaintRepository) missOrConflict(ctx context.Context, id string) error {
	var exists bool
	if err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM complaints WHERE id=$1)`, id).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return pgx.ErrNoRows
	}
	return ErrVersionConflict
}

func insertHandoff(ctx context.Context, tx pgx.Tx, h *domain.Handoff) error {
	const query = `
        INSERT INTO complaint_handoffs (complaint_id, role, actor_id, action, recorded_at)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id`
	return tx.QueryRow(ctx, query,
		h.ComplaintID,
		h.Role,
		h.ActorID,
		h.Action,
		h.Timestamp,
	).Scan(&h.ID)
}

func (r *complaintRepository) GetByID(ctx context.Context, id string) (*domain.Complaint, error) {
	query := `SELECT ` + complaintColumns + ` FROM complaints WHERE id=$1`
	row := r.pool.QueryRow(ctx, query, id)
	c, err := scanComplaint(row)
	if err != nil {
		return nil, err
	}
	path, err := r.ListHandoffs(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	c.AssignmentPath = path
	return c, nil
}

func (r *complaintRepository) ListHandoffs(ctx context.Context, complaintID string) ([]domain.Handoff, error) {
	const query = `
        SELECT id, complaint_id, role, actor_id, action, recorded_at
        FROM complaint_handoffs WHERE complaint_id=$1 ORDER BY recorded_at ASC, id ASC`
	rows, err := r.pool.Query(ctx, query, complaintID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Handoff
	for rows.Next() {
		var h domain.Handoff
		if err := rows.Scan(&h.ID, &h.ComplaintID, &h.Role, &h.ActorID, &h.Action, &h.Timestamp); err != nil {
			return nil, err
		}
		result = append(result, h)
	}
	return result, rows.Err()
}

func (r *complaintRepository) ListWithFilter(ctx context.Context, filter ComplaintFilter) ([]domain.Complaint, error) {
	base := `SELECT ` + complaintColumns + ` FROM complaints`
	clauses := []string{"1=1"}
	args := []any{}

	if filter.SubmittedBy != nil {
		args = append(args, *filter.SubmittedBy)
		clauses = append(clauses, fmt.Sprintf("submitted_by=$%d", len(args)))
	}
	if filter.Department != nil {
		args = append(args, *filter.Department)
		clauses = append(clauses, fmt.Sprintf("LOWER(department)=LOWER($%d)", len(args)))
	}
	if filter.AssignedStaff != nil {
		args = append(args, *filter.AssignedStaff)
		clauses = append(clauses, fmt.Sprintf("assigned_staff=$%d", len(args)))
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}
	if len(filter.Priorities) > 0 {
		placeholders := make([]string, len(filter.Priorities))
		for i, pr := range filter.Priorities {
			args = append(args, pr)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("priority IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.Unassigned != nil && *filter.Unassigned {
		clauses = append(clauses, "assigned_staff IS NULL AND assigned_staff_role IS NULL")
	}
	if filter.SubmittedBefore != nil {
		args = append(args, *filter.SubmittedBefore)
		clauses = append(clauses, fmt.Sprintf("submitted_date < $%d", len(args)))
	}
	if filter.Escalated != nil {
		args = append(args, *filter.Escalated)
		clauses = append(clauses, fmt.Sprintf("is_escalated=$%d", len(args)))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY last_updated DESC LIMIT %d OFFSET %d`,
		base, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Complaint
	for rows.Next() {
		c, err := scanComplaint(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *c)
	}
	return result, rows.Err()
}

func scanComplaint(row pgx.Row) (*domain.Complaint, error) {
	var c domain.Complaint
	var feedbackRating *int
	var feedbackComment *string
	var feedbackAt *time.Time
	if err := row.Scan(
		&c.ID,
		&c.Title,
		&c.Description,
		&c.Category,
		&c.Priority,
		&c.Status,
		&c.SubmittedBy,
		&c.SubmittedTo,
		&c.Department,
		&c.AssignedStaff,
		&c.AssignedStaffRole,
		&c.SubmittedDate,
		&c.LastUpdated,
		&c.Deadline,
		&c.ResolvedAt,
		&c.ResolutionNote,
		&feedbackRating,
		&feedbackComment,
		&feedbackAt,
		&c.IsEscalated,
		&c.Version,
	); err != nil {
		return nil, err
	}
	if feedbackRating != nil {
		c.Feedback = &domain.Feedback{Rating: *feedbackRating}
		if feedbackComment != nil {
			c.Feedback.Comment = *feedbackComment
		}
		if feedbackAt != nil {
			c.Feedback.SubmittedAt = *feedbackAt
		}
	}
	return &c, nil
}
