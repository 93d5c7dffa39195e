package inmem

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/complaint-service/internal/domain"
	"github.com/spec-kit/complaint-service/internal/repository"
)

func TestComplaintRepositoryVersioning(t *testing.T) {
	repo := NewComplaintRepository()
	ctx := context.Background()

	c := &domain.Complaint{
		Title:       "Wifi down",
		Description: "no signal in dorm B",
		Status:      domain.StatusPending,
		SubmittedBy: "std-1",
		SubmittedTo: "Staff (IT)",
		Department:  "IT",
	}
	first := domain.NewHandoff("", domain.RoleStudent, "std-1", domain.HandoffSubmitted, time.Now())
	if err := repo.Create(ctx, c, &first); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if c.ID == "" || c.Version != 1 {
		t.Fatalf("Create() id=%q version=%d", c.ID, c.Version)
	}

	stale, err := repo.GetByID(ctx, c.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}

	c.Status = domain.StatusAssigned
	h := domain.NewHandoff(c.ID, domain.RoleHOD, "stf-hod", domain.HandoffAssigned, time.Now())
	if err := repo.Update(ctx, c, &h); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if c.Version != 2 {
		t.Errorf("Update() version = %d, want 2", c.Version)
	}

	// The stale copy must lose.
	stale.Status = domain.StatusClosed
	if err := repo.Update(ctx, stale, nil); !errors.Is(err, repository.ErrVersionConflict) {
		t.Errorf("stale Update() error = %v, want ErrVersionConflict", err)
	}

	fresh, err := repo.GetByID(ctx, c.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if fresh.Status != domain.StatusAssigned {
		t.Errorf("stale write applied: status = %s", fresh.Status)
	}
	if len(fresh.AssignmentPath) != 2 {
		t.Errorf("assignment path length = %d, want 2", len(fresh.AssignmentPath))
	}
}

func TestComplaintRepositoryNotFound(t *testing.T) {
	repo := NewComplaintRepository()
	ctx := context.Background()

	if _, err := repo.GetByID(ctx, "cmp-404"); !errors.Is(err, pgx.ErrNoRows) {
		t.Errorf("GetByID() error = %v, want pgx.ErrNoRows", err)
	}
	if err := repo.Update(ctx, &domain.Complaint{ID: "cmp-404"}, nil); !errors.Is(err, pgx.ErrNoRows) {
		t.Errorf("Update() error = %v, want pgx.ErrNoRows", err)
	}
}

func TestComplaintRepositoryFilter(t *testing.T) {
	repo := NewComplaintRepository()
	ctx := context.Background()
	staffID := "stf-1"

	seed := []domain.Complaint{
		{Status: domain.StatusPending, SubmittedBy: "std-1", Department: "IT", Priority: domain.PriorityHigh},
		{Status: domain.StatusResolved, SubmittedBy: "std-1", Department: "IT", Priority: domain.PriorityLow},
		{Status: domain.StatusPending, SubmittedBy: "std-2", Department: "Math", Priority: domain.PriorityHigh},
	}
	for i := range seed {
		if err := repo.Create(ctx, &seed[i], nil); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}
	seed[2].AssignedStaff = &staffID
	if err := repo.Update(ctx, &seed[2], nil); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	submitter := "std-1"
	got, err := repo.ListWithFilter(ctx, repository.ComplaintFilter{SubmittedBy: &submitter})
	if err != nil || len(got) != 2 {
		t.Errorf("submitter filter: got %d, err %v; want 2", len(got), err)
	}

	dept := "it"
	got, err = repo.ListWithFilter(ctx, repository.ComplaintFilter{Department: &dept})
	if err != nil || len(got) != 2 {
		t.Errorf("department filter is case-insensitive: got %d, err %v; want 2", len(got), err)
	}

	unassigned := true
	got, err = repo.ListWithFilter(ctx, repository.ComplaintFilter{
		Statuses:   []domain.ComplaintStatus{domain.StatusPending},
		Unassigned: &unassigned,
	})
	if err != nil || len(got) != 1 {
		t.Errorf("pending unassigned filter: got %d, err %v; want 1", len(got), err)
	}
}
