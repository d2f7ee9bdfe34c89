package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a lead does not exist.
var ErrNotFound = errors.New("lead not found")

// Repository defines persistence operations for leads.
type Repository interface {
	// Create inserts a new lead document. The row starts unprocessed with a
	// human change source.
	Create(ctx context.Context, params CreateParams) (Lead, error)

	// GetByID fetches a single lead.
	GetByID(ctx context.Context, id uuid.UUID) (Lead, error)

	// List returns one page of leads matching the filter plus the total
	// count of matching rows.
	List(ctx context.Context, params ListParams) ([]Lead, int, error)

	// UpdateProfile applies a human edit in one atomic statement: the
	// old_data snapshot delta is merged before the new values land, the
	// processed marker is cleared, and the change source is set to human.
	UpdateProfile(ctx context.Context, params UpdateProfileParams) (Lead, error)

	// SaveAnalysis stores the generated summary and recommendation, raises
	// the processed marker, and records the system change source. Profile
	// fields and old_data are left untouched.
	SaveAnalysis(ctx context.Context, id uuid.UUID, summary, recommendation string) (Lead, error)
}
