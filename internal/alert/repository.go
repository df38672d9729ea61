package alert

import (
	"context"

	"github.com/samueltrindadern/crmclinica/internal/shared/types"
)

// Repository defines the alert storage interface
type Repository interface {
	// Create inserts an alert unconditionally
	Create(ctx context.Context, a *Alert) error
	// CreatePending inserts a pending alert unless the patient already
	// has one. Returns false when the insert was skipped.
	CreatePending(ctx context.Context, a *Alert) (bool, error)
	Get(ctx context.Context, id types.ID) (*Alert, error)
	List(ctx context.Context, filter ListFilter) ([]Alert, int, error)
	UpdateStatus(ctx context.Context, id types.ID, status Status) (*Alert, error)
	HasPending(ctx context.Context, patientID types.ID) (bool, error)
}
