package patient

import (
	"context"

	"github.com/samueltrindadern/crmclinica/internal/shared/types"
)

// Repository provides storage for patient records. Two implementations
// exist: Postgres for the managed backend and an in-memory store for demo
// mode and tests. Callers never branch on which one is active.
type Repository interface {
	Create(ctx context.Context, p *Patient) error
	Get(ctx context.Context, id types.ID) (*Patient, error)
	GetByCPF(ctx context.Context, clinicID types.ID, cpf string) (*Patient, error)
	Update(ctx context.Context, p *Patient) error
	Delete(ctx context.Context, id types.ID) error
	List(ctx context.Context, filter ListFilter) ([]Patient, int, error)

	// ListActive returns the active patients of every clinic; the reminder
	// scanner walks this set.
	ListActive(ctx context.Context) ([]Patient, error)
}
