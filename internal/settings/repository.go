package settings

import (
	"context"

	"github.com/samueltrindadern/crmclinica/internal/shared/types"
)

// Repository provides storage for the per-clinic settings record
type Repository interface {
	Get(ctx context.Context, clinicID types.ID) (*ClinicSettings, error)
	Upsert(ctx context.Context, s *ClinicSettings) error
}
