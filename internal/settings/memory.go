package settings

import (
	"context"
	"sync"
	"time"

	"github.com/samueltrindadern/crmclinica/internal/shared/errors"
	"github.com/samueltrindadern/crmclinica/internal/shared/types"
)

// MemoryRepository is an in-memory settings store used in limited mode and
// in tests.
type MemoryRepository struct {
	mu       sync.RWMutex
	settings map[types.ID]*ClinicSettings
}

// NewMemoryRepository creates an empty in-memory settings repository
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		settings: make(map[types.ID]*ClinicSettings),
	}
}

// Get retrieves the settings of a clinic
func (r *MemoryRepository) Get(ctx context.Context, clinicID types.ID) (*ClinicSettings, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.settings[clinicID]
	if !ok {
		return nil, errors.NotFound("clinic settings", clinicID.String())
	}

	cp := *s
	return &cp, nil
}

// Upsert creates or replaces the settings of a clinic
func (r *MemoryRepository) Upsert(ctx context.Context, s *ClinicSettings) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cp := *s
	cp.UpdatedAt = time.Now()
	r.settings[s.ClinicID] = &cp
	return nil
}
