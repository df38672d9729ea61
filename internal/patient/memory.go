package patient

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/samueltrindadern/crmclinica/internal/shared/errors"
	"github.com/samueltrindadern/crmclinica/internal/shared/types"
)

// MemoryRepository is an in-memory patient store used in limited mode (no
// database) and in tests.
type MemoryRepository struct {
	mu       sync.RWMutex
	patients map[types.ID]*Patient
}

// NewMemoryRepository creates an empty in-memory patient repository
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		patients: make(map[types.ID]*Patient),
	}
}

// Create inserts a new patient
func (r *MemoryRepository) Create(ctx context.Context, p *Patient) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.patients {
		if existing.ClinicID == p.ClinicID && existing.CPF == p.CPF {
			return errors.Conflict("patient with this CPF already exists")
		}
	}

	cp := *p
	r.patients[p.ID] = &cp
	return nil
}

// Get retrieves a patient by ID
func (r *MemoryRepository) Get(ctx context.Context, id types.ID) (*Patient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.patients[id]
	if !ok {
		return nil, errors.NotFound("patient", id.String())
	}

	cp := *p
	return &cp, nil
}

// GetByCPF retrieves a patient by CPF within a clinic
func (r *MemoryRepository) GetByCPF(ctx context.Context, clinicID types.ID, cpf string) (*Patient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.patients {
		if p.ClinicID == clinicID && p.CPF == cpf {
			cp := *p
			return &cp, nil
		}
	}

	return nil, errors.NotFound("patient", cpf)
}

// Update updates a patient
func (r *MemoryRepository) Update(ctx context.Context, p *Patient) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.patients[p.ID]; !ok {
		return errors.NotFound("patient", p.ID.String())
	}

	cp := *p
	r.patients[p.ID] = &cp
	return nil
}

// Delete deletes a patient
func (r *MemoryRepository) Delete(ctx context.Context, id types.ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.patients[id]; !ok {
		return errors.NotFound("patient", id.String())
	}

	delete(r.patients, id)
	return nil
}

// List lists patients with optional filters
func (r *MemoryRepository) List(ctx context.Context, filter ListFilter) ([]Patient, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []Patient
	for _, p := range r.patients {
		if !filter.ClinicID.IsZero() && p.ClinicID != filter.ClinicID {
			continue
		}
		if filter.Status != nil && p.Status != *filter.Status {
			continue
		}
		if filter.Risk != nil && p.RiskProfile != *filter.Risk {
			continue
		}
		if filter.Search != "" && !matchesSearch(p, filter.Search) {
			continue
		}
		result = append(result, *p)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	total := len(result)

	if filter.Offset > 0 {
		if filter.Offset >= len(result) {
			result = nil
		} else {
			result = result[filter.Offset:]
		}
	}

	limit := 50
	if filter.Limit > 0 && filter.Limit <= 100 {
		limit = filter.Limit
	}
	if len(result) > limit {
		result = result[:limit]
	}

	return result, total, nil
}

// ListActive returns active patients across all clinics
func (r *MemoryRepository) ListActive(ctx context.Context) ([]Patient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []Patient
	for _, p := range r.patients {
		if p.Active() {
			result = append(result, *p)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].NextCheckupDate.Before(result[j].NextCheckupDate)
	})

	return result, nil
}

func matchesSearch(p *Patient, search string) bool {
	s := strings.ToLower(search)
	return strings.Contains(strings.ToLower(p.Name), s) ||
		strings.Contains(strings.ToLower(p.CPF), s) ||
		strings.Contains(strings.ToLower(p.Email), s)
}
