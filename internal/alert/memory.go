package alert

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/samueltrindadern/crmclinica/internal/shared/errors"
	"github.com/samueltrindadern/crmclinica/internal/shared/types"
)

// MemoryRepository is an in-memory alert repository used when no
// database is configured
type MemoryRepository struct {
	mu     sync.RWMutex
	alerts map[types.ID]*Alert
}

// NewMemoryRepository creates an in-memory alert repository
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{alerts: make(map[types.ID]*Alert)}
}

// Create stores a new alert
func (r *MemoryRepository) Create(ctx context.Context, a *Alert) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}

	stored := *a
	r.alerts[a.ID] = &stored
	return nil
}

// CreatePending stores a pending alert unless the patient already has
// one. The check runs under the write lock so concurrent scanner runs
// cannot both insert.
func (r *MemoryRepository) CreatePending(ctx context.Context, a *Alert) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.alerts {
		if existing.PatientID == a.PatientID && existing.Status == StatusPending {
			return false, nil
		}
	}

	a.Status = StatusPending
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}

	stored := *a
	r.alerts[a.ID] = &stored
	return true, nil
}

// Get retrieves an alert by ID
func (r *MemoryRepository) Get(ctx context.Context, id types.ID) (*Alert, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.alerts[id]
	if !ok {
		return nil, errors.NotFound("alert", id.String())
	}

	result := *a
	return &result, nil
}

// List retrieves alerts matching the filter, newest first
func (r *MemoryRepository) List(ctx context.Context, filter ListFilter) ([]Alert, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := []Alert{}
	for _, a := range r.alerts {
		if !filter.PatientID.IsZero() && a.PatientID != filter.PatientID {
			continue
		}
		if filter.Type != "" && a.Type != filter.Type {
			continue
		}
		if filter.Status != "" && a.Status != filter.Status {
			continue
		}
		matched = append(matched, *a)
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := len(matched)

	offset := filter.Offset
	if offset > len(matched) {
		offset = len(matched)
	}
	matched = matched[offset:]

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	if limit > 100 {
		limit = 100
	}
	if len(matched) > limit {
		matched = matched[:limit]
	}

	return matched, total, nil
}

// UpdateStatus transitions an alert to a new status
func (r *MemoryRepository) UpdateStatus(ctx context.Context, id types.ID, status Status) (*Alert, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.alerts[id]
	if !ok {
		return nil, errors.NotFound("alert", id.String())
	}

	a.Status = status

	result := *a
	return &result, nil
}

// HasPending reports whether the patient has a pending alert
func (r *MemoryRepository) HasPending(ctx context.Context, patientID types.ID) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, a := range r.alerts {
		if a.PatientID == patientID && a.Status == StatusPending {
			return true, nil
		}
	}

	return false, nil
}
