package message

import (
	"context"
	"sort"
	"sync"

	"github.com/samueltrindadern/crmclinica/internal/shared/errors"
	"github.com/samueltrindadern/crmclinica/internal/shared/types"
)

// MemoryRepository is an in-memory message repository used when no
// database is configured
type MemoryRepository struct {
	mu       sync.RWMutex
	messages map[types.ID]*Message
}

// NewMemoryRepository creates an in-memory message repository
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{messages: make(map[types.ID]*Message)}
}

// Create stores a new message record
func (r *MemoryRepository) Create(ctx context.Context, m *Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := *m
	r.messages[m.ID] = &stored
	return nil
}

// Get retrieves a message by ID
func (r *MemoryRepository) Get(ctx context.Context, id types.ID) (*Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.messages[id]
	if !ok {
		return nil, errors.NotFound("message", id.String())
	}

	result := *m
	return &result, nil
}

// List retrieves messages matching the filter, newest first
func (r *MemoryRepository) List(ctx context.Context, filter ListFilter) ([]Message, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := []Message{}
	for _, m := range r.messages {
		if !filter.PatientID.IsZero() && m.PatientID != filter.PatientID {
			continue
		}
		if filter.Type != "" && m.Type != filter.Type {
			continue
		}
		if filter.Status != "" && m.Status != filter.Status {
			continue
		}
		matched = append(matched, *m)
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].SentAt.After(matched[j].SentAt)
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
