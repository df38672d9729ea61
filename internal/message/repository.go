package message

import (
	"context"

	"github.com/samueltrindadern/crmclinica/internal/shared/types"
)

// Repository defines the message storage interface
type Repository interface {
	Create(ctx context.Context, m *Message) error
	Get(ctx context.Context, id types.ID) (*Message, error)
	List(ctx context.Context, filter ListFilter) ([]Message, int, error)
}
