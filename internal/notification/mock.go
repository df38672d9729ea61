package notification

import (
	"context"
	"fmt"
	"sync"

	"github.com/samueltrindadern/crmclinica/internal/patient"
)

// MockChannel records sent notifications for tests
type MockChannel struct {
	mu         sync.Mutex
	name       string
	sent       []SentNotification
	failOnSend bool
}

// SentNotification is a notification captured by the mock
type SentNotification struct {
	PatientID string
	Content   string
}

// NewMockChannel creates a mock delivery channel
func NewMockChannel(name string) *MockChannel {
	return &MockChannel{name: name}
}

func (c *MockChannel) Name() string {
	return c.name
}

func (c *MockChannel) Send(ctx context.Context, p *patient.Patient, content string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.failOnSend {
		return fmt.Errorf("mock channel %s configured to fail", c.name)
	}

	c.sent = append(c.sent, SentNotification{
		PatientID: p.ID.String(),
		Content:   content,
	})

	return nil
}

// SetFailOnSend toggles failure mode
func (c *MockChannel) SetFailOnSend(fail bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failOnSend = fail
}

// Sent returns a copy of the captured notifications
func (c *MockChannel) Sent() []SentNotification {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]SentNotification, len(c.sent))
	copy(out, c.sent)
	return out
}
