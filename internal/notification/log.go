package notification

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/samueltrindadern/crmclinica/internal/patient"
)

// LogChannel writes notifications to the application log instead of
// delivering them. Used for the e-mail slot when SMTP is not
// configured, and in development.
type LogChannel struct {
	name string
}

// NewLogChannel creates a logging stub for the named channel
func NewLogChannel(name string) *LogChannel {
	return &LogChannel{name: name}
}

func (c *LogChannel) Name() string {
	return c.name
}

func (c *LogChannel) Send(ctx context.Context, p *patient.Patient, content string) error {
	log.Info().
		Str("channel", c.name).
		Str("patient_id", p.ID.String()).
		Str("patient_name", p.Name).
		Str("content", content).
		Msg("notification logged (delivery disabled)")

	return nil
}
