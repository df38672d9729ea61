package notification

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/samueltrindadern/crmclinica/internal/patient"
)

// WhatsAppChannel delivers messages over WhatsApp. The Business API
// integration is not wired yet, so delivery is simulated and logged.
// TODO: integrate the WhatsApp Business API once the clinic account
// is approved.
type WhatsAppChannel struct{}

// NewWhatsAppChannel creates the WhatsApp delivery channel
func NewWhatsAppChannel() *WhatsAppChannel {
	return &WhatsAppChannel{}
}

func (c *WhatsAppChannel) Name() string {
	return "whatsapp"
}

// Send delivers the content to the patient's WhatsApp number
func (c *WhatsAppChannel) Send(ctx context.Context, p *patient.Patient, content string) error {
	if p.Phone == "" {
		return fmt.Errorf("patient %s has no phone number", p.ID)
	}

	log.Info().
		Str("channel", "whatsapp").
		Str("patient_id", p.ID.String()).
		Str("phone", p.Phone).
		Int("content_length", len(content)).
		Msg("WhatsApp message dispatched")

	return nil
}
