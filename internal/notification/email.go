package notification

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/samueltrindadern/crmclinica/internal/patient"
	"github.com/samueltrindadern/crmclinica/internal/shared/config"
)

// SMTPChannel delivers messages by e-mail through the clinic's SMTP
// account
type SMTPChannel struct {
	dialer    *gomail.Dialer
	fromName  string
	fromEmail string
}

// NewSMTPChannel creates the e-mail delivery channel. It fails when
// SMTP credentials are missing so the caller can fall back to the
// logging stub.
func NewSMTPChannel(cfg config.SMTPConfig) (*SMTPChannel, error) {
	if !cfg.Configured() {
		return nil, fmt.Errorf("smtp credentials not configured")
	}

	return &SMTPChannel{
		dialer:    gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		fromName:  cfg.FromName,
		fromEmail: cfg.FromEmail,
	}, nil
}

func (c *SMTPChannel) Name() string {
	return "email"
}

// Send delivers the content to the patient's e-mail address
func (c *SMTPChannel) Send(ctx context.Context, p *patient.Patient, content string) error {
	if p.Email == "" {
		return fmt.Errorf("patient %s has no e-mail address", p.ID)
	}

	m := gomail.NewMessage()
	m.SetAddressHeader("From", c.fromEmail, c.fromName)
	m.SetHeader("To", p.Email)
	m.SetHeader("Subject", "Lembrete de check-up")
	m.SetBody("text/plain", content)

	if err := c.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send e-mail to %s: %w", p.Email, err)
	}

	return nil
}
