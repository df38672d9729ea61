// Package notification delivers rendered reminder content to patients
// over the clinic's outbound channels.
package notification

import (
	"context"

	"github.com/samueltrindadern/crmclinica/internal/patient"
)

// Channel is an outbound delivery mechanism for patient notifications
type Channel interface {
	Name() string
	Send(ctx context.Context, p *patient.Patient, content string) error
}
