package settings

import (
	"time"

	"github.com/samueltrindadern/crmclinica/internal/shared/types"
)

// ClinicSettings is the singleton-per-clinic record holding contact info and
// the notification message templates.
type ClinicSettings struct {
	ClinicID types.ID `json:"clinic_id"`

	Name  string `json:"name"`
	CNPJ  string `json:"cnpj"`
	Email string `json:"email"`
	Phone string `json:"phone"`

	WhatsAppNumber string `json:"whatsapp_number"`

	Address string `json:"address"`
	City    string `json:"city"`
	State   string `json:"state"`
	ZipCode string `json:"zip_code"`

	EmailSignature string `json:"email_signature"`

	// Templates carry the {nome} and {exame} placeholder tokens
	WhatsAppTemplate string `json:"whatsapp_template"`
	EmailTemplate    string `json:"email_template"`

	UpdatedAt time.Time `json:"updated_at"`
}

// UpdateSettingsRequest is the request to update clinic settings
type UpdateSettingsRequest struct {
	Name             *string `json:"name,omitempty"`
	CNPJ             *string `json:"cnpj,omitempty"`
	Email            *string `json:"email,omitempty"`
	Phone            *string `json:"phone,omitempty"`
	WhatsAppNumber   *string `json:"whatsapp_number,omitempty"`
	Address          *string `json:"address,omitempty"`
	City             *string `json:"city,omitempty"`
	State            *string `json:"state,omitempty"`
	ZipCode          *string `json:"zip_code,omitempty"`
	EmailSignature   *string `json:"email_signature,omitempty"`
	WhatsAppTemplate *string `json:"whatsapp_template,omitempty"`
	EmailTemplate    *string `json:"email_template,omitempty"`
}
