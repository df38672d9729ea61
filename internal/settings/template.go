package settings

import "strings"

// Template placeholder tokens. The contract is exactly these two tokens,
// replaced everywhere they occur; no escaping semantics are defined, so a
// general template engine would be over-spec here.
const (
	TokenName = "{nome}"
	TokenExam = "{exame}"
)

// RenderTemplate substitutes every occurrence of the {nome} and {exame}
// tokens in a message template.
func RenderTemplate(template, patientName, examType string) string {
	out := strings.ReplaceAll(template, TokenName, patientName)
	return strings.ReplaceAll(out, TokenExam, examType)
}

// RenderWhatsApp renders the clinic's WhatsApp template for a patient
func (s *ClinicSettings) RenderWhatsApp(patientName, examType string) string {
	return RenderTemplate(s.WhatsAppTemplate, patientName, examType)
}

// RenderEmail renders the clinic's e-mail template for a patient
func (s *ClinicSettings) RenderEmail(patientName, examType string) string {
	return RenderTemplate(s.EmailTemplate, patientName, examType)
}
