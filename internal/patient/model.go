package patient

import (
	"time"

	"github.com/samueltrindadern/crmclinica/internal/shared/types"
)

// DateLayout is the wire format for calendar dates (exam and check-up dates)
const DateLayout = "2006-01-02"

// RiskProfile defines the clinical urgency tier of a patient. The tier
// controls the recommended interval until the next check-up.
type RiskProfile string

const (
	RiskLow      RiskProfile = "baixo"
	RiskModerate RiskProfile = "moderado"
	RiskHigh     RiskProfile = "alto"
)

// Status defines whether a patient is still followed by the clinic
type Status string

const (
	StatusActive   Status = "ativo"
	StatusInactive Status = "inativo"
)

// Patient represents a patient record owned by a clinic
type Patient struct {
	ID       types.ID `json:"id"`
	ClinicID types.ID `json:"clinic_id"`

	Name  string `json:"name"`
	CPF   string `json:"cpf"`
	Phone string `json:"phone"`
	Email string `json:"email"`

	ExamType     string      `json:"exam_type"`
	LastExamDate time.Time   `json:"last_exam_date"`
	RiskProfile  RiskProfile `json:"risk_profile"`

	// NextCheckupDate is derived from LastExamDate and RiskProfile at the
	// time either of them was last (re)computed; it is not kept in sync
	// automatically.
	NextCheckupDate time.Time `json:"next_checkup_date"`

	Status Status `json:"status"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Active reports whether the patient is scanned for check-up reminders
func (p *Patient) Active() bool {
	return p.Status == StatusActive
}

// CreatePatientRequest is the request to create a patient
type CreatePatientRequest struct {
	Name         string      `json:"name"`
	CPF          string      `json:"cpf"`
	Phone        string      `json:"phone"`
	Email        string      `json:"email"`
	ExamType     string      `json:"exam_type"`
	LastExamDate string      `json:"last_exam_date"` // 2006-01-02
	RiskProfile  RiskProfile `json:"risk_profile"`
}

// UpdatePatientRequest is the request to update a patient. Changing
// LastExamDate or RiskProfile triggers recomputation of NextCheckupDate.
type UpdatePatientRequest struct {
	Name         *string      `json:"name,omitempty"`
	CPF          *string      `json:"cpf,omitempty"`
	Phone        *string      `json:"phone,omitempty"`
	Email        *string      `json:"email,omitempty"`
	ExamType     *string      `json:"exam_type,omitempty"`
	LastExamDate *string      `json:"last_exam_date,omitempty"`
	RiskProfile  *RiskProfile `json:"risk_profile,omitempty"`
	Status       *Status      `json:"status,omitempty"`
}

// ListFilter defines filters for listing patients
type ListFilter struct {
	ClinicID types.ID     `json:"clinic_id,omitempty"`
	Status   *Status      `json:"status,omitempty"`
	Risk     *RiskProfile `json:"risk,omitempty"`
	Search   string       `json:"search,omitempty"`
	Limit    int          `json:"limit,omitempty"`
	Offset   int          `json:"offset,omitempty"`
}
