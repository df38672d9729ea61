package message

import (
	"time"

	"github.com/samueltrindadern/crmclinica/internal/shared/types"
)

// Type identifies the channel a message went out on
type Type string

const (
	TypeEmail    Type = "email"
	TypeWhatsApp Type = "whatsapp"
)

// Status represents the delivery state of a message
type Status string

const (
	StatusSent      Status = "enviado"
	StatusDelivered Status = "entregue"
	StatusRead      Status = "lido"
	StatusError     Status = "erro"
)

// Message is a record of an outbound patient notification
type Message struct {
	ID           types.ID   `json:"id"`
	PatientID    types.ID   `json:"patient_id"`
	PatientName  string     `json:"patient_name"`
	Type         Type       `json:"type"`
	Content      string     `json:"content"`
	Status       Status     `json:"status"`
	SentAt       time.Time  `json:"sent_at"`
	ScheduledFor *time.Time `json:"scheduled_for,omitempty"`
}

// ListFilter narrows message listings
type ListFilter struct {
	PatientID types.ID
	Type      Type
	Status    Status
	Limit     int
	Offset    int
}
