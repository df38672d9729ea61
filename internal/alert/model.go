// Package alert holds the check-up reminder pipeline: the scheduled
// scanner that raises alerts for patients approaching or past their
// next check-up date, and the dispatcher that delivers them.
package alert

import (
	"time"

	"github.com/samueltrindadern/crmclinica/internal/shared/types"
)

// Type classifies why an alert was raised
type Type string

const (
	// TypeReminder is raised when the next check-up date falls inside
	// the reminder window
	TypeReminder Type = "checkup_reminder"
	// TypeOverdue is raised when the next check-up date has passed
	TypeOverdue Type = "overdue"
	// TypeUrgent is reserved for alerts created manually by clinic
	// staff
	TypeUrgent Type = "urgent"
)

// Status represents the lifecycle state of an alert
type Status string

const (
	StatusPending Status = "pending"
	StatusSent    Status = "sent"
	StatusFailed  Status = "failed"
)

// Alert is a reminder raised for a patient's check-up
type Alert struct {
	ID          types.ID `json:"id"`
	PatientID   types.ID `json:"patient_id"`
	PatientName string   `json:"patient_name"`
	Type        Type     `json:"type"`
	Message     string   `json:"message"`
	// ScheduledFor is when the alert was scheduled: the scan time for
	// scanner-raised alerts, creation time for manual ones
	ScheduledFor time.Time `json:"scheduled_for"`
	Status       Status    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
}

// CreateAlertRequest is the payload for manually raising an alert
type CreateAlertRequest struct {
	PatientID string `json:"patient_id"`
	Type      Type   `json:"type"`
	Message   string `json:"message"`
}

// ListFilter narrows alert listings
type ListFilter struct {
	PatientID types.ID
	Type      Type
	Status    Status
	Limit     int
	Offset    int
}
