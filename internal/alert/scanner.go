package alert

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/samueltrindadern/crmclinica/internal/patient"
	"github.com/samueltrindadern/crmclinica/internal/shared/events"
	"github.com/samueltrindadern/crmclinica/internal/shared/metrics"
	"github.com/samueltrindadern/crmclinica/internal/shared/types"
)

// DateLayout is the Brazilian day-first format used in alert messages
const DateLayout = "02/01/2006"

// PatientSource is the view of the patient store the scanner needs
type PatientSource interface {
	ListActive(ctx context.Context) ([]patient.Patient, error)
}

// ScannerConfig controls the scan loop
type ScannerConfig struct {
	// Interval between scans
	Interval time.Duration
	// ReminderWindow is how far ahead of the check-up date reminders
	// are raised
	ReminderWindow time.Duration
}

// DefaultScannerConfig returns the production scan settings
func DefaultScannerConfig() ScannerConfig {
	return ScannerConfig{
		Interval:       time.Hour,
		ReminderWindow: 7 * 24 * time.Hour,
	}
}

// Scanner periodically walks the active patients and raises pending
// alerts for check-ups that are due soon or overdue
type Scanner struct {
	patients PatientSource
	alerts   Repository
	bus      *events.Bus
	config   ScannerConfig
	stopCh   chan struct{}

	// now is a test hook
	now func() time.Time
}

// NewScanner creates the check-up scanner
func NewScanner(patients PatientSource, alerts Repository, bus *events.Bus, config ScannerConfig) *Scanner {
	if config.Interval <= 0 {
		config.Interval = time.Hour
	}
	if config.ReminderWindow <= 0 {
		config.ReminderWindow = 7 * 24 * time.Hour
	}

	return &Scanner{
		patients: patients,
		alerts:   alerts,
		bus:      bus,
		config:   config,
		stopCh:   make(chan struct{}),
		now:      time.Now,
	}
}

// SetNow overrides the scanner clock. Tests use this to pin scan time.
func (s *Scanner) SetNow(now func() time.Time) {
	s.now = now
}

// Start runs the scan loop until Stop is called or the context is
// cancelled. The first scan runs immediately.
func (s *Scanner) Start(ctx context.Context) {
	log.Info().
		Dur("interval", s.config.Interval).
		Dur("reminder_window", s.config.ReminderWindow).
		Msg("Check-up scanner started")

	if err := s.RunOnce(ctx); err != nil {
		log.Error().Err(err).Msg("Check-up scan failed")
	}

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := s.RunOnce(ctx); err != nil {
				log.Error().Err(err).Msg("Check-up scan failed")
			}
		case <-s.stopCh:
			log.Info().Msg("Check-up scanner stopped")
			return
		case <-ctx.Done():
			return
		}
	}
}

// Stop halts the scan loop
func (s *Scanner) Stop() {
	close(s.stopCh)
}

// RunOnce scans all active patients and raises alerts where due. A
// failure on one patient is logged and does not stop the scan.
func (s *Scanner) RunOnce(ctx context.Context) error {
	start := s.now()

	patients, err := s.patients.ListActive(ctx)
	if err != nil {
		return fmt.Errorf("failed to list active patients: %w", err)
	}

	created := 0
	for i := range patients {
		ok, err := s.evaluate(ctx, &patients[i])
		if err != nil {
			log.Error().Err(err).
				Str("patient_id", patients[i].ID.String()).
				Msg("Failed to evaluate patient for check-up alert")
			continue
		}
		if ok {
			created++
		}
	}

	metrics.RecordScan(time.Since(start))

	log.Info().
		Int("patients", len(patients)).
		Int("alerts_created", created).
		Msg("Check-up scan completed")

	return nil
}

// evaluate raises at most one alert for the patient. Reports whether
// an alert was created.
func (s *Scanner) evaluate(ctx context.Context, p *patient.Patient) (bool, error) {
	pending, err := s.alerts.HasPending(ctx, p.ID)
	if err != nil {
		return false, err
	}
	if pending {
		return false, nil
	}

	now := s.now()
	due := p.NextCheckupDate
	windowStart := due.Add(-s.config.ReminderWindow)

	var alertType Type
	var message string

	switch {
	case !now.Before(due):
		alertType = TypeOverdue
		message = fmt.Sprintf("Check-up %s em atraso desde %s",
			strings.ToLower(p.ExamType), due.Format(DateLayout))
	case !now.Before(windowStart):
		alertType = TypeReminder
		message = fmt.Sprintf("Check-up %s agendado para %s",
			strings.ToLower(p.ExamType), due.Format(DateLayout))
	default:
		return false, nil
	}

	a := &Alert{
		ID:           types.NewID(),
		PatientID:    p.ID,
		PatientName:  p.Name,
		Type:         alertType,
		Message:      message,
		ScheduledFor: now,
		Status:       StatusPending,
	}

	created, err := s.alerts.CreatePending(ctx, a)
	if err != nil {
		return false, err
	}
	if !created {
		// Another scan got there first
		return false, nil
	}

	metrics.RecordAlertCreated(string(alertType))
	s.publish(ctx, "alert.created", a)

	log.Info().
		Str("patient_id", p.ID.String()).
		Str("type", string(alertType)).
		Time("due", due).
		Msg("Check-up alert created")

	return true, nil
}

func (s *Scanner) publish(ctx context.Context, eventType string, a *Alert) {
	if s.bus == nil {
		return
	}

	event := events.NewEvent(eventType, "scanner", map[string]any{
		"alert_id":      a.ID,
		"patient_id":    a.PatientID,
		"type":          a.Type,
		"scheduled_for": a.ScheduledFor.Format(time.RFC3339),
	})

	if err := s.bus.Publish(ctx, event); err != nil {
		log.Warn().Err(err).Str("event", eventType).Msg("Failed to publish event")
	}
}
