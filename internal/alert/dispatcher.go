package alert

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/samueltrindadern/crmclinica/internal/message"
	"github.com/samueltrindadern/crmclinica/internal/notification"
	"github.com/samueltrindadern/crmclinica/internal/patient"
	"github.com/samueltrindadern/crmclinica/internal/settings"
	"github.com/samueltrindadern/crmclinica/internal/shared/events"
	"github.com/samueltrindadern/crmclinica/internal/shared/metrics"
	"github.com/samueltrindadern/crmclinica/internal/shared/types"
)

// PatientGetter is the view of the patient store the dispatcher needs
type PatientGetter interface {
	Get(ctx context.Context, id types.ID) (*patient.Patient, error)
}

// Dispatcher delivers a pending alert over the clinic's channels and
// records the resulting messages
type Dispatcher struct {
	alerts   Repository
	patients PatientGetter
	settings settings.Repository
	messages message.Repository
	whatsapp notification.Channel
	email    notification.Channel
	bus      *events.Bus

	// now is a test hook
	now func() time.Time
}

// NewDispatcher creates the alert dispatcher
func NewDispatcher(
	alerts Repository,
	patients PatientGetter,
	settingsRepo settings.Repository,
	messages message.Repository,
	whatsapp notification.Channel,
	email notification.Channel,
	bus *events.Bus,
) *Dispatcher {
	return &Dispatcher{
		alerts:   alerts,
		patients: patients,
		settings: settingsRepo,
		messages: messages,
		whatsapp: whatsapp,
		email:    email,
		bus:      bus,
		now:      time.Now,
	}
}

// Send delivers the alert over WhatsApp and e-mail, records a message
// per channel and transitions the alert to sent. Any failure marks the
// alert failed; messages recorded before the failure are kept. Reports
// whether delivery succeeded.
func (d *Dispatcher) Send(ctx context.Context, alertID types.ID) (bool, error) {
	a, err := d.alerts.Get(ctx, alertID)
	if err != nil {
		return false, err
	}

	p, err := d.patients.Get(ctx, a.PatientID)
	if err != nil {
		return false, err
	}

	cfg, err := d.settings.Get(ctx, p.ClinicID)
	if err != nil {
		return false, err
	}

	if err := d.deliver(ctx, p, d.whatsapp, message.TypeWhatsApp, cfg.RenderWhatsApp(p.Name, p.ExamType)); err != nil {
		return d.fail(ctx, a, err)
	}

	if err := d.deliver(ctx, p, d.email, message.TypeEmail, cfg.RenderEmail(p.Name, p.ExamType)); err != nil {
		return d.fail(ctx, a, err)
	}

	if _, err := d.alerts.UpdateStatus(ctx, a.ID, StatusSent); err != nil {
		return false, err
	}

	metrics.RecordDispatch("sent")
	d.publish(ctx, "alert.sent", a)

	log.Info().
		Str("alert_id", a.ID.String()).
		Str("patient_id", p.ID.String()).
		Msg("Alert dispatched")

	return true, nil
}

// deliver sends over one channel and records the message
func (d *Dispatcher) deliver(ctx context.Context, p *patient.Patient, ch notification.Channel, msgType message.Type, content string) error {
	if err := ch.Send(ctx, p, content); err != nil {
		return err
	}

	m := &message.Message{
		ID:          types.NewID(),
		PatientID:   p.ID,
		PatientName: p.Name,
		Type:        msgType,
		Content:     content,
		Status:      message.StatusSent,
		SentAt:      d.now(),
	}

	if err := d.messages.Create(ctx, m); err != nil {
		return err
	}

	metrics.RecordMessageSent(string(msgType))
	return nil
}

func (d *Dispatcher) fail(ctx context.Context, a *Alert, cause error) (bool, error) {
	log.Error().Err(cause).
		Str("alert_id", a.ID.String()).
		Msg("Alert dispatch failed")

	if _, err := d.alerts.UpdateStatus(ctx, a.ID, StatusFailed); err != nil {
		log.Error().Err(err).
			Str("alert_id", a.ID.String()).
			Msg("Failed to mark alert as failed")
	}

	metrics.RecordDispatch("failed")
	d.publish(ctx, "alert.failed", a)
	return false, nil
}

func (d *Dispatcher) publish(ctx context.Context, eventType string, a *Alert) {
	if d.bus == nil {
		return
	}

	event := events.NewEvent(eventType, "dispatcher", map[string]any{
		"alert_id":   a.ID,
		"patient_id": a.PatientID,
		"type":       a.Type,
	})

	if err := d.bus.Publish(ctx, event); err != nil {
		log.Warn().Err(err).Str("event", eventType).Msg("Failed to publish event")
	}
}
