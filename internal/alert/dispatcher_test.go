package alert

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/samueltrindadern/crmclinica/internal/message"
	"github.com/samueltrindadern/crmclinica/internal/notification"
	"github.com/samueltrindadern/crmclinica/internal/patient"
	"github.com/samueltrindadern/crmclinica/internal/settings"
	"github.com/samueltrindadern/crmclinica/internal/shared/types"
)

type dispatcherFixture struct {
	dispatcher *Dispatcher
	alerts     *MemoryRepository
	messages   *message.MemoryRepository
	whatsapp   *notification.MockChannel
	email      *notification.MockChannel
	patient    *patient.Patient
	alert      *Alert
}

func newDispatcherFixture(t *testing.T) *dispatcherFixture {
	t.Helper()
	ctx := context.Background()

	clinicID := types.NewDeterministicID("clinic", "test")

	patients := patient.NewMemoryRepository()
	p := &patient.Patient{
		ID:              types.NewID(),
		ClinicID:        clinicID,
		Name:            "Maria Silva",
		CPF:             "123.456.789-00",
		Phone:           "(11) 99876-5432",
		Email:           "maria.silva@email.com",
		ExamType:        "Ginecologia",
		LastExamDate:    time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		RiskProfile:     patient.RiskHigh,
		NextCheckupDate: time.Date(2024, 4, 15, 0, 0, 0, 0, time.UTC),
		Status:          patient.StatusActive,
	}
	if err := patients.Create(ctx, p); err != nil {
		t.Fatalf("failed to create patient: %v", err)
	}

	settingsRepo := settings.NewMemoryRepository()
	if err := settingsRepo.Upsert(ctx, &settings.ClinicSettings{
		ClinicID:         clinicID,
		Name:             "Clínica Saúde Total",
		WhatsAppTemplate: "Olá {nome}, é hora do seu check-up de {exame}!",
		EmailTemplate:    "Prezado(a) {nome}, agende seu exame de {exame}.",
	}); err != nil {
		t.Fatalf("failed to create settings: %v", err)
	}

	alerts := NewMemoryRepository()
	a := &Alert{
		ID:           types.NewID(),
		PatientID:    p.ID,
		PatientName:  p.Name,
		Type:         TypeReminder,
		Message:      "Check-up ginecologia agendado para 15/04/2024",
		ScheduledFor: p.NextCheckupDate,
		Status:       StatusPending,
	}
	if err := alerts.Create(ctx, a); err != nil {
		t.Fatalf("failed to create alert: %v", err)
	}

	messages := message.NewMemoryRepository()
	whatsapp := notification.NewMockChannel("whatsapp")
	email := notification.NewMockChannel("email")

	return &dispatcherFixture{
		dispatcher: NewDispatcher(alerts, patients, settingsRepo, messages, whatsapp, email, nil),
		alerts:     alerts,
		messages:   messages,
		whatsapp:   whatsapp,
		email:      email,
		patient:    p,
		alert:      a,
	}
}

func TestDispatcherSendsBothChannels(t *testing.T) {
	ctx := context.Background()
	f := newDispatcherFixture(t)

	ok, err := f.dispatcher.Send(ctx, f.alert.ID)
	if err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if !ok {
		t.Fatal("Expected dispatch to succeed")
	}

	a, err := f.alerts.Get(ctx, f.alert.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if a.Status != StatusSent {
		t.Errorf("Expected status 'sent', got '%s'", a.Status)
	}

	msgs, total, err := f.messages.List(ctx, message.ListFilter{})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if total != 2 {
		t.Fatalf("Expected 2 messages, got %d", total)
	}

	byType := map[message.Type]message.Message{}
	for _, m := range msgs {
		byType[m.Type] = m
	}

	wa, ok := byType[message.TypeWhatsApp]
	if !ok {
		t.Fatal("Expected a whatsapp message")
	}
	if wa.Content != "Olá Maria Silva, é hora do seu check-up de Ginecologia!" {
		t.Errorf("Unexpected whatsapp content: '%s'", wa.Content)
	}
	if wa.Status != message.StatusSent {
		t.Errorf("Expected status 'enviado', got '%s'", wa.Status)
	}

	em, ok := byType[message.TypeEmail]
	if !ok {
		t.Fatal("Expected an email message")
	}
	if strings.Contains(em.Content, "{nome}") || strings.Contains(em.Content, "{exame}") {
		t.Errorf("Expected tokens substituted, got '%s'", em.Content)
	}

	if len(f.whatsapp.Sent()) != 1 || len(f.email.Sent()) != 1 {
		t.Error("Expected one delivery per channel")
	}
}

func TestDispatcherEmailFailureMarksAlertFailed(t *testing.T) {
	ctx := context.Background()
	f := newDispatcherFixture(t)
	f.email.SetFailOnSend(true)

	ok, err := f.dispatcher.Send(ctx, f.alert.ID)
	if err != nil {
		t.Fatalf("Send returned unexpected error: %v", err)
	}
	if ok {
		t.Fatal("Expected dispatch to fail")
	}

	a, err := f.alerts.Get(ctx, f.alert.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if a.Status != StatusFailed {
		t.Errorf("Expected status 'failed', got '%s'", a.Status)
	}

	// The WhatsApp message that went out before the failure is kept
	msgs, total, err := f.messages.List(ctx, message.ListFilter{})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if total != 1 {
		t.Fatalf("Expected 1 message, got %d", total)
	}
	if msgs[0].Type != message.TypeWhatsApp {
		t.Errorf("Expected the surviving message to be whatsapp, got '%s'", msgs[0].Type)
	}
}

func TestDispatcherWhatsAppFailureSendsNothing(t *testing.T) {
	ctx := context.Background()
	f := newDispatcherFixture(t)
	f.whatsapp.SetFailOnSend(true)

	ok, err := f.dispatcher.Send(ctx, f.alert.ID)
	if err != nil {
		t.Fatalf("Send returned unexpected error: %v", err)
	}
	if ok {
		t.Fatal("Expected dispatch to fail")
	}

	_, total, err := f.messages.List(ctx, message.ListFilter{})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if total != 0 {
		t.Errorf("Expected no messages, got %d", total)
	}
}

func TestDispatcherUnknownAlert(t *testing.T) {
	ctx := context.Background()
	f := newDispatcherFixture(t)

	if _, err := f.dispatcher.Send(ctx, types.NewID()); err == nil {
		t.Error("Expected error for unknown alert")
	}
}

func TestDispatcherMissingSettings(t *testing.T) {
	ctx := context.Background()

	f := newDispatcherFixture(t)
	// Rebuild the dispatcher with an empty settings store
	f.dispatcher = NewDispatcher(
		f.alerts,
		&testPatientGetter{p: f.patient},
		settings.NewMemoryRepository(),
		f.messages,
		f.whatsapp,
		f.email,
		nil,
	)

	if _, err := f.dispatcher.Send(ctx, f.alert.ID); err == nil {
		t.Error("Expected error when clinic settings are missing")
	}

	a, err := f.alerts.Get(ctx, f.alert.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if a.Status != StatusPending {
		t.Errorf("Expected alert to stay pending, got '%s'", a.Status)
	}
}

type testPatientGetter struct {
	p *patient.Patient
}

func (g *testPatientGetter) Get(ctx context.Context, id types.ID) (*patient.Patient, error) {
	cp := *g.p
	return &cp, nil
}
