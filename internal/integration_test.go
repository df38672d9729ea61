package internal

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/samueltrindadern/crmclinica/internal/alert"
	"github.com/samueltrindadern/crmclinica/internal/message"
	"github.com/samueltrindadern/crmclinica/internal/notification"
	"github.com/samueltrindadern/crmclinica/internal/patient"
	"github.com/samueltrindadern/crmclinica/internal/settings"
	"github.com/samueltrindadern/crmclinica/internal/shared/types"
)

// TestReminderLifecycle walks the full reminder flow: a patient is
// registered, the scanner raises a reminder inside the window, the
// dispatcher delivers it over both channels, and a fresh exam restarts
// the cycle.
func TestReminderLifecycle(t *testing.T) {
	ctx := context.Background()
	clinicID := types.NewDeterministicID("clinic", "test")

	patients := patient.NewMemoryRepository()
	alerts := alert.NewMemoryRepository()
	messages := message.NewMemoryRepository()
	settingsRepo := settings.NewMemoryRepository()

	if err := settingsRepo.Upsert(ctx, &settings.ClinicSettings{
		ClinicID:         clinicID,
		Name:             "Clínica Saúde Total",
		WhatsAppTemplate: "Olá {nome}, é hora do seu check-up de {exame}!",
		EmailTemplate:    "Prezado(a) {nome}, agende seu exame de {exame}.",
	}); err != nil {
		t.Fatalf("Failed to create settings: %v", err)
	}

	// 1. Register a high-risk patient, check-up due 3 months after the exam
	lastExam := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	p := &patient.Patient{
		ID:              types.NewID(),
		ClinicID:        clinicID,
		Name:            "Maria Silva",
		CPF:             "123.456.789-00",
		Phone:           "(11) 99876-5432",
		Email:           "maria.silva@email.com",
		ExamType:        "Ginecologia",
		LastExamDate:    lastExam,
		RiskProfile:     patient.RiskHigh,
		NextCheckupDate: patient.NextCheckupDate(lastExam, patient.RiskHigh),
		Status:          patient.StatusActive,
	}
	if err := patients.Create(ctx, p); err != nil {
		t.Fatalf("Failed to create patient: %v", err)
	}

	due := time.Date(2024, 4, 15, 0, 0, 0, 0, time.UTC)
	if !p.NextCheckupDate.Equal(due) {
		t.Fatalf("Expected next check-up %s, got %s", due, p.NextCheckupDate)
	}

	// 2. Scan five days before the due date raises one reminder
	scanner := alert.NewScanner(patients, alerts, nil, alert.DefaultScannerConfig())
	scanner.SetNow(func() time.Time { return time.Date(2024, 4, 10, 9, 0, 0, 0, time.UTC) })

	if err := scanner.RunOnce(ctx); err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	raised, total, err := alerts.List(ctx, alert.ListFilter{})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if total != 1 {
		t.Fatalf("Expected 1 alert, got %d", total)
	}
	if raised[0].Type != alert.TypeReminder {
		t.Errorf("Expected reminder, got %s", raised[0].Type)
	}

	// 3. Dispatch the alert over both channels
	whatsapp := notification.NewMockChannel("whatsapp")
	email := notification.NewMockChannel("email")
	dispatcher := alert.NewDispatcher(alerts, patients, settingsRepo, messages, whatsapp, email, nil)

	ok, err := dispatcher.Send(ctx, raised[0].ID)
	if err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}
	if !ok {
		t.Fatal("Expected dispatch to succeed")
	}

	sent, err := alerts.Get(ctx, raised[0].ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if sent.Status != alert.StatusSent {
		t.Errorf("Expected alert sent, got %s", sent.Status)
	}

	msgs, msgTotal, err := messages.List(ctx, message.ListFilter{PatientID: p.ID})
	if err != nil {
		t.Fatalf("List messages failed: %v", err)
	}
	if msgTotal != 2 {
		t.Fatalf("Expected 2 messages, got %d", msgTotal)
	}
	for _, m := range msgs {
		if strings.Contains(m.Content, "{") {
			t.Errorf("Expected rendered content, got '%s'", m.Content)
		}
	}

	// 4. A fresh exam moves the next check-up forward and the next scan
	//    inside the old window stays quiet
	newExam := time.Date(2024, 4, 12, 0, 0, 0, 0, time.UTC)
	p.LastExamDate = newExam
	p.NextCheckupDate = patient.NextCheckupDate(newExam, p.RiskProfile)
	if err := patients.Update(ctx, p); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	if err := scanner.RunOnce(ctx); err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	_, total, err = alerts.List(ctx, alert.ListFilter{})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if total != 1 {
		t.Errorf("Expected no new alert after a fresh exam, got %d total", total)
	}
}
