package notification

import (
	"context"
	"testing"

	"github.com/samueltrindadern/crmclinica/internal/patient"
	"github.com/samueltrindadern/crmclinica/internal/shared/config"
	"github.com/samueltrindadern/crmclinica/internal/shared/types"
)

func TestWhatsAppRequiresPhone(t *testing.T) {
	ctx := context.Background()
	ch := NewWhatsAppChannel()

	p := &patient.Patient{ID: types.NewID(), Name: "Maria Silva"}
	if err := ch.Send(ctx, p, "Olá"); err == nil {
		t.Error("Expected error for patient without phone")
	}

	p.Phone = "(11) 99876-5432"
	if err := ch.Send(ctx, p, "Olá"); err != nil {
		t.Errorf("Send failed: %v", err)
	}
}

func TestSMTPChannelRequiresCredentials(t *testing.T) {
	if _, err := NewSMTPChannel(config.SMTPConfig{Host: "smtp.example.com", Port: 587}); err == nil {
		t.Error("Expected error without credentials")
	}
}

func TestMockChannelRecordsSends(t *testing.T) {
	ctx := context.Background()
	ch := NewMockChannel("whatsapp")
	p := &patient.Patient{ID: types.NewID(), Name: "Maria Silva", Phone: "(11) 99876-5432"}

	if err := ch.Send(ctx, p, "primeiro"); err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if err := ch.Send(ctx, p, "segundo"); err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	sent := ch.Sent()
	if len(sent) != 2 {
		t.Fatalf("Expected 2 sends, got %d", len(sent))
	}
	if sent[1].Content != "segundo" {
		t.Errorf("Expected 'segundo', got '%s'", sent[1].Content)
	}

	ch.SetFailOnSend(true)
	if err := ch.Send(ctx, p, "terceiro"); err == nil {
		t.Error("Expected failure when failOnSend is set")
	}
	if len(ch.Sent()) != 2 {
		t.Error("Failed send must not be recorded")
	}
}
