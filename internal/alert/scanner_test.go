package alert

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/samueltrindadern/crmclinica/internal/patient"
	"github.com/samueltrindadern/crmclinica/internal/shared/types"
)

// --- Model Tests ---

func TestAlertTypes(t *testing.T) {
	tests := []struct {
		alertType Type
		expected  string
	}{
		{TypeReminder, "checkup_reminder"},
		{TypeOverdue, "overdue"},
		{TypeUrgent, "urgent"},
	}

	for _, tt := range tests {
		t.Run(string(tt.alertType), func(t *testing.T) {
			if string(tt.alertType) != tt.expected {
				t.Errorf("Expected '%s', got '%s'", tt.expected, tt.alertType)
			}
		})
	}
}

func TestAlertStatuses(t *testing.T) {
	tests := []struct {
		status   Status
		expected string
	}{
		{StatusPending, "pending"},
		{StatusSent, "sent"},
		{StatusFailed, "failed"},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			if string(tt.status) != tt.expected {
				t.Errorf("Expected '%s', got '%s'", tt.expected, tt.status)
			}
		})
	}
}

// --- Scanner Tests ---

type fakeSource struct {
	patients []patient.Patient
	err      error
}

func (f *fakeSource) ListActive(ctx context.Context) ([]patient.Patient, error) {
	return f.patients, f.err
}

func testPatient(name string, nextCheckup time.Time) patient.Patient {
	return patient.Patient{
		ID:              types.NewID(),
		ClinicID:        types.NewDeterministicID("clinic", "test"),
		Name:            name,
		CPF:             "123.456.789-00",
		ExamType:        "Ginecologia",
		LastExamDate:    nextCheckup.AddDate(0, -3, 0),
		RiskProfile:     patient.RiskHigh,
		NextCheckupDate: nextCheckup,
		Status:          patient.StatusActive,
	}
}

func newTestScanner(source PatientSource, repo Repository, now time.Time) *Scanner {
	s := NewScanner(source, repo, nil, DefaultScannerConfig())
	s.now = func() time.Time { return now }
	return s
}

func TestScannerRaisesReminderInsideWindow(t *testing.T) {
	ctx := context.Background()
	due := time.Date(2024, 4, 15, 0, 0, 0, 0, time.UTC)
	now := time.Date(2024, 4, 10, 9, 30, 0, 0, time.UTC)

	p := testPatient("Maria Silva", due)
	repo := NewMemoryRepository()
	scanner := newTestScanner(&fakeSource{patients: []patient.Patient{p}}, repo, now)

	if err := scanner.RunOnce(ctx); err != nil {
		t.Fatalf("RunOnce failed: %v", err)
	}

	alerts, total, err := repo.List(ctx, ListFilter{})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if total != 1 {
		t.Fatalf("Expected 1 alert, got %d", total)
	}

	a := alerts[0]
	if a.Type != TypeReminder {
		t.Errorf("Expected type 'checkup_reminder', got '%s'", a.Type)
	}
	if a.Status != StatusPending {
		t.Errorf("Expected status 'pending', got '%s'", a.Status)
	}
	if a.PatientID != p.ID {
		t.Errorf("Expected patient %s, got %s", p.ID, a.PatientID)
	}
	if !strings.Contains(a.Message, "15/04/2024") {
		t.Errorf("Expected message to contain due date, got '%s'", a.Message)
	}
	if !strings.Contains(a.Message, "ginecologia") {
		t.Errorf("Expected message to contain lowercased exam type, got '%s'", a.Message)
	}
	// scheduled_for records the scan time, not the check-up due date
	if !a.ScheduledFor.Equal(now) {
		t.Errorf("Expected scheduled_for %s, got %s", now, a.ScheduledFor)
	}
}

func TestScannerRaisesOverdueAfterDueDate(t *testing.T) {
	ctx := context.Background()
	due := time.Date(2024, 4, 15, 0, 0, 0, 0, time.UTC)
	now := time.Date(2024, 4, 20, 0, 0, 0, 0, time.UTC)

	p := testPatient("Maria Silva", due)
	repo := NewMemoryRepository()
	scanner := newTestScanner(&fakeSource{patients: []patient.Patient{p}}, repo, now)

	if err := scanner.RunOnce(ctx); err != nil {
		t.Fatalf("RunOnce failed: %v", err)
	}

	alerts, total, err := repo.List(ctx, ListFilter{})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if total != 1 {
		t.Fatalf("Expected 1 alert, got %d", total)
	}
	if alerts[0].Type != TypeOverdue {
		t.Errorf("Expected type 'overdue', got '%s'", alerts[0].Type)
	}
	if !strings.Contains(alerts[0].Message, "em atraso desde 15/04/2024") {
		t.Errorf("Expected overdue message, got '%s'", alerts[0].Message)
	}
}

func TestScannerWindowBoundaries(t *testing.T) {
	due := time.Date(2024, 4, 15, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		now      time.Time
		expected Type
		none     bool
	}{
		{
			name:     "exactly window start raises reminder",
			now:      due.Add(-7 * 24 * time.Hour),
			expected: TypeReminder,
		},
		{
			name:     "exactly due date raises overdue",
			now:      due,
			expected: TypeOverdue,
		},
		{
			name: "before window raises nothing",
			now:  due.Add(-8 * 24 * time.Hour),
			none: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			p := testPatient("Maria Silva", due)
			repo := NewMemoryRepository()
			scanner := newTestScanner(&fakeSource{patients: []patient.Patient{p}}, repo, tt.now)

			if err := scanner.RunOnce(ctx); err != nil {
				t.Fatalf("RunOnce failed: %v", err)
			}

			alerts, total, err := repo.List(ctx, ListFilter{})
			if err != nil {
				t.Fatalf("List failed: %v", err)
			}

			if tt.none {
				if total != 0 {
					t.Fatalf("Expected no alerts, got %d", total)
				}
				return
			}

			if total != 1 {
				t.Fatalf("Expected 1 alert, got %d", total)
			}
			if alerts[0].Type != tt.expected {
				t.Errorf("Expected type '%s', got '%s'", tt.expected, alerts[0].Type)
			}
		})
	}
}

func TestScannerIsIdempotent(t *testing.T) {
	ctx := context.Background()
	due := time.Date(2024, 4, 15, 0, 0, 0, 0, time.UTC)
	now := time.Date(2024, 4, 10, 0, 0, 0, 0, time.UTC)

	p := testPatient("Maria Silva", due)
	repo := NewMemoryRepository()
	scanner := newTestScanner(&fakeSource{patients: []patient.Patient{p}}, repo, now)

	for i := 0; i < 3; i++ {
		if err := scanner.RunOnce(ctx); err != nil {
			t.Fatalf("RunOnce %d failed: %v", i, err)
		}
	}

	_, total, err := repo.List(ctx, ListFilter{})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if total != 1 {
		t.Errorf("Expected 1 alert after repeated scans, got %d", total)
	}
}

func TestScannerResolvedAlertDoesNotBlockNewAlert(t *testing.T) {
	// A sent alert does not block a new one; only pending alerts do
	ctx := context.Background()
	due := time.Date(2024, 4, 15, 0, 0, 0, 0, time.UTC)
	now := time.Date(2024, 4, 10, 0, 0, 0, 0, time.UTC)

	p := testPatient("Maria Silva", due)
	repo := NewMemoryRepository()
	scanner := newTestScanner(&fakeSource{patients: []patient.Patient{p}}, repo, now)

	if err := scanner.RunOnce(ctx); err != nil {
		t.Fatalf("RunOnce failed: %v", err)
	}

	alerts, _, _ := repo.List(ctx, ListFilter{})
	if _, err := repo.UpdateStatus(ctx, alerts[0].ID, StatusSent); err != nil {
		t.Fatalf("UpdateStatus failed: %v", err)
	}

	if err := scanner.RunOnce(ctx); err != nil {
		t.Fatalf("RunOnce failed: %v", err)
	}

	_, total, _ := repo.List(ctx, ListFilter{})
	if total != 2 {
		t.Errorf("Expected a new alert after the previous was sent, got %d total", total)
	}
}

func TestScannerListError(t *testing.T) {
	ctx := context.Background()
	scanner := newTestScanner(&fakeSource{err: fmt.Errorf("connection refused")}, NewMemoryRepository(), time.Now())

	if err := scanner.RunOnce(ctx); err == nil {
		t.Error("Expected error when patient listing fails")
	}
}

// failingPendingRepo fails HasPending for one patient
type failingPendingRepo struct {
	*MemoryRepository
	failFor types.ID
}

func (r *failingPendingRepo) HasPending(ctx context.Context, patientID types.ID) (bool, error) {
	if patientID == r.failFor {
		return false, fmt.Errorf("storage error")
	}
	return r.MemoryRepository.HasPending(ctx, patientID)
}

func TestScannerContinuesAfterPatientError(t *testing.T) {
	ctx := context.Background()
	due := time.Date(2024, 4, 15, 0, 0, 0, 0, time.UTC)
	now := time.Date(2024, 4, 10, 0, 0, 0, 0, time.UTC)

	broken := testPatient("Maria Silva", due)
	healthy := testPatient("João Santos", due)

	repo := &failingPendingRepo{MemoryRepository: NewMemoryRepository(), failFor: broken.ID}
	scanner := newTestScanner(&fakeSource{patients: []patient.Patient{broken, healthy}}, repo, now)

	if err := scanner.RunOnce(ctx); err != nil {
		t.Fatalf("RunOnce failed: %v", err)
	}

	alerts, total, err := repo.List(ctx, ListFilter{})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if total != 1 {
		t.Fatalf("Expected 1 alert for the healthy patient, got %d", total)
	}
	if alerts[0].PatientID != healthy.ID {
		t.Errorf("Expected alert for healthy patient, got %s", alerts[0].PatientID)
	}
}

func TestCreatePendingEnforcesSinglePending(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	patientID := types.NewID()

	first := &Alert{
		ID:           types.NewID(),
		PatientID:    patientID,
		PatientName:  "Maria Silva",
		Type:         TypeReminder,
		Message:      "Check-up ginecologia agendado para 15/04/2024",
		ScheduledFor: time.Now(),
	}
	created, err := repo.CreatePending(ctx, first)
	if err != nil {
		t.Fatalf("CreatePending failed: %v", err)
	}
	if !created {
		t.Fatal("Expected first pending alert to be created")
	}

	second := &Alert{
		ID:           types.NewID(),
		PatientID:    patientID,
		PatientName:  "Maria Silva",
		Type:         TypeOverdue,
		Message:      "Check-up ginecologia em atraso desde 15/04/2024",
		ScheduledFor: time.Now(),
	}
	created, err = repo.CreatePending(ctx, second)
	if err != nil {
		t.Fatalf("CreatePending failed: %v", err)
	}
	if created {
		t.Error("Expected second pending alert to be skipped")
	}
}
