package patient

import (
	"context"
	"testing"
	"time"

	"github.com/samueltrindadern/crmclinica/internal/shared/types"
)

// --- Risk Profile Tests ---

func TestRiskProfiles(t *testing.T) {
	tests := []struct {
		profile  RiskProfile
		expected string
	}{
		{RiskLow, "baixo"},
		{RiskModerate, "moderado"},
		{RiskHigh, "alto"},
	}

	for _, tt := range tests {
		t.Run(string(tt.profile), func(t *testing.T) {
			if string(tt.profile) != tt.expected {
				t.Errorf("Expected '%s', got '%s'", tt.expected, tt.profile)
			}
		})
	}
}

func TestCheckupIntervalMonths(t *testing.T) {
	tests := []struct {
		profile RiskProfile
		months  int
	}{
		{RiskHigh, 3},
		{RiskModerate, 6},
		{RiskLow, 12},
		{RiskProfile("desconhecido"), 12},
		{RiskProfile(""), 12},
	}

	for _, tt := range tests {
		t.Run(string(tt.profile), func(t *testing.T) {
			if got := CheckupIntervalMonths(tt.profile); got != tt.months {
				t.Errorf("Expected %d months, got %d", tt.months, got)
			}
		})
	}
}

func TestNextCheckupDate(t *testing.T) {
	tests := []struct {
		name     string
		lastExam time.Time
		profile  RiskProfile
		expected time.Time
	}{
		{
			name:     "high risk adds 3 months",
			lastExam: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
			profile:  RiskHigh,
			expected: time.Date(2024, 4, 15, 0, 0, 0, 0, time.UTC),
		},
		{
			name:     "moderate risk adds 6 months",
			lastExam: time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC),
			profile:  RiskModerate,
			expected: time.Date(2024, 8, 10, 0, 0, 0, 0, time.UTC),
		},
		{
			name:     "low risk adds 12 months",
			lastExam: time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC),
			profile:  RiskLow,
			expected: time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC),
		},
		{
			// AddDate normalizes Jan 31 + 3 months to May 1
			name:     "end of month overflow normalizes",
			lastExam: time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
			profile:  RiskHigh,
			expected: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NextCheckupDate(tt.lastExam, tt.profile)
			if !got.Equal(tt.expected) {
				t.Errorf("Expected %s, got %s", tt.expected.Format(DateLayout), got.Format(DateLayout))
			}
		})
	}
}

// --- Memory Repository Tests ---

func newTestPatient(name, cpf string) *Patient {
	lastExam := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	return &Patient{
		ID:              types.NewID(),
		ClinicID:        types.NewDeterministicID("clinic", "test"),
		Name:            name,
		CPF:             cpf,
		Phone:           "(11) 99999-0000",
		Email:           "test@example.com",
		ExamType:        "Cardiologia",
		LastExamDate:    lastExam,
		RiskProfile:     RiskModerate,
		NextCheckupDate: NextCheckupDate(lastExam, RiskModerate),
		Status:          StatusActive,
	}
}

func TestMemoryRepositoryCRUD(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()

	p := newTestPatient("Maria Silva", "123.456.789-00")
	if err := repo.Create(ctx, p); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	got, err := repo.Get(ctx, p.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Name != "Maria Silva" {
		t.Errorf("Expected name 'Maria Silva', got '%s'", got.Name)
	}

	got.RiskProfile = RiskHigh
	if err := repo.Update(ctx, got); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	updated, err := repo.Get(ctx, p.ID)
	if err != nil {
		t.Fatalf("Get after update failed: %v", err)
	}
	if updated.RiskProfile != RiskHigh {
		t.Errorf("Expected risk 'alto', got '%s'", updated.RiskProfile)
	}

	if err := repo.Delete(ctx, p.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := repo.Get(ctx, p.ID); err == nil {
		t.Error("Expected not found after delete")
	}
}

func TestMemoryRepositoryDuplicateCPF(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()

	first := newTestPatient("Maria Silva", "123.456.789-00")
	if err := repo.Create(ctx, first); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	dup := newTestPatient("Outra Maria", "123.456.789-00")
	if err := repo.Create(ctx, dup); err == nil {
		t.Error("Expected conflict for duplicate CPF in same clinic")
	}
}

func TestMemoryRepositoryListActive(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()

	active := newTestPatient("Maria Silva", "123.456.789-00")
	if err := repo.Create(ctx, active); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	inactive := newTestPatient("João Santos", "987.654.321-00")
	inactive.Status = StatusInactive
	if err := repo.Create(ctx, inactive); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	patients, err := repo.ListActive(ctx)
	if err != nil {
		t.Fatalf("ListActive failed: %v", err)
	}
	if len(patients) != 1 {
		t.Fatalf("Expected 1 active patient, got %d", len(patients))
	}
	if patients[0].Name != "Maria Silva" {
		t.Errorf("Expected 'Maria Silva', got '%s'", patients[0].Name)
	}
}

func TestMemoryRepositoryListFilters(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	clinicID := types.NewDeterministicID("clinic", "test")

	names := []struct {
		name string
		cpf  string
		risk RiskProfile
	}{
		{"Maria Silva", "123.456.789-00", RiskHigh},
		{"João Santos", "987.654.321-00", RiskModerate},
		{"Carlos Oliveira", "456.789.123-00", RiskLow},
	}
	for _, n := range names {
		p := newTestPatient(n.name, n.cpf)
		p.RiskProfile = n.risk
		if err := repo.Create(ctx, p); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}

	risk := RiskHigh
	patients, total, err := repo.List(ctx, ListFilter{ClinicID: clinicID, Risk: &risk})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if total != 1 || len(patients) != 1 {
		t.Fatalf("Expected 1 high-risk patient, got %d", total)
	}
	if patients[0].Name != "Maria Silva" {
		t.Errorf("Expected 'Maria Silva', got '%s'", patients[0].Name)
	}

	patients, total, err = repo.List(ctx, ListFilter{ClinicID: clinicID, Search: "joão"})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if total != 1 || patients[0].Name != "João Santos" {
		t.Errorf("Expected search to find 'João Santos', got %d results", total)
	}
}
