package lis

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/samueltrindadern/crmclinica/internal/patient"
	"github.com/samueltrindadern/crmclinica/internal/shared/metrics"
)

// PatientStore is the view of the patient store the importer needs
type PatientStore interface {
	ListActive(ctx context.Context) ([]patient.Patient, error)
	Update(ctx context.Context, p *patient.Patient) error
}

// ResultSource produces exam results newer than a watermark
type ResultSource interface {
	FetchResultsSince(ctx context.Context, since time.Time) ([]ExamResult, error)
}

// Importer applies LIS exam results to patient records. Patients are
// matched by CPF; a newer result moves the last exam date forward and
// recomputes the next check-up date.
type Importer struct {
	adapter  ResultSource
	patients PatientStore

	mu    sync.Mutex
	since time.Time
}

// NewImporter creates the LIS importer. The first run picks up
// results from the last 30 days.
func NewImporter(adapter ResultSource, patients PatientStore) *Importer {
	return &Importer{
		adapter:  adapter,
		patients: patients,
		since:    time.Now().AddDate(0, 0, -30),
	}
}

// RunOnce imports results newer than the watermark and advances it
func (i *Importer) RunOnce(ctx context.Context) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	results, err := i.adapter.FetchResultsSince(ctx, i.since)
	if err != nil {
		return err
	}

	if len(results) == 0 {
		log.Debug().Time("since", i.since).Msg("No new LIS results")
		return nil
	}

	patients, err := i.patients.ListActive(ctx)
	if err != nil {
		return err
	}

	byCPF := make(map[string]*patient.Patient, len(patients))
	for idx := range patients {
		byCPF[patients[idx].CPF] = &patients[idx]
	}

	imported := 0
	for _, r := range results {
		if r.PerformedAt.After(i.since) {
			i.since = r.PerformedAt
		}

		p, ok := byCPF[r.PatientCPF]
		if !ok {
			continue
		}
		if !r.PerformedAt.After(p.LastExamDate) {
			continue
		}

		p.LastExamDate = r.PerformedAt
		p.NextCheckupDate = patient.NextCheckupDate(r.PerformedAt, p.RiskProfile)

		if err := i.patients.Update(ctx, p); err != nil {
			log.Error().Err(err).
				Str("patient_id", p.ID.String()).
				Msg("Failed to apply LIS result")
			continue
		}
		imported++
	}

	metrics.RecordLISImport(imported)

	log.Info().
		Int("results", len(results)).
		Int("imported", imported).
		Msg("LIS import completed")

	return nil
}
