package settings

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/samueltrindadern/crmclinica/internal/shared/errors"
	"github.com/samueltrindadern/crmclinica/internal/shared/types"
)

// PostgresRepository stores clinic settings in the managed Postgres backend
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a Postgres-backed settings repository
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Get retrieves the settings of a clinic
func (r *PostgresRepository) Get(ctx context.Context, clinicID types.ID) (*ClinicSettings, error) {
	query := `
		SELECT clinic_id, name, cnpj, email, phone, whatsapp_number,
			address, city, state, zip_code, email_signature,
			whatsapp_template, email_template, updated_at
		FROM clinic.settings
		WHERE clinic_id = $1`

	s := &ClinicSettings{}
	err := r.pool.QueryRow(ctx, query, clinicID).Scan(
		&s.ClinicID, &s.Name, &s.CNPJ, &s.Email, &s.Phone, &s.WhatsAppNumber,
		&s.Address, &s.City, &s.State, &s.ZipCode, &s.EmailSignature,
		&s.WhatsAppTemplate, &s.EmailTemplate, &s.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, errors.NotFound("clinic settings", clinicID.String())
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to get clinic settings")
	}

	return s, nil
}

// Upsert creates or replaces the settings of a clinic
func (r *PostgresRepository) Upsert(ctx context.Context, s *ClinicSettings) error {
	query := `
		INSERT INTO clinic.settings (
			clinic_id, name, cnpj, email, phone, whatsapp_number,
			address, city, state, zip_code, email_signature,
			whatsapp_template, email_template, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, NOW())
		ON CONFLICT (clinic_id) DO UPDATE SET
			name = EXCLUDED.name, cnpj = EXCLUDED.cnpj, email = EXCLUDED.email,
			phone = EXCLUDED.phone, whatsapp_number = EXCLUDED.whatsapp_number,
			address = EXCLUDED.address, city = EXCLUDED.city, state = EXCLUDED.state,
			zip_code = EXCLUDED.zip_code, email_signature = EXCLUDED.email_signature,
			whatsapp_template = EXCLUDED.whatsapp_template,
			email_template = EXCLUDED.email_template,
			updated_at = NOW()`

	_, err := r.pool.Exec(ctx, query,
		s.ClinicID, s.Name, s.CNPJ, s.Email, s.Phone, s.WhatsAppNumber,
		s.Address, s.City, s.State, s.ZipCode, s.EmailSignature,
		s.WhatsAppTemplate, s.EmailTemplate,
	)

	if err != nil {
		return errors.Wrap(err, "failed to upsert clinic settings")
	}

	return nil
}
