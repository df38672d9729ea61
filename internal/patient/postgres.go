package patient

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/samueltrindadern/crmclinica/internal/shared/errors"
	"github.com/samueltrindadern/crmclinica/internal/shared/types"
)

// PostgresRepository stores patients in the managed Postgres backend
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a Postgres-backed patient repository
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const patientColumns = `id, clinic_id, name, cpf, phone, email, exam_type,
	last_exam_date, risk_profile, next_checkup_date, status, created_at, updated_at`

// Create inserts a new patient
func (r *PostgresRepository) Create(ctx context.Context, p *Patient) error {
	query := `
		INSERT INTO clinic.patients (
			id, clinic_id, name, cpf, phone, email, exam_type,
			last_exam_date, risk_profile, next_checkup_date, status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := r.pool.Exec(ctx, query,
		p.ID, p.ClinicID, p.Name, p.CPF, p.Phone, p.Email, p.ExamType,
		p.LastExamDate, p.RiskProfile, p.NextCheckupDate, p.Status,
	)

	if err != nil {
		if strings.Contains(err.Error(), "duplicate key") {
			return errors.Conflict("patient with this CPF already exists")
		}
		return errors.Wrap(err, "failed to create patient")
	}

	return nil
}

// Get retrieves a patient by ID
func (r *PostgresRepository) Get(ctx context.Context, id types.ID) (*Patient, error) {
	query := fmt.Sprintf(`SELECT %s FROM clinic.patients WHERE id = $1`, patientColumns)

	p := &Patient{}
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.ClinicID, &p.Name, &p.CPF, &p.Phone, &p.Email, &p.ExamType,
		&p.LastExamDate, &p.RiskProfile, &p.NextCheckupDate, &p.Status,
		&p.CreatedAt, &p.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, errors.NotFound("patient", id.String())
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to get patient")
	}

	return p, nil
}

// GetByCPF retrieves a patient by CPF within a clinic
func (r *PostgresRepository) GetByCPF(ctx context.Context, clinicID types.ID, cpf string) (*Patient, error) {
	query := fmt.Sprintf(`SELECT %s FROM clinic.patients WHERE clinic_id = $1 AND cpf = $2`, patientColumns)

	p := &Patient{}
	err := r.pool.QueryRow(ctx, query, clinicID, cpf).Scan(
		&p.ID, &p.ClinicID, &p.Name, &p.CPF, &p.Phone, &p.Email, &p.ExamType,
		&p.LastExamDate, &p.RiskProfile, &p.NextCheckupDate, &p.Status,
		&p.CreatedAt, &p.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, errors.NotFound("patient", cpf)
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to get patient by CPF")
	}

	return p, nil
}

// Update updates a patient
func (r *PostgresRepository) Update(ctx context.Context, p *Patient) error {
	query := `
		UPDATE clinic.patients SET
			name = $2, cpf = $3, phone = $4, email = $5, exam_type = $6,
			last_exam_date = $7, risk_profile = $8, next_checkup_date = $9,
			status = $10, updated_at = NOW()
		WHERE id = $1`

	result, err := r.pool.Exec(ctx, query,
		p.ID, p.Name, p.CPF, p.Phone, p.Email, p.ExamType,
		p.LastExamDate, p.RiskProfile, p.NextCheckupDate, p.Status,
	)

	if err != nil {
		return errors.Wrap(err, "failed to update patient")
	}

	if result.RowsAffected() == 0 {
		return errors.NotFound("patient", p.ID.String())
	}

	return nil
}

// Delete deletes a patient
func (r *PostgresRepository) Delete(ctx context.Context, id types.ID) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM clinic.patients WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "failed to delete patient")
	}

	if result.RowsAffected() == 0 {
		return errors.NotFound("patient", id.String())
	}

	return nil
}

// List lists patients with optional filters
func (r *PostgresRepository) List(ctx context.Context, filter ListFilter) ([]Patient, int, error) {
	var conditions []string
	var args []interface{}
	argNum := 1

	if !filter.ClinicID.IsZero() {
		conditions = append(conditions, fmt.Sprintf("clinic_id = $%d", argNum))
		args = append(args, filter.ClinicID)
		argNum++
	}

	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argNum))
		args = append(args, *filter.Status)
		argNum++
	}

	if filter.Risk != nil {
		conditions = append(conditions, fmt.Sprintf("risk_profile = $%d", argNum))
		args = append(args, *filter.Risk)
		argNum++
	}

	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(name ILIKE $%d OR cpf ILIKE $%d OR email ILIKE $%d)", argNum, argNum, argNum))
		args = append(args, "%"+filter.Search+"%")
		argNum++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	// Get total count
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM clinic.patients %s", whereClause)
	var total int
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, errors.Wrap(err, "failed to count patients")
	}

	limit := 50
	if filter.Limit > 0 && filter.Limit <= 100 {
		limit = filter.Limit
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM clinic.patients
		%s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d`, patientColumns, whereClause, argNum, argNum+1)

	args = append(args, limit, filter.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, errors.Wrap(err, "failed to list patients")
	}
	defer rows.Close()

	var patients []Patient
	for rows.Next() {
		var p Patient
		err := rows.Scan(
			&p.ID, &p.ClinicID, &p.Name, &p.CPF, &p.Phone, &p.Email, &p.ExamType,
			&p.LastExamDate, &p.RiskProfile, &p.NextCheckupDate, &p.Status,
			&p.CreatedAt, &p.UpdatedAt,
		)
		if err != nil {
			return nil, 0, errors.Wrap(err, "failed to scan patient")
		}
		patients = append(patients, p)
	}

	return patients, total, nil
}

// ListActive returns active patients across all clinics
func (r *PostgresRepository) ListActive(ctx context.Context) ([]Patient, error) {
	query := fmt.Sprintf(`SELECT %s FROM clinic.patients WHERE status = $1 ORDER BY next_checkup_date`, patientColumns)

	rows, err := r.pool.Query(ctx, query, StatusActive)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list active patients")
	}
	defer rows.Close()

	var patients []Patient
	for rows.Next() {
		var p Patient
		err := rows.Scan(
			&p.ID, &p.ClinicID, &p.Name, &p.CPF, &p.Phone, &p.Email, &p.ExamType,
			&p.LastExamDate, &p.RiskProfile, &p.NextCheckupDate, &p.Status,
			&p.CreatedAt, &p.UpdatedAt,
		)
		if err != nil {
			return nil, errors.Wrap(err, "failed to scan patient")
		}
		patients = append(patients, p)
	}

	return patients, nil
}
