package alert

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/samueltrindadern/crmclinica/internal/shared/errors"
	"github.com/samueltrindadern/crmclinica/internal/shared/types"
)

// PostgresRepository stores alerts in the managed Postgres backend
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a Postgres-backed alert repository
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const alertColumns = `id, patient_id, patient_name, type, message, scheduled_for, status, created_at`

// Create inserts a new alert
func (r *PostgresRepository) Create(ctx context.Context, a *Alert) error {
	query := `
		INSERT INTO clinic.alerts (
			id, patient_id, patient_name, type, message, scheduled_for, status
		) VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.pool.Exec(ctx, query,
		a.ID, a.PatientID, a.PatientName, a.Type, a.Message, a.ScheduledFor, a.Status,
	)

	if err != nil {
		return errors.Wrap(err, "failed to create alert")
	}

	return nil
}

// CreatePending inserts a pending alert unless the patient already has
// one. The partial unique index on (patient_id) WHERE status='pending'
// makes this safe against concurrent scanner runs.
func (r *PostgresRepository) CreatePending(ctx context.Context, a *Alert) (bool, error) {
	query := `
		INSERT INTO clinic.alerts (
			id, patient_id, patient_name, type, message, scheduled_for, status
		) VALUES ($1, $2, $3, $4, $5, $6, 'pending')
		ON CONFLICT (patient_id) WHERE status = 'pending' DO NOTHING`

	tag, err := r.pool.Exec(ctx, query,
		a.ID, a.PatientID, a.PatientName, a.Type, a.Message, a.ScheduledFor,
	)

	if err != nil {
		return false, errors.Wrap(err, "failed to create pending alert")
	}

	return tag.RowsAffected() > 0, nil
}

// Get retrieves an alert by ID
func (r *PostgresRepository) Get(ctx context.Context, id types.ID) (*Alert, error) {
	query := fmt.Sprintf(`SELECT %s FROM clinic.alerts WHERE id = $1`, alertColumns)

	a := &Alert{}
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&a.ID, &a.PatientID, &a.PatientName, &a.Type, &a.Message,
		&a.ScheduledFor, &a.Status, &a.CreatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, errors.NotFound("alert", id.String())
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to get alert")
	}

	return a, nil
}

// List retrieves alerts matching the filter, newest first
func (r *PostgresRepository) List(ctx context.Context, filter ListFilter) ([]Alert, int, error) {
	conditions := []string{}
	args := []any{}
	argNum := 1

	addCondition := func(clause string, value any) {
		conditions = append(conditions, fmt.Sprintf(clause, argNum))
		args = append(args, value)
		argNum++
	}

	if !filter.PatientID.IsZero() {
		addCondition("patient_id = $%d", filter.PatientID)
	}
	if filter.Type != "" {
		addCondition("type = $%d", filter.Type)
	}
	if filter.Status != "" {
		addCondition("status = $%d", filter.Status)
	}

	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + conditions[0]
		for _, c := range conditions[1:] {
			where += " AND " + c
		}
	}

	var total int
	countQuery := "SELECT COUNT(*) FROM clinic.alerts" + where
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, errors.Wrap(err, "failed to count alerts")
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	if limit > 100 {
		limit = 100
	}

	query := fmt.Sprintf(`SELECT %s FROM clinic.alerts%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		alertColumns, where, argNum, argNum+1)
	args = append(args, limit, filter.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, errors.Wrap(err, "failed to list alerts")
	}
	defer rows.Close()

	alerts := []Alert{}
	for rows.Next() {
		var a Alert
		if err := rows.Scan(
			&a.ID, &a.PatientID, &a.PatientName, &a.Type, &a.Message,
			&a.ScheduledFor, &a.Status, &a.CreatedAt,
		); err != nil {
			return nil, 0, errors.Wrap(err, "failed to scan alert")
		}
		alerts = append(alerts, a)
	}

	return alerts, total, rows.Err()
}

// UpdateStatus transitions an alert to a new status
func (r *PostgresRepository) UpdateStatus(ctx context.Context, id types.ID, status Status) (*Alert, error) {
	query := fmt.Sprintf(`
		UPDATE clinic.alerts SET status = $2 WHERE id = $1
		RETURNING %s`, alertColumns)

	a := &Alert{}
	err := r.pool.QueryRow(ctx, query, id, status).Scan(
		&a.ID, &a.PatientID, &a.PatientName, &a.Type, &a.Message,
		&a.ScheduledFor, &a.Status, &a.CreatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, errors.NotFound("alert", id.String())
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to update alert status")
	}

	return a, nil
}

// HasPending reports whether the patient has a pending alert
func (r *PostgresRepository) HasPending(ctx context.Context, patientID types.ID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM clinic.alerts WHERE patient_id = $1 AND status = 'pending')`,
		patientID,
	).Scan(&exists)

	if err != nil {
		return false, errors.Wrap(err, "failed to check pending alerts")
	}

	return exists, nil
}
