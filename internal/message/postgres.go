package message

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/samueltrindadern/crmclinica/internal/shared/errors"
	"github.com/samueltrindadern/crmclinica/internal/shared/types"
)

// PostgresRepository stores messages in the managed Postgres backend
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a Postgres-backed message repository
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const messageColumns = `id, patient_id, patient_name, type, content, status, sent_at, scheduled_for`

// Create inserts a new message record
func (r *PostgresRepository) Create(ctx context.Context, m *Message) error {
	query := `
		INSERT INTO clinic.messages (
			id, patient_id, patient_name, type, content, status, sent_at, scheduled_for
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.pool.Exec(ctx, query,
		m.ID, m.PatientID, m.PatientName, m.Type, m.Content, m.Status, m.SentAt, m.ScheduledFor,
	)

	if err != nil {
		return errors.Wrap(err, "failed to create message")
	}

	return nil
}

// Get retrieves a message by ID
func (r *PostgresRepository) Get(ctx context.Context, id types.ID) (*Message, error) {
	query := fmt.Sprintf(`SELECT %s FROM clinic.messages WHERE id = $1`, messageColumns)

	m := &Message{}
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&m.ID, &m.PatientID, &m.PatientName, &m.Type, &m.Content,
		&m.Status, &m.SentAt, &m.ScheduledFor,
	)

	if err == pgx.ErrNoRows {
		return nil, errors.NotFound("message", id.String())
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to get message")
	}

	return m, nil
}

// List retrieves messages matching the filter, newest first
func (r *PostgresRepository) List(ctx context.Context, filter ListFilter) ([]Message, int, error) {
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
	countQuery := "SELECT COUNT(*) FROM clinic.messages" + where
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, errors.Wrap(err, "failed to count messages")
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	if limit > 100 {
		limit = 100
	}

	query := fmt.Sprintf(`SELECT %s FROM clinic.messages%s ORDER BY sent_at DESC LIMIT $%d OFFSET $%d`,
		messageColumns, where, argNum, argNum+1)
	args = append(args, limit, filter.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, errors.Wrap(err, "failed to list messages")
	}
	defer rows.Close()

	messages := []Message{}
	for rows.Next() {
		var m Message
		if err := rows.Scan(
			&m.ID, &m.PatientID, &m.PatientName, &m.Type, &m.Content,
			&m.Status, &m.SentAt, &m.ScheduledFor,
		); err != nil {
			return nil, 0, errors.Wrap(err, "failed to scan message")
		}
		messages = append(messages, m)
	}

	return messages, total, rows.Err()
}
