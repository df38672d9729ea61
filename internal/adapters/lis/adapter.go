// Package lis imports exam results from the legacy lab information
// system so that patients' last exam dates stay current without
// manual entry.
package lis

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/denisenkom/go-mssqldb" // SQL Server driver

	"github.com/samueltrindadern/crmclinica/internal/shared/config"
)

// ExamResult is one row fetched from the LIS results table
type ExamResult struct {
	PatientCPF  string
	ExamType    string
	PerformedAt time.Time
}

// Adapter reads exam results from the LIS SQL Server database
type Adapter struct {
	db     *sql.DB
	config config.LISConfig
}

// New connects to the LIS database
func New(cfg config.LISConfig) (*Adapter, error) {
	connStr := fmt.Sprintf("server=%s;port=%d;database=%s;user id=%s;password=%s",
		cfg.Host, cfg.Port, cfg.Database, cfg.User, cfg.Password)

	if cfg.SSLMode != "disable" {
		connStr += ";encrypt=true;TrustServerCertificate=true"
	}

	db, err := sql.Open("sqlserver", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open LIS connection: %w", err)
	}

	db.SetMaxOpenConns(5)
	db.SetConnMaxLifetime(time.Hour)

	return &Adapter{db: db, config: cfg}, nil
}

// FetchResultsSince returns exam results performed after the given time
func (a *Adapter) FetchResultsSince(ctx context.Context, since time.Time) ([]ExamResult, error) {
	query := fmt.Sprintf(`
		SELECT PatientCPF, ExamType, PerformedAt
		FROM %s
		WHERE PerformedAt > @since
		ORDER BY PerformedAt ASC`, a.config.ResultsTable)

	rows, err := a.db.QueryContext(ctx, query, sql.Named("since", since))
	if err != nil {
		return nil, fmt.Errorf("failed to query LIS results: %w", err)
	}
	defer rows.Close()

	results := []ExamResult{}
	for rows.Next() {
		var r ExamResult
		if err := rows.Scan(&r.PatientCPF, &r.ExamType, &r.PerformedAt); err != nil {
			return nil, fmt.Errorf("failed to scan LIS result: %w", err)
		}
		results = append(results, r)
	}

	return results, rows.Err()
}

// Health pings the LIS database
func (a *Adapter) Health(ctx context.Context) error {
	return a.db.PingContext(ctx)
}

// Close closes the LIS connection
func (a *Adapter) Close() error {
	return a.db.Close()
}
