package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/kirillkom/payslip-dispatcher/internal/core/domain"
)

type BatchRepository struct {
	db *sql.DB
}

func NewBatchRepository(db *sql.DB) *BatchRepository {
	return &BatchRepository{db: db}
}

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

func (r *BatchRepository) EnsureSchema(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across api/worker startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026083101)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS batches (
	id TEXT PRIMARY KEY,
	payslip_key TEXT NOT NULL,
	roster_key TEXT NOT NULL,
	sender_email TEXT NOT NULL,
	status TEXT NOT NULL,
	error_message TEXT,
	report JSONB,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_batches_status ON batches(status);
CREATE INDEX IF NOT EXISTS idx_batches_created_at ON batches(created_at DESC);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

func (r *BatchRepository) Create(ctx context.Context, batch *domain.Batch) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO batches (
	id, payslip_key, roster_key, sender_email, status, error_message, created_at, updated_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
`,
		batch.ID, batch.PayslipKey, batch.RosterKey, batch.SenderEmail,
		string(batch.Status), batch.Error, batch.CreatedAt, batch.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert batch: %w", err)
	}
	return nil
}

func (r *BatchRepository) GetByID(ctx context.Context, id string) (*domain.Batch, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, payslip_key, roster_key, sender_email, status, error_message, created_at, updated_at
FROM batches
WHERE id = $1
`, id)

	var batch domain.Batch
	var status string

	err := row.Scan(
		&batch.ID, &batch.PayslipKey, &batch.RosterKey, &batch.SenderEmail,
		&status, &batch.Error, &batch.CreatedAt, &batch.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrBatchNotFound, "get batch", fmt.Errorf("id %s", id))
		}
		return nil, fmt.Errorf("scan batch: %w", err)
	}

	batch.Status = domain.BatchStatus(status)
	return &batch, nil
}

func (r *BatchRepository) UpdateStatus(ctx context.Context, id string, status domain.BatchStatus, errMessage string) error {
	result, err := r.db.ExecContext(ctx, `
UPDATE batches
SET status = $2, error_message = $3, updated_at = $4
WHERE id = $1
`, id, string(status), errMessage, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update batch status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update batch status rows affected: %w", err)
	}
	if affected == 0 {
		return domain.WrapError(domain.ErrBatchNotFound, "update batch status", fmt.Errorf("id %s", id))
	}
	return nil
}

func (r *BatchRepository) SaveReport(ctx context.Context, id string, report domain.DispatchReport) error {
	reportJSON, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("marshal dispatch report: %w", err)
	}
	result, err := r.db.ExecContext(ctx, `
UPDATE batches
SET report = $2, updated_at = $3
WHERE id = $1
`, id, reportJSON, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("save dispatch report: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("save dispatch report rows affected: %w", err)
	}
	if affected == 0 {
		return domain.WrapError(domain.ErrBatchNotFound, "save dispatch report", fmt.Errorf("id %s", id))
	}
	return nil
}

func (r *BatchRepository) GetReport(ctx context.Context, id string) (*domain.DispatchReport, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT report
FROM batches
WHERE id = $1
`, id)

	var reportRaw []byte
	if err := row.Scan(&reportRaw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrBatchNotFound, "get dispatch report", fmt.Errorf("id %s", id))
		}
		return nil, fmt.Errorf("scan dispatch report: %w", err)
	}
	if len(reportRaw) == 0 {
		return nil, nil
	}

	var report domain.DispatchReport
	if err := json.Unmarshal(reportRaw, &report); err != nil {
		return nil, fmt.Errorf("unmarshal dispatch report: %w", err)
	}
	return &report, nil
}
