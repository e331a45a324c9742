// Package data provides the persistence layer for the notifier audit log.
package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/posbridge/notifier/internal/domain/model"
)

var (
	// ErrAuditNotFound is returned when saving a record whose ID does not exist.
	ErrAuditNotFound = errors.New("audit record not found")
	// ErrSchemaMissing is returned when the audit table has not been created.
	ErrSchemaMissing = errors.New("audit schema missing (run EnsureSchema)")
)

// AuditRepo provides database operations for the webhook audit log.
type AuditRepo struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewAuditRepo creates an AuditRepo over the given database connection.
func NewAuditRepo(db *sql.DB, logger *slog.Logger) *AuditRepo {
	return &AuditRepo{db: db, logger: logger}
}

// Create inserts a new audit record and populates its ID.
func (r *AuditRepo) Create(ctx context.Context, rec *model.AuditRecord) error {
	if rec == nil {
		return errors.New("audit record is required")
	}
	if !rec.Status.Valid() {
		return fmt.Errorf("invalid audit status %q", rec.Status)
	}

	err := r.db.QueryRowContext(ctx, `
		INSERT INTO webhook_logs (record_id, status, type, message, created_date)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`,
		rec.RecordID, string(rec.Status), rec.Type, rec.Message, rec.CreatedDate,
	).Scan(&rec.ID)
	if err != nil {
		return fmt.Errorf("insert audit record: %w", classify(err))
	}

	if r.logger != nil {
		r.logger.DebugContext(ctx, "audit record created",
			"id", rec.ID, "record_id", rec.RecordID, "status", rec.Status)
	}
	return nil
}

// Save upserts an audit record: zero-ID records are inserted, others updated
// in place by primary key.
func (r *AuditRepo) Save(ctx context.Context, rec *model.AuditRecord) error {
	if rec == nil {
		return errors.New("audit record is required")
	}
	if rec.ID == 0 {
		return r.Create(ctx, rec)
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE webhook_logs
		SET record_id = $2, status = $3, type = $4, message = $5, created_date = $6
		WHERE id = $1`,
		rec.ID, rec.RecordID, string(rec.Status), rec.Type, rec.Message, rec.CreatedDate,
	)
	if err != nil {
		return fmt.Errorf("update audit record %d: %w", rec.ID, classify(err))
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update audit record %d: rows affected: %w", rec.ID, err)
	}
	if affected == 0 {
		return fmt.Errorf("update audit record %d: %w", rec.ID, ErrAuditNotFound)
	}

	if r.logger != nil {
		r.logger.DebugContext(ctx, "audit record saved",
			"id", rec.ID, "record_id", rec.RecordID, "status", rec.Status)
	}
	return nil
}

// GetByRecordID returns all audit records for a webhook, oldest first.
func (r *AuditRepo) GetByRecordID(ctx context.Context, recordID string) ([]*model.AuditRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, record_id, status, type, message, created_date
		FROM webhook_logs
		WHERE record_id = $1
		ORDER BY id`,
		recordID,
	)
	if err != nil {
		return nil, fmt.Errorf("query audit records for %s: %w", recordID, classify(err))
	}
	defer rows.Close() //nolint:errcheck // read-only cursor

	var records []*model.AuditRecord
	for rows.Next() {
		rec := &model.AuditRecord{}
		var status string
		if err := rows.Scan(&rec.ID, &rec.RecordID, &status, &rec.Type, &rec.Message, &rec.CreatedDate); err != nil {
			return nil, fmt.Errorf("scan audit record: %w", err)
		}
		rec.Status = model.AuditStatus(status)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit records: %w", err)
	}
	return records, nil
}

// classify maps low-level postgres errors onto package sentinels where that
// helps callers, and passes everything else through.
func classify(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UndefinedTable {
		return fmt.Errorf("%w: %s", ErrSchemaMissing, pgErr.Message)
	}
	return err
}
