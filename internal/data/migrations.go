package data

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// schema holds the audit log DDL. Statements are idempotent so startup can
// apply them unconditionally.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS webhook_logs (
		id           BIGSERIAL PRIMARY KEY,
		record_id    TEXT NOT NULL,
		status       TEXT NOT NULL,
		type         TEXT NOT NULL DEFAULT '',
		message      TEXT,
		created_date TIMESTAMPTZ
	)`,
	`CREATE INDEX IF NOT EXISTS idx_webhook_logs_record_id ON webhook_logs (record_id)`,
	`CREATE INDEX IF NOT EXISTS idx_webhook_logs_status ON webhook_logs (status)`,
}

// EnsureSchema creates the audit log table and indexes if they do not exist.
func EnsureSchema(ctx context.Context, db *sql.DB, logger *slog.Logger) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply audit schema: %w", err)
		}
	}
	if logger != nil {
		logger.InfoContext(ctx, "audit schema ensured", "table", "webhook_logs")
	}
	return nil
}
