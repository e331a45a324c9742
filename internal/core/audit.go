// Package core defines the interfaces between the notifier's service layer
// and its external collaborators: the audit store and the channel providers.
package core

import (
	"context"

	"github.com/posbridge/notifier/internal/domain/model"
)

// AuditLogRepository persists the per-attempt status trail of notification
// jobs. Writes are synchronous and durable on return.
type AuditLogRepository interface {
	// Create inserts a new record and populates its ID.
	Create(ctx context.Context, rec *model.AuditRecord) error

	// Save upserts a record: records with a zero ID are inserted, others
	// updated in place by primary key.
	Save(ctx context.Context, rec *model.AuditRecord) error
}
