package data

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/posbridge/notifier/internal/domain/model"
)

// MemoryAuditRepo is an in-memory AuditLogRepository for tests and local
// development without a database.
type MemoryAuditRepo struct {
	mu      sync.Mutex
	nextID  int64
	records map[int64]*model.AuditRecord
	// history records every persisted snapshot in write order, so tests can
	// assert status monotonicity per record.
	history []model.AuditRecord
}

// NewMemoryAuditRepo creates an empty in-memory audit repository.
func NewMemoryAuditRepo() *MemoryAuditRepo {
	return &MemoryAuditRepo{
		nextID:  1,
		records: make(map[int64]*model.AuditRecord),
	}
}

// Create inserts a new record and assigns its ID.
func (r *MemoryAuditRepo) Create(_ context.Context, rec *model.AuditRecord) error {
	if rec == nil {
		return errors.New("audit record is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	rec.ID = r.nextID
	r.nextID++
	stored := *rec
	r.records[rec.ID] = &stored
	r.history = append(r.history, stored)
	return nil
}

// Save upserts a record by primary key.
func (r *MemoryAuditRepo) Save(ctx context.Context, rec *model.AuditRecord) error {
	if rec == nil {
		return errors.New("audit record is required")
	}
	if rec.ID == 0 {
		return r.Create(ctx, rec)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.records[rec.ID]; !ok {
		return fmt.Errorf("save audit record %d: %w", rec.ID, ErrAuditNotFound)
	}
	stored := *rec
	r.records[rec.ID] = &stored
	r.history = append(r.history, stored)
	return nil
}

// Get returns a copy of the record with the given ID, or nil.
func (r *MemoryAuditRepo) Get(id int64) *model.AuditRecord {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[id]
	if !ok {
		return nil
	}
	out := *rec
	return &out
}

// All returns copies of every stored record in insert order.
func (r *MemoryAuditRepo) All() []*model.AuditRecord {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*model.AuditRecord, 0, len(r.records))
	for id := int64(1); id < r.nextID; id++ {
		if rec, ok := r.records[id]; ok {
			copied := *rec
			out = append(out, &copied)
		}
	}
	return out
}

// History returns every persisted snapshot in write order.
func (r *MemoryAuditRepo) History() []model.AuditRecord {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]model.AuditRecord, len(r.history))
	copy(out, r.history)
	return out
}
