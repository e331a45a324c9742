package model

import (
	"errors"
	"fmt"
	"time"
)

// AuditStatus represents the lifecycle state of one job attempt.
type AuditStatus string

const (
	// AuditStatusQueued indicates the job is waiting for its first attempt.
	AuditStatusQueued AuditStatus = "queued"
	// AuditStatusProcessing indicates an attempt is in flight.
	AuditStatusProcessing AuditStatus = "processing"
	// AuditStatusSuccess indicates the attempt delivered successfully.
	AuditStatusSuccess AuditStatus = "success"
	// AuditStatusFailed indicates the attempt failed.
	AuditStatusFailed AuditStatus = "failed"
)

// Valid returns true if the AuditStatus is a known lifecycle state.
func (s AuditStatus) Valid() bool {
	return s == AuditStatusQueued || s == AuditStatusProcessing ||
		s == AuditStatusSuccess || s == AuditStatusFailed
}

// Terminal returns true for end states that a record never leaves.
func (s AuditStatus) Terminal() bool {
	return s == AuditStatusSuccess || s == AuditStatusFailed
}

// ErrTerminalAudit is returned when a transition is attempted on a record
// that already reached success or failed.
var ErrTerminalAudit = errors.New("audit record is in a terminal state")

// AuditRecord is the persisted status trail of a single job attempt.
// Status moves monotonically along queued -> processing -> success|failed;
// a retried attempt gets a fresh record rather than resurrecting this one.
type AuditRecord struct {
	ID          int64       `json:"id"           db:"id"`
	RecordID    string      `json:"recordId"     db:"record_id"`
	Status      AuditStatus `json:"status"       db:"status"`
	Type        string      `json:"type"         db:"type"`
	Message     *string     `json:"message"      db:"message"`
	CreatedDate *time.Time  `json:"createdDate"  db:"created_date"`
}

// NewAuditRecord builds a queued record for a job about to be submitted.
func NewAuditRecord(recordID, taskName string) *AuditRecord {
	return &AuditRecord{
		RecordID: recordID,
		Status:   AuditStatusQueued,
		Type:     taskName,
	}
}

// MarkProcessing transitions the record into the processing state.
func (r *AuditRecord) MarkProcessing() error {
	if r.Status.Terminal() {
		return fmt.Errorf("mark processing from %s: %w", r.Status, ErrTerminalAudit)
	}
	r.Status = AuditStatusProcessing
	return nil
}

// MarkSuccess transitions the record into the terminal success state.
// Message carries an optional delivery summary.
func (r *AuditRecord) MarkSuccess(now time.Time, message string) error {
	if r.Status.Terminal() {
		return fmt.Errorf("mark success from %s: %w", r.Status, ErrTerminalAudit)
	}
	r.Status = AuditStatusSuccess
	r.CreatedDate = &now
	if message != "" {
		r.Message = &message
	}
	return nil
}

// MarkFailed transitions the record into the terminal failed state with the
// error description.
func (r *AuditRecord) MarkFailed(now time.Time, message string) error {
	if r.Status.Terminal() {
		return fmt.Errorf("mark failed from %s: %w", r.Status, ErrTerminalAudit)
	}
	r.Status = AuditStatusFailed
	r.CreatedDate = &now
	if message != "" {
		r.Message = &message
	}
	return nil
}
