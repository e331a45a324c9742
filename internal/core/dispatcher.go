package core

import (
	"context"

	"github.com/posbridge/notifier/internal/domain/model"
)

// DispatchResult summarizes one successful job attempt.
type DispatchResult struct {
	JobID      string
	Channel    model.Channel
	Recipients []string
	Message    string
}

// Dispatcher executes exactly one job attempt end-to-end, including audit
// bookkeeping. A non-nil error feeds the queue's retry logic.
type Dispatcher interface {
	Dispatch(ctx context.Context, job *model.NotificationJob) (*DispatchResult, error)
}
