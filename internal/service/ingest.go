package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/posbridge/notifier/internal/core"
	"github.com/posbridge/notifier/internal/domain/model"
	"github.com/posbridge/notifier/internal/domain/routing"
	"github.com/posbridge/notifier/internal/observability/metrics"
)

var (
	// ErrUnauthorized is returned when the bearer token is missing or wrong.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInvalidPayload is returned when the inbound event fails validation.
	ErrInvalidPayload = errors.New("invalid payload")
)

// timeNow is swapped in tests.
var timeNow = time.Now

// JobSubmitter accepts notification jobs for asynchronous dispatch.
type JobSubmitter interface {
	Submit(job *model.NotificationJob) error
}

// IngestServiceOptions configures an IngestService. Queue, Audit, and
// AuthToken are required.
type IngestServiceOptions struct {
	Queue     JobSubmitter
	Audit     core.AuditLogRepository
	AuthToken string
	Logger    *slog.Logger
}

// IngestService authenticates inbound webhook events, fans each accepted
// event out to its routed channels, and submits one job per channel.
type IngestService struct {
	queue     JobSubmitter
	audit     core.AuditLogRepository
	authToken string
	logger    *slog.Logger
}

// NewIngestService builds an IngestService from opts.
func NewIngestService(opts IngestServiceOptions) (*IngestService, error) {
	if opts.Queue == nil {
		return nil, errors.New("queue is required")
	}
	if opts.Audit == nil {
		return nil, errors.New("audit repository is required")
	}
	if strings.TrimSpace(opts.AuthToken) == "" {
		return nil, errors.New("auth token is required")
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &IngestService{
		queue:     opts.Queue,
		audit:     opts.Audit,
		authToken: opts.AuthToken,
		logger:    opts.Logger,
	}, nil
}

// Authorize checks the Authorization header value against the configured
// bearer token.
func (s *IngestService) Authorize(header string) error {
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return fmt.Errorf("%w: missing bearer token", ErrUnauthorized)
	}
	if subtle.ConstantTimeCompare([]byte(token), []byte(s.authToken)) != 1 {
		return fmt.Errorf("%w: invalid token", ErrUnauthorized)
	}
	return nil
}

// Accept validates an inbound event and fans it out. It returns the number
// of jobs submitted to the queue.
func (s *IngestService) Accept(ctx context.Context, event *model.InboundEvent) (int, error) {
	if err := event.Validate(); err != nil {
		metrics.EventsRejected.WithLabelValues("invalid").Inc()
		return 0, fmt.Errorf("%w: %w", ErrInvalidPayload, err)
	}
	if !event.EventType.Valid() {
		s.logger.WarnContext(ctx, "unrecognized event type, routing to fallback",
			"event_id", event.ID, "event_type", event.EventType)
	}
	metrics.EventsIngested.WithLabelValues(string(event.EventType)).Inc()
	return s.enqueueNotificationJobs(ctx, event), nil
}

// enqueueNotificationJobs writes a queued audit record and submits a job for
// every routed channel. A failure on one channel does not stop the others;
// the count of jobs that made it into the queue is returned.
func (s *IngestService) enqueueNotificationJobs(
	ctx context.Context,
	event *model.InboundEvent,
) int {
	channels, priority := routing.ChannelsFor(event.EventType)

	submitted := 0
	for _, channel := range channels {
		job := model.NewNotificationJob(event, channel, priority)

		rec := model.NewAuditRecord(job.RecordID, channel.TaskName())
		if err := s.audit.Create(ctx, rec); err != nil {
			s.logger.ErrorContext(ctx, "audit create failed",
				"event_id", event.ID, "channel", channel, "error", err)
		} else {
			job.AuditID = rec.ID
		}

		if err := s.queue.Submit(job); err != nil {
			s.logger.ErrorContext(ctx, "job submit failed",
				"event_id", event.ID, "channel", channel, "error", err)
			s.failQueuedRecord(ctx, rec, err)
			continue
		}
		submitted++
	}

	if submitted < len(channels) {
		s.logger.WarnContext(ctx, "partial fan-out",
			"event_id", event.ID, "submitted", submitted, "channels", len(channels))
	}
	s.logger.InfoContext(ctx, "event fanned out",
		"event_id", event.ID,
		"event_type", event.EventType,
		"priority", priority,
		"channels", len(channels),
		"submitted", submitted)
	return submitted
}

// failQueuedRecord closes out the audit record of a job that never made it
// into the queue, so no record is left queued forever.
func (s *IngestService) failQueuedRecord(ctx context.Context, rec *model.AuditRecord, cause error) {
	if rec.ID == 0 {
		return
	}
	if err := rec.MarkFailed(timeNow(), "not enqueued: "+cause.Error()); err != nil {
		return
	}
	if err := s.audit.Save(ctx, rec); err != nil {
		s.logger.ErrorContext(ctx, "audit save failed",
			"record_id", rec.RecordID, "error", err)
	}
}
