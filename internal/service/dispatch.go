// Package service implements event ingestion, fan-out, and per-channel
// dispatch for the notifier pipeline.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/posbridge/notifier/internal/core"
	"github.com/posbridge/notifier/internal/domain/model"
	"github.com/posbridge/notifier/internal/domain/recipients"
)

var (
	// ErrUnknownChannel is returned when a job carries a channel no
	// provider is wired for.
	ErrUnknownChannel = errors.New("unknown notification channel")
	// ErrNoRecipients is returned when recipient resolution yields an
	// empty list.
	ErrNoRecipients = errors.New("no recipients resolved")
	// ErrAllSendsFailed is returned when every resolved recipient failed.
	ErrAllSendsFailed = errors.New("all sends failed")
)

// DefaultsSource supplies the current per-channel default recipient lists.
// Implementations may reload their lists at runtime.
type DefaultsSource interface {
	Defaults() recipients.Defaults
}

// StaticDefaults is a DefaultsSource with fixed lists, used when no
// channels file is configured.
type StaticDefaults recipients.Defaults

// Defaults implements DefaultsSource.
func (s StaticDefaults) Defaults() recipients.Defaults { return recipients.Defaults(s) }

// DispatchServiceOptions configures a DispatchService. Audit, SMS, Email,
// and WhatsApp are required.
type DispatchServiceOptions struct {
	Audit       core.AuditLogRepository
	SMS         core.SMSProvider
	Email       core.EmailProvider
	WhatsApp    core.WhatsAppProvider
	Recipients  DefaultsSource
	CountryCode string
	Logger      *slog.Logger
	Now         func() time.Time
}

// DispatchService executes one notification job attempt: it resolves
// recipients, renders the message, invokes the channel provider, and writes
// exactly one audit record reflecting the attempt's outcome.
type DispatchService struct {
	audit       core.AuditLogRepository
	sms         core.SMSProvider
	email       core.EmailProvider
	whatsapp    core.WhatsAppProvider
	recipients  DefaultsSource
	countryCode string
	logger      *slog.Logger
	now         func() time.Time
}

// NewDispatchService builds a DispatchService from opts.
func NewDispatchService(opts DispatchServiceOptions) (*DispatchService, error) {
	if opts.Audit == nil {
		return nil, errors.New("audit repository is required")
	}
	if opts.SMS == nil || opts.Email == nil || opts.WhatsApp == nil {
		return nil, errors.New("all channel providers are required")
	}
	if opts.Recipients == nil {
		opts.Recipients = StaticDefaults{}
	}
	if opts.CountryCode == "" {
		opts.CountryCode = recipients.DefaultCountryCode
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &DispatchService{
		audit:       opts.Audit,
		sms:         opts.SMS,
		email:       opts.Email,
		whatsapp:    opts.WhatsApp,
		recipients:  opts.Recipients,
		countryCode: opts.CountryCode,
		logger:      opts.Logger,
		now:         opts.Now,
	}, nil
}

// Dispatch runs one attempt for job. The first attempt reuses the audit
// record written at submission time; each retry attempt gets a fresh record.
// The record is persisted exactly once, in its terminal state.
func (s *DispatchService) Dispatch(
	ctx context.Context,
	job *model.NotificationJob,
) (*core.DispatchResult, error) {
	rec := s.attemptRecord(job)
	if err := rec.MarkProcessing(); err != nil {
		return nil, fmt.Errorf("audit transition: %w", err)
	}

	result, sendErr := s.send(ctx, job)

	if sendErr != nil {
		if err := rec.MarkFailed(s.now(), sendErr.Error()); err != nil {
			s.logger.ErrorContext(ctx, "audit transition failed",
				"job_id", job.ID, "error", err)
		}
	} else {
		if err := rec.MarkSuccess(s.now(), result.Message); err != nil {
			s.logger.ErrorContext(ctx, "audit transition failed",
				"job_id", job.ID, "error", err)
		}
	}

	if err := s.audit.Save(ctx, rec); err != nil {
		// The delivery outcome stands; losing the trail entry is logged,
		// not retried.
		s.logger.ErrorContext(ctx, "audit save failed",
			"job_id", job.ID,
			"record_id", rec.RecordID,
			"status", rec.Status,
			"error", err)
	}

	return result, sendErr
}

// attemptRecord returns the audit record for this attempt: the submission
// record on the first attempt, a fresh one on retries.
func (s *DispatchService) attemptRecord(job *model.NotificationJob) *model.AuditRecord {
	rec := model.NewAuditRecord(job.RecordID, job.Channel.TaskName())
	if job.Metadata.RetryCount == 0 {
		rec.ID = job.AuditID
	}
	return rec
}

func (s *DispatchService) send(
	ctx context.Context,
	job *model.NotificationJob,
) (*core.DispatchResult, error) {
	defaults := s.recipients.Defaults()

	switch job.Channel {
	case model.ChannelSMS:
		to := recipients.ForSMS(job.Data, defaults.SMS, s.countryCode)
		return s.sendSMS(ctx, job, to)
	case model.ChannelEmail:
		to := recipients.ForEmail(job.Data, defaults.Email)
		return s.sendEmail(ctx, job, to)
	case model.ChannelWhatsApp:
		to := recipients.ForWhatsApp(job.Data, defaults.WhatsApp, s.countryCode)
		return s.sendWhatsApp(ctx, job, to)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownChannel, job.Channel)
	}
}

func (s *DispatchService) sendSMS(
	ctx context.Context,
	job *model.NotificationJob,
	to []string,
) (*core.DispatchResult, error) {
	if len(to) == 0 {
		return nil, fmt.Errorf("sms: %w", ErrNoRecipients)
	}
	body := textMessage(job.EventType, job.Data)

	sent := 0
	var lastErr error
	for _, rcpt := range to {
		if err := s.sms.SendSMS(ctx, rcpt, body); err != nil {
			lastErr = err
			s.logger.ErrorContext(ctx, "sms send failed",
				"job_id", job.ID, "to", rcpt, "error", err)
			continue
		}
		sent++
	}
	if sent == 0 {
		return nil, fmt.Errorf("sms: %w: %w", ErrAllSendsFailed, lastErr)
	}
	return &core.DispatchResult{
		JobID:      job.ID,
		Channel:    model.ChannelSMS,
		Recipients: to,
		Message:    fmt.Sprintf("SMS sent to %d of %d recipient(s)", sent, len(to)),
	}, nil
}

func (s *DispatchService) sendEmail(
	ctx context.Context,
	job *model.NotificationJob,
	to []string,
) (*core.DispatchResult, error) {
	if len(to) == 0 {
		return nil, fmt.Errorf("email: %w", ErrNoRecipients)
	}
	subject := emailSubject(job.EventType, job.Data)
	body := emailBody(job.EventType, job.Data)

	delivery, err := s.email.SendEmail(ctx, to, subject, body, true)
	if err != nil {
		return nil, fmt.Errorf("email: %w", err)
	}
	return &core.DispatchResult{
		JobID:      job.ID,
		Channel:    model.ChannelEmail,
		Recipients: delivery.Accepted,
		Message: fmt.Sprintf("Email send summary → Successful: %s, Failed: %s.",
			joinOrNone(delivery.Accepted), joinOrNone(delivery.Rejected)),
	}, nil
}

// joinOrNone renders an address list for the audit trail.
func joinOrNone(addrs []string) string {
	if len(addrs) == 0 {
		return "None"
	}
	return strings.Join(addrs, ", ")
}

func (s *DispatchService) sendWhatsApp(
	ctx context.Context,
	job *model.NotificationJob,
	to []string,
) (*core.DispatchResult, error) {
	if len(to) == 0 {
		return nil, fmt.Errorf("whatsapp: %w", ErrNoRecipients)
	}
	body := textMessage(job.EventType, job.Data)

	sent := 0
	var lastErr error
	for _, rcpt := range to {
		if err := s.whatsapp.SendMessage(ctx, rcpt, body); err != nil {
			lastErr = err
			s.logger.ErrorContext(ctx, "whatsapp send failed",
				"job_id", job.ID, "to", rcpt, "error", err)
			continue
		}
		sent++
	}
	if sent == 0 {
		return nil, fmt.Errorf("whatsapp: %w: %w", ErrAllSendsFailed, lastErr)
	}
	return &core.DispatchResult{
		JobID:      job.ID,
		Channel:    model.ChannelWhatsApp,
		Recipients: to,
		Message:    fmt.Sprintf("WhatsApp sent to %d of %d recipient(s)", sent, len(to)),
	}, nil
}
