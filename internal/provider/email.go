package provider

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mrz1836/postmark"

	"github.com/posbridge/notifier/config"
	"github.com/posbridge/notifier/internal/core"
)

// ErrAllRecipientsRejected is returned when an email send reached no
// recipient at all.
var ErrAllRecipientsRejected = errors.New("email rejected for all recipients")

// postmarkAPI is the subset of the Postmark client the sender uses.
type postmarkAPI interface {
	SendEmail(ctx context.Context, email postmark.Email) (postmark.EmailResponse, error)
}

// NewEmailProvider selects the email sender implementation for the
// configured vendor.
func NewEmailProvider(cfg config.EmailConfig, logger *slog.Logger) (core.EmailProvider, error) {
	switch cfg.Provider {
	case "postmark":
		if cfg.PostmarkServerToken == "" {
			return nil, errors.New(`email provider "postmark": POSTMARK_SERVER_TOKEN is required`)
		}
		if cfg.From == "" {
			return nil, errors.New(`email provider "postmark": EMAIL_FROM is required`)
		}
		return &postmarkSender{
			client: postmark.NewClient(cfg.PostmarkServerToken, cfg.PostmarkAccountToken),
			from:   cfg.From,
			logger: logger,
		}, nil
	case "log", "":
		return &logEmailSender{logger: logger}, nil
	default:
		return nil, fmt.Errorf("unknown email provider %q", cfg.Provider)
	}
}

// postmarkSender delivers email through the Postmark transactional API,
// one call per recipient so partial delivery can be reported.
type postmarkSender struct {
	client postmarkAPI
	from   string
	logger *slog.Logger
}

func (s *postmarkSender) SendEmail(
	ctx context.Context,
	to []string,
	subject, content string,
	isHTML bool,
) (core.EmailDelivery, error) {
	var delivery core.EmailDelivery
	var lastErr error

	for _, rcpt := range to {
		email := postmark.Email{
			From:    s.from,
			To:      rcpt,
			Subject: subject,
		}
		if isHTML {
			email.HTMLBody = content
		} else {
			email.TextBody = content
		}

		resp, err := s.client.SendEmail(ctx, email)
		switch {
		case err != nil:
			lastErr = err
			delivery.Rejected = append(delivery.Rejected, rcpt)
		case resp.ErrorCode > 0:
			lastErr = fmt.Errorf("postmark error %d: %s", resp.ErrorCode, resp.Message)
			delivery.Rejected = append(delivery.Rejected, rcpt)
		default:
			delivery.Accepted = append(delivery.Accepted, rcpt)
		}
	}

	if s.logger != nil {
		s.logger.InfoContext(ctx, "email sent",
			"provider", "postmark",
			"accepted", len(delivery.Accepted),
			"rejected", len(delivery.Rejected))
	}

	if len(to) > 0 && len(delivery.Accepted) == 0 {
		return delivery, fmt.Errorf("%w: %w", ErrAllRecipientsRejected, lastErr)
	}
	return delivery, nil
}

// logEmailSender accepts every recipient without delivering; used in
// development.
type logEmailSender struct {
	logger *slog.Logger
}

func (s *logEmailSender) SendEmail(
	ctx context.Context,
	to []string,
	subject, _ string,
	_ bool,
) (core.EmailDelivery, error) {
	if s.logger != nil {
		s.logger.InfoContext(ctx, "email send (log provider)", "to", to, "subject", subject)
	}
	return core.EmailDelivery{Accepted: append([]string(nil), to...)}, nil
}
