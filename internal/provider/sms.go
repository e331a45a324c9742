// Package provider implements the channel provider capability set: SMS,
// email, and WhatsApp senders selected per channel by configuration.
package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/posbridge/notifier/config"
	"github.com/posbridge/notifier/internal/core"
)

const maxErrorBodyBytes = 1024

// defaultHTTPClient bounds gateway calls independently of the per-attempt
// dispatch timeout.
func defaultHTTPClient() *http.Client {
	return &http.Client{Timeout: 15 * time.Second}
}

// NewSMSProvider selects the SMS sender implementation for the configured
// vendor. Vendor senders require a gateway URL; a missing one fails
// construction rather than blackholing jobs silently.
func NewSMSProvider(cfg config.SMSConfig, logger *slog.Logger) (core.SMSProvider, error) {
	switch cfg.Provider {
	case "twilio":
		if cfg.GatewayURL == "" {
			return nil, fmt.Errorf("sms provider %q: SMS_GATEWAY_URL is required", cfg.Provider)
		}
		return &twilioSMSSender{
			gateway: gatewayClient{
				client:   defaultHTTPClient(),
				endpoint: cfg.GatewayURL,
				token:    cfg.GatewayToken,
			},
			from:   cfg.From,
			logger: logger,
		}, nil
	case "sns":
		if cfg.GatewayURL == "" {
			return nil, fmt.Errorf("sms provider %q: SMS_GATEWAY_URL is required", cfg.Provider)
		}
		return &snsSMSSender{
			gateway: gatewayClient{
				client:   defaultHTTPClient(),
				endpoint: cfg.GatewayURL,
				token:    cfg.GatewayToken,
			},
			logger: logger,
		}, nil
	case "log", "":
		return &logSMSSender{logger: logger}, nil
	default:
		return nil, fmt.Errorf("unknown sms provider %q", cfg.Provider)
	}
}

// twilioSMSSender delivers messages through a Twilio-compatible HTTP gateway.
type twilioSMSSender struct {
	gateway gatewayClient
	from    string
	logger  *slog.Logger
}

func (s *twilioSMSSender) SendSMS(ctx context.Context, to, message string) error {
	payload := map[string]string{"From": s.from, "To": to, "Body": message}
	if err := s.gateway.post(ctx, payload); err != nil {
		return fmt.Errorf("twilio sms to %s: %w", to, err)
	}
	if s.logger != nil {
		s.logger.InfoContext(ctx, "sms sent", "provider", "twilio", "to", to)
	}
	return nil
}

// snsSMSSender delivers messages through an SNS-compatible publish endpoint.
type snsSMSSender struct {
	gateway gatewayClient
	logger  *slog.Logger
}

func (s *snsSMSSender) SendSMS(ctx context.Context, to, message string) error {
	payload := map[string]string{"PhoneNumber": to, "Message": message}
	if err := s.gateway.post(ctx, payload); err != nil {
		return fmt.Errorf("sns sms to %s: %w", to, err)
	}
	if s.logger != nil {
		s.logger.InfoContext(ctx, "sms sent", "provider", "sns", "to", to)
	}
	return nil
}

// logSMSSender records sends without delivering; used in development.
type logSMSSender struct {
	logger *slog.Logger
}

func (s *logSMSSender) SendSMS(ctx context.Context, to, message string) error {
	if s.logger != nil {
		s.logger.InfoContext(ctx, "sms send (log provider)", "to", to, "length", len(message))
	}
	return nil
}

// gatewayClient posts a JSON payload to a vendor gateway and treats any
// non-2xx response as a failed delivery.
type gatewayClient struct {
	client   *http.Client
	endpoint string
	token    string
}

func (g gatewayClient) post(ctx context.Context, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal gateway payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build gateway request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if g.token != "" {
		req.Header.Set("Authorization", "Bearer "+g.token)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("send gateway request: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close on a bounded body

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		return fmt.Errorf("gateway returned %d: %s", resp.StatusCode, string(snippet))
	}
	return nil
}
