package provider

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/posbridge/notifier/config"
	"github.com/posbridge/notifier/internal/core"
)

// NewWhatsAppProvider selects the WhatsApp sender implementation for the
// configured vendor.
func NewWhatsAppProvider(cfg config.WhatsAppConfig, logger *slog.Logger) (core.WhatsAppProvider, error) {
	switch cfg.Provider {
	case "twilio", "business":
		if cfg.GatewayURL == "" {
			return nil, fmt.Errorf("whatsapp provider %q: WHATSAPP_GATEWAY_URL is required", cfg.Provider)
		}
		return &gatewayWhatsAppSender{
			gateway: gatewayClient{
				client:   defaultHTTPClient(),
				endpoint: cfg.GatewayURL,
				token:    cfg.GatewayToken,
			},
			vendor: cfg.Provider,
			from:   cfg.From,
			logger: logger,
		}, nil
	case "log", "":
		return &logWhatsAppSender{logger: logger}, nil
	default:
		return nil, fmt.Errorf("unknown whatsapp provider %q", cfg.Provider)
	}
}

// gatewayWhatsAppSender delivers messages through a Twilio or WhatsApp
// Business API compatible HTTP gateway.
type gatewayWhatsAppSender struct {
	gateway gatewayClient
	vendor  string
	from    string
	logger  *slog.Logger
}

func (s *gatewayWhatsAppSender) SendMessage(ctx context.Context, to, message string) error {
	payload := map[string]string{"from": s.from, "to": to, "body": message}
	if err := s.gateway.post(ctx, payload); err != nil {
		return fmt.Errorf("%s whatsapp to %s: %w", s.vendor, to, err)
	}
	if s.logger != nil {
		s.logger.InfoContext(ctx, "whatsapp sent", "provider", s.vendor, "to", to)
	}
	return nil
}

// logWhatsAppSender records sends without delivering; used in development.
type logWhatsAppSender struct {
	logger *slog.Logger
}

func (s *logWhatsAppSender) SendMessage(ctx context.Context, to, message string) error {
	if s.logger != nil {
		s.logger.InfoContext(ctx, "whatsapp send (log provider)", "to", to, "length", len(message))
	}
	return nil
}
