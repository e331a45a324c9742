// Command notifier runs the webhook notification service: it accepts
// inbound business events over HTTP, fans them out to SMS, email, and
// WhatsApp jobs, and dispatches them through a bounded retrying queue.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/posbridge/notifier/internal/bootstrap"
)

func main() {
	ctx := context.Background()
	logger := bootstrap.InitLogger()
	if err := run(ctx, logger); err != nil {
		logger.ErrorContext(ctx, "fatal error", "error", err)
		os.Exit(1) //nolint:forbidigo // Main entrypoint should exit with non-zero status on fatal errors.
	}
}

func run(ctx context.Context, logger *slog.Logger) error {
	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		return err
	}

	logger.InfoContext(ctx, "starting notifier",
		"addr", cfg.HTTP.Addr,
		"dev", cfg.IsDev,
		"queue_concurrency", cfg.Queue.Concurrency,
		"queue_max_retries", cfg.Queue.MaxRetries,
		"sms_provider", cfg.SMS.Provider,
		"email_provider", cfg.Email.Provider,
		"whatsapp_provider", cfg.WhatsApp.Provider)

	services, err := bootstrap.NewServices(ctx, &cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := services.Close(); cerr != nil {
			logger.ErrorContext(ctx, "close services failed", "error", cerr)
		}
	}()

	return bootstrap.RunServicesWithShutdown(&cfg, services, logger)
}
