package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/posbridge/notifier/config"
	"github.com/posbridge/notifier/internal/channelcfg"
	"github.com/posbridge/notifier/internal/core"
	"github.com/posbridge/notifier/internal/data"
	"github.com/posbridge/notifier/internal/domain/recipients"
	httpx "github.com/posbridge/notifier/internal/http"
	"github.com/posbridge/notifier/internal/provider"
	"github.com/posbridge/notifier/internal/queue"
	"github.com/posbridge/notifier/internal/service"
)

const shutdownWaitTimeout = 10 * time.Second

// ServiceContainer holds the wired application services.
type ServiceContainer struct {
	DB       *sql.DB // nil when the in-memory audit store is active
	Audit    core.AuditLogRepository
	Channels *channelcfg.Loader // nil when no channels file is configured
	Dispatch *service.DispatchService
	Queue    *queue.Queue
	Ingest   *service.IngestService
}

// Close releases resources held by the container.
func (c *ServiceContainer) Close() error {
	var errs []error
	if c.Channels != nil {
		if err := c.Channels.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close channels loader: %w", err))
		}
	}
	if c.DB != nil {
		if err := c.DB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close database: %w", err))
		}
	}
	return errors.Join(errs...)
}

// NewServices connects storage and wires the dispatch pipeline. In dev mode
// an unreachable database degrades to the in-memory audit store instead of
// failing startup.
func NewServices(ctx context.Context, cfg *config.AppConfig, logger *slog.Logger) (*ServiceContainer, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	c := &ServiceContainer{}

	audit, db, err := buildAuditStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	c.Audit = audit
	c.DB = db

	defaultsSource, loader, err := buildRecipientDefaults(cfg, logger)
	if err != nil {
		c.closeOnError(logger)
		return nil, err
	}
	c.Channels = loader

	dispatch, err := buildDispatchService(c.Audit, defaultsSource, cfg, logger)
	if err != nil {
		c.closeOnError(logger)
		return nil, err
	}
	c.Dispatch = dispatch

	q, err := queue.NewQueue(queue.Options{
		Dispatcher:      dispatch,
		Concurrency:     cfg.Queue.Concurrency,
		MaxRetries:      cfg.Queue.MaxRetries,
		RetryDelay:      cfg.Queue.RetryDelay(),
		Backoff:         cfg.Queue.Backoff,
		Depth:           cfg.Queue.Depth,
		DispatchTimeout: cfg.Queue.DispatchTimeout,
		Logger:          logger,
	})
	if err != nil {
		c.closeOnError(logger)
		return nil, fmt.Errorf("build queue: %w", err)
	}
	c.Queue = q

	ingest, err := service.NewIngestService(service.IngestServiceOptions{
		Queue:     q,
		Audit:     c.Audit,
		AuthToken: cfg.Webhook.AuthToken,
		Logger:    logger,
	})
	if err != nil {
		c.closeOnError(logger)
		return nil, fmt.Errorf("build ingest service: %w", err)
	}
	c.Ingest = ingest

	return c, nil
}

func (c *ServiceContainer) closeOnError(logger *slog.Logger) {
	if err := c.Close(); err != nil {
		logger.Error("cleanup after failed startup", "error", err)
	}
}

func buildAuditStore(
	ctx context.Context,
	cfg *config.AppConfig,
	logger *slog.Logger,
) (core.AuditLogRepository, *sql.DB, error) {
	db, err := ConnectDB(ctx, cfg.Postgres, logger)
	if err != nil {
		if !cfg.IsDev {
			return nil, nil, fmt.Errorf("connect audit database: %w", err)
		}
		logger.Warn("database unavailable, using in-memory audit store", "error", err)
		return data.NewMemoryAuditRepo(), nil, nil
	}
	return data.NewAuditRepo(db, logger), db, nil
}

func buildRecipientDefaults(
	cfg *config.AppConfig,
	logger *slog.Logger,
) (service.DefaultsSource, *channelcfg.Loader, error) {
	fallback := recipients.Defaults{
		SMS:      cfg.SMS.DefaultRecipients,
		Email:    cfg.Email.DefaultRecipients,
		WhatsApp: cfg.WhatsApp.DefaultRecipients,
	}
	if cfg.ChannelsFile == "" {
		return service.StaticDefaults(fallback), nil, nil
	}
	loader, err := channelcfg.NewLoader(cfg.ChannelsFile, fallback, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("load channels file: %w", err)
	}
	return loader, loader, nil
}

func buildDispatchService(
	audit core.AuditLogRepository,
	defaults service.DefaultsSource,
	cfg *config.AppConfig,
	logger *slog.Logger,
) (*service.DispatchService, error) {
	sms, err := provider.NewSMSProvider(cfg.SMS, logger)
	if err != nil {
		return nil, fmt.Errorf("build sms provider: %w", err)
	}
	email, err := provider.NewEmailProvider(cfg.Email, logger)
	if err != nil {
		return nil, fmt.Errorf("build email provider: %w", err)
	}
	whatsapp, err := provider.NewWhatsAppProvider(cfg.WhatsApp, logger)
	if err != nil {
		return nil, fmt.Errorf("build whatsapp provider: %w", err)
	}

	dispatch, err := service.NewDispatchService(service.DispatchServiceOptions{
		Audit:       audit,
		SMS:         sms,
		Email:       email,
		WhatsApp:    whatsapp,
		Recipients:  defaults,
		CountryCode: cfg.SMS.CountryCode,
		Logger:      logger,
	})
	if err != nil {
		return nil, fmt.Errorf("build dispatch service: %w", err)
	}
	return dispatch, nil
}

// RunServicesWithShutdown starts the queue workers and the HTTP server and
// blocks until a shutdown signal arrives or either fails. Shutdown stops
// intake first, then drains in-flight jobs.
func RunServicesWithShutdown(cfg *config.AppConfig, services *ServiceContainer, logger *slog.Logger) error {
	if cfg == nil || services == nil {
		return errors.New("config and services are required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var dbPinger httpx.Pinger
	if services.DB != nil {
		dbPinger = services.DB
	}
	server := &http.Server{
		Addr: cfg.HTTP.Addr,
		Handler: httpx.NewRouter(httpx.RouterServices{
			Ingest: services.Ingest,
			DB:     dbPinger,
			Logger: logger,
		}),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("queue workers starting", "concurrency", cfg.Queue.Concurrency)
		if err := services.Queue.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("queue: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		logger.Info("http server starting", "addr", cfg.HTTP.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownWaitTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http shutdown: %w", err)
		}
		return nil
	})

	return g.Wait()
}
