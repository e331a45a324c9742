package httpx

import (
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/posbridge/notifier/internal/service"
)

// RouterServices holds all the services needed by the HTTP router.
type RouterServices struct {
	Ingest *service.IngestService
	DB     Pinger // optional
	Logger *slog.Logger
}

// NewRouter creates and configures the HTTP router.
func NewRouter(services RouterServices) http.Handler {
	mux := http.NewServeMux()

	webhookHandlers := &WebhookHandlers{Svc: services.Ingest}
	healthHandlers := &HealthHandlers{DB: services.DB}

	// Inbound event sources. POS terminals post to /webhooks/pos; the
	// generic path serves integration smoke checks.
	mux.HandleFunc("POST /webhooks/pos", webhookHandlers.HandleEvent)
	mux.HandleFunc("POST /webhooks/test", webhookHandlers.HandleEvent)

	mux.HandleFunc("GET /healthz", healthHandlers.HandleHealthz)
	mux.HandleFunc("GET /readyz", healthHandlers.HandleReadyz)
	mux.Handle("GET /metrics", promhttp.Handler())

	logger := services.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var handler http.Handler = mux
	handler = Logging(logger)(handler)
	handler = RequestID()(handler)
	handler = Recover(logger)(handler)
	return handler
}
