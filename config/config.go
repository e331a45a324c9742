package config

// AppConfig is the main application configuration struct that composes
// domain-specific configuration from separate files.
//
// Configuration is loaded from environment variables using the
// github.com/caarlos0/env library. See individual domain config
// files for details on available environment variables:
//   - database.go: Database configuration
//   - http.go: HTTP server configuration
//   - queue.go: Job queue configuration
//   - channels.go: Webhook auth and per-channel provider configuration
type AppConfig struct {
	// IsDev controls development mode behavior. In dev mode a missing
	// database is tolerated and the audit log falls back to memory.
	IsDev bool `env:"DEV" envDefault:"false"`

	// Database configuration
	Postgres DBConfig `envPrefix:"DB_"`

	// HTTP server configuration
	HTTP HTTPConfig

	// Job queue configuration
	Queue QueueConfig

	// Webhook ingestion configuration
	Webhook WebhookConfig

	// Per-channel provider configuration
	SMS      SMSConfig
	Email    EmailConfig
	WhatsApp WhatsAppConfig

	// ChannelsFile is an optional YAML file with per-channel default
	// recipient overrides, hot-reloaded on change.
	ChannelsFile string `env:"CHANNELS_CONFIG_FILE" envDefault:""`
}

// Sanitize applies guardrails to configuration values loaded from env.
// This should be called after loading configuration from environment variables.
func (c *AppConfig) Sanitize() {
	c.Queue.Sanitize()
	c.SMS.Sanitize()
	c.Email.Sanitize()
	c.WhatsApp.Sanitize()
}
