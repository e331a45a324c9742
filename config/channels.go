package config

import "strings"

// WebhookConfig contains inbound webhook validation configuration.
type WebhookConfig struct {
	// AuthToken is the bearer token inbound webhooks must present.
	AuthToken string `env:"WEBHOOK_AUTH_TOKEN" envDefault:""`
}

// SMSConfig contains SMS channel provider configuration.
type SMSConfig struct {
	// Provider selects the SMS sender implementation: twilio, sns, or log.
	Provider string `env:"SMS_PROVIDER" envDefault:"log"`

	// GatewayURL is the HTTP endpoint of the SMS gateway (twilio/sns).
	GatewayURL string `env:"SMS_GATEWAY_URL" envDefault:""`

	// GatewayToken is the bearer token for the SMS gateway.
	GatewayToken string `env:"SMS_GATEWAY_TOKEN" envDefault:""`

	// From is the sender number or identity.
	From string `env:"SMS_FROM" envDefault:""`

	// DefaultRecipients always receive SMS notifications, in addition to the
	// recipients extracted from the event payload.
	DefaultRecipients []string `env:"SMS_DEFAULT_RECIPIENTS" envDefault:""`

	// CountryCode is prefixed to bare 10-digit domestic numbers.
	CountryCode string `env:"SMS_COUNTRY_CODE" envDefault:"+1"`
}

// Sanitize applies guardrails to SMS configuration values.
func (s *SMSConfig) Sanitize() {
	s.Provider = strings.ToLower(strings.TrimSpace(s.Provider))
	if !strings.HasPrefix(s.CountryCode, "+") {
		s.CountryCode = "+" + strings.TrimSpace(s.CountryCode)
	}
	s.DefaultRecipients = trimList(s.DefaultRecipients)
}

// EmailConfig contains email channel provider configuration.
type EmailConfig struct {
	// Provider selects the email sender implementation: postmark or log.
	Provider string `env:"EMAIL_PROVIDER" envDefault:"log"`

	// From is the verified sender address.
	From string `env:"EMAIL_FROM" envDefault:"notifier@localhost"`

	// PostmarkServerToken authenticates against the Postmark message API.
	PostmarkServerToken string `env:"POSTMARK_SERVER_TOKEN" envDefault:""`

	// PostmarkAccountToken authenticates against the Postmark account API.
	PostmarkAccountToken string `env:"POSTMARK_ACCOUNT_TOKEN" envDefault:""`

	// DefaultRecipients always receive email notifications.
	DefaultRecipients []string `env:"EMAIL_DEFAULT_RECIPIENTS" envDefault:""`
}

// Sanitize applies guardrails to email configuration values.
func (e *EmailConfig) Sanitize() {
	e.Provider = strings.ToLower(strings.TrimSpace(e.Provider))
	e.DefaultRecipients = trimList(e.DefaultRecipients)
}

// WhatsAppConfig contains WhatsApp channel provider configuration.
type WhatsAppConfig struct {
	// Provider selects the WhatsApp sender implementation: twilio, business, or log.
	Provider string `env:"WHATSAPP_PROVIDER" envDefault:"log"`

	// GatewayURL is the HTTP endpoint of the WhatsApp gateway.
	GatewayURL string `env:"WHATSAPP_GATEWAY_URL" envDefault:""`

	// GatewayToken is the bearer token for the WhatsApp gateway.
	GatewayToken string `env:"WHATSAPP_GATEWAY_TOKEN" envDefault:""`

	// From is the sender identity.
	From string `env:"WHATSAPP_FROM" envDefault:""`

	// DefaultRecipients always receive WhatsApp notifications.
	DefaultRecipients []string `env:"WHATSAPP_DEFAULT_RECIPIENTS" envDefault:""`
}

// Sanitize applies guardrails to WhatsApp configuration values.
func (w *WhatsAppConfig) Sanitize() {
	w.Provider = strings.ToLower(strings.TrimSpace(w.Provider))
	w.DefaultRecipients = trimList(w.DefaultRecipients)
}

// trimList drops empty entries and surrounding whitespace from an env list.
func trimList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, v := range in {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
