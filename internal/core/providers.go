package core

import "context"

// EmailDelivery reports per-recipient outcome of an email send for providers
// that support partial delivery.
type EmailDelivery struct {
	Accepted []string
	Rejected []string
}

// SMSProvider sends a text message to a single recipient.
type SMSProvider interface {
	SendSMS(ctx context.Context, to, message string) error
}

// EmailProvider sends one email to a recipient list and reports which
// addresses were accepted and which were rejected.
type EmailProvider interface {
	SendEmail(
		ctx context.Context,
		to []string,
		subject, content string,
		isHTML bool,
	) (EmailDelivery, error)
}

// WhatsAppProvider sends a WhatsApp message to a single recipient.
type WhatsAppProvider interface {
	SendMessage(ctx context.Context, to, message string) error
}
