package model

import (
	"fmt"
	"strings"
)

// Channel represents a notification delivery medium.
//
//nolint:recvcheck // UnmarshalText needs pointer receiver, Valid needs value receiver
type Channel string

const (
	// ChannelSMS delivers notifications as text messages.
	ChannelSMS Channel = "sms"
	// ChannelEmail delivers notifications as email.
	ChannelEmail Channel = "email"
	// ChannelWhatsApp delivers notifications as WhatsApp messages.
	ChannelWhatsApp Channel = "whatsapp"
)

// Valid returns true if the Channel is one of the supported delivery channels.
func (c Channel) Valid() bool {
	return c == ChannelSMS || c == ChannelEmail || c == ChannelWhatsApp
}

// UnmarshalText implements encoding.TextUnmarshaler for Channel.
func (c *Channel) UnmarshalText(text []byte) error {
	v := strings.ToLower(strings.TrimSpace(string(text)))
	ch := Channel(v)
	if ch.Valid() {
		*c = ch
		return nil
	}
	return fmt.Errorf("invalid Channel: %q", v)
}

// TaskName returns the channel's task name as recorded in the audit log,
// e.g. "send-email".
func (c Channel) TaskName() string {
	return "send-" + string(c)
}

// JobMetadata carries per-job scheduling bookkeeping. Priority is
// informational only; the queue does not reorder execution by it.
type JobMetadata struct {
	RetryCount int `json:"retryCount"`
	Priority   int `json:"priority"`
	Delay      int `json:"delay"`
}

// NotificationJob is one (event, channel) pairing submitted to the queue for
// dispatch. The payload is immutable; only Metadata.RetryCount mutates as
// retries occur.
type NotificationJob struct {
	ID        string      `json:"jobId"`
	RecordID  string      `json:"recordId"`
	EventType EventType   `json:"eventType"`
	Channel   Channel     `json:"channel"`
	Data      EventData   `json:"data"`
	Metadata  JobMetadata `json:"metadata"`

	// AuditID references the audit record written at submission time; the
	// first dispatch attempt reuses it.
	AuditID int64 `json:"-"`
}

// NewNotificationJob builds the job for one channel of an accepted event.
// The job ID is derived from the event ID and channel, so exactly one job
// exists per (event, channel) pair.
func NewNotificationJob(event *InboundEvent, channel Channel, priority int) *NotificationJob {
	return &NotificationJob{
		ID:        event.ID + ":" + string(channel),
		RecordID:  event.ID,
		EventType: event.EventType,
		Channel:   channel,
		Data:      event.Data.Clone(),
		Metadata: JobMetadata{
			RetryCount: 0,
			Priority:   priority,
			Delay:      0,
		},
	}
}
