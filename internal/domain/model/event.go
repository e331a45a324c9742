// Package model defines the core data types used throughout the notifier job pipeline.
package model

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// EventType represents the type of inbound business event.
//
//nolint:recvcheck // UnmarshalText needs pointer receiver, Valid needs value receiver
type EventType string

const (
	// EventTypePosSave represents a point-of-sale transaction save.
	EventTypePosSave EventType = "pos_save"
	// EventTypeOrderCreate represents a new order.
	EventTypeOrderCreate EventType = "order_create"
	// EventTypeOrderUpdate represents an order status change.
	EventTypeOrderUpdate EventType = "order_update"
	// EventTypePaymentComplete represents a completed payment.
	EventTypePaymentComplete EventType = "payment_complete"
)

// Valid returns true if the EventType is one of the known event types.
func (t EventType) Valid() bool {
	return t == EventTypePosSave || t == EventTypeOrderCreate ||
		t == EventTypeOrderUpdate || t == EventTypePaymentComplete
}

// UnmarshalText normalizes the incoming value without rejecting unknown
// types: routing sends unrecognized event types to the fallback channel, so
// decoding must let them through.
func (t *EventType) UnmarshalText(text []byte) error {
	*t = EventType(strings.ToLower(strings.TrimSpace(string(text))))
	return nil
}

// EventData carries the opaque key-value payload of an inbound event.
//
// Values are read through explicit-fallback accessors so template code can
// never silently render an absent field: every read either finds the key or
// applies the caller's fallback.
type EventData map[string]any

// StringOr returns the value under key rendered as a string, or fallback when
// the key is absent or empty.
func (d EventData) StringOr(key, fallback string) string {
	v, ok := d[key]
	if !ok || v == nil {
		return fallback
	}
	switch val := v.(type) {
	case string:
		if val == "" {
			return fallback
		}
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
	case bool:
		return strconv.FormatBool(val)
	default:
		return fmt.Sprint(val)
	}
}

// Items returns the "items" entry as a list of objects, or nil when absent or
// not list-shaped. Used by order templates.
func (d EventData) Items() []map[string]any {
	raw, ok := d["items"].([]any)
	if !ok {
		return nil
	}
	items := make([]map[string]any, 0, len(raw))
	for _, entry := range raw {
		if item, ok := entry.(map[string]any); ok {
			items = append(items, item)
		}
	}
	return items
}

// Clone returns a shallow copy of the data map. Jobs carry their own copy so
// that no two jobs share a mutable payload.
func (d EventData) Clone() EventData {
	if d == nil {
		return nil
	}
	out := make(EventData, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}

// KnownKeys returns the data keys notification templates and recipient
// resolution read for the given event type. Absent keys are rendered through
// the explicit fallback policy; these sets document what a well-formed payload
// carries.
func KnownKeys(t EventType) []string {
	switch t {
	case EventTypePosSave:
		return []string{"transactionId", "amount", "customerName"}
	case EventTypeOrderCreate:
		return []string{"orderId", "total", "customerName", "status", "items"}
	case EventTypeOrderUpdate:
		return []string{"orderId", "status", "previousStatus"}
	case EventTypePaymentComplete:
		return []string{"paymentRef", "amount", "paymentMethod", "orderId", "customerName"}
	default:
		return nil
	}
}

// InboundEvent is an externally triggered business occurrence accepted for
// notification fan-out. Immutable once accepted.
type InboundEvent struct {
	ID        string    `json:"id"`
	EventType EventType `json:"event_type"`
	Data      EventData `json:"data"`
	Timestamp string    `json:"timestamp"`
	Source    string    `json:"source,omitempty"`
}

// Validate checks the structural requirements for an inbound event.
func (e *InboundEvent) Validate() error {
	if e == nil {
		return errors.New("event is required")
	}
	if strings.TrimSpace(e.ID) == "" {
		return errors.New("event id is required")
	}
	if e.EventType == "" {
		return errors.New("event type is required")
	}
	if len(e.Data) == 0 {
		return errors.New("event data is required")
	}
	return nil
}
