package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInboundEvent_Validate(t *testing.T) {
	valid := &InboundEvent{
		ID:        "evt-1",
		EventType: EventTypeOrderCreate,
		Data:      EventData{"orderId": "ord-9"},
	}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name  string
		event *InboundEvent
	}{
		{"nil event", nil},
		{"missing id", &InboundEvent{EventType: EventTypeOrderCreate, Data: EventData{"k": "v"}}},
		{"blank id", &InboundEvent{ID: "  ", EventType: EventTypeOrderCreate, Data: EventData{"k": "v"}}},
		{"missing type", &InboundEvent{ID: "evt-1", Data: EventData{"k": "v"}}},
		{"empty data", &InboundEvent{ID: "evt-1", EventType: EventTypeOrderCreate}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Error(t, tt.event.Validate())
		})
	}
}

func TestEventType_Valid(t *testing.T) {
	assert.True(t, EventTypePosSave.Valid())
	assert.True(t, EventTypeOrderCreate.Valid())
	assert.True(t, EventTypeOrderUpdate.Valid())
	assert.True(t, EventTypePaymentComplete.Valid())
	assert.False(t, EventType("refund").Valid())
	assert.False(t, EventType("").Valid())
}

func TestEventType_UnmarshalText_NormalizesWithoutRejecting(t *testing.T) {
	var et EventType
	require.NoError(t, et.UnmarshalText([]byte(" Payment_Complete ")))
	assert.Equal(t, EventTypePaymentComplete, et)

	// Unknown types decode fine; routing handles the fallback.
	require.NoError(t, et.UnmarshalText([]byte("refund")))
	assert.Equal(t, EventType("refund"), et)
}

func TestEventData_StringOr(t *testing.T) {
	data := EventData{
		"name":   "Ada",
		"empty":  "",
		"amount": 42.5,
		"count":  3,
		"flag":   true,
		"absent": nil,
	}

	assert.Equal(t, "Ada", data.StringOr("name", "N/A"))
	assert.Equal(t, "N/A", data.StringOr("empty", "N/A"))
	assert.Equal(t, "N/A", data.StringOr("missing", "N/A"))
	assert.Equal(t, "N/A", data.StringOr("absent", "N/A"))
	assert.Equal(t, "42.5", data.StringOr("amount", "N/A"))
	assert.Equal(t, "3", data.StringOr("count", "N/A"))
	assert.Equal(t, "true", data.StringOr("flag", "N/A"))
}

func TestEventData_Items(t *testing.T) {
	data := EventData{
		"items": []any{
			map[string]any{"name": "Coffee", "quantity": 2},
			"not-an-object",
			map[string]any{"name": "Tea"},
		},
	}

	items := data.Items()
	require.Len(t, items, 2)
	assert.Equal(t, "Coffee", items[0]["name"])
	assert.Equal(t, "Tea", items[1]["name"])

	assert.Nil(t, EventData{}.Items())
	assert.Nil(t, EventData{"items": "oops"}.Items())
}

func TestEventData_Clone_IsIndependent(t *testing.T) {
	orig := EventData{"orderId": "ord-1"}
	clone := orig.Clone()

	clone["orderId"] = "ord-2"
	assert.Equal(t, "ord-1", orig.StringOr("orderId", ""))

	assert.Nil(t, EventData(nil).Clone())
}

func TestNewNotificationJob_DerivesIDAndClonesData(t *testing.T) {
	event := &InboundEvent{
		ID:        "evt-7",
		EventType: EventTypePaymentComplete,
		Data:      EventData{"amount": "12.00"},
	}

	job := NewNotificationJob(event, ChannelSMS, 1)

	assert.Equal(t, "evt-7:sms", job.ID)
	assert.Equal(t, "evt-7", job.RecordID)
	assert.Equal(t, EventTypePaymentComplete, job.EventType)
	assert.Equal(t, ChannelSMS, job.Channel)
	assert.Equal(t, 1, job.Metadata.Priority)
	assert.Equal(t, 0, job.Metadata.RetryCount)

	// Mutating the event payload must not leak into the job.
	event.Data["amount"] = "99.00"
	assert.Equal(t, "12.00", job.Data.StringOr("amount", ""))
}
