// Package routing maps event types to their notification channels and priority.
package routing

import "github.com/posbridge/notifier/internal/domain/model"

// Priority bounds; 1 is the highest priority, PriorityUnknown the lowest.
const (
	PriorityPaymentComplete = 1
	PriorityOrderCreate     = 2
	PriorityPosSave         = 3
	PriorityOrderUpdate     = 4
	PriorityUnknown         = 5
)

// ChannelsFor returns the ordered channel set and priority for an event type.
// Pure and total: unrecognized event types fall back to email at the lowest
// priority. Adding a new event type means extending this switch.
func ChannelsFor(t model.EventType) ([]model.Channel, int) {
	switch t {
	case model.EventTypePaymentComplete:
		return []model.Channel{model.ChannelSMS, model.ChannelEmail}, PriorityPaymentComplete
	case model.EventTypeOrderCreate:
		return []model.Channel{
			model.ChannelSMS,
			model.ChannelEmail,
			model.ChannelWhatsApp,
		}, PriorityOrderCreate
	case model.EventTypePosSave:
		return []model.Channel{model.ChannelSMS, model.ChannelEmail}, PriorityPosSave
	case model.EventTypeOrderUpdate:
		return []model.Channel{model.ChannelEmail}, PriorityOrderUpdate
	default:
		return []model.Channel{model.ChannelEmail}, PriorityUnknown
	}
}
