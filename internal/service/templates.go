package service

import (
	"fmt"
	"strings"

	"github.com/posbridge/notifier/internal/domain/model"
)

// textMessage renders the short-form body used for SMS and WhatsApp.
func textMessage(eventType model.EventType, data model.EventData) string {
	switch eventType {
	case model.EventTypePaymentComplete:
		return fmt.Sprintf("Payment of %s received for order %s. Ref: %s.",
			data.StringOr("amount", "N/A"),
			data.StringOr("orderId", "N/A"),
			data.StringOr("paymentRef", "N/A"))
	case model.EventTypeOrderCreate:
		return fmt.Sprintf("New order %s placed by %s. Total: %s.",
			data.StringOr("orderId", "N/A"),
			data.StringOr("customerName", "customer"),
			data.StringOr("total", "N/A"))
	case model.EventTypeOrderUpdate:
		return fmt.Sprintf("Order %s updated. Status: %s.",
			data.StringOr("orderId", "N/A"),
			data.StringOr("status", "N/A"))
	case model.EventTypePosSave:
		return fmt.Sprintf("POS transaction %s saved for %s. Amount: %s.",
			data.StringOr("transactionId", "N/A"),
			data.StringOr("customerName", "customer"),
			data.StringOr("amount", "N/A"))
	default:
		return fmt.Sprintf("Notification for event %s.", eventType)
	}
}

// emailSubject renders the subject line for email dispatch.
func emailSubject(eventType model.EventType, data model.EventData) string {
	switch eventType {
	case model.EventTypePaymentComplete:
		return fmt.Sprintf("Payment received for order %s", data.StringOr("orderId", "N/A"))
	case model.EventTypeOrderCreate:
		return fmt.Sprintf("New order %s", data.StringOr("orderId", "N/A"))
	case model.EventTypeOrderUpdate:
		return fmt.Sprintf("Order %s updated", data.StringOr("orderId", "N/A"))
	case model.EventTypePosSave:
		return fmt.Sprintf("POS transaction %s saved", data.StringOr("transactionId", "N/A"))
	default:
		return fmt.Sprintf("Notification: %s", eventType)
	}
}

// emailBody renders an HTML body for email dispatch: the short-form
// message plus an item table when the payload carries line items.
func emailBody(eventType model.EventType, data model.EventData) string {
	var b strings.Builder
	b.WriteString("<p>")
	b.WriteString(textMessage(eventType, data))
	b.WriteString("</p>")

	items := data.Items()
	if len(items) > 0 {
		b.WriteString("<table><tr><th>Item</th><th>Qty</th><th>Price</th></tr>")
		for _, item := range items {
			fields := model.EventData(item)
			b.WriteString(fmt.Sprintf("<tr><td>%s</td><td>%s</td><td>%s</td></tr>",
				fields.StringOr("name", "N/A"),
				fields.StringOr("quantity", "1"),
				fields.StringOr("price", "N/A")))
		}
		b.WriteString("</table>")
	}
	return b.String()
}
