package recipients

import (
	"strings"

	"github.com/posbridge/notifier/internal/domain/model"
)

// Defaults holds the operator-configured default recipient lists per channel.
// Defaults are taken as already canonical and are not normalized.
type Defaults struct {
	SMS      []string
	Email    []string
	WhatsApp []string
}

// ForSMS resolves SMS recipients from the customer and merchant phone fields
// plus the configured defaults, normalized and deduplicated.
func ForSMS(data model.EventData, defaults []string, countryCode string) []string {
	out := make([]string, 0, len(defaults)+2)
	for _, key := range []string{"customerPhone", "merchantPhone"} {
		if phone, ok := NormalizePhone(data.StringOr(key, ""), countryCode); ok {
			out = append(out, phone)
		}
	}
	out = append(out, defaults...)
	return dedupe(out)
}

// ForEmail resolves email recipients from the customer and merchant email
// fields plus the configured defaults, deduplicated.
func ForEmail(data model.EventData, defaults []string) []string {
	out := make([]string, 0, len(defaults)+2)
	for _, key := range []string{"customerEmail", "merchantEmail"} {
		if addr := strings.TrimSpace(data.StringOr(key, "")); addr != "" {
			out = append(out, addr)
		}
	}
	out = append(out, defaults...)
	return dedupe(out)
}

// ForWhatsApp resolves WhatsApp recipients. Dedicated WhatsApp fields are
// taken as-is (they already carry a country code); a plain customer phone is
// normalized before inclusion.
func ForWhatsApp(data model.EventData, defaults []string, countryCode string) []string {
	out := make([]string, 0, len(defaults)+3)
	if addr := strings.TrimSpace(data.StringOr("customerWhatsapp", "")); addr != "" {
		out = append(out, addr)
	}
	if phone, ok := NormalizePhone(data.StringOr("customerPhone", ""), countryCode); ok {
		out = append(out, phone)
	}
	if addr := strings.TrimSpace(data.StringOr("merchantWhatsapp", "")); addr != "" {
		out = append(out, addr)
	}
	out = append(out, defaults...)
	return dedupe(out)
}

// dedupe removes duplicates while preserving first-seen order.
func dedupe(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, v := range in {
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
