// Package recipients resolves per-channel recipient lists from event payloads
// and configured defaults.
package recipients

import "strings"

// DefaultCountryCode is assumed for bare 10-digit domestic numbers.
const DefaultCountryCode = "+1"

// NormalizePhone canonicalizes a raw phone number for delivery:
// non-digit characters are stripped, a 10-digit number is assumed domestic
// and prefixed with the country code, an 11-digit number starting with the
// country code's leading digit is prefixed with "+", and any longer number is
// prefixed with "+" as-is. Anything else is invalid.
func NormalizePhone(raw, countryCode string) (string, bool) {
	if countryCode == "" {
		countryCode = DefaultCountryCode
	}

	var digits strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	clean := digits.String()
	ccDigits := strings.TrimPrefix(countryCode, "+")

	switch {
	case len(clean) == 10:
		return countryCode + clean, true
	case len(clean) == 11 && ccDigits != "" && clean[0] == ccDigits[0]:
		return "+" + clean, true
	case len(clean) > 10:
		return "+" + clean, true
	default:
		return "", false
	}
}
