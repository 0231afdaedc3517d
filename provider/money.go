package provider

import (
	"math"
	"strconv"
)

// RandsToCents converts an amount in major currency units (Rand) to integer
// cents. Gateways expect integer minor units; rounding is half-up at the
// cent boundary, never truncation.
func RandsToCents(rands float64) int64 {
	return int64(math.Round(rands * 100))
}

// CentsToRands converts an amount in cents back to major currency units
func CentsToRands(cents int64) float64 {
	return float64(cents) / 100
}

// FormatCents renders a cent amount the way form-encoded gateways expect it
func FormatCents(cents int64) string {
	return strconv.FormatInt(cents, 10)
}

// ParseCents parses a gateway amount field carrying integer cents. Webhook
// payloads deliver the amount as a string; a missing or malformed field
// parses to zero.
func ParseCents(value string) int64 {
	if value == "" {
		return 0
	}
	cents, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		// Some gateways send "79900.00"; fall back to float parsing
		if f, ferr := strconv.ParseFloat(value, 64); ferr == nil {
			return int64(math.Round(f))
		}
		return 0
	}
	return cents
}
