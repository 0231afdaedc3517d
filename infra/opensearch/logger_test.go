package opensearch

import (
	"strings"
	"testing"
)

func TestSanitizeForLog(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		redacted []string
		kept     []string
	}{
		{
			name:     "JSON service key",
			input:    `{"serviceKey":"24ade73c-98cf-47b3-99be-cc7b867b3080","Reference":"ORDER-001"}`,
			redacted: []string{"24ade73c-98cf-47b3-99be-cc7b867b3080"},
			kept:     []string{"ORDER-001"},
		},
		{
			name:     "JSON webhook secret with spacing",
			input:    `{"webhookSecret" : "whsec_4f5e8a9b", "Amount": "79900"}`,
			redacted: []string{"whsec_4f5e8a9b"},
			kept:     []string{"79900"},
		},
		{
			name:     "Form encoded api key",
			input:    "apiKey=sk_live_abc123&Reference=ORDER-001",
			redacted: []string{"sk_live_abc123"},
			kept:     []string{"ORDER-001"},
		},
		{
			name:  "Nothing sensitive",
			input: `{"Reference":"ORDER-001","Amount":"79900"}`,
			kept:  []string{"ORDER-001", "79900"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SanitizeForLog(tt.input)
			for _, secret := range tt.redacted {
				if strings.Contains(got, secret) {
					t.Errorf("SanitizeForLog() = %q, still contains %q", got, secret)
				}
				if !strings.Contains(got, "***REDACTED***") {
					t.Errorf("SanitizeForLog() = %q, missing redaction marker", got)
				}
			}
			for _, keep := range tt.kept {
				if !strings.Contains(got, keep) {
					t.Errorf("SanitizeForLog() = %q, dropped %q", got, keep)
				}
			}
		})
	}
}
