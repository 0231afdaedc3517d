package provider

import (
	"strings"
	"testing"
)

func TestValidateInitiationParams(t *testing.T) {
	tests := []struct {
		name        string
		params      InitiationParams
		wantErr     bool
		wantMissing []string
	}{
		{
			name: "Valid params",
			params: InitiationParams{
				Amount:        799.00,
				Reference:     "ORDER-001",
				CustomerEmail: "customer@example.com",
			},
			wantErr: false,
		},
		{
			name: "Zero amount",
			params: InitiationParams{
				Reference:     "ORDER-001",
				CustomerEmail: "customer@example.com",
			},
			wantErr:     true,
			wantMissing: []string{"amount"},
		},
		{
			name: "Negative amount",
			params: InitiationParams{
				Amount:        -5,
				Reference:     "ORDER-001",
				CustomerEmail: "customer@example.com",
			},
			wantErr:     true,
			wantMissing: []string{"amount"},
		},
		{
			name: "Missing reference",
			params: InitiationParams{
				Amount:        799.00,
				CustomerEmail: "customer@example.com",
			},
			wantErr:     true,
			wantMissing: []string{"reference"},
		},
		{
			name: "Missing email",
			params: InitiationParams{
				Amount:    799.00,
				Reference: "ORDER-001",
			},
			wantErr:     true,
			wantMissing: []string{"customerEmail"},
		},
		{
			name:        "Everything missing",
			params:      InitiationParams{},
			wantErr:     true,
			wantMissing: []string{"amount", "reference", "customerEmail"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateInitiationParams(tt.params)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateInitiationParams() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil {
				return
			}
			if !strings.Contains(err.Error(), "missing required parameters") {
				t.Errorf("error %q does not name missing parameters", err.Error())
			}
			for _, field := range tt.wantMissing {
				if !strings.Contains(err.Error(), field) {
					t.Errorf("error %q does not mention %q", err.Error(), field)
				}
			}
		})
	}
}

func TestValidateConfigFields(t *testing.T) {
	fields := []ConfigField{
		{Key: "serviceKey", Required: true, Type: "string", MinLength: 10, MaxLength: 64},
		{Key: "sandbox", Required: true, Type: "boolean"},
		{Key: "merchantID", Required: true, Type: "string", Pattern: `^M-\d+$`},
		{Key: "webhookSecret", Required: false, Type: "string", MinLength: 10},
	}

	valid := map[string]string{
		"serviceKey": "0123456789abcdef",
		"sandbox":    "true",
		"merchantID": "M-12345",
	}

	tests := []struct {
		name    string
		config  map[string]string
		wantErr string
	}{
		{
			name:   "Valid config",
			config: valid,
		},
		{
			name: "Missing required field",
			config: map[string]string{
				"sandbox":    "true",
				"merchantID": "M-12345",
			},
			wantErr: "required field 'serviceKey' is missing",
		},
		{
			name: "Empty required field",
			config: map[string]string{
				"serviceKey": "   ",
				"sandbox":    "true",
				"merchantID": "M-12345",
			},
			wantErr: "cannot be empty",
		},
		{
			name: "Bad boolean",
			config: map[string]string{
				"serviceKey": "0123456789abcdef",
				"sandbox":    "yes",
				"merchantID": "M-12345",
			},
			wantErr: "must be 'true' or 'false'",
		},
		{
			name: "Pattern mismatch",
			config: map[string]string{
				"serviceKey": "0123456789abcdef",
				"sandbox":    "true",
				"merchantID": "12345",
			},
			wantErr: "does not match required pattern",
		},
		{
			name: "Below minimum length",
			config: map[string]string{
				"serviceKey": "short",
				"sandbox":    "true",
				"merchantID": "M-12345",
			},
			wantErr: "at least 10 characters",
		},
		{
			name: "Above maximum length",
			config: map[string]string{
				"serviceKey": strings.Repeat("x", 65),
				"sandbox":    "true",
				"merchantID": "M-12345",
			},
			wantErr: "must not exceed 64 characters",
		},
		{
			name: "Optional field absent is fine",
			config: map[string]string{
				"serviceKey": "0123456789abcdef",
				"sandbox":    "false",
				"merchantID": "M-1",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateConfigFields("testpay", tt.config, fields)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("ValidateConfigFields() error = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatal("ValidateConfigFields() error = nil, want error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not contain %q", err.Error(), tt.wantErr)
			}
			if !strings.Contains(err.Error(), "testpay") {
				t.Errorf("error %q does not name the provider", err.Error())
			}
		})
	}
}
