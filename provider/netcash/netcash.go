package netcash

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"github.com/circletel/payments/infra/logger"
	"github.com/circletel/payments/provider"
)

const (
	providerName = "netcash"

	// NetCash Pay Now gateway endpoint
	defaultPaymentURL = "https://paynow.netcash.co.za/site/paynow.aspx"

	// Transaction ID prefix
	txnPrefix = "CT"

	healthCheckTimeout = 5 * time.Second
)

// NetCashProvider implements the PaymentProvider interface for the NetCash
// Pay Now gateway. Payments are initiated by redirecting the customer's
// browser to the gateway with a form payload; outcomes arrive via webhook.
type NetCashProvider struct {
	serviceKey    string
	pciVaultKey   string
	webhookSecret string
	paymentURL    string
	returnURL     string
	cancelURL     string
	notifyURL     string
	client        *http.Client
}

// NewProvider creates a new NetCash payment provider
func NewProvider() provider.PaymentProvider {
	return &NetCashProvider{
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

// callbackData is the Pay Now webhook payload. The gateway posts it
// form-encoded; JSON is accepted for replayed or relayed notifications.
type callbackData struct {
	TransactionAccepted string `json:"TransactionAccepted,omitempty"` // 'true' or 'false'
	Complete            string `json:"Complete,omitempty"`            // 'true' or 'false'
	Amount              string `json:"Amount,omitempty"`              // Amount in cents
	Reference           string `json:"Reference,omitempty"`           // Transaction reference
	Reason              string `json:"Reason,omitempty"`              // Approval/decline reason
	TransactionDate     string `json:"TransactionDate,omitempty"`     // Transaction timestamp
	Extra1              string `json:"Extra1,omitempty"`              // NetCash reference
	PaymentMethod       string `json:"PaymentMethod,omitempty"`       // Payment method used
	CardType            string `json:"CardType,omitempty"`            // Card type if card payment
	RequestTrace        string `json:"RequestTrace,omitempty"`        // NetCash trace number
	Result              string `json:"Result,omitempty"`              // 'Success', 'Failed', 'Cancelled'
	M4                  string `json:"m4,omitempty"`                  // Echoed transaction ID
}

// Name returns the provider identifier
func (p *NetCashProvider) Name() string {
	return providerName
}

// Initialize sets the configuration for the NetCash provider. Missing
// secrets do not fail initialization; IsConfigured reports them and the
// factory refuses to hand out an unconfigured instance.
func (p *NetCashProvider) Initialize(conf map[string]string) error {
	p.serviceKey = conf["serviceKey"]
	p.pciVaultKey = conf["pciVaultKey"]
	p.webhookSecret = conf["webhookSecret"]

	p.paymentURL = conf["paymentURL"]
	if p.paymentURL == "" {
		p.paymentURL = defaultPaymentURL
	}
	p.returnURL = conf["returnURL"]
	p.cancelURL = conf["cancelURL"]
	p.notifyURL = conf["notifyURL"]

	if p.client == nil {
		p.client = &http.Client{Timeout: 30 * time.Second}
	}

	if !p.IsConfigured() {
		logger.Warn("NetCash provider not fully configured. Check environment variables.", logger.LogContext{
			Provider: providerName,
		})
	}

	return nil
}

// GetRequiredConfig returns the configuration fields required for NetCash
func (p *NetCashProvider) GetRequiredConfig() []provider.ConfigField {
	return []provider.ConfigField{
		{
			Key:         "serviceKey",
			Required:    true,
			Type:        "string",
			Description: "NetCash Pay Now service key",
			Example:     "24ade73c-98cf-47b3-99be-cc7b867b3080",
			MinLength:   10,
			MaxLength:   64,
		},
		{
			Key:         "pciVaultKey",
			Required:    true,
			Type:        "string",
			Description: "NetCash PCI Vault key",
			Example:     "7f1c1e6a-3b2d-4f5e-8a9b-0c1d2e3f4a5b",
			MinLength:   10,
			MaxLength:   64,
		},
		{
			Key:         "webhookSecret",
			Required:    false,
			Type:        "string",
			Description: "Shared secret for webhook signature verification",
			Example:     "whsec_4f5e8a9b0c1d2e3f",
		},
		{
			Key:         "paymentURL",
			Required:    false,
			Type:        "url",
			Description: "Pay Now gateway URL override",
			Example:     defaultPaymentURL,
		},
	}
}

// IsConfigured reports whether the provider has the keys it needs to build
// a payment form
func (p *NetCashProvider) IsConfigured() bool {
	return p.serviceKey != "" && p.pciVaultKey != ""
}

// Initiate builds the Pay Now redirect for a payment. The returned form
// data is POSTed to PaymentURL by the customer's browser.
func (p *NetCashProvider) Initiate(ctx context.Context, params provider.InitiationParams) (*provider.InitiationResult, error) {
	if err := provider.ValidateInitiationParams(params); err != nil {
		return &provider.InitiationResult{
			Success: false,
			Error:   fmt.Sprintf("Payment initiation failed: %s", err.Error()),
		}, nil
	}

	transactionID := generateTransactionID(params.Reference)

	// NetCash expects the amount as integer cents
	amountInCents := provider.RandsToCents(params.Amount)

	description := params.Description
	if description == "" {
		description = "Payment"
	}

	returnURL := params.ReturnURL
	if returnURL == "" {
		returnURL = p.returnURL
	}
	cancelURL := params.CancelURL
	if cancelURL == "" {
		cancelURL = p.cancelURL
	}

	// Field names are the Pay Now contract: m1 service key, m2 PCI vault
	// key, p2 and m4 transaction reference, p3 description, p4 amount in
	// cents, m9 return URL, m10 cancel URL.
	formData := map[string]string{
		"m1":                      p.serviceKey,
		"m2":                      p.pciVaultKey,
		"p2":                      transactionID,
		"p3":                      description,
		"p4":                      provider.FormatCents(amountInCents),
		"Budget":                  "N",
		"CustomerEmailAddress":    params.CustomerEmail,
		"CustomerTelephoneNumber": params.CustomerPhone,
		"m9":                      returnURL,
		"m10":                     cancelURL,
		"m4":                      transactionID,
	}

	logger.Info("Payment initiated", logger.LogContext{
		Provider: providerName,
		Fields: map[string]any{
			"transaction_id": transactionID,
			"amount":         params.Amount,
			"reference":      params.Reference,
		},
	})

	return &provider.InitiationResult{
		Success:       true,
		TransactionID: transactionID,
		PaymentURL:    p.paymentURL,
		FormData:      formData,
		Metadata:      provider.SanitizeMetadata(params.Metadata),
	}, nil
}

// ProcessWebhook verifies and parses a Pay Now notification. The signature
// is checked against the raw payload bytes before anything is parsed.
func (p *NetCashProvider) ProcessWebhook(ctx context.Context, payload []byte, signature string) (*provider.WebhookResult, error) {
	if !p.VerifySignature(payload, signature) {
		return &provider.WebhookResult{
			Success: false,
			Error:   "Webhook processing failed: Invalid webhook signature",
		}, nil
	}

	data, raw, err := parseCallback(payload)
	if err != nil {
		return &provider.WebhookResult{
			Success: false,
			Error:   fmt.Sprintf("Webhook processing failed: %s", err.Error()),
		}, nil
	}

	transactionID := data.Reference
	if transactionID == "" {
		transactionID = data.M4
	}

	amount := provider.CentsToRands(provider.ParseCents(data.Amount))

	status := provider.StatusPending
	var failureReason string

	if data.Result == "Success" || data.TransactionAccepted == "true" {
		status = provider.StatusCompleted
	} else if data.Result == "Failed" {
		status = provider.StatusFailed
		failureReason = data.Reason
		if failureReason == "" {
			failureReason = "Payment failed"
		}
	} else if data.Result == "Cancelled" {
		status = provider.StatusCancelled
		failureReason = "Payment cancelled by user"
	}

	// The gateway reports Complete=false while settlement is in flight
	if data.Complete != "true" {
		status = provider.StatusProcessing
	}

	var completedAt *time.Time
	if t := parseTransactionDate(data.TransactionDate); !t.IsZero() {
		completedAt = &t
	}

	logger.Info("Webhook processed", logger.LogContext{
		Provider: providerName,
		Fields: map[string]any{
			"transaction_id": transactionID,
			"status":         string(status),
			"amount":         amount,
		},
	})

	return &provider.WebhookResult{
		Success:       true,
		TransactionID: transactionID,
		Status:        status,
		Amount:        amount,
		Reference:     data.Reference,
		CompletedAt:   completedAt,
		FailureReason: failureReason,
		Metadata: map[string]any{
			"netcash_reference": data.Extra1,
			"payment_method":    data.PaymentMethod,
			"card_type":         data.CardType,
			"request_trace":     data.RequestTrace,
			"raw_response":      raw,
		},
	}, nil
}

// VerifySignature checks the HMAC-SHA256 signature over the raw payload.
// When no webhook secret is configured, verification is skipped and the
// payload is accepted; this keeps sandbox environments working but is
// logged every time so a production deployment without a secret is visible.
func (p *NetCashProvider) VerifySignature(payload []byte, signature string) bool {
	if p.webhookSecret == "" {
		logger.Warn("Webhook secret not configured, skipping signature verification", logger.LogContext{
			Provider: providerName,
		})
		return true
	}

	expected := provider.ComputeSignature(payload, p.webhookSecret)
	if len(signature) != len(expected) {
		return false
	}

	return provider.SignatureEqual(signature, expected)
}

// GetStatus reports the locally known status of a payment. Pay Now has no
// real-time status query API; status updates arrive via webhooks, so this
// always reports pending.
func (p *NetCashProvider) GetStatus(ctx context.Context, transactionID string) (*provider.StatusResult, error) {
	logger.Warn("NetCash status query not supported", logger.LogContext{
		Provider: providerName,
		Fields:   map[string]any{"transaction_id": transactionID},
	})

	return &provider.StatusResult{
		TransactionID: transactionID,
		Status:        provider.StatusPending,
		Amount:        0,
		Reference:     transactionID,
		Metadata: map[string]any{
			"note": "NetCash Pay Now does not support real-time status queries. Status updates come via webhooks.",
		},
	}, nil
}

// Refund records a refund request for manual processing. Pay Now offers no
// refund API; the request details are echoed back so operators can act on
// them in the merchant portal.
func (p *NetCashProvider) Refund(ctx context.Context, params provider.RefundParams) (*provider.RefundResult, error) {
	logger.Warn("NetCash refund requested (manual processing required)", logger.LogContext{
		Provider: providerName,
		Fields: map[string]any{
			"transaction_id": params.TransactionID,
			"amount":         params.Amount,
			"reason":         params.Reason,
		},
	})

	return &provider.RefundResult{
		Success: false,
		Error:   "NetCash Pay Now does not support automated refunds. Please process this refund manually via the NetCash merchant portal.",
		Metadata: map[string]any{
			"transactionId": params.TransactionID,
			"amount":        params.Amount,
			"reason":        params.Reason,
			"requestedBy":   params.RequestedBy,
			"instruction":   "Log in to NetCash merchant portal > Transactions > Find transaction > Process refund",
		},
	}, nil
}

// GetCapabilities returns the NetCash capability set
func (p *NetCashProvider) GetCapabilities() provider.Capabilities {
	return provider.Capabilities{
		Refunds:           false, // Manual refunds only
		PartialRefunds:    false, // Manual refunds only
		RecurringPayments: true,  // Supports eMandate debit orders
		StatusQueries:     false, // No real-time status API
		Webhooks:          true,
		ThreeDSecure:      true,
		PaymentMethods: []string{
			"card",         // 3D Secure cards
			"eft",          // Bank EFT
			"instant_eft",  // Ozow instant EFT
			"debit_order",  // eMandate debit orders
			"scan_to_pay",  // QR code payments
			"cash",         // 1Voucher
			"payflex",      // Buy Now Pay Later
			"capitec_pay",  // Capitec Pay
			"paymyway",     // Pay@Store
			"scode_retail", // SCode retail
		},
	}
}

// HealthCheck probes gateway connectivity with a HEAD request
func (p *NetCashProvider) HealthCheck(ctx context.Context) *provider.HealthCheckResult {
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, p.paymentGatewayURL(), nil)
	if err != nil {
		return &provider.HealthCheckResult{
			Provider:       providerName,
			Healthy:        false,
			ResponseTimeMs: time.Since(start).Milliseconds(),
			Error:          err.Error(),
			CheckedAt:      time.Now().UTC(),
		}
	}

	resp, err := p.client.Do(req)
	responseTime := time.Since(start).Milliseconds()
	if err != nil {
		return &provider.HealthCheckResult{
			Provider:       providerName,
			Healthy:        false,
			ResponseTimeMs: responseTime,
			Error:          err.Error(),
			CheckedAt:      time.Now().UTC(),
		}
	}
	defer resp.Body.Close()

	return &provider.HealthCheckResult{
		Provider:       providerName,
		Healthy:        resp.StatusCode >= 200 && resp.StatusCode < 300,
		ResponseTimeMs: responseTime,
		CheckedAt:      time.Now().UTC(),
	}
}

// PaymentURLWithParams renders the payment form as a GET URL with query
// parameters. Alternative to the POST redirect, useful for testing.
func (p *NetCashProvider) PaymentURLWithParams(formData map[string]string) string {
	values := url.Values{}
	for key, value := range formData {
		values.Set(key, value)
	}
	return p.paymentGatewayURL() + "?" + values.Encode()
}

func (p *NetCashProvider) paymentGatewayURL() string {
	if p.paymentURL == "" {
		return defaultPaymentURL
	}
	return p.paymentURL
}

var txnSeq atomic.Uint64

// generateTransactionID builds a unique transaction reference in the form
// CT-{reference}-{suffix}. The suffix is a nanosecond timestamp extended
// with a process-wide counter so back-to-back initiations for the same
// reference never collide, even on a coarse clock.
func generateTransactionID(reference string) string {
	return fmt.Sprintf("%s-%s-%d%03d", txnPrefix, reference, time.Now().UnixNano(), txnSeq.Add(1)%1000)
}

// parseCallback decodes a webhook payload. The gateway posts
// form-urlencoded fields; JSON payloads are accepted for relayed
// notifications. The raw key-value view is returned alongside the typed
// struct for audit metadata.
func parseCallback(payload []byte) (callbackData, map[string]any, error) {
	trimmed := strings.TrimSpace(string(payload))
	if trimmed == "" {
		return callbackData{}, nil, fmt.Errorf("empty webhook payload")
	}

	if strings.HasPrefix(trimmed, "{") {
		var data callbackData
		if err := json.Unmarshal(payload, &data); err != nil {
			return callbackData{}, nil, fmt.Errorf("invalid JSON payload: %w", err)
		}
		var raw map[string]any
		_ = json.Unmarshal(payload, &raw)
		return data, raw, nil
	}

	values, err := url.ParseQuery(trimmed)
	if err != nil {
		return callbackData{}, nil, fmt.Errorf("invalid form payload: %w", err)
	}

	data := callbackData{
		TransactionAccepted: values.Get("TransactionAccepted"),
		Complete:            values.Get("Complete"),
		Amount:              values.Get("Amount"),
		Reference:           values.Get("Reference"),
		Reason:              values.Get("Reason"),
		TransactionDate:     values.Get("TransactionDate"),
		Extra1:              values.Get("Extra1"),
		PaymentMethod:       values.Get("PaymentMethod"),
		CardType:            values.Get("CardType"),
		RequestTrace:        values.Get("RequestTrace"),
		Result:              values.Get("Result"),
		M4:                  values.Get("m4"),
	}

	raw := make(map[string]any, len(values))
	for key := range values {
		raw[key] = values.Get(key)
	}

	return data, raw, nil
}

// parseTransactionDate handles the timestamp formats Pay Now has been seen
// to send. A zero time means the field was missing or unparseable.
func parseTransactionDate(value string) time.Time {
	if value == "" {
		return time.Time{}
	}

	layouts := []string{
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		"2006/01/02 15:04:05",
	}

	for _, layout := range layouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}

	return time.Time{}
}
