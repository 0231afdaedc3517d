package provider

import (
	"context"
	"time"
)

// PaymentStatus represents the normalized status of a payment
type PaymentStatus string

const (
	StatusPending    PaymentStatus = "pending"
	StatusProcessing PaymentStatus = "processing"
	StatusCompleted  PaymentStatus = "completed"
	StatusFailed     PaymentStatus = "failed"
	StatusCancelled  PaymentStatus = "cancelled"
)

// ConfigField represents a required configuration field for a payment provider
type ConfigField struct {
	Key         string `json:"key"`
	Required    bool   `json:"required"`
	Type        string `json:"type"` // "string", "number", "url", "email", "boolean"
	Description string `json:"description"`
	Example     string `json:"example"`
	Pattern     string `json:"pattern,omitempty"`   // regex pattern for validation
	MinLength   int    `json:"minLength,omitempty"` // minimum length for string fields
	MaxLength   int    `json:"maxLength,omitempty"` // maximum length for string fields
}

// InitiationParams contains all information required to start a payment
type InitiationParams struct {
	Amount        float64        `json:"amount" validate:"required,gt=0"`
	Currency      string         `json:"currency"`
	Reference     string         `json:"reference" validate:"required"`
	Description   string         `json:"description,omitempty"`
	CustomerEmail string         `json:"customerEmail" validate:"required,email"`
	CustomerPhone string         `json:"customerPhone,omitempty"`
	ReturnURL     string         `json:"returnUrl,omitempty"`
	CancelURL     string         `json:"cancelUrl,omitempty"`
	Metadata      map[string]any `json:"metadata,omitempty"`
}

// InitiationResult contains the result of a payment initiation.
// On success the customer's browser is redirected to PaymentURL,
// submitting FormData as form fields (or as a query string, see the
// provider's redirect helper).
type InitiationResult struct {
	Success       bool              `json:"success"`
	TransactionID string            `json:"transactionId,omitempty"`
	PaymentURL    string            `json:"paymentUrl,omitempty"`
	FormData      map[string]string `json:"formData,omitempty"`
	Metadata      map[string]any    `json:"metadata,omitempty"`
	Error         string            `json:"error,omitempty"`
}

// WebhookResult contains the normalized outcome of a webhook notification.
// Success reports whether the webhook was parsed and authenticated, not
// whether the payment itself succeeded; inspect Status for that.
type WebhookResult struct {
	Success       bool           `json:"success"`
	Status        PaymentStatus  `json:"status,omitempty"`
	TransactionID string         `json:"transactionId,omitempty"`
	Reference     string         `json:"reference,omitempty"`
	Amount        float64        `json:"amount,omitempty"`
	CompletedAt   *time.Time     `json:"completedAt,omitempty"`
	FailureReason string         `json:"failureReason,omitempty"`
	Metadata      map[string]any `json:"metadata,omitempty"`
	Error         string         `json:"error,omitempty"`
}

// StatusResult contains the result of a payment status query
type StatusResult struct {
	TransactionID string         `json:"transactionId"`
	Status        PaymentStatus  `json:"status"`
	Amount        float64        `json:"amount"`
	Reference     string         `json:"reference,omitempty"`
	Metadata      map[string]any `json:"metadata,omitempty"`
}

// RefundParams contains information to request a refund
type RefundParams struct {
	TransactionID string  `json:"transactionId" validate:"required"`
	Amount        float64 `json:"amount" validate:"required,gt=0"`
	Reason        string  `json:"reason,omitempty"`
	RequestedBy   string  `json:"requestedBy,omitempty"`
}

// RefundResult contains the result of a refund request. Metadata always
// echoes the requested refund details so a manual-processing audit trail
// exists even when the provider cannot refund programmatically.
type RefundResult struct {
	Success  bool           `json:"success"`
	RefundID string         `json:"refundId,omitempty"`
	Error    string         `json:"error,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Capabilities describes what a payment provider supports. It is static
// per provider, known at construction time, and queryable without side
// effects.
type Capabilities struct {
	Refunds           bool     `json:"refunds"`
	PartialRefunds    bool     `json:"partialRefunds"`
	RecurringPayments bool     `json:"recurringPayments"`
	StatusQueries     bool     `json:"statusQueries"`
	Webhooks          bool     `json:"webhooks"`
	ThreeDSecure      bool     `json:"threeDSecure"`
	PaymentMethods    []string `json:"paymentMethods"`
}

// HealthCheckResult contains the outcome of a provider connectivity probe
type HealthCheckResult struct {
	Provider       string    `json:"provider"`
	Healthy        bool      `json:"healthy"`
	ResponseTimeMs int64     `json:"responseTimeMs"`
	Error          string    `json:"error,omitempty"`
	CheckedAt      time.Time `json:"checkedAt"`
}

// PaymentProvider defines the interface that all payment gateways must
// implement. Business outcomes (failed validation, bad webhook signature,
// unsupported refund) are reported through result structs with Success set
// to false; Go errors are reserved for selection and configuration problems
// surfaced by the Factory.
type PaymentProvider interface {
	// Name returns the stable provider identifier, e.g. "netcash"
	Name() string

	// Initialize stores the provider configuration. It never fails on
	// missing secrets; IsConfigured reports those.
	Initialize(config map[string]string) error

	// GetRequiredConfig returns the configuration fields required for this provider
	GetRequiredConfig() []ConfigField

	// IsConfigured reports whether all required configuration values are
	// present. Cheap and side-effect free.
	IsConfigured() bool

	// Initiate starts a payment and returns a redirect target plus opaque
	// form fields
	Initiate(ctx context.Context, params InitiationParams) (*InitiationResult, error)

	// ProcessWebhook verifies and parses an incoming webhook notification.
	// The signature is always verified against the raw payload bytes first.
	ProcessWebhook(ctx context.Context, payload []byte, signature string) (*WebhookResult, error)

	// VerifySignature reports whether signature matches the provider's HMAC
	// over the raw payload
	VerifySignature(payload []byte, signature string) bool

	// GetStatus retrieves the current status of a payment
	GetStatus(ctx context.Context, transactionID string) (*StatusResult, error)

	// Refund issues a refund for a payment
	Refund(ctx context.Context, params RefundParams) (*RefundResult, error)

	// GetCapabilities returns the provider's static capability set
	GetCapabilities() Capabilities

	// HealthCheck probes provider connectivity. It never returns an error;
	// failures are reported as Healthy=false.
	HealthCheck(ctx context.Context) *HealthCheckResult
}

// Builder is a function type that creates a new PaymentProvider
type Builder func() PaymentProvider
