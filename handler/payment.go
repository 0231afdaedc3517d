package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/circletel/payments/infra/logger"
	"github.com/circletel/payments/infra/response"
	"github.com/circletel/payments/provider"
)

// PaymentHandler handles payment related HTTP requests
type PaymentHandler struct {
	service  *provider.PaymentService
	validate *validator.Validate
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(service *provider.PaymentService, validate *validator.Validate) *PaymentHandler {
	return &PaymentHandler{
		service:  service,
		validate: validate,
	}
}

// providerErrorStatus maps a provider selection error to an HTTP status
func providerErrorStatus(err error) int {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "Unknown payment provider"):
		return http.StatusNotFound
	case strings.Contains(msg, "not yet implemented"):
		return http.StatusNotImplemented
	case strings.Contains(msg, "disabled in configuration"),
		strings.Contains(msg, "not properly configured"),
		strings.Contains(msg, "No payment providers available"):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// resolveProviderName falls back to the configured default when the URL
// carries no provider
func (h *PaymentHandler) resolveProviderName(r *http.Request) string {
	name := chi.URLParam(r, "provider")
	if name == "" {
		name = h.service.Factory().DefaultProviderType()
	}
	return name
}

// InitiatePayment handles payment initiation requests
func (h *PaymentHandler) InitiatePayment(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	var params provider.InitiationParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request format", err)
		return
	}

	if err := h.validate.Struct(params); err != nil {
		response.Error(w, http.StatusBadRequest, "Validation error", err)
		return
	}

	providerName := h.resolveProviderName(r)

	result, err := h.service.Initiate(ctx, providerName, params)
	if err != nil {
		response.Error(w, providerErrorStatus(err), "Payment initiation failed", err)
		return
	}

	if !result.Success {
		response.Success(w, http.StatusUnprocessableEntity, "Payment initiation rejected", result)
		return
	}

	response.Success(w, http.StatusOK, "Payment initiated", result)
}

// GetPaymentStatus handles payment status requests
func (h *PaymentHandler) GetPaymentStatus(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	providerName := h.resolveProviderName(r)
	transactionID := chi.URLParam(r, "transactionID")

	if transactionID == "" {
		response.Error(w, http.StatusBadRequest, "Missing transaction ID", nil)
		return
	}

	result, err := h.service.GetStatus(ctx, providerName, transactionID)
	if err != nil {
		response.Error(w, providerErrorStatus(err), "Failed to get payment status", err)
		return
	}

	response.Success(w, http.StatusOK, "Payment status retrieved", result)
}

// RefundPayment handles refund requests
func (h *PaymentHandler) RefundPayment(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	var params provider.RefundParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request format", err)
		return
	}

	if err := h.validate.Struct(params); err != nil {
		response.Error(w, http.StatusBadRequest, "Validation error", err)
		return
	}

	providerName := h.resolveProviderName(r)

	result, err := h.service.Refund(ctx, providerName, params)
	if err != nil {
		response.Error(w, providerErrorStatus(err), "Refund failed", err)
		return
	}

	if !result.Success {
		// Manual-refund providers reject programmatic refunds; the metadata
		// carries the operator instructions.
		response.Success(w, http.StatusAccepted, "Refund requires manual processing", result)
		return
	}

	response.Success(w, http.StatusOK, "Refund processed", result)
}

// ProcessWebhook handles incoming webhook notifications from payment
// gateways. The raw body is read before any parsing so the signature can
// be verified over the exact bytes that were sent.
func (h *PaymentHandler) ProcessWebhook(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	providerName := chi.URLParam(r, "provider")

	log := logger.GetLogger().
		WithContext(logger.LogContext{Provider: providerName}).
		AddField("remote_addr", r.RemoteAddr)

	payload, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Failed to read webhook payload", err)
		return
	}

	signature := r.Header.Get("X-Webhook-Signature")
	if signature == "" {
		signature = r.URL.Query().Get("signature")
	}

	result, err := h.service.ProcessWebhook(ctx, providerName, payload, signature)
	if err != nil {
		log.Error("Webhook provider resolution failed", err)
		response.Error(w, providerErrorStatus(err), "Webhook processing failed", err)
		return
	}

	if !result.Success {
		if strings.Contains(result.Error, "Invalid webhook signature") {
			log.Warn("Webhook rejected, signature mismatch")
			response.Error(w, http.StatusUnauthorized, "Webhook rejected", nil)
			return
		}
		response.Error(w, http.StatusBadRequest, result.Error, nil)
		return
	}

	response.Success(w, http.StatusOK, "Webhook processed", result)
}

// ListProviders returns registered and available provider names
func (h *PaymentHandler) ListProviders(w http.ResponseWriter, r *http.Request) {
	factory := h.service.Factory()

	data := map[string]any{
		"known":     provider.KnownProviders,
		"available": factory.GetAvailableProviders(),
		"default":   factory.DefaultProviderType(),
	}

	response.Success(w, http.StatusOK, "Providers listed", data)
}

// GetProviderCapabilities returns the capability set for a provider
func (h *PaymentHandler) GetProviderCapabilities(w http.ResponseWriter, r *http.Request) {
	providerName := chi.URLParam(r, "provider")

	caps := h.service.Factory().GetProviderCapabilities(providerName)
	if caps == nil {
		response.Error(w, http.StatusNotFound, "Provider unavailable", nil)
		return
	}

	response.Success(w, http.StatusOK, "Provider capabilities", caps)
}

// GetFactoryStatus returns a snapshot of the provider factory state
func (h *PaymentHandler) GetFactoryStatus(w http.ResponseWriter, r *http.Request) {
	response.Success(w, http.StatusOK, "Factory status", h.service.Factory().Status())
}

// ListTransactions returns recent transactions, optionally filtered by
// provider
func (h *PaymentHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	store := h.service.Store()
	if store == nil {
		response.Error(w, http.StatusServiceUnavailable, "Transaction store not configured", nil)
		return
	}

	providerName := r.URL.Query().Get("provider")

	txns, err := store.ListRecent(providerName, 50)
	if err != nil {
		response.Error(w, http.StatusInternalServerError, "Failed to list transactions", err)
		return
	}

	response.Success(w, http.StatusOK, "Transactions listed", txns)
}

// GetTransactionEvents returns the lifecycle event trail for a transaction
// from the payment event log
func (h *PaymentHandler) GetTransactionEvents(w http.ResponseWriter, r *http.Request) {
	events := h.service.Events()
	if events == nil {
		response.Error(w, http.StatusServiceUnavailable, "Event logging not configured", nil)
		return
	}

	transactionID := chi.URLParam(r, "transactionID")
	if transactionID == "" {
		response.Error(w, http.StatusBadRequest, "Missing transaction ID", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	results, err := events.GetTransactionEvents(ctx, transactionID)
	if err != nil {
		response.Error(w, http.StatusInternalServerError, "Failed to fetch transaction events", err)
		return
	}

	response.Success(w, http.StatusOK, "Transaction events", results)
}

// ListErrorEvents returns recent failed events for a provider
func (h *PaymentHandler) ListErrorEvents(w http.ResponseWriter, r *http.Request) {
	events := h.service.Events()
	if events == nil {
		response.Error(w, http.StatusServiceUnavailable, "Event logging not configured", nil)
		return
	}

	providerName := r.URL.Query().Get("provider")
	if providerName == "" {
		providerName = h.service.Factory().DefaultProviderType()
	}

	hours := 24
	if v := r.URL.Query().Get("hours"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed <= 0 {
			response.Error(w, http.StatusBadRequest, "Invalid hours parameter", err)
			return
		}
		hours = parsed
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	results, err := events.GetRecentErrorEvents(ctx, providerName, hours)
	if err != nil {
		response.Error(w, http.StatusInternalServerError, "Failed to fetch error events", err)
		return
	}

	response.Success(w, http.StatusOK, "Error events", results)
}
