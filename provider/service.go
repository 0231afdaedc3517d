package provider

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/circletel/payments/infra/logger"
	"github.com/circletel/payments/infra/opensearch"
	"github.com/circletel/payments/infra/storage"
)

// PaymentService coordinates payment operations across providers: it
// resolves the provider through the factory, persists transactions, and
// emits lifecycle events. Store and event logger are optional; a nil value
// disables that concern.
type PaymentService struct {
	factory *Factory
	store   *storage.TransactionStore
	events  *opensearch.Logger
}

// NewPaymentService creates a payment service
func NewPaymentService(factory *Factory, store *storage.TransactionStore, events *opensearch.Logger) *PaymentService {
	return &PaymentService{
		factory: factory,
		store:   store,
		events:  events,
	}
}

// Factory exposes the underlying provider factory for introspection
func (s *PaymentService) Factory() *Factory {
	return s.factory
}

// Store exposes the underlying transaction store
func (s *PaymentService) Store() *storage.TransactionStore {
	return s.store
}

// Events exposes the payment event logger, nil when event logging is
// disabled
func (s *PaymentService) Events() *opensearch.Logger {
	return s.events
}

// Initiate starts a payment through the named provider and records the
// transaction
func (s *PaymentService) Initiate(ctx context.Context, providerName string, params InitiationParams) (*InitiationResult, error) {
	start := time.Now()
	requestID := uuid.New().String()

	p, err := s.factory.GetProvider(providerName)
	if err != nil {
		return nil, err
	}

	result, err := p.Initiate(ctx, params)
	if err != nil {
		return nil, err
	}

	if result.Success && s.store != nil {
		txn := storage.Transaction{
			TransactionID: result.TransactionID,
			Provider:      p.Name(),
			Reference:     params.Reference,
			Amount:        params.Amount,
			Currency:      params.Currency,
			Status:        string(StatusPending),
			CustomerEmail: params.CustomerEmail,
			Metadata:      result.Metadata,
		}
		if err := s.store.SaveTransaction(txn); err != nil {
			logger.Error("Failed to persist transaction", err, logger.LogContext{
				Provider:  p.Name(),
				RequestID: requestID,
				Fields:    map[string]any{"transaction_id": result.TransactionID},
			})
		}
	}

	s.logEvent(opensearch.PaymentEvent{
		Provider:         p.Name(),
		Operation:        "initiate",
		TransactionID:    result.TransactionID,
		Reference:        params.Reference,
		RequestID:        requestID,
		Amount:           params.Amount,
		Currency:         params.Currency,
		Status:           string(StatusPending),
		Success:          result.Success,
		Error:            result.Error,
		ProcessingTimeMs: time.Since(start).Milliseconds(),
	})

	return result, nil
}

// ProcessWebhook verifies and applies a webhook notification from the
// named provider. A successfully parsed webhook updates the stored
// transaction status.
func (s *PaymentService) ProcessWebhook(ctx context.Context, providerName string, payload []byte, signature string) (*WebhookResult, error) {
	start := time.Now()
	requestID := uuid.New().String()

	p, err := s.factory.GetProvider(providerName)
	if err != nil {
		return nil, err
	}

	result, err := p.ProcessWebhook(ctx, payload, signature)
	if err != nil {
		return nil, err
	}

	if result.Success && result.TransactionID != "" && s.store != nil {
		if err := s.store.UpdateStatus(result.TransactionID, string(result.Status), result.FailureReason); err != nil {
			// Webhooks can reference transactions initiated elsewhere
			logger.Warn("Webhook references unknown transaction", logger.LogContext{
				Provider:  p.Name(),
				RequestID: requestID,
				Fields: map[string]any{
					"transaction_id": result.TransactionID,
					"error":          err.Error(),
				},
			})
		}
	}

	s.logEvent(opensearch.PaymentEvent{
		Provider:         p.Name(),
		Operation:        "webhook",
		TransactionID:    result.TransactionID,
		Reference:        result.Reference,
		RequestID:        requestID,
		Amount:           result.Amount,
		Status:           string(result.Status),
		Success:          result.Success,
		Error:            result.Error,
		Payload:          opensearch.SanitizeForLog(string(payload)),
		ProcessingTimeMs: time.Since(start).Milliseconds(),
	})

	return result, nil
}

// GetStatus queries a payment's status through the named provider. When
// the provider cannot answer, the stored transaction fills in what is
// known locally.
func (s *PaymentService) GetStatus(ctx context.Context, providerName, transactionID string) (*StatusResult, error) {
	p, err := s.factory.GetProvider(providerName)
	if err != nil {
		return nil, err
	}

	result, err := p.GetStatus(ctx, transactionID)
	if err != nil {
		return nil, err
	}

	// Providers without a status API report pending; prefer the webhook
	// driven status we hold locally.
	if result.Status == StatusPending && s.store != nil {
		if txn, err := s.store.GetByTransactionID(transactionID); err == nil {
			result.Status = PaymentStatus(txn.Status)
			result.Amount = txn.Amount
			result.Reference = txn.Reference
		}
	}

	return result, nil
}

// Refund requests a refund through the named provider
func (s *PaymentService) Refund(ctx context.Context, providerName string, params RefundParams) (*RefundResult, error) {
	start := time.Now()
	requestID := uuid.New().String()

	p, err := s.factory.GetProvider(providerName)
	if err != nil {
		return nil, err
	}

	result, err := p.Refund(ctx, params)
	if err != nil {
		return nil, err
	}

	s.logEvent(opensearch.PaymentEvent{
		Provider:         p.Name(),
		Operation:        "refund",
		TransactionID:    params.TransactionID,
		RequestID:        requestID,
		Amount:           params.Amount,
		Success:          result.Success,
		Error:            result.Error,
		ProcessingTimeMs: time.Since(start).Milliseconds(),
	})

	return result, nil
}

// HealthCheckAll probes every available provider
func (s *PaymentService) HealthCheckAll(ctx context.Context) []*HealthCheckResult {
	return s.factory.HealthCheckAll(ctx)
}

func (s *PaymentService) logEvent(event opensearch.PaymentEvent) {
	if s.events == nil {
		return
	}

	go func() {
		logCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := s.events.LogEvent(logCtx, event); err != nil {
			logger.Error("Failed to log payment event", err, logger.LogContext{
				Provider:  event.Provider,
				RequestID: event.RequestID,
			})
		}
	}()
}
