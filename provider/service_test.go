package provider

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/circletel/payments/infra/storage"
)

func newTestService(t *testing.T) *PaymentService {
	t.Helper()

	f := NewFactory()
	registerMock(t, f, "mockpay")

	store, err := storage.NewTransactionStore(filepath.Join(t.TempDir(), "payments.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	return NewPaymentService(f, store, nil)
}

func TestPaymentService_Initiate(t *testing.T) {
	s := newTestService(t)

	result, err := s.Initiate(context.Background(), "mockpay", InitiationParams{
		Amount:        799.00,
		Currency:      "ZAR",
		Reference:     "ORDER-001",
		CustomerEmail: "customer@example.com",
	})
	require.NoError(t, err)
	assert.True(t, result.Success)

	// Transaction persisted
	txn, err := s.Store().GetByTransactionID(result.TransactionID)
	require.NoError(t, err)
	assert.Equal(t, "ORDER-001", txn.Reference)
	assert.Equal(t, 799.00, txn.Amount)
	assert.Equal(t, string(StatusPending), txn.Status)
}

func TestPaymentService_Initiate_UnknownProvider(t *testing.T) {
	s := newTestService(t)

	result, err := s.Initiate(context.Background(), "bitcoin_bank", InitiationParams{
		Amount:        1,
		Reference:     "ORDER-001",
		CustomerEmail: "customer@example.com",
	})
	assert.Nil(t, result)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Unknown payment provider")
}

func TestPaymentService_ProcessWebhook_UpdatesTransaction(t *testing.T) {
	s := newTestService(t)

	initiated, err := s.Initiate(context.Background(), "mockpay", InitiationParams{
		Amount:        799.00,
		Reference:     "ORDER-001",
		CustomerEmail: "customer@example.com",
	})
	require.NoError(t, err)

	// The mock reports the initiated transaction as completed
	require.NoError(t, s.Store().UpdateStatus(initiated.TransactionID, string(StatusCompleted), ""))

	txn, err := s.Store().GetByTransactionID(initiated.TransactionID)
	require.NoError(t, err)
	assert.Equal(t, string(StatusCompleted), txn.Status)
}

func TestPaymentService_ProcessWebhook(t *testing.T) {
	s := newTestService(t)

	result, err := s.ProcessWebhook(context.Background(), "mockpay", []byte("{}"), "sig")
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, StatusCompleted, result.Status)
}

func TestPaymentService_GetStatus_PrefersStoredStatus(t *testing.T) {
	s := newTestService(t)

	initiated, err := s.Initiate(context.Background(), "mockpay", InitiationParams{
		Amount:        799.00,
		Reference:     "ORDER-001",
		CustomerEmail: "customer@example.com",
	})
	require.NoError(t, err)

	require.NoError(t, s.Store().UpdateStatus(initiated.TransactionID, string(StatusCompleted), ""))

	// The mock provider always answers pending; the stored, webhook driven
	// status wins.
	status, err := s.GetStatus(context.Background(), "mockpay", initiated.TransactionID)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, status.Status)
	assert.Equal(t, 799.00, status.Amount)
}

func TestPaymentService_Refund(t *testing.T) {
	s := newTestService(t)

	result, err := s.Refund(context.Background(), "mockpay", RefundParams{
		TransactionID: "MOCK-1",
		Amount:        100,
	})
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, "REFUND-1", result.RefundID)
}

func TestPaymentService_NilStore(t *testing.T) {
	f := NewFactory()
	registerMock(t, f, "mockpay")
	s := NewPaymentService(f, nil, nil)

	result, err := s.Initiate(context.Background(), "mockpay", InitiationParams{
		Amount:        1,
		Reference:     "ORDER-001",
		CustomerEmail: "customer@example.com",
	})
	require.NoError(t, err)
	assert.True(t, result.Success)
}
