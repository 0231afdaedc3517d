package storage

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *TransactionStore {
	t.Helper()
	store, err := NewTransactionStore(filepath.Join(t.TempDir(), "payments.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func sampleTransaction(id string) Transaction {
	return Transaction{
		TransactionID: id,
		Provider:      "netcash",
		Reference:     "ORDER-001",
		Amount:        799.00,
		Currency:      "ZAR",
		Status:        "pending",
		CustomerEmail: "customer@example.com",
		Metadata:      map[string]any{"order_id": "ORDER-001"},
	}
}

func TestTransactionStore_SaveAndGet(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.SaveTransaction(sampleTransaction("CT-ORDER-001-1")))

	txn, err := store.GetByTransactionID("CT-ORDER-001-1")
	require.NoError(t, err)

	assert.Equal(t, "netcash", txn.Provider)
	assert.Equal(t, "ORDER-001", txn.Reference)
	assert.Equal(t, 799.00, txn.Amount)
	assert.Equal(t, "ZAR", txn.Currency)
	assert.Equal(t, "pending", txn.Status)
	assert.Equal(t, "customer@example.com", txn.CustomerEmail)
	assert.Equal(t, "ORDER-001", txn.Metadata["order_id"])
	assert.False(t, txn.CreatedAt.IsZero())
}

func TestTransactionStore_DuplicateTransactionID(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.SaveTransaction(sampleTransaction("CT-ORDER-001-1")))
	assert.Error(t, store.SaveTransaction(sampleTransaction("CT-ORDER-001-1")))
}

func TestTransactionStore_UpdateStatus(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.SaveTransaction(sampleTransaction("CT-ORDER-001-1")))
	require.NoError(t, store.UpdateStatus("CT-ORDER-001-1", "failed", "Insufficient funds"))

	txn, err := store.GetByTransactionID("CT-ORDER-001-1")
	require.NoError(t, err)
	assert.Equal(t, "failed", txn.Status)
	assert.Equal(t, "Insufficient funds", txn.FailureReason)
}

func TestTransactionStore_UpdateStatus_NotFound(t *testing.T) {
	store := newTestStore(t)

	err := store.UpdateStatus("CT-MISSING-1", "completed", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no transaction found")
}

func TestTransactionStore_GetByTransactionID_NotFound(t *testing.T) {
	store := newTestStore(t)

	txn, err := store.GetByTransactionID("CT-MISSING-1")
	assert.Nil(t, txn)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no transaction found")
}

func TestTransactionStore_ListRecent(t *testing.T) {
	store := newTestStore(t)

	first := sampleTransaction("CT-ORDER-001-1")
	second := sampleTransaction("CT-ORDER-002-1")
	second.Provider = "payfast"
	require.NoError(t, store.SaveTransaction(first))
	require.NoError(t, store.SaveTransaction(second))

	all, err := store.ListRecent("", 10)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	netcashOnly, err := store.ListRecent("netcash", 10)
	require.NoError(t, err)
	require.Len(t, netcashOnly, 1)
	assert.Equal(t, "CT-ORDER-001-1", netcashOnly[0].TransactionID)
}

func TestTransactionStore_GetStats(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.SaveTransaction(sampleTransaction("CT-ORDER-001-1")))

	completed := sampleTransaction("CT-ORDER-002-1")
	completed.Status = "completed"
	require.NoError(t, store.SaveTransaction(completed))

	stats, err := store.GetStats()
	require.NoError(t, err)

	assert.Equal(t, 2, stats["total_transactions"])
	byStatus, ok := stats["by_status"].(map[string]int)
	require.True(t, ok)
	assert.Equal(t, 1, byStatus["pending"])
	assert.Equal(t, 1, byStatus["completed"])
}
