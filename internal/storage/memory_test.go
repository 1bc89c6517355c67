package storage

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/biashadrive/biashadrive-backend/internal/models"
)

func TestReserveOTPSlotWindow(t *testing.T) {
	store := NewMemoryStore()

	base := time.Now()
	clock := base
	store.Now = func() time.Time { return clock }

	for i := 0; i < 5; i++ {
		ok, err := store.ReserveOTPSlot("254712345678", 5, time.Hour)
		require.NoError(t, err)
		assert.True(t, ok, "slot %d should be granted", i+1)
	}

	ok, err := store.ReserveOTPSlot("254712345678", 5, time.Hour)
	require.NoError(t, err)
	assert.False(t, ok)

	// The window anchors at the first request, not the last
	clock = base.Add(time.Hour + time.Minute)
	ok, err = store.ReserveOTPSlot("254712345678", 5, time.Hour)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestReserveOTPSlotConcurrentFirstRequests(t *testing.T) {
	store := NewMemoryStore()

	const attempts = 20
	granted := make(chan bool, attempts)

	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := store.ReserveOTPSlot("254712345678", 5, time.Hour)
			assert.NoError(t, err)
			granted <- ok
		}()
	}
	wg.Wait()
	close(granted)

	// Simultaneous first requests must resolve cleanly to exactly the cap
	count := 0
	for ok := range granted {
		if ok {
			count++
		}
	}
	assert.Equal(t, 5, count)
}

func TestDeleteExpiredOTPs(t *testing.T) {
	store := NewMemoryStore()

	now := time.Now()
	require.NoError(t, store.UpsertOTP("254712345678", "111111", now.Add(-time.Minute)))
	require.NoError(t, store.UpsertOTP("254733000000", "222222", now.Add(10*time.Minute)))

	require.NoError(t, store.DeleteExpiredOTPs())

	_, err := store.GetOTP("254712345678")
	assert.ErrorIs(t, err, ErrOTPNotFound)

	live, err := store.GetOTP("254733000000")
	require.NoError(t, err)
	assert.Equal(t, "222222", live.Code)
}

func TestCompleteTransactionGuardedTransition(t *testing.T) {
	store := NewMemoryStore()

	txn, err := store.CreateTransaction(&models.Transaction{UserID: "u1", Amount: 1500})
	require.NoError(t, err)
	require.Equal(t, models.TransactionStatusPending, txn.Status)
	require.NoError(t, store.SetTransactionCheckoutRequest(txn.TransactionID, "ws_CO_1", "mr-1"))

	settled, applied, err := store.CompleteTransaction("ws_CO_1", "RCPT1", `{"Item":[]}`)
	require.NoError(t, err)
	assert.True(t, applied)
	assert.Equal(t, models.TransactionStatusCompleted, settled.Status)
	assert.Equal(t, "RCPT1", settled.MpesaReceiptNumber)

	// Second settlement attempt is refused without mutating anything
	again, applied, err := store.CompleteTransaction("ws_CO_1", "RCPT2", "")
	require.NoError(t, err)
	assert.False(t, applied)
	assert.Equal(t, "RCPT1", again.MpesaReceiptNumber)

	// And a late failure cannot displace the completed state
	failed, applied, err := store.FailTransaction("ws_CO_1", `{"ResultCode":1032}`)
	require.NoError(t, err)
	assert.False(t, applied)
	assert.Equal(t, models.TransactionStatusCompleted, failed.Status)
}

func TestFailTransaction(t *testing.T) {
	store := NewMemoryStore()

	txn, err := store.CreateTransaction(&models.Transaction{UserID: "u1", Amount: 1500})
	require.NoError(t, err)
	require.NoError(t, store.SetTransactionCheckoutRequest(txn.TransactionID, "ws_CO_2", "mr-2"))

	failed, applied, err := store.FailTransaction("ws_CO_2", `{"ResultCode":1032,"ResultDesc":"Request cancelled by user"}`)
	require.NoError(t, err)
	assert.True(t, applied)
	assert.Equal(t, models.TransactionStatusFailed, failed.Status)
	assert.Contains(t, failed.Metadata, "cancelled")
}

func TestTransactionLookupByCheckoutRequest(t *testing.T) {
	store := NewMemoryStore()

	txn, err := store.CreateTransaction(&models.Transaction{UserID: "u1", Amount: 500})
	require.NoError(t, err)

	// Transactions without a checkout id must never match an empty lookup
	_, err = store.GetTransactionByCheckoutRequestID("")
	assert.ErrorIs(t, err, ErrTransactionNotFound)

	require.NoError(t, store.SetTransactionCheckoutRequest(txn.TransactionID, "ws_CO_3", "mr-3"))
	found, err := store.GetTransactionByCheckoutRequestID("ws_CO_3")
	require.NoError(t, err)
	assert.Equal(t, txn.TransactionID, found.TransactionID)
}

func TestGetStalePendingTransactions(t *testing.T) {
	store := NewMemoryStore()

	base := time.Now()
	clock := base.Add(-48 * time.Hour)
	store.Now = func() time.Time { return clock }

	stale, err := store.CreateTransaction(&models.Transaction{UserID: "u1", Amount: 100})
	require.NoError(t, err)

	clock = base
	fresh, err := store.CreateTransaction(&models.Transaction{UserID: "u1", Amount: 200})
	require.NoError(t, err)

	found, err := store.GetStalePendingTransactions(24 * time.Hour)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, stale.TransactionID, found[0].TransactionID)
	assert.NotEqual(t, fresh.TransactionID, found[0].TransactionID)
}
