package services

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/biashadrive/biashadrive-backend/internal/models"
	"github.com/biashadrive/biashadrive-backend/internal/storage"
)

const testCheckoutID = "ws_CO_01092026120000001"

// seedBookedTransaction creates a user, expert, pending transaction and its
// booking, with the checkout request ID already persisted.
func seedBookedTransaction(t *testing.T, store *storage.MemoryStore) (*models.Transaction, *models.Booking) {
	t.Helper()

	user, err := store.CreateUser(&models.User{Phone: testPhone, Name: "Wanjiku"})
	require.NoError(t, err)

	expert, err := store.CreateExpert(&models.Expert{
		Name:      "Grace Wanjiru",
		Email:     "grace@example.com",
		Phone:     "254733000001",
		Verified:  true,
		Available: true,
	})
	require.NoError(t, err)

	txn, err := store.CreateTransaction(&models.Transaction{
		UserID: user.UserID,
		Amount: 1500,
	})
	require.NoError(t, err)
	require.NoError(t, store.SetTransactionCheckoutRequest(txn.TransactionID, testCheckoutID, "mr-1"))

	booking, err := store.CreateBooking(&models.Booking{
		UserID:        user.UserID,
		ExpertID:      expert.ExpertID,
		Service:       "Tax compliance review",
		Amount:        1500,
		TransactionID: txn.TransactionID,
	})
	require.NoError(t, err)

	return txn, booking
}

func successCallback(checkoutID, receipt string) []byte {
	return []byte(fmt.Sprintf(`{
		"Body": {
			"stkCallback": {
				"MerchantRequestID": "mr-1",
				"CheckoutRequestID": %q,
				"ResultCode": 0,
				"ResultDesc": "The service request is processed successfully.",
				"CallbackMetadata": {
					"Item": [
						{"Name": "Amount", "Value": 1500},
						{"Name": "MpesaReceiptNumber", "Value": %q},
						{"Name": "PhoneNumber", "Value": 254712345678}
					]
				}
			}
		}
	}`, checkoutID, receipt))
}

func failureCallback(checkoutID string) []byte {
	return []byte(fmt.Sprintf(`{
		"Body": {
			"stkCallback": {
				"MerchantRequestID": "mr-1",
				"CheckoutRequestID": %q,
				"ResultCode": 1032,
				"ResultDesc": "Request cancelled by user"
			}
		}
	}`, checkoutID))
}

// fakeDaraja serves the OAuth token exchange and answers STK push requests
// with the given body
func fakeDaraja(t *testing.T, pushStatus int, pushBody string) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/oauth/v1/generate", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"access_token": "test-token", "expires_in": "3599"}`)
	})
	mux.HandleFunc("/mpesa/stkpush/v1/processrequest", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(pushStatus)
		fmt.Fprint(w, pushBody)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	t.Setenv("MPESA_BASE_URL", srv.URL)
	t.Setenv("MPESA_CONSUMER_KEY", "key")
	t.Setenv("MPESA_CONSUMER_SECRET", "secret")
	t.Setenv("MPESA_SHORTCODE", "174379")
	t.Setenv("MPESA_PASSKEY", "passkey")
	return srv
}

func TestInitiatePushAccepted(t *testing.T) {
	fakeDaraja(t, http.StatusOK, `{
		"CheckoutRequestID": "ws_CO_ok",
		"MerchantRequestID": "mr-ok",
		"ResponseCode": "0",
		"ResponseDescription": "Success. Request accepted for processing"
	}`)

	svc := NewMpesaService(storage.NewMemoryStore(), NewDispatcher())
	result, err := svc.InitiatePush(context.Background(), 1500, testPhone, "tx-1", "Booking")
	require.NoError(t, err)
	assert.Equal(t, "ws_CO_ok", result.CheckoutRequestID)
	assert.Equal(t, "mr-ok", result.MerchantRequestID)
}

func TestInitiatePushNonZeroResponseCode(t *testing.T) {
	// The gateway can reply 200 with a failure code and no checkout id;
	// treating that as accepted would persist an unmatched pending
	// transaction
	fakeDaraja(t, http.StatusOK, `{
		"ResponseCode": "1",
		"ResponseDescription": "Unable to lock subscriber"
	}`)

	svc := NewMpesaService(storage.NewMemoryStore(), NewDispatcher())
	_, err := svc.InitiatePush(context.Background(), 1500, testPhone, "tx-1", "Booking")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Unable to lock subscriber")
}

func TestInitiatePushGatewayError(t *testing.T) {
	fakeDaraja(t, http.StatusBadRequest, `{"errorMessage": "Invalid Access Token"}`)

	svc := NewMpesaService(storage.NewMemoryStore(), NewDispatcher())
	_, err := svc.InitiatePush(context.Background(), 1500, testPhone, "tx-1", "Booking")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid Access Token")
}

func TestProcessCallbackSuccess(t *testing.T) {
	store := storage.NewMemoryStore()
	svc := NewMpesaService(store, NewDispatcher())
	txn, booking := seedBookedTransaction(t, store)

	require.NoError(t, svc.ProcessCallback(successCallback(testCheckoutID, "QGH7TX41K9")))

	updated, err := store.GetTransaction(txn.TransactionID)
	require.NoError(t, err)
	assert.Equal(t, models.TransactionStatusCompleted, updated.Status)
	assert.Equal(t, "QGH7TX41K9", updated.MpesaReceiptNumber)
	assert.Contains(t, updated.Metadata, "MpesaReceiptNumber")

	b, err := store.GetBooking(booking.BookingID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusConfirmed, b.Status)
}

func TestProcessCallbackFailure(t *testing.T) {
	store := storage.NewMemoryStore()
	svc := NewMpesaService(store, NewDispatcher())
	txn, booking := seedBookedTransaction(t, store)

	require.NoError(t, svc.ProcessCallback(failureCallback(testCheckoutID)))

	updated, err := store.GetTransaction(txn.TransactionID)
	require.NoError(t, err)
	assert.Equal(t, models.TransactionStatusFailed, updated.Status)
	assert.Empty(t, updated.MpesaReceiptNumber)
	assert.Contains(t, updated.Metadata, "Request cancelled by user")

	b, err := store.GetBooking(booking.BookingID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusFailed, b.Status)
}

func TestProcessCallbackDuplicateDeliveryIsNoOp(t *testing.T) {
	store := storage.NewMemoryStore()
	svc := NewMpesaService(store, NewDispatcher())
	txn, booking := seedBookedTransaction(t, store)

	require.NoError(t, svc.ProcessCallback(successCallback(testCheckoutID, "QGH7TX41K9")))
	require.NoError(t, svc.ProcessCallback(successCallback(testCheckoutID, "DIFFERENTRCPT")))

	updated, err := store.GetTransaction(txn.TransactionID)
	require.NoError(t, err)
	assert.Equal(t, models.TransactionStatusCompleted, updated.Status)
	// First delivery wins; the redelivered receipt is ignored
	assert.Equal(t, "QGH7TX41K9", updated.MpesaReceiptNumber)

	b, err := store.GetBooking(booking.BookingID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusConfirmed, b.Status)
}

func TestProcessCallbackFailureAfterSuccessKeepsCompleted(t *testing.T) {
	store := storage.NewMemoryStore()
	svc := NewMpesaService(store, NewDispatcher())
	txn, booking := seedBookedTransaction(t, store)

	require.NoError(t, svc.ProcessCallback(successCallback(testCheckoutID, "QGH7TX41K9")))
	require.NoError(t, svc.ProcessCallback(failureCallback(testCheckoutID)))

	updated, err := store.GetTransaction(txn.TransactionID)
	require.NoError(t, err)
	assert.Equal(t, models.TransactionStatusCompleted, updated.Status)

	b, err := store.GetBooking(booking.BookingID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusConfirmed, b.Status)
}

func TestProcessCallbackUnknownCheckoutIsBenign(t *testing.T) {
	store := storage.NewMemoryStore()
	svc := NewMpesaService(store, NewDispatcher())

	assert.NoError(t, svc.ProcessCallback(successCallback("ws_CO_unknown", "QGH7TX41K9")))
}

func TestProcessCallbackMalformedPayload(t *testing.T) {
	store := storage.NewMemoryStore()
	svc := NewMpesaService(store, NewDispatcher())

	assert.Error(t, svc.ProcessCallback([]byte("{not json")))
}

func TestProcessCallbackEmptyBody(t *testing.T) {
	store := storage.NewMemoryStore()
	svc := NewMpesaService(store, NewDispatcher())

	// A well-formed envelope without a callback is acknowledged quietly
	assert.NoError(t, svc.ProcessCallback([]byte(`{"Body": {}}`)))
}

func TestProcessCallbackSuccessWithoutBooking(t *testing.T) {
	store := storage.NewMemoryStore()
	svc := NewMpesaService(store, NewDispatcher())

	user, err := store.CreateUser(&models.User{Phone: testPhone})
	require.NoError(t, err)
	txn, err := store.CreateTransaction(&models.Transaction{UserID: user.UserID, Amount: 500})
	require.NoError(t, err)
	require.NoError(t, store.SetTransactionCheckoutRequest(txn.TransactionID, testCheckoutID, "mr-1"))

	require.NoError(t, svc.ProcessCallback(successCallback(testCheckoutID, "QGH7TX41K9")))

	updated, err := store.GetTransaction(txn.TransactionID)
	require.NoError(t, err)
	assert.Equal(t, models.TransactionStatusCompleted, updated.Status)
}
