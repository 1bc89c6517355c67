package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"net/http"
	"os"
	"time"

	"github.com/biashadrive/biashadrive-backend/internal/models"
	"github.com/biashadrive/biashadrive-backend/internal/storage"
)

// MpesaService talks to the Safaricom Daraja gateway: STK push initiation
// and the asynchronous result callback.
type MpesaService struct {
	httpClient *http.Client
	store      storage.Store
	dispatcher *Dispatcher

	baseURL        string
	consumerKey    string
	consumerSecret string
	shortcode      string
	passkey        string
	callbackURL    string
}

// NewMpesaService builds the gateway client from environment variables
func NewMpesaService(store storage.Store, dispatcher *Dispatcher) *MpesaService {
	baseURL := os.Getenv("MPESA_BASE_URL")
	if baseURL == "" {
		baseURL = "https://sandbox.safaricom.co.ke"
	}

	return &MpesaService{
		httpClient:     &http.Client{Timeout: 30 * time.Second},
		store:          store,
		dispatcher:     dispatcher,
		baseURL:        baseURL,
		consumerKey:    os.Getenv("MPESA_CONSUMER_KEY"),
		consumerSecret: os.Getenv("MPESA_CONSUMER_SECRET"),
		shortcode:      os.Getenv("MPESA_SHORTCODE"),
		passkey:        os.Getenv("MPESA_PASSKEY"),
		callbackURL:    os.Getenv("APP_BASE_URL") + "/api/mpesa/callback",
	}
}

// accessToken obtains a short-lived bearer credential via the
// client-credentials exchange
func (m *MpesaService) accessToken(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		m.baseURL+"/oauth/v1/generate?grant_type=client_credentials", nil)
	if err != nil {
		return "", err
	}
	auth := base64.StdEncoding.EncodeToString([]byte(m.consumerKey + ":" + m.consumerSecret))
	req.Header.Set("Authorization", "Basic "+auth)

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("token request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("token request returned status %d", resp.StatusCode)
	}

	var body struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("failed to parse token response: %w", err)
	}
	if body.AccessToken == "" {
		return "", fmt.Errorf("gateway returned empty access token")
	}
	return body.AccessToken, nil
}

// STKPushResult carries the gateway's response to a push request
type STKPushResult struct {
	CheckoutRequestID   string `json:"checkoutRequestId"`
	MerchantRequestID   string `json:"merchantRequestId"`
	ResponseCode        string `json:"responseCode"`
	ResponseDescription string `json:"responseDescription"`
}

// InitiatePush prompts the payer's phone to approve the payment. The caller
// must persist the returned CheckoutRequestID on the pending transaction
// before responding, or the callback cannot be matched.
func (m *MpesaService) InitiatePush(ctx context.Context, amount float64, phone, accountReference, description string) (*STKPushResult, error) {
	token, err := m.accessToken(ctx)
	if err != nil {
		return nil, err
	}

	timestamp := time.Now().Format("20060102150405")
	password := base64.StdEncoding.EncodeToString([]byte(m.shortcode + m.passkey + timestamp))

	if description == "" {
		description = "Payment"
	}

	payload := map[string]interface{}{
		"BusinessShortCode": m.shortcode,
		"Password":          password,
		"Timestamp":         timestamp,
		"TransactionType":   "CustomerPayBillOnline",
		"Amount":            int(math.Round(amount)),
		"PartyA":            phone,
		"PartyB":            m.shortcode,
		"PhoneNumber":       phone,
		"CallBackURL":       m.callbackURL,
		"AccountReference":  accountReference,
		"TransactionDesc":   description,
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		m.baseURL+"/mpesa/stkpush/v1/processrequest", bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("stk push request failed: %w", err)
	}
	defer resp.Body.Close()

	var body struct {
		CheckoutRequestID   string `json:"CheckoutRequestID"`
		MerchantRequestID   string `json:"MerchantRequestID"`
		ResponseCode        string `json:"ResponseCode"`
		ResponseDescription string `json:"ResponseDescription"`
		ErrorMessage        string `json:"errorMessage"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to parse stk push response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("stk push rejected: %s", body.ErrorMessage)
	}

	// The gateway can answer 200 with a non-zero ResponseCode; only a zero
	// code with a checkout id means a prompt was actually queued
	if body.ResponseCode != "0" || body.CheckoutRequestID == "" {
		return nil, fmt.Errorf("stk push not accepted: code %s (%s)",
			body.ResponseCode, body.ResponseDescription)
	}

	return &STKPushResult{
		CheckoutRequestID:   body.CheckoutRequestID,
		MerchantRequestID:   body.MerchantRequestID,
		ResponseCode:        body.ResponseCode,
		ResponseDescription: body.ResponseDescription,
	}, nil
}

// STKCallbackEnvelope is the Daraja result callback wire format
type STKCallbackEnvelope struct {
	Body struct {
		StkCallback *STKCallback `json:"stkCallback"`
	} `json:"Body"`
}

type STKCallback struct {
	MerchantRequestID string            `json:"MerchantRequestID"`
	CheckoutRequestID string            `json:"CheckoutRequestID"`
	ResultCode        int               `json:"ResultCode"`
	ResultDesc        string            `json:"ResultDesc"`
	CallbackMetadata  *CallbackMetadata `json:"CallbackMetadata"`
}

type CallbackMetadata struct {
	Item []MetadataItem `json:"Item"`
}

type MetadataItem struct {
	Name  string      `json:"Name"`
	Value interface{} `json:"Value"`
}

// stringItem extracts a metadata value by name
func (c *STKCallback) stringItem(name string) string {
	if c.CallbackMetadata == nil {
		return ""
	}
	for _, item := range c.CallbackMetadata.Item {
		if item.Name == name {
			return fmt.Sprintf("%v", item.Value)
		}
	}
	return ""
}

// ProcessCallback reconciles a gateway result against the stored
// transaction. An unknown checkout request is benign; the gateway may also
// redeliver a callback, in which case the guarded transition is a no-op.
func (m *MpesaService) ProcessCallback(payload []byte) error {
	var envelope STKCallbackEnvelope
	if err := json.Unmarshal(payload, &envelope); err != nil {
		return fmt.Errorf("failed to parse callback: %w", err)
	}

	cb := envelope.Body.StkCallback
	if cb == nil {
		return nil
	}

	if _, err := m.store.GetTransactionByCheckoutRequestID(cb.CheckoutRequestID); err != nil {
		log.Printf("Transaction not found for CheckoutRequestID %s, ignoring callback", cb.CheckoutRequestID)
		return nil
	}

	if cb.ResultCode == 0 {
		return m.applySuccess(cb)
	}
	return m.applyFailure(cb)
}

func (m *MpesaService) applySuccess(cb *STKCallback) error {
	receipt := cb.stringItem("MpesaReceiptNumber")

	metadata := ""
	if cb.CallbackMetadata != nil {
		if data, err := json.Marshal(cb.CallbackMetadata); err == nil {
			metadata = string(data)
		}
	}

	txn, applied, err := m.store.CompleteTransaction(cb.CheckoutRequestID, receipt, metadata)
	if err != nil {
		return fmt.Errorf("failed to complete transaction: %w", err)
	}
	if !applied {
		log.Printf("Transaction %s already settled, skipping duplicate callback", txn.TransactionID)
		return nil
	}

	log.Printf("✅ Payment completed: %s receipt %s", txn.TransactionID, receipt)

	booking, err := m.store.GetBookingByTransaction(txn.TransactionID)
	if err != nil {
		// No linked booking; a bare payment is fine
		return nil
	}

	if err := m.store.UpdateBookingStatus(booking.BookingID, models.BookingStatusConfirmed); err != nil {
		return fmt.Errorf("failed to confirm booking: %w", err)
	}

	m.notifyBookingConfirmed(txn, booking)
	return nil
}

func (m *MpesaService) applyFailure(cb *STKCallback) error {
	metadata, _ := json.Marshal(map[string]interface{}{
		"ResultCode": cb.ResultCode,
		"ResultDesc": cb.ResultDesc,
	})

	txn, applied, err := m.store.FailTransaction(cb.CheckoutRequestID, string(metadata))
	if err != nil {
		return fmt.Errorf("failed to mark transaction failed: %w", err)
	}
	if !applied {
		log.Printf("Transaction %s already settled, skipping duplicate callback", txn.TransactionID)
		return nil
	}

	log.Printf("❌ Payment failed: %s result %d (%s)", txn.TransactionID, cb.ResultCode, cb.ResultDesc)

	if booking, err := m.store.GetBookingByTransaction(txn.TransactionID); err == nil {
		if err := m.store.UpdateBookingStatus(booking.BookingID, models.BookingStatusFailed); err != nil {
			return fmt.Errorf("failed to mark booking failed: %w", err)
		}
	}
	return nil
}

// notifyBookingConfirmed sends the confirmation text. Delivery problems are
// logged, never propagated; the callback must still be acknowledged.
func (m *MpesaService) notifyBookingConfirmed(txn *models.Transaction, booking *models.Booking) {
	user, err := m.store.GetUserByID(booking.UserID)
	if err != nil {
		log.Printf("Failed to load user for booking confirmation: %v", err)
		return
	}

	expertName := "your expert"
	if expert, err := m.store.GetExpertByID(booking.ExpertID); err == nil {
		expertName = expert.Name
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := m.dispatcher.SendBookingConfirmation(ctx, user.Phone, expertName, booking.Amount, txn.MpesaReceiptNumber); err != nil {
		log.Printf("Failed to send booking confirmation to %s: %v", user.Phone, err)
	}
}
