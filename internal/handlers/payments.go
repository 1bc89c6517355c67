package handlers

import (
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/biashadrive/biashadrive-backend/internal/middleware"
	"github.com/biashadrive/biashadrive-backend/internal/models"
	"github.com/biashadrive/biashadrive-backend/internal/services"
	"github.com/biashadrive/biashadrive-backend/internal/storage"
	"github.com/biashadrive/biashadrive-backend/internal/utils"
)

// PaymentHandler handles STK push initiation and the gateway callback
type PaymentHandler struct {
	store storage.Store
	mpesa *services.MpesaService
}

func NewPaymentHandler(store storage.Store, mpesa *services.MpesaService) *PaymentHandler {
	return &PaymentHandler{
		store: store,
		mpesa: mpesa,
	}
}

// InitiatePush starts a payment prompt on the payer's phone. The account
// reference must name an existing pending transaction so the asynchronous
// callback can be matched later.
func (h *PaymentHandler) InitiatePush(c *fiber.Ctx) error {
	userID, _ := c.Locals(middleware.LocalUserID).(string)

	var req struct {
		Amount           float64 `json:"amount"`
		PhoneNumber      string  `json:"phoneNumber"`
		AccountReference string  `json:"accountReference"`
		TransactionDesc  string  `json:"transactionDesc"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if req.Amount <= 0 || req.PhoneNumber == "" || req.AccountReference == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Amount, phone number, and account reference required",
		})
	}

	if !utils.IsValidPhone(req.PhoneNumber) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid phone number. Use format: 254XXXXXXXXX",
		})
	}

	txn, err := h.store.GetTransaction(req.AccountReference)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Transaction not found",
		})
	}
	if txn.UserID != userID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Transaction belongs to another user",
		})
	}
	if txn.Status != models.TransactionStatusPending {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "Transaction is already settled",
		})
	}

	result, err := h.mpesa.InitiatePush(c.Context(), req.Amount, req.PhoneNumber, txn.TransactionID, req.TransactionDesc)
	if err != nil {
		log.Printf("M-Pesa STK push error: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to initiate payment",
		})
	}

	// Persist the checkout request id before responding; without it the
	// callback has nothing to match against
	if err := h.store.SetTransactionCheckoutRequest(txn.TransactionID, result.CheckoutRequestID, result.MerchantRequestID); err != nil {
		log.Printf("Failed to persist checkout request id %s: %v", result.CheckoutRequestID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to initiate payment",
		})
	}

	return c.JSON(fiber.Map{
		"success":             true,
		"checkoutRequestId":   result.CheckoutRequestID,
		"merchantRequestId":   result.MerchantRequestID,
		"responseCode":        result.ResponseCode,
		"responseDescription": result.ResponseDescription,
	})
}

// Callback receives the gateway's asynchronous result. It always
// acknowledges success, even on internal failure, to avoid provider-side
// retry storms.
func (h *PaymentHandler) Callback(c *fiber.Ctx) error {
	if err := h.mpesa.ProcessCallback(c.Body()); err != nil {
		log.Printf("M-Pesa callback error: %v", err)
	}
	return c.JSON(fiber.Map{"success": true})
}
