package handlers

import (
	"context"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/biashadrive/biashadrive-backend/internal/middleware"
	"github.com/biashadrive/biashadrive-backend/internal/models"
	"github.com/biashadrive/biashadrive-backend/internal/services"
	"github.com/biashadrive/biashadrive-backend/internal/storage"
)

// ExpertHandler handles expert listing and booking creation
type ExpertHandler struct {
	store      storage.Store
	dispatcher *services.Dispatcher
}

func NewExpertHandler(store storage.Store, dispatcher *services.Dispatcher) *ExpertHandler {
	return &ExpertHandler{
		store:      store,
		dispatcher: dispatcher,
	}
}

// List returns verified, available experts ordered by rating
func (h *ExpertHandler) List(c *fiber.Ctx) error {
	domain := c.Query("domain")

	experts, err := h.store.ListAvailableExperts(domain)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to get experts",
		})
	}

	cards := make([]models.ExpertCard, 0, len(experts))
	for _, e := range experts {
		cards = append(cards, e.Card())
	}

	return c.JSON(fiber.Map{"experts": cards})
}

// CreateBooking creates a pending booking backed by a pending transaction
func (h *ExpertHandler) CreateBooking(c *fiber.Ctx) error {
	userID, _ := c.Locals(middleware.LocalUserID).(string)

	var req struct {
		ExpertID string  `json:"expertId"`
		Service  string  `json:"service"`
		Message  string  `json:"message"`
		Amount   float64 `json:"amount"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if req.ExpertID == "" || req.Service == "" || req.Amount <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Expert ID, service, and amount required",
		})
	}

	expert, err := h.store.GetExpertByID(req.ExpertID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Expert not found",
		})
	}

	// Transaction first; the booking references exactly one transaction
	txn, err := h.store.CreateTransaction(&models.Transaction{
		UserID: userID,
		Amount: req.Amount,
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create booking",
		})
	}

	booking, err := h.store.CreateBooking(&models.Booking{
		UserID:        userID,
		ExpertID:      expert.ExpertID,
		Service:       req.Service,
		Message:       req.Message,
		Amount:        req.Amount,
		TransactionID: txn.TransactionID,
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create booking",
		})
	}

	h.notifyExpert(expert, booking, userID)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success":     true,
		"booking":     booking,
		"transaction": txn,
	})
}

// notifyExpert is best effort; a delivery failure never fails the booking
func (h *ExpertHandler) notifyExpert(expert *models.Expert, booking *models.Booking, userID string) {
	if expert.Phone == "" {
		return
	}

	userName := "a client"
	if user, err := h.store.GetUserByID(userID); err == nil && user.Name != "" {
		userName = user.Name
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := h.dispatcher.SendExpertNotification(ctx, expert.Phone, userName, booking.Service, booking.BookingID); err != nil {
		log.Printf("Failed to notify expert %s: %v", expert.ExpertID, err)
	}
}
