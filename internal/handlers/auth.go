package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/biashadrive/biashadrive-backend/internal/middleware"
	"github.com/biashadrive/biashadrive-backend/internal/models"
	"github.com/biashadrive/biashadrive-backend/internal/services"
	"github.com/biashadrive/biashadrive-backend/internal/storage"
)

// AuthHandler handles OTP login and profile onboarding
type AuthHandler struct {
	store storage.Store
	otp   *services.OTPService
	auth  *services.AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(store storage.Store, otp *services.OTPService, auth *services.AuthService) *AuthHandler {
	return &AuthHandler{
		store: store,
		otp:   otp,
		auth:  auth,
	}
}

// SendOTP issues a verification code for a phone number
func (h *AuthHandler) SendOTP(c *fiber.Ctx) error {
	var req struct {
		Phone string `json:"phone"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	result, err := h.otp.RequestCode(c.Context(), req.Phone)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidPhone):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid phone number. Use format: 254XXXXXXXXX",
			})
		case errors.Is(err, services.ErrRateLimited):
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests. Please wait before requesting another code.",
			})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to send OTP",
			})
		}
	}

	response := fiber.Map{
		"success": true,
		"message": "OTP sent to your phone",
	}
	if result.Method != "" {
		response["method"] = result.Method
	}
	if result.DevCode != "" {
		// Development only: lets testers log in without a real SMS
		response["devOtp"] = result.DevCode
	}

	return c.JSON(response)
}

// VerifyOTP checks a submitted code and exchanges it for a session token
func (h *AuthHandler) VerifyOTP(c *fiber.Ctx) error {
	var req struct {
		Phone string `json:"phone"`
		Code  string `json:"code"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if req.Phone == "" || req.Code == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Phone and verification code required",
		})
	}

	if err := h.otp.VerifyCode(req.Phone, req.Code); err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidPhone):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid phone number format",
			})
		case errors.Is(err, services.ErrInvalidCode):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Verification code must be 6 digits",
			})
		case errors.Is(err, services.ErrOTPNotFound):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "No verification code found. Please request a new one.",
			})
		case errors.Is(err, services.ErrOTPExpired):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Verification code expired. Please request a new one.",
			})
		case errors.Is(err, services.ErrOTPMismatch):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid verification code. Please try again.",
			})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to verify code. Please try again.",
			})
		}
	}

	token, user, isNewUser, err := h.auth.ExchangeVerifiedPhone(req.Phone)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to verify code. Please try again.",
		})
	}

	return c.JSON(fiber.Map{
		"success":   true,
		"token":     token,
		"user":      user,
		"isNewUser": isNewUser,
	})
}

// Onboarding completes the authenticated user's business profile
func (h *AuthHandler) Onboarding(c *fiber.Ctx) error {
	userID, _ := c.Locals(middleware.LocalUserID).(string)

	var req models.OnboardingUpdate
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	user, err := h.store.GetUserByID(userID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "User not found",
		})
	}

	user.Name = req.Name
	user.BusinessName = req.BusinessName
	user.County = req.County
	user.Sector = req.Sector
	user.Stage = req.Stage

	if err := h.store.UpdateUser(user); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update profile",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"user":    user,
	})
}
