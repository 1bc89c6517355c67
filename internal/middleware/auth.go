package middleware

import (
	"log"
	"os"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/biashadrive/biashadrive-backend/internal/services"
)

// LocalUserID is the locals key holding the authenticated user's id
const LocalUserID = "userID"

// RequireAuth validates the Bearer session token and stores the user id in
// request locals
func RequireAuth(auth *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "No token provided",
			})
		}

		claims, err := auth.ParseToken(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid or expired token",
			})
		}

		c.Locals(LocalUserID, claims.UserID)
		return c.Next()
	}
}

// RequireAdminKey gates admin routes behind the X-Admin-Key header
func RequireAdminKey() fiber.Handler {
	return func(c *fiber.Ctx) error {
		adminKey := os.Getenv("ADMIN_API_KEY")
		if adminKey == "" {
			log.Println("ERROR: ADMIN_API_KEY not set")
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"error": "Admin access not configured",
			})
		}

		if c.Get("X-Admin-Key") != adminKey {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid admin key",
			})
		}

		return c.Next()
	}
}
