package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/biashadrive/biashadrive-backend/internal/middleware"
	"github.com/biashadrive/biashadrive-backend/internal/models"
	"github.com/biashadrive/biashadrive-backend/internal/services"
	"github.com/biashadrive/biashadrive-backend/internal/storage"
)

// DiagnosticHandler handles questionnaire submission and history
type DiagnosticHandler struct {
	store storage.Store
}

func NewDiagnosticHandler(store storage.Store) *DiagnosticHandler {
	return &DiagnosticHandler{store: store}
}

// Submit scores a completed questionnaire and persists the result
func (h *DiagnosticHandler) Submit(c *fiber.Ctx) error {
	userID, _ := c.Locals(middleware.LocalUserID).(string)

	var req struct {
		Domain    string            `json:"domain"`
		Responses map[string]string `json:"responses"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if req.Domain == "" || req.Responses == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Domain and responses required",
		})
	}

	if !services.IsKnownDomain(req.Domain) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unknown diagnostic domain",
		})
	}

	score := services.CalculateDiagnosticScore(req.Domain, req.Responses)
	actionPlan := services.GenerateActionPlan(req.Domain, req.Responses, score)

	diagnostic := &models.Diagnostic{
		UserID: userID,
		Domain: req.Domain,
		Score:  score,
	}
	if err := diagnostic.SetResponses(req.Responses); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to submit diagnostic",
		})
	}
	if err := diagnostic.SetActionPlan(actionPlan); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to submit diagnostic",
		})
	}

	diagnostic, err := h.store.CreateDiagnostic(diagnostic)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to submit diagnostic",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"diagnostic": fiber.Map{
			"id":         diagnostic.DiagnosticID,
			"domain":     req.Domain,
			"score":      score,
			"actionPlan": actionPlan,
		},
	})
}

// List returns the authenticated user's diagnostics, newest first
func (h *DiagnosticHandler) List(c *fiber.Ctx) error {
	userID, _ := c.Locals(middleware.LocalUserID).(string)

	diagnostics, err := h.store.GetDiagnosticsByUser(userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to get diagnostics",
		})
	}

	out := make([]fiber.Map, 0, len(diagnostics))
	for _, d := range diagnostics {
		out = append(out, fiber.Map{
			"id":         d.DiagnosticID,
			"domain":     d.Domain,
			"score":      d.Score,
			"status":     d.Status,
			"responses":  d.ResponsesMap(),
			"actionPlan": d.ActionPlanRaw(),
			"createdAt":  d.CreatedAt,
		})
	}

	return c.JSON(fiber.Map{"diagnostics": out})
}

// Questions returns the question bank for a domain so clients render the
// same form the scorer expects
func (h *DiagnosticHandler) Questions(c *fiber.Ctx) error {
	domain := c.Params("domain")
	questions, ok := services.DiagnosticQuestions[domain]
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Unknown diagnostic domain",
		})
	}

	return c.JSON(fiber.Map{
		"domain":    domain,
		"questions": questions,
	})
}
