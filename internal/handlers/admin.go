package handlers

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/biashadrive/biashadrive-backend/internal/services"
)

// AdminHandler serves operations endpoints behind the admin key
type AdminHandler struct {
	reports *services.ReportService
}

func NewAdminHandler(reports *services.ReportService) *AdminHandler {
	return &AdminHandler{reports: reports}
}

// ExportReport streams the transactions/diagnostics workbook
func (h *AdminHandler) ExportReport(c *fiber.Ctx) error {
	buf, err := h.reports.BuildWorkbook()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to build report",
		})
	}

	filename := fmt.Sprintf("biashadrive-report-%s.xlsx", time.Now().Format("2006-01-02"))
	c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.Send(buf.Bytes())
}
