package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/biashadrive/biashadrive-backend/internal/models"
	"github.com/biashadrive/biashadrive-backend/internal/services"
	"github.com/biashadrive/biashadrive-backend/internal/storage"
)

// PlaybookHandler serves public playbook reads and admin CRUD
type PlaybookHandler struct {
	store     storage.Store
	templates *services.TemplateService
}

func NewPlaybookHandler(store storage.Store, templates *services.TemplateService) *PlaybookHandler {
	return &PlaybookHandler{
		store:     store,
		templates: templates,
	}
}

// playbookRequest carries the writable fields for create and update
type playbookRequest struct {
	Slug          string `json:"slug"`
	Title         string `json:"title"`
	TitleSw       string `json:"titleSw"`
	Description   string `json:"description"`
	DescriptionSw string `json:"descriptionSw"`
	Content       string `json:"content"`
	ContentSw     string `json:"contentSw"`
	Domain        string `json:"domain"`
	Sector        string `json:"sector"`
	County        string `json:"county"`
	Effort        string `json:"effort"`
	TimeMinutes   int    `json:"timeMinutes"`
	TemplateURL   string `json:"templateUrl"`
	Published     bool   `json:"published"`
}

// List returns published playbooks, optionally filtered by domain
func (h *PlaybookHandler) List(c *fiber.Ctx) error {
	playbooks, err := h.store.ListPlaybooks(c.Query("domain"), true)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to get playbooks",
		})
	}

	return c.JSON(fiber.Map{"playbooks": summaries(playbooks)})
}

// Get returns one playbook by id and counts the view
func (h *PlaybookHandler) Get(c *fiber.Ctx) error {
	playbook, err := h.store.GetPlaybook(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Playbook not found",
		})
	}

	if err := h.store.IncrementPlaybookViews(playbook.PlaybookID); err == nil {
		playbook.Views++
	}

	return c.JSON(fiber.Map{"playbook": playbook})
}

// DownloadTemplate hands out a short-lived download URL for the playbook's
// template file and counts the download
func (h *PlaybookHandler) DownloadTemplate(c *fiber.Ctx) error {
	playbook, err := h.store.GetPlaybook(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Playbook not found",
		})
	}

	var url string
	switch {
	case playbook.TemplateKey != "" && h.templates != nil:
		url, err = h.templates.DownloadURL(c.Context(), playbook.TemplateKey)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to generate download link",
			})
		}
	case playbook.TemplateURL != "":
		url = playbook.TemplateURL
	default:
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Playbook has no template",
		})
	}

	_ = h.store.IncrementPlaybookDownloads(playbook.PlaybookID)

	return c.JSON(fiber.Map{
		"success": true,
		"url":     url,
	})
}

// AdminList returns all playbooks; pass published=false to include drafts
func (h *PlaybookHandler) AdminList(c *fiber.Ctx) error {
	publishedOnly := c.Query("published") != "false"

	playbooks, err := h.store.ListPlaybooks(c.Query("domain"), publishedOnly)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to get playbooks",
		})
	}

	return c.JSON(fiber.Map{"playbooks": summaries(playbooks)})
}

// Create adds a new playbook
func (h *PlaybookHandler) Create(c *fiber.Ctx) error {
	var req playbookRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if req.Slug == "" || req.Title == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Slug and title are required",
		})
	}

	playbook, err := h.store.CreatePlaybook(&models.Playbook{
		Slug:          req.Slug,
		Title:         req.Title,
		TitleSw:       req.TitleSw,
		Description:   req.Description,
		DescriptionSw: req.DescriptionSw,
		Content:       req.Content,
		ContentSw:     req.ContentSw,
		Domain:        req.Domain,
		Sector:        req.Sector,
		County:        req.County,
		Effort:        req.Effort,
		TimeMinutes:   req.TimeMinutes,
		TemplateURL:   req.TemplateURL,
		Published:     req.Published,
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create playbook",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success":  true,
		"playbook": playbook,
	})
}

// Update overwrites a playbook's writable fields
func (h *PlaybookHandler) Update(c *fiber.Ctx) error {
	playbook, err := h.store.GetPlaybook(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Playbook not found",
		})
	}

	var req playbookRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	playbook.Title = req.Title
	playbook.TitleSw = req.TitleSw
	playbook.Description = req.Description
	playbook.DescriptionSw = req.DescriptionSw
	playbook.Content = req.Content
	playbook.ContentSw = req.ContentSw
	playbook.Domain = req.Domain
	playbook.Sector = req.Sector
	playbook.County = req.County
	playbook.Effort = req.Effort
	playbook.TimeMinutes = req.TimeMinutes
	playbook.TemplateURL = req.TemplateURL
	playbook.Published = req.Published

	if err := h.store.UpdatePlaybook(playbook); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update playbook",
		})
	}

	return c.JSON(fiber.Map{
		"success":  true,
		"playbook": playbook,
	})
}

// Delete removes a playbook
func (h *PlaybookHandler) Delete(c *fiber.Ctx) error {
	if err := h.store.DeletePlaybook(c.Params("id")); err != nil {
		if errors.Is(err, storage.ErrPlaybookNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Playbook not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to delete playbook",
		})
	}

	return c.JSON(fiber.Map{"success": true})
}

// TemplateUpload hands the admin a presigned PUT URL and records the object
// key the upload will land on
func (h *PlaybookHandler) TemplateUpload(c *fiber.Ctx) error {
	if h.templates == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "Template storage not configured",
		})
	}

	playbook, err := h.store.GetPlaybook(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Playbook not found",
		})
	}

	url, key, err := h.templates.UploadURL(c.Context(), playbook.PlaybookID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to generate upload link",
		})
	}

	playbook.TemplateKey = key
	if err := h.store.UpdatePlaybook(playbook); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to store template key",
		})
	}

	return c.JSON(fiber.Map{
		"success":   true,
		"uploadUrl": url,
	})
}

func summaries(playbooks []*models.Playbook) []models.PlaybookSummary {
	out := make([]models.PlaybookSummary, 0, len(playbooks))
	for _, p := range playbooks {
		out = append(out, p.Summary())
	}
	return out
}
