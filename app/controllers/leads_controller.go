package controllers

import (
	"encoding/json"
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/deceroacien/backend/app/models"
	"github.com/deceroacien/backend/internal/pkg/metrics/counter"
)

type downloadLeadRequest struct {
	Email    string                 `json:"email"`
	Name     string                 `json:"name"`
	Source   string                 `json:"source"`
	Tags     []string               `json:"tags"`
	Metadata map[string]interface{} `json:"metadata"`
}

// HandleDownloadLead stores a gated-download lead. Duplicate submissions for
// the same email+source are absorbed and reported with stored=false.
func HandleDownloadLead(c *fiber.Ctx) error {
	var req downloadLeadRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_body"})
	}

	lead := &models.DownloadLead{
		Email:  models.NormalizeEmail(req.Email),
		Name:   strings.TrimSpace(req.Name),
		Source: strings.TrimSpace(req.Source),
		Tags:   strings.Join(req.Tags, ","),
	}
	if len(req.Metadata) > 0 {
		if raw, err := json.Marshal(req.Metadata); err == nil {
			lead.MetadataJSON = string(raw)
		}
	}
	if err := lead.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_email"})
	}

	stored, err := leadRepo.CreateIfNotExists(lead)
	if err != nil {
		log.Printf("leads/downloads: storing %s failed: %v", lead.Email, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_error"})
	}

	if stored {
		_ = counter.AddLeadSubmission(lead.Source)
	}
	return c.JSON(fiber.Map{"ok": true, "stored": stored, "id": lead.ID})
}
