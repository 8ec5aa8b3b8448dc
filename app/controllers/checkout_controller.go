package controllers

import (
	"encoding/json"
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/deceroacien/backend/internal/pkg/checkout"
	"github.com/deceroacien/backend/internal/pkg/mercadopago"
)

// HandleCreatePreference creates a hosted checkout session for the requested
// items. The endpoint is public: guest checkouts carry no user reference and
// get resolved later by the webhook.
func HandleCreatePreference(c *fiber.Ctx) error {
	var req checkout.Request
	// Items use a custom tagged-union decoder, so parse the raw body.
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_body"})
	}

	session, err := checkoutService.CreateSession(c.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, checkout.ErrInvalidItems):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_items"})
		case errors.Is(err, mercadopago.ErrNotConfigured):
			log.Printf("create-preference: %v", err)
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "not_configured"})
		default:
			log.Printf("create-preference: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_error"})
		}
	}

	return c.JSON(session)
}
