package controllers

import (
	"encoding/json"
	"net/url"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/deceroacien/backend/internal/pkg/metrics/counter"
	"github.com/deceroacien/backend/internal/pkg/payments"
)

// HandleWebhookChallenge answers the processor's GET reachability probe.
func HandleWebhookChallenge(c *fiber.Ctx) error {
	return c.SendString("ok")
}

// HandleWebhook receives a processor notification, normalizes it and runs it
// through the reconciler. Per the no-infinite-retry policy, everything except
// a signature mismatch is acknowledged with 200.
func HandleWebhook(c *fiber.Ctx) error {
	n := parseNotification(c)
	if n.Topic != "" {
		_ = counter.AddWebhookNotification(n.Topic)
	}
	if webhookService.Process(c.Context(), n) == payments.OutcomeUnauthorized {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"ok": false})
	}
	return c.JSON(fiber.Map{"ok": true})
}

// parseNotification merges query params and body. The processor may deliver
// the payload as JSON or form-encoded, and retries sometimes move fields
// between body and query string.
func parseNotification(c *fiber.Ctx) payments.Notification {
	n := payments.Notification{
		Topic:           c.Query("type", c.Query("topic")),
		ResourceID:      c.Query("data.id", c.Query("id")),
		RequestID:       c.Get("x-request-id"),
		SignatureHeader: c.Get("x-signature"),
	}

	body := c.Body()
	if len(body) == 0 {
		return n
	}

	var payload struct {
		Type     string `json:"type"`
		Topic    string `json:"topic"`
		Action   string `json:"action"`
		LiveMode bool   `json:"live_mode"`
		ID       string `json:"id"`
		DataID   string `json:"data.id"`
		Data     struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if n.Topic == "" {
			n.Topic = firstNonEmpty(payload.Type, payload.Topic)
		}
		if n.ResourceID == "" {
			n.ResourceID = firstNonEmpty(payload.Data.ID, payload.ID, payload.DataID)
		}
		n.Action = payload.Action
		n.LiveMode = payload.LiveMode
		return n
	}

	// Form-encoded fallback.
	if values, err := url.ParseQuery(string(body)); err == nil {
		if n.Topic == "" {
			n.Topic = firstNonEmpty(values.Get("type"), values.Get("topic"))
		}
		if n.ResourceID == "" {
			n.ResourceID = firstNonEmpty(values.Get("data.id"), values.Get("id"))
		}
	}
	return n
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
