package controllers

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"

	"github.com/deceroacien/backend/internal/pkg/payments"
)

// captureNotification runs a request through a fiber app and returns what
// parseNotification extracted from it.
func captureNotification(t *testing.T, method, target, contentType, body string) payments.Notification {
	t.Helper()

	var got payments.Notification
	app := fiber.New()
	app.Add(method, "/api/mp/webhook", func(c *fiber.Ctx) error {
		got = parseNotification(c)
		return c.SendStatus(fiber.StatusOK)
	})

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("x-request-id", "req-1")
	req.Header.Set("x-signature", "ts=1,v1=abc")

	resp, err := app.Test(req)
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	return got
}

func TestParseNotificationFromQuery(t *testing.T) {
	n := captureNotification(t, fiber.MethodPost, "/api/mp/webhook?type=payment&data.id=123", "", "")
	assert.Equal(t, "payment", n.Topic)
	assert.Equal(t, "123", n.ResourceID)
	assert.Equal(t, "req-1", n.RequestID)
	assert.Equal(t, "ts=1,v1=abc", n.SignatureHeader)
}

func TestParseNotificationFromJSONBody(t *testing.T) {
	body := `{"type":"payment","action":"payment.updated","live_mode":true,"data":{"id":"456"}}`
	n := captureNotification(t, fiber.MethodPost, "/api/mp/webhook", fiber.MIMEApplicationJSON, body)
	assert.Equal(t, "payment", n.Topic)
	assert.Equal(t, "456", n.ResourceID)
	assert.Equal(t, "payment.updated", n.Action)
	assert.True(t, n.LiveMode)
}

func TestParseNotificationFromFormBody(t *testing.T) {
	n := captureNotification(t, fiber.MethodPost, "/api/mp/webhook", fiber.MIMEApplicationForm, "topic=merchant_order&id=789")
	assert.Equal(t, "merchant_order", n.Topic)
	assert.Equal(t, "789", n.ResourceID)
}

func TestParseNotificationQueryWinsOverBody(t *testing.T) {
	body := `{"type":"merchant_order","data":{"id":"999"}}`
	n := captureNotification(t, fiber.MethodPost, "/api/mp/webhook?type=payment&data.id=123", fiber.MIMEApplicationJSON, body)
	assert.Equal(t, "payment", n.Topic)
	assert.Equal(t, "123", n.ResourceID)
}

func TestFirstNonEmpty(t *testing.T) {
	assert.Equal(t, "a", firstNonEmpty("", "a", "b"))
	assert.Equal(t, "", firstNonEmpty("", "  ", ""))
}

func TestHandleWebhookChallenge(t *testing.T) {
	app := fiber.New()
	app.Get("/api/mp/webhook", HandleWebhookChallenge)

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/api/mp/webhook", nil))
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}
