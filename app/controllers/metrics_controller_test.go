package controllers

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"

	"github.com/deceroacien/backend/internal/pkg/middleware"
	"github.com/deceroacien/backend/internal/pkg/usercontext"
)

func TestHandleWebhookMetricsRequiresAuth(t *testing.T) {
	app := fiber.New()
	app.Get("/api/metrics/webhooks", middleware.RequireAuth, HandleWebhookMetrics)

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/api/metrics/webhooks", nil))
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestHandleWebhookMetricsAnswersWithTopics(t *testing.T) {
	app := fiber.New()
	app.Get("/api/metrics/webhooks", func(c *fiber.Ctx) error {
		usercontext.SetUserContext(c, usercontext.UserContext{Subject: "sub-1", IsAuthenticated: true})
		return c.Next()
	}, middleware.RequireAuth, HandleWebhookMetrics)

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/api/metrics/webhooks", nil))
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body map[string]interface{}
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Contains(t, body, "topics")
}
