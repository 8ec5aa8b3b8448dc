package router

import (
	"strings"
	"time"

	"github.com/deceroacien/backend/app/controllers"
	"github.com/deceroacien/backend/internal/pkg/constants"
	"github.com/deceroacien/backend/internal/pkg/env"
	"github.com/deceroacien/backend/internal/pkg/identity"
	"github.com/deceroacien/backend/internal/pkg/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

type ApiRouter struct {
	verifier *identity.Verifier
}

func NewApiRouter(verifier *identity.Verifier) *ApiRouter {
	return &ApiRouter{verifier: verifier}
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	api := app.Group("/api",
		cors.New(corsConfig()),
		limiter.New(limiter.Config{
			Max:        120,
			Expiration: time.Minute,
			// The processor's own retries must never be rate limited.
			Next: func(c *fiber.Ctx) bool {
				return strings.HasPrefix(c.Path(), "/api/mp/webhook")
			},
		}),
		middleware.AuthContext(h.verifier),
	)

	api.Get(constants.RouteHealth, func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"ok": true, "ts": time.Now().UnixMilli()})
	})

	api.Get(constants.RouteAuthMe, controllers.HandleAuthMe)
	api.Post(constants.RouteAuthVerify, controllers.HandleAuthVerify)
	api.Post(constants.RouteReconcileGuest, controllers.HandleReconcileGuest)

	api.Post(constants.RouteCreatePreference, controllers.HandleCreatePreference)
	api.Get(constants.RouteWebhook, controllers.HandleWebhookChallenge)
	api.Post(constants.RouteWebhook, controllers.HandleWebhook)
	api.Get(constants.RouteVerifyGrant, controllers.HandleVerifyGrant)

	api.Post(constants.RouteDownloadLeads, controllers.HandleDownloadLead)

	api.Get(constants.RouteMetricsWebhooks, middleware.RequireAuth, controllers.HandleWebhookMetrics)
}

func corsConfig() cors.Config {
	origins := env.GetEnv("ALLOWED_ORIGINS",
		"http://localhost:3000,http://127.0.0.1:3000,https://deceroacien.app,https://www.deceroacien.app")
	return cors.Config{
		AllowOrigins: origins,
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Content-Type,Authorization",
	}
}
