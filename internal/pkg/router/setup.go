package router

import (
	"github.com/deceroacien/backend/internal/pkg/identity"
	"github.com/gofiber/fiber/v2"
)

// Router installs a set of routes on the app.
type Router interface {
	InstallRouter(app *fiber.App)
}

func InstallRouter(app *fiber.App, verifier *identity.Verifier) {
	setup(app, NewApiRouter(verifier))
}

func setup(app *fiber.App, router ...Router) {
	for _, r := range router {
		r.InstallRouter(app)
	}
}
