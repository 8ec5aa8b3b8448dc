package middleware

import (
	"github.com/deceroacien/backend/internal/pkg/identity"
	"github.com/deceroacien/backend/internal/pkg/usercontext"
	"github.com/gofiber/fiber/v2"
)

// AuthContext verifies the bearer token, if any, and stores the identity in
// the request context. Requests without a token pass through anonymously;
// per-route guards decide whether that is acceptable.
func AuthContext(verifier *identity.Verifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		if header == "" {
			return c.Next()
		}
		claims, err := verifier.VerifyAuthorization(header)
		if err != nil {
			return c.Next()
		}
		usercontext.SetUserContext(c, usercontext.UserContext{
			Subject:         claims.Subject,
			Email:           claims.Email,
			Name:            claims.Name,
			IsAuthenticated: true,
		})
		return c.Next()
	}
}

// RequireAuth rejects requests without a verified identity with a JSON 401.
func RequireAuth(c *fiber.Ctx) error {
	if !usercontext.IsAuthenticated(c) {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "unauthorized",
		})
	}
	return c.Next()
}
