package usercontext

import "github.com/gofiber/fiber/v2"

// UserContext represents the verified identity for a request
type UserContext struct {
	Subject         string `json:"subject"`
	Email           string `json:"email"`
	Name            string `json:"name"`
	IsAuthenticated bool   `json:"is_authenticated"`
}

// GetUserContext retrieves the user context from fiber context
// Returns a default anonymous context if none is set
func GetUserContext(c *fiber.Ctx) UserContext {
	if ctx := c.Locals(KeyUserContext); ctx != nil {
		return ctx.(UserContext)
	}
	return UserContext{IsAuthenticated: false}
}

// SetUserContext stores the verified identity for downstream handlers
func SetUserContext(c *fiber.Ctx, ctx UserContext) {
	c.Locals(KeyUserContext, ctx)
}

// IsAuthenticated checks if the current request carries a verified identity
func IsAuthenticated(c *fiber.Ctx) bool {
	return GetUserContext(c).IsAuthenticated
}
