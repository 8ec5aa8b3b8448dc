package controllers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/deceroacien/backend/internal/pkg/metrics/counter"
)

// HandleVerifyGrant checks the signed grant carried back on the checkout
// success URL. The answer is only ever {ok:bool}; why a grant failed is not
// disclosed to the caller.
func HandleVerifyGrant(c *fiber.Ctx) error {
	grant := c.Query("grant")
	t := c.Query("t")
	ref := c.Query("ref")
	sig := c.Query("sig")

	if grant == "" || t == "" || sig == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"ok": false, "reason": "missing_params"})
	}

	ts, err := strconv.ParseInt(t, 10, 64)
	if err != nil {
		return c.JSON(fiber.Map{"ok": false})
	}

	ok := grantSigner.Verify(grant, ts, ref, sig)
	_ = counter.AddGrantCheck(ok)
	return c.JSON(fiber.Map{"ok": ok})
}
