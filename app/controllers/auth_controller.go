package controllers

import (
	"encoding/json"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/deceroacien/backend/app/models"
	"github.com/deceroacien/backend/internal/pkg/cache"
	"github.com/deceroacien/backend/internal/pkg/usercontext"
)

const enrollmentsCacheTTL = 5 * time.Minute

// HandleAuthMe upserts the authenticated user and returns the profile plus
// the entitlement keys it owns.
func HandleAuthMe(c *fiber.Ctx) error {
	uc := usercontext.GetUserContext(c)
	if !uc.IsAuthenticated {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}
	if uc.Email == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "email_missing_in_token"})
	}

	first, last := models.SplitFullName(uc.Name)
	user, err := directoryService.UpsertBySubject(c.Context(), uc.Subject, uc.Email, first, last)
	if err != nil {
		log.Printf("auth/me: upserting %s failed: %v", uc.Subject, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error"})
	}

	enrollments, err := listEnrollments(user.ID)
	if err != nil {
		log.Printf("auth/me: listing enrollments for user %d failed: %v", user.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error"})
	}

	return c.JSON(fiber.Map{
		"user": fiber.Map{
			"id":         user.ID,
			"subject":    user.ExternalSubject,
			"email":      user.Email,
			"first_name": user.FirstName,
			"last_name":  user.LastName,
		},
		"enrollments": enrollments,
	})
}

// HandleAuthVerify confirms the bearer token without side effects.
func HandleAuthVerify(c *fiber.Ctx) error {
	if !usercontext.IsAuthenticated(c) {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// HandleReconcileGuest merges guest rows sharing the caller's email into the
// caller's account. Errors are reported as {ok:false}, never as 5xx, because
// the front-end calls this opportunistically after login.
func HandleReconcileGuest(c *fiber.Ctx) error {
	uc := usercontext.GetUserContext(c)
	if !uc.IsAuthenticated || uc.Email == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}

	merged, _, err := directoryService.ReconcileGuest(c.Context(), uc.Subject, uc.Email)
	if err != nil {
		log.Printf("reconcile-guest: merge for %s failed: %v", uc.Subject, err)
		return c.JSON(fiber.Map{"ok": false})
	}
	return c.JSON(fiber.Map{"ok": true, "merged": merged})
}

// listEnrollments reads the entitlement keys through the cache when it is
// reachable, falling back to the database.
func listEnrollments(userID uint) ([]string, error) {
	key := cache.EnrollmentsKey(userID)
	if raw, err := cache.Get(key); err == nil && raw != "" {
		var keys []string
		if err := json.Unmarshal([]byte(raw), &keys); err == nil {
			return keys, nil
		}
	}

	keys, err := enrollmentRepo.ListKeysByUser(userID)
	if err != nil {
		return nil, err
	}
	if keys == nil {
		keys = []string{}
	}
	if raw, err := json.Marshal(keys); err == nil {
		if err := cache.Set(key, string(raw), enrollmentsCacheTTL); err != nil {
			log.Printf("auth/me: caching enrollments for user %d failed: %v", userID, err)
		}
	}
	return keys, nil
}
