package controllers

import (
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/deceroacien/backend/internal/pkg/metrics/counter"
)

// HandleWebhookMetrics reports the accumulated per-topic webhook delivery
// counts. Counters are best-effort, so a cache outage answers with an empty
// map instead of an error.
func HandleWebhookMetrics(c *fiber.Ctx) error {
	topics, err := counter.WebhookTopicCounts()
	if err != nil {
		log.Printf("metrics/webhooks: reading topic counts failed: %v", err)
		topics = map[string]int64{}
	}
	return c.JSON(fiber.Map{"topics": topics})
}
