// middleware/webhook.go
package middleware

import (
	"log"
	"os"

	"github.com/gofiber/fiber/v2"
)

// WebhookAuthMiddleware validates the shared secret on webhook deliveries.
// When WHOP_WEBHOOK_SECRET is unset the check is skipped, matching platform
// setups where webhooks are unauthenticated.
func WebhookAuthMiddleware() fiber.Handler {
	expectedSecret := os.Getenv("WHOP_WEBHOOK_SECRET")
	if expectedSecret == "" {
		log.Println("⚠️  WHOP_WEBHOOK_SECRET not set — webhook endpoint is unauthenticated")
	}

	return func(c *fiber.Ctx) error {
		if expectedSecret == "" {
			return c.Next()
		}
		if c.Get("X-Whop-Webhook-Secret") != expectedSecret {
			log.Printf("❌ [WEBHOOK_AUTH] Invalid webhook secret for %s", c.Path())
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "invalid webhook secret",
			})
		}
		return c.Next()
	}
}
