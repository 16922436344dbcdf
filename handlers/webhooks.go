// handlers/webhooks.go
package handlers

import (
	"log"

	"points-ledger-system/middleware"
	"points-ledger-system/models"
	"points-ledger-system/services"

	"github.com/gofiber/fiber/v2"
)

type webhookEvent struct {
	Type string `json:"type"`
	Data struct {
		UserID    string `json:"user_id"`
		Username  string `json:"username"`
		Email     string `json:"email"`
		AvatarURL string `json:"avatar_url"`
	} `json:"data"`
}

// SetupWebhookRoutes ingests platform events. Only membership events matter
// here; everything else is acknowledged and ignored so the platform does not
// retry deliveries.
func SetupWebhookRoutes(app *fiber.App, members *services.MemberService) {
	app.Post("/webhooks", middleware.WebhookAuthMiddleware(), func(c *fiber.Ctx) error {
		var event webhookEvent
		if err := c.BodyParser(&event); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid webhook payload"})
		}

		switch event.Type {
		case "user.joined", "user.updated":
			if event.Data.UserID == "" {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "missing user_id"})
			}
			_, err := members.UpsertUser(event.Data.UserID, models.UserProfile{
				Username:  event.Data.Username,
				Email:     event.Data.Email,
				AvatarURL: event.Data.AvatarURL,
			})
			if err != nil {
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
					"error": "failed to upsert user",
					"cause": err.Error(),
				})
			}
		default:
			log.Printf("Unhandled webhook type: %s", event.Type)
		}

		return c.JSON(fiber.Map{"success": true})
	})
}
