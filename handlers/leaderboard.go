// handlers/leaderboard.go
package handlers

import (
	"points-ledger-system/middleware"
	"points-ledger-system/models"
	"points-ledger-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupLeaderboardRoutes(app *fiber.App, members *services.MemberService, leaderboard *services.LeaderboardService) {
	secured := app.Group("/", middleware.WhopContextMiddleware())

	secured.Get("/leaderboard", func(c *fiber.Ctx) error {
		period := models.Period(c.Query("period", string(models.PeriodAllTime)))
		limit := c.QueryInt("limit", 20)

		entries, err := leaderboard.GetLeaderboard(period, limit)
		if err != nil {
			return c.Status(errStatus(err)).JSON(fiber.Map{
				"error": "failed to get leaderboard",
				"cause": err.Error(),
			})
		}
		if entries == nil {
			entries = []models.LeaderboardEntry{}
		}
		return c.JSON(fiber.Map{"period": period, "leaderboard": entries})
	})

	// The viewer's own live rank. Upserts the session profile first so a
	// member sees a rank on their very first visit.
	secured.Get("/rank", func(c *fiber.Ctx) error {
		whopUserID := c.Locals("whop_user_id").(string)
		username, _ := c.Locals("username").(string)
		email, _ := c.Locals("email").(string)

		user, err := members.UpsertUser(whopUserID, models.UserProfile{
			Username: username,
			Email:    email,
		})
		if err != nil {
			return c.Status(errStatus(err)).JSON(fiber.Map{
				"error": "failed to resolve user",
				"cause": err.Error(),
			})
		}

		rank, err := leaderboard.GetUserRank(user.ID)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to get rank",
				"cause": err.Error(),
			})
		}
		return c.JSON(fiber.Map{"rank": rank, "total_points": user.TotalPoints})
	})

	secured.Get("/members/:whopUserID/rank", func(c *fiber.Ctx) error {
		user, err := members.GetUserByWhopID(c.Params("whopUserID"))
		if err != nil {
			// Unknown users rank 0 rather than erroring.
			return c.JSON(fiber.Map{"rank": 0})
		}
		rank, err := leaderboard.GetUserRank(user.ID)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to get rank",
				"cause": err.Error(),
			})
		}
		return c.JSON(fiber.Map{"rank": rank, "total_points": user.TotalPoints})
	})

	secured.Get("/members", func(c *fiber.Ctx) error {
		users, err := members.ListUsers()
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to list members",
				"cause": err.Error(),
			})
		}
		return c.JSON(fiber.Map{
			"users":      users,
			"company_id": c.Locals("company_id"),
		})
	})
}
