// handlers/points.go
package handlers

import (
	"errors"

	"points-ledger-system/middleware"
	"points-ledger-system/services"

	"github.com/gofiber/fiber/v2"
)

// errStatus maps the service error taxonomy onto transport status codes.
func errStatus(err error) int {
	switch {
	case errors.Is(err, services.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, services.ErrValidation):
		return fiber.StatusBadRequest
	case errors.Is(err, services.ErrConflict):
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

type adjustPointsRequest struct {
	WhopUserID string `json:"whop_user_id"`
	Amount     int64  `json:"amount"`
	CategoryID string `json:"category_id"`
	Reason     string `json:"reason"`
}

func SetupPointsRoutes(app *fiber.App, members *services.MemberService, ledger *services.LedgerService) {
	secured := app.Group("/", middleware.WhopContextMiddleware())

	secured.Post("/points/add", middleware.RequireAdmin(), func(c *fiber.Ctx) error {
		var req adjustPointsRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
		}
		if req.WhopUserID == "" || req.Amount == 0 || req.CategoryID == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "missing required fields"})
		}

		user, err := members.GetUserByWhopID(req.WhopUserID)
		if err != nil {
			return c.Status(errStatus(err)).JSON(fiber.Map{"error": "user not found"})
		}

		reason := req.Reason
		if reason == "" {
			reason = "Points added by admin"
		}
		actor := c.Locals("whop_user_id").(string)

		txn, err := ledger.AddPoints(user.ID, req.Amount, &req.CategoryID, reason, actor)
		if err != nil {
			return c.Status(errStatus(err)).JSON(fiber.Map{
				"error": "failed to add points",
				"cause": err.Error(),
			})
		}
		return c.JSON(fiber.Map{"success": true, "transaction": txn})
	})

	secured.Post("/points/subtract", middleware.RequireAdmin(), func(c *fiber.Ctx) error {
		var req adjustPointsRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
		}
		if req.WhopUserID == "" || req.Amount == 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "missing required fields"})
		}

		user, err := members.GetUserByWhopID(req.WhopUserID)
		if err != nil {
			return c.Status(errStatus(err)).JSON(fiber.Map{"error": "user not found"})
		}

		var categoryID *string
		if req.CategoryID != "" {
			categoryID = &req.CategoryID
		}
		reason := req.Reason
		if reason == "" {
			reason = "Points removed by admin"
		}
		actor := c.Locals("whop_user_id").(string)

		txn, err := ledger.SubtractPoints(user.ID, req.Amount, categoryID, reason, actor)
		if err != nil {
			return c.Status(errStatus(err)).JSON(fiber.Map{
				"error": "failed to subtract points",
				"cause": err.Error(),
			})
		}
		return c.JSON(fiber.Map{"success": true, "transaction": txn})
	})

	// History: members see their own, admins may query anyone via
	// ?whop_user_id=.
	secured.Get("/points/history", func(c *fiber.Ctx) error {
		whopUserID := c.Locals("whop_user_id").(string)
		isAdmin, _ := c.Locals("is_admin").(bool)
		if target := c.Query("whop_user_id"); target != "" && target != whopUserID {
			if !isAdmin {
				return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "admin role required"})
			}
			whopUserID = target
		}

		limit := c.QueryInt("limit", 50)

		user, err := members.GetUserByWhopID(whopUserID)
		if err != nil {
			if errors.Is(err, services.ErrNotFound) {
				return c.JSON(fiber.Map{"history": []any{}})
			}
			return c.Status(errStatus(err)).JSON(fiber.Map{"error": "failed to resolve user"})
		}

		history, err := ledger.GetHistory(user.ID, limit)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to get history",
				"cause": err.Error(),
			})
		}
		return c.JSON(fiber.Map{"history": history})
	})
}
