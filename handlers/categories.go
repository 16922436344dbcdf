// handlers/categories.go
package handlers

import (
	"points-ledger-system/middleware"
	"points-ledger-system/services"

	"github.com/gofiber/fiber/v2"
)

type createCategoryRequest struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

func SetupCategoryRoutes(app *fiber.App, categories *services.CategoryService) {
	secured := app.Group("/", middleware.WhopContextMiddleware())

	secured.Get("/categories", func(c *fiber.Ctx) error {
		companyID := c.Locals("company_id").(string)
		cats, err := categories.ListCategories(companyID)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to list categories",
				"cause": err.Error(),
			})
		}
		return c.JSON(fiber.Map{"categories": cats})
	})

	secured.Post("/categories", middleware.RequireAdmin(), func(c *fiber.Ctx) error {
		var req createCategoryRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
		}
		if req.Name == "" || req.Color == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "missing required fields"})
		}

		companyID := c.Locals("company_id").(string)
		cat, err := categories.CreateCategory(req.Name, req.Color, companyID)
		if err != nil {
			return c.Status(errStatus(err)).JSON(fiber.Map{
				"error": "failed to create category",
				"cause": err.Error(),
			})
		}
		return c.JSON(fiber.Map{"category": cat})
	})

	secured.Delete("/categories/:id", middleware.RequireAdmin(), func(c *fiber.Ctx) error {
		if err := categories.DeleteCategory(c.Params("id")); err != nil {
			return c.Status(errStatus(err)).JSON(fiber.Map{
				"error": "failed to delete category",
				"cause": err.Error(),
			})
		}
		return c.JSON(fiber.Map{"success": true})
	})
}
