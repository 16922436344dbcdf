// middleware/whop.go
package middleware

import (
	"log"

	"github.com/gofiber/fiber/v2"
)

// WhopContextMiddleware extracts the session the Whop proxy resolved for this
// request. Authentication itself happened upstream; we only read the headers
// and refuse requests that arrive without an identity.
func WhopContextMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := c.Get("X-Whop-User-Id")
		companyID := c.Get("X-Whop-Company-Id")

		if userID == "" || companyID == "" {
			log.Printf("❌ [WHOP_CTX] Missing identity headers on %s", c.Path())
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "missing Whop identity — request must come through the Whop proxy",
			})
		}

		role := c.Get("X-Whop-Role")
		isAdmin := role == "admin" || role == "owner"

		// Attach to ctx for handlers
		c.Locals("whop_user_id", userID)
		c.Locals("company_id", companyID)
		c.Locals("username", c.Get("X-Whop-Username"))
		c.Locals("email", c.Get("X-Whop-Email"))
		c.Locals("is_admin", isAdmin)

		return c.Next()
	}
}

// RequireAdmin gates admin-only routes. Must run after WhopContextMiddleware.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		isAdmin, _ := c.Locals("is_admin").(bool)
		if !isAdmin {
			log.Printf("🚫 [WHOP_CTX] Non-admin %v attempted %s", c.Locals("whop_user_id"), c.Path())
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "admin role required",
			})
		}
		return c.Next()
	}
}
