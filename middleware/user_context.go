package middleware

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
)

// UserContext extracts the caller's user id from the X-User-Id header and
// attaches it to the request context. Anonymous requests get id 0; the
// handlers that require identity enforce it themselves.
func UserContext() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := 0
		if raw := c.Get("X-User-Id"); raw != "" {
			if id, err := strconv.Atoi(raw); err == nil && id > 0 {
				userID = id
			}
		}
		c.Locals("user_id", uint(userID))
		return c.Next()
	}
}

// UserID reads the id stored by UserContext, zero when anonymous.
func UserID(c *fiber.Ctx) uint {
	if id, ok := c.Locals("user_id").(uint); ok {
		return id
	}
	return 0
}
