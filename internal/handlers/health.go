package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"
)

// Pinger checks a backing dependency.
type Pinger func(ctx context.Context) error

// Health reports whether the service can reach its database.
func Health(ping Pinger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if ping != nil {
			if err := ping(c.UserContext()); err != nil {
				return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "unavailable"})
			}
		}
		return c.JSON(fiber.Map{"status": "ok"})
	}
}
