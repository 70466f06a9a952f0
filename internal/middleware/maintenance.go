package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/collapp/collapp-api/internal/utils"
)

// Maintenance rejects requests with 503 while the platform is in maintenance mode.
// Health, metrics and admin routes stay reachable so operators can lift the flag.
func Maintenance(inMaintenance func() bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		path := c.Path()
		if strings.HasPrefix(path, "/api/health") ||
			strings.HasPrefix(path, "/api/admin") ||
			strings.HasPrefix(path, "/metrics") {
			return c.Next()
		}

		if inMaintenance != nil && inMaintenance() {
			return utils.SendError(c, fiber.StatusServiceUnavailable, "platform is under maintenance")
		}

		return c.Next()
	}
}
