package middleware

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/collapp/collapp-api/internal/utils"
)

// RequireRole gates a route group to the given account roles. It expects
// JWTProtected to have populated user_role already.
func RequireRole(roles ...string) fiber.Handler {
	allowed := make(map[string]struct{}, len(roles))
	for _, role := range roles {
		if normalized := strings.ToLower(strings.TrimSpace(role)); normalized != "" {
			allowed[normalized] = struct{}{}
		}
	}

	return func(c *fiber.Ctx) error {
		if _, ok := allowed[currentRole(c)]; !ok {
			return utils.SendError(c, fiber.StatusForbidden, "insufficient permissions")
		}
		return c.Next()
	}
}

func currentRole(c *fiber.Ctx) string {
	value := c.Locals("user_role")
	if value == nil {
		return ""
	}
	if role, ok := value.(string); ok {
		return strings.ToLower(strings.TrimSpace(role))
	}
	return strings.ToLower(strings.TrimSpace(fmt.Sprintf("%v", value)))
}
