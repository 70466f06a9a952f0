package middleware

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"

	"github.com/collapp/collapp-api/internal/utils"
)

// JWTProtected validates bearer tokens and binds the account identity to the
// request. Downstream handlers read user_id and user_role from Locals.
func JWTProtected(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString, err := bearerToken(c.Get("Authorization"))
		if err != nil {
			return utils.SendError(c, fiber.StatusUnauthorized, err.Error())
		}

		token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method")
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid token")
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid token claims")
		}

		if userID, ok := subjectID(claims); ok {
			c.Locals("user_id", userID)
		}
		if role := roleClaim(claims); role != "" {
			c.Locals("user_role", role)
		}

		return c.Next()
	}
}

func bearerToken(header string) (string, error) {
	if header == "" {
		return "", fmt.Errorf("authorization header missing")
	}

	const bearer = "Bearer "
	if !strings.HasPrefix(strings.ToLower(header), strings.ToLower(bearer)) {
		return "", fmt.Errorf("invalid authorization header")
	}

	token := strings.TrimSpace(header[len(bearer):])
	if token == "" {
		return "", fmt.Errorf("invalid token")
	}
	return token, nil
}

// subjectID accepts the claim shapes the auth service has minted over time:
// numeric sub, string sub, and the legacy user_id claim.
func subjectID(claims jwt.MapClaims) (uint, bool) {
	for _, key := range []string{"sub", "user_id", "id"} {
		value, ok := claims[key]
		if !ok {
			continue
		}
		switch v := value.(type) {
		case float64:
			if v >= 0 {
				return uint(v), true
			}
		case string:
			if parsed, err := strconv.ParseUint(v, 10, 64); err == nil {
				return uint(parsed), true
			}
		case int:
			if v >= 0 {
				return uint(v), true
			}
		}
	}
	return 0, false
}

func roleClaim(claims jwt.MapClaims) string {
	for _, key := range []string{"role", "roles"} {
		value, ok := claims[key]
		if !ok {
			continue
		}
		switch v := value.(type) {
		case string:
			if role := strings.ToLower(strings.TrimSpace(v)); role != "" {
				return role
			}
		case []interface{}:
			for _, item := range v {
				if str, ok := item.(string); ok {
					if role := strings.ToLower(strings.TrimSpace(str)); role != "" {
						return role
					}
				}
			}
		}
	}
	return ""
}
