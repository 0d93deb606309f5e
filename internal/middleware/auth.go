package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/example/afparfum/internal/utils"
)

const operatorContextKey = "currentOperator"

// AdminAuth validates bearer tokens and requires the admin role. The
// operator name is stored in the request context.
func AdminAuth(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "missing authorization header")
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid authorization header")
		}

		claims, err := utils.ParseToken(secret, parts[1])
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid token")
		}
		if claims.Role != utils.RoleAdmin {
			return fiber.NewError(fiber.StatusForbidden, "admin role required")
		}

		c.Locals(operatorContextKey, claims.Subject)
		return c.Next()
	}
}

// GetOperator returns the authenticated operator name.
func GetOperator(c *fiber.Ctx) (string, bool) {
	name, ok := c.Locals(operatorContextKey).(string)
	return name, ok && name != ""
}
