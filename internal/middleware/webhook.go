package middleware

import (
	"crypto/subtle"
	"encoding/base64"
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// WebhookAuth checks the HTTP Basic credentials payment providers send with
// their callbacks.
func WebhookAuth(username, secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if secret == "" {
			log.Println("[Webhook] Secret not configured, rejecting callback")
			return fiber.NewError(fiber.StatusServiceUnavailable, "webhook not configured")
		}

		parts := strings.SplitN(c.Get(fiber.HeaderAuthorization), " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Basic") {
			return unauthorizedWebhook(c)
		}

		decoded, err := base64.StdEncoding.DecodeString(parts[1])
		if err != nil {
			return unauthorizedWebhook(c)
		}

		user, pass, ok := strings.Cut(string(decoded), ":")
		if !ok ||
			subtle.ConstantTimeCompare([]byte(user), []byte(username)) != 1 ||
			subtle.ConstantTimeCompare([]byte(pass), []byte(secret)) != 1 {
			return unauthorizedWebhook(c)
		}

		return c.Next()
	}
}

func unauthorizedWebhook(c *fiber.Ctx) error {
	log.Printf("[Webhook] Rejected callback from %s on %s", c.IP(), c.Path())
	c.Set(fiber.HeaderWWWAuthenticate, `Basic realm="payments"`)
	return fiber.NewError(fiber.StatusUnauthorized, "invalid webhook credentials")
}
