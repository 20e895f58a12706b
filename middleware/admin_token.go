// middleware/admin_token.go
package middleware

import (
	"log"
	"strings"

	"race-challenge-system/services"

	"github.com/gofiber/fiber/v2"
)

// AdminAPIAuth guards /api/admin routes. The signed session token may come from
// the session cookie (browser) or from X-Admin-Token / "Authorization: Bearer" (scripts).
func AdminAPIAuth(sessions *services.SessionManager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		for _, token := range candidateTokens(c) {
			if sessions.Verify(token) == nil {
				return c.Next()
			}
		}

		log.Printf("🚫 [ADMIN_AUTH] Rejected %s %s from %s", c.Method(), c.Path(), c.IP())
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Nao autorizado.",
		})
	}
}

func candidateTokens(c *fiber.Ctx) []string {
	var tokens []string
	if cookie := c.Cookies(services.SessionCookieName); cookie != "" {
		tokens = append(tokens, cookie)
	}
	if header := strings.TrimSpace(c.Get(services.AdminTokenHeader)); header != "" {
		tokens = append(tokens, header)
	}
	if auth := c.Get(fiber.HeaderAuthorization); strings.HasPrefix(auth, "Bearer ") {
		tokens = append(tokens, strings.TrimSpace(strings.TrimPrefix(auth, "Bearer ")))
	}
	return tokens
}
