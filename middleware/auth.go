// middleware/auth.go
package middleware

import (
	"log"
	"strings"

	"race-challenge-system/services"

	"github.com/gofiber/fiber/v2"
)

const (
	AdminPrefix    = "/admin"
	AdminLoginPath = "/admin/login"
)

// IsProtectedAdminPath reports whether path is an admin page other than the login page.
// Fiber routes case-insensitively, so the comparison is too.
func IsProtectedAdminPath(path string) bool {
	path = strings.ToLower(strings.TrimRight(path, "/"))
	if path != AdminPrefix && !strings.HasPrefix(path, AdminPrefix+"/") {
		return false
	}
	return path != AdminLoginPath && !strings.HasPrefix(path, AdminLoginPath+"/")
}

// AdminPageGate redirects browsers without a valid session cookie to the login page.
// Mount it app-wide; non-admin paths pass straight through.
func AdminPageGate(sessions *services.SessionManager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !IsProtectedAdminPath(c.Path()) {
			return c.Next()
		}
		if err := sessions.Verify(c.Cookies(services.SessionCookieName)); err != nil {
			log.Printf("🔒 [ADMIN_GATE] Redirecting %s to login: %v", c.Path(), err)
			return c.Redirect(AdminLoginPath, fiber.StatusFound)
		}
		return c.Next()
	}
}
