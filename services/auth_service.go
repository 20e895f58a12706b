// services/auth_service.go
package services

import (
	"errors"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
)

type AuthService struct {
	Sessions     *SessionManager
	SecureCookie bool
}

func NewAuthService(sessions *SessionManager, secureCookie bool) *AuthService {
	return &AuthService{Sessions: sessions, SecureCookie: secureCookie}
}

type loginRequest struct {
	Password string `json:"password"`
}

// Login exchanges the admin password for a session cookie.
func (s *AuthService) Login(c *fiber.Ctx) error {
	var body loginRequest
	if err := c.BodyParser(&body); err != nil {
		return respondError(c, badRequest("Formato do corpo invalido."))
	}

	token, expiresAt, err := s.Sessions.Login(body.Password)
	switch {
	case errors.Is(err, ErrPasswordRequired):
		return respondError(c, badRequest("Senha obrigatoria"))
	case errors.Is(err, ErrInvalidCredentials):
		log.Printf("🚫 [ADMIN_AUTH] Invalid password from %s", c.IP())
		return respondError(c, newAPIError(fiber.StatusUnauthorized, "Senha invalida", ErrUnauthorized))
	case err != nil:
		return respondError(c, err)
	}

	c.Cookie(s.sessionCookie(token, expiresAt, int(s.Sessions.TTL().Seconds())))
	log.Printf("✅ [ADMIN_AUTH] Session issued for %s (expires %s)", c.IP(), expiresAt.Format(time.RFC3339))
	return c.JSON(fiber.Map{"ok": true})
}

// Logout only tells the browser to drop the cookie; tokens are not revoked server-side.
func (s *AuthService) Logout(c *fiber.Ctx) error {
	c.Cookie(s.sessionCookie("", time.Unix(0, 0), -1))
	return c.JSON(fiber.Map{"ok": true})
}

func (s *AuthService) sessionCookie(value string, expires time.Time, maxAge int) *fiber.Cookie {
	return &fiber.Cookie{
		Name:     SessionCookieName,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		MaxAge:   maxAge,
		HTTPOnly: true,
		Secure:   s.SecureCookie,
		SameSite: fiber.CookieSameSiteLaxMode,
	}
}
