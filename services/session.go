// services/session.go
package services

import (
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const (
	SessionCookieName = "admin_session"
	AdminTokenHeader  = "X-Admin-Token"
	sessionSubject    = "admin"
)

var (
	ErrPasswordRequired   = errors.New("password required")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidSession     = errors.New("invalid session token")
)

// SessionManager checks the shared admin password and issues/verifies signed session tokens.
type SessionManager struct {
	password     string
	passwordHash []byte
	secret       []byte
	ttl          time.Duration
	now          func() time.Time
}

// NewSessionManager builds a manager. An empty secret gets a random one, which
// invalidates sessions on restart (fine for development only).
func NewSessionManager(password, passwordHash, secret string, ttl time.Duration) (*SessionManager, error) {
	if password == "" && passwordHash == "" {
		return nil, errors.New("admin password not configured")
	}
	key := []byte(secret)
	if len(key) == 0 {
		key = make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			return nil, fmt.Errorf("failed to generate session secret: %w", err)
		}
	}
	return &SessionManager{
		password:     password,
		passwordHash: []byte(passwordHash),
		secret:       key,
		ttl:          ttl,
		now:          time.Now,
	}, nil
}

func (m *SessionManager) TTL() time.Duration { return m.ttl }

// Login checks password and returns a signed token with its expiry.
func (m *SessionManager) Login(password string) (string, time.Time, error) {
	if password == "" {
		return "", time.Time{}, ErrPasswordRequired
	}
	if !m.checkPassword(password) {
		return "", time.Time{}, ErrInvalidCredentials
	}

	now := m.now()
	expiresAt := now.Add(m.ttl)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   sessionSubject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	})
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign session: %w", err)
	}
	return signed, expiresAt, nil
}

func (m *SessionManager) checkPassword(password string) bool {
	if len(m.passwordHash) > 0 {
		return bcrypt.CompareHashAndPassword(m.passwordHash, []byte(password)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(password), []byte(m.password)) == 1
}

// Verify accepts only unexpired HS256 tokens signed with this manager's secret.
func (m *SessionManager) Verify(tokenString string) error {
	if tokenString == "" {
		return ErrInvalidSession
	}
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithSubject(sessionSubject),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}
	if !token.Valid {
		return ErrInvalidSession
	}
	return nil
}
