package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

const (
	tokenKey = "auth_token"

	// LegacyTokenHeader is accepted when the primary header is absent.
	LegacyTokenHeader = "X-Storage-Token"
)

// TokenMiddleware extracts the caller's token id from the configured header.
// It never rejects a request: every service operation authorizes the token
// it is handed, so a missing header surfaces as "missing credentials" there.
type TokenMiddleware struct {
	header string
}

// NewTokenMiddleware constructs middleware reading header.
func NewTokenMiddleware(header string) *TokenMiddleware {
	if strings.TrimSpace(header) == "" {
		header = "X-Auth-Token"
	}
	return &TokenMiddleware{header: header}
}

// Handle stores the presented token in the request locals.
func (m *TokenMiddleware) Handle(c *fiber.Ctx) error {
	token := strings.TrimSpace(c.Get(m.header))
	if token == "" {
		token = strings.TrimSpace(c.Get(LegacyTokenHeader))
	}
	c.Locals(tokenKey, token)
	return c.Next()
}

// TokenFromContext returns the token id presented by the caller, or "".
func TokenFromContext(c *fiber.Ctx) string {
	token, _ := c.Locals(tokenKey).(string)
	return token
}
