package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/solivar-dev/auth-sessions/internal/domain"
)

// principalKey is the single Locals key the guard writes.
const principalKey = "principal"

// Principal is the resolved identity of a guarded request, constructed once
// by RequireAuth and read through Authenticated. SessionToken is the raw
// opaque value from the access-token claims, needed for sliding renewal.
type Principal struct {
	User         *domain.User
	Session      *domain.Session
	SessionToken string
}

// Authenticated returns the request principal, if the guard ran.
func Authenticated(c *fiber.Ctx) (*Principal, bool) {
	principal, ok := c.Locals(principalKey).(*Principal)
	return principal, ok
}

func setPrincipal(c *fiber.Ctx, principal *Principal) {
	c.Locals(principalKey, principal)
}
