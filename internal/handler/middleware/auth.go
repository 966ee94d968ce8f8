package middleware

import (
	"errors"
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/solivar-dev/auth-sessions/internal/repository"
	"github.com/solivar-dev/auth-sessions/internal/service"
	"github.com/solivar-dev/auth-sessions/pkg/jwt"
)

// RequireAuth is the request-time gate in front of every protected route:
// verify the bearer access token, resolve the session it references, slide
// the session expiry, and attach the principal. Any failure is terminal
// for the request; the client must log in or refresh.
//
// Expired, forged, and malformed tokens all produce the same response.
// The distinct codec errors are logged, never sent to the client.
func RequireAuth(codec *jwt.Codec, sessions *service.SessionService, users repository.UserRepository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "missing authorization header",
			})
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "invalid authorization header format",
			})
		}

		claims, err := codec.Verify(parts[1])
		if err != nil {
			log.Printf("[AUTH] Rejected access token: %v", err)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "invalid or expired token",
			})
		}

		session, err := sessions.Resolve(c.Context(), claims.SessionToken)
		if err != nil {
			if errors.Is(err, service.ErrSessionNotFound) || errors.Is(err, service.ErrSessionExpired) {
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
					"error": "session is no longer valid",
				})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to resolve session",
			})
		}

		if session.UserID != claims.UserID {
			// Claims and session disagree about the owner; treat the
			// credential as forged.
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "session is no longer valid",
			})
		}

		user, err := users.GetByID(c.Context(), session.UserID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
					"error": "session is no longer valid",
				})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to load user",
			})
		}

		// Sliding window: a renewal failure is logged but never fails an
		// otherwise valid request.
		if err := sessions.Renew(c.Context(), claims.SessionToken); err != nil {
			log.Printf("[AUTH] Failed to renew session %s: %v", session.ID, err)
		}

		setPrincipal(c, &Principal{
			User:         user,
			Session:      session,
			SessionToken: claims.SessionToken,
		})

		return c.Next()
	}
}
