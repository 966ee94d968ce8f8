package handler

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/solivar-dev/auth-sessions/internal/handler/middleware"
	"github.com/solivar-dev/auth-sessions/internal/service"
)

type SessionHandler struct {
	userService *service.UserService
}

func NewSessionHandler(userService *service.UserService) *SessionHandler {
	return &SessionHandler{
		userService: userService,
	}
}

// SessionResponse is a session stripped of its token hash.
type SessionResponse struct {
	ID        string `json:"id"`
	UserAgent string `json:"user_agent,omitempty"`
	IPAddress string `json:"ip_address,omitempty"`
	ExpiresAt string `json:"expires_at"`
	CreatedAt string `json:"created_at"`
	IsCurrent bool   `json:"is_current"`
}

// ListSessions lists all active sessions (devices) for the current user
// GET /user/sessions
func (h *SessionHandler) ListSessions(c *fiber.Ctx) error {
	principal, ok := middleware.Authenticated(c)
	if !ok {
		return fiber.ErrUnauthorized
	}

	sessions, err := h.userService.Sessions(c.Context(), principal.User.ID)
	if err != nil {
		return fiber.ErrInternalServerError
	}

	response := make([]SessionResponse, len(sessions))
	for i, session := range sessions {
		response[i] = SessionResponse{
			ID:        session.ID.String(),
			UserAgent: session.UserAgent,
			IPAddress: session.IPAddress,
			ExpiresAt: session.ExpiresAt.Format(time.RFC3339),
			CreatedAt: session.CreatedAt.Format(time.RFC3339),
			IsCurrent: session.ID == principal.Session.ID,
		}
	}

	return c.JSON(fiber.Map{
		"sessions": response,
		"count":    len(response),
	})
}

// RevokeSession closes a specific session by ID
// DELETE /user/sessions/:id
func (h *SessionHandler) RevokeSession(c *fiber.Ctx) error {
	principal, ok := middleware.Authenticated(c)
	if !ok {
		return fiber.ErrUnauthorized
	}

	sessionID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid session ID",
		})
	}

	if err := h.userService.RevokeSession(c.Context(), principal.User.ID, sessionID); err != nil {
		if errors.Is(err, service.ErrSessionNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Session not found",
			})
		}
		return fiber.ErrInternalServerError
	}

	return c.JSON(fiber.Map{
		"message": "Session revoked successfully",
	})
}

// RevokeOtherSessions closes all sessions except the current one
// DELETE /user/sessions
func (h *SessionHandler) RevokeOtherSessions(c *fiber.Ctx) error {
	principal, ok := middleware.Authenticated(c)
	if !ok {
		return fiber.ErrUnauthorized
	}

	deleted, err := h.userService.RevokeOtherSessions(c.Context(), principal.User.ID, principal.Session.ID)
	if err != nil {
		return fiber.ErrInternalServerError
	}

	return c.JSON(fiber.Map{
		"message": "Logged out from all other devices",
		"deleted": deleted,
	})
}
