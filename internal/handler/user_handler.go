package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/solivar-dev/auth-sessions/internal/handler/middleware"
	"github.com/solivar-dev/auth-sessions/internal/service"
	"github.com/solivar-dev/auth-sessions/pkg/validator"
)

type UserHandler struct {
	userService *service.UserService
	validator   *validator.Validator
}

func NewUserHandler(userService *service.UserService, validator *validator.Validator) *UserHandler {
	return &UserHandler{
		userService: userService,
		validator:   validator,
	}
}

// GetProfile returns the authenticated user
// GET /user/profile
func (h *UserHandler) GetProfile(c *fiber.Ctx) error {
	principal, ok := middleware.Authenticated(c)
	if !ok {
		return fiber.ErrUnauthorized
	}

	return c.JSON(fiber.Map{
		"user": principal.User,
	})
}

// UpdateProfile changes the display name
// PUT /user/profile
func (h *UserHandler) UpdateProfile(c *fiber.Ctx) error {
	principal, ok := middleware.Authenticated(c)
	if !ok {
		return fiber.ErrUnauthorized
	}

	var req service.UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if err := h.validator.Validate(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	user, err := h.userService.UpdateProfile(c.Context(), principal.User.ID, req)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		return fiber.ErrInternalServerError
	}

	return c.JSON(fiber.Map{
		"message": "Profile updated",
		"user":    user,
	})
}

// DeleteProfile removes the account and every session
// DELETE /user/profile
func (h *UserHandler) DeleteProfile(c *fiber.Ctx) error {
	principal, ok := middleware.Authenticated(c)
	if !ok {
		return fiber.ErrUnauthorized
	}

	if err := h.userService.DeleteAccount(c.Context(), principal.User.ID); err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		return fiber.ErrInternalServerError
	}

	return c.JSON(fiber.Map{
		"message": "Account deleted",
	})
}

// GetSettings returns the user's settings, defaults included
// GET /user/settings
func (h *UserHandler) GetSettings(c *fiber.Ctx) error {
	principal, ok := middleware.Authenticated(c)
	if !ok {
		return fiber.ErrUnauthorized
	}

	settings, err := h.userService.Settings(c.Context(), principal.User.ID)
	if err != nil {
		return fiber.ErrInternalServerError
	}

	return c.JSON(fiber.Map{
		"settings": settings,
	})
}

// UpdateSettings applies a partial settings update
// PATCH /user/settings
func (h *UserHandler) UpdateSettings(c *fiber.Ctx) error {
	principal, ok := middleware.Authenticated(c)
	if !ok {
		return fiber.ErrUnauthorized
	}

	var req service.UpdateSettingsRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if err := h.validator.Validate(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	settings, err := h.userService.UpdateSettings(c.Context(), principal.User.ID, req)
	if err != nil {
		return fiber.ErrInternalServerError
	}

	return c.JSON(fiber.Map{
		"message":  "Settings updated",
		"settings": settings,
	})
}
