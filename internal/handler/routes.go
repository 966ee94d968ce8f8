package handler

import (
	"github.com/gofiber/fiber/v2"
)

func SetupRoutes(
	app *fiber.App,
	authHandler *AuthHandler,
	userHandler *UserHandler,
	sessionHandler *SessionHandler,
	healthHandler *HealthHandler,
	requireAuth fiber.Handler,
) {
	// Health checks (public)
	app.Get("/health", healthHandler.Health)
	app.Get("/ready", healthHandler.Ready)

	// Auth routes (public; these flows mint credentials, they never
	// require one)
	auth := app.Group("/auth")
	auth.Post("/signup", authHandler.Signup)
	auth.Post("/login", authHandler.Login)
	auth.Post("/logout", authHandler.Logout)
	auth.Post("/magic/request", authHandler.RequestMagicLink)
	auth.Post("/magic/callback", authHandler.MagicCallback)
	auth.Post("/resend-verification", authHandler.ResendVerification)
	auth.Post("/verify-email", authHandler.VerifyEmail)
	auth.Post("/forget-password", authHandler.ForgetPassword)
	auth.Post("/reset-password", authHandler.ResetPassword)
	auth.Post("/refresh", authHandler.Refresh)

	// User routes (protected)
	user := app.Group("/user", requireAuth)
	user.Get("/profile", userHandler.GetProfile)
	user.Put("/profile", userHandler.UpdateProfile)
	user.Delete("/profile", userHandler.DeleteProfile)
	user.Get("/sessions", sessionHandler.ListSessions)
	user.Delete("/sessions/:id", sessionHandler.RevokeSession)
	user.Delete("/sessions", sessionHandler.RevokeOtherSessions)
	user.Get("/settings", userHandler.GetSettings)
	user.Patch("/settings", userHandler.UpdateSettings)
}
