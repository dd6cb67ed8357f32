package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/manocorp/account-service/internal/api/http/handlers"
	"github.com/manocorp/account-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	Auth           *handlers.AuthHandler
	AuthMiddleware *auth.Middleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Post("/user", cfg.Users.Create)
	app.Get("/users/:page", cfg.Users.List)
	app.Get("/user/:username", cfg.Users.Get)
	app.Put("/user", cfg.Users.Update)
	app.Delete("/user/:username", cfg.Users.Delete)

	authGroup := app.Group("/auth")
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Patch("/password", cfg.Auth.PasswordReset)
	authGroup.Post("/password/forgot", cfg.Auth.ForgotPassword)

	protected := authGroup.Group("", cfg.AuthMiddleware.Handle)
	protected.Get("/me", cfg.Auth.Me)
}
