package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/farm-shop/internal/api/http/handlers"
	"github.com/spec-kit/farm-shop/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	Products       *handlers.ProductsHandler
	Orders         *handlers.OrdersHandler
	Chat           *handlers.ChatHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/metrics", cfg.Health.Metrics)

	api := app.Group("/api")
	api.Post("/register", cfg.Users.Register)
	api.Post("/login", cfg.Users.Login)
	api.Post("/forgot-password", cfg.Users.ForgotPassword)
	api.Post("/verify-otp", cfg.Users.VerifyOTP)
	api.Post("/reset-password", cfg.Users.ResetPassword)
	api.Post("/logout", cfg.Users.Logout)

	api.Get("/products", cfg.Products.List)
	api.Get("/products/:id", cfg.Products.Get)

	api.Post("/place-order", cfg.AuthMiddleware.Handle, auth.RequireCustomer("Please login to place an order"), cfg.Orders.Place)
	api.Get("/orders", cfg.AuthMiddleware.Handle, auth.RequireCustomer("Please login to view orders"), cfg.Orders.List)

	chatGroup := api.Group("/chat/sessions")
	chatGroup.Post("", cfg.Chat.Start)
	chatGroup.Get("/:id", cfg.Chat.Get)
	chatGroup.Post("/:id/messages", cfg.Chat.Send)
}
