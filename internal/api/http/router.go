package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/hulame/rental-service/internal/api/http/handlers"
	"github.com/hulame/rental-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Listings       *handlers.ListingsHandler
	Transactions   *handlers.TransactionsHandler
	Users          *handlers.UsersHandler
	Notifications  *handlers.NotificationsHandler
	Admin          *handlers.AdminHandler
	AuthMiddleware *auth.AuthMiddleware
	// RateLimit guards mutating endpoints; nil disables it.
	RateLimit fiber.Handler
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	limit := cfg.RateLimit
	if limit == nil {
		limit = func(c *fiber.Ctx) error { return c.Next() }
	}
	requireUser := cfg.AuthMiddleware.Handle

	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/health/metrics", cfg.Health.Metrics)

	authGroup := app.Group("/auth", limit)
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)

	listings := app.Group("/listings")
	listings.Get("", cfg.Listings.ListListings)
	listings.Get("/:id", cfg.Listings.GetListing)
	listings.Post("", limit, requireUser, cfg.Listings.CreateListing)
	listings.Put("/:id", limit, requireUser, cfg.Listings.UpdateListing)

	app.Post("/rental-requests", limit, requireUser, cfg.Transactions.CreateRentalRequest)
	app.Post("/checkout", limit, cfg.AuthMiddleware.Optional, cfg.Transactions.Checkout)

	transactions := app.Group("/transactions", requireUser)
	transactions.Get("", cfg.Transactions.ListTransactions)
	transactions.Get("/:id", cfg.Transactions.GetTransaction)
	transactions.Get("/:id/history", cfg.Transactions.History)
	transactions.Post("/:id/approve", limit, cfg.Transactions.Approve)
	transactions.Post("/:id/reject", limit, cfg.Transactions.Reject)
	transactions.Post("/:id/complete", limit, cfg.Transactions.Complete)
	transactions.Post("/:id/cancel", limit, cfg.Transactions.Cancel)

	users := app.Group("/users/me", requireUser)
	users.Get("", cfg.Users.Me)
	users.Get("/earnings", cfg.Users.Earnings)
	users.Put("/profile", limit, cfg.Users.UpdateProfile)
	users.Post("/verification", limit, cfg.Users.SubmitVerification)

	notifications := app.Group("/notifications", requireUser)
	notifications.Get("", cfg.Notifications.List)
	notifications.Get("/unread-count", cfg.Notifications.UnreadCount)
	notifications.Post("/read-all", cfg.Notifications.MarkAllRead)
	notifications.Post("/:id/read", cfg.Notifications.MarkRead)

	app.Get("/ws/notifications", requireUser, cfg.Notifications.Upgrade, cfg.Notifications.Stream())

	admin := app.Group("/admin", requireUser, auth.RequireAdmin())
	admin.Get("/users", cfg.Admin.ListUsers)
	admin.Put("/users/:id/status", cfg.Admin.SetStatus)
	admin.Post("/verification/:id/approve", cfg.Admin.ApproveVerification)
	admin.Post("/verification/:id/deny", cfg.Admin.DenyVerification)
}
