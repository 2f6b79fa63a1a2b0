package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/hivemind/support-engine/internal/api/http/handlers"
	"github.com/hivemind/support-engine/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Tickets        *handlers.TicketsHandler
	Admin          *handlers.AdminHandler
	AI             *handlers.AIHandler
	AuthMiddleware *auth.Middleware
	UploadsDir     string
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)

	tickets := app.Group("/tickets", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated())
	tickets.Post("", cfg.Tickets.CreateTicket)
	tickets.Get("", cfg.Tickets.ListTickets)
	tickets.Get("/:id", cfg.Tickets.GetTicket)
	tickets.Post("/:id/messages", cfg.Tickets.AddMessage)
	tickets.Post("/:id/typing", cfg.Tickets.Typing)
	tickets.Post("/:id/attachments", cfg.Tickets.UploadAttachment)

	admin := app.Group("/admin", cfg.AuthMiddleware.Handle, auth.RequireAdmin())
	admin.Get("/tickets", cfg.Admin.ListTickets)
	admin.Patch("/tickets/:id/status", cfg.Admin.UpdateStatus)
	admin.Patch("/tickets/:id/priority", cfg.Admin.UpdatePriority)
	admin.Post("/tickets/:id/reply-draft", cfg.Admin.DraftReply)
	admin.Get("/stats", cfg.Admin.Stats)

	// Service-to-service classification endpoints; the triage pipeline posts
	// here without a user session.
	app.Post("/ai-triage", cfg.AI.Triage)
	app.Post("/ai-reply", cfg.AI.DraftReply)

	if cfg.UploadsDir != "" {
		app.Static("/uploads", cfg.UploadsDir)
	}
}
