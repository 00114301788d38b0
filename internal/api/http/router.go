package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/campus-mts/mts/internal/api/http/handlers"
	"github.com/campus-mts/mts/internal/auth"
	"github.com/campus-mts/mts/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	Tickets        *handlers.TicketsHandler
	Notifications  *handlers.NotificationsHandler
	Catalog        *handlers.CatalogHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Post("/auth/login", cfg.Users.Login)

	protected := app.Group("", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated())
	adminOnly := auth.RequireRole(domain.RoleAdmin)
	staffOnly := auth.RequireRole(domain.RoleAdmin, domain.RoleMaintenance)

	protected.Get("/auth/me", cfg.Users.Me)
	protected.Get("/metrics", adminOnly, cfg.Health.Metrics)

	tickets := protected.Group("/tickets")
	tickets.Get("/", cfg.Tickets.ListTickets)
	tickets.Post("/", adminOnly, cfg.Tickets.CreateTicket)
	tickets.Get("/:id", cfg.Tickets.GetTicket)
	tickets.Put("/:id", cfg.Tickets.UpdateTicket)
	tickets.Post("/:id/request-approval", staffOnly, cfg.Tickets.RequestApproval)
	tickets.Post("/:id/approve", cfg.Tickets.Approve)
	tickets.Post("/:id/reject", cfg.Tickets.Reject)

	notifications := protected.Group("/notifications")
	self := auth.RequireSelfParam("userId")
	notifications.Get("/user/:userId", self, cfg.Notifications.ListForUser)
	notifications.Get("/user/:userId/unread-count", self, cfg.Notifications.UnreadCount)
	notifications.Put("/user/:userId/read-all", self, cfg.Notifications.MarkAllRead)
	notifications.Put("/:id/read", cfg.Notifications.MarkRead)
	notifications.Post("/broadcast", cfg.Notifications.Broadcast)

	users := protected.Group("/users")
	users.Get("/", cfg.Users.List)
	users.Post("/", adminOnly, cfg.Users.Create)
	users.Put("/:id", adminOnly, cfg.Users.Update)
	users.Delete("/:id", adminOnly, cfg.Users.Delete)

	protected.Get("/statuses", cfg.Catalog.ListStatuses)
	protected.Get("/classification", cfg.Catalog.Classification)

	registerCatalog(protected.Group("/departments"), adminOnly,
		cfg.Catalog.ListDepartments, cfg.Catalog.SaveDepartment, cfg.Catalog.DeleteDepartment)
	registerCatalog(protected.Group("/categories"), adminOnly,
		cfg.Catalog.ListCategories, cfg.Catalog.SaveCategory, cfg.Catalog.DeleteCategory)
	registerCatalog(protected.Group("/subcategories"), adminOnly,
		cfg.Catalog.ListSubCategories, cfg.Catalog.SaveSubCategory, cfg.Catalog.DeleteSubCategory)
	registerCatalog(protected.Group("/assets"), adminOnly,
		cfg.Catalog.ListAssets, cfg.Catalog.SaveAsset, cfg.Catalog.DeleteAsset)
	registerCatalog(protected.Group("/pc-parts"), adminOnly,
		cfg.Catalog.ListPcParts, cfg.Catalog.SavePcPart, cfg.Catalog.DeletePcPart)
}

// registerCatalog mounts list for everyone and create/update/delete behind guard.
func registerCatalog(group fiber.Router, guard, list, save, remove fiber.Handler) {
	group.Get("/", list)
	group.Post("/", guard, save)
	group.Put("/:id", guard, save)
	group.Delete("/:id", guard, remove)
}
