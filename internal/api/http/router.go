package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/seva-foundation/darshan-service/internal/api/http/handlers"
	"github.com/seva-foundation/darshan-service/internal/auth"
	"github.com/seva-foundation/darshan-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health          *handlers.HealthHandler
	Users           *handlers.UsersHandler
	Darshan         *handlers.DarshanHandler
	Events          *handlers.EventsHandler
	SpiritualEvents *handlers.SpiritualEventsHandler
	Team            *handlers.TeamHandler
	ContextResolver *auth.ContextResolver
}

// RegisterRoutes wires HTTP routes. The context resolver runs on every
// request so public endpoints can see who is calling; route guards decide
// what the caller may do.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	v1 := app.Group("/v1", cfg.ContextResolver.Handle)

	authGroup := v1.Group("/auth")
	authGroup.Post("/login", cfg.Users.Login)
	authGroup.Get("/leads", cfg.Users.ListLeads)
	authGroup.Post("/register", auth.RequireRole(domain.RoleAdmin), cfg.Users.Register)
	authGroup.Get("/users", auth.RequireRole(domain.RoleAdmin), cfg.Users.ListUsers)

	darshan := v1.Group("/darshan")
	darshan.Post("/", cfg.Darshan.Create)
	darshan.Get("/accepted", cfg.Darshan.ListAccepted)
	darshan.Get("/", auth.RequireAuthenticated(), cfg.Darshan.List)
	darshan.Get("/:id", auth.RequireAuthenticated(), cfg.Darshan.Get)
	darshan.Put("/:id/lead-action", auth.RequireRole(domain.RoleLead), cfg.Darshan.LeadAction)
	darshan.Put("/:id/pa-action", auth.RequireRole(domain.RolePA), cfg.Darshan.PAAction)
	darshan.Delete("/:id", auth.RequireRole(domain.RoleAdmin), cfg.Darshan.Delete)

	events := v1.Group("/events")
	events.Get("/", cfg.Events.List)
	events.Get("/:id", cfg.Events.Get)
	events.Post("/", auth.RequireRole(domain.RoleAdmin), cfg.Events.Create)
	events.Put("/:id", auth.RequireRole(domain.RoleAdmin), cfg.Events.Update)
	events.Delete("/:id", auth.RequireRole(domain.RoleAdmin), cfg.Events.Delete)

	spiritual := v1.Group("/spiritual-events")
	spiritual.Get("/", cfg.SpiritualEvents.List)
	spiritual.Get("/:id", cfg.SpiritualEvents.Get)
	spiritual.Post("/", auth.RequireRole(domain.RoleAdmin), cfg.SpiritualEvents.Create)
	spiritual.Put("/:id", auth.RequireRole(domain.RoleAdmin), cfg.SpiritualEvents.Update)
	spiritual.Delete("/:id", auth.RequireRole(domain.RoleAdmin), cfg.SpiritualEvents.Delete)

	team := v1.Group("/team")
	team.Get("/", cfg.Team.List)
	team.Get("/:id", cfg.Team.Get)
	team.Post("/", auth.RequireRole(domain.RoleAdmin), cfg.Team.Create)
	team.Put("/:id", auth.RequireRole(domain.RoleAdmin), cfg.Team.Update)
	team.Delete("/:id", auth.RequireRole(domain.RoleAdmin), cfg.Team.Delete)
}
