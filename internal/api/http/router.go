package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Malinda-kawshalya/issue-web/internal/api/http/handlers"
	"github.com/Malinda-kawshalya/issue-web/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	Issues         *handlers.IssuesHandler
	Admin          *handlers.AdminHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes. Everything under /api requires a
// resolved identity.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Users.Register)
	authGroup.Post("/login", cfg.Users.Login)

	api := app.Group("/api", cfg.AuthMiddleware.Handle)

	issues := api.Group("/issues")
	issues.Get("/", cfg.Issues.ListIssues)
	issues.Post("/", cfg.Issues.CreateIssue)
	issues.Get("/my", cfg.Issues.ListMyIssues)
	issues.Get("/stats", cfg.Issues.MyStatistics)
	issues.Get("/:id", cfg.Issues.GetIssue)
	issues.Put("/:id", cfg.Issues.UpdateIssue)
	issues.Delete("/:id", cfg.Issues.DeleteIssue)
	issues.Get("/:id/comments", cfg.Issues.ListComments)
	issues.Post("/:id/comments", cfg.Issues.AddComment)

	admin := api.Group("/admin", auth.RequireAdmin())
	admin.Get("/metrics", cfg.Admin.Metrics)
}
