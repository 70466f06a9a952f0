package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/collapp/collapp-api/internal/config"
	"github.com/collapp/collapp-api/internal/handler"
	"github.com/collapp/collapp-api/internal/middleware"
	"github.com/collapp/collapp-api/internal/models"
	"github.com/collapp/collapp-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	ApplicationHandler  *handler.ApplicationHandler
	CollegeHandler      *handler.CollegeHandler
	StudentHandler      *handler.StudentHandler
	AdminHandler        *handler.AdminHandler
	SettingsHandler     *handler.SettingsHandler
	NotificationHandler *handler.NotificationHandler
	JWTMiddleware       fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))
	app.Get("/metrics", observability.MetricsHandler())

	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	// Public college catalogue
	if deps.CollegeHandler != nil {
		deps.CollegeHandler.RegisterPublic(api.Group("/colleges"))
	}

	// Student surface
	if deps.StudentHandler != nil {
		student := api.Group("/student", jwtMiddleware, middleware.RequireRole(models.RoleStudent))
		deps.StudentHandler.Register(student)
	}
	if deps.ApplicationHandler != nil {
		applications := api.Group("/applications", jwtMiddleware, middleware.RequireRole(models.RoleStudent))
		applications.Use(middleware.RateLimit("applications", 10, time.Minute))
		deps.ApplicationHandler.RegisterStudent(applications)
	}

	// Representative review surface
	if deps.ApplicationHandler != nil || deps.CollegeHandler != nil {
		rep := api.Group("/rep", jwtMiddleware, middleware.RequireRole(models.RoleSchoolRep))
		if deps.CollegeHandler != nil {
			deps.CollegeHandler.RegisterRep(rep.Group("/college"))
		}
		if deps.ApplicationHandler != nil {
			deps.ApplicationHandler.RegisterReview(rep.Group("/applications"))
		}
	}

	// Notification inbox, any authenticated user
	if deps.NotificationHandler != nil {
		notifications := api.Group("/notifications", jwtMiddleware)
		deps.NotificationHandler.Register(notifications)
	}

	// Admin surface
	admin := api.Group("/admin", jwtMiddleware, middleware.RequireRole(models.RoleAdmin))
	if deps.AdminHandler != nil {
		deps.AdminHandler.Register(admin)
	}
	if deps.CollegeHandler != nil {
		deps.CollegeHandler.RegisterAdmin(admin.Group("/colleges"))
	}
	if deps.SettingsHandler != nil {
		deps.SettingsHandler.Register(admin.Group("/settings"))
	}
}
