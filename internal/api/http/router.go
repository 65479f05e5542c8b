package http

import (
	"time"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"go.uber.org/zap"

	"github.com/civicdesk/issue-admin/internal/api/http/handlers"
	"github.com/civicdesk/issue-admin/internal/auth"
	"github.com/civicdesk/issue-admin/internal/domain"
	"github.com/civicdesk/issue-admin/internal/observability"
)

// AppOptions configures the Fiber application.
type AppOptions struct {
	Name           string
	RequestTimeout time.Duration
	CORSOrigins    string
}

// NewApp builds the Fiber application with the JSON codec and global middlewares.
func NewApp(opts AppOptions, logger *zap.Logger, metrics *observability.Metrics) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               opts.Name,
		JSONEncoder:           json.Marshal,
		JSONDecoder:           json.Unmarshal,
		DisableStartupMessage: true,
	})
	RegisterMiddlewares(app, logger, metrics, opts.RequestTimeout, opts.CORSOrigins)
	return app
}

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Issues         *handlers.IssuesHandler
	Staff          *handlers.StaffHandler
	Analytics      *handlers.AnalyticsHandler
	Notifications  *handlers.NotificationsHandler
	AuthMiddleware *auth.AuthMiddleware
	Metrics        *observability.Metrics
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(cfg.Metrics.Handler()))
	}

	authGroup := app.Group("/auth")
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/logout", cfg.AuthMiddleware.Handle, cfg.Auth.Logout)
	authGroup.Get("/session", cfg.AuthMiddleware.Handle, cfg.Auth.Session)
	authGroup.Put("/session/lang", cfg.AuthMiddleware.Handle, cfg.Auth.SetLanguage)

	view := auth.RequireCapability(domain.CapViewIssues)
	triage := auth.RequireCapability(domain.CapTriageIssues)
	manage := auth.RequireCapability(domain.CapManageOrg)

	// Intake channels post reports without a staff session.
	app.Post("/issues", cfg.Issues.ReportIssue)

	issues := app.Group("/issues", cfg.AuthMiddleware.Handle)
	issues.Get("/", view, cfg.Issues.ListIssues)
	issues.Get("/categories", view, cfg.Issues.Categories)
	issues.Get("/map", view, cfg.Issues.Map)
	issues.Get("/:id", view, cfg.Issues.GetIssue)
	issues.Post("/:id/transition", triage, cfg.Issues.Transition)
	issues.Post("/:id/assign", triage, cfg.Issues.Assign)
	issues.Post("/:id/notes", triage, cfg.Issues.AddNote)

	departments := app.Group("/departments", cfg.AuthMiddleware.Handle)
	departments.Get("/", view, cfg.Staff.ListDepartments)
	departments.Post("/", manage, cfg.Staff.CreateDepartment)
	departments.Get("/categories", view, cfg.Staff.CategoryOwners)
	departments.Put("/categories", manage, cfg.Staff.SetCategoryOwner)

	staff := app.Group("/staff", cfg.AuthMiddleware.Handle)
	staff.Get("/", view, cfg.Staff.ListStaff)
	staff.Post("/", manage, cfg.Staff.CreateStaff)

	app.Get("/audit", cfg.AuthMiddleware.Handle, manage, cfg.Staff.Audit)

	analytics := app.Group("/analytics", cfg.AuthMiddleware.Handle, auth.RequireCapability(domain.CapViewAnalytics))
	analytics.Get("/summary", cfg.Analytics.Summary)
	analytics.Get("/status", cfg.Analytics.Status)
	analytics.Get("/categories", cfg.Analytics.Categories)
	analytics.Get("/wards", cfg.Analytics.Wards)
	analytics.Get("/response-times", cfg.Analytics.ResponseTimes)
	analytics.Get("/trend", cfg.Analytics.Trend)
	analytics.Get("/export", auth.RequireCapability(domain.CapExportData), cfg.Analytics.Export)

	notifications := app.Group("/notifications", cfg.AuthMiddleware.Handle, view)
	notifications.Get("/", cfg.Notifications.List)
	notifications.Post("/:id/read", cfg.Notifications.MarkRead)
}
