// Package httpserver provides HTTP server and routing.
package httpserver

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/template/html/v2"
	"go.uber.org/zap"

	"property-match-service/internal/app/service"
	"property-match-service/internal/app/session"
	"property-match-service/internal/domain"
	"property-match-service/internal/transport/httpserver/handler"
	"property-match-service/internal/transport/httpserver/middleware"
	"property-match-service/internal/validator"
)

// ServerConfig holds server configuration.
type ServerConfig struct {
	Port         int
	BodyLimit    int
	Debug        bool
	CORSOrigins  string
	TemplatesDir string
	StaticDir    string
}

// PropertySessions is the registry of property match sessions.
type PropertySessions = session.Registry[domain.SearchQuery, domain.SearchResultItem]

// ProviderSessions is the registry of service-provider search sessions.
type ProviderSessions = session.Registry[domain.ServiceQuery, domain.ServiceProvider]

// Dependencies are the application components served over HTTP.
type Dependencies struct {
	Match            *service.MatchService
	Providers        *service.ProviderService
	Sync             *service.SyncService
	PropertySessions *PropertySessions
	ProviderSessions *ProviderSessions
	Validator        *validator.Validator

	// Readiness gates /readyz.
	Readiness []middleware.ReadinessCheck
}

// Server wraps Fiber app with handlers.
type Server struct {
	App    *fiber.App
	Logger *zap.Logger
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(cfg ServerConfig, deps Dependencies, logger *zap.Logger) *Server {
	if cfg.TemplatesDir == "" {
		cfg.TemplatesDir = "./web/templates"
	}
	if cfg.StaticDir == "" {
		cfg.StaticDir = "./web/static"
	}

	// Template engine for dashboard
	engine := html.New(cfg.TemplatesDir, ".html")
	if cfg.Debug {
		engine.Reload(true)
	}

	app := fiber.New(fiber.Config{
		AppName:      "property-match-service",
		BodyLimit:    cfg.BodyLimit,
		ErrorHandler: errorHandler(logger),
		Views:        engine,
	})

	// Health check middleware MUST be registered BEFORE other middleware
	// for Kubernetes probes to work even during high load
	app.Use(middleware.NewHealthCheck(deps.Readiness...))

	app.Use(requestid.New())
	app.Use(middleware.Recover(logger))
	app.Use(middleware.Logger(logger))
	app.Use(middleware.CORS(cfg.CORSOrigins))
	app.Use(compress.New())

	app.Static("/static", cfg.StaticDir)

	registerRoutes(app, deps, logger)

	return &Server{
		App:    app,
		Logger: logger,
	}
}

// registerRoutes sets up all API routes.
func registerRoutes(app *fiber.App, deps Dependencies, logger *zap.Logger) {
	// Health checks are handled by middleware (/livez, /readyz)

	matchHandler := handler.NewMatchHandler(deps.Match, deps.Validator, logger)
	providerHandler := handler.NewProviderHandler(deps.Providers, deps.Validator, logger)
	adminHandler := handler.NewAdminHandler(deps.Sync, logger)
	dashboardHandler := handler.NewDashboardHandler(deps.Sync, logger)

	app.Get("/dashboard", dashboardHandler.Render)
	app.Get("/", func(c *fiber.Ctx) error {
		return c.Redirect("/dashboard")
	})

	v1 := app.Group("/api/v1")

	// "match" is registered before ":id" so it is not taken as a listing id
	properties := v1.Group("/properties")
	properties.Get("/match", matchHandler.Match)
	properties.Get("/:id", matchHandler.GetByID)

	v1.Get("/providers/search", providerHandler.Search)

	sessions := v1.Group("/sessions")
	handler.NewSessionHandler(deps.PropertySessions, handler.DecodeMatchQuery(deps.Validator), logger).
		Register(sessions.Group("/properties"))
	handler.NewSessionHandler(deps.ProviderSessions, handler.DecodeProviderQuery(deps.Validator), logger).
		Register(sessions.Group("/providers"))

	admin := v1.Group("/admin")
	admin.Post("/sync", adminHandler.SyncAll)
	admin.Post("/sync/:feed", adminHandler.SyncFeed)
	admin.Get("/feeds", adminHandler.Feeds)
	admin.Get("/stats", dashboardHandler.Stats)
}

// errorHandler returns a custom error handler that logs based on HTTP status code.
// 404s are logged at DEBUG level (expected client behavior), 4xx at WARN, 5xx at ERROR.
func errorHandler(logger *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError

		var fe *fiber.Error
		if errors.As(err, &fe) {
			code = fe.Code
		}

		switch {
		case code == fiber.StatusNotFound:
			logger.Debug("resource not found",
				zap.String("path", c.Path()),
				zap.String("method", c.Method()),
			)
		case code >= 500:
			logger.Error("server error",
				zap.Error(err),
				zap.Int("status", code),
				zap.String("path", c.Path()),
			)
		default:
			logger.Warn("client error",
				zap.Error(err),
				zap.Int("status", code),
				zap.String("path", c.Path()),
			)
		}

		return c.Status(code).JSON(fiber.Map{
			"error": err.Error(),
			"code":  "UNHANDLED_ERROR",
		})
	}
}

// Start starts the HTTP server.
func (s *Server) Start(port int) error {
	s.Logger.Info("starting HTTP server", zap.Int("port", port))

	return s.App.Listen(fmt.Sprintf(":%d", port))
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown() error {
	s.Logger.Info("shutting down HTTP server")

	return s.App.Shutdown()
}
