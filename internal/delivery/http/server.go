package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	fiberSwagger "github.com/swaggo/fiber-swagger"
	"go.uber.org/zap"

	"github.com/rock-radar/internal/config"
	"github.com/rock-radar/internal/delivery/http/handler"
	"github.com/rock-radar/internal/delivery/http/middleware"
	apperrors "github.com/rock-radar/internal/pkg/errors"
	"github.com/rock-radar/internal/pkg/utils"
)

// HealthChecker - зависимость, состояние которой отдаётся в /health
type HealthChecker interface {
	Health(ctx context.Context) error
}

// Server - HTTP сервер на основе Fiber
type Server struct {
	app    *fiber.App
	config *config.Config
	logger *zap.Logger

	radarHandler  *handler.RadarHandler
	regionHandler *handler.RegionHandler
	checks        map[string]HealthChecker
}

// NewServer - создание нового HTTP сервера. checks может быть пустым.
func NewServer(
	cfg *config.Config,
	logger *zap.Logger,
	radarHandler *handler.RadarHandler,
	regionHandler *handler.RegionHandler,
	checks map[string]HealthChecker,
) *Server {
	app := fiber.New(fiber.Config{
		AppName:      "Rock Radar",
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
		ErrorHandler: customErrorHandler(logger),
	})

	s := &Server{
		app:           app,
		config:        cfg,
		logger:        logger,
		radarHandler:  radarHandler,
		regionHandler: regionHandler,
		checks:        checks,
	}

	s.setupMiddlewares()
	s.setupRoutes()

	return s
}

// App возвращает fiber.App (для тестов через app.Test)
func (s *Server) App() *fiber.App {
	return s.app
}

// setupMiddlewares - настройка middleware
func (s *Server) setupMiddlewares() {
	s.app.Use(middleware.Recovery(s.logger))
	s.app.Use(middleware.Logger(s.logger))
	s.app.Use(middleware.CORS(s.config.Server.CORSOrigins))
	s.app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))
}

// setupRoutes - настройка маршрутов
func (s *Server) setupRoutes() {
	s.app.Get("/swagger/*", fiberSwagger.WrapHandler)

	api := s.app.Group("/api/v1")
	api.Get("/health", s.health)

	// Areas & routes
	api.Get("/areas/root", s.radarHandler.GetRoot)
	api.Get("/areas/by-path", s.radarHandler.GetAreaByPath)
	api.Get("/areas/:id", s.radarHandler.GetArea)
	api.Put("/areas/:id/parent", s.radarHandler.MoveArea)
	api.Get("/routes/:id", s.radarHandler.GetRoute)

	// Settings
	api.Get("/settings", s.radarHandler.GetSettings)
	api.Put("/settings/filter", s.radarHandler.SetFilter)
	api.Put("/settings/model", s.radarHandler.SetModel)
	api.Put("/settings/sort", s.radarHandler.SetSort)
	api.Put("/settings/metrics", s.radarHandler.SetMetrics)
	api.Get("/options", s.radarHandler.GetOptions)
	api.Post("/refresh", s.radarHandler.Refresh)

	// Regions
	api.Get("/regions", s.regionHandler.ListRegions)
	api.Post("/regions/import", s.regionHandler.ImportRegion)
}

// health godoc
// @Summary Health check
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /api/v1/health [get]
func (s *Server) health(c *fiber.Ctx) error {
	status := "healthy"
	code := fiber.StatusOK
	deps := make(map[string]string, len(s.checks))

	for name, check := range s.checks {
		if err := check.Health(c.Context()); err != nil {
			deps[name] = err.Error()
			status = "degraded"
			code = fiber.StatusServiceUnavailable
			continue
		}
		deps[name] = "ok"
	}

	return c.Status(code).JSON(fiber.Map{
		"status":       status,
		"time":         time.Now(),
		"dependencies": deps,
	})
}

// Start - запуск HTTP сервера
func (s *Server) Start() error {
	addr := s.config.GetServerAddr()
	s.logger.Info("Starting HTTP server", zap.String("address", addr))
	return s.app.Listen(addr)
}

// Shutdown - graceful shutdown HTTP сервера
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")
	return s.app.ShutdownWithContext(ctx)
}

// customErrorHandler - ошибки fiber (404 маршрута, 405, слишком большое тело) в формате API
func customErrorHandler(logger *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		if appErr, ok := apperrors.As(err); ok {
			return utils.SendError(c, appErr)
		}

		code := fiber.StatusInternalServerError
		if e, ok := err.(*fiber.Error); ok {
			code = e.Code
		}

		if code >= fiber.StatusInternalServerError {
			logger.Error("HTTP Error",
				zap.String("path", c.Path()),
				zap.Int("status", code),
				zap.Error(err),
			)
		}

		return c.Status(code).JSON(utils.ErrorResponse{
			Error: apperrors.New("HTTP_ERROR", err.Error(), code),
		})
	}
}
