package routes

import (
	"time"

	"lendsqr-admin/internal/adapters/http/handlers"
	"lendsqr-admin/internal/adapters/http/middleware"
	"lendsqr-admin/internal/adapters/persistence/repositories"
	"lendsqr-admin/internal/config"
	"lendsqr-admin/internal/core/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"go.uber.org/zap"
)

// Services are the core services exposed over HTTP
type Services struct {
	Directory *services.DirectoryService
	Auth      *services.AuthService
	Store     repositories.UserStore
}

// Setup configures all routes for the application
func Setup(app *fiber.App, cfg *config.Config, svc Services, logger *zap.Logger) {
	healthHandler := handlers.NewHealthHandler(svc.Store, svc.Directory, cfg)
	authHandler := handlers.NewAuthHandler(svc.Auth, cfg, logger.Named("auth"))
	userHandler := handlers.NewUserHandler(svc.Directory, logger.Named("users"))

	// Health check & root routes
	app.Get("/", healthHandler.Root)
	app.Get("/health", healthHandler.HealthCheck)

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	apiV1 := app.Group("/api/v1")
	setupAuthRoutes(apiV1.Group("/auth"), authHandler, cfg)
	setupUserRoutes(apiV1.Group("/users"), userHandler, cfg)
}

// setupAuthRoutes configures authentication routes
func setupAuthRoutes(router fiber.Router, h *handlers.AuthHandler, cfg *config.Config) {
	router.Use(middleware.NoCacheHeaders())

	router.Post("/login", middleware.AuthRateLimiter(), h.Login)
	router.Post("/refresh", h.RefreshToken)
	router.Post("/logout", h.Logout)
	router.Get("/status", h.Status)

	requireAuth := middleware.AuthMiddleware(cfg)
	router.Get("/me", requireAuth, h.Me)
	router.Post("/logout-all", requireAuth, h.LogoutAll)
}

// setupUserRoutes configures directory routes. Static paths are
// registered before /:id so they are not captured as ids.
func setupUserRoutes(router fiber.Router, h *handlers.UserHandler, cfg *config.Config) {
	router.Use(middleware.AuthMiddleware(cfg))
	router.Use(middleware.PrivateCacheHeaders(30 * time.Second))

	router.Get("/", h.ListUsers)
	router.Get("/stats", h.Stats)
	router.Get("/export", middleware.StrictRateLimiter(), h.Export)
	router.Post("/refresh", middleware.StrictRateLimiter(), h.Refresh)
	router.Get("/:id", h.GetUser)
}
