package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"lendsqr-admin/internal/adapters/http/middleware"
	"lendsqr-admin/internal/adapters/http/routes"
	"lendsqr-admin/internal/adapters/persistence/models"
	"lendsqr-admin/internal/adapters/persistence/repositories"
	"lendsqr-admin/internal/adapters/remote"
	"lendsqr-admin/internal/config"
	"lendsqr-admin/internal/core/services"
	"lendsqr-admin/internal/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	_ "lendsqr-admin/docs" // Swagger docs
)

// @title Lendsqr Admin API
// @version 1.0
// @description User directory cache and query service behind the Lendsqr admin dashboard

// @contact.name API Support
// @contact.email support@lendsqr.com

// @host localhost:3000
// @BasePath /api/v1
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zl, err := logger.New(cfg.Log.Level, cfg.Log.Format, "lendsqr-admin")
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	db, err := config.ConnectDatabase(cfg)
	if err != nil {
		zl.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() { _ = config.CloseDatabase(db) }()

	if err := models.AutoMigrate(db); err != nil {
		zl.Fatal("Failed to auto migrate", zap.Error(err))
	}
	zl.Info("Database migration completed", zap.String("driver", cfg.Store.Driver))

	if err := config.NewSeeder(db, cfg.Admin, zl.Named("seeder")).Run(); err != nil {
		zl.Fatal("Failed to seed", zap.Error(err))
	}

	// Directory: remote feed mirrored into the local store
	store := repositories.NewUserStore(db)
	directory := services.NewDirectoryService(
		remote.NewUserSource(cfg.Remote),
		store,
		services.NewCacheState(),
	)

	authService := services.NewAuthService(
		repositories.NewAdminRepository(db),
		repositories.NewRefreshTokenRepository(db),
		cfg,
		zl.Named("auth"),
	)

	cronService := services.NewCronService(directory, authService, cfg.Refresh, zl)
	if err := cronService.Register(); err != nil {
		zl.Fatal("Failed to schedule jobs", zap.Error(err))
	}
	cronService.Start()
	defer cronService.Stop()

	if cfg.Refresh.WarmOnStart {
		go cronService.RefreshDirectory()
	}

	app := fiber.New(fiber.Config{
		AppName:      "Lendsqr Admin API v1.0",
		ErrorHandler: middleware.CustomErrorHandler,
	})

	middleware.Setup(app, cfg, zl.Named("http"))

	routes.Setup(app, cfg, routes.Services{
		Directory: directory,
		Auth:      authService,
		Store:     store,
	}, zl)

	go gracefulShutdown(app, zl)

	zl.Info("Server starting", zap.String("port", cfg.Port), zap.String("mode", cfg.AppMode))
	if err := app.Listen(":" + cfg.Port); err != nil {
		zl.Error("Server stopped", zap.Error(err))
	}
}

// gracefulShutdown handles graceful shutdown
func gracefulShutdown(app *fiber.App, zl *zap.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zl.Info("Shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(ctx); err != nil {
		zl.Error("Error during shutdown", zap.Error(err))
	}
	zl.Info("Server stopped gracefully")
}
