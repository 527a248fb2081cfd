package handlers

import (
	"context"
	"time"

	"lendsqr-admin/internal/config"
	"lendsqr-admin/internal/core/services"

	"github.com/gofiber/fiber/v2"
)

// Pinger reports whether the local store is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler handles health check endpoints
type HealthHandler struct {
	store     Pinger
	directory *services.DirectoryService
	cfg       *config.Config
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(store Pinger, directory *services.DirectoryService, cfg *config.Config) *HealthHandler {
	return &HealthHandler{
		store:     store,
		directory: directory,
		cfg:       cfg,
	}
}

// Root handles root endpoint
// @Summary Root endpoint
// @Description Returns API status
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router / [get]
func (h *HealthHandler) Root(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "running",
		"message": "Lendsqr admin API v1.0 is running",
		"mode":    h.cfg.AppMode,
		"docs":    "/swagger/index.html",
	})
}

// HealthCheck handles health check
// @Summary Health check
// @Description Check store health and mirror freshness
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /health [get]
func (h *HealthHandler) HealthCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()

	code, overall, storeStatus := fiber.StatusOK, "ok", "healthy"
	if err := h.store.Ping(ctx); err != nil {
		code, overall, storeStatus = fiber.StatusServiceUnavailable, "degraded", "unhealthy"
	}

	mirror := fiber.Map{"fresh": false}
	if at := h.directory.RefreshedAt(); !at.IsZero() {
		mirror = fiber.Map{"fresh": true, "refreshed_at": at}
	}

	return c.Status(code).JSON(fiber.Map{
		"status": overall,
		"checks": fiber.Map{
			"api":   "healthy",
			"store": storeStatus,
		},
		"mirror": mirror,
	})
}
