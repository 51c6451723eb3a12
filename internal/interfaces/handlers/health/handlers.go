package health

import (
	healthsvc "tabiconst-backend/internal/application/health"
	"tabiconst-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// Handlers holds dependencies for health endpoints.
type Handlers struct {
	Collector *healthsvc.Collector
	Service   string
}

// JSON GET /api/v1/health/json: service, status, runtime, traffic, dependencies.
func (h *Handlers) JSON(c *fiber.Ctx) error {
	result := h.Collector.Collect(c.UserContext())
	code := fiber.StatusOK
	if result.Status != "ok" {
		code = fiber.StatusServiceUnavailable
	}
	return c.Status(code).JSON(fiber.Map{
		"service":      h.Service,
		"status":       result.Status,
		"runtime":      result.Runtime,
		"traffic":      result.Traffic,
		"dependencies": result.Dependencies,
	})
}

// Errors GET /api/v1/health/errors: the last 50 logged 5xx responses.
func (h *Handlers) Errors(c *fiber.Ctx) error {
	if h.Collector.Rdb == nil {
		return response.Success(c, "Health errors fetched", []interface{}{}, nil)
	}
	entries, err := healthsvc.RecentErrors(c.UserContext(), h.Collector.Rdb)
	if err != nil {
		log.Error().Err(err).Msg("health: read error log")
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	return response.List(c, "Health errors fetched", entries)
}

// Reset POST /api/v1/health/reset: clears the request counters.
func (h *Handlers) Reset(c *fiber.Ctx) error {
	if h.Collector.Rdb == nil {
		return response.Error(c, "Redis is not configured", fiber.StatusServiceUnavailable, nil)
	}
	if err := healthsvc.ResetTraffic(c.UserContext(), h.Collector.Rdb); err != nil {
		log.Error().Err(err).Msg("health: reset stats")
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Stats reset successfully", fiber.Map{"success": true}, nil)
}
