package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/identity-service/internal/observability"
)

// Probe is a backing store the service depends on when configured.
type Probe interface {
	Ping(ctx context.Context) error
	Configured() bool
}

// HealthHandler responds to liveness and readiness probes.
type HealthHandler struct {
	serviceName string
	version     string
	probes      map[string]Probe
	metrics     *observability.Metrics
	logger      *zap.Logger
}

// NewHealthHandler returns a new handler instance.
func NewHealthHandler(serviceName, version string, probes map[string]Probe, metrics *observability.Metrics, logger *zap.Logger) *HealthHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HealthHandler{serviceName: serviceName, version: version, probes: probes, metrics: metrics, logger: logger}
}

// Live reports service liveness.
func (h *HealthHandler) Live(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "alive",
		"service": h.serviceName,
		"version": h.version,
	})
}

// Ready pings every configured dependency. Unconfigured ones are skipped
// since the in-memory backends need nothing external. Ping errors are only
// logged; the body names the failing dependency, never the cause.
func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()

	depStatus := fiber.Map{}
	ready := true
	for name, probe := range h.probes {
		if probe == nil || !probe.Configured() {
			depStatus[name] = "disabled"
			continue
		}
		if err := probe.Ping(ctx); err != nil {
			h.logger.Warn("readiness check failed", zap.String("dependency", name), zap.Error(err))
			depStatus[name] = "unavailable"
			ready = false
			continue
		}
		depStatus[name] = "ok"
	}

	if ready {
		return c.JSON(fiber.Map{
			"status":       "ready",
			"dependencies": depStatus,
		})
	}

	return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
		"serviceUnavailable": fiber.Map{
			"message": "one or more dependencies unavailable",
			"details": depStatus,
			"code":    fiber.StatusServiceUnavailable,
		},
	})
}

// Metrics GET /metrics.
func (h *HealthHandler) Metrics(c *fiber.Ctx) error {
	if h.metrics == nil {
		return c.JSON(fiber.Map{})
	}
	return c.JSON(h.metrics.Snapshot())
}
