package handler

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Version reported by /health
const Version = "0.1.0"

const readyTimeout = 2 * time.Second

// ReadinessChecker is satisfied by the database health check
type ReadinessChecker func(ctx context.Context) error

type HealthHandler struct {
	ready ReadinessChecker
}

// NewHealthHandler creates the handler. A nil checker means the service is
// ready as soon as it answers.
func NewHealthHandler(ready ReadinessChecker) *HealthHandler {
	return &HealthHandler{ready: ready}
}

type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
	Error   string `json:"error,omitempty"`
}

func (h *HealthHandler) Health(c *fiber.Ctx) error {
	return c.JSON(HealthResponse{
		Status:  "ok",
		Version: Version,
	})
}

func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	if h.ready != nil {
		ctx, cancel := context.WithTimeout(c.UserContext(), readyTimeout)
		defer cancel()

		if err := h.ready(ctx); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(HealthResponse{
				Status: "unavailable",
				Error:  "database unreachable",
			})
		}
	}

	return c.JSON(HealthResponse{
		Status: "ready",
	})
}
