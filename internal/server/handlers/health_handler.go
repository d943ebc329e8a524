package handlers

import (
	"context"
	"time"

	"github.com/dmitrijs2005/rosebudthorn/internal/api"
	"github.com/gofiber/fiber/v2"
)

type HealthHandler struct {
	check func(ctx context.Context) error
}

func NewHealthHandler(check func(ctx context.Context) error) *HealthHandler {
	return &HealthHandler{check: check}
}

func (h *HealthHandler) Health(c *fiber.Ctx) error {
	if h.check != nil {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := h.check(ctx); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(api.HealthResponse{Status: "unavailable", Time: time.Now().UTC()})
		}
	}
	return c.JSON(api.HealthResponse{Status: "ok", Time: time.Now().UTC()})
}
