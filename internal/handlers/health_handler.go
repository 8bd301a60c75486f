package handlers

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/listkeeper/internal/dto"
	"github.com/ahmetcoskunkizilkaya/listkeeper/internal/store"
	"github.com/gofiber/fiber/v2"
)

type HealthHandler struct {
	store    store.Pinger
	sessions store.Pinger
}

// NewHealthHandler takes the pingers to report on. A nil sessions pinger
// means sessions live in process memory.
func NewHealthHandler(st store.Pinger, sessions store.Pinger) *HealthHandler {
	return &HealthHandler{store: st, sessions: sessions}
}

func (h *HealthHandler) Check(c *fiber.Ctx) error {
	resp := dto.HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Store:     "ok",
		Sessions:  "memory",
	}
	if err := h.store.Ping(c.UserContext()); err != nil {
		resp.Status = "degraded"
		resp.Store = "unhealthy: " + err.Error()
	}
	if h.sessions != nil {
		resp.Sessions = "ok"
		if err := h.sessions.Ping(c.UserContext()); err != nil {
			resp.Status = "degraded"
			resp.Sessions = "unhealthy: " + err.Error()
		}
	}

	return c.JSON(resp)
}
