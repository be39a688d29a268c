package handler

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/banktechpro/banktech/internal/adapter/storage"
	"github.com/banktechpro/banktech/internal/core/connectivity"
)

// NetworkHandler is the inlet for the platform's connectivity signal and
// the source for the offline indicator: current status plus how many
// transfers are waiting for replay.
type NetworkHandler struct {
	Monitor *connectivity.Monitor
	Store   storage.Store
}

func (h *NetworkHandler) Status(c *fiber.Ctx) error {
	pending, err := h.Store.ListPending()
	if err != nil {
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "Could not read pending queue"})
	}
	return c.JSON(fiber.Map{
		"online":       h.Monitor.Online(),
		"pendingCount": len(pending),
	})
}

// Set records an online/offline event reported by the UI. The monitor does
// the edge detection; a transition to online kicks the replay worker.
func (h *NetworkHandler) Set(c *fiber.Ctx) error {
	var req struct {
		Online bool `json:"online"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	h.Monitor.Set(req.Online)
	return h.Status(c)
}
