package handler

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/banktechpro/banktech/internal/adapter/storage"
	"github.com/banktechpro/banktech/internal/core/domain"
)

type ActivityHandler struct {
	Store storage.Store
}

// List returns the activity feed, newest first.
func (h *ActivityHandler) List(c *fiber.Ctx) error {
	entries, err := h.Store.ListActivity()
	if err != nil {
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "Could not read activity log"})
	}
	if entries == nil {
		entries = []domain.ActivityEntry{}
	}
	return c.JSON(fiber.Map{"activities": entries})
}

func (h *ActivityHandler) Clear(c *fiber.Ctx) error {
	if err := h.Store.ClearActivity(); err != nil {
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "Could not clear activity log"})
	}
	return c.JSON(fiber.Map{"status": "success"})
}
