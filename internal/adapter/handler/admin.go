package handler

import (
	"log/slog"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/banktechpro/banktech/internal/adapter/remote"
)

type AdminHandler struct {
	Remote *remote.Client
}

// ListUsers backs the admin dashboard. Role comes from the authenticated
// snapshot; everyone else gets a 403.
func (h *AdminHandler) ListUsers(c *fiber.Ctx) error {
	if !currentUser(c).IsAdmin() {
		return c.Status(http.StatusForbidden).JSON(fiber.Map{"error": "Admin access required"})
	}

	users, err := h.Remote.ListUsers(c.Context())
	if err != nil {
		slog.Error("Admin: directory unreachable", "error", err)
		return c.Status(http.StatusBadGateway).JSON(fiber.Map{"error": "Could not fetch users"})
	}

	views := make([]userView, 0, len(users))
	for i := range users {
		views = append(views, viewOf(&users[i]))
	}
	return c.JSON(fiber.Map{"users": views})
}
