package middleware

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/banktechpro/banktech/internal/adapter/storage"
	"github.com/banktechpro/banktech/internal/core/security"
)

// UserKey is where Protected stashes the authenticated user snapshot for
// handlers downstream.
const UserKey = "current_user"

// Protected guards routes behind the bearer session token issued at login.
// The token hash and the user snapshot both live in the local store, so
// authentication keeps working while offline.
func Protected(store storage.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(http.StatusUnauthorized).JSON(fiber.Map{"error": "Missing session token"})
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			return c.Status(http.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid header format"})
		}

		ok, err := store.HasSession(security.HashToken(parts[1]))
		if err != nil {
			return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "Could not verify session"})
		}
		if !ok {
			return c.Status(http.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid session token"})
		}

		user, err := store.LoadUser()
		if err != nil || user == nil {
			return c.Status(http.StatusUnauthorized).JSON(fiber.Map{"error": "No active session"})
		}
		c.Locals(UserKey, user)

		return c.Next()
	}
}
