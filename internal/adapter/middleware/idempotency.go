package middleware

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/banktechpro/banktech/internal/adapter/storage"
)

// Idempotency replays the cached response for a repeated Idempotency-Key,
// so a retried confirm request cannot submit the same transfer twice.
func Idempotency(store storage.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := c.Get("Idempotency-Key")
		if key == "" {
			return c.Next()
		}

		cached, err := store.LookupIdempotent(key)
		if err != nil {
			slog.Error("Idempotency lookup failed", "error", err, "key", key)
			return c.Next()
		}
		if cached != nil {
			slog.Info("🛑 Idempotency hit, returning cached response", "key", key)
			c.Set("X-Idempotency-Hit", "true")
			c.Set("Content-Type", "application/json")
			return c.Status(cached.Status).Send(cached.Body)
		}

		if err := c.Next(); err != nil {
			return err
		}

		resp := &storage.IdempotentResponse{
			Status: c.Response().StatusCode(),
			Body:   append([]byte(nil), c.Response().Body()...),
		}
		if err := store.SaveIdempotent(key, resp); err != nil {
			slog.Error("Failed to save idempotency key", "error", err, "key", key)
		}
		return nil
	}
}
