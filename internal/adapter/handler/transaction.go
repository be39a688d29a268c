package handler

import (
	"context"
	"log/slog"
	"net/http"
	"sort"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/banktechpro/banktech/internal/adapter/remote"
	"github.com/banktechpro/banktech/internal/adapter/storage"
	"github.com/banktechpro/banktech/internal/core/domain"
)

type TransactionHandler struct {
	Remote *remote.Client
	Store  storage.Store
}

// RefreshMirror pulls the full remote ledger, keeps the rows the user
// participates in and atomically swaps them into the local mirror. Shared
// by the listing endpoint and the post-transfer refresh callback.
func RefreshMirror(ctx context.Context, client *remote.Client, store storage.Store, userID string) ([]domain.TransactionRecord, error) {
	all, err := client.ListTransactions(ctx)
	if err != nil {
		return nil, err
	}
	mine := make([]domain.TransactionRecord, 0, len(all))
	for _, rec := range all {
		if rec.Involves(userID) {
			mine = append(mine, rec)
		}
	}
	if err := store.ReplaceAllCached(mine); err != nil {
		return nil, err
	}
	return mine, nil
}

func sortNewestFirst(records []domain.TransactionRecord) {
	sort.Slice(records, func(i, j int) bool {
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})
}

// List is cache-first: when the remote fetch fails we fall back to the
// mirror and flag the response as stale instead of erroring.
func (h *TransactionHandler) List(c *fiber.Ctx) error {
	user := currentUser(c)

	fresh, err := RefreshMirror(c.Context(), h.Remote, h.Store, user.ID)
	if err == nil {
		sortNewestFirst(fresh)
		return c.JSON(fiber.Map{"transactions": fresh, "stale": false})
	}
	slog.Warn("Transaction refresh failed, serving cached mirror", "error", err)

	cached, cacheErr := h.Store.GetAllCached()
	if cacheErr != nil {
		slog.Error("Cached transactions unavailable", "error", cacheErr)
		return c.Status(http.StatusBadGateway).JSON(fiber.Map{"error": "Could not fetch transactions"})
	}
	mine := make([]domain.TransactionRecord, 0, len(cached))
	for _, rec := range cached {
		if rec.Involves(user.ID) {
			mine = append(mine, rec)
		}
	}
	sortNewestFirst(mine)
	return c.JSON(fiber.Map{"transactions": mine, "stale": true})
}

// Summary aggregates the mirror into the numbers the analytics view plots:
// money in, money out, and per-category outflow totals.
func (h *TransactionHandler) Summary(c *fiber.Ctx) error {
	user := currentUser(c)

	records, err := h.Store.GetAllCached()
	if err != nil {
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "Could not read cached transactions"})
	}

	inflow := decimal.Zero
	outflow := decimal.Zero
	byCategory := map[string]decimal.Decimal{}
	count := 0

	for _, rec := range records {
		if !rec.Involves(user.ID) {
			continue
		}
		count++
		if rec.AccountDestinationID == user.ID {
			inflow = inflow.Add(rec.Nominal)
		} else {
			outflow = outflow.Add(rec.Nominal)
			category := rec.Category
			if category == "" {
				category = "uncategorized"
			}
			byCategory[category] = byCategory[category].Add(rec.Nominal)
		}
	}

	return c.JSON(fiber.Map{
		"count":      count,
		"inflow":     inflow,
		"outflow":    outflow,
		"byCategory": byCategory,
	})
}
