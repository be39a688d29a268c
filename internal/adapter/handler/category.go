package handler

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/banktechpro/banktech/internal/adapter/storage"
	"github.com/banktechpro/banktech/internal/core/domain"
)

type CategoryHandler struct {
	Store storage.Store
}

// First-time users start with the stock categories the categorize view
// ships with.
func defaultCategories() []domain.Category {
	return []domain.Category{
		{ID: "cat-1", Name: "Food & Dining", Transactions: []string{}},
		{ID: "cat-2", Name: "Shopping", Transactions: []string{}},
		{ID: "cat-3", Name: "Utilities", Transactions: []string{}},
	}
}

func (h *CategoryHandler) load(c *fiber.Ctx) ([]domain.Category, error) {
	user := currentUser(c)
	categories, err := h.Store.ListCategories(user.ID)
	if err != nil {
		return nil, err
	}
	if len(categories) == 0 {
		categories = defaultCategories()
		if err := h.Store.SaveCategories(user.ID, categories); err != nil {
			return nil, err
		}
	}
	return categories, nil
}

func (h *CategoryHandler) List(c *fiber.Ctx) error {
	categories, err := h.load(c)
	if err != nil {
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "Could not read categories"})
	}
	return c.JSON(fiber.Map{"categories": categories})
}

func (h *CategoryHandler) Add(c *fiber.Ctx) error {
	var req struct {
		Name string `json:"name"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Category name is required"})
	}

	categories, err := h.load(c)
	if err != nil {
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "Could not read categories"})
	}
	categories = append(categories, domain.Category{
		ID:           "cat-" + uuid.NewString(),
		Name:         name,
		Transactions: []string{},
	})
	if err := h.Store.SaveCategories(currentUser(c).ID, categories); err != nil {
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "Could not save categories"})
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"categories": categories})
}

// Assign puts a transaction into one category, removing it from any other
// first so an id can only ever live in one place.
func (h *CategoryHandler) Assign(c *fiber.Ctx) error {
	categoryID := c.Params("id")
	var req struct {
		TransactionID string `json:"transactionId"`
	}
	if err := c.BodyParser(&req); err != nil || req.TransactionID == "" {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	categories, err := h.load(c)
	if err != nil {
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "Could not read categories"})
	}

	found := false
	for i := range categories {
		categories[i].Transactions = without(categories[i].Transactions, req.TransactionID)
		if categories[i].ID == categoryID {
			categories[i].Transactions = append(categories[i].Transactions, req.TransactionID)
			found = true
		}
	}
	if !found {
		return c.Status(http.StatusNotFound).JSON(fiber.Map{"error": "Category not found"})
	}

	if err := h.Store.SaveCategories(currentUser(c).ID, categories); err != nil {
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "Could not save categories"})
	}
	return c.JSON(fiber.Map{"categories": categories})
}

// Unassign removes a transaction from whichever category holds it.
func (h *CategoryHandler) Unassign(c *fiber.Ctx) error {
	transactionID := c.Params("transactionId")

	categories, err := h.load(c)
	if err != nil {
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "Could not read categories"})
	}
	for i := range categories {
		categories[i].Transactions = without(categories[i].Transactions, transactionID)
	}
	if err := h.Store.SaveCategories(currentUser(c).ID, categories); err != nil {
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "Could not save categories"})
	}
	return c.JSON(fiber.Map{"categories": categories})
}

func without(ids []string, id string) []string {
	out := ids[:0]
	for _, candidate := range ids {
		if candidate != id {
			out = append(out, candidate)
		}
	}
	return out
}
