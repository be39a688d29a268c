package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/banktechpro/banktech/internal/adapter/remote"
	"github.com/banktechpro/banktech/internal/adapter/storage"
	"github.com/banktechpro/banktech/internal/core/domain"
	"github.com/banktechpro/banktech/internal/core/wizard"
)

// TransferHandler exposes the wizard to the UI. Every response carries the
// wizard snapshot so the client can render whatever state the machine is
// in, including the inline error messages.
type TransferHandler struct {
	Wizard *wizard.Wizard
	Remote *remote.Client
	Store  storage.Store
}

type recipientRequest struct {
	AccountNumber string `json:"accountNumber"`
}

type amountRequest struct {
	Amount string `json:"amount"`
	Notes  string `json:"notes"`
}

func (h *TransferHandler) State(c *fiber.Ctx) error {
	return c.JSON(h.Wizard.Snapshot())
}

func (h *TransferHandler) Recipient(c *fiber.Ctx) error {
	var req recipientRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	err := h.Wizard.ValidateRecipient(c.Context(), req.AccountNumber, currentUser(c))
	return h.respond(c, err)
}

func (h *TransferHandler) Amount(c *fiber.Ctx) error {
	var req amountRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	err := h.Wizard.EnterAmount(req.Amount, req.Notes, currentUser(c))
	return h.respond(c, err)
}

func (h *TransferHandler) Confirm(c *fiber.Ctx) error {
	user := currentUser(c)

	refreshUser := func(ctx context.Context) error {
		fresh, err := h.Remote.GetUser(ctx, user.ID)
		if err != nil {
			return err
		}
		return h.Store.SaveUser(fresh)
	}
	refreshTransactions := func(ctx context.Context) error {
		_, err := RefreshMirror(ctx, h.Remote, h.Store, user.ID)
		return err
	}

	err := h.Wizard.Submit(c.Context(), user, refreshUser, refreshTransactions, func(action string) {
		LogActivity(h.Store, action)
	})
	return h.respond(c, err)
}

func (h *TransferHandler) Back(c *fiber.Ctx) error {
	h.Wizard.Back()
	return c.JSON(h.Wizard.Snapshot())
}

func (h *TransferHandler) Reset(c *fiber.Ctx) error {
	h.Wizard.Reset()
	return c.JSON(h.Wizard.Snapshot())
}

// respond maps wizard errors onto HTTP statuses and always returns the
// snapshot; the machine already holds the user-facing message.
func (h *TransferHandler) respond(c *fiber.Ctx, err error) error {
	status := http.StatusOK
	switch {
	case err == nil:
	case errors.Is(err, wizard.ErrBusy):
		status = http.StatusConflict
	case isA[*domain.ValidationError](err):
		status = http.StatusBadRequest
	case isA[*domain.NotFoundError](err):
		status = http.StatusNotFound
	default:
		status = http.StatusBadGateway
	}
	return c.Status(status).JSON(h.Wizard.Snapshot())
}

func isA[T error](err error) bool {
	var target T
	return errors.As(err, &target)
}
