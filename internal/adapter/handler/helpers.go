package handler

import (
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/banktechpro/banktech/internal/adapter/middleware"
	"github.com/banktechpro/banktech/internal/adapter/storage"
	"github.com/banktechpro/banktech/internal/core/domain"
)

// userView is the user record without the password field; directory records
// carry plaintext passwords (the mock API's shape, not ours) and those must
// never leave this process.
type userView struct {
	ID            string               `json:"id"`
	Name          string               `json:"name"`
	Email         string               `json:"email"`
	AccountNumber domain.AccountNumber `json:"accountNumber"`
	AccountType   string               `json:"accountType"`
	Balance       decimal.Decimal      `json:"balance"`
	Role          string               `json:"role"`
	CreatedAt     string               `json:"createdAt"`
}

func viewOf(u *domain.User) userView {
	return userView{
		ID:            u.ID,
		Name:          u.Name,
		Email:         u.Email,
		AccountNumber: u.AccountNumber,
		AccountType:   u.AccountType,
		Balance:       u.Balance,
		Role:          u.Role,
		CreatedAt:     u.CreatedAt,
	}
}

// currentUser returns the snapshot the Protected middleware loaded.
func currentUser(c *fiber.Ctx) *domain.User {
	user, _ := c.Locals(middleware.UserKey).(*domain.User)
	return user
}

// LogActivity appends one line to the activity feed. Failures are logged
// and swallowed; the feed is informational, never load-bearing.
func LogActivity(store storage.Store, action string) {
	entry := domain.ActivityEntry{
		ID:        uuid.NewString(),
		Action:    action,
		Timestamp: time.Now().UTC(),
	}
	if err := store.AppendActivity(entry); err != nil {
		slog.Warn("Could not record activity", "error", err, "action", action)
	}
}
