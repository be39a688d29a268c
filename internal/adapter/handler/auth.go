package handler

import (
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/banktechpro/banktech/internal/adapter/remote"
	"github.com/banktechpro/banktech/internal/adapter/storage"
	"github.com/banktechpro/banktech/internal/core/domain"
	"github.com/banktechpro/banktech/internal/core/security"
)

// Every new account opens with the same demo balance the bank seeds.
var openingBalance = decimal.NewFromInt(1000000)

type AuthHandler struct {
	Remote *remote.Client
	Store  storage.Store
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
	AccountType     string `json:"accountType"`
	TermsAccepted   bool   `json:"termsAccepted"`
}

// Login matches credentials against the remote user directory, persists
// the snapshot locally and issues a session token. The directory check is
// the mock API's toy scheme, kept as-is on purpose.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	users, err := h.Remote.ListUsers(c.Context())
	if err != nil {
		slog.Error("Login: directory unreachable", "error", err)
		return c.Status(http.StatusBadGateway).JSON(fiber.Map{"error": "Login failed. Please try again."})
	}

	var found *domain.User
	for i := range users {
		if users[i].Email == req.Email && users[i].Password == req.Password {
			found = &users[i]
			break
		}
	}
	if found == nil {
		return c.Status(http.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid email or password"})
	}

	token, err := h.openSession(found)
	if err != nil {
		slog.Error("Login: could not open session", "error", err)
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "Login failed. Please try again."})
	}

	LogActivity(h.Store, "Logged in")
	slog.Info("✅ User logged in", "user_id", found.ID)

	return c.JSON(fiber.Map{"token": token, "user": viewOf(found)})
}

// Register creates a remote user with a generated account number and the
// standard opening balance, then logs the new user straight in.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if req.Name == "" || req.Email == "" || req.Password == "" {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Name, email and password are required"})
	}
	if req.Password != req.ConfirmPassword {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Passwords do not match"})
	}
	if !req.TermsAccepted {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "You must accept the terms and conditions"})
	}

	user := &domain.User{
		Name:          req.Name,
		Email:         req.Email,
		Password:      req.Password,
		AccountType:   req.AccountType,
		AccountNumber: domain.NewAccountNumber(time.Now(), rand.Intn(9000)),
		Balance:       openingBalance,
		Role:          "customer",
		CreatedAt:     time.Now().UTC().Format(time.RFC3339),
	}

	created, err := h.Remote.CreateUser(c.Context(), user)
	if err != nil {
		slog.Error("Register: create user failed", "error", err)
		return c.Status(http.StatusBadGateway).JSON(fiber.Map{"error": "Registration failed. Please try again."})
	}

	token, err := h.openSession(created)
	if err != nil {
		slog.Error("Register: could not open session", "error", err)
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "Registration failed. Please try again."})
	}

	LogActivity(h.Store, "Registered a new account")
	slog.Info("✅ Account registered", "user_id", created.ID, "account_number", created.AccountNumber)

	return c.Status(http.StatusCreated).JSON(fiber.Map{"token": token, "user": viewOf(created)})
}

// Logout drops the session and the local snapshot.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	LogActivity(h.Store, "Logged out")
	if err := h.Store.ClearSessions(); err != nil {
		slog.Warn("Logout: could not clear sessions", "error", err)
	}
	if err := h.Store.DeleteUser(); err != nil {
		slog.Warn("Logout: could not delete user snapshot", "error", err)
	}
	return c.JSON(fiber.Map{"status": "success"})
}

// Me returns the last-known snapshot of the authenticated user.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	return c.JSON(viewOf(currentUser(c)))
}

type UpdateProfileRequest struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	AccountType string `json:"accountType"`
}

// UpdateProfile pushes changed profile fields to the remote record and
// refreshes the local snapshot from what the server returns. Empty fields
// are left untouched; switching the account type goes through the same
// path as a name or credential change.
func (h *AuthHandler) UpdateProfile(c *fiber.Ctx) error {
	var req UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	fields := map[string]any{}
	if req.Name != "" {
		fields["name"] = req.Name
	}
	if req.Email != "" {
		fields["email"] = req.Email
	}
	if req.Password != "" {
		fields["password"] = req.Password
	}
	if req.AccountType != "" {
		fields["accountType"] = req.AccountType
	}
	if len(fields) == 0 {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Nothing to update"})
	}

	user := currentUser(c)
	updated, err := h.Remote.UpdateUser(c.Context(), user.ID, fields)
	if err != nil {
		slog.Error("UpdateProfile: remote update failed", "error", err)
		return c.Status(http.StatusBadGateway).JSON(fiber.Map{"error": "Profile update failed. Please try again."})
	}

	if err := h.Store.SaveUser(updated); err != nil {
		slog.Warn("UpdateProfile: could not refresh snapshot", "error", err)
	}

	if _, switched := fields["accountType"]; switched && len(fields) == 1 {
		LogActivity(h.Store, fmt.Sprintf("Switched account type to %s", req.AccountType))
	} else {
		LogActivity(h.Store, "Updated profile")
	}
	slog.Info("✅ Profile updated", "user_id", updated.ID)

	return c.JSON(viewOf(updated))
}

func (h *AuthHandler) openSession(user *domain.User) (string, error) {
	if err := h.Store.SaveUser(user); err != nil {
		return "", err
	}
	token, hash, err := security.GenerateSessionToken()
	if err != nil {
		return "", err
	}
	if err := h.Store.SaveSession(hash); err != nil {
		return "", err
	}
	return token, nil
}
