package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"

	"github.com/banktechpro/banktech/internal/adapter/handler"
	"github.com/banktechpro/banktech/internal/adapter/middleware"
	"github.com/banktechpro/banktech/internal/adapter/remote"
	"github.com/banktechpro/banktech/internal/adapter/storage"
	"github.com/banktechpro/banktech/internal/core/config"
	"github.com/banktechpro/banktech/internal/core/connectivity"
	"github.com/banktechpro/banktech/internal/core/syncer"
	"github.com/banktechpro/banktech/internal/core/wizard"
	"github.com/banktechpro/banktech/internal/core/worker"
)

func main() {
	// 1. Load Config
	cfg := config.LoadConfig()

	// 2. Setup Logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// 3. Open the local store. A failure here is not fatal: we degrade to
	// memory-only operation and lose offline durability, nothing else.
	var store storage.Store
	boltStore, err := storage.Open(cfg.DBPath)
	if err != nil {
		slog.Error("⚠️ Local store unavailable, falling back to memory-only mode", "error", err, "path", cfg.DBPath)
		store = storage.NewMemoryStore()
	} else {
		store = boltStore
	}

	// 4. Remote API client, connectivity monitor, sync engine
	client := remote.NewClient(cfg.APIBaseURL)
	monitor := connectivity.NewMonitor(cfg.StartOnline)
	engine := syncer.NewEngine(store, client, func(action string) {
		handler.LogActivity(store, action)
	}, cfg.WebhookURL)

	transferWizard := wizard.New(client, store, monitor.Online)

	// 5. Handlers
	authHandler := &handler.AuthHandler{Remote: client, Store: store}
	transactionHandler := &handler.TransactionHandler{Remote: client, Store: store}
	transferHandler := &handler.TransferHandler{Wizard: transferWizard, Remote: client, Store: store}
	activityHandler := &handler.ActivityHandler{Store: store}
	categoryHandler := &handler.CategoryHandler{Store: store}
	networkHandler := &handler.NetworkHandler{Monitor: monitor, Store: store}
	adminHandler := &handler.AdminHandler{Remote: client}

	// 6. Setup Fiber
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})
	app.Use(cors.New())

	// 7. Routes
	api := app.Group("/v1")

	// Public
	api.Post("/auth/register", authHandler.Register)
	api.Post("/auth/login", authHandler.Login)

	// Protected
	private := api.Use(middleware.Protected(store))
	private.Post("/auth/logout", authHandler.Logout)
	private.Get("/me", authHandler.Me)
	private.Put("/me", authHandler.UpdateProfile)

	private.Get("/transactions", transactionHandler.List)
	private.Get("/transactions/summary", transactionHandler.Summary)

	private.Get("/transfer", transferHandler.State)
	private.Post("/transfer/recipient", transferHandler.Recipient)
	private.Post("/transfer/amount", transferHandler.Amount)
	private.Post("/transfer/confirm", middleware.Idempotency(store), transferHandler.Confirm)
	private.Post("/transfer/back", transferHandler.Back)
	private.Post("/transfer/reset", transferHandler.Reset)

	private.Get("/activity", activityHandler.List)
	private.Delete("/activity", activityHandler.Clear)

	private.Get("/categories", categoryHandler.List)
	private.Post("/categories", categoryHandler.Add)
	private.Post("/categories/:id/transactions", categoryHandler.Assign)
	private.Delete("/categories/transactions/:transactionId", categoryHandler.Unassign)

	private.Get("/network", networkHandler.Status)
	private.Post("/network", networkHandler.Set)

	private.Get("/admin/users", adminHandler.ListUsers)

	// 8. Start the replay worker
	workerCtx, stopWorker := context.WithCancel(context.Background())
	worker.StartReplayWorker(workerCtx, monitor, engine)

	// 9. Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		slog.Info("🚀 Server starting", "env", cfg.Env, "port", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("Server forced to shutdown", "error", err)
		}
	}()

	<-stop
	slog.Info("🛑 Shutting down...")

	stopWorker()

	if err := app.Shutdown(); err != nil {
		slog.Error("Server shutdown failed", "error", err)
	}

	if err := store.Close(); err != nil {
		slog.Error("Store close failed", "error", err)
	} else {
		slog.Info("✅ Local store closed")
	}

	slog.Info("👋 Exited successfully")
}
