package routes

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/example/pixgate/internal/config"
	"github.com/example/pixgate/internal/events"
	"github.com/example/pixgate/internal/gateway"
	"github.com/example/pixgate/internal/handlers"
	"github.com/example/pixgate/internal/jobs"
	"github.com/example/pixgate/internal/middleware"
	"github.com/example/pixgate/internal/repository"
	"github.com/example/pixgate/internal/services"
)

// Register wires up the service graph and all HTTP routes.
func Register(app *fiber.App, db *gorm.DB, cfg *config.Config) {
	store := repository.NewGormStore(db)
	factory := gateway.NewFactory(cfg.GatewayTimeout)

	worker := jobs.NewWebhookWorker(store, factory, jobs.TimerScheduler{}, events.LogDispatcher{}, cfg.WebhookMaxTries, cfg.WebhookRetryBackoff)
	pixService := services.NewPixService(store, factory, worker)
	withdrawService := services.NewWithdrawService(store, factory, worker)
	worker.Bind(pixService, withdrawService)

	authHandler := handlers.NewAuthHandler(store, cfg)
	pixHandler := handlers.NewPixHandler(store, pixService)
	withdrawHandler := handlers.NewWithdrawHandler(store, withdrawService)

	api := app.Group("/api")

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// Auth routes
	auth := api.Group("/auth")
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)

	// Protected routes
	protected := api.Group("", middleware.AuthMiddleware(cfg))

	protected.Get("/account", authHandler.Account)

	pix := protected.Group("/pix")
	pix.Post("/", pixHandler.Create)
	pix.Get("/", pixHandler.Index)
	pix.Get("/:id", pixHandler.Show)

	withdraw := protected.Group("/withdraw")
	withdraw.Post("/", withdrawHandler.Create)
	withdraw.Get("/", withdrawHandler.Index)
	withdraw.Get("/:id", withdrawHandler.Show)
}
