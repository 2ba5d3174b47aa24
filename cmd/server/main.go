package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"salescrm/internal/adapters/http/middleware"
	"salescrm/internal/adapters/http/routes"
	"salescrm/internal/adapters/persistence/models"
	"salescrm/internal/config"
	"salescrm/internal/core/services"
	"salescrm/internal/pkg/logger"

	"github.com/gofiber/fiber/v2"
)

// @title Sales CRM API
// @version 1.0
// @description Sales pipeline and customer relationship management API
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.email support@salescrm.io

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @host api.salescrm.io
// @BasePath /api/v1
// @schemes https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load configuration: %v", err)
	}

	// Structured logger
	env := "production"
	if cfg.IsDev() {
		env = "development"
	}
	appLog := logger.New(logger.Config{
		Env:   env,
		Level: os.Getenv("LOG_LEVEL"),
	})

	// Connect to database
	db, err := config.ConnectDatabase(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	defer config.CloseDatabase()

	// Auto migrate (creates tables if not exist)
	if err := models.AutoMigrate(db); err != nil {
		log.Fatalf("❌ Failed to auto migrate: %v", err)
	}
	log.Println("✅ Database migration completed")

	// Seed permission catalogue, admin account and starter products
	if err := config.NewSeeder(db).Run(); err != nil {
		log.Printf("⚠️ Warning: Failed to seed data: %v", err)
	}

	// Daily pipeline snapshot (06:00)
	snapshotService := services.NewSnapshotService(services.NewDashboardService(db), appLog)
	if err := snapshotService.Start(); err != nil {
		log.Printf("⚠️ Warning: Failed to schedule pipeline snapshot: %v", err)
	}
	defer snapshotService.Stop()

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "Sales CRM API v1.0",
		ErrorHandler: middleware.CustomErrorHandler,
	})

	// Setup middlewares
	middleware.Setup(app, cfg)

	// Setup routes (pass db and cfg for dependency injection)
	routes.Setup(app, db, cfg, appLog)

	// Graceful shutdown
	go gracefulShutdown(app)

	// Start server
	log.Printf("🚀 Server starting on port %s [MODE: %s]", cfg.Port, cfg.AppMode)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
	}
}

// gracefulShutdown handles graceful shutdown
func gracefulShutdown(app *fiber.App) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.Printf("❌ Error during shutdown: %v", err)
	}
	log.Println("✅ Server stopped gracefully")
}
