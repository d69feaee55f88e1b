package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"taskhub/internal/adapters/http/middleware"
	"taskhub/internal/adapters/http/routes"
	"taskhub/internal/adapters/persistence/models"
	"taskhub/internal/config"

	"github.com/gofiber/fiber/v2"
)

// @title taskhub API
// @version 1.0
// @description Multi-tenant task manager with ownership-gated access control.

// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Load configuration (signing key misconfiguration is fatal here)
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Connect to database
	db, err := config.ConnectDatabase(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer config.CloseDatabase()

	// Auto migrate
	if err := models.AutoMigrate(db); err != nil {
		log.Fatalf("Failed to auto migrate: %v", err)
	}
	log.Println("Database migration completed")

	// Seed the bootstrap admin; self-registration can never create one
	if err := config.SeedAdminUser(db, cfg); err != nil {
		log.Fatalf("Failed to seed admin user: %v", err)
	}

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "taskhub API",
		ErrorHandler: middleware.CustomErrorHandler,
	})

	// Setup middlewares
	middleware.Setup(app, cfg)

	// Setup routes
	routes.Setup(app, db, cfg)

	// Graceful shutdown
	go gracefulShutdown(app)

	log.Printf("Server starting on port %s [MODE: %s]", cfg.Port, cfg.AppMode)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// gracefulShutdown handles graceful shutdown
func gracefulShutdown(app *fiber.App) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}
	log.Println("Server stopped gracefully")
}
