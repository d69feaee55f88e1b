package routes

import (
	"taskhub/internal/adapters/http/handlers"
	"taskhub/internal/adapters/http/middleware"
	"taskhub/internal/adapters/persistence/repositories"
	"taskhub/internal/config"
	"taskhub/internal/core/services"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Setup configures all routes for the application
func Setup(app *fiber.App, db *gorm.DB, cfg *config.Config) {
	// Repositories
	userRepo := repositories.NewUserRepository(db)
	taskRepo := repositories.NewTaskRepository(db)

	// Services
	authService := services.NewAuthService(userRepo, cfg)
	userService := services.NewUserService(userRepo)
	taskService := services.NewTaskService(taskRepo, userRepo)

	// Handlers
	healthHandler := handlers.NewHealthHandler()
	authHandler := handlers.NewAuthHandler(authService, userService)
	userHandler := handlers.NewUserHandler(userService)
	taskHandler := handlers.NewTaskHandler(taskService)

	// Health check & root routes
	app.Get("/", healthHandler.Root)
	app.Get("/health", healthHandler.HealthCheck)

	api := app.Group("/api/v1")

	// Auth routes (public, stricter rate limit)
	authRoutes := api.Group("/auth", middleware.AuthRateLimiter())
	authRoutes.Post("/register", authHandler.Register)
	authRoutes.Post("/login", authHandler.Login)
	authRoutes.Get("/me", middleware.AuthMiddleware(cfg), authHandler.Me)

	// User routes (authenticated; admin-only where marked)
	userRoutes := api.Group("/users")
	userRoutes.Use(middleware.AuthMiddleware(cfg))
	userRoutes.Post("", middleware.AdminOnly(), userHandler.CreateUser)
	userRoutes.Get("", middleware.AdminOnly(), userHandler.ListUsers)
	userRoutes.Get("/:id", userHandler.GetUser)
	userRoutes.Put("/:id", userHandler.UpdateUser)
	userRoutes.Delete("/:id", middleware.AdminOnly(), userHandler.DeleteUser)

	// Tasks nested under their owner
	userRoutes.Post("/:userId/tasks", taskHandler.CreateTask)
	userRoutes.Get("/:userId/tasks", taskHandler.ListTasksByUser)

	// Task routes addressed by task id
	taskRoutes := api.Group("/tasks")
	taskRoutes.Use(middleware.AuthMiddleware(cfg))
	taskRoutes.Get("", middleware.AdminOnly(), taskHandler.ListTasks)
	taskRoutes.Get("/:id", taskHandler.GetTask)
	taskRoutes.Put("/:id", taskHandler.UpdateTask)
	taskRoutes.Delete("/:id", taskHandler.DeleteTask)
}
