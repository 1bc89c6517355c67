package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"

	"github.com/biashadrive/biashadrive-backend/database"
	"github.com/biashadrive/biashadrive-backend/internal/jobs"
	"github.com/biashadrive/biashadrive-backend/internal/models"
	"github.com/biashadrive/biashadrive-backend/internal/routes"
	"github.com/biashadrive/biashadrive-backend/internal/services"
	"github.com/biashadrive/biashadrive-backend/internal/storage"
)

func main() {
	// Load .env file for local development
	if os.Getenv("INSTANCE_CONNECTION_NAME") == "" {
		if err := godotenv.Load(".env"); err != nil {
			log.Println("⚠️  No .env file found - checking environment variables")
		}
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("JWT_SECRET is required")
	}

	devMode := os.Getenv("APP_ENV") == "development"
	if devMode {
		log.Println("⚠️  Development mode: OTP codes are returned in API responses")
	}

	// Initialize storage
	var store storage.Store

	if os.Getenv("USE_MEMORY_STORE") == "true" {
		log.Println("⚠️  Using in-memory storage (not for production!)")
		store = storage.NewMemoryStore()
	} else {
		log.Println("📦 Connecting to PostgreSQL database...")
		database.Connect()

		log.Println("🔄 Running database migrations...")
		err := database.DB.AutoMigrate(
			&models.User{},
			&models.Expert{},
			&models.Playbook{},
			&models.Diagnostic{},
			&models.Booking{},
			&models.Transaction{},
			&models.OtpCode{},
			&models.OtpRateLimit{},
		)
		if err != nil {
			log.Fatal("Failed to migrate database:", err)
		}
		log.Println("✅ Database migrations completed!")

		store = storage.NewDatabaseStore(database.DB)
	}
	storage.SetStore(store)

	if os.Getenv("SEED_EXPERTS") == "true" {
		database.SeedExperts(store)
	}

	// Delivery channels: SMS first, WhatsApp as fallback
	dispatcher := services.NewEnvDispatcher()

	svc := routes.Services{
		OTP:        services.NewOTPService(store, dispatcher, devMode),
		Auth:       services.NewAuthService(store, []byte(jwtSecret)),
		Mpesa:      services.NewMpesaService(store, dispatcher),
		Templates:  services.NewTemplateService(),
		Reports:    services.NewReportService(store),
		Dispatcher: dispatcher,
	}

	cleanupJob := jobs.NewCleanupJob(store)
	cleanupJob.Start()

	// Create fiber app
	app := fiber.New(fiber.Config{
		AppName: "BiashaDrive Backend v1.0.0",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	// Middleware
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Admin-Key",
		AllowMethods: "GET, POST, PUT, DELETE, OPTIONS",
	}))

	// Root endpoint
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"service": "BiashaDrive Backend API",
			"version": "1.0.0",
			"status":  "healthy",
			"endpoints": fiber.Map{
				"health": "/health",
				"api":    "/api",
				"admin":  "/admin",
			},
		})
	})

	// Health check endpoint for monitoring
	app.Get("/health", func(c *fiber.Ctx) error {
		status := "healthy"
		statusCode := 200

		if os.Getenv("USE_MEMORY_STORE") != "true" && database.DB != nil {
			sqlDB, err := database.DB.DB()
			if err != nil || sqlDB.Ping() != nil {
				status = "unhealthy"
				statusCode = 503
			}
		}

		return c.Status(statusCode).JSON(fiber.Map{
			"status": status,
			"services": fiber.Map{
				"database": status == "healthy",
			},
		})
	})

	routes.SetupRoutes(app, store, svc)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	// Handle graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		log.Println("\n🛑 Gracefully shutting down...")
		cleanupJob.Stop()
		_ = app.Shutdown()
	}()

	log.Println("========================================")
	log.Printf("🚀 BiashaDrive Backend starting on port %s", port)
	log.Printf("📊 Storage: %s", storageType())
	log.Printf("🌍 Environment: %s", environment(devMode))
	log.Println("========================================")

	log.Fatal(app.Listen(":" + port))
}

func environment(devMode bool) string {
	if devMode {
		return "Development"
	}
	return "Production"
}

func storageType() string {
	if os.Getenv("USE_MEMORY_STORE") == "true" {
		return "In-Memory (Testing)"
	}
	return "PostgreSQL Database"
}
