package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
	"github.com/streadway/amqp"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"catalog/internal/handlers"
	"catalog/internal/middleware"
	"catalog/internal/models"
	"catalog/internal/repositories"
	"catalog/internal/services"
	"catalog/pkg/rabbitmq"
)

func main() {
	// --- Configuration ---
	viper.SetDefault("APP_PORT", ":8080")
	viper.SetDefault("DATABASE_URI", "")
	viper.SetDefault("RABBITMQ_URL", "")
	viper.SetDefault("JWT_SECRET", "")
	viper.AutomaticEnv() // Load environment variables

	appPort := viper.GetString("APP_PORT")

	// --- Initialize Repository ---
	// With a DATABASE_URI the catalog runs against PostgreSQL; without
	// one it falls back to an in-memory store seeded with sample data,
	// which is handy for local development.
	var productRepo repositories.ProductRepository
	if dsn := viper.GetString("DATABASE_URI"); dsn != "" {
		db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		if err := db.AutoMigrate(&models.Product{}); err != nil {
			log.Fatalf("Failed to migrate database: %v", err)
		}
		productRepo = repositories.NewGORMProductRepository(db)
	} else {
		log.Println("DATABASE_URI not set, using in-memory product repository")
		memRepo := repositories.NewMemoryProductRepository()
		seedProducts(memRepo)
		productRepo = memRepo
	}

	// --- Initialize RabbitMQ Client (optional) ---
	var publisher services.EventPublisher
	if mqURL := viper.GetString("RABBITMQ_URL"); mqURL != "" {
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: mqURL})
		if err != nil {
			log.Fatalf("Failed to initialize RabbitMQ client: %v", err)
		}
		defer mqClient.Close()
		publisher = mqClient

		// Consume our own lifecycle events as an audit log. Other
		// deployments point real consumers at the same queue.
		go func() {
			if err := mqClient.ConsumeProductEvents(func(msg amqp.Delivery) error {
				log.Printf("Product event %s (Tag: %d): %s", msg.Type, msg.DeliveryTag, string(msg.Body))
				return nil
			}); err != nil {
				log.Printf("Failed to start RabbitMQ consumer: %v", err)
			}
		}()
	} else {
		log.Println("RABBITMQ_URL not set, product events disabled")
	}

	// --- Initialize Service and Handler ---
	productService := services.NewProductService(productRepo, publisher)

	var auth fiber.Handler
	if secret := viper.GetString("JWT_SECRET"); secret != "" {
		auth = middleware.AuthRequired(secret)
	} else {
		log.Println("JWT_SECRET not set, mutating routes are unauthenticated")
	}
	productHandler := handlers.NewProductHandler(productService, auth)

	// --- Initialize Fiber App ---
	app := fiber.New()
	app.Use(logger.New()) // Request logger

	apiV1 := app.Group("/api/v1")
	productHandler.RegisterRoutes(apiV1)

	// --- Health Check Endpoint ---
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// --- Start HTTP Server ---
	log.Printf("Starting server on port %s", appPort)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := app.Listen(appPort); err != nil {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	<-quit
	log.Println("Shutting down server...")

	if err := app.Shutdown(); err != nil {
		log.Printf("Error during Fiber shutdown: %v", err)
	}

	log.Println("Server gracefully stopped")
}

// seedProducts populates the in-memory repository with initial data.
func seedProducts(repo repositories.ProductRepository) {
	products := []models.Product{
		{Name: "Fedora", Description: "A red hat", Price: decimal.RequireFromString("12.50"), Available: true, Category: models.CategoryCloths},
		{Name: "Hammer", Description: "Claw hammer with fiberglass handle", Price: decimal.RequireFromString("24.99"), Available: true, Category: models.CategoryTools},
		{Name: "Granola", Description: "Oat and honey granola, 500g", Price: decimal.RequireFromString("6.25"), Available: false, Category: models.CategoryFood},
	}

	for i := range products {
		if err := repo.Create(&products[i]); err != nil {
			log.Printf("Error seeding product %s: %v", products[i].Name, err)
		} else {
			log.Printf("Seeded product: %s (id: %d)", products[i].Name, products[i].ID)
		}
	}
}
