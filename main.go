package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/streadway/amqp"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"catalog/internal/config"
	"catalog/internal/handlers"
	"catalog/internal/middleware"
	"catalog/internal/models"
	"catalog/internal/repositories"
	"catalog/internal/services"
	"catalog/pkg/rabbitmq"
)

func main() {
	cfg, warnings, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Invalid configuration:", err)
		os.Exit(1)
	}
	logger := config.NewLogger(cfg.LogLevel, cfg.LogFormat)
	for _, w := range warnings {
		logger.Warn(w)
	}

	// --- RabbitMQ (optional) ---
	var events services.EventPublisher
	var mqClient *rabbitmq.Client
	if cfg.RabbitMQURL == "" {
		logger.Info("RABBITMQ_URL not set, running without lifecycle events")
	} else if mqClient, err = rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL}, logger); err != nil {
		logger.WithError(err).Warn("RabbitMQ unavailable, running without lifecycle events")
		mqClient = nil
	} else {
		defer mqClient.Close()
		events = mqClient
		if err := mqClient.ConsumeCatalogEvents(auditEvent(logger)); err != nil {
			logger.WithError(err).Warn("Failed to start catalog event consumer")
		}
	}

	app, err := NewApp(cfg, logger, events)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize application")
	}

	// --- Start HTTP Server ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.WithField("port", cfg.AppPort).Info("Starting server")
		if err := app.Listen(cfg.AppPort); err != nil {
			logger.WithError(err).Fatal("Server failed to start")
		}
	}()

	<-quit
	logger.Info("Shutting down server...")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.WithError(err).Error("Error during Fiber shutdown")
	}
	logger.Info("Server gracefully stopped")
}

// NewApp wires repositories, services and handlers into a Fiber app.
// events may be nil.
func NewApp(cfg *config.Config, logger *logrus.Logger, events services.EventPublisher) (*fiber.App, error) {
	productRepo, userRepo, err := openRepositories(cfg, logger)
	if err != nil {
		return nil, err
	}

	jwtSecret := cfg.JWTSecret
	if jwtSecret == "" {
		// Only reachable with the memory driver; tokens die with the process.
		jwtSecret = uuid.New().String()
		logger.Warn("JWT_SECRET not set, using a random secret for this process")
	}

	productService := services.NewProductService(productRepo, events, logger)
	authService := services.NewAuthService(userRepo, jwtSecret, logger)

	authService.ReserveUsername(cfg.AdminUsername)
	if cfg.AdminPassword == "" {
		logger.Warn("ADMIN_PASSWORD not set, skipping admin bootstrap")
	} else if _, err := authService.EnsureAdmin(cfg.AdminUsername, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		return nil, fmt.Errorf("failed to bootstrap admin account: %w", err)
	}

	if cfg.SeedDemoData {
		seedProducts(productRepo, logger)
	}

	app := fiber.New(fiber.Config{
		AppName:               "catalog",
		DisableStartupMessage: true,
	})
	app.Use(recover.New())
	app.Use(middleware.RequestLogger(logger))

	apiV1 := app.Group("/api/v1")
	handlers.NewAuthHandler(authService, logger).RegisterRoutes(apiV1)
	handlers.NewProductHandler(productService, logger).RegisterRoutes(apiV1, authService)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
			"events": events != nil,
		})
	})

	return app, nil
}

// openRepositories returns the product and user stores for cfg.DBDriver.
func openRepositories(cfg *config.Config, logger *logrus.Logger) (repositories.ProductRepository, repositories.UserRepository, error) {
	var dialector gorm.Dialector
	switch cfg.DBDriver {
	case config.DriverMemory:
		logger.Info("Using in-memory repositories")
		return repositories.NewInMemoryProductRepository(), repositories.NewInMemoryUserRepository(), nil
	case config.DriverSQLite:
		dialector = sqlite.Open(cfg.DatabaseDSN)
	case config.DriverPostgres:
		dialector = postgres.Open(cfg.DatabaseDSN)
	default:
		return nil, nil, fmt.Errorf("unsupported database driver %q", cfg.DBDriver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Warn)})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.AutoMigrate(&models.Product{}, &models.User{}); err != nil {
		return nil, nil, fmt.Errorf("failed to auto-migrate database: %w", err)
	}
	logger.WithField("driver", cfg.DBDriver).Info("Database connected and migrated")

	return repositories.NewGORMProductRepository(db), repositories.NewGORMUserRepository(db), nil
}

// seedProducts adds a small demo catalog when the store is empty: in stock,
// sold out and soft-deleted products.
func seedProducts(repo repositories.ProductRepository, logger *logrus.Logger) {
	existing, err := repo.GetAll()
	if err != nil {
		logger.WithError(err).Error("Failed to read products before seeding")
		return
	}
	if len(existing) > 0 {
		logger.WithField("count", len(existing)).Info("Catalog not empty, skipping demo data")
		return
	}

	products := []struct {
		product models.Product
		deleted bool
	}{
		{product: models.Product{Title: "iPhone 15 Pro", Description: "Titanium smartphone", Price: 1199, StockQuantity: 10, Category: "smartphones", Brand: "Apple", Thumbnail: "iphone-15-pro.jpg"}},
		{product: models.Product{Title: "iPad Air", Description: "Lightweight tablet", Price: 599, DiscountPercentage: 5, StockQuantity: 7, Category: "tablets", Brand: "Apple", Thumbnail: "ipad-air.jpg"}},
		{product: models.Product{Title: "Samsung Galaxy S24", Description: "Android flagship", Price: 899, StockQuantity: 0, Category: "smartphones", Brand: "Samsung", Thumbnail: "galaxy-s24.jpg"}},
		{product: models.Product{Title: "Mechanical Keyboard", Description: "Hot-swappable switches", Price: 89, StockQuantity: 25, Category: "accessories", Brand: "Keychron", Thumbnail: "keyboard.jpg"}},
		{product: models.Product{Title: "Old Phone", Description: "Discontinued model", Price: 99, StockQuantity: 5, Category: "smartphones", Brand: "Nokia", Thumbnail: "old-phone.jpg"}, deleted: true},
	}

	for i := range products {
		p := &products[i].product
		if err := repo.Create(p); err != nil {
			logger.WithError(err).WithField("title", p.Title).Error("Error seeding product")
			continue
		}
		if products[i].deleted {
			if err := p.Delete(); err == nil {
				if err := repo.Update(p); err != nil {
					logger.WithError(err).WithField("title", p.Title).Error("Error soft-deleting seeded product")
				}
			}
		}
		logger.WithFields(logrus.Fields{"title": p.Title, "id": p.ID}).Debug("Seeded product")
	}
	logger.WithField("count", len(products)).Info("Seeded demo catalog")
}

// auditEvent logs every catalog lifecycle event it receives.
func auditEvent(logger *logrus.Logger) func(amqp.Delivery) error {
	return func(msg amqp.Delivery) error {
		var event services.ProductEvent
		if err := json.Unmarshal(msg.Body, &event); err != nil {
			// Requeueing a body that cannot be decoded would loop forever.
			logger.WithError(err).WithField("routing_key", msg.RoutingKey).Warn("Dropping malformed catalog event")
			return nil
		}
		logger.WithFields(logrus.Fields{
			"event":          event.Event,
			"product_id":     event.ProductID,
			"title":          event.Title,
			"lifecycle":      event.Lifecycle,
			"stock_quantity": event.StockQuantity,
			"occurred_at":    event.OccurredAt,
		}).Info("Catalog event")
		return nil
	}
}
