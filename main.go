package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"kedai/internal/config"
	"kedai/internal/database"
	"kedai/internal/gateway"
	"kedai/internal/handlers"
	"kedai/internal/repositories"
	"kedai/internal/services"
	"kedai/pkg/rabbitmq"
)

func main() {
	// --- Configuration ---
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := config.NewLogger(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync() //nolint:errcheck

	// --- Database ---
	db, err := database.Open(cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.String("driver", cfg.Database.Driver), zap.Error(err))
	}
	if err := database.Migrate(db); err != nil {
		log.Fatal("Failed to migrate database", zap.Error(err))
	}
	if cfg.SeedData {
		if err := database.Seed(db, cfg.SeedAdminPassword, log); err != nil {
			log.Fatal("Failed to seed database", zap.Error(err))
		}
	}

	// --- RabbitMQ ---
	// Left as a nil interface when disabled so services skip publishing.
	var publisher services.EventPublisher
	if cfg.RabbitMQ.URL != "" {
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQ.URL}, log)
		if err != nil {
			log.Fatal("Failed to initialize RabbitMQ client", zap.Error(err))
		}
		defer mqClient.Close()
		publisher = mqClient

		if err := mqClient.ConsumeOrderEvents(rabbitmq.LogOrderEvents(log)); err != nil {
			log.Error("Failed to start RabbitMQ consumer", zap.Error(err))
		}
	} else {
		log.Info("RABBITMQ_URL is empty, order events will not be published")
	}

	// --- Payment gateway ---
	if cfg.Stripe.WebhookSecret == "" {
		log.Warn("STRIPE_WEBHOOK_SECRET is empty, every webhook delivery will be rejected")
	}
	gw := gateway.NewStripe(cfg.Stripe.SecretKey, cfg.Stripe.WebhookSecret, nil)

	app := newApp(cfg, db, gw, publisher, log)

	// --- Start HTTP Server ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Info("Starting server", zap.String("addr", cfg.AppPort))
		if err := app.Listen(cfg.AppPort); err != nil {
			log.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	<-quit
	log.Info("Shutting down server...")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Error("Error during Fiber shutdown", zap.Error(err))
	}
	log.Info("Server gracefully stopped")
}

// newApp wires repositories, services and handlers into a Fiber app.
func newApp(cfg *config.Config, db *gorm.DB, gw gateway.Gateway, publisher services.EventPublisher, log *zap.Logger) *fiber.App {
	// --- Repositories ---
	productRepo := repositories.NewGORMProductRepository(db)
	orderRepo := repositories.NewGORMOrderRepository(db)
	userRepo := repositories.NewGORMUserRepository(db)

	// --- Services ---
	couponService := services.NewCouponService(repositories.NewGORMCouponRepository(db))
	orderService := services.NewOrderService(services.OrderServiceDeps{
		Orders:         orderRepo,
		Statuses:       repositories.NewGORMOrderStatusRepository(db),
		Products:       productRepo,
		Users:          userRepo,
		Coupons:        couponService,
		Gateway:        gw,
		Publisher:      publisher,
		Log:            log,
		Currency:       cfg.Stripe.Currency,
		GatewayTimeout: cfg.Stripe.Timeout,
	})

	svc := handlers.Services{
		Auth:     services.NewAuthService(userRepo, cfg.JWTSecret, log),
		Products: services.NewProductService(productRepo),
		Carts:    services.NewCartService(repositories.NewGORMCartRepository(db), productRepo),
		Coupons:  couponService,
		Orders:   orderService,
		Payments: services.NewPaymentService(orderService, orderRepo, gw, publisher, log),
	}

	app := fiber.New(fiber.Config{
		AppName:      "kedai",
		ErrorHandler: handlers.ErrorHandler(log),
	})

	// --- Middleware ---
	app.Use(requestid.New())
	app.Use(logger.New(logger.Config{
		Format: "${time} ${locals:requestid} ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(recover.New())

	// --- Health Check Endpoint ---
	app.Get("/health", func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()

		status, code := "healthy", fiber.StatusOK
		dbStatus := "connected"
		if err := database.Ping(ctx, db); err != nil {
			log.Warn("Health check failed", zap.Error(err))
			status, code = "unhealthy", fiber.StatusServiceUnavailable
			dbStatus = "unreachable"
		}
		return c.Status(code).JSON(fiber.Map{
			"status":   status,
			"time":     time.Now().Format(time.RFC3339),
			"database": dbStatus,
			"events":   publisher != nil,
		})
	})

	// --- API Routes ---
	handlers.RegisterAll(app.Group("/api/v1"), svc, log)

	return app
}
