package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sangkips/salesdesk-api/internal/application/service"
	"github.com/sangkips/salesdesk-api/internal/config"
	"github.com/sangkips/salesdesk-api/internal/infrastructure/database"
	"github.com/sangkips/salesdesk-api/internal/infrastructure/lock"
	"github.com/sangkips/salesdesk-api/internal/infrastructure/messaging"
	"github.com/sangkips/salesdesk-api/internal/infrastructure/observability"
	"github.com/sangkips/salesdesk-api/internal/infrastructure/repository"
	"github.com/sangkips/salesdesk-api/internal/presentation/http/handler"
	"github.com/sangkips/salesdesk-api/internal/presentation/http/routes"
	"github.com/sangkips/salesdesk-api/pkg/logger"
	"github.com/sangkips/salesdesk-api/pkg/utils"
)

const shutdownTimeout = 15 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log := logger.Get()

	// Load configuration
	cfg := config.Load()
	logger.Configure(cfg.App.Debug)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	tracerProvider, shutdownTracing, err := observability.SetupTracing(ctx, observability.TracingConfig{
		Enabled:        cfg.Tracing.Enabled,
		Endpoint:       cfg.Tracing.Endpoint,
		ServiceName:    cfg.App.Name,
		ServiceVersion: cfg.Tracing.ServiceVersion,
	})
	if err != nil {
		log.Fatalf("Failed to set up tracing: %v", err)
	}

	db, err := database.NewDB(&cfg.Database, cfg.App.Debug)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	if err := database.SeedDefaultData(db, cfg.Admin); err != nil {
		log.Warnf("Failed to seed default data: %v", err)
	}

	// Edit locks fall back to the row locks alone when Redis is not configured
	locker := lock.NewNoopLocker()
	var rdb *redis.Client
	if cfg.Redis.Address != "" {
		rdb, err = lock.NewRedisClient(ctx, cfg.Redis.Address, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Fatalf("Failed to connect to redis: %v", err)
		}
		locker = lock.NewRedisLocker(rdb, cfg.Invoice.EditLockTTL)
	}

	publisher := messaging.NewNoopPublisher()
	if len(cfg.Kafka.Brokers) > 0 {
		publisher, err = messaging.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic, cfg.App.Name, tracerProvider)
		if err != nil {
			log.Fatalf("Failed to create event publisher: %v", err)
		}
	}

	jwtManager := utils.NewJWTManager(
		cfg.JWT.Secret,
		cfg.JWT.ExpiryHours,
		cfg.JWT.RefreshExpiryHours,
	)

	// Initialize repositories
	transactor := repository.NewTransactor(db)
	userRepo := repository.NewUserRepository(db)
	roleRepo := repository.NewRoleRepository(db)
	productRepo := repository.NewProductRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	supplierRepo := repository.NewSupplierRepository(db)
	promotionRepo := repository.NewPromotionRepository(db)
	invoiceRepo := repository.NewInvoiceRepository(db)
	invoiceItemRepo := repository.NewInvoiceItemRepository(db)
	shipmentRepo := repository.NewShipmentRepository(db)
	stockInRepo := repository.NewStockInRepository(db)
	idempotencyRepo := repository.NewIdempotencyRepository(db)

	// Initialize services
	region := cfg.App.PhoneRegion
	authService := service.NewAuthService(userRepo, jwtManager, region)
	userService := service.NewUserService(userRepo, roleRepo, region)
	productService := service.NewProductService(productRepo)
	customerService := service.NewCustomerService(customerRepo, region)
	supplierService := service.NewSupplierService(supplierRepo, region)
	promotionService := service.NewPromotionService(promotionRepo)
	stockInService := service.NewStockInService(transactor, stockInRepo, productRepo, supplierRepo)
	shipmentService := service.NewShipmentService(shipmentRepo)
	dashboardService := service.NewDashboardService(invoiceRepo, productRepo, customerRepo, stockInRepo)
	invoiceService := service.NewInvoiceService(service.InvoiceServiceDeps{
		Transactor:     transactor,
		Invoices:       invoiceRepo,
		Items:          invoiceItemRepo,
		Shipments:      shipmentRepo,
		Products:       productRepo,
		Customers:      customerRepo,
		Promotions:     promotionRepo,
		Users:          userRepo,
		Locker:         locker,
		Publisher:      publisher,
		Config:         cfg.Invoice,
		PhoneRegion:    region,
		TracerProvider: tracerProvider,
	})

	handlers := &routes.Handlers{
		Auth:      handler.NewAuthHandler(authService),
		User:      handler.NewUserHandler(userService),
		Product:   handler.NewProductHandler(productService),
		Customer:  handler.NewCustomerHandler(customerService),
		Supplier:  handler.NewSupplierHandler(supplierService),
		Promotion: handler.NewPromotionHandler(promotionService),
		Invoice:   handler.NewInvoiceHandler(invoiceService),
		StockIn:   handler.NewStockInHandler(stockInService),
		Shipment:  handler.NewShipmentHandler(shipmentService),
		Dashboard: handler.NewDashboardHandler(dashboardService),
	}

	rateLimiter := routes.NewRateLimiter(cfg.RateLimit)
	defer rateLimiter.Stop()

	router, err := routes.Setup(handlers, &routes.Deps{
		JWTManager:      jwtManager,
		Cfg:             cfg,
		IdempotencyRepo: idempotencyRepo,
		RateLimiter:     rateLimiter,
	})
	if err != nil {
		log.Fatalf("Failed to set up routes: %v", err)
	}

	port := cfg.App.Port
	if port == "" {
		port = "8080"
	}

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.WithField("env", cfg.App.Env).Infof("Starting %s server on port %s", cfg.App.Name, port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorf("Server shutdown: %v", err)
	}
	if err := publisher.Close(); err != nil {
		log.Errorf("Closing event publisher: %v", err)
	}
	if rdb != nil {
		if err := rdb.Close(); err != nil {
			log.Errorf("Closing redis: %v", err)
		}
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Errorf("Tracing shutdown: %v", err)
	}
}
