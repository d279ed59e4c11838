package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/stayops/service-booking/internal/application"
	"github.com/stayops/service-booking/internal/auth"
	"github.com/stayops/service-booking/internal/cache"
	"github.com/stayops/service-booking/internal/config"
	"github.com/stayops/service-booking/internal/database"
	bookingEvents "github.com/stayops/service-booking/internal/events"
	"github.com/stayops/service-booking/internal/handler"
	"github.com/stayops/service-booking/internal/logger"
	"github.com/stayops/service-booking/internal/middleware"
	"github.com/stayops/service-booking/internal/repository"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.New(cfg.Server.AppEnv, "service-booking")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting service-booking",
		zap.String("port", cfg.Server.Port),
	)

	// Connect to database
	db, err := database.Connect(cfg.Postgres, log)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}

	// Run database migrations. The overlap exclusion constraint lives in the
	// SQL migrations, so auto-migrate is only a dev convenience on top.
	if err := database.RunMigrations(cfg.Postgres.DatabaseURL(), "migrations", log); err != nil {
		log.Fatal("failed to run migrations", zap.Error(err))
	}

	// Initialize JWT manager
	jwtManager := auth.NewJWTManager(cfg.JWT.Secret, cfg.JWT.AccessTTL)

	// Initialize Kafka producer
	kafkaProducer := bookingEvents.NewProducer(cfg.Kafka.Brokers, log)
	defer func() { _ = kafkaProducer.Close() }()

	// Initialize Redis view-cache invalidator
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer func() { _ = redisClient.Close() }()

	invalidator, err := cache.NewRedisInvalidator(redisClient, log)
	if err != nil {
		log.Fatal("failed to connect to redis", zap.Error(err))
	}

	// Initialize repositories
	bookingRepo := repository.NewGormBookingRepository(db)
	propertyRepo := repository.NewGormPropertyRepository(db)
	invoiceRepo := repository.NewGormInvoiceRepository(db)

	// Initialize application services
	invoiceService := application.NewInvoiceService(invoiceRepo, bookingRepo, invalidator, log)
	notifier := bookingEvents.NewKafkaNotifier(kafkaProducer, log)
	bookingService := application.NewBookingService(
		bookingRepo,
		propertyRepo,
		auth.NewRoleOracle(),
		notifier,
		invoiceService,
		invalidator,
		log,
	)

	// Initialize and start the invoice.paid consumer in a goroutine
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	groupID := cfg.Kafka.GroupPrefix + "booking-service"
	invoiceConsumer := bookingEvents.NewInvoicePaidConsumer(
		cfg.Kafka.Brokers,
		groupID,
		bookingService,
		log,
	)
	defer func() { _ = invoiceConsumer.Close() }()

	go func() {
		log.Info("starting invoice event consumer")
		if err := invoiceConsumer.Start(ctx); err != nil && err != context.Canceled {
			log.Error("invoice event consumer error", zap.Error(err))
		}
	}()

	// Initialize HTTP handlers
	bookingHandler := handler.NewBookingHandler(bookingService, invoiceService)
	adminHandler := handler.NewAdminBookingHandler(bookingService)
	healthHandler := handler.NewHealthHandler(db)

	// Setup Gin router
	if cfg.Server.AppEnv != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	// Apply global middleware
	router.Use(middleware.Recovery(log))
	router.Use(middleware.Logger(log))
	router.Use(middleware.RequestID())

	// Register routes
	healthHandler.RegisterRoutes(&router.RouterGroup)
	bookingHandler.RegisterRoutes(&router.RouterGroup, jwtManager)
	adminHandler.RegisterRoutes(&router.RouterGroup, jwtManager)

	// Create HTTP server
	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info("HTTP server starting", zap.String("addr", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down service-booking...")

	// Stop the consumer first so no payment lands mid-shutdown
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server forced shutdown", zap.Error(err))
	}

	log.Info("service-booking stopped")
}
