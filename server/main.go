package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"skyfare/api/routes"
	"skyfare/internal/notifications"
	"skyfare/internal/shared/config"
	"skyfare/internal/shared/database"
	"skyfare/internal/tickets"
	"skyfare/pkg/logger"
	"skyfare/pkg/ratelimit"
	"skyfare/pkg/scheduler"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	appLogger := logger.GetDefault()

	if err := godotenv.Load(); err != nil {
		if os.Getenv("GIN_MODE") == "release" || os.Getenv("DOCKER_CONTAINER") == "true" {
			appLogger.Info("Production environment: using container environment variables")
		} else {
			appLogger.Info("No .env file found, using system environment variables")
		}
	} else {
		appLogger.Info("Development environment: loaded .env file")
	}

	cfg := config.Load()
	gin.SetMode(cfg.GinMode)

	db, err := database.InitDB(cfg)
	if err != nil {
		appLogger.Error("failed to connect", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	// Ticket delivery pipeline. Without Kafka the deliveries are
	// logged instead of dispatched.
	publisher, consumer := setupDelivery(cfg, appLogger)
	if publisher != nil {
		defer publisher.Close()
	}
	if consumer != nil {
		consumerCtx, consumerCancel := context.WithCancel(context.Background())
		defer consumerCancel()
		go func() {
			if err := consumer.StartConsumers(consumerCtx, 3); err != nil {
				appLogger.Error("Failed to start delivery consumers", slog.Any("error", err))
			}
		}()
		defer func() {
			if err := consumer.Stop(); err != nil {
				appLogger.Error("Error stopping delivery consumers", slog.Any("error", err))
			}
		}()
	}

	var rateLimiter *ratelimit.RateLimiter
	if cfg.RateLimit.Enabled {
		rateLimiter = ratelimit.NewRateLimiter(db.GetRedisClient(), &ratelimit.Config{
			Enabled:         cfg.RateLimit.Enabled,
			WindowDuration:  cfg.RateLimit.WindowDuration,
			DefaultRequests: cfg.RateLimit.DefaultRequests,
			PublicRequests:  cfg.RateLimit.PublicRequests,
			BookingRequests: cfg.RateLimit.BookingRequests,
			PaymentRequests: cfg.RateLimit.PaymentRequests,
			StaffRequests:   cfg.RateLimit.StaffRequests,
			HealthRequests:  cfg.RateLimit.HealthRequests,
			WhitelistedIPs:  cfg.RateLimit.WhitelistedIPs,
		})
		appLogger.Info("Rate limiter initialized",
			slog.Duration("window", cfg.RateLimit.WindowDuration),
			slog.Int("default_requests", cfg.RateLimit.DefaultRequests),
		)
	} else {
		appLogger.Info("Rate limiting disabled")
	}

	appRouter := routes.NewRouter(cfg, db, publisher)
	engine := setupEngine(cfg, appRouter, rateLimiter)

	// Hold expiry: per-ticket timers plus a periodic sweep that
	// catches anything the timers miss.
	ticketService := appRouter.TicketService()
	holdScheduler := scheduler.New(ticketService.ExpireTicket)
	ticketService.SetScheduler(holdScheduler)
	defer holdScheduler.Stop()

	startupCtx, startupCancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := ticketService.RearmHolds(startupCtx); err != nil {
		appLogger.Error("Failed to rearm hold timers", slog.Any("error", err))
	}
	startupCancel()

	sweepCtx, sweepCancel := context.WithCancel(context.Background())
	defer sweepCancel()
	sweeper := tickets.NewJobProcessor(ticketService, cfg.Hold.SweepInterval)
	sweeper.Start(sweepCtx)
	defer sweeper.Stop()

	srv := &http.Server{
		Addr:           cfg.GetServerAddress(),
		Handler:        engine,
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		IdleTimeout:    cfg.IdleTimeout,
		MaxHeaderBytes: cfg.MaxHeaderBytes,
	}

	go func() {
		appLogger.Info("🚀 Server running",
			slog.String("address", cfg.GetServerAddress()),
			slog.String("health_check", fmt.Sprintf("http://localhost:%s/health", cfg.Port)),
			slog.String("version", cfg.APIVersion),
			slog.Duration("hold_window", cfg.Hold.Window),
			slog.Bool("kafka_delivery", cfg.Kafka.Enabled),
			slog.Bool("rate_limiting", cfg.RateLimit.Enabled),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Error("Server failed", slog.Any("error", err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Error("Forced shutdown", slog.Any("error", err))
	}

	appLogger.Info("Server exited gracefully")
}

// setupDelivery wires the Kafka producer and the email consumer group.
func setupDelivery(cfg *config.Config, appLogger *logger.Logger) (notifications.Publisher, notifications.Consumer) {
	if !cfg.Kafka.Enabled {
		appLogger.Info("Kafka disabled, ticket deliveries will be logged only")
		return notifications.NewLogPublisher(), nil
	}

	producerConfig := notifications.DefaultKafkaProducerConfig()
	producerConfig.Brokers = cfg.Kafka.Brokers
	producerConfig.DeliveryTopic = cfg.Kafka.DeliveryTopic

	publisher, err := notifications.NewKafkaPublisher(producerConfig)
	if err != nil {
		appLogger.Error("Failed to initialize Kafka producer, falling back to log publisher", slog.Any("error", err))
		return notifications.NewLogPublisher(), nil
	}

	var emailService notifications.EmailService
	if cfg.Email.SMTPHost != "" {
		emailService, err = notifications.NewSMTPEmailService(&notifications.SMTPConfig{
			Host:      cfg.Email.SMTPHost,
			Port:      cfg.Email.SMTPPort,
			Username:  cfg.Email.SMTPUsername,
			Password:  cfg.Email.SMTPPassword,
			FromEmail: cfg.Email.FromEmail,
		})
		if err != nil {
			appLogger.Error("Failed to initialize SMTP email service", slog.Any("error", err))
			emailService = notifications.NewLogEmailService()
		}
	} else {
		appLogger.Info("SMTP not configured, delivered tickets will be logged only")
		emailService = notifications.NewLogEmailService()
	}

	consumerConfig := notifications.DefaultConsumerConfig()
	consumerConfig.Brokers = cfg.Kafka.Brokers
	consumerConfig.GroupID = cfg.Kafka.ConsumerGroup
	consumerConfig.Topics = []string{cfg.Kafka.DeliveryTopic}

	consumer, err := notifications.NewKafkaDeliveryConsumer(consumerConfig, emailService)
	if err != nil {
		appLogger.Error("Failed to initialize delivery consumer", slog.Any("error", err))
		return publisher, nil
	}
	return publisher, consumer
}

func setupEngine(cfg *config.Config, appRouter *routes.Router, rateLimiter *ratelimit.RateLimiter) *gin.Engine {
	engine := gin.New()
	appLogger := logger.GetDefault()

	engine.Use(RequestLoggerMiddleware(appLogger), gin.Recovery())

	engine.Use(cors.New(cors.Config{
		AllowOriginFunc: func(origin string) bool {
			return true
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "X-User-ID", "X-User-Role", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	if rateLimiter != nil {
		engine.Use(ratelimit.Middleware(rateLimiter))
	}

	appRouter.SetupRoutes(engine)

	return engine
}

func RequestLoggerMiddleware(l *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		duration := time.Since(start)
		l.LogHTTPRequest(c, duration)
	}
}
