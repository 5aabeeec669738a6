package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"creatorpulse/cache"
	"creatorpulse/client"
	"creatorpulse/config"
	"creatorpulse/middleware"
	"creatorpulse/routes"
	"creatorpulse/services"
	"creatorpulse/state"
	"creatorpulse/utils"
	"creatorpulse/worker"

	"github.com/getsentry/sentry-go"
	"github.com/gofiber/fiber/v2"
)

func main() {
	logger := utils.Logger("main")

	// Load configuration
	if err := config.LoadConfig(); err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}
	cfg := config.AppConfig

	if err := utils.InitSentry(cfg.SentryDSN, cfg.Environment); err != nil {
		logger.WithError(err).Warn("Sentry disabled")
	}
	defer sentry.Flush(2 * time.Second)

	// Initialize the optional audit database
	if err := config.ConnectDB(); err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}

	storage := cache.NewStorage(cfg.Redis)
	defer storage.Close()
	var limiterStorage fiber.Storage
	if cfg.Redis.Enabled {
		redisStorage := cache.NewRedisStorage(cfg.Redis)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := redisStorage.Ping(ctx); err != nil {
			logger.Fatalf("Failed to reach redis at %s: %v", cfg.Redis.Address, err)
		}
		cancel()
		limiterStorage = redisStorage.WithPrefix("creatorpulse:limiter:")
	}

	api := client.New(cfg.APIBaseURL, cfg.APITimeout)
	fetcher := cache.NewFetcher(storage, cfg.FetchCacheTTL)
	reader := services.NewReader(api, fetcher)
	audit := services.NewAuditRecorder(config.DB)

	deps := routes.Deps{
		Config:         cfg,
		Auth:           services.NewAuthService(api, storage, cfg.ProfileCacheTTL),
		Reader:         reader,
		Orch:           services.NewOrchestrator(api, fetcher, reader, audit),
		Inbox:          services.NewInboxService(reader, fetcher),
		Twitter:        services.NewTwitterService(api, fetcher, reader, audit),
		Pages:          state.NewStore(cfg.SessionStateTTL),
		Hub:            worker.NewHub(),
		LimiterStorage: limiterStorage,
	}

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "creatorpulse",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	})

	// Add CORS middleware
	app.Use(middleware.CORS(middleware.DefaultCORSConfig(cfg.AllowedOrigins)))

	// Setup routes
	routes.SetupRoutes(app, deps)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		logger.Info("Shutting down server")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			logger.WithError(err).Error("Shutdown failed")
		}
	}()

	// Start server
	logger.Infof("🚀 Server starting on port %s", cfg.ServerPort)
	if err := app.Listen(":" + cfg.ServerPort); err != nil {
		logger.Fatalf("Failed to start server: %v", err)
	}
}
