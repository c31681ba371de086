package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"github.com/tuncerburak97/apistats/internal/api"
	"github.com/tuncerburak97/apistats/internal/config"
	"github.com/tuncerburak97/apistats/internal/logger"
	"github.com/tuncerburak97/apistats/internal/metrics"
	"github.com/tuncerburak97/apistats/internal/middleware"
	"github.com/tuncerburak97/apistats/internal/ratelimit"
	"github.com/tuncerburak97/apistats/internal/repository"
	"github.com/tuncerburak97/apistats/internal/service"
)

func main() {
	// Parse command line flags
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	flag.Parse()

	// Load configuration
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Configure logging
	appLogger := logger.Setup(cfg.Log)

	// Initialize metrics collector
	metricsCollector := metrics.GetMetricsCollector("apistats", "apistats")

	// Initialize repository and run migrations
	repo, err := repository.NewRepository(&cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize repository")
	}

	migrateCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := repo.Migrate(migrateCtx); err != nil {
		log.Fatal().Err(err).Msg("Failed to run migrations")
	}

	// Initialize rate limiter if enabled
	var rateLimiter *ratelimit.Service
	if cfg.RateLimit.Enabled {
		var store ratelimit.Store
		if cfg.RateLimit.Storage.Type == "redis" {
			store, err = ratelimit.NewRedisStore(
				cfg.RateLimit.Storage.Redis.Host,
				cfg.RateLimit.Storage.Redis.Port,
				cfg.RateLimit.Storage.Redis.Password,
				cfg.RateLimit.Storage.Redis.DB,
				cfg.RateLimit.Storage.Redis.Timeout,
			)
			if err != nil {
				log.Fatal().Err(err).Msg("Failed to create rate limit store")
			}
		} else {
			store = ratelimit.NewMemoryStore(5 * time.Minute)
		}
		rateLimiter = ratelimit.NewService(&cfg.RateLimit, store)
	}

	// Build the service layer
	recorder := service.NewRecorder(repo, cfg.DB.QueryTimeout, appLogger, metricsCollector)
	reader := service.NewStatsReader(repo, cfg.DB.QueryTimeout, appLogger, metricsCollector)

	// Create Fiber app
	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	})

	if rateLimiter != nil {
		app.Use(ratelimit.Middleware(rateLimiter))
	}
	app.Use(middleware.AutoLog(recorder, metricsCollector, appLogger, cfg.Tracking.ExcludedPaths))

	// Set up routes
	handler := api.NewHandler(recorder, reader, appLogger, metricsCollector)
	api.RegisterRoutes(app, handler)

	// Start server
	go func() {
		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		if err := app.Listen(addr); err != nil {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.Fatal().Err(err).Msg("Failed to shutdown server")
	}

	// Close resources
	if err := repo.Close(); err != nil {
		log.Error().Err(err).Msg("Failed to close repository")
	}

	if rateLimiter != nil {
		if err := rateLimiter.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close rate limiter")
		}
	}
}
