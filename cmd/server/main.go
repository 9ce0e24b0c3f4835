package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prudhvinik1/locationtracker/internal/config"
	"github.com/prudhvinik1/locationtracker/internal/database"
	"github.com/prudhvinik1/locationtracker/internal/handlers"
	"github.com/prudhvinik1/locationtracker/internal/logging"
	"github.com/prudhvinik1/locationtracker/internal/repositories"
	"github.com/prudhvinik1/locationtracker/internal/services"
	"github.com/rs/zerolog"
)

func main() {
	ctx := context.Background()

	godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}

	// Initialize database connections
	postgresPool, err := database.NewPostgresPool(ctx, cfg.DatabaseURL, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create postgres pool")
	}
	defer postgresPool.Close()

	if err := database.Migrate(ctx, postgresPool); err != nil {
		logger.Fatal().Err(err).Msg("Failed to migrate database schema")
	}

	// The last-location cache is optional; without it lookups go to postgres.
	var cache repositories.LastLocationCache
	if cfg.RedisURL != "" {
		redisClient, err := database.NewRedisClient(ctx, cfg.RedisURL, logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("Failed to create redis client")
		}
		defer redisClient.Close()
		cache = repositories.NewRedisLastLocationCache(redisClient, cfg.LastLocationTTL)
	} else {
		logger.Info().Msg("REDIS_URL not set, last-location cache disabled")
	}

	deviceRepo := repositories.NewPostgresDeviceRepository(postgresPool)
	locationRepo := repositories.NewPostgresLocationLogRepository(postgresPool)

	deviceService := services.NewDeviceService(deviceRepo, cache, logger)
	locationService := services.NewLocationService(deviceRepo, locationRepo, cache, cfg.CapturedAtTolerance, logger)

	pages := handlers.PageSettings{DefaultSize: cfg.PageSize, MaxSize: cfg.MaxPageSize}
	router := handlers.NewRouter(
		handlers.NewDeviceHandler(deviceService, pages),
		handlers.NewLocationHandler(locationService, pages),
		logger,
	)

	// Start Server
	server := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.ServerPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// graceful shutdown
	go shutdownOnSignal(server, logger)

	logger.Info().Str("port", cfg.ServerPort).Msg("Starting server")
	if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal().Err(err).Msg("Server error")
	}

	logger.Info().Msg("Server stopped gracefully")
}

func shutdownOnSignal(server *http.Server, logger zerolog.Logger) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info().Msg("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("Graceful shutdown failed")
	}
}
