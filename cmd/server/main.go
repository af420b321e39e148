package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/nekogravitycat/resource-booking-backend/internal/app"
	"github.com/nekogravitycat/resource-booking-backend/internal/config"
	"github.com/nekogravitycat/resource-booking-backend/internal/db"
	"github.com/nekogravitycat/resource-booking-backend/internal/logger"
	"github.com/nekogravitycat/resource-booking-backend/internal/pkg/cache"
	"github.com/nekogravitycat/resource-booking-backend/internal/pkg/storage"
)

func main() {
	// For receiving Ctrl+C / SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load config
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	logger.Init(cfg.IsProduction)
	logger.SetLevel(cfg.LogLevel)

	if cfg.AutoMigrate {
		if err := db.Migrate(cfg.DBDSN, db.ActionUp); err != nil {
			log.Fatal().Err(err).Msg("failed to migrate database")
		}
	}

	// Connect DB
	pool, err := db.NewPool(ctx, cfg.DBDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to db")
	}
	defer pool.Close()

	// Availability cache
	var availabilityCache cache.Cache = cache.Nop{}
	if cfg.RedisAddr != "" {
		client, err := cache.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to redis")
		}
		defer client.Close()
		availabilityCache = cache.NewRedisCache(client)
	} else {
		log.Warn().Msg("REDIS_ADDR not set, availability cache disabled")
	}

	// Blob storage
	store, err := newStorage(ctx, cfg.Storage)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to init storage")
	}

	container, err := app.NewContainer(app.Config{
		IsProduction:    cfg.IsProduction,
		ProdOrigins:     cfg.ProdOrigins,
		DBPool:          pool,
		JWTSecret:       cfg.JWTSecret,
		JWTTTL:          cfg.JWTAccessTokenTTL,
		BcryptCost:      cfg.BcryptCost,
		Location:        cfg.Location,
		Cache:           availabilityCache,
		AvailabilityTTL: cfg.AvailabilityCacheTTL,
		Storage:         store,
		MaxOccurrences:  cfg.RecurrenceMaxOccurrences,
		Sweep:           cfg.Sweep,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to init application")
	}

	container.Sweeper.Start()

	// Use http.Server for graceful shutdown
	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           container.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Run server in separate goroutine
	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Str("timezone", cfg.Location.String()).Msg("server running")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for Ctrl+C
	<-ctx.Done()
	log.Info().Msg("shutdown signal received")

	// Create a shutdown context with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Shutdown HTTP server
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	if err := container.Sweeper.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("sweeper forced to stop")
	}

	log.Info().Msg("server exited gracefully")
}

func newStorage(ctx context.Context, cfg config.StorageConfig) (storage.Storage, error) {
	if cfg.Driver == config.StorageDriverS3 {
		return storage.NewS3Storage(ctx, storage.S3Options{
			Endpoint:  cfg.S3Endpoint,
			Region:    cfg.S3Region,
			Bucket:    cfg.S3Bucket,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
		})
	}
	return storage.NewLocalStorage(cfg.LocalPath)
}
