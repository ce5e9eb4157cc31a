// Package main provides the context engine API server entrypoint.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/brightline-ai/context-engine/internal/cache"
	"github.com/brightline-ai/context-engine/internal/config"
	"github.com/brightline-ai/context-engine/internal/observability"
	"github.com/brightline-ai/context-engine/internal/storage"
	"github.com/brightline-ai/context-engine/pkg/engine"
)

func main() {
	// Local development convenience; missing .env is fine
	_ = godotenv.Load()

	cfgPath := os.Getenv("CONFIG_PATH")
	if len(os.Args) > 2 && os.Args[1] == "--config" {
		cfgPath = os.Args[2]
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(observability.LogConfig{
		Level:       cfg.Observability.LogLevel,
		Format:      cfg.Observability.LogFormat,
		ServiceName: cfg.Observability.ServiceName,
	})

	logger.Info().
		Str("host", cfg.Server.Host).
		Int("port", cfg.Server.Port).
		Str("database", cfg.Database.Driver).
		Str("cache", cfg.Cache.Driver).
		Msg("Starting context engine API")

	db, err := storage.Open(cfg.Database)
	if err != nil {
		logger.Fatal().Err(err).Msg("Database open failed")
	}
	defer db.Close()

	if err := storage.Migrate(context.Background(), db); err != nil {
		logger.Fatal().Err(err).Msg("Database migration failed")
	}

	cacheClient := newCacheClient(cfg, logger)
	defer cacheClient.Close()

	repos := storage.NewRepositories(db)
	eng := engine.New(repos, cacheClient, engine.OptionsFromConfig(cfg), logger)

	router := NewRouter(logger, cfg, eng, db)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", addr).Msg("HTTP server listening")
		serverErrors <- srv.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		logger.Error().Err(err).Msg("Server error")
	case sig := <-shutdown:
		logger.Info().Str("signal", sig.String()).Msg("Shutdown signal received")
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.GracefulShutdown)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("Graceful shutdown failed")
		if err := srv.Close(); err != nil {
			logger.Error().Err(err).Msg("Forced shutdown failed")
		}
	}

	logger.Info().Msg("Server stopped")
}

// newCacheClient builds the configured cache client, falling back to the
// in-memory cache when Redis is unreachable.
func newCacheClient(cfg *config.Config, logger *observability.Logger) cache.Client {
	if cfg.Cache.Driver == "redis" {
		client, err := cache.NewRedisClient(cache.RedisConfig{
			Addr:     cfg.Cache.Redis.Addr,
			Password: cfg.Cache.Redis.Password,
			DB:       cfg.Cache.Redis.DB,
			PoolSize: cfg.Cache.Redis.PoolSize,
		})
		if err == nil {
			return client
		}
		logger.Warn().Err(err).Str("addr", cfg.Cache.Redis.Addr).Msg("Redis unavailable, using in-memory cache")
	}
	return cache.NewMemoryClient(cfg.Cache.MaxEntries)
}
