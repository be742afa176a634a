// cmd/api/main.go
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/your-org/apparel-store/internal/config"
	"github.com/your-org/apparel-store/internal/infrastructure/database/postgres"
	"github.com/your-org/apparel-store/internal/infrastructure/database/redis"
	"github.com/your-org/apparel-store/internal/interfaces/http"
	"github.com/your-org/apparel-store/internal/interfaces/http/handlers"
	"github.com/your-org/apparel-store/internal/interfaces/http/routes"
	"github.com/your-org/apparel-store/internal/pkg/logger"
	"go.uber.org/multierr"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logr := logger.New(cfg.Logging)
	logr.WithFields(map[string]interface{}{
		"app":         cfg.App.Name,
		"version":     cfg.App.Version,
		"environment": cfg.App.Environment,
	}).Info("Starting service")

	// Connect to database
	db, err := postgres.NewConnection(cfg, logr)
	if err != nil {
		logr.WithError(err).Fatal("Failed to connect to database")
	}

	// Connect to Redis
	redisClient, err := redis.NewConnection(cfg, logr)
	if err != nil {
		_ = db.Close()
		logr.WithError(err).Fatal("Failed to connect to Redis")
	}
	defer func() {
		if err := multierr.Combine(redisClient.Close(), db.Close()); err != nil {
			logr.WithError(err).Error("Failed to close connections")
		}
	}()

	// Run database migrations
	migration := postgres.NewMigration(db.GetDB(), logr)
	if err := migration.RunAutoMigrations(); err != nil {
		logr.WithError(err).Fatal("Database migration failed")
	}
	if err := migration.CreateIndexes(); err != nil {
		logr.WithError(err).Warn("Index creation failed")
	}

	// Seed initial data in development
	if cfg.IsDevelopment() {
		if err := migration.SeedInitialData(context.Background(), cfg.Security.BcryptCost); err != nil {
			logr.WithError(err).Warn("Data seeding failed")
		}
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	server := http.NewServer(cfg, logr, http.Options{
		Handlers: routes.NewHandlers(db.GetDB(), redisClient.GetClient(), cfg, logr, registry),
		Health: handlers.NewHealthHandler(cfg.App.Version, cfg.App.Environment, map[string]handlers.HealthChecker{
			"postgres": db,
			"redis":    redisClient,
		}),
		RedisClient: redisClient.GetClient(),
		Gatherer:    registry,
	})

	// Start server in a goroutine
	go func() {
		if err := server.Start(); err != nil {
			logr.WithError(err).Fatal("HTTP server failed")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Stop(ctx); err != nil {
		logr.WithError(err).Error("Failed to shutdown HTTP server gracefully")
	}

	logr.Info("Server shutdown completed")
}
