// internal/interfaces/http/server.go
package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/your-org/apparel-store/internal/config"
	"github.com/your-org/apparel-store/internal/interfaces/http/handlers"
	"github.com/your-org/apparel-store/internal/interfaces/http/middleware"
	"github.com/your-org/apparel-store/internal/interfaces/http/routes"
	"github.com/your-org/apparel-store/internal/pkg/auth"
)

// maxRequestBody caps JSON payloads
const maxRequestBody = 1 << 20

// Server represents the HTTP server
type Server struct {
	config      *config.Config
	logger      *logrus.Logger
	gin         *gin.Engine
	httpServer  *http.Server
	redisClient *redis.Client
	health      *handlers.HealthHandler
	handlers    routes.Handlers
	tokens      *auth.JWTManager
	gatherer    prometheus.Gatherer
}

// Options carries the already-built collaborators of the server
type Options struct {
	Handlers    routes.Handlers
	Health      *handlers.HealthHandler
	RedisClient *redis.Client
	Gatherer    prometheus.Gatherer
}

// NewServer creates a new HTTP server instance and registers every route
func NewServer(cfg *config.Config, logger *logrus.Logger, opts Options) *Server {
	s := &Server{
		config:      cfg,
		logger:      logger,
		redisClient: opts.RedisClient,
		health:      opts.Health,
		handlers:    opts.Handlers,
		tokens:      auth.NewJWTManager(cfg.JWT),
		gatherer:    opts.Gatherer,
	}
	if s.gatherer == nil {
		s.gatherer = prometheus.DefaultGatherer
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	s.gin = gin.New()
	if err := s.gin.SetTrustedProxies(cfg.Security.TrustedProxies); err != nil {
		logger.WithError(err).Warn("Invalid trusted proxy list, trusting none")
		_ = s.gin.SetTrustedProxies(nil)
	}

	s.setupMiddleware()
	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      s.gin,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}
	return s
}

// Handler exposes the router
func (s *Server) Handler() http.Handler {
	return s.gin
}

// Start starts the HTTP server and blocks until it stops
func (s *Server) Start() error {
	s.logger.WithFields(logrus.Fields{
		"port":        s.config.Server.Port,
		"environment": s.config.App.Environment,
	}).Info("HTTP server starting")

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}
	return nil
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown HTTP server: %w", err)
	}

	s.logger.Info("HTTP server stopped gracefully")
	return nil
}

// setupMiddleware configures all middleware for the server
func (s *Server) setupMiddleware() {
	s.gin.Use(middleware.RequestID())
	s.gin.Use(middleware.Logger(s.logger))
	s.gin.Use(middleware.Recovery(s.logger))
	s.gin.Use(middleware.CORS(s.config.Security))
	s.gin.Use(middleware.SecurityHeaders())
	s.gin.Use(middleware.RequestSizeLimit(maxRequestBody))
	s.gin.Use(middleware.Timeout(s.config.Server.RequestTimeout))
}

// setupRoutes configures all routes for the server
func (s *Server) setupRoutes() {
	// Probes and metrics skip the rate limiter
	s.gin.GET("/health", s.health.Health)
	s.gin.GET("/ready", s.health.Ready)
	s.gin.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})))

	apiV1 := s.gin.Group("/api/v1")
	if s.redisClient != nil {
		apiV1.Use(middleware.RateLimit(s.config.Security.RateLimitPerMinute, s.redisClient, s.logger))
	}

	routes.SetupRoutes(apiV1, s.handlers, s.tokens)
}
