// Package http provides the HTTP server, router and shared middleware.
package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/metric"

	"github.com/allisson/keyvault/internal/config"
	credentialsHTTP "github.com/allisson/keyvault/internal/credentials/http"
	"github.com/allisson/keyvault/internal/metrics"
)

const readinessTimeout = 2 * time.Second

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server represents the HTTP server.
type Server struct {
	server *http.Server
	router *gin.Engine
	pinger Pinger
	logger *slog.Logger
}

// NewServer creates a new HTTP server. pinger backs the readiness probe and may be nil,
// in which case the server never reports ready.
func NewServer(
	pinger Pinger,
	host string,
	port int,
	logger *slog.Logger,
) *Server {
	return &Server{
		pinger: pinger,
		logger: logger,
		server: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", host, port),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}
}

// SetupRouter builds the gin router with all routes and middleware.
// ctx bounds background work started by middleware such as limiter cleanup.
func (s *Server) SetupRouter(
	ctx context.Context,
	cfg *config.Config,
	credentialHandler *credentialsHTTP.CredentialHandler,
	storeSelector credentialsHTTP.StoreSelector,
	meterProvider metric.MeterProvider,
) {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestid.New(requestid.WithGenerator(func() string {
		return uuid.Must(uuid.NewV7()).String()
	})))

	if corsMiddleware := createCORSMiddleware(
		cfg.CORSEnabled,
		cfg.CORSAllowOrigins,
		cfg.AuthUserHeader,
		s.logger,
	); corsMiddleware != nil {
		router.Use(corsMiddleware)
	}

	if cfg.MetricsEnabled && meterProvider != nil {
		router.Use(metrics.HTTPMetricsMiddleware(meterProvider, cfg.MetricsNamespace))
	}

	router.Use(CustomLoggerMiddleware(s.logger))

	router.GET("/health", s.healthHandler)
	router.GET("/ready", s.readinessHandler)

	v1 := router.Group("/v1")
	credentials := v1.Group("/credentials")
	credentials.Use(credentialsHTTP.IdentityMiddleware(cfg.AuthUserHeader, s.logger))
	if cfg.RateLimitEnabled {
		credentials.Use(RateLimitMiddleware(ctx, cfg.RateLimitRequestsPerSec, cfg.RateLimitBurst, s.logger))
	}
	credentials.Use(credentialsHTTP.StoreSelectionMiddleware(storeSelector, s.logger))
	{
		credentials.GET("", credentialHandler.ListHandler)
		credentials.PUT("/:kind", credentialHandler.SaveHandler)
		credentials.GET("/:kind", credentialHandler.RevealHandler)
		credentials.POST("/:kind/verify", credentialHandler.VerifyHandler)
		credentials.DELETE("/:kind", credentialHandler.DeleteHandler)
	}

	s.router = router
}

// GetHandler returns the http.Handler for testing purposes.
func (s *Server) GetHandler() http.Handler {
	return s.router
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start(ctx context.Context) error {
	s.server.Handler = s.router

	s.logger.Info("starting http server", slog.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.server.Shutdown(ctx)
}

func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// readinessHandler reports ready only when the primary credential store answers a ping.
func (s *Server) readinessHandler(c *gin.Context) {
	if s.pinger == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":     "not_ready",
			"components": gin.H{"database": "error"},
		})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), readinessTimeout)
	defer cancel()

	if err := s.pinger.Ping(ctx); err != nil {
		s.logger.Warn("readiness check failed", slog.Any("error", err))
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":     "not_ready",
			"components": gin.H{"database": "error"},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":     "ready",
		"components": gin.H{"database": "ok"},
	})
}
