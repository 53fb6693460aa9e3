package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/allisson/keyvault/internal/app"
	"github.com/allisson/keyvault/internal/config"
)

// runnable is a server with a blocking Start and a graceful Shutdown.
type runnable interface {
	Start(ctx context.Context) error
	Shutdown(ctx context.Context) error
}

// RunServer validates configuration, builds the container and serves the API
// and metrics servers until SIGINT/SIGTERM or a server failure.
// A missing or short master secret stops the process before anything listens.
func RunServer(ctx context.Context, version string) error {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	gin.SetMode(cfg.GetGinMode())

	container := app.NewContainer(cfg)
	logger := container.Logger()
	logger.Info("starting server", slog.String("version", version))

	defer closeContainer(container, logger)

	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Resolve the vault first so a bad master secret fails before the database is touched.
	if _, err := container.Vault(); err != nil {
		return fmt.Errorf("failed to initialize vault: %w", err)
	}

	server, err := container.HTTPServer(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize HTTP server: %w", err)
	}

	servers := []runnable{server}

	metricsServer, err := container.MetricsServer()
	if err != nil {
		return fmt.Errorf("failed to initialize metrics server: %w", err)
	}
	if metricsServer != nil {
		servers = append(servers, metricsServer)
	}

	return runServers(ctx, servers, cfg.ServerShutdownTimeout, logger)
}

// runServers starts every server and shuts all of them down when ctx is done
// or any of them fails.
func runServers(ctx context.Context, servers []runnable, shutdownTimeout time.Duration, logger *slog.Logger) error {
	group, groupCtx := errgroup.WithContext(ctx)

	for _, server := range servers {
		group.Go(func() error {
			return server.Start(groupCtx)
		})
	}

	group.Go(func() error {
		<-groupCtx.Done()
		if ctx.Err() != nil {
			logger.Info("shutdown signal received")
		} else {
			logger.Error("server error, initiating shutdown")
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		var shutdownErrors []error
		for _, server := range servers {
			if err := server.Shutdown(shutdownCtx); err != nil {
				shutdownErrors = append(shutdownErrors, err)
			}
		}
		return errors.Join(shutdownErrors...)
	})

	return group.Wait()
}
