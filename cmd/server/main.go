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

	"github.com/liftctl/liftctl/internal/broadcaster"
	"github.com/liftctl/liftctl/internal/dispatcher"
	"github.com/liftctl/liftctl/internal/factory"
	httpPkg "github.com/liftctl/liftctl/internal/http"
	"github.com/liftctl/liftctl/internal/infra/config"
	"github.com/liftctl/liftctl/internal/infra/logging"
)

func main() {
	// Initialize configuration
	cfg, err := config.InitConfig()
	if err != nil {
		slog.Error("failed to initialize configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Initialize logging
	logging.InitLogger(cfg.LogLevel)

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Log environment information for debugging
	envInfo := cfg.GetEnvironmentInfo()
	slog.InfoContext(ctx, "elevator dispatch system starting up",
		slog.String("environment", cfg.Environment),
		slog.String("log_level", cfg.LogLevel),
		slog.Int("port", cfg.Port),
		slog.Bool("metrics_enabled", cfg.MetricsEnabled),
		slog.Bool("websocket_enabled", cfg.WebSocketEnabled),
		slog.Bool("circuit_breaker_enabled", cfg.CircuitBreakerEnabled),
		slog.Any("config_summary", envInfo))

	// Wire the diff-gated broadcaster hub into the dispatcher's car factory
	// so every car push reaches subscribed websocket clients (§4.5).
	hub := broadcaster.New(slog.Default())
	d := dispatcher.New(cfg, factory.StandardCarFactory{}, hub.Publish)
	hub.SetTotalFloorsFunc(d.TotalFloors)

	// Create the default fleet if configured
	if cfg.DefaultElevatorCount > 0 {
		slog.InfoContext(ctx, "creating default fleet",
			slog.Int("count", cfg.DefaultElevatorCount),
			slog.String("prefix", cfg.NamePrefix))

		for i := 0; i < cfg.DefaultElevatorCount; i++ {
			carName := fmt.Sprintf("%s-%d", cfg.NamePrefix, i+1)
			if _, err := d.AddCar(carName, cfg.MinFloor, cfg.MaxFloor); err != nil {
				slog.ErrorContext(ctx, "failed to create default car",
					slog.String("name", carName),
					slog.String("error", err.Error()))
			} else {
				slog.InfoContext(ctx, "default car created", slog.String("name", carName))
			}
		}
	}

	// Determine the port to use
	port := cfg.Port
	if port <= 0 {
		slog.WarnContext(ctx, "invalid port in configuration, using default",
			slog.Int("configured_port", port),
			slog.Int("default_port", 6660))
		port = 6660
	}

	server := httpPkg.NewServer(cfg, port, d, hub)

	// Setup graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	serverErrCh := make(chan error, 1)

	go func() {
		slog.InfoContext(ctx, "starting HTTP server",
			slog.Int("port", port),
			slog.String("environment", cfg.Environment),
			slog.Duration("read_timeout", cfg.ReadTimeout),
			slog.Duration("write_timeout", cfg.WriteTimeout),
			slog.Duration("idle_timeout", cfg.IdleTimeout))

		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			slog.ErrorContext(ctx, "HTTP server failed to start",
				slog.Int("port", port),
				slog.String("error", err.Error()))
			serverErrCh <- fmt.Errorf("HTTP server failed: %w", err)
		}
	}()

	// Wait a moment to see if the server starts successfully
	startupTimer := time.NewTimer(2 * time.Second)

	select {
	case err := <-serverErrCh:
		startupTimer.Stop()
		slog.ErrorContext(ctx, "server startup failed", slog.String("error", err.Error()))
		shutdownServer(server)
		d.Shutdown()
		os.Exit(1)

	case <-startupTimer.C:
		slog.InfoContext(ctx, "server started successfully")

	case sig := <-quit:
		startupTimer.Stop()
		slog.InfoContext(ctx, "received shutdown signal during startup",
			slog.String("signal", sig.String()))
		shutdownServer(server)
		d.Shutdown()
		return
	}

	// Wait for shutdown signal
	sig := <-quit
	slog.InfoContext(ctx, "received shutdown signal",
		slog.String("signal", sig.String()),
		slog.Duration("shutdown_timeout", cfg.ShutdownTimeout))

	cancel()

	shutdownServer(server)

	slog.InfoContext(ctx, "shutting down dispatcher")
	d.Shutdown()
	slog.InfoContext(ctx, "dispatcher shutdown completed")

	select {
	case <-time.After(cfg.ShutdownGrace):
		slog.InfoContext(ctx, "graceful shutdown completed",
			slog.Duration("grace_period", cfg.ShutdownGrace))
	}
}

// shutdownServer gracefully shuts down the HTTP server.
func shutdownServer(server *httpPkg.Server) {
	slog.Info("shutting down server gracefully")

	if err := server.Shutdown(); err != nil {
		slog.Error("HTTP server shutdown failed", slog.String("error", err.Error()))
	} else {
		slog.Info("HTTP server shutdown completed")
	}
}
