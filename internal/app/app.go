// Package app wires the configured gateway, API server and metrics server
// together for serve mode.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/flowforge/flowforge/internal/api"
	"github.com/flowforge/flowforge/internal/config"
	"github.com/flowforge/flowforge/internal/gateway"
	"github.com/flowforge/flowforge/internal/metrics"
)

// App is the main application.
type App struct {
	config        *config.Config
	gw            gateway.Gateway
	boltGateway   *gateway.Bolt
	apiServer     *api.Server
	metricsServer *http.Server
	logger        *slog.Logger
}

// New creates a new application from the configuration.
func New(cfg *config.Config) (*App, error) {
	logger := SetupLogger(cfg.Logging)

	var (
		gw     gateway.Gateway
		boltGW *gateway.Bolt
	)
	switch cfg.Gateway.Mode {
	case config.GatewayModeMemory:
		mem := gateway.NewMemory(cfg.Gateway.OwnerID, gateway.WithLatency(cfg.Gateway.Latency))
		if cfg.Gateway.Seed {
			mem.SeedDemo()
			logger.Info("seeded demo campaigns")
		}
		gw = mem
	default:
		var err error
		boltGW, err = gateway.NewBolt(cfg.Storage.Path, cfg.Gateway.OwnerID)
		if err != nil {
			return nil, fmt.Errorf("failed to open campaign store: %w", err)
		}
		gw = boltGW
	}

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
	}

	apiServer := api.NewServer(api.ServerOptions{
		Gateway: gw,
		Config:  &cfg.API,
		Logger:  logger.With("component", "api"),
		Metrics: m,
	})

	a := &App{
		config:      cfg,
		gw:          gw,
		boltGateway: boltGW,
		apiServer:   apiServer,
		logger:      logger,
	}

	if m != nil {
		mux := http.NewServeMux()
		mux.Handle(cfg.Metrics.Path, m.Handler())
		a.metricsServer = &http.Server{
			Addr:    cfg.Metrics.ListenAddr,
			Handler: mux,
		}
	}

	return a, nil
}

// Run starts all components and waits for shutdown.
func (a *App) Run(ctx context.Context) error {
	a.logger.Info("starting flowforge",
		"api_addr", a.config.API.ListenAddr,
		"gateway_mode", a.config.Gateway.Mode,
	)

	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	errCh := make(chan error, 2)

	go func() {
		if err := a.apiServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("api server: %w", err)
		}
	}()

	if a.metricsServer != nil {
		go func() {
			a.logger.Info("starting metrics server", "addr", a.config.Metrics.ListenAddr)
			if err := a.metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				errCh <- fmt.Errorf("metrics server: %w", err)
			}
		}()
	}

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		a.logger.Error("server error", "error", err)
		cancel()
	}

	return a.Shutdown(context.Background())
}

// Shutdown gracefully shuts down all components.
func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := a.apiServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("api server shutdown error", "error", err)
	}

	if a.metricsServer != nil {
		if err := a.metricsServer.Shutdown(shutdownCtx); err != nil {
			a.logger.Error("metrics server shutdown error", "error", err)
		}
	}

	if a.boltGateway != nil {
		if err := a.boltGateway.Close(); err != nil {
			a.logger.Error("campaign store close error", "error", err)
		}
	}

	a.logger.Info("shutdown complete")
	return nil
}

// SetupLogger creates a logger based on configuration.
func SetupLogger(cfg config.LoggingConfig) *slog.Logger {
	level := slog.LevelInfo
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	} else {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	}

	return slog.New(handler)
}
