// Package main is the entry point for the slopecast read API.
//
// It loads configuration, opens the PostgreSQL pool, builds the HTTP server
// with the core chassis (middleware, routing, health checks, metrics), and
// listens until a shutdown signal arrives.
//
// Graceful shutdown is handled via OS signal interception (SIGINT, SIGTERM).
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/klauspost/compress/gzhttp"

	"slopecast/internal/api/handlers"
	"slopecast/internal/config"
	"slopecast/internal/core"
	"slopecast/internal/db"
	"slopecast/internal/observability"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// run encapsulates the startup lifecycle so that main() can cleanly exit on error.
func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	logger := newLogger(cfg.LogLevel)
	logger.Info("slopecast API starting",
		"environment", cfg.Environment,
		"version", cfg.Build.Version,
		"commit", cfg.Build.Commit,
		"port", cfg.Server.Port,
	)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	pool, err := db.NewPool(ctx, cfg.Database)
	cancel()
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer pool.Close()

	metrics := observability.NewMetrics()

	srv, err := core.NewServer(cfg, logger, metrics)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}
	srv.HealthProbes = append(srv.HealthProbes, core.ProbeFunc{
		ProbeName: "database",
		CheckFunc: pool.Ping,
	})

	regionRepo := db.NewRegionRepository(pool)
	zoneRepo := db.NewZoneRepository(pool)
	weatherRepo := db.NewWeatherRepository(pool)
	forecastRepo := db.NewForecastRepository(pool)
	energyRepo := db.NewEnergyRepository(pool)
	runRepo := db.NewRunRepository(pool)

	catalogHandler := handlers.NewCatalogHandler(regionRepo, zoneRepo, logger)
	weatherHandler := handlers.NewWeatherHandler(
		regionRepo, weatherRepo, forecastRepo, cfg.Forecast.HorizonDays, nil, logger)
	energyHandler := handlers.NewEnergyHandler(zoneRepo, energyRepo, nil, logger)
	runsHandler := handlers.NewRunsHandler(runRepo, logger)

	srv.V1RouteRegistrars = append(srv.V1RouteRegistrars,
		catalogHandler.RegisterRoutes,
		weatherHandler.RegisterRoutes,
		energyHandler.RegisterRoutes,
		runsHandler.RegisterRoutes,
	)
	srv.MountRoutes()

	return runHTTPServer(srv, cfg, logger)
}

// runHTTPServer starts the HTTP listener and blocks until a shutdown signal
// or a server error. Responses are transparently gzip-compressed for clients
// that accept it; resampled series payloads compress well.
func runHTTPServer(srv *core.Server, cfg *config.Config, logger *slog.Logger) error {
	addr := ":" + cfg.Server.Port

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           gzhttp.GzipHandler(srv.Handler()),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       120 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", "addr", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-shutdown:
		logger.Info("shutdown signal received", "signal", sig.String())
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}

	logger.Info("initiating graceful shutdown")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
	}
	logger.Info("shutdown complete")
	return nil
}

// newLogger creates a structured slog.Logger configured for the given log level.
func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}
