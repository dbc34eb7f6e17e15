// Package main is the entry point for the slopecast ETL runner.
//
// It loads configuration, connects to PostgreSQL and the upstream providers,
// runs both ingestion pipelines once at startup, and then hands them to the
// cron scheduler. A small HTTP listener exposes Prometheus metrics and a
// health endpoint for the scrape target.
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

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"slopecast/internal/config"
	"slopecast/internal/db"
	"slopecast/internal/etl"
	"slopecast/internal/external"
	"slopecast/internal/observability"
	"slopecast/internal/scheduler"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	logger := newLogger(cfg.LogLevel)
	logger.Info("slopecast ETL starting",
		"environment", cfg.Environment,
		"version", cfg.Build.Version,
		"commit", cfg.Build.Commit,
		"weather_schedule", cfg.ETL.WeatherSchedule,
		"energy_schedule", cfg.ETL.EnergySchedule,
	)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	pool, err := db.NewPool(ctx, cfg.Database)
	cancel()
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer pool.Close()

	metrics := observability.NewMetrics()

	regionRepo := db.NewRegionRepository(pool)
	zoneRepo := db.NewZoneRepository(pool)
	weatherRepo := db.NewWeatherRepository(pool)
	climateRepo := db.NewClimateRepository(pool)
	forecastRepo := db.NewForecastRepository(pool)
	energyRepo := db.NewEnergyRepository(pool)
	runRepo := db.NewRunRepository(pool)

	meteo := external.NewMeteoClient(cfg.Providers)
	gridMarket := external.NewGridMarketClient(cfg.Providers)

	weatherPipeline := etl.NewWeatherPipeline(
		regionRepo, weatherRepo, climateRepo, forecastRepo, runRepo, meteo,
		etl.WeatherPipelineConfig{
			Lookback:       time.Duration(cfg.ETL.LookbackHours) * time.Hour,
			HorizonDays:    cfg.Forecast.HorizonDays,
			HistoryYears:   cfg.Forecast.HistoryYears,
			MaxConcurrency: cfg.ETL.MaxConcurrency,
		},
		nil, metrics, logger,
	)
	energyPipeline := etl.NewEnergyPipeline(
		zoneRepo, energyRepo, runRepo, gridMarket,
		etl.EnergyPipelineConfig{
			Lookback:       time.Duration(cfg.ETL.LookbackHours) * time.Hour,
			MaxConcurrency: cfg.ETL.MaxConcurrency,
		},
		nil, metrics, logger,
	)

	// One immediate run so a fresh deployment serves data before the first
	// cron tick.
	runOnce(cfg.ETL.RunTimeout, logger, "weather", weatherPipeline.Run)
	runOnce(cfg.ETL.RunTimeout, logger, "energy", energyPipeline.Run)

	sched := scheduler.New(cfg.ETL.RunTimeout, logger)
	if err := sched.Register(cfg.ETL.WeatherSchedule, scheduler.JobFunc{
		JobName: "weather-etl",
		Fn:      weatherPipeline.Run,
	}); err != nil {
		return fmt.Errorf("registering weather job: %w", err)
	}
	if err := sched.Register(cfg.ETL.EnergySchedule, scheduler.JobFunc{
		JobName: "energy-etl",
		Fn:      energyPipeline.Run,
	}); err != nil {
		return fmt.Errorf("registering energy job: %w", err)
	}
	sched.Start()
	defer sched.Stop()

	return serveMetrics(cfg, pool, logger)
}

// runOnce executes a pipeline run with the configured timeout, logging
// rather than propagating failures: a dead upstream at boot should not keep
// the scheduler from starting.
func runOnce(timeout time.Duration, logger *slog.Logger, name string, fn func(context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := fn(ctx); err != nil {
		logger.Error("initial pipeline run failed", "pipeline", name, "error", err)
	}
}

// serveMetrics blocks serving /metrics and /healthz until a shutdown signal.
func serveMetrics(cfg *config.Config, pinger interface {
	Ping(ctx context.Context) error
}, logger *slog.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := pinger.Ping(ctx); err != nil {
			http.Error(w, "database unreachable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	httpServer := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("metrics listener started", "addr", httpServer.Addr)
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
			return fmt.Errorf("metrics listener error: %w", err)
		}
	}

	shCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shCtx); err != nil {
		logger.Error("metrics listener shutdown error", "error", err)
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
