// Package config defines the global configuration for the slopecast services.
// Configuration is loaded once at process start and immutable afterwards,
// keeping code strictly separated from deployment settings.
//
// Values are resolved via a priority chain:
//
//	OS Environment (Highest) -> Dotenv File (Lowest)
//
// A missing required value or invalid format fails the process immediately
// on startup.
package config

import (
	"time"

	"slopecast/internal/types"
)

// SecretString aliases types.SecretString, the redacted string type used for
// every sensitive configuration value.
type SecretString = types.SecretString

// Config is the top-level configuration struct shared by the API server and
// the ETL runner. Components receive only the subsections they need.
type Config struct {
	// System metadata
	Environment string `envconfig:"APP_ENV" validate:"required,oneof=local dev staging prod"`
	Service     string `envconfig:"SERVICE_NAME" default:"slopecast"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`

	// Domain configurations
	Server    ServerConfig
	Database  DatabaseConfig
	Providers ProviderConfig
	ETL       ETLConfig
	Forecast  ForecastConfig

	// Build metadata (injected via ldflags, not env)
	Build BuildInfo
}

// ServerConfig holds HTTP server settings for the read API.
type ServerConfig struct {
	Port            string        `envconfig:"PORT" default:"8080"`
	ReadTimeout     time.Duration `envconfig:"SERVER_READ_TIMEOUT" default:"10s"`
	WriteTimeout    time.Duration `envconfig:"SERVER_WRITE_TIMEOUT" default:"30s"`
	ShutdownTimeout time.Duration `envconfig:"SERVER_SHUTDOWN_TIMEOUT" default:"15s"`
}

// DatabaseConfig holds PostgreSQL connection and pool tuning parameters.
type DatabaseConfig struct {
	URL SecretString `envconfig:"DATABASE_URL" validate:"required,url"`

	MaxConns          int           `envconfig:"DB_MAX_CONNS" default:"10"`
	MinConns          int           `envconfig:"DB_MIN_CONNS" default:"2"`
	MaxConnLifetime   time.Duration `envconfig:"DB_MAX_CONN_LIFETIME" default:"30m"`
	AcquireTimeout    time.Duration `envconfig:"DB_ACQUIRE_TIMEOUT" default:"2s"`
	HealthCheckPeriod time.Duration `envconfig:"DB_HEALTH_CHECK_PERIOD" default:"1m"`
}

// ProviderConfig holds upstream data provider endpoints and credentials.
type ProviderConfig struct {
	WeatherBaseURL string        `envconfig:"WEATHER_API_BASE_URL" validate:"required,url"`
	WeatherAPIKey  SecretString  `envconfig:"WEATHER_API_KEY" validate:"required"`
	WeatherTimeout time.Duration `envconfig:"WEATHER_API_TIMEOUT" default:"15s"`

	EnergyBaseURL string        `envconfig:"ENERGY_API_BASE_URL" validate:"required,url"`
	EnergyAPIKey  SecretString  `envconfig:"ENERGY_API_KEY"`
	EnergyTimeout time.Duration `envconfig:"ENERGY_API_TIMEOUT" default:"15s"`
}

// ETLConfig holds ingestion pipeline tuning: scheduling cadence, lookback
// windows, and per-run concurrency.
type ETLConfig struct {
	WeatherSchedule string        `envconfig:"ETL_WEATHER_SCHEDULE" default:"0 * * * *"`
	EnergySchedule  string        `envconfig:"ETL_ENERGY_SCHEDULE" default:"15 * * * *"`
	LookbackHours   int           `envconfig:"ETL_LOOKBACK_HOURS" default:"48"`
	MaxConcurrency  int           `envconfig:"ETL_MAX_CONCURRENCY" default:"4" validate:"min=1"`
	RunTimeout      time.Duration `envconfig:"ETL_RUN_TIMEOUT" default:"10m"`
}

// ForecastConfig holds forecast generation settings.
type ForecastConfig struct {
	HorizonDays  int `envconfig:"FORECAST_HORIZON_DAYS" default:"7" validate:"min=1,max=14"`
	HistoryYears int `envconfig:"FORECAST_HISTORY_YEARS" default:"3" validate:"min=1"`
}

// BuildInfo holds build-time metadata injected via ldflags. These values are
// not populated from environment variables.
type BuildInfo struct {
	Version   string
	Commit    string
	BuildTime string
}

// ConfigErrorType categorizes configuration loading failures to aid debugging.
type ConfigErrorType string

const (
	// ErrMissingEnv indicates a required environment variable was not found.
	ErrMissingEnv ConfigErrorType = "MISSING_ENV"
	// ErrValidation indicates the configuration failed struct validation rules.
	ErrValidation ConfigErrorType = "VALIDATION_FAILED"
	// ErrParsing indicates a failure parsing environment variable values into
	// their target types.
	ErrParsing ConfigErrorType = "PARSING_FAILED"
)
