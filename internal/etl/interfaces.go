// Package etl implements the ingestion pipelines: fetch upstream weather and
// energy data, persist raw series, densify observations to the canonical
// 15-minute grid, and regenerate forecasts and sub-hourly projections.
//
// Interfaces are defined on the consumer side; the db and external packages
// satisfy them without importing this package.
package etl

import (
	"context"
	"time"

	"slopecast/internal/types"
)

// WeatherProvider fetches upstream weather data for a region.
type WeatherProvider interface {
	FetchHourly(ctx context.Context, region types.Region, from, to time.Time) (types.Series, error)
	FetchDaily(ctx context.Context, region types.Region, from, to time.Time) ([]types.DailyAggregate, error)
	FetchNormals(ctx context.Context, region types.Region) ([]types.ClimateNormal, error)
}

// EnergyProvider fetches upstream market data for a zone.
type EnergyProvider interface {
	FetchSeries(ctx context.Context, zone types.Zone, from, to time.Time) (types.Series, error)
}

// RegionStore lists the regions to process.
type RegionStore interface {
	List(ctx context.Context) ([]types.Region, error)
}

// ZoneStore lists the energy zones to process.
type ZoneStore interface {
	List(ctx context.Context) ([]types.Zone, error)
}

// WeatherStore persists observed and projected weather series.
type WeatherStore interface {
	UpsertPoints(ctx context.Context, regionID string, s types.Series, isForecast bool) error
	LatestActual(ctx context.Context, regionID string) (time.Time, bool, error)
}

// ClimateStore persists daily and monthly aggregates and climate normals.
type ClimateStore interface {
	InsertDaily(ctx context.Context, regionID string, days []types.DailyAggregate) error
	ListDaily(ctx context.Context, regionID string, from, to time.Time) ([]types.DailyAggregate, error)
	InsertMonthly(ctx context.Context, regionID string, months []types.MonthlyAggregate) error
	UpsertNormals(ctx context.Context, regionID string, normals []types.ClimateNormal) error
	ListNormals(ctx context.Context, regionID string) ([]types.ClimateNormal, error)
}

// ForecastStore persists generated daily forecasts.
type ForecastStore interface {
	Upsert(ctx context.Context, forecasts []types.Forecast) error
}

// EnergyStore persists market series.
type EnergyStore interface {
	UpsertPoints(ctx context.Context, zoneID string, s types.Series) error
}

// RunStore persists run history records.
type RunStore interface {
	Insert(ctx context.Context, run types.ETLRun) error
}
