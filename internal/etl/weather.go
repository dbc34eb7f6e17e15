package etl

import (
	"context"
	"log/slog"
	"math"
	"sort"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"slopecast/internal/forecast"
	"slopecast/internal/interp"
	"slopecast/internal/observability"
	"slopecast/internal/types"
)

// WeatherPipelineConfig holds the tunables for one weather run.
type WeatherPipelineConfig struct {
	// Lookback is how far behind now the raw fetch window starts.
	Lookback time.Duration
	// HorizonDays is the weekly forecast horizon.
	HorizonDays int
	// HistoryYears bounds the daily history loaded for forecasting.
	HistoryYears int
	// MaxConcurrency caps the number of regions processed in parallel.
	MaxConcurrency int
}

// WeatherPipeline runs the full per-region cycle: fetch raw observations,
// persist them, densify to the 15-minute grid, regenerate the weekly
// forecast, and project the next 24 hours at quarter-hour resolution.
//
// Region failures are isolated: one dead region never blocks the others.
type WeatherPipeline struct {
	regions   RegionStore
	weather   WeatherStore
	climate   ClimateStore
	forecasts ForecastStore
	runs      RunStore
	provider  WeatherProvider

	interpolator *interp.Interpolator
	forecaster   *forecast.Forecaster

	cfg     WeatherPipelineConfig
	clock   types.Clock
	metrics *observability.Metrics
	logger  *slog.Logger
}

// NewWeatherPipeline wires a WeatherPipeline. A nil clock falls back to the
// real clock, a nil logger to slog.Default.
func NewWeatherPipeline(
	regions RegionStore,
	weather WeatherStore,
	climate ClimateStore,
	forecasts ForecastStore,
	runs RunStore,
	provider WeatherProvider,
	cfg WeatherPipelineConfig,
	clock types.Clock,
	metrics *observability.Metrics,
	logger *slog.Logger,
) *WeatherPipeline {
	if clock == nil {
		clock = types.RealClock{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MaxConcurrency <= 0 {
		cfg.MaxConcurrency = 1
	}
	if cfg.HorizonDays <= 0 {
		cfg.HorizonDays = forecast.DefaultHorizonDays
	}
	return &WeatherPipeline{
		regions:      regions,
		weather:      weather,
		climate:      climate,
		forecasts:    forecasts,
		runs:         runs,
		provider:     provider,
		interpolator: interp.New(logger),
		forecaster:   forecast.New(logger),
		cfg:          cfg,
		clock:        clock,
		metrics:      metrics,
		logger:       logger,
	}
}

// Run executes one full pipeline cycle across all regions. It returns an
// error only when the region list cannot be loaded; per-region failures are
// logged, counted, and skipped.
func (p *WeatherPipeline) Run(ctx context.Context) error {
	runID := uuid.NewString()
	started := p.clock.Now()

	p.metrics.ETLRunning.Set(1)
	defer p.metrics.ETLRunning.Set(0)

	regions, err := p.regions.List(ctx)
	if err != nil {
		p.metrics.ETLRuns.WithLabelValues("weather", "error").Inc()
		p.recordRun(ctx, runID, "weather", started, "error", 0, 0)
		return err
	}

	logger := p.logger.With(slog.String("run_id", runID), slog.String("pipeline", "weather"))
	logger.Info("starting weather run", slog.Int("regions", len(regions)))

	var unitErrors atomic.Int64
	var g errgroup.Group
	g.SetLimit(p.cfg.MaxConcurrency)
	for _, region := range regions {
		g.Go(func() error {
			if err := p.processRegion(ctx, logger, region); err != nil {
				unitErrors.Add(1)
				p.metrics.ETLUnitErrors.WithLabelValues("weather").Inc()
				logger.Error("region cycle failed",
					slog.String("region", region.Code),
					slog.String("error", err.Error()),
				)
			}
			return nil
		})
	}
	g.Wait()

	elapsed := p.clock.Now().Sub(started)
	p.metrics.ETLRunDuration.WithLabelValues("weather").Observe(elapsed.Seconds())
	p.metrics.ETLRuns.WithLabelValues("weather", "success").Inc()
	p.recordRun(ctx, runID, "weather", started, "success", len(regions), int(unitErrors.Load()))
	logger.Info("weather run complete",
		slog.Duration("elapsed", elapsed),
		slog.Int64("unit_errors", unitErrors.Load()),
	)
	return nil
}

// recordRun writes the run-history row. Failure to record is logged, not
// propagated: history is diagnostics, not pipeline output.
func (p *WeatherPipeline) recordRun(ctx context.Context, runID, pipeline string, started time.Time, status string, units, unitErrors int) {
	if p.runs == nil {
		return
	}
	run := types.ETLRun{
		ID:         runID,
		Pipeline:   pipeline,
		StartedAt:  started,
		FinishedAt: p.clock.Now(),
		Status:     status,
		Units:      units,
		UnitErrors: unitErrors,
	}
	if err := p.runs.Insert(ctx, run); err != nil {
		p.logger.Error("failed to record run", slog.String("run_id", runID), slog.String("error", err.Error()))
	}
}

// processRegion runs the fetch-store-densify-forecast-project cycle for one
// region.
func (p *WeatherPipeline) processRegion(ctx context.Context, logger *slog.Logger, region types.Region) error {
	now := p.clock.Now()
	from := now.Add(-p.cfg.Lookback)

	// Raw hourly observations.
	hourly, err := p.provider.FetchHourly(ctx, region, from, now)
	if err != nil {
		return err
	}
	if err := p.weather.UpsertPoints(ctx, region.ID, hourly, false); err != nil {
		return err
	}
	p.metrics.PointsIngested.WithLabelValues("weather").Add(float64(hourly.Len()))

	// Daily summaries covering the same window.
	daily, err := p.provider.FetchDaily(ctx, region, from, now)
	if err != nil {
		return err
	}
	if err := p.climate.InsertDaily(ctx, region.ID, daily); err != nil {
		return err
	}
	if months := monthlyRollup(daily); len(months) > 0 {
		if err := p.climate.InsertMonthly(ctx, region.ID, months); err != nil {
			return err
		}
	}

	normals, err := p.ensureNormals(ctx, region)
	if err != nil {
		return err
	}

	// Densify observations to the canonical 15-minute grid.
	dense := p.interpolator.To15Min(hourly, daily, normals)
	if !dense.Empty() {
		if err := p.weather.UpsertPoints(ctx, region.ID, dense, false); err != nil {
			return err
		}
	}

	// Regenerate the weekly forecast from accumulated history.
	historyFrom := now.AddDate(-p.cfg.HistoryYears, 0, 0)
	history, err := p.climate.ListDaily(ctx, region.ID, historyFrom, now)
	if err != nil {
		return err
	}

	weekly := p.forecaster.Weekly(history, normals, now, p.cfg.HorizonDays, now)
	if len(weekly) == 0 {
		logger.Debug("no forecast produced", slog.String("region", region.Code))
		return nil
	}
	for i := range weekly {
		weekly[i].RegionID = region.ID
	}
	if err := p.forecasts.Upsert(ctx, weekly); err != nil {
		return err
	}
	p.metrics.ForecastsWritten.Add(float64(len(weekly)))

	return p.projectToday(ctx, region, weekly[0])
}

// ensureNormals returns the region's climate normals, fetching them from the
// provider on first use. Normals change on a decadal timescale; refetching
// every run would be waste.
func (p *WeatherPipeline) ensureNormals(ctx context.Context, region types.Region) ([]types.ClimateNormal, error) {
	normals, err := p.climate.ListNormals(ctx, region.ID)
	if err != nil {
		return nil, err
	}
	if len(normals) > 0 {
		return normals, nil
	}

	normals, err = p.provider.FetchNormals(ctx, region)
	if err != nil {
		return nil, err
	}
	if len(normals) == 0 {
		return nil, nil
	}
	if err := p.climate.UpsertNormals(ctx, region.ID, normals); err != nil {
		return nil, err
	}
	return normals, nil
}

// projectToday expands the nearest daily forecast into quarter-hour points
// anchored just after the latest stored observation.
func (p *WeatherPipeline) projectToday(ctx context.Context, region types.Region, daily types.Forecast) error {
	latest, ok, err := p.weather.LatestActual(ctx, region.ID)
	if err != nil {
		return err
	}
	if !ok {
		// Nothing observed yet; anchor the projection at the current time.
		latest = p.clock.Now()
	}

	projected := forecast.ProjectQuarterHour(daily, latest)
	if err := p.weather.UpsertPoints(ctx, region.ID, projected, true); err != nil {
		return err
	}
	p.metrics.PointsProjected.Add(float64(projected.Len()))
	return nil
}

// monthlyRollup summarizes daily aggregates into calendar-month records:
// mean temperatures over the days with readings, precipitation summed. Days
// with a missing field simply do not contribute to it.
func monthlyRollup(days []types.DailyAggregate) []types.MonthlyAggregate {
	type acc struct {
		year, month            int
		minSum, avgSum, maxSum float64
		minN, avgN, maxN       int
		precipSum              float64
		precipN                int
	}

	byMonth := make(map[int]*acc)
	var order []int
	for _, d := range days {
		key := d.Date.Year()*100 + int(d.Date.Month())
		a, ok := byMonth[key]
		if !ok {
			a = &acc{year: d.Date.Year(), month: int(d.Date.Month())}
			byMonth[key] = a
			order = append(order, key)
		}
		if !math.IsNaN(d.TemperatureMin) {
			a.minSum += d.TemperatureMin
			a.minN++
		}
		if !math.IsNaN(d.TemperatureAvg) {
			a.avgSum += d.TemperatureAvg
			a.avgN++
		}
		if !math.IsNaN(d.TemperatureMax) {
			a.maxSum += d.TemperatureMax
			a.maxN++
		}
		if !math.IsNaN(d.Precipitation) {
			a.precipSum += d.Precipitation
			a.precipN++
		}
	}
	sort.Ints(order)

	meanOrNaN := func(sum float64, n int) float64 {
		if n == 0 {
			return math.NaN()
		}
		return sum / float64(n)
	}

	months := make([]types.MonthlyAggregate, 0, len(order))
	for _, key := range order {
		a := byMonth[key]
		precip := math.NaN()
		if a.precipN > 0 {
			precip = a.precipSum
		}
		months = append(months, types.MonthlyAggregate{
			Year:           a.year,
			Month:          a.month,
			TemperatureMin: meanOrNaN(a.minSum, a.minN),
			TemperatureAvg: meanOrNaN(a.avgSum, a.avgN),
			TemperatureMax: meanOrNaN(a.maxSum, a.maxN),
			Precipitation:  precip,
		})
	}
	return months
}
