package etl

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"slopecast/internal/observability"
	"slopecast/internal/types"
)

// EnergyPipelineConfig holds the tunables for one energy run.
type EnergyPipelineConfig struct {
	Lookback       time.Duration
	MaxConcurrency int
}

// EnergyPipeline fetches market series per zone and persists them. Zone
// failures are isolated the same way region failures are in the weather
// pipeline.
type EnergyPipeline struct {
	zones    ZoneStore
	store    EnergyStore
	runs     RunStore
	provider EnergyProvider

	cfg     EnergyPipelineConfig
	clock   types.Clock
	metrics *observability.Metrics
	logger  *slog.Logger
}

// NewEnergyPipeline wires an EnergyPipeline. A nil clock falls back to the
// real clock, a nil logger to slog.Default.
func NewEnergyPipeline(
	zones ZoneStore,
	store EnergyStore,
	runs RunStore,
	provider EnergyProvider,
	cfg EnergyPipelineConfig,
	clock types.Clock,
	metrics *observability.Metrics,
	logger *slog.Logger,
) *EnergyPipeline {
	if clock == nil {
		clock = types.RealClock{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MaxConcurrency <= 0 {
		cfg.MaxConcurrency = 1
	}
	return &EnergyPipeline{
		zones:    zones,
		store:    store,
		runs:     runs,
		provider: provider,
		cfg:      cfg,
		clock:    clock,
		metrics:  metrics,
		logger:   logger,
	}
}

// Run executes one fetch-store cycle across all zones. It returns an error
// only when the zone list cannot be loaded.
func (p *EnergyPipeline) Run(ctx context.Context) error {
	runID := uuid.NewString()
	started := p.clock.Now()

	zones, err := p.zones.List(ctx)
	if err != nil {
		p.metrics.ETLRuns.WithLabelValues("energy", "error").Inc()
		p.recordRun(ctx, runID, started, "error", 0, 0)
		return err
	}

	logger := p.logger.With(slog.String("run_id", runID), slog.String("pipeline", "energy"))
	logger.Info("starting energy run", slog.Int("zones", len(zones)))

	var unitErrors atomic.Int64
	var g errgroup.Group
	g.SetLimit(p.cfg.MaxConcurrency)
	for _, zone := range zones {
		g.Go(func() error {
			if err := p.processZone(ctx, zone); err != nil {
				unitErrors.Add(1)
				p.metrics.ETLUnitErrors.WithLabelValues("energy").Inc()
				logger.Error("zone cycle failed",
					slog.String("zone", zone.Code),
					slog.String("error", err.Error()),
				)
			}
			return nil
		})
	}
	g.Wait()

	elapsed := p.clock.Now().Sub(started)
	p.metrics.ETLRunDuration.WithLabelValues("energy").Observe(elapsed.Seconds())
	p.metrics.ETLRuns.WithLabelValues("energy", "success").Inc()
	p.recordRun(ctx, runID, started, "success", len(zones), int(unitErrors.Load()))
	logger.Info("energy run complete",
		slog.Duration("elapsed", elapsed),
		slog.Int64("unit_errors", unitErrors.Load()),
	)
	return nil
}

func (p *EnergyPipeline) recordRun(ctx context.Context, runID string, started time.Time, status string, units, unitErrors int) {
	if p.runs == nil {
		return
	}
	run := types.ETLRun{
		ID:         runID,
		Pipeline:   "energy",
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

func (p *EnergyPipeline) processZone(ctx context.Context, zone types.Zone) error {
	now := p.clock.Now()
	from := now.Add(-p.cfg.Lookback)

	s, err := p.provider.FetchSeries(ctx, zone, from, now)
	if err != nil {
		return err
	}
	if s.Empty() {
		return nil
	}
	if err := p.store.UpsertPoints(ctx, zone.ID, s); err != nil {
		return err
	}
	p.metrics.PointsIngested.WithLabelValues("energy").Add(float64(s.Len()))
	return nil
}
