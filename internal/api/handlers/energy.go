package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"slopecast/internal/core"
	"slopecast/internal/timeseries"
	"slopecast/internal/types"
)

// EnergyStore is the subset of the energy repository the handler needs.
type EnergyStore interface {
	GetSeries(ctx context.Context, zoneID string, cadence types.Cadence, from, to time.Time) (types.Series, error)
}

// EnergyHandler serves energy-market series.
type EnergyHandler struct {
	zones  ZoneStore
	energy EnergyStore
	clock  types.Clock
	logger *slog.Logger
}

// NewEnergyHandler creates an EnergyHandler. A nil clock falls back to the
// real clock.
func NewEnergyHandler(zones ZoneStore, energy EnergyStore, clock types.Clock, logger *slog.Logger) *EnergyHandler {
	if clock == nil {
		clock = types.RealClock{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &EnergyHandler{zones: zones, energy: energy, clock: clock, logger: logger}
}

// RegisterRoutes mounts the energy endpoints onto the mux.
func (h *EnergyHandler) RegisterRoutes(r chi.Router) {
	r.Get("/energy/{zone}/series", h.HandleGetSeries)
}

// HandleGetSeries handles GET /v1/energy/{zone}/series. Market data arrives
// hourly; coarser intervals are aggregated on the fly.
func (h *EnergyHandler) HandleGetSeries(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "zone")
	zone, err := h.zones.GetByCode(r.Context(), code)
	if err != nil {
		core.Error(w, r, err)
		return
	}

	query, appErr := parseSeriesQuery(r, h.clock.Now().UTC())
	if appErr != nil {
		core.Error(w, r, appErr)
		return
	}

	stored, err := h.energy.GetSeries(r.Context(), zone.ID, types.CadenceHourly, query.From, query.To)
	if err != nil {
		core.Error(w, r, err)
		return
	}
	resampled := timeseries.ResampleStrings(stored, query.Interval, query.Agg)

	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: seriesResponse{
		Code:     zone.Code,
		Interval: string(resampled.Cadence),
		Agg:      string(timeseries.ParseAggFunc(query.Agg)),
		From:     query.From,
		To:       query.To,
		Points:   toSeriesPoints(resampled),
	}})
}
