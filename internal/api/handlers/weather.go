package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"slopecast/internal/core"
	"slopecast/internal/timeseries"
	"slopecast/internal/types"
)

// WeatherStore is the subset of the weather repository the handler needs.
type WeatherStore interface {
	GetSeries(ctx context.Context, regionID string, cadence types.Cadence, from, to time.Time, isForecast bool) (types.Series, error)
}

// ForecastStore is the subset of the forecast repository the handler needs.
type ForecastStore interface {
	ListLatest(ctx context.Context, regionID string, from, to time.Time) ([]types.Forecast, error)
}

// forecastDay is the wire representation of one daily forecast. Temperature
// and precipitation render as null when the value could not be estimated.
type forecastDay struct {
	TargetDate     string   `json:"target_date"`
	ForecastDate   string   `json:"forecast_date"`
	TemperatureMin *float64 `json:"temperature_min"`
	TemperatureAvg *float64 `json:"temperature_avg"`
	TemperatureMax *float64 `json:"temperature_max"`
	Precipitation  *float64 `json:"precipitation"`
	Condition      int      `json:"condition"`
	ConditionLabel string   `json:"condition_label"`
}

type forecastResponse struct {
	Region string        `json:"region"`
	Days   []forecastDay `json:"days"`
}

// WeatherHandler serves densified weather series and daily forecasts.
type WeatherHandler struct {
	regions   RegionStore
	weather   WeatherStore
	forecasts ForecastStore
	clock     types.Clock
	// maxHorizonDays caps the days query parameter on the forecast endpoint.
	maxHorizonDays int
	logger         *slog.Logger
}

// NewWeatherHandler creates a WeatherHandler. A nil clock falls back to the
// real clock.
func NewWeatherHandler(regions RegionStore, weather WeatherStore, forecasts ForecastStore, maxHorizonDays int, clock types.Clock, logger *slog.Logger) *WeatherHandler {
	if clock == nil {
		clock = types.RealClock{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	if maxHorizonDays < 1 {
		maxHorizonDays = 7
	}
	return &WeatherHandler{
		regions:        regions,
		weather:        weather,
		forecasts:      forecasts,
		clock:          clock,
		maxHorizonDays: maxHorizonDays,
		logger:         logger,
	}
}

// RegisterRoutes mounts the weather endpoints onto the mux.
func (h *WeatherHandler) RegisterRoutes(r chi.Router) {
	r.Get("/weather/{region}/series", h.HandleGetSeries)
	r.Get("/weather/{region}/forecast", h.HandleGetForecast)
}

// HandleGetSeries handles GET /v1/weather/{region}/series. The stored
// quarter-hour grid is resampled on the fly to the requested interval and
// aggregation.
func (h *WeatherHandler) HandleGetSeries(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "region")
	region, err := h.regions.GetByCode(r.Context(), code)
	if err != nil {
		core.Error(w, r, err)
		return
	}

	query, appErr := parseSeriesQuery(r, h.clock.Now().UTC())
	if appErr != nil {
		core.Error(w, r, appErr)
		return
	}

	stored, err := h.weather.GetSeries(r.Context(), region.ID, types.Cadence15Min, query.From, query.To, false)
	if err != nil {
		core.Error(w, r, err)
		return
	}
	resampled := timeseries.ResampleStrings(stored, query.Interval, query.Agg)

	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: seriesResponse{
		Code:     region.Code,
		Interval: string(resampled.Cadence),
		Agg:      string(timeseries.ParseAggFunc(query.Agg)),
		From:     query.From,
		To:       query.To,
		Points:   toSeriesPoints(resampled),
	}})
}

// HandleGetForecast handles GET /v1/weather/{region}/forecast. The most
// recently generated forecast for each target date wins.
func (h *WeatherHandler) HandleGetForecast(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "region")
	region, err := h.regions.GetByCode(r.Context(), code)
	if err != nil {
		core.Error(w, r, err)
		return
	}

	days := h.maxHorizonDays
	if raw := r.URL.Query().Get("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > h.maxHorizonDays {
			core.Error(w, r, types.NewAppError(types.ErrCodeValidationHorizon,
				fmt.Sprintf("days must be an integer between 1 and %d", h.maxHorizonDays), err))
			return
		}
		days = parsed
	}

	today := types.Midnight(h.clock.Now())
	forecasts, err := h.forecasts.ListLatest(r.Context(), region.ID, today, today.AddDate(0, 0, days))
	if err != nil {
		core.Error(w, r, err)
		return
	}

	out := make([]forecastDay, 0, len(forecasts))
	for _, f := range forecasts {
		out = append(out, forecastDay{
			TargetDate:     f.TargetDate.Format("2006-01-02"),
			ForecastDate:   f.ForecastDate.Format("2006-01-02"),
			TemperatureMin: floatPtr(f.TemperatureMin),
			TemperatureAvg: floatPtr(f.TemperatureAvg),
			TemperatureMax: floatPtr(f.TemperatureMax),
			Precipitation:  floatPtr(f.Precipitation),
			Condition:      int(f.Condition),
			ConditionLabel: f.Condition.String(),
		})
	}
	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: forecastResponse{
		Region: region.Code,
		Days:   out,
	}})
}
