package external

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"slopecast/internal/config"
	"slopecast/internal/types"
)

// meteoUserAgent identifies slopecast to the weather provider.
const meteoUserAgent = "slopecast-etl/1.0"

// MeteoClient fetches station observations, daily summaries, and climate
// normals from the upstream weather provider. All calls go through the
// embedded BaseClient for retries and circuit breaking.
type MeteoClient struct {
	base    *BaseClient
	baseURL string
	apiKey  types.SecretString
}

// NewMeteoClient creates a MeteoClient from provider configuration.
func NewMeteoClient(cfg config.ProviderConfig, opts ...BaseClientOption) *MeteoClient {
	httpClient := &http.Client{Timeout: cfg.WeatherTimeout}
	return &MeteoClient{
		base: NewBaseClient(httpClient, "meteo", DefaultRetryPolicy(),
			meteoUserAgent, types.ErrCodeUpstreamWeather, opts...),
		baseURL: cfg.WeatherBaseURL,
		apiKey:  cfg.WeatherAPIKey,
	}
}

// hourlyObservation is the provider's wire format for one hourly record.
// Pointer fields distinguish absent measurements from zero values.
type hourlyObservation struct {
	Timestamp     time.Time `json:"ts"`
	Temperature   *float64  `json:"temperature"`
	FeelsLike     *float64  `json:"feels_like"`
	Humidity      *float64  `json:"humidity"`
	Precipitation *float64  `json:"precipitation"`
	Snow          *float64  `json:"snow"`
	WindSpeed     *float64  `json:"wind_speed"`
	WindDirection *float64  `json:"wind_direction"`
	Pressure      *float64  `json:"pressure"`
	Condition     *int      `json:"condition"`
	CloudCover    *float64  `json:"cloud_cover"`
}

type hourlyResponse struct {
	Hours []hourlyObservation `json:"hours"`
}

// dailySummary is the provider's wire format for one daily record.
type dailySummary struct {
	Date           string   `json:"date"` // YYYY-MM-DD
	TemperatureMin *float64 `json:"temperature_min"`
	TemperatureAvg *float64 `json:"temperature_avg"`
	TemperatureMax *float64 `json:"temperature_max"`
	Precipitation  *float64 `json:"precipitation"`
	Snow           *float64 `json:"snow"`
	WindSpeed      *float64 `json:"wind_speed"`
	WindDirection  *float64 `json:"wind_direction"`
	Pressure       *float64 `json:"pressure"`
}

type dailyResponse struct {
	Days []dailySummary `json:"days"`
}

type normalRecord struct {
	Month          int      `json:"month"`
	Day            int      `json:"day"`
	TemperatureMin *float64 `json:"temperature_min"`
	TemperatureAvg *float64 `json:"temperature_avg"`
	TemperatureMax *float64 `json:"temperature_max"`
	Precipitation  *float64 `json:"precipitation"`
}

type normalsResponse struct {
	Normals []normalRecord `json:"normals"`
}

// FetchHourly retrieves hourly observations for a region's coordinates over
// the half-open range [from, to). Absent measurements are omitted from the
// returned points.
func (c *MeteoClient) FetchHourly(ctx context.Context, region types.Region, from, to time.Time) (types.Series, error) {
	q := url.Values{}
	q.Set("lat", fmt.Sprintf("%.4f", region.Latitude))
	q.Set("lon", fmt.Sprintf("%.4f", region.Longitude))
	q.Set("start", from.UTC().Format(time.RFC3339))
	q.Set("end", to.UTC().Format(time.RFC3339))

	var payload hourlyResponse
	if err := c.getJSON(ctx, "/v1/observations/hourly", q, &payload); err != nil {
		return types.Series{}, err
	}

	out := types.NewSeries(types.CadenceHourly)
	for _, h := range payload.Hours {
		values := make(map[types.Field]float64)
		setIfPresent(values, types.FieldTemperature, h.Temperature)
		setIfPresent(values, types.FieldFeelsLike, h.FeelsLike)
		setIfPresent(values, types.FieldHumidity, h.Humidity)
		setIfPresent(values, types.FieldPrecipitation, h.Precipitation)
		setIfPresent(values, types.FieldSnow, h.Snow)
		setIfPresent(values, types.FieldWindSpeed, h.WindSpeed)
		setIfPresent(values, types.FieldWindDirection, h.WindDirection)
		setIfPresent(values, types.FieldPressure, h.Pressure)
		setIfPresent(values, types.FieldCloudCover, h.CloudCover)
		if h.Condition != nil {
			values[types.FieldCondition] = float64(*h.Condition)
		}
		out.Append(types.TimePoint{Timestamp: h.Timestamp.UTC(), Values: values})
	}
	return out, nil
}

// FetchDaily retrieves daily summaries for a region over [from, to).
func (c *MeteoClient) FetchDaily(ctx context.Context, region types.Region, from, to time.Time) ([]types.DailyAggregate, error) {
	q := url.Values{}
	q.Set("lat", fmt.Sprintf("%.4f", region.Latitude))
	q.Set("lon", fmt.Sprintf("%.4f", region.Longitude))
	q.Set("start", types.Midnight(from).Format("2006-01-02"))
	q.Set("end", types.Midnight(to).Format("2006-01-02"))

	var payload dailyResponse
	if err := c.getJSON(ctx, "/v1/observations/daily", q, &payload); err != nil {
		return nil, err
	}

	days := make([]types.DailyAggregate, 0, len(payload.Days))
	for _, d := range payload.Days {
		date, err := time.Parse("2006-01-02", d.Date)
		if err != nil {
			return nil, types.NewAppError(types.ErrCodeUpstreamWeather,
				fmt.Sprintf("malformed date %q in daily response", d.Date), err)
		}
		days = append(days, types.DailyAggregate{
			Date:           date,
			TemperatureMin: deref(d.TemperatureMin),
			TemperatureAvg: deref(d.TemperatureAvg),
			TemperatureMax: deref(d.TemperatureMax),
			Precipitation:  deref(d.Precipitation),
			Snow:           deref(d.Snow),
			WindSpeed:      deref(d.WindSpeed),
			WindDirection:  deref(d.WindDirection),
			Pressure:       deref(d.Pressure),
		})
	}
	return days, nil
}

// FetchNormals retrieves the provider's climate normals for a region's
// coordinates, one record per calendar day.
func (c *MeteoClient) FetchNormals(ctx context.Context, region types.Region) ([]types.ClimateNormal, error) {
	q := url.Values{}
	q.Set("lat", fmt.Sprintf("%.4f", region.Latitude))
	q.Set("lon", fmt.Sprintf("%.4f", region.Longitude))

	var payload normalsResponse
	if err := c.getJSON(ctx, "/v1/climate/normals", q, &payload); err != nil {
		return nil, err
	}

	normals := make([]types.ClimateNormal, 0, len(payload.Normals))
	for _, n := range payload.Normals {
		normals = append(normals, types.ClimateNormal{
			Month:          n.Month,
			Day:            n.Day,
			TemperatureMin: deref(n.TemperatureMin),
			TemperatureAvg: deref(n.TemperatureAvg),
			TemperatureMax: deref(n.TemperatureMax),
			Precipitation:  deref(n.Precipitation),
		})
	}
	return normals, nil
}

// getJSON issues an authenticated GET and decodes the JSON response body.
func (c *MeteoClient) getJSON(ctx context.Context, path string, q url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalUnexpected, "failed to build provider request", err)
	}
	req.Header.Set("X-Api-Key", c.apiKey.Unmask())
	req.Header.Set("Accept", "application/json")

	resp, err := c.base.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return types.NewAppError(types.ErrCodeUpstreamWeather,
			fmt.Sprintf("weather provider returned %d", resp.StatusCode), nil)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return types.NewAppError(types.ErrCodeUpstreamWeather,
			"failed to decode weather provider response", err)
	}
	return nil
}
