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

const gridUserAgent = "slopecast-etl/1.0"

// GridMarketClient fetches load, price, and net generation series from the
// upstream energy market data provider.
type GridMarketClient struct {
	base    *BaseClient
	baseURL string
	apiKey  types.SecretString
}

// NewGridMarketClient creates a GridMarketClient from provider configuration.
func NewGridMarketClient(cfg config.ProviderConfig, opts ...BaseClientOption) *GridMarketClient {
	httpClient := &http.Client{Timeout: cfg.EnergyTimeout}
	return &GridMarketClient{
		base: NewBaseClient(httpClient, "gridmarket", DefaultRetryPolicy(),
			gridUserAgent, types.ErrCodeUpstreamEnergy, opts...),
		baseURL: cfg.EnergyBaseURL,
		apiKey:  cfg.EnergyAPIKey,
	}
}

// marketPoint is the provider's wire format for one interval record.
type marketPoint struct {
	Timestamp     time.Time `json:"ts"`
	LoadMW        *float64  `json:"load_mw"`
	Price         *float64  `json:"price"`
	NetGeneration *float64  `json:"net_generation"`
}

type marketResponse struct {
	Points []marketPoint `json:"points"`
}

// FetchSeries retrieves the market series for a zone over the half-open
// range [from, to). The provider publishes at hourly settlement intervals.
func (c *GridMarketClient) FetchSeries(ctx context.Context, zone types.Zone, from, to time.Time) (types.Series, error) {
	q := url.Values{}
	q.Set("zone", zone.Code)
	q.Set("start", from.UTC().Format(time.RFC3339))
	q.Set("end", to.UTC().Format(time.RFC3339))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/v2/market/series?"+q.Encode(), nil)
	if err != nil {
		return types.Series{}, types.NewAppError(types.ErrCodeInternalUnexpected, "failed to build provider request", err)
	}
	if key := c.apiKey.Unmask(); key != "" {
		req.Header.Set("Authorization", "Bearer "+key)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.base.Do(req)
	if err != nil {
		return types.Series{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return types.Series{}, types.NewAppError(types.ErrCodeUpstreamEnergy,
			fmt.Sprintf("energy provider returned %d", resp.StatusCode), nil)
	}

	var payload marketResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return types.Series{}, types.NewAppError(types.ErrCodeUpstreamEnergy,
			"failed to decode energy provider response", err)
	}

	out := types.NewSeries(types.CadenceHourly)
	for _, p := range payload.Points {
		values := make(map[types.Field]float64)
		setIfPresent(values, types.FieldLoad, p.LoadMW)
		setIfPresent(values, types.FieldPrice, p.Price)
		setIfPresent(values, types.FieldNetGeneration, p.NetGeneration)
		out.Append(types.TimePoint{Timestamp: p.Timestamp.UTC(), Values: values})
	}
	return out, nil
}
