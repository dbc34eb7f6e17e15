package handlers

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"slopecast/internal/types"
)

// fixedClock pins time for deterministic range defaults.
type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

var testNow = time.Date(2026, time.March, 5, 12, 0, 0, 0, time.UTC)

// --- Fake stores ---

type fakeRegionStore struct {
	regions map[string]*types.Region
	listErr error
}

func (f *fakeRegionStore) GetByCode(ctx context.Context, code string) (*types.Region, error) {
	if r, ok := f.regions[code]; ok {
		return r, nil
	}
	return nil, types.NewAppError(types.ErrCodeNotFoundRegion, "region not found", nil)
}

func (f *fakeRegionStore) List(ctx context.Context) ([]types.Region, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]types.Region, 0, len(f.regions))
	for _, r := range f.regions {
		out = append(out, *r)
	}
	return out, nil
}

type fakeZoneStore struct {
	zones map[string]*types.Zone
}

func (f *fakeZoneStore) GetByCode(ctx context.Context, code string) (*types.Zone, error) {
	if z, ok := f.zones[code]; ok {
		return z, nil
	}
	return nil, types.NewAppError(types.ErrCodeNotFoundZone, "zone not found", nil)
}

func (f *fakeZoneStore) List(ctx context.Context) ([]types.Zone, error) {
	out := make([]types.Zone, 0, len(f.zones))
	for _, z := range f.zones {
		out = append(out, *z)
	}
	return out, nil
}

type fakeWeatherStore struct {
	series types.Series
	err    error

	// captured arguments from the last GetSeries call
	gotRegionID string
	gotCadence  types.Cadence
	gotFrom     time.Time
	gotTo       time.Time
}

func (f *fakeWeatherStore) GetSeries(ctx context.Context, regionID string, cadence types.Cadence, from, to time.Time, isForecast bool) (types.Series, error) {
	f.gotRegionID = regionID
	f.gotCadence = cadence
	f.gotFrom = from
	f.gotTo = to
	if f.err != nil {
		return types.Series{}, f.err
	}
	return f.series, nil
}

type fakeForecastStore struct {
	forecasts []types.Forecast
	err       error

	gotFrom time.Time
	gotTo   time.Time
}

func (f *fakeForecastStore) ListLatest(ctx context.Context, regionID string, from, to time.Time) ([]types.Forecast, error) {
	f.gotFrom = from
	f.gotTo = to
	if f.err != nil {
		return nil, f.err
	}
	return f.forecasts, nil
}

type fakeEnergyStore struct {
	series types.Series
	err    error

	gotZoneID string
}

func (f *fakeEnergyStore) GetSeries(ctx context.Context, zoneID string, cadence types.Cadence, from, to time.Time) (types.Series, error) {
	f.gotZoneID = zoneID
	if f.err != nil {
		return types.Series{}, f.err
	}
	return f.series, nil
}

// --- Request helpers ---

type registrar interface {
	RegisterRoutes(r chi.Router)
}

// serve routes a request through a fresh chi mux with the handler's routes
// mounted under /v1, mirroring the production layout.
func serve(t *testing.T, h registrar, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	router := chi.NewRouter()
	router.Route("/v1", h.RegisterRoutes)

	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder, into any) {
	t.Helper()
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("failed to decode envelope: %v (body %s)", err, rec.Body.String())
	}
	if err := json.Unmarshal(envelope.Data, into); err != nil {
		t.Fatalf("failed to decode data: %v", err)
	}
}

func decodeErrorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var envelope struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("failed to decode error envelope: %v (body %s)", err, rec.Body.String())
	}
	return envelope.Error.Code
}

func expectStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("expected status %d, got %d (body %s)", want, rec.Code, rec.Body.String())
	}
}
