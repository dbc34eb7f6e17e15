package etl

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"slopecast/internal/observability"
	"slopecast/internal/types"
)

// --- Mocks ---

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

type mockRegionStore struct {
	regions []types.Region
	err     error
}

func (m *mockRegionStore) List(ctx context.Context) ([]types.Region, error) {
	return m.regions, m.err
}

type upsertCall struct {
	regionID   string
	series     types.Series
	isForecast bool
}

type mockWeatherStore struct {
	upserts      []upsertCall
	upsertErr    error
	latestActual time.Time
	hasActual    bool
}

func (m *mockWeatherStore) UpsertPoints(ctx context.Context, regionID string, s types.Series, isForecast bool) error {
	if m.upsertErr != nil {
		return m.upsertErr
	}
	m.upserts = append(m.upserts, upsertCall{regionID, s, isForecast})
	return nil
}

func (m *mockWeatherStore) LatestActual(ctx context.Context, regionID string) (time.Time, bool, error) {
	return m.latestActual, m.hasActual, nil
}

type mockClimateStore struct {
	insertedDaily   [][]types.DailyAggregate
	insertedMonthly [][]types.MonthlyAggregate
	history         []types.DailyAggregate
	normals         []types.ClimateNormal
	upsertedNorms   []types.ClimateNormal
}

func (m *mockClimateStore) InsertDaily(ctx context.Context, regionID string, days []types.DailyAggregate) error {
	m.insertedDaily = append(m.insertedDaily, days)
	return nil
}

func (m *mockClimateStore) ListDaily(ctx context.Context, regionID string, from, to time.Time) ([]types.DailyAggregate, error) {
	return m.history, nil
}

func (m *mockClimateStore) InsertMonthly(ctx context.Context, regionID string, months []types.MonthlyAggregate) error {
	m.insertedMonthly = append(m.insertedMonthly, months)
	return nil
}

func (m *mockClimateStore) UpsertNormals(ctx context.Context, regionID string, normals []types.ClimateNormal) error {
	m.upsertedNorms = normals
	return nil
}

func (m *mockClimateStore) ListNormals(ctx context.Context, regionID string) ([]types.ClimateNormal, error) {
	return m.normals, nil
}

type mockForecastStore struct {
	upserted []types.Forecast
}

type mockRunStore struct {
	runs []types.ETLRun
}

func (m *mockRunStore) Insert(ctx context.Context, run types.ETLRun) error {
	m.runs = append(m.runs, run)
	return nil
}

func (m *mockForecastStore) Upsert(ctx context.Context, forecasts []types.Forecast) error {
	m.upserted = append(m.upserted, forecasts...)
	return nil
}

type mockWeatherProvider struct {
	hourly        types.Series
	daily         []types.DailyAggregate
	normals       []types.ClimateNormal
	hourlyErr     error
	normalsCalled bool
	failForRegion string
}

func (m *mockWeatherProvider) FetchHourly(ctx context.Context, region types.Region, from, to time.Time) (types.Series, error) {
	if m.hourlyErr != nil && region.Code == m.failForRegion {
		return types.Series{}, m.hourlyErr
	}
	return m.hourly, nil
}

func (m *mockWeatherProvider) FetchDaily(ctx context.Context, region types.Region, from, to time.Time) ([]types.DailyAggregate, error) {
	return m.daily, nil
}

func (m *mockWeatherProvider) FetchNormals(ctx context.Context, region types.Region) ([]types.ClimateNormal, error) {
	m.normalsCalled = true
	return m.normals, nil
}

// --- Fixtures ---

var testNow = time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC)

func testHourly() types.Series {
	s := types.NewSeries(types.CadenceHourly)
	for i := 0; i < 6; i++ {
		s.Append(types.TimePoint{
			Timestamp: testNow.Add(time.Duration(i-6) * time.Hour),
			Values: map[types.Field]float64{
				types.FieldTemperature: -2 + float64(i),
				types.FieldHumidity:    80,
			},
		})
	}
	return s
}

func testNormals() []types.ClimateNormal {
	normals := make([]types.ClimateNormal, 0, 14)
	for i := 0; i < 14; i++ {
		d := testNow.AddDate(0, 0, i)
		normals = append(normals, types.ClimateNormal{
			Month:          int(d.Month()),
			Day:            d.Day(),
			TemperatureMin: -6,
			TemperatureAvg: -1,
			TemperatureMax: 4,
			Precipitation:  1.2,
		})
	}
	return normals
}

func newTestWeatherPipeline(regions *mockRegionStore, weather *mockWeatherStore, climate *mockClimateStore, forecasts *mockForecastStore, provider *mockWeatherProvider) *WeatherPipeline {
	return NewWeatherPipeline(
		regions, weather, climate, forecasts, &mockRunStore{}, provider,
		WeatherPipelineConfig{
			Lookback:       48 * time.Hour,
			HorizonDays:    7,
			HistoryYears:   3,
			MaxConcurrency: 2,
		},
		fixedClock{now: testNow},
		observability.NewMetricsForTesting(),
		nil,
	)
}

// --- Tests ---

func TestWeatherPipeline_FullCycle(t *testing.T) {
	regions := &mockRegionStore{regions: []types.Region{{ID: "reg_1", Code: "chamonix"}}}
	weather := &mockWeatherStore{latestActual: testNow.Add(-time.Hour), hasActual: true}
	climate := &mockClimateStore{normals: testNormals()}
	forecasts := &mockForecastStore{}
	provider := &mockWeatherProvider{hourly: testHourly()}

	p := newTestWeatherPipeline(regions, weather, climate, forecasts, provider)
	require.NoError(t, p.Run(context.Background()))

	// Raw hourly, densified 15-minute, and quarter-hour projection.
	require.Len(t, weather.upserts, 3)

	raw := weather.upserts[0]
	assert.Equal(t, types.CadenceHourly, raw.series.Cadence)
	assert.False(t, raw.isForecast)

	dense := weather.upserts[1]
	assert.Equal(t, types.Cadence15Min, dense.series.Cadence)
	assert.False(t, dense.isForecast)
	// 6 hourly samples densify to 4n-3 quarter-hour points.
	assert.Equal(t, 21, dense.series.Len())

	projection := weather.upserts[2]
	assert.True(t, projection.isForecast)
	assert.Equal(t, 96, projection.series.Len())

	// Weekly forecast rows carry the region ID.
	require.Len(t, forecasts.upserted, 7)
	for _, fc := range forecasts.upserted {
		assert.Equal(t, "reg_1", fc.RegionID)
	}
}

func TestWeatherPipeline_FetchesNormalsOnlyWhenMissing(t *testing.T) {
	regions := &mockRegionStore{regions: []types.Region{{ID: "reg_1", Code: "chamonix"}}}
	weather := &mockWeatherStore{hasActual: true, latestActual: testNow}
	climate := &mockClimateStore{normals: testNormals()} // already stored
	forecasts := &mockForecastStore{}
	provider := &mockWeatherProvider{hourly: testHourly(), normals: testNormals()}

	p := newTestWeatherPipeline(regions, weather, climate, forecasts, provider)
	require.NoError(t, p.Run(context.Background()))

	assert.False(t, provider.normalsCalled, "stored normals must not be refetched")
	assert.Nil(t, climate.upsertedNorms)
}

func TestWeatherPipeline_SeedsNormalsOnFirstRun(t *testing.T) {
	regions := &mockRegionStore{regions: []types.Region{{ID: "reg_1", Code: "chamonix"}}}
	weather := &mockWeatherStore{hasActual: true, latestActual: testNow}
	climate := &mockClimateStore{} // empty store
	forecasts := &mockForecastStore{}
	provider := &mockWeatherProvider{hourly: testHourly(), normals: testNormals()}

	p := newTestWeatherPipeline(regions, weather, climate, forecasts, provider)
	require.NoError(t, p.Run(context.Background()))

	assert.True(t, provider.normalsCalled)
	assert.Len(t, climate.upsertedNorms, 14)
}

func TestWeatherPipeline_IsolatesRegionFailures(t *testing.T) {
	regions := &mockRegionStore{regions: []types.Region{
		{ID: "reg_1", Code: "broken"},
		{ID: "reg_2", Code: "chamonix"},
	}}
	weather := &mockWeatherStore{hasActual: true, latestActual: testNow}
	climate := &mockClimateStore{normals: testNormals()}
	forecasts := &mockForecastStore{}
	provider := &mockWeatherProvider{
		hourly:        testHourly(),
		hourlyErr:     errors.New("provider down"),
		failForRegion: "broken",
	}

	p := newTestWeatherPipeline(regions, weather, climate, forecasts, provider)
	metrics := p.metrics

	require.NoError(t, p.Run(context.Background()), "one failing region must not fail the run")

	// The healthy region still produced its three writes.
	for _, call := range weather.upserts {
		assert.Equal(t, "reg_2", call.regionID)
	}
	assert.Len(t, weather.upserts, 3)

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.ETLUnitErrors.WithLabelValues("weather")))
}

func TestWeatherPipeline_RegionListFailureFailsRun(t *testing.T) {
	regions := &mockRegionStore{err: errors.New("db offline")}
	p := newTestWeatherPipeline(regions, &mockWeatherStore{}, &mockClimateStore{}, &mockForecastStore{}, &mockWeatherProvider{})

	err := p.Run(context.Background())
	require.Error(t, err)
}

func TestMonthlyRollup(t *testing.T) {
	day := func(y int, m time.Month, d int, tMin, tAvg, tMax, precip float64) types.DailyAggregate {
		return types.DailyAggregate{
			Date:           time.Date(y, m, d, 0, 0, 0, 0, time.UTC),
			TemperatureMin: tMin,
			TemperatureAvg: tAvg,
			TemperatureMax: tMax,
			Precipitation:  precip,
		}
	}

	months := monthlyRollup([]types.DailyAggregate{
		day(2026, time.January, 30, -8, -3, 2, 4),
		day(2026, time.January, 31, -6, -1, 4, 0),
		day(2026, time.February, 1, -4, 1, 6, math.NaN()),
	})

	require.Len(t, months, 2)

	jan := months[0]
	assert.Equal(t, 2026, jan.Year)
	assert.Equal(t, 1, jan.Month)
	assert.Equal(t, -7.0, jan.TemperatureMin)
	assert.Equal(t, -2.0, jan.TemperatureAvg)
	assert.Equal(t, 3.0, jan.TemperatureMax)
	assert.Equal(t, 4.0, jan.Precipitation)

	feb := months[1]
	assert.Equal(t, 2, feb.Month)
	assert.Equal(t, -4.0, feb.TemperatureMin)
	// No precipitation readings in February: the rollup carries the missing
	// sentinel rather than a misleading zero.
	assert.True(t, math.IsNaN(feb.Precipitation))
}

func TestMonthlyRollup_Empty(t *testing.T) {
	assert.Empty(t, monthlyRollup(nil))
}
