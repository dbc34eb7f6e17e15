package external

import (
	"context"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"slopecast/internal/config"
	"slopecast/internal/types"
)

func testRegion() types.Region {
	return types.Region{
		ID:        "reg_chamonix",
		Code:      "chamonix",
		Latitude:  45.9237,
		Longitude: 6.8694,
	}
}

func newMeteoTestClient(serverURL string) *MeteoClient {
	return NewMeteoClient(config.ProviderConfig{
		WeatherBaseURL: serverURL,
		WeatherAPIKey:  "wk-test",
		WeatherTimeout: 5 * time.Second,
	}, WithSleepFunc(noopSleep))
}

func TestMeteoClient_FetchHourly(t *testing.T) {
	var gotPath, gotKey string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("X-Api-Key")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"hours":[
			{"ts":"2026-02-10T09:00:00Z","temperature":-3.5,"precipitation":0.2},
			{"ts":"2026-02-10T10:00:00Z","temperature":-2.1,"humidity":81,"precipitation":null}
		]}`))
	}))
	defer server.Close()

	client := newMeteoTestClient(server.URL)
	s, err := client.FetchHourly(context.Background(), testRegion(),
		time.Date(2026, 2, 10, 9, 0, 0, 0, time.UTC),
		time.Date(2026, 2, 10, 11, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if gotPath != "/v1/observations/hourly" {
		t.Errorf("unexpected path %q", gotPath)
	}
	if gotKey != "wk-test" {
		t.Errorf("expected API key header, got %q", gotKey)
	}
	if s.Cadence != types.CadenceHourly {
		t.Errorf("expected hourly cadence, got %s", s.Cadence)
	}
	if s.Len() != 2 {
		t.Fatalf("expected 2 points, got %d", s.Len())
	}

	if v, ok := s.Points[0].Get(types.FieldTemperature); !ok || v != -3.5 {
		t.Errorf("first temperature = %v (present=%v), want -3.5", v, ok)
	}
	// A null measurement must be absent, not zero.
	if _, ok := s.Points[1].Get(types.FieldPrecipitation); ok {
		t.Error("null precipitation should be absent from the point")
	}
	if v, ok := s.Points[1].Get(types.FieldHumidity); !ok || v != 81 {
		t.Errorf("second humidity = %v (present=%v), want 81", v, ok)
	}
}

func TestMeteoClient_FetchDaily_MissingFieldsAreNaN(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"days":[
			{"date":"2026-02-10","temperature_min":-6,"temperature_max":2,"precipitation":1.5}
		]}`))
	}))
	defer server.Close()

	client := newMeteoTestClient(server.URL)
	days, err := client.FetchDaily(context.Background(), testRegion(),
		time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 2, 11, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if len(days) != 1 {
		t.Fatalf("expected 1 day, got %d", len(days))
	}

	d := days[0]
	if d.TemperatureMin != -6 || d.TemperatureMax != 2 {
		t.Errorf("unexpected temperature bounds: min=%v max=%v", d.TemperatureMin, d.TemperatureMax)
	}
	if !math.IsNaN(d.TemperatureAvg) {
		t.Errorf("omitted avg should be NaN, got %v", d.TemperatureAvg)
	}
	if !math.IsNaN(d.Snow) {
		t.Errorf("omitted snow should be NaN, got %v", d.Snow)
	}
}

func TestMeteoClient_FetchDaily_MalformedDate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"days":[{"date":"10/02/2026"}]}`))
	}))
	defer server.Close()

	client := newMeteoTestClient(server.URL)
	_, err := client.FetchDaily(context.Background(), testRegion(),
		time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 2, 11, 0, 0, 0, 0, time.UTC))
	if err == nil {
		t.Fatal("expected an error for malformed dates")
	}
}

func TestMeteoClient_FetchNormals(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"normals":[
			{"month":2,"day":10,"temperature_min":-7,"temperature_avg":-2,"temperature_max":3,"precipitation":2.2}
		]}`))
	}))
	defer server.Close()

	client := newMeteoTestClient(server.URL)
	normals, err := client.FetchNormals(context.Background(), testRegion())
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if len(normals) != 1 {
		t.Fatalf("expected 1 normal, got %d", len(normals))
	}
	if normals[0].Month != 2 || normals[0].Day != 10 {
		t.Errorf("unexpected key: month=%d day=%d", normals[0].Month, normals[0].Day)
	}
	if !normals[0].HasTemperatureBounds() {
		t.Error("normal with min and max should report temperature bounds")
	}
}

func TestGridMarketClient_FetchSeries(t *testing.T) {
	var gotZone, gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotZone = r.URL.Query().Get("zone")
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{"points":[
			{"ts":"2026-02-10T09:00:00Z","load_mw":1250.5,"price":42.1},
			{"ts":"2026-02-10T10:00:00Z","load_mw":1301.0,"price":45.9,"net_generation":980.2}
		]}`))
	}))
	defer server.Close()

	client := NewGridMarketClient(config.ProviderConfig{
		EnergyBaseURL: server.URL,
		EnergyAPIKey:  "ek-test",
		EnergyTimeout: 5 * time.Second,
	}, WithSleepFunc(noopSleep))

	zone := types.Zone{ID: "zone_1", Code: "alpine-north"}
	s, err := client.FetchSeries(context.Background(), zone,
		time.Date(2026, 2, 10, 9, 0, 0, 0, time.UTC),
		time.Date(2026, 2, 10, 11, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if gotZone != "alpine-north" {
		t.Errorf("expected zone query param, got %q", gotZone)
	}
	if gotAuth != "Bearer ek-test" {
		t.Errorf("expected bearer auth, got %q", gotAuth)
	}
	if s.Len() != 2 {
		t.Fatalf("expected 2 points, got %d", s.Len())
	}
	if v, ok := s.Points[0].Get(types.FieldLoad); !ok || v != 1250.5 {
		t.Errorf("first load = %v (present=%v), want 1250.5", v, ok)
	}
	if _, ok := s.Points[0].Get(types.FieldNetGeneration); ok {
		t.Error("omitted net generation should be absent")
	}
}
