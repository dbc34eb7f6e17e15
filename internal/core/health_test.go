package core

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// mockHealthProbe implements HealthProbe for testing.
type mockHealthProbe struct {
	name     string
	checkErr error
	// delay simulates slow subsystems; Check blocks for this duration.
	delay time.Duration
}

func (m *mockHealthProbe) Name() string { return m.name }

func (m *mockHealthProbe) Check(ctx context.Context) error {
	if m.delay > 0 {
		select {
		case <-time.After(m.delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return m.checkErr
}

func runHealth(t *testing.T, probes []HealthProbe) (*httptest.ResponseRecorder, healthStatus) {
	t.Helper()
	srv := newTestServer(t)
	srv.HealthProbes = probes

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	srv.HandleHealth(rec, req)

	var resp healthStatus
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return rec, resp
}

func TestHandleHealth_AllHealthy(t *testing.T) {
	rec, resp := runHealth(t, []HealthProbe{
		&mockHealthProbe{name: "database"},
		&mockHealthProbe{name: "scheduler"},
	})

	if rec.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rec.Code)
	}
	if resp.Status != "ok" {
		t.Errorf("expected status ok, got %q", resp.Status)
	}
	if resp.Subsystems["database"] != "ok" || resp.Subsystems["scheduler"] != "ok" {
		t.Errorf("expected all subsystems ok, got %v", resp.Subsystems)
	}
}

func TestHandleHealth_FailingProbeReturns503(t *testing.T) {
	rec, resp := runHealth(t, []HealthProbe{
		&mockHealthProbe{name: "database", checkErr: errors.New("connection refused")},
		&mockHealthProbe{name: "scheduler"},
	})

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected status 503, got %d", rec.Code)
	}
	if resp.Status != "degraded" {
		t.Errorf("expected status degraded, got %q", resp.Status)
	}
	if resp.Subsystems["database"] != "connection refused" {
		t.Errorf("expected failing subsystem detail, got %q", resp.Subsystems["database"])
	}
	if resp.Subsystems["scheduler"] != "ok" {
		t.Errorf("expected healthy subsystem to still report ok, got %q", resp.Subsystems["scheduler"])
	}
}

func TestHandleHealth_SlowProbeTimesOut(t *testing.T) {
	rec, resp := runHealth(t, []HealthProbe{
		&mockHealthProbe{name: "database", delay: 5 * time.Second},
	})

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected status 503, got %d", rec.Code)
	}
	if resp.Subsystems["database"] == "ok" {
		t.Error("expected timed-out probe to report an error")
	}
}

func TestHandleHealth_NoProbes(t *testing.T) {
	rec, resp := runHealth(t, nil)

	if rec.Code != http.StatusOK {
		t.Errorf("expected status 200 with no probes, got %d", rec.Code)
	}
	if resp.Status != "ok" {
		t.Errorf("expected status ok, got %q", resp.Status)
	}
}

func TestProbeFunc(t *testing.T) {
	sentinel := errors.New("boom")
	p := ProbeFunc{ProbeName: "thing", CheckFunc: func(ctx context.Context) error { return sentinel }}

	if p.Name() != "thing" {
		t.Errorf("unexpected name %q", p.Name())
	}
	if err := p.Check(context.Background()); !errors.Is(err, sentinel) {
		t.Errorf("expected sentinel error, got %v", err)
	}
}
