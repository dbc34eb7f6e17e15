package core

import (
	"context"
	"net/http"
	"sync"
	"time"
)

// HealthProbe reports the health of a single subsystem.
type HealthProbe interface {
	// Name identifies the subsystem in the health response.
	Name() string
	// Check returns nil when the subsystem is healthy.
	Check(ctx context.Context) error
}

// ProbeFunc adapts a function to the HealthProbe interface.
type ProbeFunc struct {
	ProbeName string
	CheckFunc func(ctx context.Context) error
}

func (p ProbeFunc) Name() string                    { return p.ProbeName }
func (p ProbeFunc) Check(ctx context.Context) error { return p.CheckFunc(ctx) }

type healthStatus struct {
	Status     string            `json:"status"`
	Subsystems map[string]string `json:"subsystems,omitempty"`
}

// HandleHealth runs every registered probe concurrently with a short
// timeout and reports 200 when all pass, 503 otherwise.
func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	results := make(map[string]string, len(s.HealthProbes))
	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, probe := range s.HealthProbes {
		wg.Add(1)
		go func(p HealthProbe) {
			defer wg.Done()
			status := "ok"
			if err := p.Check(ctx); err != nil {
				status = err.Error()
			}
			mu.Lock()
			results[p.Name()] = status
			mu.Unlock()
		}(probe)
	}
	wg.Wait()

	healthy := true
	for _, status := range results {
		if status != "ok" {
			healthy = false
			break
		}
	}

	body := healthStatus{Status: "ok", Subsystems: results}
	code := http.StatusOK
	if !healthy {
		body.Status = "degraded"
		code = http.StatusServiceUnavailable
	}
	JSON(w, r, code, body)
}
