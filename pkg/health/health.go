// Package health serves liveness and readiness probes.
package health

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"
)

const (
	StatusHealthy   = "healthy"
	StatusUnhealthy = "unhealthy"

	defaultTimeout = 5 * time.Second
)

// CheckFunc reports whether a dependency is usable.
type CheckFunc func(ctx context.Context) error

// Checks maps a dependency name to its probe.
type Checks map[string]CheckFunc

// Report is the readiness result.
type Report struct {
	Checks map[string]Result `json:"checks,omitempty"`
	Status string            `json:"status"`
}

// Result is the outcome of one check.
type Result struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// Run executes all checks concurrently under a shared timeout.
func Run(ctx context.Context, checks Checks, timeout time.Duration, log *slog.Logger) Report {
	if len(checks) == 0 {
		return Report{Status: StatusHealthy}
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var (
		mu  sync.Mutex
		wg  sync.WaitGroup
		rep = Report{Status: StatusHealthy, Checks: make(map[string]Result, len(checks))}
	)
	for name, check := range checks {
		wg.Go(func() {
			res := Result{Status: StatusHealthy}
			if err := check(ctx); err != nil {
				res = Result{Status: StatusUnhealthy, Error: err.Error()}
				if log != nil {
					log.WarnContext(ctx, "health check failed", slog.String("check", name), slog.String("error", err.Error()))
				}
			}

			mu.Lock()
			defer mu.Unlock()
			rep.Checks[name] = res
			if res.Status == StatusUnhealthy {
				rep.Status = StatusUnhealthy
			}
		})
	}
	wg.Wait()
	return rep
}

// LivenessHandler always answers 200 while the process runs.
func LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		write(w, r, http.StatusOK, Report{Status: StatusHealthy})
	}
}

// ReadinessHandler answers 200 when every check passes and 503 otherwise.
func ReadinessHandler(checks Checks, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rep := Run(r.Context(), checks, defaultTimeout, log)
		status := http.StatusOK
		if rep.Status != StatusHealthy {
			status = http.StatusServiceUnavailable
		}
		write(w, r, status, rep)
	}
}

func write(w http.ResponseWriter, r *http.Request, status int, rep Report) {
	if r.URL.Query().Get("format") == "json" || strings.Contains(r.Header.Get("Accept"), "application/json") {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(rep)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	if status == http.StatusOK {
		_, _ = w.Write([]byte("OK"))
		return
	}
	_, _ = w.Write([]byte("Service Unavailable"))
}
