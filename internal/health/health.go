// Package health serves the process health and job status endpoints used
// while the scheduler runs.
package health

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/rdce-vr/Local-Track/internal/scheduler"
	"github.com/rdce-vr/Local-Track/internal/version"
)

const checkTimeout = 5 * time.Second

// Pinger is a dependency that can report reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// JobLister reports scheduled jobs.
type JobLister interface {
	Jobs() []scheduler.JobInfo
}

// Health status values.
const (
	StatusHealthy   = "healthy"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"
)

// Report is the /health response body.
type Report struct {
	Status     string         `json:"status"`
	Version    string         `json:"version"`
	Components map[string]any `json:"components"`
}

// NewHandler returns a mux serving /health and /jobs. cache may be nil
// when the Redis read model is disabled.
func NewHandler(db Pinger, cache Pinger, jobs JobLister, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), checkTimeout)
		defer cancel()

		health := Report{
			Status:     StatusHealthy,
			Version:    version.Version,
			Components: make(map[string]any),
		}

		// Store
		if err := db.Ping(ctx); err != nil {
			health.Status = StatusUnhealthy
			health.Components["store"] = map[string]string{
				"status": "disconnected",
				"error":  err.Error(),
			}
		} else {
			health.Components["store"] = "connected"
		}

		// Cache
		if cache != nil {
			if err := cache.Ping(ctx); err != nil {
				degrade(&health)
				health.Components["cache"] = map[string]string{
					"status": "disconnected",
					"error":  err.Error(),
				}
			} else {
				health.Components["cache"] = "connected"
			}
		}

		// Jobs
		failing := 0
		for _, job := range jobs.Jobs() {
			if job.LastError != "" {
				failing++
			}
		}
		health.Components["scheduler"] = map[string]int{"failing_jobs": failing}
		if failing > 0 {
			degrade(&health)
		}

		status := http.StatusOK
		if health.Status == StatusUnhealthy {
			status = http.StatusServiceUnavailable
		}
		writeJSON(w, status, health, logger)
	})

	mux.HandleFunc("/jobs", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, jobs.Jobs(), logger)
	})

	return mux
}

func degrade(r *Report) {
	if r.Status == StatusHealthy {
		r.Status = StatusDegraded
	}
}

func writeJSON(w http.ResponseWriter, status int, v any, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("failed to write health response", "error", err)
	}
}
