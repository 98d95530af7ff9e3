package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/osse101/DuelBot_Go/internal/database"
)

const readinessTimeout = 2 * time.Second

// HealthResponse represents the response for health endpoints
type HealthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// HealthChecker is an optional dependency probed by readiness
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// CheckFunc adapts a plain function to HealthChecker
type CheckFunc func(ctx context.Context) error

func (f CheckFunc) Ping(ctx context.Context) error { return f(ctx) }

// NamedCheck pairs a readiness probe with the name reported on failure
type NamedCheck struct {
	Name    string
	Checker HealthChecker
}

// HandleHealthz provides a basic liveness check
// GET /healthz
func HandleHealthz() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
	}
}

// HandleReadyz reports ready once the database and every extra dependency answer a ping.
// GET /readyz
func HandleReadyz(dbPool database.Pool, extra ...NamedCheck) http.HandlerFunc {
	checks := append([]NamedCheck{{Name: "database", Checker: dbPool}}, extra...)
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()

		for _, c := range checks {
			if c.Checker == nil {
				continue
			}
			if err := c.Checker.Ping(ctx); err != nil {
				slog.Error("Readiness check failed", "dependency", c.Name, "error", err)
				respondJSON(w, http.StatusServiceUnavailable, HealthResponse{
					Status:  "unavailable",
					Message: c.Name + " connection failed",
				})
				return
			}
		}

		respondJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
	}
}
