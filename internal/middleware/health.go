package middleware

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// HealthChecker defines interface for health checking
type HealthChecker interface {
	Check(ctx context.Context) error
}

// CheckFunc adapts a plain function to HealthChecker.
type CheckFunc func(ctx context.Context) error

func (f CheckFunc) Check(ctx context.Context) error { return f(ctx) }

// DatabaseHealthChecker checks database health
type DatabaseHealthChecker struct {
	DB *sql.DB
}

func (d *DatabaseHealthChecker) Check(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return d.DB.PingContext(ctx)
}

// ModelStatus reports whether the analysis model client is usable.
type ModelStatus interface {
	Ready() bool
	ModelName() string
}

// HealthStatus represents the health status
type HealthStatus struct {
	Status    string                 `json:"status"`
	VertexAI  string                 `json:"vertex_ai"`
	Provider  string                 `json:"provider,omitempty"`
	Reason    string                 `json:"reason,omitempty"`
	Error     string                 `json:"error,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	Checks    map[string]CheckStatus `json:"checks,omitempty"`
}

// CheckStatus represents individual check status
type CheckStatus struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

const (
	StatusHealthy  = "healthy"
	StatusDegraded = "degraded"
	StatusError    = "error"
)

// HealthOptions configures HealthHandler.
type HealthOptions struct {
	Model ModelStatus
	// DegradedReason explains why the model is not ready, usually the
	// startup configuration error.
	DegradedReason string
	Checkers       map[string]HealthChecker
}

// HealthHandler always answers 200. The status field tells healthy,
// degraded and error apart.
func HealthHandler(opts HealthOptions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		health := evaluate(ctx, opts)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(health)
	}
}

func evaluate(ctx context.Context, opts HealthOptions) (health HealthStatus) {
	health = HealthStatus{
		Status:    StatusHealthy,
		VertexAI:  "initialized",
		Timestamp: time.Now(),
	}

	defer func() {
		if rec := recover(); rec != nil {
			slog.Error("health check panicked", "panic", rec)
			health = HealthStatus{
				Status:    StatusError,
				VertexAI:  "unknown",
				Error:     fmt.Sprint(rec),
				Timestamp: time.Now(),
			}
		}
	}()

	if opts.Model == nil || !opts.Model.Ready() {
		health.Status = StatusDegraded
		health.VertexAI = "not initialized"
		health.Reason = opts.DegradedReason
		if health.Reason == "" {
			health.Reason = "model client not initialized"
		}
	} else {
		health.Provider = opts.Model.ModelName()
	}

	if len(opts.Checkers) == 0 {
		return health
	}
	health.Checks = make(map[string]CheckStatus, len(opts.Checkers))
	for name, checker := range opts.Checkers {
		if err := checker.Check(ctx); err != nil {
			health.Status = StatusDegraded
			health.Checks[name] = CheckStatus{
				Status:  "unhealthy",
				Message: err.Error(),
			}
			continue
		}
		health.Checks[name] = CheckStatus{Status: StatusHealthy}
	}
	return health
}

// LivenessHandler creates a liveness check handler (simplest check)
func LivenessHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}
