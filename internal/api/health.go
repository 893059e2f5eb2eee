package api

import (
	"context"
	"net/http"
	"os/exec"
	"time"
)

// HealthStatus represents the overall health status.
type HealthStatus string

const (
	HealthStatusHealthy   HealthStatus = "healthy"
	HealthStatusDegraded  HealthStatus = "degraded"
	HealthStatusUnhealthy HealthStatus = "unhealthy"
)

// HealthCheck represents an individual health check.
type HealthCheck struct {
	Status  HealthStatus `json:"status"`
	Message string       `json:"message,omitempty"`
}

// HealthResponse is the /healthz body.
type HealthResponse struct {
	Status    HealthStatus           `json:"status"`
	Timestamp string                 `json:"timestamp"`
	Checks    map[string]HealthCheck `json:"checks"`
}

// handleHealth reports store connectivity and encoder backend presence.
// A missing encoder is degraded, not down: verification of already-issued
// challenges still works without it.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	checks := map[string]HealthCheck{
		"database": s.checkDatabase(r.Context()),
		"encoder":  checkEncoder(),
	}

	overall := HealthStatusHealthy
	if checks["encoder"].Status != HealthStatusHealthy {
		overall = HealthStatusDegraded
	}
	if checks["database"].Status == HealthStatusUnhealthy {
		overall = HealthStatusUnhealthy
	}

	status := http.StatusOK
	if overall == HealthStatusUnhealthy {
		status = http.StatusServiceUnavailable
	}
	s.writeJSON(w, status, HealthResponse{
		Status:    overall,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    checks,
	})
}

func (s *Server) checkDatabase(ctx context.Context) HealthCheck {
	type pinger interface {
		Ping(ctx context.Context) error
	}
	p, ok := s.db.(pinger)
	if !ok {
		return HealthCheck{Status: HealthStatusHealthy, Message: "store does not support ping"}
	}
	if err := p.Ping(ctx); err != nil {
		return HealthCheck{Status: HealthStatusUnhealthy, Message: err.Error()}
	}
	return HealthCheck{Status: HealthStatusHealthy}
}

func checkEncoder() HealthCheck {
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		return HealthCheck{Status: HealthStatusDegraded, Message: "ffmpeg not found on PATH"}
	}
	return HealthCheck{Status: HealthStatusHealthy}
}
