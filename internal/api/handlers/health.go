// Package handlers provides HTTP request handlers for the Sentinel API.
// This file implements health check and version endpoints.
package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"runtime"
	"time"

	"github.com/sentinelsec/sentinel/internal/metrics"
)

// DatabasePinger defines the interface for database health checking.
type DatabasePinger interface {
	PingContext(ctx context.Context) error
}

// Timeout constants.
const (
	healthCheckTimeout = 5 * time.Second
	readinessTimeout   = 10 * time.Second
)

// Status constants.
const (
	StatusHealthy       = "healthy"
	StatusUnhealthy     = "unhealthy"
	StatusDegraded      = "degraded"
	StatusNotConfigured = "not configured"
)

// HealthHandler handles health check and version endpoints.
type HealthHandler struct {
	database  DatabasePinger
	logger    *slog.Logger
	metrics   metrics.MetricsRegistry
	startTime time.Time
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(
	database DatabasePinger,
	logger *slog.Logger,
	metricsRegistry metrics.MetricsRegistry,
) *HealthHandler {
	return &HealthHandler{
		database:  database,
		logger:    logger.With("handler", "health"),
		metrics:   metricsRegistry,
		startTime: time.Now(),
	}
}

// HealthResponse represents a health check response.
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Uptime    string            `json:"uptime"`
	Checks    map[string]string `json:"checks"`
}

// LivenessResponse represents a simple liveness check response.
type LivenessResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Uptime    string    `json:"uptime"`
}

// ReadinessResponse represents a readiness check response.
type ReadinessResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Reason    string    `json:"reason,omitempty"`
}

// VersionResponse represents version information.
type VersionResponse struct {
	Version   string    `json:"version"`
	Commit    string    `json:"commit"`
	BuildTime string    `json:"build_time"`
	GoVersion string    `json:"go_version"`
	Timestamp time.Time `json:"timestamp"`
}

// Health performs a basic health check.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	h.logger.Debug("Health check requested", "remote_addr", r.RemoteAddr)

	response := HealthResponse{
		Status:    StatusHealthy,
		Timestamp: time.Now().UTC(),
		Uptime:    time.Since(h.startTime).String(),
		Checks:    make(map[string]string),
	}

	// Check database connectivity
	if h.database != nil {
		if err := h.database.PingContext(ctx); err != nil {
			response.Status = StatusUnhealthy
			response.Checks["database"] = "failed: " + err.Error()
			h.logger.Warn("Database health check failed", "error", err)
		} else {
			response.Checks["database"] = "ok"
		}
	} else {
		response.Checks["database"] = StatusNotConfigured
	}

	// A goroutine explosion usually means a scan path is leaking.
	const maxGoroutines = 1000
	if runtime.NumGoroutine() > maxGoroutines {
		if response.Status == StatusHealthy {
			response.Status = StatusDegraded
		}
		response.Checks["goroutines"] = "high count"
	} else {
		response.Checks["goroutines"] = "ok"
	}

	statusCode := http.StatusOK
	if response.Status == StatusUnhealthy {
		statusCode = http.StatusServiceUnavailable
	}

	writeJSON(w, r, statusCode, response)

	if h.metrics != nil {
		h.metrics.Counter("api_health_checks_total", metrics.Labels{
			"status": response.Status,
		})
	}
}

// Liveness performs a simple liveness check without dependencies.
func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	h.logger.Debug("Liveness check requested", "remote_addr", r.RemoteAddr)

	response := LivenessResponse{
		Status:    "alive",
		Timestamp: time.Now().UTC(),
		Uptime:    time.Since(h.startTime).String(),
	}

	writeJSON(w, r, http.StatusOK, response)

	if h.metrics != nil {
		h.metrics.Counter("api_liveness_checks_total", nil)
	}
}

// Readiness reports whether the service can take traffic. The database
// is the only hard dependency; scans queue behind it.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
	defer cancel()

	h.logger.Debug("Readiness check requested", "remote_addr", r.RemoteAddr)

	response := ReadinessResponse{
		Status:    "ready",
		Timestamp: time.Now().UTC(),
	}
	statusCode := http.StatusOK

	if h.database == nil {
		response.Status = "not ready"
		response.Reason = "database not configured"
		statusCode = http.StatusServiceUnavailable
	} else if err := h.database.PingContext(ctx); err != nil {
		response.Status = "not ready"
		response.Reason = "database unreachable"
		statusCode = http.StatusServiceUnavailable
		h.logger.Warn("Readiness check failed", "error", err)
	}

	writeJSON(w, r, statusCode, response)

	if h.metrics != nil {
		h.metrics.Counter("api_readiness_checks_total", metrics.Labels{
			"status": response.Status,
		})
	}
}

// Version provides version information.
func (h *HealthHandler) Version(w http.ResponseWriter, r *http.Request) {
	h.logger.Debug("Version requested", "remote_addr", r.RemoteAddr)

	response := VersionResponse{
		Version:   getVersion(),
		Commit:    getCommit(),
		BuildTime: getBuildTime(),
		GoVersion: runtime.Version(),
		Timestamp: time.Now().UTC(),
	}

	writeJSON(w, r, http.StatusOK, response)

	if h.metrics != nil {
		h.metrics.Counter("api_version_requests_total", nil)
	}
}

// Build information, set via ldflags.
var (
	version   = "dev"
	commit    = "none"
	buildTime = "unknown"
)

func getVersion() string {
	return version
}

func getCommit() string {
	return commit
}

func getBuildTime() string {
	return buildTime
}

// SetBuildInfo sets build information (called by main package).
func SetBuildInfo(v, c, bt string) {
	version = v
	commit = c
	buildTime = bt
}
