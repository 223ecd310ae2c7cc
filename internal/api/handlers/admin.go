// Package handlers provides HTTP request handlers for the Sentinel API.
// This file implements administrative endpoints for system status and
// API key management.
package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"runtime"
	"time"

	"github.com/sentinelsec/sentinel/internal/auth"
	"github.com/sentinelsec/sentinel/internal/metrics"
)

var errKeyStoreUnavailable = errors.New("API key management requires a database")

// KeyStore manages issued API keys.
type KeyStore interface {
	Issue(ctx context.Context, req auth.IssueRequest) (*auth.GeneratedKey, error)
	List(ctx context.Context, includeInactive, includeExpired bool) ([]auth.KeyInfo, error)
	Revoke(ctx context.Context, identifier string) error
}

// JobCounter reports in-flight scan activity.
type JobCounter interface {
	ActiveJobs() int
}

// AdminHandler handles administrative API endpoints.
type AdminHandler struct {
	keys      KeyStore
	jobs      JobCounter
	database  DatabasePinger
	logger    *slog.Logger
	metrics   metrics.MetricsRegistry
	startTime time.Time
}

// NewAdminHandler creates a new admin handler.
func NewAdminHandler(
	keys KeyStore,
	jobs JobCounter,
	database DatabasePinger,
	logger *slog.Logger,
	metricsRegistry metrics.MetricsRegistry,
) *AdminHandler {
	return &AdminHandler{
		keys:      keys,
		jobs:      jobs,
		database:  database,
		logger:    logger.With("handler", "admin"),
		metrics:   metricsRegistry,
		startTime: time.Now(),
	}
}

// ServiceInfo contains service-related information.
type ServiceInfo struct {
	Name      string    `json:"name"`
	Version   string    `json:"version"`
	StartTime time.Time `json:"start_time"`
	Uptime    string    `json:"uptime"`
	PID       int       `json:"pid"`
}

// SystemInfo contains system-related information.
type SystemInfo struct {
	OS           string     `json:"os"`
	Architecture string     `json:"architecture"`
	CPUs         int        `json:"cpus"`
	GoVersion    string     `json:"go_version"`
	Memory       MemoryInfo `json:"memory"`
	Goroutines   int        `json:"goroutines"`
}

// MemoryInfo contains memory usage information.
type MemoryInfo struct {
	Allocated   uint64 `json:"allocated_bytes"`
	TotalAlloc  uint64 `json:"total_alloc_bytes"`
	System      uint64 `json:"system_bytes"`
	GCCycles    uint32 `json:"gc_cycles"`
	HeapObjects uint64 `json:"heap_objects"`
}

// DatabaseInfo contains database connection information.
type DatabaseInfo struct {
	Connected    bool   `json:"connected"`
	Driver       string `json:"driver"`
	ResponseTime string `json:"response_time"`
	Error        string `json:"error,omitempty"`
}

// ScanInfo contains scan activity information.
type ScanInfo struct {
	ActiveJobs int `json:"active_jobs"`
}

// AdminStatusResponse summarizes the running service.
type AdminStatusResponse struct {
	Service   ServiceInfo  `json:"service"`
	System    SystemInfo   `json:"system"`
	Database  DatabaseInfo `json:"database"`
	Scans     ScanInfo     `json:"scans"`
	Timestamp time.Time    `json:"timestamp"`
}

// CreateKeyRequest represents an API key issuance request.
type CreateKeyRequest struct {
	Name          string `json:"name" validate:"required,min=3,max=64"`
	ExpiresInDays *int   `json:"expires_in_days,omitempty" validate:"omitempty,min=1,max=3650"`
	Notes         string `json:"notes,omitempty" validate:"omitempty,max=1000"`
	CreatedBy     string `json:"created_by,omitempty" validate:"omitempty,max=255"`
}

// GetStatus handles GET /api/v1/admin/status.
func (h *AdminHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	h.logger.Debug("Admin status requested", "remote_addr", r.RemoteAddr)

	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	response := AdminStatusResponse{
		Service: ServiceInfo{
			Name:      "sentinel",
			Version:   getVersion(),
			StartTime: h.startTime,
			Uptime:    time.Since(h.startTime).String(),
			PID:       os.Getpid(),
		},
		System: SystemInfo{
			OS:           runtime.GOOS,
			Architecture: runtime.GOARCH,
			CPUs:         runtime.NumCPU(),
			GoVersion:    runtime.Version(),
			Memory: MemoryInfo{
				Allocated:   memStats.Alloc,
				TotalAlloc:  memStats.TotalAlloc,
				System:      memStats.Sys,
				GCCycles:    memStats.NumGC,
				HeapObjects: memStats.HeapObjects,
			},
			Goroutines: runtime.NumGoroutine(),
		},
		Database:  h.databaseInfo(r.Context()),
		Timestamp: time.Now().UTC(),
	}

	if h.jobs != nil {
		response.Scans.ActiveJobs = h.jobs.ActiveJobs()
	}

	recordHandlerMetric(h.metrics, "api_admin_status_requests_total", nil)

	writeJSON(w, r, http.StatusOK, response)
}

// CreateKey handles POST /api/v1/admin/keys. The response carries the
// only copy of the full key.
func (h *AdminHandler) CreateKey(w http.ResponseWriter, r *http.Request) {
	requestID := getRequestIDFromContext(r.Context())

	if h.keys == nil {
		writeError(w, r, http.StatusServiceUnavailable, errKeyStoreUnavailable)
		return
	}

	var req CreateKeyRequest
	if err := parseAndValidate(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}

	issue := auth.IssueRequest{
		Name:      req.Name,
		Notes:     req.Notes,
		CreatedBy: req.CreatedBy,
	}
	if req.ExpiresInDays != nil {
		expiresAt := time.Now().UTC().AddDate(0, 0, *req.ExpiresInDays)
		issue.ExpiresAt = &expiresAt
	}

	generated, err := h.keys.Issue(r.Context(), issue)
	if err != nil {
		status := statusForError(err)
		if status == http.StatusInternalServerError {
			h.logger.Error("Failed to issue API key",
				"request_id", requestID,
				"name", req.Name,
				"error", err)
		}
		writeError(w, r, status, err)
		return
	}

	h.logger.Info("API key issued",
		"request_id", requestID,
		"key_id", generated.Info.ID,
		"name", generated.Info.Name)

	recordHandlerMetric(h.metrics, "api_admin_keys_issued_total", nil)

	writeJSON(w, r, http.StatusCreated, generated)
}

// ListKeys handles GET /api/v1/admin/keys. Only key metadata is
// returned; hashes never leave the auth store.
func (h *AdminHandler) ListKeys(w http.ResponseWriter, r *http.Request) {
	if h.keys == nil {
		writeError(w, r, http.StatusServiceUnavailable, errKeyStoreUnavailable)
		return
	}

	includeInactive, err := getQueryParamBool(r, "include_inactive")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}
	includeExpired, err := getQueryParamBool(r, "include_expired")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}

	keys, err := h.keys.List(r.Context(),
		includeInactive != nil && *includeInactive,
		includeExpired != nil && *includeExpired)
	if err != nil {
		handleDatabaseError(w, r, err, "list", "API keys", h.logger)
		return
	}

	recordHandlerMetric(h.metrics, "api_admin_keys_listed_total", nil)

	writeJSON(w, r, http.StatusOK, map[string]interface{}{
		"count": len(keys),
		"keys":  keys,
	})
}

// RevokeKey handles DELETE /api/v1/admin/keys/{id}. Accepts a key ID
// or a prefix fragment.
func (h *AdminHandler) RevokeKey(w http.ResponseWriter, r *http.Request) {
	requestID := getRequestIDFromContext(r.Context())

	if h.keys == nil {
		writeError(w, r, http.StatusServiceUnavailable, errKeyStoreUnavailable)
		return
	}

	identifier, err := extractStringFromPath(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}

	if err := h.keys.Revoke(r.Context(), identifier); err != nil {
		handleDatabaseError(w, r, err, "revoke", "API key", h.logger)
		return
	}

	h.logger.Info("API key revoked",
		"request_id", requestID,
		"identifier", identifier)

	recordHandlerMetric(h.metrics, "api_admin_keys_revoked_total", nil)

	w.WriteHeader(http.StatusNoContent)
}

// databaseInfo checks database connectivity with timing.
func (h *AdminHandler) databaseInfo(ctx context.Context) DatabaseInfo {
	info := DatabaseInfo{Driver: "postgres"}

	if h.database == nil {
		info.Error = "database not configured"
		return info
	}

	start := time.Now()
	if err := h.database.PingContext(ctx); err != nil {
		info.Error = err.Error()
		info.ResponseTime = time.Since(start).String()
		return info
	}

	info.Connected = true
	info.ResponseTime = time.Since(start).String()
	return info
}
