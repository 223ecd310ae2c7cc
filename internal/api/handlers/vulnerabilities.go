package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/sentinelsec/sentinel/internal/db"
	"github.com/sentinelsec/sentinel/internal/metrics"
)

// VulnerabilityStore reads and updates vulnerability findings.
type VulnerabilityStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*db.Vulnerability, error)
	List(ctx context.Context, filters db.VulnerabilityFilters, offset, limit int) ([]*db.Vulnerability, int64, error)
	Resolve(ctx context.Context, id uuid.UUID) error
	SetAnalysis(ctx context.Context, id uuid.UUID, analysis string) error
}

// Analyst produces AI assessments for scan artifacts. Implementations
// degrade to placeholder text instead of returning errors.
type Analyst interface {
	Enabled() bool
	AnalyzeVulnerability(ctx context.Context, vuln *db.Vulnerability, device *db.Device) string
	RecommendForNetwork(ctx context.Context, devices []*db.Device, vulns []*db.Vulnerability) string
}

// VulnerabilityHandler handles vulnerability API endpoints.
type VulnerabilityHandler struct {
	vulnerabilities VulnerabilityStore
	devices         DeviceStore
	analyst         Analyst
	logger          *slog.Logger
	metrics         metrics.MetricsRegistry
}

// NewVulnerabilityHandler creates a new vulnerability handler.
func NewVulnerabilityHandler(
	vulnerabilities VulnerabilityStore,
	devices DeviceStore,
	analyst Analyst,
	logger *slog.Logger,
	metricsRegistry metrics.MetricsRegistry,
) *VulnerabilityHandler {
	return &VulnerabilityHandler{
		vulnerabilities: vulnerabilities,
		devices:         devices,
		analyst:         analyst,
		logger:          logger.With("handler", "vulnerabilities"),
		metrics:         metricsRegistry,
	}
}

// ListVulnerabilities handles GET /api/v1/vulnerabilities.
func (h *VulnerabilityHandler) ListVulnerabilities(w http.ResponseWriter, r *http.Request) {
	resolved, err := getQueryParamBool(r, "resolved")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}

	var deviceID *uuid.UUID
	if raw := r.URL.Query().Get("device_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, err)
			return
		}
		deviceID = &id
	}

	op := &ListOperation[*db.Vulnerability, db.VulnerabilityFilters]{
		EntityType: "vulnerabilities",
		MetricName: "api_vulnerabilities_listed_total",
		Logger:     h.logger,
		Metrics:    h.metrics,
		GetFilters: func(r *http.Request) db.VulnerabilityFilters {
			return db.VulnerabilityFilters{
				Severity: r.URL.Query().Get("severity"),
				DeviceID: deviceID,
				Resolved: resolved,
			}
		},
		ListFromDB: h.vulnerabilities.List,
		ToResponse: func(vuln *db.Vulnerability) interface{} { return vuln },
	}
	op.Execute(w, r)
}

// GetVulnerability handles GET /api/v1/vulnerabilities/{id}.
func (h *VulnerabilityHandler) GetVulnerability(w http.ResponseWriter, r *http.Request) {
	id, err := extractUUIDFromPath(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}

	vuln, err := h.vulnerabilities.GetByID(r.Context(), id)
	if err != nil {
		handleDatabaseError(w, r, err, "get", "vulnerability", h.logger)
		return
	}

	writeJSON(w, r, http.StatusOK, vuln)
}

// ResolveVulnerability handles PATCH /api/v1/vulnerabilities/{id}/resolve.
func (h *VulnerabilityHandler) ResolveVulnerability(w http.ResponseWriter, r *http.Request) {
	requestID := getRequestIDFromContext(r.Context())

	id, err := extractUUIDFromPath(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}

	if err := h.vulnerabilities.Resolve(r.Context(), id); err != nil {
		handleDatabaseError(w, r, err, "resolve", "vulnerability", h.logger)
		return
	}

	h.logger.Info("Vulnerability resolved",
		"request_id", requestID,
		"vulnerability_id", id)

	recordHandlerMetric(h.metrics, "api_vulnerabilities_resolved_total", nil)

	vuln, err := h.vulnerabilities.GetByID(r.Context(), id)
	if err != nil {
		handleDatabaseError(w, r, err, "get", "vulnerability", h.logger)
		return
	}

	writeJSON(w, r, http.StatusOK, vuln)
}

// AnalyzeVulnerability handles POST /api/v1/vulnerabilities/{id}/analyze.
// The analyst degrades to placeholder text when unconfigured, so the
// endpoint always produces an analysis.
func (h *VulnerabilityHandler) AnalyzeVulnerability(w http.ResponseWriter, r *http.Request) {
	requestID := getRequestIDFromContext(r.Context())

	id, err := extractUUIDFromPath(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}

	vuln, err := h.vulnerabilities.GetByID(r.Context(), id)
	if err != nil {
		handleDatabaseError(w, r, err, "get", "vulnerability", h.logger)
		return
	}

	device, err := h.devices.GetByID(r.Context(), vuln.DeviceID)
	if err != nil {
		handleDatabaseError(w, r, err, "get", "device", h.logger)
		return
	}

	analysis := h.analyst.AnalyzeVulnerability(r.Context(), vuln, device)

	if err := h.vulnerabilities.SetAnalysis(r.Context(), id, analysis); err != nil {
		handleDatabaseError(w, r, err, "update", "vulnerability", h.logger)
		return
	}

	h.logger.Info("Vulnerability analyzed",
		"request_id", requestID,
		"vulnerability_id", id,
		"ai_enabled", h.analyst.Enabled())

	recordHandlerMetric(h.metrics, "api_vulnerabilities_analyzed_total", map[string]string{
		"ai_enabled": boolLabel(h.analyst.Enabled()),
	})

	vuln.AIAnalysis = &analysis
	writeJSON(w, r, http.StatusOK, vuln)
}

// boolLabel renders a bool as a metric label value.
func boolLabel(v bool) string {
	if v {
		return "true"
	}
	return "false"
}
