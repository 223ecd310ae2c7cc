package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"

	"github.com/google/uuid"

	"github.com/sentinelsec/sentinel/internal/db"
	"github.com/sentinelsec/sentinel/internal/metrics"
)

// AlertStore reads and writes threat alerts.
type AlertStore interface {
	Create(ctx context.Context, alert *db.ThreatAlert) error
	GetByID(ctx context.Context, id uuid.UUID) (*db.ThreatAlert, error)
	List(ctx context.Context, filters db.ThreatAlertFilters, offset, limit int) ([]*db.ThreatAlert, int64, error)
	Acknowledge(ctx context.Context, id uuid.UUID) error
	Resolve(ctx context.Context, id uuid.UUID) error
	SetRecommendation(ctx context.Context, id uuid.UUID, recommendation string) error
}

// AlertHandler handles threat alert API endpoints.
type AlertHandler struct {
	alerts          AlertStore
	devices         DeviceStore
	vulnerabilities DeviceVulnerabilityStore
	analyst         Analyst
	logger          *slog.Logger
	metrics         metrics.MetricsRegistry
}

// NewAlertHandler creates a new alert handler.
func NewAlertHandler(
	alerts AlertStore,
	devices DeviceStore,
	vulnerabilities DeviceVulnerabilityStore,
	analyst Analyst,
	logger *slog.Logger,
	metricsRegistry metrics.MetricsRegistry,
) *AlertHandler {
	return &AlertHandler{
		alerts:          alerts,
		devices:         devices,
		vulnerabilities: vulnerabilities,
		analyst:         analyst,
		logger:          logger.With("handler", "alerts"),
		metrics:         metricsRegistry,
	}
}

// CreateAlertRequest represents a manually raised threat alert.
type CreateAlertRequest struct {
	Title           string `json:"title" validate:"required,max=500"`
	Description     string `json:"description" validate:"required"`
	ThreatLevel     string `json:"threat_level" validate:"required,oneof=info low medium high critical"`
	DeviceID        string `json:"device_id,omitempty" validate:"omitempty,uuid"`
	VulnerabilityID string `json:"vulnerability_id,omitempty" validate:"omitempty,uuid"`
	SourceIP        string `json:"source_ip,omitempty" validate:"omitempty,ip"`
	TargetIP        string `json:"target_ip,omitempty" validate:"omitempty,ip"`
	AttackType      string `json:"attack_type,omitempty" validate:"omitempty,max=100"`
}

// ListAlerts handles GET /api/v1/alerts.
func (h *AlertHandler) ListAlerts(w http.ResponseWriter, r *http.Request) {
	resolved, err := getQueryParamBool(r, "resolved")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}

	op := &ListOperation[*db.ThreatAlert, db.ThreatAlertFilters]{
		EntityType: "threat alerts",
		MetricName: "api_alerts_listed_total",
		Logger:     h.logger,
		Metrics:    h.metrics,
		GetFilters: func(r *http.Request) db.ThreatAlertFilters {
			return db.ThreatAlertFilters{
				ThreatLevel: r.URL.Query().Get("threat_level"),
				Resolved:    resolved,
			}
		},
		ListFromDB: h.alerts.List,
		ToResponse: func(alert *db.ThreatAlert) interface{} { return alert },
	}
	op.Execute(w, r)
}

// GetAlert handles GET /api/v1/alerts/{id}.
func (h *AlertHandler) GetAlert(w http.ResponseWriter, r *http.Request) {
	id, err := extractUUIDFromPath(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}

	alert, err := h.alerts.GetByID(r.Context(), id)
	if err != nil {
		handleDatabaseError(w, r, err, "get", "threat alert", h.logger)
		return
	}

	writeJSON(w, r, http.StatusOK, alert)
}

// CreateAlert handles POST /api/v1/alerts. Most alerts come from the
// scan pipeline; this endpoint ingests external detections, such as
// IDS events forwarded by an integration.
func (h *AlertHandler) CreateAlert(w http.ResponseWriter, r *http.Request) {
	requestID := getRequestIDFromContext(r.Context())

	var req CreateAlertRequest
	if err := parseAndValidate(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}

	alert, err := alertFromRequest(&req)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}

	if err := h.alerts.Create(r.Context(), alert); err != nil {
		handleDatabaseError(w, r, err, "create", "threat alert", h.logger)
		return
	}

	h.logger.Info("Threat alert created",
		"request_id", requestID,
		"alert_id", alert.ID,
		"threat_level", alert.ThreatLevel)

	recordHandlerMetric(h.metrics, "api_alerts_created_total", map[string]string{
		"threat_level": alert.ThreatLevel,
	})

	writeJSON(w, r, http.StatusCreated, alert)
}

// AcknowledgeAlert handles PATCH /api/v1/alerts/{id}/acknowledge.
func (h *AlertHandler) AcknowledgeAlert(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "acknowledge", h.alerts.Acknowledge)
}

// ResolveAlert handles PATCH /api/v1/alerts/{id}/resolve.
func (h *AlertHandler) ResolveAlert(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "resolve", h.alerts.Resolve)
}

// transition applies a state change and returns the updated alert.
func (h *AlertHandler) transition(
	w http.ResponseWriter,
	r *http.Request,
	operation string,
	apply func(ctx context.Context, id uuid.UUID) error,
) {
	requestID := getRequestIDFromContext(r.Context())

	id, err := extractUUIDFromPath(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}

	if err := apply(r.Context(), id); err != nil {
		handleDatabaseError(w, r, err, operation, "threat alert", h.logger)
		return
	}

	h.logger.Info("Threat alert state changed",
		"request_id", requestID,
		"alert_id", id,
		"operation", operation)

	recordHandlerMetric(h.metrics, "api_alerts_transitions_total", map[string]string{
		"operation": operation,
	})

	alert, err := h.alerts.GetByID(r.Context(), id)
	if err != nil {
		handleDatabaseError(w, r, err, "get", "threat alert", h.logger)
		return
	}

	writeJSON(w, r, http.StatusOK, alert)
}

// RecommendAlert handles POST /api/v1/alerts/{id}/recommend. The
// recommendation is built from the alert's device and that device's
// findings when they are linked.
func (h *AlertHandler) RecommendAlert(w http.ResponseWriter, r *http.Request) {
	requestID := getRequestIDFromContext(r.Context())

	id, err := extractUUIDFromPath(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}

	alert, err := h.alerts.GetByID(r.Context(), id)
	if err != nil {
		handleDatabaseError(w, r, err, "get", "threat alert", h.logger)
		return
	}

	var devices []*db.Device
	var vulns []*db.Vulnerability
	if alert.DeviceID != nil {
		device, err := h.devices.GetByID(r.Context(), *alert.DeviceID)
		if err != nil {
			handleDatabaseError(w, r, err, "get", "device", h.logger)
			return
		}
		devices = append(devices, device)

		deviceVulns, err := h.vulnerabilities.GetByDevice(r.Context(), device.ID)
		if err != nil {
			handleDatabaseError(w, r, err, "list", "device vulnerabilities", h.logger)
			return
		}
		vulns = deviceVulns
	}

	recommendation := h.analyst.RecommendForNetwork(r.Context(), devices, vulns)

	if err := h.alerts.SetRecommendation(r.Context(), id, recommendation); err != nil {
		handleDatabaseError(w, r, err, "update", "threat alert", h.logger)
		return
	}

	h.logger.Info("Threat alert recommendation generated",
		"request_id", requestID,
		"alert_id", id,
		"ai_enabled", h.analyst.Enabled())

	recordHandlerMetric(h.metrics, "api_alerts_recommended_total", nil)

	alert.AIRecommendation = &recommendation
	writeJSON(w, r, http.StatusOK, alert)
}

// alertFromRequest builds an alert record from an ingestion request.
func alertFromRequest(req *CreateAlertRequest) (*db.ThreatAlert, error) {
	alert := &db.ThreatAlert{
		ID:          uuid.New(),
		Title:       req.Title,
		Description: req.Description,
		ThreatLevel: req.ThreatLevel,
	}

	if req.DeviceID != "" {
		deviceID, err := uuid.Parse(req.DeviceID)
		if err != nil {
			return nil, fmt.Errorf("invalid device_id: %s", req.DeviceID)
		}
		alert.DeviceID = &deviceID
	}
	if req.VulnerabilityID != "" {
		vulnID, err := uuid.Parse(req.VulnerabilityID)
		if err != nil {
			return nil, fmt.Errorf("invalid vulnerability_id: %s", req.VulnerabilityID)
		}
		alert.VulnerabilityID = &vulnID
	}
	if req.SourceIP != "" {
		ip := net.ParseIP(req.SourceIP)
		if ip == nil {
			return nil, fmt.Errorf("invalid source_ip: %s", req.SourceIP)
		}
		alert.SourceIP = &db.IPAddr{IP: ip}
	}
	if req.TargetIP != "" {
		ip := net.ParseIP(req.TargetIP)
		if ip == nil {
			return nil, fmt.Errorf("invalid target_ip: %s", req.TargetIP)
		}
		alert.TargetIP = &db.IPAddr{IP: ip}
	}
	if req.AttackType != "" {
		attackType := req.AttackType
		alert.AttackType = &attackType
	}

	return alert, nil
}
