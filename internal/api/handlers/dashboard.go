package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"sort"
	"time"

	"github.com/sentinelsec/sentinel/internal/db"
	"github.com/sentinelsec/sentinel/internal/metrics"
)

const (
	// summaryDeviceCap bounds the inventory fetch for aggregation.
	summaryDeviceCap = 10000
	// analysisVulnerabilityCap bounds the findings handed to the analyst.
	analysisVulnerabilityCap = 200
	// commonPortLimit is how many top ports the summary reports.
	commonPortLimit = 10
)

// StatsStore serves aggregated dashboard figures.
type StatsStore interface {
	GetDashboardStats(ctx context.Context) (*db.DashboardStats, error)
	GetNetworkStatistics(ctx context.Context) ([]*db.NetworkStatistics, error)
}

// InventoryDeviceStore reads the device inventory for aggregation.
type InventoryDeviceStore interface {
	GetActive(ctx context.Context) ([]*db.Device, error)
	List(ctx context.Context, filters db.DeviceFilters, offset, limit int) ([]*db.Device, int64, error)
}

// DashboardHandler handles dashboard and network reporting endpoints.
type DashboardHandler struct {
	stats           StatsStore
	devices         InventoryDeviceStore
	vulnerabilities VulnerabilityStore
	analyst         Analyst
	logger          *slog.Logger
	metrics         metrics.MetricsRegistry
}

// NewDashboardHandler creates a new dashboard handler.
func NewDashboardHandler(
	stats StatsStore,
	devices InventoryDeviceStore,
	vulnerabilities VulnerabilityStore,
	analyst Analyst,
	logger *slog.Logger,
	metricsRegistry metrics.MetricsRegistry,
) *DashboardHandler {
	return &DashboardHandler{
		stats:           stats,
		devices:         devices,
		vulnerabilities: vulnerabilities,
		analyst:         analyst,
		logger:          logger.With("handler", "dashboard"),
		metrics:         metricsRegistry,
	}
}

// PortCount is one port's appearance count across devices.
type PortCount struct {
	Port  int `json:"port"`
	Count int `json:"count"`
}

// SecuritySummary counts devices exposing security-relevant services.
type SecuritySummary struct {
	DevicesWithSSH int `json:"devices_with_ssh"`
	DevicesWithRDP int `json:"devices_with_rdp"`
	DevicesWithWeb int `json:"devices_with_web"`
	DevicesWithSMB int `json:"devices_with_smb"`
}

// NetworkSummary aggregates the device inventory for reporting.
type NetworkSummary struct {
	TotalDevices    int             `json:"total_devices"`
	ActiveDevices   int             `json:"active_devices"`
	DeviceTypes     map[string]int  `json:"device_types"`
	CommonPorts     []PortCount     `json:"common_ports"`
	OSDistribution  map[string]int  `json:"os_distribution"`
	SecuritySummary SecuritySummary `json:"security_summary"`
}

// GetDashboard handles GET /api/v1/dashboard.
func (h *DashboardHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := h.stats.GetDashboardStats(r.Context())
	if err != nil {
		handleDatabaseError(w, r, err, "get", "dashboard stats", h.logger)
		return
	}

	recordHandlerMetric(h.metrics, "api_dashboard_requests_total", nil)

	writeJSON(w, r, http.StatusOK, stats)
}

// GetNetworkStatistics handles GET /api/v1/network/statistics. Returns
// per-segment device counts and scan recency.
func (h *DashboardHandler) GetNetworkStatistics(w http.ResponseWriter, r *http.Request) {
	statistics, err := h.stats.GetNetworkStatistics(r.Context())
	if err != nil {
		handleDatabaseError(w, r, err, "get", "network statistics", h.logger)
		return
	}

	recordHandlerMetric(h.metrics, "api_network_statistics_requests_total", nil)

	writeJSON(w, r, http.StatusOK, map[string]interface{}{
		"count":    len(statistics),
		"segments": statistics,
	})
}

// GetNetworkSummary handles GET /api/v1/network/summary. Aggregates the
// device inventory into type, port, OS, and exposure distributions.
func (h *DashboardHandler) GetNetworkSummary(w http.ResponseWriter, r *http.Request) {
	devices, _, err := h.devices.List(r.Context(), db.DeviceFilters{}, 0, summaryDeviceCap)
	if err != nil {
		handleDatabaseError(w, r, err, "list", "devices", h.logger)
		return
	}

	recordHandlerMetric(h.metrics, "api_network_summary_requests_total", nil)

	writeJSON(w, r, http.StatusOK, buildNetworkSummary(devices))
}

// GetNetworkAnalysis handles GET /api/v1/network/analysis. Hands the
// active inventory and unresolved findings to the analyst; the analyst
// degrades to placeholder text when unconfigured.
func (h *DashboardHandler) GetNetworkAnalysis(w http.ResponseWriter, r *http.Request) {
	requestID := getRequestIDFromContext(r.Context())

	devices, err := h.devices.GetActive(r.Context())
	if err != nil {
		handleDatabaseError(w, r, err, "list", "devices", h.logger)
		return
	}

	unresolved := false
	vulns, _, err := h.vulnerabilities.List(r.Context(), db.VulnerabilityFilters{
		Resolved: &unresolved,
	}, 0, analysisVulnerabilityCap)
	if err != nil {
		handleDatabaseError(w, r, err, "list", "vulnerabilities", h.logger)
		return
	}

	recommendation := h.analyst.RecommendForNetwork(r.Context(), devices, vulns)

	h.logger.Info("Network analysis generated",
		"request_id", requestID,
		"devices", len(devices),
		"vulnerabilities", len(vulns),
		"ai_enabled", h.analyst.Enabled())

	recordHandlerMetric(h.metrics, "api_network_analysis_requests_total", nil)

	writeJSON(w, r, http.StatusOK, map[string]interface{}{
		"recommendation":      recommendation,
		"device_count":        len(devices),
		"vulnerability_count": len(vulns),
		"ai_enabled":          h.analyst.Enabled(),
		"generated_at":        time.Now().UTC(),
	})
}

// buildNetworkSummary folds the inventory into reporting distributions.
func buildNetworkSummary(devices []*db.Device) *NetworkSummary {
	summary := &NetworkSummary{
		TotalDevices:   len(devices),
		DeviceTypes:    make(map[string]int),
		OSDistribution: make(map[string]int),
	}

	portCounts := make(map[int]int)
	for _, device := range devices {
		if device.IsActive {
			summary.ActiveDevices++
		}

		summary.DeviceTypes[device.DeviceType]++

		for _, port := range device.OpenPorts {
			portCounts[int(port)]++
		}

		if device.OSName != nil && *device.OSName != "" {
			summary.OSDistribution[*device.OSName]++
		}

		if device.HasOpenPort(22) {
			summary.SecuritySummary.DevicesWithSSH++
		}
		if device.HasOpenPort(3389) {
			summary.SecuritySummary.DevicesWithRDP++
		}
		if device.HasOpenPort(80) || device.HasOpenPort(443) ||
			device.HasOpenPort(8080) || device.HasOpenPort(8443) {
			summary.SecuritySummary.DevicesWithWeb++
		}
		if device.HasOpenPort(445) {
			summary.SecuritySummary.DevicesWithSMB++
		}
	}

	summary.CommonPorts = topPorts(portCounts, commonPortLimit)
	return summary
}

// topPorts returns the most frequent ports, count descending with port
// number as the tiebreak.
func topPorts(counts map[int]int, limit int) []PortCount {
	ports := make([]PortCount, 0, len(counts))
	for port, count := range counts {
		ports = append(ports, PortCount{Port: port, Count: count})
	}

	sort.Slice(ports, func(i, j int) bool {
		if ports[i].Count != ports[j].Count {
			return ports[i].Count > ports[j].Count
		}
		return ports[i].Port < ports[j].Port
	})

	if len(ports) > limit {
		ports = ports[:limit]
	}
	return ports
}
