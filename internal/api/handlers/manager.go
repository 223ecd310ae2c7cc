// Package handlers provides HTTP request handlers for the Sentinel API.
// This package implements REST endpoint handlers for scan jobs, devices,
// vulnerabilities, threat alerts, network segments, and administrative
// operations.
package handlers

import (
	"log/slog"
	"net/http"

	"github.com/sentinelsec/sentinel/internal/db"
	"github.com/sentinelsec/sentinel/internal/metrics"
)

// Dependencies bundles everything the handler groups need. The daemon
// wires real implementations; tests substitute fakes per handler.
type Dependencies struct {
	Store      *db.Store
	Database   DatabasePinger
	Controller ScanController
	Analyst    Analyst
	Keys       KeyStore
	Logger     *slog.Logger
	Metrics    metrics.MetricsRegistry
}

// Manager manages all API handlers and their dependencies.
type Manager struct {
	logger  *slog.Logger
	metrics metrics.MetricsRegistry

	// Individual handler groups
	health        *HealthHandler
	scan          *ScanHandler
	device        *DeviceHandler
	vulnerability *VulnerabilityHandler
	alert         *AlertHandler
	segment       *SegmentHandler
	dashboard     *DashboardHandler
	admin         *AdminHandler
	stream        *StreamHandler
}

// New creates a new handler manager with all handler groups initialized.
func New(deps Dependencies) *Manager {
	m := &Manager{
		logger:  deps.Logger,
		metrics: deps.Metrics,
	}

	store := deps.Store

	m.health = NewHealthHandler(deps.Database, deps.Logger, deps.Metrics)
	m.scan = NewScanHandler(deps.Controller, store.Jobs, deps.Logger, deps.Metrics)
	m.device = NewDeviceHandler(store.Devices, store.Vulnerabilities, deps.Logger, deps.Metrics)
	m.vulnerability = NewVulnerabilityHandler(store.Vulnerabilities, store.Devices, deps.Analyst, deps.Logger, deps.Metrics)
	m.alert = NewAlertHandler(store.Alerts, store.Devices, store.Vulnerabilities, deps.Analyst, deps.Logger, deps.Metrics)
	m.segment = NewSegmentHandler(store.Segments, deps.Logger, deps.Metrics)
	m.dashboard = NewDashboardHandler(store.Stats, store.Devices, store.Vulnerabilities, deps.Analyst, deps.Logger, deps.Metrics)
	m.admin = NewAdminHandler(deps.Keys, deps.Controller, deps.Database, deps.Logger, deps.Metrics)
	m.stream = NewStreamHandler(store.Jobs, deps.Logger, deps.Metrics)

	return m
}

// Health handles GET /api/v1/health - overall health check.
func (m *Manager) Health(w http.ResponseWriter, r *http.Request) {
	m.health.Health(w, r)
}

// Liveness handles GET /api/v1/liveness - process liveness probe.
func (m *Manager) Liveness(w http.ResponseWriter, r *http.Request) {
	m.health.Liveness(w, r)
}

// Readiness handles GET /api/v1/readiness - dependency readiness probe.
func (m *Manager) Readiness(w http.ResponseWriter, r *http.Request) {
	m.health.Readiness(w, r)
}

// Version handles GET /api/v1/version - get version information.
func (m *Manager) Version(w http.ResponseWriter, r *http.Request) {
	m.health.Version(w, r)
}

// ListScans handles GET /api/v1/scans - list scan jobs.
func (m *Manager) ListScans(w http.ResponseWriter, r *http.Request) {
	m.scan.ListScans(w, r)
}

// CreateScan handles POST /api/v1/scans - submit a new scan job.
func (m *Manager) CreateScan(w http.ResponseWriter, r *http.Request) {
	m.scan.CreateScan(w, r)
}

// GetScan handles GET /api/v1/scans/{id} - get a specific scan job.
func (m *Manager) GetScan(w http.ResponseWriter, r *http.Request) {
	m.scan.GetScan(w, r)
}

// CancelScan handles POST /api/v1/scans/{id}/cancel - cancel a running scan job.
func (m *Manager) CancelScan(w http.ResponseWriter, r *http.Request) {
	m.scan.CancelScan(w, r)
}

// StreamScan handles GET /api/v1/scans/{id}/ws - stream job progress over WebSocket.
func (m *Manager) StreamScan(w http.ResponseWriter, r *http.Request) {
	m.stream.StreamScan(w, r)
}

// ListDevices handles GET /api/v1/devices - list discovered devices.
func (m *Manager) ListDevices(w http.ResponseWriter, r *http.Request) {
	m.device.ListDevices(w, r)
}

// CreateDevice handles POST /api/v1/devices - register a device manually.
func (m *Manager) CreateDevice(w http.ResponseWriter, r *http.Request) {
	m.device.CreateDevice(w, r)
}

// GetDevice handles GET /api/v1/devices/{id} - get a specific device.
func (m *Manager) GetDevice(w http.ResponseWriter, r *http.Request) {
	m.device.GetDevice(w, r)
}

// DeleteDevice handles DELETE /api/v1/devices/{id} - delete a device.
func (m *Manager) DeleteDevice(w http.ResponseWriter, r *http.Request) {
	m.device.DeleteDevice(w, r)
}

// GetDeviceVulnerabilities handles GET /api/v1/devices/{id}/vulnerabilities.
func (m *Manager) GetDeviceVulnerabilities(w http.ResponseWriter, r *http.Request) {
	m.device.GetDeviceVulnerabilities(w, r)
}

// ListVulnerabilities handles GET /api/v1/vulnerabilities - list vulnerabilities.
func (m *Manager) ListVulnerabilities(w http.ResponseWriter, r *http.Request) {
	m.vulnerability.ListVulnerabilities(w, r)
}

// GetVulnerability handles GET /api/v1/vulnerabilities/{id}.
func (m *Manager) GetVulnerability(w http.ResponseWriter, r *http.Request) {
	m.vulnerability.GetVulnerability(w, r)
}

// ResolveVulnerability handles PATCH /api/v1/vulnerabilities/{id}/resolve.
func (m *Manager) ResolveVulnerability(w http.ResponseWriter, r *http.Request) {
	m.vulnerability.ResolveVulnerability(w, r)
}

// AnalyzeVulnerability handles POST /api/v1/vulnerabilities/{id}/analyze.
func (m *Manager) AnalyzeVulnerability(w http.ResponseWriter, r *http.Request) {
	m.vulnerability.AnalyzeVulnerability(w, r)
}

// ListAlerts handles GET /api/v1/alerts - list threat alerts.
func (m *Manager) ListAlerts(w http.ResponseWriter, r *http.Request) {
	m.alert.ListAlerts(w, r)
}

// CreateAlert handles POST /api/v1/alerts - ingest an external alert.
func (m *Manager) CreateAlert(w http.ResponseWriter, r *http.Request) {
	m.alert.CreateAlert(w, r)
}

// GetAlert handles GET /api/v1/alerts/{id} - get a specific alert.
func (m *Manager) GetAlert(w http.ResponseWriter, r *http.Request) {
	m.alert.GetAlert(w, r)
}

// AcknowledgeAlert handles PATCH /api/v1/alerts/{id}/acknowledge.
func (m *Manager) AcknowledgeAlert(w http.ResponseWriter, r *http.Request) {
	m.alert.AcknowledgeAlert(w, r)
}

// ResolveAlert handles PATCH /api/v1/alerts/{id}/resolve.
func (m *Manager) ResolveAlert(w http.ResponseWriter, r *http.Request) {
	m.alert.ResolveAlert(w, r)
}

// RecommendAlert handles POST /api/v1/alerts/{id}/recommend.
func (m *Manager) RecommendAlert(w http.ResponseWriter, r *http.Request) {
	m.alert.RecommendAlert(w, r)
}

// ListSegments handles GET /api/v1/segments - list network segments.
func (m *Manager) ListSegments(w http.ResponseWriter, r *http.Request) {
	m.segment.ListSegments(w, r)
}

// CreateSegment handles POST /api/v1/segments - create a network segment.
func (m *Manager) CreateSegment(w http.ResponseWriter, r *http.Request) {
	m.segment.CreateSegment(w, r)
}

// GetSegment handles GET /api/v1/segments/{id} - get a specific segment.
func (m *Manager) GetSegment(w http.ResponseWriter, r *http.Request) {
	m.segment.GetSegment(w, r)
}

// UpdateSegment handles PUT /api/v1/segments/{id} - update a segment.
func (m *Manager) UpdateSegment(w http.ResponseWriter, r *http.Request) {
	m.segment.UpdateSegment(w, r)
}

// DeleteSegment handles DELETE /api/v1/segments/{id} - delete a segment.
func (m *Manager) DeleteSegment(w http.ResponseWriter, r *http.Request) {
	m.segment.DeleteSegment(w, r)
}

// GetDashboard handles GET /api/v1/dashboard - dashboard statistics.
func (m *Manager) GetDashboard(w http.ResponseWriter, r *http.Request) {
	m.dashboard.GetDashboard(w, r)
}

// GetNetworkStatistics handles GET /api/v1/network/statistics - per-segment stats.
func (m *Manager) GetNetworkStatistics(w http.ResponseWriter, r *http.Request) {
	m.dashboard.GetNetworkStatistics(w, r)
}

// GetNetworkSummary handles GET /api/v1/network/summary - inventory aggregates.
func (m *Manager) GetNetworkSummary(w http.ResponseWriter, r *http.Request) {
	m.dashboard.GetNetworkSummary(w, r)
}

// GetNetworkAnalysis handles GET /api/v1/network/analysis - AI recommendation.
func (m *Manager) GetNetworkAnalysis(w http.ResponseWriter, r *http.Request) {
	m.dashboard.GetNetworkAnalysis(w, r)
}

// GetStatus handles GET /api/v1/admin/status - runtime system status.
func (m *Manager) GetStatus(w http.ResponseWriter, r *http.Request) {
	m.admin.GetStatus(w, r)
}

// CreateKey handles POST /api/v1/admin/keys - issue an API key.
func (m *Manager) CreateKey(w http.ResponseWriter, r *http.Request) {
	m.admin.CreateKey(w, r)
}

// ListKeys handles GET /api/v1/admin/keys - list API keys.
func (m *Manager) ListKeys(w http.ResponseWriter, r *http.Request) {
	m.admin.ListKeys(w, r)
}

// RevokeKey handles DELETE /api/v1/admin/keys/{id} - revoke an API key.
func (m *Manager) RevokeKey(w http.ResponseWriter, r *http.Request) {
	m.admin.RevokeKey(w, r)
}

// GetLogger returns the logger instance.
func (m *Manager) GetLogger() *slog.Logger {
	return m.logger
}

// GetMetrics returns the metrics registry.
func (m *Manager) GetMetrics() metrics.MetricsRegistry {
	return m.metrics
}
