package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/sentinelsec/sentinel/internal/db"
	"github.com/sentinelsec/sentinel/internal/metrics"
)

// DeviceStore reads and writes device records.
type DeviceStore interface {
	CreateOrUpdate(ctx context.Context, device *db.Device) error
	GetByID(ctx context.Context, id uuid.UUID) (*db.Device, error)
	List(ctx context.Context, filters db.DeviceFilters, offset, limit int) ([]*db.Device, int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// DeviceVulnerabilityStore lists vulnerabilities attached to a device.
type DeviceVulnerabilityStore interface {
	GetByDevice(ctx context.Context, deviceID uuid.UUID) ([]*db.Vulnerability, error)
}

// DeviceHandler handles device API endpoints.
type DeviceHandler struct {
	devices         DeviceStore
	vulnerabilities DeviceVulnerabilityStore
	logger          *slog.Logger
	metrics         metrics.MetricsRegistry
}

// NewDeviceHandler creates a new device handler.
func NewDeviceHandler(
	devices DeviceStore,
	vulnerabilities DeviceVulnerabilityStore,
	logger *slog.Logger,
	metricsRegistry metrics.MetricsRegistry,
) *DeviceHandler {
	return &DeviceHandler{
		devices:         devices,
		vulnerabilities: vulnerabilities,
		logger:          logger.With("handler", "devices"),
		metrics:         metricsRegistry,
	}
}

// CreateDeviceRequest represents a manually registered device.
type CreateDeviceRequest struct {
	IPAddress  string  `json:"ip_address" validate:"required,ip"`
	MACAddress string  `json:"mac_address,omitempty" validate:"omitempty,mac"`
	Hostname   string  `json:"hostname,omitempty" validate:"omitempty,max=253"`
	DeviceType string  `json:"device_type,omitempty" validate:"omitempty,max=50"`
	OSName     string  `json:"os_name,omitempty" validate:"omitempty,max=255"`
	OSVersion  string  `json:"os_version,omitempty" validate:"omitempty,max=255"`
	Vendor     string  `json:"vendor,omitempty" validate:"omitempty,max=255"`
	OpenPorts  []int64 `json:"open_ports,omitempty" validate:"omitempty,dive,min=1,max=65535"`
}

// ListDevices handles GET /api/v1/devices.
func (h *DeviceHandler) ListDevices(w http.ResponseWriter, r *http.Request) {
	active, err := getQueryParamBool(r, "active")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}

	op := &ListOperation[*db.Device, db.DeviceFilters]{
		EntityType: "devices",
		MetricName: "api_devices_listed_total",
		Logger:     h.logger,
		Metrics:    h.metrics,
		GetFilters: func(r *http.Request) db.DeviceFilters {
			return db.DeviceFilters{
				DeviceType: r.URL.Query().Get("device_type"),
				IsActive:   active,
			}
		},
		ListFromDB: h.devices.List,
		ToResponse: func(device *db.Device) interface{} { return device },
	}
	op.Execute(w, r)
}

// GetDevice handles GET /api/v1/devices/{id}.
func (h *DeviceHandler) GetDevice(w http.ResponseWriter, r *http.Request) {
	id, err := extractUUIDFromPath(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}

	device, err := h.devices.GetByID(r.Context(), id)
	if err != nil {
		handleDatabaseError(w, r, err, "get", "device", h.logger)
		return
	}

	writeJSON(w, r, http.StatusOK, device)
}

// CreateDevice handles POST /api/v1/devices. Devices usually arrive
// through discovery; this endpoint registers hosts that scans cannot
// reach, such as segmented management interfaces.
func (h *DeviceHandler) CreateDevice(w http.ResponseWriter, r *http.Request) {
	requestID := getRequestIDFromContext(r.Context())

	var req CreateDeviceRequest
	if err := parseAndValidate(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}

	device, err := deviceFromRequest(&req)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}

	if err := h.devices.CreateOrUpdate(r.Context(), device); err != nil {
		handleDatabaseError(w, r, err, "create", "device", h.logger)
		return
	}

	h.logger.Info("Device registered",
		"request_id", requestID,
		"device_id", device.ID,
		"ip", device.IPAddress.String())

	recordHandlerMetric(h.metrics, "api_devices_created_total", nil)

	writeJSON(w, r, http.StatusCreated, device)
}

// DeleteDevice handles DELETE /api/v1/devices/{id}.
func (h *DeviceHandler) DeleteDevice(w http.ResponseWriter, r *http.Request) {
	requestID := getRequestIDFromContext(r.Context())

	id, err := extractUUIDFromPath(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}

	if err := h.devices.Delete(r.Context(), id); err != nil {
		handleDatabaseError(w, r, err, "delete", "device", h.logger)
		return
	}

	h.logger.Info("Device deleted",
		"request_id", requestID,
		"device_id", id)

	recordHandlerMetric(h.metrics, "api_devices_deleted_total", nil)

	w.WriteHeader(http.StatusNoContent)
}

// GetDeviceVulnerabilities handles GET /api/v1/devices/{id}/vulnerabilities.
func (h *DeviceHandler) GetDeviceVulnerabilities(w http.ResponseWriter, r *http.Request) {
	id, err := extractUUIDFromPath(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}

	// Missing devices surface as 404 rather than an empty list.
	if _, err := h.devices.GetByID(r.Context(), id); err != nil {
		handleDatabaseError(w, r, err, "get", "device", h.logger)
		return
	}

	vulns, err := h.vulnerabilities.GetByDevice(r.Context(), id)
	if err != nil {
		handleDatabaseError(w, r, err, "list", "device vulnerabilities", h.logger)
		return
	}

	writeJSON(w, r, http.StatusOK, map[string]interface{}{
		"device_id":       id,
		"count":           len(vulns),
		"vulnerabilities": vulns,
	})
}

// deviceFromRequest builds a device record from a registration request.
func deviceFromRequest(req *CreateDeviceRequest) (*db.Device, error) {
	ip := net.ParseIP(req.IPAddress)
	if ip == nil {
		return nil, fmt.Errorf("invalid IP address: %s", req.IPAddress)
	}

	now := time.Now().UTC()
	device := &db.Device{
		ID:              uuid.New(),
		IPAddress:       db.IPAddr{IP: ip},
		DeviceType:      req.DeviceType,
		OpenPorts:       pq.Int64Array(req.OpenPorts),
		DiscoveredBy:    pq.StringArray{"manual"},
		LastSeen:        now,
		FirstDiscovered: now,
		IsActive:        true,
	}
	if device.DeviceType == "" {
		device.DeviceType = db.DeviceTypeUnknown
	}

	if req.MACAddress != "" {
		hw, err := net.ParseMAC(req.MACAddress)
		if err != nil {
			return nil, fmt.Errorf("invalid MAC address: %s", req.MACAddress)
		}
		device.MACAddress = &db.MACAddr{HardwareAddr: hw}
	}
	if req.Hostname != "" {
		hostname := req.Hostname
		device.Hostname = &hostname
	}
	if req.OSName != "" {
		osName := req.OSName
		device.OSName = &osName
	}
	if req.OSVersion != "" {
		osVersion := req.OSVersion
		device.OSVersion = &osVersion
	}
	if req.Vendor != "" {
		vendor := req.Vendor
		device.Vendor = &vendor
	}

	return device, nil
}
