// Package docs provides Swagger documentation for the Sentinel API.
//
// This file contains all API endpoint documentation using swaggo annotations.
// Run `swag init` to generate OpenAPI specification files.
//
//go:generate swag init -g swagger_docs.go -o ./swagger --parseDependency --parseInternal
package docs

import (
	"net/http"
	"time"
)

// @title Sentinel API
// @version 0.3.0
// @description Network security scanner with device discovery, vulnerability detection, and AI-assisted analysis
// @description
// @description ## Features
// @description - **Discovery**: ping sweep plus ARP-table merge over CIDR ranges, IP ranges, and hostnames
// @description - **Profiling**: nmap-backed port, service, and OS fingerprinting with device classification
// @description - **Vulnerability Detection**: signature probes for exposed services with severity ratings
// @description - **Async Scan Jobs**: budgeted background jobs with cancellation and WebSocket progress
// @description - **Persistence**: PostgreSQL-backed device inventory, findings, alerts, and segments
// @description - **AI Analysis**: optional LLM-backed summaries and remediation recommendations
// @description - **Scheduling**: periodic rescans of monitored network segments
// @description
// @description ## Authentication
// @description Most endpoints require API key authentication. Include your API key in the `X-API-Key` header
// @description or as an `Authorization: Bearer <key>` token.
// @description Public endpoints (health, liveness, readiness, version, metrics, docs) do not require authentication.
//
// @security ApiKeyAuth
//
// @contact.name Sentinel Support
// @contact.url https://github.com/sentinelsec/sentinel
//
// @license.name MIT
// @license.url https://github.com/sentinelsec/sentinel/blob/main/LICENSE
//
// @host localhost:8080
// @BasePath /api/v1
//
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key
// @description API key for authentication

// HealthResponse represents health check response
type HealthResponse struct {
	Status    string            `json:"status" example:"healthy"`
	Timestamp time.Time         `json:"timestamp"`
	Uptime    string            `json:"uptime" example:"2h30m45s"`
	Checks    map[string]string `json:"checks"`
}

// LivenessResponse represents a liveness probe response
type LivenessResponse struct {
	Status    string    `json:"status" example:"alive"`
	Timestamp time.Time `json:"timestamp"`
	Uptime    string    `json:"uptime" example:"2h30m45s"`
}

// ReadinessResponse represents a readiness probe response
type ReadinessResponse struct {
	Status    string    `json:"status" example:"ready"`
	Timestamp time.Time `json:"timestamp"`
	Reason    string    `json:"reason,omitempty" example:"database unreachable"`
}

// VersionResponse represents version information
type VersionResponse struct {
	Version   string    `json:"version" example:"0.3.0"`
	Commit    string    `json:"commit" example:"a1b2c3d"`
	BuildTime string    `json:"build_time" example:"2025-06-01T12:00:00Z"`
	GoVersion string    `json:"go_version" example:"go1.26"`
	Timestamp time.Time `json:"timestamp"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error     string    `json:"error" example:"Bad Request"`
	Message   string    `json:"message" example:"invalid target specification"`
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id,omitempty" example:"req_a1b2c3d4"`
}

// DeviceResponse represents a discovered device
type DeviceResponse struct {
	ID              string                 `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
	IPAddress       string                 `json:"ip_address" example:"192.168.1.100"`
	MACAddress      *string                `json:"mac_address,omitempty" example:"aa:bb:cc:dd:ee:ff"`
	Hostname        *string                `json:"hostname,omitempty" example:"server01.local"`
	DeviceType      string                 `json:"device_type" example:"server" enums:"router,switch,server,workstation,mobile,iot,printer,unknown"`
	OSName          *string                `json:"os_name,omitempty" example:"Linux"`
	OSVersion       *string                `json:"os_version,omitempty" example:"5.15"`
	Vendor          *string                `json:"vendor,omitempty" example:"Dell Inc."`
	OpenPorts       []int64                `json:"open_ports" example:"22,80,443"`
	Services        map[string]interface{} `json:"services,omitempty"`
	DiscoveredBy    []string               `json:"discovered_by,omitempty" example:"ping,arp"`
	Metadata        map[string]interface{} `json:"metadata,omitempty"`
	LastSeen        time.Time              `json:"last_seen"`
	FirstDiscovered time.Time              `json:"first_discovered"`
	IsActive        bool                   `json:"is_active" example:"true"`
	CreatedAt       time.Time              `json:"created_at"`
	UpdatedAt       time.Time              `json:"updated_at"`
}

// CreateDeviceRequest represents a manual device registration
type CreateDeviceRequest struct {
	IPAddress  string  `json:"ip_address" example:"192.168.1.100"`
	MACAddress string  `json:"mac_address,omitempty" example:"aa:bb:cc:dd:ee:ff"`
	Hostname   string  `json:"hostname,omitempty" example:"server01.local"`
	DeviceType string  `json:"device_type,omitempty" example:"server"`
	OSName     string  `json:"os_name,omitempty" example:"Linux"`
	OSVersion  string  `json:"os_version,omitempty" example:"5.15"`
	Vendor     string  `json:"vendor,omitempty" example:"Dell Inc."`
	OpenPorts  []int64 `json:"open_ports,omitempty" example:"22,443"`
}

// VulnerabilityResponse represents a detected vulnerability
type VulnerabilityResponse struct {
	ID              string    `json:"id" example:"550e8400-e29b-41d4-a716-446655440001"`
	DeviceID        string    `json:"device_id" example:"550e8400-e29b-41d4-a716-446655440000"`
	CVEID           *string   `json:"cve_id,omitempty" example:"CVE-2024-0001"`
	Title           string    `json:"title" example:"Telnet service exposed"`
	Description     string    `json:"description"`
	Severity        string    `json:"severity" example:"high" enums:"critical,high,medium,low,info"`
	CVSSScore       *float64  `json:"cvss_score,omitempty" example:"7.5"`
	AffectedService *string   `json:"affected_service,omitempty" example:"telnet"`
	Port            *int      `json:"port,omitempty" example:"23"`
	Solution        *string   `json:"solution,omitempty" example:"Disable telnet and use SSH"`
	References      []string  `json:"references,omitempty"`
	DiscoveredAt    time.Time `json:"discovered_at"`
	IsResolved      bool      `json:"is_resolved" example:"false"`
	AIAnalysis      *string   `json:"ai_analysis,omitempty"`
}

// ScanJobResponse represents a scan job
type ScanJobResponse struct {
	ID                   string                 `json:"id" example:"550e8400-e29b-41d4-a716-446655440002"`
	Kind                 string                 `json:"kind" example:"network_discovery" enums:"network_discovery,vulnerability_scan,port_scan"`
	Target               string                 `json:"target" example:"192.168.1.0/24"`
	Status               string                 `json:"status" example:"running" enums:"pending,running,completed,failed,cancelled"`
	StartedAt            *time.Time             `json:"started_at,omitempty"`
	CompletedAt          *time.Time             `json:"completed_at,omitempty"`
	DurationSeconds      *float64               `json:"duration_seconds,omitempty" example:"42.7"`
	DevicesDiscovered    int                    `json:"devices_discovered" example:"25"`
	VulnerabilitiesFound int                    `json:"vulnerabilities_found" example:"3"`
	PortsScanned         int                    `json:"ports_scanned" example:"2500"`
	Results              map[string]interface{} `json:"results,omitempty"`
	ErrorMessage         *string                `json:"error_message,omitempty"`
	AISummary            *string                `json:"ai_summary,omitempty"`
	CreatedBy            *string                `json:"created_by,omitempty" example:"ops"`
	CreatedAt            time.Time              `json:"created_at"`
}

// CreateScanRequest represents a scan job submission
type CreateScanRequest struct {
	Kind        string `json:"kind" example:"network_discovery" enums:"network_discovery,vulnerability_scan,port_scan"`
	Target      string `json:"target" example:"192.168.1.0/24"`
	OSDetection *bool  `json:"os_detection,omitempty" example:"true"`
	CreatedBy   string `json:"created_by,omitempty" example:"ops"`
}

// AlertResponse represents a threat alert
type AlertResponse struct {
	ID               string     `json:"id" example:"550e8400-e29b-41d4-a716-446655440003"`
	Title            string     `json:"title" example:"Suspicious SMB traffic"`
	Description      string     `json:"description"`
	ThreatLevel      string     `json:"threat_level" example:"high" enums:"critical,high,medium,low,info"`
	DeviceID         *string    `json:"device_id,omitempty"`
	VulnerabilityID  *string    `json:"vulnerability_id,omitempty"`
	SourceIP         *string    `json:"source_ip,omitempty" example:"10.0.0.5"`
	TargetIP         *string    `json:"target_ip,omitempty" example:"192.168.1.100"`
	AttackType       *string    `json:"attack_type,omitempty" example:"lateral_movement"`
	IsAcknowledged   bool       `json:"is_acknowledged" example:"false"`
	IsResolved       bool       `json:"is_resolved" example:"false"`
	DetectedAt       time.Time  `json:"detected_at"`
	ResolvedAt       *time.Time `json:"resolved_at,omitempty"`
	AIRecommendation *string    `json:"ai_recommendation,omitempty"`
}

// CreateAlertRequest represents an external alert submission
type CreateAlertRequest struct {
	Title           string `json:"title" example:"Suspicious SMB traffic"`
	Description     string `json:"description" example:"Repeated SMB login failures from workstation"`
	ThreatLevel     string `json:"threat_level" example:"high" enums:"critical,high,medium,low,info"`
	DeviceID        string `json:"device_id,omitempty"`
	VulnerabilityID string `json:"vulnerability_id,omitempty"`
	SourceIP        string `json:"source_ip,omitempty" example:"10.0.0.5"`
	TargetIP        string `json:"target_ip,omitempty" example:"192.168.1.100"`
	AttackType      string `json:"attack_type,omitempty" example:"lateral_movement"`
}

// SegmentResponse represents a monitored network segment
type SegmentResponse struct {
	ID                 string     `json:"id" example:"550e8400-e29b-41d4-a716-446655440004"`
	Name               string     `json:"name" example:"Office LAN"`
	CIDR               string     `json:"cidr" example:"192.168.1.0/24"`
	Description        *string    `json:"description,omitempty"`
	DeviceCount        int        `json:"device_count" example:"42"`
	LastScanned        *time.Time `json:"last_scanned,omitempty"`
	ScanFrequencyHours *int       `json:"scan_frequency_hours,omitempty" example:"24"`
	IsMonitored        bool       `json:"is_monitored" example:"true"`
	CreatedAt          time.Time  `json:"created_at"`
}

// SegmentRequest represents a segment create or update payload
type SegmentRequest struct {
	Name               string `json:"name" example:"Office LAN"`
	CIDR               string `json:"cidr" example:"192.168.1.0/24"`
	Description        string `json:"description,omitempty"`
	ScanFrequencyHours *int   `json:"scan_frequency_hours,omitempty" example:"24"`
	IsMonitored        bool   `json:"is_monitored" example:"true"`
}

// DashboardStatsResponse represents dashboard aggregates
type DashboardStatsResponse struct {
	TotalDevices            int            `json:"total_devices" example:"120"`
	ActiveDevices           int            `json:"active_devices" example:"98"`
	TotalVulnerabilities    int            `json:"total_vulnerabilities" example:"17"`
	CriticalVulnerabilities int            `json:"critical_vulnerabilities" example:"2"`
	TotalAlerts             int            `json:"total_alerts" example:"9"`
	UnresolvedAlerts        int            `json:"unresolved_alerts" example:"4"`
	ScansToday              int            `json:"scans_today" example:"6"`
	NetworkSegments         int            `json:"network_segments" example:"3"`
	LastScan                *time.Time     `json:"last_scan,omitempty"`
	ThreatLevelDistribution map[string]int `json:"threat_level_distribution"`
	DeviceTypeDistribution  map[string]int `json:"device_type_distribution"`
}

// CreateKeyRequest represents an API key issue request
type CreateKeyRequest struct {
	Name          string `json:"name" example:"ci-pipeline"`
	ExpiresInDays *int   `json:"expires_in_days,omitempty" example:"90"`
	Notes         string `json:"notes,omitempty" example:"read-only dashboard access"`
	CreatedBy     string `json:"created_by,omitempty" example:"ops"`
}

// PaginationInfo represents pagination metadata
type PaginationInfo struct {
	Page       int   `json:"page" example:"1"`
	PageSize   int   `json:"page_size" example:"50"`
	TotalItems int64 `json:"total_items" example:"150"`
	TotalPages int   `json:"total_pages" example:"3"`
}

// PaginatedDevicesResponse represents a paginated list of devices
type PaginatedDevicesResponse struct {
	Data       []DeviceResponse `json:"data"`
	Pagination PaginationInfo   `json:"pagination"`
}

// PaginatedVulnerabilitiesResponse represents a paginated list of vulnerabilities
type PaginatedVulnerabilitiesResponse struct {
	Data       []VulnerabilityResponse `json:"data"`
	Pagination PaginationInfo          `json:"pagination"`
}

// PaginatedScansResponse represents a paginated list of scan jobs
type PaginatedScansResponse struct {
	Data       []ScanJobResponse `json:"data"`
	Pagination PaginationInfo    `json:"pagination"`
}

// PaginatedAlertsResponse represents a paginated list of alerts
type PaginatedAlertsResponse struct {
	Data       []AlertResponse `json:"data"`
	Pagination PaginationInfo  `json:"pagination"`
}

// Health godoc
// @Summary Health check
// @Description Returns service health status including database connectivity
// @Tags System
// @Produce json
// @Success 200 {object} HealthResponse
// @Failure 503 {object} HealthResponse
// @Router /health [get]
// @ID getHealth
func Health(_ http.ResponseWriter, _ *http.Request) {}

// Liveness godoc
// @Summary Liveness probe
// @Description Returns process liveness without dependency checks
// @Tags System
// @Produce json
// @Success 200 {object} LivenessResponse
// @Router /liveness [get]
// @ID getLiveness
func Liveness(_ http.ResponseWriter, _ *http.Request) {}

// Readiness godoc
// @Summary Readiness probe
// @Description Returns whether the service can reach its dependencies
// @Tags System
// @Produce json
// @Success 200 {object} ReadinessResponse
// @Failure 503 {object} ReadinessResponse
// @Router /readiness [get]
// @ID getReadiness
func Readiness(_ http.ResponseWriter, _ *http.Request) {}

// Version godoc
// @Summary Version information
// @Description Returns version and build information
// @Tags System
// @Produce json
// @Success 200 {object} VersionResponse
// @Router /version [get]
// @ID getVersion
func Version(_ http.ResponseWriter, _ *http.Request) {}

// Dashboard godoc
// @Summary Dashboard statistics
// @Description Returns aggregate counts for the dashboard
// @Tags Dashboard
// @Produce json
// @Success 200 {object} DashboardStatsResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security ApiKeyAuth
// @Router /dashboard [get]
// @ID getDashboard
func Dashboard(_ http.ResponseWriter, _ *http.Request) {}

// NetworkStatistics godoc
// @Summary Network segment statistics
// @Description Returns per-segment device and vulnerability statistics
// @Tags Dashboard
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security ApiKeyAuth
// @Router /network/statistics [get]
// @ID getNetworkStatistics
func NetworkStatistics(_ http.ResponseWriter, _ *http.Request) {}

// NetworkSummary godoc
// @Summary Network inventory summary
// @Description Returns device type counts, common ports, OS distribution, and service exposure
// @Tags Dashboard
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security ApiKeyAuth
// @Router /network/summary [get]
// @ID getNetworkSummary
func NetworkSummary(_ http.ResponseWriter, _ *http.Request) {}

// NetworkAnalysis godoc
// @Summary AI network analysis
// @Description Returns an AI-generated security recommendation for the current inventory
// @Tags Dashboard
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security ApiKeyAuth
// @Router /network/analysis [get]
// @ID getNetworkAnalysis
func NetworkAnalysis(_ http.ResponseWriter, _ *http.Request) {}

// ListScans godoc
// @Summary List scan jobs
// @Description Get paginated list of scan jobs with optional filtering
// @Tags Scans
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param page_size query int false "Items per page" default(50)
// @Param status query string false "Filter by status" Enums(pending,running,completed,failed,cancelled)
// @Param kind query string false "Filter by kind" Enums(network_discovery,vulnerability_scan,port_scan)
// @Success 200 {object} PaginatedScansResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security ApiKeyAuth
// @Router /scans [get]
// @ID listScans
func ListScans(_ http.ResponseWriter, _ *http.Request) {}

// CreateScan godoc
// @Summary Submit scan job
// @Description Submit a new scan job for asynchronous execution
// @Tags Scans
// @Accept json
// @Produce json
// @Param scan body CreateScanRequest true "Scan job"
// @Success 202 {object} ScanJobResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security ApiKeyAuth
// @Router /scans [post]
// @ID createScan
func CreateScan(_ http.ResponseWriter, _ *http.Request) {}

// GetScan godoc
// @Summary Get scan job
// @Description Get scan job details by ID
// @Tags Scans
// @Produce json
// @Param id path string true "Scan job ID" format(uuid)
// @Success 200 {object} ScanJobResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security ApiKeyAuth
// @Router /scans/{id} [get]
// @ID getScan
func GetScan(_ http.ResponseWriter, _ *http.Request) {}

// CancelScan godoc
// @Summary Cancel scan job
// @Description Request cancellation of a pending or running scan job
// @Tags Scans
// @Produce json
// @Param id path string true "Scan job ID" format(uuid)
// @Success 202 {object} map[string]interface{}
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security ApiKeyAuth
// @Router /scans/{id}/cancel [post]
// @ID cancelScan
func CancelScan(_ http.ResponseWriter, _ *http.Request) {}

// StreamScan godoc
// @Summary Stream scan progress
// @Description Upgrade to WebSocket and receive job progress updates until the job reaches a terminal state
// @Tags Scans
// @Param id path string true "Scan job ID" format(uuid)
// @Success 101 "Switching Protocols"
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security ApiKeyAuth
// @Router /scans/{id}/ws [get]
// @ID streamScan
func StreamScan(_ http.ResponseWriter, _ *http.Request) {}

// ListDevices godoc
// @Summary List devices
// @Description Get paginated list of discovered devices with optional filtering
// @Tags Devices
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param page_size query int false "Items per page" default(50)
// @Param device_type query string false "Filter by device type" Enums(router,switch,server,workstation,mobile,iot,printer,unknown)
// @Param active query boolean false "Filter by active state"
// @Success 200 {object} PaginatedDevicesResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security ApiKeyAuth
// @Router /devices [get]
// @ID listDevices
func ListDevices(_ http.ResponseWriter, _ *http.Request) {}

// CreateDevice godoc
// @Summary Register device
// @Description Manually register a device in the inventory
// @Tags Devices
// @Accept json
// @Produce json
// @Param device body CreateDeviceRequest true "Device information"
// @Success 201 {object} DeviceResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security ApiKeyAuth
// @Router /devices [post]
// @ID createDevice
func CreateDevice(_ http.ResponseWriter, _ *http.Request) {}

// GetDevice godoc
// @Summary Get device
// @Description Get device details by ID
// @Tags Devices
// @Produce json
// @Param id path string true "Device ID" format(uuid)
// @Success 200 {object} DeviceResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security ApiKeyAuth
// @Router /devices/{id} [get]
// @ID getDevice
func GetDevice(_ http.ResponseWriter, _ *http.Request) {}

// DeleteDevice godoc
// @Summary Delete device
// @Description Remove device and its findings from the inventory
// @Tags Devices
// @Param id path string true "Device ID" format(uuid)
// @Success 204 "Successfully deleted"
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security ApiKeyAuth
// @Router /devices/{id} [delete]
// @ID deleteDevice
func DeleteDevice(_ http.ResponseWriter, _ *http.Request) {}

// GetDeviceVulnerabilities godoc
// @Summary Get device vulnerabilities
// @Description Get vulnerabilities detected on a specific device
// @Tags Devices
// @Produce json
// @Param id path string true "Device ID" format(uuid)
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security ApiKeyAuth
// @Router /devices/{id}/vulnerabilities [get]
// @ID getDeviceVulnerabilities
func GetDeviceVulnerabilities(_ http.ResponseWriter, _ *http.Request) {}

// ListVulnerabilities godoc
// @Summary List vulnerabilities
// @Description Get paginated list of vulnerabilities with optional filtering
// @Tags Vulnerabilities
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param page_size query int false "Items per page" default(50)
// @Param severity query string false "Filter by severity" Enums(critical,high,medium,low,info)
// @Param device_id query string false "Filter by device ID" format(uuid)
// @Param resolved query boolean false "Filter by resolution state"
// @Success 200 {object} PaginatedVulnerabilitiesResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security ApiKeyAuth
// @Router /vulnerabilities [get]
// @ID listVulnerabilities
func ListVulnerabilities(_ http.ResponseWriter, _ *http.Request) {}

// GetVulnerability godoc
// @Summary Get vulnerability
// @Description Get vulnerability details by ID
// @Tags Vulnerabilities
// @Produce json
// @Param id path string true "Vulnerability ID" format(uuid)
// @Success 200 {object} VulnerabilityResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security ApiKeyAuth
// @Router /vulnerabilities/{id} [get]
// @ID getVulnerability
func GetVulnerability(_ http.ResponseWriter, _ *http.Request) {}

// ResolveVulnerability godoc
// @Summary Resolve vulnerability
// @Description Mark a vulnerability as resolved
// @Tags Vulnerabilities
// @Produce json
// @Param id path string true "Vulnerability ID" format(uuid)
// @Success 200 {object} VulnerabilityResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security ApiKeyAuth
// @Router /vulnerabilities/{id}/resolve [patch]
// @ID resolveVulnerability
func ResolveVulnerability(_ http.ResponseWriter, _ *http.Request) {}

// AnalyzeVulnerability godoc
// @Summary Analyze vulnerability
// @Description Generate and persist an AI analysis for a vulnerability
// @Tags Vulnerabilities
// @Produce json
// @Param id path string true "Vulnerability ID" format(uuid)
// @Success 200 {object} VulnerabilityResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security ApiKeyAuth
// @Router /vulnerabilities/{id}/analyze [post]
// @ID analyzeVulnerability
func AnalyzeVulnerability(_ http.ResponseWriter, _ *http.Request) {}

// ListAlerts godoc
// @Summary List threat alerts
// @Description Get paginated list of threat alerts with optional filtering
// @Tags Alerts
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param page_size query int false "Items per page" default(50)
// @Param threat_level query string false "Filter by threat level" Enums(critical,high,medium,low,info)
// @Param resolved query boolean false "Filter by resolution state"
// @Success 200 {object} PaginatedAlertsResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security ApiKeyAuth
// @Router /alerts [get]
// @ID listAlerts
func ListAlerts(_ http.ResponseWriter, _ *http.Request) {}

// CreateAlert godoc
// @Summary Create threat alert
// @Description Ingest an externally detected threat alert
// @Tags Alerts
// @Accept json
// @Produce json
// @Param alert body CreateAlertRequest true "Alert"
// @Success 201 {object} AlertResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security ApiKeyAuth
// @Router /alerts [post]
// @ID createAlert
func CreateAlert(_ http.ResponseWriter, _ *http.Request) {}

// GetAlert godoc
// @Summary Get threat alert
// @Description Get threat alert details by ID
// @Tags Alerts
// @Produce json
// @Param id path string true "Alert ID" format(uuid)
// @Success 200 {object} AlertResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security ApiKeyAuth
// @Router /alerts/{id} [get]
// @ID getAlert
func GetAlert(_ http.ResponseWriter, _ *http.Request) {}

// AcknowledgeAlert godoc
// @Summary Acknowledge alert
// @Description Mark a threat alert as acknowledged
// @Tags Alerts
// @Produce json
// @Param id path string true "Alert ID" format(uuid)
// @Success 200 {object} AlertResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security ApiKeyAuth
// @Router /alerts/{id}/acknowledge [patch]
// @ID acknowledgeAlert
func AcknowledgeAlert(_ http.ResponseWriter, _ *http.Request) {}

// ResolveAlert godoc
// @Summary Resolve alert
// @Description Mark a threat alert as resolved
// @Tags Alerts
// @Produce json
// @Param id path string true "Alert ID" format(uuid)
// @Success 200 {object} AlertResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security ApiKeyAuth
// @Router /alerts/{id}/resolve [patch]
// @ID resolveAlert
func ResolveAlert(_ http.ResponseWriter, _ *http.Request) {}

// RecommendAlert godoc
// @Summary Recommend for alert
// @Description Generate and persist an AI recommendation for a threat alert
// @Tags Alerts
// @Produce json
// @Param id path string true "Alert ID" format(uuid)
// @Success 200 {object} AlertResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security ApiKeyAuth
// @Router /alerts/{id}/recommend [post]
// @ID recommendAlert
func RecommendAlert(_ http.ResponseWriter, _ *http.Request) {}

// ListSegments godoc
// @Summary List network segments
// @Description Get all configured network segments
// @Tags Segments
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security ApiKeyAuth
// @Router /segments [get]
// @ID listSegments
func ListSegments(_ http.ResponseWriter, _ *http.Request) {}

// CreateSegment godoc
// @Summary Create network segment
// @Description Create a new monitored network segment
// @Tags Segments
// @Accept json
// @Produce json
// @Param segment body SegmentRequest true "Segment"
// @Success 201 {object} SegmentResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security ApiKeyAuth
// @Router /segments [post]
// @ID createSegment
func CreateSegment(_ http.ResponseWriter, _ *http.Request) {}

// GetSegment godoc
// @Summary Get network segment
// @Description Get network segment details by ID
// @Tags Segments
// @Produce json
// @Param id path string true "Segment ID" format(uuid)
// @Success 200 {object} SegmentResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security ApiKeyAuth
// @Router /segments/{id} [get]
// @ID getSegment
func GetSegment(_ http.ResponseWriter, _ *http.Request) {}

// UpdateSegment godoc
// @Summary Update network segment
// @Description Update a network segment's configuration
// @Tags Segments
// @Accept json
// @Produce json
// @Param id path string true "Segment ID" format(uuid)
// @Param segment body SegmentRequest true "Updated segment"
// @Success 200 {object} SegmentResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security ApiKeyAuth
// @Router /segments/{id} [put]
// @ID updateSegment
func UpdateSegment(_ http.ResponseWriter, _ *http.Request) {}

// DeleteSegment godoc
// @Summary Delete network segment
// @Description Remove a network segment
// @Tags Segments
// @Param id path string true "Segment ID" format(uuid)
// @Success 204 "Successfully deleted"
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security ApiKeyAuth
// @Router /segments/{id} [delete]
// @ID deleteSegment
func DeleteSegment(_ http.ResponseWriter, _ *http.Request) {}

// AdminStatus godoc
// @Summary Admin status
// @Description Returns runtime system status including memory and scan activity
// @Tags Admin
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /admin/status [get]
// @ID getAdminStatus
func AdminStatus(_ http.ResponseWriter, _ *http.Request) {}

// ListKeys godoc
// @Summary List API keys
// @Description Get metadata for issued API keys; secrets are never returned
// @Tags Admin
// @Produce json
// @Param include_inactive query boolean false "Include revoked keys"
// @Param include_expired query boolean false "Include expired keys"
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security ApiKeyAuth
// @Router /admin/keys [get]
// @ID listKeys
func ListKeys(_ http.ResponseWriter, _ *http.Request) {}

// CreateKey godoc
// @Summary Issue API key
// @Description Issue a new API key; the secret appears only in this response
// @Tags Admin
// @Accept json
// @Produce json
// @Param key body CreateKeyRequest true "Key request"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security ApiKeyAuth
// @Router /admin/keys [post]
// @ID createKey
func CreateKey(_ http.ResponseWriter, _ *http.Request) {}

// RevokeKey godoc
// @Summary Revoke API key
// @Description Deactivate an API key by ID, prefix, or name
// @Tags Admin
// @Param id path string true "Key identifier"
// @Success 204 "Successfully revoked"
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security ApiKeyAuth
// @Router /admin/keys/{id} [delete]
// @ID revokeKey
func RevokeKey(_ http.ResponseWriter, _ *http.Request) {}
