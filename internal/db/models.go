package db

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// NetworkAddr wraps net.IPNet to implement PostgreSQL CIDR type.
type NetworkAddr struct {
	net.IPNet
}

// Scan implements sql.Scanner for PostgreSQL CIDR type.
func (n *NetworkAddr) Scan(value interface{}) error {
	if value == nil {
		return nil
	}

	switch v := value.(type) {
	case string:
		_, ipnet, err := net.ParseCIDR(v)
		if err != nil {
			return fmt.Errorf("failed to parse CIDR: %w", err)
		}
		n.IPNet = *ipnet
		return nil
	case []byte:
		_, ipnet, err := net.ParseCIDR(string(v))
		if err != nil {
			return fmt.Errorf("failed to parse CIDR: %w", err)
		}
		n.IPNet = *ipnet
		return nil
	default:
		return fmt.Errorf("cannot scan %T into NetworkAddr", value)
	}
}

// Value implements driver.Valuer for PostgreSQL CIDR type.
func (n NetworkAddr) Value() (driver.Value, error) {
	if len(n.IP) == 0 {
		return nil, nil
	}
	return n.IPNet.String(), nil
}

// String returns the CIDR notation string.
func (n NetworkAddr) String() string {
	return n.IPNet.String()
}

// MarshalJSON renders the network in CIDR notation.
func (n NetworkAddr) MarshalJSON() ([]byte, error) {
	if len(n.IP) == 0 {
		return []byte("null"), nil
	}
	return json.Marshal(n.IPNet.String())
}

// UnmarshalJSON parses CIDR notation.
func (n *NetworkAddr) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		return nil
	}
	_, ipnet, err := net.ParseCIDR(s)
	if err != nil {
		return fmt.Errorf("failed to parse CIDR: %w", err)
	}
	n.IPNet = *ipnet
	return nil
}

// IPAddr wraps net.IP to implement PostgreSQL INET type.
type IPAddr struct {
	net.IP
}

// Scan implements sql.Scanner for PostgreSQL INET type.
func (ip *IPAddr) Scan(value interface{}) error {
	if value == nil {
		return nil
	}

	switch v := value.(type) {
	case string:
		parsed := net.ParseIP(v)
		if parsed == nil {
			return fmt.Errorf("failed to parse IP address: %s", v)
		}
		ip.IP = parsed
		return nil
	case []byte:
		parsed := net.ParseIP(string(v))
		if parsed == nil {
			return fmt.Errorf("failed to parse IP address: %s", string(v))
		}
		ip.IP = parsed
		return nil
	default:
		return fmt.Errorf("cannot scan %T into IPAddr", value)
	}
}

// Value implements driver.Valuer for PostgreSQL INET type.
func (ip IPAddr) Value() (driver.Value, error) {
	if ip.IP == nil {
		return nil, nil
	}
	return ip.IP.String(), nil
}

// String returns the IP address string.
func (ip IPAddr) String() string {
	if ip.IP == nil {
		return ""
	}
	return ip.IP.String()
}

// MACAddr wraps net.HardwareAddr to implement PostgreSQL MACADDR type.
type MACAddr struct {
	net.HardwareAddr
}

// Scan implements sql.Scanner for PostgreSQL MACADDR type.
func (mac *MACAddr) Scan(value interface{}) error {
	if value == nil {
		return nil
	}

	switch v := value.(type) {
	case string:
		hw, err := net.ParseMAC(v)
		if err != nil {
			return fmt.Errorf("failed to parse MAC address: %w", err)
		}
		mac.HardwareAddr = hw
		return nil
	case []byte:
		hw, err := net.ParseMAC(string(v))
		if err != nil {
			return fmt.Errorf("failed to parse MAC address: %w", err)
		}
		mac.HardwareAddr = hw
		return nil
	default:
		return fmt.Errorf("cannot scan %T into MACAddr", value)
	}
}

// Value implements driver.Valuer for PostgreSQL MACADDR type.
func (mac MACAddr) Value() (driver.Value, error) {
	if mac.HardwareAddr == nil {
		return nil, nil
	}
	return mac.HardwareAddr.String(), nil
}

// String returns the MAC address string.
func (mac MACAddr) String() string {
	if mac.HardwareAddr == nil {
		return ""
	}
	return mac.HardwareAddr.String()
}

// MarshalJSON renders the MAC in its text form.
func (mac MACAddr) MarshalJSON() ([]byte, error) {
	if mac.HardwareAddr == nil {
		return []byte("null"), nil
	}
	return json.Marshal(mac.HardwareAddr.String())
}

// UnmarshalJSON parses a MAC address string.
func (mac *MACAddr) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		return nil
	}
	hw, err := net.ParseMAC(s)
	if err != nil {
		return fmt.Errorf("failed to parse MAC address: %w", err)
	}
	mac.HardwareAddr = hw
	return nil
}

// JSONB wraps json.RawMessage for PostgreSQL JSONB type.
type JSONB json.RawMessage

// Scan implements sql.Scanner for PostgreSQL JSONB type.
func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}

	switch v := value.(type) {
	case []byte:
		*j = JSONB(v)
		return nil
	case string:
		*j = JSONB([]byte(v))
		return nil
	default:
		return fmt.Errorf("cannot scan %T into JSONB", value)
	}
}

// Value implements driver.Valuer for PostgreSQL JSONB type.
func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return []byte(j), nil
}

// String returns the JSON string.
func (j JSONB) String() string {
	return string(j)
}

// MarshalJSON implements json.Marshaler.
func (j JSONB) MarshalJSON() ([]byte, error) {
	if j == nil {
		return []byte("null"), nil
	}
	return []byte(j), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (j *JSONB) UnmarshalJSON(data []byte) error {
	*j = JSONB(data)
	return nil
}

// ScanJob represents a single scan execution through its lifecycle.
type ScanJob struct {
	ID                   uuid.UUID  `db:"id" json:"id"`
	Kind                 string     `db:"kind" json:"kind"`
	Target               string     `db:"target" json:"target"`
	Status               string     `db:"status" json:"status"`
	StartedAt            *time.Time `db:"started_at" json:"started_at,omitempty"`
	CompletedAt          *time.Time `db:"completed_at" json:"completed_at,omitempty"`
	DurationSeconds      *float64   `db:"duration_seconds" json:"duration_seconds,omitempty"`
	DevicesDiscovered    int        `db:"devices_discovered" json:"devices_discovered"`
	VulnerabilitiesFound int        `db:"vulnerabilities_found" json:"vulnerabilities_found"`
	PortsScanned         int        `db:"ports_scanned" json:"ports_scanned"`
	Results              JSONB      `db:"results" json:"results,omitempty"`
	ErrorMessage         *string    `db:"error_message" json:"error_message,omitempty"`
	AISummary            *string    `db:"ai_summary" json:"ai_summary,omitempty"`
	CreatedBy            *string    `db:"created_by" json:"created_by,omitempty"`
	CreatedAt            time.Time  `db:"created_at" json:"created_at"`
}

// IsTerminal reports whether the job has reached a final state.
func (j *ScanJob) IsTerminal() bool {
	switch j.Status {
	case ScanJobStatusCompleted, ScanJobStatusFailed, ScanJobStatusCancelled:
		return true
	}
	return false
}

// SetResults serializes arbitrary result metadata into the job record.
func (j *ScanJob) SetResults(results map[string]interface{}) error {
	if results == nil {
		j.Results = nil
		return nil
	}
	data, err := json.Marshal(results)
	if err != nil {
		return fmt.Errorf("failed to marshal job results: %w", err)
	}
	j.Results = JSONB(data)
	return nil
}

// GetResults deserializes the job's result metadata.
func (j *ScanJob) GetResults() (map[string]interface{}, error) {
	if len(j.Results) == 0 {
		return map[string]interface{}{}, nil
	}
	var results map[string]interface{}
	if err := json.Unmarshal([]byte(j.Results), &results); err != nil {
		return nil, fmt.Errorf("failed to unmarshal job results: %w", err)
	}
	return results, nil
}

// ServiceInfo describes one detected service on a device port.
type ServiceInfo struct {
	Port     int    `json:"port"`
	Protocol string `json:"protocol"`
	State    string `json:"state"`
	Name     string `json:"name"`
	Product  string `json:"product,omitempty"`
	Version  string `json:"version,omitempty"`
}

// Device represents a profiled network device.
type Device struct {
	ID              uuid.UUID      `db:"id" json:"id"`
	IPAddress       IPAddr         `db:"ip_address" json:"ip_address"`
	MACAddress      *MACAddr       `db:"mac_address" json:"mac_address,omitempty"`
	Hostname        *string        `db:"hostname" json:"hostname,omitempty"`
	DeviceType      string         `db:"device_type" json:"device_type"`
	OSName          *string        `db:"os_name" json:"os_name,omitempty"`
	OSVersion       *string        `db:"os_version" json:"os_version,omitempty"`
	Vendor          *string        `db:"vendor" json:"vendor,omitempty"`
	OpenPorts       pq.Int64Array  `db:"open_ports" json:"open_ports"`
	Services        JSONB          `db:"services" json:"services,omitempty"`
	DiscoveredBy    pq.StringArray `db:"discovered_by" json:"discovered_by,omitempty"`
	Metadata        JSONB          `db:"metadata" json:"metadata,omitempty"`
	LastSeen        time.Time      `db:"last_seen" json:"last_seen"`
	FirstDiscovered time.Time      `db:"first_discovered" json:"first_discovered"`
	IsActive        bool           `db:"is_active" json:"is_active"`
	CreatedAt       time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time      `db:"updated_at" json:"updated_at"`
}

// GetServices deserializes the per-port service map. Keys are decimal
// port numbers.
func (d *Device) GetServices() (map[string]ServiceInfo, error) {
	if len(d.Services) == 0 {
		return map[string]ServiceInfo{}, nil
	}
	var services map[string]ServiceInfo
	if err := json.Unmarshal([]byte(d.Services), &services); err != nil {
		return nil, fmt.Errorf("failed to unmarshal device services: %w", err)
	}
	return services, nil
}

// SetServices replaces the device's service map wholesale.
func (d *Device) SetServices(services map[string]ServiceInfo) error {
	if services == nil {
		d.Services = nil
		return nil
	}
	data, err := json.Marshal(services)
	if err != nil {
		return fmt.Errorf("failed to marshal device services: %w", err)
	}
	d.Services = JSONB(data)
	return nil
}

// HasOpenPort reports whether the device's recorded open-port list
// contains the given port.
func (d *Device) HasOpenPort(port int) bool {
	for _, p := range d.OpenPorts {
		if int(p) == port {
			return true
		}
	}
	return false
}

// Vulnerability represents a finding attached to a device.
type Vulnerability struct {
	ID              uuid.UUID      `db:"id" json:"id"`
	DeviceID        uuid.UUID      `db:"device_id" json:"device_id"`
	CVEID           *string        `db:"cve_id" json:"cve_id,omitempty"`
	Title           string         `db:"title" json:"title"`
	Description     string         `db:"description" json:"description"`
	Severity        string         `db:"severity" json:"severity"`
	CVSSScore       *float64       `db:"cvss_score" json:"cvss_score,omitempty"`
	AffectedService *string        `db:"affected_service" json:"affected_service,omitempty"`
	Port            *int           `db:"port" json:"port,omitempty"`
	Solution        *string        `db:"solution" json:"solution,omitempty"`
	References      pq.StringArray `db:"refs" json:"references,omitempty"`
	DiscoveredAt    time.Time      `db:"discovered_at" json:"discovered_at"`
	IsResolved      bool           `db:"is_resolved" json:"is_resolved"`
	AIAnalysis      *string        `db:"ai_analysis" json:"ai_analysis,omitempty"`
}

// ThreatAlert represents a security alert raised from scan findings.
type ThreatAlert struct {
	ID               uuid.UUID  `db:"id" json:"id"`
	Title            string     `db:"title" json:"title"`
	Description      string     `db:"description" json:"description"`
	ThreatLevel      string     `db:"threat_level" json:"threat_level"`
	DeviceID         *uuid.UUID `db:"device_id" json:"device_id,omitempty"`
	VulnerabilityID  *uuid.UUID `db:"vulnerability_id" json:"vulnerability_id,omitempty"`
	SourceIP         *IPAddr    `db:"source_ip" json:"source_ip,omitempty"`
	TargetIP         *IPAddr    `db:"target_ip" json:"target_ip,omitempty"`
	AttackType       *string    `db:"attack_type" json:"attack_type,omitempty"`
	IsAcknowledged   bool       `db:"is_acknowledged" json:"is_acknowledged"`
	IsResolved       bool       `db:"is_resolved" json:"is_resolved"`
	DetectedAt       time.Time  `db:"detected_at" json:"detected_at"`
	ResolvedAt       *time.Time `db:"resolved_at" json:"resolved_at,omitempty"`
	AIRecommendation *string    `db:"ai_recommendation" json:"ai_recommendation,omitempty"`
}

// NetworkSegment represents a monitored network range.
type NetworkSegment struct {
	ID                 uuid.UUID   `db:"id" json:"id"`
	Name               string      `db:"name" json:"name"`
	CIDR               NetworkAddr `db:"cidr" json:"cidr"`
	Description        *string     `db:"description" json:"description,omitempty"`
	DeviceCount        int         `db:"device_count" json:"device_count"`
	LastScanned        *time.Time  `db:"last_scanned" json:"last_scanned,omitempty"`
	ScanFrequencyHours *int        `db:"scan_frequency_hours" json:"scan_frequency_hours,omitempty"`
	IsMonitored        bool        `db:"is_monitored" json:"is_monitored"`
	CreatedAt          time.Time   `db:"created_at" json:"created_at"`
}

// DashboardStats aggregates counts for the dashboard endpoint.
type DashboardStats struct {
	TotalDevices            int            `json:"total_devices"`
	ActiveDevices           int            `json:"active_devices"`
	TotalVulnerabilities    int            `json:"total_vulnerabilities"`
	CriticalVulnerabilities int            `json:"critical_vulnerabilities"`
	TotalAlerts             int            `json:"total_alerts"`
	UnresolvedAlerts        int            `json:"unresolved_alerts"`
	ScansToday              int            `json:"scans_today"`
	NetworkSegments         int            `json:"network_segments"`
	LastScan                *time.Time     `json:"last_scan,omitempty"`
	ThreatLevelDistribution map[string]int `json:"threat_level_distribution"`
	DeviceTypeDistribution  map[string]int `json:"device_type_distribution"`
}

// ScanJobStatus constants.
const (
	ScanJobStatusPending   = "pending"
	ScanJobStatusRunning   = "running"
	ScanJobStatusCompleted = "completed"
	ScanJobStatusFailed    = "failed"
	ScanJobStatusCancelled = "cancelled"
)

// ScanKind constants. SMB and AD enumeration are recognized request
// kinds but are not implemented by this scanner.
const (
	ScanKindDiscovery     = "network_discovery"
	ScanKindVulnerability = "vulnerability_scan"
	ScanKindPortScan      = "port_scan"
	ScanKindSMB           = "smb_scan"
	ScanKindAD            = "ad_scan"
)

// SupportedScanKinds maps each executable kind to true.
var SupportedScanKinds = map[string]bool{
	ScanKindDiscovery:     true,
	ScanKindVulnerability: true,
	ScanKindPortScan:      true,
}

// KnownScanKinds covers every kind a client may legitimately name,
// including those this scanner rejects at submission.
var KnownScanKinds = map[string]bool{
	ScanKindDiscovery:     true,
	ScanKindVulnerability: true,
	ScanKindPortScan:      true,
	ScanKindSMB:           true,
	ScanKindAD:            true,
}

// Severity constants, ordered from most to least severe.
const (
	SeverityCritical = "critical"
	SeverityHigh     = "high"
	SeverityMedium   = "medium"
	SeverityLow      = "low"
	SeverityInfo     = "info"
)

// severityRanks orders severities for comparison; higher is worse.
var severityRanks = map[string]int{
	SeverityCritical: 5,
	SeverityHigh:     4,
	SeverityMedium:   3,
	SeverityLow:      2,
	SeverityInfo:     1,
}

// SeverityRank returns the ordering rank for a severity string.
// Unknown severities rank below info.
func SeverityRank(severity string) int {
	return severityRanks[severity]
}

// ValidSeverity reports whether the string is a recognized severity.
func ValidSeverity(severity string) bool {
	_, ok := severityRanks[severity]
	return ok
}

// DeviceType constants.
const (
	DeviceTypeRouter      = "router"
	DeviceTypeSwitch      = "switch"
	DeviceTypeServer      = "server"
	DeviceTypeWorkstation = "workstation"
	DeviceTypeMobile      = "mobile"
	DeviceTypeIOT         = "iot"
	DeviceTypePrinter     = "printer"
	DeviceTypeUnknown     = "unknown"
)

// DiscoveryMethod constants.
const (
	DiscoveryMethodPing = "ping"
	DiscoveryMethodARP  = "arp"
)

// PortState constants.
const (
	PortStateOpen     = "open"
	PortStateClosed   = "closed"
	PortStateFiltered = "filtered"
	PortStateUnknown  = "unknown"
)

// Protocol constants.
const (
	ProtocolTCP = "tcp"
	ProtocolUDP = "udp"
)
