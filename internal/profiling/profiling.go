// Package profiling builds device profiles for responsive hosts. A
// profile pass enumerates services over a configured port range,
// optionally fingerprints the operating system, resolves a reverse DNS
// name, reads the ARP cache for a MAC address, and enriches the result
// over SNMP and TLS where the device exposes those. Every step past
// address validation is best effort: a failed step degrades the
// profile instead of failing it.
package profiling

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/lib/pq"

	"github.com/sentinelsec/sentinel/internal/db"
	"github.com/sentinelsec/sentinel/internal/discovery"
	"github.com/sentinelsec/sentinel/internal/errors"
	"github.com/sentinelsec/sentinel/internal/logging"
	"github.com/sentinelsec/sentinel/internal/metrics"
)

// Scan modes for service enumeration.
const (
	ModeConnect = "connect"
	ModeSYN     = "syn"
	ModeUDP     = "udp"
)

const (
	defaultPortRange   = "1-1000"
	defaultSNMPTimeout = 2 * time.Second
	defaultTLSTimeout  = 5 * time.Second

	snmpPort = 161
)

// httpsPorts are probed for TLS certificates when open.
var httpsPorts = []int{443, 8443}

// Config holds profiler settings shared by every profile pass.
type Config struct {
	// Port range enumerated on each host
	PortRange string

	// Service enumeration mode (connect, syn, udp)
	Mode string

	// SNMP community used for enrichment; empty disables SNMP
	SNMPCommunity string
	SNMPTimeout   time.Duration

	// Capture TLS certificates from HTTPS ports
	TLSCapture bool
}

// DefaultConfig returns profiler settings matching an unprivileged
// deployment.
func DefaultConfig() Config {
	return Config{
		PortRange:     defaultPortRange,
		Mode:          ModeConnect,
		SNMPCommunity: "public",
		SNMPTimeout:   defaultSNMPTimeout,
		TLSCapture:    true,
	}
}

// Options control a single profile pass.
type Options struct {
	// Override the configured port range; empty keeps the default
	PortRange string

	// Run OS fingerprinting (requires raw socket privileges)
	OSDetection bool
}

// PortScan is the bucketed outcome of one service enumeration.
type PortScan struct {
	Open     []db.ServiceInfo
	Filtered int
	Closed   int
	Scanned  int
}

// OSMatch is the best operating system guess for a host.
type OSMatch struct {
	Name       string
	Accuracy   int
	Vendor     string
	Family     string
	Generation string
}

// SNMPSystem holds the system-group values read from an SNMP agent.
type SNMPSystem struct {
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
	Location    string `json:"location,omitempty"`
}

// CertificateInfo summarizes a captured TLS leaf certificate.
type CertificateInfo struct {
	Port       int       `json:"port"`
	SubjectCN  string    `json:"subject_cn,omitempty"`
	IssuerCN   string    `json:"issuer_cn,omitempty"`
	NotBefore  time.Time `json:"not_before"`
	NotAfter   time.Time `json:"not_after"`
	SelfSigned bool      `json:"self_signed"`
}

// Expired reports whether the certificate validity window has passed.
func (c *CertificateInfo) Expired(now time.Time) bool {
	return now.After(c.NotAfter)
}

// DeviceMetadata is the document stored in a device's metadata column
// by a profile pass.
type DeviceMetadata struct {
	PortsScanned  int               `json:"ports_scanned"`
	FilteredPorts int               `json:"filtered_ports,omitempty"`
	ClosedPorts   int               `json:"closed_ports,omitempty"`
	OSAccuracy    int               `json:"os_accuracy,omitempty"`
	SNMP          *SNMPSystem       `json:"snmp,omitempty"`
	TLS           []CertificateInfo `json:"tls,omitempty"`
}

// AttachMetadata serializes metadata onto the device.
func AttachMetadata(device *db.Device, meta *DeviceMetadata) error {
	data, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("failed to marshal device metadata: %w", err)
	}
	device.Metadata = db.JSONB(data)
	return nil
}

// ExtractMetadata deserializes profile metadata from the device.
// Devices without metadata yield an empty document.
func ExtractMetadata(device *db.Device) (*DeviceMetadata, error) {
	if len(device.Metadata) == 0 {
		return &DeviceMetadata{}, nil
	}
	var meta DeviceMetadata
	if err := json.Unmarshal([]byte(device.Metadata), &meta); err != nil {
		return nil, fmt.Errorf("failed to unmarshal device metadata: %w", err)
	}
	return &meta, nil
}

// PortScanner enumerates services on a single address.
type PortScanner interface {
	EnumeratePorts(ctx context.Context, address, portRange string) (*PortScan, error)
}

// OSFingerprinter guesses the operating system of a single address.
type OSFingerprinter interface {
	FingerprintOS(ctx context.Context, address string) (*OSMatch, error)
}

// HostnameResolver reverse-resolves an address to a name.
type HostnameResolver interface {
	ReverseLookup(ctx context.Context, address string) (string, error)
}

// SNMPQuerier reads the system group from an SNMP agent.
type SNMPQuerier interface {
	QuerySystem(ctx context.Context, address string) (*SNMPSystem, error)
}

// TLSInspector captures the peer certificate from a TLS endpoint.
type TLSInspector interface {
	InspectCertificate(ctx context.Context, address string, port int) (*CertificateInfo, error)
}

// Profiler assembles device profiles from its probe backends.
type Profiler struct {
	ports    PortScanner
	osprobe  OSFingerprinter
	resolver HostnameResolver
	arp      discovery.ARPTable
	snmp     SNMPQuerier
	tls      TLSInspector
	config   Config
	logger   *logging.Logger
}

// New creates a profiler with the production nmap, DNS, ARP, SNMP, and
// TLS backends.
func New(config Config) *Profiler {
	if config.PortRange == "" {
		config.PortRange = defaultPortRange
	}
	if config.SNMPTimeout <= 0 {
		config.SNMPTimeout = defaultSNMPTimeout
	}

	return &Profiler{
		ports:    newNmapScanner(config.Mode),
		osprobe:  newNmapScanner(config.Mode),
		resolver: newPTRResolver(0),
		arp:      discovery.NewSystemARPTable(""),
		snmp:     newSNMPQuerier(config.SNMPCommunity, config.SNMPTimeout),
		tls:      newCertInspector(defaultTLSTimeout),
		config:   config,
		logger:   logging.Default().WithComponent("profiling"),
	}
}

// SetPortScanner replaces the service enumeration backend.
func (p *Profiler) SetPortScanner(scanner PortScanner) {
	p.ports = scanner
}

// SetOSFingerprinter replaces the OS detection backend.
func (p *Profiler) SetOSFingerprinter(probe OSFingerprinter) {
	p.osprobe = probe
}

// SetHostnameResolver replaces the reverse DNS backend.
func (p *Profiler) SetHostnameResolver(resolver HostnameResolver) {
	p.resolver = resolver
}

// SetARPTable replaces the MAC address source.
func (p *Profiler) SetARPTable(table discovery.ARPTable) {
	p.arp = table
}

// SetSNMPQuerier replaces the SNMP enrichment backend.
func (p *Profiler) SetSNMPQuerier(querier SNMPQuerier) {
	p.snmp = querier
}

// SetTLSInspector replaces the certificate capture backend.
func (p *Profiler) SetTLSInspector(inspector TLSInspector) {
	p.tls = inspector
}

// Profile builds a device profile for one address. The returned device
// is not persisted. An unparseable address or an expired context fails
// the pass; every probe step degrades instead.
func (p *Profiler) Profile(ctx context.Context, address string, opts Options) (*db.Device, error) {
	started := time.Now()

	ip := net.ParseIP(address)
	if ip == nil {
		return nil, errors.ErrProfilingFailed(address, fmt.Errorf("invalid IP address %q", address))
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	device := &db.Device{
		IPAddress:  db.IPAddr{IP: ip},
		DeviceType: db.DeviceTypeUnknown,
		LastSeen:   started,
		IsActive:   true,
	}
	meta := &DeviceMetadata{}

	p.resolveHostname(ctx, address, device)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	openPorts, err := p.enumerateServices(ctx, address, opts, device, meta)
	if err != nil {
		return nil, err
	}

	if opts.OSDetection {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		p.fingerprintOS(ctx, address, device, meta)
	}

	p.lookupMAC(ctx, ip, device)

	if p.config.SNMPCommunity != "" && device.HasOpenPort(snmpPort) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		p.enrichSNMP(ctx, address, device, meta)
	}

	if p.config.TLSCapture {
		p.captureTLS(ctx, address, device, meta)
	}

	hostname := ""
	if device.Hostname != nil {
		hostname = *device.Hostname
	}
	device.DeviceType = Classify(hostname, openPorts)

	if err := AttachMetadata(device, meta); err != nil {
		return nil, errors.ErrProfilingFailed(address, err)
	}

	metrics.RecordProfileDuration(address, time.Since(started))
	p.logger.InfoProfile("Device profiled", address,
		"device_type", device.DeviceType,
		"open_ports", len(openPorts),
		"duration", time.Since(started))

	return device, nil
}

// resolveHostname sets the reverse DNS name when one exists.
func (p *Profiler) resolveHostname(ctx context.Context, address string, device *db.Device) {
	if p.resolver == nil {
		return
	}

	hostname, err := p.resolver.ReverseLookup(ctx, address)
	if err != nil {
		p.logger.WarnProfile("Reverse DNS lookup failed", address, err)
		return
	}
	if hostname != "" {
		device.Hostname = &hostname
	}
}

// enumerateServices records open ports and the service table. A failed
// enumeration leaves the device portless rather than failing the pass,
// unless the context itself expired.
func (p *Profiler) enumerateServices(
	ctx context.Context, address string, opts Options,
	device *db.Device, meta *DeviceMetadata,
) ([]int, error) {
	portRange := p.config.PortRange
	if opts.PortRange != "" {
		portRange = opts.PortRange
	}

	scan, err := p.ports.EnumeratePorts(ctx, address, portRange)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		p.logger.WarnProfile("Service enumeration failed", address, err)
		scan = &PortScan{Scanned: PortRangeSize(portRange)}
	}

	openPorts := make([]int, 0, len(scan.Open))
	stored := make(pq.Int64Array, 0, len(scan.Open))
	services := make(map[string]db.ServiceInfo, len(scan.Open))
	for _, svc := range scan.Open {
		openPorts = append(openPorts, svc.Port)
		stored = append(stored, int64(svc.Port))
		services[strconv.Itoa(svc.Port)] = svc
	}
	device.OpenPorts = stored
	if err := device.SetServices(services); err != nil {
		return nil, errors.ErrProfilingFailed(address, err)
	}

	meta.PortsScanned = scan.Scanned
	meta.FilteredPorts = scan.Filtered
	meta.ClosedPorts = scan.Closed
	return openPorts, nil
}

// fingerprintOS records the best OS guess, if any.
func (p *Profiler) fingerprintOS(ctx context.Context, address string, device *db.Device, meta *DeviceMetadata) {
	if p.osprobe == nil {
		return
	}

	match, err := p.osprobe.FingerprintOS(ctx, address)
	if err != nil {
		p.logger.WarnProfile("OS fingerprinting failed", address, err)
		return
	}
	if match == nil || match.Name == "" {
		return
	}

	name := match.Name
	device.OSName = &name
	if match.Generation != "" {
		generation := match.Generation
		device.OSVersion = &generation
	}
	if match.Vendor != "" && device.Vendor == nil {
		vendor := match.Vendor
		device.Vendor = &vendor
	}
	meta.OSAccuracy = match.Accuracy
}

// lookupMAC fills the MAC address from the ARP cache when the kernel
// has an entry for the address.
func (p *Profiler) lookupMAC(ctx context.Context, ip net.IP, device *db.Device) {
	if p.arp == nil || device.MACAddress != nil {
		return
	}

	entries, err := p.arp.Entries(ctx)
	if err != nil {
		p.logger.WarnProfile("ARP cache read failed", ip.String(), err)
		return
	}
	for _, entry := range entries {
		if !entry.IP.Equal(ip) {
			continue
		}
		hw, err := net.ParseMAC(entry.MAC)
		if err != nil {
			continue
		}
		device.MACAddress = &db.MACAddr{HardwareAddr: hw}
		return
	}
}

// enrichSNMP reads the system group from the device's SNMP agent. The
// agent's sysName backfills a missing hostname and sysDescr drives a
// vendor guess.
func (p *Profiler) enrichSNMP(ctx context.Context, address string, device *db.Device, meta *DeviceMetadata) {
	if p.snmp == nil {
		return
	}

	sys, err := p.snmp.QuerySystem(ctx, address)
	if err != nil {
		p.logger.WarnProfile("SNMP enrichment failed", address, err)
		return
	}
	if sys == nil {
		return
	}

	meta.SNMP = sys
	if device.Hostname == nil && sys.Name != "" {
		name := sys.Name
		device.Hostname = &name
	}
	if device.Vendor == nil {
		if vendor := vendorFromDescription(sys.Description); vendor != "" {
			device.Vendor = &vendor
		}
	}
}

// captureTLS records leaf certificates from open HTTPS ports.
func (p *Profiler) captureTLS(ctx context.Context, address string, device *db.Device, meta *DeviceMetadata) {
	if p.tls == nil {
		return
	}

	for _, port := range httpsPorts {
		if !device.HasOpenPort(port) {
			continue
		}
		if ctx.Err() != nil {
			return
		}
		info, err := p.tls.InspectCertificate(ctx, address, port)
		if err != nil {
			p.logger.WarnProfile("TLS certificate capture failed", address, err, "port", port)
			continue
		}
		if info != nil {
			meta.TLS = append(meta.TLS, *info)
		}
	}
}

// knownVendors maps sysDescr substrings to vendor names.
var knownVendors = []struct {
	substring string
	vendor    string
}{
	{"cisco", "Cisco"},
	{"juniper", "Juniper"},
	{"mikrotik", "MikroTik"},
	{"ubiquiti", "Ubiquiti"},
	{"hewlett", "HP"},
	{"hp ", "HP"},
	{"brother", "Brother"},
	{"canon", "Canon"},
	{"epson", "Epson"},
	{"synology", "Synology"},
	{"qnap", "QNAP"},
	{"netgear", "Netgear"},
	{"d-link", "D-Link"},
	{"tp-link", "TP-Link"},
}

// vendorFromDescription guesses a vendor from an SNMP sysDescr string.
func vendorFromDescription(description string) string {
	lower := strings.ToLower(description)
	for _, known := range knownVendors {
		if strings.Contains(lower, known.substring) {
			return known.vendor
		}
	}
	return ""
}

// PortRangeSize counts the ports covered by an nmap-style port range
// expression such as "1-1000" or "22,80,443,8000-8100". Malformed
// segments count as zero.
func PortRangeSize(portRange string) int {
	total := 0
	for _, segment := range strings.Split(portRange, ",") {
		segment = strings.TrimSpace(segment)
		if segment == "" {
			continue
		}
		if start, end, ok := strings.Cut(segment, "-"); ok {
			lo, err1 := strconv.Atoi(start)
			hi, err2 := strconv.Atoi(end)
			if err1 != nil || err2 != nil || hi < lo {
				continue
			}
			total += hi - lo + 1
			continue
		}
		if _, err := strconv.Atoi(segment); err == nil {
			total++
		}
	}
	return total
}
