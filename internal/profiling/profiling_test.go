package profiling

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sentinelsec/sentinel/internal/db"
	"github.com/sentinelsec/sentinel/internal/discovery"
	sentinelerrors "github.com/sentinelsec/sentinel/internal/errors"
)

type fakePortScanner struct {
	scan     *PortScan
	err      error
	gotRange string
}

func (f *fakePortScanner) EnumeratePorts(_ context.Context, _, portRange string) (*PortScan, error) {
	f.gotRange = portRange
	if f.err != nil {
		return nil, f.err
	}
	return f.scan, nil
}

type fakeOSFingerprinter struct {
	match *OSMatch
	err   error
}

func (f *fakeOSFingerprinter) FingerprintOS(_ context.Context, _ string) (*OSMatch, error) {
	return f.match, f.err
}

type fakeResolver struct {
	hostname string
	err      error
}

func (f *fakeResolver) ReverseLookup(_ context.Context, _ string) (string, error) {
	return f.hostname, f.err
}

type fakeARPTable struct {
	entries []discovery.Entry
	err     error
}

func (f *fakeARPTable) Entries(_ context.Context) ([]discovery.Entry, error) {
	return f.entries, f.err
}

type fakeSNMPQuerier struct {
	sys    *SNMPSystem
	err    error
	called bool
}

func (f *fakeSNMPQuerier) QuerySystem(_ context.Context, _ string) (*SNMPSystem, error) {
	f.called = true
	return f.sys, f.err
}

type fakeTLSInspector struct {
	info  *CertificateInfo
	err   error
	ports []int
}

func (f *fakeTLSInspector) InspectCertificate(_ context.Context, _ string, port int) (*CertificateInfo, error) {
	f.ports = append(f.ports, port)
	if f.err != nil {
		return nil, f.err
	}
	info := *f.info
	info.Port = port
	return &info, nil
}

func newTestProfiler(config Config) *Profiler {
	p := New(config)
	p.SetPortScanner(&fakePortScanner{scan: &PortScan{}})
	p.SetOSFingerprinter(&fakeOSFingerprinter{})
	p.SetHostnameResolver(&fakeResolver{})
	p.SetARPTable(&fakeARPTable{})
	p.SetSNMPQuerier(&fakeSNMPQuerier{})
	p.SetTLSInspector(&fakeTLSInspector{})
	return p
}

func TestProfileAssemblesDevice(t *testing.T) {
	p := newTestProfiler(DefaultConfig())
	p.SetPortScanner(&fakePortScanner{scan: &PortScan{
		Open: []db.ServiceInfo{
			{Port: 22, Protocol: "tcp", State: "open", Name: "ssh", Product: "OpenSSH", Version: "8.9"},
			{Port: 80, Protocol: "tcp", State: "open", Name: "http", Product: "nginx"},
		},
		Filtered: 3,
		Closed:   995,
		Scanned:  1000,
	}})
	p.SetHostnameResolver(&fakeResolver{hostname: "web01.lan"})
	p.SetARPTable(&fakeARPTable{entries: []discovery.Entry{
		{IP: net.ParseIP("192.168.1.10"), MAC: "aa:bb:cc:dd:ee:ff"},
		{IP: net.ParseIP("192.168.1.20"), MAC: "11:22:33:44:55:66"},
	}})

	device, err := p.Profile(context.Background(), "192.168.1.10", Options{})
	require.NoError(t, err)

	assert.Equal(t, "192.168.1.10", device.IPAddress.String())
	require.NotNil(t, device.Hostname)
	assert.Equal(t, "web01.lan", *device.Hostname)
	require.NotNil(t, device.MACAddress)
	assert.Equal(t, "aa:bb:cc:dd:ee:ff", device.MACAddress.String())
	assert.Equal(t, db.DeviceTypeServer, device.DeviceType)
	assert.True(t, device.IsActive)
	assert.True(t, device.HasOpenPort(22))
	assert.True(t, device.HasOpenPort(80))

	services, err := device.GetServices()
	require.NoError(t, err)
	require.Len(t, services, 2)
	assert.Equal(t, "OpenSSH", services["22"].Product)

	meta, err := ExtractMetadata(device)
	require.NoError(t, err)
	assert.Equal(t, 1000, meta.PortsScanned)
	assert.Equal(t, 3, meta.FilteredPorts)
	assert.Equal(t, 995, meta.ClosedPorts)
}

func TestProfileInvalidAddress(t *testing.T) {
	p := newTestProfiler(DefaultConfig())

	device, err := p.Profile(context.Background(), "not-an-ip", Options{})
	require.Error(t, err)
	assert.Nil(t, device)
	assert.True(t, sentinelerrors.IsCode(err, sentinelerrors.CodeProfilingFailed))
}

func TestProfileCancelledContext(t *testing.T) {
	p := newTestProfiler(DefaultConfig())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Profile(ctx, "10.0.0.1", Options{})
	require.ErrorIs(t, err, context.Canceled)
}

func TestProfileEnumerationFailureDegrades(t *testing.T) {
	p := newTestProfiler(DefaultConfig())
	p.SetPortScanner(&fakePortScanner{err: errors.New("scanner exploded")})

	device, err := p.Profile(context.Background(), "10.0.0.7", Options{})
	require.NoError(t, err)

	assert.Empty(t, device.OpenPorts)
	assert.Equal(t, db.DeviceTypeUnknown, device.DeviceType)

	meta, err := ExtractMetadata(device)
	require.NoError(t, err)
	assert.Equal(t, 1000, meta.PortsScanned)
}

func TestProfilePortRangeOverride(t *testing.T) {
	p := newTestProfiler(DefaultConfig())
	scanner := &fakePortScanner{scan: &PortScan{}}
	p.SetPortScanner(scanner)

	_, err := p.Profile(context.Background(), "10.0.0.7", Options{PortRange: "1-65535"})
	require.NoError(t, err)
	assert.Equal(t, "1-65535", scanner.gotRange)
}

func TestProfileOSDetection(t *testing.T) {
	p := newTestProfiler(DefaultConfig())
	p.SetOSFingerprinter(&fakeOSFingerprinter{match: &OSMatch{
		Name:       "Linux 5.4 - 5.15",
		Accuracy:   96,
		Vendor:     "Linux",
		Family:     "Linux",
		Generation: "5.X",
	}})

	device, err := p.Profile(context.Background(), "10.0.0.9", Options{OSDetection: true})
	require.NoError(t, err)

	require.NotNil(t, device.OSName)
	assert.Equal(t, "Linux 5.4 - 5.15", *device.OSName)
	require.NotNil(t, device.OSVersion)
	assert.Equal(t, "5.X", *device.OSVersion)
	require.NotNil(t, device.Vendor)
	assert.Equal(t, "Linux", *device.Vendor)

	meta, err := ExtractMetadata(device)
	require.NoError(t, err)
	assert.Equal(t, 96, meta.OSAccuracy)
}

func TestProfileOSDetectionFailureDegrades(t *testing.T) {
	p := newTestProfiler(DefaultConfig())
	p.SetOSFingerprinter(&fakeOSFingerprinter{err: errors.New("requires root")})

	device, err := p.Profile(context.Background(), "10.0.0.9", Options{OSDetection: true})
	require.NoError(t, err)
	assert.Nil(t, device.OSName)
}

func TestProfileSNMPEnrichment(t *testing.T) {
	p := newTestProfiler(DefaultConfig())
	p.SetPortScanner(&fakePortScanner{scan: &PortScan{
		Open:    []db.ServiceInfo{{Port: 161, Protocol: "udp", State: "open", Name: "snmp"}},
		Scanned: 1000,
	}})
	snmp := &fakeSNMPQuerier{sys: &SNMPSystem{
		Name:        "core-sw-1",
		Description: "Cisco IOS Software, Catalyst 2960",
	}}
	p.SetSNMPQuerier(snmp)

	device, err := p.Profile(context.Background(), "192.168.1.2", Options{})
	require.NoError(t, err)

	assert.True(t, snmp.called)
	require.NotNil(t, device.Hostname)
	assert.Equal(t, "core-sw-1", *device.Hostname)
	require.NotNil(t, device.Vendor)
	assert.Equal(t, "Cisco", *device.Vendor)
	assert.Equal(t, db.DeviceTypeSwitch, device.DeviceType)

	meta, err := ExtractMetadata(device)
	require.NoError(t, err)
	require.NotNil(t, meta.SNMP)
	assert.Equal(t, "core-sw-1", meta.SNMP.Name)
}

func TestProfileSNMPSkippedWithoutPort(t *testing.T) {
	p := newTestProfiler(DefaultConfig())
	snmp := &fakeSNMPQuerier{sys: &SNMPSystem{Name: "unused"}}
	p.SetSNMPQuerier(snmp)

	_, err := p.Profile(context.Background(), "10.0.0.3", Options{})
	require.NoError(t, err)
	assert.False(t, snmp.called)
}

func TestProfileTLSCapture(t *testing.T) {
	p := newTestProfiler(DefaultConfig())
	p.SetPortScanner(&fakePortScanner{scan: &PortScan{
		Open: []db.ServiceInfo{
			{Port: 443, Protocol: "tcp", State: "open", Name: "https"},
			{Port: 8443, Protocol: "tcp", State: "open", Name: "https-alt"},
		},
		Scanned: 1000,
	}})
	inspector := &fakeTLSInspector{info: &CertificateInfo{
		SubjectCN:  "device.local",
		IssuerCN:   "device.local",
		NotBefore:  time.Now().Add(-48 * time.Hour),
		NotAfter:   time.Now().Add(-24 * time.Hour),
		SelfSigned: true,
	}}
	p.SetTLSInspector(inspector)

	device, err := p.Profile(context.Background(), "10.0.0.4", Options{})
	require.NoError(t, err)

	assert.Equal(t, []int{443, 8443}, inspector.ports)

	meta, err := ExtractMetadata(device)
	require.NoError(t, err)
	require.Len(t, meta.TLS, 2)
	assert.Equal(t, 443, meta.TLS[0].Port)
	assert.True(t, meta.TLS[0].SelfSigned)
	assert.True(t, meta.TLS[0].Expired(time.Now()))
}

func TestProfileTLSDisabled(t *testing.T) {
	config := DefaultConfig()
	config.TLSCapture = false
	p := newTestProfiler(config)
	p.SetPortScanner(&fakePortScanner{scan: &PortScan{
		Open:    []db.ServiceInfo{{Port: 443, Protocol: "tcp", State: "open", Name: "https"}},
		Scanned: 1000,
	}})
	inspector := &fakeTLSInspector{info: &CertificateInfo{}}
	p.SetTLSInspector(inspector)

	_, err := p.Profile(context.Background(), "10.0.0.4", Options{})
	require.NoError(t, err)
	assert.Empty(t, inspector.ports)
}

func TestPortRangeSize(t *testing.T) {
	tests := []struct {
		portRange string
		expected  int
	}{
		{"1-1000", 1000},
		{"1-65535", 65535},
		{"22", 1},
		{"22,80,443", 3},
		{"22,8000-8100", 102},
		{"", 0},
		{"80-22", 0},
		{"abc", 0},
	}

	for _, tt := range tests {
		t.Run(tt.portRange, func(t *testing.T) {
			assert.Equal(t, tt.expected, PortRangeSize(tt.portRange))
		})
	}
}

func TestVendorFromDescription(t *testing.T) {
	assert.Equal(t, "Cisco", vendorFromDescription("Cisco IOS Software"))
	assert.Equal(t, "Brother", vendorFromDescription("Brother NC-8300w"))
	assert.Equal(t, "", vendorFromDescription("GNU/Linux generic"))
}
