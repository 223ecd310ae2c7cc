package db

import (
	"encoding/json"
	"net"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNetworkAddr tests the NetworkAddr type for PostgreSQL CIDR
func TestNetworkAddr(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{
			name:    "valid IPv4 CIDR",
			input:   "192.168.1.0/24",
			wantErr: false,
		},
		{
			name:    "valid IPv6 CIDR",
			input:   "2001:db8::/32",
			wantErr: false,
		},
		{
			name:    "invalid CIDR",
			input:   "not-a-cidr",
			wantErr: true,
		},
		{
			name:    "IP without mask",
			input:   "192.168.1.1",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var addr NetworkAddr

			// Test Scan method
			err := addr.Scan(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.input, addr.String())

			// Test Value method
			value, err := addr.Value()
			require.NoError(t, err)
			assert.Equal(t, tt.input, value)

			// Test round-trip with bytes
			var addr2 NetworkAddr
			err = addr2.Scan([]byte(tt.input))
			require.NoError(t, err)
			assert.Equal(t, addr.String(), addr2.String())
		})
	}
}

// TestNetworkAddrEdgeCases tests edge cases for NetworkAddr
func TestNetworkAddrEdgeCases(t *testing.T) {
	var addr NetworkAddr

	// Test nil scan
	err := addr.Scan(nil)
	assert.NoError(t, err)

	// Test empty NetworkAddr value
	value, err := addr.Value()
	assert.NoError(t, err)
	assert.Nil(t, value)

	// Test invalid type scan
	err = addr.Scan(123)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "cannot scan")
}

// TestIPAddr tests the IPAddr type for PostgreSQL INET
func TestIPAddr(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{
			name:    "valid IPv4",
			input:   "192.168.1.100",
			wantErr: false,
		},
		{
			name:    "valid IPv6",
			input:   "2001:db8::1",
			wantErr: false,
		},
		{
			name:    "invalid IP",
			input:   "not-an-ip",
			wantErr: true,
		},
		{
			name:    "empty string",
			input:   "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var addr IPAddr

			// Test Scan method
			err := addr.Scan(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.input, addr.String())

			// Test Value method
			value, err := addr.Value()
			require.NoError(t, err)
			assert.Equal(t, tt.input, value)

			// Test round-trip with bytes
			var addr2 IPAddr
			err = addr2.Scan([]byte(tt.input))
			require.NoError(t, err)
			assert.Equal(t, addr.String(), addr2.String())
		})
	}
}

// TestIPAddrEdgeCases tests edge cases for IPAddr
func TestIPAddrEdgeCases(t *testing.T) {
	var addr IPAddr

	// Test nil scan
	err := addr.Scan(nil)
	assert.NoError(t, err)

	// Test empty IPAddr value
	value, err := addr.Value()
	assert.NoError(t, err)
	assert.Nil(t, value)

	// Test string representation of nil IP
	assert.Equal(t, "", addr.String())

	// Test invalid type scan
	err = addr.Scan(123)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "cannot scan")
}

// TestMACAddr tests the MACAddr type for PostgreSQL MACADDR
func TestMACAddr(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{
			name:    "valid MAC with colons",
			input:   "aa:bb:cc:dd:ee:ff",
			wantErr: false,
		},
		{
			name:    "valid MAC with dashes",
			input:   "aa-bb-cc-dd-ee-ff",
			wantErr: false,
		},
		{
			name:    "invalid MAC",
			input:   "not-a-mac",
			wantErr: true,
		},
		{
			name:    "too short",
			input:   "aa:bb:cc",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var addr MACAddr

			// Test Scan method
			err := addr.Scan(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)

			// Normalize expected output (Go always uses colons)
			expectedMAC, err := net.ParseMAC(tt.input)
			require.NoError(t, err)
			assert.Equal(t, expectedMAC.String(), addr.String())

			// Test Value method
			value, err := addr.Value()
			require.NoError(t, err)
			assert.Equal(t, expectedMAC.String(), value)

			// Test round-trip with bytes
			var addr2 MACAddr
			err = addr2.Scan([]byte(tt.input))
			require.NoError(t, err)
			assert.Equal(t, addr.String(), addr2.String())
		})
	}
}

// TestMACAddrEdgeCases tests edge cases for MACAddr
func TestMACAddrEdgeCases(t *testing.T) {
	var addr MACAddr

	// Test nil scan
	err := addr.Scan(nil)
	assert.NoError(t, err)

	// Test empty MACAddr value
	value, err := addr.Value()
	assert.NoError(t, err)
	assert.Nil(t, value)

	// Test string representation of nil MAC
	assert.Equal(t, "", addr.String())

	// Test invalid type scan
	err = addr.Scan(123)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "cannot scan")
}

// TestJSONB tests the JSONB type for PostgreSQL JSONB
func TestJSONB(t *testing.T) {
	tests := []struct {
		name     string
		input    interface{}
		expected string
	}{
		{
			name:     "simple object",
			input:    `{"key": "value"}`,
			expected: `{"key": "value"}`,
		},
		{
			name:     "array",
			input:    `[1, 2, 3]`,
			expected: `[1, 2, 3]`,
		},
		{
			name:     "null",
			input:    `null`,
			expected: `null`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var j JSONB

			// Test Scan with string
			err := j.Scan(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, j.String())

			// Test Value method
			value, err := j.Value()
			require.NoError(t, err)
			assert.Equal(t, []byte(tt.expected), value)

			// Test Scan with bytes
			var j2 JSONB
			err = j2.Scan([]byte(tt.expected))
			require.NoError(t, err)
			assert.Equal(t, j.String(), j2.String())
		})
	}
}

// TestJSONBEdgeCases tests edge cases for JSONB
func TestJSONBEdgeCases(t *testing.T) {
	var j JSONB

	// Test nil scan
	err := j.Scan(nil)
	assert.NoError(t, err)
	assert.Nil(t, j)

	// Nil JSONB value and marshaling
	value, err := j.Value()
	assert.NoError(t, err)
	assert.Nil(t, value)

	data, err := j.MarshalJSON()
	assert.NoError(t, err)
	assert.Equal(t, []byte("null"), data)

	// Test invalid type scan
	err = j.Scan(123)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "cannot scan")
}

// TestAddrJSONEncoding tests text-form JSON encoding for network types
func TestAddrJSONEncoding(t *testing.T) {
	t.Run("network addr round-trip", func(t *testing.T) {
		var addr NetworkAddr
		require.NoError(t, addr.Scan("10.20.0.0/16"))

		data, err := json.Marshal(addr)
		require.NoError(t, err)
		assert.Equal(t, `"10.20.0.0/16"`, string(data))

		var decoded NetworkAddr
		require.NoError(t, json.Unmarshal(data, &decoded))
		assert.Equal(t, "10.20.0.0/16", decoded.String())
	})

	t.Run("empty network addr encodes as null", func(t *testing.T) {
		data, err := json.Marshal(NetworkAddr{})
		require.NoError(t, err)
		assert.Equal(t, "null", string(data))
	})

	t.Run("invalid network addr", func(t *testing.T) {
		var decoded NetworkAddr
		assert.Error(t, json.Unmarshal([]byte(`"not-a-cidr"`), &decoded))
	})

	t.Run("mac addr round-trip", func(t *testing.T) {
		var mac MACAddr
		require.NoError(t, mac.Scan("aa:bb:cc:dd:ee:ff"))

		data, err := json.Marshal(mac)
		require.NoError(t, err)
		assert.Equal(t, `"aa:bb:cc:dd:ee:ff"`, string(data))

		var decoded MACAddr
		require.NoError(t, json.Unmarshal(data, &decoded))
		assert.Equal(t, "aa:bb:cc:dd:ee:ff", decoded.String())
	})

	t.Run("nil mac addr encodes as null", func(t *testing.T) {
		data, err := json.Marshal(MACAddr{})
		require.NoError(t, err)
		assert.Equal(t, "null", string(data))
	})
}

// TestDeviceServices tests the device service map round-trip
func TestDeviceServices(t *testing.T) {
	t.Run("set and get services", func(t *testing.T) {
		device := Device{
			ID:        uuid.New(),
			IPAddress: IPAddr{IP: net.ParseIP("192.168.1.10")},
		}

		services := map[string]ServiceInfo{
			"22": {
				Port:     22,
				Protocol: ProtocolTCP,
				State:    PortStateOpen,
				Name:     "ssh",
				Product:  "OpenSSH",
				Version:  "8.9p1",
			},
			"80": {
				Port:     80,
				Protocol: ProtocolTCP,
				State:    PortStateOpen,
				Name:     "http",
				Product:  "nginx",
			},
		}

		require.NoError(t, device.SetServices(services))

		got, err := device.GetServices()
		require.NoError(t, err)
		assert.Len(t, got, 2)
		assert.Equal(t, "ssh", got["22"].Name)
		assert.Equal(t, "OpenSSH", got["22"].Product)
		assert.Equal(t, "nginx", got["80"].Product)
	})

	t.Run("empty services", func(t *testing.T) {
		device := Device{}

		got, err := device.GetServices()
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("nil clears services", func(t *testing.T) {
		device := Device{}
		require.NoError(t, device.SetServices(map[string]ServiceInfo{
			"443": {Port: 443, Name: "https"},
		}))
		require.NoError(t, device.SetServices(nil))
		assert.Nil(t, device.Services)
	})

	t.Run("invalid services payload", func(t *testing.T) {
		device := Device{Services: JSONB(`not-json`)}

		_, err := device.GetServices()
		assert.Error(t, err)
	})
}

// TestDeviceHasOpenPort tests open-port membership checks
func TestDeviceHasOpenPort(t *testing.T) {
	device := Device{
		OpenPorts: []int64{22, 80, 443},
	}

	assert.True(t, device.HasOpenPort(22))
	assert.True(t, device.HasOpenPort(443))
	assert.False(t, device.HasOpenPort(8080))

	empty := Device{}
	assert.False(t, empty.HasOpenPort(22))
}

// TestScanJobLifecycle tests terminal state detection and results
func TestScanJobLifecycle(t *testing.T) {
	t.Run("terminal states", func(t *testing.T) {
		tests := []struct {
			status   string
			terminal bool
		}{
			{ScanJobStatusPending, false},
			{ScanJobStatusRunning, false},
			{ScanJobStatusCompleted, true},
			{ScanJobStatusFailed, true},
			{ScanJobStatusCancelled, true},
		}

		for _, tt := range tests {
			job := ScanJob{Status: tt.status}
			assert.Equal(t, tt.terminal, job.IsTerminal(), "status %s", tt.status)
		}
	})

	t.Run("results round-trip", func(t *testing.T) {
		job := ScanJob{ID: uuid.New()}

		require.NoError(t, job.SetResults(map[string]interface{}{
			"hosts_responding": 4,
			"note":             "no hosts responded in target range",
		}))

		results, err := job.GetResults()
		require.NoError(t, err)
		assert.Equal(t, "no hosts responded in target range", results["note"])
	})

	t.Run("empty results", func(t *testing.T) {
		job := ScanJob{}

		results, err := job.GetResults()
		require.NoError(t, err)
		assert.Empty(t, results)
	})
}

// TestSeverityOrdering tests the severity rank ordering
func TestSeverityOrdering(t *testing.T) {
	assert.Greater(t, SeverityRank(SeverityCritical), SeverityRank(SeverityHigh))
	assert.Greater(t, SeverityRank(SeverityHigh), SeverityRank(SeverityMedium))
	assert.Greater(t, SeverityRank(SeverityMedium), SeverityRank(SeverityLow))
	assert.Greater(t, SeverityRank(SeverityLow), SeverityRank(SeverityInfo))
	assert.Greater(t, SeverityRank(SeverityInfo), SeverityRank("bogus"))

	assert.True(t, ValidSeverity(SeverityCritical))
	assert.True(t, ValidSeverity(SeverityInfo))
	assert.False(t, ValidSeverity("moderate"))
	assert.False(t, ValidSeverity(""))
}

// TestScanKinds tests the supported and known kind sets
func TestScanKinds(t *testing.T) {
	// Every supported kind is also known
	for kind := range SupportedScanKinds {
		assert.True(t, KnownScanKinds[kind], "kind %s should be known", kind)
	}

	// SMB and AD enumeration are recognized but not executable
	assert.True(t, KnownScanKinds[ScanKindSMB])
	assert.True(t, KnownScanKinds[ScanKindAD])
	assert.False(t, SupportedScanKinds[ScanKindSMB])
	assert.False(t, SupportedScanKinds[ScanKindAD])

	assert.True(t, SupportedScanKinds[ScanKindDiscovery])
	assert.True(t, SupportedScanKinds[ScanKindVulnerability])
	assert.True(t, SupportedScanKinds[ScanKindPortScan])
}

// TestDeviceDefaults exercises zero-value device fields used by callers
func TestDeviceDefaults(t *testing.T) {
	device := Device{
		ID:         uuid.New(),
		IPAddress:  IPAddr{IP: net.ParseIP("10.0.0.5")},
		DeviceType: DeviceTypeUnknown,
		IsActive:   true,
		LastSeen:   time.Now(),
	}

	assert.Equal(t, DeviceTypeUnknown, device.DeviceType)
	assert.Nil(t, device.Hostname)
	assert.Nil(t, device.MACAddress)
	assert.Empty(t, device.OpenPorts)
}
