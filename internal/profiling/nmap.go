package profiling

import (
	"context"
	"fmt"

	"github.com/Ullaakut/nmap/v3"

	"github.com/sentinelsec/sentinel/internal/db"
	"github.com/sentinelsec/sentinel/internal/logging"
)

// nmapScanner backs PortScanner and OSFingerprinter with the nmap
// binary. Host discovery is skipped on both paths since callers only
// pass addresses already known to respond.
type nmapScanner struct {
	mode string
}

func newNmapScanner(mode string) *nmapScanner {
	if mode == "" {
		mode = ModeConnect
	}
	return &nmapScanner{mode: mode}
}

// EnumeratePorts runs a service-detection scan over the port range and
// buckets the results by port state.
func (s *nmapScanner) EnumeratePorts(ctx context.Context, address, portRange string) (*PortScan, error) {
	options := []nmap.Option{
		nmap.WithTargets(address),
		nmap.WithPorts(portRange),
		nmap.WithServiceInfo(),
		nmap.WithVersionAll(),
		nmap.WithSkipHostDiscovery(),
		nmap.WithTimingTemplate(nmap.TimingNormal),
	}

	switch s.mode {
	case ModeSYN:
		options = append(options, nmap.WithSYNScan())
	case ModeUDP:
		options = append(options, nmap.WithUDPScan())
	default:
		options = append(options, nmap.WithConnectScan())
	}

	scanner, err := nmap.NewScanner(ctx, options...)
	if err != nil {
		return nil, fmt.Errorf("failed to create port scanner: %w", err)
	}

	result, warnings, err := scanner.Run()
	if err != nil {
		return nil, fmt.Errorf("port scan failed: %w", err)
	}
	if warnings != nil && len(*warnings) > 0 {
		logging.Debug("Port scan produced warnings", "address", address, "warnings", *warnings)
	}

	return convertPortScan(result, portRange), nil
}

// FingerprintOS runs OS detection and returns the highest-confidence
// match. Requires raw socket privileges; unprivileged runs fail and
// the caller degrades.
func (s *nmapScanner) FingerprintOS(ctx context.Context, address string) (*OSMatch, error) {
	scanner, err := nmap.NewScanner(ctx,
		nmap.WithTargets(address),
		nmap.WithOSDetection(),
		nmap.WithSkipHostDiscovery(),
		nmap.WithTimingTemplate(nmap.TimingNormal),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create OS scanner: %w", err)
	}

	result, warnings, err := scanner.Run()
	if err != nil {
		return nil, fmt.Errorf("OS detection failed: %w", err)
	}
	if warnings != nil && len(*warnings) > 0 {
		logging.Debug("OS detection produced warnings", "address", address, "warnings", *warnings)
	}

	return convertOSMatch(result), nil
}

// convertPortScan buckets scanned ports into open, filtered, and
// closed. Only open ports carry service details.
func convertPortScan(result *nmap.Run, portRange string) *PortScan {
	scan := &PortScan{Scanned: PortRangeSize(portRange)}
	if result == nil || len(result.Hosts) == 0 {
		return scan
	}

	host := &result.Hosts[0]
	for i := range host.Ports {
		p := &host.Ports[i]
		switch {
		case p.State.State == db.PortStateOpen:
			scan.Open = append(scan.Open, db.ServiceInfo{
				Port:     int(p.ID),
				Protocol: p.Protocol,
				State:    p.State.State,
				Name:     p.Service.Name,
				Product:  p.Service.Product,
				Version:  p.Service.Version,
			})
		case p.State.State == db.PortStateClosed:
			scan.Closed++
		default:
			// filtered, open|filtered, closed|filtered
			scan.Filtered++
		}
	}
	return scan
}

// convertOSMatch extracts the first (highest accuracy) OS match.
func convertOSMatch(result *nmap.Run) *OSMatch {
	if result == nil || len(result.Hosts) == 0 {
		return nil
	}

	matches := result.Hosts[0].OS.Matches
	if len(matches) == 0 {
		return nil
	}

	best := matches[0]
	match := &OSMatch{
		Name:     best.Name,
		Accuracy: best.Accuracy,
	}
	if len(best.Classes) > 0 {
		class := best.Classes[0]
		match.Vendor = class.Vendor
		match.Family = class.Family
		match.Generation = class.OSGeneration
	}
	return match
}
