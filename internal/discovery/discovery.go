// Package discovery identifies responsive hosts for a scan target. It
// combines an nmap ping sweep with the local ARP cache for private
// networks, recording which technique contributed each host.
package discovery

import (
	"context"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/Ullaakut/nmap/v3"

	"github.com/sentinelsec/sentinel/internal/db"
	"github.com/sentinelsec/sentinel/internal/errors"
	"github.com/sentinelsec/sentinel/internal/logging"
	"github.com/sentinelsec/sentinel/internal/metrics"
	"github.com/sentinelsec/sentinel/internal/target"
)

const (
	// defaultPingTimeout bounds one ping sweep.
	defaultPingTimeout = 2 * time.Minute

	// Timing template thresholds, tighter timeouts scan harder.
	aggressiveTimingLimit = 30 * time.Second
	normalTimingLimit     = 2 * time.Minute

	hostStateUp = "up"
	addrTypeMAC = "mac"
)

// privateBlocks are the RFC1918 ranges whose hosts may appear in the
// local ARP cache.
var privateBlocks = func() []*net.IPNet {
	blocks := make([]*net.IPNet, 0, 3)
	for _, cidr := range []string{"10.0.0.0/8", "172.16.0.0/12", "192.168.0.0/16"} {
		_, block, err := net.ParseCIDR(cidr)
		if err != nil {
			panic(fmt.Sprintf("invalid private block %s: %v", cidr, err))
		}
		blocks = append(blocks, block)
	}
	return blocks
}()

// Config represents discovery configuration.
type Config struct {
	PingTimeout  time.Duration
	EnableARP    bool
	ARPCachePath string
}

// DefaultConfig returns the default discovery configuration.
func DefaultConfig() Config {
	return Config{
		PingTimeout:  defaultPingTimeout,
		EnableARP:    true,
		ARPCachePath: DefaultARPCachePath,
	}
}

// Host is one responsive address together with the techniques that
// contributed it and, when the ARP cache knows it, its MAC.
type Host struct {
	IP      net.IP
	MAC     string
	Methods []string
}

// PingResult is one answering address from a ping sweep.
type PingResult struct {
	IP  net.IP
	MAC string
}

// Pinger probes a set of targets for reachability.
type Pinger interface {
	ProbeReachability(ctx context.Context, targets []string) ([]PingResult, error)
}

// Engine performs host discovery against resolved targets.
type Engine struct {
	pinger Pinger
	arp    ARPTable
	config Config
}

// NewEngine creates a discovery engine with the production nmap pinger
// and system ARP table.
func NewEngine(config Config) *Engine {
	if config.PingTimeout <= 0 {
		config.PingTimeout = defaultPingTimeout
	}

	return &Engine{
		pinger: &nmapPinger{timeout: config.PingTimeout},
		arp:    NewSystemARPTable(config.ARPCachePath),
		config: config,
	}
}

// SetPinger replaces the reachability prober.
func (e *Engine) SetPinger(pinger Pinger) {
	e.pinger = pinger
}

// SetARPTable replaces the ARP table source.
func (e *Engine) SetARPTable(table ARPTable) {
	e.arp = table
}

// Discover returns the ordered responsive subset of the target. A host
// appears once, in the order it was first seen; a host found by both
// techniques merges its technique list. Either technique failing is
// logged and non-fatal, so an empty result with a nil error is a valid
// outcome.
func (e *Engine) Discover(ctx context.Context, spec *target.Spec) ([]Host, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	network := spec.Expression()
	start := time.Now()

	var hosts []Host
	index := make(map[string]int)

	add := func(ip net.IP, mac, method string) {
		key := ip.String()
		if i, ok := index[key]; ok {
			host := &hosts[i]
			if host.MAC == "" && mac != "" {
				host.MAC = mac
			}
			for _, m := range host.Methods {
				if m == method {
					return
				}
			}
			host.Methods = append(host.Methods, method)
			return
		}
		index[key] = len(hosts)
		hosts = append(hosts, Host{IP: ip, MAC: mac, Methods: []string{method}})
	}

	results, err := e.pinger.ProbeReachability(ctx, probeTargets(spec))
	if err != nil {
		discErr := errors.ErrDiscoveryFailed(network, db.DiscoveryMethodPing, err)
		logging.ErrorDiscovery("Ping sweep failed", network, discErr)
	} else {
		for _, result := range results {
			add(result.IP, result.MAC, db.DiscoveryMethodPing)
		}
		metrics.RecordDiscoveryDuration(network, db.DiscoveryMethodPing, time.Since(start))
		metrics.IncrementHostsDiscovered(network, db.DiscoveryMethodPing, len(results))
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if e.config.EnableARP && isPrivateTarget(spec) {
		entries, err := e.arp.Entries(ctx)
		if err != nil {
			discErr := errors.ErrDiscoveryFailed(network, db.DiscoveryMethodARP, err)
			logging.ErrorDiscovery("ARP cache read failed", network, discErr)
		} else {
			contains := membership(spec)
			contributed := 0
			for _, entry := range entries {
				if !contains(entry.IP) {
					continue
				}
				add(entry.IP, entry.MAC, db.DiscoveryMethodARP)
				contributed++
			}
			metrics.IncrementHostsDiscovered(network, db.DiscoveryMethodARP, contributed)
		}
	}

	logging.InfoDiscovery("Discovery completed", network,
		"responsive_hosts", len(hosts),
		"duration", time.Since(start))

	return hosts, nil
}

// probeTargets renders the spec for the reachability prober. CIDR specs
// probe the whole block in one pass, other kinds probe per address.
func probeTargets(spec *target.Spec) []string {
	if network := spec.Network(); network != nil {
		return []string{network.String()}
	}

	addresses := spec.Addresses()
	targets := make([]string, 0, len(addresses))
	for _, ip := range addresses {
		targets = append(targets, ip.String())
	}
	return targets
}

// membership returns a containment check for the spec's address set.
func membership(spec *target.Spec) func(net.IP) bool {
	if network := spec.Network(); network != nil {
		return network.Contains
	}

	set := make(map[string]struct{}, spec.Size())
	for _, ip := range spec.Addresses() {
		set[ip.String()] = struct{}{}
	}
	return func(ip net.IP) bool {
		_, ok := set[ip.String()]
		return ok
	}
}

// isPrivateTarget reports whether the target lies in RFC1918 space.
func isPrivateTarget(spec *target.Spec) bool {
	if network := spec.Network(); network != nil {
		return isPrivate(network.IP)
	}

	addresses := spec.Addresses()
	if len(addresses) == 0 {
		return false
	}
	return isPrivate(addresses[0])
}

// isPrivate reports whether ip falls in an RFC1918 block.
func isPrivate(ip net.IP) bool {
	for _, block := range privateBlocks {
		if block.Contains(ip) {
			return true
		}
	}
	return false
}

// nmapPinger probes reachability with an nmap ping scan.
type nmapPinger struct {
	timeout time.Duration
}

// ProbeReachability runs an nmap ping scan (-sn) against the targets
// and returns every host reported up.
func (p *nmapPinger) ProbeReachability(ctx context.Context, targets []string) ([]PingResult, error) {
	probeCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	options := []nmap.Option{
		nmap.WithTargets(targets...),
		nmap.WithPingScan(),
	}

	// Pick timing from the timeout budget.
	switch {
	case p.timeout <= aggressiveTimingLimit:
		options = append(options, nmap.WithTimingTemplate(nmap.TimingAggressive))
	case p.timeout <= normalTimingLimit:
		options = append(options, nmap.WithTimingTemplate(nmap.TimingNormal))
	default:
		options = append(options, nmap.WithTimingTemplate(nmap.TimingPolite))
	}

	scanner, err := nmap.NewScanner(probeCtx, options...)
	if err != nil {
		return nil, fmt.Errorf("failed to create nmap scanner: %w", err)
	}

	result, warnings, err := scanner.Run()
	if err != nil {
		return nil, fmt.Errorf("ping sweep failed: %w", err)
	}
	if warnings != nil && len(*warnings) > 0 {
		logging.Warn("Ping sweep completed with warnings", "warnings", *warnings)
	}

	results := make([]PingResult, 0, len(result.Hosts))
	for i := range result.Hosts {
		host := &result.Hosts[i]
		if host.Status.State != hostStateUp || len(host.Addresses) == 0 {
			continue
		}

		var ping PingResult
		for _, addr := range host.Addresses {
			if addr.AddrType == addrTypeMAC {
				ping.MAC = strings.ToLower(addr.Addr)
				continue
			}
			if ping.IP == nil {
				if ip := net.ParseIP(addr.Addr); ip != nil && ip.To4() != nil {
					ping.IP = ip.To4()
				}
			}
		}
		if ping.IP == nil {
			continue
		}

		results = append(results, ping)
	}

	return results, nil
}
