package discovery

import (
	"bufio"
	"context"
	"net"
	"os"
	"os/exec"
	"regexp"
	"strings"
)

const (
	// DefaultARPCachePath is the kernel ARP cache on Linux.
	DefaultARPCachePath = "/proc/net/arp"

	// procARPMinFields is the column count of a /proc/net/arp row.
	procARPMinFields = 4

	// incompleteFlag marks an unresolved kernel ARP entry.
	incompleteFlag = "0x0"

	zeroMAC = "00:00:00:00:00:00"
)

// arpExecPattern extracts the address and MAC from one `arp -an` line,
// e.g. "? (192.168.1.1) at aa:bb:cc:dd:ee:ff [ether] on eth0".
var arpExecPattern = regexp.MustCompile(`\(([\d.]+)\) at ([0-9a-fA-F:]{17})`)

// Entry is one ARP table row pairing an IPv4 address with its MAC.
type Entry struct {
	IP  net.IP
	MAC string
}

// ARPTable supplies IP to MAC pairs for the local network segment.
type ARPTable interface {
	Entries(ctx context.Context) ([]Entry, error)
}

// SystemARPTable reads the kernel ARP cache, falling back to the arp
// binary when the cache file is unavailable.
type SystemARPTable struct {
	cachePath string
}

// NewSystemARPTable creates an ARP table reader. An empty cachePath
// uses the default kernel location.
func NewSystemARPTable(cachePath string) *SystemARPTable {
	if cachePath == "" {
		cachePath = DefaultARPCachePath
	}
	return &SystemARPTable{cachePath: cachePath}
}

// Entries returns the resolved ARP entries for the local segment.
// Incomplete and zero-MAC entries are skipped.
func (t *SystemARPTable) Entries(ctx context.Context) ([]Entry, error) {
	entries, err := t.readCache()
	if err == nil {
		return entries, nil
	}

	return t.execARP(ctx)
}

// readCache parses the /proc/net/arp format:
//
//	IP address  HW type  Flags  HW address         Mask  Device
//	192.168.1.1 0x1      0x2    aa:bb:cc:dd:ee:ff  *     eth0
func (t *SystemARPTable) readCache() ([]Entry, error) {
	file, err := os.Open(t.cachePath)
	if err != nil {
		return nil, err
	}
	defer func() { _ = file.Close() }()

	var entries []Entry
	scanner := bufio.NewScanner(file)
	first := true
	for scanner.Scan() {
		if first {
			// Header row.
			first = false
			continue
		}

		fields := strings.Fields(scanner.Text())
		if len(fields) < procARPMinFields {
			continue
		}

		ip := net.ParseIP(fields[0])
		flags := fields[2]
		mac := strings.ToLower(fields[3])
		if ip == nil || ip.To4() == nil || flags == incompleteFlag || mac == zeroMAC {
			continue
		}

		entries = append(entries, Entry{IP: ip.To4(), MAC: mac})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return entries, nil
}

// execARP shells out to `arp -an` as a portability fallback.
func (t *SystemARPTable) execARP(ctx context.Context) ([]Entry, error) {
	output, err := exec.CommandContext(ctx, "arp", "-an").Output()
	if err != nil {
		return nil, err
	}

	var entries []Entry
	for _, line := range strings.Split(string(output), "\n") {
		if strings.Contains(line, "incomplete") {
			continue
		}
		match := arpExecPattern.FindStringSubmatch(line)
		if match == nil {
			continue
		}

		ip := net.ParseIP(match[1])
		mac := strings.ToLower(match[2])
		if ip == nil || ip.To4() == nil || mac == zeroMAC {
			continue
		}

		entries = append(entries, Entry{IP: ip.To4(), MAC: mac})
	}

	return entries, nil
}
