package profiling

import (
	"strings"

	"github.com/sentinelsec/sentinel/internal/db"
)

// Port groups consulted by the classification rules.
var (
	managementPorts  = newPortSet(22, 23, 80, 443, 161)
	serverPorts      = newPortSet(80, 443, 22, 21, 25, 53, 110, 143, 993, 995)
	printerPorts     = newPortSet(515, 631, 9100)
	workstationPorts = newPortSet(135, 139, 445, 3389)
)

type portSet map[int]struct{}

func newPortSet(ports ...int) portSet {
	set := make(portSet, len(ports))
	for _, port := range ports {
		set[port] = struct{}{}
	}
	return set
}

func (s portSet) contains(port int) bool {
	_, ok := s[port]
	return ok
}

func (s portSet) intersects(other portSet) bool {
	for port := range s {
		if other.contains(port) {
			return true
		}
	}
	return false
}

// classificationRule maps an observable condition to a device type.
type classificationRule struct {
	deviceType string
	matches    func(hostname string, open portSet) bool
}

// classificationRules are evaluated in order and the first match wins,
// so broader rules must come after narrower ones. A router exposing
// web management would otherwise classify as a server.
var classificationRules = []classificationRule{
	{
		deviceType: db.DeviceTypeRouter,
		matches: func(hostname string, open portSet) bool {
			return open.intersects(managementPorts) &&
				strings.Contains(strings.ToLower(hostname), "router")
		},
	},
	{
		deviceType: db.DeviceTypeServer,
		matches: func(_ string, open portSet) bool {
			return open.intersects(serverPorts)
		},
	},
	{
		deviceType: db.DeviceTypePrinter,
		matches: func(_ string, open portSet) bool {
			return open.intersects(printerPorts)
		},
	},
	{
		deviceType: db.DeviceTypeSwitch,
		matches: func(_ string, open portSet) bool {
			return open.contains(snmpPort) && !open.contains(80) && !open.contains(443)
		},
	},
	{
		deviceType: db.DeviceTypeWorkstation,
		matches: func(_ string, open portSet) bool {
			return open.intersects(workstationPorts)
		},
	},
}

// Classify assigns a device type from the observed hostname and open
// port set. Classification is pure: equal inputs always yield the same
// type, and no rule matching yields unknown.
func Classify(hostname string, openPorts []int) string {
	open := newPortSet(openPorts...)
	for _, rule := range classificationRules {
		if rule.matches(hostname, open) {
			return rule.deviceType
		}
	}
	return db.DeviceTypeUnknown
}
