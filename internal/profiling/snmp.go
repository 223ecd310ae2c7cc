package profiling

import (
	"context"
	"fmt"
	"time"

	"github.com/gosnmp/gosnmp"
)

// System-group OIDs read during enrichment.
const (
	oidSysDescr    = ".1.3.6.1.2.1.1.1.0"
	oidSysName     = ".1.3.6.1.2.1.1.5.0"
	oidSysLocation = ".1.3.6.1.2.1.1.6.0"
)

// snmpQuerier reads the system group over SNMPv2c.
type snmpQuerier struct {
	community string
	timeout   time.Duration
}

func newSNMPQuerier(community string, timeout time.Duration) *snmpQuerier {
	if timeout <= 0 {
		timeout = defaultSNMPTimeout
	}
	return &snmpQuerier{community: community, timeout: timeout}
}

// QuerySystem performs a single GET for sysDescr, sysName, and
// sysLocation. The request timeout shrinks to the context deadline
// when that is nearer.
func (q *snmpQuerier) QuerySystem(ctx context.Context, address string) (*SNMPSystem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	timeout := q.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}
	if timeout <= 0 {
		return nil, context.DeadlineExceeded
	}

	client := &gosnmp.GoSNMP{
		Target:    address,
		Port:      snmpPort,
		Community: q.community,
		Version:   gosnmp.Version2c,
		Timeout:   timeout,
		Retries:   1,
	}
	if err := client.Connect(); err != nil {
		return nil, fmt.Errorf("snmp connect failed: %w", err)
	}
	defer client.Conn.Close()

	packet, err := client.Get([]string{oidSysDescr, oidSysName, oidSysLocation})
	if err != nil {
		return nil, fmt.Errorf("snmp get failed: %w", err)
	}

	sys := &SNMPSystem{}
	for _, variable := range packet.Variables {
		value := pduString(variable)
		switch variable.Name {
		case oidSysDescr:
			sys.Description = value
		case oidSysName:
			sys.Name = value
		case oidSysLocation:
			sys.Location = value
		}
	}
	return sys, nil
}

// pduString extracts a printable value from an octet-string PDU.
func pduString(pdu gosnmp.SnmpPDU) string {
	switch value := pdu.Value.(type) {
	case []byte:
		return string(value)
	case string:
		return value
	default:
		return ""
	}
}
