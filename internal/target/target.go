// Package target parses scan target expressions into concrete host
// sets. An expression is either a CIDR block, a hyphenated last-octet
// range, a single IP address, or the "all" sentinel resolved against
// the device store by the caller.
package target

import (
	"encoding/binary"
	"net"
	"strconv"
	"strings"

	"github.com/sentinelsec/sentinel/internal/errors"
)

// AllDevices is the sentinel expression meaning every currently active
// known device. Only the vulnerability job kind accepts it.
const AllDevices = "all"

// Kind identifies the detected form of a target expression.
type Kind string

// Expression forms, in detection priority order.
const (
	KindCIDR   Kind = "cidr"
	KindRange  Kind = "range"
	KindSingle Kind = "single"
	KindAll    Kind = "all"
)

const (
	rangeParts = 2
	maxOctet   = 255
)

// Spec is a resolved target expression. CIDR blocks are carried
// compactly; Addresses expands them on demand so every form exposes
// the same effective address set.
type Spec struct {
	expression string
	kind       Kind
	network    *net.IPNet
	addresses  []net.IP
}

// Resolve parses an expression into a Spec. A malformed expression
// yields a target error and never a partial set.
func Resolve(expression string) (*Spec, error) {
	trimmed := strings.TrimSpace(expression)
	if trimmed == "" {
		return nil, errors.NewTargetError("target expression is empty", expression)
	}

	switch {
	case strings.Contains(trimmed, "/"):
		return resolveCIDR(trimmed)
	case strings.Contains(trimmed, "-"):
		return resolveRange(trimmed)
	case strings.EqualFold(trimmed, AllDevices):
		return &Spec{expression: AllDevices, kind: KindAll}, nil
	default:
		return resolveSingle(trimmed)
	}
}

// resolveCIDR parses an IPv4 block such as 192.168.1.0/24.
func resolveCIDR(expression string) (*Spec, error) {
	ip, network, err := net.ParseCIDR(expression)
	if err != nil {
		return nil, &errors.TargetError{
			Code:       errors.CodeTargetInvalid,
			Message:    "invalid CIDR block",
			Expression: expression,
			Cause:      err,
		}
	}
	if ip.To4() == nil {
		return nil, errors.NewTargetError("only IPv4 blocks are supported", expression)
	}

	return &Spec{expression: expression, kind: KindCIDR, network: network}, nil
}

// resolveRange parses a last-octet range such as 192.168.1.10-50. The
// first three octets stay fixed; both bounds are inclusive.
func resolveRange(expression string) (*Spec, error) {
	parts := strings.Split(expression, "-")
	if len(parts) != rangeParts {
		return nil, errors.NewTargetError("octet range must be a.b.c.start-end", expression)
	}

	first := net.ParseIP(strings.TrimSpace(parts[0]))
	if first == nil || first.To4() == nil {
		return nil, errors.NewTargetError("range start is not a valid IPv4 address", expression)
	}
	base := first.To4()
	start := int(base[3])

	end, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return nil, &errors.TargetError{
			Code:       errors.CodeTargetInvalid,
			Message:    "range end is not an integer",
			Expression: expression,
			Cause:      err,
		}
	}
	if end < 0 || end > maxOctet {
		return nil, errors.NewTargetError("range end is outside 0-255", expression)
	}
	if end < start {
		return nil, errors.NewTargetError("range end precedes range start", expression)
	}

	addresses := make([]net.IP, 0, end-start+1)
	for octet := start; octet <= end; octet++ {
		ip := make(net.IP, net.IPv4len)
		copy(ip, base)
		ip[3] = byte(octet)
		addresses = append(addresses, ip)
	}

	return &Spec{expression: expression, kind: KindRange, addresses: addresses}, nil
}

// resolveSingle parses one literal IP address.
func resolveSingle(expression string) (*Spec, error) {
	ip := net.ParseIP(expression)
	if ip == nil {
		return nil, errors.NewTargetError(
			"expression is not a CIDR block, octet range, or IP address", expression)
	}
	if v4 := ip.To4(); v4 != nil {
		ip = v4
	}

	return &Spec{expression: expression, kind: KindSingle, addresses: []net.IP{ip}}, nil
}

// Expression returns the original expression, trimmed.
func (s *Spec) Expression() string {
	return s.expression
}

// Kind returns the detected expression form.
func (s *Spec) Kind() Kind {
	return s.kind
}

// IsAll reports whether the spec is the device-store sentinel.
func (s *Spec) IsAll() bool {
	return s.kind == KindAll
}

// Network returns the CIDR block for cidr specs and nil otherwise.
func (s *Spec) Network() *net.IPNet {
	return s.network
}

// Addresses returns the full effective address set. CIDR blocks expand
// to every address in the block, network and broadcast included; the
// sentinel has no addresses of its own.
func (s *Spec) Addresses() []net.IP {
	if s.kind == KindCIDR {
		return expandBlock(s.network)
	}

	out := make([]net.IP, len(s.addresses))
	copy(out, s.addresses)
	return out
}

// Size returns the number of addresses the spec covers without
// expanding CIDR blocks.
func (s *Spec) Size() int {
	if s.kind == KindCIDR {
		ones, bits := s.network.Mask.Size()
		return 1 << (bits - ones)
	}
	return len(s.addresses)
}

// String implements fmt.Stringer.
func (s *Spec) String() string {
	return s.expression
}

// expandBlock materializes every address of an IPv4 block in order.
func expandBlock(network *net.IPNet) []net.IP {
	base := network.IP.To4()
	ones, bits := network.Mask.Size()
	count := 1 << (bits - ones)

	addresses := make([]net.IP, 0, count)
	start := binary.BigEndian.Uint32(base)
	for i := 0; i < count; i++ {
		ip := make(net.IP, net.IPv4len)
		binary.BigEndian.PutUint32(ip, start+uint32(i))
		addresses = append(addresses, ip)
	}
	return addresses
}
