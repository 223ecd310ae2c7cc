package profiling

import (
	"context"
	"errors"
	"net"
	"strings"
	"time"

	"github.com/miekg/dns"
)

const (
	defaultDNSTimeout = 3 * time.Second
	resolvConfPath    = "/etc/resolv.conf"
)

// ptrResolver answers reverse lookups with direct PTR queries against
// the system's configured nameservers. When no nameserver can be read
// it falls back to the Go resolver.
type ptrResolver struct {
	client  *dns.Client
	servers []string
}

func newPTRResolver(timeout time.Duration) *ptrResolver {
	if timeout <= 0 {
		timeout = defaultDNSTimeout
	}

	r := &ptrResolver{client: &dns.Client{Timeout: timeout}}
	if cfg, err := dns.ClientConfigFromFile(resolvConfPath); err == nil {
		for _, server := range cfg.Servers {
			r.servers = append(r.servers, net.JoinHostPort(server, cfg.Port))
		}
	}
	return r
}

// ReverseLookup returns the PTR name for an address, or "" when the
// address has none. Nameservers are tried in order; a server that
// answers, even with an empty set, ends the search.
func (r *ptrResolver) ReverseLookup(ctx context.Context, address string) (string, error) {
	if len(r.servers) == 0 {
		return r.systemLookup(ctx, address)
	}

	arpa, err := dns.ReverseAddr(address)
	if err != nil {
		return "", err
	}

	msg := new(dns.Msg)
	msg.SetQuestion(arpa, dns.TypePTR)
	msg.RecursionDesired = true

	var lastErr error
	for _, server := range r.servers {
		resp, _, err := r.client.ExchangeContext(ctx, msg, server)
		if err != nil {
			lastErr = err
			continue
		}
		for _, rr := range resp.Answer {
			if ptr, ok := rr.(*dns.PTR); ok {
				return strings.TrimSuffix(ptr.Ptr, "."), nil
			}
		}
		return "", nil
	}
	return "", lastErr
}

// systemLookup asks the Go resolver when resolv.conf is unavailable.
func (r *ptrResolver) systemLookup(ctx context.Context, address string) (string, error) {
	names, err := net.DefaultResolver.LookupAddr(ctx, address)
	if err != nil {
		var dnsErr *net.DNSError
		if errors.As(err, &dnsErr) && dnsErr.IsNotFound {
			return "", nil
		}
		return "", err
	}
	if len(names) == 0 {
		return "", nil
	}
	return strings.TrimSuffix(names[0], "."), nil
}
