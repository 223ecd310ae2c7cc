package profiling

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	ztls "github.com/zmap/zcrypto/tls"
)

// certInspector captures leaf certificates with a zcrypto handshake.
// Verification is skipped on purpose: expired and self-signed chains
// are exactly what the capture is for.
type certInspector struct {
	timeout time.Duration
}

func newCertInspector(timeout time.Duration) *certInspector {
	if timeout <= 0 {
		timeout = defaultTLSTimeout
	}
	return &certInspector{timeout: timeout}
}

// InspectCertificate handshakes the endpoint and summarizes the leaf
// certificate it presents.
func (c *certInspector) InspectCertificate(ctx context.Context, address string, port int) (*CertificateInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	timeout := c.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}
	if timeout <= 0 {
		return nil, context.DeadlineExceeded
	}

	dialer := &net.Dialer{Timeout: timeout}
	endpoint := net.JoinHostPort(address, strconv.Itoa(port))
	conn, err := ztls.DialWithDialer(dialer, "tcp", endpoint, &ztls.Config{
		InsecureSkipVerify: true,
	})
	if err != nil {
		return nil, fmt.Errorf("tls handshake failed: %w", err)
	}
	defer conn.Close()

	state := conn.ConnectionState()
	if len(state.PeerCertificates) == 0 {
		return nil, fmt.Errorf("endpoint %s presented no certificate", endpoint)
	}

	leaf := state.PeerCertificates[0]
	return &CertificateInfo{
		Port:       port,
		SubjectCN:  leaf.Subject.CommonName,
		IssuerCN:   leaf.Issuer.CommonName,
		NotBefore:  leaf.NotBefore,
		NotAfter:   leaf.NotAfter,
		SelfSigned: bytes.Equal(leaf.RawSubject, leaf.RawIssuer),
	}, nil
}
