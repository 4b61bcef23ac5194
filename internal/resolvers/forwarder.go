package resolvers

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"strings"
	"time"

	"github.com/overdns/overdns/internal/dnswire"
)

// DefaultForwardTimeout bounds one upstream round-trip.
const DefaultForwardTimeout = 3 * time.Second

// UDPForwarder relays raw query datagrams to a single upstream resolver.
//
// Each Forward call opens a fresh UDP endpoint on an ephemeral local port,
// transmits the query unchanged, waits for exactly one reply datagram, and
// closes the endpoint. A fresh endpoint per query avoids transaction-ID
// collision tracking and is adequate at low query rates; a persistent
// upstream socket de-multiplexed by transaction ID would be the next step at
// higher load.
type UDPForwarder struct {
	Logger  *slog.Logger  // Optional logger
	Timeout time.Duration // Per-query deadline (default DefaultForwardTimeout)

	addr string
}

// NewUDPForwarder creates a forwarder for the given upstream. The upstream
// may be a bare host (port 53 is assumed) or host:port.
func NewUDPForwarder(upstream string, timeout time.Duration, logger *slog.Logger) *UDPForwarder {
	if !strings.Contains(upstream, ":") {
		upstream = net.JoinHostPort(upstream, "53")
	}
	if timeout <= 0 {
		timeout = DefaultForwardTimeout
	}
	return &UDPForwarder{Logger: logger, Timeout: timeout, addr: upstream}
}

// Forward sends query verbatim to the upstream and returns the first
// datagram received in reply. Socket errors, upstream errors, and silence
// past the deadline all surface as errors; the caller drops the request.
func (f *UDPForwarder) Forward(ctx context.Context, query []byte) ([]byte, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "udp", f.addr)
	if err != nil {
		return nil, fmt.Errorf("dial upstream %s: %w", f.addr, err)
	}
	defer conn.Close()

	deadline := time.Now().Add(f.Timeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		deadline = ctxDeadline
	}
	_ = conn.SetDeadline(deadline)

	if _, err := conn.Write(query); err != nil {
		return nil, fmt.Errorf("send to upstream %s: %w", f.addr, err)
	}

	buf := make([]byte, dnswire.MaxDatagramSize)
	n, err := conn.Read(buf)
	if err != nil {
		return nil, fmt.Errorf("await upstream %s: %w", f.addr, err)
	}
	return buf[:n:n], nil
}

// Close is a no-op; forwarders hold no long-lived resources.
func (f *UDPForwarder) Close() error {
	return nil
}
