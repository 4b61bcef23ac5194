package resolvers

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// startFakeUpstream runs a loopback UDP resolver that transforms each query
// with fn and replies, or stays silent when fn returns nil.
func startFakeUpstream(t *testing.T, fn func([]byte) []byte) string {
	t.Helper()

	conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	go func() {
		buf := make([]byte, 2048)
		for {
			n, peer, err := conn.ReadFromUDP(buf)
			if err != nil {
				return
			}
			if resp := fn(buf[:n]); resp != nil {
				_, _ = conn.WriteToUDP(resp, peer)
			}
		}
	}()
	return conn.LocalAddr().String()
}

func TestUDPForwarderRelaysVerbatim(t *testing.T) {
	var got []byte
	upstream := startFakeUpstream(t, func(q []byte) []byte {
		got = append([]byte(nil), q...)
		return append(append([]byte(nil), q...), 0xFF)
	})

	f := NewUDPForwarder(upstream, time.Second, nil)
	defer f.Close()

	query := []byte{0xAB, 0xCD, 0x01, 0x00, 0x00, 0x01, 0, 0, 0, 0, 0, 0, 0, 0, 1, 0, 1}
	resp, err := f.Forward(context.Background(), query)
	require.NoError(t, err)

	assert.Equal(t, query, got, "query must reach upstream unmodified")
	assert.Equal(t, append(append([]byte(nil), query...), 0xFF), resp, "reply must be relayed unmodified")
}

func TestUDPForwarderUpstreamSilence(t *testing.T) {
	upstream := startFakeUpstream(t, func([]byte) []byte { return nil })

	f := NewUDPForwarder(upstream, 100*time.Millisecond, nil)
	defer f.Close()

	_, err := f.Forward(context.Background(), []byte{0, 1})
	require.Error(t, err)
}

func TestUDPForwarderContextDeadline(t *testing.T) {
	upstream := startFakeUpstream(t, func([]byte) []byte { return nil })

	f := NewUDPForwarder(upstream, time.Minute, nil)
	defer f.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := f.Forward(ctx, []byte{0, 1})
	require.Error(t, err)
	assert.Less(t, time.Since(start), 5*time.Second, "context deadline must cut the forwarder timeout short")
}

func TestNewUDPForwarderDefaultPort(t *testing.T) {
	f := NewUDPForwarder("9.9.9.9", 0, nil)
	assert.Equal(t, "9.9.9.9:53", f.addr)
	assert.Equal(t, DefaultForwardTimeout, f.Timeout)

	g := NewUDPForwarder("127.0.0.1:5353", 0, nil)
	assert.Equal(t, "127.0.0.1:5353", g.addr)
}
