package server

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"sync"
	"syscall"
	"time"

	"golang.org/x/sys/unix"

	"github.com/overdns/overdns/internal/bufpool"
)

// UDPServer owns the single listening socket and multiplexes receive and
// send over it.
//
// Goroutine Lifecycle:
//
// Run spawns two long-lived goroutines:
//   - 1 receiver: reads datagrams and spawns a detached handler per query
//   - 1 sender: drains the FIFO send queue in insertion order
//
// Handlers run concurrently and never block the receive path; all outbound
// writes are serialized through the sender, so no two handlers race on the
// shared socket. All goroutines exit when the context is cancelled.
type UDPServer struct {
	Logger  *slog.Logger  // Optional logger
	Handler *QueryHandler // Query processor
	Stats   *Stats        // Optional statistics collector

	queue *sendQueue
	conn  *net.UDPConn
	wg    sync.WaitGroup
}

// Run binds addr with SO_REUSEADDR and serves until the context is
// cancelled. Returns an error when socket creation fails, or when the
// goroutines do not exit within five seconds of cancellation.
func (s *UDPServer) Run(ctx context.Context, addr string) error {
	conn, err := listenReuseAddr(addr)
	if err != nil {
		return err
	}
	return s.RunOnConn(ctx, conn)
}

// RunOnConn runs the server on an existing UDP connection.
// This is useful for testing and when the caller manages the socket.
func (s *UDPServer) RunOnConn(ctx context.Context, conn *net.UDPConn) error {
	s.conn = conn
	s.queue = newSendQueue()

	s.wg.Go(func() {
		s.recvLoop(ctx)
	})
	s.wg.Go(func() {
		s.sendLoop(ctx)
	})

	<-ctx.Done()
	return s.Stop(5 * time.Second)
}

// recvLoop reads datagrams from the socket and spawns a detached handler
// goroutine per query. It never blocks on handlers.
//
// Exits when the socket is closed or the context is cancelled.
func (s *UDPServer) recvLoop(ctx context.Context) {
	for {
		bufPtr := bufpool.Get()

		n, peer, err := s.conn.ReadFromUDP(*bufPtr)
		if err != nil {
			bufpool.Put(bufPtr)
			return
		}

		s.wg.Go(func() {
			s.handleDatagram(ctx, bufPtr, n, peer)
		})
	}
}

// handleDatagram runs one query to completion and enqueues its reply, if
// any. Owns bufPtr for its lifetime.
func (s *UDPServer) handleDatagram(ctx context.Context, bufPtr *[]byte, n int, peer *net.UDPAddr) {
	defer bufpool.Put(bufPtr)

	if s.Handler == nil {
		return
	}

	resp := s.Handler.Handle(ctx, peer.IP.String(), (*bufPtr)[:n])
	if resp == nil || ctx.Err() != nil {
		return
	}
	s.queue.enqueue(resp, peer)
}

// sendLoop waits on the queue's signal and drains pending sends in
// insertion order. A failed write discards that reply and continues; the
// sender never terminates the server.
//
// WriteToUDP blocks until the socket is writable, so backpressure delays
// transmission without reordering or dropping.
func (s *UDPServer) sendLoop(ctx context.Context) {
	for {
		if !s.queue.wait(ctx) {
			return
		}
		for _, ps := range s.queue.drain() {
			if _, err := s.conn.WriteToUDP(ps.data, ps.addr); err != nil {
				if s.Stats != nil {
					s.Stats.RecordSendError()
				}
				if s.Logger != nil {
					s.Logger.Error("failed to send reply", "peer", ps.addr.String(), "err", err)
				}
			}
		}
	}
}

// Stop closes the socket and waits up to timeout for the receiver, sender,
// and in-flight handlers to exit.
func (s *UDPServer) Stop(timeout time.Duration) error {
	if s.conn != nil {
		_ = s.conn.Close()
	}

	if timeout <= 0 {
		s.wg.Wait()
		return nil
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-time.After(timeout):
		return errors.New("udp server: timeout waiting for goroutines to exit")
	}
}

// listenReuseAddr creates a UDP socket with SO_REUSEADDR enabled, so a
// restarting server can rebind while sockets from the previous instance
// linger. The net package puts the socket in non-blocking mode and drives
// readiness through the runtime poller.
func listenReuseAddr(addr string) (*net.UDPConn, error) {
	lc := net.ListenConfig{
		Control: func(_, _ string, c syscall.RawConn) error {
			return c.Control(func(fd uintptr) {
				_ = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEADDR, 1)
			})
		},
	}

	pc, err := lc.ListenPacket(context.Background(), "udp", addr)
	if err != nil {
		return nil, err
	}

	return pc.(*net.UDPConn), nil
}
