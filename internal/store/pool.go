package store

import (
	"context"
	"fmt"

	"golang.org/x/sync/semaphore"
)

// DefaultPoolSize is the number of store sessions kept by a Pool when the
// configuration does not say otherwise.
const DefaultPoolSize = 20

// Pool is a fixed-size pool of store clients with bounded-concurrency
// admission.
//
// A weighted semaphore with pool-size permits gates admission; a buffered
// channel holds the idle clients in FIFO order. A caller acquires a permit,
// pops the head client, runs one command, pushes the client to the tail, and
// releases the permit. Both releases are deferred, so cancellation mid-call
// still returns the client and the permit.
//
// Invariant: permits held + idle clients = pool size whenever no call is
// mid-acquire, and a client is never held by two concurrent callers.
type Pool struct {
	sem  *semaphore.Weighted
	idle chan *Client
	size int
}

// NewPool creates a pool of size clients for the store at host:port using
// database db. Clients are created eagerly; their connections are
// established lazily on first use.
func NewPool(host string, port, db, size int) *Pool {
	if size <= 0 {
		size = DefaultPoolSize
	}
	p := &Pool{
		sem:  semaphore.NewWeighted(int64(size)),
		idle: make(chan *Client, size),
		size: size,
	}
	for range size {
		p.idle <- NewClient(host, port, db)
	}
	return p
}

// Size returns the configured pool size.
func (p *Pool) Size() int {
	return p.size
}

// Execute runs one command on a pooled client.
// Blocks while all clients are in use; respects context cancellation while
// waiting for admission.
func (p *Pool) Execute(ctx context.Context, cmd string) ([]byte, error) {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("store pool admission: %w", err)
	}
	defer p.sem.Release(1)

	// Never blocks: a held permit guarantees an idle client.
	c := <-p.idle
	defer func() { p.idle <- c }()

	return c.Execute(ctx, cmd)
}

// Lookup fetches the override value for a domain, or nil when the domain
// has no override.
func (p *Pool) Lookup(ctx context.Context, domain string) ([]byte, error) {
	return p.Execute(ctx, "GET "+domain)
}

// Close closes every idle client. Calls in flight finish on their own
// sessions; the pool must not be used after Close.
func (p *Pool) Close() error {
	var lastErr error
	for {
		select {
		case c := <-p.idle:
			if err := c.Close(); err != nil {
				lastErr = err
			}
		default:
			return lastErr
		}
	}
}
