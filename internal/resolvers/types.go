// Package resolvers provides the two resolution strategies of the server:
// the override resolver answering from the external key/value store, and the
// one-shot UDP forwarder relaying everything else upstream.
//
// The decision between them (override hit, forward, NXDOMAIN, drop) lives in
// the server's query handler; resolvers only know how to produce an answer
// from their own source.
package resolvers

import (
	"context"
	"errors"

	"github.com/overdns/overdns/internal/dnswire"
)

// Result holds the outcome of a resolution.
type Result struct {
	ResponseBytes []byte // Wire-format DNS response
	Source        string // Where the answer came from (e.g., "override", "upstream")
}

// ErrNoOverride is returned by an override resolver when the queried domain
// has no usable override entry. A store outage also surfaces as
// ErrNoOverride: the server never fails a client request because the
// override store is down.
var ErrNoOverride = errors.New("no override for domain")

// Resolver answers a parsed query from a local source.
type Resolver interface {
	// Resolve builds a complete reply for the query, or fails with
	// ErrNoOverride when the source has nothing for it.
	Resolve(ctx context.Context, query dnswire.Query) (Result, error)

	// Close releases any resources held by the resolver.
	Close() error
}

// Forwarder relays a raw query datagram to an upstream resolver.
type Forwarder interface {
	// Forward transmits the query verbatim and returns the first reply
	// datagram. Upstream silence and transport failures are both errors.
	Forward(ctx context.Context, query []byte) ([]byte, error)

	// Close releases any resources held by the forwarder.
	Close() error
}
