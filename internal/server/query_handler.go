// Package server implements the UDP request pipeline: a single shared
// socket multiplexed by one receiver and one sender goroutine, with a
// detached handler goroutine per inbound query.
//
// Every received datagram either produces exactly one outbound reply to the
// original sender or is dropped (parse failure, upstream silence, send
// error). Replies may leave the socket in a different order than their
// queries arrived — handlers run concurrently and the first to reach the
// send queue wins — but within one handler the lookup → enqueue → send
// sequence is strictly ordered.
package server

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/overdns/overdns/internal/dnswire"
	"github.com/overdns/overdns/internal/resolvers"
)

// DefaultHandleTimeout bounds one request's store lookup plus upstream
// round-trip.
const DefaultHandleTimeout = 4 * time.Second

// QueryHandler decides how each query is answered: from the override
// store, from the upstream resolver, or with NXDOMAIN.
type QueryHandler struct {
	Logger    *slog.Logger       // Optional logger for debug output
	Overrides resolvers.Resolver // Override store resolver
	Forwarder resolvers.Forwarder
	Stats     *Stats        // Optional statistics collector
	Timeout   time.Duration // Per-request budget (default DefaultHandleTimeout)
}

// Handle processes one inbound datagram and returns the reply to send, or
// nil when the query is dropped.
//
// Decision tree, riding on the first question's domain:
//   - override hit: local answer with the stored address
//   - miss and the domain contains a dot: forward the raw query verbatim
//     and relay whatever single datagram the upstream returns
//   - miss and the domain is a bare label: NXDOMAIN with the questions
//     echoed
//
// Parse failures and upstream silence drop the query. A store outage is a
// miss, never a dropped query.
func (h *QueryHandler) Handle(ctx context.Context, src string, req []byte) []byte {
	start := time.Now()
	if h.Stats != nil {
		h.Stats.RecordQuery()
	}

	timeout := h.Timeout
	if timeout <= 0 {
		timeout = DefaultHandleTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	resp := h.dispatch(ctx, src, req)
	if resp == nil && h.Stats != nil {
		h.Stats.RecordDrop()
	}
	if h.Stats != nil {
		h.Stats.RecordLatency(time.Since(start).Nanoseconds())
	}
	return resp
}

func (h *QueryHandler) dispatch(ctx context.Context, src string, req []byte) []byte {
	query, err := dnswire.ParseQuery(req)
	if err != nil {
		h.logDebug(ctx, "dropping unparseable query", "src", src, "err", err)
		return nil
	}

	domain, err := query.Questions[0].Domain()
	if err != nil {
		h.logDebug(ctx, "dropping query with malformed name", "src", src, "err", err)
		return nil
	}

	res, err := h.Overrides.Resolve(ctx, query)
	if err == nil {
		if h.Stats != nil {
			h.Stats.RecordOverrideHit()
		}
		h.logDebug(ctx, "request", "src", src, "id", int(query.Header.ID), "domain", domain, "source", res.Source)
		return res.ResponseBytes
	}
	if !errors.Is(err, resolvers.ErrNoOverride) {
		h.logDebug(ctx, "dropping query", "src", src, "domain", domain, "err", err)
		return nil
	}

	if strings.Contains(domain, ".") {
		return h.forward(ctx, src, domain, query.Header.ID, req)
	}

	nx, err := dnswire.BuildReply(query.Header.ID, query.Questions, nil, 0)
	if err != nil {
		return nil
	}
	if h.Stats != nil {
		h.Stats.RecordNXDOMAIN()
	}
	h.logDebug(ctx, "request", "src", src, "id", int(query.Header.ID), "domain", domain, "source", "nxdomain")
	return nx
}

// forward relays the raw query upstream. Upstream silence drops the query.
func (h *QueryHandler) forward(ctx context.Context, src, domain string, id uint16, req []byte) []byte {
	resp, err := h.Forwarder.Forward(ctx, req)
	if err != nil {
		h.logDebug(ctx, "dropping query after upstream silence", "src", src, "domain", domain, "err", err)
		return nil
	}
	if h.Stats != nil {
		h.Stats.RecordForwarded()
	}
	h.logDebug(ctx, "request", "src", src, "id", int(id), "domain", domain, "source", "upstream")
	return resp
}

func (h *QueryHandler) logDebug(ctx context.Context, msg string, args ...any) {
	if h.Logger == nil || !h.Logger.Enabled(ctx, slog.LevelDebug) {
		return
	}
	h.Logger.DebugContext(ctx, msg, args...)
}
