package resolvers

import (
	"context"
	"log/slog"
	"net/netip"

	"github.com/overdns/overdns/internal/dnswire"
)

// Store is the override lookup surface the resolver needs from the
// store pool.
type Store interface {
	Lookup(ctx context.Context, domain string) ([]byte, error)
}

// OverrideResolver answers A queries for domains pinned in the override
// store.
//
// Only the first question's domain is consulted; when a query carries
// multiple questions, all are echoed in the reply but the override decision
// rides on the first. Responses carry the configured TTL.
type OverrideResolver struct {
	Logger *slog.Logger // Optional logger
	Store  Store        // Override store pool
	TTL    uint32       // Answer TTL (default dnswire.DefaultTTL)
}

// NewOverrideResolver creates an override resolver over the given store.
func NewOverrideResolver(s Store, ttl uint32, logger *slog.Logger) *OverrideResolver {
	if ttl == 0 {
		ttl = dnswire.DefaultTTL
	}
	return &OverrideResolver{Logger: logger, Store: s, TTL: ttl}
}

// Resolve looks the first question's domain up in the override store and
// builds an answering reply on a hit.
//
// A store failure is treated as a miss: the query falls through to the
// forward/NXDOMAIN branch rather than failing the client request.
func (r *OverrideResolver) Resolve(ctx context.Context, query dnswire.Query) (Result, error) {
	domain, err := query.Questions[0].Domain()
	if err != nil {
		return Result{}, err
	}

	value, err := r.Store.Lookup(ctx, domain)
	if err != nil {
		if r.Logger != nil {
			r.Logger.WarnContext(ctx, "override store lookup failed", "domain", domain, "err", err)
		}
		return Result{}, ErrNoOverride
	}

	addr, ok := packIPv4(value)
	if !ok {
		return Result{}, ErrNoOverride
	}

	b, err := dnswire.BuildReply(query.Header.ID, query.Questions, addr, r.TTL)
	if err != nil {
		return Result{}, err
	}
	return Result{ResponseBytes: b, Source: "override"}, nil
}

// Close is a no-op; the store pool is owned and closed by the runner.
func (r *OverrideResolver) Close() error {
	return nil
}

// packIPv4 turns a stored override value into 4 RDATA bytes. The store may
// hold either a dotted-quad ASCII string or the packed address itself;
// anything else (including IPv6) is a miss.
func packIPv4(value []byte) ([]byte, bool) {
	if len(value) == 0 {
		return nil, false
	}
	if addr, err := netip.ParseAddr(string(value)); err == nil {
		if !addr.Is4() {
			return nil, false
		}
		b := addr.As4()
		return b[:], true
	}
	if len(value) == dnswire.IPv4Length {
		return value, true
	}
	return nil, false
}
