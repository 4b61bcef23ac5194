package server

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"strconv"

	"github.com/overdns/overdns/internal/config"
	"github.com/overdns/overdns/internal/resolvers"
	"github.com/overdns/overdns/internal/store"
)

// Runner orchestrates server startup, wiring, and shutdown.
type Runner struct {
	logger *slog.Logger
	stats  *Stats
}

// NewRunner creates a new server runner with the given logger.
func NewRunner(logger *slog.Logger) *Runner {
	return &Runner{logger: logger, stats: NewStats()}
}

// Stats returns the runner's statistics collector. The management API reads
// snapshots from it while the server runs.
func (r *Runner) Stats() *Stats {
	return r.stats
}

// RunWithContext starts the DNS server over the given override store pool
// and blocks until the context is cancelled or socket creation fails.
// The caller owns the pool and closes it after RunWithContext returns.
func (r *Runner) RunWithContext(ctx context.Context, cfg *config.Config, pool *store.Pool) error {
	overrides := resolvers.NewOverrideResolver(pool, cfg.TTL, r.logger)
	forwarder := resolvers.NewUDPForwarder(cfg.Upstream.Address, cfg.Upstream.Timeout, r.logger)
	defer forwarder.Close()

	h := &QueryHandler{
		Logger:    r.logger,
		Overrides: overrides,
		Forwarder: forwarder,
		Stats:     r.stats,
	}

	addr := net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port))
	if r.logger != nil {
		r.logger.Info(
			"dns listening",
			"addr", addr,
			"store", net.JoinHostPort(cfg.Store.Host, strconv.Itoa(cfg.Store.Port)),
			"store_db", cfg.Store.DB,
			"store_pool", pool.Size(),
			"upstream", cfg.Upstream.Address,
			"ttl", cfg.TTL,
		)
	}

	udp := &UDPServer{Logger: r.logger, Handler: h, Stats: r.stats}
	if err := udp.Run(ctx, addr); err != nil {
		return fmt.Errorf("udp server: %w", err)
	}
	return nil
}
