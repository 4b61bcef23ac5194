// Package handlers implements the management API endpoints.
package handlers

import (
	"context"
	"log/slog"
	"time"

	"github.com/overdns/overdns/internal/server"
)

// CommandStore is the slice of the override store pool the API writes
// through: raw commands over the same minimal line protocol the DNS path
// reads with.
type CommandStore interface {
	Execute(ctx context.Context, cmd string) ([]byte, error)
}

// Handler carries the dependencies of all endpoints.
type Handler struct {
	logger    *slog.Logger
	startTime time.Time
	statsFn   func() server.StatsSnapshot
	store     CommandStore
}

// New creates a Handler. statsFn may be nil (DNS counters report zero);
// store may be nil (override endpoints answer 503).
func New(logger *slog.Logger, statsFn func() server.StatsSnapshot, store CommandStore) *Handler {
	return &Handler{
		logger:    logger,
		startTime: time.Now(),
		statsFn:   statsFn,
		store:     store,
	}
}
