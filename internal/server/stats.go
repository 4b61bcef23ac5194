package server

import (
	"sync/atomic"
)

// Stats collects query statistics.
// All methods are safe for concurrent use.
type Stats struct {
	queriesTotal   atomic.Uint64
	overrideHits   atomic.Uint64
	forwarded      atomic.Uint64
	responsesNX    atomic.Uint64
	drops          atomic.Uint64
	sendErrors     atomic.Uint64
	latencyTotalNs atomic.Uint64
}

// NewStats creates a new statistics collector.
func NewStats() *Stats {
	return &Stats{}
}

// RecordQuery records one received query.
func (s *Stats) RecordQuery() {
	s.queriesTotal.Add(1)
}

// RecordOverrideHit records a query answered from the override store.
func (s *Stats) RecordOverrideHit() {
	s.overrideHits.Add(1)
}

// RecordForwarded records a query relayed from upstream.
func (s *Stats) RecordForwarded() {
	s.forwarded.Add(1)
}

// RecordNXDOMAIN records an NXDOMAIN response.
func (s *Stats) RecordNXDOMAIN() {
	s.responsesNX.Add(1)
}

// RecordDrop records a query that produced no reply (parse failure or
// upstream silence).
func (s *Stats) RecordDrop() {
	s.drops.Add(1)
}

// RecordSendError records a reply discarded by a socket write failure.
func (s *Stats) RecordSendError() {
	s.sendErrors.Add(1)
}

// RecordLatency records query handling latency in nanoseconds.
func (s *Stats) RecordLatency(ns int64) {
	if ns > 0 {
		s.latencyTotalNs.Add(uint64(ns))
	}
}

// StatsSnapshot is a point-in-time snapshot of server statistics.
type StatsSnapshot struct {
	QueriesTotal uint64
	OverrideHits uint64
	Forwarded    uint64
	ResponsesNX  uint64
	Drops        uint64
	SendErrors   uint64
	AvgLatencyMs float64
}

// Snapshot returns the current statistics.
func (s *Stats) Snapshot() StatsSnapshot {
	total := s.queriesTotal.Load()
	latencyNs := s.latencyTotalNs.Load()

	avgLatencyMs := 0.0
	if total > 0 {
		avgLatencyMs = float64(latencyNs) / float64(total) / 1e6
	}

	return StatsSnapshot{
		QueriesTotal: total,
		OverrideHits: s.overrideHits.Load(),
		Forwarded:    s.forwarded.Load(),
		ResponsesNX:  s.responsesNX.Load(),
		Drops:        s.drops.Load(),
		SendErrors:   s.sendErrors.Load(),
		AvgLatencyMs: avgLatencyMs,
	}
}
