package server

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatsSnapshot(t *testing.T) {
	s := NewStats()

	s.RecordQuery()
	s.RecordQuery()
	s.RecordOverrideHit()
	s.RecordForwarded()
	s.RecordNXDOMAIN()
	s.RecordDrop()
	s.RecordSendError()
	s.RecordLatency(2_000_000) // 2ms

	snap := s.Snapshot()
	assert.Equal(t, uint64(2), snap.QueriesTotal)
	assert.Equal(t, uint64(1), snap.OverrideHits)
	assert.Equal(t, uint64(1), snap.Forwarded)
	assert.Equal(t, uint64(1), snap.ResponsesNX)
	assert.Equal(t, uint64(1), snap.Drops)
	assert.Equal(t, uint64(1), snap.SendErrors)
	assert.InDelta(t, 1.0, snap.AvgLatencyMs, 0.001)
}

func TestStatsZeroValue(t *testing.T) {
	snap := NewStats().Snapshot()
	assert.Zero(t, snap.QueriesTotal)
	assert.Zero(t, snap.AvgLatencyMs)
}

func TestStatsConcurrent(t *testing.T) {
	s := NewStats()

	var wg sync.WaitGroup
	for range 50 {
		wg.Go(func() {
			for range 100 {
				s.RecordQuery()
				s.RecordOverrideHit()
			}
		})
	}
	wg.Wait()

	snap := s.Snapshot()
	assert.Equal(t, uint64(5000), snap.QueriesTotal)
	assert.Equal(t, uint64(5000), snap.OverrideHits)
}

func TestStatsNegativeLatencyIgnored(t *testing.T) {
	s := NewStats()
	s.RecordQuery()
	s.RecordLatency(-5)
	assert.Zero(t, s.Snapshot().AvgLatencyMs)
}
