package models

import "time"

// MemoryStats reports system memory usage.
type MemoryStats struct {
	TotalMB     float64 `json:"total_mb"`
	FreeMB      float64 `json:"free_mb"`
	UsedMB      float64 `json:"used_mb"`
	UsedPercent float64 `json:"used_percent"`
}

// CPUStats reports system CPU usage.
type CPUStats struct {
	NumCPU      int     `json:"num_cpu"`
	UsedPercent float64 `json:"used_percent"`
	IdlePercent float64 `json:"idle_percent"`
}

// DNSStatsResponse reports DNS pipeline counters.
type DNSStatsResponse struct {
	QueriesTotal uint64  `json:"queries_total"`
	OverrideHits uint64  `json:"override_hits"`
	Forwarded    uint64  `json:"forwarded"`
	ResponsesNX  uint64  `json:"responses_nxdomain"`
	Drops        uint64  `json:"drops"`
	SendErrors   uint64  `json:"send_errors"`
	AvgLatencyMs float64 `json:"avg_latency_ms"`
}

// ServerStatsResponse is the full /stats payload.
type ServerStatsResponse struct {
	Uptime        string           `json:"uptime"`
	UptimeSeconds int64            `json:"uptime_seconds"`
	StartTime     time.Time        `json:"start_time"`
	CPU           CPUStats         `json:"cpu"`
	Memory        MemoryStats      `json:"memory"`
	DNSStats      DNSStatsResponse `json:"dns"`
}
