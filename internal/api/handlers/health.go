package handlers

import (
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/overdns/overdns/internal/api/models"
)

// Health returns server liveness.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, models.StatusResponse{Status: "ok"})
}

// Stats returns runtime statistics: uptime, system CPU and memory usage,
// and DNS pipeline counters.
func (h *Handler) Stats(c *gin.Context) {
	uptime := time.Since(h.startTime)

	memStats := models.MemoryStats{}
	if vmStat, err := mem.VirtualMemory(); err == nil {
		memStats.TotalMB = float64(vmStat.Total) / 1024 / 1024
		memStats.FreeMB = float64(vmStat.Available) / 1024 / 1024
		memStats.UsedMB = float64(vmStat.Used) / 1024 / 1024
		memStats.UsedPercent = vmStat.UsedPercent
	}

	// Average over a short sample window.
	cpuStats := models.CPUStats{NumCPU: runtime.NumCPU()}
	if cpuPercent, err := cpu.Percent(200*time.Millisecond, false); err == nil && len(cpuPercent) > 0 {
		cpuStats.UsedPercent = cpuPercent[0]
		cpuStats.IdlePercent = 100.0 - cpuPercent[0]
	}

	c.JSON(http.StatusOK, models.ServerStatsResponse{
		Uptime:        uptime.Round(time.Second).String(),
		UptimeSeconds: int64(uptime.Seconds()),
		StartTime:     h.startTime,
		CPU:           cpuStats,
		Memory:        memStats,
		DNSStats:      h.dnsStats(),
	})
}

func (h *Handler) dnsStats() models.DNSStatsResponse {
	if h.statsFn == nil {
		return models.DNSStatsResponse{}
	}
	snap := h.statsFn()
	return models.DNSStatsResponse{
		QueriesTotal: snap.QueriesTotal,
		OverrideHits: snap.OverrideHits,
		Forwarded:    snap.Forwarded,
		ResponsesNX:  snap.ResponsesNX,
		Drops:        snap.Drops,
		SendErrors:   snap.SendErrors,
		AvgLatencyMs: snap.AvgLatencyMs,
	}
}
