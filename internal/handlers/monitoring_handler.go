package handlers

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/websocket"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"

	"tierfs-backend/internal/monitoring"
	"tierfs-backend/internal/repositories"
)

type MonitoringHandler struct {
	objects  *repositories.StorageObjectRepository
	history  *monitoring.HistoryStore
	cacheDir string
	upgrader websocket.Upgrader
}

func NewMonitoringHandler(objects *repositories.StorageObjectRepository, history *monitoring.HistoryStore, cacheDir string) *MonitoringHandler {
	return &MonitoringHandler{
		objects:  objects,
		history:  history,
		cacheDir: cacheDir,
		upgrader: websocket.Upgrader{
			// Origin enforcement happens in the CORS layer.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// SystemStats is one snapshot of host and catalog state.
type SystemStats struct {
	CPUPercent    float64          `json:"cpu_percent"`
	MemUsed       uint64           `json:"mem_used_bytes"`
	MemTotal      uint64           `json:"mem_total_bytes"`
	CacheUsed     uint64           `json:"cache_used_bytes"`
	CacheTotal    uint64           `json:"cache_total_bytes"`
	UptimeSeconds uint64           `json:"uptime_seconds"`
	ObjectCounts  map[string]int64 `json:"object_counts"`
	CollectedAt   time.Time        `json:"collected_at"`
}

func (h *MonitoringHandler) collect(r *http.Request) SystemStats {
	stats := SystemStats{
		ObjectCounts: map[string]int64{},
		CollectedAt:  time.Now(),
	}

	if cpuPercents, err := cpu.Percent(0, false); err == nil && len(cpuPercents) > 0 {
		stats.CPUPercent = cpuPercents[0]
	}
	if v, err := mem.VirtualMemory(); err == nil {
		stats.MemUsed = v.Used
		stats.MemTotal = v.Total
	}
	if d, err := disk.Usage(h.cacheDir); err == nil {
		stats.CacheUsed = d.Used
		stats.CacheTotal = d.Total
	}
	if info, err := host.Info(); err == nil {
		stats.UptimeSeconds = info.Uptime
	}

	if counts, err := h.objects.CountByType(r.Context()); err == nil {
		for t, n := range counts {
			stats.ObjectCounts[string(t)] = n
		}
	}

	return stats
}

// GetSystemStats returns one stats snapshot.
func (h *MonitoringHandler) GetSystemStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.collect(r))
}

// GetNASHistory returns stored probe outcomes for the last N hours
// (default 24, capped at one week), newest first.
func (h *MonitoringHandler) GetNASHistory(w http.ResponseWriter, r *http.Request) {
	if h.history == nil {
		writeError(w, http.StatusServiceUnavailable, "health history storage is not available")
		return
	}

	hours := 24
	if raw := r.URL.Query().Get("hours"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 || parsed > 168 {
			writeError(w, http.StatusBadRequest, "hours must be between 1 and 168")
			return
		}
		hours = parsed
	}

	samples, err := h.history.RecentNASHealth(r.Context(), time.Duration(hours)*time.Hour, 1000)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if samples == nil {
		samples = []monitoring.NASHealthSample{}
	}
	writeJSON(w, http.StatusOK, samples)
}

// LiveStats upgrades to a websocket and pushes a stats snapshot every five
// seconds until the client goes away.
func (h *MonitoringHandler) LiveStats(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[Monitoring] Websocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	if err := conn.WriteJSON(h.collect(r)); err != nil {
		return
	}

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
			if err := conn.WriteJSON(h.collect(r)); err != nil {
				return
			}
		}
	}
}
