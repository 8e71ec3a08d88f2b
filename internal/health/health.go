package health

import (
	"context"
	"os"
	"runtime"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shirou/gopsutil/v3/disk"
)

// HealthChecker reports process, database and cache-tier health for the
// /api/health endpoint. NAS tier health has its own probe and endpoint.
type HealthChecker struct {
	db       *pgxpool.Pool
	cacheDir string
}

type HealthStatus struct {
	Status     string         `json:"status"`
	Database   DatabaseHealth `json:"database"`
	Cache      CacheHealth    `json:"cache"`
	Goroutines int            `json:"goroutines"`
}

type DatabaseHealth struct {
	Status       string `json:"status"`
	ResponseTime int64  `json:"response_time_ms"`
}

// CacheHealth reports whether the cache pool directory is reachable and how
// full the filesystem behind it is.
type CacheHealth struct {
	Status     string `json:"status"`
	FreeBytes  uint64 `json:"free_bytes"`
	TotalBytes uint64 `json:"total_bytes"`
}

func NewHealthChecker(db *pgxpool.Pool, cacheDir string) *HealthChecker {
	return &HealthChecker{db: db, cacheDir: cacheDir}
}

func (h *HealthChecker) CheckBasic() HealthStatus {
	dbHealth := h.checkDatabase()
	cacheHealth := h.checkCache()

	status := "healthy"
	if dbHealth.Status != "healthy" || cacheHealth.Status != "healthy" {
		status = "unhealthy"
	}

	return HealthStatus{
		Status:     status,
		Database:   dbHealth,
		Cache:      cacheHealth,
		Goroutines: runtime.NumGoroutine(),
	}
}

func (h *HealthChecker) checkDatabase() DatabaseHealth {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	start := time.Now()
	err := h.db.Ping(ctx)
	responseTime := time.Since(start).Milliseconds()

	if err != nil {
		return DatabaseHealth{Status: "unhealthy", ResponseTime: responseTime}
	}
	return DatabaseHealth{Status: "healthy", ResponseTime: responseTime}
}

func (h *HealthChecker) checkCache() CacheHealth {
	if _, err := os.Stat(h.cacheDir); err != nil {
		return CacheHealth{Status: "unhealthy"}
	}

	usage, err := disk.Usage(h.cacheDir)
	if err != nil {
		return CacheHealth{Status: "unhealthy"}
	}

	return CacheHealth{
		Status:     "healthy",
		FreeBytes:  usage.Free,
		TotalBytes: usage.Total,
	}
}
