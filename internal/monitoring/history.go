package monitoring

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"

	"tierfs-backend/internal/nas"
)

// HistoryStore persists probe outcomes and host samples in Postgres.
// When the TimescaleDB extension is present the tables become hypertables;
// otherwise they stay plain tables and everything still works.
type HistoryStore struct {
	pool *pgxpool.Pool
}

func NewHistoryStore(pool *pgxpool.Pool) *HistoryStore {
	store := &HistoryStore{pool: pool}
	if err := store.init(); err != nil {
		log.Printf("[Monitoring] History storage initialization failed: %v", err)
		return nil
	}
	return store
}

func (s *HistoryStore) init() error {
	ctx := context.Background()

	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS nas_health_history (
			time             TIMESTAMPTZ NOT NULL,
			status           TEXT NOT NULL,
			response_time_ms BIGINT,
			total_bytes      BIGINT,
			free_bytes       BIGINT,
			error            TEXT
		)`)
	if err != nil {
		return fmt.Errorf("create nas_health_history: %w", err)
	}

	_, err = s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS system_stats_history (
			time        TIMESTAMPTZ NOT NULL,
			cpu_percent DOUBLE PRECISION,
			mem_used    BIGINT,
			mem_total   BIGINT,
			cache_used  BIGINT,
			cache_total BIGINT
		)`)
	if err != nil {
		return fmt.Errorf("create system_stats_history: %w", err)
	}

	// Best effort: hypertables when the extension is available.
	var version string
	if s.pool.QueryRow(ctx,
		"SELECT default_version FROM pg_available_extensions WHERE name = 'timescaledb'").Scan(&version) == nil {
		s.pool.Exec(ctx, "CREATE EXTENSION IF NOT EXISTS timescaledb CASCADE")
		s.pool.Exec(ctx, "SELECT create_hypertable('nas_health_history', 'time', if_not_exists => TRUE)")
		s.pool.Exec(ctx, "SELECT create_hypertable('system_stats_history', 'time', if_not_exists => TRUE)")
		log.Println("[Monitoring] TimescaleDB hypertables enabled for history")
	}

	return nil
}

func (s *HistoryStore) RecordNASHealth(result nas.HealthResult) error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	var total, free *int64
	if result.Capacity != nil {
		total = &result.Capacity.TotalBytes
		free = &result.Capacity.FreeBytes
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO nas_health_history (time, status, response_time_ms, total_bytes, free_bytes, error)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''))`,
		result.CheckedAt, result.Status, result.ResponseTimeMs, total, free, result.Error)
	return err
}

func (s *HistoryStore) RecordSystemStats(cpuPercent float64, memUsed, memTotal, cacheUsed, cacheTotal uint64) error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := s.pool.Exec(ctx, `
		INSERT INTO system_stats_history (time, cpu_percent, mem_used, mem_total, cache_used, cache_total)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		time.Now(), cpuPercent, memUsed, memTotal, cacheUsed, cacheTotal)
	return err
}

// NASHealthSample is one stored probe outcome.
type NASHealthSample struct {
	Time           time.Time `json:"time"`
	Status         string    `json:"status"`
	ResponseTimeMs int64     `json:"response_time_ms"`
	TotalBytes     *int64    `json:"total_bytes,omitempty"`
	FreeBytes      *int64    `json:"free_bytes,omitempty"`
	Error          *string   `json:"error,omitempty"`
}

// RecentNASHealth returns the stored probe outcomes of the last window,
// newest first.
func (s *HistoryStore) RecentNASHealth(ctx context.Context, window time.Duration, limit int) ([]NASHealthSample, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT time, status, response_time_ms, total_bytes, free_bytes, error
		FROM nas_health_history
		WHERE time > $1
		ORDER BY time DESC
		LIMIT $2`,
		time.Now().Add(-window), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var samples []NASHealthSample
	for rows.Next() {
		var sample NASHealthSample
		if err := rows.Scan(&sample.Time, &sample.Status, &sample.ResponseTimeMs,
			&sample.TotalBytes, &sample.FreeBytes, &sample.Error); err != nil {
			return nil, err
		}
		samples = append(samples, sample)
	}
	return samples, rows.Err()
}

// Collector periodically probes the NAS and samples the host, writing both
// into the history store.
type Collector struct {
	store    *HistoryStore
	probe    *nas.Probe
	cacheDir string
	interval time.Duration
	stop     chan struct{}
}

func NewCollector(store *HistoryStore, probe *nas.Probe, cacheDir string, interval time.Duration) *Collector {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Collector{
		store:    store,
		probe:    probe,
		cacheDir: cacheDir,
		interval: interval,
		stop:     make(chan struct{}),
	}
}

func (c *Collector) Start() {
	go func() {
		ticker := time.NewTicker(c.interval)
		defer ticker.Stop()
		for {
			select {
			case <-c.stop:
				return
			case <-ticker.C:
				c.collect()
			}
		}
	}()
	log.Printf("[Monitoring] History collector running every %s", c.interval)
}

func (c *Collector) Stop() {
	close(c.stop)
}

func (c *Collector) collect() {
	result := c.probe.CheckHealth(context.Background())
	if err := c.store.RecordNASHealth(result); err != nil {
		log.Printf("[Monitoring] Failed to record NAS health sample: %v", err)
	}
	NASProbesTotal.WithLabelValues(result.Status).Inc()
	NASProbeDuration.Observe(float64(result.ResponseTimeMs) / 1000)
	if result.Capacity != nil {
		NASFreeBytes.Set(float64(result.Capacity.FreeBytes))
	}

	cpuPercent := 0.0
	if percents, err := cpu.Percent(0, false); err == nil && len(percents) > 0 {
		cpuPercent = percents[0]
	}
	var memUsed, memTotal, cacheUsed, cacheTotal uint64
	if v, err := mem.VirtualMemory(); err == nil {
		memUsed, memTotal = v.Used, v.Total
	}
	if d, err := disk.Usage(c.cacheDir); err == nil {
		cacheUsed, cacheTotal = d.Used, d.Total
	}
	if err := c.store.RecordSystemStats(cpuPercent, memUsed, memTotal, cacheUsed, cacheTotal); err != nil {
		log.Printf("[Monitoring] Failed to record system stats sample: %v", err)
	}
}
