package nas

import (
	"context"
	"errors"
	"fmt"
	"log"
	"runtime"
	"strings"
	"time"
)

// Probe status values.
const (
	StatusHealthy   = "healthy"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"
)

const (
	// defaultTimeout bounds one capacity query. The external process is
	// killed when it fires.
	defaultTimeout = 10 * time.Second
	// degradedAfter is the slow-probe threshold. A probe finishing in
	// exactly this long is still healthy.
	degradedAfter = 1000 * time.Millisecond
)

// CapacityInfo is a point-in-time capacity snapshot of the NAS tier.
// Drive and Provider are only set on Windows hosts.
type CapacityInfo struct {
	TotalBytes int64  `json:"total_bytes"`
	UsedBytes  int64  `json:"used_bytes"`
	FreeBytes  int64  `json:"free_bytes"`
	Drive      string `json:"drive,omitempty"`
	Provider   string `json:"provider,omitempty"`
}

// HealthResult is the outcome of one probe. The probe never returns an
// error to its caller; every failure path becomes an unhealthy result.
type HealthResult struct {
	Status         string        `json:"status"`
	ResponseTimeMs int64         `json:"response_time_ms"`
	CheckedAt      time.Time     `json:"checked_at"`
	Capacity       *CapacityInfo `json:"capacity,omitempty"`
	Error          string        `json:"error,omitempty"`
}

// CapacityChecker runs the platform-specific capacity query for a validated
// mount address.
type CapacityChecker interface {
	CheckCapacity(ctx context.Context, address string) (*CapacityInfo, error)
}

// Probe performs end-to-end connectivity and capacity checks against the
// NAS mount. The host platform is detected once at construction so a
// process always probes the same way.
type Probe struct {
	platform     string
	checker      CapacityChecker
	mountAddress func() string
	timeout      time.Duration
	slowAfter    time.Duration
}

// NewProbe builds a probe for the current platform. mountAddress supplies
// the configured NAS mount address and is consulted on every call, so
// config changes take effect without a restart.
func NewProbe(mountAddress func() string) *Probe {
	return newProbe(runtime.GOOS, NewCommandRunner(), mountAddress)
}

func newProbe(platform string, runner CommandRunner, mountAddress func() string) *Probe {
	p := &Probe{
		platform:     platform,
		mountAddress: mountAddress,
		timeout:      defaultTimeout,
		slowAfter:    degradedAfter,
	}
	if platform == "windows" {
		p.checker = newWindowsChecker(runner)
	} else {
		p.checker = newPosixChecker(platform, runner)
	}
	return p
}

// classify maps one probe's elapsed time to a status. Exactly the threshold
// is still healthy.
func classify(elapsed, slowAfter time.Duration) string {
	if elapsed > slowAfter {
		return StatusDegraded
	}
	return StatusHealthy
}

// CheckHealth runs one probe: validate the configured address for this
// platform, run the capacity query against the timeout, and classify the
// outcome by elapsed time.
func (p *Probe) CheckHealth(ctx context.Context) HealthResult {
	start := time.Now()

	address := p.mountAddress()
	if address == "" {
		return p.fail(start, "NAS mount path not configured (set NAS_MOUNT_PATH)")
	}

	if p.platform == "windows" {
		if !IsNetworkPath(address) {
			return p.fail(start, fmt.Sprintf("%q is not a valid network path", address))
		}
	} else if !strings.HasPrefix(address, "/") {
		return p.fail(start, fmt.Sprintf("%q is not an absolute mount path", address))
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	// The capacity query can block in places the context cannot reach
	// (open(2) on a stale NFS/SMB mount), so the whole query is raced
	// against the deadline. A query that never settles leaves an
	// abandoned goroutine behind until the kernel gives up on the mount.
	type outcome struct {
		capacity *CapacityInfo
		err      error
	}
	done := make(chan outcome, 1)
	go func() {
		capacity, err := p.checker.CheckCapacity(ctx, address)
		done <- outcome{capacity, err}
	}()

	var capacity *CapacityInfo
	select {
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return p.fail(start, fmt.Sprintf("capacity check timed out after %s", p.timeout))
		}
		return p.fail(start, ctx.Err().Error())
	case out := <-done:
		if out.err != nil {
			if errors.Is(out.err, context.DeadlineExceeded) {
				return p.fail(start, fmt.Sprintf("capacity check timed out after %s", p.timeout))
			}
			return p.fail(start, out.err.Error())
		}
		capacity = out.capacity
	}
	elapsed := time.Since(start)

	status := classify(elapsed, p.slowAfter)
	if status == StatusDegraded {
		log.Printf("[NASProbe] Slow probe: %s responded in %dms", address, elapsed.Milliseconds())
	}

	return HealthResult{
		Status:         status,
		ResponseTimeMs: elapsed.Milliseconds(),
		CheckedAt:      time.Now(),
		Capacity:       capacity,
	}
}

func (p *Probe) fail(start time.Time, message string) HealthResult {
	log.Printf("[NASProbe] Probe failed: %s", message)
	return HealthResult{
		Status:         StatusUnhealthy,
		ResponseTimeMs: time.Since(start).Milliseconds(),
		CheckedAt:      time.Now(),
		Error:          message,
	}
}
