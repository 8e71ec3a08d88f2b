package nas

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChecker struct {
	capacity *CapacityInfo
	err      error
	delay    time.Duration
}

func (f *fakeChecker) CheckCapacity(ctx context.Context, address string) (*CapacityInfo, error) {
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return f.capacity, f.err
}

func staticAddress(addr string) func() string {
	return func() string { return addr }
}

func TestCheckHealthNotConfigured(t *testing.T) {
	p := newProbe("linux", nil, staticAddress(""))

	result := p.CheckHealth(context.Background())

	assert.Equal(t, StatusUnhealthy, result.Status)
	assert.Contains(t, result.Error, "not configured")
	assert.Nil(t, result.Capacity)
	assert.False(t, result.CheckedAt.IsZero())
}

func TestCheckHealthInvalidAddressForPlatform(t *testing.T) {
	tests := []struct {
		name     string
		platform string
		address  string
	}{
		{"relative path on linux", "linux", "mnt/nas"},
		{"drive letter on windows", "windows", `Z:\nas`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newProbe(tt.platform, nil, staticAddress(tt.address))

			result := p.CheckHealth(context.Background())

			assert.Equal(t, StatusUnhealthy, result.Status)
			assert.Contains(t, result.Error, tt.address)
		})
	}
}

func TestCheckHealthHealthy(t *testing.T) {
	capacity := &CapacityInfo{TotalBytes: 1000, UsedBytes: 400, FreeBytes: 600}
	p := newProbe("linux", nil, staticAddress("/mnt/nas"))
	p.checker = &fakeChecker{capacity: capacity}

	result := p.CheckHealth(context.Background())

	assert.Equal(t, StatusHealthy, result.Status)
	assert.Empty(t, result.Error)
	require.NotNil(t, result.Capacity)
	assert.Equal(t, int64(1000), result.Capacity.TotalBytes)
	assert.Equal(t, int64(600), result.Capacity.FreeBytes)
	assert.GreaterOrEqual(t, result.ResponseTimeMs, int64(0))
}

func TestCheckHealthDegradedWhenSlow(t *testing.T) {
	p := newProbe("linux", nil, staticAddress("/mnt/nas"))
	p.checker = &fakeChecker{
		capacity: &CapacityInfo{TotalBytes: 1000, FreeBytes: 1000},
		delay:    30 * time.Millisecond,
	}
	p.slowAfter = 10 * time.Millisecond

	result := p.CheckHealth(context.Background())

	assert.Equal(t, StatusDegraded, result.Status)
	assert.Empty(t, result.Error)
	require.NotNil(t, result.Capacity)
	assert.GreaterOrEqual(t, result.ResponseTimeMs, int64(10))
}

func TestCheckHealthSlowButWithinThreshold(t *testing.T) {
	p := newProbe("linux", nil, staticAddress("/mnt/nas"))
	p.checker = &fakeChecker{
		capacity: &CapacityInfo{TotalBytes: 1000, FreeBytes: 1000},
		delay:    5 * time.Millisecond,
	}
	p.slowAfter = time.Second

	result := p.CheckHealth(context.Background())

	assert.Equal(t, StatusHealthy, result.Status)
}

func TestCheckHealthCheckerError(t *testing.T) {
	p := newProbe("linux", nil, staticAddress("/mnt/nas"))
	p.checker = &fakeChecker{err: errors.New("df: command not found")}

	result := p.CheckHealth(context.Background())

	assert.Equal(t, StatusUnhealthy, result.Status)
	assert.Equal(t, "df: command not found", result.Error)
	assert.Nil(t, result.Capacity)
}

func TestClassifyBoundary(t *testing.T) {
	// Exactly the threshold is still healthy; one millisecond over is not.
	assert.Equal(t, StatusHealthy, classify(999*time.Millisecond, degradedAfter))
	assert.Equal(t, StatusHealthy, classify(1000*time.Millisecond, degradedAfter))
	assert.Equal(t, StatusDegraded, classify(1001*time.Millisecond, degradedAfter))
}

// stuckChecker blocks without ever consulting the context, standing in for
// a capacity query stuck in open(2) on a dead mount.
type stuckChecker struct {
	release chan struct{}
}

func (s *stuckChecker) CheckCapacity(ctx context.Context, address string) (*CapacityInfo, error) {
	<-s.release
	return nil, errors.New("released")
}

func TestCheckHealthTimeoutWithUnresponsiveQuery(t *testing.T) {
	checker := &stuckChecker{release: make(chan struct{})}
	defer close(checker.release)

	p := newProbe("linux", nil, staticAddress("/mnt/nas"))
	p.checker = checker
	p.timeout = 50 * time.Millisecond

	results := make(chan HealthResult, 1)
	go func() { results <- p.CheckHealth(context.Background()) }()

	select {
	case result := <-results:
		assert.Equal(t, StatusUnhealthy, result.Status)
		assert.Contains(t, result.Error, "timed out")
	case <-time.After(2 * time.Second):
		t.Fatal("CheckHealth did not return after the probe timeout")
	}
}

func TestCheckHealthTimeout(t *testing.T) {
	p := newProbe("linux", nil, staticAddress("/mnt/nas"))
	p.checker = &fakeChecker{delay: time.Second}
	p.timeout = 20 * time.Millisecond

	result := p.CheckHealth(context.Background())

	assert.Equal(t, StatusUnhealthy, result.Status)
	assert.Contains(t, result.Error, "timed out")
}

func TestNewProbePicksPlatformChecker(t *testing.T) {
	p := newProbe("windows", NewCommandRunner(), staticAddress(`\\nas01\backups`))
	assert.IsType(t, &windowsChecker{}, p.checker)

	p = newProbe("linux", NewCommandRunner(), staticAddress("/mnt/nas"))
	assert.IsType(t, &posixChecker{}, p.checker)

	p = newProbe("darwin", NewCommandRunner(), staticAddress("/Volumes/nas"))
	assert.IsType(t, &posixChecker{}, p.checker)
}
