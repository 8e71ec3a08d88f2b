package health

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckCacheHealthy(t *testing.T) {
	h := NewHealthChecker(nil, t.TempDir())

	cache := h.checkCache()

	assert.Equal(t, "healthy", cache.Status)
	assert.Greater(t, cache.TotalBytes, uint64(0))
}

func TestCheckCacheMissingDir(t *testing.T) {
	h := NewHealthChecker(nil, filepath.Join(t.TempDir(), "never-created"))

	cache := h.checkCache()

	assert.Equal(t, "unhealthy", cache.Status)
	assert.Zero(t, cache.TotalBytes)
}
