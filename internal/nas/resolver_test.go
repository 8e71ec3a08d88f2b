package nas

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSharePathEscapingDepths(t *testing.T) {
	// The same share written at every escaping depth a config value can
	// arrive with must parse to identical tokens.
	addresses := []string{
		`\\nas01\backups`,
		`\\\\nas01\\backups`,
		`\\\\\\\\nas01\\\\backups`,
		`//nas01/backups`,
		`/nas01/backups`,
	}

	for _, addr := range addresses {
		share, err := ParseSharePath(addr)
		require.NoError(t, err, "address %q", addr)
		assert.Equal(t, "nas01", share.Server, "address %q", addr)
		assert.Equal(t, "backups", share.Share, "address %q", addr)
		assert.Empty(t, share.Sub, "address %q", addr)
	}
}

func TestParseSharePathSubPath(t *testing.T) {
	share, err := ParseSharePath(`\\nas01\backups\2026\august`)
	require.NoError(t, err)
	assert.Equal(t, "nas01", share.Server)
	assert.Equal(t, "backups", share.Share)
	assert.Equal(t, []string{"2026", "august"}, share.Sub)
}

func TestParseSharePathBareServer(t *testing.T) {
	for _, addr := range []string{`\\nas01`, `//nas01`, `\\nas01\`, `\\`, ""} {
		_, err := ParseSharePath(addr)
		require.Error(t, err, "address %q", addr)
		assert.Contains(t, err.Error(), "invalid network share address")
	}
}

func TestIsNetworkPath(t *testing.T) {
	assert.True(t, IsNetworkPath(`\\nas01\backups`))
	assert.True(t, IsNetworkPath(`//nas01/backups`))
	assert.True(t, IsNetworkPath(`/mnt/nas`))
	assert.False(t, IsNetworkPath(`C:\nas`))
	assert.False(t, IsNetworkPath(""))
}

func TestNormalizeSeparators(t *testing.T) {
	assert.Equal(t, "/nas01/backups", normalizeSeparators(`\\\\nas01\\backups`))
	assert.Equal(t, "/nas01/backups/", normalizeSeparators(`\\nas01/backups\`))
	assert.Equal(t, "plain", normalizeSeparators("plain"))
}
