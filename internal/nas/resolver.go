package nas

import (
	"fmt"
	"strings"
)

// SharePath is a parsed network share address.
type SharePath struct {
	Server string
	Share  string
	// Sub holds any trailing path segments below the share. They are not
	// needed for addressing the share but are preserved for the probe.
	Sub []string
}

// normalizeSeparators collapses every run of '\' or '/' characters into a
// single '/'. Addresses arrive with wildly different escaping depths
// depending on where the config value came from (\\nas\share,
// \\\\nas\\share, //nas/share all mean the same share).
func normalizeSeparators(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	prevSep := false
	for _, r := range raw {
		if r == '\\' || r == '/' {
			if !prevSep {
				b.WriteByte('/')
			}
			prevSep = true
			continue
		}
		prevSep = false
		b.WriteRune(r)
	}
	return b.String()
}

// IsNetworkPath reports whether raw looks like a network share address:
// one or more leading '\' or '/' separators at any escaping depth.
func IsNetworkPath(raw string) bool {
	return len(raw) > 0 && (raw[0] == '\\' || raw[0] == '/')
}

// ParseSharePath extracts the server and share tokens from a network share
// address. It fails when the address carries fewer than two non-empty
// segments (a bare server with no share is not addressable).
func ParseSharePath(raw string) (SharePath, error) {
	normalized := strings.TrimPrefix(normalizeSeparators(raw), "/")

	var segments []string
	for _, seg := range strings.Split(normalized, "/") {
		if seg != "" {
			segments = append(segments, seg)
		}
	}

	if len(segments) < 2 {
		return SharePath{}, fmt.Errorf("invalid network share address %q: expected \\\\server\\share", raw)
	}

	return SharePath{
		Server: segments[0],
		Share:  segments[1],
		Sub:    segments[2:],
	}, nil
}
