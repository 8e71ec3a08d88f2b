package nas

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// posixChecker queries capacity of a mounted path with df. Running the real
// tool (instead of statfs) exercises the mount itself: a stale NFS/SMB mount
// hangs df, which the probe timeout converts into an unhealthy result.
type posixChecker struct {
	runner CommandRunner
	dfFlag string
	// blockSize scales the parsed numbers to bytes.
	blockSize int64
}

// newPosixChecker picks the df invocation for the platform: -B1 is GNU
// coreutils only, so non-Linux hosts fall back to POSIX -k and scale the
// kilobyte counts.
func newPosixChecker(platform string, runner CommandRunner) *posixChecker {
	c := &posixChecker{runner: runner, dfFlag: "-B1", blockSize: 1}
	if platform != "linux" {
		c.dfFlag = "-k"
		c.blockSize = 1024
	}
	return c
}

func (c *posixChecker) CheckCapacity(ctx context.Context, address string) (*CapacityInfo, error) {
	f, err := os.Open(address)
	if err != nil {
		return nil, fmt.Errorf("cannot access path %s: %w", address, err)
	}
	f.Close()

	out, err := c.runner.Run(ctx, "df", c.dfFlag, address)
	if err != nil {
		return nil, err
	}

	info, err := parseDiskFree(string(out))
	if err != nil {
		return nil, err
	}

	info.TotalBytes *= c.blockSize
	info.UsedBytes *= c.blockSize
	info.FreeBytes *= c.blockSize
	return info, nil
}

// parseDiskFree parses df output of the form:
//
//	Filesystem       1B-blocks       Used   Available Use% Mounted on
//	nas:/volume1 10995116277760 5497558138880 5497558138880  50% /mnt/nas
//
// Only the last non-empty line is considered, which also discards the
// header and any trailing blank lines.
func parseDiskFree(output string) (*CapacityInfo, error) {
	var line string
	for _, l := range strings.Split(output, "\n") {
		if strings.TrimSpace(l) != "" {
			line = l
		}
	}
	if line == "" {
		return nil, fmt.Errorf("df produced no output")
	}

	fields := strings.Fields(line)
	if len(fields) < 6 {
		return nil, fmt.Errorf("unexpected df output %q: expected at least 6 columns, got %d", line, len(fields))
	}

	total, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("unexpected df output %q: total %q is not a number", line, fields[1])
	}
	used, err := strconv.ParseInt(fields[2], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("unexpected df output %q: used %q is not a number", line, fields[2])
	}
	free, err := strconv.ParseInt(fields[3], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("unexpected df output %q: available %q is not a number", line, fields[3])
	}

	if total == 0 {
		return nil, fmt.Errorf("df reports zero total capacity for %s", fields[0])
	}

	return &CapacityInfo{
		TotalBytes: total,
		UsedBytes:  used,
		FreeBytes:  free,
	}, nil
}
