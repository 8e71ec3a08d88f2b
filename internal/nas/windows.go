package nas

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// windowsChecker queries capacity of a UNC share on Windows hosts by asking
// PowerShell for the mapped network drive whose provider string names the
// share. There is no syscall surface for "free space of \\server\share", so
// the probe goes through the drive mapping layer.
type windowsChecker struct {
	runner CommandRunner
}

// mappedDrive mirrors the JSON shape produced by the PowerShell query.
type mappedDrive struct {
	Drive    string `json:"drive"`
	Provider string `json:"provider"`
	Total    int64  `json:"total"`
	Free     int64  `json:"free"`
}

func newWindowsChecker(runner CommandRunner) *windowsChecker {
	return &windowsChecker{runner: runner}
}

func (c *windowsChecker) CheckCapacity(ctx context.Context, address string) (*CapacityInfo, error) {
	share, err := ParseSharePath(address)
	if err != nil {
		return nil, err
	}

	// -like is case-insensitive, matching how Windows treats share names.
	script := fmt.Sprintf(
		`Get-CimInstance Win32_MappedLogicalDisk | `+
			`Where-Object { $_.ProviderName -like '*%s*' -and $_.ProviderName -like '*%s*' } | `+
			`Select-Object -First 1 `+
			`@{n='drive';e={$_.DeviceID}},@{n='provider';e={$_.ProviderName}},`+
			`@{n='total';e={[int64]$_.Size}},@{n='free';e={[int64]$_.FreeSpace}} | `+
			`ConvertTo-Json -Compress`,
		share.Server, share.Share,
	)

	out, err := c.runner.Run(ctx, "powershell", "-NoProfile", "-NonInteractive", "-Command", script)
	if err != nil {
		return nil, err
	}

	raw := strings.TrimSpace(string(out))
	if raw == "" || raw == "null" {
		return nil, fmt.Errorf("no mapped network drive found for \\\\%s\\%s", share.Server, share.Share)
	}

	var drive mappedDrive
	if err := json.Unmarshal([]byte(raw), &drive); err != nil {
		return nil, fmt.Errorf("parse mapped drive output %q: %w", raw, err)
	}

	if err := validateMappedDrive(drive, share); err != nil {
		return nil, err
	}

	return &CapacityInfo{
		TotalBytes: drive.Total,
		UsedBytes:  drive.Total - drive.Free,
		FreeBytes:  drive.Free,
		Drive:      drive.Drive,
		Provider:   drive.Provider,
	}, nil
}

// validateMappedDrive guards against trusting a loose substring match: the
// drive must exist, report a real capacity, and its provider string must
// resolve to exactly the configured share.
func validateMappedDrive(drive mappedDrive, share SharePath) error {
	if drive.Drive == "" {
		if drive.Provider == "" {
			return fmt.Errorf("no mapped network drive found for \\\\%s\\%s", share.Server, share.Share)
		}
		return fmt.Errorf("mapped drive for provider %q has no drive letter", drive.Provider)
	}

	if drive.Total <= 0 {
		return fmt.Errorf("mapped drive %s reports zero total capacity", drive.Drive)
	}

	provider := strings.ToLower(normalizeSeparators(drive.Provider))
	want := strings.ToLower(fmt.Sprintf("//%s/%s", share.Server, share.Share))
	if !strings.Contains(provider, want) {
		return fmt.Errorf("mapped drive %s provider %q does not match share %s", drive.Drive, drive.Provider, want)
	}

	return nil
}
