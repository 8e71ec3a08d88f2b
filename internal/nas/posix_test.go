package nas

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRunner struct {
	output []byte
	err    error

	name string
	args []string
}

func (f *fakeRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	f.name = name
	f.args = args
	return f.output, f.err
}

func TestParseDiskFree(t *testing.T) {
	output := "Filesystem       1B-blocks          Used     Available Use% Mounted on\n" +
		"nas:/volume1 1099511627776 549755813888 549755813888  50% /mnt/nas\n"

	info, err := parseDiskFree(output)
	require.NoError(t, err)
	assert.Equal(t, int64(1099511627776), info.TotalBytes)
	assert.Equal(t, int64(549755813888), info.UsedBytes)
	assert.Equal(t, int64(549755813888), info.FreeBytes)
	assert.Empty(t, info.Drive)
}

func TestParseDiskFreeTrailingBlankLines(t *testing.T) {
	output := "Filesystem 1B-blocks Used Available Use% Mounted on\n" +
		"/dev/sda1 1000 400 600 40% /mnt/nas\n\n\n"

	info, err := parseDiskFree(output)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), info.TotalBytes)
}

func TestParseDiskFreeTooFewColumns(t *testing.T) {
	_, err := parseDiskFree("Filesystem 1B-blocks\n/dev/sda1 1000 400\n")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected at least 6 columns, got 3")
}

func TestParseDiskFreeNonNumeric(t *testing.T) {
	_, err := parseDiskFree("header\n/dev/sda1 lots some more 40% /mnt/nas\n")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `total "lots" is not a number`)
}

func TestParseDiskFreeZeroTotal(t *testing.T) {
	_, err := parseDiskFree("header\n/dev/sda1 0 0 0 0% /mnt/nas\n")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "zero total capacity")
	assert.Contains(t, err.Error(), "/dev/sda1")
}

func TestParseDiskFreeEmptyOutput(t *testing.T) {
	_, err := parseDiskFree("\n  \n")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no output")
}

func TestPosixCheckerUnreadablePath(t *testing.T) {
	c := newPosixChecker("linux", &fakeRunner{})

	_, err := c.CheckCapacity(context.Background(), "/does/not/exist")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot access path /does/not/exist")
}

func TestPosixCheckerRunsDF(t *testing.T) {
	dir := t.TempDir()
	runner := &fakeRunner{output: []byte(
		"Filesystem 1B-blocks Used Available Use% Mounted on\n" +
			"/dev/sda1 2000 500 1500 25% " + dir + "\n")}
	c := newPosixChecker("linux", runner)

	info, err := c.CheckCapacity(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, "df", runner.name)
	assert.Equal(t, []string{"-B1", dir}, runner.args)
	assert.Equal(t, int64(2000), info.TotalBytes)
	assert.Equal(t, int64(1500), info.FreeBytes)
}

func TestPosixCheckerNonLinuxUsesKilobytes(t *testing.T) {
	// GNU df's -B1 does not exist on BSD userlands; those hosts get
	// POSIX -k and the counts scaled to bytes.
	dir := t.TempDir()
	runner := &fakeRunner{output: []byte(
		"Filesystem 1024-blocks Used Available Capacity Mounted on\n" +
			"/dev/disk1s1 2000 500 1500 25% " + dir + "\n")}
	c := newPosixChecker("darwin", runner)

	info, err := c.CheckCapacity(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"-k", dir}, runner.args)
	assert.Equal(t, int64(2000*1024), info.TotalBytes)
	assert.Equal(t, int64(500*1024), info.UsedBytes)
	assert.Equal(t, int64(1500*1024), info.FreeBytes)
}

func TestPosixCheckerCommandError(t *testing.T) {
	dir := t.TempDir()
	runner := &fakeRunner{err: errors.New("df: invalid option")}
	c := newPosixChecker("linux", runner)

	_, err := c.CheckCapacity(context.Background(), dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "df: invalid option")
}
