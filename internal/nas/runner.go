package nas

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// CommandRunner executes an external command and returns its stdout.
// The probe talks to platform tools (df, PowerShell) through this seam so
// tests can substitute canned output without spawning real processes.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

type execRunner struct{}

// NewCommandRunner returns a runner backed by os/exec. The command inherits
// the context, so a probe timeout kills the process and releases its pipes.
func NewCommandRunner() CommandRunner {
	return execRunner{}
}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	out, err := exec.CommandContext(ctx, name, args...).Output()
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if exitErr, ok := err.(*exec.ExitError); ok && len(exitErr.Stderr) > 0 {
			return nil, fmt.Errorf("%s: %s", name, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return out, nil
}
