package contract

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// toolWaitDelay bounds how long a killed tool may keep its output pipes open.
const toolWaitDelay = 2 * time.Second

// LocalToolRunner implements the ToolRunner interface by executing
// binaries installed on the local machine.
type LocalToolRunner struct{}

var _ ToolRunner = &LocalToolRunner{} // Compile-time check

// NewLocalToolRunner creates a new instance of the local tool runner.
func NewLocalToolRunner() *LocalToolRunner {
	return &LocalToolRunner{}
}

// Run executes a tool in the invocation's directory and returns its stdout.
// Linters exit non-zero when they report findings, so stdout is returned
// together with the error for the caller to parse.
func (r *LocalToolRunner) Run(ctx context.Context, inv ToolInvocation) ([]byte, error) {
	cmd := exec.CommandContext(ctx, inv.Command, inv.Args...)
	cmd.Dir = inv.Dir
	cmd.WaitDelay = toolWaitDelay
	out, err := cmd.Output()
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		stderr := strings.TrimSpace(string(exitErr.Stderr))
		if ctxErr := ctx.Err(); ctxErr != nil {
			return out, fmt.Errorf("%s stopped: %w", inv.Name, ctxErr)
		}
		return out, fmt.Errorf("%s exited with code %d: %s", inv.Name, exitErr.ExitCode(), stderr)
	} else if err != nil {
		return out, fmt.Errorf("%s failed to start: %w. Ensure %q is installed and available on your PATH", inv.Name, err, inv.Command)
	}
	return out, nil
}

// Available implements the ToolRunner interface.
func (r *LocalToolRunner) Available(command string) bool {
	_, err := exec.LookPath(command)
	return err == nil
}
