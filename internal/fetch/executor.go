package fetch

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"

	"vistopia/internal/services"
)

// Executor runs an external tool to completion.
type Executor interface {
	Run(ctx context.Context, binary string, args []string) error
}

// ExecutorFunc adapts a function to Executor.
type ExecutorFunc func(ctx context.Context, binary string, args []string) error

func (f ExecutorFunc) Run(ctx context.Context, binary string, args []string) error {
	return f(ctx, binary, args)
}

// commandExecutor runs binaries with their stdio discarded. A context
// deadline maps to services.ErrTimeout, a non-zero exit to
// services.ErrExternalTool, and a missing binary to services.ErrToolMissing.
type commandExecutor struct{}

func (commandExecutor) Run(ctx context.Context, binary string, args []string) error {
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	cmd.WaitDelay = 5 * time.Second
	err := cmd.Run()
	if err == nil {
		return nil
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return services.Wrap(services.ErrTimeout, "fetch", binary, "deadline exceeded", err)
	}
	if errors.Is(err, exec.ErrNotFound) {
		return services.Wrap(services.ErrToolMissing, "fetch", binary, "binary not found", err)
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return services.Wrap(services.ErrExternalTool, "fetch", binary,
			fmt.Sprintf("exit status %d", exitErr.ExitCode()), err)
	}
	return services.Wrap(services.ErrExternalTool, "fetch", binary, "run failed", err)
}
