package pdf

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// ProbeTimeout bounds quick availability checks of external tools
const ProbeTimeout = 10 * time.Second

// maxOutputInError caps how much tool output is attached to an error
const maxOutputInError = 500

// runCommand executes a command and returns its combined output. A zero
// timeout waits as long as ctx allows.
func runCommand(ctx context.Context, timeout time.Duration, name string, args ...string) ([]byte, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, name, args...)
	output, err := cmd.CombinedOutput()

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return output, fmt.Errorf("command timed out after %v", timeout)
	}
	if ctx.Err() != nil {
		return output, fmt.Errorf("command cancelled: %w", ctx.Err())
	}
	if err != nil {
		return output, fmt.Errorf("command failed: %w", err)
	}
	return output, nil
}

// commandError attaches trimmed tool output to err
func commandError(err error, output []byte) error {
	out := strings.TrimSpace(string(output))
	if out == "" {
		return err
	}
	if len(out) > maxOutputInError {
		out = out[:maxOutputInError] + "..."
	}
	return fmt.Errorf("%w\nOutput: %s", err, out)
}
