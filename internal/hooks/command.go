package hooks

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"time"
)

// defaultCommandTimeout applies when a command hook sets no timeout.
const defaultCommandTimeout = 10 * time.Second

// commandWaitDelay bounds how long Run waits for I/O after the shell is
// killed. Background children of the shell can otherwise hold stderr open.
const commandWaitDelay = 500 * time.Millisecond

// CommandHandler returns a Handler that runs a shell command with the event
// payload as JSON on stdin. A non-zero exit is reported as an error.
func CommandHandler(command string, timeout time.Duration) Handler {
	if timeout <= 0 {
		timeout = defaultCommandTimeout
	}
	return func(ctx context.Context, p Payload) error {
		input, err := json.Marshal(p)
		if err != nil {
			return fmt.Errorf("encoding hook payload: %w", err)
		}

		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		cmd := exec.CommandContext(ctx, "sh", "-c", command)
		cmd.Stdin = bytes.NewReader(input)
		var stderr bytes.Buffer
		cmd.Stderr = &stderr
		cmd.WaitDelay = commandWaitDelay

		if err := cmd.Run(); err != nil {
			return fmt.Errorf("hook command %q: %w: %s", command, err, bytes.TrimSpace(stderr.Bytes()))
		}
		return nil
	}
}
