package download

import (
	"bytes"
	"context"
	"io"
	"os"
	"os/exec"
)

// runCurl executes one transfer and reports curl's exit code and stderr.
// A non-nil error means the transfer could not run at all or hit the
// context deadline. Swapped out in tests.
var runCurl = func(ctx context.Context, url, dest, logPath string) (int, string, error) {
	cmd := exec.CommandContext(ctx, "curl", "-L", "-f", "--create-dirs", "-o", dest, url)

	var stderr bytes.Buffer
	var sinks io.Writer = &stderr
	if logPath != "" {
		if f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644); err == nil {
			defer f.Close()
			sinks = io.MultiWriter(&stderr, f)
		}
	}
	cmd.Stderr = sinks

	err := cmd.Run()
	if err == nil {
		return 0, stderr.String(), nil
	}
	if ctx.Err() != nil {
		return -1, stderr.String(), ctx.Err()
	}
	if exitErr, ok := err.(*exec.ExitError); ok {
		return exitErr.ExitCode(), stderr.String(), nil
	}
	return -1, stderr.String(), err
}
