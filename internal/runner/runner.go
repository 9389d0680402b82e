package runner

import (
	"fmt"
	"os/exec"
)

// Run executes a command and returns an error with the combined output if it fails.
func Run(cmd *exec.Cmd) error {
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("command failed: %s\n%s", cmd.String(), string(output))
	}
	return nil
}

// Output executes a command and returns its standard output. On failure the
// error carries stderr so callers can inspect what the tool reported.
func Output(cmd *exec.Cmd) ([]byte, error) {
	out, err := cmd.Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return nil, fmt.Errorf("command failed: %s\n%s", cmd.String(), string(exitErr.Stderr))
		}
		return nil, fmt.Errorf("command failed: %s: %w", cmd.String(), err)
	}
	return out, nil
}
