package cmd

import (
	"bytes"
	"io"
	"os"
	"testing"

	"etsetup/internal/config"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// executeCommand is a helper function to execute a cobra command and capture its output.
func executeCommand(root *cobra.Command, args ...string) (string, error) {
	// Capture Cobra's output
	cobraBuf := new(bytes.Buffer)
	root.SetOut(cobraBuf)
	root.SetErr(cobraBuf)
	root.SetArgs(args)

	// Redirect color library output to the same buffer
	originalColorOutput := color.Output
	color.Output = cobraBuf
	defer func() { color.Output = originalColorOutput }()

	// Capture direct stdout/stderr writes
	oldStdout := os.Stdout
	oldStderr := os.Stderr
	r, w, _ := os.Pipe()
	os.Stdout = w
	os.Stderr = w

	err := root.Execute()

	w.Close()
	os.Stdout = oldStdout
	os.Stderr = oldStderr
	capturedBuf := new(bytes.Buffer)
	io.Copy(capturedBuf, r)

	return cobraBuf.String() + capturedBuf.String(), err
}

// setupMocks points config.New at temporary directories for the test's duration.
func setupMocks(t *testing.T) *config.Config {
	t.Helper()

	cfg := &config.Config{}
	cfg.SetHomeDir(t.TempDir())
	cfg.SetRadiosDir(t.TempDir())
	cfg.SetMediaRoot(t.TempDir())

	originalConfigNew := config.New
	config.New = func() (*config.Config, error) {
		return cfg, nil
	}
	t.Cleanup(func() { config.New = originalConfigNew })
	return cfg
}
