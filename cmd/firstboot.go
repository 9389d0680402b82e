package cmd

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"etsetup/internal/config"
	"etsetup/internal/download"
	"etsetup/internal/finalize"
	"etsetup/internal/runner"
	"etsetup/internal/web"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	firstbootForce bool
	firstbootDebug bool
	firstbootHost  string
	firstbootPort  int
)

// openBrowser is a variable so it can be stubbed in tests.
var openBrowser = func(url string) error {
	cmd := exec.Command("xdg-open", url)
	return runner.Run(cmd)
}

// firstbootCmd represents the firstboot command
var firstbootCmd = &cobra.Command{
	Use:   "firstboot",
	Short: "Runs the first-boot configuration wizard",
	Long: `Runs the guided first-boot wizard: operator identity, radio selection,
internet check, storage destination and offline asset downloads. The wizard
serves a local web UI and opens the default browser unless --debug is set.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.New()
		if err != nil {
			return err
		}

		if !firstbootForce && finalize.HasMarker(cfg.MarkerPath()) {
			color.Yellow("i First boot wizard already completed. Use --force to run again.")
			return nil
		}

		settings, err := config.LoadSettings(cfg.SettingsPath())
		if err != nil {
			return err
		}

		opts := web.Options{}
		if firstbootDebug {
			opts.Echo = true
			opts.TransferLog = filepath.Join(os.TempDir(), "etsetup-transfers.log")
		}

		srv, err := web.New(cfg, settings, opts)
		if err != nil {
			return err
		}

		addr := fmt.Sprintf("%s:%d", firstbootHost, firstbootPort)
		url := fmt.Sprintf("http://%s/", addr)

		if firstbootDebug {
			color.Cyan("i Starting in DEBUG mode on %s", url)
			stop, err := download.WatchLog(opts.TransferLog, os.Stdout)
			if err != nil {
				color.Yellow("! Could not tail transfer log: %v", err)
			} else {
				defer stop()
			}
		} else {
			go func() {
				// Give the listener a moment before pointing the browser at it.
				time.Sleep(time.Second)
				if err := openBrowser(url); err != nil {
					color.Yellow("! Could not open browser, visit %s manually", url)
				}
			}()
			color.Cyan("i Starting first boot wizard on %s", url)
		}

		return srv.Run(addr, srv.WizardMux())
	},
}

func init() {
	rootCmd.AddCommand(firstbootCmd)
	firstbootCmd.Flags().BoolVar(&firstbootForce, "force", false, "Run even if the wizard already completed")
	firstbootCmd.Flags().BoolVar(&firstbootDebug, "debug", false, "Run in the foreground with the transfer log echoed to the console")
	firstbootCmd.Flags().StringVar(&firstbootHost, "host", "127.0.0.1", "Host to bind to")
	firstbootCmd.Flags().IntVar(&firstbootPort, "port", 5000, "Port to listen on")
}
