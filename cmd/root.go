package cmd

import (
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "etsetup",
	Short: "etsetup configures an EmComm-Tools station",
	Long: `etsetup is the configuration toolkit for EmComm-Tools stations.
It serves the first-boot wizard and the standalone identity and radio
applets on a loopback web server, entirely offline once assets are in
place.`,
	// SilenceErrors is used to prevent cobra from printing the error,
	// as we handle it ourselves in the Execute function.
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Bare `etsetup` runs the wizard, matching what the desktop
		// launcher expects.
		return firstbootCmd.RunE(cmd, args)
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		color.Red("Error: %v\n", err)
		os.Exit(1)
	}
}
