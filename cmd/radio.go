package cmd

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"etsetup/internal/config"
	"etsetup/internal/radios"
	"etsetup/internal/web"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

var (
	radioList bool
	radioPort int
)

// radioCmd represents the radio command
var radioCmd = &cobra.Command{
	Use:   "radio",
	Short: "Selects the active radio",
	Long: `Selects the active radio from the catalog on a small local web UI.
With --list the catalog is printed as a table instead.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.New()
		if err != nil {
			return err
		}

		if radioList {
			return listRadios(cfg)
		}

		settings, err := config.LoadSettings(cfg.SettingsPath())
		if err != nil {
			return err
		}
		srv, err := web.New(cfg, settings, web.Options{})
		if err != nil {
			return err
		}

		addr := fmt.Sprintf("127.0.0.1:%d", radioPort)
		url := fmt.Sprintf("http://%s/", addr)
		go func() {
			time.Sleep(time.Second)
			if err := openBrowser(url); err != nil {
				color.Yellow("! Could not open browser, visit %s manually", url)
			}
		}()
		color.Cyan("i Starting radio configuration on %s", url)
		return srv.Run(addr, srv.RadioMux())
	},
}

func listRadios(cfg *config.Config) error {
	profiles, err := radios.List(cfg.RadiosDir())
	if err != nil {
		return fmt.Errorf("error reading radio catalog: %w", err)
	}
	if len(profiles) == 0 {
		color.Yellow("No radio profiles found in %s", cfg.RadiosDir())
		return nil
	}

	active := radios.ActiveID(cfg.RadiosDir())

	table := tablewriter.NewWriter(os.Stdout)
	table.Header([]string{"ID", "MANUFACTURER", "MODEL", "DEVICE", "BAUD", "ACTIVE"})
	for _, p := range profiles {
		baud := ""
		if p.RigCtrl.BaudRate > 0 {
			baud = strconv.Itoa(p.RigCtrl.BaudRate)
		}
		mark := ""
		if p.ID == active {
			mark = color.GreenString("✔")
		}
		table.Append([]string{p.ID, p.Maker(), p.Model, p.RigCtrl.Device, baud, mark})
	}
	table.Render()
	return nil
}

func init() {
	rootCmd.AddCommand(radioCmd)
	radioCmd.Flags().BoolVar(&radioList, "list", false, "Print the radio catalog and exit")
	radioCmd.Flags().IntVar(&radioPort, "port", 5052, "Port to listen on")
}
