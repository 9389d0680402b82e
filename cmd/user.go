package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"etsetup/internal/config"
	"etsetup/internal/userconf"
	"etsetup/internal/web"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	userPrompt bool
	userPort   int
)

// userCmd represents the user command
var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Configures the operator identity",
	Long: `Configures the operator identity (callsign, grid square, name, language,
Winlink password) on a small local web UI. With --prompt the values are read
from the terminal instead, with the password hidden.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.New()
		if err != nil {
			return err
		}

		if userPrompt {
			return promptUser(cfg)
		}

		settings, err := config.LoadSettings(cfg.SettingsPath())
		if err != nil {
			return err
		}
		srv, err := web.New(cfg, settings, web.Options{})
		if err != nil {
			return err
		}

		addr := fmt.Sprintf("127.0.0.1:%d", userPort)
		url := fmt.Sprintf("http://%s/", addr)
		go func() {
			time.Sleep(time.Second)
			if err := openBrowser(url); err != nil {
				color.Yellow("! Could not open browser, visit %s manually", url)
			}
		}()
		color.Cyan("i Starting user configuration on %s", url)
		return srv.Run(addr, srv.UserMux())
	},
}

// promptUser collects the operator profile from the terminal. Existing values
// are kept when the operator presses enter.
func promptUser(cfg *config.Config) error {
	profile := userconf.Load(cfg.UserConfPath())
	reader := bufio.NewReader(os.Stdin)

	profile.Callsign = promptField(reader, "Callsign", profile.Callsign)
	profile.Grid = promptField(reader, "Grid square", profile.Grid)
	profile.Name = promptField(reader, "Name", profile.Name)
	profile.Language = promptField(reader, "Language (en/fr)", profile.Language)

	fmt.Print("Winlink password (hidden, enter to keep): ")
	passwd, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}
	if len(passwd) > 0 {
		profile.WinlinkPasswd = string(passwd)
	}

	profile.Normalize()
	if err := profile.Validate(); err != nil {
		return err
	}
	if err := userconf.Save(cfg.UserConfPath(), profile); err != nil {
		return err
	}
	if err := userconf.SyncPat(cfg.PatConfPath(), profile); err != nil {
		color.Yellow("! Could not update the Winlink client config: %v", err)
	}

	color.Green("✔ Saved operator profile for %s", profile.Callsign)
	return nil
}

func promptField(reader *bufio.Reader, label, current string) string {
	if current != "" {
		fmt.Printf("%s [%s]: ", label, current)
	} else {
		fmt.Printf("%s: ", label)
	}
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return current
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return current
	}
	return line
}

func init() {
	rootCmd.AddCommand(userCmd)
	userCmd.Flags().BoolVar(&userPrompt, "prompt", false, "Read the profile from the terminal instead of the web UI")
	userCmd.Flags().IntVar(&userPort, "port", 5054, "Port to listen on")
}
