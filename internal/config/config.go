package config

import (
	"os"
	"path/filepath"
)

const (
	// AppName is the name of the application
	AppName = "etsetup"
	// ConfDirName is the per-user configuration directory, shared with the
	// other emcomm-tools utilities that read user.json.
	ConfDirName = "emcomm-tools"
	// MarkerName is the flag file that records a completed first boot.
	MarkerName = ".firstboot-complete"
	// DefaultRadiosDir is the system-wide radio profile directory.
	DefaultRadiosDir = "/opt/emcomm-tools/conf/radios.d"
)

// Config holds the resolved filesystem layout for the current operator.
type Config struct {
	homeDir   string
	radiosDir string
	mediaRoot string
}

// New creates a new Config instance.
var New = func() (*Config, error) {
	var home string
	var err error

	// Check for the override environment variable first.
	// This is useful for testing.
	homeOverride := os.Getenv("ETSETUP_HOME")
	if homeOverride != "" {
		home = homeOverride
	} else {
		home, err = os.UserHomeDir()
		if err != nil {
			return nil, err
		}
	}

	radios := os.Getenv("ETSETUP_RADIOS_DIR")
	if radios == "" {
		radios = DefaultRadiosDir
	}

	media := os.Getenv("ETSETUP_MEDIA_ROOT")
	if media == "" {
		user := os.Getenv("USER")
		if user == "" {
			user = "user"
		}
		media = filepath.Join("/media", user)
	}

	return &Config{homeDir: home, radiosDir: radios, mediaRoot: media}, nil
}

// SetHomeDir sets the operator's home directory.
func (c *Config) SetHomeDir(dir string) {
	c.homeDir = dir
}

// HomeDir returns the operator's home directory.
func (c *Config) HomeDir() string {
	return c.homeDir
}

// ConfDir returns the per-user configuration directory.
func (c *Config) ConfDir() string {
	return filepath.Join(c.homeDir, ".config", ConfDirName)
}

// UserConfPath returns the path of the operator profile file.
func (c *Config) UserConfPath() string {
	return filepath.Join(c.ConfDir(), "user.json")
}

// MarkerPath returns the path of the first-boot completion marker.
func (c *Config) MarkerPath() string {
	return filepath.Join(c.ConfDir(), MarkerName)
}

// PatConfPath returns the path of the Winlink client configuration.
func (c *Config) PatConfPath() string {
	return filepath.Join(c.homeDir, ".config", "pat", "config.json")
}

// RadiosDir returns the radio profile directory.
func (c *Config) RadiosDir() string {
	return c.radiosDir
}

// SetRadiosDir sets the radio profile directory.
func (c *Config) SetRadiosDir(dir string) {
	c.radiosDir = dir
}

// MediaRoot returns the conventional per-user removable media mount root.
func (c *Config) MediaRoot() string {
	return c.mediaRoot
}

// SetMediaRoot sets the removable media mount root.
func (c *Config) SetMediaRoot(dir string) {
	c.mediaRoot = dir
}

// TilesetDir returns the local map tile directory served by mbtileserver.
func (c *Config) TilesetDir() string {
	return filepath.Join(c.homeDir, ".local", "share", "emcomm-tools", "mbtileserver", "tilesets")
}

// ExtractDir returns the local OSM region extract directory.
func (c *Config) ExtractDir() string {
	return filepath.Join(c.homeDir, "my-maps")
}

// ZimDir returns the local Wikipedia archive directory.
func (c *Config) ZimDir() string {
	return filepath.Join(c.homeDir, "wikipedia")
}

// DocsDir returns the operator's documents directory.
func (c *Config) DocsDir() string {
	return filepath.Join(c.homeDir, "Documents")
}

// SettingsPath returns the path of the optional settings override file.
func (c *Config) SettingsPath() string {
	return filepath.Join(c.ConfDir(), "settings.yaml")
}
