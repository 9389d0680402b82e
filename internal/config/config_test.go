package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestNewHomeOverride(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("ETSETUP_HOME", tempHome)
	t.Setenv("ETSETUP_RADIOS_DIR", "")
	t.Setenv("ETSETUP_MEDIA_ROOT", "")

	cfg, err := New()
	if err != nil {
		t.Fatalf("New() returned an error: %v", err)
	}

	if cfg.HomeDir() != tempHome {
		t.Errorf("HomeDir() = %v, want %v", cfg.HomeDir(), tempHome)
	}
	if cfg.RadiosDir() != DefaultRadiosDir {
		t.Errorf("RadiosDir() = %v, want %v", cfg.RadiosDir(), DefaultRadiosDir)
	}

	wantConf := filepath.Join(tempHome, ".config", ConfDirName)
	if cfg.ConfDir() != wantConf {
		t.Errorf("ConfDir() = %v, want %v", cfg.ConfDir(), wantConf)
	}
	if cfg.UserConfPath() != filepath.Join(wantConf, "user.json") {
		t.Errorf("UserConfPath() = %v", cfg.UserConfPath())
	}
	if cfg.MarkerPath() != filepath.Join(wantConf, MarkerName) {
		t.Errorf("MarkerPath() = %v", cfg.MarkerPath())
	}
}

func TestCategoryDirs(t *testing.T) {
	cfg := &Config{homeDir: "/home/op"}

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"tilesets", cfg.TilesetDir(), "/home/op/.local/share/emcomm-tools/mbtileserver/tilesets"},
		{"extracts", cfg.ExtractDir(), "/home/op/my-maps"},
		{"archives", cfg.ZimDir(), "/home/op/wikipedia"},
		{"documents", cfg.DocsDir(), "/home/op/Documents"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %v, want %v", tt.got, tt.want)
			}
		})
	}
}

func TestLoadSettingsMissingFile(t *testing.T) {
	s, err := LoadSettings(filepath.Join(t.TempDir(), "settings.yaml"))
	if err != nil {
		t.Fatalf("LoadSettings() returned an error: %v", err)
	}
	if len(s.Tiles.Files) != 3 {
		t.Errorf("default tile file count = %d, want 3", len(s.Tiles.Files))
	}
	if s.Downloads.MinExtractBytes != 1000 {
		t.Errorf("MinExtractBytes = %d, want 1000", s.Downloads.MinExtractBytes)
	}
	if s.Downloads.LargeTimeout.Std() != 30*time.Minute {
		t.Errorf("LargeTimeout = %v, want 30m", s.Downloads.LargeTimeout)
	}
}

func TestLoadSettingsOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	data := []byte("downloads:\n  min_extract_bytes: 4096\n  large_timeout: 10m\narchives:\n  listing_url: http://mirror.example/zim\n")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("failed to write settings file: %v", err)
	}

	s, err := LoadSettings(path)
	if err != nil {
		t.Fatalf("LoadSettings() returned an error: %v", err)
	}
	if s.Downloads.MinExtractBytes != 4096 {
		t.Errorf("MinExtractBytes = %d, want 4096", s.Downloads.MinExtractBytes)
	}
	if s.Downloads.LargeTimeout.Std() != 10*time.Minute {
		t.Errorf("LargeTimeout = %v, want 10m", s.Downloads.LargeTimeout)
	}
	if s.Archives.ListingURL != "http://mirror.example/zim" {
		t.Errorf("Archives.ListingURL = %v", s.Archives.ListingURL)
	}
	// Untouched fields keep defaults.
	if s.Downloads.TileTimeout.Std() != 5*time.Minute {
		t.Errorf("TileTimeout = %v, want default 5m", s.Downloads.TileTimeout)
	}
	if s.Tiles.Release == "" {
		t.Error("Tiles.Release lost its default")
	}
}

func TestLoadSettingsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	if err := os.WriteFile(path, []byte("downloads: [not a map"), 0644); err != nil {
		t.Fatalf("failed to write settings file: %v", err)
	}
	if _, err := LoadSettings(path); err == nil {
		t.Fatal("LoadSettings() did not return an error for invalid YAML")
	}
}

func TestTileURL(t *testing.T) {
	s := DefaultSettings()
	got := s.TileURL("osm-us-zoom0to11-20251120.mbtiles")
	want := s.Tiles.BaseURL + "/" + s.Tiles.Release + "/osm-us-zoom0to11-20251120.mbtiles"
	if got != want {
		t.Errorf("TileURL() = %v, want %v", got, want)
	}
}
