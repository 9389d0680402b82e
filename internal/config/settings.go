package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so that settings.yaml can use values like
// "30m" or "45s".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// CatalogSource describes one remote directory listing and the base URL its
// entries are downloaded from.
type CatalogSource struct {
	ListingURL string `yaml:"listing_url"`
	BaseURL    string `yaml:"base_url"`
	// Aggregate is the whole-country entry excluded from the selectable list.
	Aggregate string `yaml:"aggregate"`
}

// Settings holds the tunable download and catalog parameters. A settings.yaml
// in the configuration directory overrides individual fields; everything else
// keeps its default.
type Settings struct {
	Tiles struct {
		BaseURL string   `yaml:"base_url"`
		Release string   `yaml:"release"`
		Files   []string `yaml:"files"`
	} `yaml:"tiles"`
	Regions  map[string]CatalogSource `yaml:"regions"`
	Archives struct {
		ListingURL string `yaml:"listing_url"`
	} `yaml:"archives"`
	Downloads struct {
		TileTimeout     Duration `yaml:"tile_timeout"`
		LargeTimeout    Duration `yaml:"large_timeout"`
		FetchTimeout    Duration `yaml:"fetch_timeout"`
		MinExtractBytes int64    `yaml:"min_extract_bytes"`
	} `yaml:"downloads"`
}

// DefaultSettings returns the compiled-in defaults.
func DefaultSettings() *Settings {
	s := &Settings{}
	s.Tiles.BaseURL = "https://github.com/thetechprepper/emcomm-tools-os-community/releases/download"
	s.Tiles.Release = "emcomm-tools-os-community-20251128-r5-final-5.0.0"
	s.Tiles.Files = []string{
		"osm-us-zoom0to11-20251120.mbtiles",
		"osm-ca-zoom0to10-20251120.mbtiles",
		"osm-world-zoom0to7-20251121.mbtiles",
	}
	s.Regions = map[string]CatalogSource{
		"canada": {
			ListingURL: "http://download.geofabrik.de/north-america/canada.html",
			BaseURL:    "http://download.geofabrik.de/north-america/canada",
			Aggregate:  "canada",
		},
		"usa": {
			ListingURL: "http://download.geofabrik.de/north-america/us.html",
			BaseURL:    "http://download.geofabrik.de/north-america/us",
			Aggregate:  "us",
		},
	}
	s.Archives.ListingURL = "http://download.kiwix.org/zim/wikipedia"
	s.Downloads.TileTimeout = Duration(5 * time.Minute)
	s.Downloads.LargeTimeout = Duration(30 * time.Minute)
	s.Downloads.FetchTimeout = Duration(30 * time.Second)
	s.Downloads.MinExtractBytes = 1000
	return s
}

// LoadSettings reads the settings override file if present and merges it over
// the defaults. A missing file is not an error.
func LoadSettings(path string) (*Settings, error) {
	s := DefaultSettings()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, err
	}

	var override Settings
	if err := yaml.Unmarshal(data, &override); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	s.merge(&override)
	return s, nil
}

func (s *Settings) merge(o *Settings) {
	if o.Tiles.BaseURL != "" {
		s.Tiles.BaseURL = o.Tiles.BaseURL
	}
	if o.Tiles.Release != "" {
		s.Tiles.Release = o.Tiles.Release
	}
	if len(o.Tiles.Files) > 0 {
		s.Tiles.Files = o.Tiles.Files
	}
	for name, src := range o.Regions {
		s.Regions[name] = src
	}
	if o.Archives.ListingURL != "" {
		s.Archives.ListingURL = o.Archives.ListingURL
	}
	if o.Downloads.TileTimeout > 0 {
		s.Downloads.TileTimeout = o.Downloads.TileTimeout
	}
	if o.Downloads.LargeTimeout > 0 {
		s.Downloads.LargeTimeout = o.Downloads.LargeTimeout
	}
	if o.Downloads.FetchTimeout > 0 {
		s.Downloads.FetchTimeout = o.Downloads.FetchTimeout
	}
	if o.Downloads.MinExtractBytes > 0 {
		s.Downloads.MinExtractBytes = o.Downloads.MinExtractBytes
	}
}

// TileURL returns the download URL for one tile file.
func (s *Settings) TileURL(filename string) string {
	return fmt.Sprintf("%s/%s/%s", s.Tiles.BaseURL, s.Tiles.Release, filename)
}
