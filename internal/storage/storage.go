// Package storage decides where downloaded content lands: either the
// operator's home directory or a removable drive mounted under the media root.
package storage

import (
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"etsetup/internal/config"
)

// Category identifies one kind of downloadable content.
type Category int

const (
	Tiles Category = iota
	Extracts
	Archives
)

// Subdir returns the directory name used for the category on a removable
// drive.
func (c Category) Subdir() string {
	switch c {
	case Tiles:
		return "tilesets"
	case Extracts:
		return "my-maps"
	case Archives:
		return "wikipedia"
	}
	return ""
}

// Destination is the operator's storage choice. The zero value means local
// storage in the home directory.
type Destination struct {
	Removable bool
	// Mount is the removable drive's mount path, set when Removable is true.
	Mount string
	// Validated records that a write probe on Mount succeeded.
	Validated bool
}

// Dir returns the absolute directory downloads of the given category go to.
func (d Destination) Dir(cfg *config.Config, cat Category) string {
	if d.Removable && d.Mount != "" {
		return filepath.Join(d.Mount, cat.Subdir())
	}
	switch cat {
	case Tiles:
		return cfg.TilesetDir()
	case Extracts:
		return cfg.ExtractDir()
	case Archives:
		return cfg.ZimDir()
	}
	return cfg.HomeDir()
}

// EnsureDirs creates the category directories for the destination.
func EnsureDirs(cfg *config.Config, d Destination) error {
	for _, cat := range []Category{Tiles, Extracts, Archives} {
		if err := os.MkdirAll(d.Dir(cfg, cat), 0755); err != nil {
			return err
		}
	}
	return nil
}

// CheckWritable probes a path by creating and removing a uniquely named
// sentinel file. Write-protected or unmounted drives fail the probe.
func CheckWritable(path string) bool {
	if path == "" {
		return false
	}
	sentinel := filepath.Join(path, ".emcomm-write-"+uuid.NewString())
	f, err := os.Create(sentinel)
	if err != nil {
		return false
	}
	f.Close()
	// A drive that accepts the create but refuses the delete is not usable
	// either.
	return os.Remove(sentinel) == nil
}
