// Package finalize makes removable-drive content reachable from the standard
// local paths by replacing them with symlinks, and records wizard completion.
package finalize

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"etsetup/internal/config"
	"etsetup/internal/storage"
)

var now = time.Now

// Relink points the local content directories at the removable drive. The
// tileset and extract directories are replaced wholesale, with any real
// directory backed up first. Archives are linked file by file so content
// shipped with the OS stays in place. An unreachable mount is a no-op.
// Returns a human-readable list of the actions taken.
func Relink(cfg *config.Config, mount string) ([]string, error) {
	if mount == "" {
		return nil, nil
	}
	if _, err := os.Stat(mount); err != nil {
		return nil, nil
	}

	var actions []string

	for _, cat := range []storage.Category{storage.Tiles, storage.Extracts} {
		local := storage.Destination{}.Dir(cfg, cat)
		acts, err := relinkDir(filepath.Join(mount, cat.Subdir()), local)
		if err != nil {
			return actions, err
		}
		actions = append(actions, acts...)
	}

	acts, err := relinkArchives(filepath.Join(mount, storage.Archives.Subdir()), cfg.ZimDir())
	if err != nil {
		return actions, err
	}
	return append(actions, acts...), nil
}

// relinkDir replaces local with a symlink to target. A real directory at
// local is renamed aside first.
func relinkDir(target, local string) ([]string, error) {
	if _, err := os.Stat(target); err != nil {
		return nil, nil
	}

	var actions []string
	if err := os.MkdirAll(filepath.Dir(local), 0755); err != nil {
		return nil, err
	}

	info, err := os.Lstat(local)
	if err == nil {
		if info.Mode()&os.ModeSymlink != 0 {
			if err := os.Remove(local); err != nil {
				return actions, err
			}
		} else {
			backup := fmt.Sprintf("%s.backup.%d", local, now().Unix())
			if err := os.Rename(local, backup); err != nil {
				return actions, err
			}
			actions = append(actions, fmt.Sprintf("Backed up: %s", backup))
		}
	}

	if err := os.Symlink(target, local); err != nil {
		return actions, err
	}
	return append(actions, fmt.Sprintf("Linked: %s -> %s", local, target)), nil
}

// relinkArchives links each archive file from target into local, removing
// broken symlinks first and never clobbering real files.
func relinkArchives(target, local string) ([]string, error) {
	if _, err := os.Stat(target); err != nil {
		return nil, nil
	}

	var actions []string
	if err := os.MkdirAll(local, 0755); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(local)
	if err != nil {
		return actions, err
	}
	for _, entry := range entries {
		path := filepath.Join(local, entry.Name())
		info, err := os.Lstat(path)
		if err != nil || info.Mode()&os.ModeSymlink == 0 {
			continue
		}
		if _, err := os.Stat(path); err != nil {
			if err := os.Remove(path); err == nil {
				actions = append(actions, fmt.Sprintf("Removed broken link: %s", entry.Name()))
			}
		}
	}

	files, err := os.ReadDir(target)
	if err != nil {
		return actions, err
	}
	for _, file := range files {
		if file.IsDir() || !strings.HasSuffix(file.Name(), ".zim") {
			continue
		}
		localFile := filepath.Join(local, file.Name())
		if info, err := os.Lstat(localFile); err == nil {
			if info.Mode()&os.ModeSymlink == 0 {
				continue
			}
			if err := os.Remove(localFile); err != nil {
				return actions, err
			}
		}
		if err := os.Symlink(filepath.Join(target, file.Name()), localFile); err != nil {
			return actions, err
		}
		actions = append(actions, fmt.Sprintf("Linked: %s", file.Name()))
	}
	return actions, nil
}

// WriteMarker records that the wizard ran to completion.
func WriteMarker(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	content := now().Format(time.RFC3339) + "\n"
	return os.WriteFile(path, []byte(content), 0644)
}

// HasMarker reports whether the wizard already completed.
func HasMarker(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
