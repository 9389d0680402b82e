package storage

import (
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/shirou/gopsutil/v3/disk"

	"etsetup/internal/runner"
)

// Candidate is one mounted removable volume the operator can pick.
type Candidate struct {
	Name  string `json:"name"`
	Mount string `json:"mount"`
	Size  string `json:"size"`
	Free  uint64 `json:"free"`
}

// FreeLabel returns the free space formatted for display, or the empty string
// when unknown.
func (c Candidate) FreeLabel() string {
	if c.Free == 0 {
		return ""
	}
	return humanize.IBytes(c.Free)
}

// flexBool tolerates lsblk emitting booleans as true/false or as "1"/"0"
// strings, which varies across util-linux versions.
type flexBool bool

func (b *flexBool) UnmarshalJSON(data []byte) error {
	var v bool
	if err := json.Unmarshal(data, &v); err == nil {
		*b = flexBool(v)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*b = s == "1" || s == "true"
	return nil
}

type lsblkDevice struct {
	Name       string        `json:"name"`
	Size       string        `json:"size"`
	MountPoint string        `json:"mountpoint"`
	Label      string        `json:"label"`
	Hotplug    flexBool      `json:"hotplug"`
	Children   []lsblkDevice `json:"children"`
}

type lsblkOutput struct {
	BlockDevices []lsblkDevice `json:"blockdevices"`
}

var runLsblk = func() ([]byte, error) {
	return runner.Output(exec.Command("lsblk", "-J", "-o", "NAME,SIZE,MOUNTPOINT,LABEL,HOTPLUG"))
}

var mountPoints = func() map[string]bool {
	mounts := map[string]bool{}
	parts, err := disk.Partitions(true)
	if err != nil {
		return mounts
	}
	for _, p := range parts {
		mounts[p.Mountpoint] = true
	}
	return mounts
}

var freeSpace = func(path string) uint64 {
	usage, err := disk.Usage(path)
	if err != nil {
		return 0
	}
	return usage.Free
}

// ListCandidates enumerates mounted hotplug partitions via lsblk, then adds
// anything mounted under the media root that lsblk missed. A system without
// lsblk yields whatever the media root scan finds.
func ListCandidates(mediaRoot string) []Candidate {
	var candidates []Candidate
	seen := map[string]bool{}

	if out, err := runLsblk(); err == nil {
		var parsed lsblkOutput
		if err := json.Unmarshal(out, &parsed); err == nil {
			for _, dev := range parsed.BlockDevices {
				for _, child := range dev.Children {
					if !bool(child.Hotplug) || child.MountPoint == "" {
						continue
					}
					if seen[child.MountPoint] {
						continue
					}
					seen[child.MountPoint] = true
					name := child.Label
					if name == "" {
						name = child.Name
					}
					candidates = append(candidates, Candidate{
						Name:  name,
						Mount: child.MountPoint,
						Size:  child.Size,
						Free:  freeSpace(child.MountPoint),
					})
				}
			}
		}
	}

	entries, err := os.ReadDir(mediaRoot)
	if err != nil {
		return candidates
	}
	mounts := mountPoints()
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		path := filepath.Join(mediaRoot, entry.Name())
		if !mounts[path] || seen[path] {
			continue
		}
		seen[path] = true
		candidates = append(candidates, Candidate{
			Name:  entry.Name(),
			Mount: path,
			Free:  freeSpace(path),
		})
	}
	return candidates
}
