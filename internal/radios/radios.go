// Package radios reads the system radio profile catalog and manages the
// active-radio pointer used by the rest of the emcomm-tools suite.
package radios

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// ActiveLinkName is the symlink inside the radio directory that points at the
// currently selected profile.
const ActiveLinkName = "active-radio.json"

// Notes accepts both a single string and a list of strings, since profiles in
// the wild use either form.
type Notes []string

// UnmarshalJSON implements json.Unmarshaler.
func (n *Notes) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		if single == "" {
			*n = nil
			return nil
		}
		*n = Notes{single}
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return err
	}
	*n = Notes(list)
	return nil
}

// RigCtrl holds the serial parameters for CAT control.
type RigCtrl struct {
	Device   string `json:"device,omitempty"`
	BaudRate int    `json:"baudRate,omitempty"`
	DataBits int    `json:"dataBits,omitempty"`
	StopBits int    `json:"stopBits,omitempty"`
}

// Profile is one radio definition from the catalog directory.
type Profile struct {
	ID           string  `json:"-"`
	Vendor       string  `json:"vendor"`
	Manufacturer string  `json:"manufacturer"`
	Model        string  `json:"model"`
	Notes        Notes   `json:"notes"`
	RigCtrl      RigCtrl `json:"rigctrl"`
}

// Maker returns the manufacturer, falling back to the older vendor field.
func (p *Profile) Maker() string {
	if p.Manufacturer != "" {
		return p.Manufacturer
	}
	return p.Vendor
}

// DisplayName returns a human-readable label for the profile.
func (p *Profile) DisplayName() string {
	maker := p.Maker()
	if maker != "" && p.Model != "" {
		return maker + " " + p.Model
	}
	if p.Model != "" {
		return p.Model
	}
	return p.ID
}

// List loads every profile from dir, sorted by file name. The active pointer
// and files that fail to parse are skipped. A missing directory yields an
// empty catalog.
func List(dir string) ([]*Profile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var profiles []*Profile
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") || name == ActiveLinkName {
			continue
		}
		p, err := loadProfile(filepath.Join(dir, name))
		if err != nil {
			continue
		}
		profiles = append(profiles, p)
	}
	sort.Slice(profiles, func(i, j int) bool { return profiles[i].ID < profiles[j].ID })
	return profiles, nil
}

// ByID returns the profile with the given ID, or nil if it does not exist.
func ByID(dir, id string) (*Profile, error) {
	path := filepath.Join(dir, id+".json")
	p, err := loadProfile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	return p, nil
}

func loadProfile(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	p := &Profile{}
	if err := json.Unmarshal(data, p); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	p.ID = strings.TrimSuffix(filepath.Base(path), ".json")
	if p.Model == "" {
		p.Model = p.ID
	}
	if len(p.Notes) == 0 {
		// Some profiles use configNotes instead of notes.
		var compat struct {
			ConfigNotes Notes `json:"configNotes"`
		}
		if err := json.Unmarshal(data, &compat); err == nil {
			p.Notes = compat.ConfigNotes
		}
	}
	return p, nil
}

// ActiveID returns the ID of the radio the active pointer refers to, or the
// empty string when no radio is selected.
func ActiveID(dir string) string {
	link := filepath.Join(dir, ActiveLinkName)
	target, err := os.Readlink(link)
	if err != nil {
		return ""
	}
	if !filepath.IsAbs(target) {
		target = filepath.Join(dir, target)
	}
	if _, err := os.Stat(target); err != nil {
		return ""
	}
	return strings.TrimSuffix(filepath.Base(target), ".json")
}

// SetActive points the active pointer at the profile with the given ID. The
// IDs "" and "none" clear the pointer. Selecting an unknown profile is an
// error and leaves no pointer behind.
func SetActive(dir, id string) error {
	link := filepath.Join(dir, ActiveLinkName)
	if _, err := os.Lstat(link); err == nil {
		if err := os.Remove(link); err != nil {
			return fmt.Errorf("failed to remove active pointer: %w", err)
		}
	}

	if id == "" || id == "none" {
		return nil
	}

	target := filepath.Join(dir, id+".json")
	if _, err := os.Stat(target); err != nil {
		return fmt.Errorf("unknown radio %q: %w", id, err)
	}
	if err := os.Symlink(target, link); err != nil {
		return fmt.Errorf("failed to set active radio: %w", err)
	}
	return nil
}

// ExportNotes writes the profile's configuration notes as a markdown file in
// docsDir and returns its path. Profiles without notes produce no file.
func ExportNotes(p *Profile, docsDir string) (string, error) {
	if len(p.Notes) == 0 {
		return "", nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# %s %s - Radio Settings\n\n", p.Maker(), p.Model)
	b.WriteString("## Notes\n\n")
	for _, note := range p.Notes {
		fmt.Fprintf(&b, "- %s\n", note)
	}
	fmt.Fprintf(&b, "\n---\n*Generated by EmComm-Tools - %s*\n", time.Now().Format("2006-01-02"))

	if err := os.MkdirAll(docsDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create documents directory: %w", err)
	}

	safe := strings.NewReplacer(" ", "-", "/", "-").Replace(p.Maker() + "-" + p.Model)
	path := filepath.Join(docsDir, "radio-settings-"+safe+".md")
	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}
