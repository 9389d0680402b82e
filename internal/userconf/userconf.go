// Package userconf manages the operator profile stored in user.json and
// keeps the Winlink client configuration in sync with it.
package userconf

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	// DefaultCallsign is the placeholder used until the operator sets one.
	DefaultCallsign = "N0CALL"
	// DefaultGrid is the placeholder Maidenhead locator.
	DefaultGrid = "AA00aa"
	// DefaultLanguage is the profile language used when none is stored.
	DefaultLanguage = "en"
)

// Profile is the operator identity shared with the other emcomm-tools
// utilities through user.json.
type Profile struct {
	Language      string `json:"language"`
	Callsign      string `json:"callsign"`
	Grid          string `json:"grid"`
	Name          string `json:"name"`
	WinlinkPasswd string `json:"winlinkPasswd,omitempty"`
}

// Default returns a profile with placeholder values.
func Default() *Profile {
	return &Profile{
		Language: DefaultLanguage,
		Callsign: DefaultCallsign,
		Grid:     DefaultGrid,
	}
}

// Load reads the profile from path. A missing or unreadable file yields the
// defaults; individual missing fields are filled in from the defaults. Older
// profiles stored the locator under "grid_square", which is still honored.
func Load(path string) *Profile {
	p := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return p
	}
	if err := json.Unmarshal(data, p); err != nil {
		return Default()
	}

	if p.Grid == "" {
		var compat struct {
			GridSquare string `json:"grid_square"`
		}
		if err := json.Unmarshal(data, &compat); err == nil && compat.GridSquare != "" {
			p.Grid = compat.GridSquare
		}
	}

	if p.Language == "" {
		p.Language = DefaultLanguage
	}
	if p.Callsign == "" {
		p.Callsign = DefaultCallsign
	}
	if p.Grid == "" {
		p.Grid = DefaultGrid
	}
	return p
}

// Normalize trims the fields and uppercases the callsign and locator.
func (p *Profile) Normalize() {
	p.Callsign = strings.ToUpper(strings.TrimSpace(p.Callsign))
	p.Grid = strings.ToUpper(strings.TrimSpace(p.Grid))
	p.Name = strings.TrimSpace(p.Name)
	p.Language = strings.TrimSpace(p.Language)
}

// Validate reports whether the profile can be saved.
func (p *Profile) Validate() error {
	if strings.TrimSpace(p.Callsign) == "" {
		return errors.New("callsign is required")
	}
	return nil
}

// Save writes the profile to path, creating the parent directory if needed.
func Save(path string, p *Profile) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// SyncPat merges the operator identity into the Winlink client configuration
// at patPath. Fields the client already has that we do not manage are kept.
func SyncPat(patPath string, p *Profile) error {
	patConf := map[string]interface{}{}
	if data, err := os.ReadFile(patPath); err == nil {
		// A corrupt file is replaced rather than propagated.
		if err := json.Unmarshal(data, &patConf); err != nil {
			patConf = map[string]interface{}{}
		}
	}

	patConf["mycall"] = strings.ToUpper(p.Callsign)
	if p.Grid != "" {
		patConf["locator"] = strings.ToUpper(p.Grid)
	}
	if p.WinlinkPasswd != "" {
		patConf["secure_login_password"] = p.WinlinkPasswd
	}

	if err := os.MkdirAll(filepath.Dir(patPath), 0755); err != nil {
		return fmt.Errorf("failed to create pat config directory: %w", err)
	}
	data, err := json.MarshalIndent(patConf, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(patPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write %s: %w", patPath, err)
	}
	return nil
}
