// Package prefs persists the TUI settings a user changes interactively: the
// theme and the collection the popup opens on. They live in
// ~/.config/quicklinks/prefs.toml, apart from the hand-edited config.
package prefs

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/five82/quicklinks/internal/links"
)

// Prefs holds user preferences that survive between sessions.
type Prefs struct {
	Theme string `toml:"theme"`
	// View is the collection the TUI opens on.
	View string `toml:"view"`
}

const (
	defaultPrefsPath = "~/.config/quicklinks/prefs.toml"
	defaultTheme     = "Nightfox"
)

// DefaultPath returns the default preferences file path.
func DefaultPath() string {
	return defaultPrefsPath
}

// Defaults returns the preferences used when nothing is saved.
func Defaults() Prefs {
	return Prefs{Theme: defaultTheme, View: string(links.Standard)}
}

// Kind returns the saved view as a collection kind, defaulting to standard.
func (p Prefs) Kind() links.Kind {
	kind, err := links.ParseKind(p.View)
	if err != nil {
		return links.Standard
	}
	return kind
}

// Load reads preferences from path (empty means the default location). Any
// problem reading or parsing the file yields defaults, so preferences never
// block startup. Short view names are normalized.
func Load(path string) Prefs {
	resolved, err := resolvePath(path)
	if err != nil {
		return Defaults()
	}
	data, err := os.ReadFile(resolved)
	if err != nil {
		return Defaults()
	}

	p := Defaults()
	if err := toml.Unmarshal(data, &p); err != nil {
		return Defaults()
	}
	if strings.TrimSpace(p.Theme) == "" {
		p.Theme = defaultTheme
	}
	p.View = p.Kind().String()
	return p
}

// Save writes p to path, creating the directory as needed. The file is
// replaced atomically so a crash never leaves half a file behind.
func Save(path string, p Prefs) error {
	resolved, err := resolvePath(path)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(resolved), 0o755); err != nil {
		return fmt.Errorf("create prefs dir: %w", err)
	}

	data, err := toml.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal prefs: %w", err)
	}
	tmp := resolved + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write prefs: %w", err)
	}
	if err := os.Rename(tmp, resolved); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replace prefs: %w", err)
	}
	return nil
}

// resolvePath expands a leading ~ and makes path absolute. Empty selects the
// default location.
func resolvePath(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		path = defaultPrefsPath
	}
	if rest, ok := strings.CutPrefix(path, "~"); ok {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		path = filepath.Join(home, rest)
	}
	return filepath.Abs(path)
}
