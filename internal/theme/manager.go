// Package theme finds stylesheet themes on disk and remembers the selected one.
package theme

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gobwas/glob"
	"github.com/pelletier/go-toml/v2"

	"github.com/chess10kp/lanzador/internal/config"
	"github.com/chess10kp/lanzador/internal/logging"
)

const ext = ".css"

var (
	ErrThemeNotFound = errors.New("theme not found")

	log = logging.For("theme")

	stylesheetPattern = glob.MustCompile("*" + ext)
)

// State is the persisted theme selection.
type State struct {
	Theme string `toml:"theme"`
}

// Manager lists, loads and persists themes kept as <dir>/<name>.css.
type Manager struct {
	dir         string
	stateFile   string
	defaultName string
}

// NewManager creates a manager from the theme section of the config.
func NewManager(cfg config.ThemeConfig) *Manager {
	return &Manager{
		dir:         config.ExpandPath(cfg.Dir),
		stateFile:   config.ExpandPath(cfg.StateFile),
		defaultName: cfg.Default,
	}
}

// Dir returns the themes directory.
func (m *Manager) Dir() string {
	return m.dir
}

// Default returns the name used when nothing has been persisted.
func (m *Manager) Default() string {
	return m.defaultName
}

// Path returns the stylesheet path for name.
func (m *Manager) Path(name string) string {
	return filepath.Join(m.dir, name+ext)
}

// List returns the available theme names, sorted. A missing directory
// yields no themes.
func (m *Manager) List() ([]string, error) {
	entries, err := os.ReadDir(m.dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read themes directory: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || !stylesheetPattern.Match(e.Name()) {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), ext))
	}
	sort.Strings(names)
	return names, nil
}

// Load returns the stylesheet text for name.
func (m *Manager) Load(name string) (string, error) {
	if name == "" || strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("%w: %q", ErrThemeNotFound, name)
	}

	data, err := os.ReadFile(m.Path(name))
	if errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("%w: %s", ErrThemeNotFound, name)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read theme %s: %w", name, err)
	}
	return string(data), nil
}

// Saved returns the persisted theme name, or the default when the state file
// is missing or unreadable.
func (m *Manager) Saved() string {
	data, err := os.ReadFile(m.stateFile)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			log.WithError(err).Warn("failed to read theme state")
		}
		return m.defaultName
	}

	var state State
	if err := toml.Unmarshal(data, &state); err != nil {
		log.WithError(err).Warn("failed to parse theme state")
		return m.defaultName
	}
	if state.Theme == "" {
		return m.defaultName
	}
	return state.Theme
}

// Persist records name as the selected theme.
func (m *Manager) Persist(name string) error {
	if err := os.MkdirAll(filepath.Dir(m.stateFile), 0755); err != nil {
		return fmt.Errorf("failed to create theme state directory: %w", err)
	}

	data, err := toml.Marshal(State{Theme: name})
	if err != nil {
		return fmt.Errorf("failed to marshal theme state: %w", err)
	}

	tmp := m.stateFile + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write theme state: %w", err)
	}
	if err := os.Rename(tmp, m.stateFile); err != nil {
		return fmt.Errorf("failed to replace theme state: %w", err)
	}
	return nil
}
