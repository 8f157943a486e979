package launcher

import (
	"context"
	"fmt"
	"strings"

	"github.com/chess10kp/lanzador/internal/logging"
)

var log = logging.For("launcher")

// Mode is the list the input text currently selects.
type Mode int

const (
	ModeApplications Mode = iota
	ModeSystemCommands
	ModeConnectivityCommands
	ModeThemeSelection
	ModeHelp
)

func (m Mode) String() string {
	switch m {
	case ModeApplications:
		return "applications"
	case ModeSystemCommands:
		return "system"
	case ModeConnectivityCommands:
		return "connectivity"
	case ModeThemeSelection:
		return "theme"
	case ModeHelp:
		return "help"
	default:
		return "unknown"
	}
}

// LauncherItem represents a single result item
type LauncherItem struct {
	ID         string
	Title      string
	Subtitle   string
	Icon       string
	ActionData ActionData
	Launcher   Launcher
}

// Launcher is the interface that all launchers must implement. Match is
// given the lowercased input text and reports whether this launcher owns it,
// returning the remainder to filter by.
type Launcher interface {
	Name() string
	Mode() Mode
	Match(text string) (query string, ok bool)
	Populate(ctx context.Context, query string) []*LauncherItem
	// ClosesOnActivate reports whether activating one of this launcher's
	// items should close the window.
	ClosesOnActivate() bool
}

// ModeEnterer is implemented by launchers that refresh state when their mode
// is entered from another mode.
type ModeEnterer interface {
	OnEnter(ctx context.Context)
}

// LauncherRegistry routes input text to launchers in registration order.
type LauncherRegistry struct {
	launchers []Launcher
	byName    map[string]Launcher
	fallback  Launcher
}

// NewLauncherRegistry creates a registry whose fallback owns any text no
// registered launcher matches.
func NewLauncherRegistry(fallback Launcher) *LauncherRegistry {
	return &LauncherRegistry{
		byName:   map[string]Launcher{fallback.Name(): fallback},
		fallback: fallback,
	}
}

// Register registers a launcher
func (r *LauncherRegistry) Register(launcher Launcher) error {
	name := launcher.Name()

	if _, exists := r.byName[name]; exists {
		return fmt.Errorf("launcher '%s' already registered", name)
	}

	r.byName[name] = launcher
	r.launchers = append(r.launchers, launcher)
	log.Debugf("registered launcher: %s (%s)", name, launcher.Mode())
	return nil
}

// GetLauncher returns a launcher by name
func (r *LauncherRegistry) GetLauncher(name string) (Launcher, bool) {
	l, ok := r.byName[name]
	return l, ok
}

// Route returns the launcher that owns text and the query it should filter
// by. text is lowercased before matching.
func (r *LauncherRegistry) Route(text string) (Launcher, string) {
	lowered := strings.ToLower(text)
	for _, l := range r.launchers {
		if query, ok := l.Match(lowered); ok {
			return l, query
		}
	}
	query, _ := r.fallback.Match(lowered)
	return r.fallback, query
}

// Launchers returns the registered launchers followed by the fallback.
func (r *LauncherRegistry) Launchers() []Launcher {
	all := make([]Launcher, 0, len(r.launchers)+1)
	all = append(all, r.launchers...)
	return append(all, r.fallback)
}

// PrefixMatcher matches text starting with a fixed prefix.
type PrefixMatcher string

func (p PrefixMatcher) Match(text string) (string, bool) {
	prefix := strings.ToLower(string(p))
	if prefix == "" || !strings.HasPrefix(text, prefix) {
		return "", false
	}
	return strings.TrimPrefix(text, prefix), true
}
