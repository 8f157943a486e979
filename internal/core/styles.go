package core

import (
	"fmt"
	"sync"

	"github.com/gotk3/gotk3/gdk"
	"github.com/gotk3/gotk3/gtk"
)

const defaultStyles = `
* {
    font-family: "Iosevka", monospace;
    font-size: 15px;
    margin: 0;
    padding: 0;
}

label {
    color: #ebdbb2;
}

#launcher-window {
    background-color: #0e1419;
    color: #ebdbb2;
    border-radius: 8px;
    border: 1px solid #313244;
}

#launcher-entry {
    background-color: #181825;
    color: #ebdbb2;
    padding: 12px;
    border: none;
    border-bottom: 1px solid #313244;
}

#launcher-entry:focus {
    border-bottom: 1px solid #89b4fa;
}

#result-list {
    background-color: transparent;
}

.list-row {
    padding: 6px;
    border-bottom: 1px solid #313244;
}

.list-row:hover {
    background-color: #313244;
}

.list-row:selected {
    background-color: #89b4fa;
}

.list-row:selected label {
    color: #1e1e2e;
}

.item-subtitle {
    color: #928374;
    font-size: 12px;
}

#status-strip {
    background-color: #181825;
    border-top: 1px solid #313244;
    padding: 4px 8px;
}

#status-strip label {
    font-size: 12px;
    margin-right: 16px;
}

#help-window {
    background-color: #0e1419;
}

.help-title {
    font-weight: bold;
    margin-top: 8px;
}
`

// StyleManager owns the built-in stylesheet and the one theme provider that
// replaces the previous theme each time a new one is applied.
type StyleManager struct {
	mu     sync.Mutex
	screen *gdk.Screen
	theme  *gtk.CssProvider
	active string
}

// SetupStyles installs the built-in stylesheet on the default screen.
func SetupStyles() (*StyleManager, error) {
	screen, err := gdk.ScreenGetDefault()
	if err != nil || screen == nil {
		return nil, fmt.Errorf("failed to get default screen: %w", err)
	}

	provider, err := gtk.CssProviderNew()
	if err != nil {
		return nil, fmt.Errorf("failed to create css provider: %w", err)
	}
	if err := provider.LoadFromData(defaultStyles); err != nil {
		return nil, fmt.Errorf("failed to load default styles: %w", err)
	}
	gtk.AddProviderForScreen(screen, provider, gtk.STYLE_PROVIDER_PRIORITY_APPLICATION)

	return &StyleManager{screen: screen}, nil
}

// ApplyStylesheet loads css at user priority, replacing the previous theme.
// Must be called on the GTK main thread. A stylesheet that fails to parse
// leaves the previous theme in place.
func (s *StyleManager) ApplyStylesheet(name, css string) error {
	provider, err := gtk.CssProviderNew()
	if err != nil {
		return fmt.Errorf("failed to create css provider: %w", err)
	}
	if err := provider.LoadFromData(css); err != nil {
		return fmt.Errorf("failed to parse stylesheet %s: %w", name, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.theme != nil {
		gtk.RemoveProviderForScreen(s.screen, s.theme)
	}
	gtk.AddProviderForScreen(s.screen, provider, gtk.STYLE_PROVIDER_PRIORITY_USER)
	s.theme = provider
	s.active = name

	log.WithField("theme", name).Debug("stylesheet applied")
	return nil
}

// Active returns the name of the applied theme.
func (s *StyleManager) Active() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}
