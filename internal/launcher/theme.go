package launcher

import (
	"context"
	"strings"

	"github.com/chess10kp/lanzador/internal/config"
)

// ThemeSource lists available theme names.
type ThemeSource interface {
	List() ([]string, error)
}

// ThemeLauncher lists themes whose name contains the text after the marker.
type ThemeLauncher struct {
	themes ThemeSource
}

func NewThemeLauncher(themes ThemeSource) *ThemeLauncher {
	return &ThemeLauncher{themes: themes}
}

func (l *ThemeLauncher) Name() string           { return "theme" }
func (l *ThemeLauncher) Mode() Mode             { return ModeThemeSelection }
func (l *ThemeLauncher) ClosesOnActivate() bool { return false }

func (l *ThemeLauncher) Match(text string) (string, bool) {
	return PrefixMatcher(config.ThemeMarker).Match(text)
}

func (l *ThemeLauncher) Populate(ctx context.Context, query string) []*LauncherItem {
	names, err := l.themes.List()
	if err != nil {
		log.WithError(err).Warn("failed to list themes")
		return nil
	}

	query = strings.TrimSpace(query)
	items := make([]*LauncherItem, 0, len(names))
	for _, name := range names {
		if !strings.Contains(strings.ToLower(name), query) {
			continue
		}
		items = append(items, &LauncherItem{
			ID:         config.ThemeMarker + name,
			Title:      name,
			Icon:       "preferences-desktop-theme",
			ActionData: NewApplyThemeAction(name),
			Launcher:   l,
		})
	}
	return items
}
