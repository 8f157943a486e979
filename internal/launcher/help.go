package launcher

import (
	"context"
	"fmt"

	"github.com/chess10kp/lanzador/internal/config"
)

// HelpLauncher owns the exact help marker. It lists nothing; entering its
// mode opens the help view.
type HelpLauncher struct{}

func NewHelpLauncher() *HelpLauncher { return &HelpLauncher{} }

func (l *HelpLauncher) Name() string           { return "help" }
func (l *HelpLauncher) Mode() Mode             { return ModeHelp }
func (l *HelpLauncher) ClosesOnActivate() bool { return false }

func (l *HelpLauncher) Match(text string) (string, bool) {
	return "", text == config.HelpMarker
}

func (l *HelpLauncher) Populate(ctx context.Context, query string) []*LauncherItem {
	return nil
}

// HelpSection is a titled group of help lines.
type HelpSection struct {
	Title string
	Lines []string
}

// HelpSections describes every prefix, command and key binding.
func HelpSections(cfg *config.Config) []HelpSection {
	system := HelpSection{Title: fmt.Sprintf("System commands (%s)", cfg.Prefixes.System)}
	for _, c := range SystemCommands(cfg) {
		system.Lines = append(system.Lines, c.Label)
	}

	connectivity := HelpSection{Title: fmt.Sprintf("Connectivity commands (%s)", cfg.Prefixes.Connectivity)}
	for _, c := range ConnectivityCommands(cfg) {
		connectivity.Lines = append(connectivity.Lines, c.Label)
	}

	return []HelpSection{
		{
			Title: "Applications",
			Lines: []string{"Type part of an application name to filter the list"},
		},
		system,
		connectivity,
		{
			Title: fmt.Sprintf("Themes (%s)", config.ThemeMarker),
			Lines: []string{"Pick a theme to apply it and make it the default"},
		},
		{
			Title: "Keys",
			Lines: []string{
				"Enter: run the only visible entry",
				"Up/Down: move the selection",
				"Escape: close",
				fmt.Sprintf("Ctrl+F1 or %s: show this help", config.HelpMarker),
			},
		},
	}
}
