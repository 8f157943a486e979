package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/chess10kp/lanzador/internal/config"
	"github.com/chess10kp/lanzador/internal/launcher"
	"github.com/chess10kp/lanzador/internal/shell"
	"github.com/chess10kp/lanzador/internal/statusbar"
	"github.com/chess10kp/lanzador/internal/statusbar/modules"
)

// Run attaches a terminal model to engine and blocks until the user quits.
func Run(ctx context.Context, cfg *config.Config, engine *launcher.Engine, runner shell.Runner) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var statusNames []string
	if cfg.Status.Enabled {
		statusNames = modules.StatusModules
	}

	model := New(ctx, engine, statusNames)
	engine.SetUI(model)

	if name, err := engine.RestoreTheme(); err != nil {
		log.WithError(err).Warn("failed to restore theme")
	} else if name != "" {
		log.Infof("theme %s restored", name)
	}

	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	if cfg.Status.Enabled {
		poller, err := modules.NewStatusPoller(cfg, runner, func(s statusbar.Snapshot) {
			program.Send(statusMsg(s))
		})
		if err != nil {
			return err
		}
		if err := poller.Start(); err != nil {
			return err
		}
		defer poller.Stop()
	}

	if _, err := program.Run(); err != nil {
		return fmt.Errorf("terminal front-end failed: %w", err)
	}
	return nil
}
