// Package core is the GTK front-end: the launcher window, its status strip,
// the help window and theme application.
package core

import (
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/gotk3/gotk3/glib"
	"github.com/gotk3/gotk3/gtk"

	"github.com/chess10kp/lanzador/internal/config"
	"github.com/chess10kp/lanzador/internal/launcher"
	"github.com/chess10kp/lanzador/internal/logging"
	"github.com/chess10kp/lanzador/internal/shell"
	"github.com/chess10kp/lanzador/internal/statusbar"
	"github.com/chess10kp/lanzador/internal/statusbar/modules"
	"github.com/chess10kp/lanzador/internal/theme"
)

var log = logging.For("core")

// App is main application
type App struct {
	config   *config.Config
	engine   *launcher.Engine
	themes   *theme.Manager
	runner   shell.Runner
	launcher *Launcher
	poller   *statusbar.Poller
	watcher  *theme.Watcher
	sigChan  chan os.Signal
	quitOnce sync.Once
}

// NewApp creates a new application. themes may be nil to disable theming.
func NewApp(cfg *config.Config, engine *launcher.Engine, themes *theme.Manager, runner shell.Runner) (*App, error) {
	if cfg == nil || engine == nil {
		return nil, fmt.Errorf("app needs a config and an engine")
	}
	return &App{
		config:  cfg,
		engine:  engine,
		themes:  themes,
		runner:  runner,
		sigChan: make(chan os.Signal, 1),
	}, nil
}

// Run builds the window and blocks in the GTK main loop until it closes.
func (a *App) Run() error {
	gtk.Init(nil)

	if err := a.initialize(); err != nil {
		return err
	}

	signal.Notify(a.sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig, ok := <-a.sigChan
		if !ok {
			return
		}
		log.Infof("received signal: %v", sig)
		glib.IdleAdd(func() bool {
			a.Quit()
			return false
		})
	}()

	a.launcher.Show()
	gtk.Main()
	return nil
}

func (a *App) initialize() error {
	styles, err := SetupStyles()
	if err != nil {
		return err
	}

	icons, err := NewIconCache(a.config)
	if err != nil {
		log.WithError(err).Warn("icons disabled")
		icons = nil
	}

	var strip *StatusStrip
	if a.config.Status.Enabled {
		strip, err = NewStatusStrip(modules.StatusModules)
		if err != nil {
			return err
		}
	}

	l, err := NewLauncher(a, a.config, a.engine, styles, icons, strip)
	if err != nil {
		return fmt.Errorf("failed to create launcher: %w", err)
	}
	a.launcher = l
	a.engine.SetUI(l)

	if name, err := a.engine.RestoreTheme(); err != nil {
		log.WithError(err).Warn("failed to restore theme")
	} else if name != "" {
		log.Infof("theme %s restored", name)
	}

	if strip != nil {
		poller, err := modules.NewStatusPoller(a.config, a.runner, l.UpdateStatus)
		if err != nil {
			return err
		}
		if err := poller.Start(); err != nil {
			return err
		}
		a.poller = poller
	}

	if a.themes != nil && a.config.Theme.Watch {
		a.startThemeWatcher()
	}

	return nil
}

func (a *App) startThemeWatcher() {
	watcher, err := theme.NewWatcher(a.themes, func(name string) {
		glib.IdleAdd(func() bool {
			if err := a.engine.ReloadTheme(name); err != nil {
				log.WithError(err).Warnf("failed to reload theme %s", name)
			}
			return false
		})
	})
	if err != nil {
		log.WithError(err).Warn("theme watcher disabled")
		return
	}
	if err := watcher.Start(); err != nil {
		log.WithError(err).Debug("theme watcher disabled")
		watcher.Stop()
		return
	}
	a.watcher = watcher
}

// Quit stops background work and leaves the GTK main loop. Safe to call
// more than once.
func (a *App) Quit() {
	a.quitOnce.Do(func() {
		log.Info("shutting down")

		signal.Stop(a.sigChan)
		close(a.sigChan)

		if a.poller != nil {
			a.poller.Stop()
		}
		if a.watcher != nil {
			a.watcher.Stop()
		}
		if a.launcher != nil {
			a.launcher.cancel()
		}

		gtk.MainQuit()
	})
}
