package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/chess10kp/lanzador/internal/apps"
	"github.com/chess10kp/lanzador/internal/config"
	"github.com/chess10kp/lanzador/internal/core"
	"github.com/chess10kp/lanzador/internal/launcher"
	"github.com/chess10kp/lanzador/internal/logging"
	"github.com/chess10kp/lanzador/internal/shell"
	"github.com/chess10kp/lanzador/internal/statusbar/modules"
	"github.com/chess10kp/lanzador/internal/theme"
	"github.com/chess10kp/lanzador/internal/tui"
)

const (
	defaultConfigPath = "~/.config/lanzador/config.toml"
	envFile           = ".env"
)

var log = logging.For("main")

type rootOptions struct {
	configPath string
	debug      bool
	tui        bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "lanzador",
		Short:         "Application launcher with system and connectivity shortcuts",
		Long:          `lanzador lists installed applications, session commands and connectivity tools in one searchable window.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLauncher(cmd.Context(), opts)
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", defaultConfigPath, "path to the TOML config file")
	cmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "log at debug level")
	cmd.Flags().BoolVar(&opts.tui, "tui", false, "run in the terminal instead of opening a window")

	cmd.AddCommand(initCmd(opts))
	cmd.AddCommand(validateCmd(opts))
	cmd.AddCommand(appsCmd(opts))
	cmd.AddCommand(statusCmd(opts))

	return cmd
}

// setup loads and validates the config and configures logging. Any error
// here ends the process before a window is created.
func setup(opts *rootOptions, logToFile bool) (*config.Config, io.Closer, error) {
	cfg, err := config.LoadAndValidateConfig(opts.configPath, envFile)
	if err != nil {
		return nil, nil, err
	}

	logOpts := logging.Options{Level: cfg.Log.Level, Debug: opts.debug}
	if logToFile {
		logOpts.File = cfg.Log.File
	}
	closer, err := logging.Setup(logOpts)
	if err != nil {
		logrus.WithError(err).Warn("logging to stderr")
	}
	if closer == nil {
		closer = io.NopCloser(nil)
	}
	return cfg, closer, nil
}

func runLauncher(ctx context.Context, opts *rootOptions) error {
	cfg, closer, err := setup(opts, true)
	if err != nil {
		return err
	}
	defer closer.Close()

	if err := ensureSingleInstance(cfg.PidFile); err != nil {
		return fmt.Errorf("failed to ensure single instance: %w", err)
	}
	defer cleanup(cfg.PidFile)

	runner := shell.NewExecRunner(cfg.Status.CommandTimeout())
	engine, themes, err := buildEngine(cfg, runner)
	if err != nil {
		return err
	}

	if opts.tui || !hasDisplay() {
		if !opts.tui {
			log.Info("no display found, using the terminal front-end")
		}
		return tui.Run(ctx, cfg, engine, runner)
	}

	app, err := core.NewApp(cfg, engine, themes, runner)
	if err != nil {
		return fmt.Errorf("failed to create application: %w", err)
	}
	return app.Run()
}

// buildEngine scans applications and wires the connectivity lookups and
// themes into a new engine.
func buildEngine(cfg *config.Config, runner shell.Runner) (*launcher.Engine, *theme.Manager, error) {
	loader, err := apps.NewAppLoader(cfg)
	if err != nil {
		return nil, nil, err
	}
	snapshot, err := loader.LoadApps()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load applications: %w", err)
	}
	log.Infof("loaded %d applications", len(snapshot))

	mods, counter, err := modules.NewConnectivityLookups(cfg, runner)
	if err != nil {
		return nil, nil, err
	}
	lookups := make(map[string]launcher.StatusLookup, len(mods))
	for id, m := range mods {
		lookups[id] = m
	}

	themes := theme.NewManager(cfg.Theme)
	engine, err := launcher.NewEngine(launcher.Options{
		Config:  cfg,
		Apps:    snapshot,
		Themes:  themes,
		Lookups: lookups,
		Updates: counter,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create engine: %w", err)
	}
	return engine, themes, nil
}

func hasDisplay() bool {
	return os.Getenv("WAYLAND_DISPLAY") != "" || os.Getenv("DISPLAY") != ""
}
