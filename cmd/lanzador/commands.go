package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/chess10kp/lanzador/internal/apps"
	"github.com/chess10kp/lanzador/internal/config"
	"github.com/chess10kp/lanzador/internal/launcher"
	"github.com/chess10kp/lanzador/internal/shell"
	"github.com/chess10kp/lanzador/internal/statusbar/modules"
)

func validateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate [path]",
		Short: "Check a config file and the environment overrides",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := opts.configPath
			if len(args) > 0 {
				path = args[0]
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Validating config: %s\n", config.ExpandPath(path))
			if err := config.ValidateConfig(path, envFile); err != nil {
				return err
			}
			fmt.Fprintln(out, "Config is valid")
			return nil
		},
	}
}

func initCmd(opts *rootOptions) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.ExpandPath(opts.configPath)
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists, use --force to overwrite it", path)
			} else if err != nil && !errors.Is(err, os.ErrNotExist) {
				return err
			}

			if err := config.SaveConfig(config.Default(), path); err != nil {
				return fmt.Errorf("failed to write config: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote default config to %s\n", path)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing config file")
	return cmd
}

func appsCmd(opts *rootOptions) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "apps",
		Short: "List the applications the launcher would show",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, closer, err := setup(opts, false)
			if err != nil {
				return err
			}
			defer closer.Close()

			loader, err := apps.NewAppLoader(cfg)
			if err != nil {
				return err
			}
			snapshot, err := loader.LoadApps()
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(snapshot)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tEXEC\tFILE")
			for _, app := range snapshot {
				fmt.Fprintf(w, "%s\t%s\t%s\n", app.Name, app.Exec, app.File)
			}
			return w.Flush()
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	return cmd
}

func statusCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Query every status and connectivity module once",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, closer, err := setup(opts, false)
			if err != nil {
				return err
			}
			defer closer.Close()

			runner := shell.NewExecRunner(cfg.Status.CommandTimeout())
			poller, err := modules.NewStatusPoller(cfg, runner, nil)
			if err != nil {
				return err
			}
			snapshot := poller.Tick(cmd.Context())

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, name := range snapshot.Order {
				fmt.Fprintf(w, "%s\t%s\n", name, snapshot.Get(name))
			}

			lookups, counter, err := modules.NewConnectivityLookups(cfg, runner)
			if err != nil {
				return err
			}
			for _, name := range modules.ConnectivityModules {
				lookup, ok := lookups[name]
				if !ok {
					continue
				}
				value, err := lookup.Query(cmd.Context())
				if err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", name, err)
					value = launcher.Unknown
				}
				fmt.Fprintf(w, "%s\t%s\n", name, value)
			}
			if n, err := counter.Count(cmd.Context()); err == nil {
				fmt.Fprintf(w, "pending updates\t%d\n", n)
			}
			return w.Flush()
		},
	}
}
