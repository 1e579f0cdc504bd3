// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/servicecmd/servicecmd/internal/config"
	"github.com/servicecmd/servicecmd/internal/issue"
	"github.com/servicecmd/servicecmd/pkg/cueutil"

	"github.com/spf13/cobra"
)

// newConfigCommand creates the `servicecmd config` command tree.
func newConfigCommand(app *App) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect servicecmd configuration",
		Long: `Inspect servicecmd configuration.

Configuration is read from config.cue in:
  - Linux: ~/.config/servicecmd/
  - macOS: ~/Library/Application Support/servicecmd/
  - Windows: %APPDATA%\servicecmd\

Every value can be overridden with SERVICECMD_* environment variables, e.g.
SERVICECMD_COMPOSE_ENGINE=podman or SERVICECMD_CONCURRENCY=4.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration as CUE",
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.showConfig(cmd.Context())
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration and services file paths",
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.showConfigPath(cmd.Context())
		},
	})

	return cfgCmd
}

func (a *App) showConfig(ctx context.Context) error {
	s, err := a.session(ctx)
	if err != nil {
		return err
	}
	out, err := cueutil.Encode(s.cfg)
	if err != nil {
		return a.fail(issue.WrapWithOperation(err, "render configuration"), s.verbose, s.cfg.UI.ColorScheme)
	}

	source := s.cfg.Source
	if source == "" {
		source = "(defaults)"
	}
	fmt.Fprintf(a.stdout, "// source: %s\n", source)
	fmt.Fprint(a.stdout, string(out))
	if len(out) > 0 && out[len(out)-1] != '\n' {
		fmt.Fprintln(a.stdout)
	}
	return nil
}

func (a *App) showConfigPath(ctx context.Context) error {
	s, err := a.session(ctx)
	if err != nil {
		return err
	}

	cfgDir, dirErr := config.ConfigDir()
	if dirErr == nil {
		fmt.Fprintf(a.stdout, "%s: %s\n", CmdStyle.Render("Config directory"), cfgDir)
	}
	if s.cfg.Source != "" {
		fmt.Fprintf(a.stdout, "%s: %s\n", CmdStyle.Render("Config file"), s.cfg.Source)
	} else if dirErr == nil {
		fmt.Fprintf(a.stdout, "%s: %s %s\n", CmdStyle.Render("Config file"),
			filepath.Join(cfgDir, config.ConfigFileName+"."+config.ConfigFileExt), SubtitleStyle.Render("(not found, using defaults)"))
	}
	fmt.Fprintf(a.stdout, "%s: %s\n", CmdStyle.Render("Services file"), s.cfg.ServicesFile)
	return nil
}
