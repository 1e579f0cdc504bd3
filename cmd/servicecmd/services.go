// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/servicecmd/servicecmd/internal/app/execute"
	"github.com/servicecmd/servicecmd/internal/registry"
	"github.com/servicecmd/servicecmd/internal/resolve"
	"github.com/servicecmd/servicecmd/pkg/servicedef"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

func newServicesCommand(app *App) *cobra.Command {
	var showFiles bool

	cmd := &cobra.Command{
		Use:   "services [services...]",
		Short: "List the services defined in the services file",
		Long: `List the services defined in the services file.

The services file is a CUE, YAML or TOML document:

  services: [
    {name: "web", path: ["./apps/web"]},
    {name: "infra", path: ["./infra/*"], file: ["compose.yml"], depth: "unbounded"},
  ]

With --files, the selected services are resolved against the filesystem and
the matching compose files are printed per folder.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if showFiles {
				return app.listFiles(cmd.Context(), args)
			}
			return app.listServices(cmd.Context(), args)
		},
	}
	cmd.Flags().BoolVar(&showFiles, "files", false, "resolve the services and list their compose files")
	return cmd
}

func (a *App) listServices(ctx context.Context, names []string) error {
	s, err := a.session(ctx)
	if err != nil {
		return err
	}
	defs, err := registry.File{Path: s.cfg.ServicesFile}.Load(ctx)
	if err != nil {
		return a.fail(execute.Explain(err, "load services", s.cfg.ServicesFile), s.verbose, s.cfg.UI.ColorScheme)
	}

	keys := maps.Keys(defs)
	slices.Sort(keys)
	if len(names) > 0 {
		keys = slices.DeleteFunc(keys, func(k string) bool { return !slices.Contains(names, k) })
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))).
		Headers("NAME", "PATHS", "FILES", "DEPTH").
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return tableHeaderStyle
			}
			return tableCellStyle
		})
	for _, k := range keys {
		d := defs[k]
		t.Row(d.Name, strings.Join(d.Paths, "\n"), strings.Join(d.Files, "\n"), d.Depth.String())
	}

	fmt.Fprintln(a.stdout, TitleStyle.Render("Services")+" "+SubtitleStyle.Render(s.cfg.ServicesFile))
	fmt.Fprintln(a.stdout, t.Render())
	return nil
}

func (a *App) listFiles(ctx context.Context, names []string) error {
	s, err := a.session(ctx)
	if err != nil {
		return err
	}
	sel, err := servicedef.NewSelection(servicedef.SelectionInput{Groups: names})
	if err != nil {
		return a.fail(execute.Explain(err, "parse selection", ""), s.verbose, s.cfg.UI.ColorScheme)
	}

	r := &resolve.Resolver{
		Registry: registry.File{Path: s.cfg.ServicesFile},
		Matcher:  resolve.GlobMatcher{},
		Reporter: s.reporter,
	}
	res, err := r.Resolve(ctx, sel)
	if err != nil {
		return a.fail(execute.Explain(err, "resolve services", ""), s.verbose, s.cfg.UI.ColorScheme)
	}

	for _, g := range resolve.Group(res.Files) {
		fmt.Fprintln(a.stdout, CmdStyle.Render(g.Dir))
		for _, f := range g.Files {
			fmt.Fprintf(a.stdout, "  %s\n", f)
		}
	}
	return nil
}
