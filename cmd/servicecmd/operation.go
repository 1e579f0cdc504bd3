// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/servicecmd/servicecmd/internal/app/execute"
	"github.com/servicecmd/servicecmd/internal/issue"
	"github.com/servicecmd/servicecmd/internal/operation"
	"github.com/servicecmd/servicecmd/pkg/servicedef"

	"github.com/spf13/cobra"
)

// selectionFlags are shared by every operation command.
type selectionFlags struct {
	include  []string
	exclude  []string
	direct   []string
	deadline time.Duration
}

// newOperationCommands creates one subcommand per catalog operation.
func newOperationCommands(app *App, cat *operation.Catalog) []*cobra.Command {
	ops := cat.Operations()
	cmds := make([]*cobra.Command, 0, len(ops))
	for _, spec := range ops {
		cmds = append(cmds, newOperationCommand(app, cat, spec))
	}
	return cmds
}

func newOperationCommand(app *App, cat *operation.Catalog, spec operation.Spec) *cobra.Command {
	var sel selectionFlags

	long := string(spec.Description) + `

Services are the names defined in the services file. Without service names
and without --pattern, every service is selected.`
	if spec.ServiceLimit > 0 {
		long += fmt.Sprintf("\n\nThis operation accepts at most %d compose file(s).", spec.ServiceLimit)
	}

	cmd := &cobra.Command{
		Use:     spec.Key + " [services...]",
		Short:   string(spec.Description),
		Long:    long,
		GroupID: operationsGroup,
		Example: fmt.Sprintf("  servicecmd %s web api\n  servicecmd %s -r '^apps/' -i legacy", spec.Key, spec.Key),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.runOperation(cmd.Context(), execute.Request{
				Operation: spec.Key,
				Selection: servicedef.SelectionInput{
					Groups:  args,
					Include: sel.include,
					Exclude: sel.exclude,
					Direct:  sel.direct,
				},
				Flags: activeFlags(cmd, cat, spec),
			}, sel.deadline)
		},
	}

	fs := cmd.Flags()
	fs.StringArrayVarP(&sel.include, "regex", "r", nil, "only keep compose files matching this regular expression (repeatable, OR)")
	fs.StringArrayVarP(&sel.exclude, "ignore", "i", nil, "drop compose files matching this regular expression (repeatable)")
	fs.StringArrayVarP(&sel.direct, "pattern", "p", nil, "select compose files of every service matching this regular expression (repeatable)")
	fs.DurationVar(&sel.deadline, "deadline", 0, "cancel the run after this duration (0 disables)")

	for _, f := range cat.FlagsOf(spec) {
		name := string(f.Name)
		shorthand := ""
		if len(name) == 1 {
			shorthand = name
		}
		switch f.Kind {
		case operation.KindBool:
			fs.BoolP(name, shorthand, false, string(f.Description))
		case operation.KindString:
			fs.StringP(name, shorthand, "", string(f.Description))
		}
	}
	return cmd
}

// activeFlags collects the catalog flags that were set on the command line.
func activeFlags(cmd *cobra.Command, cat *operation.Catalog, spec operation.Spec) map[operation.FlagName]string {
	flags := make(map[operation.FlagName]string)
	for _, f := range cat.FlagsOf(spec) {
		pf := cmd.Flags().Lookup(string(f.Name))
		if pf == nil || !pf.Changed {
			continue
		}
		flags[f.Name] = pf.Value.String()
	}
	return flags
}

func (a *App) runOperation(ctx context.Context, req execute.Request, deadline time.Duration) error {
	if deadline > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, deadline)
		defer cancel()
	}

	s, err := a.session(ctx)
	if err != nil {
		return err
	}
	out, err := a.pipeline(s).Execute(ctx, req)
	if err != nil {
		return a.fail(err, s.verbose, s.cfg.UI.ColorScheme)
	}
	if !out.ExitCode().IsSuccess() {
		_, failed, canceled := out.Report.Counts()
		parts := []string{fmt.Sprintf("%d of %d compose command(s) failed", failed, len(out.Report.Results))}
		if canceled > 0 {
			parts = append(parts, fmt.Sprintf("%d canceled", canceled))
		}
		return a.fail(issue.NewErrorContext().
			WithOperation("run "+req.Operation).
			WithIssue(issue.ChildProcessFailedId).
			WithSuggestion("Re-run with --verbose to see the output of every compose command").
			Wrap(errors.New(strings.Join(parts, ", "))).
			BuildError(), s.verbose, s.cfg.UI.ColorScheme)
	}
	return nil
}
