// SPDX-License-Identifier: MPL-2.0

package execute

import (
	"context"
	"errors"
	"strings"

	"github.com/servicecmd/servicecmd/internal/issue"
	"github.com/servicecmd/servicecmd/internal/operation"
	"github.com/servicecmd/servicecmd/internal/orchestrate"
	"github.com/servicecmd/servicecmd/internal/registry"
	"github.com/servicecmd/servicecmd/internal/report"
	"github.com/servicecmd/servicecmd/internal/resolve"
	"github.com/servicecmd/servicecmd/pkg/servicedef"
	"github.com/servicecmd/servicecmd/pkg/types"
)

// ErrNoRunner is returned when a Pipeline has neither a Runner nor a Connector.
var ErrNoRunner = errors.New("pipeline has no runner")

type (
	// Resolver turns a Selection into project files. *resolve.Resolver implements it.
	Resolver interface {
		Resolve(ctx context.Context, sel servicedef.Selection) (resolve.Resolution, error)
	}

	// Runner executes an operation over folder groups. *orchestrate.Orchestrator implements it.
	Runner interface {
		Run(ctx context.Context, groups []resolve.FolderGroup, spec operation.Spec, args []string) orchestrate.Report
	}

	// Request is one invocation as parsed by the CLI.
	Request struct {
		Operation string
		Selection servicedef.SelectionInput
		Flags     map[operation.FlagName]string
	}

	// Connector builds the Runner once the request has been validated, so
	// that front-end detection never spawns anything for a rejected request.
	Connector func(ctx context.Context) (Runner, error)

	// Pipeline wires the stages of an invocation together.
	Pipeline struct {
		// Catalog defaults to operation.Default().
		Catalog  *operation.Catalog
		Resolver Resolver
		// Runner is used as is when set; otherwise Connect builds one after
		// every pre-execution check passed.
		Runner   Runner
		Connect  Connector
		Reporter report.Reporter
	}

	// Outcome carries every stage's output of a completed run.
	Outcome struct {
		Operation  operation.Spec
		Args       []string
		Resolution resolve.Resolution
		Groups     []resolve.FolderGroup
		Report     orchestrate.Report
	}
)

// Execute validates req, resolves the selection and runs the operation.
// Errors returned before any child is spawned are *issue.ActionableError
// values wrapping the typed cause. A run in which children failed is not an
// error; its Outcome reports ExitFailure.
func (p *Pipeline) Execute(ctx context.Context, req Request) (Outcome, error) {
	r := p.reporter()

	sel, err := servicedef.NewSelection(req.Selection)
	if err != nil {
		return Outcome{}, Explain(err, "parse selection", "")
	}

	spec, err := p.catalog().Lookup(req.Operation)
	if err != nil {
		return Outcome{}, Explain(err, "look up operation", req.Operation)
	}

	args, err := p.catalog().Build(spec, req.Flags)
	if err != nil {
		return Outcome{}, Explain(err, "build arguments", spec.Key)
	}

	resolution, err := p.Resolver.Resolve(ctx, sel)
	if err != nil {
		return Outcome{}, Explain(err, "resolve services", "")
	}

	if err := operation.CheckServiceLimit(spec, len(resolution.Files)); err != nil {
		return Outcome{}, Explain(err, "check selection", spec.Key)
	}

	runner, err := p.runner(ctx)
	if err != nil {
		return Outcome{}, err
	}

	groups := resolve.Group(resolution.Files)
	report.Debug(r, "applying %s on %d file(s) in %d folder(s)", spec.Key, len(resolution.Files), len(groups))
	for _, g := range groups {
		report.Debug(r, "  %s: %s", g.Dir, joinFiles(g.Files))
	}

	rep := runner.Run(ctx, groups, spec, args)
	return Outcome{
		Operation:  spec,
		Args:       args,
		Resolution: resolution,
		Groups:     groups,
		Report:     rep,
	}, nil
}

// ExitCode is ExitFailure when any child failed.
func (o Outcome) ExitCode() types.ExitCode {
	return o.Report.ExitCode()
}

func (p *Pipeline) catalog() *operation.Catalog {
	if p.Catalog == nil {
		return operation.Default()
	}
	return p.Catalog
}

func (p *Pipeline) runner(ctx context.Context) (Runner, error) {
	if p.Runner != nil {
		return p.Runner, nil
	}
	if p.Connect == nil {
		return nil, ErrNoRunner
	}
	return p.Connect(ctx)
}

func (p *Pipeline) reporter() report.Reporter {
	if p.Reporter == nil {
		return report.Discard
	}
	return p.Reporter
}

// Explain wraps a pre-execution error in an *issue.ActionableError carrying
// the issue page and suggestions that match its type.
func Explain(err error, op, resource string) error {
	b := issue.NewErrorContext().WithOperation(op).WithResource(resource).Wrap(err)

	var unknown *operation.UnknownOperationError
	switch {
	case errors.Is(err, servicedef.ErrInvalidPattern):
		b.WithIssue(issue.InvalidPatternId).
			WithSuggestion("Patterns are regular expressions; escape '.' and other special characters")
	case errors.As(err, &unknown):
		b.WithIssue(issue.UnknownOperationId).
			WithSuggestion("Available operations: " + strings.Join(unknown.Known, ", "))
	case errors.Is(err, operation.ErrIllegalFlag),
		errors.Is(err, operation.ErrMissingRequiredFlag),
		errors.Is(err, operation.ErrInvalidFlagValue):
		b.WithIssue(issue.InvalidFlagsId).
			WithSuggestion("Run 'servicecmd " + resource + " --help' to see the accepted flags")
	case errors.Is(err, operation.ErrTooManyServices):
		b.WithIssue(issue.TooManyServicesId).
			WithSuggestion("Select a single service by name or narrow the selection with --regex/--ignore")
	case errors.Is(err, resolve.ErrNoMatch):
		b.WithIssue(issue.NoMatchingServicesId).
			WithSuggestion("Run 'servicecmd services' to list the configured services")
	case errors.Is(err, registry.ErrServicesFileNotFound):
		b.WithIssue(issue.ServicesFileNotFoundId).
			WithSuggestion("Create the services file or set services_file in the config")
	case errors.Is(err, registry.ErrServicesFileInvalid), errors.Is(err, registry.ErrUnsupportedFormat):
		b.WithIssue(issue.ServicesFileInvalidId).
			WithSuggestion("Check the services file against the examples in 'servicecmd services --help'")
	}
	return b.BuildError()
}

func joinFiles(files []resolve.ResolvedFile) string {
	names := make([]string, len(files))
	for i, f := range files {
		names[i] = string(f)
	}
	return strings.Join(names, ", ")
}
