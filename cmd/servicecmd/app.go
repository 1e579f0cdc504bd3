// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/servicecmd/servicecmd/internal/app/execute"
	"github.com/servicecmd/servicecmd/internal/compose"
	"github.com/servicecmd/servicecmd/internal/config"
	"github.com/servicecmd/servicecmd/internal/issue"
	"github.com/servicecmd/servicecmd/internal/orchestrate"
	"github.com/servicecmd/servicecmd/internal/registry"
	"github.com/servicecmd/servicecmd/internal/report"
	"github.com/servicecmd/servicecmd/internal/resolve"
	"github.com/servicecmd/servicecmd/pkg/types"
)

type (
	// ConfigProvider loads configuration using explicit options.
	ConfigProvider interface {
		Load(ctx context.Context, opts config.LoadOptions) (*config.Config, error)
	}

	// App wires CLI services and shared dependencies. It is the composition
	// root for the CLI layer; every Cobra handler receives an App reference.
	App struct {
		Config        ConfigProvider
		EngineOptions []compose.Option
		stdin         io.Reader
		stdout        io.Writer
		stderr        io.Writer

		// global flag values, bound by NewRootCommand
		verbose    bool
		configPath string
	}

	// Dependencies defines the injection points for building an App. Nil
	// fields are replaced with production defaults by NewApp.
	Dependencies struct {
		Config ConfigProvider
		// EngineOptions are passed to compose.Detect, e.g. to record spawns.
		EngineOptions []compose.Option
		Stdin         io.Reader
		Stdout        io.Writer
		Stderr        io.Writer
	}

	// session is the per-invocation state shared by a command's stages.
	session struct {
		cfg      *config.Config
		verbose  bool
		reporter report.Reporter
	}
)

// NewApp builds an App, filling unset dependencies with production defaults.
func NewApp(deps Dependencies) *App {
	app := &App{
		Config:        deps.Config,
		EngineOptions: deps.EngineOptions,
		stdin:         deps.Stdin,
		stdout:        deps.Stdout,
		stderr:        deps.Stderr,
	}
	if app.Config == nil {
		app.Config = config.NewProvider()
	}
	if app.stdin == nil {
		app.stdin = os.Stdin
	}
	if app.stdout == nil {
		app.stdout = os.Stdout
	}
	if app.stderr == nil {
		app.stderr = os.Stderr
	}
	return app
}

// session loads the configuration and builds the reporter for one command.
func (a *App) session(ctx context.Context) (*session, error) {
	cfg, err := a.Config.Load(ctx, config.LoadOptions{ConfigFilePath: a.configPath})
	if err != nil {
		return nil, a.fail(err, a.verbose, config.ColorSchemeAuto)
	}
	verbose := a.verbose || cfg.UI.Verbose
	return &session{
		cfg:      cfg,
		verbose:  verbose,
		reporter: report.NewLogger(a.stderr, verbose, logStyles(a.stderr)),
	}, nil
}

// pipeline wires the execution stages. The compose front-end is detected
// by the pipeline only after the request passed validation.
func (a *App) pipeline(s *session) *execute.Pipeline {
	return &execute.Pipeline{
		Resolver: &resolve.Resolver{
			Registry: registry.File{Path: s.cfg.ServicesFile},
			Matcher:  resolve.GlobMatcher{},
			Reporter: s.reporter,
		},
		Connect: func(ctx context.Context) (execute.Runner, error) {
			return a.connect(ctx, s)
		},
		Reporter: s.reporter,
	}
}

// connect detects the compose front-end and builds the orchestrator around it.
func (a *App) connect(ctx context.Context, s *session) (execute.Runner, error) {
	engine, err := compose.Detect(ctx, compose.EngineType(s.cfg.Compose.Engine), s.cfg.Compose.Binary, a.EngineOptions...)
	if err != nil {
		return nil, issue.NewErrorContext().
			WithOperation("detect compose front-end").
			WithResource(string(s.cfg.Compose.Engine)).
			WithIssue(issue.ComposeNotFoundId).
			WithSuggestion("Install docker compose, docker-compose or podman compose").
			WithSuggestion("Set compose.engine and compose.binary in " + configHint(s.cfg)).
			Wrap(err).
			BuildError()
	}
	report.Debug(s.reporter, "using %s (%s)", engine.FrontEnd(), engine.Type())

	return &orchestrate.Orchestrator{
		Spawner:     engine,
		Reporter:    s.reporter,
		Concurrency: s.cfg.Concurrency,
		Stdin:       a.stdin,
		Stdout:      a.stdout,
		Stderr:      a.stderr,
	}, nil
}

// fail turns err into the ExitError returned from RunE. In verbose mode the
// linked issue page is rendered to stderr first.
func (a *App) fail(err error, verbose bool, scheme config.ColorScheme) error {
	if verbose {
		if page := issue.IssueOf(err); page != nil {
			if rendered, renderErr := page.Render(glamourStyle(a.stderr, scheme)); renderErr == nil {
				fmt.Fprint(a.stderr, rendered)
			}
		}
	}
	return &ExitError{Code: types.ExitFailure, Err: err, Verbose: verbose}
}

func configHint(cfg *config.Config) string {
	if cfg.Source != "" {
		return cfg.Source
	}
	return "your config file"
}
