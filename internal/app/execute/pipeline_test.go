// SPDX-License-Identifier: MPL-2.0

package execute

import (
	"context"
	"errors"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/servicecmd/servicecmd/internal/compose"
	"github.com/servicecmd/servicecmd/internal/issue"
	"github.com/servicecmd/servicecmd/internal/operation"
	"github.com/servicecmd/servicecmd/internal/orchestrate"
	"github.com/servicecmd/servicecmd/internal/registry"
	"github.com/servicecmd/servicecmd/internal/report"
	"github.com/servicecmd/servicecmd/internal/resolve"
	"github.com/servicecmd/servicecmd/internal/testutil"
	"github.com/servicecmd/servicecmd/pkg/servicedef"
	"github.com/servicecmd/servicecmd/pkg/types"
)

func TestHelperProcess(t *testing.T) { testutil.RunHelperProcess() }

type fixture struct {
	root     string
	cmds     *testutil.CommandRecorder
	reporter *report.Recorder
	pipeline *Pipeline
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	root := testutil.ComposeTree(t,
		"apps/api/docker-compose.yml",
		"apps/site/docker-compose.yml",
		"infra/cache/docker-compose.yml",
	)
	cmds := &testutil.CommandRecorder{}
	rec := &report.Recorder{}
	reg := registry.Static{
		"api":   {Name: "api", Paths: []string{"./apps/api"}, Files: []string{"docker-compose.yml"}, Depth: 1},
		"site":  {Name: "site", Paths: []string{"./apps/site"}, Files: []string{"docker-compose.yml"}, Depth: 1},
		"infra": {Name: "infra", Paths: []string{"./infra"}, Files: []string{"docker-compose.yml"}, Depth: servicedef.Unbounded},
	}
	return &fixture{
		root:     root,
		cmds:     cmds,
		reporter: rec,
		pipeline: &Pipeline{
			Resolver: &resolve.Resolver{Registry: reg, Matcher: resolve.GlobMatcher{Root: root}, Reporter: rec},
			Runner: &orchestrate.Orchestrator{
				Spawner:  compose.New(compose.EngineDocker, "docker compose", compose.WithExecCommand(cmds.Command)),
				Reporter: rec,
			},
			Reporter: rec,
		},
	}
}

func TestExecute_RunsSelectedGroup(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	out, err := f.pipeline.Execute(context.Background(), Request{
		Operation: "up",
		Selection: servicedef.SelectionInput{Groups: []string{"api"}},
		Flags:     map[operation.FlagName]string{operation.FlagBuild: ""},
	})
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}

	f.cmds.AssertCount(t, 1)
	inv := f.cmds.Invocations()[0]
	file := filepath.Join(f.root, "apps", "api", "docker-compose.yml")
	want := []string{"compose", "-f", file, "up", "-d", "--build"}
	if inv.Name != "docker" || !slices.Equal(inv.Args, want) {
		t.Errorf("spawned %s %q, want docker %q", inv.Name, inv.Args, want)
	}
	if len(out.Groups) != 1 || out.Groups[0].Dir != filepath.Dir(file) {
		t.Errorf("Groups = %+v", out.Groups)
	}
	if out.ExitCode() != types.ExitSuccess {
		t.Errorf("ExitCode() = %s, want 0", out.ExitCode())
	}
}

func TestExecute_AllWithExclude(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	out, err := f.pipeline.Execute(context.Background(), Request{
		Operation: "pull",
		Selection: servicedef.SelectionInput{Exclude: []string{"/infra/"}},
	})
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	f.cmds.AssertCount(t, 2)
	for _, file := range out.Resolution.Files {
		if strings.Contains(string(file), "infra") {
			t.Errorf("excluded file %s was selected", file)
		}
	}
}

func TestExecute_ChildFailureIsOutcomeNotError(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.cmds.Fail = func(inv testutil.Invocation) bool {
		return slices.ContainsFunc(inv.Args, func(a string) bool { return strings.Contains(a, "site") })
	}

	out, err := f.pipeline.Execute(context.Background(), Request{
		Operation: "down",
		Selection: servicedef.SelectionInput{Groups: []string{"api", "site"}},
	})
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	f.cmds.AssertCount(t, 2)
	if out.ExitCode() != types.ExitFailure {
		t.Errorf("ExitCode() = %s, want 1", out.ExitCode())
	}
	if succeeded, failed, _ := out.Report.Counts(); succeeded != 1 || failed != 1 {
		t.Errorf("Counts() = %d succeeded, %d failed", succeeded, failed)
	}
}

func TestExecute_PreExecutionErrorsSpawnNothing(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		req     Request
		wantErr error
		issue   issue.Id
	}{
		{
			name: "too many services for exec",
			req: Request{
				Operation: "exec",
				Selection: servicedef.SelectionInput{Groups: []string{"api", "site"}},
				Flags:     map[operation.FlagName]string{operation.FlagService: "app", operation.FlagCommand: "sh"},
			},
			wantErr: operation.ErrTooManyServices,
			issue:   issue.TooManyServicesId,
		},
		{
			name:    "unknown operation",
			req:     Request{Operation: "deploy"},
			wantErr: operation.ErrUnknownOperation,
			issue:   issue.UnknownOperationId,
		},
		{
			name:    "illegal flag",
			req:     Request{Operation: "down", Flags: map[operation.FlagName]string{operation.FlagTail: "5"}},
			wantErr: operation.ErrIllegalFlag,
			issue:   issue.InvalidFlagsId,
		},
		{
			name:    "missing required flag",
			req:     Request{Operation: "exec", Selection: servicedef.SelectionInput{Groups: []string{"api"}}},
			wantErr: operation.ErrMissingRequiredFlag,
			issue:   issue.InvalidFlagsId,
		},
		{
			name:    "invalid pattern",
			req:     Request{Operation: "up", Selection: servicedef.SelectionInput{Include: []string{"("}}},
			wantErr: servicedef.ErrInvalidPattern,
			issue:   issue.InvalidPatternId,
		},
		{
			name:    "no match",
			req:     Request{Operation: "up", Selection: servicedef.SelectionInput{Groups: []string{"api"}, Include: []string{"nothing-here"}}},
			wantErr: resolve.ErrNoMatch,
			issue:   issue.NoMatchingServicesId,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := newFixture(t)
			connected := false
			runner := f.pipeline.Runner
			f.pipeline.Runner = nil
			f.pipeline.Connect = func(context.Context) (Runner, error) {
				connected = true
				return runner, nil
			}

			_, err := f.pipeline.Execute(context.Background(), tt.req)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Execute() error = %v, want %v", err, tt.wantErr)
			}
			if connected {
				t.Error("Connect was called for a rejected request")
			}
			var ae *issue.ActionableError
			if !errors.As(err, &ae) || ae.Issue != tt.issue || !ae.HasSuggestions() {
				t.Errorf("error = %#v, want ActionableError with issue %d", err, tt.issue)
			}
			f.cmds.AssertCount(t, 0)
		})
	}
}

func TestExecute_ConnectsAfterValidation(t *testing.T) {
	t.Parallel()

	detectErr := errors.New("no compose front-end")
	tests := []struct {
		name      string
		connect   Connector
		wantErr   error
		wantSpawn int
	}{
		{
			name:    "connect error is returned unchanged",
			connect: func(context.Context) (Runner, error) { return nil, detectErr },
			wantErr: detectErr,
		},
		{
			name:    "no runner and no connector",
			wantErr: ErrNoRunner,
		},
		{
			name:      "connected runner executes",
			wantSpawn: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := newFixture(t)
			runner := f.pipeline.Runner
			f.pipeline.Runner = nil
			f.pipeline.Connect = tt.connect
			if tt.wantSpawn > 0 {
				f.pipeline.Connect = func(context.Context) (Runner, error) { return runner, nil }
			}

			_, err := f.pipeline.Execute(context.Background(), Request{
				Operation: "up",
				Selection: servicedef.SelectionInput{Groups: []string{"api"}},
			})
			if tt.wantErr == nil && err != nil {
				t.Fatalf("Execute() error: %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("Execute() error = %v, want %v", err, tt.wantErr)
			}
			f.cmds.AssertCount(t, tt.wantSpawn)
		})
	}
}

type failingRegistry struct{ err error }

func (r failingRegistry) Load(context.Context) (map[string]servicedef.ServiceDefinition, error) {
	return nil, r.err
}

func TestExecute_RegistryErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err   error
		issue issue.Id
	}{
		{registry.ErrServicesFileNotFound, issue.ServicesFileNotFoundId},
		{&registry.ServicesFileError{Path: "services.cue", Err: errors.New("bad")}, issue.ServicesFileInvalidId},
	}
	for _, tt := range tests {
		f := newFixture(t)
		f.pipeline.Resolver = &resolve.Resolver{Registry: failingRegistry{tt.err}, Matcher: resolve.GlobMatcher{Root: f.root}}

		_, err := f.pipeline.Execute(context.Background(), Request{Operation: "up"})
		if got := issue.IssueOf(err); got == nil || got.Id() != tt.issue {
			t.Errorf("IssueOf(%v) = %v, want issue %d", err, got, tt.issue)
		}
		f.cmds.AssertCount(t, 0)
	}
}

func TestExecute_DebugListsFiles(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	if _, err := f.pipeline.Execute(context.Background(), Request{
		Operation: "ps",
		Selection: servicedef.SelectionInput{Groups: []string{"infra"}},
	}); err != nil {
		t.Fatal(err)
	}

	found := false
	for _, e := range f.reporter.Entries() {
		if strings.HasPrefix(e.Message, "applying ps on 1 file(s)") {
			found = true
		}
	}
	if !found {
		t.Errorf("no debug listing in %+v", f.reporter.Entries())
	}
}
