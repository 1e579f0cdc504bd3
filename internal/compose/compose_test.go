// SPDX-License-Identifier: MPL-2.0

package compose

import (
	"context"
	"errors"
	"os/exec"
	"slices"
	"testing"

	"github.com/servicecmd/servicecmd/internal/testutil"
)

func TestHelperProcess(t *testing.T) { testutil.RunHelperProcess() }

func lookPathIn(available ...string) LookPathFunc {
	return func(file string) (string, error) {
		if slices.Contains(available, file) {
			return "/usr/bin/" + file, nil
		}
		return "", exec.ErrNotFound
	}
}

func TestDetect(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		typ        EngineType
		binary     string
		available  []string
		pluginFail bool
		wantType   EngineType
		wantFront  string
		wantErr    error
	}{
		{"auto prefers docker plugin", EngineAuto, "", []string{"docker", "docker-compose", "podman"}, false, EngineDocker, "/usr/bin/docker compose", nil},
		{"auto falls back to standalone", EngineAuto, "", []string{"docker", "docker-compose"}, true, EngineDockerCompose, "/usr/bin/docker-compose", nil},
		{"empty means auto", "", "", []string{"docker-compose"}, false, EngineDockerCompose, "/usr/bin/docker-compose", nil},
		{"podman", EnginePodman, "", []string{"podman"}, false, EnginePodman, "/usr/bin/podman compose", nil},
		{"binary override", EngineDockerCompose, "my compose", []string{"my compose"}, false, EngineDockerCompose, "'/usr/bin/my compose'", nil},
		{"nothing installed", EngineAuto, "", nil, false, "", "", ErrComposeNotFound},
		{"explicit engine missing", EnginePodman, "", []string{"docker"}, false, "", "", ErrComposeNotFound},
		{"plugin broken", EngineDocker, "", []string{"docker"}, true, "", "", ErrComposeNotFound},
		{"invalid engine", EngineType("nerdctl"), "", nil, false, "", "", ErrInvalidEngineType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rec := &testutil.CommandRecorder{}
			if tt.pluginFail {
				rec.ExitCode = 1
			}
			e, err := Detect(context.Background(), tt.typ, tt.binary,
				WithLookPath(lookPathIn(tt.available...)), WithExecCommand(rec.Command))

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Detect() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Detect() error: %v", err)
			}
			if e.Type() != tt.wantType || e.FrontEnd() != tt.wantFront {
				t.Errorf("Detect() = %s %q, want %s %q", e.Type(), e.FrontEnd(), tt.wantType, tt.wantFront)
			}
		})
	}
}

func TestDetect_ProbesPluginVersion(t *testing.T) {
	t.Parallel()

	rec := &testutil.CommandRecorder{}
	if _, err := Detect(context.Background(), EngineDocker, "",
		WithLookPath(lookPathIn("docker")), WithExecCommand(rec.Command)); err != nil {
		t.Fatal(err)
	}
	rec.AssertCount(t, 1)
	inv := rec.Invocations()[0]
	if inv.Name != "/usr/bin/docker" || !slices.Equal(inv.Args, []string{"compose", "version"}) {
		t.Errorf("version check = %+v", inv)
	}
}

func TestCommand(t *testing.T) {
	t.Parallel()

	rec := &testutil.CommandRecorder{}
	e := New(EngineDocker, "docker compose", WithExecCommand(rec.Command))
	dir := t.TempDir()

	cmd, err := e.Command(context.Background(), dir, `docker compose -f '/srv/my app/compose.yml' exec -e 'A=b c' db "sh -c 'ls'"`)
	if err != nil {
		t.Fatalf("Command() error: %v", err)
	}
	if cmd.Dir != dir {
		t.Errorf("Dir = %q, want %q", cmd.Dir, dir)
	}
	if err := cmd.Run(); err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	inv := rec.Invocations()[0]
	want := []string{"compose", "-f", "/srv/my app/compose.yml", "exec", "-e", "A=b c", "db", "sh -c 'ls'"}
	if inv.Name != "docker" || !slices.Equal(inv.Args, want) {
		t.Errorf("argv = %s %q, want docker %q", inv.Name, inv.Args, want)
	}
}

func TestCommand_Errors(t *testing.T) {
	t.Parallel()

	e := New(EngineDocker, "docker compose")
	if _, err := e.Command(context.Background(), "", "   "); !errors.Is(err, ErrEmptyCommand) {
		t.Errorf("blank line error = %v, want ErrEmptyCommand", err)
	}
	if _, err := e.Command(context.Background(), "", "docker 'unterminated"); err == nil {
		t.Error("unterminated quote should fail to parse")
	}
}

func TestCommand_ExitStatus(t *testing.T) {
	t.Parallel()

	rec := &testutil.CommandRecorder{ExitCode: 3, Stderr: "boom"}
	e := New(EngineDocker, "docker compose", WithExecCommand(rec.Command))
	cmd, err := e.Command(context.Background(), "", "docker compose ps")
	if err != nil {
		t.Fatal(err)
	}
	out, err := cmd.CombinedOutput()
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) || exitErr.ExitCode() != 3 {
		t.Fatalf("Run() error = %v, want exit status 3", err)
	}
	if string(out) != "boom" {
		t.Errorf("output = %q, want %q", out, "boom")
	}
}
