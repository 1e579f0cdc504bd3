// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"slices"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"
)

const (
	envWantHelper = "GO_WANT_HELPER_PROCESS"
	envExitCode   = "GO_HELPER_EXIT_CODE"
	envStdout     = "GO_HELPER_STDOUT"
	envStderr     = "GO_HELPER_STDERR"
	envEchoArgs   = "GO_HELPER_ECHO_ARGS"
	envSleep      = "GO_HELPER_SLEEP"
)

type (
	// Invocation is one recorded command spawn.
	Invocation struct {
		Name string
		Args []string
	}

	// CommandRecorder replaces exec.CommandContext in tests. Every call is
	// recorded and answered by re-running the test binary as a helper process,
	// so the package under test must declare:
	//
	//	func TestHelperProcess(t *testing.T) { testutil.RunHelperProcess() }
	//
	// CommandRecorder is safe for concurrent use.
	CommandRecorder struct {
		// Stdout and Stderr are written by the helper process.
		Stdout string
		Stderr string
		// ExitCode is the helper's exit status unless Fail selects the call.
		ExitCode int
		// Fail makes matching invocations exit with status 1.
		Fail func(inv Invocation) bool
		// EchoArgs makes the helper print its arguments on one stdout line.
		EchoArgs bool
		// Sleep delays the helper's exit.
		Sleep time.Duration

		mu          sync.Mutex
		invocations []Invocation
	}
)

// Command records the call and returns a helper-process command.
func (r *CommandRecorder) Command(ctx context.Context, name string, args ...string) *exec.Cmd {
	inv := Invocation{Name: name, Args: slices.Clone(args)}
	r.mu.Lock()
	r.invocations = append(r.invocations, inv)
	r.mu.Unlock()

	exitCode := r.ExitCode
	if r.Fail != nil && r.Fail(inv) {
		exitCode = 1
	}

	cs := append([]string{"-test.run=TestHelperProcess", "--", name}, args...)
	//nolint:gosec // re-executes the test binary
	cmd := exec.CommandContext(ctx, os.Args[0], cs...)
	cmd.Env = []string{
		envWantHelper + "=1",
		envExitCode + "=" + strconv.Itoa(exitCode),
		envStdout + "=" + r.Stdout,
		envStderr + "=" + r.Stderr,
		envEchoArgs + "=" + strconv.FormatBool(r.EchoArgs),
		envSleep + "=" + r.Sleep.String(),
	}
	return cmd
}

// Invocations returns a snapshot of the recorded calls.
func (r *CommandRecorder) Invocations() []Invocation {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.invocations)
}

// Count returns the number of recorded calls.
func (r *CommandRecorder) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.invocations)
}

// AssertCount fails the test unless exactly want calls were recorded.
func (r *CommandRecorder) AssertCount(t testing.TB, want int) {
	t.Helper()
	if got := r.Count(); got != want {
		t.Errorf("recorded %d spawn(s), want %d: %v", got, want, r.Invocations())
	}
}

// RunHelperProcess is the body of a package's TestHelperProcess. It returns
// immediately unless the binary was started by CommandRecorder.
func RunHelperProcess() {
	if os.Getenv(envWantHelper) != "1" {
		return
	}

	args := os.Args
	for i, a := range args {
		if a == "--" {
			args = args[i+1:]
			break
		}
	}

	if d, err := time.ParseDuration(os.Getenv(envSleep)); err == nil && d > 0 {
		time.Sleep(d)
	}
	if os.Getenv(envEchoArgs) == "true" {
		fmt.Fprintln(os.Stdout, strings.Join(args, " "))
	}
	if s := os.Getenv(envStdout); s != "" {
		fmt.Fprint(os.Stdout, s)
	}
	if s := os.Getenv(envStderr); s != "" {
		fmt.Fprint(os.Stderr, s)
	}

	code, _ := strconv.Atoi(os.Getenv(envExitCode))
	os.Exit(code)
}
