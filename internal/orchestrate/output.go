// SPDX-License-Identifier: MPL-2.0

package orchestrate

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"time"

	"github.com/servicecmd/servicecmd/internal/operation"
	"github.com/servicecmd/servicecmd/internal/report"
	"github.com/servicecmd/servicecmd/internal/resolve"
	"github.com/servicecmd/servicecmd/pkg/types"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/semaphore"
)

// task is one child process of a run.
type task struct {
	o     *Orchestrator
	spec  operation.Spec
	args  []string
	dir   string
	file  resolve.ResolvedFile
	label string
	sem   *semaphore.Weighted
	queue chan<- func()
}

func (t task) run(ctx context.Context) Result {
	res := Result{File: t.file, Dir: t.dir, State: Pending}

	if err := ctx.Err(); err != nil {
		return t.canceled(res, err)
	}
	if t.sem != nil {
		if err := t.sem.Acquire(ctx, 1); err != nil {
			return t.canceled(res, err)
		}
		defer t.sem.Release(1)
	}

	// Deferred tasks keep every line, status included, until the queue drains.
	r, finish := t.output()
	defer finish()

	line, err := t.spec.CommandLine(t.o.Spawner.FrontEnd(), string(t.file), t.args)
	if err != nil {
		return t.failed(res, err)
	}
	cmd, err := t.o.Spawner.Command(ctx, t.dir, line)
	if err != nil {
		return t.failed(res, err)
	}
	out := t.attach(cmd, r)

	report.Debug(r, "%s (in %s)", line, t.dir)
	start := time.Now()
	res.State = Spawned
	err = cmd.Run()
	res.Duration = time.Since(start)
	out.Flush()

	if err != nil {
		res.ExitCode = types.ExitCodeOf(err)
		res.Err = &ChildProcessError{File: t.file, ExitCode: res.ExitCode, Err: err}
		res.State = Failed
		if ctx.Err() != nil {
			res.State = Canceled
		}
		report.Debug(r, "%s after %s", res.State, res.Duration.Round(time.Millisecond))
		return res
	}

	res.State = Succeeded
	report.Debug(r, "done in %s", res.Duration.Round(time.Millisecond))
	return res
}

// output returns the Reporter this task writes to and a function that must
// run once the task ended. For Deferred operations the Reporter is a private
// buffer and finish queues exactly one flush of it.
func (t task) output() (report.Reporter, func()) {
	base := report.WithLabel(t.o.reporter(), t.label)
	if t.spec.Output != operation.Deferred {
		return base, func() {}
	}

	buf := &report.Recorder{}
	finish := func() {
		entries := buf.Entries()
		t.queue <- func() {
			for _, e := range entries {
				base.Log(e)
			}
		}
	}
	return report.WithLabel(buf, t.label), finish
}

// attach routes the child's streams according to the operation's output mode.
func (t task) attach(cmd *exec.Cmd, r report.Reporter) interface{ Flush() } {
	switch t.spec.Output {
	case operation.Live, operation.Deferred:
		w := report.NewLineWriter(r, t.label, t.lineLevel())
		cmd.Stdout = w
		cmd.Stderr = w
		return w
	case operation.Headless:
		cmd.Stdin = orDefault[io.Reader](t.o.Stdin, os.Stdin)
		cmd.Stdout = orDefault[io.Writer](t.o.Stdout, os.Stdout)
		cmd.Stderr = orDefault[io.Writer](t.o.Stderr, os.Stderr)
		return noFlush{}
	default:
		panic(fmt.Sprintf("orchestrate: unhandled output mode %v", t.spec.Output))
	}
}

// lineLevel hides the output of operations that do not keep it unless the
// Reporter shows debug lines.
func (t task) lineLevel() log.Level {
	if t.spec.KeepOutput {
		return log.InfoLevel
	}
	return log.DebugLevel
}

func (t task) canceled(res Result, err error) Result {
	res.State = Canceled
	res.ExitCode = types.ExitFailure
	res.Err = &ChildProcessError{File: t.file, ExitCode: res.ExitCode, Err: err}
	return res
}

func (t task) failed(res Result, err error) Result {
	res.State = Failed
	res.ExitCode = types.ExitCodeOf(err)
	res.Err = &ChildProcessError{File: t.file, ExitCode: res.ExitCode, Err: err}
	return res
}

type noFlush struct{}

func (noFlush) Flush() {}

func orDefault[T comparable](v, def T) T {
	var zero T
	if v == zero {
		return def
	}
	return v
}
