// SPDX-License-Identifier: MPL-2.0

package orchestrate

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/servicecmd/servicecmd/internal/operation"
	"github.com/servicecmd/servicecmd/internal/report"
	"github.com/servicecmd/servicecmd/internal/resolve"
	"github.com/servicecmd/servicecmd/pkg/types"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

const (
	// Pending means the task has not been spawned yet.
	Pending TaskState = iota
	// Spawned means the child process is running.
	Spawned
	// Succeeded means the child exited with status 0.
	Succeeded
	// Failed means the child could not be spawned or exited non-zero.
	Failed
	// Canceled means the context ended before or while the child ran.
	Canceled
)

// ErrChildProcess is the sentinel error wrapped by ChildProcessError.
var ErrChildProcess = errors.New("child process failed")

type (
	// TaskState is the lifecycle state of one inner task.
	TaskState int

	// Spawner builds child processes. *compose.Engine implements it.
	Spawner interface {
		// FrontEnd returns the command-line prefix that invokes compose.
		FrontEnd() string
		// Command returns a command for line that runs in dir.
		Command(ctx context.Context, dir, line string) (*exec.Cmd, error)
	}

	// Orchestrator runs one operation across folder groups, one task per
	// folder and one task per file inside it.
	Orchestrator struct {
		Spawner  Spawner
		Reporter report.Reporter
		// Concurrency caps the number of children running at once. Zero
		// means no limit.
		Concurrency int

		// Stdin, Stdout and Stderr are inherited by Headless children.
		// They default to the process streams.
		Stdin  io.Reader
		Stdout io.Writer
		Stderr io.Writer
	}

	// Result is the outcome of one child process.
	Result struct {
		File     resolve.ResolvedFile
		Dir      string
		ExitCode types.ExitCode
		Err      error
		State    TaskState
		Duration time.Duration
	}

	// Report aggregates the results of one Run in completion order.
	Report struct {
		Operation string
		Results   []Result
		// Flushed counts the deferred output flushes that ran after completion.
		Flushed int
	}

	// ChildProcessError describes a child that failed to spawn or exited non-zero.
	ChildProcessError struct {
		File     resolve.ResolvedFile
		ExitCode types.ExitCode
		Err      error
	}

	// collector serializes result appends from concurrent tasks.
	collector struct {
		mu      sync.Mutex
		results []Result
	}
)

// Run executes spec with args for every file in groups and waits for all of
// them. A failing child never cancels its siblings. Canceling ctx stops tasks
// that have not started and interrupts running children.
func (o *Orchestrator) Run(ctx context.Context, groups []resolve.FolderGroup, spec operation.Spec, args []string) Report {
	results, queue := o.schedule(ctx, groups, spec, args)
	rep := Report{Operation: spec.Key, Results: results}
	rep.Flushed = drain(queue)
	o.summarize(rep)
	return rep
}

// schedule runs every task and returns once all of them reached a terminal
// state. Deferred output is left in the returned queue.
func (o *Orchestrator) schedule(ctx context.Context, groups []resolve.FolderGroup, spec operation.Spec, args []string) ([]Result, chan func()) {
	queue := make(chan func(), resolve.Count(groups))
	labels := newLabeler()

	var sem *semaphore.Weighted
	if o.Concurrency > 0 {
		sem = semaphore.NewWeighted(int64(o.Concurrency))
	}

	var (
		out   collector
		outer errgroup.Group
	)
	for _, g := range groups {
		outer.Go(func() error {
			var inner errgroup.Group
			for _, file := range g.Files {
				inner.Go(func() error {
					t := task{
						o:     o,
						spec:  spec,
						args:  args,
						dir:   g.Dir,
						file:  file,
						label: labels.label(file),
						sem:   sem,
						queue: queue,
					}
					out.add(t.run(ctx))
					return nil
				})
			}
			return inner.Wait()
		})
	}
	_ = outer.Wait() // tasks never return errors

	close(queue)
	return out.results, queue
}

// drain runs every queued flush in completion order and returns how many ran.
func drain(queue <-chan func()) int {
	n := 0
	for flush := range queue {
		flush()
		n++
	}
	return n
}

func (o *Orchestrator) summarize(rep Report) {
	r := o.reporter()
	for _, res := range rep.Results {
		if res.Err != nil {
			report.Error(r, "%v", res.Err)
		}
	}
	succeeded, failed, canceled := rep.Counts()
	msg := fmt.Sprintf("%s: %d succeeded, %d failed", rep.Operation, succeeded, failed)
	if canceled > 0 {
		msg += fmt.Sprintf(", %d canceled", canceled)
	}
	report.Info(r, "%s", msg)
}

func (o *Orchestrator) reporter() report.Reporter {
	if o.Reporter == nil {
		return report.Discard
	}
	return o.Reporter
}

func (c *collector) add(r Result) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.results = append(c.results, r)
}

// Failed reports whether any child failed or was canceled.
func (r Report) Failed() bool {
	for _, res := range r.Results {
		if res.Err != nil {
			return true
		}
	}
	return false
}

// Counts returns the number of succeeded, failed and canceled children.
func (r Report) Counts() (succeeded, failed, canceled int) {
	for _, res := range r.Results {
		switch res.State {
		case Succeeded:
			succeeded++
		case Canceled:
			canceled++
		case Pending, Spawned, Failed:
			failed++
		}
	}
	return succeeded, failed, canceled
}

// Result returns the result for file, if any.
func (r Report) Result(file resolve.ResolvedFile) (Result, bool) {
	for _, res := range r.Results {
		if res.File == file {
			return res, true
		}
	}
	return Result{}, false
}

// ExitCode is ExitSuccess when no child failed, ExitFailure otherwise.
func (r Report) ExitCode() types.ExitCode {
	if r.Failed() {
		return types.ExitFailure
	}
	return types.ExitSuccess
}

func (s TaskState) String() string {
	switch s {
	case Pending:
		return "pending"
	case Spawned:
		return "spawned"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	case Canceled:
		return "canceled"
	default:
		return fmt.Sprintf("TaskState(%d)", int(s))
	}
}

func (e *ChildProcessError) Error() string {
	var exitErr *exec.ExitError
	if errors.As(e.Err, &exitErr) {
		return fmt.Sprintf("%s: exited with status %s", e.File, e.ExitCode)
	}
	return fmt.Sprintf("%s: %v", e.File, e.Err)
}

// Unwrap returns ErrChildProcess and the underlying cause.
func (e *ChildProcessError) Unwrap() []error { return []error{ErrChildProcess, e.Err} }

// labeler shortens file paths relative to the working directory for log prefixes.
type labeler struct{ wd string }

func newLabeler() labeler {
	wd, _ := os.Getwd()
	return labeler{wd: wd}
}

func (l labeler) label(file resolve.ResolvedFile) string {
	path := string(file)
	if l.wd == "" {
		return path
	}
	rel, err := filepath.Rel(l.wd, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return path
	}
	return rel
}
