// SPDX-License-Identifier: MPL-2.0

package compose

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"time"

	"mvdan.cc/sh/v3/shell"
)

// GracePeriod is how long a canceled child gets to exit after the interrupt
// before it is killed.
const GracePeriod = 10 * time.Second

// ErrEmptyCommand is returned when a command line parses to no words.
var ErrEmptyCommand = errors.New("empty command line")

// Command parses line with shell quoting and parameter expansion rules and
// returns a command that runs in dir. Canceling ctx interrupts the child and
// kills it after GracePeriod.
func (e *Engine) Command(ctx context.Context, dir, line string) (*exec.Cmd, error) {
	fields, err := shell.Fields(line, nil)
	if err != nil {
		return nil, fmt.Errorf("parse command line %q: %w", line, err)
	}
	if len(fields) == 0 {
		return nil, ErrEmptyCommand
	}

	cmd := e.execCommand(ctx, fields[0], fields[1:]...)
	cmd.Dir = dir
	if runtime.GOOS != "windows" {
		cmd.Cancel = func() error { return cmd.Process.Signal(os.Interrupt) }
		cmd.WaitDelay = GracePeriod
	}
	return cmd, nil
}
