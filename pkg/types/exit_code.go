// SPDX-License-Identifier: MPL-2.0

package types

import (
	"errors"
	"fmt"
	"os/exec"
	"strconv"
)

const (
	// ExitSuccess is returned when every child process succeeded.
	ExitSuccess ExitCode = 0
	// ExitFailure is returned for pre-execution errors and when at least one
	// child process failed.
	ExitFailure ExitCode = 1
	// ExitNotFound is the shell convention for a command that could not be found.
	ExitNotFound ExitCode = 127
)

// ErrInvalidExitCode is the sentinel error wrapped by InvalidExitCodeError.
var ErrInvalidExitCode = errors.New("invalid exit code")

type (
	// ExitCode is a process exit status in the POSIX range 0-255.
	ExitCode int

	// InvalidExitCodeError is returned when an ExitCode is outside 0-255.
	InvalidExitCodeError struct {
		Value ExitCode
	}
)

// ExitCodeOf maps the error returned by (*exec.Cmd).Wait or Run to an exit
// code. A nil error is ExitSuccess, a non-zero exit status is passed through,
// a missing executable is ExitNotFound and anything else is ExitFailure.
// Children killed by a signal report -1 from the runtime and map to ExitFailure.
func ExitCodeOf(err error) ExitCode {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if code := ExitCode(exitErr.ExitCode()); code.Validate() == nil && code != ExitSuccess {
			return code
		}
		return ExitFailure
	}
	if errors.Is(err, exec.ErrNotFound) {
		return ExitNotFound
	}
	return ExitFailure
}

func (e *InvalidExitCodeError) Error() string {
	return fmt.Sprintf("invalid exit code %d (must be in range 0-255)", e.Value)
}

// Unwrap returns ErrInvalidExitCode for errors.Is() compatibility.
func (e *InvalidExitCodeError) Unwrap() error { return ErrInvalidExitCode }

// Validate returns an error if the code is outside 0-255.
func (c ExitCode) Validate() error {
	if c < 0 || c > 255 {
		return &InvalidExitCodeError{Value: c}
	}
	return nil
}

// IsSuccess reports whether the code is zero.
func (c ExitCode) IsSuccess() bool { return c == ExitSuccess }

func (c ExitCode) String() string { return strconv.Itoa(int(c)) }
