// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"

	"github.com/servicecmd/servicecmd/internal/issue"
	"github.com/servicecmd/servicecmd/pkg/types"
)

// ExitError signals a non-zero exit code without forcing os.Exit in RunE handlers.
type ExitError struct {
	Code types.ExitCode
	Err  error
	// Verbose includes the error chain of actionable errors in the message.
	Verbose bool
}

// Error returns the message shown to the user. Actionable errors are
// formatted with their suggestions.
func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit status %d", e.Code)
	}
	var ae *issue.ActionableError
	if errors.As(e.Err, &ae) {
		return ae.Format(e.Verbose)
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error, if any.
func (e *ExitError) Unwrap() error {
	return e.Err
}
