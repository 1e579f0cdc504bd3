// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestActionableError_Error(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      *ActionableError
		expected string
	}{
		{
			name:     "operation only",
			err:      &ActionableError{Operation: "resolve services"},
			expected: "failed to resolve services",
		},
		{
			name:     "operation with resource",
			err:      &ActionableError{Operation: "load services file", Resource: "services.cue"},
			expected: "failed to load services file: services.cue",
		},
		{
			name: "full context",
			err: &ActionableError{
				Operation: "load services file",
				Resource:  "services.cue",
				Cause:     errors.New("file not found"),
			},
			expected: "failed to load services file: services.cue: file not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestActionableError_ErrorsIs(t *testing.T) {
	t.Parallel()

	cause := errors.New("specific error")
	wrapped := fmt.Errorf("outer: %w", &ActionableError{Operation: "test", Cause: cause})
	if !errors.Is(wrapped, cause) {
		t.Error("errors.Is should find the wrapped cause")
	}
	if (&ActionableError{Operation: "test"}).Unwrap() != nil {
		t.Error("Unwrap() should return nil when no cause")
	}
}

func TestActionableError_Format(t *testing.T) {
	t.Parallel()

	joined := errors.Join(errors.New("flag --tail is not allowed"), errors.New("flag --command is required"))
	err := NewErrorContext().
		WithOperation("build arguments").
		WithResource("exec").
		WithSuggestions("Run 'servicecmd exec --help'", "Quote values with spaces").
		Wrap(fmt.Errorf("invalid flags: %w", joined)).
		Build()

	tests := []struct {
		name     string
		verbose  bool
		contains []string
		excludes []string
	}{
		{
			name:     "non-verbose",
			contains: []string{"failed to build arguments: exec", "• Run 'servicecmd exec --help'", "• Quote values with spaces"},
			excludes: []string{"Error chain"},
		},
		{
			name:    "verbose walks joined errors",
			verbose: true,
			contains: []string{
				"Error chain:",
				"1. invalid flags:",
				"3. flag --tail is not allowed",
				"4. flag --command is required",
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			out := err.Format(tt.verbose)
			for _, want := range tt.contains {
				if !strings.Contains(out, want) {
					t.Errorf("Format(%v) missing %q:\n%s", tt.verbose, want, out)
				}
			}
			for _, unwanted := range tt.excludes {
				if strings.Contains(out, unwanted) {
					t.Errorf("Format(%v) should not contain %q:\n%s", tt.verbose, unwanted, out)
				}
			}
		})
	}
}

func TestErrorContext_Build(t *testing.T) {
	t.Parallel()

	if NewErrorContext().WithResource("x").Build() != nil {
		t.Error("Build() without operation should return nil")
	}
	if NewErrorContext().BuildError() != nil {
		t.Error("BuildError() without operation should return a nil error")
	}

	ae := NewErrorContext().WithOperation("detect compose").WithIssue(ComposeNotFoundId).WithSuggestion("install docker").Build()
	if ae.Issue != ComposeNotFoundId || !ae.HasSuggestions() {
		t.Errorf("Build() = %+v", ae)
	}
}

func TestIssueOf(t *testing.T) {
	t.Parallel()

	linked := NewErrorContext().WithOperation("resolve services").WithIssue(NoMatchingServicesId).BuildError()
	if got := IssueOf(fmt.Errorf("wrapped: %w", linked)); got == nil || got.Id() != NoMatchingServicesId {
		t.Errorf("IssueOf(linked) = %v", got)
	}
	if IssueOf(WrapWithOperation(errors.New("x"), "run")) != nil {
		t.Error("IssueOf() should be nil for an error without issue")
	}
	if IssueOf(errors.New("plain")) != nil {
		t.Error("IssueOf() should be nil for a plain error")
	}
	if WrapWithOperation(nil, "run") != nil {
		t.Error("WrapWithOperation(nil) should be nil")
	}
}
