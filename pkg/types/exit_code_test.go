// SPDX-License-Identifier: MPL-2.0

package types

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"testing"
)

func TestExitCodeValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		value     ExitCode
		wantValid bool
	}{
		{name: "zero is valid", value: 0, wantValid: true},
		{name: "one is valid", value: 1, wantValid: true},
		{name: "125 is valid", value: 125, wantValid: true},
		{name: "126 is valid", value: 126, wantValid: true},
		{name: "255 is valid", value: 255, wantValid: true},
		{name: "negative is invalid", value: -1, wantValid: false},
		{name: "256 is invalid", value: 256, wantValid: false},
		{name: "large positive is invalid", value: 1000, wantValid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.value.Validate()
			if (err == nil) != tt.wantValid {
				t.Errorf("ExitCode(%d).Validate() error = %v, wantValid %v", tt.value, err, tt.wantValid)
			}
			if tt.wantValid {
				if err != nil {
					t.Errorf("ExitCode(%d).Validate() returned error for valid value: %v", tt.value, err)
				}
			} else {
				if err == nil {
					t.Error("ExitCode.Validate() returned nil for invalid value")
				}
				if !errors.Is(err, ErrInvalidExitCode) {
					t.Errorf("error does not wrap ErrInvalidExitCode: %v", err)
				}
			}
		})
	}
}

func TestExitCodeIsSuccess(t *testing.T) {
	t.Parallel()

	tests := []struct {
		code ExitCode
		want bool
	}{
		{0, true},
		{1, false},
		{125, false},
		{255, false},
	}

	for _, tt := range tests {
		if got := tt.code.IsSuccess(); got != tt.want {
			t.Errorf("ExitCode(%d).IsSuccess() = %v, want %v", tt.code, got, tt.want)
		}
	}
}

func TestExitCodeString(t *testing.T) {
	t.Parallel()

	if got := ExitCode(42).String(); got != "42" {
		t.Errorf("ExitCode(42).String() = %q, want %q", got, "42")
	}
}

func TestExitCodeOf(t *testing.T) {
	t.Parallel()

	if got := ExitCodeOf(nil); got != ExitSuccess {
		t.Errorf("ExitCodeOf(nil) = %d, want 0", got)
	}
	if got := ExitCodeOf(errors.New("boom")); got != ExitFailure {
		t.Errorf("ExitCodeOf(plain error) = %d, want 1", got)
	}
	if got := ExitCodeOf(fmt.Errorf("spawn: %w", exec.ErrNotFound)); got != ExitNotFound {
		t.Errorf("ExitCodeOf(ErrNotFound) = %d, want 127", got)
	}
}

func TestExitCodeOf_ExitError(t *testing.T) {
	t.Parallel()

	if runtime.GOOS == "windows" {
		t.Skip("relies on sh")
	}

	err := exec.CommandContext(context.Background(), "sh", "-c", "exit 3").Run()
	if got := ExitCodeOf(err); got != 3 {
		t.Errorf("ExitCodeOf(exit 3) = %d, want 3", got)
	}
}
