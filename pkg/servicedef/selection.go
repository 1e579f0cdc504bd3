// SPDX-License-Identifier: MPL-2.0

package servicedef

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
)

// ErrInvalidPattern is the sentinel error wrapped by InvalidPatternError.
var ErrInvalidPattern = errors.New("invalid selection pattern")

type (
	// Selection is the user's choice of services for one invocation.
	// It is constructed per run and never mutated after NewSelection returns.
	Selection struct {
		// Groups are registry names; AllServices selects every definition.
		Groups []string
		// Include keeps only files matching at least one pattern.
		Include []*regexp.Regexp
		// Exclude removes files matching any pattern, applied cumulatively.
		Exclude []*regexp.Regexp
		// Direct adds files from the whole registry matching any pattern.
		Direct []*regexp.Regexp
	}

	// SelectionInput carries the raw, uncompiled selection from the CLI layer.
	SelectionInput struct {
		Groups  []string
		Include []string
		Exclude []string
		Direct  []string
	}

	// InvalidPatternError is returned when a selection pattern fails to compile.
	InvalidPatternError struct {
		Kind    string
		Pattern string
		Cause   error
	}
)

// NewSelection compiles the raw patterns. When neither groups nor direct
// patterns are given, the selection defaults to AllServices so that include
// and exclude patterns filter the whole registry.
func NewSelection(in SelectionInput) (Selection, error) {
	sel := Selection{Groups: slices.Clone(in.Groups)}

	var errs []error
	compile := func(kind string, patterns []string) []*regexp.Regexp {
		out := make([]*regexp.Regexp, 0, len(patterns))
		for _, p := range patterns {
			re, err := regexp.Compile(p)
			if err != nil {
				errs = append(errs, &InvalidPatternError{Kind: kind, Pattern: p, Cause: err})
				continue
			}
			out = append(out, re)
		}
		return out
	}
	sel.Include = compile("include", in.Include)
	sel.Exclude = compile("exclude", in.Exclude)
	sel.Direct = compile("direct", in.Direct)
	if len(errs) > 0 {
		return Selection{}, errors.Join(errs...)
	}

	if len(sel.Groups) == 0 && len(sel.Direct) == 0 {
		sel.Groups = []string{AllServices}
	}
	return sel, nil
}

// SelectsAll reports whether the AllServices sentinel is among the groups.
func (s Selection) SelectsAll() bool {
	return slices.Contains(s.Groups, AllServices)
}

// Error implements the error interface.
func (e *InvalidPatternError) Error() string {
	return fmt.Sprintf("invalid %s pattern %q: %v", e.Kind, e.Pattern, e.Cause)
}

// Unwrap returns ErrInvalidPattern for errors.Is() compatibility.
func (e *InvalidPatternError) Unwrap() error { return ErrInvalidPattern }
