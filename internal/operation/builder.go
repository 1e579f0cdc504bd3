// SPDX-License-Identifier: MPL-2.0

package operation

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"mvdan.cc/sh/v3/syntax"
)

var (
	// ErrIllegalFlag is the sentinel error wrapped by IllegalFlagError.
	ErrIllegalFlag = errors.New("illegal flag")
	// ErrMissingRequiredFlag is the sentinel error wrapped by MissingRequiredFlagError.
	ErrMissingRequiredFlag = errors.New("missing required flag")
	// ErrInvalidFlagValue is the sentinel error wrapped by InvalidFlagValueError.
	ErrInvalidFlagValue = errors.New("invalid flag value")
	// ErrTooManyServices is the sentinel error wrapped by TooManyServicesError.
	ErrTooManyServices = errors.New("too many services")
)

type (
	// IllegalFlagError lists every active flag the operation does not allow.
	IllegalFlagError struct {
		Operation string
		Flags     []FlagName
	}

	// MissingRequiredFlagError lists every required flag that is not active.
	MissingRequiredFlagError struct {
		Operation string
		Flags     []FlagName
	}

	// InvalidFlagValueError is returned for a value that cannot be rendered.
	InvalidFlagValueError struct {
		Flag  FlagName
		Value string
		Cause error
	}

	// TooManyServicesError is returned when more files resolved than the
	// operation's ServiceLimit permits.
	TooManyServicesError struct {
		Operation string
		Limit     int
		Count     int
	}
)

// Build validates flags against op and renders them as prefix, inline and
// suffix arguments, each bucket in catalog order. Every problem is reported:
// illegal and missing flags are joined into one error.
func (c *Catalog) Build(op Spec, flags map[FlagName]string) ([]string, error) {
	var illegal, missing []FlagName
	for name := range flags {
		if !op.Allows(name) {
			illegal = append(illegal, name)
		}
	}
	slices.Sort(illegal)
	for _, name := range op.Required {
		if _, ok := flags[name]; !ok {
			missing = append(missing, name)
		}
	}

	var errs []error
	if len(illegal) > 0 {
		errs = append(errs, &IllegalFlagError{Operation: op.Key, Flags: illegal})
	}
	if len(missing) > 0 {
		errs = append(errs, &MissingRequiredFlagError{Operation: op.Key, Flags: missing})
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	var prefix, middle, suffix []string
	for _, spec := range c.flags {
		value, active := flags[spec.Name]
		if !active {
			continue
		}
		switch spec.Placement {
		case PrefixValue:
			prefix = append(prefix, value)
		case SuffixValue:
			suffix = append(suffix, value)
		case InlineSwitch:
			on, err := switchValue(value)
			if err != nil {
				return nil, &InvalidFlagValueError{Flag: spec.Name, Value: value, Cause: err}
			}
			if on {
				middle = append(middle, spec.Name.Option())
			}
		case InlineValued:
			quoted, err := syntax.Quote(value, syntax.LangBash)
			if err != nil {
				return nil, &InvalidFlagValueError{Flag: spec.Name, Value: value, Cause: err}
			}
			middle = append(middle, spec.Name.Option(), quoted)
		default:
			panic(fmt.Sprintf("unhandled placement %s for flag %s", spec.Placement, spec.Name))
		}
	}

	args := make([]string, 0, len(prefix)+len(middle)+len(suffix))
	args = append(args, prefix...)
	args = append(args, middle...)
	return append(args, suffix...), nil
}

// Build renders flags for op using the default catalog.
func Build(op Spec, flags map[FlagName]string) ([]string, error) {
	return Default().Build(op, flags)
}

// CheckServiceLimit fails when count exceeds the operation's ServiceLimit.
func CheckServiceLimit(op Spec, count int) error {
	if op.ServiceLimit > 0 && count > op.ServiceLimit {
		return &TooManyServicesError{Operation: op.Key, Limit: op.ServiceLimit, Count: count}
	}
	return nil
}

// switchValue treats an empty value as set.
func switchValue(v string) (bool, error) {
	if v == "" {
		return true, nil
	}
	return strconv.ParseBool(v)
}

func joinFlags(flags []FlagName) string {
	s := make([]string, len(flags))
	for i, f := range flags {
		s[i] = f.Option()
	}
	return strings.Join(s, ", ")
}

func (e *IllegalFlagError) Error() string {
	return fmt.Sprintf("operation %q does not accept %s", e.Operation, joinFlags(e.Flags))
}

// Unwrap returns ErrIllegalFlag for errors.Is() compatibility.
func (e *IllegalFlagError) Unwrap() error { return ErrIllegalFlag }

func (e *MissingRequiredFlagError) Error() string {
	return fmt.Sprintf("operation %q requires %s", e.Operation, joinFlags(e.Flags))
}

// Unwrap returns ErrMissingRequiredFlag for errors.Is() compatibility.
func (e *MissingRequiredFlagError) Unwrap() error { return ErrMissingRequiredFlag }

func (e *InvalidFlagValueError) Error() string {
	return fmt.Sprintf("invalid value %q for %s: %v", e.Value, e.Flag.Option(), e.Cause)
}

// Unwrap returns ErrInvalidFlagValue for errors.Is() compatibility.
func (e *InvalidFlagValueError) Unwrap() error { return ErrInvalidFlagValue }

func (e *TooManyServicesError) Error() string {
	return fmt.Sprintf("operation %q runs against at most %d service file(s), but %d matched", e.Operation, e.Limit, e.Count)
}

// Unwrap returns ErrTooManyServices for errors.Is() compatibility.
func (e *TooManyServicesError) Unwrap() error { return ErrTooManyServices }
