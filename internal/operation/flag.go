// SPDX-License-Identifier: MPL-2.0

package operation

import (
	"fmt"

	"github.com/servicecmd/servicecmd/pkg/types"
)

const (
	// KindString flags carry a free-form value.
	KindString ValueKind = iota + 1
	// KindBool flags are switches; a false value renders nothing.
	KindBool
)

const (
	// PrefixValue places the raw value before every other argument.
	PrefixValue Placement = iota + 1
	// SuffixValue places the raw value after every other argument.
	SuffixValue
	// InlineSwitch renders the flag name alone, ignoring any value.
	InlineSwitch
	// InlineValued renders the flag name followed by its value.
	InlineValued
)

type (
	// FlagName is the catalog key of a flag and its command-line spelling.
	FlagName string

	// ValueKind is the type of value a flag accepts.
	ValueKind int

	// Placement decides where, and in which form, an active flag is rendered.
	Placement int

	// FlagSpec describes how one flag is rendered into arguments.
	FlagSpec struct {
		Name        FlagName
		Kind        ValueKind
		Placement   Placement
		Description types.DescriptionText
	}
)

// Option renders the flag name as a command-line option: "-x" for single
// character names, "--name" otherwise.
func (n FlagName) Option() string {
	if len(n) == 1 {
		return "-" + string(n)
	}
	return "--" + string(n)
}

func (n FlagName) String() string { return string(n) }

func (k ValueKind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindBool:
		return "bool"
	default:
		return fmt.Sprintf("ValueKind(%d)", int(k))
	}
}

func (p Placement) String() string {
	switch p {
	case PrefixValue:
		return "prefix"
	case SuffixValue:
		return "suffix"
	case InlineSwitch:
		return "switch"
	case InlineValued:
		return "valued"
	default:
		return fmt.Sprintf("Placement(%d)", int(p))
	}
}

// Validate checks that the spec has a name, a known kind and a known placement
// consistent with the kind.
func (f FlagSpec) Validate() error {
	if f.Name == "" {
		return fmt.Errorf("flag name must not be empty")
	}
	if ok, errs := f.Description.IsValid(); !ok {
		return fmt.Errorf("flag %s: %w", f.Name, errs[0])
	}
	switch f.Kind {
	case KindString, KindBool:
	default:
		return fmt.Errorf("flag %s: unknown value kind %s", f.Name, f.Kind)
	}
	switch f.Placement {
	case InlineSwitch:
		if f.Kind != KindBool {
			return fmt.Errorf("flag %s: switch placement requires a bool flag", f.Name)
		}
	case PrefixValue, SuffixValue, InlineValued:
		if f.Kind != KindString {
			return fmt.Errorf("flag %s: %s placement requires a string flag", f.Name, f.Placement)
		}
	default:
		return fmt.Errorf("flag %s: unknown placement %s", f.Name, f.Placement)
	}
	return nil
}
