// SPDX-License-Identifier: MPL-2.0

package operation

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"text/template"

	"github.com/servicecmd/servicecmd/pkg/types"

	"mvdan.cc/sh/v3/syntax"
)

const (
	// Live forwards child output to the Reporter while the child runs.
	Live OutputMode = iota + 1
	// Deferred buffers child output and flushes it after every child finished.
	Deferred
	// Headless connects the child to the caller's standard streams.
	Headless
)

// ErrUnknownOperation is the sentinel error wrapped by UnknownOperationError.
var ErrUnknownOperation = errors.New("unknown operation")

type (
	// OutputMode selects how a child's output is handled.
	OutputMode int

	// Spec describes one operation. Specs are immutable once the catalog is built.
	Spec struct {
		Key string
		// Command is a text/template rendered with CommandData; the built
		// arguments are appended to the result.
		Command     string
		Description types.DescriptionText
		// Flags lists the allowed flags.
		Flags []FlagName
		// Required lists flags that must be active. Each must also be allowed.
		Required []FlagName
		// ServiceLimit caps the number of files the operation may run against.
		// Zero means unlimited.
		ServiceLimit int
		Output       OutputMode
		// KeepOutput keeps a child's output visible after it completes.
		KeepOutput bool

		tmpl *template.Template
	}

	// CommandData is the template input of Spec.Command.
	CommandData struct {
		// Compose is the compose front-end, e.g. "docker compose".
		Compose string
		// File is the shell-quoted project file path.
		File string
	}

	// Catalog is a read-only table of operations and flags.
	Catalog struct {
		ops   []Spec
		flags []FlagSpec
		byKey map[string]int
		flag  map[FlagName]int
	}

	// UnknownOperationError is returned by Lookup for a key not in the catalog.
	UnknownOperationError struct {
		Key   string
		Known []string
	}
)

var defaultCatalog = mustNewCatalog(builtinOperations, builtinFlags)

// Default returns the built-in catalog.
func Default() *Catalog { return defaultCatalog }

// NewCatalog validates ops and flags and indexes them. Operation and flag
// order is kept as given and defines the rendering order of flags.
func NewCatalog(ops []Spec, flags []FlagSpec) (*Catalog, error) {
	c := &Catalog{
		flags: slices.Clone(flags),
		byKey: make(map[string]int, len(ops)),
		flag:  make(map[FlagName]int, len(flags)),
	}

	var errs []error
	for i, f := range c.flags {
		if err := f.Validate(); err != nil {
			errs = append(errs, err)
			continue
		}
		if _, dup := c.flag[f.Name]; dup {
			errs = append(errs, fmt.Errorf("duplicate flag %s", f.Name))
			continue
		}
		c.flag[f.Name] = i
	}

	for _, op := range ops {
		if err := c.add(op); err != nil {
			errs = append(errs, fmt.Errorf("operation %q: %w", op.Key, err))
		}
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return c, nil
}

func mustNewCatalog(ops []Spec, flags []FlagSpec) *Catalog {
	c, err := NewCatalog(ops, flags)
	if err != nil {
		panic(err)
	}
	return c
}

func (c *Catalog) add(op Spec) error {
	if op.Key == "" {
		return errors.New("key must not be empty")
	}
	if _, dup := c.byKey[op.Key]; dup {
		return errors.New("duplicate key")
	}
	if ok, errs := op.Description.IsValid(); !ok {
		return errs[0]
	}
	switch op.Output {
	case Live, Deferred, Headless:
	default:
		return fmt.Errorf("unknown output mode %s", op.Output)
	}
	if op.ServiceLimit < 0 {
		return fmt.Errorf("negative service limit %d", op.ServiceLimit)
	}
	for _, name := range op.Flags {
		if _, ok := c.flag[name]; !ok {
			return fmt.Errorf("allowed flag %s is not in the catalog", name)
		}
	}
	for _, name := range op.Required {
		if !slices.Contains(op.Flags, name) {
			return fmt.Errorf("required flag %s is not allowed", name)
		}
	}

	tmpl, err := template.New(op.Key).Option("missingkey=error").Parse(op.Command)
	if err != nil {
		return fmt.Errorf("parse command template: %w", err)
	}

	op.Flags = slices.Clone(op.Flags)
	op.Required = slices.Clone(op.Required)
	op.tmpl = tmpl
	c.byKey[op.Key] = len(c.ops)
	c.ops = append(c.ops, op)
	return nil
}

// Lookup returns the operation registered under key.
func (c *Catalog) Lookup(key string) (Spec, error) {
	i, ok := c.byKey[key]
	if !ok {
		return Spec{}, &UnknownOperationError{Key: key, Known: c.Keys()}
	}
	return c.ops[i], nil
}

// Keys returns the operation keys in declaration order.
func (c *Catalog) Keys() []string {
	keys := make([]string, len(c.ops))
	for i, op := range c.ops {
		keys[i] = op.Key
	}
	return keys
}

// Operations returns every operation in declaration order.
func (c *Catalog) Operations() []Spec { return slices.Clone(c.ops) }

// Flag returns the spec of the named flag.
func (c *Catalog) Flag(name FlagName) (FlagSpec, bool) {
	i, ok := c.flag[name]
	if !ok {
		return FlagSpec{}, false
	}
	return c.flags[i], true
}

// FlagsOf returns the specs of the flags op allows, in catalog order.
func (c *Catalog) FlagsOf(op Spec) []FlagSpec {
	var out []FlagSpec
	for _, f := range c.flags {
		if op.Allows(f.Name) {
			out = append(out, f)
		}
	}
	return out
}

// Allows reports whether name is an allowed flag of the operation.
func (s Spec) Allows(name FlagName) bool { return slices.Contains(s.Flags, name) }

// Requires reports whether name is a required flag of the operation.
func (s Spec) Requires(name FlagName) bool { return slices.Contains(s.Required, name) }

// CommandLine renders the full shell-style command line for one project
// file: the command template followed by args. The file path is quoted; args
// are appended verbatim so raw prefix and suffix values keep their shell
// meaning.
func (s Spec) CommandLine(compose, file string, args []string) (string, error) {
	if s.tmpl == nil {
		return "", fmt.Errorf("operation %q was not built by a catalog", s.Key)
	}
	quoted, err := syntax.Quote(file, syntax.LangBash)
	if err != nil {
		return "", fmt.Errorf("quote %q: %w", file, err)
	}

	var b strings.Builder
	if err := s.tmpl.Execute(&b, CommandData{Compose: compose, File: quoted}); err != nil {
		return "", fmt.Errorf("render command for %q: %w", s.Key, err)
	}
	for _, a := range args {
		b.WriteByte(' ')
		b.WriteString(a)
	}
	return b.String(), nil
}

func (m OutputMode) String() string {
	switch m {
	case Live:
		return "live"
	case Deferred:
		return "deferred"
	case Headless:
		return "headless"
	default:
		return fmt.Sprintf("OutputMode(%d)", int(m))
	}
}

func (e *UnknownOperationError) Error() string {
	return fmt.Sprintf("unknown operation %q (available: %s)", e.Key, strings.Join(e.Known, ", "))
}

// Unwrap returns ErrUnknownOperation for errors.Is() compatibility.
func (e *UnknownOperationError) Unwrap() error { return ErrUnknownOperation }
