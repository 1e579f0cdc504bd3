// SPDX-License-Identifier: MPL-2.0

package servicedef

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const (
	// AllServices is the sentinel group name that selects every registered service.
	AllServices = "all"

	// DefaultComposeFile is used when a definition declares no file patterns.
	DefaultComposeFile = "docker-compose.yml"

	// Unbounded disables the recursion limit when globbing a definition's paths.
	Unbounded RecursionDepth = 0

	// DefaultDepth restricts matching to the immediate directory of a path pattern.
	DefaultDepth RecursionDepth = 1

	unboundedKeyword = "unbounded"
)

var (
	// ErrInvalidRecursionDepth is the sentinel error wrapped by InvalidRecursionDepthError.
	ErrInvalidRecursionDepth = errors.New("invalid recursion depth")
	// ErrInvalidServiceName is the sentinel error wrapped by InvalidServiceNameError.
	ErrInvalidServiceName = errors.New("invalid service name")
	// ErrInvalidServiceDefinition is the sentinel error wrapped by InvalidServiceDefinitionError.
	ErrInvalidServiceDefinition = errors.New("invalid service definition")
)

type (
	// RecursionDepth bounds how many directory levels below a path pattern's
	// static base a matched file may live. Unbounded (0) disables the limit.
	RecursionDepth int

	// InvalidRecursionDepthError is returned when a RecursionDepth is negative
	// or cannot be parsed.
	InvalidRecursionDepthError struct {
		Value string
	}

	// InvalidServiceNameError is returned when a service name is empty,
	// whitespace-only or collides with the AllServices sentinel.
	InvalidServiceNameError struct {
		Value string
	}

	// InvalidServiceDefinitionError collects the field errors of a ServiceDefinition.
	InvalidServiceDefinitionError struct {
		Name        string
		FieldErrors []error
	}

	// ServiceDefinition describes where to search for the project files of one
	// logical service group.
	ServiceDefinition struct {
		// Name is the unique registry key.
		Name string `json:"name" yaml:"name" toml:"name"`
		// Paths are directory patterns (literal or glob).
		Paths []string `json:"path" yaml:"path" toml:"path"`
		// Files are file name patterns joined onto every path.
		Files []string `json:"file" yaml:"file" toml:"file"`
		// Depth bounds the directory traversal below each path pattern.
		Depth RecursionDepth `json:"depth" yaml:"depth" toml:"depth"`
	}
)

// ParseRecursionDepth converts the textual forms accepted in services files.
// "", "false" and "1" yield DefaultDepth; "0", "true" and "unbounded" yield Unbounded.
func ParseRecursionDepth(s string) (RecursionDepth, error) {
	switch v := strings.TrimSpace(strings.ToLower(s)); v {
	case "", "false":
		return DefaultDepth, nil
	case "true", unboundedKeyword:
		return Unbounded, nil
	default:
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return 0, &InvalidRecursionDepthError{Value: s}
		}
		return RecursionDepth(n), nil
	}
}

// IsUnbounded reports whether the depth limit is disabled.
func (d RecursionDepth) IsUnbounded() bool { return d == Unbounded }

// Validate returns an error if the depth is negative.
func (d RecursionDepth) Validate() error {
	if d < 0 {
		return &InvalidRecursionDepthError{Value: strconv.Itoa(int(d))}
	}
	return nil
}

// String renders the depth the way it is written in services files.
func (d RecursionDepth) String() string {
	if d.IsUnbounded() {
		return unboundedKeyword
	}
	return strconv.Itoa(int(d))
}

// Error implements the error interface.
func (e *InvalidRecursionDepthError) Error() string {
	return fmt.Sprintf("invalid recursion depth %q (expected %q or an integer >= 0)", e.Value, unboundedKeyword)
}

// Unwrap returns ErrInvalidRecursionDepth for errors.Is() compatibility.
func (e *InvalidRecursionDepthError) Unwrap() error { return ErrInvalidRecursionDepth }

// Error implements the error interface.
func (e *InvalidServiceNameError) Error() string {
	if e.Value == AllServices {
		return fmt.Sprintf("invalid service name %q: reserved for selecting every service", e.Value)
	}
	return fmt.Sprintf("invalid service name %q: must be non-empty", e.Value)
}

// Unwrap returns ErrInvalidServiceName for errors.Is() compatibility.
func (e *InvalidServiceNameError) Unwrap() error { return ErrInvalidServiceName }

// Error implements the error interface.
func (e *InvalidServiceDefinitionError) Error() string {
	return fmt.Sprintf("invalid service definition %q: %d field error(s)", e.Name, len(e.FieldErrors))
}

// Unwrap returns ErrInvalidServiceDefinition for errors.Is() compatibility.
func (e *InvalidServiceDefinitionError) Unwrap() error { return ErrInvalidServiceDefinition }

// Normalize fills in the defaults a services file may omit: the name falls
// back to the first path and the file list to DefaultComposeFile.
func (d ServiceDefinition) Normalize() ServiceDefinition {
	out := ServiceDefinition{
		Name:  d.Name,
		Paths: append([]string(nil), d.Paths...),
		Files: append([]string(nil), d.Files...),
		Depth: d.Depth,
	}
	if strings.TrimSpace(out.Name) == "" && len(out.Paths) > 0 {
		out.Name = out.Paths[0]
	}
	if len(out.Files) == 0 {
		out.Files = []string{DefaultComposeFile}
	}
	return out
}

// Validate checks the name, that at least one path is declared and that the
// depth is not negative.
func (d ServiceDefinition) Validate() error {
	var errs []error
	if strings.TrimSpace(d.Name) == "" || d.Name == AllServices {
		errs = append(errs, &InvalidServiceNameError{Value: d.Name})
	}
	if len(d.Paths) == 0 {
		errs = append(errs, fmt.Errorf("at least one path is required"))
	}
	for i, p := range d.Paths {
		if strings.TrimSpace(p) == "" {
			errs = append(errs, fmt.Errorf("path[%d] must be non-empty", i))
		}
	}
	for i, f := range d.Files {
		if strings.TrimSpace(f) == "" {
			errs = append(errs, fmt.Errorf("file[%d] must be non-empty", i))
		}
	}
	if err := d.Depth.Validate(); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return &InvalidServiceDefinitionError{Name: d.Name, FieldErrors: errs}
	}
	return nil
}
