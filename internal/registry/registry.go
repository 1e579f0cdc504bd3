// SPDX-License-Identifier: MPL-2.0

package registry

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/servicecmd/servicecmd/pkg/servicedef"

	"golang.org/x/exp/maps"
)

var (
	// ErrServicesFileNotFound is returned when the services file does not exist.
	ErrServicesFileNotFound = errors.New("services file not found")
	// ErrServicesFileInvalid is the sentinel error wrapped by ServicesFileError.
	ErrServicesFileInvalid = errors.New("invalid services file")
	// ErrUnsupportedFormat is returned for services files with an unknown extension.
	ErrUnsupportedFormat = errors.New("unsupported services file format")
)

type (
	// Registry resolves service names to their definitions. Implementations
	// return a map the caller owns.
	Registry interface {
		Load(ctx context.Context) (map[string]servicedef.ServiceDefinition, error)
	}

	// Static is an in-memory Registry.
	Static map[string]servicedef.ServiceDefinition

	// File reads definitions from a services file. The format is chosen from
	// the extension: .cue, .yaml/.yml or .toml.
	File struct {
		Path string
	}

	// ServicesFileError reports a services file that could not be decoded or
	// that contains invalid definitions.
	ServicesFileError struct {
		Path string
		Err  error
	}

	// rawService is the on-disk shape shared by every format. Depth accepts an
	// integer, a bool or the "unbounded" keyword.
	rawService struct {
		Name  string   `json:"name,omitempty" yaml:"name" toml:"name"`
		Path  []string `json:"path" yaml:"path" toml:"path"`
		File  []string `json:"file,omitempty" yaml:"file" toml:"file"`
		Depth any      `json:"depth,omitempty" yaml:"depth" toml:"depth"`
	}

	servicesFile struct {
		Services []rawService `json:"services" yaml:"services" toml:"services"`
	}
)

// Load returns a copy of the static definitions.
func (s Static) Load(ctx context.Context) (map[string]servicedef.ServiceDefinition, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return maps.Clone(map[string]servicedef.ServiceDefinition(s)), nil
}

// Load reads, decodes and validates the services file.
func (f File) Load(ctx context.Context) (map[string]servicedef.ServiceDefinition, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("load services canceled: %w", err)
	}

	data, err := os.ReadFile(f.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrServicesFileNotFound, f.Path)
		}
		return nil, fmt.Errorf("read services file: %w", err)
	}

	var decoded *servicesFile
	switch ext := strings.ToLower(filepath.Ext(f.Path)); ext {
	case ".cue":
		decoded, err = decodeCUE(data, filepath.Base(f.Path))
	case ".yaml", ".yml":
		decoded, err = decodeYAML(data)
	case ".toml":
		decoded, err = decodeTOML(data)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return nil, &ServicesFileError{Path: f.Path, Err: err}
	}

	defs, err := buildDefinitions(decoded.Services)
	if err != nil {
		return nil, &ServicesFileError{Path: f.Path, Err: err}
	}
	return defs, nil
}

func (e *ServicesFileError) Error() string {
	return fmt.Sprintf("invalid services file %s: %v", e.Path, e.Err)
}

// Unwrap exposes both the sentinel and the underlying cause.
func (e *ServicesFileError) Unwrap() []error { return []error{ErrServicesFileInvalid, e.Err} }

// buildDefinitions normalizes and validates the raw entries. All problems
// are reported together.
func buildDefinitions(raw []rawService) (map[string]servicedef.ServiceDefinition, error) {
	defs := make(map[string]servicedef.ServiceDefinition, len(raw))
	var errs []error
	for i, r := range raw {
		depth, err := depthOf(r.Depth)
		if err != nil {
			errs = append(errs, fmt.Errorf("services[%d].depth: %w", i, err))
			continue
		}
		def := servicedef.ServiceDefinition{
			Name:  strings.TrimSpace(r.Name),
			Paths: r.Path,
			Files: r.File,
			Depth: depth,
		}.Normalize()
		if err := def.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("services[%d]: %w", i, errors.Join(unwrapFields(err)...)))
			continue
		}
		if _, dup := defs[def.Name]; dup {
			errs = append(errs, fmt.Errorf("services[%d]: duplicate service name %q", i, def.Name))
			continue
		}
		defs[def.Name] = def
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return defs, nil
}

func unwrapFields(err error) []error {
	var defErr *servicedef.InvalidServiceDefinitionError
	if errors.As(err, &defErr) {
		return defErr.FieldErrors
	}
	return []error{err}
}

// depthOf accepts the numeric types produced by the CUE, YAML and TOML
// decoders as well as bools and keyword strings.
func depthOf(v any) (servicedef.RecursionDepth, error) {
	switch d := v.(type) {
	case nil:
		return servicedef.DefaultDepth, nil
	case bool:
		if d {
			return servicedef.Unbounded, nil
		}
		return servicedef.DefaultDepth, nil
	case string:
		return servicedef.ParseRecursionDepth(d)
	case int:
		return checkedDepth(int64(d))
	case int64:
		return checkedDepth(d)
	case uint64:
		return checkedDepth(int64(d))
	case float64:
		if d != float64(int64(d)) {
			return 0, &servicedef.InvalidRecursionDepthError{Value: fmt.Sprint(d)}
		}
		return checkedDepth(int64(d))
	default:
		return 0, &servicedef.InvalidRecursionDepthError{Value: fmt.Sprint(d)}
	}
}

func checkedDepth(n int64) (servicedef.RecursionDepth, error) {
	d := servicedef.RecursionDepth(n)
	if err := d.Validate(); err != nil {
		return 0, err
	}
	return d, nil
}
