// SPDX-License-Identifier: MPL-2.0

package compose

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"mvdan.cc/sh/v3/syntax"
)

const (
	// EngineAuto tries docker compose, docker-compose and podman compose in order.
	EngineAuto EngineType = "auto"
	// EngineDocker uses the docker compose plugin.
	EngineDocker EngineType = "docker"
	// EngineDockerCompose uses the standalone docker-compose binary.
	EngineDockerCompose EngineType = "docker-compose"
	// EnginePodman uses podman compose.
	EnginePodman EngineType = "podman"
)

var (
	// ErrComposeNotFound is the sentinel error wrapped by NotFoundError.
	ErrComposeNotFound = errors.New("compose front-end not found")
	// ErrInvalidEngineType is returned for an unknown EngineType.
	ErrInvalidEngineType = errors.New("invalid compose engine")
)

type (
	// EngineType names a compose front-end.
	EngineType string

	// ExecCommandFunc creates the command for a parsed argument vector.
	// Tests replace it to record spawns without running compose.
	ExecCommandFunc func(ctx context.Context, name string, arg ...string) *exec.Cmd

	// LookPathFunc resolves an executable name, like exec.LookPath.
	LookPathFunc func(file string) (string, error)

	// Option configures Detect and New.
	Option func(*Engine)

	// Engine is a detected compose front-end.
	Engine struct {
		typ         EngineType
		frontEnd    string
		execCommand ExecCommandFunc
		lookPath    LookPathFunc
	}

	// NotFoundError is returned when no usable compose front-end exists.
	NotFoundError struct {
		Engine EngineType
		Reason string
	}
)

// WithExecCommand overrides how commands are created.
func WithExecCommand(fn ExecCommandFunc) Option {
	return func(e *Engine) { e.execCommand = fn }
}

// WithLookPath overrides executable lookup during detection.
func WithLookPath(fn LookPathFunc) Option {
	return func(e *Engine) { e.lookPath = fn }
}

// New returns an Engine with a fixed front-end command, without detection.
// frontEnd is inserted verbatim into command lines, e.g. "docker compose".
func New(typ EngineType, frontEnd string, opts ...Option) *Engine {
	e := &Engine{typ: typ, frontEnd: frontEnd, execCommand: exec.CommandContext, lookPath: exec.LookPath}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Detect finds the compose front-end for typ. A non-empty binary replaces
// the executable that would otherwise be looked up on PATH.
func Detect(ctx context.Context, typ EngineType, binary string, opts ...Option) (*Engine, error) {
	e := New(typ, "", opts...)

	if err := typ.Validate(); err != nil {
		return nil, err
	}

	candidates := []EngineType{typ}
	if typ == EngineAuto || typ == "" {
		candidates = []EngineType{EngineDocker, EngineDockerCompose, EnginePodman}
	}

	var reasons []string
	for _, c := range candidates {
		frontEnd, err := e.check(ctx, c, binary)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			reasons = append(reasons, err.Error())
			continue
		}
		e.typ = c
		e.frontEnd = frontEnd
		return e, nil
	}
	return nil, &NotFoundError{Engine: typ, Reason: strings.Join(reasons, "; ")}
}

// check returns the front-end command for c, checking that the executable
// exists and, for plugin-style front-ends, that the compose subcommand works.
func (e *Engine) check(ctx context.Context, c EngineType, binary string) (string, error) {
	exe := binary
	if exe == "" {
		exe = c.executable()
	}
	path, err := e.lookPath(exe)
	if err != nil {
		return "", fmt.Errorf("%s: %w", exe, err)
	}

	quoted, err := syntax.Quote(path, syntax.LangBash)
	if err != nil {
		return "", fmt.Errorf("%s: %w", path, err)
	}
	if c == EngineDockerCompose {
		return quoted, nil
	}

	if err := e.execCommand(ctx, path, "compose", "version").Run(); err != nil {
		return "", fmt.Errorf("%s compose: %w", exe, err)
	}
	return quoted + " compose", nil
}

// Type returns the detected front-end kind.
func (e *Engine) Type() EngineType { return e.typ }

// FrontEnd returns the command-line prefix that invokes compose.
func (e *Engine) FrontEnd() string { return e.frontEnd }

// Validate returns an error for an unknown engine type. The empty value is
// treated as EngineAuto.
func (t EngineType) Validate() error {
	switch t {
	case "", EngineAuto, EngineDocker, EngineDockerCompose, EnginePodman:
		return nil
	default:
		return fmt.Errorf("%w: %q (expected auto, docker, docker-compose or podman)", ErrInvalidEngineType, string(t))
	}
}

func (t EngineType) executable() string {
	switch t {
	case EngineDockerCompose:
		return "docker-compose"
	case EnginePodman:
		return "podman"
	default:
		return "docker"
	}
}

func (e *NotFoundError) Error() string {
	name := string(e.Engine)
	if name == "" {
		name = string(EngineAuto)
	}
	return fmt.Sprintf("compose front-end %q is not available: %s", name, e.Reason)
}

// Unwrap returns ErrComposeNotFound for errors.Is() compatibility.
func (e *NotFoundError) Unwrap() error { return ErrComposeNotFound }
