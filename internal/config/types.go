// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// ComposeEngineAuto tries every supported front-end in order.
	ComposeEngineAuto ComposeEngine = "auto"
	// ComposeEngineDocker uses the docker compose plugin.
	ComposeEngineDocker ComposeEngine = "docker"
	// ComposeEngineDockerCompose uses the standalone docker-compose binary.
	ComposeEngineDockerCompose ComposeEngine = "docker-compose"
	// ComposeEnginePodman uses podman compose.
	ComposeEnginePodman ComposeEngine = "podman"

	// ColorSchemeAuto detects the terminal color scheme automatically.
	ColorSchemeAuto ColorScheme = "auto"
	// ColorSchemeDark forces dark color scheme.
	ColorSchemeDark ColorScheme = "dark"
	// ColorSchemeLight forces light color scheme.
	ColorSchemeLight ColorScheme = "light"
)

var (
	// ErrInvalidComposeEngine is returned when a ComposeEngine value is not recognized.
	ErrInvalidComposeEngine = errors.New("invalid compose engine")
	// ErrInvalidColorScheme is returned when a ColorScheme value is not recognized.
	ErrInvalidColorScheme = errors.New("invalid color scheme")
	// ErrInvalidConcurrency is returned for a negative concurrency limit.
	ErrInvalidConcurrency = errors.New("invalid concurrency")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// ComposeEngine selects the compose front-end. Defined locally so config
	// does not depend on the engine implementation.
	ComposeEngine string

	// ColorScheme specifies the terminal color scheme preference.
	ColorScheme string

	// InvalidConfigError is returned when a Config has invalid fields.
	// It wraps ErrInvalidConfig for errors.Is() compatibility and collects
	// the field-level validation errors.
	InvalidConfigError struct {
		FieldErrors []error
	}

	// ComposeConfig configures the compose front-end.
	ComposeConfig struct {
		Engine ComposeEngine `json:"engine" mapstructure:"engine"`
		// Binary replaces the PATH lookup of the engine's executable.
		Binary string `json:"binary,omitempty" mapstructure:"binary"`
	}

	// UIConfig configures terminal output.
	UIConfig struct {
		ColorScheme ColorScheme `json:"color_scheme" mapstructure:"color_scheme"`
		Verbose     bool        `json:"verbose" mapstructure:"verbose"`
	}

	// Config is the effective configuration after defaults, the config file
	// and SERVICECMD_* environment variables have been merged.
	Config struct {
		Compose ComposeConfig `json:"compose" mapstructure:"compose"`
		// ServicesFile is absolute after loading.
		ServicesFile string   `json:"services_file" mapstructure:"services_file"`
		Concurrency  int      `json:"concurrency" mapstructure:"concurrency"`
		UI           UIConfig `json:"ui" mapstructure:"ui"`

		// Source is the config file that was loaded, empty when only
		// defaults and environment apply.
		Source string `json:"-" mapstructure:"-"`
	}
)

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Compose:     ComposeConfig{Engine: ComposeEngineAuto},
		Concurrency: 0,
		UI: UIConfig{
			ColorScheme: ColorSchemeAuto,
			Verbose:     false,
		},
	}
}

// Validate returns an error when e is not a known engine.
func (e ComposeEngine) Validate() error {
	switch e {
	case ComposeEngineAuto, ComposeEngineDocker, ComposeEngineDockerCompose, ComposeEnginePodman:
		return nil
	default:
		return fmt.Errorf("%w: %q (expected auto, docker, docker-compose or podman)", ErrInvalidComposeEngine, string(e))
	}
}

// Validate returns an error when c is not a known scheme.
func (c ColorScheme) Validate() error {
	switch c {
	case ColorSchemeAuto, ColorSchemeDark, ColorSchemeLight:
		return nil
	default:
		return fmt.Errorf("%w: %q (expected auto, dark or light)", ErrInvalidColorScheme, string(c))
	}
}

// Validate checks the values the schema cannot see, such as environment
// overrides applied after the file was validated.
func (c *Config) Validate() error {
	var errs []error
	if err := c.Compose.Engine.Validate(); err != nil {
		errs = append(errs, err)
	}
	if c.Compose.Binary != "" && strings.TrimSpace(c.Compose.Binary) == "" {
		errs = append(errs, errors.New("compose.binary must not be blank"))
	}
	if c.Concurrency < 0 {
		errs = append(errs, fmt.Errorf("%w: %d (must be >= 0)", ErrInvalidConcurrency, c.Concurrency))
	}
	if err := c.UI.ColorScheme.Validate(); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return &InvalidConfigError{FieldErrors: errs}
	}
	return nil
}

func (e *InvalidConfigError) Error() string {
	if len(e.FieldErrors) == 1 {
		return "invalid config: " + e.FieldErrors[0].Error()
	}
	msgs := make([]string, len(e.FieldErrors))
	for i, err := range e.FieldErrors {
		msgs[i] = err.Error()
	}
	return fmt.Sprintf("invalid config: %d field errors: %s", len(e.FieldErrors), strings.Join(msgs, "; "))
}

// Unwrap returns ErrInvalidConfig and the field errors.
func (e *InvalidConfigError) Unwrap() []error {
	return append([]error{ErrInvalidConfig}, e.FieldErrors...)
}
