// SPDX-License-Identifier: MPL-2.0

// Package config handles application configuration using Viper with CUE as the file format.
//
// Configuration is loaded from config.cue in the platform config directory
// ($XDG_CONFIG_HOME/servicecmd on Linux, ~/Library/Application Support/servicecmd
// on macOS, %APPDATA%\servicecmd on Windows), falling back to ./config.cue.
// Files are validated against an embedded CUE schema (config_schema.cue), and
// SERVICECMD_* environment variables override file values.
package config
