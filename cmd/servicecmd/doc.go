// SPDX-License-Identifier: MPL-2.0

// Package cmd contains all CLI commands for servicecmd.
//
// Every operation of the compose catalog becomes a subcommand whose flags are
// generated from the catalog. The services and config commands inspect the
// services file and the effective configuration.
package cmd
