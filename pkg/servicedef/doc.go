// SPDX-License-Identifier: MPL-2.0

// Package servicedef defines the service definitions read from the services
// file and the per-invocation Selection used to pick among them.
//
// A ServiceDefinition names a group of compose projects by a set of path
// patterns and file patterns; the cartesian product of the two is globbed on
// disk with a bounded recursion depth. Definitions are loaded once per run and
// treated as read-only by the resolver and the orchestrator.
package servicedef
