// SPDX-License-Identifier: MPL-2.0

// Package resolve turns a servicedef.Selection into the deduplicated list of
// compose files to operate on, and groups those files by directory for the
// orchestrator.
//
// Unknown group names, empty groups and include patterns that match nothing
// are non-fatal: they are returned as Diagnostics and reported as warnings.
// An empty final result is fatal and reported as a NoMatchError.
package resolve
