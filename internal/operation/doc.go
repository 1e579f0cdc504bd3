// SPDX-License-Identifier: MPL-2.0

// Package operation holds the static catalog of compose operations and turns
// the flags of one invocation into an ordered argument list.
//
// Every flag has a Placement. Prefix values come first, then inline switches
// and valued options, then suffix values; within each bucket flags follow
// catalog order, so the same flags always render to the same command line.
package operation
