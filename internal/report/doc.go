// SPDX-License-Identifier: MPL-2.0

// Package report routes user-visible output through a single Reporter sink.
//
// Logger renders entries on a terminal with charmbracelet/log, prefixing
// each line with the styled label of the compose file that produced it.
// Recorder captures entries for tests. LineWriter adapts a child process's
// output streams to line-sized entries.
package report
