// SPDX-License-Identifier: MPL-2.0

// Package testutil provides helpers shared by the package tests: fixture
// trees of compose files (ComposeTree, MustWriteFile), working-directory
// handling (MustChdir) and a concurrency-safe spawn recorder that answers
// commands with a helper process (CommandRecorder, RunHelperProcess).
package testutil
