// SPDX-License-Identifier: MPL-2.0

// Package types holds small value types shared by the operation catalog, the
// orchestrator and the CLI. It imports only the standard library.
package types
