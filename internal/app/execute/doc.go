// SPDX-License-Identifier: MPL-2.0

// Package execute runs one servicecmd invocation end to end. It decouples
// the CLI layer from the resolution, argument building and orchestration
// stages, passing each stage's output explicitly to the next.
package execute
