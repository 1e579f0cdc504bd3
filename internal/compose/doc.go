// SPDX-License-Identifier: MPL-2.0

// Package compose locates the compose front-end (the docker compose plugin,
// the standalone docker-compose binary or podman compose) and builds child
// processes from shell-style command lines without invoking a shell.
package compose
