// SPDX-License-Identifier: MPL-2.0

// Package registry loads the services file that maps group names to
// servicedef.ServiceDefinition values.
//
// The canonical format is CUE, validated against the embedded #Services
// schema. YAML and TOML files with the same shape are accepted as well:
//
//	services:
//	  - name: web
//	    path: ["./apps/*"]
//	    file: ["compose.yml"]
//	    depth: unbounded
package registry
