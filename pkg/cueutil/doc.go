// SPDX-License-Identifier: MPL-2.0

// Package cueutil decodes user-supplied CUE documents against an embedded
// schema and renders Go values back to CUE.
//
// The configuration file and the services file go through the same flow:
// compile the schema, compile the user data and unify it with the root
// definition, validate, then decode.
//
//	//go:embed services_schema.cue
//	var schema []byte
//
//	file, err := cueutil.Decode[servicesFile](schema, data, "#Services",
//	    cueutil.WithFilename("services.cue"))
package cueutil
