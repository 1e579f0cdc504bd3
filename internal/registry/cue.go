// SPDX-License-Identifier: MPL-2.0

package registry

import (
	"bytes"
	_ "embed"
	"fmt"

	"github.com/servicecmd/servicecmd/pkg/cueutil"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

//go:embed services_schema.cue
var servicesSchema []byte

func decodeCUE(data []byte, filename string) (*servicesFile, error) {
	return cueutil.Decode[servicesFile](servicesSchema, data, "#Services", cueutil.WithFilename(filename))
}

func decodeYAML(data []byte) (*servicesFile, error) {
	if err := cueutil.CheckFileSize(data, cueutil.DefaultMaxFileSize, "services file"); err != nil {
		return nil, err
	}
	var out servicesFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&out); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	return &out, nil
}

func decodeTOML(data []byte) (*servicesFile, error) {
	if err := cueutil.CheckFileSize(data, cueutil.DefaultMaxFileSize, "services file"); err != nil {
		return nil, err
	}
	var out servicesFile
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&out); err != nil {
		return nil, fmt.Errorf("decode toml: %w", err)
	}
	return &out, nil
}
