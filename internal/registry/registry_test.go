// SPDX-License-Identifier: MPL-2.0

package registry

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/servicecmd/servicecmd/pkg/servicedef"
)

func writeServicesFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestFileLoad_Formats(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		file    string
		content string
	}{
		{
			name: "cue",
			file: "services.cue",
			content: `services: [
	{name: "web", path: ["./apps/*"], file: ["compose.yml"], depth: "unbounded"},
	{path: ["./infra"]},
]
`,
		},
		{
			name: "yaml",
			file: "services.yaml",
			content: `services:
  - name: web
    path: ["./apps/*"]
    file: ["compose.yml"]
    depth: unbounded
  - path: ["./infra"]
`,
		},
		{
			name: "toml",
			file: "services.toml",
			content: `[[services]]
name = "web"
path = ["./apps/*"]
file = ["compose.yml"]
depth = 0

[[services]]
path = ["./infra"]
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			path := writeServicesFile(t, tt.file, tt.content)
			defs, err := File{Path: path}.Load(context.Background())
			if err != nil {
				t.Fatalf("Load() error: %v", err)
			}
			if len(defs) != 2 {
				t.Fatalf("Load() returned %d definitions, want 2", len(defs))
			}

			web := defs["web"]
			if !web.Depth.IsUnbounded() {
				t.Errorf("web depth = %v, want unbounded", web.Depth)
			}
			if !slices.Equal(web.Files, []string{"compose.yml"}) {
				t.Errorf("web files = %v", web.Files)
			}

			infra, ok := defs["./infra"]
			if !ok {
				t.Fatalf("unnamed definition not keyed by its first path: %v", defs)
			}
			if infra.Depth != servicedef.DefaultDepth {
				t.Errorf("infra depth = %v, want default", infra.Depth)
			}
			if !slices.Equal(infra.Files, []string{servicedef.DefaultComposeFile}) {
				t.Errorf("infra files = %v, want default compose file", infra.Files)
			}
		})
	}
}

func TestFileLoad_SchemaViolation(t *testing.T) {
	t.Parallel()

	path := writeServicesFile(t, "services.cue", `services: [{name: "all", path: ["./x"]}]`)
	_, err := File{Path: path}.Load(context.Background())
	if !errors.Is(err, ErrServicesFileInvalid) {
		t.Fatalf("error = %v, want ErrServicesFileInvalid", err)
	}
}

func TestFileLoad_DuplicateNames(t *testing.T) {
	t.Parallel()

	path := writeServicesFile(t, "services.yml", `services:
  - {name: api, path: [a]}
  - {name: api, path: [b]}
`)
	_, err := File{Path: path}.Load(context.Background())
	if !errors.Is(err, ErrServicesFileInvalid) {
		t.Fatalf("error = %v, want ErrServicesFileInvalid", err)
	}
}

func TestFileLoad_NegativeDepth(t *testing.T) {
	t.Parallel()

	path := writeServicesFile(t, "services.toml", "[[services]]\nname = \"api\"\npath = [\"a\"]\ndepth = -1\n")
	_, err := File{Path: path}.Load(context.Background())
	if !errors.Is(err, servicedef.ErrInvalidRecursionDepth) {
		t.Fatalf("error = %v, want ErrInvalidRecursionDepth", err)
	}
}

func TestFileLoad_Missing(t *testing.T) {
	t.Parallel()

	_, err := File{Path: filepath.Join(t.TempDir(), "nope.cue")}.Load(context.Background())
	if !errors.Is(err, ErrServicesFileNotFound) {
		t.Fatalf("error = %v, want ErrServicesFileNotFound", err)
	}
}

func TestFileLoad_UnsupportedExtension(t *testing.T) {
	t.Parallel()

	path := writeServicesFile(t, "services.ini", "")
	_, err := File{Path: path}.Load(context.Background())
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("error = %v, want ErrUnsupportedFormat", err)
	}
}

func TestStaticLoad_ReturnsCopy(t *testing.T) {
	t.Parallel()

	reg := Static{"web": {Name: "web", Paths: []string{"a"}}}
	defs, err := reg.Load(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	delete(defs, "web")
	if _, ok := reg["web"]; !ok {
		t.Error("mutating the loaded map changed the registry")
	}
}

func TestDepthOf(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      any
		want    servicedef.RecursionDepth
		wantErr bool
	}{
		{nil, servicedef.DefaultDepth, false},
		{false, servicedef.DefaultDepth, false},
		{true, servicedef.Unbounded, false},
		{"unbounded", servicedef.Unbounded, false},
		{3, 3, false},
		{int64(2), 2, false},
		{float64(4), 4, false},
		{1.5, 0, true},
		{-1, 0, true},
		{[]string{"x"}, 0, true},
	}
	for _, tt := range tests {
		got, err := depthOf(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("depthOf(%v) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("depthOf(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
