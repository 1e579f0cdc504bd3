// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"strings"
	"testing"
)

const testSchema = `
#Project: {
	name:   string & !=""
	depth:  int & >=0 | *1
	files?: [...string]
}
`

type testProject struct {
	Name  string   `json:"name"`
	Depth int      `json:"depth"`
	Files []string `json:"files,omitempty"`
}

func TestDecode(t *testing.T) {
	t.Parallel()

	got, err := Decode[testProject]([]byte(testSchema), []byte(`name: "web"`), "#Project")
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	if got.Name != "web" || got.Depth != 1 {
		t.Errorf("Decode() = %+v, want name=web depth=1", got)
	}
}

func TestDecode_ValidationErrorHasPath(t *testing.T) {
	t.Parallel()

	_, err := Decode[testProject]([]byte(testSchema), []byte("name: \"web\"\ndepth: -3\n"), "#Project",
		WithFilename("services.cue"))
	if err == nil {
		t.Fatal("expected validation error")
	}
	msg := err.Error()
	if !strings.HasPrefix(msg, "services.cue:") {
		t.Errorf("error %q does not start with the file name", msg)
	}
	if !strings.Contains(msg, "depth") {
		t.Errorf("error %q does not mention the field", msg)
	}
}

func TestDecode_SyntaxError(t *testing.T) {
	t.Parallel()

	_, err := Decode[testProject]([]byte(testSchema), []byte(`name: "web`), "#Project")
	if err == nil {
		t.Fatal("expected syntax error")
	}
}

func TestDecode_FileTooLarge(t *testing.T) {
	t.Parallel()

	data := []byte(`name: "` + strings.Repeat("x", 64) + `"`)
	_, err := Decode[testProject]([]byte(testSchema), data, "#Project", WithMaxFileSize(16))
	if err == nil || !strings.Contains(err.Error(), "exceeds maximum") {
		t.Fatalf("error = %v, want size error", err)
	}
}

func TestEncode(t *testing.T) {
	t.Parallel()

	out, err := Encode(testProject{Name: "web", Depth: 2})
	if err != nil {
		t.Fatalf("Encode() error: %v", err)
	}
	s := string(out)
	if !strings.Contains(s, `name:  "web"`) && !strings.Contains(s, `name: "web"`) {
		t.Errorf("Encode() = %q, missing name field", s)
	}

	back, err := Decode[testProject]([]byte(testSchema), out, "#Project")
	if err != nil {
		t.Fatalf("decode encoded output: %v", err)
	}
	if back.Depth != 2 {
		t.Errorf("depth = %d after re-decoding, want 2", back.Depth)
	}
}

func TestFieldPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   []string
		want string
	}{
		{nil, ""},
		{[]string{"compose"}, "compose"},
		{[]string{"services", "0", "path"}, "services[0].path"},
		{[]string{"ui", "verbose"}, "ui.verbose"},
	}
	for _, tt := range tests {
		if got := fieldPath(tt.in); got != tt.want {
			t.Errorf("fieldPath(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
