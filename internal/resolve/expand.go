// SPDX-License-Identifier: MPL-2.0

package resolve

import (
	"strings"

	"github.com/servicecmd/servicecmd/pkg/servicedef"
)

// Expand returns the glob candidates of def: every path pattern joined with
// every file pattern, path-major. The recursion depth is not encoded in the
// result; callers pass def.Depth to the Matcher.
func Expand(def servicedef.ServiceDefinition) []string {
	files := def.Files
	if len(files) == 0 {
		files = []string{servicedef.DefaultComposeFile}
	}

	out := make([]string, 0, len(def.Paths)*len(files))
	for _, dir := range def.Paths {
		if !strings.HasSuffix(dir, "/") {
			dir += "/"
		}
		for _, file := range files {
			out = append(out, dir+file)
		}
	}
	return out
}
